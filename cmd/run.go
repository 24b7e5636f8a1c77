package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonafarm/market/config"
	"github.com/jonafarm/market/exception"
	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/monitoring"
)

const (
	sessionSweepInterval = 10 * time.Minute
	shutdownTimeout      = 10 * time.Second
)

var listenAddr string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Serve the marketplace HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address, overrides server.listen_addr")
}

func runServer() error {
	cfg, err := config.LoadMarketConfigOrDefault(resolvedConfigPath())
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.ListenAddr = listenAddr
	}
	rl, err := config.LoadRateLimitConfig(iniPath)
	if err != nil {
		return err
	}
	upload, err := config.LoadUploadConfig(iniPath)
	if err != nil {
		return err
	}

	if cfg.Server.MetricsEnabled {
		monitoring.InitMetrics()
	}

	app, err := buildApplication(cfg, rl, upload)
	if err != nil {
		return err
	}
	defer app.Close()

	res, blocks, err := app.builder.Verify()
	if err != nil {
		return err
	}
	monitoring.SetChainLength(len(blocks))
	if !res.Valid {
		if cfg.Chain.VerifyOnStart {
			return fmt.Errorf("product chain failed verification: %w", res.Err())
		}
		logx.Warn("RUN", fmt.Sprintf("Product chain is broken at block %d (%s), serving anyway", res.Index, res.Reason))
	} else {
		logx.Info("RUN", fmt.Sprintf("Product chain verified | length=%d", len(blocks)))
	}

	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           app.api.GetRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	exception.SafeGoWithPanic("HTTPServer", func() {
		logx.Info("RUN", "Marketplace listening on ", cfg.Server.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	exception.SafeGo("SessionSweeper", func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				app.sessions.Sweep()
			case <-ctx.Done():
				return
			}
		}
	})

	select {
	case err, ok := <-serveErr:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logx.Info("RUN", "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
