package cmd

import (
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonafarm/market/config"
	"github.com/jonafarm/market/logx"
)

var (
	configPath string
	iniPath    string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "market",
	Short: "JonaFarm marketplace backend",
	Long:  "Command line interface for running the JonaFarm marketplace and inspecting its product audit chain.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadEnvFile(envFile)
		initializeFileLogger(cmd.ErrOrStderr())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to market.yml (default $MARKET_CONFIG or "+config.DefaultConfigPath+")")
	rootCmd.PersistentFlags().StringVar(&iniPath, "ini", config.DefaultINIPath, "Path to config.ini")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before anything else")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logx.Error("CMD", "Command execution failed:", err)
		os.Exit(1)
	}
}

// loadEnvFile loads KEY=VALUE pairs without overriding variables that are
// already set. A missing file is not an error.
func loadEnvFile(path string) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	if err := godotenv.Load(path); err != nil {
		logx.Warn("CMD", "Failed to load env file ", path, ": ", err)
	}
}

// initializeFileLogger sends log lines to the rolling log file and to out.
func initializeFileLogger(out io.Writer) {
	logx.InitWithOutput(io.MultiWriter(out, logx.RollingWriterFromEnv()))
}

// resolvedConfigPath is evaluated after the env file is loaded so that
// MARKET_CONFIG may come from it.
func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	if v := os.Getenv("MARKET_CONFIG"); v != "" {
		return v
	}
	return config.DefaultConfigPath
}
