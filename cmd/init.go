package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonafarm/market/config"
	"github.com/jonafarm/market/logx"
	"github.com/jonafarm/market/utils"
)

var initDataDir string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the data directory and default configuration",
	Long: `Prepare a fresh marketplace installation by:
- Writing market.yml and config.ini when they do not exist
- Creating the data directory
- Seeding every JSON data file with an empty list

Existing files are left untouched, so the command can be run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initializeMarket(resolvedConfigPath(), iniPath, initDataDir)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDataDir, "data-dir", config.DefaultDataDir, "Directory for the JSON data files")
}

func initializeMarket(ymlPath, iniFile, dataDir string) error {
	if !exists(ymlPath) {
		cfg := config.Default()
		cfg.Data.Dir = dataDir
		cfg.Chain.File = filepath.Join(dataDir, config.DefaultChainFile)
		if err := config.WriteMarketConfig(ymlPath, cfg); err != nil {
			return fmt.Errorf("write %s: %w", ymlPath, err)
		}
		logx.Info("INIT", "Wrote ", ymlPath)
	}

	if !exists(iniFile) {
		if err := utils.WriteFileAtomic(iniFile, []byte(config.DefaultINI), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", iniFile, err)
		}
		logx.Info("INIT", "Wrote ", iniFile)
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	for _, name := range seedFiles {
		path := filepath.Join(dataDir, name)
		if exists(path) {
			continue
		}
		if err := utils.WriteFileAtomic(path, []byte("[]\n"), 0o644); err != nil {
			return fmt.Errorf("seed %s: %w", path, err)
		}
	}

	logx.Info("INIT", "Marketplace data ready in ", dataDir)
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
