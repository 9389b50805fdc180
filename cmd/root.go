package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/terralab/landscape-cli/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "landscape-cli",
	Short: "Multi-scale landscape metrics extraction pipeline",
	Long:  "Computes landscape composition and configuration metrics (edge density, patch count, percent land cover) at five buffer scales around geographic sampling sites, from annual categorical land-cover rasters.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
