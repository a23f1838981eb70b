package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/partnerforge/partnerforge/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "partnerforge",
	Short: "Displacement-target intelligence for partner-technology accounts",
	Long:  "Tracks companies running partner technologies, scores them as search displacement targets, and serves the tier/vertical dashboard data.",
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
