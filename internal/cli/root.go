// Package cli holds the nova command tree.
package cli

import (
	"context"
	"fmt"

	"github.com/example/novalearn/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nova",
	Short: "Gamified medical learning: Telegram bot and admin tools",
	Long: `nova runs the Mednova learning bot and the commands used to operate it.

Progress is stored in SQLite by default (DB_TYPE=postgres for PostgreSQL).
Settings come from an optional YAML file, a .env file and the environment.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			loaded.Log.Level = "debug"
		}
		l, err := loaded.NewLogger()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		cfg, logger = loaded, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(botCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(onboardCmd)
	rootCmd.AddCommand(flashcardsCmd)
	rootCmd.AddCommand(remindCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(awardCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(resetCmd)
}

// Execute runs the command tree
func Execute() error {
	return rootCmd.Execute()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
