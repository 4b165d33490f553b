package main

import (
	"context"
	"fmt"
	"time"

	"liftcoach/server/internal/bootstrap"
	"liftcoach/server/internal/config"
	"liftcoach/server/internal/logging"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "liftcoach",
	Short:         "LiftCoach maintenance tool",
	Long:          `Maintenance commands for the LiftCoach backend: catalog seeding and index management.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "Directory containing config.yaml")
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(indexesCmd)
}

// openRepositories loads the config, sets up logging and connects to the database.
func openRepositories(ctx context.Context) (*config.Config, *bootstrap.Repositories, func(), error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, nil, nil, err
	}
	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.Log.Level,
		Environment: cfg.Server.Environment,
	})

	repos, closeFn, err := bootstrap.OpenRepositories(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open database: %w", err)
	}
	return &cfg, repos, closeFn, nil
}

var indexesCmd = &cobra.Command{
	Use:   "indexes",
	Short: "Create database indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		_, repos, closeFn, err := openRepositories(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := repos.EnsureIndexes(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Indexes are up to date")
		return nil
	},
}
