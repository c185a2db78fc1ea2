package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/digkill/TGCreditBot/internal/config"
	"github.com/digkill/TGCreditBot/internal/database"
	"github.com/digkill/TGCreditBot/pkg/logger"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger tables for the configured database driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			if err := cfg.ValidateDatabase(); err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logr := logger.New(cfg.LogLevel)

			db, err := database.Connect(cfg)
			if err != nil {
				return fmt.Errorf("database connect: %w", err)
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return fmt.Errorf("database migrate: %w", err)
			}
			logr.Info("schema applied", "driver", cfg.DatabaseDriver)
			return nil
		},
	}
}
