package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"bmapp/internal/config"
	"bmapp/internal/infra"
	"bmapp/pkg/logger"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the SQL schema migrations",
	}
	cmd.AddCommand(
		migrateSubCmd("up", "Apply all pending migrations", infra.MigrateUp),
		migrateSubCmd("down", "Roll back the most recent migration", infra.MigrateDown),
		migrateSubCmd("status", "Print the migration status", infra.MigrateStatus),
	)
	return cmd
}

type migrateFunc func(ctx context.Context, db *sql.DB) error

func migrateSubCmd(use, short string, run migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("POSTGRES_URL is required")
			}
			log, err := logger.New(cfg.IsDevelopment())
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := infra.InitPostgresql(cfg.DatabaseURL, log)
			if err != nil {
				return err
			}
			defer infra.ClosePostgresql(db, log)

			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return run(cmd.Context(), sqlDB)
		},
	}
}
