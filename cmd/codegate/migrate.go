package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/m3rciful/codegate/app/registry"
	coredatabase "github.com/m3rciful/codegate/core/database"
	"github.com/m3rciful/codegate/core/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := logger.InitLogger(cfg.CoreConfig()); err != nil {
			return err
		}
		defer func() { _ = logger.Shutdown() }()

		if err := coredatabase.RunMigrations(cfg.Database, registry.Migrations()); err != nil {
			return err
		}

		db, err := coredatabase.Connect(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		n, err := registry.New(db).Count(ctx)
		if err != nil {
			return err
		}
		logger.Info(ctx, "db.migrate", "migrate.done",
			slog.String("status", "ok"),
			slog.String("driver", cfg.Database.Driver),
			slog.Int("count", n),
		)
		fmt.Fprintf(cmd.OutOrStdout(), "migrations applied (%s), %d codes bound\n", cfg.Database.Driver, n)
		return nil
	},
}
