package main

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/marketplace/backend/internal/infrastructure/config"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/infrastructure/migration"
	"github.com/marketplace/backend/internal/infrastructure/persistence"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect the database schema",
		Long: `Applies the SQL migrations embedded in this binary to PostgreSQL.
SQLite databases are created from the models instead and report no version.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(opts, cmd, func(m *migration.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				return printStatus(cmd, m)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back every migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(opts, cmd, func(m *migration.Migrator) error {
				return m.Down()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied and latest schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(opts, cmd, func(m *migration.Migrator) error {
				return printStatus(cmd, m)
			})
		},
	})

	return cmd
}

// withMigrator runs fn against PostgreSQL. For SQLite it only syncs the
// schema from the models.
func withMigrator(opts *rootOptions, cmd *cobra.Command, fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(&logger.Config{Level: opts.logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		return err
	}
	defer func() {
		_ = log.Sync()
	}()

	if cfg.Database.Driver == "sqlite" {
		db, err := persistence.NewDatabaseWithCustomLogger(&cfg.Database, logger.NewGormLogger(log, logger.MapGormLogLevel(opts.logLevel)))
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.AutoMigrate(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "sqlite schema synced from models (%s)\n", cfg.Database.SQLitePath)
		return nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(cmd.Context()); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	m, err := migration.New(db, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Error closing migrator", zap.Error(err))
		}
	}()
	return fn(m)
}

func printStatus(cmd *cobra.Command, m *migration.Migrator) error {
	status, err := m.Status()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "version %d of %d", status.Version, status.Latest)
	if status.Dirty {
		fmt.Fprint(cmd.OutOrStdout(), " (dirty)")
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
