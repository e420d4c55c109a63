// Package main applies the goose schema migrations to the salesflow database.
// Migrations are embedded in the binary; only create writes to disk.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"github.com/straye-as/salesflow-api/internal/config"
	"github.com/straye-as/salesflow-api/internal/logger"
	"github.com/straye-as/salesflow-api/migrations"
	"go.uber.org/zap"
)

var (
	targetVersion int64
	createDir     string
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Manage the salesflow database schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations (all, or up to --to)",
	RunE: withDB(func(ctx context.Context, db *sql.DB) error {
		if targetVersion > 0 {
			return goose.UpToContext(ctx, db, ".", targetVersion)
		}
		return goose.UpContext(ctx, db, ".")
	}),
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration (or down to --to)",
	RunE: withDB(func(ctx context.Context, db *sql.DB) error {
		if targetVersion > 0 {
			return goose.DownToContext(ctx, db, ".", targetVersion)
		}
		return goose.DownContext(ctx, db, ".")
	}),
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Roll back and reapply the latest migration",
	RunE: withDB(func(ctx context.Context, db *sql.DB) error {
		return goose.RedoContext(ctx, db, ".")
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print applied and pending migrations",
	RunE: withDB(func(ctx context.Context, db *sql.DB) error {
		return goose.StatusContext(ctx, db, ".")
	}),
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: withDB(func(ctx context.Context, db *sql.DB) error {
		return goose.VersionContext(ctx, db, ".")
	}),
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Write a new SQL migration into --dir",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		goose.SetBaseFS(nil)
		goose.SetSequential(true)
		return goose.Create(nil, createDir, args[0], "sql")
	},
}

func init() {
	upCmd.Flags().Int64Var(&targetVersion, "to", 0, "Stop at this version")
	downCmd.Flags().Int64Var(&targetVersion, "to", 0, "Roll back to this version")
	createCmd.Flags().StringVar(&createDir, "dir", "./migrations", "Directory for new migration files")

	rootCmd.AddCommand(upCmd, downCmd, redoCmd, statusCmd, versionCmd, createCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

// withDB opens the configured Postgres database with the embedded
// migrations installed as goose's base filesystem.
func withDB(fn func(ctx context.Context, db *sql.DB) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Minute)
		defer cancel()

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer func() { _ = log.Sync() }()

		cfg, err = config.LoadWithSecrets(ctx, log)
		if err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}

		db, err := sql.Open("postgres", cfg.Database.ConnectionString())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("failed to ping database: %w", err)
		}

		goose.SetBaseFS(migrations.FS)
		if err := goose.SetDialect("postgres"); err != nil {
			return fmt.Errorf("failed to set dialect: %w", err)
		}

		log.Info("running migration command",
			zap.String("command", cmd.Name()),
			zap.String("database", cfg.Database.Name),
			zap.Int64("to", targetVersion))

		if err := fn(ctx, db); err != nil {
			return fmt.Errorf("%s: %w", cmd.Name(), err)
		}
		return nil
	}
}
