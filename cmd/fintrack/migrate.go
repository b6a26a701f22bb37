package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/config"
	"github.com/Veraticus/fintrack/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command does this on start, so running it by hand is only
needed to prepare a database ahead of time or to check its status.`,
		Args: cobra.NoArgs,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	dbPath := config.DatabasePath(viper.GetViper())

	slog.Info("Starting database migration",
		"database", dbPath,
		"status_only", status)

	var opts []storage.ProviderOption
	if status {
		// Open without touching the schema
		opts = append(opts, storage.WithSchema(func(context.Context, *sql.DB) error { return nil }))
	}
	provider := storage.NewProvider(dbPath, opts...)
	defer func() { _ = provider.Close() }()

	ctx := cmd.Context()
	db, err := provider.Get(ctx)
	if err != nil {
		return common.NewUserError("migration failed", err)
	}

	version, dirty, err := storage.SchemaVersion(ctx, db)
	if err != nil {
		return common.NewUserError("could not read schema version", err)
	}

	out := cmd.OutOrStdout()
	if status {
		fmt.Fprintln(out, "📊 Database Migration Status")
		fmt.Fprintf(out, "Database:        %s\n", dbPath)
		fmt.Fprintf(out, "Current version: %d\n", version)
		fmt.Fprintf(out, "Latest version:  %d\n", storage.ExpectedSchemaVersion)
		if dirty {
			fmt.Fprintln(out, "⚠️  Schema is dirty: a previous migration did not finish")
		} else if version < storage.ExpectedSchemaVersion {
			fmt.Fprintln(out, "Run 'fintrack migrate' to apply pending migrations")
		}
		return nil
	}

	fmt.Fprintf(out, "✅ Database migrations completed successfully (version %d)\n", version)
	return nil
}
