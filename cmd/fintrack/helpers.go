package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/config"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/storage"
	"github.com/Veraticus/fintrack/internal/theme"
)

// app bundles everything a command needs. Close releases the database.
type app struct {
	provider *storage.Provider
	repo     *storage.TransactionRepository
	prefs    *storage.PreferenceStore
	resolver *theme.Resolver
	printer  *cli.Printer
	loc      *time.Location
}

// openApp opens the configured database, applies the schema and resolves
// the theme. A database that cannot be opened is fatal.
func openApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	dbPath := config.DatabasePath(viper.GetViper())
	provider := storage.NewProvider(dbPath)
	if _, err := provider.Get(ctx); err != nil {
		return nil, common.NewUserError("could not open the database", err)
	}

	appearance, err := theme.SystemAppearance(viper.GetString(config.KeySystemAppearance))
	if err != nil {
		_ = provider.Close()
		return nil, common.NewUserError("invalid appearance setting", err)
	}

	prefs := storage.NewPreferenceStore(provider)
	resolver := theme.NewResolver(prefs, theme.EnvAppearance(os.LookupEnv, appearance))
	resolver.Load(ctx)

	slog.Debug("Application ready", "database", dbPath, "theme", resolver.Mode())

	return &app{
		provider: provider,
		repo:     storage.NewTransactionRepository(provider),
		prefs:    prefs,
		resolver: resolver,
		printer:  cli.NewPrinter(cmd.OutOrStdout(), resolver.Theme()),
		loc:      time.Local,
	}, nil
}

func (a *app) Close() {
	if err := a.provider.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

// refreshPrinter rebuilds the printer after the theme changed.
func (a *app) refreshPrinter(cmd *cobra.Command) {
	a.printer = cli.NewPrinter(cmd.OutOrStdout(), a.resolver.Theme())
}

// findTransaction loads id or fails with a not-found user error.
func (a *app) findTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	txn, err := a.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.NewUserError("could not load transaction", err)
	}
	if txn == nil {
		return nil, common.NewUserError(fmt.Sprintf("Transacción %s no encontrada", id), common.ErrNotFound)
	}
	return txn, nil
}

// parseTypeFlag reads an optional --type value. Empty means no filter.
func parseTypeFlag(value string) (model.TransactionType, error) {
	if value == "" {
		return "", nil
	}
	t, err := model.ParseTransactionType(value)
	if err != nil {
		return "", common.NewUserError("type must be income or expense", err)
	}
	return t, nil
}

// backups returns the backup manager for the open database.
func (a *app) backups() (*storage.BackupManager, error) {
	dir := viper.GetString(config.KeyBackupDir)
	if dir != "" {
		dir = config.ExpandPath(dir)
	}
	m, err := storage.NewBackupManager(a.provider, dir)
	if err != nil {
		return nil, common.NewUserError("backups are not available", err)
	}
	return m, nil
}

// autoBackup returns a hook that takes an automatic backup before a bulk
// write. In-memory databases are skipped.
func (a *app) autoBackup(operation string) func(context.Context) error {
	return func(ctx context.Context) error {
		m, err := a.backups()
		if errors.Is(err, storage.ErrNoBackupFile) {
			return nil
		}
		if err != nil {
			return err
		}
		info, err := m.AutoBackup(ctx, operation)
		if err != nil {
			return common.NewUserError("could not back up the database", err)
		}
		slog.Info("Backup created", "id", info.ID)
		return nil
	}
}
