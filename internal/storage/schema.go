package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
const ExpectedSchemaVersion = 2

//go:embed migrations/*.sql
var migrationFiles embed.FS

// EnsureSchema brings db up to ExpectedSchemaVersion. It is idempotent and
// safe to call on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m, src, err := newMigrator(db)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: %w", ErrSchemaInit, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("%w: failed to read schema version: %w", ErrSchemaInit, err)
	}
	if dirty {
		return fmt.Errorf("%w: schema version %d is dirty", ErrSchemaInit, version)
	}
	if version != ExpectedSchemaVersion {
		return fmt.Errorf("%w: expected schema version %d, got %d", ErrSchemaInit, ExpectedSchemaVersion, version)
	}

	slog.Debug("Database schema ready", "version", version)
	return nil
}

// SchemaVersion reports the applied migration version. A database that has
// never been migrated reports version 0.
func SchemaVersion(ctx context.Context, db *sql.DB) (uint, bool, error) {
	if err := validateContext(ctx); err != nil {
		return 0, false, err
	}

	m, src, err := newMigrator(db)
	if err != nil {
		return 0, false, err
	}
	defer func() { _ = src.Close() }()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty, nil
}

// newMigrator wires the embedded migrations to db. The returned migrator is
// never closed: closing it would close db, which the Provider owns.
func newMigrator(db *sql.DB) (*migrate.Migrate, source.Driver, error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		_ = src.Close()
		return nil, nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, src, nil
}
