package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Veraticus/fintrack/internal/config"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const sqliteParams = "_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// OpenSQLite opens the SQLite database at dbPath. It does not create any
// tables; see EnsureSchema.
func OpenSQLite(ctx context.Context, dbPath string) (*sql.DB, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	if dbPath != config.MemoryDatabase {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?"+sqliteParams)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections, and an in-memory
	// database only lives as long as its single connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
