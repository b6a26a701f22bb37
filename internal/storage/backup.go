package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/config"
)

// Backup errors.
var (
	ErrBackupNotFound  = errors.New("backup not found")
	ErrBackupCorrupted = errors.New("backup integrity check failed")
	ErrBackupExists    = errors.New("backup already exists")
	ErrInvalidBackupID = errors.New("invalid backup id")
	ErrNoBackupFile    = errors.New("in-memory databases cannot be backed up")
)

// maxAutoBackups is how many automatic backups are kept.
const maxAutoBackups = 5

const (
	backupExt   = ".db"
	metadataExt = ".meta.json"
)

// BackupInfo describes a stored backup.
type BackupInfo struct {
	CreatedAt     time.Time `json:"created_at"`
	ID            string    `json:"id"`
	Description   string    `json:"description"`
	FileSize      int64     `json:"file_size"`
	Transactions  int       `json:"transactions"`
	SchemaVersion uint      `json:"schema_version"`
	IsAuto        bool      `json:"is_auto"`
}

// BackupManager copies the database behind a Provider into a backup
// directory and restores it from there.
type BackupManager struct {
	provider *Provider
	now      func() time.Time
	dir      string
}

// NewBackupManager creates a manager that keeps backups in dir. An empty dir
// means a "backups" directory next to the database file.
func NewBackupManager(provider *Provider, dir string) (*BackupManager, error) {
	dsn := provider.DSN()
	if dsn == "" || dsn == config.MemoryDatabase || strings.HasPrefix(dsn, "file::memory:") {
		return nil, ErrNoBackupFile
	}
	if dir == "" {
		dir = filepath.Join(filepath.Dir(dsn), "backups")
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}

	return &BackupManager{
		provider: provider,
		now:      time.Now,
		dir:      dir,
	}, nil
}

// Dir returns the backup directory.
func (m *BackupManager) Dir() string {
	return m.dir
}

// Create writes a consistent copy of the database under id. An empty id is
// replaced by one derived from the current time.
func (m *BackupManager) Create(ctx context.Context, id, description string) (*BackupInfo, error) {
	return m.create(ctx, id, description, false)
}

// AutoBackup creates a backup named after the operation about to run and
// prunes automatic backups beyond the most recent few.
func (m *BackupManager) AutoBackup(ctx context.Context, operation string) (*BackupInfo, error) {
	id := fmt.Sprintf("auto-%s-%s", operation, m.now().Format("20060102-150405.000"))
	info, err := m.create(ctx, id, "Automatic backup before "+operation, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create automatic backup: %w", err)
	}

	if err := m.pruneAutoBackups(ctx); err != nil {
		slog.Warn("Failed to prune automatic backups", "error", err)
	}
	return info, nil
}

func (m *BackupManager) create(ctx context.Context, id, description string, auto bool) (*BackupInfo, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if id == "" {
		id = "backup-" + m.now().Format("2006-01-02-150405")
	}
	if err := validateBackupID(id); err != nil {
		return nil, err
	}

	backupPath := m.backupPath(id)
	if _, err := os.Stat(backupPath); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackupExists, id)
	}

	db, err := m.provider.Get(ctx)
	if err != nil {
		return nil, err
	}

	version, _, err := SchemaVersion(ctx, db)
	if err != nil {
		return nil, err
	}
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}

	// VACUUM INTO writes a consistent snapshot, WAL contents included
	if _, err := db.ExecContext(ctx, "VACUUM INTO ?", backupPath); err != nil {
		return nil, fmt.Errorf("failed to back up database: %w", err)
	}

	stat, err := os.Stat(backupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}

	info := BackupInfo{
		ID:            id,
		CreatedAt:     m.now().UTC(),
		Description:   description,
		FileSize:      stat.Size(),
		Transactions:  count,
		SchemaVersion: version,
		IsAuto:        auto,
	}
	if err := writeMetadata(m.metadataPath(id), info); err != nil {
		if rmErr := os.Remove(backupPath); rmErr != nil {
			slog.Error("Failed to remove backup after metadata failure", "error", rmErr)
		}
		return nil, fmt.Errorf("failed to save backup metadata: %w", err)
	}

	slog.Info("Created backup", "id", id, "transactions", count, "size", info.FileSize)
	return &info, nil
}

// List returns every backup, newest first. Backups whose metadata cannot be
// read are skipped.
func (m *BackupManager) List(_ context.Context) ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backups directory: %w", err)
	}

	backups := make([]BackupInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), metadataExt) {
			continue
		}
		info, err := readMetadata(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			slog.Debug("Skipping unreadable backup metadata", "file", entry.Name(), "error", err)
			continue
		}
		backups = append(backups, *info)
	}

	sort.SliceStable(backups, func(i, j int) bool {
		return backups[i].CreatedAt.After(backups[j].CreatedAt)
	})
	return backups, nil
}

// Get returns the metadata of one backup.
func (m *BackupManager) Get(_ context.Context, id string) (*BackupInfo, error) {
	if err := validateBackupID(id); err != nil {
		return nil, err
	}
	info, err := readMetadata(m.metadataPath(id))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, id)
	}
	return info, err
}

// Restore replaces the database with backup id. The Provider is closed so
// the next Get opens the restored file. The current file is kept aside
// until the copy succeeds.
func (m *BackupManager) Restore(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateBackupID(id); err != nil {
		return err
	}

	backupPath := m.backupPath(id)
	if _, err := os.Stat(backupPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, id)
		}
		return fmt.Errorf("failed to access backup: %w", err)
	}
	if err := verifyIntegrity(ctx, backupPath); err != nil {
		return fmt.Errorf("%w: %w", ErrBackupCorrupted, err)
	}

	if err := m.provider.Close(); err != nil {
		return err
	}

	dbPath := m.provider.DSN()
	asidePath := dbPath + ".restore-backup"
	if err := copyFile(dbPath, asidePath); err != nil {
		return fmt.Errorf("failed to set aside current database: %w", err)
	}

	// Stale WAL files would be replayed over the restored copy
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dbPath + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s file: %w", suffix, err)
		}
	}

	if err := copyFile(backupPath, dbPath); err != nil {
		if restoreErr := copyFile(asidePath, dbPath); restoreErr != nil {
			slog.Error("Failed to put back the original database", "error", restoreErr)
		}
		return fmt.Errorf("failed to restore backup: %w", err)
	}

	if err := os.Remove(asidePath); err != nil {
		slog.Warn("Failed to remove set-aside database", "path", asidePath, "error", err)
	}

	slog.Info("Restored backup", "id", id)
	return nil
}

// Delete removes backup id.
func (m *BackupManager) Delete(_ context.Context, id string) error {
	if err := validateBackupID(id); err != nil {
		return err
	}

	if err := os.Remove(m.backupPath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, id)
		}
		return fmt.Errorf("failed to remove backup: %w", err)
	}
	if err := os.Remove(m.metadataPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Debug("Failed to remove backup metadata", "id", id, "error", err)
	}
	return nil
}

func (m *BackupManager) pruneAutoBackups(ctx context.Context) error {
	backups, err := m.List(ctx)
	if err != nil {
		return err
	}

	kept := 0
	for _, b := range backups {
		if !b.IsAuto {
			continue
		}
		kept++
		if kept > maxAutoBackups {
			if err := m.Delete(ctx, b.ID); err != nil {
				slog.Debug("Failed to delete old automatic backup", "id", b.ID, "error", err)
			}
		}
	}
	return nil
}

func (m *BackupManager) backupPath(id string) string {
	return filepath.Join(m.dir, id+backupExt)
}

func (m *BackupManager) metadataPath(id string) string {
	return filepath.Join(m.dir, id+metadataExt)
}

func validateBackupID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidBackupID, id)
	}
	return nil
}

func verifyIntegrity(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return err
	}
	if result != "ok" {
		return fmt.Errorf("integrity check: %s", result)
	}
	return nil
}

// copyFile copies src to dst through a temporary file and a rename.
func copyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- paths come from the manager
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp := dst + ".tmp"
	out, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dst)
}

func writeMetadata(path string, info BackupInfo) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func readMetadata(path string) (*BackupInfo, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is built from a validated id
	if err != nil {
		return nil, err
	}
	var info BackupInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
