package storage

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/Veraticus/fintrack/internal/service"
)

// PreferenceStore keeps user settings in the preferences table.
//
// Reads that fail are reported as absent. Writes that fail are logged and
// dropped.
type PreferenceStore struct {
	provider *Provider
	now      func() time.Time
}

var _ service.PreferenceStore = (*PreferenceStore)(nil)

// NewPreferenceStore creates a preference store backed by provider.
func NewPreferenceStore(provider *Provider) *PreferenceStore {
	return &PreferenceStore{
		provider: provider,
		now:      time.Now,
	}
}

// Get returns the stored value for key.
func (s *PreferenceStore) Get(ctx context.Context, key string) (string, bool) {
	if err := validateContext(ctx); err != nil {
		slog.Warn("Failed to read preference", "key", key, "error", err)
		return "", false
	}

	db, err := s.provider.Get(ctx)
	if err != nil {
		slog.Warn("Failed to read preference", "key", key, "error", err)
		return "", false
	}

	var value string
	err = db.QueryRowContext(ctx, "SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false
	}
	if err != nil {
		slog.Warn("Failed to read preference", "key", key, "error", err)
		return "", false
	}
	return value, true
}

// Set stores value under key.
func (s *PreferenceStore) Set(ctx context.Context, key, value string) {
	if err := validateContext(ctx); err != nil {
		slog.Error("Failed to save preference", "key", key, "error", err)
		return
	}

	db, err := s.provider.Get(ctx)
	if err != nil {
		slog.Error("Failed to save preference", "key", key, "error", err)
		return
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO preferences (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, value, formatTime(s.now()))
	if err != nil {
		slog.Error("Failed to save preference", "key", key, "error", err)
		return
	}

	slog.Debug("Saved preference", "key", key, "value", value)
}

// MemoryPreferenceStore is an in-process PreferenceStore.
type MemoryPreferenceStore struct {
	values map[string]string
	mu     sync.RWMutex
}

var _ service.PreferenceStore = (*MemoryPreferenceStore)(nil)

// NewMemoryPreferenceStore creates an empty in-memory store.
func NewMemoryPreferenceStore() *MemoryPreferenceStore {
	return &MemoryPreferenceStore{values: make(map[string]string)}
}

// Get returns the stored value for key.
func (s *MemoryPreferenceStore) Get(_ context.Context, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores value under key.
func (s *MemoryPreferenceStore) Set(_ context.Context, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}
