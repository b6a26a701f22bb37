package storage

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openRawTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "schema.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func countTables(t *testing.T, db *sql.DB, name string) int {
	t.Helper()
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&count)
	require.NoError(t, err)
	return count
}

func TestEnsureSchema_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := openRawTestDB(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, EnsureSchema(ctx, db), "call %d", i+1)
	}

	assert.Equal(t, 1, countTables(t, db, "transactions"))
	assert.Equal(t, 1, countTables(t, db, "preferences"))

	version, dirty, err := SchemaVersion(ctx, db)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, uint(ExpectedSchemaVersion), version)
}

func TestEnsureSchema_ExistingTable(t *testing.T) {
	ctx := context.Background()
	db := openRawTestDB(t)

	// A store created before migrations were tracked already has the table.
	_, err := db.Exec(`CREATE TABLE transactions (
		id TEXT PRIMARY KEY NOT NULL,
		amount REAL NOT NULL,
		type TEXT NOT NULL CHECK(type IN ('income', 'expense')),
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		date TEXT NOT NULL,
		createdAt TEXT NOT NULL
	)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO transactions VALUES ('legacy', 10, 'income', 'Regalo', 'Regalo', '2026-02-01T00:00:00.000Z', '2026-02-01T00:00:00.000Z')`)
	require.NoError(t, err)

	require.NoError(t, EnsureSchema(ctx, db))
	assert.Equal(t, 1, countTables(t, db, "transactions"))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&count))
	assert.Equal(t, 1, count, "existing rows survive")
}

func TestSchemaVersion_Unmigrated(t *testing.T) {
	db := openRawTestDB(t)

	version, dirty, err := SchemaVersion(context.Background(), db)
	require.NoError(t, err)
	assert.Zero(t, version)
	assert.False(t, dirty)
}

func TestSchema_TypeConstraint(t *testing.T) {
	ctx := context.Background()
	db := openRawTestDB(t)
	require.NoError(t, EnsureSchema(ctx, db))

	_, err := db.ExecContext(ctx, `INSERT INTO transactions (id, amount, type, description, category, date, createdAt)
		VALUES ('t1', 5, 'transfer', 'x', 'y', '2026-02-01T00:00:00Z', '2026-02-01T00:00:00Z')`)
	assert.Error(t, err, "type outside {income, expense} must fail to persist")

	_, err = db.ExecContext(ctx, `INSERT INTO transactions (id, amount, type, description, category, date, createdAt)
		VALUES ('t2', 5, 'income', NULL, 'y', '2026-02-01T00:00:00Z', '2026-02-01T00:00:00Z')`)
	assert.Error(t, err, "description is NOT NULL")
}

func TestEnsureSchema_CancelledContext(t *testing.T) {
	db := openRawTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, EnsureSchema(ctx, db), context.Canceled)
}
