// Package testutil provides isolated SQLite-backed fixtures for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/storage"
)

// TestDB bundles a migrated database with the stores built on it.
type TestDB struct {
	t            *testing.T
	Provider     *storage.Provider
	Transactions *storage.TransactionRepository
	Preferences  *storage.PreferenceStore
}

// TestDBOptions provides configuration options for test database setup.
type TestDBOptions struct {
	CustomSetup func(context.Context, *TestDB) error
	Seed        []model.NewTransaction
	// InMemory uses ":memory:" instead of a file under t.TempDir().
	InMemory bool
}

// SetupTestDB creates an empty, migrated database that is closed when the
// test ends.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	txn := db.MustCreate(testutil.NewTransactionBuilder().Expense(1500, "Supermercado").Build()[0])
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{})
}

// SetupTestDBWithSamples creates a database holding model.SampleTransactions.
func SetupTestDBWithSamples(t *testing.T) *TestDB {
	t.Helper()
	return SetupTestDBWithOptions(t, TestDBOptions{Seed: model.SampleTransactions()})
}

// SetupTestDBWithOptions creates a test database with custom options.
func SetupTestDBWithOptions(t *testing.T, opts TestDBOptions) *TestDB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "fintrack.db")
	if opts.InMemory {
		dsn = ":memory:"
	}

	provider := storage.NewProvider(dsn)
	t.Cleanup(func() {
		_ = provider.Close()
	})

	ctx := context.Background()
	if _, err := provider.Get(ctx); err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	db := &TestDB{
		t:            t,
		Provider:     provider,
		Transactions: storage.NewTransactionRepository(provider),
		Preferences:  storage.NewPreferenceStore(provider),
	}

	for _, in := range opts.Seed {
		db.MustCreate(in)
	}

	if opts.CustomSetup != nil {
		if err := opts.CustomSetup(ctx, db); err != nil {
			t.Fatalf("custom setup failed: %v", err)
		}
	}

	return db
}

// MustCreate stores in or fails the test.
func (db *TestDB) MustCreate(in model.NewTransaction) *model.Transaction {
	db.t.Helper()
	txn, err := db.Transactions.Create(context.Background(), in)
	if err != nil {
		db.t.Fatalf("failed to seed transaction %q: %v", in.Description, err)
	}
	return txn
}

// MustGet returns the stored transaction with id or fails the test.
func (db *TestDB) MustGet(id string) model.Transaction {
	db.t.Helper()
	txn, err := db.Transactions.GetByID(context.Background(), id)
	if err != nil {
		db.t.Fatalf("failed to load transaction %s: %v", id, err)
	}
	if txn == nil {
		db.t.Fatalf("transaction %s not found", id)
	}
	return *txn
}

// Count returns the number of stored transactions.
func (db *TestDB) Count() int {
	db.t.Helper()
	all, err := db.Transactions.GetAll(context.Background())
	if err != nil {
		db.t.Fatalf("failed to list transactions: %v", err)
	}
	return len(all)
}
