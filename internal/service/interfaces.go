// Package service defines the interfaces consumed by fintrack front ends.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/fintrack/internal/model"
)

// TransactionRepository is the persistence contract for transactions.
//
// GetByID returns (nil, nil) when no row matches. Update fails with an error
// wrapping common.ErrNotFound when the row is missing after the write.
// Delete of a missing id is not an error.
type TransactionRepository interface {
	GetAll(ctx context.Context) ([]model.Transaction, error)
	GetByType(ctx context.Context, txnType model.TransactionType) ([]model.Transaction, error)
	GetByID(ctx context.Context, id string) (*model.Transaction, error)
	Create(ctx context.Context, txn model.NewTransaction) (*model.Transaction, error)
	Update(ctx context.Context, id string, patch model.TransactionPatch) (*model.Transaction, error)
	Delete(ctx context.Context, id string) error
	GetByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error)
	Summary(ctx context.Context) (model.Summary, error)
}

// PreferenceStore persists user settings on a best-effort basis.
//
// Get reports false when the key was never set or could not be read.
// Set never fails from the caller's point of view; implementations log
// and drop write errors.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
}
