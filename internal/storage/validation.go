// Package storage provides the data persistence layer for fintrack.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrInvalidDateRange   = errors.New("start date must be before end date")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidType        = errors.New("invalid transaction type")
	ErrCategoryMismatch   = errors.New("category does not belong to transaction type")
)

// Storage errors.
var (
	ErrSchemaInit          = errors.New("failed to initialize database schema")
	ErrCorruptRow          = fmt.Errorf("corrupt transaction row: %w", common.ErrDatabaseCorrupted)
	ErrNotFoundAfterUpdate = fmt.Errorf("transaction not found after update: %w", common.ErrNotFound)
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateType ensures t is one of the closed set of transaction types.
func validateType(t model.TransactionType) error {
	if !t.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, t)
	}
	return nil
}

// validatePairing ensures the category belongs to the type's category set.
func validatePairing(t model.TransactionType, c model.Category) error {
	if err := validateType(t); err != nil {
		return err
	}
	if !c.ValidFor(t) {
		return fmt.Errorf("%w: %q is not an %s category", ErrCategoryMismatch, c, t)
	}
	return nil
}

// validateNewTransaction checks the storage-level invariants of a create
// request. Amount and description rules belong to the form layer.
func validateNewTransaction(txn model.NewTransaction) error {
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	return validatePairing(txn.Type, txn.Category)
}
