package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/service"
)

// timeLayout is ISO-8601 in UTC with fixed-width fractional seconds, so the
// lexical order of stored text matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const transactionColumns = "id, amount, type, description, category, date, createdAt"

const transactionOrder = " ORDER BY date DESC, createdAt DESC"

// queryable is satisfied by *sql.DB and *sql.Tx.
type queryable interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TransactionRepository implements service.TransactionRepository on top of
// the shared handle from a Provider. It holds no row cache; values are cheap
// to create per call site.
type TransactionRepository struct {
	provider *Provider
	now      func() time.Time
	newID    func() (string, error)

	// afterWrite runs between Update's write and its read-back.
	afterWrite func(ctx context.Context, id string)
}

var _ service.TransactionRepository = (*TransactionRepository)(nil)

// NewTransactionRepository creates a repository backed by provider.
func NewTransactionRepository(provider *Provider) *TransactionRepository {
	return &TransactionRepository{
		provider: provider,
		now:      time.Now,
		newID:    newTransactionID,
	}
}

// GetAll returns every transaction, newest date first.
func (r *TransactionRepository) GetAll(ctx context.Context) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	db, err := r.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	return queryTransactions(ctx, db, "")
}

// GetByType returns the transactions of one type, newest date first.
func (r *TransactionRepository) GetByType(ctx context.Context, txnType model.TransactionType) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateType(txnType); err != nil {
		return nil, err
	}
	db, err := r.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	return queryTransactions(ctx, db, " WHERE type = ?", string(txnType))
}

// GetByID returns the transaction with id, or nil if there is none.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	db, err := r.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	return getTransactionByID(ctx, db, id)
}

// Create stores a new transaction and returns it with its generated ID and
// creation time.
func (r *TransactionRepository) Create(ctx context.Context, in model.NewTransaction) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateNewTransaction(in); err != nil {
		return nil, err
	}
	db, err := r.provider.Get(ctx)
	if err != nil {
		return nil, err
	}

	id, err := r.newID()
	if err != nil {
		return nil, err
	}

	txn := model.Transaction{
		ID:          id,
		Amount:      in.Amount,
		Type:        in.Type,
		Description: in.Description,
		Category:    in.Category,
		Date:        normalizeTime(in.Date),
		CreatedAt:   normalizeTime(r.now()),
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		txn.ID,
		txn.Amount,
		string(txn.Type),
		txn.Description,
		string(txn.Category),
		formatTime(txn.Date),
		formatTime(txn.CreatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert transaction: %w", err)
	}

	return &txn, nil
}

// Update applies the non-nil fields of patch to the transaction with id and
// returns the stored result. The write and the read-back are separate
// statements; if the row is gone when it is read back, Update fails with
// ErrNotFoundAfterUpdate.
func (r *TransactionRepository) Update(ctx context.Context, id string, patch model.TransactionPatch) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	if patch.Date != nil && patch.Date.IsZero() {
		return nil, fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	db, err := r.provider.Get(ctx)
	if err != nil {
		return nil, err
	}

	if !patch.IsEmpty() {
		if err := r.validatePatch(ctx, db, id, patch); err != nil {
			return nil, err
		}

		assignments, args := buildAssignments(patch)
		args = append(args, id)
		query := "UPDATE transactions SET " + strings.Join(assignments, ", ") + " WHERE id = ?"
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("failed to update transaction %s: %w", id, err)
		}

		if r.afterWrite != nil {
			r.afterWrite(ctx, id)
		}
	}

	updated, err := getTransactionByID(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFoundAfterUpdate, id)
	}
	return updated, nil
}

// validatePatch checks the type/category pairing the row will have once the
// patch is applied.
func (r *TransactionRepository) validatePatch(ctx context.Context, db queryable, id string, patch model.TransactionPatch) error {
	if patch.Type != nil {
		if err := validateType(*patch.Type); err != nil {
			return err
		}
	}
	if patch.Type == nil && patch.Category == nil {
		return nil
	}
	if patch.Type != nil && patch.Category != nil {
		return validatePairing(*patch.Type, *patch.Category)
	}

	current, err := getTransactionByID(ctx, db, id)
	if err != nil {
		return err
	}
	if current == nil {
		return fmt.Errorf("%w: %s", ErrNotFoundAfterUpdate, id)
	}
	next := patch.Apply(*current)
	return validatePairing(next.Type, next.Category)
}

// buildAssignments turns the present patch fields into SET clauses.
func buildAssignments(patch model.TransactionPatch) ([]string, []any) {
	var assignments []string
	var args []any

	if patch.Amount != nil {
		assignments = append(assignments, "amount = ?")
		args = append(args, *patch.Amount)
	}
	if patch.Type != nil {
		assignments = append(assignments, "type = ?")
		args = append(args, string(*patch.Type))
	}
	if patch.Description != nil {
		assignments = append(assignments, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Category != nil {
		assignments = append(assignments, "category = ?")
		args = append(args, string(*patch.Category))
	}
	if patch.Date != nil {
		assignments = append(assignments, "date = ?")
		args = append(args, formatTime(*patch.Date))
	}

	return assignments, args
}

// Delete removes the transaction with id. Deleting a missing id is a no-op.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	db, err := r.provider.Get(ctx)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", id, err)
	}
	return nil
}

// GetByDateRange returns transactions dated between start and end inclusive,
// newest date first.
func (r *TransactionRepository) GetByDateRange(ctx context.Context, start, end time.Time) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %v is before start date %v", ErrInvalidDateRange, end, start)
	}
	db, err := r.provider.Get(ctx)
	if err != nil {
		return nil, err
	}
	return queryTransactions(ctx, db, " WHERE date BETWEEN ? AND ?", formatTime(start), formatTime(end))
}

// Summary totals income and expenses across every stored transaction.
func (r *TransactionRepository) Summary(ctx context.Context) (model.Summary, error) {
	if err := validateContext(ctx); err != nil {
		return model.Summary{}, err
	}
	db, err := r.provider.Get(ctx)
	if err != nil {
		return model.Summary{}, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT type, COALESCE(SUM(amount), 0), COUNT(*)
		FROM transactions
		GROUP BY type
	`)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to summarize transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var summary model.Summary
	for rows.Next() {
		var txnType string
		var total float64
		var count int
		if err := rows.Scan(&txnType, &total, &count); err != nil {
			return model.Summary{}, fmt.Errorf("failed to scan summary: %w", err)
		}
		switch model.TransactionType(txnType) {
		case model.TypeIncome:
			summary.Income = total
		case model.TypeExpense:
			summary.Expenses = total
		default:
			return model.Summary{}, fmt.Errorf("%w: unknown type %q", ErrCorruptRow, txnType)
		}
		summary.Count += count
	}
	if err := rows.Err(); err != nil {
		return model.Summary{}, fmt.Errorf("failed to iterate summary: %w", err)
	}

	summary.Balance = summary.Income - summary.Expenses
	return summary, nil
}

func getTransactionByID(ctx context.Context, q queryable, id string) (*model.Transaction, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}
	return &txn, nil
}

func queryTransactions(ctx context.Context, q queryable, where string, args ...any) ([]model.Transaction, error) {
	query := "SELECT " + transactionColumns + " FROM transactions" + where + transactionOrder

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	transactions := []model.Transaction{}
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

// transactionRow is the persisted shape of a transaction.
type transactionRow struct {
	ID          string
	Type        string
	Description string
	Category    string
	Date        string
	CreatedAt   string
	Amount      float64
}

func scanTransaction(s rowScanner) (model.Transaction, error) {
	var row transactionRow
	err := s.Scan(
		&row.ID,
		&row.Amount,
		&row.Type,
		&row.Description,
		&row.Category,
		&row.Date,
		&row.CreatedAt,
	)
	if err != nil {
		return model.Transaction{}, err
	}
	return row.toModel()
}

// toModel converts a row field by field, rejecting values the schema should
// never have let through.
func (row transactionRow) toModel() (model.Transaction, error) {
	txnType := model.TransactionType(row.Type)
	if !txnType.IsValid() {
		return model.Transaction{}, fmt.Errorf("%w: transaction %s has type %q", ErrCorruptRow, row.ID, row.Type)
	}

	date, err := parseTime(row.Date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: transaction %s has date %q: %w", ErrCorruptRow, row.ID, row.Date, err)
	}

	createdAt, err := parseTime(row.CreatedAt)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("%w: transaction %s has createdAt %q: %w", ErrCorruptRow, row.ID, row.CreatedAt, err)
	}

	return model.Transaction{
		ID:          row.ID,
		Amount:      row.Amount,
		Type:        txnType,
		Description: row.Description,
		Category:    model.Category(row.Category),
		Date:        date,
		CreatedAt:   createdAt,
	}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// normalizeTime drops the monotonic reading and moves t to UTC so values
// returned by Create compare equal to values read back later.
func normalizeTime(t time.Time) time.Time {
	return t.Round(0).UTC()
}
