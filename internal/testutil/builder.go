package testutil

import (
	"time"

	"github.com/Veraticus/fintrack/internal/model"
)

// TransactionBuilder builds create requests with a fluent API. Dates
// advance one day per entry unless set with On.
//
// Example:
//
//	seed := testutil.NewTransactionBuilder().
//		Income(50000, "Salario").
//		Expense(1500, "Supermercado").In(model.CategoryFood).
//		Build()
type TransactionBuilder struct {
	next    time.Time
	entries []model.NewTransaction
}

// DefaultStart is the date of the first built entry.
var DefaultStart = time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

// NewTransactionBuilder starts an empty builder.
func NewTransactionBuilder() *TransactionBuilder {
	return &TransactionBuilder{next: DefaultStart}
}

// Income adds an income in the catch-all income category.
func (b *TransactionBuilder) Income(amount float64, description string) *TransactionBuilder {
	return b.add(model.TypeIncome, amount, description)
}

// Expense adds an expense in the catch-all expense category.
func (b *TransactionBuilder) Expense(amount float64, description string) *TransactionBuilder {
	return b.add(model.TypeExpense, amount, description)
}

// In sets the category of the last entry.
func (b *TransactionBuilder) In(category model.Category) *TransactionBuilder {
	if n := len(b.entries); n > 0 {
		b.entries[n-1].Category = category
	}
	return b
}

// On sets the date of the last entry. Later entries continue from it.
func (b *TransactionBuilder) On(date time.Time) *TransactionBuilder {
	if n := len(b.entries); n > 0 {
		b.entries[n-1].Date = date
		b.next = date.AddDate(0, 0, 1)
	}
	return b
}

// WithSampleData appends model.SampleTransactions.
func (b *TransactionBuilder) WithSampleData() *TransactionBuilder {
	b.entries = append(b.entries, model.SampleTransactions()...)
	return b
}

// Build returns the accumulated requests.
func (b *TransactionBuilder) Build() []model.NewTransaction {
	out := make([]model.NewTransaction, len(b.entries))
	copy(out, b.entries)
	return out
}

func (b *TransactionBuilder) add(t model.TransactionType, amount float64, description string) *TransactionBuilder {
	b.entries = append(b.entries, model.NewTransaction{
		Amount:      amount,
		Type:        t,
		Description: description,
		Category:    model.DefaultCategory(t),
		Date:        b.next,
	})
	b.next = b.next.AddDate(0, 0, 1)
	return b
}
