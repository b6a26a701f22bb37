// Package model defines the domain types shared across fintrack.
package model

import (
	"fmt"
	"strings"
	"time"
)

// TransactionType indicates whether money came in or went out.
type TransactionType string

const (
	// TypeIncome represents money received.
	TypeIncome TransactionType = "income"
	// TypeExpense represents money spent.
	TypeExpense TransactionType = "expense"
)

// TransactionTypes lists every valid transaction type.
var TransactionTypes = []TransactionType{TypeIncome, TypeExpense}

// ParseTransactionType narrows a raw string to a TransactionType.
func ParseTransactionType(s string) (TransactionType, error) {
	switch TransactionType(strings.ToLower(strings.TrimSpace(s))) {
	case TypeIncome:
		return TypeIncome, nil
	case TypeExpense:
		return TypeExpense, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// IsValid reports whether t is one of the two known types.
func (t TransactionType) IsValid() bool {
	return t == TypeIncome || t == TypeExpense
}

func (t TransactionType) String() string {
	return string(t)
}

// Transaction is a single recorded income or expense.
type Transaction struct {
	Date        time.Time // Calendar date the user assigned
	CreatedAt   time.Time // When the row was inserted
	ID          string
	Type        TransactionType
	Description string
	Category    Category
	Amount      float64
}

// NewTransaction holds the caller-supplied fields of a transaction.
// ID and CreatedAt are assigned by the repository.
type NewTransaction struct {
	Date        time.Time
	Type        TransactionType
	Description string
	Category    Category
	Amount      float64
}

// TransactionPatch is a partial update. Nil fields are left untouched.
type TransactionPatch struct {
	Amount      *float64
	Type        *TransactionType
	Description *string
	Category    *Category
	Date        *time.Time
}

// IsEmpty reports whether the patch changes nothing.
func (p TransactionPatch) IsEmpty() bool {
	return p.Amount == nil &&
		p.Type == nil &&
		p.Description == nil &&
		p.Category == nil &&
		p.Date == nil
}

// Apply returns a copy of txn with the patch fields applied.
func (p TransactionPatch) Apply(txn Transaction) Transaction {
	if p.Amount != nil {
		txn.Amount = *p.Amount
	}
	if p.Type != nil {
		txn.Type = *p.Type
	}
	if p.Description != nil {
		txn.Description = *p.Description
	}
	if p.Category != nil {
		txn.Category = *p.Category
	}
	if p.Date != nil {
		txn.Date = *p.Date
	}
	return txn
}
