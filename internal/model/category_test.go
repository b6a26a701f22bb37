package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategory_ValidFor(t *testing.T) {
	tests := []struct {
		category Category
		txnType  TransactionType
		want     bool
	}{
		{CategorySalary, TypeIncome, true},
		{CategorySalary, TypeExpense, false},
		{CategoryFood, TypeExpense, true},
		{CategoryFood, TypeIncome, false},
		{CategoryOtherIncome, TypeIncome, true},
		{CategoryOtherExpense, TypeExpense, true},
		{Category("Lotería"), TypeIncome, false},
		{CategoryFood, TransactionType("transfer"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category)+"/"+string(tt.txnType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.category.ValidFor(tt.txnType))
		})
	}
}

func TestCategoriesFor(t *testing.T) {
	income := CategoriesFor(TypeIncome)
	expense := CategoriesFor(TypeExpense)

	assert.Len(t, income, 5)
	assert.Len(t, expense, 9)
	assert.Equal(t, CategorySalary, income[0])
	assert.Equal(t, CategoryOtherExpense, expense[len(expense)-1])
	assert.Nil(t, CategoriesFor(TransactionType("bogus")))

	// Callers get a copy
	income[0] = "mutated"
	assert.Equal(t, CategorySalary, CategoriesFor(TypeIncome)[0])
}

func TestCategory_TypeOf(t *testing.T) {
	typ, ok := CategoryHealth.TypeOf()
	assert.True(t, ok)
	assert.Equal(t, TypeExpense, typ)

	typ, ok = CategoryGift.TypeOf()
	assert.True(t, ok)
	assert.Equal(t, TypeIncome, typ)

	_, ok = Category("nope").TypeOf()
	assert.False(t, ok)
}

func TestLookupCategory(t *testing.T) {
	c, ok := LookupCategory(TypeExpense, "  educación ")
	assert.True(t, ok)
	assert.Equal(t, CategoryEducation, c)

	_, ok = LookupCategory(TypeIncome, "Comida")
	assert.False(t, ok)
}

func TestSuggestCategories(t *testing.T) {
	got := SuggestCategories(TypeExpense, "comdia", 1)
	assert.Equal(t, []Category{CategoryFood}, got)

	got = SuggestCategories(TypeExpense, "transprte", 3)
	if assert.NotEmpty(t, got) {
		assert.Equal(t, CategoryTransport, got[0])
	}

	assert.Empty(t, SuggestCategories(TypeIncome, "xyzzy-completely-different", 3))
	assert.Nil(t, SuggestCategories(TypeIncome, "", 3))
	assert.Nil(t, SuggestCategories(TypeIncome, "salario", 0))
}
