package model

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Category is the label a user picks for a transaction. The persisted values
// are the display names, so they must never be renamed.
type Category string

// Income categories.
const (
	CategorySalary      Category = "Salario"
	CategoryFreelance   Category = "Freelance"
	CategoryInvestment  Category = "Inversiones"
	CategoryGift        Category = "Regalo"
	CategoryOtherIncome Category = "Otro ingreso"
)

// Expense categories.
const (
	CategoryFood          Category = "Comida"
	CategoryTransport     Category = "Transporte"
	CategoryHousing       Category = "Vivienda"
	CategoryUtilities     Category = "Servicios"
	CategoryEntertainment Category = "Entretenimiento"
	CategoryHealth        Category = "Salud"
	CategoryEducation     Category = "Educación"
	CategoryShopping      Category = "Compras"
	CategoryOtherExpense  Category = "Otro gasto"
)

var incomeCategories = []Category{
	CategorySalary,
	CategoryFreelance,
	CategoryInvestment,
	CategoryGift,
	CategoryOtherIncome,
}

var expenseCategories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryHousing,
	CategoryUtilities,
	CategoryEntertainment,
	CategoryHealth,
	CategoryEducation,
	CategoryShopping,
	CategoryOtherExpense,
}

// CategoriesFor returns the categories available for a transaction type in
// display order. Unknown types have no categories.
func CategoriesFor(t TransactionType) []Category {
	var src []Category
	switch t {
	case TypeIncome:
		src = incomeCategories
	case TypeExpense:
		src = expenseCategories
	default:
		return nil
	}
	out := make([]Category, len(src))
	copy(out, src)
	return out
}

// DefaultCategory is the catch-all category for a type.
func DefaultCategory(t TransactionType) Category {
	if t == TypeIncome {
		return CategoryOtherIncome
	}
	return CategoryOtherExpense
}

// ValidFor reports whether c belongs to the category set of t.
func (c Category) ValidFor(t TransactionType) bool {
	for _, candidate := range CategoriesFor(t) {
		if candidate == c {
			return true
		}
	}
	return false
}

// TypeOf returns the transaction type a category belongs to.
func (c Category) TypeOf() (TransactionType, bool) {
	for _, t := range TransactionTypes {
		if c.ValidFor(t) {
			return t, true
		}
	}
	return "", false
}

func (c Category) String() string {
	return string(c)
}

// LookupCategory finds a category of type t by case-insensitive name.
func LookupCategory(t TransactionType, name string) (Category, bool) {
	name = strings.TrimSpace(name)
	for _, c := range CategoriesFor(t) {
		if strings.EqualFold(string(c), name) {
			return c, true
		}
	}
	return "", false
}

// SuggestCategories returns up to limit categories of type t closest to
// input by edit distance, nearest first.
func SuggestCategories(t TransactionType, input string, limit int) []Category {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" || limit <= 0 {
		return nil
	}

	type scored struct {
		category Category
		distance int
	}

	candidates := CategoriesFor(t)
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(input, strings.ToLower(string(c)))
		// Anything further than half the name is noise
		if d > (len([]rune(string(c)))+1)/2 {
			continue
		}
		ranked = append(ranked, scored{category: c, distance: d})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].distance < ranked[j].distance
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]Category, len(ranked))
	for i, r := range ranked {
		out[i] = r.category
	}
	return out
}
