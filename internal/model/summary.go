package model

// Summary is the dashboard aggregate over a set of transactions.
type Summary struct {
	Income   float64
	Expenses float64
	Balance  float64
	Count    int
}

// Summarize totals income and expenses. Balance is income minus expenses.
func Summarize(transactions []Transaction) Summary {
	var s Summary
	for _, txn := range transactions {
		switch txn.Type {
		case TypeIncome:
			s.Income += txn.Amount
		case TypeExpense:
			s.Expenses += txn.Amount
		}
		s.Count++
	}
	s.Balance = s.Income - s.Expenses
	return s
}

// CategoryTotal is the amount accumulated under one category.
type CategoryTotal struct {
	Category Category
	Type     TransactionType
	Total    float64
	Count    int
}

// TotalsByCategory groups transactions by category, preserving the order in
// which each category first appears.
func TotalsByCategory(transactions []Transaction) []CategoryTotal {
	index := make(map[Category]int)
	var totals []CategoryTotal
	for _, txn := range transactions {
		i, ok := index[txn.Category]
		if !ok {
			i = len(totals)
			index[txn.Category] = i
			totals = append(totals, CategoryTotal{Category: txn.Category, Type: txn.Type})
		}
		totals[i].Total += txn.Amount
		totals[i].Count++
	}
	return totals
}
