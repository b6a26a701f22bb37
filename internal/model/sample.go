package model

import "time"

// SampleTransactions returns demo data for a fresh database.
func SampleTransactions() []NewTransaction {
	// Noon UTC is the same calendar day in nearly every time zone
	day := func(d int) time.Time {
		return time.Date(2026, time.February, d, 12, 0, 0, 0, time.UTC)
	}
	return []NewTransaction{
		{Amount: 50000, Type: TypeIncome, Description: "Salario de Enero", Category: CategorySalary, Date: day(1)},
		{Amount: 1500, Type: TypeExpense, Description: "Supermercado", Category: CategoryFood, Date: day(5)},
		{Amount: 800, Type: TypeExpense, Description: "Nafta", Category: CategoryTransport, Date: day(10)},
		{Amount: 5000, Type: TypeIncome, Description: "Freelance", Category: CategoryFreelance, Date: day(12)},
	}
}
