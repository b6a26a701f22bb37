package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/theme"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "0"},
		{in: 800, want: "800"},
		{in: 1500, want: "1.500"},
		{in: 52700, want: "52.700"},
		{in: 1234567.5, want: "1.234.567,5"},
		{in: 1500.75, want: "1.500,75"},
		{in: 0.1234, want: "0,123"},
		{in: -2300, want: "-2.300"},
		{in: 999.9999, want: "1.000"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatNumber(tt.in))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "$52.700", FormatAmount(52700))
	assert.Equal(t, "+$50.000", FormatSigned(model.Transaction{Type: model.TypeIncome, Amount: 50000}))
	assert.Equal(t, "-$1.500", FormatSigned(model.Transaction{Type: model.TypeExpense, Amount: 1500}))
}

func TestDates(t *testing.T) {
	d := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "05/02/2026", FormatDate(d, time.UTC))

	for _, in := range []string{"05/02/2026", "2026-02-05", " 05/02/2026 "} {
		got, err := ParseDate(in, time.UTC)
		require.NoError(t, err, in)
		assert.Equal(t, d, got)
	}

	_, err := ParseDate("02-05-2026", time.UTC)
	assert.Error(t, err)
}

func TestPrinter(t *testing.T) {
	r := theme.NewResolver(nil, theme.Static(theme.AppearanceDark))
	var buf bytes.Buffer
	p := NewPrinter(&buf, r.Theme())

	txns := []model.Transaction{
		{ID: "a", Type: model.TypeIncome, Amount: 50000, Description: "Salario de Enero", Category: model.CategorySalary, Date: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Type: model.TypeExpense, Amount: 1500, Description: "Supermercado", Category: model.CategoryFood, Date: time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)},
	}

	table := p.RenderTransactions(txns, TableOptions{Location: time.UTC, ShowIDs: true})
	assert.Contains(t, table, "Salario de Enero")
	assert.Contains(t, table, "01/02/2026")
	assert.Contains(t, table, "+$50.000")
	assert.Contains(t, table, "-$1.500")
	assert.Contains(t, table, "b")

	assert.Contains(t, p.RenderTransactions(nil, TableOptions{}), "No hay transacciones")

	summary := p.RenderSummary(model.Summarize(txns))
	assert.Contains(t, summary, "$48.500")
	assert.Contains(t, summary, "Ingresos: $50.000")
	assert.Contains(t, summary, "Gastos: $1.500")

	p.Println(p.FormatSuccess("ok"))
	assert.Contains(t, buf.String(), SuccessIcon+" ok")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Nafta", truncate("Nafta", 10))
	assert.Equal(t, "Educa…", truncate("Educación", 6))
}
