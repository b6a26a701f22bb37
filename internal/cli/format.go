package cli

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/fintrack/internal/model"
)

// DateLayout is the dd/mm/yyyy layout used for display and input.
const DateLayout = "02/01/2006"

// FormatNumber renders v the way es-AR does: "." groups thousands, ","
// separates decimals, and at most three decimals are kept.
func FormatNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	rounded := math.Round(v*1000) / 1000
	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	s := strconv.FormatFloat(rounded, 'f', 3, 64)
	intPart, frac, _ := strings.Cut(s, ".")
	frac = strings.TrimRight(frac, "0")

	var b strings.Builder
	if negative {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	if frac != "" {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}

// FormatAmount renders v as currency, e.g. "$52.700".
func FormatAmount(v float64) string {
	return "$" + FormatNumber(v)
}

// FormatSigned renders a transaction amount with "+" for income and "-"
// for expenses.
func FormatSigned(txn model.Transaction) string {
	sign := "-"
	if txn.Type == model.TypeIncome {
		sign = "+"
	}
	return sign + FormatAmount(txn.Amount)
}

// FormatDate renders t as dd/mm/yyyy in loc.
func FormatDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}

// ParseDate reads a dd/mm/yyyy or yyyy-mm-dd date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err == nil {
		return t, nil
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}
