// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/theme"
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	IncomeIcon  = "↑"
	ExpenseIcon = "↓"
	ChartIcon   = "📊"
)

// Printer writes styled output using a resolved theme.
type Printer struct {
	out    io.Writer
	styles theme.Styles
}

// NewPrinter creates a Printer for t.
func NewPrinter(out io.Writer, t theme.Theme) *Printer {
	return &Printer{out: out, styles: t.Styles}
}

// Styles returns the styles in use.
func (p *Printer) Styles() theme.Styles {
	return p.styles
}

// Println writes a line.
func (p *Printer) Println(s string) {
	_, _ = fmt.Fprintln(p.out, s)
}

// FormatSuccess formats a success message with icon.
func (p *Printer) FormatSuccess(message string) string {
	return p.styles.Success.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func (p *Printer) FormatError(message string) string {
	return p.styles.Error.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func (p *Printer) FormatWarning(message string) string {
	return p.styles.Warning.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func (p *Printer) FormatInfo(message string) string {
	return p.styles.Info.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title.
func (p *Printer) FormatTitle(title string) string {
	return p.styles.Title.Render(title)
}

// RenderBox renders content in a styled box.
func (p *Printer) RenderBox(title, content string) string {
	boxTitle := p.styles.Title.
		UnsetMargins().
		Render(title)

	return p.styles.Box.Render(lipgloss.JoinVertical(lipgloss.Left, boxTitle, content))
}

// FormatTransactionAmount colours a signed amount by type.
func (p *Printer) FormatTransactionAmount(txn model.Transaction) string {
	if txn.Type == model.TypeIncome {
		return p.styles.Income.Render(FormatSigned(txn))
	}
	return p.styles.Expense.Render(FormatSigned(txn))
}

// RenderSummary renders the balance card.
func (p *Printer) RenderSummary(s model.Summary) string {
	balanceStyle := p.styles.Income
	if s.Balance < 0 {
		balanceStyle = p.styles.Expense
	}

	lines := []string{
		balanceStyle.Render(FormatAmount(s.Balance)),
		"",
		p.styles.Income.Render(IncomeIcon + " Ingresos: " + FormatAmount(s.Income)),
		p.styles.Expense.Render(ExpenseIcon + " Gastos: " + FormatAmount(s.Expenses)),
		p.styles.Muted.Render(fmt.Sprintf("%d transacciones", s.Count)),
	}
	return p.RenderBox(ChartIcon+" Balance Total", strings.Join(lines, "\n"))
}

// RenderTransactions renders transactions as a table, one per row.
func (p *Printer) RenderTransactions(txns []model.Transaction, opts TableOptions) string {
	if len(txns) == 0 {
		return p.styles.Muted.Render("No hay transacciones")
	}

	header := fmt.Sprintf("%-10s  %-28s  %-16s  %s", "Fecha", "Descripción", "Categoría", "Monto")
	rows := []string{p.styles.Header.Render(header)}
	for _, txn := range txns {
		row := fmt.Sprintf("%-10s  %-28s  %-16s  ",
			FormatDate(txn.Date, opts.Location),
			truncate(txn.Description, 28),
			truncate(string(txn.Category), 16))
		row += p.FormatTransactionAmount(txn)
		if opts.ShowIDs {
			row += "  " + p.styles.Muted.Render(txn.ID)
		}
		rows = append(rows, row)
	}
	return strings.Join(rows, "\n")
}

// TableOptions controls RenderTransactions.
type TableOptions struct {
	Location *time.Location
	ShowIDs  bool
}

// RenderTransaction renders one transaction in detail.
func (p *Printer) RenderTransaction(txn model.Transaction, loc *time.Location) string {
	lines := []string{
		p.FormatTransactionAmount(txn),
		"Tipo:       " + typeLabel(txn.Type),
		"Categoría:  " + string(txn.Category),
		"Fecha:      " + FormatDate(txn.Date, loc),
		p.styles.Muted.Render("ID: " + txn.ID),
	}
	return p.RenderBox(txn.Description, strings.Join(lines, "\n"))
}

func typeLabel(t model.TransactionType) string {
	if t == model.TypeIncome {
		return "Ingreso"
	}
	return "Gasto"
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
