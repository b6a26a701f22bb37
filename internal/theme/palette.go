package theme

import "github.com/charmbracelet/lipgloss"

// Palette maps colour roles to hex values.
type Palette map[string]string

// Palette keys.
const (
	Background       = "background"
	Surface          = "surface"
	Primary          = "primary"
	PrimaryContainer = "primaryContainer"
	Secondary        = "secondary"
	Tertiary         = "tertiary"
	Income           = "income"
	IncomeRed        = "incomeRed"
	IncomeChipBg     = "incomeChipBg"
	Expense          = "expense"
	ExpenseRed       = "expenseRed"
	ExpenseChipBg    = "expenseChipBg"
	TextPrimary      = "textPrimary"
	TextSecondary    = "textSecondary"
	TextTertiary     = "textTertiary"
	Border           = "border"
	Divider          = "divider"
	Disabled         = "disabled"
	Success          = "success"
	Warning          = "warning"
	Error            = "error"
	Info             = "info"
)

var lightPalette = Palette{
	Background:       "#f5f5f5",
	Surface:          "#ffffff",
	Primary:          "#6200ee",
	PrimaryContainer: "#bb86fc",
	Secondary:        "#03dac6",
	Tertiary:         "#7b5d00",
	Income:           "#4caf50",
	IncomeRed:        "#2e7d32",
	IncomeChipBg:     "#e8f5e9",
	Expense:          "#f44336",
	ExpenseRed:       "#c62828",
	ExpenseChipBg:    "#ffebee",
	TextPrimary:      "#000000",
	TextSecondary:    "#666666",
	TextTertiary:     "#999999",
	Border:           "#e0e0e0",
	Divider:          "#eeeeee",
	Disabled:         "#cccccc",
	Success:          "#4caf50",
	Warning:          "#ff9800",
	Error:            "#f44336",
	Info:             "#2196f3",
}

var darkPalette = Palette{
	Background:       "#121212",
	Surface:          "#1e1e1e",
	Primary:          "#bb86fc",
	PrimaryContainer: "#3700b3",
	Secondary:        "#03dac6",
	Tertiary:         "#c4b900",
	Income:           "#81c784",
	IncomeRed:        "#66bb6a",
	IncomeChipBg:     "#1b5e20",
	Expense:          "#ef5350",
	ExpenseRed:       "#e53935",
	ExpenseChipBg:    "#b71c1c",
	TextPrimary:      "#ffffff",
	TextSecondary:    "#b3b3b3",
	TextTertiary:     "#808080",
	Border:           "#333333",
	Divider:          "#404040",
	Disabled:         "#424242",
	Success:          "#81c784",
	Warning:          "#ffb74d",
	Error:            "#ef5350",
	Info:             "#64b5f6",
}

// LightPalette returns a copy of the light palette.
func LightPalette() Palette {
	return lightPalette.clone()
}

// DarkPalette returns a copy of the dark palette.
func DarkPalette() Palette {
	return darkPalette.clone()
}

// Color returns the lipgloss colour for key.
func (p Palette) Color(key string) lipgloss.Color {
	return lipgloss.Color(p[key])
}

func (p Palette) clone() Palette {
	out := make(Palette, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Styles are the terminal styles derived from a palette.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Income   lipgloss.Style
	Expense  lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Error    lipgloss.Style
	Info     lipgloss.Style
	Header   lipgloss.Style
	Box      lipgloss.Style
}

// NewStyles builds Styles from p.
func NewStyles(p Palette) Styles {
	return Styles{
		// Text styles
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Color(Primary)).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(p.Color(TextSecondary)).
			MarginBottom(1),
		Normal: lipgloss.NewStyle().
			Foreground(p.Color(TextPrimary)),
		Muted: lipgloss.NewStyle().
			Foreground(p.Color(TextTertiary)),

		// Amount styles
		Income: lipgloss.NewStyle().
			Foreground(p.Color(Income)).
			Bold(true),
		Expense: lipgloss.NewStyle().
			Foreground(p.Color(Expense)).
			Bold(true),

		// Status styles
		Success: lipgloss.NewStyle().
			Foreground(p.Color(Success)),
		Warning: lipgloss.NewStyle().
			Foreground(p.Color(Warning)),
		Error: lipgloss.NewStyle().
			Foreground(p.Color(Error)).
			Bold(true),
		Info: lipgloss.NewStyle().
			Foreground(p.Color(Info)),

		// Component styles
		Header: lipgloss.NewStyle().
			Bold(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(p.Color(Divider)),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Color(Border)).
			Padding(1, 2),
	}
}
