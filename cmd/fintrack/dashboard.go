package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
)

const recentLimit = 5

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show balance, totals per category and recent transactions",
		Args:  cobra.NoArgs,
		RunE:  runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	summary, err := a.repo.Summary(ctx)
	if err != nil {
		return common.NewUserError("could not load balance", err)
	}
	txns, err := a.repo.GetAll(ctx)
	if err != nil {
		return common.NewUserError("could not load transactions", err)
	}

	p := a.printer
	p.Println(p.RenderSummary(summary))

	if totals := model.TotalsByCategory(txns); len(totals) > 0 {
		p.Println("")
		p.Println(p.FormatTitle("Por categoría"))
		p.Println(renderCategoryTotals(p, totals))
	}

	recent := txns
	if len(recent) > recentLimit {
		recent = recent[:recentLimit]
	}
	p.Println("")
	p.Println(p.FormatTitle("Últimas transacciones"))
	p.Println(p.RenderTransactions(recent, cli.TableOptions{Location: a.loc}))
	return nil
}

func renderCategoryTotals(p *cli.Printer, totals []model.CategoryTotal) string {
	styles := p.Styles()
	lines := make([]string, 0, len(totals))
	for _, total := range totals {
		style := styles.Expense
		icon := cli.ExpenseIcon
		if total.Type == model.TypeIncome {
			style = styles.Income
			icon = cli.IncomeIcon
		}
		line := fmt.Sprintf("%s %-16s %s", icon, total.Category, cli.FormatAmount(total.Total))
		lines = append(lines, style.Render(line)+styles.Muted.Render(fmt.Sprintf(" (%d)", total.Count)))
	}
	return strings.Join(lines, "\n")
}
