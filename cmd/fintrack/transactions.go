package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/form"
	"github.com/Veraticus/fintrack/internal/model"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Long: `Record a new transaction.

Examples:
  fintrack add --type income --amount 50000 --description "Salario de Enero" --category Salario
  fintrack add --type expense --amount 1500,50 --description Supermercado --category comida --date 05/02/2026`,
		Args: cobra.NoArgs,
		RunE: runAdd,
	}

	cmd.Flags().StringP("type", "t", "", "transaction type (income, expense)")
	cmd.Flags().StringP("amount", "a", "", "amount, a comma may be used as decimal separator")
	cmd.Flags().StringP("description", "d", "", "what the transaction was for")
	cmd.Flags().StringP("category", "c", "", "category name (see 'fintrack categories')")
	cmd.Flags().String("date", "", "date as dd/mm/yyyy or yyyy-mm-dd (default: today)")

	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	txnType, _ := cmd.Flags().GetString("type")
	amount, _ := cmd.Flags().GetString("amount")
	description, _ := cmd.Flags().GetString("description")
	category, _ := cmd.Flags().GetString("category")
	dateFlag, _ := cmd.Flags().GetString("date")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	date, err := parseDateFlag(dateFlag, a.loc)
	if err != nil {
		return err
	}

	in, err := form.Validate(form.Input{
		Date:        date,
		Amount:      amount,
		Type:        txnType,
		Description: description,
		Category:    category,
	})
	if err != nil {
		return validationError(err, txnType, category)
	}

	txn, err := a.repo.Create(cmd.Context(), in)
	if err != nil {
		return common.NewUserError("could not save transaction", err)
	}

	a.printer.Println(a.printer.FormatSuccess("Transacción guardada"))
	a.printer.Println(a.printer.RenderTransaction(*txn, a.loc))
	return nil
}

func listCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List transactions, newest first",
		Args:    cobra.NoArgs,
		RunE:    runList,
	}

	cmd.Flags().StringP("type", "t", "", "only show income or expense")
	cmd.Flags().String("from", "", "first date to include (dd/mm/yyyy)")
	cmd.Flags().String("to", "", "last date to include (dd/mm/yyyy)")
	cmd.Flags().Bool("ids", false, "show transaction IDs")

	return cmd
}

func runList(cmd *cobra.Command, _ []string) error {
	typeFlag, _ := cmd.Flags().GetString("type")
	fromFlag, _ := cmd.Flags().GetString("from")
	toFlag, _ := cmd.Flags().GetString("to")
	showIDs, _ := cmd.Flags().GetBool("ids")

	txnType, err := parseTypeFlag(typeFlag)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	var txns []model.Transaction
	switch {
	case fromFlag != "" || toFlag != "":
		start, end, rangeErr := parseRangeFlags(fromFlag, toFlag, a.loc)
		if rangeErr != nil {
			return rangeErr
		}
		txns, err = a.repo.GetByDateRange(ctx, start, end)
		if err == nil && txnType != "" {
			txns = filterByType(txns, txnType)
		}
	case txnType != "":
		txns, err = a.repo.GetByType(ctx, txnType)
	default:
		txns, err = a.repo.GetAll(ctx)
	}
	if err != nil {
		return common.NewUserError("could not load transactions", err)
	}

	a.printer.Println(a.printer.RenderTransactions(txns, cli.TableOptions{
		Location: a.loc,
		ShowIDs:  showIDs,
	}))
	return nil
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			txn, err := a.findTransaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printer.Println(a.printer.RenderTransaction(*txn, a.loc))
			return nil
		},
	}
}

func updateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change fields of a transaction",
		Long: `Change one or more fields of a transaction. Only the flags you pass are
changed. Switching the type requires a category of the new type.

Example:
  fintrack update 0192f1c4-... --amount 1800 --category Compras`,
		Args: cobra.ExactArgs(1),
		RunE: runUpdate,
	}

	cmd.Flags().StringP("type", "t", "", "new type (income, expense)")
	cmd.Flags().StringP("amount", "a", "", "new amount")
	cmd.Flags().StringP("description", "d", "", "new description")
	cmd.Flags().StringP("category", "c", "", "new category")
	cmd.Flags().String("date", "", "new date (dd/mm/yyyy)")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	current, err := a.findTransaction(ctx, args[0])
	if err != nil {
		return err
	}

	var in form.PatchInput
	flags := cmd.Flags()
	if flags.Changed("amount") {
		raw, _ := flags.GetString("amount")
		amount, parseErr := form.ParseAmount(raw)
		if parseErr != nil {
			return common.NewUserError(form.MsgAmount, parseErr)
		}
		in.Amount = &amount
	}
	if flags.Changed("type") {
		value, _ := flags.GetString("type")
		in.Type = &value
	}
	if flags.Changed("description") {
		value, _ := flags.GetString("description")
		in.Description = &value
	}
	if flags.Changed("category") {
		value, _ := flags.GetString("category")
		in.Category = &value
	}
	if flags.Changed("date") {
		value, _ := flags.GetString("date")
		date, dateErr := cli.ParseDate(value, a.loc)
		if dateErr != nil {
			return common.NewUserError(form.MsgDate, dateErr)
		}
		in.Date = &date
	}

	patch, err := form.ValidatePatch(in, *current)
	if err != nil {
		targetType := string(current.Type)
		if in.Type != nil {
			targetType = *in.Type
		}
		category := ""
		if in.Category != nil {
			category = *in.Category
		}
		return validationError(err, targetType, category)
	}

	txn, err := a.repo.Update(ctx, current.ID, patch)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("Transacción %s no encontrada", current.ID), err)
		}
		return common.NewUserError("could not update transaction", err)
	}

	a.printer.Println(a.printer.FormatSuccess("Transacción actualizada"))
	a.printer.Println(a.printer.RenderTransaction(*txn, a.loc))
	return nil
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a transaction",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.repo.Delete(cmd.Context(), args[0]); err != nil {
				return common.NewUserError("could not delete transaction", err)
			}
			a.printer.Println(a.printer.FormatSuccess("Transacción eliminada"))
			return nil
		},
	}
}

// validationError turns a form failure into a user error, suggesting close
// category names when the category did not match.
func validationError(err error, txnType, category string) error {
	var vErr *form.ValidationError
	if !errors.As(err, &vErr) {
		return common.NewUserError("invalid transaction", err)
	}

	msg := vErr.Message
	if vErr.Field == "category" && category != "" {
		if t, parseErr := model.ParseTransactionType(txnType); parseErr == nil {
			if suggestions := model.SuggestCategories(t, category, 3); len(suggestions) > 0 {
				names := make([]string, len(suggestions))
				for i, s := range suggestions {
					names[i] = string(s)
				}
				msg += ". ¿Quisiste decir " + strings.Join(names, ", ") + "?"
			}
		}
	}
	return common.NewUserError(msg, err)
}

func parseDateFlag(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		now := time.Now().In(loc)
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc), nil
	}
	date, err := cli.ParseDate(value, loc)
	if err != nil {
		return time.Time{}, common.NewUserError(form.MsgDate, err)
	}
	return date, nil
}

// parseRangeFlags turns --from/--to into inclusive bounds. The end date
// covers its whole day; a missing bound leaves that side open.
func parseRangeFlags(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Date(9999, time.December, 31, 23, 59, 59, 0, time.UTC)

	if from != "" {
		t, err := cli.ParseDate(from, loc)
		if err != nil {
			return start, end, common.NewUserError("invalid --from date", err)
		}
		start = t
	}
	if to != "" {
		t, err := cli.ParseDate(to, loc)
		if err != nil {
			return start, end, common.NewUserError("invalid --to date", err)
		}
		end = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if end.Before(start) {
		return start, end, common.NewUserError("--to is before --from", nil)
	}
	return start, end, nil
}

func filterByType(txns []model.Transaction, t model.TransactionType) []model.Transaction {
	out := txns[:0]
	for _, txn := range txns {
		if txn.Type == t {
			out = append(out, txn)
		}
	}
	return out
}
