package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a few sample transactions",
		Long: `Load sample transactions so the dashboard has something to show.
Running it twice adds the samples twice.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			samples := model.SampleTransactions()
			for _, in := range samples {
				txn, err := a.repo.Create(ctx, in)
				if err != nil {
					return common.NewUserError("could not save sample data", err)
				}
				slog.Debug("Created sample transaction", "id", txn.ID, "description", txn.Description)
			}

			a.printer.Println(a.printer.FormatSuccess(fmt.Sprintf("%d transacciones de ejemplo creadas", len(samples))))
			return nil
		},
	}
}
