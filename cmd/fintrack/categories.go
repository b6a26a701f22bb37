package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the categories available for each type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			typeFlag, _ := cmd.Flags().GetString("type")
			txnType, err := parseTypeFlag(typeFlag)
			if err != nil {
				return err
			}

			types := model.TransactionTypes
			if txnType != "" {
				types = []model.TransactionType{txnType}
			}

			out := cmd.OutOrStdout()
			for i, t := range types {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s:\n", t)
				for _, c := range model.CategoriesFor(t) {
					marker := ""
					if c == model.DefaultCategory(t) {
						marker = " (default)"
					}
					fmt.Fprintf(out, "  - %s%s\n", c, marker)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringP("type", "t", "", "only list categories for income or expense")

	return cmd
}
