package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/storage"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create, list and restore database backups",
		Long: `Manage copies of the database.

Backups live in backup.dir (default: a "backups" directory next to the
database). Import takes an automatic backup before saving; only the most
recent automatic backups are kept.`,
	}

	cmd.AddCommand(backupCreateCmd())
	cmd.AddCommand(backupListCmd())
	cmd.AddCommand(backupRestoreCmd())
	cmd.AddCommand(backupDeleteCmd())

	return cmd
}

func backupCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [ID]",
		Short: "Back up the database",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			id := ""
			if len(args) == 1 {
				id = args[0]
			}

			a, m, err := openBackups(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			info, err := m.Create(cmd.Context(), id, description)
			if err != nil {
				return backupError("could not create backup", err)
			}
			a.printer.Println(a.printer.FormatSuccess(fmt.Sprintf("Backup %s creado (%d transacciones)", info.ID, info.Transactions)))
			return nil
		},
	}

	cmd.Flags().StringP("description", "m", "", "note stored with the backup")

	return cmd
}

func backupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List backups, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, m, err := openBackups(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			backups, err := m.List(cmd.Context())
			if err != nil {
				return backupError("could not list backups", err)
			}
			if len(backups) == 0 {
				a.printer.Println(a.printer.FormatInfo("No hay backups"))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tFECHA\tTRANSACCIONES\tTAMAÑO\tDESCRIPCIÓN")
			for _, b := range backups {
				kind := b.Description
				if b.IsAuto {
					kind = "(auto) " + kind
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s KB\t%s\n",
					b.ID,
					b.CreatedAt.In(a.loc).Format(cli.DateLayout+" 15:04"),
					b.Transactions,
					cli.FormatNumber(float64(b.FileSize)/1024),
					kind)
			}
			return w.Flush()
		},
	}
}

func backupRestoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore ID",
		Short: "Replace the database with a backup",
		Long: `Replace the database with a backup. A backup of the current state is
taken first unless --no-backup is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			noBackup, _ := cmd.Flags().GetBool("no-backup")

			a, m, err := openBackups(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if _, err := m.Get(ctx, args[0]); err != nil {
				return backupError("could not restore backup", err)
			}
			if !noBackup {
				if err := a.autoBackup("restore")(ctx); err != nil {
					return err
				}
			}
			if err := m.Restore(ctx, args[0]); err != nil {
				return backupError("could not restore backup", err)
			}
			a.printer.Println(a.printer.FormatSuccess("Backup " + args[0] + " restaurado"))
			return nil
		},
	}

	cmd.Flags().Bool("no-backup", false, "do not back up the current database first")

	return cmd
}

func backupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete ID",
		Aliases: []string{"rm"},
		Short:   "Delete a backup",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, m, err := openBackups(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := m.Delete(cmd.Context(), args[0]); err != nil {
				return backupError("could not delete backup", err)
			}
			a.printer.Println(a.printer.FormatSuccess("Backup " + args[0] + " eliminado"))
			return nil
		},
	}
}

func openBackups(cmd *cobra.Command) (*app, *storage.BackupManager, error) {
	a, err := openApp(cmd)
	if err != nil {
		return nil, nil, err
	}
	m, err := a.backups()
	if err != nil {
		a.Close()
		return nil, nil, err
	}
	return a, m, nil
}

func backupError(message string, err error) error {
	switch {
	case errors.Is(err, storage.ErrBackupNotFound):
		return common.NewUserError("backup not found", err)
	case errors.Is(err, storage.ErrBackupExists):
		return common.NewUserError("a backup with that ID already exists", err)
	case errors.Is(err, storage.ErrInvalidBackupID):
		return common.NewUserError("backup IDs cannot contain path separators", err)
	default:
		return common.NewUserError(message, err)
	}
}
