package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/Veraticus/fintrack/internal/cli"
	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/ofx"
	"github.com/Veraticus/fintrack/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from OFX/QFX files",
		Long: `Import transactions from OFX or QFX files exported from your bank.

Deposits become income and debits become expenses. Lines already recorded
(same date, type, amount and description) are skipped.

Examples:
  # Import single file
  fintrack import ~/Downloads/galicia_enero.ofx

  # Import all QFX files in a directory
  fintrack import ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "n", false, "Preview import without saving")
	cmd.Flags().Bool("no-backup", false, "Skip the automatic backup taken before saving")

	return cmd
}

// importResult counts what happened to each statement line.
type importResult struct {
	files      int
	parsed     int
	created    int
	duplicates int
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	noBackup, _ := cmd.Flags().GetBool("no-backup")

	files, err := expandImportPatterns(args)
	if err != nil {
		return err
	}

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	slog.Info("Importing OFX files",
		"file_count", len(files),
		"dry_run", dryRun)

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx := handler.HandleInterrupts(cmd.Context(), "Import", "Transactions imported so far have been saved.")
	defer handler.Stop()

	var backup func(context.Context) error
	if !noBackup {
		backup = a.autoBackup("import")
	}

	result, err := importFiles(ctx, a.repo, files, dryRun, backup, cmd.ErrOrStderr())
	if err != nil {
		if handler.WasInterrupted() {
			return nil
		}
		return err
	}

	p := a.printer
	summary := fmt.Sprintf("%d archivos, %d movimientos leídos, %d duplicados", result.files, result.parsed, result.duplicates)
	if dryRun {
		p.Println(p.FormatInfo(fmt.Sprintf("Simulación: se importarían %d transacciones (%s)", result.created, summary)))
		return nil
	}
	p.Println(p.FormatSuccess(fmt.Sprintf("%d transacciones importadas (%s)", result.created, summary)))
	return nil
}

// expandImportPatterns resolves shell globs the shell did not expand.
func expandImportPatterns(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("invalid pattern %s", pattern), err)
		}
		if len(matches) == 0 {
			// If no glob matches, check if it's a direct file
			if _, statErr := os.Stat(pattern); statErr == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, common.NewUserError("no files found to import", nil)
	}
	return files, nil
}

// importFiles parses every file and stores the entries that are not yet
// recorded. A file that cannot be read or parsed is logged and skipped.
// backup, when set, runs once before the first write.
func importFiles(ctx context.Context, repo service.TransactionRepository, files []string, dryRun bool, backup func(context.Context) error, progress io.Writer) (importResult, error) {
	var result importResult

	existing, err := repo.GetAll(ctx)
	if err != nil {
		return result, common.NewUserError("could not load transactions", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, txn := range existing {
		seen[ofx.DedupeKey(txn.Date, txn.Type, txn.Amount, txn.Description)] = true
	}

	parser := ofx.NewParser()
	var pending []model.NewTransaction
	for _, path := range files {
		entries, parseErr := parseImportFile(ctx, parser, path)
		if parseErr != nil {
			if errors.Is(parseErr, context.Canceled) {
				return result, parseErr
			}
			slog.Error("Failed to import file", "file", path, "error", parseErr)
			continue
		}
		result.files++
		result.parsed += len(entries)

		for _, entry := range entries {
			key := entry.Key()
			if seen[key] {
				result.duplicates++
				continue
			}
			seen[key] = true
			pending = append(pending, entry.Transaction)
		}
	}

	if dryRun || len(pending) == 0 {
		result.created = len(pending)
		return result, nil
	}

	if backup != nil {
		if err := backup(ctx); err != nil {
			return result, err
		}
	}

	bar := progressbar.NewOptions(len(pending),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Guardando transacciones"),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprintln(progress)
		}),
	)
	for _, in := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if _, err := repo.Create(ctx, in); err != nil {
			return result, common.NewUserError("could not save imported transaction", err)
		}
		result.created++
		if err := bar.Add(1); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
	}
	return result, nil
}

func parseImportFile(ctx context.Context, parser *ofx.Parser, path string) ([]ofx.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	entries, err := parser.ParseFile(ctx, f)
	if err != nil {
		return nil, err
	}
	slog.Info("Processed file",
		"file", filepath.Base(path),
		"transactions_found", len(entries))
	return entries, nil
}
