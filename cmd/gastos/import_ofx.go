package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/ofx"
)

var ofxExtensions = map[string]bool{".ofx": true, ".qfx": true}

func importOFXCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-ofx [files...]",
		Short: "Import debits from OFX/QFX files",
		Long: `Import outflows from OFX or QFX files exported from your bank.

Debits become expenses with a positive amount. The currency comes from the
statement when it is USD or UYU and the category from the description.

Examples:
  gastos import-ofx ~/Descargas/itau_enero.ofx
  gastos import-ofx ~/Descargas/*.qfx --dry-run`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImportOFX,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "preview the import without saving")
	cmd.Flags().BoolP("verbose", "v", false, "print every imported expense")
	return cmd
}

func runImportOFX(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	verbose, _ := cmd.Flags().GetBool("verbose")

	files, err := collectFiles(args, ofxExtensions)
	if err != nil {
		return err
	}

	slog.Info("Importing OFX files", "file_count", len(files), "dry_run", dryRun)

	parser := ofx.NewParser(slog.Default())
	out := cmd.OutOrStdout()

	var all []model.ExpenseRecord
	results := make([]fileResult, 0, len(files))
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			slog.Error("Failed to open file", "file", path, "error", err)
			continue
		}

		parsed, err := parser.ParseFile(ctx, f)
		_ = f.Close()
		if err != nil {
			slog.Error("Failed to parse OFX file", "file", path, "error", err)
			results = append(results, fileResult{Source: filepath.Base(path), Result: model.FailedResult(err)})
			continue
		}

		common.LogInfo("Processed file", common.Fields{
			"file":            filepath.Base(path),
			"accounts":        len(parsed.Accounts),
			"expenses":        len(parsed.Expenses),
			"skipped_credits": parsed.Skipped,
		})

		result := model.NewExtractionResult(ofx.Strategy, parsed.Expenses)
		results = append(results, fileResult{Source: filepath.Base(path), Result: result})
		all = append(all, parsed.Expenses...)
	}

	if verbose {
		fmt.Fprintln(out, cli.RenderExpenses(all))
	}

	if dryRun {
		fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Dry run: %d expenses would be imported", len(all))))
		return nil
	}

	store, cleanup, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	inserted := 0
	for _, r := range results {
		n, err := saveResult(ctx, store, r.Source, r.Result)
		if err != nil {
			return err
		}
		inserted += n
	}

	summary := fmt.Sprintf("Files: %d\nExpenses found: %d\nNew: %d\nDuplicates skipped: %d",
		len(files), len(all), inserted, len(all)-inserted)
	fmt.Fprintln(out, cli.RenderBox(cli.SuccessIcon+" OFX import complete", summary))
	return nil
}
