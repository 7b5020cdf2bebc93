package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/extract"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/pdftext"
)

const defaultMinRows = 3

func statementCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statement <file>",
		Short: "Import a card statement",
		Long: `Read a card statement PDF (or its text) and store its purchases.

Rows are parsed locally first. When fewer than --min-rows purchases are
found and a language model is configured, the statement is sent to the
model instead.`,
		Args: cobra.ExactArgs(1),
		RunE: runStatement,
	}

	cmd.Flags().Int("min-rows", defaultMinRows, "minimum local rows before falling back to the language model")
	cmd.Flags().BoolP("dry-run", "d", false, "show the expenses without saving them")
	cmd.Flags().Bool("offline", false, "never call the language model")
	cmd.Flags().StringP("format", "f", "table", "output format (json, table)")
	return cmd
}

func runStatement(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	minRows, _ := cmd.Flags().GetInt("min-rows")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	offline, _ := cmd.Flags().GetBool("offline")

	path := args[0]
	data, err := readInput(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var fallback analyzeFunc
	if !offline {
		if analyzer, err := newAnalyzer(ctx); err == nil {
			defer analyzer.Close()
			fallback = func(ctx context.Context, data []byte) model.ExtractionResult {
				mimeType := detectMIME(data)
				if analyzer.SupportsDocument(mimeType) {
					return analyzer.AnalyzeDocument(ctx, data, mimeType)
				}
				text, err := localText(ctx, data)
				if err != nil {
					return model.FailedResult(err)
				}
				return analyzer.Analyze(ctx, text)
			}
		} else {
			slog.Debug("Language model fallback disabled", "reason", err)
		}
	}

	extractor := extract.NewExtractor(extract.WithLogger(slog.Default()))
	result, err := importStatement(ctx, extractor, data, minRows, fallback)
	if err != nil {
		return err
	}

	source := sourceName(path)
	if !dryRun {
		store, cleanup, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		inserted, err := saveResult(ctx, store, source, result)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(
			fmt.Sprintf("Saved %d new expenses from %s (%d found)", inserted, source, len(result.Expenses))))
	}

	return writeResults(cmd, []fileResult{{Source: source, Result: result}})
}

// analyzeFunc sends a whole statement to a language model.
type analyzeFunc func(ctx context.Context, data []byte) model.ExtractionResult

// importStatement parses a statement locally and falls back to the model
// when the local pass finds fewer than minRows expenses.
func importStatement(ctx context.Context, extractor *extract.Extractor, data []byte, minRows int, fallback analyzeFunc) (model.ExtractionResult, error) {
	text, err := localText(ctx, data)
	if err != nil && fallback == nil {
		return model.ExtractionResult{}, err
	}

	local := model.NewExtractionResult(extract.StrategyNone, nil)
	if err == nil {
		local = extractor.ExtractExpenses(text)
	} else {
		slog.Info("Statement has no readable text", "error", err)
	}

	if len(local.Expenses) >= minRows || fallback == nil {
		slog.Info("Statement parsed locally",
			"expenses", len(local.Expenses),
			"strategy", local.Strategy)
		return local, nil
	}

	slog.Info("Too few local rows, asking the language model",
		"local_expenses", len(local.Expenses),
		"min_rows", minRows)

	remote := fallback(ctx, data)
	if !remote.Success || len(remote.Expenses) < len(local.Expenses) {
		if err != nil {
			return remote, nil
		}
		common.LogWarn("Language model did not improve on the local parse", common.Fields{
			"error":           remote.Error,
			"remote_expenses": len(remote.Expenses),
		})
		return local, nil
	}
	return remote, nil
}

func localText(ctx context.Context, data []byte) (string, error) {
	if pdftext.IsPDF(data) {
		return pdftext.Extract(ctx, data)
	}
	return string(data), nil
}
