package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/extract"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/pdftext"
)

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract [files...]",
		Short: "Extract expenses from text without a language model",
		Long: `Run the offline extraction pipeline over text files, PDFs or stdin.

The pipeline tries, in order: a JSON document, a markdown table, emoji
expense lines, JSON embedded in prose and card statement rows. The first
one that yields records wins.

Examples:
  # A model reply saved to disk
  gastos extract reply.txt

  # Piped input
  pbpaste | gastos extract -

  # Every statement in a directory, as tables
  gastos extract ~/Estados -f table`,
		RunE: runExtract,
	}

	addOutputFlags(cmd)
	return cmd
}

func runExtract(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{stdinName}
	}

	files, err := collectFiles(args, inputExtensions)
	if err != nil {
		return err
	}

	extractor := extract.NewExtractor(extract.WithLogger(slog.Default()))
	stdin := cmd.InOrStdin()

	results, err := runFiles(cmd, files, "Extrayendo gastos...", func(ctx context.Context, path string) (model.ExtractionResult, error) {
		text, err := readText(ctx, path, stdin)
		if err != nil {
			return model.ExtractionResult{}, err
		}
		return extractor.ExtractExpenses(text), nil
	})
	if err != nil {
		return err
	}

	return writeResults(cmd, results)
}

// readText returns the text of an input, converting PDFs locally.
func readText(ctx context.Context, path string, stdin io.Reader) (string, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return "", err
	}
	if pdftext.IsPDF(data) {
		text, err := pdftext.Extract(ctx, data)
		if err != nil {
			return "", fmt.Errorf("%s: %w", sourceName(path), err)
		}
		return text, nil
	}
	return string(data), nil
}
