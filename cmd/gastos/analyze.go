package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/llm"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/pdftext"
)

// documentExtensions adds images, which only go to providers that read them.
var documentExtensions = func() map[string]bool {
	exts := maps.Clone(inputExtensions)
	for _, ext := range []string{".png", ".jpg", ".jpeg", ".webp"} {
		exts[ext] = true
	}
	return exts
}()

func analyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [files...]",
		Short: "Extract expenses with a language model",
		Long: `Send statements, receipts or free text to the configured language model
and normalize its reply with the extraction pipeline.

PDFs and images are attached as documents when the provider accepts them;
otherwise PDFs are converted to text locally first.

Configure the provider with llm.provider (openai, anthropic, gemini) and an
API key in llm.api_key or the provider's usual environment variable.`,
		RunE: runAnalyze,
	}

	addOutputFlags(cmd)
	cmd.Flags().Bool("save", false, "store the extracted expenses")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	save, _ := cmd.Flags().GetBool("save")

	if len(args) == 0 {
		args = []string{stdinName}
	}
	files, err := collectFiles(args, documentExtensions)
	if err != nil {
		return err
	}

	analyzer, err := newAnalyzer(ctx)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	stdin := cmd.InOrStdin()
	results, err := runFiles(cmd, files, "Analizando documentos...", func(ctx context.Context, path string) (model.ExtractionResult, error) {
		return analyzeInput(ctx, analyzer, path, stdin)
	})
	if err != nil {
		return err
	}

	if save {
		if err := saveResults(cmd, results); err != nil {
			return err
		}
	}
	return writeResults(cmd, results)
}

// analyzeInput routes one input to the analyzer as text or as a document.
func analyzeInput(ctx context.Context, analyzer *llm.Analyzer, path string, stdin io.Reader) (model.ExtractionResult, error) {
	data, err := readInput(path, stdin)
	if err != nil {
		return model.ExtractionResult{}, err
	}

	mimeType := detectMIME(data)
	switch {
	case mimeType == "text/plain":
		return analyzer.Analyze(ctx, string(data)), nil
	case analyzer.SupportsDocument(mimeType):
		return analyzer.AnalyzeDocument(ctx, data, mimeType), nil
	case mimeType == pdftext.MIMEType:
		text, err := pdftext.Extract(ctx, data)
		if err != nil {
			return model.ExtractionResult{}, fmt.Errorf("%s: %w", sourceName(path), err)
		}
		return analyzer.Analyze(ctx, text), nil
	default:
		return analyzer.AnalyzeDocument(ctx, data, mimeType), nil
	}
}

// detectMIME classifies input bytes as PDF, an image type or plain text.
func detectMIME(data []byte) string {
	if pdftext.IsPDF(data) {
		return pdftext.MIMEType
	}
	detected := http.DetectContentType(data)
	if strings.HasPrefix(detected, "image/") {
		return detected
	}
	return "text/plain"
}

func saveResults(cmd *cobra.Command, results []fileResult) error {
	store, cleanup, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	total := 0
	for _, r := range results {
		inserted, err := saveResult(cmd.Context(), store, r.Source, r.Result)
		if err != nil {
			return err
		}
		total += inserted
	}

	fmt.Fprintln(cmd.ErrOrStderr(), cli.FormatSuccess(fmt.Sprintf("Saved %d new expenses", total)))
	return nil
}
