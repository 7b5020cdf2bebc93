package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/gastos/internal/batch"
	"github.com/Veraticus/gastos/internal/cli"
	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/config"
	"github.com/Veraticus/gastos/internal/llm"
	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/service"
	"github.com/Veraticus/gastos/internal/storage"
)

// stdinName is the argument that selects standard input.
const stdinName = "-"

// inputExtensions are the files picked up when a directory is given.
var inputExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".json": true,
	".csv":  true,
	".pdf":  true,
}

// fileResult is the JSON shape printed when several inputs are processed.
type fileResult struct {
	Source string                 `json:"source"`
	Result model.ExtractionResult `json:"result"`
}

// collectFiles expands globs and directories into a sorted, de-duplicated
// list of paths. "-" is passed through for stdin.
func collectFiles(args []string, exts map[string]bool) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range args {
		if pattern == stdinName {
			add(stdinName)
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			slog.Warn("No files found matching pattern", "pattern", pattern)
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("failed to stat %s: %w", match, err)
			}
			if !info.IsDir() {
				add(match)
				continue
			}

			entries, err := os.ReadDir(match)
			if err != nil {
				return nil, fmt.Errorf("failed to read directory %s: %w", match, err)
			}
			for _, entry := range entries {
				if entry.IsDir() || !exts[strings.ToLower(filepath.Ext(entry.Name()))] {
					continue
				}
				add(filepath.Join(match, entry.Name()))
			}
		}
	}

	sort.SliceStable(files, func(i, j int) bool {
		// stdin keeps its position at the front
		if files[i] == stdinName || files[j] == stdinName {
			return files[i] == stdinName && files[j] != stdinName
		}
		return files[i] < files[j]
	})

	if len(files) == 0 {
		return nil, common.NewUserError("no input files found", common.ErrUnsupportedInput)
	}
	return files, nil
}

// readInput returns the bytes of a file or of stdin.
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == stdinName {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// sourceName is the label stored with saved expenses.
func sourceName(path string) string {
	if path == stdinName {
		return "stdin"
	}
	return filepath.Base(path)
}

// writeJSON prints results as one document for a single input and as an
// array of {source, result} for several.
func writeJSON(w io.Writer, results []fileResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if len(results) == 1 {
		return enc.Encode(results[0].Result)
	}
	if results == nil {
		results = []fileResult{}
	}
	return enc.Encode(results)
}

// writeTables prints one styled table per input.
func writeTables(w io.Writer, results []fileResult) {
	for _, r := range results {
		fmt.Fprintln(w, cli.FormatTitle(r.Source))
		if !r.Result.Success {
			fmt.Fprintln(w, cli.FormatError(r.Result.Error))
			continue
		}
		fmt.Fprintln(w, cli.RenderExpenses(r.Result.Expenses))
		fmt.Fprintln(w)
	}
}

func writeResults(cmd *cobra.Command, results []fileResult) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		return writeJSON(cmd.OutOrStdout(), results)
	case "table":
		writeTables(cmd.OutOrStdout(), results)
		return nil
	default:
		return fmt.Errorf("%w: output format %q", common.ErrInvalidConfig, format)
	}
}

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("format", "f", "json", "output format (json, table)")
	cmd.Flags().IntP("workers", "w", 4, "files processed in parallel")
	cmd.Flags().Bool("progress", false, "show a progress bar on stderr")
}

// runFiles processes files on the batch runner and returns results in
// input order. A failing file becomes a failed result.
func runFiles(cmd *cobra.Command, files []string, description string, fn func(ctx context.Context, path string) (model.ExtractionResult, error)) ([]fileResult, error) {
	workers, _ := cmd.Flags().GetInt("workers")
	showProgress, _ := cmd.Flags().GetBool("progress")

	opts := batch.Options{Workers: workers}
	if showProgress && len(files) > 1 {
		opts.Progress = cli.NewProgressBar(cmd.ErrOrStderr(), len(files), description)
	}

	outcomes, err := batch.Run(cmd.Context(), files, opts, fn)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(outcomes))
	for i, o := range outcomes {
		result := o.Value
		if o.Err != nil {
			common.LogError(o.Err, "Failed to process input", common.Fields{"file": o.Input})
			result = model.FailedResult(o.Err)
		}
		results[i] = fileResult{Source: sourceName(o.Input), Result: result}
	}
	return results, nil
}

// openStore opens the configured database and applies migrations.
func openStore(ctx context.Context) (service.ExpenseStore, func(), error) {
	dbPath := config.DatabasePath(viper.GetViper())

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cleanup := func() {
		if err := store.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}
	return store, cleanup, nil
}

// newAnalyzer builds the model-backed analyzer from configuration.
func newAnalyzer(ctx context.Context) (*llm.Analyzer, error) {
	cfg, err := config.LoadLLMConfig(viper.GetViper())
	if err != nil {
		return nil, common.NewUserError("language model is not configured", err)
	}
	return llm.NewAnalyzer(ctx, cfg, llm.WithAnalyzerLogger(slog.Default()))
}

// saveResult stores the records of a successful result and logs the import.
func saveResult(ctx context.Context, store service.ExpenseWriter, source string, result model.ExtractionResult) (int, error) {
	rec := storage.ImportRecord{
		Source:   source,
		Strategy: result.Strategy,
		Error:    result.Error,
		Found:    len(result.Expenses),
		Success:  result.Success,
	}

	if result.Success && len(result.Expenses) > 0 {
		inserted, err := store.SaveExpenses(ctx, source, result.Expenses)
		if err != nil {
			return 0, fmt.Errorf("failed to save expenses from %s: %w", source, err)
		}
		rec.Inserted = inserted
	}

	if _, err := store.RecordImport(ctx, rec); err != nil {
		return rec.Inserted, fmt.Errorf("failed to record import of %s: %w", source, err)
	}
	return rec.Inserted, nil
}
