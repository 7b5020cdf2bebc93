package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Veraticus/gastos/internal/common"
	"github.com/Veraticus/gastos/internal/extract"
	"github.com/Veraticus/gastos/internal/model"
)

// Analyzer sends documents to a provider and runs the reply through the
// extraction pipeline. It is safe for concurrent use.
type Analyzer struct {
	client        Client
	extractor     *extract.Extractor
	cache         *responseCache
	limiter       *rateLimiter
	logger        *slog.Logger
	model         string
	retry         common.RetryOptions
	maxInputChars int
}

// AnalyzerOption configures an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithAnalyzerLogger sets the logger.
func WithAnalyzerLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClient uses client instead of building one from the config.
func WithClient(client Client) AnalyzerOption {
	return func(a *Analyzer) {
		a.client = client
	}
}

// WithExtractor replaces the default extraction chain.
func WithExtractor(extractor *extract.Extractor) AnalyzerOption {
	return func(a *Analyzer) {
		if extractor != nil {
			a.extractor = extractor
		}
	}
}

// NewAnalyzer builds an Analyzer for cfg. It fails with an error wrapping
// common.ErrMissingConfig when no provider or API key is configured.
func NewAnalyzer(ctx context.Context, cfg Config, opts ...AnalyzerOption) (*Analyzer, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	retryDelay := cfg.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}
	maxInput := cfg.MaxInputChars
	if maxInput <= 0 {
		maxInput = DefaultMaxInputChars
	}

	a := &Analyzer{
		extractor: extract.NewExtractor(),
		logger:    slog.Default(),
		model:     cfg.Provider + "/" + cfg.Model,
		retry: common.RetryOptions{
			MaxAttempts:  maxRetries,
			InitialDelay: retryDelay,
			MaxDelay:     30 * retryDelay,
			Multiplier:   2.0,
		},
		maxInputChars: maxInput,
	}
	for _, opt := range opts {
		opt(a)
	}

	if a.client == nil {
		client, err := NewClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.client = client
	}

	a.cache = newResponseCache(cfg.CacheTTL)
	a.limiter = newRateLimiter(cfg.RateLimit)
	return a, nil
}

// Close releases background resources.
func (a *Analyzer) Close() {
	a.cache.Close()
}

// SupportsDocument reports whether the provider accepts mimeType documents
// directly. Callers convert other inputs to text first.
func (a *Analyzer) SupportsDocument(mimeType string) bool {
	dc, ok := a.client.(DocumentClient)
	return ok && dc.SupportsDocument(mimeType)
}

// Analyze extracts expenses from document text. Provider failures are
// reported in the result, never as a Go error.
func (a *Analyzer) Analyze(ctx context.Context, text string) model.ExtractionResult {
	if strings.TrimSpace(text) == "" {
		return model.NewExtractionResult(extract.StrategyNone, nil)
	}

	truncated := truncateRunes(text, a.maxInputChars)
	if len(truncated) < len(text) {
		a.logger.Debug("input truncated",
			"chars", a.maxInputChars,
			"dropped_bytes", len(text)-len(truncated))
	}

	return a.run(ctx, Request{
		System: SystemPrompt(),
		Prompt: BuildPrompt(truncated),
	})
}

// AnalyzeDocument sends a binary document (for example a PDF statement) to
// providers that read documents natively.
func (a *Analyzer) AnalyzeDocument(ctx context.Context, data []byte, mimeType string) model.ExtractionResult {
	if len(data) == 0 {
		return model.NewExtractionResult(extract.StrategyNone, nil)
	}
	if !a.SupportsDocument(mimeType) {
		return model.FailedResult(fmt.Errorf("%w: provider does not accept %s documents", common.ErrUnsupportedInput, mimeType))
	}

	return a.run(ctx, Request{
		System:   SystemPrompt(),
		Prompt:   DocumentPrompt,
		Document: data,
		MIMEType: mimeType,
	})
}

func (a *Analyzer) run(ctx context.Context, req Request) model.ExtractionResult {
	reply, err := a.complete(ctx, req)
	if err != nil {
		a.logger.Error("llm request failed", "error", err)
		return model.FailedResult(err)
	}

	result := a.extractor.ExtractExpenses(reply)
	a.logger.Debug("llm reply extracted",
		"strategy", result.Strategy,
		"expenses", len(result.Expenses))
	return result
}

func (a *Analyzer) complete(ctx context.Context, req Request) (string, error) {
	key := cacheKey(a.model, req)
	if reply, ok := a.cache.get(key); ok {
		a.logger.Debug("llm cache hit")
		return reply, nil
	}

	var reply string
	err := common.WithRetry(ctx, func() error {
		if err := a.limiter.wait(ctx); err != nil {
			return &common.RetryableError{Err: err, Retryable: false}
		}
		var callErr error
		reply, callErr = a.client.Complete(ctx, req)
		return callErr
	}, a.retry)
	if err != nil {
		return "", fmt.Errorf("llm completion failed: %w", err)
	}

	a.cache.set(key, reply)
	return reply, nil
}
