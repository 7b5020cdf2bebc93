package extract

import (
	"log/slog"

	"github.com/Veraticus/gastos/internal/model"
)

// Strategy names, reported in ExtractionResult.Strategy.
const (
	StrategyJSON         = "json"
	StrategyTable        = "markdown_table"
	StrategyEmojiLines   = "emoji_lines"
	StrategyEmbeddedJSON = "embedded_json"
	StrategyStatement    = "statement_lines"
	StrategyNone         = "none"
)

// Strategy is one way of recovering expenses from unstructured text.
// Attempt reports ok when its result is authoritative and the chain should
// stop; the records are already normalized.
type Strategy interface {
	Name() string
	Attempt(text string) (result model.ExtractionResult, ok bool)
}

// Extractor runs strategies in order until one of them succeeds.
// It holds no mutable state and is safe for concurrent use. A nil logger
// means slog.Default at call time.
type Extractor struct {
	logger     *slog.Logger
	strategies []Strategy
	custom     bool
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for strategy diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStrategies replaces the default chain.
func WithStrategies(strategies ...Strategy) Option {
	return func(e *Extractor) {
		e.strategies = strategies
		e.custom = true
	}
}

// NewExtractor returns an Extractor using DefaultStrategies unless
// overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	if !e.custom {
		e.strategies = defaultStrategies(e.logger)
	}
	return e
}

// DefaultStrategies is the fallback chain in priority order.
func DefaultStrategies() []Strategy {
	return defaultStrategies(nil)
}

// defaultStrategies builds the chain with row-level diagnostics going to
// logger.
func defaultStrategies(logger *slog.Logger) []Strategy {
	return []Strategy{
		jsonStrategy{logger: logger},
		rowStrategy{name: StrategyTable, extract: func(text string) []model.ExpenseRecord {
			return extractFromTable(text, logger)
		}},
		rowStrategy{name: StrategyEmojiLines, extract: ExtractFromEmojiLines},
		embeddedJSONStrategy{logger: logger},
		rowStrategy{name: StrategyStatement, extract: ExtractFromStatement},
	}
}

// Strategies returns the names of the configured chain, in order.
func (e *Extractor) Strategies() []string {
	names := make([]string, 0, len(e.strategies))
	for _, s := range e.strategies {
		names = append(names, s.Name())
	}
	return names
}

// ExtractExpenses turns raw model output or statement text into expenses.
// It never fails: text without recognizable structure yields a successful
// result with no expenses.
func (e *Extractor) ExtractExpenses(raw string) model.ExtractionResult {
	logger := loggerOrDefault(e.logger)
	for _, s := range e.strategies {
		result, ok := s.Attempt(raw)
		if !ok {
			logger.Debug("extraction strategy found nothing", "strategy", s.Name())
			continue
		}
		logger.Debug("extraction strategy succeeded",
			"strategy", s.Name(),
			"expenses", len(result.Expenses))
		return result
	}
	return model.NewExtractionResult(StrategyNone, nil)
}

// ExtractExpenses runs the default chain.
func ExtractExpenses(raw string) model.ExtractionResult {
	return defaultExtractor.ExtractExpenses(raw)
}

var defaultExtractor = NewExtractor()

// jsonStrategy accepts any well-formed expenses document, including one
// with an empty list: the model explicitly found nothing.
type jsonStrategy struct {
	logger *slog.Logger
}

func (jsonStrategy) Name() string { return StrategyJSON }

func (s jsonStrategy) Attempt(text string) (model.ExtractionResult, bool) {
	result, ok := tryParseJSON(text, s.logger)
	if !ok {
		return model.ExtractionResult{}, false
	}
	return *result, true
}

type embeddedJSONStrategy struct {
	logger *slog.Logger
}

func (embeddedJSONStrategy) Name() string { return StrategyEmbeddedJSON }

func (s embeddedJSONStrategy) Attempt(text string) (model.ExtractionResult, bool) {
	result, ok := extractEmbeddedJSON(text, s.logger)
	if !ok {
		return model.ExtractionResult{}, false
	}
	return *result, true
}

// rowStrategy adapts a row extractor; it succeeds with at least one row.
type rowStrategy struct {
	extract func(string) []model.ExpenseRecord
	name    string
}

func (s rowStrategy) Name() string { return s.name }

func (s rowStrategy) Attempt(text string) (model.ExtractionResult, bool) {
	rows := s.extract(text)
	if len(rows) == 0 {
		return model.ExtractionResult{}, false
	}
	return model.NewExtractionResult(s.name, rows), true
}

// loggerOrDefault resolves a nil logger to slog.Default at call time.
func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
