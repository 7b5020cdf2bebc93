package extract

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/model"
)

func TestExtractExpensesStrategyOrder(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantStrategy string
		wantCount    int
	}{
		{
			name:         "plain json",
			input:        `{"expenses":[{"date":"15/01/24","description":"Devoto Super","amount":450,"currency":"UYU"}]}`,
			wantStrategy: StrategyJSON,
			wantCount:    1,
		},
		{
			name:         "empty json list wins over the rest",
			input:        `{"expenses": []}`,
			wantStrategy: StrategyJSON,
			wantCount:    0,
		},
		{
			name: "broken json falls back to a table",
			input: `{"expenses": [
| Fecha | Descripción | Monto |
|---|---|---|
| 15/01/24 | Devoto | 450 |
| 16/01/24 | UTE | 2.100,00 |`,
			wantStrategy: StrategyTable,
			wantCount:    2,
		},
		{
			name:         "emoji lines",
			input:        "Tus gastos:\n💰 15/01/24 - Devoto - $U 450\n💳 16/01/24 - Netflix - USD 12,99",
			wantStrategy: StrategyEmojiLines,
			wantCount:    2,
		},
		{
			name:         "json embedded in prose",
			input:        `Claro: {"expenses":[{"description":"Taxi","amount":300}]} listo`,
			wantStrategy: StrategyEmbeddedJSON,
			wantCount:    1,
		},
		{
			name: "card statement",
			input: "05 01 24 1234 DEVOTO SUPER          1.234,56\n" +
				"12 01 24      AMAZON PRIME          15,99      0,00",
			wantStrategy: StrategyStatement,
			wantCount:    2,
		},
		{
			name:         "nothing recognizable",
			input:        "No encontré gastos en este documento.",
			wantStrategy: StrategyNone,
			wantCount:    0,
		},
		{
			name:         "empty input",
			input:        "",
			wantStrategy: StrategyNone,
			wantCount:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractExpenses(tt.input)
			assert.True(t, result.Success)
			assert.Empty(t, result.Error)
			assert.Equal(t, tt.wantStrategy, result.Strategy)
			require.NotNil(t, result.Expenses)
			assert.Len(t, result.Expenses, tt.wantCount)
			for _, e := range result.Expenses {
				assert.Positive(t, e.Amount)
				assert.NotEmpty(t, e.Description)
				assert.True(t, e.Currency.IsValid())
				assert.True(t, e.Category.IsValid())
			}
		})
	}
}

func TestExtractExpensesSerialization(t *testing.T) {
	t.Run("records", func(t *testing.T) {
		result := ExtractExpenses(`{"expenses":[{"date":"15/01/24","description":"Devoto Super","amount":450,"currency":"UYU"}]}`)

		data, err := json.Marshal(result)
		require.NoError(t, err)
		assert.JSONEq(t, `{
			"expenses": [{
				"date": "15/01/24",
				"description": "Devoto Super",
				"currency": "UYU",
				"category": "Alimentación",
				"amount": 450
			}],
			"success": true
		}`, string(data))
	})

	t.Run("empty list is serialized", func(t *testing.T) {
		data, err := json.Marshal(ExtractExpenses("hola"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"expenses":[],"success":true}`, string(data))
	})
}

func TestExtractExpensesIsDeterministic(t *testing.T) {
	input := "| 15/01/24 | Farmacia | 1.250,00 |\n| 16/01/24 | Cine | U$S 20 |"

	first, err := json.Marshal(ExtractExpenses(input))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(ExtractExpenses(input))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestExtractExpensesConcurrentUse(t *testing.T) {
	extractor := NewExtractor()
	inputs := []string{
		`{"expenses":[{"description":"Taxi","amount":300}]}`,
		"💰 15/01/24 - Devoto - $U 450",
		"| 15/01/24 | UTE | 2.100 |",
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(input string) {
			defer wg.Done()
			result := extractor.ExtractExpenses(input)
			assert.True(t, result.Success)
			assert.Len(t, result.Expenses, 1)
		}(inputs[i%len(inputs)])
	}
	wg.Wait()
}

type stubStrategy struct {
	name string
	rows []model.ExpenseRecord
}

func (s stubStrategy) Name() string { return s.name }

func (s stubStrategy) Attempt(string) (model.ExtractionResult, bool) {
	if len(s.rows) == 0 {
		return model.ExtractionResult{}, false
	}
	return model.NewExtractionResult(s.name, s.rows), true
}

func TestExtractorWithStrategies(t *testing.T) {
	rows := []model.ExpenseRecord{{Description: "fijo", Amount: 1, Currency: model.CurrencyUYU, Category: model.CategoryOther}}
	extractor := NewExtractor(WithStrategies(
		stubStrategy{name: "empty"},
		stubStrategy{name: "fixed", rows: rows},
	))

	assert.Equal(t, []string{"empty", "fixed"}, extractor.Strategies())

	result := extractor.ExtractExpenses("anything")
	assert.Equal(t, "fixed", result.Strategy)
	assert.Equal(t, rows, result.Expenses)
}

func TestExtractorDefaultChain(t *testing.T) {
	assert.Equal(t, []string{
		StrategyJSON,
		StrategyTable,
		StrategyEmojiLines,
		StrategyEmbeddedJSON,
		StrategyStatement,
	}, NewExtractor().Strategies())
}

func TestExtractorWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	result := NewExtractor(WithLogger(logger)).ExtractExpenses("💰 15/01/24 - Devoto - 450")
	require.Len(t, result.Expenses, 1)

	out := buf.String()
	assert.Contains(t, out, "strategy=json")
	assert.Contains(t, out, "strategy=emoji_lines")
	assert.Contains(t, out, "extraction strategy succeeded")
}

func TestExtractExpensesMixedElements(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "invalid element next to a valid one",
			input: `{"expenses":[{"date":"01/02/24","description":"Devoto","amount":450,"currency":"UYU"},{"description":123,"amount":10}]}`,
		},
		{
			name:  "string confidence",
			input: `{"expenses":[{"date":"01/02/24","description":"Devoto","amount":450,"currency":"UYU"}],"confidence":"alta"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExtractExpenses(tt.input)
			assert.Equal(t, StrategyJSON, result.Strategy)
			require.Len(t, result.Expenses, 1)
			assert.Equal(t, "Devoto", result.Expenses[0].Description)
		})
	}
}

func TestExtractorLoggerReceivesRowDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	extractor := NewExtractor(WithLogger(logger))

	table := "| Fecha | Descripción | Monto |\n|---|---|---|\n| 15/01/24 | Devoto | 450 |\n| | Sin fecha | 10 |"
	result := extractor.ExtractExpenses(table)
	assert.Equal(t, StrategyTable, result.Strategy)
	assert.Contains(t, buf.String(), "dropping incomplete table row")

	buf.Reset()
	result = extractor.ExtractExpenses(`{"expenses":[{"description":"Taxi","amount":300},{"description":123}]}`)
	require.Len(t, result.Expenses, 1)
	assert.Contains(t, buf.String(), "dropping malformed expense element")
}
