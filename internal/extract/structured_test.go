package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/model"
)

func TestTryParseJSON(t *testing.T) {
	t.Run("single expense without category", func(t *testing.T) {
		input := `{"expenses":[{"date":"01/02/24","description":"Devoto Super","amount":450.0,"currency":"UYU"}]}`

		result, ok := TryParseJSON(input)
		require.True(t, ok)
		require.NotNil(t, result)
		assert.True(t, result.Success)
		assert.Equal(t, StrategyJSON, result.Strategy)
		require.Len(t, result.Expenses, 1)

		e := result.Expenses[0]
		require.NotNil(t, e.Date)
		assert.Equal(t, model.NewDate(2024, time.February, 1), *e.Date)
		assert.Equal(t, "Devoto Super", e.Description)
		assert.InDelta(t, 450.0, e.Amount, 0.001)
		assert.Equal(t, model.CurrencyUYU, e.Currency)
		assert.Equal(t, model.CategoryFood, e.Category)
	})

	t.Run("known category is preserved", func(t *testing.T) {
		input := `{"expenses":[{"date":"01/02/24","description":"Devoto","amount":100,"currency":"UYU","category":"salud"}]}`

		result, ok := TryParseJSON(input)
		require.True(t, ok)
		require.Len(t, result.Expenses, 1)
		assert.Equal(t, model.CategoryHealth, result.Expenses[0].Category)
	})

	t.Run("unknown category is reclassified", func(t *testing.T) {
		input := `{"expenses":[{"description":"Farmacia San Roque","amount":320,"category":"Pharmacy"}]}`

		result, ok := TryParseJSON(input)
		require.True(t, ok)
		require.Len(t, result.Expenses, 1)
		assert.Equal(t, model.CategoryHealth, result.Expenses[0].Category)
		assert.Nil(t, result.Expenses[0].Date)
		assert.Equal(t, model.CurrencyUYU, result.Expenses[0].Currency)
	})

	t.Run("empty list is authoritative", func(t *testing.T) {
		result, ok := TryParseJSON(`{"expenses": []}`)
		require.True(t, ok)
		assert.True(t, result.Success)
		assert.NotNil(t, result.Expenses)
		assert.Empty(t, result.Expenses)
	})

	t.Run("code fences are stripped", func(t *testing.T) {
		input := "```json\n{\"expenses\":[{\"date\":\"2024-03-05\",\"description\":\"Netflix\",\"amount\":12.99,\"currency\":\"USD\"}]}\n```"

		result, ok := TryParseJSON(input)
		require.True(t, ok)
		require.Len(t, result.Expenses, 1)
		assert.Equal(t, "05/03/24", result.Expenses[0].Date.String())
		assert.Equal(t, model.CurrencyUSD, result.Expenses[0].Currency)
		assert.Equal(t, model.CategoryEntertainment, result.Expenses[0].Category)
	})

	t.Run("string amounts and symbol currencies", func(t *testing.T) {
		input := `{"expenses":[
			{"date":"10/01/24","description":"Amazon","amount":"1.234,56","currency":"u$s"},
			{"date":"11/01/24","description":"Kiosco","amount":"80"}
		]}`

		result, ok := TryParseJSON(input)
		require.True(t, ok)
		require.Len(t, result.Expenses, 2)
		assert.InDelta(t, 1234.56, result.Expenses[0].Amount, 0.001)
		assert.Equal(t, model.CurrencyUSD, result.Expenses[0].Currency)
		assert.InDelta(t, 80.0, result.Expenses[1].Amount, 0.001)
		assert.Equal(t, model.CurrencyUYU, result.Expenses[1].Currency)
	})

	t.Run("non positive amounts are dropped", func(t *testing.T) {
		input := `{"expenses":[
			{"description":"Reintegro","amount":-50},
			{"description":"Nada","amount":0},
			{"description":"Sin monto","amount":"abc"},
			{"description":"Sin campo"},
			{"description":"Taxi","amount":250}
		]}`

		result, ok := TryParseJSON(input)
		require.True(t, ok)
		require.Len(t, result.Expenses, 1)
		assert.Equal(t, "Taxi", result.Expenses[0].Description)
		assert.Equal(t, model.CategoryTransport, result.Expenses[0].Category)
	})

	t.Run("confidence and summary are carried", func(t *testing.T) {
		input := `{"expenses":[{"description":"UTE","amount":2100}],"confidence":0.9,"summary":" un gasto "}`

		result, ok := TryParseJSON(input)
		require.True(t, ok)
		require.NotNil(t, result.Confidence)
		assert.InDelta(t, 0.9, *result.Confidence, 0.0001)
		assert.Equal(t, "un gasto", result.Summary)
	})

	t.Run("description is kept verbatim", func(t *testing.T) {
		input := `{"expenses":[{"description":"  **PEDIDOSYA*Burger Club**  ","amount":530}]}`

		result, ok := TryParseJSON(input)
		require.True(t, ok)
		require.Len(t, result.Expenses, 1)
		assert.Equal(t, "PEDIDOSYA*Burger Club", result.Expenses[0].Description)
	})

	t.Run("mistyped element is dropped", func(t *testing.T) {
		input := `{"expenses":[
			{"date":"01/02/24","description":"Devoto","amount":450,"currency":"UYU"},
			{"description":123,"amount":10},
			"suelto"
		]}`

		result, ok := TryParseJSON(input)
		require.True(t, ok)
		require.Len(t, result.Expenses, 1)
		assert.Equal(t, "Devoto", result.Expenses[0].Description)
	})

	t.Run("mistyped confidence and summary are ignored", func(t *testing.T) {
		input := `{"expenses":[{"description":"Devoto","amount":450}],"confidence":"alta","summary":7}`

		result, ok := TryParseJSON(input)
		require.True(t, ok)
		require.Len(t, result.Expenses, 1)
		assert.Nil(t, result.Confidence)
		assert.Empty(t, result.Summary)
	})

	failures := []struct {
		name  string
		input string
	}{
		{name: "not json", input: "Aquí están tus gastos"},
		{name: "empty", input: "   "},
		{name: "missing expenses", input: `{"foo": 1}`},
		{name: "null expenses", input: `{"expenses": null}`},
		{name: "trailing text", input: `{"expenses": []} gracias`},
		{name: "truncated", input: `{"expenses": [{"description": "x"`},
	}
	for _, tt := range failures {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := TryParseJSON(tt.input)
			assert.False(t, ok)
			assert.Nil(t, result)
		})
	}
}

func TestExtractEmbeddedJSON(t *testing.T) {
	t.Run("object inside prose", func(t *testing.T) {
		input := `Claro, aquí está: {"expenses":[{"date":"01/02/24","description":"UTE","amount":"2.100,50","currency":"UYU"}]} ¡Saludos!`

		result, ok := extractEmbeddedJSON(input, nil)
		require.True(t, ok)
		assert.Equal(t, StrategyEmbeddedJSON, result.Strategy)
		require.Len(t, result.Expenses, 1)
		assert.InDelta(t, 2100.5, result.Expenses[0].Amount, 0.001)
		assert.Equal(t, model.CategoryServices, result.Expenses[0].Category)
	})

	t.Run("skips broken candidates", func(t *testing.T) {
		input := `primero {"expenses": [oops] y luego {"expenses": [{"description":"Taxi","amount":300}]}`

		result, ok := extractEmbeddedJSON(input, nil)
		require.True(t, ok)
		require.Len(t, result.Expenses, 1)
		assert.Equal(t, "Taxi", result.Expenses[0].Description)
	})

	t.Run("mistyped fields do not hide valid elements", func(t *testing.T) {
		input := `Resultado: {"expenses":[{"description":"Taxi","amount":300},{"description":false,"amount":1}],"confidence":"alta"} fin`

		result, ok := extractEmbeddedJSON(input, nil)
		require.True(t, ok)
		require.Len(t, result.Expenses, 1)
		assert.Equal(t, "Taxi", result.Expenses[0].Description)
		assert.Nil(t, result.Confidence)
	})

	t.Run("nothing embedded", func(t *testing.T) {
		_, ok := extractEmbeddedJSON("sin datos", nil)
		assert.False(t, ok)
	})
}

func TestCleanMarkdownWrapper(t *testing.T) {
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper("```\n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, cleanMarkdownWrapper(`  {"a":1}  `))
	assert.Equal(t, "```", cleanMarkdownWrapper("```"))
}
