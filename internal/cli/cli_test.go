package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/storage"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		name     string
		currency model.Currency
		want     string
		amount   float64
	}{
		{name: "small", amount: 450, currency: model.CurrencyUYU, want: "$U 450,00"},
		{name: "thousands", amount: 1234.56, currency: model.CurrencyUYU, want: "$U 1.234,56"},
		{name: "millions", amount: 1234567.8, currency: model.CurrencyUYU, want: "$U 1.234.567,80"},
		{name: "dollars", amount: 15.99, currency: model.CurrencyUSD, want: "US$ 15,99"},
		{name: "exact thousand", amount: 1000, currency: model.CurrencyUSD, want: "US$ 1.000,00"},
		{name: "negative", amount: -300, currency: model.CurrencyUYU, want: "-$U 300,00"},
		{name: "rounding", amount: 0.005, currency: model.CurrencyUSD, want: "US$ 0,01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(tt.amount, tt.currency))
		})
	}
}

func TestFormatMessages(t *testing.T) {
	assert.Contains(t, FormatSuccess("guardado"), "guardado")
	assert.Contains(t, FormatSuccess("guardado"), SuccessIcon)
	assert.Contains(t, FormatError("falló"), ErrorIcon)
	assert.Contains(t, FormatWarning("cuidado"), "cuidado")
	assert.Contains(t, FormatInfo("hola"), "hola")
	assert.Contains(t, FormatTitle("Gastos"), "Gastos")
	assert.Contains(t, RenderBox("Resumen", "3 gastos"), "3 gastos")
}

func TestRenderExpenses(t *testing.T) {
	date := model.NewDate(2024, time.January, 15)
	out := RenderExpenses([]model.ExpenseRecord{
		{Date: &date, Description: "Devoto Super", Amount: 1234.5, Currency: model.CurrencyUYU, Category: model.CategoryFood},
		{Description: "Netflix", Amount: 15.99, Currency: model.CurrencyUSD, Category: model.CategoryEntertainment},
		{Description: "UTE", Amount: 2000, Currency: model.CurrencyUYU, Category: model.CategoryServices},
	})

	assert.Contains(t, out, "15/01/24")
	assert.Contains(t, out, "Devoto Super")
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "$U 1.234,50")
	assert.Contains(t, out, "US$ 15,99")
	assert.Contains(t, out, "US$ 15,99 | $U 3.234,50")
}

func TestRenderTotalsOrder(t *testing.T) {
	out := renderTotals(map[model.Currency]float64{
		"EUR":             1,
		model.CurrencyUYU: 2,
		model.CurrencyUSD: 3,
	})
	assert.Contains(t, out, "US$ 3,00 | $U 2,00 | EUR 1,00")
}

func TestRenderEmpty(t *testing.T) {
	assert.Contains(t, RenderExpenses(nil), "No expenses found")
	assert.Contains(t, RenderStoredExpenses(nil), "No stored expenses")
	assert.Contains(t, RenderCategoryTotals(nil), "No stored expenses")
}

func TestRenderStoredExpenses(t *testing.T) {
	out := RenderStoredExpenses([]storage.StoredExpense{{
		ID:     "a",
		Source: "statement.pdf",
		ExpenseRecord: model.ExpenseRecord{
			Description: "Farmashop",
			Amount:      320,
			Currency:    model.CurrencyUYU,
			Category:    model.CategoryHealth,
		},
	}})

	assert.Contains(t, out, "Farmashop")
	assert.Contains(t, out, "statement.pdf")
	assert.Contains(t, out, "$U 320,00")
}

func TestRenderCategoryTotals(t *testing.T) {
	out := RenderCategoryTotals([]storage.CategoryTotal{
		{Category: model.CategoryFood, Currency: model.CurrencyUYU, Total: 1650, Count: 2},
	})

	assert.Contains(t, out, string(model.CategoryFood))
	assert.Contains(t, out, "$U 1.650,00")
}

func TestNewProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, 2, "Extrayendo")

	require.NoError(t, bar.Add(1))
	require.NoError(t, bar.Add(1))
	assert.True(t, bar.IsFinished())
	assert.Contains(t, buf.String(), "Extrayendo")
}
