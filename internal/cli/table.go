package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/gastos/internal/model"
	"github.com/Veraticus/gastos/internal/storage"
)

var currencySymbols = map[model.Currency]string{
	model.CurrencyUYU: "$U",
	model.CurrencyUSD: "US$",
}

// FormatAmount renders an amount the way Uruguayan statements print it:
// currency symbol, "." thousands separator and "," decimals.
func FormatAmount(amount float64, currency model.Currency) string {
	fixed := decimal.NewFromFloat(amount).Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	var grouped strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	sign := ""
	if amount < 0 {
		sign = "-"
	}

	symbol, ok := currencySymbols[currency]
	if !ok {
		symbol = string(currency)
	}
	return fmt.Sprintf("%s%s %s,%s", sign, symbol, grouped.String(), frac)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(SubtleStyle).
		Headers(headers...)
}

func cellStyle(numeric func(col int) bool) table.StyleFunc {
	return func(row, col int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return TableHeaderStyle
		case numeric(col):
			return AmountCellStyle
		default:
			return TableCellStyle
		}
	}
}

// RenderExpenses renders records as a table followed by per-currency totals.
func RenderExpenses(records []model.ExpenseRecord) string {
	if len(records) == 0 {
		return FormatInfo("No expenses found")
	}

	const amountCol = 3
	t := newTable("Fecha", "Descripción", "Categoría", "Monto").
		StyleFunc(cellStyle(func(col int) bool { return col == amountCol }))

	for _, e := range records {
		date := "-"
		if e.Date != nil {
			date = e.Date.String()
		}
		t.Row(date, e.Description, string(e.Category), FormatAmount(e.Amount, e.Currency))
	}

	totals := model.ExtractionResult{Expenses: records}.Total()
	return lipgloss.JoinVertical(lipgloss.Left, t.String(), renderTotals(totals))
}

// renderTotals lists the supported currencies first, in their fixed order,
// then anything else alphabetically.
func renderTotals(totals map[model.Currency]float64) string {
	currencies := make([]model.Currency, 0, len(totals))
	for _, c := range model.Currencies() {
		if _, ok := totals[c]; ok {
			currencies = append(currencies, c)
		}
	}
	var others []model.Currency
	for c := range totals {
		if !c.IsValid() {
			others = append(others, c)
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i] < others[j] })
	currencies = append(currencies, others...)

	parts := make([]string, 0, len(currencies))
	for _, c := range currencies {
		parts = append(parts, FormatAmount(totals[c], c))
	}
	return TitleStyle.UnsetMargins().Render("Total: " + strings.Join(parts, " | "))
}

// RenderStoredExpenses renders persisted expenses with their source.
func RenderStoredExpenses(expenses []storage.StoredExpense) string {
	if len(expenses) == 0 {
		return FormatInfo("No stored expenses")
	}

	const amountCol = 3
	t := newTable("Fecha", "Descripción", "Categoría", "Monto", "Origen").
		StyleFunc(cellStyle(func(col int) bool { return col == amountCol }))

	for _, e := range expenses {
		date := "-"
		if e.Date != nil {
			date = e.Date.String()
		}
		t.Row(date, e.Description, string(e.Category), FormatAmount(e.Amount, e.Currency), e.Source)
	}
	return t.String()
}

// RenderCategoryTotals renders the output of a per-category summary.
func RenderCategoryTotals(totals []storage.CategoryTotal) string {
	if len(totals) == 0 {
		return FormatInfo("No stored expenses")
	}

	t := newTable("Categoría", "Moneda", "Gastos", "Total").
		StyleFunc(cellStyle(func(col int) bool { return col >= 2 }))

	for _, ct := range totals {
		t.Row(string(ct.Category), string(ct.Currency), strconv.Itoa(ct.Count), FormatAmount(ct.Total, ct.Currency))
	}
	return lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(ChartIcon+" Gastos por categoría"), t.String())
}
