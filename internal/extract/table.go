package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/gastos/internal/model"
)

var (
	// tableBlockPattern matches a run of consecutive pipe-delimited lines.
	// Blank lines and narrative text end the block.
	tableBlockPattern = regexp.MustCompile(`(?m)(?:^[ \t]*\|.*\|[ \t]*(?:\r?\n|$))+`)

	separatorCellPattern = regexp.MustCompile(`^:?-{2,}:?$`)
	headerCellPattern    = regexp.MustCompile(`(?i)^(fecha|date|descripci[oó]n|description|detalle|concepto|comercio|monto|importe|amount|moneda|currency|categor[ií]a|category)$`)
	dateCellPattern      = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
	numericCellPattern   = regexp.MustCompile(`(?i)^[-+]?\s*(?:u\s?\$\s?s|us\s?\$|\$\s?u|usd|uyu|\$)?\s*[-+]?\d[\d.,]*\s*(?:usd|uyu|u\$s|\$u|pesos|d[oó]lares)?$`)
)

// ExtractFromTable recovers expenses from markdown tables embedded in text.
// Rows lacking a date, a description or a positive amount are dropped.
func ExtractFromTable(text string) []model.ExpenseRecord {
	return extractFromTable(text, nil)
}

func extractFromTable(text string, logger *slog.Logger) []model.ExpenseRecord {
	var expenses []model.ExpenseRecord

	for _, block := range tableBlockPattern.FindAllString(text, -1) {
		for _, line := range strings.Split(block, "\n") {
			cells := splitTableRow(line)
			if len(cells) == 0 || isSeparatorRow(cells) || isHeaderRow(cells) {
				continue
			}

			record, ok := parseTableRow(cells)
			if !ok {
				loggerOrDefault(logger).Debug("dropping incomplete table row", "row", strings.TrimSpace(line))
				continue
			}
			expenses = append(expenses, record)
		}
	}

	return expenses
}

// splitTableRow returns the trimmed cells of a pipe-delimited line.
func splitTableRow(line string) []string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "|") {
		return nil
	}
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")

	parts := strings.Split(line, "|")
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		cells = append(cells, strings.TrimSpace(p))
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	for _, c := range cells {
		if c != "" && !separatorCellPattern.MatchString(c) {
			return false
		}
	}
	return true
}

func isHeaderRow(cells []string) bool {
	for _, c := range cells {
		if headerCellPattern.MatchString(cleanDescription(c)) {
			return true
		}
	}
	return false
}

// parseTableRow classifies every cell by its shape.
func parseTableRow(cells []string) (model.ExpenseRecord, bool) {
	var (
		record      model.ExpenseRecord
		amountCell  string
		currency    model.Currency
		category    model.Category
		description string
	)

	for _, raw := range cells {
		cell := cleanDescription(raw)
		switch {
		case cell == "":
			continue
		case dateCellPattern.MatchString(cell):
			if record.Date == nil {
				record.Date = model.ParseDatePtr(cell)
			}
		case numericCellPattern.MatchString(cell):
			if amountCell == "" {
				amountCell = cell
			}
		case isCurrencyToken(cell):
			currency = DetectCurrency(cell)
		default:
			if c, ok := model.ParseCategory(cell); ok && description != "" {
				category = c
				continue
			}
			if description == "" {
				description = cell
			}
		}
	}

	record.Amount = ParseAmount(amountCell)
	if record.Date == nil || description == "" || record.Amount <= 0 {
		return model.ExpenseRecord{}, false
	}

	record.Description = description
	record.Currency = currency
	if !record.Currency.IsValid() {
		record.Currency = DetectCurrency(amountCell)
	}
	record.Category = category
	if !record.Category.IsValid() {
		record.Category = AssignCategory(description)
	}
	return record, true
}
