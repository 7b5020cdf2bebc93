package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Veraticus/gastos/internal/model"
)

const minStatementLineLength = 20

var (
	// statementAmountPattern only accepts European amounts with cents,
	// which keeps card codes and dates out of the amount columns.
	statementAmountPattern = regexp.MustCompile(`-?\d+(?:\.\d{3})*,\d{2}`)
	statementPrefixPattern = regexp.MustCompile(`^\s*(\d{2})\s+(\d{2})\s+(\d{2})\s+(?:(\d{4})\s+)?`)
	statementColumnsStart  = regexp.MustCompile(`\s{4,}-?\d+(?:\.\d{3})*,\d{2}`)
	installmentPattern     = regexp.MustCompile(`\s*\b(\d{1,2}/\d{1,2})\b\s*`)
	paymentRowPattern      = regexp.MustCompile(`^\s*\d{2}\s+\d{2}\s+\d{2}\s+(?:\d{4}\s+)?PAGOS\b`)
)

// statementSummaryRow describes a non-transaction line of a card statement.
type statementSummaryRow struct {
	marker      string
	description string
	expense     bool
	leading     bool // amounts are the first two on the line instead of the last two
	pattern     *regexp.Regexp
}

var statementSummaryRows = []statementSummaryRow{
	{marker: "SALDO DEL ESTADO DE CUENTA ANTERIOR", description: "SALDO ANTERIOR"},
	{marker: "SALDO CONTADO", description: "SALDO FINAL"},
	{marker: "SEGURO DE VIDA SOBRE SALDO", description: "SEGURO DE VIDA", expense: true, leading: true},
	{marker: "PAGOS", description: "PAGOS", pattern: paymentRowPattern},
}

// StatementLine is one parsed row of a credit card statement.
type StatementLine struct {
	Date        *model.Date
	Code        string
	Description string
	Installment string
	Kind        string
	AmountUYU   float64
	AmountUSD   float64
}

// Statement row kinds.
const (
	StatementKindTransaction = "transaction"
	StatementKindBalance     = "balance"
	StatementKindPayment     = "payment"
	StatementKindCharge      = "charge"
)

// ParseStatementLine parses a fixed-layout statement line of the form
// "DD MM YY [CODE] DESCRIPTION [n/m]    amounts". It returns false for
// headers, footers and anything else it does not recognize.
func ParseStatementLine(line string) (StatementLine, bool) {
	line = strings.TrimRight(line, " \t\r")
	if len(line) < minStatementLineLength {
		return StatementLine{}, false
	}

	for _, row := range statementSummaryRows {
		if row.matches(line) {
			return parseSummaryRow(line, row)
		}
	}

	prefix := statementPrefixPattern.FindStringSubmatchIndex(line)
	if prefix == nil {
		return StatementLine{}, false
	}
	rest := line[prefix[1]:]
	cols := statementColumnsStart.FindStringIndex(rest)
	if cols == nil {
		return StatementLine{}, false
	}

	parsed := StatementLine{
		Date: model.ParseDatePtr(fmt.Sprintf("%s/%s/%s",
			line[prefix[2]:prefix[3]], line[prefix[4]:prefix[5]], line[prefix[6]:prefix[7]])),
		Kind: StatementKindTransaction,
	}
	if prefix[8] >= 0 {
		parsed.Code = line[prefix[8]:prefix[9]]
	}

	desc := strings.TrimSpace(rest[:cols[0]])
	if m := installmentPattern.FindStringSubmatch(desc); m != nil {
		parsed.Installment = m[1]
		desc = strings.TrimSpace(installmentPattern.ReplaceAllString(desc, " "))
	}
	parsed.Description = desc

	amounts := statementAmountPattern.FindAllString(rest[cols[0]:], -1)
	if len(amounts) == 0 {
		return StatementLine{}, false
	}
	parsed.AmountUYU = ParseAmount(amounts[len(amounts)-1])
	if len(amounts) > 1 {
		parsed.AmountUSD = ParseAmount(amounts[len(amounts)-2])
	}
	return parsed, true
}

// matches prefers the anchored pattern over a substring match on marker.
func (r statementSummaryRow) matches(line string) bool {
	if r.pattern != nil {
		return r.pattern.MatchString(line)
	}
	return strings.Contains(line, r.marker)
}

func parseSummaryRow(line string, row statementSummaryRow) (StatementLine, bool) {
	amounts := statementAmountPattern.FindAllString(line, -1)
	if len(amounts) < 2 {
		return StatementLine{}, false
	}

	parsed := StatementLine{Description: row.description}
	switch {
	case row.expense:
		parsed.Kind = StatementKindCharge
	case row.description == "PAGOS":
		parsed.Kind = StatementKindPayment
		if m := statementPrefixPattern.FindStringSubmatch(line); m != nil {
			parsed.Date = model.ParseDatePtr(m[1] + "/" + m[2] + "/" + m[3])
		}
	default:
		parsed.Kind = StatementKindBalance
	}

	if row.leading {
		parsed.AmountUYU = ParseAmount(amounts[0])
		parsed.AmountUSD = ParseAmount(amounts[1])
	} else {
		parsed.AmountUYU = ParseAmount(amounts[len(amounts)-2])
		parsed.AmountUSD = ParseAmount(amounts[len(amounts)-1])
	}
	return parsed, true
}

// Expense converts a statement line into an expense record. Balances,
// payments and lines without a positive amount are not expenses.
func (l StatementLine) Expense() (model.ExpenseRecord, bool) {
	if l.Kind != StatementKindTransaction && l.Kind != StatementKindCharge {
		return model.ExpenseRecord{}, false
	}
	if l.Description == "" {
		return model.ExpenseRecord{}, false
	}

	record := model.ExpenseRecord{
		Date:        l.Date,
		Description: l.Description,
		Category:    AssignCategory(l.Description),
	}
	switch {
	case l.AmountUSD > 0:
		record.Amount = l.AmountUSD
		record.Currency = model.CurrencyUSD
	case l.AmountUYU > 0:
		record.Amount = l.AmountUYU
		record.Currency = model.CurrencyUYU
	default:
		return model.ExpenseRecord{}, false
	}
	return record, true
}

// ExtractFromStatement parses every recognizable statement line in text.
func ExtractFromStatement(text string) []model.ExpenseRecord {
	var expenses []model.ExpenseRecord
	for _, line := range strings.Split(text, "\n") {
		parsed, ok := ParseStatementLine(line)
		if !ok {
			continue
		}
		if record, ok := parsed.Expense(); ok {
			expenses = append(expenses, record)
		}
	}
	return expenses
}
