// Package ofx converts OFX/QFX bank and card downloads into expense records.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/gastos/internal/extract"
	"github.com/Veraticus/gastos/internal/model"
)

// Strategy labels results produced from OFX files.
const Strategy = "ofx"

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	leadingDate   = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

// descriptionPrefixes are card processor noise in front of the merchant.
var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"COMPRA CON TARJETA ",
	"COMPRA ",
	"DEBITO AUTOMATICO ",
	"DEB. AUTOMATICO ",
	"POS ",
}

// Result is the outcome of parsing one OFX document.
type Result struct {
	Accounts []string
	Expenses []model.ExpenseRecord
	// Skipped counts credits and zero-amount transactions.
	Skipped int
}

// Parser converts OFX statements.
type Parser struct {
	logger *slog.Logger
}

// NewParser creates a new OFX parser. A nil logger uses slog.Default.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare tag line.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

// ParseFile reads an OFX/QFX document and returns its debits as expenses.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) (*Result, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	result := &Result{}
	accounts := make(map[string]bool)

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok {
			continue
		}
		if stmt.BankAcctFrom.AcctID != "" {
			accounts[string(stmt.BankAcctFrom.AcctID)] = true
		}
		if stmt.BankTranList != nil {
			p.collect(result, stmt.BankTranList.Transactions, stmt.CurDef.String())
		}
	}

	for _, msg := range resp.CreditCard {
		stmt, ok := msg.(*ofxgo.CCStatementResponse)
		if !ok {
			continue
		}
		if stmt.CCAcctFrom.AcctID != "" {
			accounts[string(stmt.CCAcctFrom.AcctID)] = true
		}
		if stmt.BankTranList != nil {
			p.collect(result, stmt.BankTranList.Transactions, stmt.CurDef.String())
		}
	}

	for acct := range accounts {
		result.Accounts = append(result.Accounts, acct)
	}
	sort.Strings(result.Accounts)

	p.logger.Info("Parsed OFX file",
		"expenses", len(result.Expenses),
		"skipped", result.Skipped,
		"accounts", len(result.Accounts))

	return result, nil
}

func (p *Parser) collect(result *Result, txns []ofxgo.Transaction, curDef string) {
	for _, ofxTx := range txns {
		expense, ok := convertTransaction(ofxTx, curDef)
		if !ok {
			result.Skipped++
			continue
		}
		result.Expenses = append(result.Expenses, expense)
	}
}

// convertTransaction maps a debit to an ExpenseRecord. OFX amounts are
// negative for money out; credits are not expenses.
func convertTransaction(ofxTx ofxgo.Transaction, curDef string) (model.ExpenseRecord, bool) {
	amount, _ := ofxTx.TrnAmt.Float64()
	if amount >= 0 {
		return model.ExpenseRecord{}, false
	}

	description := extractDescription(ofxTx)
	if description == "" {
		return model.ExpenseRecord{}, false
	}

	currency := model.Currency(strings.ToUpper(curDef))
	if !currency.IsValid() {
		currency = extract.DetectCurrency(description)
	}

	posted := ofxTx.DtPosted.Time
	date := model.NewDate(posted.Year(), posted.Month(), posted.Day())

	return model.ExpenseRecord{
		Date:        &date,
		Description: description,
		Amount:      -amount,
		Currency:    currency,
		Category:    extract.AssignCategory(description),
	}, true
}

// extractDescription picks the cleanest merchant text available.
func extractDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(leadingDate.ReplaceAllString(name, ""))
}

// isGenericDescription checks if a transaction name carries no merchant.
func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE",
		"COMPRA", "DEBITO", "PAGO":
		return true
	}
	return false
}
