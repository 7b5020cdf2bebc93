package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Currency is the ISO code of an expense amount.
type Currency string

// Supported currencies.
const (
	CurrencyUSD Currency = "USD"
	CurrencyUYU Currency = "UYU"
)

// DefaultCurrency is used when no indicator is found in the text.
const DefaultCurrency = CurrencyUYU

// Currencies returns every supported currency.
func Currencies() []Currency {
	return []Currency{CurrencyUSD, CurrencyUYU}
}

// IsValid reports whether c is a supported currency.
func (c Currency) IsValid() bool {
	return c == CurrencyUSD || c == CurrencyUYU
}

// ExpenseRecord is one normalized financial outflow.
type ExpenseRecord struct {
	Date        *Date    `json:"date,omitempty"`
	Description string   `json:"description"`
	Currency    Currency `json:"currency"`
	Category    Category `json:"category"`
	Amount      float64  `json:"amount"`
}

// Hash returns a stable digest used for duplicate detection.
func (e ExpenseRecord) Hash() string {
	date := ""
	if e.Date != nil {
		date = e.Date.Format("2006-01-02")
	}
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		date,
		e.Amount,
		e.Currency,
		strings.ToLower(strings.TrimSpace(e.Description)))
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// ExtractionResult wraps the records recovered from one document.
type ExtractionResult struct {
	Confidence *float64        `json:"confidence,omitempty"`
	Error      string          `json:"error,omitempty"`
	Summary    string          `json:"summary,omitempty"`
	Strategy   string          `json:"-"`
	Expenses   []ExpenseRecord `json:"expenses"`
	Success    bool            `json:"success"`
}

// NewExtractionResult returns a successful result holding expenses.
// A nil slice is replaced by an empty one so it serializes as [].
func NewExtractionResult(strategy string, expenses []ExpenseRecord) ExtractionResult {
	if expenses == nil {
		expenses = []ExpenseRecord{}
	}
	return ExtractionResult{
		Success:  true,
		Strategy: strategy,
		Expenses: expenses,
	}
}

// FailedResult returns a tagged failure for problems detected upstream of
// the extraction pipeline (credentials, provider errors).
func FailedResult(err error) ExtractionResult {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	return ExtractionResult{
		Success:  false,
		Error:    msg,
		Expenses: []ExpenseRecord{},
	}
}

// Total sums the amounts of the result per currency.
func (r ExtractionResult) Total() map[Currency]float64 {
	totals := make(map[Currency]float64, 2)
	for _, e := range r.Expenses {
		totals[e.Currency] += e.Amount
	}
	return totals
}
