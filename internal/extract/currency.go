package extract

import (
	"regexp"
	"strings"

	"github.com/Veraticus/gastos/internal/model"
)

// currencyIndicator maps a textual marker to the currency it denotes.
type currencyIndicator struct {
	pattern  *regexp.Regexp
	name     string
	currency model.Currency
}

// Symbols come before word forms within each currency, and every USD
// indicator is tested before any UYU indicator.
var currencyIndicators = []currencyIndicator{
	{name: "u$s", currency: model.CurrencyUSD, pattern: regexp.MustCompile(`u\s?\$\s?s`)},
	{name: "us$", currency: model.CurrencyUSD, pattern: regexp.MustCompile(`(^|[^a-z])us\s?\$`)},
	{name: "u$d", currency: model.CurrencyUSD, pattern: regexp.MustCompile(`u\$d`)},
	{name: "usd", currency: model.CurrencyUSD, pattern: regexp.MustCompile(`\busd\b`)},
	{name: "dólares", currency: model.CurrencyUSD, pattern: regexp.MustCompile(`\bd[oó]lar(es)?\b`)},
	{name: "dollars", currency: model.CurrencyUSD, pattern: regexp.MustCompile(`\bdollars?\b`)},

	{name: "$u", currency: model.CurrencyUYU, pattern: regexp.MustCompile(`\$\s?u\b`)},
	{name: "uyu", currency: model.CurrencyUYU, pattern: regexp.MustCompile(`\buyu\b`)},
	{name: "pesos uruguayos", currency: model.CurrencyUYU, pattern: regexp.MustCompile(`\bpesos uruguayos\b`)},
	{name: "pesos", currency: model.CurrencyUYU, pattern: regexp.MustCompile(`\bpesos?\b`)},
}

// DetectCurrency infers the currency of an amount from the text around it.
// The first matching indicator wins; text without indicators is UYU.
func DetectCurrency(context string) model.Currency {
	lower := strings.ToLower(context)
	for _, ind := range currencyIndicators {
		if ind.pattern.MatchString(lower) {
			return ind.currency
		}
	}
	return model.DefaultCurrency
}

// normalizeCurrency resolves a currency supplied by a model ("usd", "U$S",
// "pesos") and falls back to detection over fallbackContext.
func normalizeCurrency(supplied, fallbackContext string) model.Currency {
	code := model.Currency(strings.ToUpper(strings.TrimSpace(supplied)))
	if code.IsValid() {
		return code
	}
	if strings.TrimSpace(supplied) != "" && hasCurrencyIndicator(supplied) {
		return DetectCurrency(supplied)
	}
	return DetectCurrency(fallbackContext)
}

// hasCurrencyIndicator reports whether text names a currency explicitly.
func hasCurrencyIndicator(text string) bool {
	lower := strings.ToLower(text)
	for _, ind := range currencyIndicators {
		if ind.pattern.MatchString(lower) {
			return true
		}
	}
	return false
}

// isCurrencyToken reports whether a table cell holds only a currency marker.
func isCurrencyToken(cell string) bool {
	lower := strings.ToLower(strings.TrimSpace(cell))
	if lower == "" {
		return false
	}
	for _, ind := range currencyIndicators {
		loc := ind.pattern.FindStringIndex(lower)
		if loc != nil && loc[0] == 0 && loc[1] == len(lower) {
			return true
		}
	}
	return false
}
