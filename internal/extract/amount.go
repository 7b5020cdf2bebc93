package extract

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a numeric literal such as "1.234,56", "U$S 1,234.56"
// or "$U 450" into a float. It returns 0 when the text holds no valid
// number; callers treat 0 as "no amount", never as a real expense.
func ParseAmount(raw string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			return r
		}
		return -1
	}, raw)

	// A dash is only a sign when it leads.
	negative := strings.HasPrefix(cleaned, "-")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	if cleaned == "" {
		return 0
	}

	normalized := normalizeSeparators(cleaned)
	if negative {
		normalized = "-" + normalized
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// normalizeSeparators rewrites s so that '.' is the only (optional) decimal
// separator and thousands separators are removed.
func normalizeSeparators(s string) string {
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// Whichever comes last is the decimal separator.
		if lastComma > lastDot {
			return strings.Replace(strings.ReplaceAll(s, ".", ""), ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")

	case lastComma >= 0:
		trailing := len(s) - lastComma - 1
		if strings.Count(s, ",") == 1 && trailing <= 2 {
			return strings.Replace(s, ",", ".", 1)
		}
		return strings.ReplaceAll(s, ",", "")

	case lastDot >= 0:
		trailing := len(s) - lastDot - 1
		if strings.Count(s, ".") > 1 || trailing == 3 {
			return strings.ReplaceAll(s, ".", "")
		}
		return s
	}

	return s
}
