package extract

import (
	"regexp"
	"strings"

	"github.com/Veraticus/gastos/internal/model"
)

// moneyMarkers are the emoji that models put in front of expense lines.
var moneyMarkers = []string{"💰", "💵", "💸", "💳", "🧾", "🛒", "🛍", "⛽", "🍔", "🏠", "📅", "▪", "•"}

// emojiLinePattern captures "date - description - amount [currency]".
var emojiLinePattern = regexp.MustCompile(
	`(\d{1,2}/\d{1,2}/\d{2,4})\s*[-–—:|]\s*(.+?)\s*[-–—:|]\s*` +
		`((?i:u\s?\$\s?s|us\s?\$|\$\s?u|usd|uyu|\$)?\s*-?\d[\d.,]*)` +
		`(?:\s*\(?((?i:usd|uyu|u\$s|\$u|pesos|d[oó]lares))\)?)?\s*$`)

// ExtractFromEmojiLines recovers expenses from single-line entries such as
// "💰 15/01/24 - Devoto Super - $U 450,00".
func ExtractFromEmojiLines(text string) []model.ExpenseRecord {
	var expenses []model.ExpenseRecord

	for _, line := range strings.Split(text, "\n") {
		if !hasMoneyMarker(line) {
			continue
		}

		// Emphasis markers would otherwise end up inside the captures.
		plain := strings.TrimSpace(strings.ReplaceAll(line, "**", ""))
		m := emojiLinePattern.FindStringSubmatch(plain)
		if m == nil {
			continue
		}

		amount := ParseAmount(m[3])
		if amount <= 0 {
			continue
		}

		description := cleanDescription(m[2])
		if description == "" {
			continue
		}

		expenses = append(expenses, model.ExpenseRecord{
			Date:        model.ParseDatePtr(m[1]),
			Description: description,
			Amount:      amount,
			Currency:    DetectCurrency(m[3] + " " + m[4]),
			Category:    AssignCategory(description),
		})
	}

	return expenses
}

func hasMoneyMarker(line string) bool {
	for _, marker := range moneyMarkers {
		if strings.Contains(line, marker) {
			return true
		}
	}
	return false
}
