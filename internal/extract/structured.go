package extract

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Veraticus/gastos/internal/model"
)

var embeddedExpensesPattern = regexp.MustCompile(`\{\s*"expenses"\s*:\s*\[`)

// expensePayload is the document shape models are asked to produce.
// Elements and the top-level extras stay raw so one mistyped field only
// costs that field or that element.
type expensePayload struct {
	Expenses   *[]json.RawMessage `json:"expenses"`
	Confidence json.RawMessage    `json:"confidence,omitempty"`
	Summary    json.RawMessage    `json:"summary,omitempty"`
}

// rawExpense is one element of the expenses array before normalization.
// Amount is kept raw because models emit both 450.5 and "450,50".
type rawExpense struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Currency    string          `json:"currency"`
	Category    string          `json:"category"`
	Amount      json.RawMessage `json:"amount"`
}

// TryParseJSON decodes text as an expenses document. It returns false when
// text is not valid JSON or lacks an "expenses" array; that is an ordinary
// outcome that sends the caller to the fallback strategies.
func TryParseJSON(text string) (*model.ExtractionResult, bool) {
	return tryParseJSON(text, nil)
}

func tryParseJSON(text string, logger *slog.Logger) (*model.ExtractionResult, bool) {
	cleaned := cleanMarkdownWrapper(text)
	if cleaned == "" {
		return nil, false
	}

	var payload expensePayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, false
	}
	return payload.toResult(StrategyJSON, logger)
}

// extractEmbeddedJSON looks for a {"expenses": [...]} object anywhere in
// text and decodes the first one that parses.
func extractEmbeddedJSON(text string, logger *slog.Logger) (*model.ExtractionResult, bool) {
	for _, loc := range embeddedExpensesPattern.FindAllStringIndex(text, -1) {
		dec := json.NewDecoder(strings.NewReader(text[loc[0]:]))
		var payload expensePayload
		if err := dec.Decode(&payload); err != nil {
			loggerOrDefault(logger).Debug("embedded expenses object did not decode",
				"offset", loc[0], "error", err)
			continue
		}
		if result, ok := payload.toResult(StrategyEmbeddedJSON, logger); ok {
			return result, true
		}
	}
	return nil, false
}

func (p expensePayload) toResult(strategy string, logger *slog.Logger) (*model.ExtractionResult, bool) {
	if p.Expenses == nil {
		return nil, false
	}

	expenses := make([]model.ExpenseRecord, 0, len(*p.Expenses))
	for i, element := range *p.Expenses {
		var raw rawExpense
		if err := json.Unmarshal(element, &raw); err != nil {
			loggerOrDefault(logger).Debug("dropping malformed expense element",
				"strategy", strategy, "index", i, "error", err)
			continue
		}
		record, ok := raw.normalize()
		if !ok {
			continue
		}
		expenses = append(expenses, record)
	}

	result := model.NewExtractionResult(strategy, expenses)
	result.Confidence = decodeConfidence(p.Confidence)
	result.Summary = decodeSummary(p.Summary)
	return &result, true
}

// decodeConfidence keeps the confidence only when it is a JSON number.
func decodeConfidence(raw json.RawMessage) *float64 {
	var n *float64
	if len(raw) == 0 || json.Unmarshal(raw, &n) != nil {
		return nil
	}
	return n
}

// decodeSummary keeps the summary only when it is a JSON string.
func decodeSummary(raw json.RawMessage) string {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

// normalize runs a decoded element through the amount, currency and
// category classifiers. Elements without a positive amount are dropped.
func (r rawExpense) normalize() (model.ExpenseRecord, bool) {
	amount, amountText := decodeAmount(r.Amount)
	if amount <= 0 {
		return model.ExpenseRecord{}, false
	}

	description := cleanDescription(r.Description)
	return model.ExpenseRecord{
		Date:        model.ParseDatePtr(r.Date),
		Description: description,
		Amount:      amount,
		Currency:    normalizeCurrency(r.Currency, amountText+" "+description),
		Category:    resolveCategory(r.Category, description),
	}, true
}

// decodeAmount accepts a JSON number or a JSON string. Numbers are taken as
// written; strings go through ParseAmount's separator rules.
func decodeAmount(raw json.RawMessage) (float64, string) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return 0, ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, ""
		}
		return ParseAmount(s), s
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return 0, ""
	}
	f, err := n.Float64()
	if err != nil {
		return 0, ""
	}
	return f, n.String()
}

// cleanMarkdownWrapper removes ```json fences that models add despite
// being told not to.
func cleanMarkdownWrapper(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
		if end := strings.LastIndex(s, "```"); end != -1 {
			s = s[:end]
		}
	}
	return strings.TrimSpace(s)
}

// cleanDescription trims whitespace and markdown emphasis around a label.
// The label itself is kept verbatim.
func cleanDescription(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_`")
	return strings.TrimSpace(s)
}
