package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/gastos/internal/model"
)

// SystemPrompt asks the model for the JSON document the extraction pipeline
// parses first. Replies that ignore it still go through the fallbacks.
func SystemPrompt() string {
	labels := make([]string, 0, len(model.Categories()))
	for _, c := range model.Categories() {
		labels = append(labels, string(c))
	}

	var sb strings.Builder
	sb.WriteString("Sos un asistente que extrae gastos de estados de cuenta y comprobantes uruguayos.\n\n")
	sb.WriteString("Respondé SOLO con un objeto JSON válido, sin texto adicional ni bloques de código:\n")
	sb.WriteString(`{"expenses":[{"date":"DD/MM/YY","description":"texto","amount":123.45,"currency":"UYU","category":"Alimentación"}],"confidence":0.9,"summary":"resumen breve"}`)
	sb.WriteString("\n\nReglas:\n")
	sb.WriteString("- Incluí solo egresos: compras, cargos y servicios. Ignorá saldos, pagos a la tarjeta y promociones.\n")
	sb.WriteString("- amount es un número positivo con punto decimal.\n")
	sb.WriteString("- currency es \"UYU\" o \"USD\". Los importes en la columna de dólares son USD.\n")
	fmt.Fprintf(&sb, "- category es una de: %s.\n", strings.Join(labels, ", "))
	sb.WriteString("- Si no hay gastos devolvé {\"expenses\":[]}.\n")
	return sb.String()
}

// BuildPrompt wraps document text for the user turn.
func BuildPrompt(text string) string {
	return "Extraé los gastos de este documento.\n\nTexto:\n" + text
}

// DocumentPrompt is the user turn when the document is attached.
const DocumentPrompt = "Extraé los gastos del documento adjunto."

// truncateRunes cuts s to at most limit runes.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
