package extract

import (
	"regexp"
	"strings"

	"github.com/Veraticus/gastos/internal/model"
)

// CategoryRule assigns Category to descriptions matching Pattern.
type CategoryRule struct {
	Pattern  *regexp.Regexp
	Category model.Category
}

// categoryRules is evaluated top to bottom; the first match wins, so the
// order is the priority between overlapping keywords.
var categoryRules = []CategoryRule{
	{
		Category: model.CategoryFood,
		Pattern: regexp.MustCompile(`supermercado|\bsuper\b|devoto|\bdisco\b|tienda inglesa|ta-ta|\btata\b|macro ?mercado|` +
			`almac[eé]n|autoservicio|restaurant|\bresto\b|parrilla|pizzer|panader|confiter|carnicer|verduler|` +
			`\bferia\b|mcdonald|burger|pedidos ?ya|rappi|\bcaf[eé]|\bbar\b|comida|alimento|delivery|` +
			`helader|sushi|empanada|chivito|minimercado|kiosco|frigor[ií]fico`),
	},
	{
		Category: model.CategoryTransport,
		Pattern: regexp.MustCompile(`\buber\b|cabify|taxi|\bstm\b|[oó]mnibus|cutcsa|\bcopsa\b|\bcot\b|nafta|` +
			`combustible|gasoil|\bancap\b|petrobras|\baxion\b|\bdisa\b|estacionamiento|parking|peaje|` +
			`telepeaje|\bbus\b|boleto|\bpasaje|aerol[ií]nea|\bvuelo\b|buquebus|colonia express|\bsucive\b`),
	},
	{
		Category: model.CategoryEntertainment,
		Pattern: regexp.MustCompile(`netflix|spotify|\bcine\b|cinema|movie|teatro|disney|\bhbo\b|\bmax\b|` +
			`steam|playstation|xbox|nintendo|entradas|tickantel|redtickets|\bjuegos?\b|prime video|` +
			`youtube|twitch|concierto|recital|museo|boliche|casino`),
	},
	{
		Category: model.CategoryHealth,
		Pattern: regexp.MustCompile(`farmacia|farmashop|san roque|m[eé]dic|mutualista|hospital|cl[ií]nica|` +
			`sanatorio|odont|dentista|\bcasmu\b|\bsmi\b|\bcosem\b|hospital brit[aá]nico|emergencia m[oó]vil|` +
			`\bsemm\b|\bucm\b|laboratorio|[oó]ptica|psic[oó]log|fisioterap|gimnasio|\bgym\b|salud`),
	},
	{
		Category: model.CategoryEducation,
		Pattern: regexp.MustCompile(`universidad|facultad|\budelar\b|\bort\b|colegio|escuela|liceo|\bcurso|` +
			`librer[ií]a|\blibros?\b|udemy|coursera|platzi|matr[ií]cula|instituto|academia|cuota escolar|` +
			`educaci[oó]n|capacitaci[oó]n`),
	},
	{
		Category: model.CategoryHousing,
		Pattern: regexp.MustCompile(`alquiler|inmobiliaria|gastos comunes|hipoteca|expensas|arrendamiento|` +
			`contribuci[oó]n inmobiliaria|ferreter|sodimac|barraca|muebler|\bhogar\b|vivienda|` +
			`\bbhu\b|garant[ií]a de alquiler|limpieza del hogar`),
	},
	{
		Category: model.CategoryClothing,
		Pattern: regexp.MustCompile(`\bropa\b|\bzara\b|indumentaria|calzado|zapater|zapatill|\bh&m\b|\bnike\b|` +
			`adidas|vestimenta|tienda de ropa|\bpuma\b|renner|forever 21|falabella|` +
			`vestido|camisa|pantal[oó]n|campera`),
	},
	{
		Category: model.CategoryServices,
		Pattern: regexp.MustCompile(`\bute\b|\bose\b|antel|movistar|\bclaro\b|internet|tel[eé]fon|celular|` +
			`\bluz\b|\bagua\b|\bgas\b|montevideo gas|\bcable\b|\btcc\b|nuevo siglo|directv|seguro|` +
			`\bbanco\b|comisi[oó]n|\bcargo\b|impuesto|\bdgi\b|\bbps\b|\bfactura|tributo|suscripci[oó]n|` +
			`abitab|redpagos|\bservicio`),
	},
}

// CategoryRules returns a copy of the ordered classification table.
func CategoryRules() []CategoryRule {
	rules := make([]CategoryRule, len(categoryRules))
	copy(rules, categoryRules)
	return rules
}

// AssignCategory maps a free-text description to a spending category.
// Descriptions that match no rule get model.DefaultCategory.
func AssignCategory(description string) model.Category {
	lower := strings.ToLower(description)
	for _, rule := range categoryRules {
		if rule.Pattern.MatchString(lower) {
			return rule.Category
		}
	}
	return model.DefaultCategory
}

// resolveCategory keeps a supplied label when it names a known category and
// otherwise classifies the description.
func resolveCategory(supplied, description string) model.Category {
	if c, ok := model.ParseCategory(supplied); ok {
		return c
	}
	return AssignCategory(description)
}
