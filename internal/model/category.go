package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is a spending category label.
type Category string

// Spending categories. The set is closed.
const (
	CategoryFood          Category = "Alimentación"
	CategoryTransport     Category = "Transporte"
	CategoryHousing       Category = "Vivienda"
	CategoryServices      Category = "Servicios"
	CategoryEntertainment Category = "Entretenimiento"
	CategoryHealth        Category = "Salud"
	CategoryEducation     Category = "Educación"
	CategoryClothing      Category = "Ropa"
	CategoryOther         Category = "Otros"
)

// DefaultCategory is assigned when nothing else matches.
const DefaultCategory = CategoryOther

// Categories returns the closed set of labels in display order.
func Categories() []Category {
	return []Category{
		CategoryFood,
		CategoryTransport,
		CategoryHousing,
		CategoryServices,
		CategoryEntertainment,
		CategoryHealth,
		CategoryEducation,
		CategoryClothing,
		CategoryOther,
	}
}

// IsValid reports whether c belongs to the closed set.
func (c Category) IsValid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory resolves a free-form label ("alimentacion", "SALUD ")
// to its canonical form.
func ParseCategory(label string) (Category, bool) {
	key := foldLabel(label)
	if key == "" {
		return "", false
	}
	for _, c := range Categories() {
		if foldLabel(string(c)) == key {
			return c, true
		}
	}
	return "", false
}

// foldLabel lower-cases s and strips diacritics.
func foldLabel(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		folded = strings.TrimSpace(s)
	}
	return strings.ToLower(folded)
}
