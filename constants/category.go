package constants

import (
	"strings"
)

// Category is the expense taxonomy the recognizer is constrained to.
type Category string

const (
	Groceries  Category = "groceries"
	Restaurant Category = "restaurant"
	Travel     Category = "travel"
	Gift       Category = "gift"
	Shopping   Category = "shopping"
	Transport  Category = "transport"
	Health     Category = "health"
	Other      Category = "other"
)

var allCategories = []Category{
	Groceries,
	Restaurant,
	Travel,
	Gift,
	Shopping,
	Transport,
	Health,
	Other,
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps free text onto the taxonomy. The bool reports whether the
// input matched; non-matches come back as Other.
func Canonicalize(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return Other, false
	}

	// synonyms map
	synonyms := map[string]Category{
		"supermarket": Groceries,
		"grocery":     Groceries,
		"dining":      Restaurant,
		"cafe":        Restaurant,
		"coffee":      Restaurant,
		"hotel":       Travel,
		"airline":     Travel,
		"flight":      Travel,
		"uber":        Transport,
		"taxi":        Transport,
		"transit":     Transport,
		"pharmacy":    Health,
		"drugstore":   Health,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return Other, false
}
