package constants

import (
	"strings"
)

// Category is one of the fixed evaluation dimensions every assessment scores.
type Category string

const (
	Content    Category = "Content"
	Structure  Category = "Structure"
	Analysis   Category = "Analysis"
	Language   Category = "Language"
	References Category = "References"
)

var allCategories = []Category{
	Content,
	Structure,
	Analysis,
	Language,
	References,
}

// AllCategories returns the categories in their canonical report order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps a model-provided label onto a Category.
// The bool is false when nothing matched.
func Canonicalize(input string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	// synonyms the models tend to use
	synonyms := map[string]Category{
		"content quality":   Content,
		"argument":          Content,
		"organization":      Structure,
		"organisation":      Structure,
		"structure & flow":  Structure,
		"critical analysis": Analysis,
		"critical thinking": Analysis,
		"language & style":  Language,
		"writing":           Language,
		"grammar":           Language,
		"style":             Language,
		"citations":         References,
		"referencing":       References,
		"sources":           References,
		"bibliography":      References,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == strings.ToLower(string(cat)) {
			return cat, true
		}
	}

	return "", false
}
