package llm

import (
	"github.com/joseph-ayodele/assignment-feedback/constants"
)

// Wire keys of the assessment payloads.
const (
	keyTitle        = "title"
	keyGrade        = "grade"
	keyScore        = "score"
	keySummary      = "summary"
	keyStrengths    = "strengths"
	keyImprovements = "areas_for_improvement"
	keyDetailed     = "detailed_feedback"
	keyCategories   = "category_scores"
	keyObservations = "observations"
)

var (
	finalRequired   = []string{keyGrade, keyScore, keySummary, keyStrengths, keyImprovements, keyDetailed, keyCategories}
	partialRequired = []string{keyObservations, keyCategories}
)

// BuildFinalAssessmentSchema returns a JSON-Schema (draft 2020-12 subset) for the normalized
// final assessment document.
func BuildFinalAssessmentSchema() map[string]any {
	props := map[string]any{
		keyTitle:        map[string]any{"type": "string"},
		keyGrade:        map[string]any{"type": "string", "minLength": 1},
		keyScore:        scoreProp(),
		keySummary:      map[string]any{"type": "string", "minLength": 1},
		keyStrengths:    stringListProp(),
		keyImprovements: stringListProp(),
		keyDetailed:     stringListProp(),
		keyCategories:   categoryScoresProp(),
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             finalRequired,
	}
}

// BuildPartialAssessmentSchema returns the schema of a normalized per-chunk assessment.
func BuildPartialAssessmentSchema() map[string]any {
	props := map[string]any{
		keyObservations: map[string]any{"type": "string", "minLength": 1},
		keyStrengths:    stringListProp(),
		keyImprovements: stringListProp(),
		keyCategories:   categoryScoresProp(),
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             partialRequired,
	}
}

func scoreProp() map[string]any {
	return map[string]any{"type": "number", "minimum": 0, "maximum": 100}
}

func stringListProp() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func categoryScoresProp() map[string]any {
	props := map[string]any{}
	for _, c := range constants.AsStringSlice() {
		props[c] = scoreProp()
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             constants.AsStringSlice(),
	}
}
