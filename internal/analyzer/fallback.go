package analyzer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

const (
	// near-duplicate threshold on normalized Levenshtein similarity
	dedupeSimilarity = 0.85
	fallbackTitle    = "Combined assessment"
)

var gradeTable = []struct {
	min   float64
	grade string
}{
	{97, "A+"}, {93, "A"}, {90, "A-"},
	{87, "B+"}, {83, "B"}, {80, "B-"},
	{77, "C+"}, {73, "C"}, {70, "C-"},
	{67, "D+"}, {63, "D"}, {60, "D-"},
}

// LetterGrade maps a score in [0,100] onto the letter scale used by the fallback merge.
func LetterGrade(score float64) string {
	for _, g := range gradeTable {
		if score >= g.min {
			return g.grade
		}
	}
	return "F"
}

// fallbackMerge combines partial assessments without the provider.
//
// The overall score is the chunk-length-weighted mean of each chunk's category average and
// every category score is the length-weighted mean of that category; all of them are rounded
// half away from zero to one decimal place. Strengths and improvements keep chunk order with
// near-duplicates removed.
func fallbackMerge(partials []entity.PartialAssessment) entity.FinalAssessment {
	weights := make([]decimal.Decimal, len(partials))
	total := decimal.Zero
	for i, p := range partials {
		w := int64(p.ChunkLength)
		if w <= 0 {
			w = 1
		}
		weights[i] = decimal.NewFromInt(w)
		total = total.Add(weights[i])
	}

	weighted := func(value func(entity.PartialAssessment) float64) float64 {
		if total.IsZero() {
			return 0
		}
		sum := decimal.Zero
		for i, p := range partials {
			sum = sum.Add(decimal.NewFromFloat(value(p)).Mul(weights[i]))
		}
		return sum.Div(total).Round(1).InexactFloat64()
	}

	scores := make(entity.CategoryScores, len(constants.AllCategories()))
	for _, c := range constants.AllCategories() {
		scores[c] = weighted(func(p entity.PartialAssessment) float64 { return p.CategoryScores[c] })
	}
	overall := weighted(func(p entity.PartialAssessment) float64 { return p.CategoryScores.Mean() })

	var strengths, improvements, observations, detailed []string
	for i, p := range partials {
		strengths = append(strengths, p.Strengths...)
		improvements = append(improvements, p.Improvements...)
		if obs := strings.TrimSpace(p.Observations); obs != "" {
			observations = append(observations, obs)
			detailed = append(detailed, fmt.Sprintf("Section %d of %d: %s", i+1, len(partials), obs))
		}
	}

	summary := fmt.Sprintf("Assessment combined from %d sections without a reconciled review.", len(partials))
	if len(observations) > 0 {
		summary += " " + strings.Join(observations, " ")
	}

	return entity.FinalAssessment{
		Title:            fallbackTitle,
		Grade:            LetterGrade(overall),
		Score:            overall,
		Summary:          summary,
		Strengths:        dedupe(strengths),
		Improvements:     dedupe(improvements),
		DetailedFeedback: nonNil(detailed),
		CategoryScores:   scores,
	}
}

// dedupe keeps the first of every group of near-identical statements.
func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	keys := make([]string, 0, len(items))
next:
	for _, item := range items {
		item = strings.TrimSpace(item)
		key := dedupeKey(item)
		if key == "" {
			continue
		}
		for _, seen := range keys {
			if levenshtein.Similarity(key, seen, nil) >= dedupeSimilarity {
				continue next
			}
		}
		keys = append(keys, key)
		out = append(out, item)
	}
	return out
}

func dedupeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimRightFunc(s, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSpace(r) })
	return strings.Join(strings.Fields(s), " ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
