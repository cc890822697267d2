package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

func uniform(v float64) entity.CategoryScores {
	out := entity.CategoryScores{}
	for _, c := range constants.AllCategories() {
		out[c] = v
	}
	return out
}

func TestLetterGrade(t *testing.T) {
	cases := map[float64]string{
		100: "A+", 97: "A+", 96.9: "A", 90: "A-", 89.9: "B+", 83: "B",
		80: "B-", 75: "C", 70: "C-", 65: "D", 60: "D-", 59.9: "F", 0: "F",
	}
	for score, want := range cases {
		assert.Equal(t, want, LetterGrade(score), "score %v", score)
	}
}

func TestFallbackMerge_RoundsHalfAwayFromZero(t *testing.T) {
	// (80*1 + 85*1) / 2 = 82.5 exactly, and 82.25 -> 82.3
	got := fallbackMerge([]entity.PartialAssessment{
		{ChunkLength: 1, CategoryScores: uniform(80)},
		{ChunkLength: 1, CategoryScores: uniform(85)},
	})
	assert.Equal(t, 82.5, got.Score)

	got = fallbackMerge([]entity.PartialAssessment{
		{ChunkLength: 3, CategoryScores: uniform(80)},
		{ChunkLength: 1, CategoryScores: uniform(89)},
	})
	assert.Equal(t, 82.3, got.Score)
	assert.Equal(t, "B-", got.Grade)
}

func TestFallbackMerge_WeightsByLength(t *testing.T) {
	got := fallbackMerge([]entity.PartialAssessment{
		{ChunkLength: 9000, CategoryScores: uniform(90), Observations: "Long section."},
		{ChunkLength: 1000, CategoryScores: uniform(40), Observations: "Short section."},
	})
	assert.Equal(t, 85.0, got.Score)
	assert.Equal(t, 85.0, got.CategoryScores[constants.References])
	assert.Equal(t, []string{"Section 1 of 2: Long section.", "Section 2 of 2: Short section."}, got.DetailedFeedback)
	assert.Empty(t, got.Strengths)
	assert.NotNil(t, got.Strengths)
	assert.Equal(t, "Combined assessment", got.Title)
}

func TestDedupe(t *testing.T) {
	in := []string{
		"Strong use of primary sources",
		"strong use of primary sources.",
		"Strong use of primary source",
		"Clear structure",
		"  ",
		"Engaging introduction",
	}
	assert.Equal(t, []string{"Strong use of primary sources", "Clear structure", "Engaging introduction"}, dedupe(in))
}
