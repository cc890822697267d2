package entity

import (
	"github.com/joseph-ayodele/assignment-feedback/constants"
)

// CategoryScores maps every evaluation category to a score in [0,100].
type CategoryScores map[constants.Category]float64

// Mean returns the unweighted mean over the fixed categories present in s.
func (s CategoryScores) Mean() float64 {
	var sum float64
	var n int
	for _, c := range constants.AllCategories() {
		if v, ok := s[c]; ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// PartialAssessment is the structured result for one chunk. It only lives until the merge step.
type PartialAssessment struct {
	ChunkIndex     int            `json:"chunk_index"`
	ChunkLength    int            `json:"chunk_length"`
	Observations   string         `json:"observations"`
	Strengths      []string       `json:"strengths,omitempty"`
	Improvements   []string       `json:"areas_for_improvement,omitempty"`
	CategoryScores CategoryScores `json:"category_scores"`
	Clamped        []string       `json:"-"`
}

// FinalAssessment is the terminal artifact of one analysis run.
type FinalAssessment struct {
	Title            string         `json:"title,omitempty"`
	Grade            string         `json:"grade"`
	Score            float64        `json:"score"`
	Summary          string         `json:"summary"`
	Strengths        []string       `json:"strengths"`
	Improvements     []string       `json:"areas_for_improvement"`
	DetailedFeedback []string       `json:"detailed_feedback"`
	CategoryScores   CategoryScores `json:"category_scores"`
	Clamped          []string       `json:"-"`
}
