package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

func sampleResult() *entity.AnalysisResult {
	return &entity.AnalysisResult{
		RunID:         uuid.MustParse("6f1c1b8e-6d0c-4d53-9a59-1f1f7c2b2a10"),
		DocumentName:  "essay.pdf",
		Strategy:      constants.StrategyChunked,
		ChunkCount:    3,
		WordCount:     3120,
		ProviderCalls: 4,
		StartedAt:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Assessment: entity.FinalAssessment{
			Title:            "Rivers and Deltas",
			Grade:            "B+",
			Score:            87.5,
			Summary:          "A well argued essay – with minor gaps.",
			Strengths:        []string{"Clear thesis", "Good sources"},
			Improvements:     []string{"Tighter conclusion"},
			DetailedFeedback: []string{"First paragraph.", "Second paragraph."},
			CategoryScores: entity.CategoryScores{
				constants.Content: 88, constants.Structure: 85, constants.Analysis: 90,
				constants.Language: 86, constants.References: 80.5,
			},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleResult())

	assert.True(t, strings.HasPrefix(md, "# Assignment Feedback Report\n\n## Rivers and Deltas"))
	assert.Contains(t, md, "**Grade: B+ (87.5/100)**")
	assert.Contains(t, md, "- Clear thesis\n- Good sources\n")
	assert.Contains(t, md, "### Areas for Improvement\n- Tighter conclusion\n")
	assert.Contains(t, md, "- References: 80.5/100")
	assert.Less(t, strings.Index(md, "- Content:"), strings.Index(md, "- References:"))
	assert.Contains(t, md, "First paragraph.\n\nSecond paragraph.")
	assert.Contains(t, md, "Strategy: CHUNKED | Chunks: 3")
	assert.NotContains(t, md, "fallback merge")
}

func TestMarkdown_EmptyLists(t *testing.T) {
	res := sampleResult()
	res.Assessment.Strengths = nil
	res.FallbackMerge = true
	md := Markdown(res)
	assert.Contains(t, md, "### Strengths\n- None noted\n")
	assert.Contains(t, md, "fallback merge")
}

func TestPDF(t *testing.T) {
	out, err := PDF(sampleResult())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Greater(t, len(out), 500)
}

func TestXLSX(t *testing.T) {
	second := sampleResult()
	second.DocumentName = "report.txt"
	second.Assessment.Score = 64

	out, err := XLSX([]*entity.AnalysisResult{sampleResult(), second})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(historySheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Analyzed At", rows[0][0])
	assert.Equal(t, "Content", rows[0][5])
	assert.Equal(t, "essay.pdf", rows[1][1])
	assert.Equal(t, "87.5", rows[1][4])
	assert.Equal(t, "report.txt", rows[2][1])
	assert.Equal(t, "6f1c1b8e-6d0c-4d53-9a59-1f1f7c2b2a10", rows[1][len(rows[1])-1])
}
