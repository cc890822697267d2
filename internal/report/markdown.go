// Package report renders analysis results for people: Markdown and PDF for a single
// assessment, XLSX for a batch of stored runs.
package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

const reportTitle = "Assignment Feedback Report"

// Markdown renders a flat text report of one assessment.
func Markdown(res *entity.AnalysisResult) string {
	a := res.Assessment
	var b strings.Builder

	b.WriteString("# " + reportTitle + "\n\n")
	if a.Title != "" {
		b.WriteString("## " + a.Title + "\n\n")
	}
	fmt.Fprintf(&b, "**Grade: %s (%s/100)**\n\n", a.Grade, formatScore(a.Score))

	b.WriteString("### Summary\n")
	b.WriteString(a.Summary + "\n\n")

	writeList(&b, "Strengths", a.Strengths)
	writeList(&b, "Areas for Improvement", a.Improvements)

	b.WriteString("### Category Scores\n")
	for _, c := range constants.AllCategories() {
		fmt.Fprintf(&b, "- %s: %s/100\n", c, formatScore(a.CategoryScores[c]))
	}
	b.WriteString("\n")

	b.WriteString("### Detailed Feedback\n")
	b.WriteString(strings.Join(a.DetailedFeedback, "\n\n"))
	b.WriteString("\n\n")

	b.WriteString("---\n")
	fmt.Fprintf(&b, "_Document: %s | Strategy: %s | Chunks: %d | Words: %d | Provider calls: %d",
		orDash(res.DocumentName), res.Strategy, res.ChunkCount, res.WordCount, res.ProviderCalls)
	if res.FallbackMerge {
		b.WriteString(" | fallback merge")
	}
	b.WriteString("_\n")
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	b.WriteString("### " + heading + "\n")
	if len(items) == 0 {
		b.WriteString("- None noted\n")
	}
	for _, it := range items {
		b.WriteString("- " + it + "\n")
	}
	b.WriteString("\n")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
