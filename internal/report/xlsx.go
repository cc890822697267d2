package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

const historySheet = "Assessments"

// XLSX returns a workbook (as bytes) with one row per analysis run.
func XLSX(results []*entity.AnalysisResult) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), historySheet); err != nil {
		return nil, err
	}

	headers := []string{"Analyzed At", "Document", "Strategy", "Grade", "Score"}
	for _, c := range constants.AllCategories() {
		headers = append(headers, string(c))
	}
	headers = append(headers, "Chunks", "Provider Calls", "Fallback Merge", "Summary", "Run ID")
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(historySheet, cell, h)
	}

	for r, res := range results {
		row := r + 2
		col := 0
		write := func(v any) {
			col++
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(historySheet, cell, v)
		}
		a := res.Assessment
		write(res.StartedAt.UTC().Format("2006-01-02 15:04:05"))
		write(res.DocumentName)
		write(string(res.Strategy))
		write(a.Grade)
		write(a.Score)
		for _, c := range constants.AllCategories() {
			write(a.CategoryScores[c])
		}
		write(res.ChunkCount)
		write(res.ProviderCalls)
		write(res.FallbackMerge)
		write(truncate(a.Summary, 300))
		write(res.RunID.String())
	}

	_ = f.SetColWidth(historySheet, "A", "A", 20)
	_ = f.SetColWidth(historySheet, "B", "B", 32)
	_ = f.SetColWidth(historySheet, "C", "E", 10)
	last, _ := excelize.ColumnNumberToName(len(headers))
	summaryCol, _ := excelize.ColumnNumberToName(len(headers) - 1)
	_ = f.SetColWidth(historySheet, summaryCol, summaryCol, 60)
	_ = f.SetColWidth(historySheet, last, last, 38)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
