package report

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

// PDF renders one assessment as an A4 report using the core fonts. Text outside cp1252
// is translated by gofpdf's unicode translator.
func PDF(res *entity.AnalysisResult) ([]byte, error) {
	a := res.Assessment
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(reportTitle, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, reportTitle, "", 1, "C", false, 0, "")
	pdf.Line(10, pdf.GetY(), 200, pdf.GetY())
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	if a.Title != "" {
		pdf.CellFormat(0, 8, tr("Title: "+a.Title), "", 1, "", false, 0, "")
	}
	pdf.CellFormat(0, 8, tr(fmt.Sprintf("Grade: %s (%s/100)", a.Grade, formatScore(a.Score))), "", 1, "", false, 0, "")
	pdf.Ln(4)

	heading := func(s string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, s, "", 1, "", false, 0, "")
		pdf.SetFont("Arial", "", 10)
	}
	para := func(s string) {
		pdf.MultiCell(0, 6, tr(s), "", "L", false)
	}

	heading("Summary:")
	para(a.Summary)
	pdf.Ln(4)

	heading("Strengths:")
	for _, s := range a.Strengths {
		para("- " + s)
	}
	pdf.Ln(4)

	heading("Areas for Improvement:")
	for _, s := range a.Improvements {
		para("- " + s)
	}
	pdf.Ln(4)

	heading("Category Scores:")
	for _, c := range constants.AllCategories() {
		pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s/100", c, formatScore(a.CategoryScores[c])), "", 1, "", false, 0, "")
	}
	pdf.Ln(4)

	heading("Detailed Feedback:")
	for _, p := range a.DetailedFeedback {
		para(p)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf write: %w", err)
	}
	return buf.Bytes(), nil
}
