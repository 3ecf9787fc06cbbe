package reports

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
)

func formatScore(score *float64) string {
	if score == nil {
		return "--"
	}
	return fmt.Sprintf("%.2f", *score)
}

// RenderPDF lays the report out as an A4 table.
func RenderPDF(report AssessmentReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(report.AssessmentName, true)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, fmt.Sprintf("Assessment report: %s", report.AssessmentName))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04 MST")))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Scored: %d of %d   Average: %.2f", report.Scored, report.Participants, report.Average))
	pdf.Ln(6)
	distribution := ""
	for _, band := range Bands {
		distribution += fmt.Sprintf("%s: %d   ", band, report.Distribution[band])
	}
	pdf.Cell(0, 7, "Distribution: "+distribution)
	pdf.Ln(10)

	widths := []float64{12, 58, 30, 20, 20, 20, 20}
	headers := []string{"Rank", "Employee", "Department", "Self", "Leader", "Boss", "Final"}
	pdf.SetFont("Helvetica", "B", 10)
	for i, header := range headers {
		pdf.CellFormat(widths[i], 7, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range report.Rows {
		rank := "-"
		if row.Rank > 0 {
			rank = fmt.Sprintf("%d", row.Rank)
		}
		final := formatScore(row.Final)
		if row.Band != "" {
			final += " (" + string(row.Band) + ")"
		}
		cells := []string{rank, row.Name, row.Department, formatScore(row.Self), formatScore(row.Leader), formatScore(row.Boss), final}
		for i, cell := range cells {
			align := "L"
			if i != 1 && i != 2 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 6, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(report.DepartmentAverages) > 0 {
		pdf.Ln(6)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, "Department averages")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		for _, dep := range report.DepartmentAverages {
			pdf.Cell(0, 6, fmt.Sprintf("%s: %.2f (%d scored)", dep.Name, dep.Average, dep.Count))
			pdf.Ln(6)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
