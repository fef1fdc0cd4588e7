package export

import (
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"approval-portal/internal/application"
)

// PDFFileName is the download name for a module's PDF export.
func PDFFileName(spec application.ModuleSpec) string {
	return spec.Code + "_applications.pdf"
}

// WritePDF renders the snapshot as a landscape A4 table.
func WritePDF(w io.Writer, spec application.ModuleSpec, apps []application.ApplicationResponse, generatedAt time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, spec.Label+" Applications")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 6, "Generated on "+generatedAt.Format("02 Jan 2006 15:04"))
	pdf.Ln(9)

	headers := Headers(spec)
	pageW, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	colW := (pageW - left - right) / float64(len(headers))

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(235, 235, 235)
	for _, h := range headers {
		pdf.CellFormat(colW, 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, row := range Rows(spec, apps) {
		for _, cell := range row {
			pdf.CellFormat(colW, 6, cell, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}
