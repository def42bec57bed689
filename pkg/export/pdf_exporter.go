package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const landscapeColumns = 8

// PDFExporter renders sheets as a bordered table, switching to landscape for wide sheets.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates the document.
func (e *PDFExporter) Render(sheet Sheet) ([]byte, error) {
	headers := sheet.Data.Headers
	if len(headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	orientation, width := "P", 190.0
	if len(headers) > landscapeColumns {
		orientation, width = "L", 277.0
	}
	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Arial", "I", 7)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	if sheet.Title != "" {
		pdf.SetFont("Arial", "B", 13)
		pdf.CellFormat(0, 8, strings.ToUpper(sheet.Title), "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "", 9)
	for _, caption := range sheet.Captions {
		pdf.CellFormat(0, 5, caption, "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)

	colWidth := width / float64(len(headers))
	writeHeader := func() {
		pdf.SetFont("Arial", "B", 8)
		pdf.SetFillColor(230, 230, 230)
		for _, header := range headers {
			pdf.CellFormat(colWidth, 7, strings.ToUpper(header), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 7)
	}
	writeHeader()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range sheet.Data.Rows {
		if pdf.GetY()+6 > pageHeight-bottom {
			pdf.AddPage()
			writeHeader()
		}
		for _, header := range headers {
			pdf.CellFormat(colWidth, 6, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
