package export

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidth  = 277.0 // A4 landscape minus margins
	cellHeight = 7.0
)

// PDFExporter renders datasets into a landscape tabular PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ContentType implements Renderer.
func (e *PDFExporter) ContentType() string { return "application/pdf" }

// Extension implements Renderer.
func (e *PDFExporter) Extension() string { return FormatPDF }

// Render creates a PDF with the dataset title and a bordered table.
// Headers repeat on every page.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, errors.New("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.SetAutoPageBreak(true, 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	colWidth := pageWidth / float64(len(data.Headers))

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(221, 235, 247)
		for _, h := range data.Headers {
			pdf.CellFormat(colWidth, cellHeight+1, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 8)
	}

	pdf.AddPage()
	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, tr(data.Title), "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 8)
		pdf.CellFormat(0, 5, "Generated "+time.Now().UTC().Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
		pdf.Ln(3)
	}
	header()

	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, row := range data.Rows {
		if pdf.GetY()+cellHeight > pageHeight-bottom {
			pdf.AddPage()
			header()
		}
		for _, value := range pad(row, len(data.Headers)) {
			pdf.CellFormat(colWidth, cellHeight, tr(fit(pdf, value, colWidth-2)), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// fit truncates s with an ellipsis so it fits in width millimetres.
func fit(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && pdf.GetStringWidth(string(runes)+"...") > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
