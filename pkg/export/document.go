package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Field is a labelled value printed in a document's summary block.
type Field struct {
	Label string
	Value string
}

// Section is a headed table inside a document.
type Section struct {
	Heading string
	Table   Dataset
	Empty   string
}

// Document is a single-record report such as a candidate progress sheet.
type Document struct {
	Title    string
	Subtitle string
	Fields   []Field
	Sections []Section
	Footer   []Field
}

// RenderDocument lays out a portrait A4 PDF: title, key/value fields, one
// table per section, then footer fields.
func RenderDocument(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "L", false, 0, "")
	if doc.Subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(doc.Subtitle), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	writeFields(pdf, tr, doc.Fields)

	const width = 180.0
	for _, section := range doc.Sections {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, tr(section.Heading), "", 1, "L", false, 0, "")
		if len(section.Table.Rows) == 0 {
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(0, 6, tr(section.Empty), "", 1, "L", false, 0, "")
			continue
		}
		colWidth := width / float64(len(section.Table.Headers))
		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range section.Table.Headers {
			pdf.CellFormat(colWidth, 7, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
		for _, row := range section.Table.Rows {
			for _, v := range pad(row, len(section.Table.Headers)) {
				pdf.CellFormat(colWidth, 6, tr(fit(pdf, v, colWidth-2)), "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if len(doc.Footer) > 0 {
		pdf.Ln(6)
		writeFields(pdf, tr, doc.Footer)
	}

	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "Generated "+time.Now().UTC().Format(time.RFC1123), "", 0, "R", false, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

func writeFields(pdf *gofpdf.Fpdf, tr func(string) string, fields []Field) {
	for _, f := range fields {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(45, 6, tr(f.Label), "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, tr(f.Value), "", 1, "L", false, 0, "")
	}
}
