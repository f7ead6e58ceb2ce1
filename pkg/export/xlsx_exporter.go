package export

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XLSXExporter renders datasets as a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter builds an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType implements Renderer.
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension implements Renderer.
func (e *XLSXExporter) Extension() string { return FormatXLSX }

// Render writes a bold header row followed by the data rows.
func (e *XLSXExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, errors.New("xlsx requires at least one header")
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet := defaultSheet
	if data.Title != "" {
		sheet = sheetName(data.Title)
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return nil, fmt.Errorf("name sheet: %w", err)
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &data.Headers); err != nil {
		return nil, fmt.Errorf("write xlsx headers: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(data.Headers))
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("apply header style: %w", err)
	}

	for i, row := range data.Rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := pad(row, len(data.Headers))
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write xlsx row %d: %w", i+1, err)
		}
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return nil, fmt.Errorf("column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName trims a title to Excel's 31 character limit and strips
// characters Excel forbids.
func sheetName(title string) string {
	out := make([]rune, 0, 31)
	for _, r := range title {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			continue
		}
		out = append(out, r)
		if len(out) == 31 {
			break
		}
	}
	if len(out) == 0 {
		return defaultSheet
	}
	return string(out)
}
