// Package export renders tabular datasets and summary documents into
// downloadable CSV, XLSX and PDF files.
package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

// Supported formats.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// ErrUnknownFormat is returned by For for unsupported formats.
var ErrUnknownFormat = errors.New("unknown export format")

// Dataset is a titled table with positional rows.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Renderer turns a dataset into file bytes.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// For returns the renderer for format.
func For(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case FormatCSV, "":
		return NewCSVExporter(), nil
	case FormatXLSX:
		return NewXLSXExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// CSVExporter renders datasets as CSV.
type CSVExporter struct{}

// NewCSVExporter builds a CSV exporter.
func NewCSVExporter() *CSVExporter {
	return &CSVExporter{}
}

// ContentType implements Renderer.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Extension implements Renderer.
func (e *CSVExporter) Extension() string { return FormatCSV }

// Render produces CSV encoded bytes for the dataset.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, errors.New("csv requires at least one header")
	}
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for _, row := range data.Rows {
		if err := writer.Write(pad(row, len(data.Headers))); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func pad(row []string, n int) []string {
	if len(row) == n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
