// Package tabular reads header-driven CSV and XLSX uploads into rows keyed by
// normalised column name.
package tabular

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Parse errors.
var (
	ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")
	ErrNoHeader          = errors.New("file has no header row")
)

// Row is one data line. Line is the 1-based line in the source file.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the first non-empty value among the given column aliases.
func (r Row) Get(aliases ...string) string {
	for _, alias := range aliases {
		if v := r.Fields[NormalizeHeader(alias)]; v != "" {
			return v
		}
	}
	return ""
}

// Blank reports whether every field is empty.
func (r Row) Blank() bool {
	for _, v := range r.Fields {
		if v != "" {
			return false
		}
	}
	return true
}

// Has reports whether any alias names a column present in the header.
func Has(header []string, aliases ...string) bool {
	for _, h := range header {
		for _, alias := range aliases {
			if h == NormalizeHeader(alias) {
				return true
			}
		}
	}
	return false
}

// NormalizeHeader lower-cases a column name and folds spaces and dashes to underscores.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(h)
}

// Parse reads filename's content from r, choosing the decoder by extension.
// Trailing blank rows are dropped.
func Parse(filename string, r io.Reader) ([]string, []Row, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		records, err = readCSV(r)
	case ".xlsx", ".xlsm":
		records, err = readXLSX(r)
	default:
		return nil, nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, nil, err
	}
	return toRows(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read sheet: %w", err)
	}
	return rows, nil
}

func toRows(records [][]string) ([]string, []Row, error) {
	if len(records) == 0 {
		return nil, nil, ErrNoHeader
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = NormalizeHeader(h)
	}
	if strings.Join(header, "") == "" {
		return nil, nil, ErrNoHeader
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		fields := make(map[string]string, len(header))
		for col, name := range header {
			if name == "" {
				continue
			}
			if col < len(record) {
				fields[name] = strings.TrimSpace(record[col])
			} else {
				fields[name] = ""
			}
		}
		rows = append(rows, Row{Line: i + 2, Fields: fields})
	}

	for len(rows) > 0 && rows[len(rows)-1].Blank() {
		rows = rows[:len(rows)-1]
	}
	return header, rows, nil
}
