package tabular

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseCSVNormalisesHeaders(t *testing.T) {
	input := "\ufeffCandidate Email, Course-Code ,Cohort\n amal@example.com ,math101,C1\nshort@example.com\n,,\n"

	header, rows, err := Parse("enroll.csv", strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"candidate_email", "course_code", "cohort"}, header)
	require.Len(t, rows, 2)

	assert.Equal(t, 2, rows[0].Line)
	assert.Equal(t, "amal@example.com", rows[0].Get("email", "candidate_email"))
	assert.Equal(t, "math101", rows[0].Get("Course Code"))
	assert.Equal(t, "", rows[1].Get("cohort"))
	assert.True(t, Has(header, "course", "course_code"))
	assert.False(t, Has(header, "score"))
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"email", "course_code", "score"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"b@example.com", "SCI201", 81}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	header, rows, err := Parse("results.XLSX", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"email", "course_code", "score"}, header)
	require.Len(t, rows, 1)
	assert.Equal(t, "81", rows[0].Get("score"))
}

func TestParseRejectsUnknownExtension(t *testing.T) {
	_, _, err := Parse("data.json", strings.NewReader("{}"))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, _, err = Parse("empty.csv", strings.NewReader(""))
	assert.True(t, errors.Is(err, ErrNoHeader))
}
