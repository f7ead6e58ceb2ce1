package service

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/storage"
)

func newReportServiceForTest(t *testing.T, ttl time.Duration) *ReportService {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", ttl)
	candidates := newFakeCandidateRepo(
		models.Candidate{ID: "c-1", Name: "Aisha Saeed", Email: "a@example.com", Subject: "Math", TrackID: "t1", Status: models.StatusAssessed,
			Enrollments:   models.Enrollments{{Code: "MATH101", Status: models.EnrollmentCompleted}},
			CourseResults: models.CourseResults{{Code: "MATH101", Score: floatPtr(80), Pass: true, Date: "2024-03-01"}}},
		models.Candidate{ID: "c-2", Name: "Omar", Email: "o@example.com", Subject: "English", TrackID: "t2", Status: models.StatusImported},
	)
	return NewReportService(candidates, newFakeCourseRepo(testCourses()...), files, signer, nil, ReportServiceConfig{APIPrefix: "/api/"})
}

func TestCandidateDocumentSummarisesEligibility(t *testing.T) {
	c := models.Candidate{Name: "Aisha", TrackID: "t1", CourseResults: models.CourseResults{{Code: "MATH101", Score: floatPtr(80), Pass: true}}}

	doc := CandidateDocument(c, testCourses(), time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, doc.Sections, 2)
	assert.Empty(t, doc.Sections[0].Table.Rows)
	require.Len(t, doc.Sections[1].Table.Rows, 1)
	assert.Equal(t, []string{"MATH101", "Mathematics", "Yes", "80.0", "70", "Yes", ""}, doc.Sections[1].Table.Rows[0])

	footer := map[string]string{}
	for _, f := range doc.Footer {
		footer[f.Label] = f.Value
	}
	assert.Equal(t, "80.0", footer["Final Average"])
	assert.Equal(t, "No (required courses not passed)", footer["Graduation Eligible"])
	assert.Equal(t, "SCI201", footer["Missing Results"])
}

func TestReportServiceCandidatePDF(t *testing.T) {
	svc := newReportServiceForTest(t, time.Hour)

	data, filename, err := svc.CandidatePDF(context.Background(), "c-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	assert.Equal(t, "candidate-aisha-saeed.pdf", filename)

	_, _, err = svc.CandidatePDF(context.Background(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestReportServiceExportAndDownload(t *testing.T) {
	svc := newReportServiceForTest(t, time.Hour)

	result, err := svc.ExportCandidates(context.Background(), "csv", models.CandidateFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Rows)
	assert.True(t, strings.HasPrefix(result.URL, "/api/reports/download/"))

	download, err := svc.ResolveDownload(result.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "text/csv", download.ContentType)
	body, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Aisha Saeed")
	assert.Contains(t, string(body), "Final Average")

	_, err = svc.ResolveDownload(result.Token + "x")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.ExportCandidates(context.Background(), "docx", models.CandidateFilter{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestReportServiceExportXLSX(t *testing.T) {
	svc := newReportServiceForTest(t, time.Hour)

	result, err := svc.ExportCandidates(context.Background(), "xlsx", models.CandidateFilter{Status: models.StatusImported})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows)
	assert.Equal(t, "xlsx", result.Format)
}
