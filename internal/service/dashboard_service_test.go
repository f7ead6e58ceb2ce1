package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

func dashboardCandidates(now time.Time) []models.Candidate {
	recent := now.Add(-48 * time.Hour)
	old := now.Add(-40 * 24 * time.Hour)
	return []models.Candidate{
		{ID: "c-1", Name: "Aisha", Subject: "Math", Emirate: "Dubai", TrackID: "t1", Status: models.StatusAssessed,
			Enrollments:   models.Enrollments{{Code: "MATH101", AssignedTs: &old}},
			CourseResults: models.CourseResults{{Code: "MATH101", Score: floatPtr(90), Pass: true, Date: recent.Format("2006-01-02")}, {Code: "SCI201", Score: floatPtr(80), Pass: true}}},
		{ID: "c-2", Name: "Omar", Subject: "Math", Emirate: "Sharjah", TrackID: "t1", Status: models.StatusInTraining,
			Enrollments:   models.Enrollments{{Code: "math101", AssignedTs: &old}, {Code: "SCI201", AssignedTs: &old}},
			CourseResults: models.CourseResults{{Code: "MATH101", Score: floatPtr(50), Pass: false}}},
		{ID: "c-3", Name: "Huda", Subject: "English", Emirate: "Dubai", TrackID: "t2", Status: models.StatusAssigned,
			Notes: models.Notes{{Text: "called", Ts: recent}}},
		{ID: "c-4", Name: "Ali", Subject: "", Emirate: "Dubai", Status: models.StatusWithdrawn},
	}
}

func TestDashboardHistograms(t *testing.T) {
	candidates := dashboardCandidates(time.Now())

	status := StatusHistogram(candidates)
	require.Len(t, status, len(models.CandidateStatuses))
	assert.Equal(t, CountEntry{Key: "Imported", Count: 0}, status[0])
	assert.Equal(t, CountEntry{Key: "Assigned", Count: 1}, status[2])

	subjects := FieldHistogram(candidates, func(c models.Candidate) string { return c.Subject })
	assert.Equal(t, []CountEntry{{Key: "Math", Count: 2}, {Key: "English", Count: 1}, {Key: "Unspecified", Count: 1}}, subjects)
}

func TestDashboardEngagementDeduplicatesCandidates(t *testing.T) {
	engagement := CourseEngagements(dashboardCandidates(time.Now()), testCourses())
	require.Len(t, engagement, 2)
	assert.Equal(t, CourseEngagement{Code: "MATH101", Title: "Mathematics", Candidates: 2}, engagement[0])
	assert.Equal(t, CourseEngagement{Code: "SCI201", Title: "Science", Candidates: 2}, engagement[1])
}

func TestDashboardPassRatesExcludeUnscoredCourses(t *testing.T) {
	rates := CoursePassRates(dashboardCandidates(time.Now()), testCourses())
	require.Len(t, rates, 2)
	assert.Equal(t, "MATH101", rates[0].Code)
	assert.Equal(t, 50, rates[0].Rate)
	assert.Equal(t, "SCI201", rates[1].Code)
	assert.Equal(t, 100, rates[1].Rate)
	for _, r := range rates {
		assert.NotEqual(t, "ENG110", r.Code)
	}
}

func TestDashboardAtRiskAndStale(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	candidates := dashboardCandidates(now)

	atRisk := AtRisk(candidates, testCourses())
	ids := make([]string, 0, len(atRisk))
	for _, f := range atRisk {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"c-2", "c-3"}, ids)

	stale := Stale(candidates, now, 21*24*time.Hour)
	require.Len(t, stale, 1)
	assert.Equal(t, "c-2", stale[0].ID)
	require.NotNil(t, stale[0].LastActivity)
}

func TestLastActivityPicksLatest(t *testing.T) {
	assigned := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	c := models.Candidate{
		Enrollments:   models.Enrollments{{Code: "A", AssignedTs: &assigned}},
		CourseResults: models.CourseResults{{Code: "A", Date: "2024-02-01"}, {Code: "B", Date: "not a date"}},
		Notes:         models.Notes{{Ts: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)}},
	}
	last := LastActivity(c)
	require.NotNil(t, last)
	assert.Equal(t, "2024-02-01", last.Format("2006-01-02"))

	assert.Nil(t, LastActivity(models.Candidate{}))
}

func TestDashboardServiceSummary(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := NewDashboardService(newFakeCandidateRepo(dashboardCandidates(now)...), newFakeCourseRepo(testCourses()...), nil, DashboardServiceConfig{})
	svc.now = func() time.Time { return now }

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Len(t, summary.Stale, 1)
	assert.Len(t, summary.AtRisk, 2)
	assert.Equal(t, now, summary.GeneratedAt)
}
