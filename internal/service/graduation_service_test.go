package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trainee-tracker-api/internal/eligibility"
	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

func passing(id, email string) models.Candidate {
	return models.Candidate{
		ID:      id,
		Email:   email,
		TrackID: "t1",
		Status:  models.StatusAssessed,
		CourseResults: models.CourseResults{
			{Code: "MATH101", Score: floatPtr(80), Pass: true},
			{Code: "SCI201", Score: floatPtr(90), Pass: true},
		},
	}
}

func newGraduationServiceForTest(candidates ...models.Candidate) (*GraduationService, *fakeCandidateRepo, *fakeAuditRepo, *MetricsService) {
	repo := newFakeCandidateRepo(candidates...)
	audit := &fakeAuditRepo{}
	metrics := NewMetricsService()
	return NewGraduationService(repo, newFakeCourseRepo(testCourses()...), audit, metrics, nil), repo, audit, metrics
}

func TestGraduationServiceReview(t *testing.T) {
	partial := models.Candidate{ID: "c-2", Email: "b@example.com", TrackID: "t1", Status: models.StatusInTraining,
		CourseResults: models.CourseResults{{Code: "MATH101", Score: floatPtr(80)}}}
	graduated := passing("c-3", "c@example.com")
	graduated.Status = models.StatusGraduated
	withdrawn := passing("c-4", "d@example.com")
	withdrawn.Status = models.StatusWithdrawn
	noTrack := models.Candidate{ID: "c-5", Email: "e@example.com", Status: models.StatusAssigned}

	svc, _, _, _ := newGraduationServiceForTest(passing("c-1", "a@example.com"), partial, graduated, withdrawn, noTrack)

	review, err := svc.Review(context.Background())
	require.NoError(t, err)
	require.Len(t, review.Eligible, 1)
	assert.Equal(t, "c-1", review.Eligible[0].Candidate.ID)
	require.Len(t, review.Exceptions, 2)
	assert.Equal(t, "c-2", review.Exceptions[0].Candidate.ID)
	assert.Equal(t, []string{"SCI201"}, review.Exceptions[0].Evaluation.Missing)
	assert.Equal(t, eligibility.ReasonUnknownTrack, review.Exceptions[1].Evaluation.Reason)
}

func TestGraduationServiceApprove(t *testing.T) {
	failing := models.Candidate{ID: "c-2", Email: "b@example.com", TrackID: "t1", Status: models.StatusAssessed}
	svc, repo, audit, _ := newGraduationServiceForTest(passing("c-1", "a@example.com"), failing)

	candidate, err := svc.Approve(context.Background(), staff(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusGraduated, candidate.Status)
	assert.Equal(t, models.StatusGraduated, repo.get("c-1").Status)
	assert.Equal(t, []string{models.AuditActionGraduationApprove}, audit.actions())

	_, err = svc.Approve(context.Background(), staff(), "c-1")
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	_, err = svc.Approve(context.Background(), staff(), "c-2")
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrNotEligible)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	_, ok := appErr.Details.(eligibility.Evaluation)
	assert.True(t, ok)
	assert.Equal(t, models.StatusAssessed, repo.get("c-2").Status)
}

func TestGraduationServiceForceApproveBypassesEligibility(t *testing.T) {
	svc, repo, audit, _ := newGraduationServiceForTest(models.Candidate{ID: "c-1", Email: "a@example.com", Status: models.StatusOnHold})

	_, err := svc.ForceApprove(context.Background(), staff(), "c-1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusGraduated, repo.get("c-1").Status)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, models.AuditActionGraduationForceApprove, audit.entries[0].Action)
	assert.Equal(t, models.StatusOnHold, audit.entries[0].Details["from"])

	_, err = svc.ForceApprove(context.Background(), staff(), "missing")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestGraduationServiceApproveAllSingleBatch(t *testing.T) {
	failing := models.Candidate{ID: "c-3", Email: "c@example.com", TrackID: "t1", Status: models.StatusAssessed,
		CourseResults: models.CourseResults{{Code: "MATH101", Score: floatPtr(50)}, {Code: "SCI201", Score: floatPtr(95)}}}
	svc, repo, _, _ := newGraduationServiceForTest(passing("c-1", "a@example.com"), passing("c-2", "b@example.com"), failing)

	result, err := svc.ApproveAll(context.Background(), staff())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Applied)
	assert.Equal(t, 1, repo.batchCalls)
	assert.Equal(t, 0, repo.updateCalls)
	assert.Equal(t, models.StatusGraduated, repo.get("c-1").Status)
	assert.Equal(t, models.StatusGraduated, repo.get("c-2").Status)
	assert.Equal(t, models.StatusAssessed, repo.get("c-3").Status)

	result, err = svc.ApproveAll(context.Background(), staff())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Applied)
	assert.Equal(t, 1, repo.batchCalls)
}
