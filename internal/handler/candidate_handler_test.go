package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/trainee-tracker-api/internal/eligibility"
	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

func TestCandidateListFilters(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodGet, "/api/candidates?status=in%20training&trackId=t1&search=aisha", "staff", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.StatusInTraining, s.candidates.lastFilter.Status)
	assert.Equal(t, "t1", s.candidates.lastFilter.TrackID)
	assert.Equal(t, "aisha", s.candidates.lastFilter.Search)
	assert.EqualValues(t, 1, decode(t, rec).Meta["total"])

	rec = s.json(http.MethodGet, "/api/candidates?status=Sleeping", "staff", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCandidateListByStatusPath(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodGet, "/api/candidates/status/Hired%2FClosed", "mentor", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hired/Closed", s.candidates.lastStatus)

	rec = s.json(http.MethodGet, "/api/candidates/status/Unknown", "mentor", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCandidateCreateErrors(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodPost, "/api/candidates", "staff", `{"email":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.candidates.createErr = appErrors.Clone(appErrors.ErrConflict, "candidate email already exists")
	rec = s.json(http.MethodPost, "/api/candidates", "staff", `{"email":"aisha@example.ae","name":"Aisha","subject":"Math"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "aisha@example.ae", s.candidates.lastCreate.Email)
}

func TestCandidateBulkCreateRequiresArray(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodPost, "/api/candidates/bulk", "staff", `{"email":"a@b.ae"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.json(http.MethodPost, "/api/candidates/bulk", "staff", `[{"email":"a@b.ae"},{"email":"c@d.ae"}]`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.candidates.lastBulk, 2)
	var result service.BulkCreateResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Equal(t, 2, result.Created)
}

func TestCandidateEnrollmentRoutesPassActor(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodPost, "/api/candidates/c-1/enrollments", "staff", `{"code":"MATH101"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "MATH101", s.candidates.lastCode)
	assert.Equal(t, "Sara Staff", s.candidates.lastActor.Label())
	assert.Equal(t, models.RoleStaff, s.candidates.lastActor.Role)

	rec = s.json(http.MethodPut, "/api/candidates/c-1/enrollments/SCI201", "staff", `{"cohort":"2024A"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SCI201", s.candidates.lastCode)

	rec = s.json(http.MethodDelete, "/api/candidates/c-1/enrollments/ENG110", "staff", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ENG110", s.candidates.lastCode)

	rec = s.json(http.MethodPut, "/api/candidates/c-1/results/MATH101", "staff", `{"score":81}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.json(http.MethodPost, "/api/candidates/c-1/notes", "staff", `{"text":"called"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.json(http.MethodPut, "/api/candidates/c-1/status", "staff", `{"status":"On Hold"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.json(http.MethodPut, "/api/candidates/c-1/hiring", "staff", `{"stage":"Ready"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.json(http.MethodPost, "/api/candidates/missing/notes", "staff", `{"text":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCandidateEligibility(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodGet, "/api/candidates/c-1/eligibility", "mentor", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var eval eligibility.Evaluation
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &eval))
	assert.False(t, eval.Eligible)
	assert.Equal(t, []string{"SCI201"}, eval.Missing)
}

func TestGraduationRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodGet, "/api/graduation/review", "staff", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env := decode(t, rec)
	assert.EqualValues(t, 1, env.Meta["eligible"])
	assert.EqualValues(t, 0, env.Meta["exceptions"])

	rec = s.json(http.MethodPost, "/api/graduation/approve-all", "staff", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"applied":2}`, string(decode(t, rec).Data))

	s.graduation.approveErr = appErrors.WithDetails(appErrors.ErrNotEligible, "candidate is not eligible", eligibility.Evaluation{Reason: eligibility.ReasonCoursesFailed})
	rec = s.json(http.MethodPost, "/api/graduation/c-1/approve", "staff", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), eligibility.ReasonCoursesFailed)

	rec = s.json(http.MethodPost, "/api/graduation/c-7/force-approve", "admin", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c-7", s.graduation.forced)
}

func TestApplicantRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodPost, "/api/applicants/nadia@example.ae/accept", "staff", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "nadia@example.ae", s.applicants.accepted)

	rec = s.json(http.MethodPost, "/api/applicants/nadia@example.ae/reject", "staff", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.json(http.MethodGet, "/api/applicants", "mentor", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCourseAndUserRoutes(t *testing.T) {
	s := newTestServer(t)

	rec := s.json(http.MethodGet, "/api/courses?includeInactive=true", "mentor", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.courses.includeInactive)

	rec = s.json(http.MethodPost, "/api/courses", "staff", `{"code":"phy300","title":"Physics"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "PHY300")

	rec = s.json(http.MethodGet, "/api/users?role=bogus", "admin", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.json(http.MethodGet, "/api/users?role=staff", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, s.users.lastFilter.Role)
	assert.Equal(t, models.RoleStaff, *s.users.lastFilter.Role)

	rec = s.json(http.MethodGet, "/api/users/u-missing", "admin", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.json(http.MethodDelete, "/api/users/u-staff", "admin", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u-staff", s.users.deleted)

	rec = s.json(http.MethodPost, "/api/mentors", "staff", `{"name":"Omar"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
