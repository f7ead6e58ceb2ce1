package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/eligibility"
	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

type candidateService interface {
	List(ctx context.Context, filter models.CandidateFilter) ([]models.Candidate, error)
	ListByStatus(ctx context.Context, raw string) ([]models.Candidate, error)
	Get(ctx context.Context, id string) (*models.Candidate, error)
	Create(ctx context.Context, req service.CandidateRequest) (*models.Candidate, error)
	BulkCreate(ctx context.Context, reqs []service.CandidateRequest) (*service.BulkCreateResult, error)
	Update(ctx context.Context, id string, req service.CandidateRequest) (*models.Candidate, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
	AssignEnrollment(ctx context.Context, actor service.Actor, id string, req service.EnrollmentRequest) (*models.Candidate, error)
	UpdateEnrollment(ctx context.Context, id, code string, req service.EnrollmentUpdateRequest) (*models.Candidate, error)
	RemoveEnrollment(ctx context.Context, id, code string) (*models.Candidate, error)
	RecordResult(ctx context.Context, id, code string, req service.ResultRequest) (*models.Candidate, error)
	AddNote(ctx context.Context, actor service.Actor, id string, req service.NoteRequest) (*models.Candidate, error)
	SetStatus(ctx context.Context, actor service.Actor, id string, req service.StatusRequest) (*models.Candidate, error)
	UpdateHiring(ctx context.Context, id string, req service.HiringRequest) (*models.Candidate, error)
	Eligibility(ctx context.Context, id string) (*eligibility.Evaluation, error)
}

// CandidateHandler exposes candidate records and their training progress.
type CandidateHandler struct {
	service candidateService
}

// NewCandidateHandler constructs the handler.
func NewCandidateHandler(svc candidateService) *CandidateHandler {
	return &CandidateHandler{service: svc}
}

// List godoc
// @Summary List candidates
// @Tags Candidates
// @Produce json
// @Param status query string false "Candidate status"
// @Param trackId query string false "Track ID"
// @Param search query string false "Name, email or subject search"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /candidates [get]
func (h *CandidateHandler) List(c *gin.Context) {
	filter := models.CandidateFilter{
		TrackID: strings.TrimSpace(c.Query("trackId")),
		Search:  strings.TrimSpace(c.Query("search")),
	}
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		status, err := models.ParseCandidateStatus(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown candidate status"))
			return
		}
		filter.Status = status
	}

	candidates, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, map[string]interface{}{"total": len(candidates)})
}

// ListByStatus godoc
// @Summary List candidates in a status
// @Tags Candidates
// @Produce json
// @Param status path string true "Candidate status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /candidates/status/{status} [get]
func (h *CandidateHandler) ListByStatus(c *gin.Context) {
	candidates, err := h.service.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidates, map[string]interface{}{"total": len(candidates)})
}

// Get godoc
// @Summary Get candidate
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id} [get]
func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate)
}

// Create godoc
// @Summary Create candidate
// @Tags Candidates
// @Accept json
// @Produce json
// @Param payload body service.CandidateRequest true "Candidate payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /candidates [post]
func (h *CandidateHandler) Create(c *gin.Context) {
	var req service.CandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid candidate payload"))
		return
	}
	candidate, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, candidate)
}

// BulkCreate godoc
// @Summary Create many candidates
// @Description Valid items are created; rejected items are reported by index.
// @Tags Candidates
// @Accept json
// @Produce json
// @Param payload body []service.CandidateRequest true "Candidate payloads"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /candidates/bulk [post]
func (h *CandidateHandler) BulkCreate(c *gin.Context) {
	var reqs []service.CandidateRequest
	if err := c.ShouldBindJSON(&reqs); err != nil {
		response.Error(c, invalidPayload(err, "expected an array of candidates"))
		return
	}
	result, err := h.service.BulkCreate(c.Request.Context(), reqs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Update godoc
// @Summary Update candidate
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body service.CandidateRequest true "Candidate payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id} [put]
func (h *CandidateHandler) Update(c *gin.Context) {
	var req service.CandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid candidate payload"))
		return
	}
	candidate, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate)
}

// Delete godoc
// @Summary Delete candidate
// @Tags Candidates
// @Param id path string true "Candidate ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id} [delete]
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AssignEnrollment godoc
// @Summary Enroll candidate in a course
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body service.EnrollmentRequest true "Enrollment"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /candidates/{id}/enrollments [post]
func (h *CandidateHandler) AssignEnrollment(c *gin.Context) {
	var req service.EnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid enrollment payload"))
		return
	}
	candidate, err := h.service.AssignEnrollment(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, candidate)
}

// UpdateEnrollment godoc
// @Summary Update an enrollment
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param code path string true "Course code"
// @Param payload body service.EnrollmentUpdateRequest true "Enrollment changes"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id}/enrollments/{code} [put]
func (h *CandidateHandler) UpdateEnrollment(c *gin.Context) {
	var req service.EnrollmentUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid enrollment payload"))
		return
	}
	candidate, err := h.service.UpdateEnrollment(c.Request.Context(), c.Param("id"), c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate)
}

// RemoveEnrollment godoc
// @Summary Remove an enrollment
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id}/enrollments/{code} [delete]
func (h *CandidateHandler) RemoveEnrollment(c *gin.Context) {
	candidate, err := h.service.RemoveEnrollment(c.Request.Context(), c.Param("id"), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate)
}

// RecordResult godoc
// @Summary Record a course result
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param code path string true "Course code"
// @Param payload body service.ResultRequest true "Result"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id}/results/{code} [put]
func (h *CandidateHandler) RecordResult(c *gin.Context) {
	var req service.ResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid result payload"))
		return
	}
	candidate, err := h.service.RecordResult(c.Request.Context(), c.Param("id"), c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate)
}

// AddNote godoc
// @Summary Add a note
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body service.NoteRequest true "Note"
// @Success 201 {object} response.Envelope
// @Router /candidates/{id}/notes [post]
func (h *CandidateHandler) AddNote(c *gin.Context) {
	var req service.NoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid note payload"))
		return
	}
	candidate, err := h.service.AddNote(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, candidate)
}

// SetStatus godoc
// @Summary Change candidate status
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body service.StatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /candidates/{id}/status [put]
func (h *CandidateHandler) SetStatus(c *gin.Context) {
	var req service.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid status payload"))
		return
	}
	candidate, err := h.service.SetStatus(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate)
}

// UpdateHiring godoc
// @Summary Update hiring progress
// @Tags Candidates
// @Accept json
// @Produce json
// @Param id path string true "Candidate ID"
// @Param payload body service.HiringRequest true "Hiring"
// @Success 200 {object} response.Envelope
// @Router /candidates/{id}/hiring [put]
func (h *CandidateHandler) UpdateHiring(c *gin.Context) {
	var req service.HiringRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid hiring payload"))
		return
	}
	candidate, err := h.service.UpdateHiring(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate)
}

// Eligibility godoc
// @Summary Evaluate graduation eligibility
// @Tags Candidates
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /candidates/{id}/eligibility [get]
func (h *CandidateHandler) Eligibility(c *gin.Context) {
	eval, err := h.service.Eligibility(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, eval)
}
