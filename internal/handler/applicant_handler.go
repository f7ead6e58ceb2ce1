package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

type applicantService interface {
	List(ctx context.Context) ([]models.User, error)
	Accept(ctx context.Context, actor service.Actor, email string) (*models.Candidate, error)
	Reject(ctx context.Context, actor service.Actor, email string) (*models.User, error)
}

// ApplicantHandler reviews self-registered teachers.
type ApplicantHandler struct {
	service applicantService
}

// NewApplicantHandler constructs the handler.
func NewApplicantHandler(svc applicantService) *ApplicantHandler {
	return &ApplicantHandler{service: svc}
}

// List godoc
// @Summary List applicants
// @Tags Applicants
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /applicants [get]
func (h *ApplicantHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, users)
}

// Accept godoc
// @Summary Accept applicant
// @Description Copies the applicant profile into a new candidate.
// @Tags Applicants
// @Produce json
// @Param email path string true "Applicant email"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /applicants/{email}/accept [post]
func (h *ApplicantHandler) Accept(c *gin.Context) {
	candidate, err := h.service.Accept(c.Request.Context(), actorFromContext(c), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, candidate)
}

// Reject godoc
// @Summary Reject applicant
// @Tags Applicants
// @Produce json
// @Param email path string true "Applicant email"
// @Success 200 {object} response.Envelope
// @Router /applicants/{email}/reject [post]
func (h *ApplicantHandler) Reject(c *gin.Context) {
	user, err := h.service.Reject(c.Request.Context(), actorFromContext(c), c.Param("email"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}
