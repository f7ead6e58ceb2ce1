package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

type graduationService interface {
	Review(ctx context.Context) (*service.GraduationReview, error)
	Approve(ctx context.Context, actor service.Actor, id string) (*models.Candidate, error)
	ForceApprove(ctx context.Context, actor service.Actor, id string) (*models.Candidate, error)
	ApproveAll(ctx context.Context, actor service.Actor) (*service.ApproveAllResult, error)
}

// GraduationHandler exposes the graduation review queue.
type GraduationHandler struct {
	service graduationService
}

// NewGraduationHandler constructs the handler.
func NewGraduationHandler(svc graduationService) *GraduationHandler {
	return &GraduationHandler{service: svc}
}

// Review godoc
// @Summary Graduation review
// @Description Splits candidates awaiting graduation into eligible and exception lists.
// @Tags Graduation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /graduation/review [get]
func (h *GraduationHandler) Review(c *gin.Context) {
	review, err := h.service.Review(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review, map[string]interface{}{
		"eligible":   len(review.Eligible),
		"exceptions": len(review.Exceptions),
	})
}

// Approve godoc
// @Summary Approve graduation
// @Tags Graduation
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /graduation/{id}/approve [post]
func (h *GraduationHandler) Approve(c *gin.Context) {
	candidate, err := h.service.Approve(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate)
}

// ForceApprove godoc
// @Summary Force graduation
// @Description Graduates the candidate regardless of eligibility.
// @Tags Graduation
// @Produce json
// @Param id path string true "Candidate ID"
// @Success 200 {object} response.Envelope
// @Router /graduation/{id}/force-approve [post]
func (h *GraduationHandler) ForceApprove(c *gin.Context) {
	candidate, err := h.service.ForceApprove(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, candidate)
}

// ApproveAll godoc
// @Summary Approve every eligible candidate
// @Tags Graduation
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /graduation/approve-all [post]
func (h *GraduationHandler) ApproveAll(c *gin.Context) {
	result, err := h.service.ApproveAll(c.Request.Context(), actorFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
