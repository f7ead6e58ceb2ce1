package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/middleware"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

type dashboardService interface {
	Summary(ctx context.Context) (*service.DashboardSummary, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Summary godoc
// @Summary Pipeline dashboard
// @Description Status, subject and emirate histograms, course engagement and pass rates, at-risk and stale candidates.
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Summary(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}
