package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 1000
)

type auditReader interface {
	List(ctx context.Context, limit int) ([]models.AuditLog, error)
}

// AuditHandler lists recent audit entries.
type AuditHandler struct {
	repo auditReader
}

// NewAuditHandler constructs the handler.
func NewAuditHandler(repo auditReader) *AuditHandler {
	return &AuditHandler{repo: repo}
}

// List godoc
// @Summary Recent audit log
// @Tags Audit
// @Produce json
// @Param limit query int false "Maximum entries" default(100)
// @Success 200 {object} response.Envelope
// @Router /audit-logs [get]
func (h *AuditHandler) List(c *gin.Context) {
	limit := defaultAuditLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	if limit > maxAuditLimit {
		limit = maxAuditLimit
	}

	logs, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list audit logs"))
		return
	}
	response.JSON(c, http.StatusOK, logs)
}
