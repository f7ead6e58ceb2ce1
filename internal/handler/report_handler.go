package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

type reportService interface {
	CandidatePDF(ctx context.Context, id string) ([]byte, string, error)
	ExportCandidates(ctx context.Context, format string, filter models.CandidateFilter) (*service.ExportResult, error)
	ResolveDownload(token string) (*service.ReportDownload, error)
}

// ReportHandler exposes report rendering and export downloads.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(svc reportService) *ReportHandler {
	return &ReportHandler{service: svc}
}

// CandidatePDF godoc
// @Summary Candidate progress report
// @Tags Reports
// @Produce application/pdf
// @Param id path string true "Candidate ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /reports/candidates/{id}/pdf [get]
func (h *ReportHandler) CandidatePDF(c *gin.Context) {
	data, filename, err := h.service.CandidatePDF(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "application/pdf", data)
}

// ExportCandidates godoc
// @Summary Export the candidate list
// @Description Renders the list and returns a signed, expiring download URL.
// @Tags Reports
// @Produce json
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Param status query string false "Candidate status"
// @Param trackId query string false "Track ID"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /reports/candidates/export [post]
func (h *ReportHandler) ExportCandidates(c *gin.Context) {
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

	result, err := h.service.ExportCandidates(c.Request.Context(), c.DefaultQuery("format", "csv"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// Download godoc
// @Summary Download an export
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /reports/download/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	download, err := h.service.ResolveDownload(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close() //nolint:errcheck

	info, err := download.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat export"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", download.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), download.ContentType, download.File, nil)
}
