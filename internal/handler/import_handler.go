package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

// maxUploadBytes caps spreadsheet uploads.
const maxUploadBytes = 10 << 20

type importService interface {
	PreviewEnrollments(ctx context.Context, filename string, r io.Reader) (*service.EnrollmentImportReport, error)
	CommitEnrollments(ctx context.Context, actor service.Actor, filename string, r io.Reader) (*service.EnrollmentImportReport, error)
	PreviewResults(ctx context.Context, filename string, r io.Reader) (*service.EnrollmentImportReport, error)
	CommitResults(ctx context.Context, actor service.Actor, filename string, r io.Reader) (*service.EnrollmentImportReport, error)
	PreviewIntake(ctx context.Context, filename string, r io.Reader) (*service.IntakeReport, error)
	CommitIntake(ctx context.Context, actor service.Actor, filename string, r io.Reader) (*service.IntakeReport, error)
}

// ImportHandler accepts CSV or XLSX uploads in the multipart field "file".
type ImportHandler struct {
	service importService
}

// NewImportHandler constructs the handler.
func NewImportHandler(svc importService) *ImportHandler {
	return &ImportHandler{service: svc}
}

// PreviewEnrollments godoc
// @Summary Preview a bulk enrollment file
// @Description Classifies every row as add, update, skip or error without writing.
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /imports/enrollments/preview [post]
func (h *ImportHandler) PreviewEnrollments(c *gin.Context) {
	h.handle(c, func(ctx context.Context, name string, r io.Reader) (interface{}, error) {
		return h.service.PreviewEnrollments(ctx, name, r)
	})
}

// CommitEnrollments godoc
// @Summary Apply a bulk enrollment file
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /imports/enrollments/commit [post]
func (h *ImportHandler) CommitEnrollments(c *gin.Context) {
	actor := actorFromContext(c)
	h.handle(c, func(ctx context.Context, name string, r io.Reader) (interface{}, error) {
		return h.service.CommitEnrollments(ctx, actor, name, r)
	})
}

// PreviewResults godoc
// @Summary Preview a results file
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} response.Envelope
// @Router /imports/results/preview [post]
func (h *ImportHandler) PreviewResults(c *gin.Context) {
	h.handle(c, func(ctx context.Context, name string, r io.Reader) (interface{}, error) {
		return h.service.PreviewResults(ctx, name, r)
	})
}

// CommitResults godoc
// @Summary Apply a results file
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} response.Envelope
// @Router /imports/results/commit [post]
func (h *ImportHandler) CommitResults(c *gin.Context) {
	actor := actorFromContext(c)
	h.handle(c, func(ctx context.Context, name string, r io.Reader) (interface{}, error) {
		return h.service.CommitResults(ctx, actor, name, r)
	})
}

// PreviewIntake godoc
// @Summary Validate an intake file
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} response.Envelope
// @Router /imports/intake/preview [post]
func (h *ImportHandler) PreviewIntake(c *gin.Context) {
	h.handle(c, func(ctx context.Context, name string, r io.Reader) (interface{}, error) {
		return h.service.PreviewIntake(ctx, name, r)
	})
}

// CommitIntake godoc
// @Summary Create candidates from an intake file
// @Description Nothing is written unless every row is valid.
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /imports/intake/commit [post]
func (h *ImportHandler) CommitIntake(c *gin.Context) {
	actor := actorFromContext(c)
	h.handle(c, func(ctx context.Context, name string, r io.Reader) (interface{}, error) {
		return h.service.CommitIntake(ctx, actor, name, r)
	})
}

func (h *ImportHandler) handle(c *gin.Context, run func(ctx context.Context, name string, r io.Reader) (interface{}, error)) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
		return
	}
	defer src.Close()

	result, err := run(c.Request.Context(), fileHeader.Filename, src)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
