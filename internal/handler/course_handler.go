package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

type courseService interface {
	List(ctx context.Context, includeInactive bool) ([]models.Course, error)
	Get(ctx context.Context, code string) (*models.Course, error)
	Create(ctx context.Context, req service.CourseRequest) (*models.Course, error)
	Update(ctx context.Context, code string, req service.CourseRequest) (*models.Course, error)
	Delete(ctx context.Context, code string) error
}

// CourseHandler manages the course catalog.
type CourseHandler struct {
	service courseService
}

// NewCourseHandler constructs the handler.
func NewCourseHandler(svc courseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Param includeInactive query bool false "Include deactivated courses"
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.DefaultQuery("includeInactive", "false"))
	courses, err := h.service.List(c.Request.Context(), includeInactive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses)
}

// Get godoc
// @Summary Get course
// @Tags Courses
// @Produce json
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{code} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Create godoc
// @Summary Create course
// @Tags Courses
// @Accept json
// @Produce json
// @Param payload body service.CourseRequest true "Course payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /courses [post]
func (h *CourseHandler) Create(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid course payload"))
		return
	}
	course, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, course)
}

// Update godoc
// @Summary Update course
// @Tags Courses
// @Accept json
// @Produce json
// @Param code path string true "Course code"
// @Param payload body service.CourseRequest true "Course payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /courses/{code} [put]
func (h *CourseHandler) Update(c *gin.Context) {
	var req service.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid course payload"))
		return
	}
	course, err := h.service.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course)
}

// Delete godoc
// @Summary Deactivate course
// @Tags Courses
// @Param code path string true "Course code"
// @Success 204
// @Router /courses/{code} [delete]
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
