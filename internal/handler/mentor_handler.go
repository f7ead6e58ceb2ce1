package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

type mentorService interface {
	List(ctx context.Context) ([]models.Mentor, error)
	Get(ctx context.Context, id string) (*models.Mentor, error)
	Create(ctx context.Context, req service.MentorRequest) (*models.Mentor, error)
	Update(ctx context.Context, id string, req service.MentorRequest) (*models.Mentor, error)
	Delete(ctx context.Context, id string) error
}

// MentorHandler exposes mentor CRUD.
type MentorHandler struct {
	service mentorService
}

// NewMentorHandler constructs the handler.
func NewMentorHandler(svc mentorService) *MentorHandler {
	return &MentorHandler{service: svc}
}

// List godoc
// @Summary List mentors
// @Tags Mentors
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /mentors [get]
func (h *MentorHandler) List(c *gin.Context) {
	mentors, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentors)
}

// Get godoc
// @Summary Get mentor
// @Tags Mentors
// @Produce json
// @Param id path string true "Mentor ID"
// @Success 200 {object} response.Envelope
// @Router /mentors/{id} [get]
func (h *MentorHandler) Get(c *gin.Context) {
	mentor, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor)
}

// Create godoc
// @Summary Create mentor
// @Tags Mentors
// @Accept json
// @Produce json
// @Param payload body service.MentorRequest true "Mentor payload"
// @Success 201 {object} response.Envelope
// @Router /mentors [post]
func (h *MentorHandler) Create(c *gin.Context) {
	var req service.MentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid mentor payload"))
		return
	}
	mentor, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mentor)
}

// Update godoc
// @Summary Update mentor
// @Tags Mentors
// @Accept json
// @Produce json
// @Param id path string true "Mentor ID"
// @Param payload body service.MentorRequest true "Mentor payload"
// @Success 200 {object} response.Envelope
// @Router /mentors/{id} [put]
func (h *MentorHandler) Update(c *gin.Context) {
	var req service.MentorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid mentor payload"))
		return
	}
	mentor, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mentor)
}

// Delete godoc
// @Summary Delete mentor
// @Tags Mentors
// @Param id path string true "Mentor ID"
// @Success 204
// @Router /mentors/{id} [delete]
func (h *MentorHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
