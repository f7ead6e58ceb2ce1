package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

type userService interface {
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Get(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, actor service.Actor, req service.CreateUserRequest) (*models.User, error)
	Update(ctx context.Context, actor service.Actor, id string, req service.UpdateUserRequest) (*models.User, error)
	Delete(ctx context.Context, actor service.Actor, id string) error
}

// UserHandler handles user CRUD endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// List godoc
// @Summary List users
// @Tags Users
// @Produce json
// @Param role query string false "Role filter"
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	var filter models.UserFilter
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		role, err := models.ParseUserRole(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown role"))
			return
		}
		filter.Role = &role
	}
	filter.Search = c.Query("search")

	users, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, users, map[string]interface{}{"total": len(users)})
}

// Get godoc
// @Summary Get user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, user)
}

// Create godoc
// @Summary Create user
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.CreateUserRequest true "User payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req service.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid user payload"))
		return
	}

	user, err := h.service.Create(c.Request.Context(), actorFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Update godoc
// @Summary Update user
// @Tags Users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param payload body service.UpdateUserRequest true "User payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid user payload"))
		return
	}

	user, err := h.service.Update(c.Request.Context(), actorFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, user)
}

// Delete godoc
// @Summary Delete user
// @Tags Users
// @Param id path string true "User ID"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), actorFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
