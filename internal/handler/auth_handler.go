package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

type authService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	ChangePassword(ctx context.Context, actor service.Actor, email string, req models.ChangePasswordRequest) error
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate user by email and password
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.LoginRequest true "Login payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /users/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid login payload"))
		return
	}
	req.IP = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, res)
}

// Register godoc
// @Summary Register as applicant
// @Description Public self-registration. The account is created with the Teacher role and a pending applicant status.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.RegisterRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid registration payload"))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user)
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /users/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, models.UserInfo{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
		Role:  claims.Role,
	})
}

// ChangePassword godoc
// @Summary Change password
// @Description Change a user's password. The path segment is the account email. Users change their own with the old password; admins may reset anyone's.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param id path string true "User email"
// @Param payload body models.ChangePasswordRequest true "Change password"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /users/{id}/password [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err, "invalid payload"))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), actorFromContext(c), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
