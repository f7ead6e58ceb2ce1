package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/middleware"
	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// actorFromContext builds the audit actor for the authenticated caller.
func actorFromContext(c *gin.Context) service.Actor {
	actor := service.Actor{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if claims := claimsFromContext(c); claims != nil {
		actor.UserID = claims.UserID
		actor.Email = claims.Email
		actor.Name = claims.Name
		actor.Role = claims.Role
	}
	return actor
}

func invalidPayload(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}
