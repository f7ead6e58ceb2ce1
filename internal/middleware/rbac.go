package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

// RoleSelf lets a caller through when the :id or :email path parameter holds
// the caller's user ID or email.
const RoleSelf = "SELF"

// RBAC enforces role-based access control for routes.
func RBAC(allowed ...string) gin.HandlerFunc {
	allowSelf := false
	allowedRoles := make(map[models.UserRole]struct{})
	for _, a := range allowed {
		if a == RoleSelf {
			allowSelf = true
			continue
		}
		allowedRoles[models.UserRole(a)] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := Claims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if _, ok := allowedRoles[claims.Role]; ok {
			c.Next()
			return
		}

		if allowSelf && isSelf(c, claims) {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is a helper that accepts a list of roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}

func isSelf(c *gin.Context, claims *models.JWTClaims) bool {
	for _, key := range []string{"id", "email"} {
		value := c.Param(key)
		if value == "" {
			continue
		}
		if value == claims.UserID || (claims.Email != "" && strings.EqualFold(value, claims.Email)) {
			return true
		}
	}
	return false
}
