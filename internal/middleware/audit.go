package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/models"
)

// AuditWriter persists audit entries.
type AuditWriter interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// Audit records an audit entry after each successful request on the route.
// Write failures are logged and never change the response.
func Audit(repo AuditWriter, logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if repo == nil || c.Writer.Status() >= 400 {
			return
		}

		entry := &models.AuditLog{
			Action:   action,
			Resource: resource,
			Details: models.AuditDetails{
				"path":      c.FullPath(),
				"method":    c.Request.Method,
				"status":    c.Writer.Status(),
				"latencyMs": time.Since(start).Milliseconds(),
			},
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			CreatedAt: start,
		}
		if id := c.Param("id"); id != "" {
			entry.ResourceID = &id
		}
		if format := c.Query("format"); format != "" {
			entry.Details["format"] = format
		}
		if claims := Claims(c); claims != nil {
			userID := claims.UserID
			entry.UserID = &userID
			entry.Actor = claims.Email
		}

		if err := repo.Create(c.Request.Context(), entry); err != nil {
			logger.Warn("audit write failed", zap.String("action", action), zap.Error(err))
		}
	}
}
