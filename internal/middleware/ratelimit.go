package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/ratelimit"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

// RateLimit throttles a route per client IP. A nil limiter disables it.
func RateLimit(limiter ratelimit.Limiter, limit int, window time.Duration, metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		if limiter.Allow(c.Request.Context(), path+"|"+c.ClientIP(), limit, window) {
			c.Next()
			return
		}
		metricsSvc.RecordRateLimited(path)
		c.Header("Retry-After", retryAfter(window))
		response.Error(c, appErrors.ErrTooManyRequests)
		c.Abort()
	}
}

func retryAfter(window time.Duration) string {
	seconds := int(window / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
