package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/service"
)

// Metrics returns middleware that captures request metrics using the provided
// service. Requests for skipped paths are not observed.
func Metrics(metricsSvc *service.MetricsService, skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, path := range skip {
		skipped[path] = struct{}{}
	}
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			// unmatched routes share one label to keep cardinality bounded
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
