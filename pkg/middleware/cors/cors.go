// Package cors answers browser preflights for the dashboard SPA and API clients.
package cors

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/pkg/config"
)

const allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"

// New builds the CORS middleware from config. Credentials are only allowed
// for an explicit origin list; a wildcard response never carries them.
func New(cfg config.CORSConfig) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		origins[strings.ToLower(strings.TrimRight(origin, "/"))] = struct{}{}
	}
	allowAll := len(origins) == 0

	allowHeaders := strings.Join(cfg.AllowedHeaders, ", ")
	exposeHeaders := strings.Join(cfg.ExposedHeaders, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(int(cfg.MaxAge.Seconds()))
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := c.GetHeader("Origin")
		switch {
		case origin == "":
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case allowed(origins, origin):
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
		default:
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		if exposeHeaders != "" {
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
		}

		if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
			h.Set("Access-Control-Allow-Methods", allowedMethods)
			if allowHeaders != "" {
				h.Set("Access-Control-Allow-Headers", allowHeaders)
			}
			if maxAge != "" {
				h.Set("Access-Control-Max-Age", maxAge)
			}
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func allowed(origins map[string]struct{}, origin string) bool {
	_, ok := origins[strings.ToLower(strings.TrimRight(origin, "/"))]
	return ok
}
