// Package requestid tags each request with an ID that flows into logs and
// the X-Request-ID response header.
package requestid

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// Header carries the ID on requests and responses.
	Header     = "X-Request-ID"
	contextKey = "request_id"
	maxLength  = 64
)

// Middleware reuses a well-formed incoming X-Request-ID and otherwise mints a
// UUID.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(Header)
		if !valid(reqID) {
			reqID = uuid.NewString()
		}

		c.Set(contextKey, reqID)
		c.Writer.Header().Set(Header, reqID)

		c.Next()
	}
}

// Value returns the request ID stored on the gin context.
func Value(c *gin.Context) string {
	return c.GetString(contextKey)
}

// valid accepts short IDs made of letters, digits, dots, dashes and underscores
// so client-supplied values cannot smuggle anything into log lines.
func valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}
