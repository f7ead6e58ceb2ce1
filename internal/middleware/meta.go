package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

const (
	responseMetaKey  = "response_meta"
	requestStartKey  = "request_start"
	processingTimeMs = "processing_time_ms"
)

// WithResponseMeta initialises response metadata storage on the request context.
func WithResponseMeta() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(requestStartKey, time.Now())
		c.Set(responseMetaKey, map[string]interface{}{})
		c.Next()
	}
}

// SetMeta stores a metadata value for the current response.
func SetMeta(c *gin.Context, key string, value interface{}) {
	ensureMeta(c)[key] = value
}

// ExtractMeta returns the metadata map stored on the context with the elapsed
// processing time filled in.
func ExtractMeta(c *gin.Context) map[string]interface{} {
	if c == nil {
		return nil
	}
	meta, exists := c.Get(responseMetaKey)
	if !exists {
		return nil
	}
	typed, ok := meta.(map[string]interface{})
	if !ok {
		return nil
	}
	if _, set := typed[processingTimeMs]; !set {
		if start, ok := c.Get(requestStartKey); ok {
			if ts, ok := start.(time.Time); ok {
				typed[processingTimeMs] = time.Since(ts).Milliseconds()
			}
		}
	}
	return typed
}

func ensureMeta(c *gin.Context) map[string]interface{} {
	if meta, exists := c.Get(responseMetaKey); exists {
		if typed, ok := meta.(map[string]interface{}); ok {
			return typed
		}
	}
	newMeta := make(map[string]interface{})
	c.Set(responseMetaKey, newMeta)
	return newMeta
}
