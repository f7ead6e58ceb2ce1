package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/trainee-tracker-api/internal/service"
)

const healthTimeout = 2 * time.Second

// Pinger reports whether a storage backend is reachable.
type Pinger func(ctx context.Context) error

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	storage string
	ping    Pinger
}

// NewMetricsHandler constructs a metrics handler. ping may be nil for the
// file store.
func NewMetricsHandler(metrics *service.MetricsService, storage string, ping Pinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, storage: storage, ping: ping}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health godoc
// @Summary Liveness and storage check
// @Tags Platform
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *MetricsHandler) Health(c *gin.Context) {
	body := gin.H{"status": "ok", "storage": h.storage}
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			body["status"] = "degraded"
			body["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
	}
	c.JSON(http.StatusOK, body)
}
