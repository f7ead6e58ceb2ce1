package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for HTTP traffic and
// pipeline events. All methods are safe on a nil receiver.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	importRows      *prometheus.CounterVec
	graduations     *prometheus.CounterVec
	rateLimited     *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	importRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_import_rows_total",
		Help: "Committed bulk import rows by import kind and action",
	}, []string{"kind", "action"})

	graduations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_graduations_total",
		Help: "Candidates moved to Graduated by approval mode",
	}, []string{"mode"})

	rateLimited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tracker_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	}, []string{"path"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, importRows, graduations, rateLimited, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		importRows:      importRows,
		graduations:     graduations,
		rateLimited:     rateLimited,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registry returns the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordImportRows counts committed import rows.
func (m *MetricsService) RecordImportRows(kind, action string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.importRows.WithLabelValues(kind, action).Add(float64(n))
}

// RecordGraduations counts graduations by mode (approve, force, bulk).
func (m *MetricsService) RecordGraduations(mode string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.graduations.WithLabelValues(mode).Add(float64(n))
}

// RecordRateLimited counts a throttled request.
func (m *MetricsService) RecordRateLimited(path string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(path).Inc()
}
