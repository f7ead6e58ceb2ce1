package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/candidates", http.StatusOK, 15*time.Millisecond)
	m.RecordImportRows("enrollments", "add", 3)
	m.RecordImportRows("enrollments", "add", 0)
	m.RecordGraduations("bulk", 2)
	m.RecordRateLimited("/api/users/auth/login")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `tracker_import_rows_total{action="add",kind="enrollments"} 3`))
	assert.True(t, strings.Contains(body, `tracker_graduations_total{mode="bulk"} 2`))
	assert.True(t, strings.Contains(body, `http_requests_total{method="GET",path="/api/candidates",status="200"} 1`))
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
	m.RecordImportRows("intake", "create", 1)
	m.RecordGraduations("force", 1)
	m.RecordRateLimited("/")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
