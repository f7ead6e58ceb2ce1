package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/trainee-tracker-api/internal/middleware"
	"github.com/noah-isme/trainee-tracker-api/internal/models"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	appErrors "github.com/noah-isme/trainee-tracker-api/pkg/errors"
	"github.com/noah-isme/trainee-tracker-api/pkg/ratelimit"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
)

// Handlers groups every HTTP handler mounted by the router.
type Handlers struct {
	Auth       *AuthHandler
	Users      *UserHandler
	Candidates *CandidateHandler
	Courses    *CourseHandler
	Mentors    *MentorHandler
	Applicants *ApplicantHandler
	Graduation *GraduationHandler
	Imports    *ImportHandler
	Dashboard  *DashboardHandler
	Reports    *ReportHandler
	Audit      *AuditHandler
	Metrics    *MetricsHandler
}

// RouterConfig carries the cross-cutting dependencies of the route table.
type RouterConfig struct {
	APIPrefix    string
	StaticDir    string
	Auth         middleware.TokenValidator
	AuditLog     middleware.AuditWriter
	Limiter      ratelimit.Limiter
	RateRequests int
	RateWindow   time.Duration
	MetricsSvc   *service.MetricsService
	Logger       *zap.Logger
}

// Register mounts the API on r. Role gates: Admin manages users and
// deletes; Admin and Staff perform every other write; Mentors read
// candidates, courses and the dashboard.
func Register(r *gin.Engine, h Handlers, cfg RouterConfig) {
	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = ""
	}

	// status names such as "Hired/Closed" arrive percent-encoded in paths
	r.UseRawPath = true
	r.UnescapePathValues = true

	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	api := r.Group(prefix)

	limited := middleware.RateLimit(cfg.Limiter, cfg.RateRequests, cfg.RateWindow, cfg.MetricsSvc)
	auth := api.Group("/users/auth")
	auth.POST("/login", limited, h.Auth.Login)
	auth.POST("/register", limited, h.Auth.Register)

	secured := api.Group("")
	secured.Use(middleware.JWT(cfg.Auth))
	secured.GET("/users/auth/me", h.Auth.Me)

	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff)
	reader := middleware.RequireRoles(models.RoleAdmin, models.RoleStaff, models.RoleMentor)

	users := secured.Group("/users")
	users.GET("", admin, h.Users.List)
	users.POST("", admin, h.Users.Create)
	users.GET("/:id", admin, h.Users.Get)
	users.PUT("/:id", admin, h.Users.Update)
	users.DELETE("/:id", admin, h.Users.Delete)
	users.PUT("/:id/password", middleware.RBAC(string(models.RoleAdmin), middleware.RoleSelf), h.Auth.ChangePassword)

	candidates := secured.Group("/candidates")
	candidates.GET("", reader, h.Candidates.List)
	candidates.GET("/status/:status", reader, h.Candidates.ListByStatus)
	candidates.POST("", staff, h.Candidates.Create)
	candidates.POST("/bulk", staff, h.Candidates.BulkCreate)
	candidates.GET("/:id", reader, h.Candidates.Get)
	candidates.PUT("/:id", staff, h.Candidates.Update)
	candidates.DELETE("/:id", admin, h.Candidates.Delete)
	candidates.GET("/:id/eligibility", reader, h.Candidates.Eligibility)
	candidates.POST("/:id/enrollments", staff, h.Candidates.AssignEnrollment)
	candidates.PUT("/:id/enrollments/:code", staff, h.Candidates.UpdateEnrollment)
	candidates.DELETE("/:id/enrollments/:code", staff, h.Candidates.RemoveEnrollment)
	candidates.PUT("/:id/results/:code", staff, h.Candidates.RecordResult)
	candidates.POST("/:id/notes", staff, h.Candidates.AddNote)
	candidates.PUT("/:id/status", staff, h.Candidates.SetStatus)
	candidates.PUT("/:id/hiring", staff, h.Candidates.UpdateHiring)

	courses := secured.Group("/courses")
	courses.GET("", reader, h.Courses.List)
	courses.GET("/:code", reader, h.Courses.Get)
	courses.POST("", staff, h.Courses.Create)
	courses.PUT("/:code", staff, h.Courses.Update)
	courses.DELETE("/:code", admin, h.Courses.Delete)

	mentors := secured.Group("/mentors")
	mentors.GET("", staff, h.Mentors.List)
	mentors.GET("/:id", staff, h.Mentors.Get)
	mentors.POST("", staff, h.Mentors.Create)
	mentors.PUT("/:id", staff, h.Mentors.Update)
	mentors.DELETE("/:id", admin, h.Mentors.Delete)

	applicants := secured.Group("/applicants", staff)
	applicants.GET("", h.Applicants.List)
	applicants.POST("/:email/accept", h.Applicants.Accept)
	applicants.POST("/:email/reject", h.Applicants.Reject)

	graduation := secured.Group("/graduation")
	graduation.GET("/review", staff, h.Graduation.Review)
	graduation.POST("/approve-all", staff, h.Graduation.ApproveAll)
	graduation.POST("/:id/approve", staff, h.Graduation.Approve)
	graduation.POST("/:id/force-approve", admin, h.Graduation.ForceApprove)

	imports := secured.Group("/imports", staff)
	imports.POST("/enrollments/preview", h.Imports.PreviewEnrollments)
	imports.POST("/enrollments/commit", h.Imports.CommitEnrollments)
	imports.POST("/results/preview", h.Imports.PreviewResults)
	imports.POST("/results/commit", h.Imports.CommitResults)
	imports.POST("/intake/preview", h.Imports.PreviewIntake)
	imports.POST("/intake/commit", h.Imports.CommitIntake)

	secured.GET("/dashboard", reader, middleware.WithResponseMeta(), h.Dashboard.Summary)

	exported := middleware.Audit(cfg.AuditLog, cfg.Logger, models.AuditActionReportExport, "report")
	reports := secured.Group("/reports")
	reports.GET("/candidates/:id/pdf", reader, exported, h.Reports.CandidatePDF)
	reports.POST("/candidates/export", staff, exported, h.Reports.ExportCandidates)
	// the signed token authorises the download
	api.GET("/reports/download/:token", h.Reports.Download)

	if h.Audit != nil {
		secured.GET("/audit-logs", admin, h.Audit.List)
	}

	r.NoRoute(spaFallback(prefix, cfg.StaticDir))
}

// spaFallback serves built frontend assets and index.html for client-side
// routes. API paths keep the JSON 404.
func spaFallback(prefix, staticDir string) gin.HandlerFunc {
	index := filepath.Join(staticDir, "index.html")
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		isAPI := prefix != "" && (path == prefix || strings.HasPrefix(path, prefix+"/"))
		if isAPI || staticDir == "" || c.Request.Method != http.MethodGet {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
			return
		}
		asset := filepath.Join(staticDir, filepath.Clean("/"+path))
		if info, err := os.Stat(asset); err == nil && !info.IsDir() {
			c.File(asset)
			return
		}
		if _, err := os.Stat(index); err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
			return
		}
		c.File(index)
	}
}
