package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/trainee-tracker-api/api/swagger"
	"github.com/noah-isme/trainee-tracker-api/internal/handler"
	internalmiddleware "github.com/noah-isme/trainee-tracker-api/internal/middleware"
	"github.com/noah-isme/trainee-tracker-api/internal/repository"
	"github.com/noah-isme/trainee-tracker-api/internal/repository/jsonfile"
	"github.com/noah-isme/trainee-tracker-api/internal/service"
	"github.com/noah-isme/trainee-tracker-api/pkg/config"
	"github.com/noah-isme/trainee-tracker-api/pkg/database"
	"github.com/noah-isme/trainee-tracker-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/trainee-tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/trainee-tracker-api/pkg/middleware/requestid"
	"github.com/noah-isme/trainee-tracker-api/pkg/ratelimit"
	"github.com/noah-isme/trainee-tracker-api/pkg/response"
	"github.com/noah-isme/trainee-tracker-api/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Trainee Tracker API
// @version 1.0.0
// @description Teacher-training pipeline tracker: candidates, courses, imports, graduation and reports.
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	response.SetDebug(cfg.Env != config.EnvProduction)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openRepositories(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()

	metricsSvc := service.NewMetricsService()
	validate := service.NewValidator()

	authSvc := service.NewAuthService(repos.Users, repos.Audit, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	if err := authSvc.EnsureAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		logr.Fatal("failed to seed admin", zap.Error(err))
	}

	exportFiles, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Users:      handler.NewUserHandler(service.NewUserService(repos.Users, repos.Audit, validate, logr)),
		Candidates: handler.NewCandidateHandler(service.NewCandidateService(repos.Candidates, repos.Courses, repos.Audit, validate, logr)),
		Courses:    handler.NewCourseHandler(service.NewCourseService(repos.Courses, validate, logr)),
		Mentors:    handler.NewMentorHandler(service.NewMentorService(repos.Mentors, validate, logr)),
		Applicants: handler.NewApplicantHandler(service.NewApplicantService(repos.Users, repos.Candidates, repos.Audit, logr)),
		Graduation: handler.NewGraduationHandler(service.NewGraduationService(repos.Candidates, repos.Courses, repos.Audit, metricsSvc, logr)),
		Imports:    handler.NewImportHandler(service.NewImportService(repos.Candidates, repos.Courses, repos.Audit, metricsSvc, validate, logr)),
		Dashboard: handler.NewDashboardHandler(service.NewDashboardService(repos.Candidates, repos.Courses, logr, service.DashboardServiceConfig{
			StaleAfter: cfg.Dashboard.StaleAfter,
		})),
		Reports: handler.NewReportHandler(service.NewReportService(repos.Candidates, repos.Courses, exportFiles, signer, logr, service.ReportServiceConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.SignedURLTTL,
		})),
		Audit:   handler.NewAuditHandler(repos.Audit),
		Metrics: handler.NewMetricsHandler(metricsSvc, cfg.Storage.Driver, repos.Ping),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics"))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, handlers, handler.RouterConfig{
		APIPrefix:    cfg.APIPrefix,
		StaticDir:    cfg.StaticDir,
		Auth:         authSvc,
		AuditLog:     repos.Audit,
		Limiter:      newLimiter(ctx, cfg, logr),
		RateRequests: cfg.RateLimit.Requests,
		RateWindow:   cfg.RateLimit.Window,
		MetricsSvc:   metricsSvc,
		Logger:       logr,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func openRepositories(ctx context.Context, cfg *config.Config, logr *zap.Logger) (repository.Repositories, func(), error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := database.RunMigrations(db.DB, logr); err != nil {
				_ = db.Close()
				return repository.Repositories{}, nil, err
			}
		}
		return repository.NewPostgresRepositories(db), func() { _ = db.Close() }, nil
	case config.StorageFile, "":
		store, err := jsonfile.NewStore(cfg.Storage.DataDir)
		if err != nil {
			return repository.Repositories{}, nil, err
		}
		return jsonfile.NewRepositories(store), func() {}, nil
	default:
		return repository.Repositories{}, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// newLimiter prefers Redis so counters are shared across instances and falls
// back to an in-process limiter when Redis is unreachable.
func newLimiter(ctx context.Context, cfg *config.Config, logr *zap.Logger) ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	client, err := ratelimit.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, using in-memory rate limiter", zap.Error(err))
		return ratelimit.NewMemoryLimiter()
	}
	return ratelimit.NewRedisLimiter(client, "ratelimit:")
}
