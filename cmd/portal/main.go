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
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/course-enrollment-portal/api/swagger"
	"github.com/noah-isme/course-enrollment-portal/internal/handler"
	"github.com/noah-isme/course-enrollment-portal/internal/middleware"
	"github.com/noah-isme/course-enrollment-portal/internal/repository"
	"github.com/noah-isme/course-enrollment-portal/internal/service"
	"github.com/noah-isme/course-enrollment-portal/pkg/apiclient"
	"github.com/noah-isme/course-enrollment-portal/pkg/cache"
	"github.com/noah-isme/course-enrollment-portal/pkg/config"
	"github.com/noah-isme/course-enrollment-portal/pkg/database"
	"github.com/noah-isme/course-enrollment-portal/pkg/jobs"
	"github.com/noah-isme/course-enrollment-portal/pkg/logger"
	"github.com/noah-isme/course-enrollment-portal/pkg/validation"
	"github.com/noah-isme/course-enrollment-portal/web"
)

// @title Course Enrollment Portal API
// @version 1.0.0
// @description Read-only JSON views over the courses and enrollments shown by the portal.
// @BasePath /
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()
	client, err := apiclient.New(apiclient.Config{
		BaseURL:  cfg.Remote.BaseURL,
		Timeout:  cfg.Remote.Timeout,
		Observer: metrics,
		Logger:   logr,
	})
	if err != nil {
		logr.Fatal("invalid remote api config", zap.Error(err))
	}
	courseRepo := repository.NewCourseRepository(client)
	enrollmentRepo := repository.NewEnrollmentRepository(client)

	checks := map[string]handler.ReadinessCheck{}

	var sessionStore service.SessionStore
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		redisClient, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close() //nolint:errcheck
		sessionStore = repository.NewRedisSessionRepository(redisClient, logr)
		checks["redis"] = redisCheck(redisClient)
	default:
		sessionStore = repository.NewMemorySessionRepository()
	}
	sessions := service.NewSessionService(sessionStore, service.SessionConfig{
		Secret:    cfg.Session.Secret,
		TTL:       cfg.Session.TTL,
		NoticeTTL: cfg.Listing.NoticeTTL,
	}, logr)
	sessions.SetObserver(metrics)

	var (
		auditSvc  *service.AuditService
		auditRepo *repository.AuditRepository
	)
	if cfg.Audit.Enabled {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			logr.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer db.Close() //nolint:errcheck
		checks["postgres"] = postgresCheck(db)

		auditRepo = repository.NewAuditRepository(db)
		auditSvc = service.NewAuditService(auditRepo, nil, logr)
		queue := jobs.NewQueue("audit", func(ctx context.Context, job jobs.Job) error {
			err := auditSvc.Handle(ctx, job)
			metrics.RecordAuditJob(err)
			return err
		}, jobs.QueueConfig{
			Workers:    cfg.Audit.Workers,
			MaxRetries: cfg.Audit.Retries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		auditSvc.SetQueue(queue)
	}

	validator := validation.New()
	portal := service.NewPortalService(courseRepo, enrollmentRepo, service.PortalConfig{
		CoursesPageSize:     cfg.Listing.CoursesPageSize,
		EnrollmentsPageSize: cfg.Listing.EnrollmentsPageSize,
	}, logr)
	courses := service.NewCourseService(courseRepo, validator, auditSvc, logr)
	enrollments := service.NewEnrollmentService(enrollmentRepo, validator, auditSvc, logr)
	exports := service.NewExportService(nil, nil, logr)

	tmpl, err := web.Templates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	views := handler.NewViewHandler(portal, nil)
	if auditRepo != nil {
		views = handler.NewViewHandler(portal, auditRepo)
	}

	r := handler.NewRouter(handler.RouterConfig{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Session: middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			Secure:     cfg.Env == config.EnvProduction,
		},
		Templates: tmpl,
		Logger:    logr,
		Metrics:   metrics,
		Sessions:  sessions,
		Portal:    handler.NewPortalHandler(portal, courses, enrollments, sessions, exports, logr),
		Views:     views,
		Ops:       handler.NewMetricsHandler(metrics, checks),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "remote", cfg.Remote.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("could not stop server gracefully", zap.Error(err))
	}
}

func redisCheck(client *redis.Client) handler.ReadinessCheck {
	return func(ctx context.Context) error {
		return cache.Ping(ctx, client)
	}
}

func postgresCheck(db *sqlx.DB) handler.ReadinessCheck {
	return func(ctx context.Context) error {
		return db.PingContext(ctx)
	}
}
