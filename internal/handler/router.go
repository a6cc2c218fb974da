package handler

import (
	"html/template"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/course-enrollment-portal/internal/middleware"
	"github.com/noah-isme/course-enrollment-portal/internal/service"
	"github.com/noah-isme/course-enrollment-portal/pkg/logger"
	corsmiddleware "github.com/noah-isme/course-enrollment-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/course-enrollment-portal/pkg/middleware/requestid"
)

// RouterConfig carries everything the HTTP surface is built from.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	EnableDocs     bool
	Session        middleware.SessionOptions
	Templates      *template.Template
	Logger         *zap.Logger

	Metrics  *service.MetricsService
	Sessions *service.SessionService
	Portal   *PortalHandler
	Views    *ViewHandler
	Ops      *MetricsHandler
}

// NewRouter assembles the gin engine.
func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(cfg.Metrics))
	if cfg.Templates != nil {
		r.SetHTMLTemplate(cfg.Templates)
	}

	r.GET("/health", cfg.Ops.Health)
	r.GET("/ready", cfg.Ops.Ready)
	r.GET("/metrics", cfg.Ops.Prometheus)
	r.GET("/metrics/summary", cfg.Ops.Snapshot)
	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	pages := r.Group("/")
	pages.Use(middleware.Session(cfg.Sessions, cfg.Session, log))
	{
		pages.GET("/", cfg.Portal.Dashboard)
		pages.POST("/courses", cfg.Portal.SubmitCourse)
		pages.POST("/courses/cancel", cfg.Portal.CancelEdit)
		pages.POST("/courses/:id/edit", cfg.Portal.EditCourse)
		pages.POST("/courses/:id/delete", cfg.Portal.DeleteCourse)
		pages.POST("/enrollments", cfg.Portal.Enroll)
		pages.POST("/enrollments/:id/:action", cfg.Portal.Transition)
	}
	r.GET("/enrollments/export.csv", cfg.Portal.Export(service.ExportCSV))
	r.GET("/enrollments/export.pdf", cfg.Portal.Export(service.ExportPDF))

	prefix := "/" + strings.Trim(cfg.APIPrefix, "/")
	if prefix == "/" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)
	{
		api.GET("/courses", cfg.Views.Courses)
		api.GET("/enrollments", cfg.Views.Enrollments)
		api.GET("/audit", cfg.Views.Audit)
	}

	return r
}
