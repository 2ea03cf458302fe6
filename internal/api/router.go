package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/edulearn/learner-gateway/docs"
	"github.com/edulearn/learner-gateway/internal/api/handler"
	"github.com/edulearn/learner-gateway/internal/api/middleware"
	"github.com/edulearn/learner-gateway/internal/core/domain"
	"github.com/edulearn/learner-gateway/internal/core/ports"
	"github.com/edulearn/learner-gateway/internal/infrastructure/http/handlers"
)

// Dependencies are the services the router mounts.
type Dependencies struct {
	Log       zerolog.Logger
	JWTSecret string
	LoginPath string

	Auth         ports.AuthService
	Streaks      ports.StreakService
	Activity     ports.ActivitySink
	Catalog      ports.CatalogService
	Certificates ports.CertificateService
	Probes       map[string]handlers.Probe

	// Metrics receives the HTTP metrics. Nil means the default registry.
	Metrics *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Metrics != nil {
		registerer, gatherer = d.Metrics, d.Metrics
	}
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "edulearn",
		Registerer: registerer,
	}))
	e.Use(middleware.Session(d.JWTSecret))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	streakHandler := handler.NewStreakHandler(d.Streaks, d.Activity)
	catalogHandler := handler.NewCatalogHandler(d.Catalog)
	certificateHandler := handler.NewCertificateHandler(d.Certificates)

	// --- Operational endpoints (no auth required) ---
	e.GET("/health", handlers.NewHealthHandler().Liveness)
	e.GET("/health/ready", handlers.NewReadinessHandler(d.Probes, d.Auth.Initialized).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.POST("/auth/login", authHandler.Login)
	e.GET("/v1/courses", catalogHandler.ListCourses)

	// --- Guarded routes ---
	activity := middleware.Activity(d.Activity, d.Log)
	guarded := func(allowed domain.AllowedRole) []echo.MiddlewareFunc {
		return []echo.MiddlewareFunc{middleware.Guard(allowed, d.Auth, d.LoginPath), activity}
	}
	all := guarded(domain.AllowAll)
	students := guarded(domain.AllowStudent)
	staff := guarded(domain.AllowStaff)

	e.GET("/v1/courses/:id", catalogHandler.GetCourse, all...)
	e.POST("/v1/streak/login", streakHandler.RecordLogin, all...)
	e.GET("/v1/streak", streakHandler.Status, all...)
	e.GET("/v1/notices", streakHandler.Notices, all...)
	e.GET("/v1/applications", catalogHandler.ListApplications, all...)
	e.GET("/v1/notifications", catalogHandler.ListNotifications, all...)
	// The handler forwards the ping itself.
	e.POST("/v1/activity", streakHandler.Activity, middleware.Guard(domain.AllowAll, d.Auth, d.LoginPath))

	e.POST("/v1/applications", catalogHandler.Apply, students...)
	e.DELETE("/v1/applications/:id", catalogHandler.CancelApplication, students...)
	e.GET("/v1/profile", catalogHandler.GetProfile, students...)
	e.PUT("/v1/profile", catalogHandler.UpdateProfile, students...)
	e.POST("/v1/profile/picture", catalogHandler.UploadProfilePicture, students...)
	e.GET("/v1/certificates", certificateHandler.List, students...)
	e.GET("/v1/certificates/:courseId/pdf", certificateHandler.Download, students...)

	e.PUT("/v1/applications/:id", catalogHandler.ReviewApplication, staff...)
	e.POST("/v1/notifications/reply", catalogHandler.ReplyNotification, staff...)

	return e
}
