package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/staffhub/user-management/docs"
	"github.com/staffhub/user-management/internal/api/handler"
	"github.com/staffhub/user-management/internal/api/middleware"
	"github.com/staffhub/user-management/internal/core/ports"
)

// RouterConfig carries everything NewRouter wires into the Echo instance.
type RouterConfig struct {
	Log            zerolog.Logger
	AuthService    ports.AuthService
	AccountService ports.AccountService
	// Checks are the readiness probes served by /health/ready, keyed by dependency name.
	Checks map[string]handler.DependencyCheck
	// AllowBootstrap exposes POST /api/auth/register/super-admin.
	AllowBootstrap bool
	MaxImageBytes  int64
	// MetricsRegisterer defaults to the global Prometheus registerer.
	MetricsRegisterer prometheus.Registerer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(cfg.Log)

	registerer := cfg.MetricsRegisterer
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(cfg.Log))
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "usermgmt",
		Registerer: registerer,
		Skipper:    skipOperational,
	}))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.AccountService)
	userHandler := handler.NewUserHandler(cfg.AccountService)
	profileHandler := handler.NewProfileHandler(cfg.AccountService, cfg.MaxImageBytes)
	requireAuth := middleware.Auth(cfg.AuthService)

	// --- Public auth routes ---
	auth := e.Group("/api/auth")
	if cfg.AllowBootstrap {
		auth.POST("/register/super-admin", authHandler.RegisterSuperAdmin)
	}
	auth.POST("/login", authHandler.Login)

	// --- Authenticated routes ---
	authed := auth.Group("", requireAuth)
	authed.POST("/register/user", authHandler.RegisterUser, middleware.SuperAdminOnly())

	users := authed.Group("/users")
	users.GET("", userHandler.List, middleware.AdminOrAbove())
	users.GET("/:userId", userHandler.Get, middleware.AdminOrAbove())
	users.PATCH("/:userId/promote-to-admin", userHandler.Promote, middleware.SuperAdminOnly())
	users.PATCH("/:userId/demote-to-user", userHandler.Demote, middleware.SuperAdminOnly())
	users.PATCH("/:userId/deactivate", userHandler.Deactivate, middleware.AdminOrAbove())
	users.PATCH("/:userId/activate", userHandler.Activate, middleware.AdminOrAbove())
	users.DELETE("/:userId", userHandler.Delete, middleware.AdminOrAbove())

	authed.GET("/profile", profileHandler.Get)
	authed.PATCH("/profile", profileHandler.Update)
	authed.PUT("/profile/image", profileHandler.UploadImage)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(cfg.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func skipOperational(c echo.Context) bool {
	p := c.Request().URL.Path
	return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
}

// requestLogger emits one structured zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		Skipper:      skipOperational,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= 500 {
				evt = log.Error().Err(v.Error)
			} else if v.Status >= 400 {
				evt = log.Warn()
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}
