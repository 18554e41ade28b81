package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/devconnector/directory-api/docs"
	"github.com/devconnector/directory-api/internal/api/handler"
	"github.com/devconnector/directory-api/internal/api/middleware"
	"github.com/devconnector/directory-api/internal/core/ports"
	"github.com/devconnector/directory-api/internal/infrastructure/http/handlers"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Log            zerolog.Logger
	AuthService    ports.AuthService
	ProfileService ports.ProfileService
	Tokens         ports.TokenVerifier
	Health         []handlers.Dependency
	// MetricsEnabled mounts the Prometheus middleware and /metrics. The
	// collectors live in the default registry, so enable it for one router
	// per process.
	MetricsEnabled bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(middleware.RequestLogger(d.Log))
	if d.MetricsEnabled {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem: "directory",
			Skipper: func(c echo.Context) bool {
				p := c.Path()
				return p == "/metrics" || strings.HasPrefix(p, "/health") || strings.HasPrefix(p, "/swagger")
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Dependencies ---
	userHandler := handler.NewUserHandler(d.AuthService)
	authHandler := handler.NewAuthHandler(d.AuthService)
	profileHandler := handler.NewProfileHandler(d.ProfileService)
	auth := middleware.Auth(d.Tokens, d.Log)

	api := e.Group("/api")

	// --- Users / auth ---
	api.POST("/users", userHandler.Register)
	api.GET("/auth", authHandler.Me, auth)
	api.POST("/auth", authHandler.Login)

	// --- Profiles ---
	api.GET("/profile/me", profileHandler.Me, auth)
	api.POST("/profile", profileHandler.Upsert, auth)
	api.GET("/profile", profileHandler.List)
	api.GET("/profile/user/:user_id", profileHandler.GetByUser)
	api.DELETE("/profile", profileHandler.Delete, auth)

	// --- Health checks (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(d.Health...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- API docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
