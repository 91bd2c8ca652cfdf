// Package api assembles the HTTP surface of the catalog.
//
// @title                       Peliculas Catalog API
// @version                     1.0
// @description                 Movie catalog with categories, image uploads and token authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/peliculas/catalog-api/docs"
	"github.com/peliculas/catalog-api/internal/api/handler"
	"github.com/peliculas/catalog-api/internal/api/middleware"
	"github.com/peliculas/catalog-api/internal/core/domain"
	"github.com/peliculas/catalog-api/internal/core/ports"
)

// maxUploadBody caps request bodies; three images plus form fields fit well
// under it.
const maxUploadBody = "32M"

const metricsSubsystem = "catalog"

// Dependencies is everything the router needs from main.
type Dependencies struct {
	Auth       ports.AuthService
	Movies     ports.MovieService
	Categories ports.CategoryService
	Images     ports.FileStore
	Tokens     middleware.TokenVerifier
	Probes     map[string]handler.Pinger
	// PathBase is the prefix the service is mounted under behind a proxy.
	PathBase string
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
	Log      zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	promMiddleware, promHandler := prometheusHooks(deps.Registry)
	e.Use(promMiddleware)
	e.Use(echomiddleware.BodyLimit(maxUploadBody))

	authHandler := handler.NewAuthHandler(deps.Auth)
	movieHandler := handler.NewMovieHandler(deps.Movies, deps.PathBase)
	categoryHandler := handler.NewCategoryHandler(deps.Categories)
	imageHandler := handler.NewImageHandler(deps.Images)

	requireAuth := middleware.Auth(deps.Tokens)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewReadinessHandler(deps.Probes).Readiness)
	e.GET("/metrics", promHandler)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Stored images ---
	e.GET("/ImagenesPeliculas/:name", imageHandler.Serve)

	v1 := e.Group("/api/v1")

	// --- Users ---
	users := v1.Group("/usuarios")
	users.POST("/registro", authHandler.Register)
	users.POST("/login", authHandler.Login)
	users.GET("/me", authHandler.Me, requireAuth)
	users.GET("", authHandler.ListUsers, requireAuth, adminOnly)
	users.GET("/:id", authHandler.GetUser, requireAuth, adminOnly)

	// --- Movies ---
	movies := v1.Group("/peliculas")
	movies.GET("", movieHandler.List)
	movies.GET("/buscar", movieHandler.Search)
	movies.GET("/categoria/:categoryId", movieHandler.ListByCategory)
	movies.GET("/:id", movieHandler.Get).Name = "movies.get"
	movies.POST("", movieHandler.Create, requireAuth, adminOnly)
	movies.PATCH("/:id", movieHandler.Update, requireAuth, adminOnly)
	movies.DELETE("/:id", movieHandler.Delete, requireAuth, adminOnly)

	// --- Categories ---
	categories := v1.Group("/categorias")
	categories.GET("", categoryHandler.List)
	categories.GET("/:id", categoryHandler.Get)
	categories.POST("", categoryHandler.Create, requireAuth, adminOnly)
	categories.PATCH("/:id", categoryHandler.Update, requireAuth, adminOnly)
	categories.DELETE("/:id", categoryHandler.Delete, requireAuth, adminOnly)

	return e
}

func prometheusHooks(reg *prometheus.Registry) (echo.MiddlewareFunc, echo.HandlerFunc) {
	if reg == nil {
		return echoprometheus.NewMiddleware(metricsSubsystem), echoprometheus.NewHandler()
	}
	mw := echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: reg,
	})
	h := echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
	return mw, h
}

// requestLogger feeds echo's request logger into zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
