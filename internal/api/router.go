// Package api provides the HTTP API for AutoClimate.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/V8Velocity/auto-climate/internal/alert"
	"github.com/V8Velocity/auto-climate/internal/api/handler"
	"github.com/V8Velocity/auto-climate/internal/api/middleware"
	"github.com/V8Velocity/auto-climate/internal/auth"
	"github.com/V8Velocity/auto-climate/internal/history"
	"github.com/V8Velocity/auto-climate/internal/location"
	"github.com/V8Velocity/auto-climate/internal/prediction"
	"github.com/V8Velocity/auto-climate/internal/provider/resilience"
	"github.com/V8Velocity/auto-climate/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	ServiceName string
	Metrics     *middleware.Metrics

	AuthService     *auth.Service
	LocationService *location.Service
	AlertService    *alert.Service
	AlertEngine     *alert.Engine
	AlertRepo       alert.Repository
	WeatherService  *weather.Service
	HistoryStore    history.Repository
	Predictor       *prediction.Service

	// PredictionWindow is the number of recent samples fed into trend
	// projections.
	PredictionWindow int

	// DB is the shared pool, nil when running on in-memory repositories.
	DB *pgxpool.Pool

	// Registry tracks external provider health for status reporting.
	Registry *resilience.Registry

	// Stream serves the websocket endpoint. Mounted at /ws when set.
	Stream http.Handler
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "autoclimate-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DB, cfg.Registry)
	locationHandler := handler.NewLocationHandler(cfg.LocationService)
	alertHandler := handler.NewAlertHandler(cfg.AlertService, cfg.AlertEngine, cfg.AlertRepo, cfg.WeatherService)
	readingsHandler := handler.NewReadingsHandler(cfg.HistoryStore, cfg.Predictor, cfg.WeatherService, cfg.PredictionWindow)

	// Create auth middleware
	authMiddleware := middleware.Auth(cfg.AuthService)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// Websocket stream endpoint. Mounted outside /v1 and before the JSON
	// content-type middleware: the upgrade request carries no body.
	if cfg.Stream != nil {
		r.Handle("/ws", cfg.Stream)
	}

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			// Status endpoint requires authentication
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
		})

		// Reading history and predictions (public) - standard rate limiting
		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Get("/history", readingsHandler.History)
			r.Get("/readings/latest", readingsHandler.Latest)
		})

		// Predictions run a regression per request - stricter rate limiting
		r.With(expensiveRateLimit).Get("/predictions", readingsHandler.Predict)

		// Me endpoints (authenticated) - user-based rate limiting
		r.Route("/me", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RateLimitByUser(middleware.StandardRateLimit)) // 100 req/min per user

			// Saved locations
			r.Route("/locations", func(r chi.Router) {
				r.Get("/", locationHandler.ListLocations)
				r.Post("/", locationHandler.CreateLocation)
				r.Post("/reorder", locationHandler.ReorderLocations)
				r.Route("/{locationId}", func(r chi.Router) {
					r.Get("/", locationHandler.GetLocation)
					r.Put("/", locationHandler.UpdateLocation)
					r.Delete("/", locationHandler.DeleteLocation)
				})
			})

			// Alert rules
			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertHandler.ListRules)
				r.Post("/", alertHandler.CreateRule)
				r.Get("/active", alertHandler.ListActive)
				r.Route("/{ruleId}", func(r chi.Router) {
					r.Get("/", alertHandler.GetRule)
					r.Put("/", alertHandler.UpdateRule)
					r.Delete("/", alertHandler.DeleteRule)
					r.Post("/test", alertHandler.TestRule)
					r.Post("/ack", alertHandler.AcknowledgeAlert)
				})
			})
		})
	})

	return r
}
