// Package main provides the entrypoint for the AutoClimate API server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/V8Velocity/auto-climate/internal/alert"
	"github.com/V8Velocity/auto-climate/internal/api"
	"github.com/V8Velocity/auto-climate/internal/api/middleware"
	"github.com/V8Velocity/auto-climate/internal/auth"
	"github.com/V8Velocity/auto-climate/internal/config"
	"github.com/V8Velocity/auto-climate/internal/database"
	"github.com/V8Velocity/auto-climate/internal/history"
	"github.com/V8Velocity/auto-climate/internal/location"
	"github.com/V8Velocity/auto-climate/internal/notify"
	"github.com/V8Velocity/auto-climate/internal/prediction"
	"github.com/V8Velocity/auto-climate/internal/provider/resilience"
	"github.com/V8Velocity/auto-climate/internal/stream"
	"github.com/V8Velocity/auto-climate/internal/telemetry"
	"github.com/V8Velocity/auto-climate/internal/weather"
	"github.com/V8Velocity/auto-climate/internal/weather/openweathermap"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "autoclimate-api"

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting AutoClimate API")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize OpenTelemetry
	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.AppEnv,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if cfg.Telemetry.Enabled {
		log.Info().
			Str("otlp_endpoint", cfg.Telemetry.OTLPEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}

	providerMetrics, err := middleware.NewProviderMetrics(openweathermap.ProviderName)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Connect to database when configured; in-memory repositories
	// otherwise.
	var (
		pool         *pgxpool.Pool
		alertRepo    alert.Repository
		locationRepo location.Repository
		historyRepo  history.Repository
	)
	if cfg.Database.Enabled() {
		p, err := database.Connect(ctx, database.Config{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			Database: cfg.Database.Name,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer p.Close()
		log.Info().
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.Name).
			Msg("database connected")

		pool = p
		alertRepo = alert.NewPostgresRepository(p)
		locationRepo = location.NewPostgresRepository(p)
		historyRepo = history.NewPostgresRepository(p)
	} else {
		log.Warn().Msg("no database configured - using in-memory repositories")
		alertRepo = alert.NewInMemoryRepository()
		locationRepo = location.NewInMemoryRepository()
		historyRepo = history.NewInMemoryRepository()
	}

	// Weather provider behind the resilient client; the registry feeds
	// the ops status endpoint.
	registry := resilience.NewRegistry()
	providerCfg := resilience.DefaultClientConfig(openweathermap.ProviderName)
	providerCfg.Timeout = cfg.ProviderTimeout
	providerCfg.Registry = registry

	provider := openweathermap.NewClient(openweathermap.ClientConfig{
		APIKey:     cfg.OpenWeatherAPIKey,
		HTTPClient: resilience.NewClient(providerCfg),
		Logger:     log,
	})

	weatherService := weather.NewService(weather.ServiceConfig{
		Provider:        provider,
		Metrics:         providerMetrics,
		Logger:          log,
		CacheTTL:        cfg.CacheTTL,
		ProviderTimeout: cfg.ProviderTimeout,
	})
	if _, err := weatherService.SetLocation(ctx, cfg.DefaultCity); err != nil {
		log.Warn().Err(err).
			Str("city", cfg.DefaultCity).
			Msg("default city could not be resolved - keeping built-in location")
	}
	log.Info().
		Str("city", weatherService.CurrentLocation().City).
		Msg("weather service initialized")

	// Optional alert publisher
	var publisher *notify.Publisher
	if cfg.PubSub.Enabled() {
		publisher, err = notify.NewPublisher(ctx, notify.PublisherConfig{
			ProjectID: cfg.PubSub.ProjectID,
			TopicName: cfg.PubSub.AlertTopic,
			Logger:    log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create alert publisher")
		}
		log.Info().
			Str("topic", cfg.PubSub.AlertTopic).
			Msg("alert publisher initialized")
	}

	alertEngine := alert.NewEngine(alert.EngineConfig{
		Repository: alertRepo,
		Notifier:   publisher,
		Cooldown:   cfg.AlertCooldown,
		Logger:     log,
	})

	predictor := prediction.NewService()

	// Initialize JWT service (get signing key from environment)
	jwtSigningKey := cfg.JWTSigningKey
	if jwtSigningKey == "" {
		jwtSigningKey = "local-dev-signing-key-change-in-production"
		log.Warn().Msg("using default JWT signing key - not secure for production")
	}

	authService := auth.NewService(auth.ServiceConfig{
		JWTService: auth.NewJWTService(auth.JWTConfig{
			SigningKey: jwtSigningKey,
		}),
	})
	log.Info().Msg("auth service initialized")

	locationService := location.NewService(locationRepo)
	alertService := alert.NewService(alertRepo)

	// Streaming sessions
	hub := stream.NewHub(log)
	factory := func(t stream.Transport, r *http.Request) *stream.Session {
		return stream.NewSession(stream.SessionConfig{
			OwnerID:        streamOwnerID(authService, r),
			Transport:      t,
			Weather:        weatherService,
			Alerts:         alertEngine,
			Predictor:      predictor,
			History:        historyRepo,
			TickInterval:   cfg.TickInterval,
			DisplaySize:    cfg.DisplayHistorySize,
			PredictionSize: cfg.PredictionHistorySize,
			Logger:         log,
		})
	}
	wsHandler := stream.NewWebsocketHandler(hub, factory, log)

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:          Version,
		BuildTime:        BuildTime,
		Logger:           log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		AuthService:      authService,
		LocationService:  locationService,
		AlertService:     alertService,
		AlertEngine:      alertEngine,
		AlertRepo:        alertRepo,
		WeatherService:   weatherService,
		HistoryStore:     historyRepo,
		Predictor:        predictor,
		PredictionWindow: cfg.PredictionHistorySize,
		DB:               pool,
		Registry:         registry,
		Stream:           wsHandler,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	hub.Close()
	if err := publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close alert publisher")
	}

	log.Info().Msg("server stopped")
}

// streamOwnerID resolves the authenticated user for a websocket upgrade.
// Browsers cannot set headers on websocket requests, so a token query
// parameter is accepted alongside the Authorization header. An invalid or
// missing token yields an anonymous session.
func streamOwnerID(authService *auth.Service, r *http.Request) string {
	token := r.URL.Query().Get("token")
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		token = strings.TrimPrefix(header, "Bearer ")
	}
	if token == "" {
		return ""
	}

	userID, err := authService.ValidateAccessToken(token)
	if err != nil {
		return ""
	}
	return userID
}
