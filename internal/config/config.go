// Package config loads the service configuration from the environment.
// A .env file in the working directory is honored for local development;
// real environment variables always win.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the full service configuration.
type Config struct {
	// AppEnv names the deployment environment.
	AppEnv string `envconfig:"APP_ENV" default:"development"`

	// Port is the HTTP listen port.
	Port string `envconfig:"APP_PORT" default:"8080"`

	// OpenWeatherAPIKey enables live provider data. Empty or the example
	// placeholder keeps the service on simulated data.
	OpenWeatherAPIKey string `envconfig:"OPENWEATHER_API_KEY"`

	// DefaultCity is the location served before any client changes it.
	DefaultCity string `envconfig:"DEFAULT_CITY" default:"Delhi"`

	// CacheTTL bounds how long one weather snapshot is reused.
	CacheTTL time.Duration `envconfig:"WEATHER_CACHE_TTL" default:"60s" validate:"gt=0"`

	// ProviderTimeout bounds one upstream fetch.
	ProviderTimeout time.Duration `envconfig:"PROVIDER_TIMEOUT" default:"10s" validate:"gt=0"`

	// TickInterval is the per-session broadcast period.
	TickInterval time.Duration `envconfig:"STREAM_TICK_INTERVAL" default:"5s" validate:"gt=0"`

	// DisplayHistorySize caps the per-session display ring.
	DisplayHistorySize int `envconfig:"HISTORY_DISPLAY_SIZE" default:"20" validate:"gt=0"`

	// PredictionHistorySize caps the per-session prediction input ring.
	PredictionHistorySize int `envconfig:"HISTORY_PREDICTION_SIZE" default:"100" validate:"gt=0"`

	// AlertCooldown suppresses alert re-notification within the window.
	// Zero keeps alerts level-triggered.
	AlertCooldown time.Duration `envconfig:"ALERT_COOLDOWN" default:"0s"`

	// JWTSigningKey signs and verifies session tokens.
	JWTSigningKey string `envconfig:"JWT_SIGNING_KEY"`

	Database  DatabaseConfig
	PubSub    PubSubConfig
	Telemetry TelemetryConfig
}

// DatabaseConfig holds PostgreSQL settings. An empty host disables
// persistence; the service runs on in-memory repositories.
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"autoclimate"`
	Password string `envconfig:"DB_PASSWORD"`
	Name     string `envconfig:"DB_NAME" default:"autoclimate"`
	SSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
}

// Enabled reports whether a database was configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// PubSubConfig holds alert publishing settings. An empty project ID
// disables publishing.
type PubSubConfig struct {
	ProjectID  string `envconfig:"PUBSUB_PROJECT_ID"`
	AlertTopic string `envconfig:"PUBSUB_ALERT_TOPIC" default:"triggered-alerts"`
}

// Enabled reports whether alert publishing was configured.
func (c PubSubConfig) Enabled() bool {
	return c.ProjectID != ""
}

// TelemetryConfig holds OpenTelemetry exporter settings.
type TelemetryConfig struct {
	Enabled      bool   `envconfig:"OTEL_ENABLED"`
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
}

// Load reads the configuration from the environment. A missing .env file
// is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}
