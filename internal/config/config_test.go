package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V8Velocity/auto-climate/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "Delhi", cfg.DefaultCity)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL)
	assert.Equal(t, 5*time.Second, cfg.TickInterval)
	assert.Equal(t, 20, cfg.DisplayHistorySize)
	assert.Equal(t, 100, cfg.PredictionHistorySize)
	assert.False(t, cfg.Database.Enabled())
	assert.False(t, cfg.PubSub.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("WEATHER_CACHE_TTL", "30s")
	t.Setenv("HISTORY_DISPLAY_SIZE", "40")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("PUBSUB_PROJECT_ID", "proj-1")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 40, cfg.DisplayHistorySize)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.True(t, cfg.PubSub.Enabled())
	assert.Equal(t, "triggered-alerts", cfg.PubSub.AlertTopic)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("WEATHER_CACHE_TTL", "0s")

	_, err := config.Load()
	assert.Error(t, err)
}
