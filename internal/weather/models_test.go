package weather_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/V8Velocity/auto-climate/internal/weather"
)

func TestWindDirectionText(t *testing.T) {
	tests := []struct {
		name     string
		degrees  float64
		expected string
	}{
		{"north", 0, "N"},
		{"north - upper edge", 11.2, "N"},
		{"north-northeast - lower edge", 11.3, "NNE"},
		{"northeast", 45, "NE"},
		{"east", 90, "E"},
		{"southeast", 135, "SE"},
		{"south", 180, "S"},
		{"southwest", 225, "SW"},
		{"west", 270, "W"},
		{"northwest", 315, "NW"},
		{"north-northwest", 337.5, "NNW"},
		{"wraps back to north", 348.8, "N"},
		{"full circle", 360, "N"},
		{"beyond full circle", 405, "NE"},
		{"negative bearing", -20, "NNW"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, weather.WindDirectionText(tt.degrees))
		})
	}
}
