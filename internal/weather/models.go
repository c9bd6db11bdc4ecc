// Package weather provides the shared environmental snapshot pipeline: a
// process-wide observed location, a single-slot time-boxed snapshot cache
// with single-flight refresh, and a simulated-data fallback for provider
// outages.
package weather

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/V8Velocity/auto-climate/internal/aqi"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrUnauthorized        = errors.New("weather provider rejected credentials")
	ErrNoAPIKey            = errors.New("weather provider API key not configured")
	ErrCityNotFound        = errors.New("city not found")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Location identifies the observed place. The process holds exactly one
// current Location at a time; see LocationState.
type Location struct {
	City     string  `json:"city"`
	Country  string  `json:"country"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone,omitempty"`
}

// CityCandidate is a geocoding search result.
type CityCandidate struct {
	City    string  `json:"city"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Conditions holds current surface conditions in display units
// (°C, %, hPa, km, km/h).
type Conditions struct {
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    float64 `json:"humidity"`
	Pressure    float64 `json:"pressure"`
	Visibility  float64 `json:"visibility"`
	UVIndex     float64 `json:"uvIndex"`
	CloudCover  float64 `json:"cloudCover"`
	Description string  `json:"description,omitempty"`
	Icon        string  `json:"icon,omitempty"`
}

// Wind holds wind data in km/h.
type Wind struct {
	Speed         float64 `json:"speed"`
	Direction     float64 `json:"direction"`
	DirectionText string  `json:"directionText"`
	Gust          float64 `json:"gust"`
}

// AirQuality couples the derived index with the rounded raw concentrations
// it was computed from (µg/m³, CO reported in ppm).
type AirQuality struct {
	aqi.Result

	PM25 float64 `json:"pm25"`
	PM10 float64 `json:"pm10"`
	O3   float64 `json:"o3"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	CO   float64 `json:"co"`
}

// Sun holds sunrise/sunset display data.
type Sun struct {
	Sunrise     string `json:"sunrise"`
	Sunset      string `json:"sunset"`
	DayProgress int    `json:"dayProgress"`
	IsDaytime   bool   `json:"isDaytime"`
}

// ForecastDay is one entry of the five-day daily forecast.
type ForecastDay struct {
	Day           string  `json:"day"`
	Date          string  `json:"date"`
	Condition     string  `json:"condition"`
	Icon          string  `json:"icon"`
	HighTemp      int     `json:"highTemp"`
	LowTemp       int     `json:"lowTemp"`
	Precipitation int     `json:"precipitation"`
	Humidity      float64 `json:"humidity"`
}

// Snapshot is an immutable point-in-time view of the observed location's
// environment. The cache holds at most one Snapshot at a time; a Snapshot is
// replaced wholesale on refresh, never partially mutated.
type Snapshot struct {
	Location   Location      `json:"location"`
	Current    Conditions    `json:"current"`
	Wind       Wind          `json:"wind"`
	AQI        AirQuality    `json:"aqi"`
	Sun        Sun           `json:"sun"`
	Forecast   []ForecastDay `json:"forecast"`
	Timestamp  time.Time     `json:"timestamp"`
	IsLiveData bool          `json:"isLiveData"`
}

// Report is the provider's raw answer for one location: current conditions,
// pollutant concentrations and a short-range forecast. Units are already
// normalized to display units by the client.
type Report struct {
	Lat        float64
	Lon        float64
	Conditions Conditions
	Wind       Wind
	Pollutants aqi.Concentrations
	Sunrise    time.Time
	Sunset     time.Time
	Forecast   []ForecastEntry
	FetchedAt  time.Time
}

// ForecastEntry is one short-range (typically 3-hourly) forecast step.
type ForecastEntry struct {
	Time       time.Time
	TempMin    float64
	TempMax    float64
	Condition  string
	Icon       string
	PrecipProb float64 // 0-1
	Humidity   float64
}

// Provider defines the external weather data collaborator.
type Provider interface {
	// FetchCurrent fetches conditions, pollutants and forecast for a point.
	FetchCurrent(ctx context.Context, lat, lon float64) (*Report, error)

	// SearchCity resolves a city name to candidate locations.
	SearchCity(ctx context.Context, name string, limit int) ([]CityCandidate, error)

	// ReverseGeocode resolves coordinates to the nearest known city,
	// returning nil when nothing matches.
	ReverseGeocode(ctx context.Context, lat, lon float64) (*CityCandidate, error)

	// Name returns the provider name for logging.
	Name() string
}

// windDirections are the sixteen compass points, clockwise from north.
var windDirections = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

// WindDirectionText converts a bearing in degrees to its compass point.
func WindDirectionText(degrees float64) string {
	index := int(math.Round(degrees/22.5)) % 16
	if index < 0 {
		index += 16
	}
	return windDirections[index]
}

// validateCoordinates checks if coordinates are valid.
func validateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// coordinateLabel is the display name used when reverse geocoding fails.
func coordinateLabel(lat, lon float64) string {
	return strconv.FormatFloat(lat, 'f', 2, 64) + ", " + strconv.FormatFloat(lon, 'f', 2, 64)
}

// round0 rounds to the nearest integer.
func round0(v float64) float64 {
	return math.Round(v)
}

// round1 rounds to one decimal place for display values.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// round2 rounds to two decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
