// Package openweathermap implements the weather.Provider interface against
// the OpenWeatherMap current-weather, air-pollution, forecast and geocoding
// APIs.
package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/V8Velocity/auto-climate/internal/aqi"
	"github.com/V8Velocity/auto-climate/internal/provider/resilience"
	"github.com/V8Velocity/auto-climate/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "openweathermap"

	// DefaultBaseURL is the OpenWeatherMap data API base URL.
	DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

	// DefaultGeoURL is the OpenWeatherMap geocoding API base URL.
	DefaultGeoURL = "https://api.openweathermap.org/geo/1.0"

	// forecastSteps is the number of 3-hourly forecast entries requested,
	// enough to cover five calendar days.
	forecastSteps = 40
)

// placeholderAPIKey is the value shipped in example env files; it is treated
// the same as a missing key.
const placeholderAPIKey = "your_api_key_here"

// ClientConfig holds configuration for the OpenWeatherMap client.
type ClientConfig struct {
	// APIKey is the OpenWeatherMap API key (required for live data).
	APIKey string

	// BaseURL is the data API base URL (optional).
	BaseURL string

	// GeoURL is the geocoding API base URL (optional).
	GeoURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is an OpenWeatherMap API client.
type Client struct {
	apiKey     string
	baseURL    string
	geoURL     string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new OpenWeatherMap client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	geoURL := cfg.GeoURL
	if geoURL == "" {
		geoURL = DefaultGeoURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		geoURL:     geoURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// FetchCurrent fetches current conditions, pollutant concentrations and the
// short-range forecast for a location. The three upstream endpoints are
// queried sequentially; any failure fails the whole report.
func (c *Client) FetchCurrent(ctx context.Context, lat, lon float64) (*weather.Report, error) {
	if !c.hasAPIKey() {
		return nil, weather.ErrNoAPIKey
	}

	var current currentWeatherResponse
	if err := c.getJSON(ctx, c.dataURL("/weather", lat, lon, "units=metric"), &current); err != nil {
		return nil, fmt.Errorf("fetching current weather: %w", err)
	}

	var pollution airPollutionResponse
	if err := c.getJSON(ctx, c.dataURL("/air_pollution", lat, lon, ""), &pollution); err != nil {
		return nil, fmt.Errorf("fetching air pollution: %w", err)
	}

	var forecast forecastResponse
	query := "units=metric&cnt=" + strconv.Itoa(forecastSteps)
	if err := c.getJSON(ctx, c.dataURL("/forecast", lat, lon, query), &forecast); err != nil {
		return nil, fmt.Errorf("fetching forecast: %w", err)
	}

	return c.toReport(&current, &pollution, &forecast), nil
}

// SearchCity resolves a city name via the direct geocoding endpoint.
func (c *Client) SearchCity(ctx context.Context, name string, limit int) ([]weather.CityCandidate, error) {
	if !c.hasAPIKey() {
		return nil, weather.ErrNoAPIKey
	}

	endpoint := fmt.Sprintf("%s/direct?q=%s&limit=%d&appid=%s",
		c.geoURL, url.QueryEscape(name), limit, c.apiKey)

	var results []geoResponse
	if err := c.getJSON(ctx, endpoint, &results); err != nil {
		return nil, fmt.Errorf("searching city: %w", err)
	}

	candidates := make([]weather.CityCandidate, 0, len(results))
	for _, r := range results {
		candidates = append(candidates, weather.CityCandidate{
			City:    r.Name,
			Country: r.Country,
			State:   r.State,
			Lat:     r.Lat,
			Lon:     r.Lon,
		})
	}
	return candidates, nil
}

// ReverseGeocode resolves coordinates to the nearest known city.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (*weather.CityCandidate, error) {
	if !c.hasAPIKey() {
		return nil, weather.ErrNoAPIKey
	}

	endpoint := fmt.Sprintf("%s/reverse?lat=%.6f&lon=%.6f&limit=1&appid=%s",
		c.geoURL, lat, lon, c.apiKey)

	var results []geoResponse
	if err := c.getJSON(ctx, endpoint, &results); err != nil {
		return nil, fmt.Errorf("reverse geocoding: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	return &weather.CityCandidate{
		City:    results[0].Name,
		Country: results[0].Country,
		State:   results[0].State,
		Lat:     results[0].Lat,
		Lon:     results[0].Lon,
	}, nil
}

func (c *Client) hasAPIKey() bool {
	return c.apiKey != "" && c.apiKey != placeholderAPIKey
}

func (c *Client) dataURL(path string, lat, lon float64, extra string) string {
	endpoint := fmt.Sprintf("%s%s?lat=%.6f&lon=%.6f&appid=%s", c.baseURL, path, lat, lon, c.apiKey)
	if extra != "" {
		endpoint += "&" + extra
	}
	return endpoint
}

// getJSON executes a GET request through the resilient client and decodes
// the JSON body. 401-class responses map to weather.ErrUnauthorized (fresh
// API keys take minutes to activate and return 401 until then).
func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return weather.ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// toReport converts the three upstream responses to the domain report.
func (c *Client) toReport(current *currentWeatherResponse, pollution *airPollutionResponse, forecast *forecastResponse) *weather.Report {
	report := &weather.Report{
		Lat: current.Coord.Lat,
		Lon: current.Coord.Lon,
		Conditions: weather.Conditions{
			Temperature: current.Main.Temp,
			FeelsLike:   current.Main.FeelsLike,
			Humidity:    current.Main.Humidity,
			Pressure:    current.Main.Pressure,
			Visibility:  float64(current.Visibility) / 1000, // m to km
			CloudCover:  current.Clouds.All,
		},
		Wind: weather.Wind{
			Speed:         current.Wind.Speed * 3.6, // m/s to km/h
			Direction:     current.Wind.Deg,
			DirectionText: weather.WindDirectionText(current.Wind.Deg),
			Gust:          windGustKmh(current.Wind.Speed, current.Wind.Gust),
		},
		Sunrise:   time.Unix(current.Sys.Sunrise, 0),
		Sunset:    time.Unix(current.Sys.Sunset, 0),
		FetchedAt: time.Now(),
	}

	if len(current.Weather) > 0 {
		report.Conditions.Description = current.Weather[0].Description
		report.Conditions.Icon = current.Weather[0].Icon
	}

	if len(pollution.List) > 0 {
		components := pollution.List[0].Components
		report.Pollutants = aqi.Concentrations{
			PM25: components.PM25,
			PM10: components.PM10,
			O3:   components.O3,
			NO2:  components.NO2,
			SO2:  components.SO2,
			CO:   components.CO,
		}
	}

	for _, item := range forecast.List {
		condition, icon := mapCondition(item.WeatherID())
		report.Forecast = append(report.Forecast, weather.ForecastEntry{
			Time:       time.Unix(item.Dt, 0),
			TempMin:    item.Main.TempMin,
			TempMax:    item.Main.TempMax,
			Condition:  condition,
			Icon:       icon,
			PrecipProb: item.Pop,
			Humidity:   item.Main.Humidity,
		})
	}

	return report
}

// windGustKmh returns the reported gust in km/h, estimating from the
// sustained speed when the API omits it.
func windGustKmh(speedMS, gustMS float64) float64 {
	if gustMS == 0 {
		gustMS = speedMS * 1.3
	}
	return gustMS * 3.6
}

// mapCondition maps an OpenWeatherMap condition ID to a display condition
// keyword and icon.
func mapCondition(weatherID int) (string, string) {
	switch {
	case weatherID >= 200 && weatherID < 300:
		return "thunderstorm", "⛈️"
	case weatherID >= 300 && weatherID < 600:
		return "rainy", "🌧️"
	case weatherID >= 600 && weatherID < 700:
		return "snowy", "❄️"
	case weatherID >= 700 && weatherID < 800:
		return "foggy", "🌫️"
	case weatherID == 800:
		return "sunny", "☀️"
	case weatherID > 800:
		return "partly-cloudy", "⛅"
	default:
		return "cloudy", "☁️"
	}
}

// OpenWeatherMap API response structures.

type currentWeatherResponse struct {
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Weather []struct {
		ID          int    `json:"id"`
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Pressure  float64 `json:"pressure"`
		Humidity  float64 `json:"humidity"`
	} `json:"main"`
	Visibility int `json:"visibility"`
	Wind       struct {
		Speed float64 `json:"speed"`
		Deg   float64 `json:"deg"`
		Gust  float64 `json:"gust"`
	} `json:"wind"`
	Clouds struct {
		All float64 `json:"all"`
	} `json:"clouds"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
	Dt   int64  `json:"dt"`
	Name string `json:"name"`
}

type airPollutionResponse struct {
	List []struct {
		Components struct {
			CO   float64 `json:"co"`
			NO2  float64 `json:"no2"`
			O3   float64 `json:"o3"`
			SO2  float64 `json:"so2"`
			PM25 float64 `json:"pm2_5"`
			PM10 float64 `json:"pm10"`
		} `json:"components"`
	} `json:"list"`
}

type forecastResponse struct {
	List []forecastItem `json:"list"`
}

type geoResponse struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

type forecastItem struct {
	Dt   int64 `json:"dt"`
	Main struct {
		TempMin  float64 `json:"temp_min"`
		TempMax  float64 `json:"temp_max"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		ID int `json:"id"`
	} `json:"weather"`
	Pop float64 `json:"pop"`
}

// WeatherID returns the first weather condition ID, 0 if absent.
func (f *forecastItem) WeatherID() int {
	if len(f.Weather) == 0 {
		return 0
	}
	return f.Weather[0].ID
}

// Ensure Client implements the provider interface.
var _ weather.Provider = (*Client)(nil)
