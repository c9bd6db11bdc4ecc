// Package stream pushes live environmental data to connected clients and
// services their out-of-band commands.
package stream

import (
	"encoding/json"

	"github.com/V8Velocity/auto-climate/internal/alert"
	"github.com/V8Velocity/auto-climate/internal/weather"
)

// Event names pushed to clients.
const (
	EventSensorData        = "sensorData"
	EventSensorHistory     = "sensorHistory"
	EventWeatherData       = "weatherData"
	EventActiveAlerts      = "activeAlerts"
	EventCitySearchResults = "citySearchResults"
	EventLocationChanged   = "locationChanged"
	EventCoordsWeather     = "coordsWeatherData"
	EventMajorCities       = "majorCitiesWeatherData"
	EventPrediction        = "climatePrediction"
	EventAlertAcknowledged = "alertAcknowledged"
)

// Command names accepted from clients.
const (
	CommandChangeLocation   = "changeLocation"
	CommandSearchCities     = "searchCities"
	CommandWeatherByCoords  = "getWeatherByCoords"
	CommandMajorCities      = "getMajorCitiesWeather"
	CommandGetPrediction    = "getPrediction"
	CommandAcknowledgeAlert = "acknowledgeAlert"
)

// Command is one inbound client message.
type Command struct {
	Name string          `json:"command"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Envelope is one outbound message.
type Envelope struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

// SensorData is the instantaneous reading pushed each tick.
type SensorData struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	CO2         float64 `json:"co2"`
	PM25        float64 `json:"pm25"`
	AQI         int     `json:"aqi"`
	Timestamp   string  `json:"timestamp"`
}

// HistoryPoint is one point of a per-metric display series.
type HistoryPoint struct {
	Time  string  `json:"time"`
	Value float64 `json:"value"`
}

// SensorHistory is the rolling display series per metric.
type SensorHistory struct {
	Temperature []HistoryPoint `json:"temperature"`
	Humidity    []HistoryPoint `json:"humidity"`
	CO2         []HistoryPoint `json:"co2"`
	PM25        []HistoryPoint `json:"pm25"`
}

// LocationChanged reports the outcome of a change-location command.
type LocationChanged struct {
	Success  bool              `json:"success"`
	Location *weather.Location `json:"location,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// CoordsWeather reports the outcome of a weather-by-coordinates command.
type CoordsWeather struct {
	Success bool              `json:"success"`
	Data    *weather.Snapshot `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// CityWeather is one entry of a multi-city weather response.
type CityWeather struct {
	CityName string            `json:"cityName"`
	Success  bool              `json:"success"`
	Data     *weather.Snapshot `json:"data,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// MajorCitiesWeather reports the outcome of a multi-city weather command.
type MajorCitiesWeather struct {
	Success bool          `json:"success"`
	Data    []CityWeather `json:"data,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// PredictionResult reports the outcome of a prediction command.
type PredictionResult struct {
	Success  bool        `json:"success"`
	Forecast interface{} `json:"forecast,omitempty"`
	Message  string      `json:"message,omitempty"`
}

// AlertAcknowledged reports the outcome of an acknowledge command.
type AlertAcknowledged struct {
	Success bool   `json:"success"`
	AlertID string `json:"alertId,omitempty"`
	Message string `json:"message,omitempty"`
}

// ActiveAlerts is the currently-triggered alert list.
type ActiveAlerts struct {
	Alerts []alert.Triggered `json:"alerts"`
}

// cityRequest identifies a city in a multi-city weather command.
type cityRequest struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// locationRequest is the object form of a change-location command.
type locationRequest struct {
	City string  `json:"city"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// coordsRequest identifies a point in a weather-by-coordinates command.
type coordsRequest struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
