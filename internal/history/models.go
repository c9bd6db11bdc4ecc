// Package history provides bounded in-memory reading histories and
// optional persistence of environmental samples.
package history

import "time"

// Sample is one environmental reading at a point in time.
type Sample struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	CO2         float64   `json:"co2"`
	PM25        float64   `json:"pm25"`
	AQI         int       `json:"aqi"`
	WindSpeed   float64   `json:"windSpeed"`
	Timestamp   time.Time `json:"timestamp"`
}
