package models

// Reading represents one environmental sample.
type Reading struct {
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	CO2         float64   `json:"co2"`
	PM25        float64   `json:"pm25"`
	AQI         int       `json:"aqi"`
	WindSpeed   float64   `json:"windSpeed"`
	Timestamp   Timestamp `json:"timestamp"`
}

// ReadingsResponse lists recent readings for a city, oldest first.
type ReadingsResponse struct {
	City  string    `json:"city"`
	Items []Reading `json:"items"`
}

// TrendMetric is one projected reading dimension.
type TrendMetric struct {
	Current     float64 `json:"current"`
	Predicted   float64 `json:"predicted"`
	Trend       string  `json:"trend"`
	RatePerHour float64 `json:"ratePerHour"`
}

// PredictionResponse is a short-term environmental forecast.
type PredictionResponse struct {
	City         string      `json:"city"`
	Temperature  TrendMetric `json:"temperature"`
	Humidity     TrendMetric `json:"humidity"`
	PM25         TrendMetric `json:"pm25"`
	AQI          TrendMetric `json:"aqi"`
	SampleCount  int         `json:"sampleCount"`
	GeneratedAt  Timestamp   `json:"generatedAt"`
	PredictedFor Timestamp   `json:"predictedFor"`
}
