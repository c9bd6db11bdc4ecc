// Package prediction projects short-term environmental trends from
// recent reading history using least-squares linear regression.
package prediction

import (
	"errors"
	"math"
	"time"

	"github.com/V8Velocity/auto-climate/internal/history"
)

// MinSamples is the minimum history length required for a projection.
const MinSamples = 5

// DefaultHorizon is the projection horizon used when the caller passes
// a non-positive value.
const DefaultHorizon = 6 * time.Hour

// ErrInsufficientData is returned when fewer than MinSamples readings
// are available.
var ErrInsufficientData = errors.New("insufficient data for prediction")

// Trend labels for a projected metric.
const (
	TrendRising  = "rising"
	TrendFalling = "falling"
	TrendStable  = "stable"
)

// Metric is one projected reading dimension.
type Metric struct {
	Current   float64 `json:"current"`
	Predicted float64 `json:"predicted"`
	Trend     string  `json:"trend"`
	// RatePerHour is the fitted slope in metric units per hour.
	RatePerHour float64 `json:"ratePerHour"`
}

// Forecast is a projection of readings at PredictedFor.
type Forecast struct {
	Temperature  Metric    `json:"temperature"`
	Humidity     Metric    `json:"humidity"`
	PM25         Metric    `json:"pm25"`
	AQI          Metric    `json:"aqi"`
	SampleCount  int       `json:"sampleCount"`
	GeneratedAt  time.Time `json:"generatedAt"`
	PredictedFor time.Time `json:"predictedFor"`
}

// stableBands holds the per-metric slope magnitude (units/hour) below
// which a trend counts as stable.
type stableBands struct {
	temperature float64
	humidity    float64
	pm25        float64
	aqi         float64
}

var defaultBands = stableBands{
	temperature: 0.2,
	humidity:    0.5,
	pm25:        0.5,
	aqi:         1.0,
}

// Service produces forecasts from reading history.
type Service struct {
	bands stableBands
}

// NewService creates a new prediction service.
func NewService() *Service {
	return &Service{bands: defaultBands}
}

// Predict fits a linear trend to the samples and projects it horizon into
// the future. Samples must be ordered oldest first. Returns
// ErrInsufficientData when fewer than MinSamples are given.
func (s *Service) Predict(samples []history.Sample, horizon time.Duration) (*Forecast, error) {
	if len(samples) < MinSamples {
		return nil, ErrInsufficientData
	}
	if horizon <= 0 {
		horizon = DefaultHorizon
	}

	now := time.Now()
	latest := samples[len(samples)-1]
	aheadHours := horizon.Hours()

	f := &Forecast{
		SampleCount:  len(samples),
		GeneratedAt:  now,
		PredictedFor: now.Add(horizon),
	}

	f.Temperature = projectMetric(samples, latest.Temperature, aheadHours, s.bands.temperature,
		func(smp history.Sample) float64 { return smp.Temperature })
	f.Humidity = projectMetric(samples, latest.Humidity, aheadHours, s.bands.humidity,
		func(smp history.Sample) float64 { return smp.Humidity })
	f.PM25 = projectMetric(samples, latest.PM25, aheadHours, s.bands.pm25,
		func(smp history.Sample) float64 { return smp.PM25 })
	f.AQI = projectMetric(samples, float64(latest.AQI), aheadHours, s.bands.aqi,
		func(smp history.Sample) float64 { return float64(smp.AQI) })

	// Readings can't go negative; clamp projections that overshoot.
	f.Humidity.Predicted = clamp(f.Humidity.Predicted, 0, 100)
	f.PM25.Predicted = math.Max(0, f.PM25.Predicted)
	f.AQI.Predicted = clamp(f.AQI.Predicted, 0, 500)

	return f, nil
}

// projectMetric fits value = a + b*t (t in hours since the first sample)
// and evaluates the line aheadHours past the last sample.
func projectMetric(samples []history.Sample, current, aheadHours, stableBand float64, value func(history.Sample) float64) Metric {
	base := samples[0].Timestamp

	var sumT, sumV, sumTT, sumTV float64
	for _, smp := range samples {
		t := smp.Timestamp.Sub(base).Hours()
		v := value(smp)
		sumT += t
		sumV += v
		sumTT += t * t
		sumTV += t * v
	}

	n := float64(len(samples))
	denom := n*sumTT - sumT*sumT

	var slope float64
	if denom != 0 {
		slope = (n*sumTV - sumT*sumV) / denom
	}
	intercept := (sumV - slope*sumT) / n

	lastT := samples[len(samples)-1].Timestamp.Sub(base).Hours()
	predicted := intercept + slope*(lastT+aheadHours)

	trend := TrendStable
	switch {
	case slope > stableBand:
		trend = TrendRising
	case slope < -stableBand:
		trend = TrendFalling
	}

	return Metric{
		Current:     round1(current),
		Predicted:   round1(predicted),
		Trend:       trend,
		RatePerHour: round2(slope),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
