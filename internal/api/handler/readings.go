package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/V8Velocity/auto-climate/internal/api/models"
	"github.com/V8Velocity/auto-climate/internal/api/response"
	"github.com/V8Velocity/auto-climate/internal/history"
	"github.com/V8Velocity/auto-climate/internal/prediction"
	"github.com/V8Velocity/auto-climate/internal/weather"
)

// History query limits.
const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// ReadingsHandler handles reading history and prediction endpoints.
type ReadingsHandler struct {
	store      history.Repository
	predictor  *prediction.Service
	weather    *weather.Service
	predictCap int
}

// NewReadingsHandler creates a new ReadingsHandler. predictionWindow is
// the number of recent samples fed into the trend projection.
func NewReadingsHandler(store history.Repository, predictor *prediction.Service, weatherSvc *weather.Service, predictionWindow int) *ReadingsHandler {
	return &ReadingsHandler{
		store:      store,
		predictor:  predictor,
		weather:    weatherSvc,
		predictCap: predictionWindow,
	}
}

// city resolves the city query parameter, defaulting to the shared
// observed location.
func (h *ReadingsHandler) city(r *http.Request) string {
	if city := r.URL.Query().Get("city"); city != "" {
		return city
	}
	return h.weather.CurrentLocation().City
}

// History handles GET /v1/history - recent readings for a city, oldest first.
func (h *ReadingsHandler) History(w http.ResponseWriter, r *http.Request) {
	city := h.city(r)

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxHistoryLimit {
			response.BadRequest(w, r, "limit must be an integer between 1 and 500", nil)
			return
		}
		limit = parsed
	}

	samples, err := h.store.Recent(r.Context(), city, limit)
	if err != nil {
		response.InternalError(w, r, "failed to query reading history")
		return
	}

	response.JSON(w, r, http.StatusOK, toReadingsResponse(city, samples))
}

// Latest handles GET /v1/readings/latest - most recent reading for a city.
func (h *ReadingsHandler) Latest(w http.ResponseWriter, r *http.Request) {
	city := h.city(r)

	samples, err := h.store.Recent(r.Context(), city, 1)
	if err != nil {
		response.InternalError(w, r, "failed to query reading history")
		return
	}
	if len(samples) == 0 {
		response.NotFound(w, r, "no readings recorded for this city")
		return
	}

	response.JSON(w, r, http.StatusOK, toReading(samples[len(samples)-1]))
}

// Predict handles GET /v1/predictions - short-term trend projection.
func (h *ReadingsHandler) Predict(w http.ResponseWriter, r *http.Request) {
	city := h.city(r)

	horizon := prediction.DefaultHorizon
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 48 {
			response.BadRequest(w, r, "hours must be an integer between 1 and 48", nil)
			return
		}
		horizon = time.Duration(parsed) * time.Hour
	}

	samples, err := h.store.Recent(r.Context(), city, h.predictCap)
	if err != nil {
		response.InternalError(w, r, "failed to query reading history")
		return
	}

	forecast, err := h.predictor.Predict(samples, horizon)
	if err != nil {
		if errors.Is(err, prediction.ErrInsufficientData) {
			response.BadRequest(w, r, "insufficient data for prediction", nil)
			return
		}
		response.InternalError(w, r, "failed to compute prediction")
		return
	}

	response.JSON(w, r, http.StatusOK, models.PredictionResponse{
		City:         city,
		Temperature:  toTrendMetric(forecast.Temperature),
		Humidity:     toTrendMetric(forecast.Humidity),
		PM25:         toTrendMetric(forecast.PM25),
		AQI:          toTrendMetric(forecast.AQI),
		SampleCount:  forecast.SampleCount,
		GeneratedAt:  models.Timestamp(forecast.GeneratedAt),
		PredictedFor: models.Timestamp(forecast.PredictedFor),
	})
}

func toReadingsResponse(city string, samples []history.Sample) models.ReadingsResponse {
	items := make([]models.Reading, 0, len(samples))
	for _, s := range samples {
		items = append(items, toReading(s))
	}
	return models.ReadingsResponse{City: city, Items: items}
}

func toReading(s history.Sample) models.Reading {
	return models.Reading{
		Temperature: s.Temperature,
		Humidity:    s.Humidity,
		CO2:         s.CO2,
		PM25:        s.PM25,
		AQI:         s.AQI,
		WindSpeed:   s.WindSpeed,
		Timestamp:   models.Timestamp(s.Timestamp),
	}
}

func toTrendMetric(m prediction.Metric) models.TrendMetric {
	return models.TrendMetric{
		Current:     m.Current,
		Predicted:   m.Predicted,
		Trend:       m.Trend,
		RatePerHour: m.RatePerHour,
	}
}
