package stream

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/V8Velocity/auto-climate/internal/alert"
	"github.com/V8Velocity/auto-climate/internal/history"
	"github.com/V8Velocity/auto-climate/internal/prediction"
	"github.com/V8Velocity/auto-climate/internal/weather"
)

// Transport delivers events to one connected client. Send is called from
// the session goroutine only.
type Transport interface {
	Send(event string, data interface{}) error
}

const (
	defaultTickInterval   = 5 * time.Second
	defaultDisplaySize    = 20
	defaultPredictionSize = 100

	// commandBuffer bounds queued commands per session; a client flooding
	// commands gets them dropped, not a stalled tick loop.
	commandBuffer = 16
)

// baselineCO2 is the synthetic CO2 baseline in ppm. The upstream provider
// has no CO2 signal, so readings jitter around this value.
const baselineCO2 = 400

// SessionConfig holds configuration for a client session.
type SessionConfig struct {
	// ID identifies the session. Generated when empty.
	ID string

	// OwnerID is the authenticated user, empty for anonymous sessions.
	OwnerID string

	// Transport delivers events to the client (required).
	Transport Transport

	// Weather provides snapshots and location control (required).
	Weather *weather.Service

	// Alerts evaluates threshold rules each tick (required).
	Alerts *alert.Engine

	// Predictor serves trend projections (optional).
	Predictor *prediction.Service

	// History persists samples best-effort (optional).
	History history.Repository

	// TickInterval between pushes (default 5s).
	TickInterval time.Duration

	// DisplaySize caps the display history ring (default 20).
	DisplaySize int

	// PredictionSize caps the prediction input ring (default 100).
	PredictionSize int

	// Logger for session operations.
	Logger zerolog.Logger
}

// Session is one connected client. It pushes a reading on a fixed
// interval and services commands between ticks. All state is owned by
// the Run goroutine.
type Session struct {
	id        string
	ownerID   string
	transport Transport
	weather   *weather.Service
	alerts    *alert.Engine
	predictor *prediction.Service
	histRepo  history.Repository
	logger    zerolog.Logger

	tickInterval time.Duration
	displayRing  *history.Ring
	predictRing  *history.Ring

	ctx    context.Context
	cancel context.CancelFunc
	cmds   chan Command
	done   chan struct{}
}

// NewSession creates a session. Run must be called to start it.
func NewSession(cfg SessionConfig) *Session {
	id := cfg.ID
	if id == "" {
		id = uuid.NewString()
	}

	tickInterval := cfg.TickInterval
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}

	displaySize := cfg.DisplaySize
	if displaySize <= 0 {
		displaySize = defaultDisplaySize
	}

	predictionSize := cfg.PredictionSize
	if predictionSize <= 0 {
		predictionSize = defaultPredictionSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		id:           id,
		ownerID:      cfg.OwnerID,
		transport:    cfg.Transport,
		weather:      cfg.Weather,
		alerts:       cfg.Alerts,
		predictor:    cfg.Predictor,
		histRepo:     cfg.History,
		logger:       cfg.Logger.With().Str("session_id", id).Logger(),
		tickInterval: tickInterval,
		displayRing:  history.NewRing(displaySize),
		predictRing:  history.NewRing(predictionSize),
		ctx:          ctx,
		cancel:       cancel,
		cmds:         make(chan Command, commandBuffer),
		done:         make(chan struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Close stops the session. Safe to call multiple times and from any
// goroutine; no event is delivered after the run loop observes it.
func (s *Session) Close() {
	s.cancel()
}

// Done is closed when the run loop has exited.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// HandleCommand queues a client command for the run loop. Commands sent
// to a closed or flooded session are dropped.
func (s *Session) HandleCommand(cmd Command) {
	select {
	case s.cmds <- cmd:
	case <-s.ctx.Done():
	default:
		s.logger.Warn().Str("command", cmd.Name).Msg("command queue full, dropping")
	}
}

// Run pushes the initial state, then loops on the tick interval until the
// session is closed. Blocking; callers run it in its own goroutine.
func (s *Session) Run() {
	defer close(s.done)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.push()

	for {
		select {
		case <-s.ctx.Done():
			return
		case cmd := <-s.cmds:
			s.dispatch(cmd)
		case <-ticker.C:
			s.push()
		}
	}
}

// push fetches a snapshot, folds it into the rings, evaluates alerts and
// sends the per-tick events.
func (s *Session) push() {
	snap := s.weather.Snapshot(s.ctx)
	sample := sampleFromSnapshot(snap)

	s.displayRing.Append(sample)
	s.predictRing.Append(sample)

	if s.histRepo != nil {
		if err := s.histRepo.Append(s.ctx, snap.Location.City, sample); err != nil {
			s.logger.Debug().Err(err).Msg("failed to persist reading")
		}
	}

	s.send(EventSensorData, sensorDataFromSample(sample))
	s.send(EventSensorHistory, historyFromRing(s.displayRing))
	s.send(EventWeatherData, snap)

	if _, err := s.alerts.Evaluate(s.ctx, snap); err != nil {
		s.logger.Warn().Err(err).Msg("alert evaluation failed")
	}
	if active := s.alerts.Active(); len(active) > 0 {
		s.send(EventActiveAlerts, ActiveAlerts{Alerts: active})
	}
}

func (s *Session) dispatch(cmd Command) {
	switch cmd.Name {
	case CommandChangeLocation:
		s.handleChangeLocation(cmd.Data)
	case CommandSearchCities:
		s.handleSearchCities(cmd.Data)
	case CommandWeatherByCoords:
		s.handleWeatherByCoords(cmd.Data)
	case CommandMajorCities:
		s.handleMajorCities(cmd.Data)
	case CommandGetPrediction:
		s.handleGetPrediction(cmd.Data)
	case CommandAcknowledgeAlert:
		s.handleAcknowledgeAlert(cmd.Data)
	default:
		s.logger.Warn().Str("command", cmd.Name).Msg("unknown command")
	}
}

// handleChangeLocation accepts either a bare city name string or a
// {city, lat, lon} object. On success the fresh snapshot is pushed
// immediately rather than waiting for the next tick.
func (s *Session) handleChangeLocation(data json.RawMessage) {
	var city string
	if err := json.Unmarshal(data, &city); err == nil && city != "" {
		loc, err := s.weather.SetLocation(s.ctx, city)
		if err != nil {
			s.send(EventLocationChanged, LocationChanged{Success: false, Message: locationErrorMessage(err)})
			return
		}
		s.send(EventWeatherData, s.weather.Snapshot(s.ctx))
		s.send(EventLocationChanged, LocationChanged{Success: true, Location: &loc})
		return
	}

	var req locationRequest
	if err := json.Unmarshal(data, &req); err != nil || req.Lat == 0 && req.Lon == 0 {
		s.send(EventLocationChanged, LocationChanged{Success: false, Message: "invalid location data format"})
		return
	}

	loc := weather.Location{City: req.City, Lat: req.Lat, Lon: req.Lon}
	if loc.City == "" {
		loc.City = "Unknown"
	}
	if err := s.weather.SetLocationCoords(loc); err != nil {
		s.send(EventLocationChanged, LocationChanged{Success: false, Message: locationErrorMessage(err)})
		return
	}

	s.send(EventWeatherData, s.weather.Snapshot(s.ctx))
	s.send(EventLocationChanged, LocationChanged{Success: true, Location: &loc})
}

func (s *Session) handleSearchCities(data json.RawMessage) {
	var query string
	if err := json.Unmarshal(data, &query); err != nil {
		s.send(EventCitySearchResults, []weather.CityCandidate{})
		return
	}
	s.send(EventCitySearchResults, s.weather.SearchCities(s.ctx, query))
}

func (s *Session) handleWeatherByCoords(data json.RawMessage) {
	var req coordsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		s.send(EventCoordsWeather, CoordsWeather{Success: false, Error: "invalid coordinates"})
		return
	}

	snap, err := s.weather.SnapshotByCoords(s.ctx, req.Lat, req.Lon)
	if err != nil {
		s.send(EventCoordsWeather, CoordsWeather{Success: false, Error: locationErrorMessage(err)})
		return
	}
	s.send(EventCoordsWeather, CoordsWeather{Success: true, Data: snap})
}

func (s *Session) handleMajorCities(data json.RawMessage) {
	var cities []cityRequest
	if err := json.Unmarshal(data, &cities); err != nil {
		s.send(EventMajorCities, MajorCitiesWeather{Success: false, Error: "invalid city list"})
		return
	}

	results := make([]CityWeather, 0, len(cities))
	for _, city := range cities {
		snap, err := s.weather.SnapshotByCoords(s.ctx, city.Lat, city.Lon)
		if err != nil {
			results = append(results, CityWeather{CityName: city.Name, Success: false, Error: locationErrorMessage(err)})
			continue
		}
		results = append(results, CityWeather{CityName: city.Name, Success: true, Data: snap})
	}
	s.send(EventMajorCities, MajorCitiesWeather{Success: true, Data: results})
}

func (s *Session) handleGetPrediction(data json.RawMessage) {
	if s.predictor == nil {
		s.send(EventPrediction, PredictionResult{Success: false, Message: "prediction not available"})
		return
	}

	var hoursAhead float64
	if len(data) > 0 {
		if err := json.Unmarshal(data, &hoursAhead); err != nil {
			hoursAhead = 0
		}
	}

	horizon := time.Duration(hoursAhead * float64(time.Hour))
	forecast, err := s.predictor.Predict(s.predictRing.Items(), horizon)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, prediction.ErrInsufficientData) {
			msg = "Insufficient data for prediction. Please wait for more readings."
		}
		s.send(EventPrediction, PredictionResult{Success: false, Message: msg})
		return
	}
	s.send(EventPrediction, PredictionResult{Success: true, Forecast: forecast})
}

func (s *Session) handleAcknowledgeAlert(data json.RawMessage) {
	var alertID string
	if err := json.Unmarshal(data, &alertID); err != nil || alertID == "" {
		s.send(EventAlertAcknowledged, AlertAcknowledged{Success: false, Message: "invalid alert id"})
		return
	}

	if s.ownerID == "" {
		s.send(EventAlertAcknowledged, AlertAcknowledged{Success: false, Message: "authentication required"})
		return
	}

	ok := s.alerts.Acknowledge(alertID)
	s.send(EventAlertAcknowledged, AlertAcknowledged{Success: ok, AlertID: alertID})
}

// send delivers an event; a transport failure closes the session.
func (s *Session) send(event string, data interface{}) {
	if s.ctx.Err() != nil {
		return
	}
	if err := s.transport.Send(event, data); err != nil {
		s.logger.Debug().Err(err).Str("event", event).Msg("transport send failed, closing session")
		s.cancel()
	}
}

// sampleFromSnapshot derives a reading from a snapshot. CO2 is synthetic.
func sampleFromSnapshot(snap *weather.Snapshot) history.Sample {
	return history.Sample{
		Temperature: snap.Current.Temperature,
		Humidity:    snap.Current.Humidity,
		CO2:         baselineCO2 + (rand.Float64()-0.5)*50,
		PM25:        snap.AQI.PM25,
		AQI:         snap.AQI.Value,
		WindSpeed:   snap.Wind.Speed,
		Timestamp:   snap.Timestamp,
	}
}

func sensorDataFromSample(sample history.Sample) SensorData {
	return SensorData{
		Temperature: sample.Temperature,
		Humidity:    sample.Humidity,
		CO2:         sample.CO2,
		PM25:        sample.PM25,
		AQI:         sample.AQI,
		Timestamp:   sample.Timestamp.UTC().Format(time.RFC3339),
	}
}

func historyFromRing(ring *history.Ring) SensorHistory {
	samples := ring.Items()
	hist := SensorHistory{
		Temperature: make([]HistoryPoint, 0, len(samples)),
		Humidity:    make([]HistoryPoint, 0, len(samples)),
		CO2:         make([]HistoryPoint, 0, len(samples)),
		PM25:        make([]HistoryPoint, 0, len(samples)),
	}
	for _, sample := range samples {
		label := sample.Timestamp.Format("15:04:05")
		hist.Temperature = append(hist.Temperature, HistoryPoint{Time: label, Value: sample.Temperature})
		hist.Humidity = append(hist.Humidity, HistoryPoint{Time: label, Value: sample.Humidity})
		hist.CO2 = append(hist.CO2, HistoryPoint{Time: label, Value: sample.CO2})
		hist.PM25 = append(hist.PM25, HistoryPoint{Time: label, Value: sample.PM25})
	}
	return hist
}

// locationErrorMessage maps domain errors to client-facing messages.
func locationErrorMessage(err error) string {
	switch {
	case errors.Is(err, weather.ErrCityNotFound):
		return "city not found"
	case errors.Is(err, weather.ErrInvalidCoordinates):
		return "invalid coordinates"
	case errors.Is(err, weather.ErrProviderUnavailable):
		return "weather provider unavailable"
	default:
		return err.Error()
	}
}
