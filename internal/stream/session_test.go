package stream_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V8Velocity/auto-climate/internal/alert"
	"github.com/V8Velocity/auto-climate/internal/aqi"
	"github.com/V8Velocity/auto-climate/internal/history"
	"github.com/V8Velocity/auto-climate/internal/prediction"
	"github.com/V8Velocity/auto-climate/internal/stream"
	"github.com/V8Velocity/auto-climate/internal/weather"
)

// stubProvider returns fixed conditions for any coordinates.
type stubProvider struct{}

func (p *stubProvider) FetchCurrent(_ context.Context, lat, lon float64) (*weather.Report, error) {
	return &weather.Report{
		Lat: lat,
		Lon: lon,
		Conditions: weather.Conditions{
			Temperature: 28,
			Humidity:    55,
			Description: "clear sky",
		},
		Wind:       weather.Wind{Speed: 12},
		Pollutants: aqi.Concentrations{PM25: 20, PM10: 40},
		Sunrise:    time.Now().Add(-6 * time.Hour),
		Sunset:     time.Now().Add(6 * time.Hour),
		FetchedAt:  time.Now(),
	}, nil
}

func (p *stubProvider) SearchCity(context.Context, string, int) ([]weather.CityCandidate, error) {
	return nil, nil
}

func (p *stubProvider) ReverseGeocode(context.Context, float64, float64) (*weather.CityCandidate, error) {
	return nil, nil
}

func (p *stubProvider) Name() string { return "stub" }

// recordingTransport captures sent events.
type recordingTransport struct {
	mu     sync.Mutex
	events []stream.Envelope
}

func (t *recordingTransport) Send(event string, data interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, stream.Envelope{Event: event, Data: data})
	return nil
}

func (t *recordingTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.events)
}

func (t *recordingTransport) countOf(event string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, e := range t.events {
		if e.Event == event {
			n++
		}
	}
	return n
}

// lastOf returns the most recent payload for an event.
func (t *recordingTransport) lastOf(event string) (interface{}, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := len(t.events) - 1; i >= 0; i-- {
		if t.events[i].Event == event {
			return t.events[i].Data, true
		}
	}
	return nil, false
}

func newTestWeather(t *testing.T) *weather.Service {
	t.Helper()
	return weather.NewService(weather.ServiceConfig{
		Provider: &stubProvider{},
		Location: weather.NewLocationState(weather.DefaultLocation()),
		Logger:   zerolog.Nop(),
		CacheTTL: 10 * time.Millisecond,
	})
}

func newTestSession(t *testing.T, svc *weather.Service, transport stream.Transport, ownerID string) *stream.Session {
	t.Helper()

	engine := alert.NewEngine(alert.EngineConfig{
		Repository: alert.NewInMemoryRepository(),
		Logger:     zerolog.Nop(),
	})

	return stream.NewSession(stream.SessionConfig{
		OwnerID:      ownerID,
		Transport:    transport,
		Weather:      svc,
		Alerts:       engine,
		Predictor:    prediction.NewService(),
		History:      history.NewInMemoryRepository(),
		TickInterval: 20 * time.Millisecond,
		Logger:       zerolog.Nop(),
	})
}

func rawJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func TestSession_PushesInitialStateAndTicks(t *testing.T) {
	transport := &recordingTransport{}
	session := newTestSession(t, newTestWeather(t), transport, "")

	go session.Run()
	defer func() {
		session.Close()
		<-session.Done()
	}()

	assert.Eventually(t, func() bool {
		return transport.countOf(stream.EventSensorData) >= 3
	}, time.Second, 5*time.Millisecond, "initial push plus ticks")

	assert.GreaterOrEqual(t, transport.countOf(stream.EventSensorHistory), 1)
	assert.GreaterOrEqual(t, transport.countOf(stream.EventWeatherData), 1)

	payload, ok := transport.lastOf(stream.EventWeatherData)
	require.True(t, ok)
	snap, ok := payload.(*weather.Snapshot)
	require.True(t, ok)
	assert.Equal(t, "Delhi", snap.Location.City)
	assert.Equal(t, 28.0, snap.Current.Temperature)
}

func TestSession_NoPushAfterClose(t *testing.T) {
	transport := &recordingTransport{}
	session := newTestSession(t, newTestWeather(t), transport, "")

	go session.Run()

	assert.Eventually(t, func() bool {
		return transport.count() > 0
	}, time.Second, 5*time.Millisecond)

	session.Close()
	<-session.Done()

	sent := transport.count()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, sent, transport.count(), "no events after disconnect")
}

func TestSession_ChangeLocationByName(t *testing.T) {
	transport := &recordingTransport{}
	session := newTestSession(t, newTestWeather(t), transport, "")

	go session.Run()
	defer func() {
		session.Close()
		<-session.Done()
	}()

	session.HandleCommand(stream.Command{
		Name: stream.CommandChangeLocation,
		Data: rawJSON(t, "Mumbai"),
	})

	assert.Eventually(t, func() bool {
		payload, ok := transport.lastOf(stream.EventLocationChanged)
		if !ok {
			return false
		}
		changed := payload.(stream.LocationChanged)
		return changed.Success && changed.Location.City == "Mumbai"
	}, time.Second, 5*time.Millisecond)
}

func TestSession_ChangeLocationUnknownCityFails(t *testing.T) {
	transport := &recordingTransport{}
	session := newTestSession(t, newTestWeather(t), transport, "")

	go session.Run()
	defer func() {
		session.Close()
		<-session.Done()
	}()

	session.HandleCommand(stream.Command{
		Name: stream.CommandChangeLocation,
		Data: rawJSON(t, "Atlantis"),
	})

	assert.Eventually(t, func() bool {
		payload, ok := transport.lastOf(stream.EventLocationChanged)
		if !ok {
			return false
		}
		changed := payload.(stream.LocationChanged)
		return !changed.Success && changed.Message != ""
	}, time.Second, 5*time.Millisecond)
}

func TestSession_LocationSharedAcrossSessions(t *testing.T) {
	svc := newTestWeather(t)

	transportA := &recordingTransport{}
	sessionA := newTestSession(t, svc, transportA, "")
	transportB := &recordingTransport{}
	sessionB := newTestSession(t, svc, transportB, "")

	go sessionA.Run()
	go sessionB.Run()
	defer func() {
		sessionA.Close()
		sessionB.Close()
		<-sessionA.Done()
		<-sessionB.Done()
	}()

	sessionA.HandleCommand(stream.Command{
		Name: stream.CommandChangeLocation,
		Data: rawJSON(t, "Tokyo"),
	})

	// Session B picks up the new location on a later tick without any
	// command of its own.
	assert.Eventually(t, func() bool {
		payload, ok := transportB.lastOf(stream.EventWeatherData)
		if !ok {
			return false
		}
		return payload.(*weather.Snapshot).Location.City == "Tokyo"
	}, time.Second, 5*time.Millisecond)
}

func TestSession_PredictionInsufficientData(t *testing.T) {
	transport := &recordingTransport{}
	session := newTestSession(t, newTestWeather(t), transport, "")

	go session.Run()
	defer func() {
		session.Close()
		<-session.Done()
	}()

	session.HandleCommand(stream.Command{
		Name: stream.CommandGetPrediction,
		Data: rawJSON(t, 6),
	})

	assert.Eventually(t, func() bool {
		payload, ok := transport.lastOf(stream.EventPrediction)
		if !ok {
			return false
		}
		result := payload.(stream.PredictionResult)
		return !result.Success && result.Message != ""
	}, time.Second, 5*time.Millisecond)
}

func TestSession_PredictionAfterEnoughTicks(t *testing.T) {
	transport := &recordingTransport{}
	session := newTestSession(t, newTestWeather(t), transport, "")

	go session.Run()
	defer func() {
		session.Close()
		<-session.Done()
	}()

	require.Eventually(t, func() bool {
		return transport.countOf(stream.EventSensorData) >= prediction.MinSamples
	}, 2*time.Second, 5*time.Millisecond)

	session.HandleCommand(stream.Command{
		Name: stream.CommandGetPrediction,
		Data: rawJSON(t, 6),
	})

	assert.Eventually(t, func() bool {
		payload, ok := transport.lastOf(stream.EventPrediction)
		if !ok {
			return false
		}
		return payload.(stream.PredictionResult).Success
	}, time.Second, 5*time.Millisecond)
}

func TestSession_SearchCities(t *testing.T) {
	transport := &recordingTransport{}
	session := newTestSession(t, newTestWeather(t), transport, "")

	go session.Run()
	defer func() {
		session.Close()
		<-session.Done()
	}()

	session.HandleCommand(stream.Command{
		Name: stream.CommandSearchCities,
		Data: rawJSON(t, "lond"),
	})

	assert.Eventually(t, func() bool {
		payload, ok := transport.lastOf(stream.EventCitySearchResults)
		if !ok {
			return false
		}
		candidates := payload.([]weather.CityCandidate)
		return len(candidates) == 1 && candidates[0].City == "London"
	}, time.Second, 5*time.Millisecond)
}

func TestSession_AcknowledgeRequiresAuthentication(t *testing.T) {
	transport := &recordingTransport{}
	session := newTestSession(t, newTestWeather(t), transport, "")

	go session.Run()
	defer func() {
		session.Close()
		<-session.Done()
	}()

	session.HandleCommand(stream.Command{
		Name: stream.CommandAcknowledgeAlert,
		Data: rawJSON(t, "some-alert"),
	})

	assert.Eventually(t, func() bool {
		payload, ok := transport.lastOf(stream.EventAlertAcknowledged)
		if !ok {
			return false
		}
		ack := payload.(stream.AlertAcknowledged)
		return !ack.Success && ack.Message == "authentication required"
	}, time.Second, 5*time.Millisecond)
}

func TestSession_WeatherByCoords(t *testing.T) {
	transport := &recordingTransport{}
	session := newTestSession(t, newTestWeather(t), transport, "u1")

	go session.Run()
	defer func() {
		session.Close()
		<-session.Done()
	}()

	session.HandleCommand(stream.Command{
		Name: stream.CommandWeatherByCoords,
		Data: rawJSON(t, map[string]float64{"lat": 19.07, "lon": 72.87}),
	})

	assert.Eventually(t, func() bool {
		payload, ok := transport.lastOf(stream.EventCoordsWeather)
		if !ok {
			return false
		}
		result := payload.(stream.CoordsWeather)
		return result.Success && result.Data != nil
	}, time.Second, 5*time.Millisecond)
}
