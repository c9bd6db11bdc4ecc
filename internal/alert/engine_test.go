package alert_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V8Velocity/auto-climate/internal/alert"
	"github.com/V8Velocity/auto-climate/internal/aqi"
	"github.com/V8Velocity/auto-climate/internal/weather"
)

func floatPtr(v float64) *float64 {
	return &v
}

func testSnapshot(city string, temp, humidity, windSpeed float64, aqiValue int) *weather.Snapshot {
	return &weather.Snapshot{
		Location: weather.Location{City: city, Country: "IN"},
		Current: weather.Conditions{
			Temperature: temp,
			Humidity:    humidity,
			Description: "clear sky",
		},
		Wind: weather.Wind{Speed: windSpeed},
		AQI: weather.AirQuality{
			Result: aqi.Result{Value: aqiValue},
		},
		Timestamp: time.Now(),
	}
}

func newTestEngine(t *testing.T, rules ...*alert.Rule) (*alert.Engine, alert.Repository) {
	t.Helper()

	repo := alert.NewInMemoryRepository()
	for _, r := range rules {
		require.NoError(t, repo.Create(context.Background(), r))
	}

	engine := alert.NewEngine(alert.EngineConfig{Repository: repo})
	return engine, repo
}

func TestEngine_TriggersAboveTemperatureMax(t *testing.T) {
	rule := &alert.Rule{
		ID:       "r1",
		OwnerID:  "u1",
		Name:     "heat warning",
		Location: "Delhi",
		Conditions: alert.Conditions{
			TemperatureMax: floatPtr(30),
		},
		IsActive: true,
	}
	engine, _ := newTestEngine(t, rule)

	triggered, err := engine.Evaluate(context.Background(), testSnapshot("Delhi", 31, 50, 10, 80))
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Equal(t, "r1", triggered[0].RuleID)
	assert.Len(t, triggered[0].Reasons, 1)

	triggered, err = engine.Evaluate(context.Background(), testSnapshot("Delhi", 29, 50, 10, 80))
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestEngine_AnyViolatedBoundTriggers(t *testing.T) {
	rule := &alert.Rule{
		ID:       "r1",
		OwnerID:  "u1",
		Name:     "multi",
		Location: "Delhi",
		Conditions: alert.Conditions{
			TemperatureMax: floatPtr(40),
			AQIMax:         floatPtr(150),
			WindSpeedMax:   floatPtr(60),
		},
		IsActive: true,
	}
	engine, _ := newTestEngine(t, rule)

	// Temperature and wind within bounds, AQI violated.
	triggered, err := engine.Evaluate(context.Background(), testSnapshot("Delhi", 25, 50, 10, 180))
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	require.Len(t, triggered[0].Reasons, 1)
	assert.Contains(t, triggered[0].Reasons[0], "AQI")
}

func TestEngine_NoBoundsNeverTriggers(t *testing.T) {
	rule := &alert.Rule{
		ID:       "r1",
		OwnerID:  "u1",
		Name:     "empty",
		Location: "Delhi",
		IsActive: true,
	}
	engine, _ := newTestEngine(t, rule)

	triggered, err := engine.Evaluate(context.Background(), testSnapshot("Delhi", 45, 99, 120, 500))
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestEngine_LocationMatchIsCaseInsensitive(t *testing.T) {
	rule := &alert.Rule{
		ID:         "r1",
		OwnerID:    "u1",
		Name:       "heat",
		Location:   "delhi",
		Conditions: alert.Conditions{TemperatureMax: floatPtr(30)},
		IsActive:   true,
	}
	engine, _ := newTestEngine(t, rule)

	triggered, err := engine.Evaluate(context.Background(), testSnapshot("Delhi", 35, 50, 10, 80))
	require.NoError(t, err)
	assert.Len(t, triggered, 1)
}

func TestEngine_SkipsOtherLocationsAndInactiveRules(t *testing.T) {
	elsewhere := &alert.Rule{
		ID: "r1", OwnerID: "u1", Name: "mumbai heat", Location: "Mumbai",
		Conditions: alert.Conditions{TemperatureMax: floatPtr(30)},
		IsActive:   true,
	}
	inactive := &alert.Rule{
		ID: "r2", OwnerID: "u1", Name: "disabled", Location: "Delhi",
		Conditions: alert.Conditions{TemperatureMax: floatPtr(30)},
		IsActive:   false,
	}
	noLocation := &alert.Rule{
		ID: "r3", OwnerID: "u1", Name: "unbound",
		Conditions: alert.Conditions{TemperatureMax: floatPtr(30)},
		IsActive:   true,
	}
	engine, _ := newTestEngine(t, elsewhere, inactive, noLocation)

	triggered, err := engine.Evaluate(context.Background(), testSnapshot("Delhi", 35, 50, 10, 80))
	require.NoError(t, err)
	assert.Empty(t, triggered)
}

func TestEngine_LevelTriggeredRefires(t *testing.T) {
	rule := &alert.Rule{
		ID: "r1", OwnerID: "u1", Name: "heat", Location: "Delhi",
		Conditions: alert.Conditions{TemperatureMax: floatPtr(30)},
		IsActive:   true,
	}
	engine, repo := newTestEngine(t, rule)

	snap := testSnapshot("Delhi", 35, 50, 10, 80)

	first, err := engine.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, first, 1)

	stored, err := repo.Get(context.Background(), "r1")
	require.NoError(t, err)
	require.NotNil(t, stored.LastTriggered)
	firstTriggered := *stored.LastTriggered

	time.Sleep(5 * time.Millisecond)

	second, err := engine.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, second, 1, "still-violated rule fires on every evaluation")

	stored, err = repo.Get(context.Background(), "r1")
	require.NoError(t, err)
	assert.True(t, stored.LastTriggered.After(firstTriggered),
		"LastTriggered advances on each fire")
}

func TestEngine_CooldownSuppressesRefire(t *testing.T) {
	rule := &alert.Rule{
		ID: "r1", OwnerID: "u1", Name: "heat", Location: "Delhi",
		Conditions: alert.Conditions{TemperatureMax: floatPtr(30)},
		IsActive:   true,
	}
	repo := alert.NewInMemoryRepository()
	require.NoError(t, repo.Create(context.Background(), rule))

	engine := alert.NewEngine(alert.EngineConfig{
		Repository: repo,
		Cooldown:   time.Hour,
	})

	snap := testSnapshot("Delhi", 35, 50, 10, 80)

	first, err := engine.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := engine.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestEngine_WeatherTypeMatch(t *testing.T) {
	rule := &alert.Rule{
		ID: "r1", OwnerID: "u1", Name: "storm", Location: "Delhi",
		Conditions: alert.Conditions{WeatherTypes: []string{"Thunderstorm"}},
		IsActive:   true,
	}
	engine, _ := newTestEngine(t, rule)

	snap := testSnapshot("Delhi", 25, 50, 10, 80)
	snap.Current.Description = "heavy thunderstorm with rain"

	triggered, err := engine.Evaluate(context.Background(), snap)
	require.NoError(t, err)
	require.Len(t, triggered, 1)
	assert.Contains(t, triggered[0].Reasons[0], "thunderstorm")
}

func TestEngine_ActiveAndAcknowledge(t *testing.T) {
	rule := &alert.Rule{
		ID: "r1", OwnerID: "u1", Name: "heat", Location: "Delhi",
		Conditions: alert.Conditions{TemperatureMax: floatPtr(30)},
		IsActive:   true,
	}
	engine, _ := newTestEngine(t, rule)

	_, err := engine.Evaluate(context.Background(), testSnapshot("Delhi", 35, 50, 10, 80))
	require.NoError(t, err)
	require.Len(t, engine.Active(), 1)

	assert.True(t, engine.Acknowledge("r1"))
	assert.Empty(t, engine.Active())
	assert.False(t, engine.Acknowledge("r1"), "already acknowledged")

	// Conditions recover: the rule leaves the active set on its own.
	_, err = engine.Evaluate(context.Background(), testSnapshot("Delhi", 35, 50, 10, 80))
	require.NoError(t, err)
	require.Len(t, engine.Active(), 1)

	_, err = engine.Evaluate(context.Background(), testSnapshot("Delhi", 20, 50, 10, 80))
	require.NoError(t, err)
	assert.Empty(t, engine.Active())
}

type recordingNotifier struct {
	mu        sync.Mutex
	triggered []alert.Triggered
}

func (n *recordingNotifier) NotifyTriggered(_ context.Context, t alert.Triggered) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.triggered = append(n.triggered, t)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.triggered)
}

func TestEngine_NotifiesOnTrigger(t *testing.T) {
	rule := &alert.Rule{
		ID: "r1", OwnerID: "u1", Name: "heat", Location: "Delhi",
		Conditions: alert.Conditions{TemperatureMax: floatPtr(30)},
		IsActive:   true,
	}
	repo := alert.NewInMemoryRepository()
	require.NoError(t, repo.Create(context.Background(), rule))

	notifier := &recordingNotifier{}
	engine := alert.NewEngine(alert.EngineConfig{
		Repository: repo,
		Notifier:   notifier,
	})

	_, err := engine.Evaluate(context.Background(), testSnapshot("Delhi", 35, 50, 10, 80))
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count())

	_, err = engine.Evaluate(context.Background(), testSnapshot("Delhi", 20, 50, 10, 80))
	require.NoError(t, err)
	assert.Equal(t, 1, notifier.count(), "no notification when nothing fires")
}
