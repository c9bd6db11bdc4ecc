package weather_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V8Velocity/auto-climate/internal/aqi"
	"github.com/V8Velocity/auto-climate/internal/weather"
)

// mockProvider is a scriptable weather provider for testing.
type mockProvider struct {
	mu         sync.Mutex
	fetchCalls int
	fetchDelay time.Duration
	err        error
	candidates []weather.CityCandidate
	searchErr  error
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) FetchCurrent(ctx context.Context, lat, lon float64) (*weather.Report, error) {
	m.mu.Lock()
	m.fetchCalls++
	delay := m.fetchDelay
	err := m.err
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}

	return &weather.Report{
		Lat: lat,
		Lon: lon,
		Conditions: weather.Conditions{
			Temperature: 22.5,
			Humidity:    60,
			Pressure:    1013,
			Visibility:  10,
			Description: "clear sky",
		},
		Wind:       weather.Wind{Speed: 12, Direction: 225, DirectionText: "SW"},
		Pollutants: aqi.Concentrations{PM25: 10, PM10: 20},
		Sunrise:    time.Now().Add(-6 * time.Hour),
		Sunset:     time.Now().Add(6 * time.Hour),
		Forecast: []weather.ForecastEntry{
			{Time: time.Now().AddDate(0, 0, 1), TempMax: 25, TempMin: 18, Condition: "sunny", Icon: "☀️"},
		},
		FetchedAt: time.Now(),
	}, nil
}

func (m *mockProvider) SearchCity(_ context.Context, _ string, _ int) ([]weather.CityCandidate, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.candidates, nil
}

func (m *mockProvider) ReverseGeocode(_ context.Context, lat, lon float64) (*weather.CityCandidate, error) {
	return &weather.CityCandidate{City: "Geocoded", Country: "XX", Lat: lat, Lon: lon}, nil
}

func (m *mockProvider) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

func newTestService(provider *mockProvider, ttl time.Duration) *weather.Service {
	return weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		CacheTTL: ttl,
	})
}

// recordingMetrics counts cache and provider-call outcomes.
type recordingMetrics struct {
	mu       sync.Mutex
	hits     int
	misses   int
	requests int
	failures int
}

func (m *recordingMetrics) RecordRequest(_, _ string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests++
	if err != nil {
		m.failures++
	}
}

func (m *recordingMetrics) RecordCacheHit(_, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *recordingMetrics) RecordCacheMiss(_, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func TestService_SnapshotRecordsCacheMetrics(t *testing.T) {
	provider := &mockProvider{}
	metrics := &recordingMetrics{}
	svc := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Metrics:  metrics,
		Logger:   zerolog.Nop(),
		CacheTTL: time.Minute,
	})
	ctx := context.Background()

	svc.Snapshot(ctx)
	svc.Snapshot(ctx)
	svc.Snapshot(ctx)

	assert.Equal(t, 1, metrics.misses, "only the first call misses the cache")
	assert.Equal(t, 2, metrics.hits, "subsequent calls within the TTL are hits")
	assert.Equal(t, 1, metrics.requests, "one provider call for the single miss")
	assert.Equal(t, 0, metrics.failures)
}

func TestService_SnapshotRecordsFailedFetch(t *testing.T) {
	provider := &mockProvider{err: errors.New("boom")}
	metrics := &recordingMetrics{}
	svc := weather.NewService(weather.ServiceConfig{
		Provider: provider,
		Metrics:  metrics,
		Logger:   zerolog.Nop(),
		CacheTTL: time.Minute,
	})

	snapshot := svc.Snapshot(context.Background())

	require.False(t, snapshot.IsLiveData)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 1, metrics.failures, "failed fetch is recorded with its error")
}

func TestService_SnapshotCachesWithinTTL(t *testing.T) {
	provider := &mockProvider{}
	svc := newTestService(provider, time.Minute)
	ctx := context.Background()

	first := svc.Snapshot(ctx)
	second := svc.Snapshot(ctx)

	require.True(t, first.IsLiveData)
	assert.Equal(t, first.Timestamp, second.Timestamp, "second call must return the cached snapshot")
	assert.Equal(t, 1, provider.calls(), "no second provider call within the TTL")
}

func TestService_SnapshotRefetchesAfterTTL(t *testing.T) {
	provider := &mockProvider{}
	svc := newTestService(provider, 10*time.Millisecond)
	ctx := context.Background()

	svc.Snapshot(ctx)
	time.Sleep(20 * time.Millisecond)
	svc.Snapshot(ctx)

	assert.Equal(t, 2, provider.calls())
}

func TestService_SetLocationInvalidatesCache(t *testing.T) {
	provider := &mockProvider{}
	svc := newTestService(provider, time.Minute)
	ctx := context.Background()

	first := svc.Snapshot(ctx)

	_, err := svc.SetLocation(ctx, "london")
	require.NoError(t, err)
	assert.Equal(t, "London", svc.CurrentLocation().City)

	second := svc.Snapshot(ctx)

	assert.Equal(t, 2, provider.calls(), "location change must force a fresh fetch")
	assert.NotEqual(t, first.Timestamp, second.Timestamp)
	assert.Equal(t, "London", second.Location.City)
}

func TestService_SetLocationUnknownCityUsesGeocoding(t *testing.T) {
	provider := &mockProvider{
		candidates: []weather.CityCandidate{{City: "Reykjavik", Country: "IS", Lat: 64.15, Lon: -21.94}},
	}
	svc := newTestService(provider, time.Minute)

	loc, err := svc.SetLocation(context.Background(), "reykjavik")

	require.NoError(t, err)
	assert.Equal(t, "Reykjavik", loc.City)
	assert.Equal(t, "IS", loc.Country)
}

func TestService_SetLocationCityNotFound(t *testing.T) {
	provider := &mockProvider{candidates: nil}
	svc := newTestService(provider, time.Minute)

	_, err := svc.SetLocation(context.Background(), "atlantis")

	assert.ErrorIs(t, err, weather.ErrCityNotFound)
}

func TestService_ProviderFailureServesSimulatedWithoutCaching(t *testing.T) {
	provider := &mockProvider{err: weather.ErrProviderUnavailable}
	svc := newTestService(provider, time.Minute)
	ctx := context.Background()

	first := svc.Snapshot(ctx)

	require.NotNil(t, first)
	assert.False(t, first.IsLiveData)
	assert.NotZero(t, first.AQI.Value, "synthetic pollutants still produce an index")
	assert.NotEmpty(t, first.Current.Description,
		"synthetic conditions carry a description so weather-keyword rules can match")

	// The synthetic snapshot must not occupy the cache slot: once the
	// provider recovers, the very next call reaches it again.
	provider.mu.Lock()
	provider.err = nil
	provider.mu.Unlock()

	second := svc.Snapshot(ctx)

	assert.True(t, second.IsLiveData)
	assert.Equal(t, 2, provider.calls(), "caller after a failure must retry the provider")
}

func TestService_ConcurrentMissesCollapseToSingleFetch(t *testing.T) {
	provider := &mockProvider{fetchDelay: 50 * time.Millisecond}
	svc := newTestService(provider, time.Minute)
	ctx := context.Background()

	var wg sync.WaitGroup
	snapshots := make([]*weather.Snapshot, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			snapshots[i] = svc.Snapshot(ctx)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, provider.calls(), "concurrent misses must collapse into one provider call")
	for _, snap := range snapshots {
		assert.Equal(t, snapshots[0].Timestamp, snap.Timestamp)
	}
}

func TestService_SnapshotByCoords(t *testing.T) {
	provider := &mockProvider{}
	svc := newTestService(provider, time.Minute)

	snap, err := svc.SnapshotByCoords(context.Background(), 52.37, 4.89)

	require.NoError(t, err)
	assert.Equal(t, "Geocoded", snap.Location.City)
	assert.True(t, snap.IsLiveData)

	// Coordinate fetches bypass the shared cache entirely.
	assert.Equal(t, 1, provider.calls())
	svc.Snapshot(context.Background())
	assert.Equal(t, 2, provider.calls())
}

func TestService_SnapshotByCoordsInvalid(t *testing.T) {
	svc := newTestService(&mockProvider{}, time.Minute)

	_, err := svc.SnapshotByCoords(context.Background(), 91, 0)

	assert.ErrorIs(t, err, weather.ErrInvalidCoordinates)
}

func TestService_SnapshotByCoordsProviderError(t *testing.T) {
	provider := &mockProvider{err: errors.New("boom")}
	svc := newTestService(provider, time.Minute)

	_, err := svc.SnapshotByCoords(context.Background(), 52.37, 4.89)

	assert.Error(t, err, "coordinate fetches surface provider errors instead of synthesizing")
}

func TestService_SearchCitiesMergesLocalAndRemote(t *testing.T) {
	provider := &mockProvider{
		candidates: []weather.CityCandidate{
			{City: "London", Country: "GB", Lat: 51.5, Lon: -0.13}, // duplicate of seeded city
			{City: "Londonderry", Country: "GB", Lat: 55.0, Lon: -7.3},
		},
	}
	svc := newTestService(provider, time.Minute)

	results := svc.SearchCities(context.Background(), "london")

	cities := make(map[string]int)
	for _, c := range results {
		cities[c.City]++
	}
	assert.Equal(t, 1, cities["London"], "duplicates are merged")
	assert.Equal(t, 1, cities["Londonderry"])
}

func TestService_SearchCitiesProviderFailureFallsBackToLocal(t *testing.T) {
	provider := &mockProvider{searchErr: errors.New("network down")}
	svc := newTestService(provider, time.Minute)

	results := svc.SearchCities(context.Background(), "london")

	require.Len(t, results, 1)
	assert.Equal(t, "London", results[0].City)
}

func TestService_SnapshotEmbedsAqiInvariant(t *testing.T) {
	provider := &mockProvider{}
	svc := newTestService(provider, time.Minute)

	snap := svc.Snapshot(context.Background())

	maxSub := 0
	for _, sub := range snap.AQI.SubIndices {
		if sub > maxSub {
			maxSub = sub
		}
	}
	assert.Equal(t, maxSub, snap.AQI.Value)
	assert.Equal(t, snap.AQI.Value, snap.AQI.SubIndices[snap.AQI.DominantPollutant])
}
