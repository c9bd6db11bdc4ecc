package weather

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/V8Velocity/auto-climate/internal/aqi"
)

// ProviderMetrics records provider call and cache outcomes. Satisfied by
// middleware.ProviderMetrics; nil disables recording.
type ProviderMetrics interface {
	RecordRequest(provider, operation string, duration time.Duration, err error)
	RecordCacheHit(provider, operation string)
	RecordCacheMiss(provider, operation string)
}

// ServiceConfig holds configuration for the weather service.
type ServiceConfig struct {
	// Provider is the weather data provider.
	Provider Provider

	// Metrics receives cache and provider-call outcomes (optional).
	Metrics ProviderMetrics

	// Logger for service operations.
	Logger zerolog.Logger

	// Location is the shared observed-location handle (defaults to a new
	// state seeded with DefaultLocation).
	Location *LocationState

	// CacheTTL is how long a fetched snapshot stays fresh (default: 60s).
	CacheTTL time.Duration

	// ProviderTimeout bounds each outbound provider call (default: 10s).
	// A timeout is routed through the same simulated-data fallback as any
	// other provider error.
	ProviderTimeout time.Duration
}

// Service owns the single-slot snapshot cache for the observed location.
//
// Concurrency contract: any number of callers may request a snapshot
// concurrently, but at most one provider call is in flight per cache miss —
// concurrent misses collapse into a single fetch and the losers read the
// winner's cached result. A location change invalidates the slot immediately
// and bumps a generation counter so a refresh already in flight for the old
// location cannot repopulate the cache.
type Service struct {
	provider        Provider
	metrics         ProviderMetrics
	logger          zerolog.Logger
	location        *LocationState
	cacheTTL        time.Duration
	providerTimeout time.Duration

	mu        sync.RWMutex
	cached    *Snapshot
	fetchedAt time.Time
	gen       uint64

	fetchMu sync.Mutex // single-flight guard around the refresh path
}

// NewService creates a new weather service.
func NewService(cfg ServiceConfig) *Service {
	cacheTTL := cfg.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 60 * time.Second
	}

	providerTimeout := cfg.ProviderTimeout
	if providerTimeout == 0 {
		providerTimeout = 10 * time.Second
	}

	location := cfg.Location
	if location == nil {
		location = NewLocationState(DefaultLocation())
	}

	return &Service{
		provider:        cfg.Provider,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
		location:        location,
		cacheTTL:        cacheTTL,
		providerTimeout: providerTimeout,
	}
}

// CurrentLocation returns the currently observed location.
func (s *Service) CurrentLocation() Location {
	return s.location.Get()
}

// SetLocation resolves a city name (seeded database first, then provider
// geocoding) and makes it the observed location, dropping any cached
// snapshot regardless of its TTL.
func (s *Service) SetLocation(ctx context.Context, cityName string) (Location, error) {
	if loc, ok := lookupCity(cityName); ok {
		s.applyLocation(loc)
		return loc, nil
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	candidates, err := s.provider.SearchCity(fetchCtx, cityName, 1)
	if err != nil {
		s.logger.Error().Err(err).Str("query", cityName).Msg("city geocoding failed")
		return Location{}, ErrCityNotFound
	}
	if len(candidates) == 0 {
		return Location{}, ErrCityNotFound
	}

	loc := Location{
		City:     candidates[0].City,
		Country:  candidates[0].Country,
		Lat:      candidates[0].Lat,
		Lon:      candidates[0].Lon,
		Timezone: "UTC",
	}
	s.applyLocation(loc)
	return loc, nil
}

// SetLocationCoords makes explicit coordinates the observed location.
func (s *Service) SetLocationCoords(loc Location) error {
	if err := validateCoordinates(loc.Lat, loc.Lon); err != nil {
		return err
	}
	if loc.City == "" {
		loc.City = "Unknown"
	}
	if loc.Timezone == "" {
		loc.Timezone = "UTC"
	}
	s.applyLocation(loc)
	return nil
}

// applyLocation atomically replaces the observed location and invalidates
// the cache slot.
func (s *Service) applyLocation(loc Location) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.location.Set(loc)
	s.cached = nil
	s.fetchedAt = time.Time{}
	s.gen++

	s.logger.Info().
		Str("city", loc.City).
		Float64("lat", loc.Lat).
		Float64("lon", loc.Lon).
		Msg("observed location changed")
}

// Snapshot returns the environmental snapshot for the observed location.
// It never fails: on any provider error (including missing credentials and
// timeouts) a simulated snapshot with IsLiveData=false is returned and NOT
// cached, so the next caller retries the provider instead of being stuck
// with synthetic data for a full TTL.
func (s *Service) Snapshot(ctx context.Context) *Snapshot {
	s.mu.RLock()
	if s.cached != nil && time.Since(s.fetchedAt) < s.cacheTTL {
		snapshot := s.cached
		s.mu.RUnlock()
		s.recordCacheHit()
		return snapshot
	}
	s.mu.RUnlock()

	s.recordCacheMiss()
	return s.refresh(ctx)
}

func (s *Service) recordCacheHit() {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(s.provider.Name(), "snapshot")
	}
}

func (s *Service) recordCacheMiss() {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(s.provider.Name(), "snapshot")
	}
}

// refresh performs the single-flight provider fetch for a cache miss.
func (s *Service) refresh(ctx context.Context) *Snapshot {
	s.fetchMu.Lock()
	defer s.fetchMu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	s.mu.RLock()
	if s.cached != nil && time.Since(s.fetchedAt) < s.cacheTTL {
		snapshot := s.cached
		s.mu.RUnlock()
		return snapshot
	}
	gen := s.gen
	s.mu.RUnlock()

	loc := s.location.Get()

	fetchCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	fetchStart := time.Now()
	report, err := s.provider.FetchCurrent(fetchCtx, loc.Lat, loc.Lon)
	if s.metrics != nil {
		s.metrics.RecordRequest(s.provider.Name(), "snapshot", time.Since(fetchStart), err)
	}
	if err != nil {
		s.logger.Warn().Err(err).
			Str("city", loc.City).
			Str("provider", s.provider.Name()).
			Msg("provider fetch failed, serving simulated data")
		return simulatedSnapshot(loc)
	}

	snapshot := assembleSnapshot(loc, report)

	s.mu.Lock()
	// A location change mid-fetch means this report describes a place we are
	// no longer observing; hand it to the caller but leave the slot empty.
	if s.gen == gen {
		s.cached = snapshot
		s.fetchedAt = time.Now()
	}
	s.mu.Unlock()

	s.logger.Debug().
		Str("city", loc.City).
		Int("aqi", snapshot.AQI.Value).
		Msg("live snapshot fetched")

	return snapshot
}

// SnapshotByCoords fetches an uncached snapshot for arbitrary coordinates
// (the map-click path). Unlike Snapshot, a provider failure here is an error:
// the caller asked about a specific place and synthetic data would be
// misleading.
func (s *Service) SnapshotByCoords(ctx context.Context, lat, lon float64) (*Snapshot, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	report, err := s.provider.FetchCurrent(fetchCtx, lat, lon)
	if err != nil {
		return nil, err
	}

	loc := Location{City: coordinateLabel(lat, lon), Lat: lat, Lon: lon}
	if candidate, geoErr := s.provider.ReverseGeocode(fetchCtx, lat, lon); geoErr == nil && candidate != nil {
		loc.City = candidate.City
		loc.Country = candidate.Country
	}

	return assembleSnapshot(loc, report), nil
}

// SearchCities merges seeded-database matches with provider geocoding
// results, de-duplicated by city and country. Provider failures degrade to
// local-only results.
func (s *Service) SearchCities(ctx context.Context, query string) []CityCandidate {
	results := searchLocalCities(query)

	fetchCtx, cancel := context.WithTimeout(ctx, s.providerTimeout)
	defer cancel()

	remote, err := s.provider.SearchCity(fetchCtx, query, 10)
	if err != nil {
		s.logger.Debug().Err(err).Str("query", query).Msg("remote city search failed")
		return sortCandidates(results)
	}

	for _, candidate := range remote {
		duplicate := false
		for i, existing := range results {
			if strings.EqualFold(existing.City, candidate.City) && existing.Country == candidate.Country {
				results[i] = candidate
				duplicate = true
				break
			}
		}
		if !duplicate {
			results = append(results, candidate)
		}
	}
	return sortCandidates(results)
}

func sortCandidates(candidates []CityCandidate) []CityCandidate {
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].City != candidates[j].City {
			return candidates[i].City < candidates[j].City
		}
		return candidates[i].Country < candidates[j].Country
	})
	return candidates
}

// assembleSnapshot builds an immutable Snapshot from a provider report,
// embedding the AQI computation over the report's pollutant data.
func assembleSnapshot(loc Location, report *Report) *Snapshot {
	index := aqi.Compute(report.Pollutants)

	return &Snapshot{
		Location: loc,
		Current:  report.Conditions,
		Wind:     report.Wind,
		AQI: AirQuality{
			Result: index,
			PM25:   round1(report.Pollutants.PM25),
			PM10:   round1(report.Pollutants.PM10),
			O3:     round1(report.Pollutants.O3),
			NO2:    round1(report.Pollutants.NO2),
			SO2:    round1(report.Pollutants.SO2),
			CO:     round2(report.Pollutants.CO / 1000), // display scale, not the AQI conversion
		},
		Sun:        sunTimes(report.Sunrise, report.Sunset, time.Now()),
		Forecast:   dailyForecast(report.Forecast, 5),
		Timestamp:  time.Now(),
		IsLiveData: true,
	}
}

// dailyForecast reduces short-range forecast steps to one entry per calendar
// day, keeping at most maxDays days.
func dailyForecast(entries []ForecastEntry, maxDays int) []ForecastDay {
	var days []ForecastDay
	seen := make(map[string]bool)

	for _, entry := range entries {
		dateKey := entry.Time.Format("2006-01-02")
		if seen[dateKey] || len(days) >= maxDays {
			continue
		}
		seen[dateKey] = true

		days = append(days, ForecastDay{
			Day:           entry.Time.Format("Mon"),
			Date:          entry.Time.Format("Jan 2"),
			Condition:     entry.Condition,
			Icon:          entry.Icon,
			HighTemp:      int(round0(entry.TempMax)),
			LowTemp:       int(round0(entry.TempMin)),
			Precipitation: int(round0(entry.PrecipProb * 100)),
			Humidity:      entry.Humidity,
		})
	}
	return days
}

// sunTimes derives display sun data from sunrise/sunset instants.
func sunTimes(sunrise, sunset, now time.Time) Sun {
	progress := 0
	switch {
	case now.After(sunset):
		progress = 100
	case now.After(sunrise):
		total := sunset.Sub(sunrise)
		if total > 0 {
			progress = int(round0(float64(now.Sub(sunrise)) / float64(total) * 100))
		}
	}

	return Sun{
		Sunrise:     sunrise.Format("03:04 PM"),
		Sunset:      sunset.Format("03:04 PM"),
		DayProgress: progress,
		IsDaytime:   !now.Before(sunrise) && !now.After(sunset),
	}
}
