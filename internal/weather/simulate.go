package weather

import (
	"math/rand"
	"time"

	"github.com/V8Velocity/auto-climate/internal/aqi"
)

// simulatedConditions are the forecast conditions the generator cycles
// through, with their display icons.
var simulatedConditions = []struct {
	condition string
	icon      string
}{
	{"sunny", "☀️"},
	{"partly-cloudy", "⛅"},
	{"cloudy", "☁️"},
	{"rainy", "🌧️"},
	{"thunderstorm", "⛈️"},
}

// simulatedSnapshot synthesizes a structurally complete snapshot when the
// provider is unreachable. Values are randomized around plausible urban
// baselines; the AQI is computed from the synthetic pollutants with the same
// engine as live data so the two paths cannot drift apart. The result is
// marked IsLiveData=false and must never be cached.
func simulatedSnapshot(loc Location) *Snapshot {
	now := time.Now()
	sunrise := time.Date(now.Year(), now.Month(), now.Day(), 6, 23, 0, 0, now.Location())
	sunset := time.Date(now.Year(), now.Month(), now.Day(), 18, 12, 0, 0, now.Location())

	pollutants := aqi.Concentrations{
		PM25: jitter(35, 20),
		PM10: jitter(55, 20),
		O3:   jitter(45, 15),
		NO2:  jitter(25, 10),
		SO2:  jitter(8, 5),
		CO:   jitter(500, 300),
	}
	index := aqi.Compute(pollutants)

	windDeg := rand.Float64() * 360
	pick := simulatedConditions[rand.Intn(len(simulatedConditions))]

	return &Snapshot{
		Location: loc,
		Current: Conditions{
			Temperature: round1(jitter(25, 10)),
			FeelsLike:   round1(jitter(26, 10)),
			Humidity:    round0(jitter(60, 20)),
			Pressure:    round0(jitter(1013, 10)),
			Visibility:  10,
			UVIndex:     round0(jitter(5, 4)),
			CloudCover:  round0(jitter(40, 30)),
			Description: pick.condition,
			Icon:        pick.icon,
		},
		Wind: Wind{
			Speed:         round0(jitter(12, 10)),
			Direction:     round0(windDeg),
			DirectionText: WindDirectionText(windDeg),
			Gust:          round0(jitter(18, 8)),
		},
		AQI: AirQuality{
			Result: index,
			PM25:   round1(pollutants.PM25),
			PM10:   round1(pollutants.PM10),
			O3:     round1(pollutants.O3),
			NO2:    round1(pollutants.NO2),
			SO2:    round1(pollutants.SO2),
			CO:     round2(pollutants.CO / 1000),
		},
		Sun:        sunTimes(sunrise, sunset, now),
		Forecast:   simulatedForecast(now),
		Timestamp:  now,
		IsLiveData: false,
	}
}

// simulatedForecast generates five days of synthetic daily forecast.
func simulatedForecast(now time.Time) []ForecastDay {
	days := make([]ForecastDay, 0, 5)

	for i := 1; i <= 5; i++ {
		date := now.AddDate(0, 0, i)
		pick := simulatedConditions[rand.Intn(len(simulatedConditions))]
		high := int(round0(25 + rand.Float64()*6 - 2))
		low := high - 5 - rand.Intn(4)

		days = append(days, ForecastDay{
			Day:           date.Format("Mon"),
			Date:          date.Format("Jan 2"),
			Condition:     pick.condition,
			Icon:          pick.icon,
			HighTemp:      high,
			LowTemp:       low,
			Precipitation: rand.Intn(80),
			Humidity:      round0(50 + rand.Float64()*30),
		})
	}
	return days
}

// jitter returns base plus a uniform offset in [-spread/2, spread/2).
func jitter(base, spread float64) float64 {
	return base + (rand.Float64()-0.5)*spread
}
