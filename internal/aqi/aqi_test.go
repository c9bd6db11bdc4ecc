package aqi_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/V8Velocity/auto-climate/internal/aqi"
)

func TestCompute_AllZeros(t *testing.T) {
	result := aqi.Compute(aqi.Concentrations{})

	assert.Equal(t, 0, result.Value)
	assert.Equal(t, aqi.CategoryGood, result.Category)
	assert.Equal(t, "#22c55e", result.Color)
	for pollutant, sub := range result.SubIndices {
		assert.Equal(t, 0, sub, "sub-index for %s", pollutant)
	}
}

func TestCompute_BreakpointUpperBounds(t *testing.T) {
	// At each table's exact upper breakpoint concentration the sub-index must
	// equal that breakpoint's aqiHigh. Gas concentrations are given in µg/m³,
	// converted back from the table units using the fixed divisors.
	tests := []struct {
		name      string
		input     aqi.Concentrations
		pollutant aqi.Pollutant
		want      int
	}{
		{"pm25 good upper", aqi.Concentrations{PM25: 12.0}, aqi.PollutantPM25, 50},
		{"pm25 moderate upper", aqi.Concentrations{PM25: 35.4}, aqi.PollutantPM25, 100},
		{"pm25 sensitive upper", aqi.Concentrations{PM25: 55.4}, aqi.PollutantPM25, 150},
		{"pm25 unhealthy upper", aqi.Concentrations{PM25: 150.4}, aqi.PollutantPM25, 200},
		{"pm25 very unhealthy upper", aqi.Concentrations{PM25: 250.4}, aqi.PollutantPM25, 300},
		{"pm25 hazardous upper", aqi.Concentrations{PM25: 500.4}, aqi.PollutantPM25, 500},
		{"pm10 good upper", aqi.Concentrations{PM10: 54}, aqi.PollutantPM10, 50},
		{"pm10 moderate upper", aqi.Concentrations{PM10: 154}, aqi.PollutantPM10, 100},
		{"o3 good upper", aqi.Concentrations{O3: 54 * 2.0}, aqi.PollutantO3, 50},
		{"o3 moderate upper", aqi.Concentrations{O3: 70 * 2.0}, aqi.PollutantO3, 100},
		{"no2 good upper", aqi.Concentrations{NO2: 53 * 1.88}, aqi.PollutantNO2, 50},
		{"no2 moderate upper", aqi.Concentrations{NO2: 100 * 1.88}, aqi.PollutantNO2, 100},
		{"so2 good upper", aqi.Concentrations{SO2: 35 * 2.62}, aqi.PollutantSO2, 50},
		{"so2 moderate upper", aqi.Concentrations{SO2: 75 * 2.62}, aqi.PollutantSO2, 100},
		{"co good upper", aqi.Concentrations{CO: 4.4 * 1145}, aqi.PollutantCO, 50},
		{"co moderate upper", aqi.Concentrations{CO: 9.4 * 1145}, aqi.PollutantCO, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := aqi.Compute(tt.input)
			assert.Equal(t, tt.want, result.SubIndices[tt.pollutant])
		})
	}
}

func TestCompute_ClampsAboveTopBound(t *testing.T) {
	result := aqi.Compute(aqi.Concentrations{PM25: 9999})

	assert.Equal(t, 500, result.Value)
	assert.Equal(t, aqi.CategoryHazardous, result.Category)
	assert.Equal(t, aqi.PollutantPM25, result.DominantPollutant)

	// O3 has the shortest table; above 200 ppb it must also clamp to 500.
	result = aqi.Compute(aqi.Concentrations{O3: 201 * 2.0})
	assert.Equal(t, 500, result.SubIndices[aqi.PollutantO3])
}

func TestCompute_MalformedConcentrations(t *testing.T) {
	// Upstream API payloads can carry negative or NaN values; both must be
	// treated as a concentration of 0.
	tests := []struct {
		name  string
		input aqi.Concentrations
	}{
		{"negative pm25", aqi.Concentrations{PM25: -5}},
		{"nan pm25", aqi.Concentrations{PM25: math.NaN()}},
		{"nan co", aqi.Concentrations{CO: math.NaN()}},
		{"negative everything", aqi.Concentrations{PM25: -1, PM10: -1, O3: -1, NO2: -1, SO2: -1, CO: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := aqi.Compute(tt.input)
			assert.Equal(t, 0, result.Value)
			assert.Equal(t, aqi.CategoryGood, result.Category)
		})
	}
}

func TestCompute_Monotonic(t *testing.T) {
	// Increasing a single pollutant's concentration must never decrease its
	// sub-index.
	concentrations := []float64{0, 1, 5, 12, 12.1, 20, 35.4, 35.5, 40, 55.4, 100, 150.4, 200, 250.4, 400, 500.4, 600}

	prev := -1
	for _, c := range concentrations {
		result := aqi.Compute(aqi.Concentrations{PM25: c})
		sub := result.SubIndices[aqi.PollutantPM25]
		require.GreaterOrEqual(t, sub, prev, "sub-index decreased at concentration %.1f", c)
		prev = sub
	}
}

func TestCompute_DominantPollutantTieBreak(t *testing.T) {
	// PM2.5 at 12.0 and PM10 at 54 both produce a sub-index of exactly 50;
	// the dominant pollutant must be PM2.5, the earlier in the fixed order.
	result := aqi.Compute(aqi.Concentrations{PM25: 12.0, PM10: 54})

	assert.Equal(t, 50, result.SubIndices[aqi.PollutantPM25])
	assert.Equal(t, 50, result.SubIndices[aqi.PollutantPM10])
	assert.Equal(t, aqi.PollutantPM25, result.DominantPollutant)
}

func TestCompute_CompositeIsMaxOfSubIndices(t *testing.T) {
	result := aqi.Compute(aqi.Concentrations{
		PM25: 40,
		PM10: 60,
		O3:   90,
		NO2:  30,
		SO2:  10,
		CO:   800,
	})

	maxSub := 0
	for _, sub := range result.SubIndices {
		if sub > maxSub {
			maxSub = sub
		}
	}
	assert.Equal(t, maxSub, result.Value)
	assert.Equal(t, result.Value, result.SubIndices[result.DominantPollutant])
}

func TestCompute_PollutedCityScenario(t *testing.T) {
	// PM2.5 at 40 µg/m³ interpolates within the 35.5-55.4 breakpoint:
	// (150-101)/(55.4-35.5)*(40-35.5)+101 ≈ 112. PM10 at 60 lands near 53,
	// so PM2.5 dominates.
	result := aqi.Compute(aqi.Concentrations{PM25: 40, PM10: 60})

	assert.Equal(t, 112, result.SubIndices[aqi.PollutantPM25])
	assert.Equal(t, 53, result.SubIndices[aqi.PollutantPM10])
	assert.Equal(t, 112, result.Value)
	assert.Equal(t, aqi.PollutantPM25, result.DominantPollutant)
	assert.Equal(t, aqi.CategoryUnhealthySensitive, result.Category)
}

func TestCompute_CategoryThresholds(t *testing.T) {
	tests := []struct {
		pm25 float64
		want aqi.Category
	}{
		{10, aqi.CategoryGood},
		{12.1, aqi.CategoryModerate},
		{35.5, aqi.CategoryUnhealthySensitive},
		{55.5, aqi.CategoryUnhealthy},
		{150.5, aqi.CategoryVeryUnhealthy},
		{250.5, aqi.CategoryHazardous},
	}

	for _, tt := range tests {
		result := aqi.Compute(aqi.Concentrations{PM25: tt.pm25})
		assert.Equal(t, tt.want, result.Category, "pm25=%.1f value=%d", tt.pm25, result.Value)
	}
}
