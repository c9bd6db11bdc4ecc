// Package aqi computes the US EPA Air Quality Index from raw pollutant
// concentrations. The computation is pure: no I/O, no shared state, and no
// failure path (missing or malformed inputs degrade to a concentration of 0).
package aqi

import "math"

// Pollutant identifies one of the six pollutants the index is derived from.
type Pollutant string

// Pollutants in the fixed evaluation order. The order matters: when two
// pollutants produce the same sub-index, the dominant pollutant is the one
// appearing earlier in this list.
const (
	PollutantPM25 Pollutant = "PM2.5"
	PollutantPM10 Pollutant = "PM10"
	PollutantO3   Pollutant = "O3"
	PollutantNO2  Pollutant = "NO2"
	PollutantSO2  Pollutant = "SO2"
	PollutantCO   Pollutant = "CO"
)

// pollutantOrder is the tie-break order for the dominant pollutant.
var pollutantOrder = []Pollutant{
	PollutantPM25, PollutantPM10, PollutantO3, PollutantNO2, PollutantSO2, PollutantCO,
}

// Category is the health-risk banding of a composite AQI value.
type Category string

const (
	CategoryGood               Category = "Good"
	CategoryModerate           Category = "Moderate"
	CategoryUnhealthySensitive Category = "Unhealthy for Sensitive Groups"
	CategoryUnhealthy          Category = "Unhealthy"
	CategoryVeryUnhealthy      Category = "Very Unhealthy"
	CategoryHazardous          Category = "Hazardous"
)

// maxSubIndex is the ceiling for any sub-index whose concentration exceeds
// the top bound of its breakpoint table.
const maxSubIndex = 500

// Concentrations holds raw pollutant concentrations in µg/m³ as delivered by
// the upstream provider. A zero value for any field is treated as "not
// measured" and yields a sub-index of 0.
type Concentrations struct {
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	O3   float64 `json:"o3"`
	NO2  float64 `json:"no2"`
	SO2  float64 `json:"so2"`
	CO   float64 `json:"co"`
}

// Result is the derived index. It is never mutated after creation.
type Result struct {
	// Value is the composite index, the maximum of all sub-indices.
	Value int `json:"value"`

	// Category is the health banding for Value.
	Category Category `json:"category"`

	// Color is the fixed display color for Category.
	Color string `json:"color"`

	// DominantPollutant is the pollutant that produced Value.
	DominantPollutant Pollutant `json:"dominantPollutant"`

	// SubIndices maps each pollutant to its individual sub-index.
	SubIndices map[Pollutant]int `json:"subIndices"`
}

// Compute derives the composite AQI from pollutant concentrations.
// The composite value is the maximum of the six per-pollutant sub-indices;
// ties resolve to the pollutant earliest in the fixed order PM2.5, PM10, O3,
// NO2, SO2, CO.
func Compute(c Concentrations) Result {
	subIndices := map[Pollutant]int{
		PollutantPM25: subIndex(c.PM25, pm25Breakpoints),
		PollutantPM10: subIndex(c.PM10, pm10Breakpoints),
		PollutantO3:   subIndex(c.O3/o3MicrogramsPerPPB, o3Breakpoints),
		PollutantNO2:  subIndex(c.NO2/no2MicrogramsPerPPB, no2Breakpoints),
		PollutantSO2:  subIndex(c.SO2/so2MicrogramsPerPPB, so2Breakpoints),
		PollutantCO:   subIndex(c.CO/coMicrogramsPerPPM, coBreakpoints),
	}

	value := 0
	dominant := PollutantPM25
	for _, p := range pollutantOrder {
		if subIndices[p] > value {
			value = subIndices[p]
			dominant = p
		}
	}

	category, color := categorize(value)

	return Result{
		Value:             value,
		Category:          category,
		Color:             color,
		DominantPollutant: dominant,
		SubIndices:        subIndices,
	}
}

// subIndex interpolates a sub-index from an ascending breakpoint table.
// Negative or NaN concentrations are clamped to 0 before lookup; upstream
// provider payloads are occasionally malformed.
func subIndex(concentration float64, table []breakpoint) int {
	if math.IsNaN(concentration) || concentration < 0 {
		concentration = 0
	}

	for _, bp := range table {
		if concentration <= bp.concHigh {
			ratio := (bp.aqiHigh - bp.aqiLow) / (bp.concHigh - bp.concLow)
			return int(math.Round(ratio*(concentration-bp.concLow) + bp.aqiLow))
		}
	}

	return maxSubIndex
}

// categorize maps a composite value to its category and display color.
// Upper bounds are inclusive.
func categorize(value int) (Category, string) {
	switch {
	case value <= 50:
		return CategoryGood, "#22c55e"
	case value <= 100:
		return CategoryModerate, "#eab308"
	case value <= 150:
		return CategoryUnhealthySensitive, "#f97316"
	case value <= 200:
		return CategoryUnhealthy, "#ef4444"
	case value <= 300:
		return CategoryVeryUnhealthy, "#7c3aed"
	default:
		return CategoryHazardous, "#991b1b"
	}
}
