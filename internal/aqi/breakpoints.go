package aqi

// US EPA breakpoint tables for the six pollutants the index is computed from.
// Each table is ascending; concentrations are in the unit noted per pollutant.
// Source: EPA Technical Assistance Document for the Reporting of Daily Air
// Quality (AQI), 2018 revision.

// Unit conversion divisors from the µg/m³ values delivered by the provider to
// the units the breakpoint tables are defined in. These are fixed
// molar-mass-derived approximations at 25°C / 1 atm, not tunables.
const (
	// O3: 1 ppb ≈ 2 µg/m³
	o3MicrogramsPerPPB = 2.0
	// NO2: 1 ppb ≈ 1.88 µg/m³
	no2MicrogramsPerPPB = 1.88
	// SO2: 1 ppb ≈ 2.62 µg/m³
	so2MicrogramsPerPPB = 2.62
	// CO: 1 ppm ≈ 1145 µg/m³
	coMicrogramsPerPPM = 1145.0
)

// breakpoint is one row of an EPA table: a concentration range mapped to an
// AQI range for piecewise-linear interpolation.
type breakpoint struct {
	concLow  float64
	concHigh float64
	aqiLow   float64
	aqiHigh  float64
}

// pm25Breakpoints use µg/m³ directly.
var pm25Breakpoints = []breakpoint{
	{0, 12.0, 0, 50},
	{12.1, 35.4, 51, 100},
	{35.5, 55.4, 101, 150},
	{55.5, 150.4, 151, 200},
	{150.5, 250.4, 201, 300},
	{250.5, 500.4, 301, 500},
}

// pm10Breakpoints use µg/m³ directly.
var pm10Breakpoints = []breakpoint{
	{0, 54, 0, 50},
	{55, 154, 51, 100},
	{155, 254, 101, 150},
	{255, 354, 151, 200},
	{355, 424, 201, 300},
	{425, 604, 301, 500},
}

// o3Breakpoints are in ppb.
var o3Breakpoints = []breakpoint{
	{0, 54, 0, 50},
	{55, 70, 51, 100},
	{71, 85, 101, 150},
	{86, 105, 151, 200},
	{106, 200, 201, 300},
}

// no2Breakpoints are in ppb.
var no2Breakpoints = []breakpoint{
	{0, 53, 0, 50},
	{54, 100, 51, 100},
	{101, 360, 101, 150},
	{361, 649, 151, 200},
	{650, 1249, 201, 300},
	{1250, 2049, 301, 500},
}

// so2Breakpoints are in ppb.
var so2Breakpoints = []breakpoint{
	{0, 35, 0, 50},
	{36, 75, 51, 100},
	{76, 185, 101, 150},
	{186, 304, 151, 200},
	{305, 604, 201, 300},
	{605, 1004, 301, 500},
}

// coBreakpoints are in ppm.
var coBreakpoints = []breakpoint{
	{0, 4.4, 0, 50},
	{4.5, 9.4, 51, 100},
	{9.5, 12.4, 101, 150},
	{12.5, 15.4, 151, 200},
	{15.5, 30.4, 201, 300},
	{30.5, 50.4, 301, 500},
}
