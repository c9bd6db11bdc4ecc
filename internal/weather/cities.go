package weather

import "strings"

// cityDatabase seeds a set of well-known cities so location search and the
// simulated-data path work without any provider credentials. Keys are the
// lowercased city names.
var cityDatabase = map[string]Location{
	"mumbai":        {City: "Mumbai", Country: "IN", Lat: 19.076, Lon: 72.8777, Timezone: "Asia/Kolkata"},
	"delhi":         {City: "Delhi", Country: "IN", Lat: 28.6139, Lon: 77.209, Timezone: "Asia/Kolkata"},
	"bangalore":     {City: "Bangalore", Country: "IN", Lat: 12.9716, Lon: 77.5946, Timezone: "Asia/Kolkata"},
	"chennai":       {City: "Chennai", Country: "IN", Lat: 13.0827, Lon: 80.2707, Timezone: "Asia/Kolkata"},
	"kolkata":       {City: "Kolkata", Country: "IN", Lat: 22.5726, Lon: 88.3639, Timezone: "Asia/Kolkata"},
	"hyderabad":     {City: "Hyderabad", Country: "IN", Lat: 17.385, Lon: 78.4867, Timezone: "Asia/Kolkata"},
	"pune":          {City: "Pune", Country: "IN", Lat: 18.5204, Lon: 73.8567, Timezone: "Asia/Kolkata"},
	"ahmedabad":     {City: "Ahmedabad", Country: "IN", Lat: 23.0225, Lon: 72.5714, Timezone: "Asia/Kolkata"},
	"jaipur":        {City: "Jaipur", Country: "IN", Lat: 26.9124, Lon: 75.7873, Timezone: "Asia/Kolkata"},
	"lucknow":       {City: "Lucknow", Country: "IN", Lat: 26.8467, Lon: 80.9462, Timezone: "Asia/Kolkata"},
	"new york":      {City: "New York", Country: "US", Lat: 40.7128, Lon: -74.006, Timezone: "America/New_York"},
	"los angeles":   {City: "Los Angeles", Country: "US", Lat: 34.0522, Lon: -118.2437, Timezone: "America/Los_Angeles"},
	"london":        {City: "London", Country: "GB", Lat: 51.5074, Lon: -0.1278, Timezone: "Europe/London"},
	"paris":         {City: "Paris", Country: "FR", Lat: 48.8566, Lon: 2.3522, Timezone: "Europe/Paris"},
	"tokyo":         {City: "Tokyo", Country: "JP", Lat: 35.6762, Lon: 139.6503, Timezone: "Asia/Tokyo"},
	"sydney":        {City: "Sydney", Country: "AU", Lat: -33.8688, Lon: 151.2093, Timezone: "Australia/Sydney"},
	"dubai":         {City: "Dubai", Country: "AE", Lat: 25.2048, Lon: 55.2708, Timezone: "Asia/Dubai"},
	"singapore":     {City: "Singapore", Country: "SG", Lat: 1.3521, Lon: 103.8198, Timezone: "Asia/Singapore"},
	"hong kong":     {City: "Hong Kong", Country: "HK", Lat: 22.3193, Lon: 114.1694, Timezone: "Asia/Hong_Kong"},
	"berlin":        {City: "Berlin", Country: "DE", Lat: 52.52, Lon: 13.405, Timezone: "Europe/Berlin"},
	"moscow":        {City: "Moscow", Country: "RU", Lat: 55.7558, Lon: 37.6173, Timezone: "Europe/Moscow"},
	"cairo":         {City: "Cairo", Country: "EG", Lat: 30.0444, Lon: 31.2357, Timezone: "Africa/Cairo"},
	"toronto":       {City: "Toronto", Country: "CA", Lat: 43.6532, Lon: -79.3832, Timezone: "America/Toronto"},
	"san francisco": {City: "San Francisco", Country: "US", Lat: 37.7749, Lon: -122.4194, Timezone: "America/Los_Angeles"},
	"bangkok":       {City: "Bangkok", Country: "TH", Lat: 13.7563, Lon: 100.5018, Timezone: "Asia/Bangkok"},
}

// DefaultLocation is the location observed before any change-location
// command arrives.
func DefaultLocation() Location {
	return cityDatabase["delhi"]
}

// lookupCity finds a seeded city by exact (case-insensitive) name.
func lookupCity(name string) (Location, bool) {
	loc, ok := cityDatabase[strings.ToLower(strings.TrimSpace(name))]
	return loc, ok
}

// searchLocalCities returns seeded cities whose name contains the query.
func searchLocalCities(query string) []CityCandidate {
	term := strings.ToLower(strings.TrimSpace(query))

	var results []CityCandidate
	for _, loc := range cityDatabase {
		if strings.Contains(strings.ToLower(loc.City), term) {
			results = append(results, CityCandidate{
				City:    loc.City,
				Country: loc.Country,
				Lat:     loc.Lat,
				Lon:     loc.Lon,
			})
		}
	}
	return results
}
