// Package alert provides threshold alert rules and their evaluation
// against live weather snapshots.
package alert

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrRuleNotFound = errors.New("alert rule not found")
)

// Rule is a user-defined threshold alert.
type Rule struct {
	ID            string
	OwnerID       string
	Name          string
	Location      string
	Conditions    Conditions
	IsActive      bool
	LastTriggered *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Conditions holds the threshold bounds of a rule. Nil bounds are not
// checked; a rule fires when ANY set bound is violated.
type Conditions struct {
	TemperatureMin *float64 `json:"temperatureMin,omitempty"`
	TemperatureMax *float64 `json:"temperatureMax,omitempty"`
	HumidityMax    *float64 `json:"humidityMax,omitempty"`
	WindSpeedMax   *float64 `json:"windSpeedMax,omitempty"`
	AQIMax         *float64 `json:"aqiMax,omitempty"`

	// WeatherTypes fires when the current condition description contains
	// any of these keywords (e.g. "thunderstorm", "snow").
	WeatherTypes []string `json:"weatherTypes,omitempty"`
}

// Empty reports whether no bound is set at all.
func (c Conditions) Empty() bool {
	return c.TemperatureMin == nil &&
		c.TemperatureMax == nil &&
		c.HumidityMax == nil &&
		c.WindSpeedMax == nil &&
		c.AQIMax == nil &&
		len(c.WeatherTypes) == 0
}

// Triggered is a rule that currently matches conditions at its location.
type Triggered struct {
	RuleID      string    `json:"ruleId"`
	RuleName    string    `json:"ruleName"`
	OwnerID     string    `json:"-"`
	Location    string    `json:"location"`
	Reasons     []string  `json:"reasons"`
	TriggeredAt time.Time `json:"triggeredAt"`
}
