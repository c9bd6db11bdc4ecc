package alert

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/V8Velocity/auto-climate/internal/weather"
)

// Notifier receives triggered alerts for out-of-band delivery
// (push, message broker). Implementations must not block the caller
// for long; failures are the implementation's problem.
type Notifier interface {
	NotifyTriggered(ctx context.Context, triggered Triggered)
}

// EngineConfig holds configuration for the alert engine.
type EngineConfig struct {
	// Repository holds the alert rules (required).
	Repository Repository

	// Notifier receives triggered alerts (optional).
	Notifier Notifier

	// Cooldown suppresses re-notification of a rule that fired within
	// this window. Zero means level-triggered: a matching rule fires on
	// every evaluation.
	Cooldown time.Duration

	// Logger for engine operations.
	Logger zerolog.Logger
}

// Engine evaluates alert rules against weather snapshots. Evaluation is
// level-triggered: a rule whose thresholds are still violated reports as
// triggered on every pass, not only on the transition.
type Engine struct {
	repo     Repository
	notifier Notifier
	cooldown time.Duration
	logger   zerolog.Logger

	mu     sync.RWMutex
	active map[string]Triggered // keyed by rule ID
}

// NewEngine creates a new alert engine.
func NewEngine(cfg EngineConfig) *Engine {
	return &Engine{
		repo:     cfg.Repository,
		notifier: cfg.Notifier,
		cooldown: cfg.Cooldown,
		logger:   cfg.Logger,
		active:   make(map[string]Triggered),
	}
}

// Evaluate checks every active rule against the snapshot and returns the
// rules currently triggered for the snapshot's location. Rules for other
// locations are left alone; rules without a location never fire.
func (e *Engine) Evaluate(ctx context.Context, snap *weather.Snapshot) ([]Triggered, error) {
	rules, err := e.repo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active rules: %w", err)
	}

	now := time.Now()
	var triggered []Triggered

	for _, rule := range rules {
		if rule.Location == "" || !strings.EqualFold(rule.Location, snap.Location.City) {
			continue
		}

		reasons := e.evaluateRule(rule, snap)
		if len(reasons) == 0 {
			e.clearActive(rule.ID)
			continue
		}

		if e.inCooldown(rule, now) {
			continue
		}

		t := Triggered{
			RuleID:      rule.ID,
			RuleName:    rule.Name,
			OwnerID:     rule.OwnerID,
			Location:    rule.Location,
			Reasons:     reasons,
			TriggeredAt: now,
		}
		triggered = append(triggered, t)
		e.setActive(t)

		rule.LastTriggered = &now
		rule.UpdatedAt = now
		if err := e.repo.Update(ctx, rule); err != nil {
			e.logger.Warn().Err(err).Str("rule_id", rule.ID).
				Msg("failed to persist alert trigger time")
		}

		if e.notifier != nil {
			e.notifier.NotifyTriggered(ctx, t)
		}
	}

	return triggered, nil
}

// evaluateRule returns a human-readable reason per violated bound.
func (e *Engine) evaluateRule(rule *Rule, snap *weather.Snapshot) []string {
	var reasons []string
	c := rule.Conditions

	if c.TemperatureMin != nil && snap.Current.Temperature < *c.TemperatureMin {
		reasons = append(reasons, fmt.Sprintf("temperature %.1f°C below minimum %.1f°C",
			snap.Current.Temperature, *c.TemperatureMin))
	}
	if c.TemperatureMax != nil && snap.Current.Temperature > *c.TemperatureMax {
		reasons = append(reasons, fmt.Sprintf("temperature %.1f°C above maximum %.1f°C",
			snap.Current.Temperature, *c.TemperatureMax))
	}
	if c.HumidityMax != nil && snap.Current.Humidity > *c.HumidityMax {
		reasons = append(reasons, fmt.Sprintf("humidity %.0f%% above maximum %.0f%%",
			snap.Current.Humidity, *c.HumidityMax))
	}
	if c.WindSpeedMax != nil && snap.Wind.Speed > *c.WindSpeedMax {
		reasons = append(reasons, fmt.Sprintf("wind speed %.1f km/h above maximum %.1f km/h",
			snap.Wind.Speed, *c.WindSpeedMax))
	}
	if c.AQIMax != nil && float64(snap.AQI.Value) > *c.AQIMax {
		reasons = append(reasons, fmt.Sprintf("AQI %d above maximum %.0f",
			snap.AQI.Value, *c.AQIMax))
	}
	for _, wt := range c.WeatherTypes {
		if wt != "" && strings.Contains(strings.ToLower(snap.Current.Description), strings.ToLower(wt)) {
			reasons = append(reasons, fmt.Sprintf("weather condition matches %q", wt))
		}
	}

	return reasons
}

// Test evaluates a single rule against a snapshot without touching the
// active set or trigger times. An empty result means the rule would not
// fire right now.
func (e *Engine) Test(rule *Rule, snap *weather.Snapshot) []string {
	if rule.Location == "" || !strings.EqualFold(rule.Location, snap.Location.City) {
		return nil
	}
	return e.evaluateRule(rule, snap)
}

func (e *Engine) inCooldown(rule *Rule, now time.Time) bool {
	if e.cooldown <= 0 || rule.LastTriggered == nil {
		return false
	}
	return now.Sub(*rule.LastTriggered) < e.cooldown
}

// Active returns the alerts currently in the triggered state.
func (e *Engine) Active() []Triggered {
	e.mu.RLock()
	defer e.mu.RUnlock()

	alerts := make([]Triggered, 0, len(e.active))
	for _, t := range e.active {
		alerts = append(alerts, t)
	}
	return alerts
}

// Acknowledge removes a triggered alert from the active set. The rule
// itself stays active and will fire again while its thresholds remain
// violated.
func (e *Engine) Acknowledge(ruleID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.active[ruleID]; !ok {
		return false
	}
	delete(e.active, ruleID)
	return true
}

func (e *Engine) setActive(t Triggered) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active[t.RuleID] = t
}

func (e *Engine) clearActive(ruleID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.active, ruleID)
}
