package models

// RuleConditions holds the threshold bounds of an alert rule. Nil bounds
// are not checked; a rule triggers when any set bound is violated.
type RuleConditions struct {
	TemperatureMin *float64 `json:"temperatureMin,omitempty" validate:"omitempty,gte=-90,lte=60"`
	TemperatureMax *float64 `json:"temperatureMax,omitempty" validate:"omitempty,gte=-90,lte=60"`
	HumidityMax    *float64 `json:"humidityMax,omitempty" validate:"omitempty,gte=0,lte=100"`
	WindSpeedMax   *float64 `json:"windSpeedMax,omitempty" validate:"omitempty,gte=0"`
	AQIMax         *float64 `json:"aqiMax,omitempty" validate:"omitempty,gte=0,lte=500"`
	WeatherTypes   []string `json:"weatherTypes,omitempty" validate:"omitempty,dive,min=1,max=40"`
}

// AlertRule represents a user-defined threshold alert.
type AlertRule struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Location      string         `json:"location"`
	Conditions    RuleConditions `json:"conditions"`
	IsActive      bool           `json:"isActive"`
	LastTriggered *Timestamp     `json:"lastTriggered,omitempty"`
	CreatedAt     Timestamp      `json:"createdAt"`
	UpdatedAt     Timestamp      `json:"updatedAt"`
}

// AlertRuleCreateRequest is the request body for creating an alert rule.
type AlertRuleCreateRequest struct {
	Name       string         `json:"name" validate:"required,min=1,max=80"`
	Location   string         `json:"location" validate:"required,min=1,max=80"`
	Conditions RuleConditions `json:"conditions" validate:"required"`
	IsActive   *bool          `json:"isActive,omitempty"`
}

// AlertRuleUpdateRequest is the request body for updating an alert rule.
type AlertRuleUpdateRequest struct {
	Name       *string         `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	Location   *string         `json:"location,omitempty" validate:"omitempty,min=1,max=80"`
	Conditions *RuleConditions `json:"conditions,omitempty"`
	IsActive   *bool           `json:"isActive,omitempty"`
}

// TriggeredAlert represents a rule that currently matches conditions at
// its location.
type TriggeredAlert struct {
	RuleID      string    `json:"ruleId"`
	RuleName    string    `json:"ruleName"`
	Location    string    `json:"location"`
	Reasons     []string  `json:"reasons"`
	TriggeredAt Timestamp `json:"triggeredAt"`
}

// ActiveAlertsResponse lists the rules currently firing.
type ActiveAlertsResponse struct {
	Items []TriggeredAlert `json:"items"`
}

// AlertAcknowledgeResponse confirms an acknowledgement.
type AlertAcknowledgeResponse struct {
	RuleID       string `json:"ruleId"`
	Acknowledged bool   `json:"acknowledged"`
}

// PagedAlertRules represents a paginated list of alert rules.
type PagedAlertRules struct {
	Items []AlertRule       `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
