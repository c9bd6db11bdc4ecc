package alert

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/V8Velocity/auto-climate/internal/api/models"
)

// Validation constants.
const (
	MaxNameLength     = 80
	MaxLocationLength = 80
)

// Service provides alert rule operations.
type Service struct {
	repo Repository
}

// NewService creates a new alert rule service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all alert rules for a user.
func (s *Service) List(ctx context.Context, userID string) (*models.PagedAlertRules, error) {
	rules, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.AlertRule, 0, len(rules))
	for _, r := range rules {
		items = append(items, s.toAPIRule(r))
	}

	return &models.PagedAlertRules{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	}, nil
}

// Get retrieves an alert rule by ID for a user.
func (s *Service) Get(ctx context.Context, userID, ruleID string) (*models.AlertRule, error) {
	rule, err := s.repo.GetByOwnerAndID(ctx, userID, ruleID)
	if err != nil {
		return nil, err
	}

	result := s.toAPIRule(rule)
	return &result, nil
}

// Create creates a new alert rule for a user.
func (s *Service) Create(ctx context.Context, userID string, input *models.AlertRuleCreateRequest) (*models.AlertRule, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	now := time.Now()
	rule := &Rule{
		ID:         "alr_" + uuid.New().String()[:22],
		OwnerID:    userID,
		Name:       input.Name,
		Location:   input.Location,
		Conditions: toDomainConditions(input.Conditions),
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}

	if err := s.repo.Create(ctx, rule); err != nil {
		return nil, err
	}

	result := s.toAPIRule(rule)
	return &result, nil
}

// Update updates an existing alert rule for a user.
func (s *Service) Update(ctx context.Context, userID, ruleID string, input *models.AlertRuleUpdateRequest) (*models.AlertRule, error) {
	rule, err := s.repo.GetByOwnerAndID(ctx, userID, ruleID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Name != nil {
		rule.Name = *input.Name
	}
	if input.Location != nil {
		rule.Location = *input.Location
	}
	if input.Conditions != nil {
		rule.Conditions = toDomainConditions(*input.Conditions)
	}
	if input.IsActive != nil {
		rule.IsActive = *input.IsActive
	}
	rule.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, rule); err != nil {
		return nil, err
	}

	result := s.toAPIRule(rule)
	return &result, nil
}

// Delete deletes an alert rule for a user.
func (s *Service) Delete(ctx context.Context, userID, ruleID string) error {
	// Verify ownership
	_, err := s.repo.GetByOwnerAndID(ctx, userID, ruleID)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, ruleID)
}

// validateCreateInput validates the create rule input.
func (s *Service) validateCreateInput(input *models.AlertRuleCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Name == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "is required"})
	} else if len(input.Name) > MaxNameLength {
		errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 80 characters"})
	}

	if input.Location == "" {
		errs = append(errs, models.FieldError{Field: "location", Message: "is required"})
	} else if len(input.Location) > MaxLocationLength {
		errs = append(errs, models.FieldError{Field: "location", Message: "must be at most 80 characters"})
	}

	errs = append(errs, s.validateConditions(&input.Conditions)...)

	return errs
}

// validateUpdateInput validates the update rule input.
func (s *Service) validateUpdateInput(input *models.AlertRuleUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Name != nil {
		if *input.Name == "" {
			errs = append(errs, models.FieldError{Field: "name", Message: "cannot be empty"})
		} else if len(*input.Name) > MaxNameLength {
			errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 80 characters"})
		}
	}

	if input.Location != nil {
		if *input.Location == "" {
			errs = append(errs, models.FieldError{Field: "location", Message: "cannot be empty"})
		} else if len(*input.Location) > MaxLocationLength {
			errs = append(errs, models.FieldError{Field: "location", Message: "must be at most 80 characters"})
		}
	}

	if input.Conditions != nil {
		errs = append(errs, s.validateConditions(input.Conditions)...)
	}

	return errs
}

// validateConditions checks that at least one bound is set and that set
// bounds are coherent.
func (s *Service) validateConditions(c *models.RuleConditions) []models.FieldError {
	var errs []models.FieldError

	if toDomainConditions(*c).Empty() {
		errs = append(errs, models.FieldError{
			Field:   "conditions",
			Message: "at least one threshold is required",
		})
		return errs
	}

	if c.TemperatureMin != nil && c.TemperatureMax != nil && *c.TemperatureMin > *c.TemperatureMax {
		errs = append(errs, models.FieldError{
			Field:   "conditions.temperatureMin",
			Message: "must not exceed temperatureMax",
		})
	}
	if c.HumidityMax != nil && (*c.HumidityMax < 0 || *c.HumidityMax > 100) {
		errs = append(errs, models.FieldError{
			Field:   "conditions.humidityMax",
			Message: "must be between 0 and 100",
		})
	}
	if c.AQIMax != nil && (*c.AQIMax < 0 || *c.AQIMax > 500) {
		errs = append(errs, models.FieldError{
			Field:   "conditions.aqiMax",
			Message: "must be between 0 and 500",
		})
	}
	if c.WindSpeedMax != nil && *c.WindSpeedMax < 0 {
		errs = append(errs, models.FieldError{
			Field:   "conditions.windSpeedMax",
			Message: "must not be negative",
		})
	}

	return errs
}

// toAPIRule converts a domain Rule to an API AlertRule.
func (s *Service) toAPIRule(r *Rule) models.AlertRule {
	rule := models.AlertRule{
		ID:       r.ID,
		Name:     r.Name,
		Location: r.Location,
		Conditions: models.RuleConditions{
			TemperatureMin: r.Conditions.TemperatureMin,
			TemperatureMax: r.Conditions.TemperatureMax,
			HumidityMax:    r.Conditions.HumidityMax,
			WindSpeedMax:   r.Conditions.WindSpeedMax,
			AQIMax:         r.Conditions.AQIMax,
			WeatherTypes:   r.Conditions.WeatherTypes,
		},
		IsActive:  r.IsActive,
		CreatedAt: models.Timestamp(r.CreatedAt),
		UpdatedAt: models.Timestamp(r.UpdatedAt),
	}
	if r.LastTriggered != nil {
		ts := models.Timestamp(*r.LastTriggered)
		rule.LastTriggered = &ts
	}
	return rule
}

// toDomainConditions converts API rule conditions to domain conditions.
func toDomainConditions(c models.RuleConditions) Conditions {
	return Conditions{
		TemperatureMin: c.TemperatureMin,
		TemperatureMax: c.TemperatureMax,
		HumidityMax:    c.HumidityMax,
		WindSpeedMax:   c.WindSpeedMax,
		AQIMax:         c.AQIMax,
		WeatherTypes:   c.WeatherTypes,
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
