package location

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/V8Velocity/auto-climate/internal/api/models"
)

// Validation constants.
const (
	MaxNameLength    = 80
	MaxCityLength    = 80
	MaxCountryLength = 80
)

// Service provides saved-location operations.
type Service struct {
	repo Repository
}

// NewService creates a new location service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List retrieves all saved locations for a user, ordered by their
// dashboard position.
func (s *Service) List(ctx context.Context, userID string) (*models.PagedSavedLocations, error) {
	locs, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	items := make([]models.SavedLocation, 0, len(locs))
	for _, l := range locs {
		items = append(items, s.toAPILocation(l))
	}

	return &models.PagedSavedLocations{
		Items: items,
		Meta:  models.PagedResponseMeta{Limit: len(items)},
	}, nil
}

// Get retrieves a saved location by ID for a user.
func (s *Service) Get(ctx context.Context, userID, locationID string) (*models.SavedLocation, error) {
	loc, err := s.repo.GetByOwnerAndID(ctx, userID, locationID)
	if err != nil {
		return nil, err
	}

	result := s.toAPILocation(loc)
	return &result, nil
}

// Create saves a new location for a user. When the location is marked
// default, any previous default is unset.
func (s *Service) Create(ctx context.Context, userID string, input *models.SavedLocationCreateRequest) (*models.SavedLocation, error) {
	if fieldErrors := s.validateCreateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	existing, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	// New locations go to the end of the dashboard.
	maxOrder := -1
	for _, l := range existing {
		if l.Order > maxOrder {
			maxOrder = l.Order
		}
	}

	now := time.Now()
	loc := &SavedLocation{
		ID:      "loc_" + uuid.New().String()[:22],
		OwnerID: userID,
		Name:    input.Name,
		City:    input.City,
		Lat:     input.Point.Lat,
		Lon:     input.Point.Lon,
		Order:   maxOrder + 1,

		CreatedAt: now,
		UpdatedAt: now,
	}
	if input.Country != nil {
		loc.Country = *input.Country
	}
	if input.IsDefault != nil {
		loc.IsDefault = *input.IsDefault
	}

	if loc.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID, ""); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, loc); err != nil {
		return nil, err
	}

	result := s.toAPILocation(loc)
	return &result, nil
}

// Update updates an existing saved location for a user.
func (s *Service) Update(ctx context.Context, userID, locationID string, input *models.SavedLocationUpdateRequest) (*models.SavedLocation, error) {
	loc, err := s.repo.GetByOwnerAndID(ctx, userID, locationID)
	if err != nil {
		return nil, err
	}

	if fieldErrors := s.validateUpdateInput(input); len(fieldErrors) > 0 {
		return nil, &ValidationError{Errors: fieldErrors}
	}

	if input.Name != nil {
		loc.Name = *input.Name
	}
	if input.City != nil {
		loc.City = *input.City
	}
	if input.Country != nil {
		loc.Country = *input.Country
	}
	if input.Point != nil {
		loc.Lat = input.Point.Lat
		loc.Lon = input.Point.Lon
	}
	if input.IsDefault != nil {
		loc.IsDefault = *input.IsDefault
	}
	loc.UpdatedAt = time.Now()

	if loc.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID, loc.ID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, loc); err != nil {
		return nil, err
	}

	result := s.toAPILocation(loc)
	return &result, nil
}

// Delete deletes a saved location for a user.
func (s *Service) Delete(ctx context.Context, userID, locationID string) error {
	// Verify ownership
	_, err := s.repo.GetByOwnerAndID(ctx, userID, locationID)
	if err != nil {
		return err
	}

	return s.repo.Delete(ctx, locationID)
}

// Reorder rewrites the dashboard positions of a user's locations to
// match the given ID order. Every saved location must appear exactly
// once.
func (s *Service) Reorder(ctx context.Context, userID string, input *models.SavedLocationReorderRequest) (*models.PagedSavedLocations, error) {
	if len(input.IDs) == 0 {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "ids", Message: "is required"},
		}}
	}

	locs, err := s.repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*SavedLocation, len(locs))
	for _, l := range locs {
		byID[l.ID] = l
	}

	if len(input.IDs) != len(locs) {
		return nil, &ValidationError{Errors: []models.FieldError{
			{Field: "ids", Message: "must contain every saved location exactly once"},
		}}
	}

	seen := make(map[string]bool, len(input.IDs))
	now := time.Now()
	for i, id := range input.IDs {
		loc, ok := byID[id]
		if !ok || seen[id] {
			return nil, &ValidationError{Errors: []models.FieldError{
				{Field: "ids", Message: "must contain every saved location exactly once"},
			}}
		}
		seen[id] = true
		loc.Order = i
		loc.UpdatedAt = now
	}

	for _, l := range locs {
		if err := s.repo.Update(ctx, l); err != nil {
			return nil, err
		}
	}

	return s.List(ctx, userID)
}

// validateCreateInput validates the create location input.
func (s *Service) validateCreateInput(input *models.SavedLocationCreateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Name == "" {
		errs = append(errs, models.FieldError{Field: "name", Message: "is required"})
	} else if len(input.Name) > MaxNameLength {
		errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 80 characters"})
	}

	if input.City == "" {
		errs = append(errs, models.FieldError{Field: "city", Message: "is required"})
	} else if len(input.City) > MaxCityLength {
		errs = append(errs, models.FieldError{Field: "city", Message: "must be at most 80 characters"})
	}

	if input.Country != nil && len(*input.Country) > MaxCountryLength {
		errs = append(errs, models.FieldError{Field: "country", Message: "must be at most 80 characters"})
	}

	errs = append(errs, s.validatePoint(&input.Point)...)

	return errs
}

// validateUpdateInput validates the update location input.
func (s *Service) validateUpdateInput(input *models.SavedLocationUpdateRequest) []models.FieldError {
	var errs []models.FieldError

	if input.Name != nil {
		if *input.Name == "" {
			errs = append(errs, models.FieldError{Field: "name", Message: "cannot be empty"})
		} else if len(*input.Name) > MaxNameLength {
			errs = append(errs, models.FieldError{Field: "name", Message: "must be at most 80 characters"})
		}
	}

	if input.City != nil {
		if *input.City == "" {
			errs = append(errs, models.FieldError{Field: "city", Message: "cannot be empty"})
		} else if len(*input.City) > MaxCityLength {
			errs = append(errs, models.FieldError{Field: "city", Message: "must be at most 80 characters"})
		}
	}

	if input.Country != nil && len(*input.Country) > MaxCountryLength {
		errs = append(errs, models.FieldError{Field: "country", Message: "must be at most 80 characters"})
	}

	if input.Point != nil {
		errs = append(errs, s.validatePoint(input.Point)...)
	}

	return errs
}

// validatePoint validates a geographic coordinate.
func (s *Service) validatePoint(p *models.Point) []models.FieldError {
	var errs []models.FieldError

	if p.Lat < -90 || p.Lat > 90 {
		errs = append(errs, models.FieldError{
			Field:   "point.lat",
			Message: "must be between -90 and 90",
		})
	}

	if p.Lon < -180 || p.Lon > 180 {
		errs = append(errs, models.FieldError{
			Field:   "point.lon",
			Message: "must be between -180 and 180",
		})
	}

	return errs
}

// toAPILocation converts a domain SavedLocation to an API SavedLocation.
func (s *Service) toAPILocation(l *SavedLocation) models.SavedLocation {
	return models.SavedLocation{
		ID:        l.ID,
		Name:      l.Name,
		City:      l.City,
		Country:   l.Country,
		Point:     models.Point{Lat: l.Lat, Lon: l.Lon},
		IsDefault: l.IsDefault,
		Order:     l.Order,
		CreatedAt: models.Timestamp(l.CreatedAt),
		UpdatedAt: models.Timestamp(l.UpdatedAt),
	}
}

// ValidationError represents validation errors.
type ValidationError struct {
	Errors []models.FieldError
}

func (e *ValidationError) Error() string {
	return "validation failed"
}
