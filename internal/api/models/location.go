package models

// SavedLocation represents a city a user keeps on their dashboard.
type SavedLocation struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Country   string    `json:"country,omitempty"`
	Point     Point     `json:"point"`
	IsDefault bool      `json:"isDefault"`
	Order     int       `json:"order"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

// SavedLocationCreateRequest is the request body for saving a location.
type SavedLocationCreateRequest struct {
	Name      string  `json:"name" validate:"required,min=1,max=80"`
	City      string  `json:"city" validate:"required,min=1,max=80"`
	Country   *string `json:"country,omitempty" validate:"omitempty,max=80"`
	Point     Point   `json:"point" validate:"required"`
	IsDefault *bool   `json:"isDefault,omitempty"`
}

// SavedLocationUpdateRequest is the request body for updating a saved location.
type SavedLocationUpdateRequest struct {
	Name      *string `json:"name,omitempty" validate:"omitempty,min=1,max=80"`
	City      *string `json:"city,omitempty" validate:"omitempty,min=1,max=80"`
	Country   *string `json:"country,omitempty" validate:"omitempty,max=80"`
	Point     *Point  `json:"point,omitempty"`
	IsDefault *bool   `json:"isDefault,omitempty"`
}

// SavedLocationReorderRequest is the request body for reordering saved locations.
type SavedLocationReorderRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}

// PagedSavedLocations represents a paginated list of saved locations.
type PagedSavedLocations struct {
	Items []SavedLocation   `json:"items"`
	Meta  PagedResponseMeta `json:"meta"`
}
