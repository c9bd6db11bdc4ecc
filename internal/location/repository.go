package location

import "context"

// Repository defines the interface for saved-location persistence.
type Repository interface {
	// GetByOwnerAndID retrieves a location by owner ID and location ID.
	// Returns ErrLocationNotFound if it doesn't exist or doesn't belong
	// to the owner.
	GetByOwnerAndID(ctx context.Context, ownerID, locationID string) (*SavedLocation, error)

	// ListByOwner retrieves all locations for an owner ordered by Order,
	// then creation time.
	ListByOwner(ctx context.Context, ownerID string) ([]*SavedLocation, error)

	// Create creates a new location. Returns ErrDuplicateCity when the
	// owner already saved the same (city, country).
	Create(ctx context.Context, loc *SavedLocation) error

	// Update updates an existing location.
	Update(ctx context.Context, loc *SavedLocation) error

	// Delete deletes a location by ID.
	Delete(ctx context.Context, id string) error

	// ClearDefault unsets the default flag on all of an owner's locations
	// except the given ID (pass empty to clear all).
	ClearDefault(ctx context.Context, ownerID, exceptID string) error
}
