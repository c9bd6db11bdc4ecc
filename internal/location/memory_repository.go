package location

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing. Production should use PostgresRepository.
type InMemoryRepository struct {
	mu        sync.RWMutex
	locations map[string]*SavedLocation
}

// NewInMemoryRepository creates a new in-memory location repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		locations: make(map[string]*SavedLocation),
	}
}

// GetByOwnerAndID retrieves a location by owner ID and location ID.
func (r *InMemoryRepository) GetByOwnerAndID(_ context.Context, ownerID, locationID string) (*SavedLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loc, ok := r.locations[locationID]
	if !ok || loc.OwnerID != ownerID {
		return nil, ErrLocationNotFound
	}

	cpy := *loc
	return &cpy, nil
}

// ListByOwner retrieves all locations for an owner.
func (r *InMemoryRepository) ListByOwner(_ context.Context, ownerID string) ([]*SavedLocation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var locations []*SavedLocation
	for _, loc := range r.locations {
		if loc.OwnerID == ownerID {
			cpy := *loc
			locations = append(locations, &cpy)
		}
	}

	sort.Slice(locations, func(i, j int) bool {
		if locations[i].Order != locations[j].Order {
			return locations[i].Order < locations[j].Order
		}
		return locations[i].CreatedAt.Before(locations[j].CreatedAt)
	})

	return locations, nil
}

// Create creates a new location.
func (r *InMemoryRepository) Create(_ context.Context, loc *SavedLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.locations {
		if existing.OwnerID == loc.OwnerID &&
			strings.EqualFold(existing.City, loc.City) &&
			strings.EqualFold(existing.Country, loc.Country) {
			return ErrDuplicateCity
		}
	}

	cpy := *loc
	r.locations[loc.ID] = &cpy
	return nil
}

// Update updates an existing location.
func (r *InMemoryRepository) Update(_ context.Context, loc *SavedLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.locations[loc.ID]; !ok {
		return ErrLocationNotFound
	}

	cpy := *loc
	r.locations[loc.ID] = &cpy
	return nil
}

// Delete deletes a location by ID.
func (r *InMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.locations, id)
	return nil
}

// ClearDefault unsets the default flag on an owner's other locations.
func (r *InMemoryRepository) ClearDefault(_ context.Context, ownerID, exceptID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, loc := range r.locations {
		if loc.OwnerID == ownerID && loc.ID != exceptID {
			loc.IsDefault = false
		}
	}
	return nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
