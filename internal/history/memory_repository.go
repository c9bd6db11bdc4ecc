package history

import (
	"context"
	"strings"
	"sync"
)

// memoryCapacity bounds per-city retention in the in-memory repository.
const memoryCapacity = 1000

// InMemoryRepository is an in-memory implementation of Repository.
// This is intended for testing and running without a database.
type InMemoryRepository struct {
	mu      sync.RWMutex
	samples map[string][]Sample // keyed by lowercased city
}

// NewInMemoryRepository creates a new in-memory sample repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		samples: make(map[string][]Sample),
	}
}

// Append stores one sample for a location.
func (r *InMemoryRepository) Append(_ context.Context, city string, sample Sample) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(city)
	samples := append(r.samples[key], sample)
	if len(samples) > memoryCapacity {
		samples = samples[len(samples)-memoryCapacity:]
	}
	r.samples[key] = samples
	return nil
}

// Recent retrieves up to limit samples for a location, oldest first.
func (r *InMemoryRepository) Recent(_ context.Context, city string, limit int) ([]Sample, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	samples := r.samples[strings.ToLower(city)]
	if limit > 0 && len(samples) > limit {
		samples = samples[len(samples)-limit:]
	}

	out := make([]Sample, len(samples))
	copy(out, samples)
	return out, nil
}

// Ensure InMemoryRepository implements Repository interface.
var _ Repository = (*InMemoryRepository)(nil)
