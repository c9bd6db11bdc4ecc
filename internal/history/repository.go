package history

import "context"

// Repository defines the interface for sample persistence. Persistence is
// best-effort: callers log and continue when writes fail.
type Repository interface {
	// Append stores one sample for a location.
	Append(ctx context.Context, city string, sample Sample) error

	// Recent retrieves up to limit samples for a location, oldest first.
	Recent(ctx context.Context, city string, limit int) ([]Sample, error)
}
