// Package location provides saved-location management per user.
package location

import (
	"errors"
	"time"
)

// Repository errors.
var (
	ErrLocationNotFound = errors.New("saved location not found")
	ErrDuplicateCity    = errors.New("location already saved")
)

// SavedLocation is a city a user keeps on their dashboard.
type SavedLocation struct {
	ID        string
	OwnerID   string
	Name      string
	City      string
	Country   string
	Lat       float64
	Lon       float64
	IsDefault bool
	Order     int
	CreatedAt time.Time
	UpdatedAt time.Time
}
