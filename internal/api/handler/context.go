package handler

import (
	"context"

	"github.com/V8Velocity/auto-climate/internal/api/middleware"
)

// GetUserID retrieves the authenticated user ID for owner-scoped
// resources (saved locations, alert rules). Convenience wrapper around
// middleware.GetUserID.
func GetUserID(ctx context.Context) string {
	return middleware.GetUserID(ctx)
}
