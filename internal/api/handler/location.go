package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/V8Velocity/auto-climate/internal/api/models"
	"github.com/V8Velocity/auto-climate/internal/api/response"
	"github.com/V8Velocity/auto-climate/internal/location"
)

// LocationHandler handles saved-location endpoints.
type LocationHandler struct {
	service *location.Service
}

// NewLocationHandler creates a new LocationHandler.
func NewLocationHandler(service *location.Service) *LocationHandler {
	return &LocationHandler{service: service}
}

// ListLocations handles GET /v1/me/locations - list saved locations.
func (h *LocationHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	result, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "failed to list locations")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// CreateLocation handles POST /v1/me/locations - save a location.
func (h *LocationHandler) CreateLocation(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var input models.SavedLocationCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Create(r.Context(), userID, &input)
	if err != nil {
		var validationErr *location.ValidationError
		switch {
		case errors.As(err, &validationErr):
			response.BadRequest(w, r, "validation failed", validationErr.Errors)
		case errors.Is(err, location.ErrDuplicateCity):
			response.Conflict(w, r, "location already saved")
		default:
			response.InternalError(w, r, "failed to save location")
		}
		return
	}

	response.Created(w, r, fmt.Sprintf("/v1/me/locations/%s", result.ID), result)
}

// GetLocation handles GET /v1/me/locations/{locationId} - get a saved location.
func (h *LocationHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	locationID := chi.URLParam(r, "locationId")

	result, err := h.service.Get(r.Context(), userID, locationID)
	if err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			response.NotFound(w, r, "location not found")
			return
		}
		response.InternalError(w, r, "failed to get location")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// UpdateLocation handles PUT /v1/me/locations/{locationId} - update a saved location.
func (h *LocationHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	locationID := chi.URLParam(r, "locationId")

	var input models.SavedLocationUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Update(r.Context(), userID, locationID, &input)
	if err != nil {
		var validationErr *location.ValidationError
		switch {
		case errors.As(err, &validationErr):
			response.BadRequest(w, r, "validation failed", validationErr.Errors)
		case errors.Is(err, location.ErrLocationNotFound):
			response.NotFound(w, r, "location not found")
		default:
			response.InternalError(w, r, "failed to update location")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// DeleteLocation handles DELETE /v1/me/locations/{locationId} - delete a saved location.
func (h *LocationHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	locationID := chi.URLParam(r, "locationId")

	if err := h.service.Delete(r.Context(), userID, locationID); err != nil {
		if errors.Is(err, location.ErrLocationNotFound) {
			response.NotFound(w, r, "location not found")
			return
		}
		response.InternalError(w, r, "failed to delete location")
		return
	}

	response.NoContent(w, r)
}

// ReorderLocations handles POST /v1/me/locations/reorder - reorder saved locations.
func (h *LocationHandler) ReorderLocations(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var input models.SavedLocationReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Reorder(r.Context(), userID, &input)
	if err != nil {
		var validationErr *location.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation failed", validationErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to reorder locations")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}
