package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/V8Velocity/auto-climate/internal/alert"
	"github.com/V8Velocity/auto-climate/internal/api/models"
	"github.com/V8Velocity/auto-climate/internal/api/response"
	"github.com/V8Velocity/auto-climate/internal/weather"
)

// AlertHandler handles alert rule and active-alert endpoints.
type AlertHandler struct {
	service *alert.Service
	engine  *alert.Engine
	repo    alert.Repository
	weather *weather.Service
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(service *alert.Service, engine *alert.Engine, repo alert.Repository, weatherSvc *weather.Service) *AlertHandler {
	return &AlertHandler{
		service: service,
		engine:  engine,
		repo:    repo,
		weather: weatherSvc,
	}
}

// ListRules handles GET /v1/me/alerts - list alert rules.
func (h *AlertHandler) ListRules(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	result, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.InternalError(w, r, "failed to list alert rules")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// CreateRule handles POST /v1/me/alerts - create an alert rule.
func (h *AlertHandler) CreateRule(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	var input models.AlertRuleCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Create(r.Context(), userID, &input)
	if err != nil {
		var validationErr *alert.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(w, r, "validation failed", validationErr.Errors)
			return
		}
		response.InternalError(w, r, "failed to create alert rule")
		return
	}

	response.Created(w, r, fmt.Sprintf("/v1/me/alerts/%s", result.ID), result)
}

// GetRule handles GET /v1/me/alerts/{ruleId} - get an alert rule.
func (h *AlertHandler) GetRule(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	ruleID := chi.URLParam(r, "ruleId")

	result, err := h.service.Get(r.Context(), userID, ruleID)
	if err != nil {
		if errors.Is(err, alert.ErrRuleNotFound) {
			response.NotFound(w, r, "alert rule not found")
			return
		}
		response.InternalError(w, r, "failed to get alert rule")
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// UpdateRule handles PUT /v1/me/alerts/{ruleId} - update an alert rule.
func (h *AlertHandler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	ruleID := chi.URLParam(r, "ruleId")

	var input models.AlertRuleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	result, err := h.service.Update(r.Context(), userID, ruleID, &input)
	if err != nil {
		var validationErr *alert.ValidationError
		switch {
		case errors.As(err, &validationErr):
			response.BadRequest(w, r, "validation failed", validationErr.Errors)
		case errors.Is(err, alert.ErrRuleNotFound):
			response.NotFound(w, r, "alert rule not found")
		default:
			response.InternalError(w, r, "failed to update alert rule")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// DeleteRule handles DELETE /v1/me/alerts/{ruleId} - delete an alert rule.
func (h *AlertHandler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	ruleID := chi.URLParam(r, "ruleId")

	if err := h.service.Delete(r.Context(), userID, ruleID); err != nil {
		if errors.Is(err, alert.ErrRuleNotFound) {
			response.NotFound(w, r, "alert rule not found")
			return
		}
		response.InternalError(w, r, "failed to delete alert rule")
		return
	}

	response.NoContent(w, r)
}

// TestRule handles POST /v1/me/alerts/{ruleId}/test - evaluate a rule
// against current conditions without recording a trigger.
func (h *AlertHandler) TestRule(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	ruleID := chi.URLParam(r, "ruleId")

	rule, err := h.repo.GetByOwnerAndID(r.Context(), userID, ruleID)
	if err != nil {
		if errors.Is(err, alert.ErrRuleNotFound) {
			response.NotFound(w, r, "alert rule not found")
			return
		}
		response.InternalError(w, r, "failed to get alert rule")
		return
	}

	snap := h.weather.Snapshot(r.Context())
	reasons := h.engine.Test(rule, snap)

	result := models.TriggeredAlert{
		RuleID:      rule.ID,
		RuleName:    rule.Name,
		Location:    rule.Location,
		Reasons:     reasons,
		TriggeredAt: models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, result)
}

// ListActive handles GET /v1/me/alerts/active - alerts currently firing
// for the authenticated user.
func (h *AlertHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())

	items := make([]models.TriggeredAlert, 0)
	for _, t := range h.engine.Active() {
		if t.OwnerID != userID {
			continue
		}
		items = append(items, models.TriggeredAlert{
			RuleID:      t.RuleID,
			RuleName:    t.RuleName,
			Location:    t.Location,
			Reasons:     t.Reasons,
			TriggeredAt: models.Timestamp(t.TriggeredAt),
		})
	}

	response.JSON(w, r, http.StatusOK, models.ActiveAlertsResponse{Items: items})
}

// AcknowledgeAlert handles POST /v1/me/alerts/{ruleId}/ack - dismiss a
// firing alert. The rule stays active and fires again while its
// thresholds remain violated.
func (h *AlertHandler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	userID := GetUserID(r.Context())
	ruleID := chi.URLParam(r, "ruleId")

	// Ownership check before touching the active set.
	if _, err := h.repo.GetByOwnerAndID(r.Context(), userID, ruleID); err != nil {
		if errors.Is(err, alert.ErrRuleNotFound) {
			response.NotFound(w, r, "alert rule not found")
			return
		}
		response.InternalError(w, r, "failed to get alert rule")
		return
	}

	acknowledged := h.engine.Acknowledge(ruleID)
	response.JSON(w, r, http.StatusOK, models.AlertAcknowledgeResponse{
		RuleID:       ruleID,
		Acknowledged: acknowledged,
	})
}
