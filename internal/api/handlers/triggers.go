// Package handlers contains the HTTP handlers for the drought monitor API:
// trigger CRUD and lifecycle, manual evaluation, notification history, and
// regional risk assessment.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"droughtwatch/internal/core"
	"droughtwatch/internal/types"
)

// TriggerRepo is the data access contract for trigger operations. Satisfied
// by db.TriggerRepository.
type TriggerRepo interface {
	Create(ctx context.Context, trigger *types.Trigger) error
	GetByID(ctx context.Context, id, userID int64) (*types.Trigger, error)
	ListByUser(ctx context.Context, userID int64) ([]*types.Trigger, error)
	Update(ctx context.Context, trigger *types.Trigger) error
	SetActive(ctx context.Context, id, userID int64, active bool) error
	Delete(ctx context.Context, id, userID int64) error
}

// ConditionRequest is one threshold rule in a create or update request.
// Threshold accepts JSON numbers and numeric strings alike.
type ConditionRequest struct {
	Indicator string             `json:"indicator" validate:"required,indicator"`
	Operator  string             `json:"operator" validate:"required,operator"`
	Threshold *types.FloatString `json:"threshold" validate:"required"`
}

// CreateTriggerRequest is the body for POST /v1/triggers.
type CreateTriggerRequest struct {
	UserID          int64              `json:"user_id" validate:"required,gt=0"`
	Name            string             `json:"name" validate:"required,max=200"`
	Region          string             `json:"region" validate:"required,max=100"`
	CombinationRule string             `json:"combination_rule" validate:"required,combination_rule"`
	IsActive        *bool              `json:"is_active,omitempty"`
	Conditions      []ConditionRequest `json:"conditions" validate:"required,min=1,max=10,dive"`
}

// UpdateTriggerRequest is the body for PUT /v1/triggers/{id}. PUT replaces
// the whole trigger, conditions included.
type UpdateTriggerRequest struct {
	Name            string             `json:"name" validate:"required,max=200"`
	Region          string             `json:"region" validate:"required,max=100"`
	CombinationRule string             `json:"combination_rule" validate:"required,combination_rule"`
	IsActive        *bool              `json:"is_active,omitempty"`
	Conditions      []ConditionRequest `json:"conditions" validate:"required,min=1,max=10,dive"`
}

// ToggleTriggerRequest is the body for POST /v1/triggers/{id}/toggle.
type ToggleTriggerRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// TriggerHandler serves the trigger CRUD and lifecycle endpoints.
type TriggerHandler struct {
	repo      TriggerRepo
	validator *core.Validator
	logger    *slog.Logger
}

// NewTriggerHandler builds the handler.
func NewTriggerHandler(repo TriggerRepo, v *core.Validator, logger *slog.Logger) *TriggerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TriggerHandler{repo: repo, validator: v, logger: logger}
}

// RegisterRoutes mounts the trigger routes.
func (h *TriggerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/triggers", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Get("/", h.List)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.Post("/toggle", h.Toggle)
		})
	})
}

// Create handles POST /v1/triggers. New triggers default to active unless
// the request says otherwise.
func (h *TriggerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTriggerRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	trigger := &types.Trigger{
		UserID:          req.UserID,
		Name:            req.Name,
		Region:          req.Region,
		CombinationRule: types.CombinationRule(req.CombinationRule),
		IsActive:        true,
		Conditions:      toConditions(req.Conditions),
	}
	if req.IsActive != nil {
		trigger.IsActive = *req.IsActive
	}

	if err := h.repo.Create(r.Context(), trigger); err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "trigger created",
		"trigger_id", trigger.ID,
		"user_id", trigger.UserID,
	)

	core.JSON(w, r, http.StatusCreated, core.APIResponse{Data: trigger})
}

// List handles GET /v1/triggers?user_id=.
func (h *TriggerHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	triggers, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: triggers})
}

// Get handles GET /v1/triggers/{id}?user_id=.
func (h *TriggerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, userID, err := pathIDAndUser(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	trigger, err := h.repo.GetByID(r.Context(), id, userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: trigger})
}

// Update handles PUT /v1/triggers/{id}?user_id=. The stored trigger is
// replaced wholesale; the condition list must stay non-empty.
func (h *TriggerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, userID, err := pathIDAndUser(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var req UpdateTriggerRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	// Ownership check before the write so a wrong user gets a 404, not a
	// silent no-op.
	current, err := h.repo.GetByID(r.Context(), id, userID)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	trigger := &types.Trigger{
		ID:              id,
		UserID:          userID,
		Name:            req.Name,
		Region:          req.Region,
		CombinationRule: types.CombinationRule(req.CombinationRule),
		IsActive:        current.IsActive,
		Conditions:      toConditions(req.Conditions),
	}
	if req.IsActive != nil {
		trigger.IsActive = *req.IsActive
	}

	if err := h.repo.Update(r.Context(), trigger); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: trigger})
}

// Toggle handles POST /v1/triggers/{id}/toggle?user_id=.
func (h *TriggerHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, userID, err := pathIDAndUser(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	var req ToggleTriggerRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.repo.SetActive(r.Context(), id, userID, *req.IsActive); err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: map[string]any{
		"id":        id,
		"is_active": *req.IsActive,
	}})
}

// Delete handles DELETE /v1/triggers/{id}?user_id=. Conditions and
// notification history go with it via FK cascade.
func (h *TriggerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, userID, err := pathIDAndUser(r)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	if err := h.repo.Delete(r.Context(), id, userID); err != nil {
		core.Error(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toConditions(reqs []ConditionRequest) []types.Condition {
	conditions := make([]types.Condition, len(reqs))
	for i, c := range reqs {
		conditions[i] = types.Condition{
			Indicator: types.Indicator(c.Indicator),
			Operator:  types.Operator(c.Operator),
			Threshold: c.Threshold,
		}
	}
	return conditions
}

// queryUserID parses the required user_id query parameter.
func queryUserID(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("user_id")
	if raw == "" {
		return 0, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"user_id query parameter is required",
			nil,
		)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		return 0, types.NewAppError(
			types.ErrCodeValidationNotNumeric,
			"user_id must be a positive integer",
			err,
		)
	}
	return userID, nil
}

// pathIDAndUser parses the {id} path segment and the user_id query parameter.
func pathIDAndUser(r *http.Request) (id, userID int64, err error) {
	id, err = strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, 0, types.NewAppError(
			types.ErrCodeValidationNotNumeric,
			"trigger id must be a positive integer",
			err,
		)
	}
	userID, err = queryUserID(r)
	if err != nil {
		return 0, 0, err
	}
	return id, userID, nil
}
