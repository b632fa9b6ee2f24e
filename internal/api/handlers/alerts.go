package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"droughtwatch/internal/alerts"
	"droughtwatch/internal/core"
	"droughtwatch/internal/types"
)

// AlertRunner runs the evaluate-limit-send-log pipeline for one user against
// a caller-supplied weather snapshot. Satisfied by alerts.Service.
type AlertRunner interface {
	EvaluateUserWithSnapshot(ctx context.Context, userID int64, snapshot types.WeatherSnapshot) (*alerts.CycleResult, error)
}

// EvaluateRequest is the body for POST /v1/evaluate. The weather snapshot is
// supplied by the caller so triggers can be tested against hypothetical
// conditions; absent fields stay nil and read as missing readings.
type EvaluateRequest struct {
	UserID  int64                 `json:"user_id" validate:"required,gt=0"`
	Weather types.WeatherSnapshot `json:"weather"`
}

// AlertHandler serves the manual evaluation endpoint.
type AlertHandler struct {
	runner    AlertRunner
	validator *core.Validator
	logger    *slog.Logger
}

// NewAlertHandler builds the handler.
func NewAlertHandler(runner AlertRunner, v *core.Validator, logger *slog.Logger) *AlertHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlertHandler{runner: runner, validator: v, logger: logger}
}

// RegisterRoutes mounts the evaluation route.
func (h *AlertHandler) RegisterRoutes(r chi.Router) {
	r.Post("/evaluate", h.Evaluate)
}

// Evaluate handles POST /v1/evaluate. Real emails go out for fired triggers
// the rate limiter allows, and confirmed sends land in the notification log.
func (h *AlertHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		core.Error(w, r, err)
		return
	}

	result, err := h.runner.EvaluateUserWithSnapshot(r.Context(), req.UserID, req.Weather)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "manual evaluation completed",
		"user_id", req.UserID,
		"fired", len(result.Fired),
		"sent", result.Sent,
	)

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: result})
}
