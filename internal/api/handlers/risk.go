package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"droughtwatch/internal/core"
	"droughtwatch/internal/types"
)

// RiskAssessor scores current drought risk for a region. Satisfied by
// weather.Service, which caches assessments.
type RiskAssessor interface {
	AssessRisk(ctx context.Context, region string) (types.RiskAssessment, error)
}

// RiskHandler serves the regional risk assessment endpoint.
type RiskHandler struct {
	assessor RiskAssessor
}

// NewRiskHandler builds the handler.
func NewRiskHandler(assessor RiskAssessor) *RiskHandler {
	return &RiskHandler{assessor: assessor}
}

// RegisterRoutes mounts the risk route.
func (h *RiskHandler) RegisterRoutes(r chi.Router) {
	r.Get("/risk", h.Assess)
}

// Assess handles GET /v1/risk?region=.
func (h *RiskHandler) Assess(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		core.Error(w, r, types.NewAppError(
			types.ErrCodeValidationMissingField,
			"region query parameter is required",
			nil,
		))
		return
	}

	assessment, err := h.assessor.AssessRisk(r.Context(), region)
	if err != nil {
		core.Error(w, r, err)
		return
	}

	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: assessment})
}
