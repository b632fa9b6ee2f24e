package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"droughtwatch/internal/types"
)

type mockRiskAssessor struct {
	assessment types.RiskAssessment
	err        error
	gotRegion  string
}

func (m *mockRiskAssessor) AssessRisk(ctx context.Context, region string) (types.RiskAssessment, error) {
	m.gotRegion = region
	return m.assessment, m.err
}

func setupRiskRouter(assessor *mockRiskAssessor) http.Handler {
	h := NewRiskHandler(assessor)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestRiskAssess_Success(t *testing.T) {
	assessor := &mockRiskAssessor{
		assessment: types.RiskAssessment{
			RiskLevel:   types.RiskHigh,
			RiskScore:   5,
			Region:      "karoo",
			LastUpdated: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
		},
	}
	router := setupRiskRouter(assessor)

	w := doJSON(t, router, http.MethodGet, "/risk?region=karoo", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "karoo", assessor.gotRegion)
	assert.Contains(t, w.Body.String(), string(types.RiskHigh))
}

func TestRiskAssess_RequiresRegion(t *testing.T) {
	router := setupRiskRouter(&mockRiskAssessor{})

	w := doJSON(t, router, http.MethodGet, "/risk", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), string(types.ErrCodeValidationMissingField))
}

func TestRiskAssess_UpstreamErrorPassesThrough(t *testing.T) {
	assessor := &mockRiskAssessor{
		err: types.NewAppError(types.ErrCodeUpstreamWeather, "weather provider unavailable", nil),
	}
	router := setupRiskRouter(assessor)

	w := doJSON(t, router, http.MethodGet, "/risk?region=karoo", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
