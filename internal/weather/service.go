// Package weather exposes regional weather reads to the rest of the system:
// raw snapshots for trigger evaluation and cached drought risk assessments
// for dashboards and alert emails.
package weather

import (
	"context"
	"log/slog"
	"time"

	"droughtwatch/internal/cache"
	"droughtwatch/internal/external"
	"droughtwatch/internal/risk"
	"droughtwatch/internal/types"
)

// Service fronts the weather provider. Snapshots are always fetched live so
// trigger evaluation sees current readings; risk assessments are cached per
// region because they feed dashboards that poll far more often than the
// weather changes.
type Service struct {
	provider  external.WeatherProvider
	riskCache *cache.TTLCache[types.RiskAssessment]
	clock     types.Clock
	logger    *slog.Logger
}

// NewService creates a weather Service. cacheTTL bounds how stale a served
// risk assessment may be; zero disables the cache.
func NewService(provider external.WeatherProvider, cacheTTL time.Duration, clock types.Clock, logger *slog.Logger) *Service {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider:  provider,
		riskCache: cache.New[types.RiskAssessment](cacheTTL, clock),
		clock:     clock,
		logger:    logger,
	}
}

// Snapshot fetches current conditions for the region, uncached.
func (s *Service) Snapshot(ctx context.Context, region string) (types.WeatherSnapshot, error) {
	return s.provider.Current(ctx, region)
}

// AssessRisk returns the region's drought risk assessment, serving a cached
// value when fresh and scoring a new snapshot otherwise.
func (s *Service) AssessRisk(ctx context.Context, region string) (types.RiskAssessment, error) {
	if assessment, ok := s.riskCache.Get(region); ok {
		return assessment, nil
	}

	snapshot, err := s.provider.Current(ctx, region)
	if err != nil {
		return types.RiskAssessment{}, err
	}

	assessment := risk.Assess(region, snapshot, s.clock.Now())
	s.riskCache.Set(region, assessment)

	s.logger.InfoContext(ctx, "drought risk assessed",
		"region", region,
		"risk_level", string(assessment.RiskLevel),
		"risk_score", assessment.RiskScore,
	)
	return assessment, nil
}
