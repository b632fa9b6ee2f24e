// Package alerts runs the notification pipeline: evaluate a user's triggers
// against current weather, apply rate limiting, dispatch alert emails, and
// record every confirmed send in the notification log.
package alerts

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"droughtwatch/internal/engine"
	"droughtwatch/internal/external"
	"droughtwatch/internal/types"
)

// UserStore is the subscriber lookup the dispatcher needs.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (*types.User, error)
}

// UserLister enumerates owners of active triggers for full evaluation
// cycles.
type UserLister interface {
	ListUserIDsWithActiveTriggers(ctx context.Context) ([]int64, error)
}

// NotificationLog records dispatched notifications. Satisfied by
// db.NotificationRepository.
type NotificationLog interface {
	Append(ctx context.Context, entry *types.NotificationLogEntry) error
}

// WeatherSource supplies the snapshot one user's triggers are evaluated
// against.
type WeatherSource interface {
	Snapshot(ctx context.Context, region string) (types.WeatherSnapshot, error)
}

// Service orchestrates the evaluate-limit-send-log pipeline.
//
// Ordering is load-bearing: the rate limiter is consulted before the send,
// and the log entry is appended only after the provider confirms the send.
// A failed send therefore leaves no log entry and the next cycle retries it;
// a failed log append after a confirmed send is logged loudly but does not
// unsend the email.
type Service struct {
	evaluator *engine.Evaluator
	limiter   *engine.RateLimiter
	users     UserStore
	log       NotificationLog
	email     external.EmailProvider
	weather   WeatherSource
	clock     types.Clock
	logger    *slog.Logger
}

// NewService wires the dispatch pipeline.
func NewService(
	evaluator *engine.Evaluator,
	limiter *engine.RateLimiter,
	users UserStore,
	log NotificationLog,
	email external.EmailProvider,
	weather WeatherSource,
	clock types.Clock,
	logger *slog.Logger,
) *Service {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		evaluator: evaluator,
		limiter:   limiter,
		users:     users,
		log:       log,
		email:     email,
		weather:   weather,
		clock:     clock,
		logger:    logger,
	}
}

// CycleResult summarizes one user's evaluation pass.
type CycleResult struct {
	UserID      int64                `json:"user_id"`
	Fired       []types.AlertResult  `json:"fired"`
	Sent        int                  `json:"sent"`
	RateLimited int                  `json:"rate_limited"`
	SendErrors  int                  `json:"send_errors"`
}

// EvaluateUser runs the full pipeline for one subscriber: fetch weather for
// their region, evaluate their active triggers, and dispatch an email per
// fired trigger that the rate limiter allows.
//
// Send failures are isolated per trigger: one failed email neither stops the
// remaining dispatches nor fails the cycle.
func (s *Service) EvaluateUser(ctx context.Context, userID int64) (*CycleResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.weather.Snapshot(ctx, user.Region)
	if err != nil {
		return nil, err
	}

	return s.dispatch(ctx, user, snapshot)
}

// EvaluateUserWithSnapshot runs the pipeline against a caller-supplied
// snapshot. The manual evaluation endpoint uses this so operators can test
// triggers against hypothetical weather.
func (s *Service) EvaluateUserWithSnapshot(ctx context.Context, userID int64, snapshot types.WeatherSnapshot) (*CycleResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.dispatch(ctx, user, snapshot)
}

func (s *Service) dispatch(ctx context.Context, user *types.User, snapshot types.WeatherSnapshot) (*CycleResult, error) {
	fired, err := s.evaluator.EvaluateAllTriggers(ctx, user.ID, snapshot)
	if err != nil {
		return nil, err
	}

	result := &CycleResult{UserID: user.ID, Fired: fired}
	for _, alert := range fired {
		if !s.limiter.ShouldNotify(ctx, alert.Trigger.ID, user.ID) {
			result.RateLimited++
			continue
		}

		input := renderAlertEmail(user, alert, s.clock.Now())
		msgID, sendErr := s.email.Send(ctx, input)
		if sendErr != nil {
			result.SendErrors++
			s.logger.ErrorContext(ctx, "alert email send failed",
				"trigger_id", alert.Trigger.ID,
				"user_id", user.ID,
				"error", sendErr.Error(),
			)
			continue
		}
		result.Sent++

		entry := &types.NotificationLogEntry{
			TriggerID:        alert.Trigger.ID,
			UserID:           user.ID,
			SentAt:           s.clock.Now(),
			NotificationType: types.NotificationEmail,
			ConditionsMet:    alert.ConditionsMet,
		}
		if logErr := s.log.Append(ctx, entry); logErr != nil {
			// The email is already out; losing the entry only weakens rate
			// limiting for this pair until the next successful append.
			s.logger.ErrorContext(ctx, "failed to record sent notification",
				"trigger_id", alert.Trigger.ID,
				"user_id", user.ID,
				"provider_msg_id", msgID,
				"error", logErr.Error(),
			)
			continue
		}

		s.logger.InfoContext(ctx, "alert notification sent",
			"trigger_id", alert.Trigger.ID,
			"user_id", user.ID,
			"provider_msg_id", msgID,
		)
	}

	return result, nil
}

// RunCycle evaluates every subscriber that owns at least one active trigger.
// Users are processed concurrently with a bounded worker count; one user's
// failure is logged and skipped rather than aborting the cycle.
func (s *Service) RunCycle(ctx context.Context, lister UserLister, concurrency int) error {
	userIDs, err := lister.ListUserIDsWithActiveTriggers(ctx)
	if err != nil {
		return err
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if _, err := s.EvaluateUser(gctx, userID); err != nil {
				s.logger.ErrorContext(gctx, "user evaluation failed",
					"user_id", userID,
					"error", err.Error(),
				)
			}
			return nil
		})
	}
	return g.Wait()
}
