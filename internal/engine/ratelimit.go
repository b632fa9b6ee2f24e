package engine

import (
	"context"
	"log/slog"
	"time"

	"droughtwatch/internal/types"
)

// NotificationStore is the lookup contract the rate limiter needs. The full
// notification repository in internal/db satisfies it.
type NotificationStore interface {
	// GetLast returns the most recent logged notification for the
	// (trigger, user) pair, or (nil, nil) when none has ever been sent.
	GetLast(ctx context.Context, triggerID, userID int64) (*types.NotificationLogEntry, error)
}

// RateLimiter suppresses repeat notifications for a trigger that keeps
// firing, based on the last logged send. It only reads the log; recording a
// send happens elsewhere, after the dispatch is confirmed.
type RateLimiter struct {
	notifications NotificationStore
	clock         types.Clock
	window        time.Duration
	logger        *slog.Logger
}

// NewRateLimiter creates a RateLimiter with the given minimum interval
// between notifications per (trigger, user) pair. A zero or negative window
// disables limiting entirely.
func NewRateLimiter(notifications NotificationStore, clock types.Clock, window time.Duration, logger *slog.Logger) *RateLimiter {
	if clock == nil {
		clock = types.RealClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RateLimiter{
		notifications: notifications,
		clock:         clock,
		window:        window,
		logger:        logger,
	}
}

// ShouldNotify reports whether a notification for the trigger may be sent
// now.
//
// It allows when limiting is disabled, when no notification was ever logged
// for the pair, or when at least the configured window has elapsed since the
// last logged send. Elapsed time exactly equal to the window allows.
//
// The limiter fails open: if the log lookup errors, it logs the failure and
// allows the send. A duplicate alert is preferable to a silently dropped
// warning about developing drought conditions.
func (r *RateLimiter) ShouldNotify(ctx context.Context, triggerID, userID int64) bool {
	if r.window <= 0 {
		return true
	}

	last, err := r.notifications.GetLast(ctx, triggerID, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "notification log lookup failed, allowing send",
			"trigger_id", triggerID,
			"user_id", userID,
			"error", err.Error(),
		)
		return true
	}
	if last == nil {
		return true
	}

	elapsed := r.clock.Now().Sub(last.SentAt)
	if elapsed >= r.window {
		return true
	}

	r.logger.InfoContext(ctx, "notification rate limited",
		"trigger_id", triggerID,
		"user_id", userID,
		"elapsed", elapsed.String(),
		"window", r.window.String(),
	)
	return false
}
