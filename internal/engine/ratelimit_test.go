package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"droughtwatch/internal/types"
)

// mockClock implements types.Clock for deterministic testing.
type mockClock struct {
	now time.Time
}

func (c *mockClock) Now() time.Time { return c.now }

type mockNotificationStore struct {
	last *types.NotificationLogEntry
	err  error
}

func (m *mockNotificationStore) GetLast(ctx context.Context, triggerID, userID int64) (*types.NotificationLogEntry, error) {
	return m.last, m.err
}

func TestShouldNotify_NoPriorNotification(t *testing.T) {
	limiter := NewRateLimiter(&mockNotificationStore{}, &mockClock{now: time.Now()}, 6*time.Hour, testLogger())
	if !limiter.ShouldNotify(context.Background(), 1, 1) {
		t.Error("first notification for a pair must be allowed")
	}
}

func TestShouldNotify_WithinWindowSuppressed(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	store := &mockNotificationStore{
		last: &types.NotificationLogEntry{SentAt: now.Add(-3 * time.Hour)},
	}
	limiter := NewRateLimiter(store, &mockClock{now: now}, 6*time.Hour, testLogger())
	if limiter.ShouldNotify(context.Background(), 1, 1) {
		t.Error("notification 3h after the last with a 6h window must be suppressed")
	}
}

func TestShouldNotify_ExactBoundaryAllows(t *testing.T) {
	// Elapsed time exactly equal to the window allows.
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	store := &mockNotificationStore{
		last: &types.NotificationLogEntry{SentAt: now.Add(-6 * time.Hour)},
	}
	limiter := NewRateLimiter(store, &mockClock{now: now}, 6*time.Hour, testLogger())
	if !limiter.ShouldNotify(context.Background(), 1, 1) {
		t.Error("elapsed == window must allow")
	}
}

func TestShouldNotify_PastWindowAllows(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	store := &mockNotificationStore{
		last: &types.NotificationLogEntry{SentAt: now.Add(-7 * time.Hour)},
	}
	limiter := NewRateLimiter(store, &mockClock{now: now}, 6*time.Hour, testLogger())
	if !limiter.ShouldNotify(context.Background(), 1, 1) {
		t.Error("notification past the window must be allowed")
	}
}

func TestShouldNotify_ZeroWindowDisablesLimiting(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	store := &mockNotificationStore{
		last: &types.NotificationLogEntry{SentAt: now.Add(-time.Second)},
	}
	limiter := NewRateLimiter(store, &mockClock{now: now}, 0, testLogger())
	if !limiter.ShouldNotify(context.Background(), 1, 1) {
		t.Error("a zero window must always allow")
	}
}

func TestShouldNotify_LookupFailureFailsOpen(t *testing.T) {
	store := &mockNotificationStore{err: errors.New("relation does not exist")}
	limiter := NewRateLimiter(store, &mockClock{now: time.Now()}, 6*time.Hour, testLogger())
	if !limiter.ShouldNotify(context.Background(), 1, 1) {
		t.Error("a failed log lookup must allow the send")
	}
}
