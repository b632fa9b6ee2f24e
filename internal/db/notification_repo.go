package db

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"droughtwatch/internal/types"
)

// NotificationRepository provides data access for the notification_log
// table. The log is append-only: entries record notifications that were
// actually dispatched, never suppressed or failed attempts.
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new NotificationRepository backed by
// the given database connection (pool or transaction).
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Append records a dispatched notification. Callers invoke this only after
// the provider confirmed the send; a failed dispatch leaves no entry so the
// rate limiter retries on the next cycle.
func (r *NotificationRepository) Append(ctx context.Context, entry *types.NotificationLogEntry) error {
	conditionsJSON, err := json.Marshal(entry.ConditionsMet)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to encode conditions for notification log", err)
	}

	err = r.db.QueryRow(ctx,
		`INSERT INTO notification_log (trigger_id, user_id, sent_at, notification_type, conditions_met)
		 VALUES ($1, $2, COALESCE($3, NOW()), $4, $5)
		 RETURNING id, sent_at`,
		entry.TriggerID,
		entry.UserID,
		nilIfZeroTime(entry.SentAt),
		entry.NotificationType,
		conditionsJSON,
	).Scan(&entry.ID, &entry.SentAt)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to append notification log entry", err)
	}
	return nil
}

// GetLast returns the most recent entry for the (trigger, user) pair, or
// (nil, nil) when nothing has been sent yet. The rate limiter depends on the
// nil-without-error contract to allow first sends.
func (r *NotificationRepository) GetLast(ctx context.Context, triggerID, userID int64) (*types.NotificationLogEntry, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, trigger_id, user_id, sent_at, notification_type, conditions_met
		 FROM notification_log
		 WHERE trigger_id = $1 AND user_id = $2
		 ORDER BY sent_at DESC
		 LIMIT 1`,
		triggerID, userID,
	)

	entry, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve last notification", err)
	}
	return entry, nil
}

// ListByUser returns the user's notification history, newest first, with the
// trigger name and region joined in for display. Deleted triggers drop their
// log entries via cascade, so the join never dangles.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*types.NotificationLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	rows, err := r.db.Query(ctx,
		`SELECT n.id, n.trigger_id, n.user_id, n.sent_at, n.notification_type, n.conditions_met,
			t.name, t.region
		 FROM notification_log n
		 JOIN triggers t ON t.id = n.trigger_id
		 WHERE n.user_id = $1
		 ORDER BY n.sent_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list notifications", err)
	}
	defer rows.Close()

	var results []*types.NotificationLogEntry
	for rows.Next() {
		var (
			entry          types.NotificationLogEntry
			conditionsJSON []byte
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.TriggerID,
			&entry.UserID,
			&entry.SentAt,
			&entry.NotificationType,
			&conditionsJSON,
			&entry.TriggerName,
			&entry.Region,
		); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan notification row", err)
		}
		if len(conditionsJSON) > 0 {
			if err := json.Unmarshal(conditionsJSON, &entry.ConditionsMet); err != nil {
				return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to decode notification conditions", err)
			}
		}
		results = append(results, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating notification rows", err)
	}
	return results, nil
}

func scanNotification(row pgx.Row) (*types.NotificationLogEntry, error) {
	var (
		entry          types.NotificationLogEntry
		conditionsJSON []byte
	)
	err := row.Scan(
		&entry.ID,
		&entry.TriggerID,
		&entry.UserID,
		&entry.SentAt,
		&entry.NotificationType,
		&conditionsJSON,
	)
	if err != nil {
		return nil, err
	}
	if len(conditionsJSON) > 0 {
		if err := json.Unmarshal(conditionsJSON, &entry.ConditionsMet); err != nil {
			return nil, err
		}
	}
	return &entry, nil
}
