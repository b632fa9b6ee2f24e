package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"droughtwatch/internal/types"
)

// TriggerRepository provides data access for the triggers and
// trigger_conditions tables. Conditions are owned rows: they are written and
// deleted only through their trigger, and ON DELETE CASCADE keeps them
// consistent when a trigger or user is removed.
type TriggerRepository struct {
	db DBTX
}

// NewTriggerRepository creates a new TriggerRepository backed by the given
// database connection (pool or transaction).
func NewTriggerRepository(db DBTX) *TriggerRepository {
	return &TriggerRepository{db: db}
}

// triggerColumns defines the standard set of columns selected for trigger
// queries. Used consistently across all query methods to avoid column drift.
const triggerColumns = `t.id, t.user_id, t.name, t.region, t.combination_rule,
	t.is_active, t.created_at, t.updated_at`

func scanTrigger(row pgx.Row) (*types.Trigger, error) {
	var t types.Trigger
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.Region,
		&t.CombinationRule,
		&t.IsActive,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// runAtomic runs fn against a transaction-backed copy of the repository when
// the underlying DBTX can begin one. A repository already constructed over a
// pgx.Tx runs fn directly inside the caller's transaction.
func (r *TriggerRepository) runAtomic(ctx context.Context, fn func(repo *TriggerRepository) error) error {
	if beginner, ok := r.db.(TxBeginner); ok {
		return WithTx(ctx, beginner, func(tx pgx.Tx) error {
			return fn(&TriggerRepository{db: tx})
		})
	}
	return fn(r)
}

// Create inserts a trigger and its conditions atomically. A trigger with zero
// conditions is rejected before any write.
//
// On success the trigger's ID, CreatedAt and UpdatedAt are populated from the
// inserted row.
func (r *TriggerRepository) Create(ctx context.Context, trigger *types.Trigger) error {
	if len(trigger.Conditions) == 0 {
		return types.NewAppError(types.ErrCodeValidationNoConditions,
			"trigger must have at least one condition", nil)
	}
	return r.runAtomic(ctx, func(repo *TriggerRepository) error {
		return repo.create(ctx, trigger)
	})
}

func (r *TriggerRepository) create(ctx context.Context, trigger *types.Trigger) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO triggers (user_id, name, region, combination_rule, is_active, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		 RETURNING id, created_at, updated_at`,
		trigger.UserID,
		trigger.Name,
		trigger.Region,
		trigger.CombinationRule,
		trigger.IsActive,
	).Scan(&trigger.ID, &trigger.CreatedAt, &trigger.UpdatedAt)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create trigger", err)
	}

	if err := r.insertConditions(ctx, trigger.ID, trigger.Conditions); err != nil {
		return err
	}
	return nil
}

// insertConditions writes the full condition list for a trigger in a single
// multi-row INSERT.
func (r *TriggerRepository) insertConditions(ctx context.Context, triggerID int64, conditions []types.Condition) error {
	const colCount = 4
	var sb strings.Builder
	sb.WriteString(`INSERT INTO trigger_conditions (trigger_id, indicator, operator, threshold) VALUES `)

	args := make([]any, 0, len(conditions)*colCount)
	for i, cond := range conditions {
		if i > 0 {
			sb.WriteString(", ")
		}
		base := i * colCount
		sb.WriteString(fmt.Sprintf("($%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4))
		args = append(args, triggerID, cond.Indicator, cond.Operator, cond.Threshold.Float64())
	}

	if _, err := r.db.Exec(ctx, sb.String(), args...); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to create trigger conditions", err)
	}
	return nil
}

// GetByID retrieves a trigger with its conditions, scoped to the owning user.
// The userID parameter enforces access control at the DB level, ensuring a
// trigger cannot be read across user boundaries.
func (r *TriggerRepository) GetByID(ctx context.Context, id, userID int64) (*types.Trigger, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+triggerColumns+`
		 FROM triggers t
		 WHERE t.id = $1 AND t.user_id = $2`,
		id, userID,
	)

	trigger, err := scanTrigger(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.NewAppError(types.ErrCodeNotFoundTrigger, "trigger not found", nil)
		}
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to retrieve trigger", err)
	}

	if err := r.loadConditions(ctx, []*types.Trigger{trigger}); err != nil {
		return nil, err
	}
	return trigger, nil
}

// ListByUser retrieves all of a user's triggers with conditions hydrated,
// newest first.
func (r *TriggerRepository) ListByUser(ctx context.Context, userID int64) ([]*types.Trigger, error) {
	return r.list(ctx,
		`SELECT `+triggerColumns+`
		 FROM triggers t
		 WHERE t.user_id = $1
		 ORDER BY t.created_at DESC`,
		userID,
	)
}

// ListActiveByUser retrieves only the user's active triggers with conditions
// hydrated, newest first. This is the evaluation engine's read path.
func (r *TriggerRepository) ListActiveByUser(ctx context.Context, userID int64) ([]*types.Trigger, error) {
	return r.list(ctx,
		`SELECT `+triggerColumns+`
		 FROM triggers t
		 WHERE t.user_id = $1 AND t.is_active = TRUE
		 ORDER BY t.created_at DESC`,
		userID,
	)
}

func (r *TriggerRepository) list(ctx context.Context, query string, args ...any) ([]*types.Trigger, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list triggers", err)
	}
	defer rows.Close()

	var results []*types.Trigger
	for rows.Next() {
		trigger, scanErr := scanTrigger(rows)
		if scanErr != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan trigger row", scanErr)
		}
		results = append(results, trigger)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating trigger rows", err)
	}

	if err := r.loadConditions(ctx, results); err != nil {
		return nil, err
	}
	return results, nil
}

// loadConditions hydrates Conditions for the given triggers in one query.
func (r *TriggerRepository) loadConditions(ctx context.Context, triggers []*types.Trigger) error {
	if len(triggers) == 0 {
		return nil
	}

	ids := make([]int64, len(triggers))
	byID := make(map[int64]*types.Trigger, len(triggers))
	for i, t := range triggers {
		ids[i] = t.ID
		byID[t.ID] = t
	}

	rows, err := r.db.Query(ctx,
		`SELECT trigger_id, indicator, operator, threshold
		 FROM trigger_conditions
		 WHERE trigger_id = ANY($1)
		 ORDER BY id`,
		ids,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to load trigger conditions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			triggerID int64
			cond      types.Condition
			threshold float64
		)
		if err := rows.Scan(&triggerID, &cond.Indicator, &cond.Operator, &threshold); err != nil {
			return types.NewAppError(types.ErrCodeInternalDB, "failed to scan condition row", err)
		}
		fs := types.FloatString(threshold)
		cond.Threshold = &fs
		if t, ok := byID[triggerID]; ok {
			t.Conditions = append(t.Conditions, cond)
		}
	}
	if err := rows.Err(); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "error iterating condition rows", err)
	}
	return nil
}

// Update applies changes to an existing trigger and atomically replaces its
// full condition list. Rejects an empty replacement condition list.
func (r *TriggerRepository) Update(ctx context.Context, trigger *types.Trigger) error {
	if len(trigger.Conditions) == 0 {
		return types.NewAppError(types.ErrCodeValidationNoConditions,
			"trigger must have at least one condition", nil)
	}
	return r.runAtomic(ctx, func(repo *TriggerRepository) error {
		return repo.update(ctx, trigger)
	})
}

func (r *TriggerRepository) update(ctx context.Context, trigger *types.Trigger) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE triggers SET
			name = $1,
			region = $2,
			combination_rule = $3,
			is_active = $4,
			updated_at = NOW()
		 WHERE id = $5 AND user_id = $6`,
		trigger.Name,
		trigger.Region,
		trigger.CombinationRule,
		trigger.IsActive,
		trigger.ID,
		trigger.UserID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update trigger", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTrigger, "trigger not found", nil)
	}

	if _, err := r.db.Exec(ctx,
		`DELETE FROM trigger_conditions WHERE trigger_id = $1`,
		trigger.ID,
	); err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to clear trigger conditions", err)
	}
	return r.insertConditions(ctx, trigger.ID, trigger.Conditions)
}

// SetActive flips the is_active flag without touching conditions. Used by the
// pause/resume endpoint.
func (r *TriggerRepository) SetActive(ctx context.Context, id, userID int64, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE triggers SET is_active = $1, updated_at = NOW()
		 WHERE id = $2 AND user_id = $3`,
		active, id, userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to update trigger active state", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTrigger, "trigger not found", nil)
	}
	return nil
}

// Delete removes a trigger. Conditions and notification log entries follow
// via ON DELETE CASCADE.
func (r *TriggerRepository) Delete(ctx context.Context, id, userID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM triggers WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return types.NewAppError(types.ErrCodeInternalDB, "failed to delete trigger", err)
	}
	if tag.RowsAffected() == 0 {
		return types.NewAppError(types.ErrCodeNotFoundTrigger, "trigger not found", nil)
	}
	return nil
}

// ListUserIDsWithActiveTriggers returns the distinct owners of active
// triggers. The alert worker fans out over this set each evaluation cycle.
func (r *TriggerRepository) ListUserIDsWithActiveTriggers(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT DISTINCT user_id FROM triggers WHERE is_active = TRUE`)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to list users with active triggers", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalDB, "failed to scan user id row", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalDB, "error iterating user id rows", err)
	}
	return ids, nil
}
