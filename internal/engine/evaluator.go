package engine

import (
	"context"
	"log/slog"

	"droughtwatch/internal/types"
)

// TriggerStore is the read-only persistence contract the orchestrator needs.
// The pgx-backed implementation lives in internal/db; tests use fakes.
type TriggerStore interface {
	// ListActiveByUser returns the user's active triggers with their
	// conditions hydrated, ordered by creation time descending.
	ListActiveByUser(ctx context.Context, userID int64) ([]*types.Trigger, error)
}

// Evaluator orchestrates trigger evaluation: it loads a user's active
// triggers, evaluates every condition against one weather snapshot, applies
// each trigger's combination rule, and assembles an AlertResult for every
// trigger that fires.
//
// The Evaluator performs no writes and makes no dispatch decision; rate
// limiting and notification logging belong to the caller.
type Evaluator struct {
	triggers TriggerStore
	logger   *slog.Logger
}

// NewEvaluator creates an Evaluator backed by the given trigger store.
func NewEvaluator(triggers TriggerStore, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Evaluator{triggers: triggers, logger: logger}
}

// EvaluateAllTriggers evaluates every active trigger the user owns against
// the supplied weather snapshot. Triggers that do not fire are omitted from
// the result entirely, so the result length is not the active-trigger count.
//
// A store failure is a hard error for the whole cycle: nothing can be
// evaluated without the triggers. A condition-level validation failure is
// not: the condition is recorded as unmet with its error retained for
// diagnostics, and evaluation of the remaining conditions and sibling
// triggers continues unaffected.
func (e *Evaluator) EvaluateAllTriggers(ctx context.Context, userID int64, weather types.WeatherSnapshot) ([]types.AlertResult, error) {
	triggers, err := e.triggers.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	var alerts []types.AlertResult
	for _, trigger := range triggers {
		result := e.evaluateTrigger(ctx, trigger, weather)
		if result != nil {
			alerts = append(alerts, *result)
		}
	}
	return alerts, nil
}

// EvaluateTrigger evaluates a single trigger against the snapshot and
// returns its AlertResult when it fires, or nil when it does not. Inactive
// triggers never fire.
func (e *Evaluator) EvaluateTrigger(ctx context.Context, trigger *types.Trigger, weather types.WeatherSnapshot) *types.AlertResult {
	if trigger == nil || !trigger.IsActive {
		return nil
	}
	return e.evaluateTrigger(ctx, trigger, weather)
}

func (e *Evaluator) evaluateTrigger(ctx context.Context, trigger *types.Trigger, weather types.WeatherSnapshot) *types.AlertResult {
	outcomes := make([]types.ConditionOutcome, 0, len(trigger.Conditions))
	matched := 0

	for _, cond := range trigger.Conditions {
		outcome := types.ConditionOutcome{
			Indicator:   cond.Indicator,
			Operator:    cond.Operator,
			ActualValue: weather.Value(cond.Indicator),
		}
		if cond.Threshold != nil {
			outcome.Threshold = cond.Threshold.Float64()
		}

		met, err := EvaluateCondition(cond, weather)
		if err != nil {
			// Errored conditions count as unmet but stay distinguishable
			// in diagnostics; they must not abort the trigger or its
			// siblings.
			outcome.EvalError = err.Error()
			e.logger.WarnContext(ctx, "condition evaluation failed",
				"trigger_id", trigger.ID,
				"indicator", string(cond.Indicator),
				"error", err.Error(),
			)
		}
		outcome.Met = met
		if met {
			matched++
		}
		outcomes = append(outcomes, outcome)
	}

	if !ResolveRule(trigger.CombinationRule, matched, len(outcomes)) {
		return nil
	}

	e.logger.InfoContext(ctx, "trigger fired",
		"trigger_id", trigger.ID,
		"user_id", trigger.UserID,
		"rule", string(trigger.CombinationRule),
		"matched", matched,
		"total", len(outcomes),
	)

	return &types.AlertResult{
		Trigger:         trigger,
		ConditionsMet:   outcomes,
		Recommendations: Recommendations(outcomes),
	}
}
