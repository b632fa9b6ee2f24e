// Package engine implements the trigger evaluation engine: per-condition
// comparison against a weather snapshot, combination-rule resolution,
// recommendation text generation, and notification rate limiting.
//
// Condition evaluation and rule resolution are pure functions. The
// orchestrator and rate limiter perform read-only lookups through store
// interfaces and never write; recording a dispatched notification is the
// caller's responsibility, sequenced after a confirmed send.
package engine

import (
	"fmt"

	"droughtwatch/internal/types"
)

// EvaluateCondition checks a single condition against one weather snapshot.
//
// It returns (true, nil) when the comparison holds and (false, nil) when it
// does not. Any validation failure (missing condition fields, unknown
// indicator or operator, an absent or null weather field) returns
// (false, err). Callers log the error but treat the condition as unmet;
// a failed condition never aborts sibling evaluation.
//
// Thresholds and weather values are compared as float64. String-encoded
// numeric thresholds are coerced upstream by types.FloatString, so by the
// time a condition reaches this function its threshold is already numeric.
// Equality ("==") is exact float64 equality with no epsilon tolerance.
func EvaluateCondition(cond types.Condition, weather types.WeatherSnapshot) (bool, error) {
	if cond.Indicator == "" || cond.Operator == "" || cond.Threshold == nil {
		return false, types.NewAppError(types.ErrCodeValidationMissingField,
			"condition missing required fields", nil)
	}

	if !cond.Indicator.Valid() {
		return false, types.NewAppError(types.ErrCodeValidationInvalidIndicator,
			fmt.Sprintf("invalid indicator %q", cond.Indicator), nil)
	}

	if !cond.Operator.Valid() {
		return false, types.NewAppError(types.ErrCodeValidationInvalidOperator,
			fmt.Sprintf("invalid operator %q", cond.Operator), nil)
	}

	actual := weather.Value(cond.Indicator)
	if actual == nil {
		return false, types.NewAppError(types.ErrCodeValidationMissingField,
			fmt.Sprintf("weather data missing indicator %s", cond.Indicator.Field()), nil)
	}

	return compare(*actual, cond.Operator, cond.Threshold.Float64()), nil
}

// compare applies the operator with standard numeric comparison semantics.
// The operator is already validated; the default branch is unreachable but
// resolves to false rather than panicking.
func compare(actual float64, op types.Operator, threshold float64) bool {
	switch op {
	case types.OpGreaterThan:
		return actual > threshold
	case types.OpLessThan:
		return actual < threshold
	case types.OpGreaterThanEq:
		return actual >= threshold
	case types.OpLessThanEq:
		return actual <= threshold
	case types.OpEqual:
		return actual == threshold
	default:
		return false
	}
}
