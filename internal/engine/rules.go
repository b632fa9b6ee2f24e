package engine

import "droughtwatch/internal/types"

// ResolveRule decides whether a trigger fires given how many of its
// conditions matched.
//
// Semantics:
//   - any_1, any_2, any_3: fires iff matched >= N.
//   - all: fires iff matched == total. With zero conditions "all" is
//     vacuously true; triggers with zero conditions are rejected at
//     creation, so the branch is unreachable in normal operation but the
//     behavior is kept deliberately.
//   - any unrecognized rule resolves to false (fail closed, never an
//     error), so one malformed trigger cannot block a user's other
//     triggers from being evaluated.
func ResolveRule(rule types.CombinationRule, matched, total int) bool {
	switch rule {
	case types.RuleAny1:
		return matched >= 1
	case types.RuleAny2:
		return matched >= 2
	case types.RuleAny3:
		return matched >= 3
	case types.RuleAll:
		return matched == total
	default:
		return false
	}
}

// ResolveOutcomes is the boolean-vector form of ResolveRule.
func ResolveOutcomes(rule types.CombinationRule, outcomes []bool) bool {
	matched := 0
	for _, ok := range outcomes {
		if ok {
			matched++
		}
	}
	return ResolveRule(rule, matched, len(outcomes))
}
