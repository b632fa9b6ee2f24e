package engine

import (
	"strings"
	"testing"

	"droughtwatch/internal/types"
)

func metOutcome(ind types.Indicator) types.ConditionOutcome {
	return types.ConditionOutcome{Indicator: ind, Met: true}
}

func unmetOutcome(ind types.Indicator) types.ConditionOutcome {
	return types.ConditionOutcome{Indicator: ind, Met: false}
}

func TestRecommendations_NoneMet(t *testing.T) {
	recs := Recommendations([]types.ConditionOutcome{
		unmetOutcome(types.IndicatorTemp),
		unmetOutcome(types.IndicatorRainfall),
	})
	if recs != nil {
		t.Errorf("expected no recommendations when nothing is met, got %v", recs)
	}
}

func TestRecommendations_SingleIndicator(t *testing.T) {
	recs := Recommendations([]types.ConditionOutcome{
		metOutcome(types.IndicatorTemp),
		unmetOutcome(types.IndicatorRainfall),
	})

	// One indicator entry, then general and expert guidance, no combined
	// warning for a single indicator.
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d: %v", len(recs), recs)
	}
	if !strings.Contains(recs[0], "temperature") && !strings.Contains(recs[0], "heat") {
		t.Errorf("first entry should address temperature: %s", recs[0])
	}
	for _, rec := range recs {
		if strings.Contains(rec, "Multiple drought indicators") {
			t.Error("single-indicator result must not include the combined warning")
		}
	}
	if recs[len(recs)-1] != expertAdviceGuidance {
		t.Error("expert advice must close the list")
	}
	if recs[len(recs)-2] != generalGuidance {
		t.Error("general guidance must precede expert advice")
	}
}

func TestRecommendations_MultipleIndicatorsAddsCombinedWarning(t *testing.T) {
	recs := Recommendations([]types.ConditionOutcome{
		metOutcome(types.IndicatorRainfall),
		metOutcome(types.IndicatorTemp),
		metOutcome(types.IndicatorHumidity),
	})

	// 3 indicator entries + combined warning + general + expert.
	if len(recs) != 6 {
		t.Fatalf("expected 6 recommendations, got %d: %v", len(recs), recs)
	}
	if recs[3] != multipleIndicatorsWarning {
		t.Errorf("expected combined warning after indicator entries, got: %s", recs[3])
	}
}

func TestRecommendations_PriorityOrderIsFixed(t *testing.T) {
	// Outcome order must not leak into the output: wind before temp in the
	// input still yields temp first.
	recs := Recommendations([]types.ConditionOutcome{
		metOutcome(types.IndicatorWindSpeed),
		metOutcome(types.IndicatorTemp),
	})
	if recs[0] != indicatorRecommendations[types.IndicatorTemp] {
		t.Errorf("expected temperature guidance first, got: %s", recs[0])
	}
	if recs[1] != indicatorRecommendations[types.IndicatorWindSpeed] {
		t.Errorf("expected wind guidance second, got: %s", recs[1])
	}
}

func TestRecommendations_DuplicateIndicatorDedupes(t *testing.T) {
	// Two met conditions on the same indicator produce one guidance entry
	// and no combined warning.
	recs := Recommendations([]types.ConditionOutcome{
		metOutcome(types.IndicatorTemp),
		metOutcome(types.IndicatorTemp),
	})
	if len(recs) != 3 {
		t.Fatalf("expected 3 recommendations, got %d: %v", len(recs), recs)
	}
}
