package engine

import "droughtwatch/internal/types"

// Per-indicator guidance, keyed by the indicator whose condition was met.
var indicatorRecommendations = map[types.Indicator]string{
	types.IndicatorTemp:      "High temperature alert: monitor livestock for heat stress, ensure adequate shade and water supply, and consider shifting grazing to cooler hours.",
	types.IndicatorRainfall:  "Low rainfall alert: implement water conservation measures, review irrigation schedules, prioritize critical crops, and check water storage levels.",
	types.IndicatorHumidity:  "Low humidity alert: increase fire-risk monitoring, consider moisture retention strategies for crops, and review drying infrastructure capacity.",
	types.IndicatorWindSpeed: "High wind speed alert: secure loose materials and equipment, monitor for wind damage to crops and structures, and delay planned spray operations.",
}

const (
	multipleIndicatorsWarning = "Multiple drought indicators triggered simultaneously: conditions point to elevated drought risk across several metrics; escalate your monitoring frequency."
	generalGuidance           = "General drought response: activate your drought response plan, communicate water restrictions to your team, and monitor local authority drought status updates."
	expertAdviceGuidance      = "Seek expert advice: contact your local agricultural advisor or consulting officer for region-specific guidance and support."
)

// Recommendations maps the met conditions of a fired trigger to
// human-readable guidance.
//
// One string is emitted per distinct met indicator, in the fixed priority
// order temp, rainfall, humidity, wind_speed. When two or more distinct
// indicators are met, a combined warning is appended before the general
// guidance. General drought-response and expert-advice entries close the
// list, but only when at least one condition was met: no met conditions
// yields an empty list, never filler text.
func Recommendations(outcomes []types.ConditionOutcome) []string {
	met := make(map[types.Indicator]bool)
	for _, o := range outcomes {
		if o.Met {
			met[o.Indicator] = true
		}
	}
	if len(met) == 0 {
		return nil
	}

	recs := make([]string, 0, len(met)+3)
	for _, ind := range types.IndicatorPriority {
		if met[ind] {
			recs = append(recs, indicatorRecommendations[ind])
		}
	}

	if len(met) >= 2 {
		recs = append(recs, multipleIndicatorsWarning)
	}

	recs = append(recs, generalGuidance, expertAdviceGuidance)
	return recs
}
