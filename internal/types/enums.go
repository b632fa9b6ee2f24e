package types

// Indicator identifies a measured weather quantity that a trigger condition
// can compare against. Exactly four indicators are valid; anything else is a
// validation error at the boundary, never silently ignored.
type Indicator string

const (
	IndicatorTemp      Indicator = "temp"
	IndicatorRainfall  Indicator = "rainfall"
	IndicatorHumidity  Indicator = "humidity"
	IndicatorWindSpeed Indicator = "wind_speed"
)

// IndicatorPriority is the fixed ordering used when rendering per-indicator
// recommendation text.
var IndicatorPriority = []Indicator{
	IndicatorTemp,
	IndicatorRainfall,
	IndicatorHumidity,
	IndicatorWindSpeed,
}

// Valid reports whether the indicator is one of the four known keys.
func (i Indicator) Valid() bool {
	switch i {
	case IndicatorTemp, IndicatorRainfall, IndicatorHumidity, IndicatorWindSpeed:
		return true
	}
	return false
}

// Field returns the weather snapshot field name the indicator reads from.
// "temp" maps to "temperature"; the others map to themselves.
func (i Indicator) Field() string {
	if i == IndicatorTemp {
		return "temperature"
	}
	return string(i)
}

// Label returns the display name used in alert emails and dashboards.
func (i Indicator) Label() string {
	switch i {
	case IndicatorTemp:
		return "Temperature"
	case IndicatorRainfall:
		return "Rainfall"
	case IndicatorHumidity:
		return "Humidity"
	case IndicatorWindSpeed:
		return "Wind Speed"
	}
	return string(i)
}

// Unit returns the display unit for the indicator's readings.
func (i Indicator) Unit() string {
	switch i {
	case IndicatorTemp:
		return "°C"
	case IndicatorRainfall:
		return "mm"
	case IndicatorHumidity:
		return "%"
	case IndicatorWindSpeed:
		return "km/h"
	}
	return ""
}

// Operator defines the comparison operators for condition evaluation.
// There is deliberately no "!=".
type Operator string

const (
	OpGreaterThan   Operator = ">"
	OpLessThan      Operator = "<"
	OpGreaterThanEq Operator = ">="
	OpLessThanEq    Operator = "<="
	OpEqual         Operator = "=="
)

// Valid reports whether the operator is one of the five known operators.
func (o Operator) Valid() bool {
	switch o {
	case OpGreaterThan, OpLessThan, OpGreaterThanEq, OpLessThanEq, OpEqual:
		return true
	}
	return false
}

// CombinationRule determines how per-condition outcomes combine into a
// trigger-level fire/no-fire decision.
type CombinationRule string

const (
	RuleAny1 CombinationRule = "any_1"
	RuleAny2 CombinationRule = "any_2"
	RuleAny3 CombinationRule = "any_3"
	RuleAll  CombinationRule = "all"
)

// Valid reports whether the rule is one of the four enumerated rules.
func (r CombinationRule) Valid() bool {
	switch r {
	case RuleAny1, RuleAny2, RuleAny3, RuleAll:
		return true
	}
	return false
}

// NotificationType identifies the delivery channel recorded in the
// notification log.
type NotificationType string

const (
	NotificationEmail NotificationType = "email"
)

// RiskLevel categorizes a numeric drought risk score.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskModerate RiskLevel = "Moderate"
	RiskHigh     RiskLevel = "High"
	RiskSevere   RiskLevel = "Severe"
	RiskExtreme  RiskLevel = "Extreme"
)
