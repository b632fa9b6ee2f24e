package types

import (
	"encoding/json"
	"time"
)

// User represents a subscribed account that owns triggers. Deleting a user
// cascades to its triggers, their conditions, and notification log entries
// (enforced by foreign keys in the schema).
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	Region       string    `json:"region" db:"region"`
	Organization string    `json:"organization" db:"organization"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Condition is a single threshold rule attached to a trigger. Conditions are
// immutable once attached; updates replace the trigger's full condition list.
type Condition struct {
	Indicator Indicator    `json:"indicator" validate:"required,indicator"`
	Operator  Operator     `json:"operator" validate:"required,operator"`
	Threshold *FloatString `json:"threshold" validate:"required"`
}

// Trigger is the core domain entity: a named set of conditions over regional
// weather, combined by a CombinationRule, owned by exactly one user.
type Trigger struct {
	ID              int64           `json:"id" db:"id"`
	UserID          int64           `json:"user_id" db:"user_id"`
	Name            string          `json:"name" db:"name"`
	Region          string          `json:"region" db:"region"`
	Conditions      []Condition     `json:"conditions" db:"-"`
	CombinationRule CombinationRule `json:"combination_rule" db:"combination_rule"`
	IsActive        bool            `json:"is_active" db:"is_active"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
}

// WeatherSnapshot is one reading of regional weather metrics, supplied per
// evaluation call and never persisted by the engine. Fields are pointers so
// that an absent metric is distinguishable from a zero reading; unknown
// extra fields in the source document are tolerated and dropped.
type WeatherSnapshot struct {
	Temperature *float64 `json:"temperature,omitempty"`
	Rainfall    *float64 `json:"rainfall,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	WindSpeed   *float64 `json:"wind_speed,omitempty"`
}

// UnmarshalJSON accepts each reading as a JSON number or a numeric string
// ("27.5"), coercing both to float64 like condition thresholds. A JSON null
// reading decodes to nil, same as an absent field.
func (w *WeatherSnapshot) UnmarshalJSON(data []byte) error {
	var raw struct {
		Temperature *FloatString `json:"temperature"`
		Rainfall    *FloatString `json:"rainfall"`
		Humidity    *FloatString `json:"humidity"`
		WindSpeed   *FloatString `json:"wind_speed"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.Temperature = raw.Temperature.floatPtr()
	w.Rainfall = raw.Rainfall.floatPtr()
	w.Humidity = raw.Humidity.floatPtr()
	w.WindSpeed = raw.WindSpeed.floatPtr()
	return nil
}

// Value returns the reading for the given indicator, or nil when the field
// is absent from the snapshot.
func (w WeatherSnapshot) Value(ind Indicator) *float64 {
	switch ind {
	case IndicatorTemp:
		return w.Temperature
	case IndicatorRainfall:
		return w.Rainfall
	case IndicatorHumidity:
		return w.Humidity
	case IndicatorWindSpeed:
		return w.WindSpeed
	}
	return nil
}

// ConditionOutcome captures the evaluation of a single condition against a
// snapshot, including the observed value for display. EvalError carries the
// validation failure description when evaluation could not complete; such
// outcomes count as "not met" for combination purposes but remain
// distinguishable in logs.
type ConditionOutcome struct {
	Indicator   Indicator `json:"indicator"`
	Operator    Operator  `json:"operator"`
	Threshold   float64   `json:"threshold"`
	ActualValue *float64  `json:"actual_value,omitempty"`
	Met         bool      `json:"met"`
	EvalError   string    `json:"-"`
}

// AlertResult is produced for every trigger that fires. ConditionsMet lists
// every condition outcome, met or not, so callers can render "2 of 3 met".
type AlertResult struct {
	Trigger         *Trigger           `json:"trigger"`
	ConditionsMet   []ConditionOutcome `json:"conditions_met"`
	Recommendations []string           `json:"recommendations"`
}

// MetCount returns how many conditions in the result were satisfied.
func (a AlertResult) MetCount() int {
	n := 0
	for _, c := range a.ConditionsMet {
		if c.Met {
			n++
		}
	}
	return n
}

// NotificationLogEntry records one actually-dispatched notification.
// Append-only: rate-limited firings produce no entry. The latest entry by
// SentAt per (trigger, user) pair is the sole input to the rate limiter.
type NotificationLogEntry struct {
	ID               int64              `json:"id" db:"id"`
	TriggerID        int64              `json:"trigger_id" db:"trigger_id"`
	UserID           int64              `json:"user_id" db:"user_id"`
	SentAt           time.Time          `json:"sent_at" db:"sent_at"`
	NotificationType NotificationType   `json:"notification_type" db:"notification_type"`
	ConditionsMet    []ConditionOutcome `json:"conditions_met" db:"conditions_met"`

	// Hydrated from a join in history listings; empty otherwise.
	TriggerName string `json:"trigger_name,omitempty" db:"-"`
	Region      string `json:"region,omitempty" db:"-"`
}

// RiskFactors itemizes the contributions to a drought risk score.
type RiskFactors struct {
	TemperatureRisk    float64 `json:"temperature_risk"`
	Temperature        float64 `json:"temperature"`
	TemperatureAnomaly float64 `json:"temperature_anomaly"`
	HumidityRisk       float64 `json:"humidity_risk"`
	Humidity           float64 `json:"humidity"`
	RainfallRisk       float64 `json:"rainfall_risk"`
	Rainfall24h        float64 `json:"rainfall_24h"`
	RainfallDeficit    float64 `json:"rainfall_deficit"`
	SoilMoistureIndex  float64 `json:"soil_moisture_index"`
}

// RiskAssessment is the result of scoring one region's weather for drought
// risk. Display data for dashboards and alert emails, not a validated model.
type RiskAssessment struct {
	RiskLevel   RiskLevel   `json:"risk_level"`
	RiskScore   float64     `json:"risk_score"`
	Factors     RiskFactors `json:"factors"`
	Region      string      `json:"region"`
	LastUpdated time.Time   `json:"last_updated"`
}
