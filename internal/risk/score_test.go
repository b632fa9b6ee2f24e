package risk

import (
	"testing"
	"time"

	"droughtwatch/internal/types"
)

func TestScore_Bands(t *testing.T) {
	tests := []struct {
		name        string
		temperature float64
		humidity    float64
		rainfall    float64
		wantScore   float64
	}{
		{"cool wet humid scores zero", 10, 80, 15, 0},
		{"hot band adds three", 32, 80, 15, 3},
		{"warm band adds two", 26, 80, 15, 2},
		{"mild band adds one", 21, 80, 15, 1},
		{"critical humidity adds four", 10, 25, 15, 4},
		{"very dry rainfall adds three", 10, 80, 0.5, 3},
		{"worst case sums to ten", 35, 20, 0, 10},
		{"mixed mid bands", 26, 45, 3, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, _ := Score(tt.temperature, tt.humidity, tt.rainfall)
			if score != tt.wantScore {
				t.Errorf("Score(%v, %v, %v) = %v, want %v",
					tt.temperature, tt.humidity, tt.rainfall, score, tt.wantScore)
			}
		})
	}
}

func TestScore_Factors(t *testing.T) {
	score, factors := Score(27.5, 55, 1.2)

	// temp 27.5 -> 2, humidity 55 -> 1, rainfall 1.2 -> 2.
	if score != 5 {
		t.Fatalf("expected score 5, got %v", score)
	}
	if factors.TemperatureAnomaly != 12.5 {
		t.Errorf("expected anomaly 12.5 from the 15C baseline, got %v", factors.TemperatureAnomaly)
	}
	if factors.RainfallDeficit != 3.8 {
		t.Errorf("expected deficit 3.8 against 5mm expected, got %v", factors.RainfallDeficit)
	}
	if factors.SoilMoistureIndex != 50 {
		t.Errorf("expected soil moisture index 50, got %v", factors.SoilMoistureIndex)
	}
}

func TestScore_DeficitNeverNegative(t *testing.T) {
	_, factors := Score(10, 80, 12)
	if factors.RainfallDeficit != 0 {
		t.Errorf("surplus rainfall must clamp the deficit to 0, got %v", factors.RainfallDeficit)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		score float64
		want  types.RiskLevel
	}{
		{0, types.RiskLow},
		{1.9, types.RiskLow},
		{2, types.RiskModerate},
		{3.9, types.RiskModerate},
		{4, types.RiskHigh},
		{5.9, types.RiskHigh},
		{6, types.RiskSevere},
		{7.9, types.RiskSevere},
		{8, types.RiskExtreme},
		{10, types.RiskExtreme},
	}

	for _, tt := range tests {
		if got := Categorize(tt.score); got != tt.want {
			t.Errorf("Categorize(%v) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestAssess_MissingFieldsScoreAsZeroReadings(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	assessment := Assess("karoo", types.WeatherSnapshot{}, now)

	// Zero humidity and rainfall take their maximum bands; zero temperature
	// adds nothing.
	if assessment.Factors.HumidityRisk != 4 {
		t.Errorf("expected humidity risk 4, got %v", assessment.Factors.HumidityRisk)
	}
	if assessment.Factors.RainfallRisk != 3 {
		t.Errorf("expected rainfall risk 3, got %v", assessment.Factors.RainfallRisk)
	}
	if assessment.Factors.TemperatureRisk != 0 {
		t.Errorf("expected temperature risk 0, got %v", assessment.Factors.TemperatureRisk)
	}
	if assessment.RiskScore != 7 {
		t.Errorf("expected score 7, got %v", assessment.RiskScore)
	}
}

func TestAssess(t *testing.T) {
	temp, hum, rain := 32.0, 25.0, 0.0
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	assessment := Assess("karoo", types.WeatherSnapshot{
		Temperature: &temp,
		Humidity:    &hum,
		Rainfall:    &rain,
	}, now)

	if assessment.RiskScore != 10 {
		t.Errorf("expected score 10, got %v", assessment.RiskScore)
	}
	if assessment.RiskLevel != types.RiskExtreme {
		t.Errorf("expected Extreme, got %s", assessment.RiskLevel)
	}
	if assessment.Region != "karoo" {
		t.Errorf("expected region karoo, got %s", assessment.Region)
	}
	if !assessment.LastUpdated.Equal(now) {
		t.Errorf("expected LastUpdated %v, got %v", now, assessment.LastUpdated)
	}
}
