// Package risk scores regional weather for drought risk. The score is a
// display-oriented summary for dashboards and alert emails; trigger firing
// decisions are made by the evaluation engine, never by the score.
package risk

import (
	"math"
	"time"

	"droughtwatch/internal/types"
)

const (
	// baselineTemperature anchors the reported temperature anomaly.
	baselineTemperature = 15.0
	// expectedDailyRainfall anchors the reported rainfall deficit in mm/24h.
	expectedDailyRainfall = 5.0
)

// Score computes the 0-10 drought risk score and its contributing factors
// from one weather reading.
//
// The score is the sum of three banded components: temperature contributes
// 0-3 points (risk rises above 25C), humidity 0-4 points (below 40% is the
// danger zone), and 24h rainfall 0-3 points (below 5mm is a deficit). The
// soil moisture index is the inverse of the score on a 0-100 scale.
func Score(temperature, humidity, rainfall24h float64) (float64, types.RiskFactors) {
	var tempRisk float64
	switch {
	case temperature >= 30:
		tempRisk = 3.0
	case temperature >= 25:
		tempRisk = 2.0
	case temperature >= 20:
		tempRisk = 1.0
	}

	var humidityRisk float64
	switch {
	case humidity < 30:
		humidityRisk = 4.0
	case humidity < 40:
		humidityRisk = 3.0
	case humidity < 50:
		humidityRisk = 2.0
	case humidity < 60:
		humidityRisk = 1.0
	}

	var rainfallRisk float64
	switch {
	case rainfall24h < 1:
		rainfallRisk = 3.0
	case rainfall24h < 5:
		rainfallRisk = 2.0
	case rainfall24h < 10:
		rainfallRisk = 1.0
	}

	score := tempRisk + humidityRisk + rainfallRisk

	factors := types.RiskFactors{
		TemperatureRisk:    tempRisk,
		Temperature:        temperature,
		TemperatureAnomaly: round1(temperature - baselineTemperature),
		HumidityRisk:       humidityRisk,
		Humidity:           humidity,
		RainfallRisk:       rainfallRisk,
		Rainfall24h:        rainfall24h,
		RainfallDeficit:    round1(math.Max(0, expectedDailyRainfall-rainfall24h)),
		SoilMoistureIndex:  round1(100 - score*10),
	}
	return score, factors
}

// Categorize maps a risk score to its level band.
func Categorize(score float64) types.RiskLevel {
	switch {
	case score < 2:
		return types.RiskLow
	case score < 4:
		return types.RiskModerate
	case score < 6:
		return types.RiskHigh
	case score < 8:
		return types.RiskSevere
	default:
		return types.RiskExtreme
	}
}

// Assess scores a snapshot and packages the result for a region. Missing
// snapshot fields score as zero readings: zero humidity and zero rainfall
// land in the highest-risk bands while zero temperature contributes nothing,
// so a sparse snapshot overstates risk rather than hiding it. Callers wanting
// strictness validate the snapshot first.
func Assess(region string, snapshot types.WeatherSnapshot, now time.Time) types.RiskAssessment {
	var temperature, humidity, rainfall float64
	if snapshot.Temperature != nil {
		temperature = *snapshot.Temperature
	}
	if snapshot.Humidity != nil {
		humidity = *snapshot.Humidity
	}
	if snapshot.Rainfall != nil {
		rainfall = *snapshot.Rainfall
	}

	score, factors := Score(temperature, humidity, rainfall)
	return types.RiskAssessment{
		RiskLevel:   Categorize(score),
		RiskScore:   score,
		Factors:     factors,
		Region:      region,
		LastUpdated: now,
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
