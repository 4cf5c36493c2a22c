package domain

import (
	"math"
	"time"

	shipdomain "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
)

// ScoreRisk combines the delay prediction, anomaly count, and historical
// success rate into a bounded 0-100 score. With no prior history the success
// rate is treated as zero, biasing toward caution.
func ScoreRisk(pred shipdomain.Prediction, anomalyCount int, perf Performance, now time.Time) shipdomain.RiskScore {
	successRate := perf.SuccessRate
	if perf.SampleSize == 0 {
		successRate = 0
	}

	score := math.Min(float64(pred.DelayHours)/24*40, 40)
	score += float64(anomalyCount) * 10
	score += (1 - successRate) * 30

	bounded := int(math.Round(score))
	if bounded < 0 {
		bounded = 0
	}
	if bounded > 100 {
		bounded = 100
	}

	return shipdomain.RiskScore{
		Score:      bounded,
		Level:      riskBand(bounded),
		Breakdown:  RiskBreakdownFor(pred, anomalyCount, successRate),
		ComputedAt: now.UTC(),
	}
}

// RiskBreakdownFor exposes the factor breakdown used by ScoreRisk.
func RiskBreakdownFor(pred shipdomain.Prediction, anomalyCount int, successRate float64) shipdomain.RiskBreakdown {
	return shipdomain.RiskBreakdown{
		PredictedDelayHours: pred.DelayHours,
		AnomalyCount:        anomalyCount,
		SuccessRate:         successRate,
	}
}

// riskBand maps a bounded score to its severity band: <25 Low, <50 Medium,
// <75 High, else Critical.
func riskBand(score int) shipdomain.Severity {
	switch {
	case score < 25:
		return shipdomain.SeverityLow
	case score < 50:
		return shipdomain.SeverityMedium
	case score < 75:
		return shipdomain.SeverityHigh
	default:
		return shipdomain.SeverityCritical
	}
}
