package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictDelay_NoHistoryLongWeekendRoute(t *testing.T) {
	// Saturday 20:00 departure, 48h window, 600km route, no history.
	departure := time.Date(2026, 3, 7, 20, 0, 0, 0, time.UTC)
	require.Equal(t, time.Saturday, departure.Weekday())

	pred := PredictDelay(PredictionInput{
		DepartureTime:   departure,
		ExpectedArrival: departure.Add(48 * time.Hour),
		RouteDistance:   600,
		CheckpointCount: 0,
		History:         Performance{},
	}, departure)

	// 2 (distance) + 0.5 (off-peak) + 1 (weekend) + 1 (extended) = 4.5 -> 5.
	assert.Equal(t, 5, pred.DelayHours)
	assert.Equal(t, 50, pred.Confidence)
	assert.Equal(t, []string{
		"Long distance route",
		"Off-peak departure",
		"Weekend shipment",
		"Extended travel time",
	}, pred.Factors)
	assert.Equal(t, MethodRuleBased, pred.Method)
}

func TestPredictDelay_NoRuleFires(t *testing.T) {
	// Tuesday 10:00, short window, short route.
	departure := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	require.Equal(t, time.Tuesday, departure.Weekday())

	pred := PredictDelay(PredictionInput{
		DepartureTime:   departure,
		ExpectedArrival: departure.Add(12 * time.Hour),
		RouteDistance:   120,
	}, departure)

	assert.Zero(t, pred.DelayHours)
	assert.Equal(t, []string{"Standard delivery expected"}, pred.Factors)
	assert.Equal(t, "Shipment expected to arrive on time.", pred.Recommendation)
	assert.Equal(t, "Low", string(pred.RiskLevel))
}

func TestPredictDelay_HistoricalContributionAndConfidence(t *testing.T) {
	departure := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

	pred := PredictDelay(PredictionInput{
		DepartureTime:   departure,
		ExpectedArrival: departure.Add(12 * time.Hour),
		History:         Performance{AverageOverrunHours: 8, SampleSize: 25},
	}, departure)

	// 8 * 0.5 = 4 hours from history alone.
	assert.Equal(t, 4, pred.DelayHours)
	assert.Equal(t, 70, pred.Confidence)
	assert.Equal(t, []string{"Historical delays"}, pred.Factors)
}

func TestPredictDelay_MultipleTransitPoints(t *testing.T) {
	departure := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)

	five := PredictDelay(PredictionInput{
		DepartureTime:   departure,
		ExpectedArrival: departure.Add(12 * time.Hour),
		CheckpointCount: 5,
	}, departure)
	six := PredictDelay(PredictionInput{
		DepartureTime:   departure,
		ExpectedArrival: departure.Add(12 * time.Hour),
		CheckpointCount: 6,
	}, departure)

	assert.Zero(t, five.DelayHours, "rule requires strictly more than 5 checkpoints")
	assert.Equal(t, 1, six.DelayHours)
	assert.Contains(t, six.Factors, "Multiple transit points")
}

func TestPredictDelay_OffPeakBoundaries(t *testing.T) {
	base := time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		hour     int
		expected bool
	}{
		{5, true}, {6, true}, {7, false}, {17, false}, {18, true}, {23, true},
	}
	for _, tc := range cases {
		departure := base.Add(time.Duration(tc.hour) * time.Hour)
		pred := PredictDelay(PredictionInput{
			DepartureTime:   departure,
			ExpectedArrival: departure.Add(12 * time.Hour),
		}, departure)
		fired := false
		for _, f := range pred.Factors {
			if f == "Off-peak departure" {
				fired = true
			}
		}
		assert.Equal(t, tc.expected, fired, "hour %d", tc.hour)
	}
}

func TestPredictDelay_RiskLevelBands(t *testing.T) {
	departure := time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC)
	// History overrun drives the raw sum: overrun*0.5 hours.
	cases := []struct {
		overrun float64
		level   string
	}{
		{2, "Low"},       // 1h
		{10, "Medium"},   // 5h
		{20, "High"},     // 10h
		{40, "Critical"}, // 20h
	}
	for _, tc := range cases {
		pred := PredictDelay(PredictionInput{
			DepartureTime:   departure,
			ExpectedArrival: departure.Add(12 * time.Hour),
			History:         Performance{AverageOverrunHours: tc.overrun, SampleSize: 3},
		}, departure)
		assert.Equal(t, tc.level, string(pred.RiskLevel), "overrun %v", tc.overrun)
	}
}
