// Package domain holds the pure delay/risk analytics computations: historical
// performance aggregation, the rule-based delay predictor, environmental
// anomaly detection, and the composite risk scorer. Everything here is
// deterministic and side-effect free; orchestration lives in the application
// layer.
package domain

import (
	shipdomain "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
)

// DefaultHistoryLimit bounds the delivered-shipment window the aggregator
// consumes per origin party.
const DefaultHistoryLimit = 50

// Performance summarizes a party's recent delivery record. A SampleSize of
// zero means "no prior signal" and must not be read as zero risk.
type Performance struct {
	AverageOverrunHours float64
	SuccessRate         float64
	SampleSize          int
}

// ComputePerformance aggregates delivered shipments where the party was the
// origin. Shipments without an actual arrival are skipped; they cannot
// contribute an overrun.
func ComputePerformance(history []*shipdomain.Shipment) Performance {
	var (
		totalOverrun float64
		onTime       int
		samples      int
	)
	for _, sh := range history {
		if sh == nil || sh.ActualArrival == nil {
			continue
		}
		samples++
		totalOverrun += sh.OverrunHours()
		if sh.OnTime() {
			onTime++
		}
	}
	if samples == 0 {
		return Performance{}
	}
	return Performance{
		AverageOverrunHours: totalOverrun / float64(samples),
		SuccessRate:         float64(onTime) / float64(samples),
		SampleSize:          samples,
	}
}
