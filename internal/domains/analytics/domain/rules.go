package domain

import (
	"math"
	"time"

	shipdomain "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
)

// MethodRuleBased tags predictions produced by the deterministic rule engine.
// A learned model, if one is ever added, would carry its own tag behind the
// same Prediction value.
const MethodRuleBased = "rule-based"

// PredictionInput carries the shipment attributes the rule engine consumes.
type PredictionInput struct {
	DepartureTime   time.Time
	ExpectedArrival time.Time
	// RouteDistance is the planned distance in the route's own unit; zero
	// when no route is recorded.
	RouteDistance   float64
	CheckpointCount int
	History         Performance
}

// InputFromShipment extracts the prediction inputs from an aggregate plus its
// origin party's historical performance.
func InputFromShipment(sh *shipdomain.Shipment, history Performance) PredictionInput {
	in := PredictionInput{
		DepartureTime:   sh.DepartureTime,
		ExpectedArrival: sh.ExpectedArrival,
		CheckpointCount: len(sh.Checkpoints),
		History:         history,
	}
	if sh.Route != nil {
		in.RouteDistance = sh.Route.Distance.Value
	}
	return in
}

// PredictDelay runs the rule accumulator. Each applicable rule adds a fixed
// hour contribution and a factor label; contributions sum and the result is
// rounded to whole hours, never negative.
func PredictDelay(in PredictionInput, now time.Time) shipdomain.Prediction {
	var (
		delayHours float64
		factors    []string
	)

	if in.RouteDistance > 500 {
		delayHours += 2
		factors = append(factors, "Long distance route")
	}
	if in.History.AverageOverrunHours > 0 {
		delayHours += in.History.AverageOverrunHours * 0.5
		factors = append(factors, "Historical delays")
	}
	if in.CheckpointCount > 5 {
		delayHours++
		factors = append(factors, "Multiple transit points")
	}
	hour := in.DepartureTime.Hour()
	if hour >= 18 || hour <= 6 {
		delayHours += 0.5
		factors = append(factors, "Off-peak departure")
	}
	switch in.DepartureTime.Weekday() {
	case time.Saturday, time.Sunday:
		delayHours++
		factors = append(factors, "Weekend shipment")
	}
	// A 48-hour window already counts as extended travel time.
	if in.ExpectedArrival.Sub(in.DepartureTime).Hours() >= 48 {
		delayHours++
		factors = append(factors, "Extended travel time")
	}

	confidence := 50
	if in.History.SampleSize > 10 {
		confidence = 70
	}
	if len(factors) == 0 {
		factors = []string{"Standard delivery expected"}
	}

	return shipdomain.Prediction{
		DelayHours:     int(math.Round(math.Max(0, delayHours))),
		Confidence:     confidence,
		Factors:        factors,
		RiskLevel:      delayRiskLevel(delayHours),
		Recommendation: delayRecommendation(delayHours),
		Method:         MethodRuleBased,
		ComputedAt:     now.UTC(),
	}
}

// delayRiskLevel maps the raw (pre-rounding) hour sum to a display band.
func delayRiskLevel(delayHours float64) shipdomain.Severity {
	switch {
	case delayHours <= 2:
		return shipdomain.SeverityLow
	case delayHours <= 6:
		return shipdomain.SeverityMedium
	case delayHours <= 12:
		return shipdomain.SeverityHigh
	default:
		return shipdomain.SeverityCritical
	}
}

func delayRecommendation(delayHours float64) string {
	switch {
	case delayHours <= 2:
		return "Shipment expected to arrive on time."
	case delayHours <= 6:
		return "Minor delay expected. Consider notifying recipient."
	case delayHours <= 12:
		return "Significant delay predicted. Optimize route or schedule alternative transport."
	default:
		return "Critical delay risk. Consider expedited shipping."
	}
}
