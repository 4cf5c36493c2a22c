// Package ports defines the analytics context's driven and driving ports.
package ports

import (
	"context"
	"time"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/domain"
	shipdomain "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
)

// ShipmentSource exposes the shipment data the analytics engine reads. It is
// implemented on top of the shipments repository so analytics never touches
// storage directly.
type ShipmentSource interface {
	Shipment(ctx context.Context, id string) (*shipdomain.Shipment, error)
	DeliveredHistory(ctx context.Context, originPartyID string, limit int) ([]*shipdomain.Shipment, error)
}

// PerformanceCache memoizes per-party performance aggregates with a TTL.
type PerformanceCache interface {
	Get(ctx context.Context, partyID string) (domain.Performance, bool, error)
	Put(ctx context.Context, partyID string, perf domain.Performance, ttl time.Duration) error
}

// AdvisoryRecorder caches the latest prediction and risk score on the
// shipment aggregate. Recording is best effort; a failure never fails the
// analytics read.
type AdvisoryRecorder interface {
	RecordPrediction(ctx context.Context, shipmentID string, prediction shipdomain.Prediction) error
	RecordRisk(ctx context.Context, shipmentID string, risk shipdomain.RiskScore) error
}

// Service defines the analytics use cases exposed to adapters.
type Service interface {
	PerformanceOf(ctx context.Context, originPartyID string) (domain.Performance, error)
	PredictDelay(ctx context.Context, shipmentID string) (shipdomain.Prediction, error)
	DetectAnomalies(ctx context.Context, shipmentID string) ([]domain.Anomaly, error)
	RiskScore(ctx context.Context, shipmentID string) (shipdomain.RiskScore, error)
}
