package ports

import (
	"context"

	shiptypes "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
)

// Service defines the shipment lifecycle use cases exposed to adapters
// (inbound/driving port).
type Service interface {
	Create(ctx context.Context, input shiptypes.CreateShipmentInput) (*shiptypes.ShipmentProjection, error)
	GetByID(ctx context.Context, input shiptypes.ShipmentIdentifier) (*shiptypes.ShipmentProjection, error)
	ListActive(ctx context.Context) ([]*shiptypes.ShipmentProjection, error)
	AppendCheckpoint(ctx context.Context, input shiptypes.AppendCheckpointInput) (*shiptypes.ShipmentProjection, error)
	MarkDelivered(ctx context.Context, input shiptypes.ShipmentIdentifier) (*shiptypes.ShipmentProjection, error)
	Cancel(ctx context.Context, input shiptypes.ShipmentIdentifier) (*shiptypes.ShipmentProjection, error)
	ResolveAlert(ctx context.Context, input shiptypes.ResolveAlertInput) (*shiptypes.ShipmentProjection, error)
	EvaluateDelay(ctx context.Context, input shiptypes.ShipmentIdentifier) (*shiptypes.ShipmentProjection, error)
	EvaluateDelaySweep(ctx context.Context) (shiptypes.SweepResult, error)
}
