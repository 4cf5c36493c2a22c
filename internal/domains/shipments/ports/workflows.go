package ports

import (
	"context"

	shiptypes "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
)

// WorkflowOrchestrator starts the durable shipment registration flow. The
// inline implementation degrades to a direct service call when no Temporal
// cluster is reachable.
type WorkflowOrchestrator interface {
	CreateShipment(ctx context.Context, input shiptypes.CreateShipmentInput) (*shiptypes.ShipmentProjection, error)
}
