package shipments

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	shiptypes "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	shipports "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
)

// PersistShipmentActivityName persists a shipment aggregate.
const PersistShipmentActivityName = "shipments.activities.PersistShipment"

// Activities groups activities that operate on the shipments bounded context.
type Activities struct {
	persistService shipports.Service
}

// NewActivities wires the shipments service into the Temporal activities
// bundle.
func NewActivities(persistService shipports.Service) *Activities {
	return &Activities{persistService: persistService}
}

// PersistShipment registers a new shipment and returns its projection.
func (a *Activities) PersistShipment(ctx context.Context, input shiptypes.CreateShipmentInput) (*shiptypes.ShipmentProjection, error) {
	logger := activity.GetLogger(ctx)
	if a == nil || a.persistService == nil {
		logger.Error("shipment persist activity not initialized")
		return nil, errors.New("shipment persist activity not initialized")
	}
	logger.Info("PersistShipment activity started", "from", input.From.ID, "to", input.To.ID)
	projection, err := a.persistService.Create(ctx, input)
	if err != nil {
		logger.Error("PersistShipment activity failed", "error", err)
		return nil, err
	}
	if projection != nil && projection.Shipment != nil {
		logger.Info("PersistShipment activity completed", "shipmentId", projection.Shipment.ID)
	} else {
		logger.Info("PersistShipment activity completed")
	}
	return projection, nil
}
