package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	shiptypes "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	shipactivities "github.com/chaintrack/shipment-tracking-api/internal/durable/temporal/activities/shipments"
)

// RunShipmentPersistenceSequence executes the ordered set of activities
// needed to register a shipment aggregate.
func RunShipmentPersistenceSequence(ctx workflow.Context, input shiptypes.CreateShipmentInput) (*shiptypes.ShipmentProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("shipment persistence sequence started", "from", input.From.ID, "to", input.To.ID)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	var projection shiptypes.ShipmentProjection
	err := workflow.ExecuteActivity(ctx, shipactivities.PersistShipmentActivityName, input).Get(ctx, &projection)
	if err != nil {
		logger.Error("shipment persistence sequence failed", "error", err)
		return nil, err
	}
	if projection.Shipment != nil {
		logger.Info("shipment persistence sequence completed", "shipmentId", projection.Shipment.ID)
	} else {
		logger.Info("shipment persistence sequence completed")
	}
	return &projection, nil
}
