package shipments

import (
	"go.temporal.io/sdk/workflow"

	shiptypes "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	"github.com/chaintrack/shipment-tracking-api/internal/durable/temporal/sequences"
)

const (
	// ShipmentCreationWorkflowName is the public identifier for registering the workflow.
	ShipmentCreationWorkflowName = "shipments.workflows.Creation"
	// ShipmentCreationTaskQueue is the queue consumed by the worker processing shipment workflows.
	ShipmentCreationTaskQueue = "SHIPMENT_CREATION"
)

// ShipmentCreationWorkflowInput captures the payload required to register a
// new shipment.
type ShipmentCreationWorkflowInput struct {
	Command shiptypes.CreateShipmentInput
	TraceID string
}

// ShipmentCreationWorkflow orchestrates the activities needed to register a
// shipment aggregate.
func ShipmentCreationWorkflow(ctx workflow.Context, input ShipmentCreationWorkflowInput) (*shiptypes.ShipmentProjection, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("ShipmentCreationWorkflow started", withTraceID(input.TraceID, "from", input.Command.From.ID)...)
	projection, err := sequences.RunShipmentPersistenceSequence(ctx, input.Command)
	if err != nil {
		logger.Error("ShipmentCreationWorkflow failed", withTraceID(input.TraceID, "error", err)...)
		return nil, err
	}
	if projection != nil && projection.Shipment != nil {
		logger.Info("ShipmentCreationWorkflow completed", withTraceID(input.TraceID, "shipmentId", projection.Shipment.ID)...)
	} else {
		logger.Info("ShipmentCreationWorkflow completed", withTraceID(input.TraceID)...)
	}
	return projection, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
