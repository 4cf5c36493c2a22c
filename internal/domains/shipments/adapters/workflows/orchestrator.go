package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	shiptypes "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
	shipworkflows "github.com/chaintrack/shipment-tracking-api/internal/durable/temporal/workflows/shipments"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalShipmentWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineShipmentWorkflows)(nil)
)

// TemporalShipmentWorkflows starts shipment workflows on a Temporal cluster.
type TemporalShipmentWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalShipmentWorkflows wires a Temporal client into the orchestrator.
func NewTemporalShipmentWorkflows(c client.Client) *TemporalShipmentWorkflows {
	return &TemporalShipmentWorkflows{client: c, taskQueue: shipworkflows.ShipmentCreationTaskQueue}
}

// CreateShipment starts the Temporal workflow that registers a shipment.
func (o *TemporalShipmentWorkflows) CreateShipment(ctx context.Context, input shiptypes.CreateShipmentInput) (*shiptypes.ShipmentProjection, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal shipment workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildShipmentCreationWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		shipworkflows.ShipmentCreationWorkflow,
		shipworkflows.ShipmentCreationWorkflowInput{Command: input, TraceID: traceComponent},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var projection shiptypes.ShipmentProjection
			if err := existingRun.Get(ctx, &projection); err != nil {
				return nil, err
			}
			return &projection, nil
		}
		return nil, err
	}
	var projection shiptypes.ShipmentProjection
	if err := run.Get(ctx, &projection); err != nil {
		return nil, err
	}
	return &projection, nil
}

// InlineShipmentWorkflows executes the service directly without Temporal,
// useful for tests or dev fallbacks.
type InlineShipmentWorkflows struct {
	service ports.Service
}

// NewInlineShipmentWorkflows wraps the shipments service for synchronous execution.
func NewInlineShipmentWorkflows(service ports.Service) *InlineShipmentWorkflows {
	return &InlineShipmentWorkflows{service: service}
}

// CreateShipment delegates to the application service without durable orchestration.
func (o *InlineShipmentWorkflows) CreateShipment(ctx context.Context, input shiptypes.CreateShipmentInput) (*shiptypes.ShipmentProjection, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline shipment workflows not configured")
	}
	return o.service.Create(ctx, input)
}

func buildShipmentCreationWorkflowID(input shiptypes.CreateShipmentInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("shipment-creation-idem-%s", hashIdempotencyKey(key))
	}
	idComponent := strings.TrimSpace(input.ID)
	if idComponent == "" {
		idComponent = fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("shipment-creation-%s-%s", idComponent, traceComponent)
}

func hashIdempotencyKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	// Use the first 16 hex chars to keep workflow IDs readable while remaining deterministic.
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
