package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	shipmapper "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/http/mapper"
	shiptypes "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	shipports "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
)

// ShipmentAPI wires HTTP transport with the shipments bounded context service
// and workflows.
type ShipmentAPI struct {
	service   shipports.Service
	workflows shipports.WorkflowOrchestrator
	clock     func() time.Time
}

// ShipmentAPIOption customizes a ShipmentAPI.
type ShipmentAPIOption func(*ShipmentAPI)

// WithShipmentClock overrides the clock used to derive progress on responses.
func WithShipmentClock(clock func() time.Time) ShipmentAPIOption {
	return func(api *ShipmentAPI) {
		if clock != nil {
			api.clock = clock
		}
	}
}

// NewShipmentAPI creates a ShipmentAPI backed by the provided service.
func NewShipmentAPI(service shipports.Service, workflows shipports.WorkflowOrchestrator, opts ...ShipmentAPIOption) ShipmentAPI {
	api := ShipmentAPI{service: service, workflows: workflows, clock: time.Now}
	for _, opt := range opts {
		opt(&api)
	}
	return api
}

// Post /v1/shipments
// Register a new shipment
func (api *ShipmentAPI) CreateShipment(c *gin.Context) {
	var payload shipmapper.CreateShipment
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input := shipmapper.ToCreateInput(payload)
	if key := strings.TrimSpace(c.GetHeader("Idempotency-Key")); key != "" {
		input.IdempotencyKey = key
	}
	saved, err := api.createShipment(c.Request.Context(), input)
	if err != nil {
		respondShipmentServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shipmapper.FromProjection(saved, api.clock()))
}

func (api *ShipmentAPI) createShipment(ctx context.Context, input shiptypes.CreateShipmentInput) (*shiptypes.ShipmentProjection, error) {
	if api.workflows != nil {
		return api.workflows.CreateShipment(ctx, input)
	}
	return api.service.Create(ctx, input)
}

// Get /v1/shipments
// List shipments that have not reached a terminal status
func (api *ShipmentAPI) ListActiveShipments(c *gin.Context) {
	result, err := api.service.ListActive(c.Request.Context())
	if err != nil {
		respondShipmentServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmapper.FromProjectionList(result, api.clock()))
}

// Get /v1/shipments/:shipmentId
// Find shipment by ID
func (api *ShipmentAPI) GetShipmentById(c *gin.Context) {
	id, ok := shipmentIDParam(c)
	if !ok {
		return
	}
	shipment, err := api.service.GetByID(c.Request.Context(), shiptypes.ShipmentIdentifier{ID: id})
	if err != nil {
		respondShipmentServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmapper.FromProjection(shipment, api.clock()))
}

// Post /v1/shipments/:shipmentId/checkpoints
// Append a checkpoint to an in-flight shipment
func (api *ShipmentAPI) AppendCheckpoint(c *gin.Context) {
	id, ok := shipmentIDParam(c)
	if !ok {
		return
	}
	var payload shipmapper.AppendCheckpoint
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	updated, err := api.service.AppendCheckpoint(c.Request.Context(), shipmapper.ToAppendCheckpointInput(id, payload))
	if err != nil {
		respondShipmentServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmapper.FromProjection(updated, api.clock()))
}

// Post /v1/shipments/:shipmentId/deliver
// Mark a shipment as delivered
func (api *ShipmentAPI) MarkDelivered(c *gin.Context) {
	id, ok := shipmentIDParam(c)
	if !ok {
		return
	}
	updated, err := api.service.MarkDelivered(c.Request.Context(), shiptypes.ShipmentIdentifier{ID: id})
	if err != nil {
		respondShipmentServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmapper.FromProjection(updated, api.clock()))
}

// Post /v1/shipments/:shipmentId/cancel
// Cancel a shipment before delivery
func (api *ShipmentAPI) CancelShipment(c *gin.Context) {
	id, ok := shipmentIDParam(c)
	if !ok {
		return
	}
	updated, err := api.service.Cancel(c.Request.Context(), shiptypes.ShipmentIdentifier{ID: id})
	if err != nil {
		respondShipmentServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmapper.FromProjection(updated, api.clock()))
}

// Post /v1/shipments/:shipmentId/alerts/:alertId/resolve
// Resolve a raised alert
func (api *ShipmentAPI) ResolveAlert(c *gin.Context) {
	id, ok := shipmentIDParam(c)
	if !ok {
		return
	}
	alertID := strings.TrimSpace(c.Param("alertId"))
	if alertID == "" {
		respondError(c, http.StatusBadRequest, errors.New("alertId path parameter is required"))
		return
	}
	updated, err := api.service.ResolveAlert(c.Request.Context(), shiptypes.ResolveAlertInput{ShipmentID: id, AlertID: alertID})
	if err != nil {
		respondShipmentServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmapper.FromProjection(updated, api.clock()))
}

// Post /v1/shipments/:shipmentId/evaluate-delay
// Re-evaluate the delay state of a single shipment
func (api *ShipmentAPI) EvaluateDelay(c *gin.Context) {
	id, ok := shipmentIDParam(c)
	if !ok {
		return
	}
	updated, err := api.service.EvaluateDelay(c.Request.Context(), shiptypes.ShipmentIdentifier{ID: id})
	if err != nil {
		respondShipmentServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipmapper.FromProjection(updated, api.clock()))
}

func shipmentIDParam(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("shipmentId"))
	if id == "" {
		respondError(c, http.StatusBadRequest, errors.New("shipmentId path parameter is required"))
		return "", false
	}
	return id, true
}
