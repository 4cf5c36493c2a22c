package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/memory"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
	"github.com/chaintrack/shipment-tracking-api/internal/shared/locker"
)

type fixture struct {
	service *Service
	repo    *memory.Repository
	sink    *memory.NotificationSink
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: memory.NewRepository(),
		sink: memory.NewNotificationSink(),
		now:  time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
	}
	f.service = NewService(f.repo, locker.New(),
		WithNotifier(f.sink),
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) createInput() types.CreateShipmentInput {
	return types.CreateShipmentInput{
		From:            types.PartyInput{ID: "supplier-1", Name: "Acme Farms"},
		To:              types.PartyInput{ID: "retailer-9", Name: "City Grocers"},
		DepartureTime:   f.now,
		ExpectedArrival: f.now.Add(24 * time.Hour),
	}
}

func (f *fixture) create(t *testing.T) *types.ShipmentProjection {
	t.Helper()
	projection, err := f.service.Create(context.Background(), f.createInput())
	require.NoError(t, err)
	return projection
}

func (f *fixture) appendCheckpoint(t *testing.T, id string) {
	t.Helper()
	_, err := f.service.AppendCheckpoint(context.Background(), types.AppendCheckpointInput{
		ShipmentID: id,
		Location:   types.LocationInput{Name: "Distribution Hub"},
	})
	require.NoError(t, err)
}

func TestCreate_GeneratesIdentifiers(t *testing.T) {
	f := newFixture(t)

	projection := f.create(t)

	assert.NotEmpty(t, projection.Shipment.ID)
	assert.True(t, len(projection.Shipment.TrackingNumber) > 3)
	assert.Equal(t, "CT-", projection.Shipment.TrackingNumber[:3])
	assert.Equal(t, domain.StatusPending, projection.Shipment.Status)
	assert.Equal(t, f.now, projection.Metadata.CreatedAt)
}

func TestCreate_InvalidWindow(t *testing.T) {
	f := newFixture(t)
	input := f.createInput()
	input.ExpectedArrival = input.DepartureTime

	_, err := f.service.Create(context.Background(), input)

	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, domain.ErrArrivalWindow)
}

func TestCreate_CarriesRouteAndVehicle(t *testing.T) {
	f := newFixture(t)
	input := f.createInput()
	input.Route = &types.RouteInput{
		Origin:      types.LocationInput{Name: "Pune"},
		Destination: types.LocationInput{Name: "Mumbai"},
		Distance:    types.MeasurementInput{Value: 150, Unit: "km"},
	}
	input.Vehicle = &types.VehicleInput{Number: "MH-12-3456", Type: "truck"}
	input.HandlingRequirements = []string{"fragile", "refrigerated"}

	projection, err := f.service.Create(context.Background(), input)

	require.NoError(t, err)
	require.NotNil(t, projection.Shipment.Route)
	assert.Equal(t, 150.0, projection.Shipment.Route.Distance.Value)
	require.NotNil(t, projection.Shipment.Vehicle)
	assert.Equal(t, "MH-12-3456", projection.Shipment.Vehicle.Number)
	assert.Equal(t, []string{"fragile", "refrigerated"}, projection.Shipment.HandlingRequirements)
}

func TestAppendCheckpoint_PromotesAndPersists(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	f.appendCheckpoint(t, created.Shipment.ID)

	stored, err := f.service.GetByID(context.Background(), types.ShipmentIdentifier{ID: created.Shipment.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInTransit, stored.Shipment.Status)
	require.NotNil(t, stored.Shipment.CurrentLocation)
	assert.Equal(t, "Distribution Hub", stored.Shipment.CurrentLocation.Location.Name)
}

func TestAppendCheckpoint_UnknownShipment(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.AppendCheckpoint(context.Background(), types.AppendCheckpointInput{
		ShipmentID: "missing",
		Location:   types.LocationInput{Name: "Hub"},
	})

	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestAppendCheckpoint_TemperatureAnomalyRaisesAlert(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	temp := types.MeasurementInput{Value: 60, Unit: "Celsius"}

	projection, err := f.service.AppendCheckpoint(context.Background(), types.AppendCheckpointInput{
		ShipmentID:  created.Shipment.ID,
		Location:    types.LocationInput{Name: "Hot Warehouse"},
		Environment: &types.EnvironmentalReadingInput{Temperature: &temp},
	})

	require.NoError(t, err)
	require.Len(t, projection.Shipment.Alerts, 1)
	alert := projection.Shipment.Alerts[0]
	assert.Equal(t, domain.AlertTypeTemperature, alert.Type)
	assert.Equal(t, domain.SeverityHigh, alert.Severity)

	events := f.sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, created.Shipment.ID, events[0].ShipmentID)
	assert.Equal(t, alert.ID, events[0].Alert.ID)
}

func TestAppendCheckpoint_MediumAnomalyNotPromoted(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	humidity := types.MeasurementInput{Value: 95, Unit: "%"}

	projection, err := f.service.AppendCheckpoint(context.Background(), types.AppendCheckpointInput{
		ShipmentID:  created.Shipment.ID,
		Location:    types.LocationInput{Name: "Humid Warehouse"},
		Environment: &types.EnvironmentalReadingInput{Humidity: &humidity},
	})

	require.NoError(t, err)
	assert.Empty(t, projection.Shipment.Alerts)
	assert.Empty(t, f.sink.Events())
}

func TestAppendCheckpoint_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	f.sink.FailWith = errors.New("broker down")
	temp := types.MeasurementInput{Value: 60, Unit: "Celsius"}

	projection, err := f.service.AppendCheckpoint(context.Background(), types.AppendCheckpointInput{
		ShipmentID:  created.Shipment.ID,
		Location:    types.LocationInput{Name: "Hot Warehouse"},
		Environment: &types.EnvironmentalReadingInput{Temperature: &temp},
	})

	require.NoError(t, err)
	assert.Len(t, projection.Shipment.Alerts, 1, "alert persists even when publish fails")
}

func TestMarkDelivered_FromTransit(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	f.appendCheckpoint(t, created.Shipment.ID)
	f.advance(20 * time.Hour)

	projection, err := f.service.MarkDelivered(context.Background(), types.ShipmentIdentifier{ID: created.Shipment.ID})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, projection.Shipment.Status)
	require.NotNil(t, projection.Shipment.ActualArrival)
	assert.Equal(t, f.now, *projection.Shipment.ActualArrival)
}

func TestMarkDelivered_FromPendingRejected(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	_, err := f.service.MarkDelivered(context.Background(), types.ShipmentIdentifier{ID: created.Shipment.ID})

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancel_TerminalStateRejected(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	id := types.ShipmentIdentifier{ID: created.Shipment.ID}
	f.appendCheckpoint(t, created.Shipment.ID)
	_, err := f.service.MarkDelivered(context.Background(), id)
	require.NoError(t, err)

	_, err = f.service.Cancel(context.Background(), id)

	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestEvaluateDelay_TransitionsAndAlertsOnce(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	id := types.ShipmentIdentifier{ID: created.Shipment.ID}
	f.appendCheckpoint(t, created.Shipment.ID)
	f.advance(54 * time.Hour) // 30 hours past the 24 hour window

	projection, err := f.service.EvaluateDelay(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelayed, projection.Shipment.Status)
	require.Len(t, projection.Shipment.Alerts, 1)
	assert.Equal(t, domain.SeverityCritical, projection.Shipment.Alerts[0].Severity)
	assert.Contains(t, projection.Shipment.Alerts[0].Message, "30 hours")

	again, err := f.service.EvaluateDelay(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, again.Shipment.Alerts, 1, "re-evaluation must not duplicate the alert")
	assert.Len(t, f.sink.Events(), 1)
}

func TestEvaluateDelaySweep_CountsTransitions(t *testing.T) {
	f := newFixture(t)
	late := f.create(t)
	f.appendCheckpoint(t, late.Shipment.ID)

	input := f.createInput()
	input.ExpectedArrival = f.now.Add(96 * time.Hour)
	onTime, err := f.service.Create(context.Background(), input)
	require.NoError(t, err)
	f.appendCheckpoint(t, onTime.Shipment.ID)

	f.advance(30 * time.Hour)
	result, err := f.service.EvaluateDelaySweep(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, result.Evaluated)
	assert.Equal(t, 1, result.Transitioned)

	stored, err := f.service.GetByID(context.Background(), types.ShipmentIdentifier{ID: late.Shipment.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelayed, stored.Shipment.Status)
}

func TestEvaluateDelaySweep_HonorsCancellation(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	f.appendCheckpoint(t, created.Shipment.ID)
	f.advance(48 * time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := f.service.EvaluateDelaySweep(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Evaluated)
}

func TestResolveAlert(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)
	id := types.ShipmentIdentifier{ID: created.Shipment.ID}
	f.appendCheckpoint(t, created.Shipment.ID)
	f.advance(30 * time.Hour)
	delayed, err := f.service.EvaluateDelay(context.Background(), id)
	require.NoError(t, err)
	alertID := delayed.Shipment.Alerts[0].ID

	projection, err := f.service.ResolveAlert(context.Background(), types.ResolveAlertInput{
		ShipmentID: created.Shipment.ID,
		AlertID:    alertID,
	})
	require.NoError(t, err)
	assert.True(t, projection.Shipment.Alerts[0].Resolved)

	_, err = f.service.ResolveAlert(context.Background(), types.ResolveAlertInput{
		ShipmentID: created.Shipment.ID,
		AlertID:    alertID,
	})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.service.ResolveAlert(context.Background(), types.ResolveAlertInput{
		ShipmentID: created.Shipment.ID,
		AlertID:    "missing",
	})
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRecordPredictionAndRisk(t *testing.T) {
	f := newFixture(t)
	created := f.create(t)

	err := f.service.RecordPrediction(context.Background(), created.Shipment.ID, domain.Prediction{
		DelayHours: 5,
		Confidence: 50,
		Method:     "rule-based",
	})
	require.NoError(t, err)
	err = f.service.RecordRisk(context.Background(), created.Shipment.ID, domain.RiskScore{Score: 42, Level: domain.SeverityMedium})
	require.NoError(t, err)

	stored, err := f.service.GetByID(context.Background(), types.ShipmentIdentifier{ID: created.Shipment.ID})
	require.NoError(t, err)
	require.NotNil(t, stored.Shipment.LastPrediction)
	assert.Equal(t, 5, stored.Shipment.LastPrediction.DelayHours)
	require.NotNil(t, stored.Shipment.LastRisk)
	assert.Equal(t, 42, stored.Shipment.LastRisk.Score)
	assert.Equal(t, domain.StatusPending, stored.Shipment.Status, "advisory writes never touch lifecycle state")
}
