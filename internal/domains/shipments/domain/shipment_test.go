package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	origin = Party{ID: "0xshipper", Name: "Acme Logistics"}
	dest   = Party{ID: "0xreceiver", Name: "Globex"}
)

func newTestShipment(t *testing.T, departure time.Time, window time.Duration) *Shipment {
	t.Helper()
	sh, err := NewShipment("ship-1", "TRK-0001", origin, dest, departure, departure.Add(window))
	require.NoError(t, err)
	return sh
}

func TestNewShipment_RejectsInvertedWindow(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	_, err := NewShipment("ship-1", "TRK-0001", origin, dest, departure, departure)
	require.ErrorIs(t, err, ErrArrivalWindow)

	_, err = NewShipment("ship-1", "TRK-0001", origin, dest, departure, departure.Add(-time.Hour))
	require.ErrorIs(t, err, ErrArrivalWindow)
}

func TestNewShipment_RequiresParties(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	_, err := NewShipment("ship-1", "TRK-0001", Party{}, dest, departure, departure.Add(time.Hour))
	require.ErrorIs(t, err, ErrMissingParty)
}

func TestAppendCheckpoint_PromotesPendingToInTransit(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 48*time.Hour)
	require.Equal(t, StatusPending, sh.Status)

	cp := Checkpoint{
		Handler:  Party{ID: "0xhandler"},
		Location: Location{Name: "Rotterdam Hub", Coordinates: Coordinates{Latitude: 51.9, Longitude: 4.5}},
	}
	now := departure.Add(2 * time.Hour)
	require.NoError(t, sh.AppendCheckpoint(cp, now))

	assert.Equal(t, StatusInTransit, sh.Status)
	require.Len(t, sh.Checkpoints, 1)
	assert.Equal(t, now, sh.Checkpoints[0].Timestamp)
	require.NotNil(t, sh.CurrentLocation)
	assert.Equal(t, "Rotterdam Hub", sh.CurrentLocation.Location.Name)
}

func TestAppendCheckpoint_RejectsTerminalStatus(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	cp := Checkpoint{Location: Location{Name: "Hub"}}

	delivered := newTestShipment(t, departure, 48*time.Hour)
	require.NoError(t, delivered.AppendCheckpoint(cp, departure.Add(time.Hour)))
	require.NoError(t, delivered.MarkDelivered(departure.Add(2*time.Hour)))
	require.ErrorIs(t, delivered.AppendCheckpoint(cp, departure.Add(3*time.Hour)), ErrTerminalStatus)

	cancelled := newTestShipment(t, departure, 48*time.Hour)
	require.NoError(t, cancelled.Cancel())
	require.ErrorIs(t, cancelled.AppendCheckpoint(cp, departure.Add(time.Hour)), ErrTerminalStatus)
}

func TestAppendCheckpoint_ValidatesLocation(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 48*time.Hour)

	err := sh.AppendCheckpoint(Checkpoint{}, departure)
	require.ErrorIs(t, err, ErrCheckpointLocation)

	err = sh.AppendCheckpoint(Checkpoint{
		Location: Location{Name: "Nowhere", Coordinates: Coordinates{Latitude: 123}},
	}, departure)
	require.ErrorIs(t, err, ErrCheckpointCoordinate)
	assert.Equal(t, StatusPending, sh.Status)
}

func TestMarkDelivered_SetsActualArrivalExactlyOnce(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 48*time.Hour)

	// Pending shipments cannot be delivered.
	require.ErrorIs(t, sh.MarkDelivered(departure.Add(time.Hour)), ErrNotDeliverable)
	assert.Nil(t, sh.ActualArrival)

	require.NoError(t, sh.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure.Add(time.Hour)))
	arrival := departure.Add(40 * time.Hour)
	require.NoError(t, sh.MarkDelivered(arrival))

	assert.Equal(t, StatusDelivered, sh.Status)
	require.NotNil(t, sh.ActualArrival)
	assert.Equal(t, arrival, *sh.ActualArrival)

	require.ErrorIs(t, sh.MarkDelivered(arrival.Add(time.Hour)), ErrNotDeliverable)
}

func TestMarkDelivered_LegalFromDelayed(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 24*time.Hour)
	require.NoError(t, sh.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure.Add(time.Hour)))

	_, transitioned := sh.EvaluateDelay(departure.Add(30 * time.Hour))
	require.True(t, transitioned)
	require.Equal(t, StatusDelayed, sh.Status)

	require.NoError(t, sh.MarkDelivered(departure.Add(31*time.Hour)))
	assert.Equal(t, StatusDelivered, sh.Status)
	require.NotNil(t, sh.ActualArrival)
}

func TestCancel_OnlyFromPendingOrInTransit(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	pending := newTestShipment(t, departure, 48*time.Hour)
	require.NoError(t, pending.Cancel())
	assert.Equal(t, StatusCancelled, pending.Status)

	delayed := newTestShipment(t, departure, 24*time.Hour)
	require.NoError(t, delayed.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure.Add(time.Hour)))
	_, transitioned := delayed.EvaluateDelay(departure.Add(30 * time.Hour))
	require.True(t, transitioned)
	require.ErrorIs(t, delayed.Cancel(), ErrNotCancellable)
}

func TestEvaluateDelay_RaisesCriticalAlertWithOverrunHours(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 24*time.Hour)
	require.NoError(t, sh.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure.Add(time.Hour)))

	// 30 hours past expected arrival.
	now := sh.ExpectedArrival.Add(30 * time.Hour)
	alert, transitioned := sh.EvaluateDelay(now)
	require.True(t, transitioned)
	require.NotNil(t, alert)

	assert.Equal(t, StatusDelayed, sh.Status)
	assert.Equal(t, SeverityCritical, alert.Severity)
	assert.Equal(t, AlertTypeDelay, alert.Type)
	assert.Contains(t, alert.Message, "30 hours")
}

func TestEvaluateDelay_HighBelow24HourOverrun(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 24*time.Hour)
	require.NoError(t, sh.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure.Add(time.Hour)))

	alert, transitioned := sh.EvaluateDelay(sh.ExpectedArrival.Add(5 * time.Hour))
	require.True(t, transitioned)
	assert.Equal(t, SeverityHigh, alert.Severity)
}

func TestEvaluateDelay_Idempotent(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 24*time.Hour)
	require.NoError(t, sh.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure.Add(time.Hour)))

	_, first := sh.EvaluateDelay(sh.ExpectedArrival.Add(2 * time.Hour))
	require.True(t, first)
	_, second := sh.EvaluateDelay(sh.ExpectedArrival.Add(3 * time.Hour))
	assert.False(t, second)
	assert.Len(t, sh.Alerts, 1)
}

func TestEvaluateDelay_NoopBeforeExpectedArrival(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 24*time.Hour)
	require.NoError(t, sh.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure.Add(time.Hour)))

	_, transitioned := sh.EvaluateDelay(sh.ExpectedArrival.Add(-time.Minute))
	assert.False(t, transitioned)
	assert.Equal(t, StatusInTransit, sh.Status)
}

func TestProgress_BoundedAndMonotonic(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 100*time.Hour)

	assert.Equal(t, 0, sh.Progress(departure.Add(50*time.Hour)), "pending is always 0")

	require.NoError(t, sh.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure))
	previous := -1
	for h := 0; h <= 150; h += 10 {
		p := sh.Progress(departure.Add(time.Duration(h) * time.Hour))
		assert.GreaterOrEqual(t, p, previous)
		assert.GreaterOrEqual(t, p, 0)
		assert.LessOrEqual(t, p, 99)
		previous = p
	}
	assert.Equal(t, 50, sh.Progress(departure.Add(50*time.Hour)))
	assert.Equal(t, 99, sh.Progress(departure.Add(200*time.Hour)), "capped below 100 without delivery confirmation")

	require.NoError(t, sh.MarkDelivered(departure.Add(90*time.Hour)))
	assert.Equal(t, 100, sh.Progress(departure.Add(90*time.Hour)))
}

func TestResolveAlert(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 24*time.Hour)
	alert := sh.AddAlert(SeverityHigh, AlertTypeTemperature, "Unusual temperature: 60 Celsius", departure)

	require.ErrorIs(t, sh.ResolveAlert("missing", departure), ErrAlertNotFound)
	require.NoError(t, sh.ResolveAlert(alert.ID, departure.Add(time.Hour)))
	assert.True(t, sh.Alerts[0].Resolved)
	require.NotNil(t, sh.Alerts[0].ResolvedAt)
	require.ErrorIs(t, sh.ResolveAlert(alert.ID, departure.Add(2*time.Hour)), ErrAlertResolved)
}

func TestOverrunHours(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 24*time.Hour)
	assert.Zero(t, sh.OverrunHours())

	require.NoError(t, sh.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure))
	require.NoError(t, sh.MarkDelivered(sh.ExpectedArrival.Add(6*time.Hour)))
	assert.InDelta(t, 6, sh.OverrunHours(), 0.001)
	assert.False(t, sh.OnTime())

	early := newTestShipment(t, departure, 24*time.Hour)
	require.NoError(t, early.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure))
	require.NoError(t, early.MarkDelivered(early.ExpectedArrival.Add(-2*time.Hour)))
	assert.Zero(t, early.OverrunHours())
	assert.True(t, early.OnTime())
}

func TestDeliveredIffActualArrivalSet(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 24*time.Hour)
	require.NoError(t, sh.AppendCheckpoint(Checkpoint{Location: Location{Name: "Hub"}}, departure))

	states := []func(){
		func() { _, _ = sh.EvaluateDelay(sh.ExpectedArrival.Add(time.Hour)) },
		func() { _ = sh.MarkDelivered(sh.ExpectedArrival.Add(2 * time.Hour)) },
	}
	for _, step := range states {
		step()
		assert.Equal(t, sh.Status == StatusDelivered, sh.ActualArrival != nil)
	}
}

func TestClone_IsDeep(t *testing.T) {
	departure := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	sh := newTestShipment(t, departure, 24*time.Hour)
	temp := Measurement{Value: 4, Unit: "Celsius"}
	require.NoError(t, sh.AppendCheckpoint(Checkpoint{
		Location:    Location{Name: "Hub"},
		Environment: &EnvironmentalReading{Temperature: &temp},
	}, departure))
	sh.SetExtensions(map[string]string{"customsRef": "C-1"})

	clone := sh.Clone()
	clone.Checkpoints[0].Environment.Temperature.Value = 99
	clone.Extensions["customsRef"] = "C-2"
	clone.AddAlert(SeverityLow, "note", "x", departure)

	assert.Equal(t, 4.0, sh.Checkpoints[0].Environment.Temperature.Value)
	assert.Equal(t, "C-1", sh.Extensions["customsRef"])
	assert.Empty(t, sh.Alerts)
}
