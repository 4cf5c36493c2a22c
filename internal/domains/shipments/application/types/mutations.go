package types

import "time"

// PartyInput identifies a sender or receiver on a shipment command.
type PartyInput struct {
	ID           string
	Name         string
	Organization string
}

// LocationInput carries a named position.
type LocationInput struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// MeasurementInput carries a value with its unit.
type MeasurementInput struct {
	Value float64
	Unit  string
}

// RouteInput describes the planned path for a shipment.
type RouteInput struct {
	Origin            LocationInput
	Destination       LocationInput
	Distance          MeasurementInput
	EstimatedDuration MeasurementInput
}

// VehicleInput describes the transport assigned to a shipment.
type VehicleInput struct {
	Number        string
	Type          string
	DriverName    string
	DriverContact string
}

// EnvironmentalReadingInput carries optional sensor data for a checkpoint.
type EnvironmentalReadingInput struct {
	Temperature *MeasurementInput
	Humidity    *MeasurementInput
	Pressure    *float64
	Vibration   *float64
}

// PhotoInput references externally stored checkpoint imagery.
type PhotoInput struct {
	Ref     string
	Caption string
}

// CreateShipmentInput registers a new shipment. ID is generated when empty;
// IdempotencyKey, when set, lets the durable orchestrator dedupe retries.
type CreateShipmentInput struct {
	ID                   string
	TrackingNumber       string
	From                 PartyInput
	To                   PartyInput
	DepartureTime        time.Time
	ExpectedArrival      time.Time
	Route                *RouteInput
	Vehicle              *VehicleInput
	SpecialInstructions  string
	HandlingRequirements []string
	Extensions           map[string]string
	IdempotencyKey       string
}

// AppendCheckpointInput records a handling event against a shipment. A zero
// Timestamp means "now".
type AppendCheckpointInput struct {
	ShipmentID  string
	Handler     PartyInput
	Location    LocationInput
	Timestamp   time.Time
	Remarks     string
	Environment *EnvironmentalReadingInput
	Photos      []PhotoInput
}

// ShipmentIdentifier addresses a single shipment.
type ShipmentIdentifier struct {
	ID string
}

// ResolveAlertInput marks one alert on a shipment as resolved.
type ResolveAlertInput struct {
	ShipmentID string
	AlertID    string
}

// SweepResult summarizes one delay-evaluation pass over active shipments.
type SweepResult struct {
	Evaluated    int
	Transitioned int
}
