package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a shipment.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusInTransit Status = "InTransit"
	StatusDelivered Status = "Delivered"
	StatusDelayed   Status = "Delayed"
	StatusCancelled Status = "Cancelled"
)

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Severity grades alerts, anomalies, and risk bands.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Party identifies a supply-chain participant at one end of a shipment.
type Party struct {
	ID           string
	Name         string
	Organization string
}

// Coordinates is a WGS84 position.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Location names a place and pins it to coordinates.
type Location struct {
	Name        string
	Coordinates Coordinates
}

// Measurement carries a value with an explicit unit; units are never inferred
// from magnitude.
type Measurement struct {
	Value float64
	Unit  string
}

// EnvironmentalReading captures sensor data recorded at a checkpoint.
type EnvironmentalReading struct {
	Temperature *Measurement
	Humidity    *Measurement
	Pressure    *float64
	Vibration   *float64
}

// PhotoRef points at externally stored checkpoint imagery. The reference is
// opaque to the core.
type PhotoRef struct {
	Ref        string
	Caption    string
	UploadedAt time.Time
}

// Checkpoint is an immutable record of a handling event. Once appended to a
// shipment it is never edited or removed.
type Checkpoint struct {
	Handler     Party
	Location    Location
	Timestamp   time.Time
	Remarks     string
	Environment *EnvironmentalReading
	Photos      []PhotoRef
}

// Route describes the planned path between origin and destination.
type Route struct {
	Origin            Location
	Destination       Location
	Distance          Measurement
	EstimatedDuration Measurement
}

// CurrentLocation is the position derived from the latest checkpoint.
type CurrentLocation struct {
	Location    Location
	LastUpdated time.Time
}

// VehicleInfo describes the transport handling the shipment.
type VehicleInfo struct {
	Number        string
	Type          string
	DriverName    string
	DriverContact string
}

// Alert records a condition that crossed an alerting threshold. Resolution is
// an explicit external action, never automatic.
type Alert struct {
	ID          string
	Severity    Severity
	Type        string
	Message     string
	TriggeredAt time.Time
	ResolvedAt  *time.Time
	Resolved    bool
}

// Prediction is the advisory output of the delay prediction engine. The
// latest value is cached on the shipment but never gates a transition.
type Prediction struct {
	DelayHours     int
	Confidence     int
	Factors        []string
	RiskLevel      Severity
	Recommendation string
	Method         string
	ComputedAt     time.Time
}

// RiskBreakdown itemizes the inputs that produced a risk score.
type RiskBreakdown struct {
	PredictedDelayHours int
	AnomalyCount        int
	SuccessRate         float64
}

// RiskScore is a bounded 0-100 advisory score with a severity band.
type RiskScore struct {
	Score      int
	Level      Severity
	Breakdown  RiskBreakdown
	ComputedAt time.Time
}

// Alert types raised by the core.
const (
	AlertTypeDelay       = "Delay"
	AlertTypeTemperature = "temperature"
	AlertTypeHumidity    = "humidity"
)

var (
	ErrEmptyID              = errors.New("shipment id is required")
	ErrMissingParty         = errors.New("origin and destination parties are required")
	ErrArrivalWindow        = errors.New("expected arrival must be after departure time")
	ErrTerminalStatus       = errors.New("shipment is in a terminal status")
	ErrNotDeliverable       = errors.New("shipment can only be delivered from InTransit or Delayed")
	ErrNotCancellable       = errors.New("shipment can only be cancelled from Pending or InTransit")
	ErrCheckpointLocation   = errors.New("checkpoint location name is required")
	ErrCheckpointCoordinate = errors.New("checkpoint coordinates are out of range")
	ErrAlertNotFound        = errors.New("alert not found on shipment")
	ErrAlertResolved        = errors.New("alert is already resolved")
)

// Shipment is the aggregate owned by the lifecycle state machine. Core fields
// become immutable once a terminal status is reached; alerts may still be
// appended and resolved afterwards for audit purposes.
type Shipment struct {
	ID                   string
	TrackingNumber       string
	From                 Party
	To                   Party
	DepartureTime        time.Time
	ExpectedArrival      time.Time
	ActualArrival        *time.Time
	Status               Status
	Checkpoints          []Checkpoint
	Route                *Route
	CurrentLocation      *CurrentLocation
	Vehicle              *VehicleInfo
	SpecialInstructions  string
	HandlingRequirements []string
	LastPrediction       *Prediction
	LastRisk             *RiskScore
	Alerts               []Alert
	// Extensions holds custom fields the core does not interpret.
	Extensions map[string]string
}

// NewShipment validates creation invariants and builds a Pending shipment.
// ExpectedArrival must be strictly after DepartureTime.
func NewShipment(id, trackingNumber string, from, to Party, departure, expectedArrival time.Time) (*Shipment, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrEmptyID
	}
	if strings.TrimSpace(from.ID) == "" || strings.TrimSpace(to.ID) == "" {
		return nil, ErrMissingParty
	}
	if !expectedArrival.After(departure) {
		return nil, ErrArrivalWindow
	}
	return &Shipment{
		ID:              id,
		TrackingNumber:  trackingNumber,
		From:            from,
		To:              to,
		DepartureTime:   departure.UTC(),
		ExpectedArrival: expectedArrival.UTC(),
		Status:          StatusPending,
	}, nil
}

// AppendCheckpoint records a handling event. It is the single mutation path
// for the journal: checkpoints are never reordered or deleted. The first
// checkpoint promotes a Pending shipment to InTransit, and every checkpoint
// refreshes the derived current location.
func (s *Shipment) AppendCheckpoint(cp Checkpoint, now time.Time) error {
	if s.Status.Terminal() {
		return ErrTerminalStatus
	}
	if err := validateCheckpoint(cp); err != nil {
		return err
	}
	if cp.Timestamp.IsZero() {
		cp.Timestamp = now
	}
	cp.Timestamp = cp.Timestamp.UTC()
	s.Checkpoints = append(s.Checkpoints, cp)
	if s.Status == StatusPending {
		s.Status = StatusInTransit
	}
	s.CurrentLocation = &CurrentLocation{
		Location:    cp.Location,
		LastUpdated: now.UTC(),
	}
	return nil
}

func validateCheckpoint(cp Checkpoint) error {
	if strings.TrimSpace(cp.Location.Name) == "" {
		return ErrCheckpointLocation
	}
	lat, lon := cp.Location.Coordinates.Latitude, cp.Location.Coordinates.Longitude
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return ErrCheckpointCoordinate
	}
	return nil
}

// MarkDelivered confirms arrival. Legal only from InTransit or Delayed;
// ActualArrival is set exactly here, keeping the invariant that it exists
// if and only if the shipment is Delivered.
func (s *Shipment) MarkDelivered(now time.Time) error {
	if s.Status != StatusInTransit && s.Status != StatusDelayed {
		return ErrNotDeliverable
	}
	arrival := now.UTC()
	s.ActualArrival = &arrival
	s.Status = StatusDelivered
	return nil
}

// Cancel aborts a shipment that has not progressed past transit.
func (s *Shipment) Cancel() error {
	if s.Status != StatusPending && s.Status != StatusInTransit {
		return ErrNotCancellable
	}
	s.Status = StatusCancelled
	return nil
}

// EvaluateDelay transitions InTransit -> Delayed once the expected arrival
// has passed, raising a single overrun alert. It never reverses the
// transition and is a no-op on any other status, which makes repeated sweeps
// idempotent. The raised alert is returned when the transition fires.
func (s *Shipment) EvaluateDelay(now time.Time) (*Alert, bool) {
	if s.Status != StatusInTransit {
		return nil, false
	}
	if !now.After(s.ExpectedArrival) {
		return nil, false
	}
	overrun := int(now.Sub(s.ExpectedArrival).Hours())
	severity := SeverityHigh
	if overrun > 24 {
		severity = SeverityCritical
	}
	alert := s.AddAlert(severity, AlertTypeDelay, fmt.Sprintf("Shipment is delayed by %d hours", overrun), now)
	s.Status = StatusDelayed
	return &alert, true
}

// AddAlert appends an unresolved alert and returns it.
func (s *Shipment) AddAlert(severity Severity, alertType, message string, now time.Time) Alert {
	alert := Alert{
		ID:          uuid.NewString(),
		Severity:    severity,
		Type:        alertType,
		Message:     message,
		TriggeredAt: now.UTC(),
	}
	s.Alerts = append(s.Alerts, alert)
	return alert
}

// ResolveAlert marks an open alert as resolved.
func (s *Shipment) ResolveAlert(alertID string, now time.Time) error {
	for i := range s.Alerts {
		if s.Alerts[i].ID != alertID {
			continue
		}
		if s.Alerts[i].Resolved {
			return ErrAlertResolved
		}
		resolved := now.UTC()
		s.Alerts[i].Resolved = true
		s.Alerts[i].ResolvedAt = &resolved
		return nil
	}
	return ErrAlertNotFound
}

// Progress returns the display-only completion percentage. It is capped at
// 99 while undelivered so that only explicit delivery confirmation claims
// 100, even when elapsed time exceeds the expected window.
func (s *Shipment) Progress(now time.Time) int {
	switch s.Status {
	case StatusPending:
		return 0
	case StatusDelivered:
		return 100
	}
	window := s.ExpectedArrival.Sub(s.DepartureTime)
	if window <= 0 {
		// Creation invariant makes this unreachable; guard anyway.
		return 0
	}
	elapsed := now.Sub(s.DepartureTime)
	pct := int(math.Floor(float64(elapsed) / float64(window) * 100))
	if pct < 0 {
		return 0
	}
	if pct > 99 {
		return 99
	}
	return pct
}

// OverrunHours returns max(0, actualArrival - expectedArrival) in whole
// hours, or 0 when the shipment has not arrived.
func (s *Shipment) OverrunHours() float64 {
	if s.ActualArrival == nil {
		return 0
	}
	overrun := s.ActualArrival.Sub(s.ExpectedArrival).Hours()
	if overrun < 0 {
		return 0
	}
	return overrun
}

// OnTime reports whether a delivered shipment arrived within its window.
func (s *Shipment) OnTime() bool {
	return s.ActualArrival != nil && !s.ActualArrival.After(s.ExpectedArrival)
}

// DurationHours returns the realized transit duration for delivered
// shipments, mirroring the tracking UI's duration readout.
func (s *Shipment) DurationHours() (float64, bool) {
	if s.ActualArrival == nil {
		return 0, false
	}
	return s.ActualArrival.Sub(s.DepartureTime).Hours(), true
}

// LatestCheckpoint returns the most recently appended checkpoint, or nil.
func (s *Shipment) LatestCheckpoint() *Checkpoint {
	if len(s.Checkpoints) == 0 {
		return nil
	}
	return &s.Checkpoints[len(s.Checkpoints)-1]
}

// SetRoute replaces the planned route.
func (s *Shipment) SetRoute(route *Route) {
	if route == nil {
		s.Route = nil
		return
	}
	copy := *route
	s.Route = &copy
}

// SetVehicle replaces the transport details.
func (s *Shipment) SetVehicle(vehicle *VehicleInfo) {
	if vehicle == nil {
		s.Vehicle = nil
		return
	}
	copy := *vehicle
	s.Vehicle = &copy
}

// ReplaceHandlingRequirements swaps the handling requirement set.
func (s *Shipment) ReplaceHandlingRequirements(reqs []string) {
	s.HandlingRequirements = append([]string{}, reqs...)
}

// SetExtensions stores custom fields without interpreting them.
func (s *Shipment) SetExtensions(ext map[string]string) {
	if len(ext) == 0 {
		s.Extensions = nil
		return
	}
	copy := make(map[string]string, len(ext))
	for k, v := range ext {
		copy[k] = v
	}
	s.Extensions = copy
}

// RecordPrediction caches the latest advisory prediction.
func (s *Shipment) RecordPrediction(p Prediction) {
	copy := p
	copy.Factors = append([]string{}, p.Factors...)
	s.LastPrediction = &copy
}

// RecordRisk caches the latest advisory risk score.
func (s *Shipment) RecordRisk(r RiskScore) {
	copy := r
	s.LastRisk = &copy
}

// Clone returns a deep copy so repositories can hand out defensive copies.
func (s *Shipment) Clone() *Shipment {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Checkpoints = cloneCheckpoints(s.Checkpoints)
	clone.Alerts = append([]Alert(nil), s.Alerts...)
	clone.HandlingRequirements = append([]string(nil), s.HandlingRequirements...)
	if s.ActualArrival != nil {
		arrival := *s.ActualArrival
		clone.ActualArrival = &arrival
	}
	if s.Route != nil {
		route := *s.Route
		clone.Route = &route
	}
	if s.CurrentLocation != nil {
		loc := *s.CurrentLocation
		clone.CurrentLocation = &loc
	}
	if s.Vehicle != nil {
		vehicle := *s.Vehicle
		clone.Vehicle = &vehicle
	}
	if s.LastPrediction != nil {
		pred := *s.LastPrediction
		pred.Factors = append([]string(nil), s.LastPrediction.Factors...)
		clone.LastPrediction = &pred
	}
	if s.LastRisk != nil {
		risk := *s.LastRisk
		clone.LastRisk = &risk
	}
	if len(s.Extensions) > 0 {
		ext := make(map[string]string, len(s.Extensions))
		for k, v := range s.Extensions {
			ext[k] = v
		}
		clone.Extensions = ext
	}
	return &clone
}

func cloneCheckpoints(cps []Checkpoint) []Checkpoint {
	if len(cps) == 0 {
		return nil
	}
	out := make([]Checkpoint, len(cps))
	for i, cp := range cps {
		out[i] = cp
		out[i].Photos = append([]PhotoRef(nil), cp.Photos...)
		if cp.Environment != nil {
			env := *cp.Environment
			if cp.Environment.Temperature != nil {
				t := *cp.Environment.Temperature
				env.Temperature = &t
			}
			if cp.Environment.Humidity != nil {
				h := *cp.Environment.Humidity
				env.Humidity = &h
			}
			if cp.Environment.Pressure != nil {
				p := *cp.Environment.Pressure
				env.Pressure = &p
			}
			if cp.Environment.Vibration != nil {
				v := *cp.Environment.Vibration
				env.Vibration = &v
			}
			out[i].Environment = &env
		}
	}
	return out
}
