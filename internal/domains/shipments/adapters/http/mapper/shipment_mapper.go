package mapper

import (
	"time"

	shiptypes "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
)

// Party is the HTTP representation of a shipment party.
type Party struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Location is the HTTP representation of a named position.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// Measurement carries a value with its unit.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Route mirrors the planned path payload.
type Route struct {
	Origin            Location     `json:"origin"`
	Destination       Location     `json:"destination"`
	Distance          *Measurement `json:"distance,omitempty"`
	EstimatedDuration *Measurement `json:"estimatedDuration,omitempty"`
}

// Vehicle mirrors the transport payload.
type Vehicle struct {
	Number        string `json:"number,omitempty"`
	Type          string `json:"type,omitempty"`
	DriverName    string `json:"driverName,omitempty"`
	DriverContact string `json:"driverContact,omitempty"`
}

// EnvironmentalReading mirrors the optional sensor payload of a checkpoint.
type EnvironmentalReading struct {
	Temperature *Measurement `json:"temperature,omitempty"`
	Humidity    *Measurement `json:"humidity,omitempty"`
	Pressure    *float64     `json:"pressure,omitempty"`
	Vibration   *float64     `json:"vibration,omitempty"`
}

// Photo references externally stored checkpoint imagery.
type Photo struct {
	Ref        string    `json:"ref"`
	Caption    string    `json:"caption,omitempty"`
	UploadedAt time.Time `json:"uploadedAt,omitempty"`
}

// Checkpoint is the HTTP representation of a handling event.
type Checkpoint struct {
	Handler     *Party                `json:"handler,omitempty"`
	Location    Location              `json:"location"`
	Timestamp   time.Time             `json:"timestamp,omitempty"`
	Remarks     string                `json:"remarks,omitempty"`
	Environment *EnvironmentalReading `json:"environment,omitempty"`
	Photos      []Photo               `json:"photos,omitempty"`
}

// Alert is the HTTP representation of a raised alert.
type Alert struct {
	ID          string     `json:"id"`
	Severity    string     `json:"severity"`
	Type        string     `json:"type"`
	Message     string     `json:"message"`
	TriggeredAt time.Time  `json:"triggeredAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	Resolved    bool       `json:"resolved"`
}

// Prediction is the HTTP representation of a delay prediction.
type Prediction struct {
	DelayHours     int       `json:"predictedDelayHours"`
	Confidence     int       `json:"confidence"`
	Factors        []string  `json:"factors"`
	RiskLevel      string    `json:"riskLevel"`
	Recommendation string    `json:"recommendation"`
	Method         string    `json:"method"`
	ComputedAt     time.Time `json:"computedAt"`
}

// RiskScore is the HTTP representation of a composite risk score.
type RiskScore struct {
	Score      int           `json:"score"`
	Level      string        `json:"level"`
	Breakdown  RiskBreakdown `json:"breakdown"`
	ComputedAt time.Time     `json:"computedAt"`
}

// RiskBreakdown itemizes risk score inputs.
type RiskBreakdown struct {
	PredictedDelayHours int     `json:"predictedDelayHours"`
	AnomalyCount        int     `json:"anomalyCount"`
	SuccessRate         float64 `json:"successRate"`
}

// CreateShipment captures the inbound registration payload.
type CreateShipment struct {
	TrackingNumber       string            `json:"trackingNumber,omitempty"`
	From                 Party             `json:"from"`
	To                   Party             `json:"to"`
	DepartureTime        time.Time         `json:"departureTime"`
	ExpectedArrival      time.Time         `json:"expectedArrival"`
	Route                *Route            `json:"route,omitempty"`
	Vehicle              *Vehicle          `json:"vehicle,omitempty"`
	SpecialInstructions  string            `json:"specialInstructions,omitempty"`
	HandlingRequirements []string          `json:"handlingRequirements,omitempty"`
	Extensions           map[string]string `json:"extensions,omitempty"`
	IdempotencyKey       string            `json:"idempotencyKey,omitempty"`
}

// AppendCheckpoint captures the inbound checkpoint payload.
type AppendCheckpoint struct {
	Handler     *Party                `json:"handler,omitempty"`
	Location    Location              `json:"location"`
	Timestamp   time.Time             `json:"timestamp,omitempty"`
	Remarks     string                `json:"remarks,omitempty"`
	Environment *EnvironmentalReading `json:"environment,omitempty"`
	Photos      []Photo               `json:"photos,omitempty"`
}

// Shipment is the outbound representation of the aggregate enriched with
// derived fields the tracking UI consumes.
type Shipment struct {
	ID                   string            `json:"id"`
	TrackingNumber       string            `json:"trackingNumber"`
	From                 Party             `json:"from"`
	To                   Party             `json:"to"`
	DepartureTime        time.Time         `json:"departureTime"`
	ExpectedArrival      time.Time         `json:"expectedArrival"`
	ActualArrival        *time.Time        `json:"actualArrival,omitempty"`
	Status               string            `json:"status"`
	Progress             int               `json:"progress"`
	Checkpoints          []Checkpoint      `json:"checkpoints"`
	Route                *Route            `json:"route,omitempty"`
	CurrentLocation      *Location         `json:"currentLocation,omitempty"`
	Vehicle              *Vehicle          `json:"vehicle,omitempty"`
	SpecialInstructions  string            `json:"specialInstructions,omitempty"`
	HandlingRequirements []string          `json:"handlingRequirements,omitempty"`
	LastPrediction       *Prediction       `json:"lastPrediction,omitempty"`
	LastRisk             *RiskScore        `json:"lastRisk,omitempty"`
	Alerts               []Alert           `json:"alerts,omitempty"`
	Extensions           map[string]string `json:"extensions,omitempty"`
	CreatedAt            time.Time         `json:"createdAt,omitempty"`
	UpdatedAt            time.Time         `json:"updatedAt,omitempty"`
}

// ToCreateInput converts the registration payload into the application DTO.
func ToCreateInput(payload CreateShipment) shiptypes.CreateShipmentInput {
	input := shiptypes.CreateShipmentInput{
		TrackingNumber:       payload.TrackingNumber,
		From:                 toPartyInput(payload.From),
		To:                   toPartyInput(payload.To),
		DepartureTime:        payload.DepartureTime,
		ExpectedArrival:      payload.ExpectedArrival,
		SpecialInstructions:  payload.SpecialInstructions,
		HandlingRequirements: append([]string(nil), payload.HandlingRequirements...),
		Extensions:           cloneExtensions(payload.Extensions),
		IdempotencyKey:       payload.IdempotencyKey,
	}
	if payload.Route != nil {
		route := shiptypes.RouteInput{
			Origin:      toLocationInput(payload.Route.Origin),
			Destination: toLocationInput(payload.Route.Destination),
		}
		if payload.Route.Distance != nil {
			route.Distance = shiptypes.MeasurementInput(*payload.Route.Distance)
		}
		if payload.Route.EstimatedDuration != nil {
			route.EstimatedDuration = shiptypes.MeasurementInput(*payload.Route.EstimatedDuration)
		}
		input.Route = &route
	}
	if payload.Vehicle != nil {
		vehicle := shiptypes.VehicleInput(*payload.Vehicle)
		input.Vehicle = &vehicle
	}
	return input
}

// ToAppendCheckpointInput converts the checkpoint payload into the
// application DTO.
func ToAppendCheckpointInput(shipmentID string, payload AppendCheckpoint) shiptypes.AppendCheckpointInput {
	input := shiptypes.AppendCheckpointInput{
		ShipmentID: shipmentID,
		Location:   toLocationInput(payload.Location),
		Timestamp:  payload.Timestamp,
		Remarks:    payload.Remarks,
	}
	if payload.Handler != nil {
		input.Handler = toPartyInput(*payload.Handler)
	}
	if payload.Environment != nil {
		env := shiptypes.EnvironmentalReadingInput{
			Pressure:  clonePointer(payload.Environment.Pressure),
			Vibration: clonePointer(payload.Environment.Vibration),
		}
		if payload.Environment.Temperature != nil {
			m := shiptypes.MeasurementInput(*payload.Environment.Temperature)
			env.Temperature = &m
		}
		if payload.Environment.Humidity != nil {
			m := shiptypes.MeasurementInput(*payload.Environment.Humidity)
			env.Humidity = &m
		}
		input.Environment = &env
	}
	for _, photo := range payload.Photos {
		input.Photos = append(input.Photos, shiptypes.PhotoInput{Ref: photo.Ref, Caption: photo.Caption})
	}
	return input
}

// FromProjection maps a projection into a transport shipment enriched with
// persistence metadata, computing progress at the given instant.
func FromProjection(projection *shiptypes.ShipmentProjection, now time.Time) Shipment {
	shipment := FromDomainShipment(projection.Shipment, now)
	shipment.CreatedAt = projection.Metadata.CreatedAt
	shipment.UpdatedAt = projection.Metadata.UpdatedAt
	return shipment
}

// FromProjectionList maps a slice of projections into transport shipments.
func FromProjectionList(list []*shiptypes.ShipmentProjection, now time.Time) []Shipment {
	result := make([]Shipment, 0, len(list))
	for _, projection := range list {
		result = append(result, FromProjection(projection, now))
	}
	return result
}

// FromDomainShipment maps the aggregate into its transport representation.
func FromDomainShipment(s *domain.Shipment, now time.Time) Shipment {
	out := Shipment{
		ID:                   s.ID,
		TrackingNumber:       s.TrackingNumber,
		From:                 fromParty(s.From),
		To:                   fromParty(s.To),
		DepartureTime:        s.DepartureTime,
		ExpectedArrival:      s.ExpectedArrival,
		ActualArrival:        s.ActualArrival,
		Status:               string(s.Status),
		Progress:             s.Progress(now),
		Checkpoints:          fromCheckpoints(s.Checkpoints),
		SpecialInstructions:  s.SpecialInstructions,
		HandlingRequirements: append([]string(nil), s.HandlingRequirements...),
		LastPrediction:       FromPrediction(s.LastPrediction),
		LastRisk:             FromRiskScore(s.LastRisk),
		Alerts:               fromAlerts(s.Alerts),
		Extensions:           cloneExtensions(s.Extensions),
	}
	if s.Route != nil {
		route := Route{
			Origin:      fromLocation(s.Route.Origin),
			Destination: fromLocation(s.Route.Destination),
		}
		if s.Route.Distance != (domain.Measurement{}) {
			m := Measurement(s.Route.Distance)
			route.Distance = &m
		}
		if s.Route.EstimatedDuration != (domain.Measurement{}) {
			m := Measurement(s.Route.EstimatedDuration)
			route.EstimatedDuration = &m
		}
		out.Route = &route
	}
	if s.CurrentLocation != nil {
		loc := fromLocation(s.CurrentLocation.Location)
		out.CurrentLocation = &loc
	}
	if s.Vehicle != nil {
		vehicle := Vehicle(*s.Vehicle)
		out.Vehicle = &vehicle
	}
	return out
}

// FromPrediction maps a prediction value, tolerating nil.
func FromPrediction(p *domain.Prediction) *Prediction {
	if p == nil {
		return nil
	}
	return &Prediction{
		DelayHours:     p.DelayHours,
		Confidence:     p.Confidence,
		Factors:        append([]string(nil), p.Factors...),
		RiskLevel:      string(p.RiskLevel),
		Recommendation: p.Recommendation,
		Method:         p.Method,
		ComputedAt:     p.ComputedAt,
	}
}

// FromPredictionValue maps a prediction returned by the analytics service.
func FromPredictionValue(p domain.Prediction) Prediction {
	return *FromPrediction(&p)
}

// FromRiskScore maps a risk score value, tolerating nil.
func FromRiskScore(r *domain.RiskScore) *RiskScore {
	if r == nil {
		return nil
	}
	return &RiskScore{
		Score:      r.Score,
		Level:      string(r.Level),
		Breakdown:  RiskBreakdown(r.Breakdown),
		ComputedAt: r.ComputedAt,
	}
}

// FromRiskScoreValue maps a risk score returned by the analytics service.
func FromRiskScoreValue(r domain.RiskScore) RiskScore {
	return *FromRiskScore(&r)
}

func toPartyInput(p Party) shiptypes.PartyInput {
	return shiptypes.PartyInput(p)
}

func fromParty(p domain.Party) Party {
	return Party(p)
}

func toLocationInput(l Location) shiptypes.LocationInput {
	return shiptypes.LocationInput(l)
}

func fromLocation(l domain.Location) Location {
	return Location{
		Name:      l.Name,
		Latitude:  l.Coordinates.Latitude,
		Longitude: l.Coordinates.Longitude,
	}
}

func fromCheckpoints(cps []domain.Checkpoint) []Checkpoint {
	result := make([]Checkpoint, 0, len(cps))
	for _, cp := range cps {
		out := Checkpoint{
			Location:  fromLocation(cp.Location),
			Timestamp: cp.Timestamp,
			Remarks:   cp.Remarks,
		}
		if cp.Handler != (domain.Party{}) {
			handler := fromParty(cp.Handler)
			out.Handler = &handler
		}
		if cp.Environment != nil {
			env := EnvironmentalReading{
				Pressure:  clonePointer(cp.Environment.Pressure),
				Vibration: clonePointer(cp.Environment.Vibration),
			}
			if cp.Environment.Temperature != nil {
				m := Measurement(*cp.Environment.Temperature)
				env.Temperature = &m
			}
			if cp.Environment.Humidity != nil {
				m := Measurement(*cp.Environment.Humidity)
				env.Humidity = &m
			}
			out.Environment = &env
		}
		for _, photo := range cp.Photos {
			out.Photos = append(out.Photos, Photo{Ref: photo.Ref, Caption: photo.Caption, UploadedAt: photo.UploadedAt})
		}
		result = append(result, out)
	}
	return result
}

func fromAlerts(alerts []domain.Alert) []Alert {
	result := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		result = append(result, Alert{
			ID:          a.ID,
			Severity:    string(a.Severity),
			Type:        a.Type,
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt,
			ResolvedAt:  a.ResolvedAt,
			Resolved:    a.Resolved,
		})
	}
	return result
}

func clonePointer(value *float64) *float64 {
	if value == nil {
		return nil
	}
	copy := *value
	return &copy
}

func cloneExtensions(ext map[string]string) map[string]string {
	if len(ext) == 0 {
		return nil
	}
	copy := make(map[string]string, len(ext))
	for k, v := range ext {
		copy[k] = v
	}
	return copy
}
