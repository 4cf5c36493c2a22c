package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	analyticsdomain "github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
	"github.com/chaintrack/shipment-tracking-api/internal/shared/locker"
)

// Service orchestrates the shipment lifecycle use cases. All mutations of a
// shipment are serialized through a per-shipment lock so concurrent
// checkpoint appends and delay sweeps never interleave on the same aggregate.
type Service struct {
	repo     ports.Repository
	locks    *locker.Keyed
	notifier ports.NotificationSink
	logger   *slog.Logger
	clock    func() time.Time
	newID    func() string
}

// Option customizes the service wiring.
type Option func(*Service)

// WithNotifier attaches a sink for alert events. Publishing is best effort.
func WithNotifier(sink ports.NotificationSink) Option {
	return func(s *Service) { s.notifier = sink }
}

// WithLogger overrides the default structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock injects a deterministic time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator injects a deterministic ID source for tests.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewService wires the shipments service with its dependencies. The lock set
// is shared with any component that mutates shipments out of band, such as
// the analytics advisory recorder.
func NewService(repo ports.Repository, locks *locker.Keyed, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		locks:  locks,
		logger: slog.Default(),
		clock:  time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new shipment in Pending status.
func (s *Service) Create(ctx context.Context, input types.CreateShipmentInput) (*types.ShipmentProjection, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = s.newID()
	}
	tracking := strings.TrimSpace(input.TrackingNumber)
	if tracking == "" {
		tracking = generateTrackingNumber(s.newID)
	}
	shipment, err := domain.NewShipment(id, tracking, partyFromInput(input.From), partyFromInput(input.To), input.DepartureTime, input.ExpectedArrival)
	if err != nil {
		return nil, mapError(err)
	}
	shipment.SpecialInstructions = input.SpecialInstructions
	shipment.ReplaceHandlingRequirements(input.HandlingRequirements)
	shipment.SetExtensions(input.Extensions)
	if input.Route != nil {
		shipment.SetRoute(routeFromInput(*input.Route))
	}
	if input.Vehicle != nil {
		vehicle := domain.VehicleInfo(*input.Vehicle)
		shipment.SetVehicle(&vehicle)
	}

	now := s.clock().UTC()
	saved := types.NewShipmentProjection(shipment, now, now)
	if err := s.repo.Save(ctx, saved); err != nil {
		return nil, mapStorageError(err)
	}
	return saved, nil
}

// GetByID loads a single shipment.
func (s *Service) GetByID(ctx context.Context, input types.ShipmentIdentifier) (*types.ShipmentProjection, error) {
	projection, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return projection, nil
}

// ListActive returns shipments that have not reached a terminal status.
func (s *Service) ListActive(ctx context.Context) ([]*types.ShipmentProjection, error) {
	result, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, mapStorageError(err)
	}
	return result, nil
}

// AppendCheckpoint records a handling event. The first checkpoint promotes
// the shipment to InTransit; high-severity environmental anomalies on the new
// checkpoint are promoted to shipment alerts and published.
func (s *Service) AppendCheckpoint(ctx context.Context, input types.AppendCheckpointInput) (*types.ShipmentProjection, error) {
	unlock := s.locks.Lock(input.ShipmentID)
	defer unlock()

	projection, err := s.repo.GetByID(ctx, input.ShipmentID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	shipment := projection.Shipment
	now := s.clock().UTC()
	if err := shipment.AppendCheckpoint(checkpointFromInput(input), now); err != nil {
		return nil, mapError(err)
	}

	var raised []domain.Alert
	for _, anomaly := range analyticsdomain.DetectAnomalies(shipment.LatestCheckpoint()) {
		if anomaly.Severity != domain.SeverityHigh && anomaly.Severity != domain.SeverityCritical {
			continue
		}
		raised = append(raised, shipment.AddAlert(anomaly.Severity, anomaly.Type, anomaly.Message, now))
	}

	projection.Metadata.UpdatedAt = now
	if err := s.repo.Save(ctx, projection); err != nil {
		return nil, mapStorageError(err)
	}
	for _, alert := range raised {
		s.publishAlert(ctx, shipment, alert, now)
	}
	return projection, nil
}

// MarkDelivered confirms arrival for an InTransit or Delayed shipment.
func (s *Service) MarkDelivered(ctx context.Context, input types.ShipmentIdentifier) (*types.ShipmentProjection, error) {
	return s.mutate(ctx, input.ID, func(shipment *domain.Shipment, now time.Time) error {
		return shipment.MarkDelivered(now)
	})
}

// Cancel aborts a Pending or InTransit shipment.
func (s *Service) Cancel(ctx context.Context, input types.ShipmentIdentifier) (*types.ShipmentProjection, error) {
	return s.mutate(ctx, input.ID, func(shipment *domain.Shipment, _ time.Time) error {
		return shipment.Cancel()
	})
}

// ResolveAlert marks an open alert as resolved.
func (s *Service) ResolveAlert(ctx context.Context, input types.ResolveAlertInput) (*types.ShipmentProjection, error) {
	return s.mutate(ctx, input.ShipmentID, func(shipment *domain.Shipment, now time.Time) error {
		return shipment.ResolveAlert(input.AlertID, now)
	})
}

// EvaluateDelay checks a single shipment against its expected arrival,
// transitioning it to Delayed and raising an overrun alert when the window
// has passed. Repeated calls are no-ops once the shipment is Delayed.
func (s *Service) EvaluateDelay(ctx context.Context, input types.ShipmentIdentifier) (*types.ShipmentProjection, error) {
	unlock := s.locks.Lock(input.ID)
	defer unlock()

	projection, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, mapStorageError(err)
	}
	if _, err := s.evaluateDelayLocked(ctx, projection); err != nil {
		return nil, err
	}
	return projection, nil
}

// EvaluateDelaySweep runs the delay evaluation across every active shipment.
// The sweep honors context cancellation between shipments, so an aborted run
// leaves already-processed shipments transitioned.
func (s *Service) EvaluateDelaySweep(ctx context.Context) (types.SweepResult, error) {
	var result types.SweepResult
	active, err := s.repo.ListActive(ctx)
	if err != nil {
		return result, mapStorageError(err)
	}
	for _, stale := range active {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		transitioned, err := s.evaluateDelayByID(ctx, stale.Shipment.ID)
		if err != nil {
			return result, err
		}
		result.Evaluated++
		if transitioned {
			result.Transitioned++
		}
	}
	return result, nil
}

// RecordPrediction caches the latest advisory prediction on the shipment.
// It shares the per-shipment lock with lifecycle mutations.
func (s *Service) RecordPrediction(ctx context.Context, shipmentID string, prediction domain.Prediction) error {
	_, err := s.mutate(ctx, shipmentID, func(shipment *domain.Shipment, _ time.Time) error {
		shipment.RecordPrediction(prediction)
		return nil
	})
	return err
}

// RecordRisk caches the latest advisory risk score on the shipment.
func (s *Service) RecordRisk(ctx context.Context, shipmentID string, risk domain.RiskScore) error {
	_, err := s.mutate(ctx, shipmentID, func(shipment *domain.Shipment, _ time.Time) error {
		shipment.RecordRisk(risk)
		return nil
	})
	return err
}

func (s *Service) evaluateDelayByID(ctx context.Context, id string) (bool, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	projection, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, mapStorageError(err)
	}
	return s.evaluateDelayLocked(ctx, projection)
}

func (s *Service) evaluateDelayLocked(ctx context.Context, projection *types.ShipmentProjection) (bool, error) {
	now := s.clock().UTC()
	alert, transitioned := projection.Shipment.EvaluateDelay(now)
	if !transitioned {
		return false, nil
	}
	projection.Metadata.UpdatedAt = now
	if err := s.repo.Save(ctx, projection); err != nil {
		return false, mapStorageError(err)
	}
	s.publishAlert(ctx, projection.Shipment, *alert, now)
	return true, nil
}

func (s *Service) mutate(ctx context.Context, id string, op func(*domain.Shipment, time.Time) error) (*types.ShipmentProjection, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	projection, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapStorageError(err)
	}
	now := s.clock().UTC()
	if err := op(projection.Shipment, now); err != nil {
		return nil, mapError(err)
	}
	projection.Metadata.UpdatedAt = now
	if err := s.repo.Save(ctx, projection); err != nil {
		return nil, mapStorageError(err)
	}
	return projection, nil
}

func (s *Service) publishAlert(ctx context.Context, shipment *domain.Shipment, alert domain.Alert, now time.Time) {
	if s.notifier == nil {
		return
	}
	event := domain.AlertEvent{
		ShipmentID:     shipment.ID,
		TrackingNumber: shipment.TrackingNumber,
		Alert:          alert,
		OccurredAt:     now,
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "alert publish failed",
			slog.String("shipmentId", shipment.ID),
			slog.String("alertType", alert.Type),
			slog.String("error", err.Error()))
	}
}

func generateTrackingNumber(newID func() string) string {
	raw := strings.ReplaceAll(newID(), "-", "")
	if len(raw) > 10 {
		raw = raw[:10]
	}
	return "CT-" + strings.ToUpper(raw)
}

func partyFromInput(in types.PartyInput) domain.Party {
	return domain.Party(in)
}

func locationFromInput(in types.LocationInput) domain.Location {
	return domain.Location{
		Name: in.Name,
		Coordinates: domain.Coordinates{
			Latitude:  in.Latitude,
			Longitude: in.Longitude,
		},
	}
}

func routeFromInput(in types.RouteInput) *domain.Route {
	return &domain.Route{
		Origin:            locationFromInput(in.Origin),
		Destination:       locationFromInput(in.Destination),
		Distance:          domain.Measurement(in.Distance),
		EstimatedDuration: domain.Measurement(in.EstimatedDuration),
	}
}

func checkpointFromInput(in types.AppendCheckpointInput) domain.Checkpoint {
	cp := domain.Checkpoint{
		Handler:   partyFromInput(in.Handler),
		Location:  locationFromInput(in.Location),
		Timestamp: in.Timestamp,
		Remarks:   in.Remarks,
	}
	if in.Environment != nil {
		env := &domain.EnvironmentalReading{}
		if in.Environment.Temperature != nil {
			m := domain.Measurement(*in.Environment.Temperature)
			env.Temperature = &m
		}
		if in.Environment.Humidity != nil {
			m := domain.Measurement(*in.Environment.Humidity)
			env.Humidity = &m
		}
		if in.Environment.Pressure != nil {
			p := *in.Environment.Pressure
			env.Pressure = &p
		}
		if in.Environment.Vibration != nil {
			v := *in.Environment.Vibration
			env.Vibration = &v
		}
		cp.Environment = env
	}
	for _, photo := range in.Photos {
		cp.Photos = append(cp.Photos, domain.PhotoRef{Ref: photo.Ref, Caption: photo.Caption})
	}
	return cp
}

var _ ports.Service = (*Service)(nil)
