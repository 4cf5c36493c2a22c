package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	shiptypes "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
)

const tracerName = "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/adapters/observability/service"

// Service decorates the shipments application port with tracing, logging,
// and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// Create registers a new shipment with instrumentation.
func (s *Service) Create(ctx context.Context, input shiptypes.CreateShipmentInput) (*shiptypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Create", attribute.String("shipment.from", input.From.ID))
	defer span.End()

	s.logInfo(ctx, "creating shipment", slog.String("shipment.from", input.From.ID), slog.String("shipment.to", input.To.ID))
	result, err := s.inner.Create(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create shipment", slog.String("shipment.from", input.From.ID))
	}
	if result != nil && result.Shipment != nil {
		s.metrics.recordCreated(ctx)
		s.logInfo(ctx, "shipment created",
			slog.String("shipment.id", result.Shipment.ID),
			slog.String("shipment.tracking_number", result.Shipment.TrackingNumber))
	}
	return result, nil
}

// GetByID loads a single shipment.
func (s *Service) GetByID(ctx context.Context, input shiptypes.ShipmentIdentifier) (*shiptypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.GetByID", attribute.String("shipment.id", input.ID))
	defer span.End()

	result, err := s.inner.GetByID(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load shipment", slog.String("shipment.id", input.ID))
	}
	return result, nil
}

// ListActive returns shipments that have not reached a terminal status.
func (s *Service) ListActive(ctx context.Context) ([]*shiptypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ListActive")
	defer span.End()

	result, err := s.inner.ListActive(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list active shipments")
	}
	span.SetAttributes(attribute.Int("shipment.result.count", len(result)))
	return result, nil
}

// AppendCheckpoint records a handling event against a shipment.
func (s *Service) AppendCheckpoint(ctx context.Context, input shiptypes.AppendCheckpointInput) (*shiptypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.AppendCheckpoint",
		attribute.String("shipment.id", input.ShipmentID),
		attribute.String("checkpoint.location", input.Location.Name),
	)
	defer span.End()

	s.logInfo(ctx, "appending checkpoint",
		slog.String("shipment.id", input.ShipmentID),
		slog.String("checkpoint.location", input.Location.Name))
	result, err := s.inner.AppendCheckpoint(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to append checkpoint", slog.String("shipment.id", input.ShipmentID))
	}
	if result != nil && result.Shipment != nil {
		s.metrics.recordCheckpoint(ctx, result.Shipment.Status)
		s.logInfo(ctx, "checkpoint appended",
			slog.String("shipment.id", result.Shipment.ID),
			slog.String("shipment.status", string(result.Shipment.Status)),
			slog.Int("shipment.checkpoints", len(result.Shipment.Checkpoints)))
	}
	return result, nil
}

// MarkDelivered confirms arrival for a shipment.
func (s *Service) MarkDelivered(ctx context.Context, input shiptypes.ShipmentIdentifier) (*shiptypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.MarkDelivered", attribute.String("shipment.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "marking shipment delivered", slog.String("shipment.id", input.ID))
	result, err := s.inner.MarkDelivered(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to mark shipment delivered", slog.String("shipment.id", input.ID))
	}
	if result != nil && result.Shipment != nil {
		s.metrics.recordDelivered(ctx, result.Shipment.OnTime())
		s.logInfo(ctx, "shipment delivered",
			slog.String("shipment.id", result.Shipment.ID),
			slog.Bool("shipment.on_time", result.Shipment.OnTime()))
	}
	return result, nil
}

// Cancel aborts a shipment.
func (s *Service) Cancel(ctx context.Context, input shiptypes.ShipmentIdentifier) (*shiptypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.Cancel", attribute.String("shipment.id", input.ID))
	defer span.End()

	s.logInfo(ctx, "cancelling shipment", slog.String("shipment.id", input.ID))
	result, err := s.inner.Cancel(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel shipment", slog.String("shipment.id", input.ID))
	}
	if result != nil && result.Shipment != nil {
		s.metrics.recordCancelled(ctx)
		s.logInfo(ctx, "shipment cancelled", slog.String("shipment.id", result.Shipment.ID))
	}
	return result, nil
}

// ResolveAlert marks an open alert as resolved.
func (s *Service) ResolveAlert(ctx context.Context, input shiptypes.ResolveAlertInput) (*shiptypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.ResolveAlert",
		attribute.String("shipment.id", input.ShipmentID),
		attribute.String("alert.id", input.AlertID),
	)
	defer span.End()

	s.logInfo(ctx, "resolving alert", slog.String("shipment.id", input.ShipmentID), slog.String("alert.id", input.AlertID))
	result, err := s.inner.ResolveAlert(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to resolve alert", slog.String("shipment.id", input.ShipmentID))
	}
	s.metrics.recordAlertResolved(ctx)
	return result, nil
}

// EvaluateDelay checks a single shipment against its expected arrival.
func (s *Service) EvaluateDelay(ctx context.Context, input shiptypes.ShipmentIdentifier) (*shiptypes.ShipmentProjection, error) {
	ctx, span := s.startSpan(ctx, "Service.EvaluateDelay", attribute.String("shipment.id", input.ID))
	defer span.End()

	result, err := s.inner.EvaluateDelay(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to evaluate delay", slog.String("shipment.id", input.ID))
	}
	if result != nil && result.Shipment != nil && result.Shipment.Status == domain.StatusDelayed {
		s.metrics.recordDelayed(ctx)
	}
	return result, nil
}

// EvaluateDelaySweep runs the delay evaluation across active shipments.
func (s *Service) EvaluateDelaySweep(ctx context.Context) (shiptypes.SweepResult, error) {
	ctx, span := s.startSpan(ctx, "Service.EvaluateDelaySweep")
	defer span.End()

	s.logInfo(ctx, "starting delay sweep")
	result, err := s.inner.EvaluateDelaySweep(ctx)
	if err != nil {
		return result, s.handleError(ctx, span, err, "delay sweep failed",
			slog.Int("sweep.evaluated", result.Evaluated),
			slog.Int("sweep.transitioned", result.Transitioned))
	}
	span.SetAttributes(
		attribute.Int("sweep.evaluated", result.Evaluated),
		attribute.Int("sweep.transitioned", result.Transitioned),
	)
	s.metrics.recordSweep(ctx, result)
	s.logInfo(ctx, "delay sweep completed",
		slog.Int("sweep.evaluated", result.Evaluated),
		slog.Int("sweep.transitioned", result.Transitioned))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := s.tracer
	if tracer == nil {
		tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	shipmentsCreated   metric.Int64Counter
	checkpointsAdded   metric.Int64Counter
	shipmentsDelivered metric.Int64Counter
	shipmentsCancelled metric.Int64Counter
	shipmentsDelayed   metric.Int64Counter
	alertsResolved     metric.Int64Counter
	sweepsEvaluated    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	created, _ := m.Int64Counter("shipments.service.created", metric.WithDescription("Number of shipments registered"))
	checkpoints, _ := m.Int64Counter("shipments.service.checkpoints", metric.WithDescription("Number of checkpoints appended"))
	delivered, _ := m.Int64Counter("shipments.service.delivered", metric.WithDescription("Number of shipments delivered"))
	cancelled, _ := m.Int64Counter("shipments.service.cancelled", metric.WithDescription("Number of shipments cancelled"))
	delayed, _ := m.Int64Counter("shipments.service.delayed", metric.WithDescription("Number of shipments transitioned to Delayed"))
	alerts, _ := m.Int64Counter("shipments.service.alerts_resolved", metric.WithDescription("Number of alerts resolved"))
	sweeps, _ := m.Int64Counter("shipments.service.sweep_evaluated", metric.WithDescription("Number of shipments evaluated by delay sweeps"))
	return serviceMetrics{
		shipmentsCreated:   created,
		checkpointsAdded:   checkpoints,
		shipmentsDelivered: delivered,
		shipmentsCancelled: cancelled,
		shipmentsDelayed:   delayed,
		alertsResolved:     alerts,
		sweepsEvaluated:    sweeps,
	}
}

func (m serviceMetrics) recordCreated(ctx context.Context) {
	addCounter(ctx, m.shipmentsCreated, 1)
}

func (m serviceMetrics) recordCheckpoint(ctx context.Context, status domain.Status) {
	addCounter(ctx, m.checkpointsAdded, 1, attribute.String("shipment.status", string(status)))
}

func (m serviceMetrics) recordDelivered(ctx context.Context, onTime bool) {
	addCounter(ctx, m.shipmentsDelivered, 1, attribute.Bool("shipment.on_time", onTime))
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	addCounter(ctx, m.shipmentsCancelled, 1)
}

func (m serviceMetrics) recordDelayed(ctx context.Context) {
	addCounter(ctx, m.shipmentsDelayed, 1)
}

func (m serviceMetrics) recordAlertResolved(ctx context.Context) {
	addCounter(ctx, m.alertsResolved, 1)
}

func (m serviceMetrics) recordSweep(ctx context.Context, result shiptypes.SweepResult) {
	addCounter(ctx, m.sweepsEvaluated, int64(result.Evaluated))
	addCounter(ctx, m.shipmentsDelayed, int64(result.Transitioned))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
