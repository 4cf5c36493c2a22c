package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/ports"
	shipdomain "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
)

// DefaultCacheTTL bounds how stale a cached per-party performance aggregate
// may get before the next read recomputes it.
const DefaultCacheTTL = 5 * time.Minute

// Service orchestrates the analytics use cases. All outputs are advisory:
// nothing here ever changes a shipment's lifecycle status, and recording the
// latest prediction or risk score on the aggregate is best effort.
type Service struct {
	source       ports.ShipmentSource
	cache        ports.PerformanceCache
	recorder     ports.AdvisoryRecorder
	logger       *slog.Logger
	clock        func() time.Time
	cacheTTL     time.Duration
	historyLimit int
}

// Option customizes the service wiring.
type Option func(*Service)

// WithCache attaches a TTL cache for per-party performance aggregates.
func WithCache(cache ports.PerformanceCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithRecorder attaches the advisory recorder that caches results on the
// shipment aggregate.
func WithRecorder(recorder ports.AdvisoryRecorder) Option {
	return func(s *Service) { s.recorder = recorder }
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

// WithCacheTTL overrides the performance cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithHistoryLimit bounds the delivered-shipment window per party.
func WithHistoryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// NewService wires the analytics service with its dependencies.
func NewService(source ports.ShipmentSource, opts ...Option) *Service {
	s := &Service{
		source:       source,
		logger:       slog.Default(),
		clock:        time.Now,
		cacheTTL:     DefaultCacheTTL,
		historyLimit: domain.DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PerformanceOf aggregates the party's recent delivered shipments, serving
// from cache when a fresh aggregate exists.
func (s *Service) PerformanceOf(ctx context.Context, originPartyID string) (domain.Performance, error) {
	if s.cache != nil {
		perf, ok, err := s.cache.Get(ctx, originPartyID)
		if err != nil {
			s.logger.WarnContext(ctx, "performance cache read failed",
				slog.String("partyId", originPartyID),
				slog.String("error", err.Error()))
		} else if ok {
			return perf, nil
		}
	}

	history, err := s.source.DeliveredHistory(ctx, originPartyID, s.historyLimit)
	if err != nil {
		return domain.Performance{}, mapSourceError(err)
	}
	perf := domain.ComputePerformance(history)

	if s.cache != nil {
		if err := s.cache.Put(ctx, originPartyID, perf, s.cacheTTL); err != nil {
			s.logger.WarnContext(ctx, "performance cache write failed",
				slog.String("partyId", originPartyID),
				slog.String("error", err.Error()))
		}
	}
	return perf, nil
}

// PredictDelay runs the rule engine against the shipment and its origin
// party's history, caching the result on the aggregate.
func (s *Service) PredictDelay(ctx context.Context, shipmentID string) (shipdomain.Prediction, error) {
	shipment, err := s.source.Shipment(ctx, shipmentID)
	if err != nil {
		return shipdomain.Prediction{}, mapSourceError(err)
	}
	perf, err := s.PerformanceOf(ctx, shipment.From.ID)
	if err != nil {
		return shipdomain.Prediction{}, err
	}
	prediction := domain.PredictDelay(domain.InputFromShipment(shipment, perf), s.clock())

	if s.recorder != nil {
		if err := s.recorder.RecordPrediction(ctx, shipmentID, prediction); err != nil {
			s.logger.WarnContext(ctx, "prediction record failed",
				slog.String("shipmentId", shipmentID),
				slog.String("error", err.Error()))
		}
	}
	return prediction, nil
}

// DetectAnomalies scans the shipment's latest checkpoint for out-of-band
// environmental readings.
func (s *Service) DetectAnomalies(ctx context.Context, shipmentID string) ([]domain.Anomaly, error) {
	shipment, err := s.source.Shipment(ctx, shipmentID)
	if err != nil {
		return nil, mapSourceError(err)
	}
	return domain.DetectAnomalies(shipment.LatestCheckpoint()), nil
}

// RiskScore composes the delay prediction, current anomalies, and historical
// success rate into a bounded score, caching it on the aggregate.
func (s *Service) RiskScore(ctx context.Context, shipmentID string) (shipdomain.RiskScore, error) {
	shipment, err := s.source.Shipment(ctx, shipmentID)
	if err != nil {
		return shipdomain.RiskScore{}, mapSourceError(err)
	}
	perf, err := s.PerformanceOf(ctx, shipment.From.ID)
	if err != nil {
		return shipdomain.RiskScore{}, err
	}
	prediction := domain.PredictDelay(domain.InputFromShipment(shipment, perf), s.clock())
	anomalies := domain.DetectAnomalies(shipment.LatestCheckpoint())
	risk := domain.ScoreRisk(prediction, len(anomalies), perf, s.clock())

	if s.recorder != nil {
		if err := s.recorder.RecordRisk(ctx, shipmentID, risk); err != nil {
			s.logger.WarnContext(ctx, "risk record failed",
				slog.String("shipmentId", shipmentID),
				slog.String("error", err.Error()))
		}
	}
	return risk, nil
}

var _ ports.Service = (*Service)(nil)
