// Package shipmentsource adapts the shipments repository into the read-only
// view the analytics engine consumes.
package shipmentsource

import (
	"context"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/analytics/ports"
	shipdomain "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
	shipports "github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
)

// Source reads shipment aggregates for analytics without exposing the
// repository's write surface.
type Source struct {
	repo shipports.Repository
}

// New wraps the shipments repository.
func New(repo shipports.Repository) *Source {
	return &Source{repo: repo}
}

// Shipment loads a single aggregate.
func (s *Source) Shipment(ctx context.Context, id string) (*shipdomain.Shipment, error) {
	projection, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return projection.Shipment, nil
}

// DeliveredHistory returns up to limit delivered shipments originating from
// the party, most recent first.
func (s *Source) DeliveredHistory(ctx context.Context, originPartyID string, limit int) ([]*shipdomain.Shipment, error) {
	projections, err := s.repo.QueryDelivered(ctx, originPartyID, limit)
	if err != nil {
		return nil, err
	}
	shipments := make([]*shipdomain.Shipment, 0, len(projections))
	for _, projection := range projections {
		shipments = append(shipments, projection.Shipment)
	}
	return shipments, nil
}

var _ ports.ShipmentSource = (*Source)(nil)
