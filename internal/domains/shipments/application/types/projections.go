package types

import (
	"time"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/shared/projection"
)

// ShipmentProjection transports a domain aggregate together with its
// persistence metadata.
type ShipmentProjection struct {
	Shipment *domain.Shipment
	Metadata projection.Metadata
}

// NewShipmentProjection wraps an aggregate with persistence metadata.
func NewShipmentProjection(shipment *domain.Shipment, createdAt, updatedAt time.Time) *ShipmentProjection {
	if shipment == nil {
		return nil
	}
	return &ShipmentProjection{
		Shipment: shipment,
		Metadata: projection.Metadata{
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		},
	}
}

// Clone deep-copies the projection so adapters can hand out defensive copies.
func (p *ShipmentProjection) Clone() *ShipmentProjection {
	if p == nil {
		return nil
	}
	return &ShipmentProjection{
		Shipment: p.Shipment.Clone(),
		Metadata: p.Metadata,
	}
}

// CloneProjectionList duplicates a slice of projections.
func CloneProjectionList(sources []*ShipmentProjection) []*ShipmentProjection {
	if len(sources) == 0 {
		return nil
	}
	result := make([]*ShipmentProjection, 0, len(sources))
	for _, src := range sources {
		if src == nil {
			continue
		}
		result = append(result, src.Clone())
	}
	return result
}
