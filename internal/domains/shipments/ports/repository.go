package ports

import (
	"context"
	"errors"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
)

// ErrNotFound is returned by repositories when no shipment matches.
var ErrNotFound = errors.New("shipment not found")

// Repository persists shipment aggregates. Save is an upsert keyed by the
// shipment ID; implementations must hand back defensive copies so callers
// cannot mutate stored state.
type Repository interface {
	Save(ctx context.Context, projection *types.ShipmentProjection) error
	GetByID(ctx context.Context, id string) (*types.ShipmentProjection, error)
	// ListActive returns shipments whose status still permits a delay
	// transition, for the sweeper.
	ListActive(ctx context.Context) ([]*types.ShipmentProjection, error)
	// QueryDelivered returns up to limit delivered shipments originating
	// from the given party, most recent first.
	QueryDelivered(ctx context.Context, originPartyID string, limit int) ([]*types.ShipmentProjection, error)
}
