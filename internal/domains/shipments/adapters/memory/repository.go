// Package memory provides in-memory adapters used in tests and as the
// fallback wiring when no database is configured.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/application/types"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
)

// Repository stores shipment projections in process memory. All reads hand
// out deep copies so callers can never mutate stored state in place.
type Repository struct {
	mu    sync.RWMutex
	items map[string]*types.ShipmentProjection
	clock func() time.Time
}

// RepositoryOption customizes the in-memory repository.
type RepositoryOption func(*Repository)

// WithClock injects a deterministic time source for tests.
func WithClock(clock func() time.Time) RepositoryOption {
	return func(r *Repository) {
		if clock != nil {
			r.clock = clock
		}
	}
}

// NewRepository builds an empty in-memory repository.
func NewRepository(opts ...RepositoryOption) *Repository {
	r := &Repository{
		items: make(map[string]*types.ShipmentProjection),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Save upserts a projection keyed by shipment ID.
func (r *Repository) Save(_ context.Context, projection *types.ShipmentProjection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := projection.Clone()
	if existing, ok := r.items[stored.Shipment.ID]; ok {
		stored.Metadata.CreatedAt = existing.Metadata.CreatedAt
	}
	if stored.Metadata.CreatedAt.IsZero() {
		stored.Metadata.CreatedAt = r.clock().UTC()
	}
	if stored.Metadata.UpdatedAt.IsZero() {
		stored.Metadata.UpdatedAt = r.clock().UTC()
	}
	r.items[stored.Shipment.ID] = stored
	return nil
}

// GetByID loads a projection or ports.ErrNotFound.
func (r *Repository) GetByID(_ context.Context, id string) (*types.ShipmentProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	projection, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return projection.Clone(), nil
}

// ListActive returns every shipment not in a terminal status, ordered by ID
// for deterministic sweeps.
func (r *Repository) ListActive(_ context.Context) ([]*types.ShipmentProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*types.ShipmentProjection
	for _, projection := range r.items {
		if projection.Shipment.Status.Terminal() {
			continue
		}
		result = append(result, projection.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Shipment.ID < result[j].Shipment.ID
	})
	return result, nil
}

// QueryDelivered returns up to limit delivered shipments originating from
// the given party, most recent arrival first.
func (r *Repository) QueryDelivered(_ context.Context, originPartyID string, limit int) ([]*types.ShipmentProjection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []*types.ShipmentProjection
	for _, projection := range r.items {
		shipment := projection.Shipment
		if shipment.From.ID != originPartyID || shipment.ActualArrival == nil {
			continue
		}
		result = append(result, projection.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Shipment.ActualArrival.After(*result[j].Shipment.ActualArrival)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

var _ ports.Repository = (*Repository)(nil)
