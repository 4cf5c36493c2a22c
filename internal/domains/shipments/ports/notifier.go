package ports

import (
	"context"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
)

// NotificationSink receives alert events raised by the lifecycle service.
// Delivery is best effort; a failed publish never rolls back the state
// change that produced the alert.
type NotificationSink interface {
	Publish(ctx context.Context, event domain.AlertEvent) error
}
