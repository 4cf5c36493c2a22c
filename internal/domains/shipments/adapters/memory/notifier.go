package memory

import (
	"context"
	"sync"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
)

// NotificationSink records published alert events for assertions. A non-nil
// FailWith makes every publish fail, exercising best-effort delivery paths.
type NotificationSink struct {
	mu       sync.Mutex
	events   []domain.AlertEvent
	FailWith error
}

// NewNotificationSink builds an empty recording sink.
func NewNotificationSink() *NotificationSink {
	return &NotificationSink{}
}

// Publish records the event or returns the injected failure.
func (s *NotificationSink) Publish(_ context.Context, event domain.AlertEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWith != nil {
		return s.FailWith
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of everything published so far.
func (s *NotificationSink) Events() []domain.AlertEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AlertEvent(nil), s.events...)
}

var _ ports.NotificationSink = (*NotificationSink)(nil)
