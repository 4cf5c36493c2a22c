// Package redispub publishes alert events on a Redis channel so downstream
// notification consumers (dashboards, pagers) can subscribe without coupling
// to the tracking service.
package redispub

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/domain"
	"github.com/chaintrack/shipment-tracking-api/internal/domains/shipments/ports"
)

// DefaultChannel is the pub/sub channel alert events land on.
const DefaultChannel = "chaintrack.alerts"

const publishTimeout = 2 * time.Second

// Publisher sends alert events over Redis pub/sub. Publishing is fire and
// forget; a slow broker is cut off by a bounded timeout so lifecycle
// operations never stall on notifications.
type Publisher struct {
	client  *redis.Client
	channel string
}

// New wires a publisher on the given channel; an empty channel falls back to
// DefaultChannel. The caller owns the client lifecycle.
func New(client *redis.Client, channel string) *Publisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Publisher{client: client, channel: channel}
}

// Publish marshals the event and publishes it.
func (p *Publisher) Publish(ctx context.Context, event domain.AlertEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	return p.client.Publish(ctx, p.channel, payload).Err()
}

var _ ports.NotificationSink = (*Publisher)(nil)
