package domain

import "time"

// AlertEvent is handed to the notification collaborator whenever an alert is
// recorded on a shipment. Delivery is at-least-once: the alert is persisted
// on the shipment before the event is published, and a failed publish never
// rolls the shipment back.
type AlertEvent struct {
	ShipmentID     string    `json:"shipmentId"`
	TrackingNumber string    `json:"trackingNumber"`
	Alert          Alert     `json:"alert"`
	OccurredAt     time.Time `json:"occurredAt"`
}
