// README: Tracking event wire types and order snapshot source.
package tracking

import (
	"context"
	"errors"
	"time"
)

type EventType string

const (
	// EventStatus announces an order status change (with last known rider
	// coordinates, when any).
	EventStatus EventType = "status"
	// EventLocation announces a rider position change only.
	EventLocation EventType = "location"
	// EventHeartbeat is a transport keep-alive. It carries no payload and is
	// never surfaced as a domain event.
	EventHeartbeat EventType = "heartbeat"
)

// Event is the wire form pushed to subscribed tracking views, one JSON
// object per line.
type Event struct {
	Type      EventType `json:"type"`
	Status    string    `json:"status,omitempty"`
	RiderLat  *float64  `json:"riderLat,omitempty"`
	RiderLng  *float64  `json:"riderLng,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderSnapshot is the current tracking-relevant state of an order, used to
// authorize subscriptions and to synthesize the first event a new
// subscriber receives.
type OrderSnapshot struct {
	Owner     string
	Status    string
	RiderID   *string
	RiderLat  *float64
	RiderLng  *float64
	UpdatedAt time.Time
	CreatedAt time.Time
}

// SnapshotSource looks up order state for the hub. Implemented by the order
// store; the hub stays independent of persistence details.
type SnapshotSource interface {
	Snapshot(ctx context.Context, orderID int64) (OrderSnapshot, error)
}

// ErrNotFound covers both an absent order and a subscriber that does not
// own it; the two are indistinguishable on purpose so unauthorized callers
// cannot probe for order existence.
var ErrNotFound = errors.New("order not found")

// StatusEvent builds a status event from a snapshot's current state.
func StatusEvent(snap OrderSnapshot) Event {
	return Event{
		Type:      EventStatus,
		Status:    snap.Status,
		RiderLat:  snap.RiderLat,
		RiderLng:  snap.RiderLng,
		Timestamp: snap.UpdatedAt,
	}
}
