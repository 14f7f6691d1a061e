// README: Order aggregate and the closed status set with labels and stage mapping.
package order

import (
	"encoding/json"
	"time"

	"mboga/internal/modules/tracking"
)

// Status is the authoritative order lifecycle state. The set is closed;
// anything else is rejected before any mutation.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusPreparing  Status = "preparing"
	StatusDispatched Status = "dispatched"
	StatusOnTheWay   Status = "on_the_way"
	StatusArrived    Status = "arrived"
	StatusDelivered  Status = "delivered"
)

// AllStatuses lists the lifecycle in forward order. The engine does not
// enforce forward-only movement (a deliberate product decision carried over
// from the checkout flow); it only enforces membership.
var AllStatuses = []Status{
	StatusPending,
	StatusConfirmed,
	StatusPreparing,
	StatusDispatched,
	StatusOnTheWay,
	StatusArrived,
	StatusDelivered,
}

// ValidStatus reports whether s belongs to the closed status set.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusPreparing, StatusDispatched,
		StatusOnTheWay, StatusArrived, StatusDelivered:
		return true
	}
	return false
}

// Label is the customer-facing caption for a status.
func (s Status) Label() string {
	switch s {
	case StatusPending:
		return "Order pending"
	case StatusConfirmed:
		return "Order received"
	case StatusPreparing:
		return "Being prepared"
	case StatusDispatched:
		return "Order dispatched"
	case StatusOnTheWay:
		return "Rider on the way"
	case StatusArrived:
		return "Rider at your place"
	case StatusDelivered:
		return "Delivered"
	}
	return string(s)
}

// Description is the customer-facing sentence shown under the status label.
func (s Status) Description() string {
	switch s {
	case StatusPending:
		return "We're confirming your order."
	case StatusConfirmed:
		return "We've received your order at the nearest hub."
	case StatusPreparing:
		return "Your order is being picked & packed."
	case StatusDispatched:
		return "Your rider has left the hub and is on the way."
	case StatusOnTheWay:
		return "Your rider is on the way to you."
	case StatusArrived:
		return "Your rider is at your place."
	case StatusDelivered:
		return "Delivered. Asante for shopping with us."
	}
	return string(s)
}

// Stage maps the authoritative status onto the 0-4 tracking progress scale,
// so a live push renders on the same bar as the elapsed-time fallback.
func (s Status) Stage() (tracking.Stage, bool) {
	switch s {
	case StatusPending:
		return tracking.StagePlaced, true
	case StatusConfirmed:
		return tracking.StageReceived, true
	case StatusPreparing:
		return tracking.StagePreparing, true
	case StatusDispatched, StatusOnTheWay:
		return tracking.StageOnTheWay, true
	case StatusArrived, StatusDelivered:
		return tracking.StageNearYou, true
	}
	return 0, false
}

// Order is the persisted order record. Items and totals come from checkout
// and are opaque to the tracking core.
type Order struct {
	ID               int64
	OwnerEmail       string
	Items            json.RawMessage
	DeliveryMethod   string
	PaymentMethod    string
	Subtotal         int64
	Discounts        int64
	DeliveryFee      int64
	Total            int64
	Status           Status
	RiderID          *string
	RiderLat         *float64
	RiderLng         *float64
	HubID            string
	DeliveryAddress  string
	LastStatusUpdate time.Time
	CreatedAt        time.Time
}
