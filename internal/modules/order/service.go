// README: Order service implements state transitions, broadcasts, and loyalty triggers.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"mboga/internal/modules/tracking"
)

var (
	// ErrNotFound covers both an absent order and a caller that may not see
	// it; collapsed so callers cannot probe for order existence.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidStatus rejects a status outside the known set.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrBadRequest rejects malformed input such as out-of-range coordinates.
	ErrBadRequest = errors.New("bad request")
)

// Storage is the persistence surface the service needs. *Store satisfies it.
type Storage interface {
	Create(ctx context.Context, o *Order) (int64, error)
	Get(ctx context.Context, id int64) (*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status, riderID *string, riderLat, riderLng *float64, at time.Time) error
	UpdateRiderLocation(ctx context.Context, id int64, riderID string, lat, lng float64, at time.Time) error
	ListByOwner(ctx context.Context, ownerEmail string, limit int) ([]*Order, error)
}

// EventPublisher pushes an event to the order's live subscribers. Satisfied
// by *tracking.Hub.
type EventPublisher interface {
	Publish(orderID int64, ev tracking.Event)
}

// RiderRecorder keeps a rider's last reported position independent of any
// order. Satisfied by the rider store. Recording is best-effort.
type RiderRecorder interface {
	RecordLocation(ctx context.Context, riderID string, lat, lng float64, at time.Time) error
}

// LoyaltyAwarder is notified exactly once when an order reaches delivered.
type LoyaltyAwarder interface {
	OrderCompleted(ctx context.Context, ownerEmail string, total int64, at time.Time) error
}

const listLimit = 20

// ServiceConfig wires the service. Riders and Loyalty may be nil.
type ServiceConfig struct {
	Store   Storage
	Events  EventPublisher
	Riders  RiderRecorder
	Loyalty LoyaltyAwarder
	Logger  *zap.Logger
}

type Service struct {
	store   Storage
	events  EventPublisher
	riders  RiderRecorder
	loyalty LoyaltyAwarder
	logger  *zap.Logger
	now     func() time.Time

	// Striped per-order locks serialize the read-modify-write of concurrent
	// status and location updates against the same order.
	locks [64]sync.Mutex
}

func NewService(cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Service{
		store:   cfg.Store,
		events:  cfg.Events,
		riders:  cfg.Riders,
		loyalty: cfg.Loyalty,
		logger:  cfg.Logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) lock(id int64) func() {
	m := &s.locks[int(uint64(id)%uint64(len(s.locks)))]
	m.Lock()
	return m.Unlock
}

// CreateCommand carries everything needed to place an order. Amounts are in
// KSh cents.
type CreateCommand struct {
	OwnerEmail      string
	Items           json.RawMessage
	DeliveryMethod  string
	PaymentMethod   string
	Subtotal        int64
	Discounts       int64
	DeliveryFee     int64
	Total           int64
	HubID           string
	DeliveryAddress string
}

// Create places a new order. Checkout already collected payment intent, so
// a new order starts out confirmed.
func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Order, error) {
	if cmd.OwnerEmail == "" || cmd.HubID == "" {
		return nil, ErrBadRequest
	}
	if cmd.Subtotal < 0 || cmd.Discounts < 0 || cmd.DeliveryFee < 0 || cmd.Total < 0 {
		return nil, ErrBadRequest
	}
	if cmd.DeliveryMethod == "" {
		cmd.DeliveryMethod = "delivery"
	}
	if cmd.PaymentMethod == "" {
		cmd.PaymentMethod = "cod"
	}
	if len(cmd.Items) == 0 {
		cmd.Items = json.RawMessage(`[]`)
	} else if !json.Valid(cmd.Items) {
		return nil, ErrBadRequest
	}

	now := s.now()
	o := &Order{
		OwnerEmail:       cmd.OwnerEmail,
		Items:            cmd.Items,
		DeliveryMethod:   cmd.DeliveryMethod,
		PaymentMethod:    cmd.PaymentMethod,
		Subtotal:         cmd.Subtotal,
		Discounts:        cmd.Discounts,
		DeliveryFee:      cmd.DeliveryFee,
		Total:            cmd.Total,
		Status:           StatusConfirmed,
		HubID:            cmd.HubID,
		DeliveryAddress:  cmd.DeliveryAddress,
		LastStatusUpdate: now,
		CreatedAt:        now,
	}
	id, err := s.store.Create(ctx, o)
	if err != nil {
		return nil, err
	}
	o.ID = id
	return o, nil
}

// Get returns the order when the caller owns it or is an operator; anything
// else reads as not found.
func (s *Service) Get(ctx context.Context, id int64, caller string, operator bool) (*Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !operator && o.OwnerEmail != caller {
		return nil, ErrNotFound
	}
	return o, nil
}

// List returns the caller's most recent orders, newest first.
func (s *Service) List(ctx context.Context, ownerEmail string) ([]*Order, error) {
	if ownerEmail == "" {
		return nil, ErrBadRequest
	}
	return s.store.ListByOwner(ctx, ownerEmail, listLimit)
}

// SetStatusCommand moves an order to a new status, optionally attaching the
// rider's identity and position in the same update.
type SetStatusCommand struct {
	OrderID  int64
	Status   Status
	RiderID  *string
	RiderLat *float64
	RiderLng *float64
}

// SetStatus applies a status transition. Any known status is accepted from
// any current status; operators correct mistakes by moving backwards.
// Subscribers see the change after it is committed, and the first transition
// into delivered triggers loyalty accrual exactly once.
func (s *Service) SetStatus(ctx context.Context, cmd SetStatusCommand) (*Order, error) {
	if !ValidStatus(cmd.Status) {
		return nil, ErrInvalidStatus
	}
	if err := validateOptionalCoords(cmd.RiderLat, cmd.RiderLng); err != nil {
		return nil, err
	}

	unlock := s.lock(cmd.OrderID)
	defer unlock()

	prev, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.store.UpdateStatus(ctx, cmd.OrderID, cmd.Status, cmd.RiderID, cmd.RiderLat, cmd.RiderLng, now); err != nil {
		return nil, err
	}
	o, err := s.store.Get(ctx, cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if s.loyalty != nil && cmd.Status == StatusDelivered && prev.Status != StatusDelivered {
		if err := s.loyalty.OrderCompleted(ctx, o.OwnerEmail, o.Total, now); err != nil {
			s.logger.Error("loyalty accrual failed",
				zap.Int64("order_id", o.ID), zap.Error(err))
		}
	}
	if s.riders != nil && cmd.RiderID != nil && cmd.RiderLat != nil && cmd.RiderLng != nil {
		if err := s.riders.RecordLocation(ctx, *cmd.RiderID, *cmd.RiderLat, *cmd.RiderLng, now); err != nil {
			s.logger.Warn("rider location record failed",
				zap.String("rider_id", *cmd.RiderID), zap.Error(err))
		}
	}

	if s.events != nil {
		s.events.Publish(o.ID, tracking.Event{
			Type:      tracking.EventStatus,
			Status:    string(o.Status),
			RiderLat:  o.RiderLat,
			RiderLng:  o.RiderLng,
			Timestamp: now,
		})
	}
	return o, nil
}

// UpdateRiderLocation applies a rider position report to the order and
// broadcasts it.
func (s *Service) UpdateRiderLocation(ctx context.Context, orderID int64, riderID string, lat, lng float64) (*Order, error) {
	if riderID == "" {
		return nil, ErrBadRequest
	}
	if !validCoord(lat, 90) || !validCoord(lng, 180) {
		return nil, ErrBadRequest
	}

	unlock := s.lock(orderID)
	defer unlock()

	now := s.now()
	if err := s.store.UpdateRiderLocation(ctx, orderID, riderID, lat, lng, now); err != nil {
		return nil, err
	}
	o, err := s.store.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.riders != nil {
		if err := s.riders.RecordLocation(ctx, riderID, lat, lng, now); err != nil {
			s.logger.Warn("rider location record failed",
				zap.String("rider_id", riderID), zap.Error(err))
		}
	}

	if s.events != nil {
		s.events.Publish(o.ID, tracking.Event{
			Type:      tracking.EventLocation,
			RiderLat:  o.RiderLat,
			RiderLng:  o.RiderLng,
			Timestamp: now,
		})
	}
	return o, nil
}

func validateOptionalCoords(lat, lng *float64) error {
	if lat == nil && lng == nil {
		return nil
	}
	if lat == nil || lng == nil {
		return ErrBadRequest
	}
	if !validCoord(*lat, 90) || !validCoord(*lng, 180) {
		return ErrBadRequest
	}
	return nil
}

func validCoord(v, bound float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= -bound && v <= bound
}
