// README: Per-order event broadcast hub with heartbeats and best-effort fan-out.
package tracking

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultSubscriberBuffer  = 16
)

// HubConfig configures a broadcast hub.
type HubConfig struct {
	Source SnapshotSource
	Logger *zap.Logger
	// HeartbeatInterval between keep-alives on each open subscription.
	HeartbeatInterval time.Duration
	// SubscriberBuffer is the per-subscription event buffer; a subscriber
	// that falls this far behind is dropped rather than allowed to stall
	// publishers.
	SubscriberBuffer int
}

// Hub fans out order events to live subscribers. It is explicitly
// constructed and shut down, never a package-level singleton, so tests can
// run isolated hubs side by side. Delivery is best-effort: no history, no
// replay; a late subscriber starts from the snapshot event.
type Hub struct {
	source    SnapshotSource
	logger    *zap.Logger
	heartbeat time.Duration
	buffer    int

	mu     sync.RWMutex
	subs   map[int64]map[*Subscription]struct{}
	closed bool
}

// Subscription is one live push connection for one order.
type Subscription struct {
	hub     *Hub
	orderID int64
	ch      chan Event
	done    chan struct{}

	sendMu sync.Mutex
	ended  bool
}

func NewHub(cfg HubConfig) *Hub {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = defaultHeartbeatInterval
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = defaultSubscriberBuffer
	}
	return &Hub{
		source:    cfg.Source,
		logger:    cfg.Logger,
		heartbeat: cfg.HeartbeatInterval,
		buffer:    cfg.SubscriberBuffer,
		subs:      make(map[int64]map[*Subscription]struct{}),
	}
}

// Subscribe registers a live connection for the order after verifying that
// identity owns it. The first event on the channel is a synthetic status
// event carrying the order's current state, so the subscriber need not wait
// for the next real change.
func (h *Hub) Subscribe(ctx context.Context, orderID int64, identity string) (*Subscription, error) {
	snap, err := h.source.Snapshot(ctx, orderID)
	if err != nil {
		return nil, ErrNotFound
	}
	if snap.Owner != identity {
		// Indistinguishable from an absent order.
		return nil, ErrNotFound
	}

	sub := &Subscription{
		hub:     h,
		orderID: orderID,
		ch:      make(chan Event, h.buffer),
		done:    make(chan struct{}),
	}

	// Enqueued before the subscription is visible to publishers, so the
	// snapshot is always the first event on the stream even when a publish
	// races the registration.
	sub.trySend(StatusEvent(snap))

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		sub.end()
		return nil, ErrNotFound
	}
	set, ok := h.subs[orderID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[orderID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	go sub.runHeartbeat(h.heartbeat)
	return sub, nil
}

// Publish delivers the event to every current subscriber of the order.
// Fire-and-forget: a full or vanished subscriber is dropped, never allowed
// to block the publisher. Publishing to an order with no subscribers is a
// no-op.
func (h *Hub) Publish(orderID int64, ev Event) {
	h.mu.RLock()
	set := h.subs[orderID]
	targets := make([]*Subscription, 0, len(set))
	for sub := range set {
		targets = append(targets, sub)
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		if !sub.trySend(ev) {
			h.logger.Warn("dropping slow subscriber",
				zap.Int64("order_id", orderID))
			h.Unsubscribe(sub)
		}
	}
}

// Unsubscribe removes the subscription, stops its heartbeat timer and
// closes its channel. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	if set, ok := h.subs[sub.orderID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.orderID)
		}
	}
	h.mu.Unlock()

	sub.end()
}

// SubscriberCount reports the live subscriber set size for an order.
func (h *Hub) SubscriberCount(orderID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[orderID])
}

// Close drops every subscription. Publishes after Close are no-ops and
// Subscribe fails.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*Subscription
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.subs = make(map[int64]map[*Subscription]struct{})
	h.mu.Unlock()

	for _, sub := range all {
		sub.end()
	}
}

// Events is the stream consumed by the transport layer. The channel closes
// when the subscription ends.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// OrderID identifies the order this subscription watches.
func (s *Subscription) OrderID() int64 {
	return s.orderID
}

// Close deregisters the subscription. Idempotent; invoked by the transport
// when the client disconnects.
func (s *Subscription) Close() {
	s.hub.Unsubscribe(s)
}

// trySend enqueues without blocking. An ended subscription reports success
// so publishers don't try to drop it twice; a full buffer reports failure.
func (s *Subscription) trySend(ev Event) bool {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.ended {
		return true
	}
	select {
	case s.ch <- ev:
		return true
	default:
		return false
	}
}

func (s *Subscription) end() {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	close(s.done)
	close(s.ch)
}

// runHeartbeat emits inert keep-alives until the subscription closes. The
// timer dies with the subscription, never orphaned.
func (s *Subscription) runHeartbeat(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case t := <-ticker.C:
			// Droppable when the buffer is full of real events.
			s.trySend(Event{Type: EventHeartbeat, Timestamp: t.UTC()})
		}
	}
}
