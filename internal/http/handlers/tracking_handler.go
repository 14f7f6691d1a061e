// README: NDJSON event stream and tracking-view endpoints.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mboga/internal/http/middleware"
	"mboga/internal/modules/hubs"
	"mboga/internal/modules/order"
	"mboga/internal/modules/tracking"
	"mboga/internal/types"
)

type TrackingHandler struct {
	hub     *tracking.Hub
	orders  *order.Service
	catalog *hubs.Catalog
	// planner is optional; without it the simulated rider moves along the
	// straight hub-to-door segment.
	planner tracking.RoutePlanner
	window  time.Duration
}

func NewTrackingHandler(hub *tracking.Hub, orders *order.Service, catalog *hubs.Catalog, planner tracking.RoutePlanner, freshnessWindow time.Duration) *TrackingHandler {
	return &TrackingHandler{
		hub:     hub,
		orders:  orders,
		catalog: catalog,
		planner: planner,
		window:  freshnessWindow,
	}
}

// Events streams order events as NDJSON until the client disconnects. The
// first line is a synthetic status event with the order's current state;
// heartbeats arrive as blank keep-alive lines.
func (h *TrackingHandler) Events(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	sub, err := h.hub.Subscribe(c.Request.Context(), id, middleware.CallerEmail(c))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "application/x-ndjson")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	enc := json.NewEncoder(c.Writer)
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case ev, open := <-sub.Events():
			if !open {
				return
			}
			if ev.Type == tracking.EventHeartbeat {
				_, _ = c.Writer.Write([]byte("\n"))
			} else if err := enc.Encode(ev); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

// Track renders one frame of the tracking view: authoritative status when a
// recent update exists, the elapsed-time heuristic otherwise, plus the
// simulated or live rider position.
func (h *TrackingHandler) Track(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	o, err := h.orders.Get(c.Request.Context(), id,
		middleware.CallerEmail(c), middleware.CallerRole(c) == roleOperator)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	origin := types.Point{Lat: -1.2921, Lng: 36.8219}
	if hub, err := h.catalog.Get(o.HubID); err == nil {
		origin = types.Point{Lat: hub.Lat, Lng: hub.Lng}
	}
	dest := tracking.DestinationFor(o.ID, origin)
	path := tracking.PathFor(c.Request.Context(), h.planner, origin, dest)

	tr := tracking.NewTracker(tracking.TrackerConfig{
		OrderID:         o.ID,
		CreatedAt:       o.CreatedAt,
		Origin:          origin,
		Destination:     &dest,
		Path:            path,
		FreshnessWindow: h.window,
		StageFor: func(status string) (tracking.Stage, bool) {
			return order.Status(status).Stage()
		},
	})
	tr.Apply(tracking.Event{
		Type:      tracking.EventStatus,
		Status:    string(o.Status),
		RiderLat:  o.RiderLat,
		RiderLng:  o.RiderLng,
		Timestamp: o.LastStatusUpdate,
	})

	view := tr.View(time.Now())
	writeJSON(c, http.StatusOK, gin.H{
		"orderId":     view.OrderID,
		"freshness":   view.Freshness.String(),
		"status":      view.Status,
		"stage":       int(view.Stage),
		"label":       view.Label,
		"description": view.Desc,
		"riderLat":    view.Position.Lat,
		"riderLng":    view.Position.Lng,
		"progress":    view.Progress,
	})
}
