// README: Order endpoints: checkout entry, history, status polling and transitions.
package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mboga/internal/http/middleware"
	"mboga/internal/modules/hubs"
	"mboga/internal/modules/order"
	"mboga/internal/types"
)

const roleOperator = "operator"
const roleRider = "rider"

type OrderHandler struct {
	orders *order.Service
	hubs   *hubs.Catalog
}

func NewOrderHandler(orders *order.Service, catalog *hubs.Catalog) *OrderHandler {
	return &OrderHandler{orders: orders, hubs: catalog}
}

type createOrderReq struct {
	Items          json.RawMessage `json:"items"`
	DeliveryMethod string          `json:"deliveryMethod"`
	PaymentMethod  string          `json:"paymentMethod"`
	Totals         struct {
		Subtotal      float64 `json:"subtotal"`
		DiscountTotal float64 `json:"discountTotal"`
		DeliveryFee   float64 `json:"deliveryFee"`
		Total         float64 `json:"total"`
	} `json:"totals"`
	HubID           string `json:"hubId"`
	DeliveryAddress string `json:"deliveryAddress"`
}

// Create places an order for the authenticated customer. Amounts arrive in
// KSh and are stored in cents.
func (h *OrderHandler) Create(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if len(req.Items) == 0 {
		writeError(c, http.StatusBadRequest, "items required")
		return
	}
	if req.HubID == "" {
		req.HubID = h.hubs.All()[0].ID
	}
	if !h.hubs.Known(req.HubID) {
		writeError(c, http.StatusBadRequest, "unknown hub")
		return
	}

	o, err := h.orders.Create(c.Request.Context(), order.CreateCommand{
		OwnerEmail:      middleware.CallerEmail(c),
		Items:           req.Items,
		DeliveryMethod:  req.DeliveryMethod,
		PaymentMethod:   req.PaymentMethod,
		Subtotal:        kshToCents(req.Totals.Subtotal),
		Discounts:       kshToCents(req.Totals.DiscountTotal),
		DeliveryFee:     kshToCents(req.Totals.DeliveryFee),
		Total:           kshToCents(req.Totals.Total),
		HubID:           req.HubID,
		DeliveryAddress: req.DeliveryAddress,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, gin.H{
		"orderId":   o.ID,
		"status":    o.Status,
		"createdAt": o.CreatedAt,
	})
}

type orderSummary struct {
	ID        int64        `json:"id"`
	Status    order.Status `json:"status"`
	Total     float64      `json:"total"`
	CreatedAt time.Time    `json:"createdAt"`
}

// List returns the caller's recent orders, newest first.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context(), middleware.CallerEmail(c))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	out := make([]orderSummary, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderSummary{
			ID:        o.ID,
			Status:    o.Status,
			Total:     centsToKsh(o.Total),
			CreatedAt: o.CreatedAt,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": out})
}

// GetStatus is the polling fallback for clients that cannot hold the event
// stream open.
func (h *OrderHandler) GetStatus(c *gin.Context) {
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
	writeJSON(c, http.StatusOK, gin.H{
		"orderId":     o.ID,
		"status":      o.Status,
		"label":       o.Status.Label(),
		"description": o.Status.Description(),
		"riderId":     o.RiderID,
		"riderLat":    o.RiderLat,
		"riderLng":    o.RiderLng,
		"lastUpdate":  o.LastStatusUpdate,
	})
}

type setStatusReq struct {
	Status   string   `json:"status"`
	RiderID  *string  `json:"riderId"`
	RiderLat *float64 `json:"riderLat"`
	RiderLng *float64 `json:"riderLng"`
}

// SetStatus moves the order through its lifecycle. Owners may update their
// own orders; operators may update any.
func (h *OrderHandler) SetStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	operator := middleware.CallerRole(c) == roleOperator
	if _, err := h.orders.Get(c.Request.Context(), id, middleware.CallerEmail(c), operator); err != nil {
		writeOrderError(c, err)
		return
	}

	var req setStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.SetStatus(c.Request.Context(), order.SetStatusCommand{
		OrderID:  id,
		Status:   order.Status(req.Status),
		RiderID:  req.RiderID,
		RiderLat: req.RiderLat,
		RiderLng: req.RiderLng,
	})
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"orderId":    o.ID,
		"status":     o.Status,
		"lastUpdate": o.LastStatusUpdate,
	})
}

type riderLocationReq struct {
	RiderID string  `json:"riderId"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// RiderLocation accepts a position report from the rider working the order.
func (h *OrderHandler) RiderLocation(c *gin.Context) {
	role := middleware.CallerRole(c)
	if role != roleRider && role != roleOperator {
		writeError(c, http.StatusForbidden, "rider role required")
		return
	}
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req riderLocationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	o, err := h.orders.UpdateRiderLocation(c.Request.Context(), id, req.RiderID, req.Lat, req.Lng)
	if err != nil {
		writeOrderError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{
		"orderId":   o.ID,
		"riderLat":  o.RiderLat,
		"riderLng":  o.RiderLng,
		"timestamp": o.LastStatusUpdate,
	})
}

func kshToCents(v float64) int64 {
	return int64(types.FromKSh(v))
}

func centsToKsh(cents int64) float64 {
	return types.Money(cents).KSh()
}
