// README: Operator-only rider lookup endpoints (latest position, nearby search).
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mboga/internal/http/middleware"
	"mboga/internal/modules/rider"
	"mboga/internal/types"
)

// AddressLocator resolves a free-text address to coordinates. Optional;
// without it the nearby lookup requires explicit lat/lng.
type AddressLocator interface {
	Locate(ctx context.Context, address string) (types.Point, error)
}

type RiderHandler struct {
	riders  *rider.Service
	locator AddressLocator
}

func NewRiderHandler(riders *rider.Service, locator AddressLocator) *RiderHandler {
	return &RiderHandler{riders: riders, locator: locator}
}

// Latest answers "where is rider X" independent of any order. Dispatch
// tooling only, hence the operator gate.
func (h *RiderHandler) Latest(c *gin.Context) {
	if middleware.CallerRole(c) != roleOperator {
		writeError(c, http.StatusForbidden, "operator role required")
		return
	}
	loc, err := h.riders.Latest(c.Request.Context(), c.Param("riderId"))
	if err == rider.ErrNoLocation {
		writeError(c, http.StatusNotFound, "no location on record")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, loc)
}

// Nearby lists riders within radiusKm of a point, nearest first. The point
// comes from lat/lng params, or from a free-text address when a geocoder is
// configured.
func (h *RiderHandler) Nearby(c *gin.Context) {
	if middleware.CallerRole(c) != roleOperator {
		writeError(c, http.StatusForbidden, "operator role required")
		return
	}
	var lat, lng float64
	if address := c.Query("address"); address != "" && h.locator != nil {
		point, err := h.locator.Locate(c.Request.Context(), address)
		if err != nil {
			writeError(c, http.StatusBadRequest, "address could not be resolved")
			return
		}
		lat, lng = point.Lat, point.Lng
	} else {
		var errLat, errLng error
		lat, errLat = strconv.ParseFloat(c.Query("lat"), 64)
		lng, errLng = strconv.ParseFloat(c.Query("lng"), 64)
		if errLat != nil || errLng != nil {
			writeError(c, http.StatusBadRequest, "lat and lng are required")
			return
		}
	}
	radiusKm := 5.0
	if raw := c.Query("radiusKm"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			writeError(c, http.StatusBadRequest, "invalid radiusKm")
			return
		}
		radiusKm = r
	}
	riders, err := h.riders.Nearby(c.Request.Context(), lat, lng, radiusKm, 20)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	if riders == nil {
		riders = []rider.NearbyRider{}
	}
	writeJSON(c, http.StatusOK, gin.H{"riders": riders})
}
