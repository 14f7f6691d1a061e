// README: Hub catalog endpoint with optional nearest-hub lookup.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mboga/internal/modules/hubs"
)

type HubsHandler struct {
	catalog *hubs.Catalog
}

func NewHubsHandler(catalog *hubs.Catalog) *HubsHandler {
	return &HubsHandler{catalog: catalog}
}

// List returns the hub catalog. With lat/lng query parameters the nearest
// hub is included separately.
func (h *HubsHandler) List(c *gin.Context) {
	resp := gin.H{"hubs": h.catalog.All()}

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" && lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			writeError(c, http.StatusBadRequest, "invalid coordinates")
			return
		}
		if nearest, err := h.catalog.Nearest(lat, lng); err == nil {
			resp["nearest"] = nearest
		}
	}
	writeJSON(c, http.StatusOK, resp)
}
