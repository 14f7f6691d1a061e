// README: Shared handler helpers: JSON writers, error mapping, id parsing.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mboga/internal/modules/hubs"
	"mboga/internal/modules/order"
	"mboga/internal/modules/tracking"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, order.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrInvalidStatus):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, order.ErrNotFound), errors.Is(err, tracking.ErrNotFound):
		writeError(c, http.StatusNotFound, "order not found")
	case errors.Is(err, hubs.ErrUnknownHub):
		writeError(c, http.StatusBadRequest, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// orderID parses the :id path segment. A non-numeric id reads as an absent
// order, not a malformed request, so probing with garbage ids looks the
// same as probing with unused ones.
func orderID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusNotFound, "order not found")
		return 0, false
	}
	return id, true
}
