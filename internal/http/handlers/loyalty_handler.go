// README: Loyalty summary endpoint.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"mboga/internal/http/middleware"
	"mboga/internal/modules/loyalty"
)

type LoyaltyHandler struct {
	loyalty *loyalty.Service
}

func NewLoyaltyHandler(svc *loyalty.Service) *LoyaltyHandler {
	return &LoyaltyHandler{loyalty: svc}
}

// Summary returns the caller's points and streak.
func (h *LoyaltyHandler) Summary(c *gin.Context) {
	sum, err := h.loyalty.Summary(c.Request.Context(), middleware.CallerEmail(c))
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(c, http.StatusOK, sum)
}
