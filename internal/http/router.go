// README: Route registration: public endpoints plus the authenticated /api group.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mboga/internal/http/handlers"
	"mboga/internal/http/middleware"
	"mboga/internal/infra"
	"mboga/internal/modules/hubs"
	"mboga/internal/modules/loyalty"
	"mboga/internal/modules/order"
	"mboga/internal/modules/rider"
	"mboga/internal/modules/tracking"
)

type RouterConfig struct {
	Logger   *zap.Logger
	Verifier infra.TokenVerifier

	Orders  *order.Service
	Hub     *tracking.Hub
	Catalog *hubs.Catalog
	Loyalty *loyalty.Service

	// Riders is optional; without it the dispatch lookup routes are not
	// registered. Geocoder is optional address resolution for the nearby
	// lookup.
	Riders   *rider.Service
	Geocoder handlers.AddressLocator

	// Planner is optional road routing for the simulated rider position.
	Planner         tracking.RoutePlanner
	FreshnessWindow time.Duration
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	orderHandler := handlers.NewOrderHandler(cfg.Orders, cfg.Catalog)
	trackingHandler := handlers.NewTrackingHandler(cfg.Hub, cfg.Orders, cfg.Catalog, cfg.Planner, cfg.FreshnessWindow)
	loyaltyHandler := handlers.NewLoyaltyHandler(cfg.Loyalty)
	hubsHandler := handlers.NewHubsHandler(cfg.Catalog)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/api/hubs", hubsHandler.List)

	auth := r.Group("/api", middleware.Auth(cfg.Verifier))
	auth.POST("/orders", orderHandler.Create)
	auth.GET("/orders", orderHandler.List)
	auth.GET("/orders/:id/status", orderHandler.GetStatus)
	auth.PUT("/orders/:id/status", orderHandler.SetStatus)
	auth.PUT("/orders/:id/rider-location", orderHandler.RiderLocation)
	auth.GET("/orders/:id/events", trackingHandler.Events)
	auth.GET("/orders/:id/track", trackingHandler.Track)
	auth.GET("/loyalty", loyaltyHandler.Summary)

	if cfg.Riders != nil {
		riderHandler := handlers.NewRiderHandler(cfg.Riders, cfg.Geocoder)
		auth.GET("/riders/nearby", riderHandler.Nearby)
		auth.GET("/riders/:riderId/location", riderHandler.Latest)
	}

	return r
}
