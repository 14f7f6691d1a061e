// README: Entry point; loads config, wires the modules and serves the API.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"mboga/internal/config"
	httptransport "mboga/internal/http"
	"mboga/internal/http/handlers"
	"mboga/internal/infra"
	"mboga/internal/maps"
	"mboga/internal/modules/hubs"
	"mboga/internal/modules/loyalty"
	"mboga/internal/modules/order"
	"mboga/internal/modules/rider"
	"mboga/internal/modules/tracking"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		logger.Fatal("postgres init", zap.Error(err))
	}
	defer dbPool.Close()
	if err := dbPool.Ping(ctx); err != nil {
		logger.Fatal("postgres ping", zap.Error(err))
	}

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	orderStore := order.NewStore(dbPool)
	riderStore := rider.NewStore(dbPool, redisClient)
	loyaltyStore := loyalty.NewStore(dbPool)
	for name, init := range map[string]func(context.Context) error{
		"orders":  orderStore.InitSchema,
		"riders":  riderStore.InitSchema,
		"loyalty": loyaltyStore.InitSchema,
	} {
		if err := init(ctx); err != nil {
			logger.Fatal("schema init", zap.String("store", name), zap.Error(err))
		}
	}

	var planner tracking.RoutePlanner
	var geocoder handlers.AddressLocator
	if cfg.Maps.APIKey != "" {
		routeSvc, err := maps.NewRouteService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		planner = routeSvc
		geocodeSvc, err := maps.NewGeocodeService(cfg.Maps.APIKey)
		if err != nil {
			logger.Fatal("maps init", zap.Error(err))
		}
		geocoder = geocodeSvc
	} else {
		logger.Info("MBOGA_MAPS_API_KEY unset, simulated riders move in a straight line")
	}

	hub := tracking.NewHub(tracking.HubConfig{
		Source:            orderStore,
		Logger:            logger,
		HeartbeatInterval: cfg.Tracking.HeartbeatInterval,
		SubscriberBuffer:  cfg.Tracking.SubscriberBuffer,
	})
	defer hub.Close()

	loyaltySvc := loyalty.NewService(loyaltyStore, logger)
	orderSvc := order.NewService(order.ServiceConfig{
		Store:   orderStore,
		Events:  hub,
		Riders:  riderStore,
		Loyalty: loyaltySvc,
		Logger:  logger,
	})
	riderSvc := rider.NewService(orderSvc, riderStore)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Logger:          logger,
		Verifier:        infra.NewJWTVerifier(cfg.Auth.JWTSecret),
		Orders:          orderSvc,
		Hub:             hub,
		Catalog:         hubs.DefaultCatalog(),
		Loyalty:         loyaltySvc,
		Riders:          riderSvc,
		Geocoder:        geocoder,
		Planner:         planner,
		FreshnessWindow: cfg.Tracking.FreshnessWindow,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("serve", zap.Error(err))
	}
}
