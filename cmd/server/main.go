package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	goredis "github.com/redis/go-redis/v9"

	"taxi/internal/app"
	"taxi/internal/config"
	"taxi/internal/geo"
	"taxi/internal/handler"
	internalRedis "taxi/internal/redis"
	"taxi/internal/registry"
	"taxi/internal/repository"
	"taxi/internal/repository/memory"
	"taxi/internal/repository/postgres"
	"taxi/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s", cfg.NewRelic.AppName)
		}
	}

	// Initialize the storage backend.
	var runner repository.Runner
	switch cfg.Storage.Backend {
	case "postgres":
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to database: %v", err)
		}
		defer db.Close()
		log.Println("Connected to PostgreSQL")
		runner = postgres.NewStore(db)
	case "memory":
		runner = memory.NewStore()
		log.Println("Using in-memory storage")
	default:
		log.Fatalf("unknown storage backend: %q", cfg.Storage.Backend)
	}

	// Initialize Redis when enabled; the dispatcher runs without it using
	// in-process locks.
	var redisClient *goredis.Client
	if cfg.Redis.Enabled {
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Connected to Redis")
	}

	// Wire dependencies.
	server, err := wireServer(runner, redisClient, nrApp, cfg)
	if err != nil {
		log.Fatalf("failed to wire server: %v", err)
	}

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(runner repository.Runner, redisClient *goredis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, error) {
	reg := registry.New(runner)

	// Redis-backed stores when available.
	var locationStore internalRedis.LocationStoreInterface
	var lockStore internalRedis.LockStoreInterface
	if redisClient != nil {
		locationStore = internalRedis.NewLocationStore(redisClient)
		lockStore = internalRedis.NewLockStore(redisClient)
	} else {
		lockStore = registry.NewDriverLocks()
	}

	// Geocoding is optional; without it only coordinate requests work.
	var geoService geo.Service
	if cfg.Geo.APIKey != "" {
		gm, err := geo.NewGoogleMaps(cfg.Geo.APIKey, cfg.Geo.Timeout)
		if err != nil {
			return nil, err
		}
		geoService = gm
	}

	// Matching policy.
	var policy service.SelectionPolicy
	switch cfg.Matching.Policy {
	case "pool":
		policy = service.PoolOrder{}
	case "geoindex":
		if locationStore != nil {
			policy = service.GeoIndexNearest{Locations: locationStore, RadiusKm: cfg.Geo.SearchRadiusKm}
		} else {
			log.Println("geoindex matching requires Redis; falling back to nearest")
			policy = service.NearestFirst{}
		}
	default:
		policy = service.NearestFirst{}
	}

	// Initialize services.
	notifier := service.NewLogSink()
	pricing := service.NewPricingService(cfg.Pricing.BaseRatePerKm)
	machine := service.NewStateMachine(nil)
	matching := service.NewMatchingService(policy)
	wallet := service.NewWalletService(reg, nil)
	receipts := service.NewReceiptService(geoService, notifier, nil)
	dispatch := service.NewDispatchService(service.DispatchDeps{
		Registry:  reg,
		Geo:       geoService,
		Pricing:   pricing,
		Matching:  matching,
		Machine:   machine,
		Wallet:    wallet,
		Receipts:  receipts,
		Notifier:  notifier,
		Locations: locationStore,
		Locks:     lockStore,
	})

	// Initialize handlers.
	userHandler := handler.NewUserHandler(reg, wallet)
	rideHandler := handler.NewRideHandler(dispatch)
	driverHandler := handler.NewDriverHandler(dispatch)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		UserHandler:    userHandler,
		RideHandler:    rideHandler,
		DriverHandler:  driverHandler,
		RedisClient:    redisClient,
		IdempotencyTTL: cfg.Redis.IdempotencyTTL,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, nil
}
