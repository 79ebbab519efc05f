package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"taxi/internal/handler"
	"taxi/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler    *handler.UserHandler
	RideHandler    *handler.RideHandler
	DriverHandler  *handler.DriverHandler
	RedisClient    *redis.Client
	IdempotencyTTL time.Duration
	NewRelicApp    *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	// Idempotency requires Redis for the response cache.
	if deps.RedisClient != nil {
		router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, deps.IdempotencyTTL))
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)
			users.GET("/:id", deps.UserHandler.Get)
			users.POST("/:id/deposit", deps.UserHandler.Deposit)
			users.POST("/:id/withdraw", deps.UserHandler.Withdraw)
			users.GET("/:id/transactions", deps.UserHandler.Transactions)
		}

		// Ride routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.Request)
			rides.POST("/quotes", deps.RideHandler.Quotes)
			rides.GET("/:id", deps.RideHandler.Get)
			rides.POST("/:id/advance", deps.RideHandler.Advance)
			rides.POST("/:id/cancel", deps.RideHandler.Cancel)
			rides.POST("/:id/rate", deps.RideHandler.Rate)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/:id/activate", deps.DriverHandler.Activate)
			drivers.POST("/:id/deactivate", deps.DriverHandler.Deactivate)
			drivers.POST("/:id/respond", deps.DriverHandler.Respond)
		}
	}

	return router
}
