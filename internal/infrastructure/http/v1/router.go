// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"orderdesk/internal/domain/order"
	"orderdesk/internal/domain/user"
	"orderdesk/internal/infrastructure/dataloader"
	"orderdesk/internal/infrastructure/http/v1/handlers"
	"orderdesk/internal/infrastructure/http/v1/middleware"
	"orderdesk/internal/infrastructure/storage/postgres"
	"orderdesk/internal/infrastructure/storage/postgres/entity_repo"
	"orderdesk/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is checked by the health endpoints
	Pool handlers.PoolChecker

	// TxManager opens transactions and hands out pooled handles
	TxManager *postgres.TxManager

	// Logger for request logging
	Logger *logger.Logger

	// LoaderWait is the batch window of the per-request loaders
	LoaderWait time.Duration

	// LoaderMaxBatch caps keys per loader fetch (0 = unbounded)
	LoaderMaxBatch int

	// Version is reported by /health/info
	Version string

	// Debug enables gin debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	users := entity_repo.NewUserRepo()
	orders := entity_repo.NewOrderRepo()
	details := entity_repo.NewOrderDetailRepo()

	sources := dataloader.Sources[postgres.Handle]{
		Users:   users,
		Orders:  orders,
		Details: details,
	}
	loaderOpts := []dataloader.Option{
		dataloader.WithWait(cfg.LoaderWait),
		dataloader.WithMaxBatch(cfg.LoaderMaxBatch),
		dataloader.WithLogger(cfg.Logger),
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.Loaders(func() *dataloader.Loaders {
		return dataloader.NewLoaders(cfg.TxManager.Handle(), sources, loaderOpts...)
	}))
	{
		userService := user.NewService[postgres.Handle](users, cfg.TxManager)
		RegisterResourceRoutes(v1.Group("/users"), handlers.NewUserHandler(userService))

		orderService := order.NewService[postgres.Handle](orders, details, users, cfg.TxManager)
		RegisterResourceRoutes(v1.Group("/orders"), handlers.NewOrderHandler(orderService))

		v1.GET("/order-details/:id", handlers.NewDetailHandler().Get)
	}

	return router
}
