// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"aushadhi/internal/domain/adjustments"
	"aushadhi/internal/domain/catalogs/item"
	"aushadhi/internal/domain/purchases"
	"aushadhi/internal/domain/sales"
	"aushadhi/internal/domain/stock"
	"aushadhi/internal/infrastructure/http/v1/handlers"
	"aushadhi/internal/infrastructure/http/v1/middleware"
	"aushadhi/internal/infrastructure/storage/postgres"
	"aushadhi/pkg/logger"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	Items       *item.Service
	Batches     stock.Repository
	Sales       *sales.Builder
	Purchases   *purchases.Processor
	Adjustments *adjustments.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	itemHandler := handlers.NewItemHandler(base, cfg.Items)
	stockHandler := handlers.NewStockHandler(base, cfg.Batches, cfg.Adjustments)
	saleHandler := handlers.NewSaleHandler(base, cfg.Sales)
	purchaseHandler := handlers.NewPurchaseHandler(base, cfg.Purchases)
	adjustmentHandler := handlers.NewAdjustmentHandler(base, cfg.Adjustments)

	apiV1 := router.Group("/api/v1")
	{
		items := apiV1.Group("/items")
		{
			items.POST("", itemHandler.Create)
			items.GET("", itemHandler.List)
			items.GET("/:id", itemHandler.Get)
			items.PUT("/:id", itemHandler.Update)
			items.DELETE("/:id", itemHandler.Delete)
		}

		batches := apiV1.Group("/batches")
		{
			batches.GET("", stockHandler.List)
			batches.GET("/:id", stockHandler.Get)
			batches.GET("/:id/adjustments", stockHandler.Adjustments)
		}

		salesGroup := apiV1.Group("/sales")
		{
			salesGroup.POST("", saleHandler.Create)
			salesGroup.GET("", saleHandler.List)
			salesGroup.GET("/:id", saleHandler.Get)
			salesGroup.POST("/:id/void", saleHandler.Void)
		}

		purchasesGroup := apiV1.Group("/purchases")
		{
			purchasesGroup.POST("", purchaseHandler.Create)
			purchasesGroup.GET("", purchaseHandler.List)
			purchasesGroup.GET("/:id", purchaseHandler.Get)
		}

		adjustmentsGroup := apiV1.Group("/adjustments")
		{
			adjustmentsGroup.POST("", adjustmentHandler.Create)
			adjustmentsGroup.GET("", adjustmentHandler.List)
		}
	}

	return router
}
