// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"stockbook/internal/domain/catalogs/product"
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/domain/catalogs/warehouse"
	"stockbook/internal/domain/documents/payment"
	"stockbook/internal/domain/documents/purchase"
	"stockbook/internal/domain/documents/purchase_return"
	"stockbook/internal/domain/registers/stock"
	"stockbook/internal/domain/timeline"
	"stockbook/internal/infrastructure/cache"
	"stockbook/internal/infrastructure/http/v1/handlers"
	"stockbook/internal/infrastructure/http/v1/middleware"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/pkg/logger"
)

// RouterConfig holds everything the router wires into handlers.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// Cache deduplicates reconciliation reads across concurrent requests
	Cache *cache.Loader

	// Services
	Suppliers  *supplier.Service
	Warehouses *warehouse.Service
	Products   *product.Service

	Purchases *purchase.Service
	Payments  *payment.Service
	Returns   *purchase_return.Service

	Timeline *timeline.Service

	Stock     *stock.Service
	StockRepo stock.Repository
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Actor())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	healthHandler.RegisterRoutes(router.Group("/health"))

	// API v1
	v1 := router.Group("/api/v1")
	{
		registerCatalogRoutes(v1, cfg)
		registerDocumentRoutes(v1, cfg)
		registerRegisterRoutes(v1, cfg)
	}

	return router
}

// registerCatalogRoutes registers catalog endpoints.
func registerCatalogRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	catalogs := rg.Group("/catalog")
	baseHandler := handlers.NewBaseHandler()

	RegisterCatalogRoutes(catalogs.Group("/suppliers"),
		handlers.NewSupplierHandler(baseHandler, cfg.Suppliers))
	RegisterCatalogRoutes(catalogs.Group("/warehouses"),
		handlers.NewWarehouseHandler(baseHandler, cfg.Warehouses))
	RegisterCatalogRoutes(catalogs.Group("/products"),
		handlers.NewProductHandler(baseHandler, cfg.Products))
}

// registerDocumentRoutes registers document endpoints.
func registerDocumentRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	purchaseHandler := handlers.NewPurchaseOrderHandler(baseHandler, cfg.Purchases, cfg.Timeline, cfg.Cache)
	paymentHandler := handlers.NewPaymentHandler(baseHandler, cfg.Payments, cfg.Cache)
	returnHandler := handlers.NewPurchaseReturnHandler(baseHandler, cfg.Returns, cfg.Cache)

	orders := rg.Group("/purchase-orders")
	purchaseHandler.RegisterRoutes(orders)
	orders.GET("/:id/payments", paymentHandler.ListByOrder)
	orders.GET("/:id/returns", returnHandler.ListByOrder)

	paymentHandler.RegisterRoutes(rg.Group("/payments"))
	returnHandler.RegisterRoutes(rg.Group("/purchase-returns"))
}

// registerRegisterRoutes registers accumulation register endpoints.
func registerRegisterRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	baseHandler := handlers.NewBaseHandler()

	stockHandler := handlers.NewStockHandler(baseHandler, cfg.Stock, cfg.StockRepo)
	stockHandler.RegisterRoutes(rg.Group("/registers/stock"))
}
