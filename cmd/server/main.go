// Package main is the entry point for the Stockbook API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockbook/internal/domain/catalogs/product"
	"stockbook/internal/domain/catalogs/supplier"
	"stockbook/internal/domain/catalogs/warehouse"
	"stockbook/internal/domain/documents/payment"
	"stockbook/internal/domain/documents/purchase"
	"stockbook/internal/domain/documents/purchase_return"
	"stockbook/internal/domain/registers/stock"
	"stockbook/internal/domain/timeline"
	"stockbook/internal/infrastructure/cache"
	v1 "stockbook/internal/infrastructure/http/v1"
	"stockbook/internal/infrastructure/storage/postgres"
	"stockbook/internal/infrastructure/storage/postgres/catalog_repo"
	"stockbook/internal/infrastructure/storage/postgres/document_repo"
	"stockbook/internal/infrastructure/storage/postgres/register_repo"
	"stockbook/pkg/logger"
	"stockbook/pkg/numerator"
)

func main() {
	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting stockbook server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)
	gen := numerator.New(pool.Unwrap())

	// --- Cache loader ---
	// Deduplicates reconciliation reads and listens for cross-instance
	// invalidation notifications.
	loader := cache.NewLoader(pool.Unwrap())
	if err := loader.Start(ctx); err != nil {
		log.Fatalw("failed to start cache loader", "error", err)
	}
	defer loader.Stop()

	// --- Repositories ---
	supplierRepo := catalog_repo.NewSupplierRepo(txManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)

	orderRepo := document_repo.NewPurchaseOrderRepo(txManager)
	paymentRepo := document_repo.NewPaymentRepo(txManager)
	returnRepo := document_repo.NewPurchaseReturnRepo(txManager)

	stockRepo := register_repo.NewStockRepo(txManager)

	eventStore, err := postgres.NewEventStore(txManager)
	if err != nil {
		log.Fatalw("failed to create event store", "error", err)
	}

	// --- Services ---
	supplierService := supplier.NewService(supplierRepo, txManager, gen)
	warehouseService := warehouse.NewService(warehouseRepo, txManager, gen)
	productService := product.NewService(productRepo, txManager, gen)

	timelineService := timeline.NewService(eventStore)
	stockService := stock.NewService(stockRepo)

	paymentService := payment.NewService(paymentRepo, timelineService, gen, txManager)
	returnService := purchase_return.NewService(returnRepo, txManager)
	purchaseService := purchase.NewService(
		orderRepo,
		returnRepo,
		paymentRepo,
		timelineService,
		stockService,
		gen,
		txManager,
	)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:   pool,
		Logger: log,
		Cache:  loader,

		Suppliers:  supplierService,
		Warehouses: warehouseService,
		Products:   productService,

		Purchases: purchaseService,
		Payments:  paymentService,
		Returns:   returnService,

		Timeline: timelineService,

		Stock:     stockService,
		StockRepo: stockRepo,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
