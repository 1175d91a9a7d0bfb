// Package main is the entry point for the aushadhi API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"aushadhi/internal/domain/adjustments"
	"aushadhi/internal/domain/catalogs/item"
	"aushadhi/internal/domain/purchases"
	"aushadhi/internal/domain/sales"
	"aushadhi/internal/domain/stock"
	v1 "aushadhi/internal/infrastructure/http/v1"
	"aushadhi/internal/infrastructure/storage/postgres"
	"aushadhi/internal/infrastructure/storage/postgres/catalog_repo"
	"aushadhi/internal/infrastructure/storage/postgres/document_repo"
	"aushadhi/internal/infrastructure/storage/postgres/register_repo"
	"aushadhi/pkg/logger"
	"aushadhi/pkg/numerator"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting aushadhi server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	poolCfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	// --- Infrastructure ---
	txManager := postgres.NewTxManager(pool)

	oplog, err := postgres.NewOperationLog(txManager)
	if err != nil {
		log.Fatalw("failed to initialize operation log", "error", err)
	}

	numeratorService := numerator.New(pool)

	// --- Repositories ---
	itemRepo := catalog_repo.NewItemRepo(txManager)
	batchRepo := register_repo.NewBatchRepo(txManager)
	invoiceRepo := document_repo.NewSaleInvoiceRepo(txManager)
	purchaseRepo := document_repo.NewPurchaseEntryRepo(txManager)
	adjustmentRepo := document_repo.NewAdjustmentRepo(txManager)

	// --- Domain services ---
	ledger := stock.NewLedger(batchRepo)
	itemService := item.NewService(itemRepo, numeratorService)
	saleBuilder := sales.NewBuilder(batchRepo, ledger, itemRepo, invoiceRepo, numeratorService, oplog, txManager)
	purchaseProcessor := purchases.NewProcessor(itemRepo, batchRepo, ledger, purchaseRepo, numeratorService, oplog, txManager)
	adjustmentService := adjustments.NewService(batchRepo, ledger, adjustmentRepo, numeratorService, oplog, txManager)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:        pool,
		Logger:      log,
		Items:       itemService,
		Batches:     batchRepo,
		Sales:       saleBuilder,
		Purchases:   purchaseProcessor,
		Adjustments: adjustmentService,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

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
