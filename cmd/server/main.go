package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appbilling "github.com/condoledger/backend/internal/application/billing"
	appsupplier "github.com/condoledger/backend/internal/application/supplier"
	"github.com/condoledger/backend/internal/domain/shared"
	"github.com/condoledger/backend/internal/infrastructure/auth"
	"github.com/condoledger/backend/internal/infrastructure/cache"
	"github.com/condoledger/backend/internal/infrastructure/config"
	"github.com/condoledger/backend/internal/infrastructure/logger"
	"github.com/condoledger/backend/internal/infrastructure/persistence"
	"github.com/condoledger/backend/internal/infrastructure/scheduler"
	"github.com/condoledger/backend/internal/interfaces/http/handler"
	"github.com/condoledger/backend/internal/interfaces/http/router"
	"github.com/redis/go-redis/v9"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting condominium billing engine",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	// Redis backs the payment reference reservations and the advisory
	// locks serializing generation and settlement runs. Outside
	// production a missing Redis degrades to in-process fallbacks.
	var (
		redisClient *redis.Client
		idempotency shared.IdempotencyStore
		lockManager shared.LockManager
	)
	redisClient, err = cache.NewRedisClient(cfg.Redis)
	if err != nil {
		if cfg.App.Env == "production" {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Warn("Redis unavailable, using in-memory fallbacks", zap.Error(err))
		redisClient = nil
		idempotency = cache.NewInMemoryIdempotencyStore()
		lockManager = cache.NewInMemoryLockManager()
	} else {
		idempotency = cache.NewRedisIdempotencyStore(redisClient, "")
		lockManager = cache.NewRedisLockManager(redisClient)
		log.Info("Redis connected")
	}
	defer func() {
		if err := idempotency.Close(); err != nil {
			log.Error("Error closing idempotency store", zap.Error(err))
		}
	}()

	// Repositories
	receiptRepo := persistence.NewGormReceiptRepository(db.DB)
	paymentRepo := persistence.NewGormPaymentRepository(db.DB)
	accountRepo := persistence.NewGormBillingAccountRepository(db.DB)
	expenseRepo := persistence.NewGormExpenseRecordRepository(db.DB)
	propertyDir := persistence.NewGormPropertyDirectory(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	txManager := persistence.NewGormTransactionManager(db.DB)

	// Application services
	receiptService := appbilling.NewReceiptService(
		receiptRepo, accountRepo, propertyDir, expenseRepo, txManager, lockManager, log)
	paymentService := appbilling.NewPaymentService(
		paymentRepo, receiptRepo, accountRepo, idempotency, txManager, cfg.Billing.ReferenceTTL, log)
	settlementService := appbilling.NewSettlementService(
		receiptRepo, paymentRepo, accountRepo, txManager, lockManager, log)
	expenseService := appbilling.NewExpenseService(expenseRepo, receiptRepo, log)
	invoiceService := appsupplier.NewInvoiceService(invoiceRepo, expenseRepo, txManager, log)

	jwtService := auth.NewJWTService(cfg.JWT)

	// Overdue sweep scheduler
	sweeper := scheduler.NewOverdueSweeper(receiptService, receiptRepo, log, scheduler.OverdueSweeperConfig{
		Enabled:      cfg.Billing.OverdueSweepEnabled,
		Interval:     cfg.Scheduler.OverdueSweepInterval,
		SweepTimeout: 5 * time.Minute,
	})
	if err := sweeper.Start(context.Background()); err != nil {
		log.Fatal("Failed to start overdue sweeper", zap.Error(err))
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sweeper.Stop(stopCtx); err != nil {
			log.Error("Error stopping overdue sweeper", zap.Error(err))
		}
	}()

	// HTTP layer
	billingHandler := handler.NewBillingHandler(
		receiptService, paymentService, settlementService, expenseService)
	supplierHandler := handler.NewSupplierHandler(invoiceService)
	systemHandler := handler.NewSystemHandler(db, redisClient, version)

	engine := router.New(router.Dependencies{
		Config:          cfg,
		Logger:          log,
		JWTService:      jwtService,
		BillingHandler:  billingHandler,
		SupplierHandler: supplierHandler,
		SystemHandler:   systemHandler,
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Server stopped")
}
