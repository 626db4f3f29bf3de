package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/branchcore/internal/application/fulfillment"
	"github.com/erp/branchcore/internal/application/stats"
	"github.com/erp/branchcore/internal/domain/inventory"
	"github.com/erp/branchcore/internal/infrastructure/auth"
	"github.com/erp/branchcore/internal/infrastructure/cache"
	"github.com/erp/branchcore/internal/infrastructure/config"
	"github.com/erp/branchcore/internal/infrastructure/logger"
	"github.com/erp/branchcore/internal/infrastructure/persistence"
	"github.com/erp/branchcore/internal/infrastructure/telemetry"
	"github.com/erp/branchcore/internal/interfaces/http/handler"
	"github.com/erp/branchcore/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting branchcore",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Repositories
	branchRepo := persistence.NewGormBranchRepository(db.DB)
	movementRepo := persistence.NewGormStockMovementRepository(db.DB)
	contractRepo := persistence.NewGormContractRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	// Stats cache over the configured backend
	store := cache.NewStoreFactory(*cfg, log).CreateStore()
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing cache store", zap.Error(err))
		}
	}()
	statsCache := cache.NewStatsCache(store, persistence.NewGormVersionSource(db.DB), cfg.Cache.DefaultTTL)

	// Domain and application services
	ledger := inventory.NewLedger(movementRepo)
	statsService := stats.NewService(db.DB, statsCache)
	fulfillmentService := fulfillment.NewService(orderRepo, ledger)

	jwtService := auth.NewJWTService(cfg.JWT)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(router.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		JWTService:  jwtService,
		Logger:      log,
		Handlers: router.Handlers{
			System:   handler.NewSystemHandler(db, version),
			Branch:   handler.NewBranchHandler(branchRepo),
			Ledger:   handler.NewLedgerHandler(ledger, movementRepo),
			Contract: handler.NewContractHandler(contractRepo),
			Order:    handler.NewOrderHandler(orderRepo, fulfillmentService),
			Stats:    handler.NewStatsHandler(statsService),
		},
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

	log.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
