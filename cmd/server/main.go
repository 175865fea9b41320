package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	appwarehouse "github.com/plant/backend/internal/application/warehouse"
	"github.com/plant/backend/internal/infrastructure/cache"
	"github.com/plant/backend/internal/infrastructure/config"
	"github.com/plant/backend/internal/infrastructure/logger"
	"github.com/plant/backend/internal/infrastructure/persistence"
	"github.com/plant/backend/internal/infrastructure/telemetry"
	"github.com/plant/backend/internal/interfaces/http/handler"
	"github.com/plant/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
)

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

	log.Info("Starting plant warehouse backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	idemFactory := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(!cfg.Warehouse.RequireRedis),
	)
	idemStore, err := idemFactory.CreateStore()
	if err != nil {
		log.Fatal("Failed to create idempotency store", zap.Error(err))
	}
	defer func() {
		_ = idemStore.Close()
	}()

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	bins := persistence.NewGormBinRepository(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)
	warehouseService := appwarehouse.NewWarehouseService(scope, bins)
	warehouseService.SetMetrics(metrics)
	warehouseService.SetAllocationDefaults(cfg.Warehouse.DefaultBinCapacity, cfg.Warehouse.StartLocation)

	warehouseHandler := handler.NewWarehouseHandler(
		warehouseService,
		idemStore,
		cfg.Warehouse.IdempotencyTTL,
		cfg.Warehouse.DefaultDeliveryAmount,
	)
	systemHandler := handler.NewSystemHandler(db)

	engine := router.New(router.Dependencies{
		Warehouse: warehouseHandler,
		System:    systemHandler,
		Metrics:   metrics,
		Logger:    log,
		Config:    cfg,
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
