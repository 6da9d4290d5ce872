package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	appintegration "github.com/retailcrm/backend/internal/application/integration"
	"github.com/retailcrm/backend/internal/infrastructure/auth"
	"github.com/retailcrm/backend/internal/infrastructure/cache"
	"github.com/retailcrm/backend/internal/infrastructure/config"
	"github.com/retailcrm/backend/internal/infrastructure/ecommerce"
	"github.com/retailcrm/backend/internal/infrastructure/logger"
	"github.com/retailcrm/backend/internal/infrastructure/persistence"
	"github.com/retailcrm/backend/internal/infrastructure/scheduler"
	"github.com/retailcrm/backend/internal/infrastructure/secret"
	"github.com/retailcrm/backend/internal/infrastructure/telemetry"
	"github.com/retailcrm/backend/internal/interfaces/http/handler"
	"github.com/retailcrm/backend/internal/interfaces/http/middleware"
	"github.com/retailcrm/backend/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting marketplace stock sync",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx := context.Background()

	// Telemetry
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracer provider", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize meter provider", zap.Error(err))
	}
	syncMetrics, err := telemetry.NewSyncMetrics(meterProvider.Meter("retailcrm/sync"))
	if err != nil {
		log.Fatal("Failed to register sync metrics", zap.Error(err))
	}

	// Database
	dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled: cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
	}, log)
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithGormLogger(logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))),
		persistence.WithPlugin(dbTracing.Register),
	)
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
	sealer, err := secret.NewCipher(cfg.Security.CredentialEncryptionKey)
	if err != nil {
		log.Fatal("Failed to initialize credential cipher", zap.Error(err))
	}
	credentialRepo := persistence.NewGormCredentialRepository(db.DB, sealer)
	mappingRepo := persistence.NewGormSkuMappingRepository(db.DB)
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)

	logStore, err := cache.NewSyncLogStoreFactory(cfg.Redis, cfg.Sync.LogCapacity,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.Sync.LogStoreFallback),
		cache.WithDatabase(db.DB),
	).CreateStore(cfg.Sync.LogStore)
	if err != nil {
		log.Fatal("Failed to create sync log store", zap.Error(err))
	}
	if closer, ok := logStore.(io.Closer); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	// Marketplace clients
	wbConfig, ozonConfig := marketplaceConfigs(cfg.Marketplace)
	registry, err := ecommerce.NewDefaultRegistry(wbConfig, ozonConfig)
	if err != nil {
		log.Fatal("Failed to create marketplace clients", zap.Error(err))
	}

	// Services
	syncService := appintegration.NewStockSyncService(credentialRepo, mappingRepo, inventoryRepo, logStore, registry,
		appintegration.WithSyncMetrics(syncMetrics),
		appintegration.WithSyncLogger(log),
	)
	credentialService := appintegration.NewCredentialService(credentialRepo, registry, log)
	mappingService := appintegration.NewSkuMappingService(mappingRepo, log)
	inventoryService := appintegration.NewInventoryService(inventoryRepo)

	autoSync, err := scheduler.NewAutoSyncManager(syncService, scheduler.AutoSyncConfig{
		ProductIntervalMinutes: cfg.Sync.DefaultProductIntervalMinutes,
		StockIntervalMinutes:   cfg.Sync.DefaultStockIntervalMinutes,
		RestartDelay:           cfg.Sync.RestartDelay,
		PassTimeout:            cfg.Sync.PassTimeout,
	}, log)
	if err != nil {
		log.Fatal("Failed to create auto-sync manager", zap.Error(err))
	}

	// HTTP
	middleware.SetupValidator()
	jwtService, err := auth.NewJWTService(cfg.JWT)
	if err != nil {
		log.Fatal("Failed to initialize JWT validation", zap.Error(err))
	}
	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.Logger = log

	engine, err := router.NewEngine(router.EngineConfig{
		Logger: log,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		CORS:           corsConfig(cfg.HTTP),
		MaxBodyBytes:   cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	})
	if err != nil {
		log.Fatal("Failed to create HTTP engine", zap.Error(err))
	}
	router.Setup(engine, router.Handlers{
		System:      handler.NewSystemHandler(db, version),
		Credentials: handler.NewCredentialHandler(credentialService),
		SkuMappings: handler.NewSkuMappingHandler(mappingService),
		Sync:        handler.NewSyncHandler(syncService),
		AutoSync:    handler.NewAutoSyncHandler(autoSync),
		Inventory:   handler.NewInventoryHandler(inventoryService),
	}, middleware.JWTAuthMiddlewareWithConfig(jwtConfig), router.WithAPIVersion("v1"))

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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := autoSync.StopAll(shutdownCtx); err != nil {
		log.Error("Auto-sync schedulers did not stop cleanly", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Meter provider shutdown failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Tracer provider shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
