package main

import (
	"context"
	"log"

	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/di"
	"github.com/prohmpiriya/autostore-platform/backend-mot/internal/repository"
	"github.com/prohmpiriya/autostore-platform/backend-mot/migrations"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/config"
	"github.com/prohmpiriya/autostore-platform/pkg/database"
	"github.com/prohmpiriya/autostore-platform/pkg/health"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"github.com/prohmpiriya/autostore-platform/pkg/server"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.uber.org/zap"
)

const serviceName = "backend-mot"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(&logger.Config{
		Level:       cfg.App.Environment,
		ServiceName: serviceName,
		Development: cfg.IsDevelopment(),
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	appLog.Info("Starting MOT Service...")

	ctx := context.Background()

	// Initialize OpenTelemetry
	telemetryCfg := &telemetry.Config{
		Enabled:        cfg.OTel.Enabled,
		ServiceName:    serviceName,
		ServiceVersion: cfg.App.Version,
		Environment:    cfg.App.Environment,
		CollectorAddr:  cfg.OTel.CollectorAddr,
		SampleRatio:    cfg.OTel.SampleRatio,
	}
	if _, err := telemetry.Init(ctx, telemetryCfg); err != nil {
		appLog.Warn("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetry.Shutdown(ctx)

	var (
		bookingRepo repository.BookingRepository
		quoteRepo   repository.QuoteRepository
	)
	checks := map[string]health.CheckFunc{}

	if cfg.UsesMemoryStorage() {
		appLog.Warn("Using in-memory storage, data is lost on restart")
		store := repository.NewMemoryStore()
		bookingRepo = repository.NewMemoryBookingRepository(store)
		quoteRepo = repository.NewMemoryQuoteRepository(store)
	} else {
		dbCfg := database.FromConfig(cfg.MOTDatabase, cfg.OTel.Enabled)
		db, err := database.NewPostgres(ctx, dbCfg)
		if err != nil {
			appLog.Fatal("Database connection failed", zap.Error(err))
		}
		defer db.Close()
		appLog.Info("Database connected", zap.String("database", dbCfg.Database))

		if cfg.Storage.AutoMigrate {
			if err := database.Migrate(ctx, db.Pool(), migrations.FS); err != nil {
				appLog.Fatal("Migration failed", zap.Error(err))
			}
		}

		bookingRepo = repository.NewPostgresBookingRepository(db.Pool())
		quoteRepo = repository.NewPostgresQuoteRepository(db.Pool())
		checks["database"] = db.HealthCheck
	}

	codec, err := auth.NewTokenCodec(cfg.JWT.Secret)
	if err != nil {
		appLog.Fatal("Failed to create token codec", zap.Error(err))
	}

	container := di.NewContainer(&di.ContainerConfig{
		ServiceName:  serviceName,
		BookingRepo:  bookingRepo,
		QuoteRepo:    quoteRepo,
		Codec:        codec,
		HealthChecks: checks,
		Logger:       appLog,
	})

	router := server.NewRouter(cfg, serviceName, appLog)
	container.RegisterRoutes(router)

	if err := server.Run(server.New(cfg, router, 8083), appLog); err != nil {
		appLog.Error("Server stopped", zap.Error(err))
	}
}
