package main

import (
	"context"
	"log"

	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/di"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/repository"
	"github.com/prohmpiriya/autostore-platform/backend-auth/internal/service"
	"github.com/prohmpiriya/autostore-platform/backend-auth/migrations"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/config"
	"github.com/prohmpiriya/autostore-platform/pkg/database"
	"github.com/prohmpiriya/autostore-platform/pkg/health"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"github.com/prohmpiriya/autostore-platform/pkg/server"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.uber.org/zap"
)

const serviceName = "backend-auth"

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
	appLog.Info("Starting Auth Service...")

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

	// Storage
	var userRepo repository.UserRepository
	checks := map[string]health.CheckFunc{}

	if cfg.UsesMemoryStorage() {
		appLog.Warn("Using in-memory storage, data is lost on restart")
		userRepo = repository.NewMemoryUserRepository()
	} else {
		dbCfg := database.FromConfig(cfg.AuthDatabase, cfg.OTel.Enabled)
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

		userRepo = repository.NewPostgresUserRepository(db.Pool())
		checks["database"] = db.HealthCheck
	}

	// Token codec and password hasher, built once from config
	codec, err := auth.NewTokenCodec(cfg.JWT.Secret)
	if err != nil {
		appLog.Fatal("Failed to create token codec", zap.Error(err))
	}
	hasher, err := auth.NewPasswordHasher(cfg.Password.Hasher)
	if err != nil {
		appLog.Fatal("Failed to create password hasher", zap.Error(err))
	}

	container := di.NewContainer(&di.ContainerConfig{
		ServiceName: serviceName,
		UserRepo:    userRepo,
		Hasher:      hasher,
		Codec:       codec,
		ServiceConfig: &service.AuthServiceConfig{
			AccessTokenTTL:    cfg.JWT.AccessTokenTTL,
			MinPasswordLength: cfg.Password.MinLength,
			MaxPasswordLength: cfg.Password.MaxLength,
		},
		HealthChecks: checks,
	})

	router := server.NewRouter(cfg, serviceName, appLog)
	container.RegisterRoutes(router)

	if err := server.Run(server.New(cfg, router, 8081), appLog); err != nil {
		appLog.Error("Server stopped", zap.Error(err))
	}
}
