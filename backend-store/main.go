package main

import (
	"context"
	"log"
	"time"

	"github.com/prohmpiriya/autostore-platform/backend-store/internal/di"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/events"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/gateway"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/notifier"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/repository"
	"github.com/prohmpiriya/autostore-platform/backend-store/internal/service"
	"github.com/prohmpiriya/autostore-platform/backend-store/migrations"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/config"
	"github.com/prohmpiriya/autostore-platform/pkg/database"
	"github.com/prohmpiriya/autostore-platform/pkg/health"
	"github.com/prohmpiriya/autostore-platform/pkg/kafka"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	"github.com/prohmpiriya/autostore-platform/pkg/middleware"
	pkgredis "github.com/prohmpiriya/autostore-platform/pkg/redis"
	"github.com/prohmpiriya/autostore-platform/pkg/retry"
	"github.com/prohmpiriya/autostore-platform/pkg/server"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const serviceName = "backend-store"

func main() {
	// Money goes over the wire as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true

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
	appLog.Info("Starting Store Service...")

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
	var repos di.Repositories
	checks := map[string]health.CheckFunc{}

	if cfg.UsesMemoryStorage() {
		appLog.Warn("Using in-memory storage, data is lost on restart")
		store := repository.NewMemoryStore()
		repos = di.Repositories{
			Products: repository.NewMemoryProductRepository(store),
			Carts:    repository.NewMemoryCartRepository(store),
			Orders:   repository.NewMemoryOrderRepository(store),
			Payments: repository.NewMemoryPaymentRepository(store),
		}
	} else {
		dbCfg := database.FromConfig(cfg.StoreDatabase, cfg.OTel.Enabled)
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

		pool := db.Pool()
		repos = di.Repositories{
			Products: repository.NewPostgresProductRepository(pool),
			Carts:    repository.NewPostgresCartRepository(pool),
			Orders:   repository.NewPostgresOrderRepository(pool),
			Payments: repository.NewPostgresPaymentRepository(pool),
		}
		checks["database"] = db.HealthCheck
	}

	// Redis backs idempotent payment requests
	var idempotencyStore middleware.RedisClient
	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, pkgredis.FromConfig(cfg.Redis))
		if err != nil {
			appLog.Warn("Redis connection failed, payments are not idempotent", zap.Error(err))
		} else {
			defer redisClient.Close()
			appLog.Info("Redis connected", zap.String("addr", cfg.Redis.Addr()))
			idempotencyStore = redisClient
			checks["redis"] = redisClient.HealthCheck
		}
	}

	// Order events
	var publisher events.EventPublisher = events.NewNoOpEventPublisher()
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(ctx, &kafka.ProducerConfig{
			Brokers:        cfg.Kafka.Brokers,
			ClientID:       cfg.Kafka.ClientID,
			ProduceTimeout: 5 * time.Second,
		})
		if err != nil {
			appLog.Warn("Kafka connection failed, order events are disabled", zap.Error(err))
		} else {
			publisher = events.NewKafkaEventPublisher(producer, &events.KafkaPublisherConfig{
				Topic:  cfg.Store.OrderTopic,
				Source: serviceName,
				Retry:  retry.DefaultConfig(),
			})
			checks["kafka"] = producer.HealthCheck
			appLog.Info("Publishing order events", zap.String("topic", cfg.Store.OrderTopic))
		}
	}
	defer publisher.Close()

	// Payment gateway
	var paymentGateway gateway.PaymentGateway
	if cfg.Payment.Gateway == "stripe" {
		stripeGateway, err := gateway.NewStripeGateway(&gateway.StripeGatewayConfig{SecretKey: cfg.Payment.StripeSecretKey})
		if err != nil {
			appLog.Fatal("Failed to create Stripe gateway", zap.Error(err))
		}
		paymentGateway = stripeGateway
	} else {
		paymentGateway = gateway.NewMockGateway(nil)
	}
	appLog.Info("Payment gateway ready", zap.String("gateway", paymentGateway.Name()))

	// Email
	var mail notifier.Notifier = notifier.NewLogNotifier(appLog)
	if cfg.Email.LambdaFunction != "" {
		lambdaNotifier, err := notifier.NewLambdaNotifier(ctx, &notifier.LambdaConfig{
			FunctionName:    cfg.Email.LambdaFunction,
			Region:          cfg.Email.AWSRegion,
			EndpointURL:     cfg.Email.AWSEndpointURL,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
			From:            cfg.Email.From,
			Retry:           retry.DefaultConfig(),
		})
		if err != nil {
			appLog.Warn("Failed to create Lambda notifier, email is logged only", zap.Error(err))
		} else {
			mail = lambdaNotifier
		}
	}
	dispatcher := notifier.NewDispatcher(mail, appLog, 30*time.Second)
	// Pending email is flushed after the server stops
	defer dispatcher.Wait()

	// Token verification only; this service never issues tokens
	codec, err := auth.NewTokenCodec(cfg.JWT.Secret)
	if err != nil {
		appLog.Fatal("Failed to create token codec", zap.Error(err))
	}

	container := di.NewContainer(&di.ContainerConfig{
		ServiceName: serviceName,
		Repos:       repos,
		Codec:       codec,
		Gateway:     paymentGateway,
		Publisher:   publisher,
		Mailer:      dispatcher,
		OrderConfig: &service.OrderServiceConfig{
			TaxRate:  decimal.NewFromFloat(cfg.Store.TaxRate),
			Currency: cfg.Store.Currency,
		},
		Redis:        idempotencyStore,
		HealthChecks: checks,
		Logger:       appLog,
	})

	router := server.NewRouter(cfg, serviceName, appLog)
	container.RegisterRoutes(router)

	if err := server.Run(server.New(cfg, router, 8082), appLog); err != nil {
		appLog.Error("Server stopped", zap.Error(err))
	}
}
