package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prohmpiriya/autostore-platform/backend-gateway/internal/proxy"
	"github.com/prohmpiriya/autostore-platform/backend-gateway/internal/ratelimit"
	"github.com/prohmpiriya/autostore-platform/pkg/auth"
	"github.com/prohmpiriya/autostore-platform/pkg/config"
	"github.com/prohmpiriya/autostore-platform/pkg/health"
	"github.com/prohmpiriya/autostore-platform/pkg/logger"
	pkgredis "github.com/prohmpiriya/autostore-platform/pkg/redis"
	"github.com/prohmpiriya/autostore-platform/pkg/server"
	"github.com/prohmpiriya/autostore-platform/pkg/telemetry"
	"go.uber.org/zap"
)

const serviceName = "backend-gateway"

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
	appLog.Info("Starting API Gateway...")

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

	// The gateway owns no database. Redis only shares rate limit buckets
	// between replicas.
	healthHandler := health.NewHandler(serviceName)

	router := server.NewRouter(cfg, serviceName, appLog)

	if cfg.Gateway.RateLimitEnabled {
		rlCfg := ratelimit.DefaultConfig()
		rlCfg.RequestsPerSecond = cfg.Gateway.RateLimitRPS
		rlCfg.Burst = cfg.Gateway.RateLimitBurst

		var limiter ratelimit.Limiter
		if cfg.Redis.Enabled {
			redisClient, err := pkgredis.NewClient(ctx, pkgredis.FromConfig(cfg.Redis))
			if err != nil {
				appLog.Warn("Redis connection failed, rate limiting is per replica", zap.Error(err))
			} else {
				defer redisClient.Close()
				limiter = ratelimit.NewRedisLimiter(redisClient, rlCfg)
				healthHandler.AddCheck("redis", redisClient.HealthCheck)
				appLog.Info("Rate limiting enabled (Redis-backed, distributed)")
			}
		}
		if limiter == nil {
			local := ratelimit.NewLocalLimiter(rlCfg)
			defer local.Stop()
			limiter = local
			appLog.Info("Rate limiting enabled (local, non-distributed)")
		}
		router.Use(ratelimit.Middleware(limiter, rlCfg, appLog))
	} else {
		appLog.Warn("Rate limiting DISABLED (RATE_LIMIT_ENABLED=false)")
	}

	codec, err := auth.NewTokenCodec(cfg.JWT.Secret)
	if err != nil {
		appLog.Fatal("Failed to create token codec", zap.Error(err))
	}

	reverseProxy, err := proxy.NewReverseProxy(proxy.ConfigFromGateway(cfg.Gateway), auth.NewGuard(codec))
	if err != nil {
		appLog.Fatal("Invalid proxy configuration", zap.Error(err))
	}
	for name, check := range reverseProxy.HealthChecks() {
		healthHandler.AddCheck(name, check)
	}

	healthHandler.Register(router)
	router.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": cfg.App.Version,
			"service": serviceName,
		})
	})
	router.NoRoute(reverseProxy.Handler())

	appLog.Info("Proxy configured",
		zap.String("auth", cfg.Gateway.AuthServiceURL),
		zap.String("store", cfg.Gateway.StoreServiceURL),
		zap.String("mot", cfg.Gateway.MOTServiceURL),
	)

	if err := server.Run(server.New(cfg, router, 8080), appLog); err != nil {
		appLog.Error("Server stopped", zap.Error(err))
	}
}
