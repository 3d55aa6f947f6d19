// Package redis connects the services to Redis. The gateway rate limiter and
// the store's payment idempotency keys live there.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/autostore-platform/pkg/config"
	"github.com/prohmpiriya/autostore-platform/pkg/retry"
	"github.com/redis/go-redis/v9"
)

// Config holds connection and pool settings
type Config struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Connect controls how long NewClient keeps pinging a server that is
	// still starting. nil means retry.DefaultConfig.
	Connect *retry.Config
}

// DefaultConfig points at a local Redis
func DefaultConfig() *Config {
	return &Config{
		Host:         "localhost",
		Port:         6379,
		PoolSize:     20,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// FromConfig maps the shared REDIS_* settings, keeping defaults for zero values
func FromConfig(rc config.RedisConfig) *Config {
	cfg := DefaultConfig()
	cfg.Host = rc.Host
	cfg.Port = rc.Port
	cfg.Password = rc.Password
	cfg.DB = rc.DB
	cfg.PoolSize = orDefault(rc.PoolSize, cfg.PoolSize)
	cfg.MinIdleConns = orDefault(rc.MinIdleConns, cfg.MinIdleConns)
	cfg.DialTimeout = orDefault(rc.DialTimeout, cfg.DialTimeout)
	cfg.ReadTimeout = orDefault(rc.ReadTimeout, cfg.ReadTimeout)
	cfg.WriteTimeout = orDefault(rc.WriteTimeout, cfg.WriteTimeout)
	return cfg
}

func orDefault[T int | time.Duration](v, def T) T {
	if v > 0 {
		return v
	}
	return def
}

// Addr is host:port
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Client is a connected go-redis client. It satisfies redis.Scripter and
// middleware.RedisClient.
type Client struct {
	*redis.Client
}

// NewClient dials Redis and waits until it answers PING
func NewClient(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	res := retry.New(cfg.Connect).Do(ctx, func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	if res.Err != nil {
		_ = rdb.Close()
		cause := res.LastError
		if cause == nil {
			cause = res.Err
		}
		return nil, fmt.Errorf("connect to redis at %s after %d attempts: %w", cfg.Addr(), res.Attempts, cause)
	}

	return &Client{Client: rdb}, nil
}

// HealthCheck pings Redis with a 5s bound
func (c *Client) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
