// Package ratelimit throttles clients with a token bucket per key, kept in
// process or in Redis so several gateway replicas share one budget.
package ratelimit

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Config holds the bucket parameters
type Config struct {
	// RequestsPerSecond is the refill rate
	RequestsPerSecond int
	// Burst is the bucket capacity
	Burst int
	// KeyPrefix namespaces Redis keys
	KeyPrefix string
	// EntryTTL drops idle local buckets
	EntryTTL time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: 50,
		Burst:             100,
		KeyPrefix:         "ratelimit:",
		EntryTTL:          time.Minute,
	}
}

// Decision is the outcome of one Allow call
type Decision struct {
	Allowed   bool
	Remaining int
}

// Limiter decides whether a request for key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

type bucket struct {
	mu         sync.Mutex
	tokens     float64
	lastUpdate time.Time
}

// LocalLimiter keeps buckets in memory
type LocalLimiter struct {
	config  Config
	buckets sync.Map
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewLocalLimiter creates a limiter and starts its cleanup loop
func NewLocalLimiter(cfg Config) *LocalLimiter {
	if cfg.EntryTTL <= 0 {
		cfg.EntryTTL = time.Minute
	}
	l := &LocalLimiter{config: cfg, now: time.Now, stop: make(chan struct{})}
	go l.cleanup()
	return l
}

// Allow takes one token from key's bucket
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()
	v, _ := l.buckets.LoadOrStore(key, &bucket{tokens: float64(l.config.Burst), lastUpdate: now})
	b := v.(*bucket)

	b.mu.Lock()
	defer b.mu.Unlock()

	elapsed := now.Sub(b.lastUpdate).Seconds()
	b.tokens = math.Min(float64(l.config.Burst), b.tokens+elapsed*float64(l.config.RequestsPerSecond))
	b.lastUpdate = now

	if b.tokens >= 1 {
		b.tokens--
		return Decision{Allowed: true, Remaining: int(b.tokens)}, nil
	}
	return Decision{Allowed: false, Remaining: 0}, nil
}

// Sweep drops buckets idle for longer than EntryTTL
func (l *LocalLimiter) Sweep() {
	cutoff := l.now().Add(-l.config.EntryTTL)
	l.buckets.Range(func(key, value interface{}) bool {
		b := value.(*bucket)
		b.mu.Lock()
		if b.lastUpdate.Before(cutoff) {
			l.buckets.Delete(key)
		}
		b.mu.Unlock()
		return true
	})
}

func (l *LocalLimiter) cleanup() {
	ticker := time.NewTicker(l.config.EntryTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.Sweep()
		case <-l.stop:
			return
		}
	}
}

// Stop ends the cleanup loop
func (l *LocalLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// tokenBucket refills, then takes one token atomically.
// KEYS[1] bucket, ARGV rate, burst, now (seconds).
var tokenBucket = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call("HMGET", key, "tokens", "last_update")
local tokens = tonumber(data[1]) or burst
local last_update = tonumber(data[2]) or now

local elapsed = math.max(0, now - last_update)
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
end

redis.call("HSET", key, "tokens", tokens, "last_update", now)
redis.call("EXPIRE", key, math.ceil(burst / rate) + 1)
return {allowed, math.floor(tokens)}
`)

// RedisLimiter keeps buckets in Redis
type RedisLimiter struct {
	config Config
	rdb    redis.Scripter
	now    func() time.Time
}

// NewRedisLimiter creates a limiter backed by rdb
func NewRedisLimiter(rdb redis.Scripter, cfg Config) *RedisLimiter {
	return &RedisLimiter{config: cfg, rdb: rdb, now: time.Now}
}

// Allow takes one token from key's bucket
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	now := float64(l.now().UnixNano()) / 1e9
	res, err := tokenBucket.Run(ctx, l.rdb,
		[]string{l.config.KeyPrefix + key},
		l.config.RequestsPerSecond,
		l.config.Burst,
		now,
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit script returned %d values", len(res))
	}
	return Decision{Allowed: res[0] == 1, Remaining: int(res[1])}, nil
}
