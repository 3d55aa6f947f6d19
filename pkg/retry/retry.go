// Package retry runs operations with exponential backoff.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

var (
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
	ErrContextCanceled    = errors.New("context canceled during retry")
)

// Config contains retry configuration
type Config struct {
	// MaxRetries counts retries after the first attempt
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
	Multiplier      float64
	// JitterFactor in [0,1]; 0.1 spreads each wait by ±10%
	JitterFactor float64
}

// DefaultConfig backs off 500ms, 1s, 2s with ±10% jitter
func DefaultConfig() *Config {
	return &Config{
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     10 * time.Second,
		Multiplier:      2.0,
		JitterFactor:    0.1,
	}
}

// Operation is the function to be retried
type Operation func(ctx context.Context) error

// PermanentError stops the retry loop immediately
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent marks an error as not worth retrying
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Result describes a finished retry loop
type Result struct {
	// Err is nil on success, the unwrapped permanent error, or one of the
	// package sentinels
	Err       error
	Attempts  int
	LastError error
}

// OnRetry is called before each wait
type OnRetry func(attempt int, err error, wait time.Duration)

// Retrier runs operations with exponential backoff
type Retrier struct {
	config  Config
	onRetry OnRetry
}

// New creates a Retrier, filling zero values from DefaultConfig
func New(cfg *Config) *Retrier {
	def := DefaultConfig()
	if cfg == nil {
		cfg = def
	}
	c := *cfg
	if c.InitialInterval <= 0 {
		c.InitialInterval = def.InitialInterval
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = def.MaxInterval
	}
	if c.Multiplier <= 0 {
		c.Multiplier = def.Multiplier
	}
	c.JitterFactor = math.Max(0, math.Min(1, c.JitterFactor))
	return &Retrier{config: c}
}

// OnRetry registers a hook called before each wait
func (r *Retrier) OnRetry(fn OnRetry) *Retrier {
	r.onRetry = fn
	return r
}

// Do runs op until it succeeds, returns a permanent error, runs out of
// attempts, or ctx is done.
func (r *Retrier) Do(ctx context.Context, op Operation) *Result {
	res := &Result{}

	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			res.Err = ErrContextCanceled
			return res
		}

		res.Attempts = attempt + 1
		err := op(ctx)
		if err == nil {
			res.Err = nil
			return res
		}
		res.LastError = err

		var perm *PermanentError
		if errors.As(err, &perm) {
			res.Err = perm.Err
			res.LastError = perm.Err
			return res
		}
		if attempt == r.config.MaxRetries {
			break
		}

		wait := r.backoff(attempt)
		if r.onRetry != nil {
			r.onRetry(attempt+1, err, wait)
		}

		select {
		case <-ctx.Done():
			res.Err = ErrContextCanceled
			return res
		case <-time.After(wait):
		}
	}

	res.Err = ErrMaxRetriesExceeded
	return res
}

func (r *Retrier) backoff(attempt int) time.Duration {
	d := float64(r.config.InitialInterval) * math.Pow(r.config.Multiplier, float64(attempt))
	if j := r.config.JitterFactor; j > 0 {
		d += (rand.Float64()*2 - 1) * d * j
	}
	if d > float64(r.config.MaxInterval) {
		d = float64(r.config.MaxInterval)
	}
	if d <= 0 {
		d = float64(r.config.InitialInterval)
	}
	return time.Duration(d)
}

// Do is shorthand for New(cfg).Do(ctx, op) that returns only the error
func Do(ctx context.Context, cfg *Config, op Operation) error {
	return New(cfg).Do(ctx, op).Err
}
