// Package database opens the pgx pools behind each service and holds the
// helpers shared by the Postgres repositories.
package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/exaring/otelpgx"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/autostore-platform/pkg/config"
	"github.com/prohmpiriya/autostore-platform/pkg/retry"
)

// SQLSTATE codes the repositories translate into domain errors
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
)

// PostgresConfig describes one service database and its pool
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	ConnectTimeout  time.Duration

	// Connect bounds the wait for a database that is still starting
	Connect *retry.Config
	// EnableTracing adds an otelpgx span per query
	EnableTracing bool
}

// FromConfig maps a per-service DB block (AUTH_DB_*, STORE_DB_*, MOT_DB_*)
func FromConfig(db config.DatabaseConfig, tracing bool) *PostgresConfig {
	return &PostgresConfig{
		Host:            db.Host,
		Port:            db.Port,
		User:            db.User,
		Password:        db.Password,
		Database:        db.DBName,
		SSLMode:         db.SSLMode,
		MaxConns:        int32(db.MaxOpenConns),
		MinConns:        int32(db.MaxIdleConns),
		MaxConnLifetime: db.ConnMaxLifetime,
		MaxConnIdleTime: db.ConnMaxIdleTime,
		ConnectTimeout:  5 * time.Second,
		EnableTracing:   tracing,
	}
}

// URL returns a postgres:// connection string with credentials escaped
func (c *PostgresConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Database,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

func (c *PostgresConfig) poolConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.URL())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if c.MaxConns > 0 {
		pc.MaxConns = c.MaxConns
	}
	pc.MinConns = c.MinConns
	if c.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = c.MaxConnLifetime
	}
	if c.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = c.MaxConnIdleTime
	}
	pc.ConnConfig.ConnectTimeout = c.ConnectTimeout
	if c.EnableTracing {
		pc.ConnConfig.Tracer = otelpgx.NewTracer()
	}
	return pc, nil
}

// PostgresDB owns a service's connection pool
type PostgresDB struct {
	pool *pgxpool.Pool
}

// NewPostgres opens the pool and retries until the first ping succeeds
func NewPostgres(ctx context.Context, cfg *PostgresConfig) (*PostgresDB, error) {
	if cfg == nil {
		return nil, errors.New("postgres config is required")
	}
	pc, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}

	var pool *pgxpool.Pool
	res := retry.New(cfg.Connect).Do(ctx, func(ctx context.Context) error {
		p, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	if res.Err != nil {
		cause := res.LastError
		if cause == nil {
			cause = res.Err
		}
		return nil, fmt.Errorf("connect to postgres %s after %d attempts: %w", cfg.Database, res.Attempts, cause)
	}

	return &PostgresDB{pool: pool}, nil
}

// Pool returns the pgx pool for repositories and migrations
func (db *PostgresDB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// HealthCheck pings the pool with a 5s bound
func (db *PostgresDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a duplicate key error
func IsUniqueViolation(err error) bool {
	return hasCode(err, UniqueViolation)
}

// IsForeignKeyViolation reports whether err references a missing row
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, ForeignKeyViolation)
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
