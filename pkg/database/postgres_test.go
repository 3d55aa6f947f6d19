package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prohmpiriya/autostore-platform/pkg/config"
	"github.com/prohmpiriya/autostore-platform/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromConfig(t *testing.T) {
	cfg := FromConfig(config.DatabaseConfig{
		Host:            "db",
		Port:            5432,
		User:            "postgres",
		Password:        "p@ss word",
		DBName:          "auth_db",
		SSLMode:         "disable",
		MaxOpenConns:    20,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}, true)

	assert.Equal(t, int32(20), cfg.MaxConns)
	assert.Equal(t, int32(2), cfg.MinConns)
	assert.True(t, cfg.EnableTracing)
	assert.Equal(t, "postgres://postgres:p%40ss%20word@db:5432/auth_db?sslmode=disable", cfg.URL())

	pc, err := cfg.poolConfig()
	require.NoError(t, err)
	assert.Equal(t, "p@ss word", pc.ConnConfig.Password)
	assert.Equal(t, "auth_db", pc.ConnConfig.Database)
	assert.Equal(t, int32(20), pc.MaxConns)
	assert.Equal(t, 30*time.Minute, pc.MaxConnLifetime)
	assert.NotNil(t, pc.ConnConfig.Tracer)
}

func TestNewPostgres_Unreachable(t *testing.T) {
	cfg := &PostgresConfig{
		Host:           "127.0.0.1",
		Port:           1,
		User:           "postgres",
		Database:       "store_db",
		SSLMode:        "disable",
		ConnectTimeout: 200 * time.Millisecond,
		Connect:        &retry.Config{MaxRetries: 1, InitialInterval: 10 * time.Millisecond, MaxInterval: 10 * time.Millisecond, Multiplier: 1},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewPostgres(ctx, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store_db after 2 attempts")

	_, err = NewPostgres(ctx, nil)
	assert.Error(t, err)
}

func TestPgErrorCodes(t *testing.T) {
	dup := &pgconn.PgError{Code: UniqueViolation}
	fk := &pgconn.PgError{Code: ForeignKeyViolation}

	assert.True(t, IsUniqueViolation(dup))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert user: %w", dup)))
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
	assert.False(t, IsUniqueViolation(nil))

	assert.True(t, IsForeignKeyViolation(fmt.Errorf("insert quote: %w", fk)))
	assert.False(t, IsForeignKeyViolation(dup))
}
