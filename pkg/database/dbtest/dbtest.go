// Package dbtest opens a migrated PostgreSQL pool for integration tests.
// Tests are skipped unless INTEGRATION_TEST=true.
package dbtest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prohmpiriya/autostore-platform/pkg/database"
)

// SkipIfNoIntegration skips t unless integration tests are enabled
func SkipIfNoIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Open connects to dbName on the TEST_POSTGRES_* server, applies migrations
// and truncates tables. Each service uses its own database so goose version
// tables do not collide.
func Open(t *testing.T, dbName string, migrations fs.FS, tables ...string) *pgxpool.Pool {
	t.Helper()
	SkipIfNoIntegration(t)

	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		env("TEST_POSTGRES_USER", "postgres"),
		env("TEST_POSTGRES_PASSWORD", "postgres"),
		env("TEST_POSTGRES_HOST", "localhost"),
		env("TEST_POSTGRES_PORT", "5432"),
		dbName,
	)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("Failed to create PostgreSQL pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping PostgreSQL: %v", err)
	}
	if err := database.Migrate(ctx, pool, migrations); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	if len(tables) > 0 {
		if _, err := pool.Exec(ctx, "TRUNCATE "+strings.Join(tables, ", ")+" RESTART IDENTITY CASCADE"); err != nil {
			t.Fatalf("Failed to truncate tables: %v", err)
		}
	}
	return pool
}
