//go:build integration

package store

import (
	"context"
	"os"
	"testing"
)

func setupTestDB(t *testing.T) *PostgresStore {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := s.pool.Exec(ctx, "TRUNCATE ftopsis_runs"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	t.Cleanup(func() {
		_, _ = s.pool.Exec(ctx, "TRUNCATE ftopsis_runs")
		s.Close()
	})

	return s
}

func TestPostgresStore(t *testing.T) {
	testStore(t, setupTestDB(t))
}

func TestPostgresMigrateIsIdempotent(t *testing.T) {
	s := setupTestDB(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}
}
