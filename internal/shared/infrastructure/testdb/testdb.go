// Package testdb opens migrated in-memory SQLite databases for repository tests.
package testdb

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/stride/internal/shared/infrastructure/migrations"
)

// NewSQLite returns a fresh, fully migrated database that is closed when the test ends.
func NewSQLite(t testing.TB) database.Connection {
	t.Helper()
	ctx := context.Background()

	conn, err := sqlite.NewConnection(ctx, database.Config{SQLitePath: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := migrations.Run(ctx, conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}
