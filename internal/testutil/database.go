package testutil

import (
	"testing"

	"snip-go/internal/database"
)

// NewTestDatabase returns a fully migrated in-memory database that is
// closed automatically when the test ends.
func NewTestDatabase(t *testing.T) *database.SQLiteDatabase {
	t.Helper()

	db, err := database.NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(); err != nil {
		t.Fatalf("migrating in-memory database: %v", err)
	}

	return db
}
