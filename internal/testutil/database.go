package testutil

import (
	"testing"

	"lsfd202201/internal/database"
	"lsfd202201/internal/site"
)

// NewTestStore creates a new in-memory SQLite store with schema applied.
// The store is automatically closed when the test completes.
func NewTestStore(t *testing.T) site.Store {
	t.Helper()

	sqlDB, err := database.OpenConnection(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	if _, err := sqlDB.Exec(database.Schema); err != nil {
		sqlDB.Close()
		t.Fatalf("failed to apply schema: %v", err)
	}

	store := database.NewSQLiteDatabaseFromDB(sqlDB)

	t.Cleanup(func() {
		store.Close()
	})

	return store
}
