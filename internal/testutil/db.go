package testutil

import (
	"path/filepath"
	"testing"

	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/store"
	"github.com/codr1/courtbook/internal/store/memory"
)

// NewTestDB creates a temporary SQLite database with migrations applied.
func NewTestDB(t *testing.T) *db.DB {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath)
	if err != nil {
		t.Fatalf("create test db: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close()
	})

	return database
}

// StoreFactory builds a fresh, empty store for one test.
type StoreFactory struct {
	Name string
	New  func(t *testing.T) store.Store
}

// Stores lists every store implementation so service tests can run against
// each of them.
func Stores() []StoreFactory {
	return []StoreFactory{
		{Name: "sqlite", New: func(t *testing.T) store.Store { return NewTestDB(t) }},
		{Name: "memory", New: func(t *testing.T) store.Store { return memory.New() }},
	}
}
