package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/db"
	"github.com/codr1/courtbook/internal/store"
	"github.com/codr1/courtbook/internal/store/storetest"
	"github.com/codr1/courtbook/internal/testutil"
)

func TestStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return testutil.NewTestDB(t) })
}

func TestNewFromConfigCreatesDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Filename = filepath.Join(t.TempDir(), "nested", "courtbook.db")

	database, err := db.NewFromConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	// Migrations are idempotent on reopen.
	again, err := db.New(cfg.Database.Filename)
	require.NoError(t, err)
	require.NoError(t, again.Close())

	count, err := database.CountParticipants(context.Background(), "none")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewFromConfigRejectsUnknownDriver(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Driver = "postgres"

	_, err := db.NewFromConfig(cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}
