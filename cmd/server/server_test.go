package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/notify"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.App.Port = 0
	cfg.Database.Filename = filepath.Join(t.TempDir(), "db", "courtbook.db")
	return cfg
}

func TestNewAppServesHealthAndAPI(t *testing.T) {
	cfg := testConfig(t)
	app, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(app.close)

	rec := httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/availability?date=2025-06-10", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	app.server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/promotions", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewAppRejectsUnknownTimezone(t *testing.T) {
	cfg := testConfig(t)
	cfg.Facility.Timezone = "Mars/Olympus_Mons"

	_, err := newApp(context.Background(), cfg)
	require.Error(t, err)
}

func TestRunStopsWhenContextEnds(t *testing.T) {
	app, err := newApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

type slowNotifier struct {
	delivered chan notify.Event
}

func (n *slowNotifier) Notify(_ context.Context, event notify.Event) error {
	time.Sleep(50 * time.Millisecond)
	n.delivered <- event
	return nil
}

func TestCloseWaitsForPendingNotifications(t *testing.T) {
	app, err := newApp(context.Background(), testConfig(t))
	require.NoError(t, err)

	notifier := &slowNotifier{delivered: make(chan notify.Event, 1)}
	app.dispatcher = notify.NewDispatcher(notifier)
	app.dispatcher.Dispatch(context.Background(), notify.Event{Kind: notify.BookingConfirmed})

	app.close()

	select {
	case event := <-notifier.delivered:
		assert.Equal(t, notify.BookingConfirmed, event.Kind)
	default:
		t.Fatal("close returned before the notification was delivered")
	}
}
