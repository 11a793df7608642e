package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
	err    error
	ctxErr error
}

func (r *recorder) Notify(ctx context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.ctxErr = ctx.Err()
	return r.err
}

func TestMultiJoinsErrors(t *testing.T) {
	first := &recorder{err: errors.New("smtp down")}
	second := &recorder{}
	third := &recorder{err: errors.New("broker down")}

	err := Multi{first, nil, second, third}.Notify(context.Background(), Event{Kind: BookingConfirmed})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if !errors.Is(err, first.err) || !errors.Is(err, third.err) {
		t.Fatalf("expected both errors, got %v", err)
	}
	for i, r := range []*recorder{first, second, third} {
		if len(r.events) != 1 {
			t.Fatalf("notifier %d received %d events", i, len(r.events))
		}
	}
}

func TestDispatchDetachesCancellation(t *testing.T) {
	rec := &recorder{}
	dispatcher := NewDispatcher(rec)
	dispatcher.now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	select {
	case <-dispatcher.Dispatch(ctx, Event{Kind: BookingCancelled}):
	case <-time.After(time.Second):
		t.Fatal("dispatch did not finish")
	}

	if len(rec.events) != 1 {
		t.Fatalf("expected one event, got %d", len(rec.events))
	}
	if rec.ctxErr != nil {
		t.Fatalf("send context should not inherit cancellation, got %v", rec.ctxErr)
	}
	if !rec.events[0].OccurredAt.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected event to be stamped, got %v", rec.events[0].OccurredAt)
	}
}

type blockingNotifier struct {
	release chan struct{}
	sent    chan Event
}

func (b *blockingNotifier) Notify(ctx context.Context, event Event) error {
	select {
	case <-b.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	b.sent <- event
	return nil
}

func TestWaitDrainsInflightSends(t *testing.T) {
	notifier := &blockingNotifier{release: make(chan struct{}), sent: make(chan Event, 2)}
	dispatcher := NewDispatcher(notifier)

	dispatcher.Dispatch(context.Background(), Event{Kind: BookingConfirmed})
	dispatcher.Dispatch(context.Background(), Event{Kind: BookingPaid})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := dispatcher.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected wait to time out while sends block, got %v", err)
	}

	close(notifier.release)
	if err := dispatcher.Wait(context.Background()); err != nil {
		t.Fatalf("wait after release: %v", err)
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("expected both events delivered before wait returned, got %d", len(notifier.sent))
	}
}

func TestWaitWithNothingInflight(t *testing.T) {
	dispatcher := NewDispatcher(nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := dispatcher.Wait(ctx); err != nil {
		t.Fatalf("expected immediate return, got %v", err)
	}
}
