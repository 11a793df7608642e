// Package notify carries booking and tournament events to the outside world
// (email, message queue). Nothing in the booking or tournament cores calls
// it; HTTP handlers and scheduled jobs do, after a state change commits.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/models"
)

type Kind string

const (
	BookingConfirmed       Kind = "booking.confirmed"
	BookingCancelled       Kind = "booking.cancelled"
	BookingPaid            Kind = "booking.paid"
	BookingReminder        Kind = "booking.reminder"
	TournamentRegistered   Kind = "tournament.registered"
	TournamentUnregistered Kind = "tournament.unregistered"
)

// Event describes one committed change. Reservation is set for booking
// kinds; Tournament and Participant for tournament kinds.
type Event struct {
	Kind        Kind                `json:"type"`
	OccurredAt  time.Time           `json:"occurredAt"`
	Reservation *models.Reservation `json:"reservation,omitempty"`
	Tournament  *models.Tournament  `json:"tournament,omitempty"`
	Participant *models.Participant `json:"participant,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Multi delivers each event to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

const defaultTimeout = 5 * time.Second

// Dispatcher sends events in the background so request handlers never wait
// on a mail server or broker.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	now      func() time.Time
	inflight sync.WaitGroup
}

func NewDispatcher(notifier Notifier) *Dispatcher {
	if notifier == nil {
		notifier = Nop{}
	}
	return &Dispatcher{notifier: notifier, timeout: defaultTimeout, now: time.Now}
}

// Dispatch stamps event and delivers it on a new goroutine. The send
// context keeps ctx's values (logger, request ID) but not its
// cancellation. The returned channel is closed when delivery finishes.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) <-chan struct{} {
	done := make(chan struct{})
	if event.OccurredAt.IsZero() {
		event.OccurredAt = d.now().UTC()
	}

	d.inflight.Add(1)
	go func() {
		defer d.inflight.Done()
		defer close(done)
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(sendCtx, event); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("event", string(event.Kind)).Msg("Failed to deliver notification")
		}
	}()
	return done
}

// Wait blocks until every dispatched event has been delivered or ctx ends.
// Callers stop dispatching before they wait.
func (d *Dispatcher) Wait(ctx context.Context) error {
	drained := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(drained)
	}()
	select {
	case <-drained:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
