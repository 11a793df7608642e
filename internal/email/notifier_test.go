package email

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/notify"
)

type sentEmail struct {
	recipient string
	message   Message
}

type fakeEmailSender struct {
	sent []sentEmail
	err  error
}

func (f *fakeEmailSender) Send(_ context.Context, recipient string, message Message) error {
	f.sent = append(f.sent, sentEmail{recipient: recipient, message: message})
	return f.err
}

func testReservation() models.Reservation {
	method := "card"
	return models.Reservation{
		ID:              "res-1",
		Court:           2,
		Date:            "2025-06-10",
		StartTime:       "15:00",
		DurationHours:   2,
		Price:           520,
		BasePrice:       650,
		DiscountPercent: 20,
		PaymentMethod:   &method,
		ContactName:     "Ana",
		ContactEmail:    "ana@example.com",
	}
}

func TestNotifierComposesBookingEmails(t *testing.T) {
	tests := []struct {
		name        string
		kind        notify.Kind
		subject     string
		bodyContent string
	}{
		{name: "confirmed", kind: notify.BookingConfirmed, subject: "Court Booking Confirmed - Riverside", bodyContent: "Price: 520 (20% off 650)"},
		{name: "cancelled", kind: notify.BookingCancelled, subject: "Court Booking Cancelled - Riverside", bodyContent: "Reference: res-1"},
		{name: "paid", kind: notify.BookingPaid, subject: "Payment Received - Riverside", bodyContent: "Method: card"},
		{name: "reminder", kind: notify.BookingReminder, subject: "Upcoming Court Booking Reminder - Riverside", bodyContent: "Time: 3:00 PM - 5:00 PM"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sender := &fakeEmailSender{}
			res := testReservation()

			err := NewNotifier(sender, "Riverside").Notify(context.Background(), notify.Event{Kind: test.kind, Reservation: &res})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(sender.sent) != 1 {
				t.Fatalf("expected one email, got %d", len(sender.sent))
			}
			got := sender.sent[0]
			if got.recipient != "ana@example.com" {
				t.Fatalf("unexpected recipient %q", got.recipient)
			}
			if got.message.Subject != test.subject {
				t.Fatalf("expected subject %q, got %q", test.subject, got.message.Subject)
			}
			if !strings.Contains(got.message.Body, test.bodyContent) {
				t.Fatalf("expected body to contain %q, got:\n%s", test.bodyContent, got.message.Body)
			}
			if !strings.Contains(got.message.Body, "Date: Tuesday, Jun 10, 2025") {
				t.Fatalf("expected formatted date, got:\n%s", got.message.Body)
			}
		})
	}
}

func TestNotifierRegistrationEmail(t *testing.T) {
	sender := &fakeEmailSender{}
	partner := "Bo"
	tournament := models.Tournament{Name: "Summer Open", StartDate: "2025-07-01", EndDate: "2025-07-02", RegistrationPrice: 40}
	participant := models.Participant{Email: "ana@example.com", Name: "Ana", PartnerName: &partner}

	err := NewNotifier(sender, "").Notify(context.Background(), notify.Event{
		Kind:        notify.TournamentRegistered,
		Tournament:  &tournament,
		Participant: &participant,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one email, got %d", len(sender.sent))
	}
	body := sender.sent[0].message.Body
	for _, want := range []string{"Facility: your facility", "Partner: Bo", "Registration fee: 40"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected body to contain %q, got:\n%s", want, body)
		}
	}
}

func TestNotifierSkipsIncompleteEvents(t *testing.T) {
	sender := &fakeEmailSender{}
	notifier := NewNotifier(sender, "Riverside")

	for _, event := range []notify.Event{
		{Kind: notify.BookingConfirmed},
		{Kind: notify.TournamentRegistered},
		{Kind: "unknown"},
	} {
		if err := notifier.Notify(context.Background(), event); err != nil {
			t.Fatalf("unexpected error for %s: %v", event.Kind, err)
		}
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no emails, got %d", len(sender.sent))
	}
}

func TestNotifierWrapsSendErrors(t *testing.T) {
	sendErr := errors.New("throttled")
	sender := &fakeEmailSender{err: sendErr}
	res := testReservation()

	err := NewNotifier(sender, "Riverside").Notify(context.Background(), notify.Event{Kind: notify.BookingPaid, Reservation: &res})
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected wrapped send error, got %v", err)
	}
}
