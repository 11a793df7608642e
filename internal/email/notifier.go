package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/notify"
)

// Notifier turns notify events into emails for the booking contact or the
// tournament participant.
type Notifier struct {
	sender       EmailSender
	facilityName string
}

var _ notify.Notifier = (*Notifier)(nil)

func NewNotifier(sender EmailSender, facilityName string) *Notifier {
	return &Notifier{sender: sender, facilityName: facilityName}
}

func (n *Notifier) Notify(ctx context.Context, event notify.Event) error {
	if n == nil || n.sender == nil {
		return nil
	}

	recipient, message, ok := n.compose(event)
	if !ok {
		return nil
	}
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		return nil
	}

	if err := n.sender.Send(ctx, recipient, message); err != nil {
		return fmt.Errorf("email %s: %w", event.Kind, err)
	}
	log.Ctx(ctx).Debug().
		Str("event", string(event.Kind)).
		Str("recipient", recipient).
		Msg("Notification email sent")
	return nil
}

func (n *Notifier) compose(event notify.Event) (string, Message, bool) {
	switch event.Kind {
	case notify.BookingConfirmed, notify.BookingCancelled, notify.BookingPaid, notify.BookingReminder:
		if event.Reservation == nil {
			return "", Message{}, false
		}
		res := *event.Reservation
		var message Message
		switch event.Kind {
		case notify.BookingConfirmed:
			message = BuildConfirmationEmail(n.facilityName, res)
		case notify.BookingCancelled:
			message = BuildCancellationEmail(n.facilityName, res)
		case notify.BookingPaid:
			message = BuildPaymentEmail(n.facilityName, res)
		default:
			message = BuildReminderEmail(n.facilityName, res)
		}
		return res.ContactEmail, message, true

	case notify.TournamentRegistered, notify.TournamentUnregistered:
		if event.Tournament == nil || event.Participant == nil {
			return "", Message{}, false
		}
		if event.Kind == notify.TournamentRegistered {
			return event.Participant.Email, BuildRegistrationEmail(n.facilityName, *event.Tournament, *event.Participant), true
		}
		return event.Participant.Email, BuildUnregistrationEmail(n.facilityName, *event.Tournament, *event.Participant), true
	}
	return "", Message{}, false
}
