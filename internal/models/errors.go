package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrSlotUnavailable       = errors.New("slot unavailable")
	ErrNotFound              = errors.New("not found")
	ErrAlreadyCancelled      = errors.New("reservation already cancelled")
	ErrTournamentNotFound    = errors.New("tournament not found")
	ErrRegistrationClosed    = errors.New("tournament registration closed")
	ErrFull                  = errors.New("tournament is full")
	ErrDuplicateRegistration = errors.New("email already registered for tournament")
	ErrPartnerNotFound       = errors.New("partner not found")
	ErrMatchNotFound         = errors.New("match not found")
	ErrParticipantScheduled  = errors.New("participant is scheduled in a match")
)

// FieldError reports a single malformed or out-of-range input field.
// It matches ErrInvalidRequest under errors.Is.
type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e FieldError) Unwrap() error {
	return ErrInvalidRequest
}
