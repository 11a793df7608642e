package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/models"
)

// HandlerError carries the status and client-facing message for a failure
// raised inside a handler.
type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

type errorResponse struct {
	Error string `json:"error"`
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return HandlerError{Status: http.StatusBadRequest, Message: "missing request body"}
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return HandlerError{Status: http.StatusBadRequest, Message: fmt.Sprintf("invalid JSON body: %v", err), Err: err}
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return HandlerError{Status: http.StatusBadRequest, Message: "invalid JSON body"}
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// StatusFor maps an error from the booking or tournament packages to an
// HTTP status.
func StatusFor(err error) int {
	var herr HandlerError
	switch {
	case errors.As(err, &herr):
		return herr.Status
	case errors.Is(err, models.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNotFound),
		errors.Is(err, models.ErrTournamentNotFound),
		errors.Is(err, models.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrPartnerNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrSlotUnavailable),
		errors.Is(err, models.ErrAlreadyCancelled),
		errors.Is(err, models.ErrRegistrationClosed),
		errors.Is(err, models.ErrFull),
		errors.Is(err, models.ErrDuplicateRegistration),
		errors.Is(err, models.ErrParticipantScheduled):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// publicMessager is implemented by errors whose Error text carries details
// meant for logs only.
type publicMessager interface {
	PublicMessage() string
}

// WriteError renders err as a JSON error body. Server errors are logged and
// their details withheld from the client.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	message := err.Error()
	var public publicMessager
	if errors.As(err, &public) {
		message = public.PublicMessage()
	}
	if status >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		message = http.StatusText(status)
	}
	if writeErr := WriteJSON(w, status, errorResponse{Error: message}); writeErr != nil {
		log.Ctx(r.Context()).Error().Err(writeErr).Msg("Failed to write error response")
	}
}

// Respond writes payload with status, logging encoding failures.
func Respond(w http.ResponseWriter, r *http.Request, status int, payload any) {
	if err := WriteJSON(w, status, payload); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}

// Guards are the middlewares handler packages attach to their routes.
// Admin protects staff-only routes; Limit throttles public writes.
type Guards struct {
	Admin func(http.Handler) http.Handler
	Limit func(http.Handler) http.Handler
}
