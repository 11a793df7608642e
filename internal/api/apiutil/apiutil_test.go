package apiutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/codr1/courtbook/internal/models"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "field error", err: models.FieldError{Field: "court", Reason: "is required"}, want: http.StatusBadRequest},
		{name: "slot unavailable", err: fmt.Errorf("create: %w", models.ErrSlotUnavailable), want: http.StatusConflict},
		{name: "not found", err: models.ErrNotFound, want: http.StatusNotFound},
		{name: "tournament not found", err: models.ErrTournamentNotFound, want: http.StatusNotFound},
		{name: "match not found", err: models.ErrMatchNotFound, want: http.StatusNotFound},
		{name: "already cancelled", err: models.ErrAlreadyCancelled, want: http.StatusConflict},
		{name: "full", err: models.ErrFull, want: http.StatusConflict},
		{name: "duplicate", err: models.ErrDuplicateRegistration, want: http.StatusConflict},
		{name: "closed", err: models.ErrRegistrationClosed, want: http.StatusConflict},
		{name: "scheduled participant", err: models.ErrParticipantScheduled, want: http.StatusConflict},
		{name: "partner", err: models.ErrPartnerNotFound, want: http.StatusUnprocessableEntity},
		{name: "handler error", err: HandlerError{Status: http.StatusTeapot, Message: "tea"}, want: http.StatusTeapot},
		{name: "unknown", err: errors.New("disk full"), want: http.StatusInternalServerError},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := StatusFor(test.err); got != test.want {
				t.Fatalf("expected %d, got %d", test.want, got)
			}
		})
	}
}

func TestWriteErrorHidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	WriteError(rec, req, errors.New("sqlite: disk I/O error"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "Internal Server Error" {
		t.Fatalf("unexpected error message %q", body["error"])
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"Ana"}`},
		{name: "unknown field", body: `{"name":"Ana","admin":true}`, wantErr: true},
		{name: "trailing data", body: `{"name":"Ana"}{"name":"Bo"}`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(test.body))
			var dst struct {
				Name string `json:"name"`
			}
			err := DecodeJSON(req, &dst)
			if test.wantErr {
				if StatusFor(err) != http.StatusBadRequest {
					t.Fatalf("expected bad request, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if dst.Name != "Ana" {
				t.Fatalf("expected Ana, got %q", dst.Name)
			}
		})
	}
}
