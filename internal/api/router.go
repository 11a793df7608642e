// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codr1/courtbook/internal/api/apiutil"
	"github.com/codr1/courtbook/internal/api/facility"
	"github.com/codr1/courtbook/internal/api/reservations"
	"github.com/codr1/courtbook/internal/api/tournaments"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/notify"
	"github.com/codr1/courtbook/internal/ratelimit"
	"github.com/codr1/courtbook/internal/tournament"
)

type Dependencies struct {
	Bookings       *booking.Manager
	Registrar      *tournament.Registrar
	Bracket        *tournament.Bracket
	Dispatcher     *notify.Dispatcher
	Limiter        *ratelimit.Limiter
	AdminTokenHash string
}

// NewRouter builds the HTTP handler with the standard middleware chain.
func NewRouter(deps Dependencies) http.Handler {
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = notify.NewDispatcher(nil)
	}
	guards := apiutil.Guards{
		Admin: RequireAdmin(deps.AdminTokenHash),
		Limit: deps.Limiter.Middleware,
	}

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		reservations.NewHandler(deps.Bookings, dispatcher).Register(r, guards)
		facility.NewHandler(deps.Bookings).Register(r, guards)
		tournaments.NewHandler(deps.Registrar, deps.Bracket, dispatcher).Register(r, guards)
	})

	return ChainMiddleware(
		r,
		WithLogging,
		WithRecovery,
		WithRequestID,
	)
}
