// internal/api/reservations/handlers.go
package reservations

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codr1/courtbook/internal/api/apiutil"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/notify"
)

const reservationQueryTimeout = 5 * time.Second

type Handler struct {
	manager    *booking.Manager
	dispatcher *notify.Dispatcher
}

func NewHandler(manager *booking.Manager, dispatcher *notify.Dispatcher) *Handler {
	return &Handler{manager: manager, dispatcher: dispatcher}
}

// Register mounts the booking routes on r.
func (h *Handler) Register(r chi.Router, guards apiutil.Guards) {
	r.Get("/availability", h.HandleAvailability)
	r.Get("/quote", h.HandleQuote)
	r.With(guards.Limit).Post("/reservations", h.HandleCreate)
	r.Get("/reservations/{id}", h.HandleGet)

	r.Group(func(r chi.Router) {
		r.Use(guards.Admin)
		r.Get("/reservations", h.HandleList)
		r.Post("/reservations/{id}/paid", h.HandleMarkPaid)
		r.Post("/reservations/{id}/pending", h.HandleMarkPending)
		r.Post("/reservations/{id}/cancel", h.HandleCancel)
	})
}

// GET /api/v1/availability?date=
func (h *Handler) HandleAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	schedule, err := h.manager.DaySchedule(ctx, r.URL.Query().Get("date"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusOK, map[string]any{"courts": schedule})
}

// GET /api/v1/quote?court=&date=&start=&duration=
func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	court, err := apiutil.ParsePositiveIntField(query.Get("court"), "court")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	duration, err := apiutil.ParsePositiveFloatField(query.Get("duration"), "duration_hours")
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	quote, err := h.manager.Quote(ctx, court, query.Get("date"), query.Get("start"), duration)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusOK, quote)
}

// POST /api/v1/reservations
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req booking.Request
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	created, err := h.manager.Create(ctx, req)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	h.dispatcher.Dispatch(r.Context(), notify.Event{Kind: notify.BookingConfirmed, Reservation: &created})
	apiutil.Respond(w, r, http.StatusCreated, created)
}

// GET /api/v1/reservations?date=
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	reservations, err := h.manager.ListByDate(ctx, r.URL.Query().Get("date"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if reservations == nil {
		reservations = []models.Reservation{}
	}
	apiutil.Respond(w, r, http.StatusOK, map[string]any{"reservations": reservations})
}

// publicReservation is what anonymous callers see of a booking. Contact
// details are admin-only.
type publicReservation struct {
	ID              string                   `json:"id"`
	Court           int                      `json:"court"`
	Date            string                   `json:"date"`
	StartTime       string                   `json:"startTime"`
	DurationHours   float64                  `json:"durationHours"`
	Price           int64                    `json:"price"`
	BasePrice       int64                    `json:"basePrice"`
	DiscountPercent int                      `json:"discountPercent"`
	PaymentStatus   models.PaymentStatus     `json:"paymentStatus"`
	Status          models.ReservationStatus `json:"status"`
	CreatedAt       time.Time                `json:"createdAt"`
}

func newPublicReservation(res models.Reservation) publicReservation {
	return publicReservation{
		ID:              res.ID,
		Court:           res.Court,
		Date:            res.Date,
		StartTime:       res.StartTime,
		DurationHours:   res.DurationHours,
		Price:           res.Price,
		BasePrice:       res.BasePrice,
		DiscountPercent: res.DiscountPercent,
		PaymentStatus:   res.PaymentStatus,
		Status:          res.Status,
		CreatedAt:       res.CreatedAt,
	}
}

// GET /api/v1/reservations/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	res, err := h.manager.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusOK, newPublicReservation(res))
}

type paymentRequest struct {
	Method string `json:"method"`
}

// POST /api/v1/reservations/{id}/paid
func (h *Handler) HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	h.update(w, r, notify.BookingPaid, func(ctx context.Context, id string) (models.Reservation, error) {
		return h.manager.MarkPaid(ctx, id, strings.TrimSpace(req.Method))
	})
}

// POST /api/v1/reservations/{id}/pending
func (h *Handler) HandleMarkPending(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "", h.manager.MarkPending)
}

// POST /api/v1/reservations/{id}/cancel
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, notify.BookingCancelled, h.manager.Cancel)
}

// update runs a reservation transition and, when kind is set, announces the
// result.
func (h *Handler) update(w http.ResponseWriter, r *http.Request, kind notify.Kind, apply func(context.Context, string) (models.Reservation, error)) {
	ctx, cancel := context.WithTimeout(r.Context(), reservationQueryTimeout)
	defer cancel()

	updated, err := apply(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if kind != "" {
		h.dispatcher.Dispatch(r.Context(), notify.Event{Kind: kind, Reservation: &updated})
	}
	apiutil.Respond(w, r, http.StatusOK, updated)
}
