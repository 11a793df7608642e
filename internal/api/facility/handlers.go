// internal/api/facility/handlers.go
package facility

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codr1/courtbook/internal/api/apiutil"
	"github.com/codr1/courtbook/internal/booking"
	"github.com/codr1/courtbook/internal/models"
)

const facilityQueryTimeout = 5 * time.Second

// Handler serves the staff-managed facility rules: blackout blocks and
// promotions.
type Handler struct {
	manager *booking.Manager
}

func NewHandler(manager *booking.Manager) *Handler {
	return &Handler{manager: manager}
}

func (h *Handler) Register(r chi.Router, guards apiutil.Guards) {
	r.Group(func(r chi.Router) {
		r.Use(guards.Admin)

		r.Get("/blackouts", h.HandleListBlackouts)
		r.Post("/blackouts", h.HandleCreateBlackout)
		r.Delete("/blackouts/{id}", h.HandleDeleteBlackout)

		r.Get("/promotions", h.HandleListPromotions)
		r.Post("/promotions", h.HandleCreatePromotion)
		r.Post("/promotions/{id}/active", h.HandleSetPromotionActive)
		r.Delete("/promotions/{id}", h.HandleDeletePromotion)
	})
}

// GET /api/v1/blackouts?date=
func (h *Handler) HandleListBlackouts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), facilityQueryTimeout)
	defer cancel()

	blocks, err := h.manager.ListBlackouts(ctx, r.URL.Query().Get("date"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if blocks == nil {
		blocks = []models.BlackoutBlock{}
	}
	apiutil.Respond(w, r, http.StatusOK, map[string]any{"blackouts": blocks})
}

// POST /api/v1/blackouts
func (h *Handler) HandleCreateBlackout(w http.ResponseWriter, r *http.Request) {
	var req booking.BlackoutRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), facilityQueryTimeout)
	defer cancel()

	block, err := h.manager.CreateBlackout(ctx, req)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusCreated, block)
}

// DELETE /api/v1/blackouts/{id}
func (h *Handler) HandleDeleteBlackout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), facilityQueryTimeout)
	defer cancel()

	if err := h.manager.DeleteBlackout(ctx, chi.URLParam(r, "id")); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GET /api/v1/promotions
func (h *Handler) HandleListPromotions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), facilityQueryTimeout)
	defer cancel()

	promotions, err := h.manager.ListPromotions(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if promotions == nil {
		promotions = []models.Promotion{}
	}
	apiutil.Respond(w, r, http.StatusOK, map[string]any{"promotions": promotions})
}

// POST /api/v1/promotions
func (h *Handler) HandleCreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req booking.PromotionRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), facilityQueryTimeout)
	defer cancel()

	promo, err := h.manager.CreatePromotion(ctx, req)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusCreated, promo)
}

type activeRequest struct {
	Active *bool `json:"active"`
}

// POST /api/v1/promotions/{id}/active
func (h *Handler) HandleSetPromotionActive(w http.ResponseWriter, r *http.Request) {
	var req activeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if req.Active == nil {
		apiutil.WriteError(w, r, models.FieldError{Field: "active", Reason: "is required"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), facilityQueryTimeout)
	defer cancel()

	promo, err := h.manager.SetPromotionActive(ctx, chi.URLParam(r, "id"), *req.Active)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusOK, promo)
}

// DELETE /api/v1/promotions/{id}
func (h *Handler) HandleDeletePromotion(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), facilityQueryTimeout)
	defer cancel()

	if err := h.manager.DeletePromotion(ctx, chi.URLParam(r, "id")); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
