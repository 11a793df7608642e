// internal/api/tournaments/handlers.go
package tournaments

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/api/apiutil"
	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/notify"
	"github.com/codr1/courtbook/internal/tournament"
)

const tournamentQueryTimeout = 5 * time.Second

type Handler struct {
	registrar  *tournament.Registrar
	bracket    *tournament.Bracket
	dispatcher *notify.Dispatcher
}

func NewHandler(registrar *tournament.Registrar, bracket *tournament.Bracket, dispatcher *notify.Dispatcher) *Handler {
	return &Handler{registrar: registrar, bracket: bracket, dispatcher: dispatcher}
}

func (h *Handler) Register(r chi.Router, guards apiutil.Guards) {
	r.Get("/tournaments", h.HandleList)
	r.Get("/tournaments/{id}", h.HandleGet)
	r.Get("/tournaments/{id}/matches", h.HandleListMatches)
	r.Get("/matches/{id}", h.HandleGetMatch)
	r.With(guards.Limit).Post("/tournaments/{id}/participants", h.HandleRegister)
	r.With(guards.Limit).Delete("/tournaments/{id}/participants/{email}", h.HandleUnregister)

	r.Group(func(r chi.Router) {
		r.Use(guards.Admin)
		r.Post("/tournaments", h.HandleCreate)
		r.Post("/tournaments/{id}/status", h.HandleSetStatus)
		r.Delete("/tournaments/{id}", h.HandleDelete)
		r.Get("/tournaments/{id}/participants", h.HandleListParticipants)
		r.Post("/tournaments/{id}/participants/{email}/paid", h.HandleMarkPaid)
		r.Post("/tournaments/{id}/matches", h.HandleCreateMatches)
		r.Post("/matches/{id}/result", h.HandleRecordResult)
		r.Delete("/matches/{id}", h.HandleDeleteMatch)
		r.Post("/users", h.HandleSaveUser)
	})
}

// GET /api/v1/tournaments
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	list, err := h.registrar.ListTournaments(ctx)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if list == nil {
		list = []models.Tournament{}
	}
	apiutil.Respond(w, r, http.StatusOK, map[string]any{"tournaments": list})
}

// GET /api/v1/tournaments/{id}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	t, err := h.registrar.GetTournament(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusOK, t)
}

// POST /api/v1/tournaments
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req tournament.TournamentRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	created, err := h.registrar.CreateTournament(ctx, req)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusCreated, created)
}

type statusRequest struct {
	Status models.TournamentStatus `json:"status"`
}

// POST /api/v1/tournaments/{id}/status
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	updated, err := h.registrar.SetStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusOK, updated)
}

// DELETE /api/v1/tournaments/{id}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	if err := h.registrar.DeleteTournament(ctx, chi.URLParam(r, "id")); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/v1/tournaments/{id}/participants
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req tournament.RegistrationRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	req.TournamentID = chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	participant, err := h.registrar.Register(ctx, req)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	h.announce(ctx, notify.TournamentRegistered, participant)
	apiutil.Respond(w, r, http.StatusCreated, participant)
}

// DELETE /api/v1/tournaments/{id}/participants/{email}
func (h *Handler) HandleUnregister(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	removed, err := h.registrar.Unregister(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "email"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if removed != nil {
		h.announce(ctx, notify.TournamentUnregistered, *removed)
	}
	w.WriteHeader(http.StatusNoContent)
}

// announce dispatches a participant event together with its tournament.
func (h *Handler) announce(ctx context.Context, kind notify.Kind, participant models.Participant) {
	t, err := h.registrar.GetTournament(ctx, participant.TournamentID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).
			Str("tournament_id", participant.TournamentID).
			Msg("Failed to load tournament for notification")
		return
	}
	h.dispatcher.Dispatch(ctx, notify.Event{Kind: kind, Tournament: &t, Participant: &participant})
}

// GET /api/v1/tournaments/{id}/participants
func (h *Handler) HandleListParticipants(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	participants, err := h.registrar.ListParticipants(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if participants == nil {
		participants = []models.Participant{}
	}
	apiutil.Respond(w, r, http.StatusOK, map[string]any{"participants": participants})
}

// POST /api/v1/tournaments/{id}/participants/{email}/paid
func (h *Handler) HandleMarkPaid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	participant, err := h.registrar.MarkParticipantPaid(ctx, chi.URLParam(r, "id"), chi.URLParam(r, "email"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusOK, participant)
}

type matchesRequest struct {
	Matches []tournament.MatchInput `json:"matches"`
}

// POST /api/v1/tournaments/{id}/matches
func (h *Handler) HandleCreateMatches(w http.ResponseWriter, r *http.Request) {
	var req matchesRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	matches, err := h.bracket.CreateMatches(ctx, chi.URLParam(r, "id"), req.Matches)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusCreated, map[string]any{"matches": matches})
}

// GET /api/v1/tournaments/{id}/matches
func (h *Handler) HandleListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	matches, err := h.bracket.ListMatches(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	if matches == nil {
		matches = []models.Match{}
	}
	apiutil.Respond(w, r, http.StatusOK, map[string]any{"matches": matches})
}

// GET /api/v1/matches/{id}
func (h *Handler) HandleGetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	match, err := h.bracket.GetMatch(ctx, chi.URLParam(r, "id"))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusOK, match)
}

type resultRequest struct {
	Result string        `json:"result"`
	Winner models.Winner `json:"winner"`
}

// POST /api/v1/matches/{id}/result
func (h *Handler) HandleRecordResult(w http.ResponseWriter, r *http.Request) {
	var req resultRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	match, err := h.bracket.RecordResult(ctx, chi.URLParam(r, "id"), req.Result, req.Winner)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusOK, match)
}

// DELETE /api/v1/matches/{id}
func (h *Handler) HandleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	if err := h.bracket.DeleteMatch(ctx, chi.URLParam(r, "id")); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type userRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// POST /api/v1/users
func (h *Handler) HandleSaveUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), tournamentQueryTimeout)
	defer cancel()

	user, err := h.registrar.SaveUser(ctx, req.Email, req.Name)
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}
	apiutil.Respond(w, r, http.StatusOK, user)
}
