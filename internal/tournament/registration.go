// Package tournament runs fixed-capacity tournaments: participant
// registration with partner linkage, and administrator-entered matches and
// results.
package tournament

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/store"
)

type TournamentRequest struct {
	Name              string `json:"name"`
	Category          string `json:"category"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	RegistrationPrice int64  `json:"registrationPrice"`
	MinParticipants   int    `json:"minParticipants"`
	MaxParticipants   int    `json:"maxParticipants"`
	Courts            []int  `json:"courts"`
	Rules             string `json:"rules"`
	Prizes            string `json:"prizes"`
	ImageURL          string `json:"imageUrl"`
}

type RegistrationRequest struct {
	TournamentID string `json:"-"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	PartnerEmail string `json:"partnerEmail,omitempty"`
}

type Registrar struct {
	store     store.Store
	directory Directory
	courts    int
	defaults  config.TournamentConfig
	now       func() time.Time
}

// NewRegistrar builds a Registrar. With a nil directory, partners are looked
// up in the store's own users table.
func NewRegistrar(st store.Store, directory Directory, cfg *config.Config) (*Registrar, error) {
	if st == nil {
		return nil, errors.New("tournament registrar requires a store")
	}
	if cfg == nil {
		return nil, errors.New("tournament registrar requires configuration")
	}
	return &Registrar{
		store:     st,
		directory: directory,
		courts:    cfg.Facility.Courts,
		defaults:  cfg.Tournaments,
		now:       time.Now,
	}, nil
}

func (r *Registrar) SetClock(now func() time.Time) {
	r.now = now
}

func (r *Registrar) directoryFor(q store.Queries) Directory {
	if r.directory != nil {
		return r.directory
	}
	return storeDirectory{q: q}
}

// tournamentNotFound maps a missing row to models.ErrTournamentNotFound.
func tournamentNotFound(err error, id string) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("tournament %s: %w", id, models.ErrTournamentNotFound)
	}
	return err
}

func (r *Registrar) CreateTournament(ctx context.Context, req TournamentRequest) (models.Tournament, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Tournament{}, models.FieldError{Field: "name", Reason: "is required"}
	}
	startDate, err := models.ParseDate(req.StartDate, "start_date")
	if err != nil {
		return models.Tournament{}, err
	}
	endDate, err := models.ParseDate(req.EndDate, "end_date")
	if err != nil {
		return models.Tournament{}, err
	}
	if endDate < startDate {
		return models.Tournament{}, models.FieldError{Field: "end_date", Reason: "must not be before start_date"}
	}
	if req.RegistrationPrice < 0 {
		return models.Tournament{}, models.FieldError{Field: "registration_price", Reason: "must be 0 or greater"}
	}

	minParticipants := req.MinParticipants
	if minParticipants == 0 {
		minParticipants = r.defaults.DefaultMinParticipants
	}
	maxParticipants := req.MaxParticipants
	if maxParticipants == 0 {
		maxParticipants = r.defaults.DefaultMaxParticipants
	}
	if minParticipants < 1 {
		return models.Tournament{}, models.FieldError{Field: "min_participants", Reason: "must be at least 1"}
	}
	if maxParticipants < minParticipants {
		return models.Tournament{}, models.FieldError{Field: "max_participants", Reason: "must not be below min_participants"}
	}

	courts := models.IntList{}
	for _, court := range req.Courts {
		if court < 1 || court > r.courts {
			return models.Tournament{}, models.FieldError{
				Field:  "courts",
				Reason: fmt.Sprintf("must be between 1 and %d", r.courts),
			}
		}
		if !slices.Contains(courts, court) {
			courts = append(courts, court)
		}
	}
	slices.Sort(courts)

	tournament := models.Tournament{
		ID:                uuid.NewString(),
		Name:              name,
		Category:          strings.TrimSpace(req.Category),
		StartDate:         startDate,
		EndDate:           endDate,
		RegistrationPrice: req.RegistrationPrice,
		MinParticipants:   minParticipants,
		MaxParticipants:   maxParticipants,
		Courts:            courts,
		Status:            models.TournamentOpen,
		Rules:             req.Rules,
		Prizes:            req.Prizes,
		ImageURL:          strings.TrimSpace(req.ImageURL),
		CreatedAt:         r.now().UTC(),
	}
	if err := r.store.CreateTournament(ctx, tournament); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("name", name).Msg("Failed to create tournament")
		return models.Tournament{}, err
	}

	log.Ctx(ctx).Info().
		Str("tournament_id", tournament.ID).
		Int("max_participants", maxParticipants).
		Msg("Tournament created")
	return tournament, nil
}

func (r *Registrar) GetTournament(ctx context.Context, id string) (models.Tournament, error) {
	tournament, err := r.store.GetTournament(ctx, id)
	if err != nil {
		return models.Tournament{}, tournamentNotFound(err, id)
	}
	return tournament, nil
}

func (r *Registrar) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	return r.store.ListTournaments(ctx)
}

var statusTransitions = map[models.TournamentStatus][]models.TournamentStatus{
	models.TournamentOpen:       {models.TournamentClosed, models.TournamentInProgress},
	models.TournamentClosed:     {models.TournamentOpen, models.TournamentInProgress},
	models.TournamentInProgress: {models.TournamentFinished},
}

// SetStatus moves a tournament along open <-> closed -> in_progress ->
// finished. Setting the current status again is a no-op.
func (r *Registrar) SetStatus(ctx context.Context, id string, status models.TournamentStatus) (models.Tournament, error) {
	if !status.Valid() {
		return models.Tournament{}, models.FieldError{Field: "status", Reason: "is not a tournament status"}
	}

	var updated models.Tournament
	err := r.store.RunInTx(ctx, func(q store.Queries) error {
		tournament, err := q.GetTournament(ctx, id)
		if err != nil {
			return tournamentNotFound(err, id)
		}
		if tournament.Status == status {
			updated = tournament
			return nil
		}
		if !slices.Contains(statusTransitions[tournament.Status], status) {
			return models.FieldError{
				Field:  "status",
				Reason: fmt.Sprintf("cannot change from %s to %s", tournament.Status, status),
			}
		}
		if err := q.UpdateTournamentStatus(ctx, id, status); err != nil {
			return err
		}
		tournament.Status = status
		updated = tournament
		return nil
	})
	if err != nil {
		return models.Tournament{}, err
	}

	log.Ctx(ctx).Info().
		Str("tournament_id", id).
		Str("status", string(status)).
		Msg("Tournament status changed")
	return updated, nil
}

// DeleteTournament removes the tournament with its participants and
// matches in one transaction.
func (r *Registrar) DeleteTournament(ctx context.Context, id string) error {
	err := r.store.RunInTx(ctx, func(q store.Queries) error {
		if _, err := q.GetTournament(ctx, id); err != nil {
			return tournamentNotFound(err, id)
		}
		if err := q.DeleteMatchesByTournament(ctx, id); err != nil {
			return err
		}
		if err := q.DeleteParticipantsByTournament(ctx, id); err != nil {
			return err
		}
		return q.DeleteTournament(ctx, id)
	})
	if err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("tournament_id", id).Msg("Tournament deleted")
	return nil
}

// Register adds a participant. Checks run in this order inside one
// transaction: tournament exists, registration is open, capacity remains,
// the email is not already registered, and the partner (if any) is known.
func (r *Registrar) Register(ctx context.Context, req RegistrationRequest) (models.Participant, error) {
	email, err := models.NormalizeEmail(req.Email, "email")
	if err != nil {
		return models.Participant{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Participant{}, models.FieldError{Field: "name", Reason: "is required"}
	}
	var partnerEmail string
	if strings.TrimSpace(req.PartnerEmail) != "" {
		partnerEmail, err = models.NormalizeEmail(req.PartnerEmail, "partner_email")
		if err != nil {
			return models.Participant{}, err
		}
		if partnerEmail == email {
			return models.Participant{}, models.FieldError{Field: "partner_email", Reason: "must differ from email"}
		}
	}

	logger := log.Ctx(ctx).With().
		Str("component", "tournament_registration").
		Str("tournament_id", req.TournamentID).
		Str("email", email).
		Logger()

	var created models.Participant
	err = r.store.RunInTx(ctx, func(q store.Queries) error {
		tournament, err := q.GetTournament(ctx, req.TournamentID)
		if err != nil {
			return tournamentNotFound(err, req.TournamentID)
		}
		if tournament.Status != models.TournamentOpen {
			return fmt.Errorf("tournament %s is %s: %w", tournament.ID, tournament.Status, models.ErrRegistrationClosed)
		}

		count, err := q.CountParticipants(ctx, tournament.ID)
		if err != nil {
			return err
		}
		if count >= tournament.MaxParticipants {
			return fmt.Errorf("tournament %s has %d of %d places taken: %w", tournament.ID, count, tournament.MaxParticipants, models.ErrFull)
		}

		if _, err := q.GetParticipant(ctx, tournament.ID, email); err == nil {
			return fmt.Errorf("%s in tournament %s: %w", email, tournament.ID, models.ErrDuplicateRegistration)
		} else if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		participant := models.Participant{
			ID:           uuid.NewString(),
			TournamentID: tournament.ID,
			Email:        email,
			Name:         name,
			RegisteredAt: r.now().UTC(),
		}
		if partnerEmail != "" {
			partner, err := r.directoryFor(q).LookupUser(ctx, partnerEmail)
			if err != nil {
				if errors.Is(err, models.ErrNotFound) {
					return fmt.Errorf("%s: %w", partnerEmail, models.ErrPartnerNotFound)
				}
				return err
			}
			participant.PartnerEmail = &partner.Email
			participant.PartnerName = &partner.Name
		}

		if err := q.CreateParticipant(ctx, participant); err != nil {
			return err
		}
		created = participant
		return nil
	})
	if err != nil {
		if isRejection(err) {
			logger.Info().Err(err).Msg("Registration rejected")
		} else {
			logger.Error().Err(err).Msg("Failed to register participant")
		}
		return models.Participant{}, err
	}

	logger.Info().Str("participant_id", created.ID).Msg("Participant registered")
	return created, nil
}

func isRejection(err error) bool {
	for _, target := range []error{
		models.ErrTournamentNotFound,
		models.ErrRegistrationClosed,
		models.ErrFull,
		models.ErrDuplicateRegistration,
		models.ErrPartnerNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Unregister removes email from the tournament and returns the removed
// participant, or nil when the address was not registered. Withdrawal is
// only possible while the tournament is open, and never for a participant
// already placed in a match.
func (r *Registrar) Unregister(ctx context.Context, tournamentID, email string) (*models.Participant, error) {
	email, err := models.NormalizeEmail(email, "email")
	if err != nil {
		return nil, err
	}

	var removed *models.Participant
	err = r.store.RunInTx(ctx, func(q store.Queries) error {
		tournament, err := q.GetTournament(ctx, tournamentID)
		if err != nil {
			return tournamentNotFound(err, tournamentID)
		}
		if tournament.Status != models.TournamentOpen {
			return fmt.Errorf("tournament %s is %s: %w", tournament.ID, tournament.Status, models.ErrRegistrationClosed)
		}
		participant, err := q.GetParticipant(ctx, tournamentID, email)
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		matches, err := q.ListMatches(ctx, tournamentID)
		if err != nil {
			return err
		}
		for _, match := range matches {
			if slices.Contains(match.Team1, participant.ID) || slices.Contains(match.Team2, participant.ID) {
				return fmt.Errorf("participant %s plays in match %s: %w", participant.ID, match.ID, models.ErrParticipantScheduled)
			}
		}
		if _, err := q.DeleteParticipant(ctx, tournamentID, email); err != nil {
			return err
		}
		removed = &participant
		return nil
	})
	if err != nil {
		return nil, err
	}

	if removed != nil {
		log.Ctx(ctx).Info().
			Str("tournament_id", tournamentID).
			Str("participant_id", removed.ID).
			Msg("Participant unregistered")
	}
	return removed, nil
}

func (r *Registrar) MarkParticipantPaid(ctx context.Context, tournamentID, email string) (models.Participant, error) {
	email, err := models.NormalizeEmail(email, "email")
	if err != nil {
		return models.Participant{}, err
	}

	var updated models.Participant
	err = r.store.RunInTx(ctx, func(q store.Queries) error {
		if _, err := q.GetTournament(ctx, tournamentID); err != nil {
			return tournamentNotFound(err, tournamentID)
		}
		if err := q.SetParticipantPaid(ctx, tournamentID, email, true); err != nil {
			return err
		}
		updated, err = q.GetParticipant(ctx, tournamentID, email)
		return err
	})
	if err != nil {
		return models.Participant{}, err
	}

	log.Ctx(ctx).Info().
		Str("tournament_id", tournamentID).
		Str("participant_id", updated.ID).
		Msg("Participant marked paid")
	return updated, nil
}

func (r *Registrar) ListParticipants(ctx context.Context, tournamentID string) ([]models.Participant, error) {
	if _, err := r.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, tournamentNotFound(err, tournamentID)
	}
	return r.store.ListParticipants(ctx, tournamentID)
}
