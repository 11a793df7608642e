// Package store defines the persistence contract the booking and
// tournament cores depend on. Implementations live in internal/db (sqlite)
// and internal/store/memory (in-process, used by tests).
//
// Lookups of a missing row return models.ErrNotFound. Inserting a second
// participant with the same (tournament, email) returns
// models.ErrDuplicateRegistration, and inserting an active reservation
// whose (court, date, start) is already taken returns
// models.ErrSlotUnavailable.
package store

import (
	"context"

	"github.com/codr1/courtbook/internal/models"
)

type ReservationQueries interface {
	CreateReservation(ctx context.Context, res models.Reservation) error
	GetReservation(ctx context.Context, id string) (models.Reservation, error)
	UpdateReservation(ctx context.Context, res models.Reservation) error
	// ListActiveReservations returns active reservations on date; court 0
	// means every court.
	ListActiveReservations(ctx context.Context, date string, court int) ([]models.Reservation, error)
	ListReservationsByDate(ctx context.Context, date string) ([]models.Reservation, error)
}

type BlackoutQueries interface {
	CreateBlackout(ctx context.Context, block models.BlackoutBlock) error
	DeleteBlackout(ctx context.Context, id string) error
	ListBlackoutsByDate(ctx context.Context, date string) ([]models.BlackoutBlock, error)
	ListBlackouts(ctx context.Context) ([]models.BlackoutBlock, error)
}

type PromotionQueries interface {
	CreatePromotion(ctx context.Context, promo models.Promotion) error
	GetPromotion(ctx context.Context, id string) (models.Promotion, error)
	SetPromotionActive(ctx context.Context, id string, active bool) error
	DeletePromotion(ctx context.Context, id string) error
	ListPromotions(ctx context.Context) ([]models.Promotion, error)
}

type TournamentQueries interface {
	CreateTournament(ctx context.Context, tournament models.Tournament) error
	GetTournament(ctx context.Context, id string) (models.Tournament, error)
	ListTournaments(ctx context.Context) ([]models.Tournament, error)
	UpdateTournamentStatus(ctx context.Context, id string, status models.TournamentStatus) error
	DeleteTournament(ctx context.Context, id string) error
}

type ParticipantQueries interface {
	CreateParticipant(ctx context.Context, participant models.Participant) error
	GetParticipant(ctx context.Context, tournamentID, email string) (models.Participant, error)
	CountParticipants(ctx context.Context, tournamentID string) (int, error)
	ListParticipants(ctx context.Context, tournamentID string) ([]models.Participant, error)
	SetParticipantPaid(ctx context.Context, tournamentID, email string, paid bool) error
	// DeleteParticipant returns the number of rows removed.
	DeleteParticipant(ctx context.Context, tournamentID, email string) (int64, error)
	DeleteParticipantsByTournament(ctx context.Context, tournamentID string) error
}

type MatchQueries interface {
	CreateMatch(ctx context.Context, match models.Match) error
	GetMatch(ctx context.Context, id string) (models.Match, error)
	UpdateMatchResult(ctx context.Context, id, result string, winner models.Winner) error
	ListMatches(ctx context.Context, tournamentID string) ([]models.Match, error)
	DeleteMatch(ctx context.Context, id string) error
	DeleteMatchesByTournament(ctx context.Context, tournamentID string) error
}

type UserQueries interface {
	UpsertUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, email string) (models.User, error)
}

// Queries is the full read/write surface, usable both inside and outside a
// transaction.
type Queries interface {
	ReservationQueries
	BlackoutQueries
	PromotionQueries
	TournamentQueries
	ParticipantQueries
	MatchQueries
	UserQueries
}

// Store runs fn atomically: either every write fn performs is committed or
// none is. Implementations serialise concurrent transactions so a
// check-then-insert inside fn cannot race another one.
type Store interface {
	Queries
	RunInTx(ctx context.Context, fn func(q Queries) error) error
}
