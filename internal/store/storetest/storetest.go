// Package storetest holds behaviour checks shared by every store.Store
// implementation.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/store"
)

// Run exercises the stores returned by newStore, which must start empty.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("reservation round trip", func(t *testing.T) { testReservations(t, newStore(t)) })
	t.Run("active start is unique", func(t *testing.T) { testActiveStartUnique(t, newStore(t)) })
	t.Run("tx rollback", func(t *testing.T) { testRollback(t, newStore(t)) })
	t.Run("facility rules", func(t *testing.T) { testFacility(t, newStore(t)) })
	t.Run("tournaments", func(t *testing.T) { testTournaments(t, newStore(t)) })
	t.Run("users", func(t *testing.T) { testUsers(t, newStore(t)) })
}

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func reservation(id string, court int, start string) models.Reservation {
	return models.Reservation{
		ID:            id,
		Court:         court,
		Date:          "2025-06-10",
		StartTime:     start,
		DurationHours: 1,
		Price:         250,
		BasePrice:     250,
		PaymentStatus: models.PaymentPending,
		Status:        models.ReservationActive,
		ContactName:   "Ana",
		ContactEmail:  "ana@example.com",
		ContactPhone:  "+12025550100",
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func testReservations(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateReservation(ctx, reservation("r1", 1, "10:00")))
	require.NoError(t, s.CreateReservation(ctx, reservation("r2", 2, "09:00")))

	got, err := s.GetReservation(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "10:00", got.StartTime)
	assert.Nil(t, got.PaymentMethod)
	assert.True(t, got.CreatedAt.Equal(now))

	method := "card"
	got.PaymentStatus = models.PaymentPaid
	got.PaymentMethod = &method
	got.Status = models.ReservationCancelled
	require.NoError(t, s.UpdateReservation(ctx, got))

	got, err = s.GetReservation(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	require.NotNil(t, got.PaymentMethod)
	assert.Equal(t, "card", *got.PaymentMethod)

	active, err := s.ListActiveReservations(ctx, "2025-06-10", 0)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "r2", active[0].ID)

	onCourt, err := s.ListActiveReservations(ctx, "2025-06-10", 1)
	require.NoError(t, err)
	assert.Empty(t, onCourt)

	all, err := s.ListReservationsByDate(ctx, "2025-06-10")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = s.GetReservation(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.ErrorIs(t, s.UpdateReservation(ctx, reservation("nope", 1, "10:00")), models.ErrNotFound)
}

func testActiveStartUnique(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateReservation(ctx, reservation("r1", 1, "10:00")))
	err := s.CreateReservation(ctx, reservation("r2", 1, "10:00"))
	assert.ErrorIs(t, err, models.ErrSlotUnavailable)

	cancelled := reservation("r3", 1, "10:00")
	cancelled.Status = models.ReservationCancelled
	require.NoError(t, s.CreateReservation(ctx, cancelled))
}

func testRollback(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.RunInTx(ctx, func(q store.Queries) error {
		if err := q.CreateReservation(ctx, reservation("r1", 1, "10:00")); err != nil {
			return err
		}
		return models.ErrSlotUnavailable
	})
	require.ErrorIs(t, err, models.ErrSlotUnavailable)

	_, err = s.GetReservation(ctx, "r1")
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = s.RunInTx(ctx, func(q store.Queries) error {
		return q.CreateReservation(ctx, reservation("r2", 1, "11:00"))
	})
	require.NoError(t, err)
	_, err = s.GetReservation(ctx, "r2")
	assert.NoError(t, err)
}

func testFacility(t *testing.T, s store.Store) {
	ctx := context.Background()
	court := 2
	from, to := "12:00", "14:00"

	require.NoError(t, s.CreateBlackout(ctx, models.BlackoutBlock{
		ID: "b1", Date: "2025-06-10", Court: &court, StartTime: &from, EndTime: &to, Reason: "repairs", CreatedAt: now,
	}))
	require.NoError(t, s.CreateBlackout(ctx, models.BlackoutBlock{
		ID: "b2", Date: "2025-06-11", Reason: "holiday", CreatedAt: now,
	}))

	blocks, err := s.ListBlackoutsByDate(ctx, "2025-06-10")
	require.NoError(t, err)
	require.Len(t, blocks, 1)
	require.NotNil(t, blocks[0].Court)
	assert.Equal(t, 2, *blocks[0].Court)

	all, err := s.ListBlackouts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, s.DeleteBlackout(ctx, "b1"))
	assert.ErrorIs(t, s.DeleteBlackout(ctx, "b1"), models.ErrNotFound)

	require.NoError(t, s.CreatePromotion(ctx, models.Promotion{
		ID: "p1", Name: "Happy hour", DiscountPercent: 20, StartTime: &from, EndTime: &to, Active: true, CreatedAt: now,
	}))
	require.NoError(t, s.SetPromotionActive(ctx, "p1", false))

	promo, err := s.GetPromotion(ctx, "p1")
	require.NoError(t, err)
	assert.False(t, promo.Active)
	assert.Nil(t, promo.Date)

	promos, err := s.ListPromotions(ctx)
	require.NoError(t, err)
	assert.Len(t, promos, 1)

	require.NoError(t, s.DeletePromotion(ctx, "p1"))
	assert.ErrorIs(t, s.SetPromotionActive(ctx, "p1", true), models.ErrNotFound)
}

func testTournaments(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.CreateTournament(ctx, models.Tournament{
		ID: "t1", Name: "Summer Open", StartDate: "2025-07-01", EndDate: "2025-07-02",
		MinParticipants: 2, MaxParticipants: 8, Courts: models.IntList{1, 2},
		Status: models.TournamentOpen, CreatedAt: now,
	}))

	tournament, err := s.GetTournament(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.IntList{1, 2}, tournament.Courts)
	assert.Equal(t, models.TournamentOpen, tournament.Status)

	require.NoError(t, s.CreateParticipant(ctx, models.Participant{
		ID: "p1", TournamentID: "t1", Email: "ana@example.com", Name: "Ana", RegisteredAt: now,
	}))
	err = s.CreateParticipant(ctx, models.Participant{
		ID: "p2", TournamentID: "t1", Email: "ana@example.com", Name: "Ana again", RegisteredAt: now,
	})
	assert.ErrorIs(t, err, models.ErrDuplicateRegistration)

	count, err := s.CountParticipants(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, s.SetParticipantPaid(ctx, "t1", "ana@example.com", true))
	participant, err := s.GetParticipant(ctx, "t1", "ana@example.com")
	require.NoError(t, err)
	assert.True(t, participant.Paid)

	require.NoError(t, s.CreateMatch(ctx, models.Match{
		ID: "m1", TournamentID: "t1", Round: "final", Team1: models.IDList{"p1"}, Team2: models.IDList{},
		CreatedAt: now,
	}))
	require.NoError(t, s.UpdateMatchResult(ctx, "m1", "6-4 6-3", models.WinnerTeam1))
	match, err := s.GetMatch(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, models.IDList{"p1"}, match.Team1)
	assert.Equal(t, models.WinnerTeam1, match.Winner)
	assert.Nil(t, match.Court)

	require.NoError(t, s.UpdateTournamentStatus(ctx, "t1", models.TournamentClosed))

	removed, err := s.DeleteParticipant(ctx, "t1", "nobody@example.com")
	require.NoError(t, err)
	assert.Zero(t, removed)

	require.NoError(t, s.DeleteTournament(ctx, "t1"))
	_, err = s.GetTournament(ctx, "t1")
	assert.ErrorIs(t, err, models.ErrNotFound)
	participants, err := s.ListParticipants(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, participants)
	matches, err := s.ListMatches(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	require.NoError(t, s.UpsertUser(ctx, models.User{Email: "bo@example.com", Name: "Bo", CreatedAt: now}))
	require.NoError(t, s.UpsertUser(ctx, models.User{Email: "bo@example.com", Name: "Bo Diaz", CreatedAt: now}))

	user, err := s.GetUser(ctx, "bo@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Bo Diaz", user.Name)

	_, err = s.GetUser(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
