// Package memory is an in-process store.Store. Transactions are serialised
// by a single mutex and work on a copy of the data that replaces the live
// copy only when the transaction function succeeds.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/store"
)

type data struct {
	reservations map[string]models.Reservation
	blackouts    map[string]models.BlackoutBlock
	promotions   map[string]models.Promotion
	tournaments  map[string]models.Tournament
	participants map[string]models.Participant
	matches      map[string]models.Match
	users        map[string]models.User
}

func newData() *data {
	return &data{
		reservations: map[string]models.Reservation{},
		blackouts:    map[string]models.BlackoutBlock{},
		promotions:   map[string]models.Promotion{},
		tournaments:  map[string]models.Tournament{},
		participants: map[string]models.Participant{},
		matches:      map[string]models.Match{},
		users:        map[string]models.User{},
	}
}

func (d *data) clone() *data {
	return &data{
		reservations: maps.Clone(d.reservations),
		blackouts:    maps.Clone(d.blackouts),
		promotions:   maps.Clone(d.promotions),
		tournaments:  maps.Clone(d.tournaments),
		participants: maps.Clone(d.participants),
		matches:      maps.Clone(d.matches),
		users:        maps.Clone(d.users),
	}
}

type Store struct {
	*queries
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{queries: &queries{mu: &sync.Mutex{}, data: newData()}}
}

func (s *Store) RunInTx(ctx context.Context, fn func(q store.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := s.data.clone()
	if err := fn(&queries{data: working}); err != nil {
		return err
	}
	*s.data = *working
	return nil
}

// queries operates on data directly. mu is nil inside a transaction, where
// the store lock is already held.
type queries struct {
	mu   *sync.Mutex
	data *data
}

func (q *queries) lock() func() {
	if q.mu == nil {
		return func() {}
	}
	q.mu.Lock()
	return q.mu.Unlock
}

func sortedValues[V any](m map[string]V, keep func(V) bool, cmp func(a, b V) int) []V {
	out := []V{}
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	slices.SortFunc(out, cmp)
	return out
}

func byTime(a, b time.Time, aID, bID string) int {
	if c := a.Compare(b); c != 0 {
		return c
	}
	return strings.Compare(aID, bID)
}

func missing(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, models.ErrNotFound)
}

func (q *queries) CreateReservation(_ context.Context, res models.Reservation) error {
	defer q.lock()()
	if _, ok := q.data.reservations[res.ID]; ok {
		return fmt.Errorf("reservation %s already exists", res.ID)
	}
	if res.IsActive() {
		for _, existing := range q.data.reservations {
			if existing.IsActive() && existing.Court == res.Court &&
				existing.Date == res.Date && existing.StartTime == res.StartTime {
				return fmt.Errorf("court %d on %s at %s: %w", res.Court, res.Date, res.StartTime, models.ErrSlotUnavailable)
			}
		}
	}
	q.data.reservations[res.ID] = res
	return nil
}

func (q *queries) GetReservation(_ context.Context, id string) (models.Reservation, error) {
	defer q.lock()()
	res, ok := q.data.reservations[id]
	if !ok {
		return models.Reservation{}, missing("reservation", id)
	}
	return res, nil
}

func (q *queries) UpdateReservation(_ context.Context, res models.Reservation) error {
	defer q.lock()()
	existing, ok := q.data.reservations[res.ID]
	if !ok {
		return missing("reservation", res.ID)
	}
	existing.PaymentStatus = res.PaymentStatus
	existing.PaymentMethod = res.PaymentMethod
	existing.Status = res.Status
	existing.UpdatedAt = res.UpdatedAt
	q.data.reservations[res.ID] = existing
	return nil
}

func compareReservations(a, b models.Reservation) int {
	if a.Court != b.Court {
		return a.Court - b.Court
	}
	if c := strings.Compare(a.StartTime, b.StartTime); c != 0 {
		return c
	}
	return byTime(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
}

func (q *queries) ListActiveReservations(_ context.Context, date string, court int) ([]models.Reservation, error) {
	defer q.lock()()
	return sortedValues(q.data.reservations, func(r models.Reservation) bool {
		return r.IsActive() && r.Date == date && (court <= 0 || r.Court == court)
	}, compareReservations), nil
}

func (q *queries) ListReservationsByDate(_ context.Context, date string) ([]models.Reservation, error) {
	defer q.lock()()
	return sortedValues(q.data.reservations, func(r models.Reservation) bool {
		return r.Date == date
	}, compareReservations), nil
}

func (q *queries) CreateBlackout(_ context.Context, block models.BlackoutBlock) error {
	defer q.lock()()
	q.data.blackouts[block.ID] = block
	return nil
}

func (q *queries) DeleteBlackout(_ context.Context, id string) error {
	defer q.lock()()
	if _, ok := q.data.blackouts[id]; !ok {
		return missing("blackout", id)
	}
	delete(q.data.blackouts, id)
	return nil
}

func compareBlackouts(a, b models.BlackoutBlock) int {
	if c := strings.Compare(a.Date, b.Date); c != 0 {
		return c
	}
	return byTime(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
}

func (q *queries) ListBlackoutsByDate(_ context.Context, date string) ([]models.BlackoutBlock, error) {
	defer q.lock()()
	return sortedValues(q.data.blackouts, func(b models.BlackoutBlock) bool {
		return b.Date == date
	}, compareBlackouts), nil
}

func (q *queries) ListBlackouts(_ context.Context) ([]models.BlackoutBlock, error) {
	defer q.lock()()
	return sortedValues(q.data.blackouts, nil, compareBlackouts), nil
}

func (q *queries) CreatePromotion(_ context.Context, promo models.Promotion) error {
	defer q.lock()()
	q.data.promotions[promo.ID] = promo
	return nil
}

func (q *queries) GetPromotion(_ context.Context, id string) (models.Promotion, error) {
	defer q.lock()()
	promo, ok := q.data.promotions[id]
	if !ok {
		return models.Promotion{}, missing("promotion", id)
	}
	return promo, nil
}

func (q *queries) SetPromotionActive(_ context.Context, id string, active bool) error {
	defer q.lock()()
	promo, ok := q.data.promotions[id]
	if !ok {
		return missing("promotion", id)
	}
	promo.Active = active
	q.data.promotions[id] = promo
	return nil
}

func (q *queries) DeletePromotion(_ context.Context, id string) error {
	defer q.lock()()
	if _, ok := q.data.promotions[id]; !ok {
		return missing("promotion", id)
	}
	delete(q.data.promotions, id)
	return nil
}

func (q *queries) ListPromotions(_ context.Context) ([]models.Promotion, error) {
	defer q.lock()()
	return sortedValues(q.data.promotions, nil, func(a, b models.Promotion) int {
		return strings.Compare(a.ID, b.ID)
	}), nil
}

func (q *queries) CreateTournament(_ context.Context, tournament models.Tournament) error {
	defer q.lock()()
	if _, ok := q.data.tournaments[tournament.ID]; ok {
		return fmt.Errorf("tournament %s already exists", tournament.ID)
	}
	tournament.Courts = slices.Clone(tournament.Courts)
	q.data.tournaments[tournament.ID] = tournament
	return nil
}

func (q *queries) GetTournament(_ context.Context, id string) (models.Tournament, error) {
	defer q.lock()()
	tournament, ok := q.data.tournaments[id]
	if !ok {
		return models.Tournament{}, missing("tournament", id)
	}
	return tournament, nil
}

func (q *queries) ListTournaments(_ context.Context) ([]models.Tournament, error) {
	defer q.lock()()
	return sortedValues(q.data.tournaments, nil, func(a, b models.Tournament) int {
		if c := strings.Compare(a.StartDate, b.StartDate); c != 0 {
			return c
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	}), nil
}

func (q *queries) UpdateTournamentStatus(_ context.Context, id string, status models.TournamentStatus) error {
	defer q.lock()()
	tournament, ok := q.data.tournaments[id]
	if !ok {
		return missing("tournament", id)
	}
	tournament.Status = status
	q.data.tournaments[id] = tournament
	return nil
}

// DeleteTournament removes the tournament together with its participants
// and matches, like the foreign-key cascade in the sqlite schema.
func (q *queries) DeleteTournament(_ context.Context, id string) error {
	defer q.lock()()
	if _, ok := q.data.tournaments[id]; !ok {
		return missing("tournament", id)
	}
	delete(q.data.tournaments, id)
	maps.DeleteFunc(q.data.participants, func(_ string, p models.Participant) bool {
		return p.TournamentID == id
	})
	maps.DeleteFunc(q.data.matches, func(_ string, m models.Match) bool {
		return m.TournamentID == id
	})
	return nil
}

func (q *queries) findParticipant(tournamentID, email string) (models.Participant, bool) {
	for _, p := range q.data.participants {
		if p.TournamentID == tournamentID && p.Email == email {
			return p, true
		}
	}
	return models.Participant{}, false
}

func (q *queries) CreateParticipant(_ context.Context, participant models.Participant) error {
	defer q.lock()()
	if _, ok := q.data.tournaments[participant.TournamentID]; !ok {
		return fmt.Errorf("insert participant: unknown tournament %s", participant.TournamentID)
	}
	if _, ok := q.findParticipant(participant.TournamentID, participant.Email); ok {
		return fmt.Errorf("%s in tournament %s: %w", participant.Email, participant.TournamentID, models.ErrDuplicateRegistration)
	}
	q.data.participants[participant.ID] = participant
	return nil
}

func (q *queries) GetParticipant(_ context.Context, tournamentID, email string) (models.Participant, error) {
	defer q.lock()()
	participant, ok := q.findParticipant(tournamentID, email)
	if !ok {
		return models.Participant{}, missing("participant", email)
	}
	return participant, nil
}

func (q *queries) CountParticipants(_ context.Context, tournamentID string) (int, error) {
	defer q.lock()()
	count := 0
	for _, p := range q.data.participants {
		if p.TournamentID == tournamentID {
			count++
		}
	}
	return count, nil
}

func (q *queries) ListParticipants(_ context.Context, tournamentID string) ([]models.Participant, error) {
	defer q.lock()()
	return sortedValues(q.data.participants, func(p models.Participant) bool {
		return p.TournamentID == tournamentID
	}, func(a, b models.Participant) int {
		return byTime(a.RegisteredAt, b.RegisteredAt, a.ID, b.ID)
	}), nil
}

func (q *queries) SetParticipantPaid(_ context.Context, tournamentID, email string, paid bool) error {
	defer q.lock()()
	participant, ok := q.findParticipant(tournamentID, email)
	if !ok {
		return missing("participant", email)
	}
	participant.Paid = paid
	q.data.participants[participant.ID] = participant
	return nil
}

func (q *queries) DeleteParticipant(_ context.Context, tournamentID, email string) (int64, error) {
	defer q.lock()()
	participant, ok := q.findParticipant(tournamentID, email)
	if !ok {
		return 0, nil
	}
	delete(q.data.participants, participant.ID)
	return 1, nil
}

func (q *queries) DeleteParticipantsByTournament(_ context.Context, tournamentID string) error {
	defer q.lock()()
	maps.DeleteFunc(q.data.participants, func(_ string, p models.Participant) bool {
		return p.TournamentID == tournamentID
	})
	return nil
}

func (q *queries) CreateMatch(_ context.Context, match models.Match) error {
	defer q.lock()()
	if _, ok := q.data.tournaments[match.TournamentID]; !ok {
		return fmt.Errorf("insert match: unknown tournament %s", match.TournamentID)
	}
	match.Team1 = slices.Clone(match.Team1)
	match.Team2 = slices.Clone(match.Team2)
	q.data.matches[match.ID] = match
	return nil
}

func (q *queries) GetMatch(_ context.Context, id string) (models.Match, error) {
	defer q.lock()()
	match, ok := q.data.matches[id]
	if !ok {
		return models.Match{}, missing("match", id)
	}
	return match, nil
}

func (q *queries) UpdateMatchResult(_ context.Context, id, result string, winner models.Winner) error {
	defer q.lock()()
	match, ok := q.data.matches[id]
	if !ok {
		return missing("match", id)
	}
	match.Result = result
	match.Winner = winner
	q.data.matches[id] = match
	return nil
}

func (q *queries) ListMatches(_ context.Context, tournamentID string) ([]models.Match, error) {
	defer q.lock()()
	return sortedValues(q.data.matches, func(m models.Match) bool {
		return m.TournamentID == tournamentID
	}, func(a, b models.Match) int {
		return byTime(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}), nil
}

func (q *queries) DeleteMatch(_ context.Context, id string) error {
	defer q.lock()()
	if _, ok := q.data.matches[id]; !ok {
		return missing("match", id)
	}
	delete(q.data.matches, id)
	return nil
}

func (q *queries) DeleteMatchesByTournament(_ context.Context, tournamentID string) error {
	defer q.lock()()
	maps.DeleteFunc(q.data.matches, func(_ string, m models.Match) bool {
		return m.TournamentID == tournamentID
	})
	return nil
}

func (q *queries) UpsertUser(_ context.Context, user models.User) error {
	defer q.lock()()
	if existing, ok := q.data.users[user.Email]; ok {
		existing.Name = user.Name
		q.data.users[user.Email] = existing
		return nil
	}
	q.data.users[user.Email] = user
	return nil
}

func (q *queries) GetUser(_ context.Context, email string) (models.User, error) {
	defer q.lock()()
	user, ok := q.data.users[email]
	if !ok {
		return models.User{}, missing("user", email)
	}
	return user, nil
}
