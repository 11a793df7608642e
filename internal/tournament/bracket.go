package tournament

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/store"
)

// MatchInput is one administrator-supplied pairing. Teams list participant
// IDs.
type MatchInput struct {
	Round string   `json:"round"`
	Team1 []string `json:"team1"`
	Team2 []string `json:"team2"`
	Court *int     `json:"court,omitempty"`
	Date  *string  `json:"date,omitempty"`
	Time  *string  `json:"time,omitempty"`
}

// Bracket records matches and their results. It does not seed or pair
// teams.
type Bracket struct {
	store store.Store
	now   func() time.Time
}

func NewBracket(st store.Store) (*Bracket, error) {
	if st == nil {
		return nil, errors.New("tournament bracket requires a store")
	}
	return &Bracket{store: st, now: time.Now}, nil
}

func (b *Bracket) SetClock(now func() time.Time) {
	b.now = now
}

func matchNotFound(err error, id string) error {
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("match %s: %w", id, models.ErrMatchNotFound)
	}
	return err
}

// CreateMatches stores every input or none. Team members must be
// participants of the tournament and a court, when given, must be one of
// the tournament's courts.
func (b *Bracket) CreateMatches(ctx context.Context, tournamentID string, inputs []MatchInput) ([]models.Match, error) {
	if len(inputs) == 0 {
		return nil, models.FieldError{Field: "matches", Reason: "must contain at least one match"}
	}

	var created []models.Match
	err := b.store.RunInTx(ctx, func(q store.Queries) error {
		tournament, err := q.GetTournament(ctx, tournamentID)
		if err != nil {
			return tournamentNotFound(err, tournamentID)
		}
		participants, err := q.ListParticipants(ctx, tournamentID)
		if err != nil {
			return err
		}
		known := make(map[string]struct{}, len(participants))
		for _, p := range participants {
			known[p.ID] = struct{}{}
		}

		now := b.now().UTC()
		created = make([]models.Match, 0, len(inputs))
		for i, input := range inputs {
			match, err := buildMatch(tournament, known, input, fmt.Sprintf("matches[%d]", i))
			if err != nil {
				return err
			}
			match.ID = uuid.NewString()
			match.CreatedAt = now.Add(time.Duration(i) * time.Microsecond)
			if err := q.CreateMatch(ctx, match); err != nil {
				return err
			}
			created = append(created, match)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Ctx(ctx).Info().
		Str("tournament_id", tournamentID).
		Int("match_count", len(created)).
		Msg("Matches created")
	return created, nil
}

func buildMatch(tournament models.Tournament, known map[string]struct{}, input MatchInput, field string) (models.Match, error) {
	round := strings.TrimSpace(input.Round)
	if round == "" {
		return models.Match{}, models.FieldError{Field: field + ".round", Reason: "is required"}
	}

	seen := map[string]string{}
	teams := [2]models.IDList{}
	for i, members := range [2][]string{input.Team1, input.Team2} {
		teamField := fmt.Sprintf("%s.team%d", field, i+1)
		if len(members) == 0 {
			return models.Match{}, models.FieldError{Field: teamField, Reason: "must list at least one participant"}
		}
		team := models.IDList{}
		for _, id := range members {
			if _, ok := known[id]; !ok {
				return models.Match{}, models.FieldError{
					Field:  teamField,
					Reason: fmt.Sprintf("references %s, which is not a participant of this tournament", id),
				}
			}
			if other, dup := seen[id]; dup {
				return models.Match{}, models.FieldError{
					Field:  teamField,
					Reason: fmt.Sprintf("repeats participant %s already listed in %s", id, other),
				}
			}
			seen[id] = teamField
			team = append(team, id)
		}
		teams[i] = team
	}

	match := models.Match{
		TournamentID: tournament.ID,
		Round:        round,
		Team1:        teams[0],
		Team2:        teams[1],
		Winner:       models.WinnerNone,
	}
	if input.Court != nil {
		if !tournament.HasCourt(*input.Court) {
			return models.Match{}, models.FieldError{
				Field:  field + ".court",
				Reason: fmt.Sprintf("must be one of the tournament courts %v", []int(tournament.Courts)),
			}
		}
		court := *input.Court
		match.Court = &court
	}
	if input.Date != nil {
		date, err := models.ParseDate(*input.Date, field+".date")
		if err != nil {
			return models.Match{}, err
		}
		match.Date = &date
	}
	if input.Time != nil {
		minutes, err := models.ParseClock(*input.Time, field+".time")
		if err != nil {
			return models.Match{}, err
		}
		clock := models.FormatClock(minutes)
		match.Time = &clock
	}
	return match, nil
}

// RecordResult sets a match's result and winner, replacing any earlier
// entry. An empty winner records a result without declaring one.
func (b *Bracket) RecordResult(ctx context.Context, matchID, result string, winner models.Winner) (models.Match, error) {
	if !winner.Valid() {
		return models.Match{}, models.FieldError{Field: "winner", Reason: "must be team1, team2 or empty"}
	}
	result = strings.TrimSpace(result)

	var updated models.Match
	err := b.store.RunInTx(ctx, func(q store.Queries) error {
		match, err := q.GetMatch(ctx, matchID)
		if err != nil {
			return matchNotFound(err, matchID)
		}
		if err := q.UpdateMatchResult(ctx, matchID, result, winner); err != nil {
			return err
		}
		match.Result = result
		match.Winner = winner
		updated = match
		return nil
	})
	if err != nil {
		return models.Match{}, err
	}

	log.Ctx(ctx).Info().
		Str("match_id", matchID).
		Str("tournament_id", updated.TournamentID).
		Str("winner", string(winner)).
		Msg("Match result recorded")
	return updated, nil
}

func (b *Bracket) GetMatch(ctx context.Context, matchID string) (models.Match, error) {
	match, err := b.store.GetMatch(ctx, matchID)
	if err != nil {
		return models.Match{}, matchNotFound(err, matchID)
	}
	return match, nil
}

func (b *Bracket) ListMatches(ctx context.Context, tournamentID string) ([]models.Match, error) {
	if _, err := b.store.GetTournament(ctx, tournamentID); err != nil {
		return nil, tournamentNotFound(err, tournamentID)
	}
	return b.store.ListMatches(ctx, tournamentID)
}

func (b *Bracket) DeleteMatch(ctx context.Context, matchID string) error {
	if err := b.store.DeleteMatch(ctx, matchID); err != nil {
		return matchNotFound(err, matchID)
	}
	log.Ctx(ctx).Info().Str("match_id", matchID).Msg("Match deleted")
	return nil
}
