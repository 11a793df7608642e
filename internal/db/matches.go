// internal/db/matches.go
package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/codr1/courtbook/internal/models"
)

const matchColumns = `id, tournament_id, round, team1, team2, result, winner, court, date, time, created_at`

func (q *Queries) CreateMatch(ctx context.Context, match models.Match) error {
	_, err := sqlx.NamedExecContext(ctx, q.db, `INSERT INTO matches (`+matchColumns+`)
		VALUES (:id, :tournament_id, :round, :team1, :team2, :result, :winner, :court, :date, :time, :created_at)`,
		match)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	return nil
}

func (q *Queries) GetMatch(ctx context.Context, id string) (models.Match, error) {
	var match models.Match
	err := sqlx.GetContext(ctx, q.db, &match,
		`SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	if err != nil {
		return models.Match{}, notFound(err, "match "+id)
	}
	return match, nil
}

func (q *Queries) UpdateMatchResult(ctx context.Context, id, result string, winner models.Winner) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE matches SET result = ?, winner = ? WHERE id = ?`, result, winner, id)
	if err != nil {
		return fmt.Errorf("update match result: %w", err)
	}
	return requireAffected(res, "match "+id)
}

func (q *Queries) ListMatches(ctx context.Context, tournamentID string) ([]models.Match, error) {
	matches := []models.Match{}
	err := sqlx.SelectContext(ctx, q.db, &matches,
		`SELECT `+matchColumns+` FROM matches WHERE tournament_id = ? ORDER BY created_at, id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return matches, nil
}

func (q *Queries) DeleteMatch(ctx context.Context, id string) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	return requireAffected(result, "match "+id)
}

func (q *Queries) DeleteMatchesByTournament(ctx context.Context, tournamentID string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM matches WHERE tournament_id = ?`, tournamentID); err != nil {
		return fmt.Errorf("delete matches: %w", err)
	}
	return nil
}
