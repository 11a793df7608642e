// internal/db/tournaments.go
package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/codr1/courtbook/internal/models"
)

const tournamentColumns = `id, name, category, start_date, end_date, registration_price,
	min_participants, max_participants, courts, status, rules, prizes, image_url, created_at`

func (q *Queries) CreateTournament(ctx context.Context, tournament models.Tournament) error {
	_, err := sqlx.NamedExecContext(ctx, q.db, `INSERT INTO tournaments (`+tournamentColumns+`)
		VALUES (:id, :name, :category, :start_date, :end_date, :registration_price,
			:min_participants, :max_participants, :courts, :status, :rules, :prizes,
			:image_url, :created_at)`, tournament)
	if err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}
	return nil
}

func (q *Queries) GetTournament(ctx context.Context, id string) (models.Tournament, error) {
	var tournament models.Tournament
	err := sqlx.GetContext(ctx, q.db, &tournament,
		`SELECT `+tournamentColumns+` FROM tournaments WHERE id = ?`, id)
	if err != nil {
		return models.Tournament{}, notFound(err, "tournament "+id)
	}
	return tournament, nil
}

func (q *Queries) ListTournaments(ctx context.Context) ([]models.Tournament, error) {
	tournaments := []models.Tournament{}
	err := sqlx.SelectContext(ctx, q.db, &tournaments,
		`SELECT `+tournamentColumns+` FROM tournaments ORDER BY start_date, name, id`)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	return tournaments, nil
}

func (q *Queries) UpdateTournamentStatus(ctx context.Context, id string, status models.TournamentStatus) error {
	result, err := q.db.ExecContext(ctx, `UPDATE tournaments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return fmt.Errorf("update tournament status: %w", err)
	}
	return requireAffected(result, "tournament "+id)
}

func (q *Queries) DeleteTournament(ctx context.Context, id string) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete tournament: %w", err)
	}
	return requireAffected(result, "tournament "+id)
}

const participantColumns = `id, tournament_id, email, name, partner_email, partner_name, paid, registered_at`

func (q *Queries) CreateParticipant(ctx context.Context, participant models.Participant) error {
	_, err := sqlx.NamedExecContext(ctx, q.db, `INSERT INTO tournament_participants (`+participantColumns+`)
		VALUES (:id, :tournament_id, :email, :name, :partner_email, :partner_name, :paid, :registered_at)`,
		participant)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%s in tournament %s: %w", participant.Email, participant.TournamentID, models.ErrDuplicateRegistration)
		}
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (q *Queries) GetParticipant(ctx context.Context, tournamentID, email string) (models.Participant, error) {
	var participant models.Participant
	err := sqlx.GetContext(ctx, q.db, &participant,
		`SELECT `+participantColumns+` FROM tournament_participants
		WHERE tournament_id = ? AND email = ?`, tournamentID, email)
	if err != nil {
		return models.Participant{}, notFound(err, "participant "+email)
	}
	return participant, nil
}

func (q *Queries) CountParticipants(ctx context.Context, tournamentID string) (int, error) {
	var count int
	err := sqlx.GetContext(ctx, q.db, &count,
		`SELECT COUNT(*) FROM tournament_participants WHERE tournament_id = ?`, tournamentID)
	if err != nil {
		return 0, fmt.Errorf("count participants: %w", err)
	}
	return count, nil
}

func (q *Queries) ListParticipants(ctx context.Context, tournamentID string) ([]models.Participant, error) {
	participants := []models.Participant{}
	err := sqlx.SelectContext(ctx, q.db, &participants,
		`SELECT `+participantColumns+` FROM tournament_participants
		WHERE tournament_id = ? ORDER BY registered_at, id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return participants, nil
}

func (q *Queries) SetParticipantPaid(ctx context.Context, tournamentID, email string, paid bool) error {
	result, err := q.db.ExecContext(ctx,
		`UPDATE tournament_participants SET paid = ? WHERE tournament_id = ? AND email = ?`,
		paid, tournamentID, email)
	if err != nil {
		return fmt.Errorf("update participant: %w", err)
	}
	return requireAffected(result, "participant "+email)
}

func (q *Queries) DeleteParticipant(ctx context.Context, tournamentID, email string) (int64, error) {
	result, err := q.db.ExecContext(ctx,
		`DELETE FROM tournament_participants WHERE tournament_id = ? AND email = ?`, tournamentID, email)
	if err != nil {
		return 0, fmt.Errorf("delete participant: %w", err)
	}
	return result.RowsAffected()
}

func (q *Queries) DeleteParticipantsByTournament(ctx context.Context, tournamentID string) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM tournament_participants WHERE tournament_id = ?`, tournamentID); err != nil {
		return fmt.Errorf("delete participants: %w", err)
	}
	return nil
}
