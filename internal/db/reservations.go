// internal/db/reservations.go
package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/codr1/courtbook/internal/models"
)

const reservationColumns = `id, court, date, start_time, duration_hours, price, base_price,
	discount_percent, payment_status, payment_method, status, contact_name,
	contact_email, contact_phone, created_at, updated_at`

const createReservation = `INSERT INTO reservations (
	id, court, date, start_time, duration_hours, price, base_price,
	discount_percent, payment_status, payment_method, status, contact_name,
	contact_email, contact_phone, created_at, updated_at
) VALUES (
	:id, :court, :date, :start_time, :duration_hours, :price, :base_price,
	:discount_percent, :payment_status, :payment_method, :status, :contact_name,
	:contact_email, :contact_phone, :created_at, :updated_at
)`

func (q *Queries) CreateReservation(ctx context.Context, res models.Reservation) error {
	if _, err := sqlx.NamedExecContext(ctx, q.db, createReservation, res); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("court %d on %s at %s: %w", res.Court, res.Date, res.StartTime, models.ErrSlotUnavailable)
		}
		return fmt.Errorf("insert reservation: %w", err)
	}
	return nil
}

func (q *Queries) GetReservation(ctx context.Context, id string) (models.Reservation, error) {
	var res models.Reservation
	err := sqlx.GetContext(ctx, q.db, &res,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = ?`, id)
	if err != nil {
		return models.Reservation{}, notFound(err, "reservation "+id)
	}
	return res, nil
}

const updateReservation = `UPDATE reservations SET
	payment_status = :payment_status,
	payment_method = :payment_method,
	status = :status,
	updated_at = :updated_at
WHERE id = :id`

// UpdateReservation persists the mutable lifecycle fields of res. Slot and
// price fields are fixed at creation.
func (q *Queries) UpdateReservation(ctx context.Context, res models.Reservation) error {
	result, err := sqlx.NamedExecContext(ctx, q.db, updateReservation, res)
	if err != nil {
		return fmt.Errorf("update reservation: %w", err)
	}
	return requireAffected(result, "reservation "+res.ID)
}

func (q *Queries) ListActiveReservations(ctx context.Context, date string, court int) ([]models.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations
		WHERE date = ? AND status = 'active'`
	args := []any{date}
	if court > 0 {
		query += ` AND court = ?`
		args = append(args, court)
	}
	query += ` ORDER BY court, start_time`

	reservations := []models.Reservation{}
	if err := sqlx.SelectContext(ctx, q.db, &reservations, query, args...); err != nil {
		return nil, fmt.Errorf("list active reservations: %w", err)
	}
	return reservations, nil
}

func (q *Queries) ListReservationsByDate(ctx context.Context, date string) ([]models.Reservation, error) {
	reservations := []models.Reservation{}
	err := sqlx.SelectContext(ctx, q.db, &reservations,
		`SELECT `+reservationColumns+` FROM reservations
		WHERE date = ? ORDER BY court, start_time, created_at`, date)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return reservations, nil
}
