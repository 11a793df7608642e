// internal/db/facility.go
package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/codr1/courtbook/internal/models"
)

const blackoutColumns = `id, date, court, start_time, end_time, reason, created_at`

func (q *Queries) CreateBlackout(ctx context.Context, block models.BlackoutBlock) error {
	_, err := sqlx.NamedExecContext(ctx, q.db, `INSERT INTO blackout_blocks (`+blackoutColumns+`)
		VALUES (:id, :date, :court, :start_time, :end_time, :reason, :created_at)`, block)
	if err != nil {
		return fmt.Errorf("insert blackout: %w", err)
	}
	return nil
}

func (q *Queries) DeleteBlackout(ctx context.Context, id string) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM blackout_blocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete blackout: %w", err)
	}
	return requireAffected(result, "blackout "+id)
}

func (q *Queries) ListBlackoutsByDate(ctx context.Context, date string) ([]models.BlackoutBlock, error) {
	blocks := []models.BlackoutBlock{}
	err := sqlx.SelectContext(ctx, q.db, &blocks,
		`SELECT `+blackoutColumns+` FROM blackout_blocks WHERE date = ? ORDER BY created_at, id`, date)
	if err != nil {
		return nil, fmt.Errorf("list blackouts: %w", err)
	}
	return blocks, nil
}

func (q *Queries) ListBlackouts(ctx context.Context) ([]models.BlackoutBlock, error) {
	blocks := []models.BlackoutBlock{}
	err := sqlx.SelectContext(ctx, q.db, &blocks,
		`SELECT `+blackoutColumns+` FROM blackout_blocks ORDER BY date, created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list blackouts: %w", err)
	}
	return blocks, nil
}

const promotionColumns = `id, name, date, discount_percent, start_time, end_time, active, created_at`

func (q *Queries) CreatePromotion(ctx context.Context, promo models.Promotion) error {
	_, err := sqlx.NamedExecContext(ctx, q.db, `INSERT INTO promotions (`+promotionColumns+`)
		VALUES (:id, :name, :date, :discount_percent, :start_time, :end_time, :active, :created_at)`, promo)
	if err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}
	return nil
}

func (q *Queries) GetPromotion(ctx context.Context, id string) (models.Promotion, error) {
	var promo models.Promotion
	err := sqlx.GetContext(ctx, q.db, &promo,
		`SELECT `+promotionColumns+` FROM promotions WHERE id = ?`, id)
	if err != nil {
		return models.Promotion{}, notFound(err, "promotion "+id)
	}
	return promo, nil
}

func (q *Queries) SetPromotionActive(ctx context.Context, id string, active bool) error {
	result, err := q.db.ExecContext(ctx, `UPDATE promotions SET active = ? WHERE id = ?`, active, id)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	return requireAffected(result, "promotion "+id)
}

func (q *Queries) DeletePromotion(ctx context.Context, id string) error {
	result, err := q.db.ExecContext(ctx, `DELETE FROM promotions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	return requireAffected(result, "promotion "+id)
}

// ListPromotions returns every promotion, active or not. Eligibility is
// decided by the tariff package.
func (q *Queries) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	promos := []models.Promotion{}
	err := sqlx.SelectContext(ctx, q.db, &promos,
		`SELECT `+promotionColumns+` FROM promotions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list promotions: %w", err)
	}
	return promos, nil
}
