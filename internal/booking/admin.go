package booking

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/models"
)

type BlackoutRequest struct {
	Date      string  `json:"date"`
	Court     *int    `json:"court,omitempty"`
	StartTime *string `json:"startTime,omitempty"`
	EndTime   *string `json:"endTime,omitempty"`
	Reason    string  `json:"reason"`
}

type PromotionRequest struct {
	Name            string  `json:"name"`
	Date            *string `json:"date,omitempty"`
	DiscountPercent int     `json:"discountPercent"`
	StartTime       *string `json:"startTime,omitempty"`
	EndTime         *string `json:"endTime,omitempty"`
	Active          *bool   `json:"active,omitempty"`
}

// parseRange validates an optional [start, end) wall-clock pair. Both ends
// must be given together.
func parseRange(start, end *string) (*string, *string, error) {
	if start == nil && end == nil {
		return nil, nil, nil
	}
	if start == nil || end == nil {
		return nil, nil, models.FieldError{Field: "time_range", Reason: "needs both start_time and end_time"}
	}
	from, err := models.ParseClock(*start, "start_time")
	if err != nil {
		return nil, nil, err
	}
	to, err := models.ParseClock(*end, "end_time")
	if err != nil {
		return nil, nil, err
	}
	if to <= from {
		return nil, nil, models.FieldError{Field: "end_time", Reason: "must be after start_time"}
	}
	fromText, toText := models.FormatClock(from), models.FormatClock(to)
	return &fromText, &toText, nil
}

// CreateBlackout declares a period in which no new booking is accepted.
// Existing reservations inside the period are left alone.
func (m *Manager) CreateBlackout(ctx context.Context, req BlackoutRequest) (models.BlackoutBlock, error) {
	date, err := models.ParseDate(req.Date, "date")
	if err != nil {
		return models.BlackoutBlock{}, err
	}
	if req.Court != nil && (*req.Court < 1 || *req.Court > m.facility.Courts) {
		return models.BlackoutBlock{}, models.FieldError{
			Field:  "court",
			Reason: fmt.Sprintf("must be between 1 and %d", m.facility.Courts),
		}
	}
	start, end, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return models.BlackoutBlock{}, err
	}

	block := models.BlackoutBlock{
		ID:        uuid.NewString(),
		Date:      date,
		Court:     req.Court,
		StartTime: start,
		EndTime:   end,
		Reason:    strings.TrimSpace(req.Reason),
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.CreateBlackout(ctx, block); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("date", date).Msg("Failed to create blackout")
		return models.BlackoutBlock{}, err
	}
	log.Ctx(ctx).Info().Str("blackout_id", block.ID).Str("date", date).Msg("Blackout created")
	return block, nil
}

func (m *Manager) DeleteBlackout(ctx context.Context, id string) error {
	if err := m.store.DeleteBlackout(ctx, id); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("blackout_id", id).Msg("Blackout deleted")
	return nil
}

// ListBlackouts returns the blocks on date, or every block when date is
// empty.
func (m *Manager) ListBlackouts(ctx context.Context, date string) ([]models.BlackoutBlock, error) {
	if strings.TrimSpace(date) == "" {
		return m.store.ListBlackouts(ctx)
	}
	date, err := models.ParseDate(date, "date")
	if err != nil {
		return nil, err
	}
	return m.store.ListBlackoutsByDate(ctx, date)
}

func (m *Manager) CreatePromotion(ctx context.Context, req PromotionRequest) (models.Promotion, error) {
	if req.DiscountPercent < 1 || req.DiscountPercent > 100 {
		return models.Promotion{}, models.FieldError{Field: "discount_percent", Reason: "must be between 1 and 100"}
	}
	var date *string
	if req.Date != nil {
		parsed, err := models.ParseDate(*req.Date, "date")
		if err != nil {
			return models.Promotion{}, err
		}
		date = &parsed
	}
	start, end, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return models.Promotion{}, err
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}

	promo := models.Promotion{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		Date:            date,
		DiscountPercent: req.DiscountPercent,
		StartTime:       start,
		EndTime:         end,
		Active:          active,
		CreatedAt:       m.now().UTC(),
	}
	if err := m.store.CreatePromotion(ctx, promo); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to create promotion")
		return models.Promotion{}, err
	}
	log.Ctx(ctx).Info().
		Str("promotion_id", promo.ID).
		Int("discount_percent", promo.DiscountPercent).
		Msg("Promotion created")
	return promo, nil
}

func (m *Manager) SetPromotionActive(ctx context.Context, id string, active bool) (models.Promotion, error) {
	if err := m.store.SetPromotionActive(ctx, id, active); err != nil {
		return models.Promotion{}, err
	}
	log.Ctx(ctx).Info().Str("promotion_id", id).Bool("active", active).Msg("Promotion toggled")
	return m.store.GetPromotion(ctx, id)
}

func (m *Manager) DeletePromotion(ctx context.Context, id string) error {
	if err := m.store.DeletePromotion(ctx, id); err != nil {
		return err
	}
	log.Ctx(ctx).Info().Str("promotion_id", id).Msg("Promotion deleted")
	return nil
}

func (m *Manager) ListPromotions(ctx context.Context) ([]models.Promotion, error) {
	return m.store.ListPromotions(ctx)
}
