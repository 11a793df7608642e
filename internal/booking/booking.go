// Package booking owns the reservation lifecycle: creating a booking after
// an availability check, pricing it, and moving it through payment and
// cancellation. It never sends notifications; callers do that after a
// successful call.
package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/codr1/courtbook/internal/availability"
	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/models"
	"github.com/codr1/courtbook/internal/store"
	"github.com/codr1/courtbook/internal/tariff"
)

// Request is a booking request as received from a caller.
type Request struct {
	Court         int     `json:"court"`
	Date          string  `json:"date"`
	StartTime     string  `json:"startTime"`
	DurationHours float64 `json:"durationHours"`
	ContactName   string  `json:"contactName"`
	ContactEmail  string  `json:"contactEmail"`
	ContactPhone  string  `json:"contactPhone"`
}

type Manager struct {
	store      store.Store
	calculator *tariff.Calculator
	facility   config.FacilityConfig
	now        func() time.Time
}

func NewManager(st store.Store, cfg *config.Config) (*Manager, error) {
	if st == nil {
		return nil, errors.New("booking manager requires a store")
	}
	if cfg == nil {
		return nil, errors.New("booking manager requires configuration")
	}
	return &Manager{
		store:      st,
		calculator: tariff.NewCalculator(cfg.Tariff),
		facility:   cfg.Facility,
		now:        time.Now,
	}, nil
}

// SetClock replaces the time source used for CreatedAt/UpdatedAt stamps.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// validateSlot checks a slot against the facility's configured bounds and
// returns it with date and start time normalised.
func (m *Manager) validateSlot(court int, date, startTime string, durationHours float64) (availability.Slot, error) {
	if court < 1 || court > m.facility.Courts {
		return availability.Slot{}, models.FieldError{
			Field:  "court",
			Reason: fmt.Sprintf("must be between 1 and %d", m.facility.Courts),
		}
	}
	date, err := models.ParseDate(date, "date")
	if err != nil {
		return availability.Slot{}, err
	}
	start, err := models.ParseClock(startTime, "start_time")
	if err != nil {
		return availability.Slot{}, err
	}

	open := m.facility.OpeningHour * 60
	closing := m.facility.ClosingHour * 60
	step := m.facility.SlotMinutes
	if start < open || start >= closing {
		return availability.Slot{}, models.FieldError{
			Field:  "start_time",
			Reason: fmt.Sprintf("must be within opening hours %s-%s", models.FormatClock(open), models.FormatClock(closing)),
		}
	}
	if (start-open)%step != 0 {
		return availability.Slot{}, models.FieldError{
			Field:  "start_time",
			Reason: fmt.Sprintf("must fall on a %d minute boundary", step),
		}
	}

	if durationHours < m.facility.MinDurationHours || durationHours > m.facility.MaxDurationHours {
		return availability.Slot{}, models.FieldError{
			Field:  "duration_hours",
			Reason: fmt.Sprintf("must be between %g and %g", m.facility.MinDurationHours, m.facility.MaxDurationHours),
		}
	}
	duration := models.DurationMinutes(durationHours)
	if duration <= 0 || duration%step != 0 || float64(duration) != durationHours*60 {
		return availability.Slot{}, models.FieldError{
			Field:  "duration_hours",
			Reason: fmt.Sprintf("must be a multiple of %d minutes", step),
		}
	}
	if start+duration > closing {
		return availability.Slot{}, models.FieldError{
			Field:  "duration_hours",
			Reason: fmt.Sprintf("must end by closing time %s", models.FormatClock(closing)),
		}
	}

	return availability.Slot{
		Court:         court,
		Date:          date,
		StartTime:     models.FormatClock(start),
		DurationHours: durationHours,
	}, nil
}

// Create books the requested slot. The availability check, pricing and
// insert run in one transaction so a competing booking for an overlapping
// slot either commits first and makes this one fail with
// models.ErrSlotUnavailable, or waits for this one to finish.
func (m *Manager) Create(ctx context.Context, req Request) (models.Reservation, error) {
	slot, err := m.validateSlot(req.Court, req.Date, req.StartTime, req.DurationHours)
	if err != nil {
		return models.Reservation{}, err
	}
	name := strings.TrimSpace(req.ContactName)
	if name == "" {
		return models.Reservation{}, models.FieldError{Field: "contact_name", Reason: "is required"}
	}
	email, err := models.NormalizeEmail(req.ContactEmail, "contact_email")
	if err != nil {
		return models.Reservation{}, err
	}
	phone, err := models.NormalizePhone(req.ContactPhone, m.facility.PhoneRegion, "contact_phone")
	if err != nil {
		return models.Reservation{}, err
	}

	logger := log.Ctx(ctx).With().
		Str("component", "booking").
		Int("court", slot.Court).
		Str("date", slot.Date).
		Str("start_time", slot.StartTime).
		Float64("duration_hours", slot.DurationHours).
		Logger()

	var created models.Reservation
	err = m.store.RunInTx(ctx, func(q store.Queries) error {
		reservations, err := q.ListActiveReservations(ctx, slot.Date, slot.Court)
		if err != nil {
			return fmt.Errorf("load reservations: %w", err)
		}
		blocks, err := q.ListBlackoutsByDate(ctx, slot.Date)
		if err != nil {
			return fmt.Errorf("load blackouts: %w", err)
		}
		if err := availability.Check(slot, reservations, blocks); err != nil {
			return err
		}

		promotions, err := q.ListPromotions(ctx)
		if err != nil {
			return fmt.Errorf("load promotions: %w", err)
		}
		quote, err := m.calculator.Price(slot.Date, slot.StartTime, slot.DurationHours, promotions)
		if err != nil {
			return err
		}

		now := m.now().UTC()
		res := models.Reservation{
			ID:              uuid.NewString(),
			Court:           slot.Court,
			Date:            slot.Date,
			StartTime:       slot.StartTime,
			DurationHours:   slot.DurationHours,
			Price:           quote.FinalPrice,
			BasePrice:       quote.BasePrice,
			DiscountPercent: quote.DiscountPercent,
			PaymentStatus:   models.PaymentPending,
			Status:          models.ReservationActive,
			ContactName:     name,
			ContactEmail:    email,
			ContactPhone:    phone,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := q.CreateReservation(ctx, res); err != nil {
			return err
		}
		created = res
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrSlotUnavailable) {
			logger.Info().Err(err).Msg("Booking rejected: slot unavailable")
		} else {
			logger.Error().Err(err).Msg("Failed to create reservation")
		}
		return models.Reservation{}, err
	}

	logger.Info().
		Str("reservation_id", created.ID).
		Int64("price", created.Price).
		Int("discount_percent", created.DiscountPercent).
		Msg("Reservation created")
	return created, nil
}

// MarkPaid records payment with the given method.
func (m *Manager) MarkPaid(ctx context.Context, id, method string) (models.Reservation, error) {
	method = strings.TrimSpace(method)
	if method == "" {
		return models.Reservation{}, models.FieldError{Field: "payment_method", Reason: "is required"}
	}
	return m.transition(ctx, id, "mark_paid", func(res *models.Reservation) {
		res.PaymentStatus = models.PaymentPaid
		res.PaymentMethod = &method
	})
}

// MarkPending reverts a reservation to unpaid and clears its payment method.
func (m *Manager) MarkPending(ctx context.Context, id string) (models.Reservation, error) {
	return m.transition(ctx, id, "mark_pending", func(res *models.Reservation) {
		res.PaymentStatus = models.PaymentPending
		res.PaymentMethod = nil
	})
}

// Cancel releases the reservation's slot. The record is kept.
func (m *Manager) Cancel(ctx context.Context, id string) (models.Reservation, error) {
	return m.transition(ctx, id, "cancel", func(res *models.Reservation) {
		res.Status = models.ReservationCancelled
	})
}

// transition applies change to an active reservation inside a transaction.
// Cancelled reservations accept no further changes.
func (m *Manager) transition(ctx context.Context, id, action string, change func(*models.Reservation)) (models.Reservation, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "booking").
		Str("reservation_id", id).
		Str("action", action).
		Logger()

	var updated models.Reservation
	err := m.store.RunInTx(ctx, func(q store.Queries) error {
		res, err := q.GetReservation(ctx, id)
		if err != nil {
			return err
		}
		if !res.IsActive() {
			return fmt.Errorf("reservation %s: %w", id, models.ErrAlreadyCancelled)
		}
		change(&res)
		res.UpdatedAt = m.now().UTC()
		if err := q.UpdateReservation(ctx, res); err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrAlreadyCancelled) {
			logger.Info().Err(err).Msg("Reservation transition rejected")
		} else {
			logger.Error().Err(err).Msg("Failed to update reservation")
		}
		return models.Reservation{}, err
	}

	logger.Info().
		Str("status", string(updated.Status)).
		Str("payment_status", string(updated.PaymentStatus)).
		Msg("Reservation updated")
	return updated, nil
}

func (m *Manager) Get(ctx context.Context, id string) (models.Reservation, error) {
	return m.store.GetReservation(ctx, id)
}

// ListByDate returns every reservation on date, cancelled ones included.
func (m *Manager) ListByDate(ctx context.Context, date string) ([]models.Reservation, error) {
	date, err := models.ParseDate(date, "date")
	if err != nil {
		return nil, err
	}
	return m.store.ListReservationsByDate(ctx, date)
}

// Quote prices a slot without booking it. Available reports whether the
// slot could be booked right now.
type Quote struct {
	tariff.Quote
	Available bool `json:"available"`
}

func (m *Manager) Quote(ctx context.Context, court int, date, startTime string, durationHours float64) (Quote, error) {
	slot, err := m.validateSlot(court, date, startTime, durationHours)
	if err != nil {
		return Quote{}, err
	}
	reservations, err := m.store.ListActiveReservations(ctx, slot.Date, slot.Court)
	if err != nil {
		return Quote{}, fmt.Errorf("load reservations: %w", err)
	}
	blocks, err := m.store.ListBlackoutsByDate(ctx, slot.Date)
	if err != nil {
		return Quote{}, fmt.Errorf("load blackouts: %w", err)
	}
	promotions, err := m.store.ListPromotions(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("load promotions: %w", err)
	}
	quote, err := m.calculator.Price(slot.Date, slot.StartTime, slot.DurationHours, promotions)
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Quote:     quote,
		Available: availability.IsAvailable(slot, reservations, blocks),
	}, nil
}

// DaySchedule returns every court's grid for date between opening and
// closing time in slot-sized steps.
func (m *Manager) DaySchedule(ctx context.Context, date string) ([]availability.CourtSchedule, error) {
	date, err := models.ParseDate(date, "date")
	if err != nil {
		return nil, err
	}
	reservations, err := m.store.ListActiveReservations(ctx, date, 0)
	if err != nil {
		return nil, fmt.Errorf("load reservations: %w", err)
	}
	blocks, err := m.store.ListBlackoutsByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("load blackouts: %w", err)
	}
	return availability.DaySchedule(availability.ScheduleParams{
		Date:        date,
		Courts:      m.facility.Courts,
		OpenMinute:  m.facility.OpeningHour * 60,
		CloseMinute: m.facility.ClosingHour * 60,
		StepMinutes: m.facility.SlotMinutes,
	}, reservations, blocks), nil
}

// StartingBetween returns active reservations whose start, read as wall
// clock time in loc, falls in [from, to).
func (m *Manager) StartingBetween(ctx context.Context, from, to time.Time, loc *time.Location) ([]models.Reservation, error) {
	if loc == nil {
		loc = time.UTC
	}
	from = from.In(loc)
	to = to.In(loc)

	var out []models.Reservation
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	for !day.After(to) {
		reservations, err := m.store.ListActiveReservations(ctx, day.Format(models.DateLayout), 0)
		if err != nil {
			return nil, fmt.Errorf("load reservations: %w", err)
		}
		for _, res := range reservations {
			start, ok := StartsAt(res, loc)
			if ok && !start.Before(from) && start.Before(to) {
				out = append(out, res)
			}
		}
		day = day.AddDate(0, 0, 1)
	}
	return out, nil
}

// StartsAt converts a reservation's date and start time into an instant in
// loc.
func StartsAt(res models.Reservation, loc *time.Location) (time.Time, bool) {
	day, err := time.Parse(models.DateLayout, res.Date)
	if err != nil {
		return time.Time{}, false
	}
	start, end, ok := res.Interval()
	if !ok || end <= start {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), start/60, start%60, 0, 0, loc), true
}
