// Package tariff prices court bookings under day/night rates and
// promotional discounts. Everything here is a pure function of its inputs
// and the tariff configuration.
package tariff

import (
	"math"

	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/models"
)

type Quote struct {
	BasePrice       int64             `json:"basePrice"`
	DiscountPercent int               `json:"discountPercent"`
	FinalPrice      int64             `json:"finalPrice"`
	Promotion       *models.Promotion `json:"promotion,omitempty"`
}

type Calculator struct {
	dayRate        int64
	nightRate      int64
	boundaryMinute int
}

func NewCalculator(cfg config.TariffConfig) *Calculator {
	return &Calculator{
		dayRate:        cfg.DayRate,
		nightRate:      cfg.NightRate,
		boundaryMinute: cfg.BoundaryHour * 60,
	}
}

// Price computes the quote for a booking on date starting at startTime.
// Minutes before the boundary are charged at the day rate and minutes at or
// after it at the night rate, so a booking that straddles the boundary pays
// each rate for the share of time it actually spends on each side.
func (c *Calculator) Price(date, startTime string, durationHours float64, promotions []models.Promotion) (Quote, error) {
	start, err := models.ParseClock(startTime, "start_time")
	if err != nil {
		return Quote{}, err
	}
	duration := models.DurationMinutes(durationHours)
	if duration <= 0 {
		return Quote{}, models.FieldError{Field: "duration_hours", Reason: "must be greater than 0"}
	}

	base := c.basePrice(start, start+duration)
	promo := SelectPromotion(date, start, promotions)

	quote := Quote{BasePrice: base, FinalPrice: base}
	if promo != nil {
		quote.Promotion = promo
		quote.DiscountPercent = promo.DiscountPercent
		quote.FinalPrice = applyDiscount(base, promo.DiscountPercent)
	}
	return quote, nil
}

func (c *Calculator) basePrice(start, end int) int64 {
	dayMinutes := int64(overlap(start, end, 0, c.boundaryMinute))
	nightMinutes := int64(end-start) - dayMinutes
	total := dayMinutes*c.dayRate + nightMinutes*c.nightRate
	return int64(math.Round(float64(total) / 60))
}

func applyDiscount(base int64, percent int) int64 {
	if percent <= 0 {
		return base
	}
	if percent >= 100 {
		return 0
	}
	return int64(math.Round(float64(base) * float64(100-percent) / 100))
}

// overlap returns how many minutes of [start, end) fall inside [from, to).
func overlap(start, end, from, to int) int {
	lo := max(start, from)
	hi := min(end, to)
	if hi <= lo {
		return 0
	}
	return hi - lo
}
