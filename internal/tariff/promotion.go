package tariff

import "github.com/codr1/courtbook/internal/models"

// Eligible reports whether promo applies to a booking on date starting at
// startMinute. A promotion with a malformed time range never applies.
func Eligible(promo models.Promotion, date string, startMinute int) bool {
	if !promo.Active {
		return false
	}
	if promo.DiscountPercent <= 0 {
		return false
	}
	if promo.Date != nil && *promo.Date != date {
		return false
	}
	if promo.StartTime == nil && promo.EndTime == nil {
		return true
	}
	if promo.StartTime == nil || promo.EndTime == nil {
		return false
	}
	from, err := models.ParseClock(*promo.StartTime, "start_time")
	if err != nil {
		return false
	}
	to, err := models.ParseClock(*promo.EndTime, "end_time")
	if err != nil {
		return false
	}
	return startMinute >= from && startMinute < to
}

// SelectPromotion picks the single promotion applied to a booking.
// The highest discount wins; equal discounts go to the more specific
// promotion (date+time, then date, then time, then unscoped) and any
// remaining tie to the lowest ID. Input order never affects the result.
func SelectPromotion(date string, startMinute int, promotions []models.Promotion) *models.Promotion {
	var best *models.Promotion
	for i := range promotions {
		candidate := promotions[i]
		if !Eligible(candidate, date, startMinute) {
			continue
		}
		if best == nil || better(candidate, *best) {
			chosen := candidate
			best = &chosen
		}
	}
	return best
}

func better(a, b models.Promotion) bool {
	if a.DiscountPercent != b.DiscountPercent {
		return a.DiscountPercent > b.DiscountPercent
	}
	if a.Specificity() != b.Specificity() {
		return a.Specificity() > b.Specificity()
	}
	return a.ID < b.ID
}
