package tariff

import (
	"errors"
	"testing"

	"github.com/codr1/courtbook/internal/config"
	"github.com/codr1/courtbook/internal/models"
)

func strPtr(s string) *string { return &s }

func newTestCalculator() *Calculator {
	return NewCalculator(config.TariffConfig{DayRate: 250, NightRate: 400, BoundaryHour: 16})
}

func TestPriceBasePrice(t *testing.T) {
	calc := newTestCalculator()
	tests := []struct {
		name     string
		start    string
		duration float64
		want     int64
	}{
		{name: "day_only", start: "09:00", duration: 2, want: 500},
		{name: "night_only", start: "18:00", duration: 1.5, want: 600},
		{name: "straddles_boundary", start: "15:00", duration: 2, want: 650},
		{name: "ends_at_boundary", start: "14:00", duration: 2, want: 500},
		{name: "starts_at_boundary", start: "16:00", duration: 1, want: 400},
		{name: "half_hour_before_boundary", start: "15:30", duration: 1, want: 325},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			quote, err := calc.Price("2024-06-01", test.start, test.duration, nil)
			if err != nil {
				t.Fatalf("Price: %v", err)
			}
			if quote.BasePrice != test.want {
				t.Fatalf("BasePrice = %d, want %d", quote.BasePrice, test.want)
			}
			if quote.FinalPrice != test.want || quote.DiscountPercent != 0 {
				t.Fatalf("unexpected discount on %+v", quote)
			}
		})
	}
}

func TestPriceExampleWithPromotion(t *testing.T) {
	calc := newTestCalculator()
	promos := []models.Promotion{
		{ID: "p1", Date: strPtr("2024-06-01"), DiscountPercent: 20, Active: true},
	}

	quote, err := calc.Price("2024-06-01", "15:00", 2, promos)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if quote.BasePrice != 650 || quote.DiscountPercent != 20 || quote.FinalPrice != 520 {
		t.Fatalf("unexpected quote: %+v", quote)
	}
	if quote.Promotion == nil || quote.Promotion.ID != "p1" {
		t.Fatalf("expected promotion p1, got %+v", quote.Promotion)
	}

	again, err := calc.Price("2024-06-01", "15:00", 2, promos)
	if err != nil {
		t.Fatalf("Price: %v", err)
	}
	if again.BasePrice != quote.BasePrice || again.FinalPrice != quote.FinalPrice || again.DiscountPercent != quote.DiscountPercent {
		t.Fatalf("price not deterministic: %+v vs %+v", quote, again)
	}
}

func TestPriceRejectsBadInput(t *testing.T) {
	calc := newTestCalculator()
	if _, err := calc.Price("2024-06-01", "9am", 1, nil); !errors.Is(err, models.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for bad start, got %v", err)
	}
	if _, err := calc.Price("2024-06-01", "09:00", 0, nil); !errors.Is(err, models.ErrInvalidRequest) {
		t.Fatalf("expected invalid request for zero duration, got %v", err)
	}
}

func TestSelectPromotion(t *testing.T) {
	date := "2024-06-01"
	start := 15 * 60

	tests := []struct {
		name   string
		promos []models.Promotion
		wantID string
	}{
		{name: "none", promos: nil, wantID: ""},
		{
			name: "higher_discount_wins",
			promos: []models.Promotion{
				{ID: "a", DiscountPercent: 10, Active: true},
				{ID: "b", DiscountPercent: 25, Active: true},
			},
			wantID: "b",
		},
		{
			name: "higher_discount_wins_regardless_of_order",
			promos: []models.Promotion{
				{ID: "b", DiscountPercent: 25, Active: true},
				{ID: "a", DiscountPercent: 10, Active: true},
			},
			wantID: "b",
		},
		{
			name: "inactive_ignored",
			promos: []models.Promotion{
				{ID: "a", DiscountPercent: 50, Active: false},
				{ID: "b", DiscountPercent: 5, Active: true},
			},
			wantID: "b",
		},
		{
			name: "other_date_ignored",
			promos: []models.Promotion{
				{ID: "a", Date: strPtr("2024-06-02"), DiscountPercent: 50, Active: true},
			},
			wantID: "",
		},
		{
			name: "time_range_excludes_start",
			promos: []models.Promotion{
				{ID: "a", StartTime: strPtr("08:00"), EndTime: strPtr("15:00"), DiscountPercent: 50, Active: true},
			},
			wantID: "",
		},
		{
			name: "time_range_contains_start",
			promos: []models.Promotion{
				{ID: "a", StartTime: strPtr("15:00"), EndTime: strPtr("17:00"), DiscountPercent: 15, Active: true},
			},
			wantID: "a",
		},
		{
			name: "tie_broken_by_specificity",
			promos: []models.Promotion{
				{ID: "unscoped", DiscountPercent: 20, Active: true},
				{ID: "time", StartTime: strPtr("14:00"), EndTime: strPtr("18:00"), DiscountPercent: 20, Active: true},
				{ID: "date_time", Date: strPtr(date), StartTime: strPtr("14:00"), EndTime: strPtr("18:00"), DiscountPercent: 20, Active: true},
				{ID: "date", Date: strPtr(date), DiscountPercent: 20, Active: true},
			},
			wantID: "date_time",
		},
		{
			name: "date_beats_time",
			promos: []models.Promotion{
				{ID: "time", StartTime: strPtr("14:00"), EndTime: strPtr("18:00"), DiscountPercent: 20, Active: true},
				{ID: "date", Date: strPtr(date), DiscountPercent: 20, Active: true},
			},
			wantID: "date",
		},
		{
			name: "full_tie_lowest_id",
			promos: []models.Promotion{
				{ID: "z", DiscountPercent: 20, Active: true},
				{ID: "m", DiscountPercent: 20, Active: true},
			},
			wantID: "m",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := SelectPromotion(date, start, test.promos)
			gotID := ""
			if got != nil {
				gotID = got.ID
			}
			if gotID != test.wantID {
				t.Fatalf("SelectPromotion() = %q, want %q", gotID, test.wantID)
			}
		})
	}
}
