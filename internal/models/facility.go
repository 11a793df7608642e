package models

import "time"

// BlackoutBlock is an administrator-declared period during which no
// reservation may be created. A nil Court applies to every court and a nil
// time range covers the whole day.
type BlackoutBlock struct {
	ID        string    `db:"id" json:"id"`
	Date      string    `db:"date" json:"date"`
	Court     *int      `db:"court" json:"court,omitempty"`
	StartTime *string   `db:"start_time" json:"startTime,omitempty"`
	EndTime   *string   `db:"end_time" json:"endTime,omitempty"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Promotion struct {
	ID              string    `db:"id" json:"id"`
	Name            string    `db:"name" json:"name"`
	Date            *string   `db:"date" json:"date,omitempty"`
	DiscountPercent int       `db:"discount_percent" json:"discountPercent"`
	StartTime       *string   `db:"start_time" json:"startTime,omitempty"`
	EndTime         *string   `db:"end_time" json:"endTime,omitempty"`
	Active          bool      `db:"active" json:"active"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
}

// Specificity ranks how narrowly a promotion is scoped:
// date+time (3) > date only (2) > time only (1) > unscoped (0).
func (p Promotion) Specificity() int {
	hasDate := p.Date != nil
	hasTime := p.StartTime != nil && p.EndTime != nil
	switch {
	case hasDate && hasTime:
		return 3
	case hasDate:
		return 2
	case hasTime:
		return 1
	}
	return 0
}

type User struct {
	Email     string    `db:"email" json:"email"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
