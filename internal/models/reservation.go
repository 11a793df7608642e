package models

import "time"

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCancelled ReservationStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

type Reservation struct {
	ID              string            `db:"id" json:"id"`
	Court           int               `db:"court" json:"court"`
	Date            string            `db:"date" json:"date"`
	StartTime       string            `db:"start_time" json:"startTime"`
	DurationHours   float64           `db:"duration_hours" json:"durationHours"`
	Price           int64             `db:"price" json:"price"`
	BasePrice       int64             `db:"base_price" json:"basePrice"`
	DiscountPercent int               `db:"discount_percent" json:"discountPercent"`
	PaymentStatus   PaymentStatus     `db:"payment_status" json:"paymentStatus"`
	PaymentMethod   *string           `db:"payment_method" json:"paymentMethod,omitempty"`
	Status          ReservationStatus `db:"status" json:"status"`
	ContactName     string            `db:"contact_name" json:"contactName"`
	ContactEmail    string            `db:"contact_email" json:"contactEmail"`
	ContactPhone    string            `db:"contact_phone" json:"contactPhone"`
	CreatedAt       time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updatedAt"`
}

func (r Reservation) IsActive() bool {
	return r.Status == ReservationActive
}

// Interval returns the reservation's half-open [start, end) range in minutes
// since midnight. ok is false when the stored start time is malformed.
func (r Reservation) Interval() (start, end int, ok bool) {
	start, err := ParseClock(r.StartTime, "start_time")
	if err != nil {
		return 0, 0, false
	}
	return start, start + DurationMinutes(r.DurationHours), true
}
