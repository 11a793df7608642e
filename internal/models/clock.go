package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"

	MinutesPerDay = 24 * 60
)

// ParseDate validates a YYYY-MM-DD calendar date and returns it normalised.
func ParseDate(value, field string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", FieldError{Field: field, Reason: "is required"}
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return "", FieldError{Field: field, Reason: "must be a date in YYYY-MM-DD format"}
	}
	return parsed.Format(DateLayout), nil
}

// ParseClock converts an HH:MM wall-clock value into minutes since midnight.
// "24:00" is accepted so that a range may end at midnight.
func ParseClock(value, field string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, FieldError{Field: field, Reason: "is required"}
	}
	if value == "24:00" {
		return MinutesPerDay, nil
	}
	parsed, err := time.Parse(ClockLayout, value)
	if err != nil {
		return 0, FieldError{Field: field, Reason: "must be a time in HH:MM format"}
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// DurationMinutes converts fractional hours into whole minutes.
func DurationMinutes(hours float64) int {
	return int(math.Round(hours * 60))
}
