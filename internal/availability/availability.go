// Package availability decides whether a court slot can be booked given the
// existing reservations and blackout blocks. It is the single source of
// truth for "is this slot free"; callers run it inside the same
// transaction as the insert that depends on its answer.
package availability

import (
	"fmt"
	"slices"
	"strings"

	"github.com/codr1/courtbook/internal/models"
)

// Slot is a (court, date, start, duration) interval under consideration.
type Slot struct {
	Court         int
	Date          string
	StartTime     string
	DurationHours float64
}

// Interval returns the slot's half-open [start, end) range in minutes.
func (s Slot) Interval() (int, int, error) {
	start, err := models.ParseClock(s.StartTime, "start_time")
	if err != nil {
		return 0, 0, err
	}
	duration := models.DurationMinutes(s.DurationHours)
	if duration <= 0 {
		return 0, 0, models.FieldError{Field: "duration_hours", Reason: "must be greater than 0"}
	}
	return start, start + duration, nil
}

// Conflict names the entity obstructing a slot. Exactly one field is set.
type Conflict struct {
	Reservation *models.Reservation
	Block       *models.BlackoutBlock
}

func (c Conflict) String() string {
	switch {
	case c.Reservation != nil:
		return fmt.Sprintf("reservation %s (%s, %gh)", c.Reservation.ID, c.Reservation.StartTime, c.Reservation.DurationHours)
	case c.Block != nil:
		reason := strings.TrimSpace(c.Block.Reason)
		if reason == "" {
			reason = "blackout"
		}
		return fmt.Sprintf("blackout %s (%s)", c.Block.ID, reason)
	}
	return "unknown"
}

// AvailabilityError reports the entities obstructing a requested slot.
type AvailabilityError struct {
	Slot      Slot
	Conflicts []Conflict
}

func (e *AvailabilityError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, conflict := range e.Conflicts {
		parts[i] = conflict.String()
	}
	return fmt.Sprintf("court %d on %s at %s unavailable: %s", e.Slot.Court, e.Slot.Date, e.Slot.StartTime, strings.Join(parts, ", "))
}

// PublicMessage describes the rejection without identifying the
// reservations in the way.
func (e *AvailabilityError) PublicMessage() string {
	reasons := make([]string, 0, len(e.Conflicts))
	for _, conflict := range e.Conflicts {
		reason := "already reserved"
		if conflict.Block != nil {
			reason = "blacked out"
			if r := strings.TrimSpace(conflict.Block.Reason); r != "" {
				reason += " (" + r + ")"
			}
		}
		if !slices.Contains(reasons, reason) {
			reasons = append(reasons, reason)
		}
	}
	return fmt.Sprintf("court %d on %s at %s is unavailable: %s", e.Slot.Court, e.Slot.Date, e.Slot.StartTime, strings.Join(reasons, ", "))
}

func (e *AvailabilityError) Unwrap() error {
	return models.ErrSlotUnavailable
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// Conflicts lists every active reservation and blackout block obstructing
// slot. Cancelled reservations and other courts or dates are ignored.
func Conflicts(slot Slot, reservations []models.Reservation, blocks []models.BlackoutBlock) ([]Conflict, error) {
	start, end, err := slot.Interval()
	if err != nil {
		return nil, err
	}

	var conflicts []Conflict
	for i := range reservations {
		res := reservations[i]
		if !res.IsActive() || res.Court != slot.Court || res.Date != slot.Date {
			continue
		}
		resStart, resEnd, ok := res.Interval()
		if !ok {
			// A stored row we cannot interpret is treated as occupying the court.
			conflicts = append(conflicts, Conflict{Reservation: &res})
			continue
		}
		if Overlaps(start, end, resStart, resEnd) {
			conflicts = append(conflicts, Conflict{Reservation: &res})
		}
	}

	for i := range blocks {
		block := blocks[i]
		if BlockObstructs(block, slot.Court, slot.Date, start, end) {
			conflicts = append(conflicts, Conflict{Block: &block})
		}
	}
	return conflicts, nil
}

// BlockObstructs reports whether a blackout block covers part of
// [start, end) on court and date. A block whose time range cannot be
// parsed is treated as covering the whole day.
func BlockObstructs(block models.BlackoutBlock, court int, date string, start, end int) bool {
	if block.Date != date {
		return false
	}
	if block.Court != nil && *block.Court != court {
		return false
	}
	blockStart, blockEnd, whole := blockRange(block)
	if whole {
		return true
	}
	return Overlaps(start, end, blockStart, blockEnd)
}

func blockRange(block models.BlackoutBlock) (int, int, bool) {
	if block.StartTime == nil || block.EndTime == nil {
		return 0, models.MinutesPerDay, true
	}
	from, err := models.ParseClock(*block.StartTime, "start_time")
	if err != nil {
		return 0, models.MinutesPerDay, true
	}
	to, err := models.ParseClock(*block.EndTime, "end_time")
	if err != nil || to <= from {
		return 0, models.MinutesPerDay, true
	}
	return from, to, false
}

// IsAvailable reports whether slot can be booked. A malformed slot is never
// available.
func IsAvailable(slot Slot, reservations []models.Reservation, blocks []models.BlackoutBlock) bool {
	conflicts, err := Conflicts(slot, reservations, blocks)
	return err == nil && len(conflicts) == 0
}

// Check returns nil when slot is free, an *AvailabilityError when it is
// obstructed, and a models.FieldError when the slot itself is malformed.
func Check(slot Slot, reservations []models.Reservation, blocks []models.BlackoutBlock) error {
	conflicts, err := Conflicts(slot, reservations, blocks)
	if err != nil {
		return err
	}
	if len(conflicts) > 0 {
		return &AvailabilityError{Slot: slot, Conflicts: conflicts}
	}
	return nil
}
