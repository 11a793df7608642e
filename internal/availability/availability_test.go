package availability

import (
	"errors"
	"strings"
	"testing"

	"github.com/codr1/courtbook/internal/models"
)

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }

func reservation(id string, court int, start string, hours float64, status models.ReservationStatus) models.Reservation {
	return models.Reservation{
		ID:            id,
		Court:         court,
		Date:          "2024-06-01",
		StartTime:     start,
		DurationHours: hours,
		Status:        status,
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd int
		want                       bool
	}{
		{name: "disjoint", aStart: 0, aEnd: 60, bStart: 120, bEnd: 180, want: false},
		{name: "touching", aStart: 0, aEnd: 60, bStart: 60, bEnd: 120, want: false},
		{name: "partial", aStart: 0, aEnd: 90, bStart: 60, bEnd: 120, want: true},
		{name: "contained", aStart: 0, aEnd: 180, bStart: 60, bEnd: 120, want: true},
		{name: "identical", aStart: 60, aEnd: 120, bStart: 60, bEnd: 120, want: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Overlaps(test.aStart, test.aEnd, test.bStart, test.bEnd); got != test.want {
				t.Fatalf("Overlaps = %t, want %t", got, test.want)
			}
			if got := Overlaps(test.bStart, test.bEnd, test.aStart, test.aEnd); got != test.want {
				t.Fatalf("Overlaps (swapped) = %t, want %t", got, test.want)
			}
		})
	}
}

func TestIsAvailableReservations(t *testing.T) {
	existing := []models.Reservation{
		reservation("r1", 1, "10:00", 1.5, models.ReservationActive),
		reservation("r2", 2, "10:00", 1, models.ReservationCancelled),
	}

	tests := []struct {
		name string
		slot Slot
		want bool
	}{
		{name: "overlaps_active", slot: Slot{Court: 1, Date: "2024-06-01", StartTime: "11:00", DurationHours: 1}, want: false},
		{name: "adjacent_after", slot: Slot{Court: 1, Date: "2024-06-01", StartTime: "11:30", DurationHours: 1}, want: true},
		{name: "adjacent_before", slot: Slot{Court: 1, Date: "2024-06-01", StartTime: "09:00", DurationHours: 1}, want: true},
		{name: "other_court", slot: Slot{Court: 3, Date: "2024-06-01", StartTime: "10:00", DurationHours: 1}, want: true},
		{name: "other_date", slot: Slot{Court: 1, Date: "2024-06-02", StartTime: "10:00", DurationHours: 1}, want: true},
		{name: "cancelled_is_transparent", slot: Slot{Court: 2, Date: "2024-06-01", StartTime: "10:00", DurationHours: 1}, want: true},
		{name: "malformed_slot", slot: Slot{Court: 1, Date: "2024-06-01", StartTime: "ten", DurationHours: 1}, want: false},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsAvailable(test.slot, existing, nil); got != test.want {
				t.Fatalf("IsAvailable = %t, want %t", got, test.want)
			}
		})
	}
}

func TestIsAvailableBlackouts(t *testing.T) {
	blocks := []models.BlackoutBlock{
		{ID: "all-day-court-2", Date: "2024-06-01", Court: intPtr(2), Reason: "resurfacing"},
		{ID: "evening-all-courts", Date: "2024-06-01", StartTime: strPtr("18:00"), EndTime: strPtr("20:00"), Reason: "club night"},
	}

	tests := []struct {
		name string
		slot Slot
		want bool
	}{
		{name: "court_blocked_all_day", slot: Slot{Court: 2, Date: "2024-06-01", StartTime: "09:00", DurationHours: 1}, want: false},
		{name: "evening_block_any_court", slot: Slot{Court: 1, Date: "2024-06-01", StartTime: "17:30", DurationHours: 1}, want: false},
		{name: "before_evening_block", slot: Slot{Court: 1, Date: "2024-06-01", StartTime: "17:00", DurationHours: 1}, want: true},
		{name: "after_evening_block", slot: Slot{Court: 3, Date: "2024-06-01", StartTime: "20:00", DurationHours: 1}, want: true},
		{name: "other_date", slot: Slot{Court: 2, Date: "2024-06-02", StartTime: "09:00", DurationHours: 1}, want: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := IsAvailable(test.slot, nil, blocks); got != test.want {
				t.Fatalf("IsAvailable = %t, want %t", got, test.want)
			}
		})
	}
}

func TestCheckReportsConflicts(t *testing.T) {
	existing := []models.Reservation{reservation("r1", 1, "10:00", 2, models.ReservationActive)}
	blocks := []models.BlackoutBlock{{ID: "b1", Date: "2024-06-01", Reason: "maintenance", StartTime: strPtr("11:00"), EndTime: strPtr("12:00")}}

	err := Check(Slot{Court: 1, Date: "2024-06-01", StartTime: "11:00", DurationHours: 1}, existing, blocks)
	if !errors.Is(err, models.ErrSlotUnavailable) {
		t.Fatalf("expected ErrSlotUnavailable, got %v", err)
	}
	var availErr *AvailabilityError
	if !errors.As(err, &availErr) {
		t.Fatalf("expected *AvailabilityError, got %T", err)
	}
	if len(availErr.Conflicts) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(availErr.Conflicts))
	}
	if availErr.Conflicts[0].Reservation == nil || availErr.Conflicts[0].Reservation.ID != "r1" {
		t.Fatalf("expected reservation r1 first, got %+v", availErr.Conflicts[0])
	}
	if availErr.Conflicts[1].Block == nil || availErr.Conflicts[1].Block.ID != "b1" {
		t.Fatalf("expected block b1 second, got %+v", availErr.Conflicts[1])
	}

	public := availErr.PublicMessage()
	if strings.Contains(public, "r1") || strings.Contains(public, "b1") {
		t.Fatalf("public message leaks conflict ids: %q", public)
	}
	if !strings.Contains(public, "already reserved") {
		t.Fatalf("public message should name the reason, got %q", public)
	}

	if err := Check(Slot{Court: 1, Date: "2024-06-01", StartTime: "12:00", DurationHours: 1}, existing, nil); err != nil {
		t.Fatalf("expected free slot, got %v", err)
	}
	if err := Check(Slot{Court: 1, Date: "2024-06-01", StartTime: "12:00", DurationHours: 0}, existing, nil); !errors.Is(err, models.ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}

func TestDaySchedule(t *testing.T) {
	existing := []models.Reservation{reservation("r1", 1, "09:00", 1, models.ReservationActive)}
	blocks := []models.BlackoutBlock{{ID: "b1", Date: "2024-06-01", Court: intPtr(2), Reason: "repairs"}}

	schedule := DaySchedule(ScheduleParams{
		Date:        "2024-06-01",
		Courts:      2,
		OpenMinute:  8 * 60,
		CloseMinute: 10 * 60,
		StepMinutes: 30,
	}, existing, blocks)

	if len(schedule) != 2 {
		t.Fatalf("expected 2 courts, got %d", len(schedule))
	}
	court1 := schedule[0]
	if len(court1.Slots) != 4 {
		t.Fatalf("expected 4 cells, got %d", len(court1.Slots))
	}
	wantFree := []bool{true, true, false, false}
	for i, cell := range court1.Slots {
		if cell.Free != wantFree[i] {
			t.Fatalf("court 1 cell %s free = %t, want %t", cell.Start, cell.Free, wantFree[i])
		}
	}
	if !court1.Slots[2].Reserved || court1.Slots[2].BlockReason != "" {
		t.Fatalf("expected 09:00 cell to be reserved, got %+v", court1.Slots[2])
	}
	if court1.Slots[0].Reserved {
		t.Fatalf("expected 08:00 cell to be free, got %+v", court1.Slots[0])
	}
	for _, cell := range schedule[1].Slots {
		if cell.Free || cell.BlockReason != "repairs" {
			t.Fatalf("court 2 should be blocked all morning, got %+v", cell)
		}
	}
}
