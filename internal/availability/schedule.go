package availability

import "github.com/codr1/courtbook/internal/models"

// SlotState is one public calendar cell. It says whether the cell is taken
// and why, never by whom.
type SlotState struct {
	Start       string `json:"start"`
	End         string `json:"end"`
	Free        bool   `json:"free"`
	Reserved    bool   `json:"reserved,omitempty"`
	BlockReason string `json:"blockReason,omitempty"`
}

type CourtSchedule struct {
	Court int         `json:"court"`
	Slots []SlotState `json:"slots"`
}

type ScheduleParams struct {
	Date        string
	Courts      int
	OpenMinute  int
	CloseMinute int
	StepMinutes int
}

// DaySchedule lays out every court's day in StepMinutes cells, marking each
// cell as reserved or with the reason of the blackout covering it.
func DaySchedule(params ScheduleParams, reservations []models.Reservation, blocks []models.BlackoutBlock) []CourtSchedule {
	if params.StepMinutes <= 0 || params.CloseMinute <= params.OpenMinute {
		return nil
	}

	schedule := make([]CourtSchedule, 0, params.Courts)
	for court := 1; court <= params.Courts; court++ {
		row := CourtSchedule{Court: court}
		for start := params.OpenMinute; start < params.CloseMinute; start += params.StepMinutes {
			end := min(start+params.StepMinutes, params.CloseMinute)
			row.Slots = append(row.Slots, cellState(court, params.Date, start, end, reservations, blocks))
		}
		schedule = append(schedule, row)
	}
	return schedule
}

func cellState(court int, date string, start, end int, reservations []models.Reservation, blocks []models.BlackoutBlock) SlotState {
	state := SlotState{
		Start: models.FormatClock(start),
		End:   models.FormatClock(end),
		Free:  true,
	}
	for _, res := range reservations {
		if !res.IsActive() || res.Court != court || res.Date != date {
			continue
		}
		resStart, resEnd, ok := res.Interval()
		if ok && Overlaps(start, end, resStart, resEnd) {
			state.Free = false
			state.Reserved = true
			return state
		}
	}
	for _, block := range blocks {
		if BlockObstructs(block, court, date, start, end) {
			state.Free = false
			state.BlockReason = block.Reason
			return state
		}
	}
	return state
}
