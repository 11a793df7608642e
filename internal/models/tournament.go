package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"time"
)

type TournamentStatus string

const (
	TournamentOpen       TournamentStatus = "open"
	TournamentClosed     TournamentStatus = "closed"
	TournamentInProgress TournamentStatus = "in_progress"
	TournamentFinished   TournamentStatus = "finished"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentOpen, TournamentClosed, TournamentInProgress, TournamentFinished:
		return true
	}
	return false
}

type Tournament struct {
	ID                string           `db:"id" json:"id"`
	Name              string           `db:"name" json:"name"`
	Category          string           `db:"category" json:"category"`
	StartDate         string           `db:"start_date" json:"startDate"`
	EndDate           string           `db:"end_date" json:"endDate"`
	RegistrationPrice int64            `db:"registration_price" json:"registrationPrice"`
	MinParticipants   int              `db:"min_participants" json:"minParticipants"`
	MaxParticipants   int              `db:"max_participants" json:"maxParticipants"`
	Courts            IntList          `db:"courts" json:"courts"`
	Status            TournamentStatus `db:"status" json:"status"`
	Rules             string           `db:"rules" json:"rules,omitempty"`
	Prizes            string           `db:"prizes" json:"prizes,omitempty"`
	ImageURL          string           `db:"image_url" json:"imageUrl,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"createdAt"`
}

func (t Tournament) HasCourt(court int) bool {
	return slices.Contains(t.Courts, court)
}

type Participant struct {
	ID           string    `db:"id" json:"id"`
	TournamentID string    `db:"tournament_id" json:"tournamentId"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PartnerEmail *string   `db:"partner_email" json:"partnerEmail,omitempty"`
	PartnerName  *string   `db:"partner_name" json:"partnerName,omitempty"`
	Paid         bool      `db:"paid" json:"paid"`
	RegisteredAt time.Time `db:"registered_at" json:"registeredAt"`
}

type Winner string

const (
	WinnerNone  Winner = ""
	WinnerTeam1 Winner = "team1"
	WinnerTeam2 Winner = "team2"
)

func (w Winner) Valid() bool {
	return w == WinnerNone || w == WinnerTeam1 || w == WinnerTeam2
}

type Match struct {
	ID           string    `db:"id" json:"id"`
	TournamentID string    `db:"tournament_id" json:"tournamentId"`
	Round        string    `db:"round" json:"round"`
	Team1        IDList    `db:"team1" json:"team1"`
	Team2        IDList    `db:"team2" json:"team2"`
	Result       string    `db:"result" json:"result"`
	Winner       Winner    `db:"winner" json:"winner"`
	Court        *int      `db:"court" json:"court,omitempty"`
	Date         *string   `db:"date" json:"date,omitempty"`
	Time         *string   `db:"time" json:"time,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// IDList is an ordered list of identifiers stored as a JSON array column.
type IDList []string

func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *IDList) Scan(src any) error {
	return scanJSON(src, (*[]string)(l))
}

// IntList is an ordered list of integers stored as a JSON array column.
type IntList []int

func (l IntList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]int(l))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *IntList) Scan(src any) error {
	return scanJSON(src, (*[]int)(l))
}

func scanJSON(src any, dst any) error {
	var data []byte
	switch typed := src.(type) {
	case nil:
		return nil
	case []byte:
		data = typed
	case string:
		data = []byte(typed)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
