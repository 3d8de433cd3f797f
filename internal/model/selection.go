package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

type SeminarKind string

const (
	SeminarKindSingleDay SeminarKind = "single-day"
	SeminarKindMultiDay  SeminarKind = "multi-day"
)

// ParseSeminarKind accepts the canonical names and the form's legacy values.
func ParseSeminarKind(raw string) (SeminarKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "single-day", "single_day", "1tag", "1-tag":
		return SeminarKindSingleDay, true
	case "multi-day", "multi_day", "mehrtag", "mehrtaegig":
		return SeminarKindMultiDay, true
	default:
		return "", false
	}
}

func (k SeminarKind) Label() string {
	if k == SeminarKindSingleDay {
		return "1-Tages-Seminar"
	}
	return "Mehrtägiges Seminar"
}

// Count is a non-negative quantity read leniently from form input: numbers,
// numeric strings and null are accepted, anything unreadable becomes 0.
type Count int

func (c Count) Int() int {
	if c < 0 {
		return 0
	}
	return int(c)
}

func (c *Count) UnmarshalJSON(data []byte) error {
	*c = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(data)
	}
	*c = parseCount(raw)
	return nil
}

func parseCount(raw string) Count {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		if n < 0 || n > math.MaxInt32 {
			return 0
		}
		return Count(n)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0
	}
	return Count(math.Floor(f))
}

// Catering holds the chosen price keys. Dinner is a single choice between
// the base menu and its upgrade.
type Catering struct {
	MorningBreak   string   `json:"morning_break"`
	AfternoonBreak string   `json:"afternoon_break"`
	Lunch          []string `json:"lunch"`
	Dinner         string   `json:"dinner"`
}

type EquipmentLine struct {
	Key      string `json:"key"`
	Quantity Count  `json:"quantity"`
}

// Activity is priced per person unless Flat is set, in which case the
// price is charged once for the whole group.
type Activity struct {
	Key  string `json:"key"`
	Flat bool   `json:"flat"`
}

// Selection is the snapshot of form choices a quote is computed from.
// Dates are ISO strings as entered; parsing is the calculator's concern.
type Selection struct {
	Kind          SeminarKind     `json:"kind"`
	Headcount     Count           `json:"headcount"`
	Date          string          `json:"date,omitempty"`
	StartDate     string          `json:"start_date,omitempty"`
	EndDate       string          `json:"end_date,omitempty"`
	SingleRooms   Count           `json:"single_rooms"`
	DoubleRooms   Count           `json:"double_rooms"`
	Catering      Catering        `json:"catering"`
	Equipment     []EquipmentLine `json:"equipment"`
	RoomGuarantee bool            `json:"room_guarantee"`
	BreakoutRoom  bool            `json:"breakout_room"`
	Activities    []Activity      `json:"activities"`
}

func (s Selection) IsSingleDay() bool {
	return s.Kind == SeminarKindSingleDay
}
