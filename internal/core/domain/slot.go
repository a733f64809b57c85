package domain

import (
	"time"

	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
)

const (
	// DayStartHour is the first bookable hour of a business day.
	DayStartHour = 9
	// SlotsPerDay is the number of one-hour windows between 9:00 and 17:00.
	SlotsPerDay = 8

	SlotDuration = time.Hour
)

// SlotIndex identifies one of the day's fixed one-hour windows.
// Index 0 is 9:00-10:00, index 7 is 16:00-17:00.
type SlotIndex int

type Meridiem string

const (
	MeridiemAM Meridiem = "AM"
	MeridiemPM Meridiem = "PM"
)

func (s SlotIndex) Valid() bool {
	return s >= 0 && s < SlotsPerDay
}

// Start returns the slot's wall-clock start time on a zero date.
func (s SlotIndex) Start() time.Time {
	return time.Date(0, time.January, 1, DayStartHour, 0, 0, 0, time.UTC).
		Add(time.Duration(s) * SlotDuration)
}

// End is the start of the following slot.
func (s SlotIndex) End() time.Time {
	return (s + 1).Start()
}

// Meridiem buckets the slot by its start hour; every slot is exactly one
// hour, so none spans noon ambiguously.
func (s SlotIndex) Meridiem() Meridiem {
	if s.Start().Hour() < 12 {
		return MeridiemAM
	}
	return MeridiemPM
}

func (s SlotIndex) StartClock() json_types.ClockTime {
	return json_types.ClockTime{Time: s.Start()}
}

func (s SlotIndex) EndClock() json_types.ClockTime {
	return json_types.ClockTime{Time: s.End()}
}

// Label renders the slot's time range, e.g. "11:00 am - 12:00 pm".
func (s SlotIndex) Label() string {
	return s.StartClock().String() + " - " + s.EndClock().String()
}

// AllSlots lists every slot index of a business day in order.
func AllSlots() []SlotIndex {
	slots := make([]SlotIndex, 0, SlotsPerDay)
	for s := SlotIndex(0); s < SlotsPerDay; s++ {
		slots = append(slots, s)
	}
	return slots
}
