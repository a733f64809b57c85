package domain

import (
	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
)

// ScheduleEntry is one day's availability. A day with no entry in the
// schedule is open. FullyBooked marks day-level unavailability; when it is
// set the bitmap is ignored, so checking whether a calendar day can be
// offered at all stays O(1).
type ScheduleEntry struct {
	FullyBooked bool              `json:"fullyBooked"`
	Slots       [SlotsPerDay]bool `json:"slots"`
}

// SlotTaken treats FullyBooked and an all-true bitmap as the same signal.
func (e ScheduleEntry) SlotTaken(slot SlotIndex) bool {
	if e.FullyBooked {
		return true
	}
	return e.Slots[slot]
}

func (e ScheduleEntry) allTaken() bool {
	for _, taken := range e.Slots {
		if !taken {
			return false
		}
	}
	return true
}

// Schedule is the derived per-day availability snapshot. Today is always
// present and fully booked, so same-day appointments are never offered.
type Schedule struct {
	Today json_types.CalendarDate                   `json:"today"`
	Days  map[json_types.CalendarDate]ScheduleEntry `json:"days"`
}

// BuildSchedule folds a flat list of booking records into a schedule.
//
// The fold marks one bit per record; duplicate (date, slot) pairs are
// idempotent, never a conflict. A second pass collapses days whose eight
// bits are all set into FullyBooked entries. Both passes build fresh maps
// rather than mutating during iteration.
func BuildSchedule(records []BookingRecord, today json_types.CalendarDate) Schedule {
	marked := map[json_types.CalendarDate]ScheduleEntry{
		today: {FullyBooked: true},
	}

	for _, record := range records {
		if !record.Slot.Valid() {
			continue
		}
		entry := marked[record.Date]
		if entry.FullyBooked {
			continue
		}
		entry.Slots[record.Slot] = true
		marked[record.Date] = entry
	}

	days := make(map[json_types.CalendarDate]ScheduleEntry, len(marked))
	for date, entry := range marked {
		if entry.allTaken() {
			entry = ScheduleEntry{FullyBooked: true}
		}
		days[date] = entry
	}

	return Schedule{Today: today, Days: days}
}

// DaySelectable reports whether the calendar may offer the day: it must not
// be in the past and must not be fully booked. Open and partially booked
// days are selectable.
func (s Schedule) DaySelectable(day json_types.CalendarDate) bool {
	if day.Before(s.Today) {
		return false
	}
	entry, exists := s.Days[day]
	if !exists {
		return true
	}
	return !entry.FullyBooked
}

// SlotSelectable reports whether a slot button may be offered: the slot's
// meridiem must match the active filter and the slot must not be taken.
func (s Schedule) SlotSelectable(day json_types.CalendarDate, slot SlotIndex, filter Meridiem) bool {
	if slot.Meridiem() != filter {
		return false
	}
	return s.SlotFree(day, slot)
}

// SlotFree is the submission-time re-check. It is best-effort only: the
// snapshot can go stale between the check and the store write.
func (s Schedule) SlotFree(day json_types.CalendarDate, slot SlotIndex) bool {
	entry, exists := s.Days[day]
	if !exists {
		return true
	}
	return !entry.SlotTaken(slot)
}
