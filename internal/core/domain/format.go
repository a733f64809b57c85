package domain

import (
	"fmt"

	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
)

// DisplayRecord is a booking rendered to plain strings for the pre-submit
// review screen and the admin table. It keeps the store's identifier so row
// actions never re-parse displayed text.
type DisplayRecord struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Date  string `json:"date"`
	Time  string `json:"time"`
}

func ordinal(day int) string {
	suffix := "th"
	if day%100 < 11 || day%100 > 13 {
		switch day % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", day, suffix)
}

// longDate renders "Sunday June 16th, 2024" (no comma after the weekday,
// matching the notification copy).
func longDate(d json_types.CalendarDate) string {
	return fmt.Sprintf("%s %s %s, %d", d.Weekday(), d.Month, ordinal(d.Day), d.Year)
}

// displayDate renders "Sunday, June 16th, 2024" for review screens.
func displayDate(d json_types.CalendarDate) string {
	return fmt.Sprintf("%s, %s %s, %d", d.Weekday(), d.Month, ordinal(d.Day), d.Year)
}

// ConfirmationSentence progressively reveals clauses for the fields set so
// far: with only a day chosen it reads "Scheduling a 1 hour appointment on
// Thursday, June 1st"; once a slot is chosen "at 2:00 pm" is appended.
// Unset fields never render a clause.
func ConfirmationSentence(draft *DraftBooking) string {
	sentence := "Scheduling a 1 hour appointment"
	if draft == nil || draft.Date == nil {
		return sentence
	}
	sentence += fmt.Sprintf(" on %s, %s %s",
		draft.Date.Weekday(), draft.Date.Month, ordinal(draft.Date.Day))
	if draft.Slot != nil {
		sentence += fmt.Sprintf(" at %s", draft.Slot.StartClock())
	}
	return sentence
}

// SMSBody is the outbound confirmation text.
func SMSBody(record BookingRecord) string {
	return fmt.Sprintf("%s, this message is to confirm your appointment at %s on %s.",
		record.Name, record.Slot.StartClock(), longDate(record.Date))
}

// ConfirmationDetails flattens a record for display.
func ConfirmationDetails(record BookingRecord) DisplayRecord {
	return DisplayRecord{
		ID:    record.ID,
		Name:  record.Name,
		Phone: FormatPhone(record.Phone),
		Email: record.Email,
		Date:  displayDate(record.Date),
		Time:  record.Slot.Label(),
	}
}
