package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// WireDateLayout is the canonical calendar-date wire format shared with the
// object store: year, then day, then month. The store has always recorded
// dates in this order, so both sides must keep it exactly.
const WireDateLayout = "2006-02-01"

// CalendarDate is a calendar day with no time component. It is comparable and
// safe to use as a map key.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return CalendarDate{Year: year, Month: month, Day: day}
}

// CalendarDateOf truncates t to its calendar day in t's location.
func CalendarDateOf(t time.Time) CalendarDate {
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseCalendarDate parses the wire format, validating the day against the
// month (e.g. "2024-30-02" is rejected).
func ParseCalendarDate(str string) (CalendarDate, error) {
	parsed, err := time.ParseInLocation(WireDateLayout, str, time.UTC)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("failed to parse calendar date %q: %w", str, err)
	}
	return CalendarDateOf(parsed), nil
}

// String renders the wire format.
func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Day, d.Month)
}

// Time returns midnight of the day in the given location.
func (d CalendarDate) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d CalendarDate) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

func (d CalendarDate) AddDays(days int) CalendarDate {
	return CalendarDateOf(d.Time(time.UTC).AddDate(0, 0, days))
}

// Before compares day-level only; time of day never enters the comparison.
func (d CalendarDate) Before(other CalendarDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

func (d *CalendarDate) UnmarshalJSON(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("failed to parse calendar date: %q", string(data))
	}
	// Strip the quotes around the string
	str := string(data[1 : len(data)-1])

	parsed, err := ParseCalendarDate(str)
	if err != nil {
		return err
	}

	*d = parsed
	return nil
}

func (d CalendarDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MarshalText/UnmarshalText let CalendarDate serve as a JSON map key.
func (d CalendarDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *CalendarDate) UnmarshalText(text []byte) error {
	parsed, err := ParseCalendarDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
