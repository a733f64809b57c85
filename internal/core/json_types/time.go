package json_types

import (
	"encoding/json"
	"fmt"
	"time"
)

// ClockTime is a wall-clock time of day, rendered the way the booking UI
// shows it ("9:00 am", "2:00 pm").
type ClockTime struct {
	Time time.Time
}

const clockLayout = "3:04 pm"

func (t *ClockTime) UnmarshalJSON(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("failed to parse clock time: %q", string(data))
	}
	// Strip the quotes around the string
	str := string(data[1 : len(data)-1])
	parsedTime, err := time.Parse(clockLayout, str)
	if err != nil {
		return fmt.Errorf("failed to parse clock time: %w", err)
	}
	*t = ClockTime{Time: parsedTime}
	return nil
}

func (t ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t ClockTime) String() string {
	return t.Time.Format(clockLayout)
}
