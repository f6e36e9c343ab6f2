package holiday

import (
	"cmp"
	"slices"
	"time"

	"github.com/zapponejosh/luach-api/internal/calendar"
)

// Type classifies an event.
type Type string

const (
	YomTov Type = "yomTov"
	Fast   Type = "fast"
	Other  Type = "other"
)

// rank orders types that share a date.
func (t Type) rank() int {
	switch t {
	case YomTov:
		return 0
	case Fast:
		return 1
	}
	return 2
}

// Event is one entry of the Jewish calendar. Time is set only for events
// tied to a clock time, such as candle lighting.
type Event struct {
	Name   string              `json:"name"`
	Type   Type                `json:"type"`
	Date   calendar.CivilDate  `json:"date"`
	Hebrew calendar.HebrewDate `json:"hebrew_date"`
	Time   *time.Time          `json:"time,omitempty"`
}

// Compare orders events by date, then type, then clock time, then name.
func Compare(a, b Event) int {
	if c := a.Date.Compare(b.Date); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Type.rank(), b.Type.rank()); c != 0 {
		return c
	}
	switch {
	case a.Time != nil && b.Time != nil:
		if c := a.Time.Compare(*b.Time); c != 0 {
			return c
		}
	case a.Time != nil:
		return 1
	case b.Time != nil:
		return -1
	}
	return cmp.Compare(a.Name, b.Name)
}

// Sort orders events in place with Compare.
func Sort(events []Event) {
	slices.SortStableFunc(events, Compare)
}
