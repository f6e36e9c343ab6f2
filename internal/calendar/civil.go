// Package calendar converts between civil (proleptic Gregorian) dates and
// the Hebrew calendar, and classifies Hebrew years.
package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// DateLayout is the wire format for civil dates.
const DateLayout = "2006-01-02"

// fixedUnixEpoch is the fixed day number of 1970-01-01, where day 1 is
// Monday 0001-01-01 of the proleptic Gregorian calendar.
const fixedUnixEpoch = 719163

// Supported civil range.
var (
	MinCivilDate = CivilDate{Year: 1, Month: time.January, Day: 1}
	MaxCivilDate = CivilDate{Year: 9999, Month: time.December, Day: 31}
)

// ErrOutOfRange is returned for dates outside the supported conversion bounds.
var ErrOutOfRange = errors.New("date out of supported range")

// CivilDate is a proleptic Gregorian calendar day without a time component.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCivilDate normalizes year, month and day the way time.Date does,
// so 2024-02-30 becomes 2024-03-01.
func NewCivilDate(year int, month time.Month, day int) CivilDate {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// ParseDateString parses a YYYY-MM-DD date.
func ParseDateString(s string) (CivilDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return CivilDate{}, err
	}
	return DateOf(t), nil
}

// Time returns midnight UTC at the start of the day.
func (d CivilDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// In returns midnight at the start of the day in loc.
func (d CivilDate) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// Fixed returns the day number counting 0001-01-01 as day 1.
func (d CivilDate) Fixed() int {
	return int(d.Time().Unix()/86400) + fixedUnixEpoch
}

// FromFixed is the inverse of CivilDate.Fixed.
func FromFixed(fixed int) CivilDate {
	return DateOf(time.Unix(int64(fixed-fixedUnixEpoch)*86400, 0).UTC())
}

// Weekday returns the day of the week.
func (d CivilDate) Weekday() time.Weekday {
	return time.Weekday(mod(d.Fixed(), 7))
}

// AddDays returns the date n days later (earlier for negative n).
func (d CivilDate) AddDays(n int) CivilDate {
	return NewCivilDate(d.Year, d.Month, d.Day+n)
}

// DaysUntil returns the number of days from d to other.
func (d CivilDate) DaysUntil(other CivilDate) int {
	return other.Fixed() - d.Fixed()
}

// Before reports whether d is strictly earlier than other.
func (d CivilDate) Before(other CivilDate) bool { return d.Compare(other) < 0 }

// After reports whether d is strictly later than other.
func (d CivilDate) After(other CivilDate) bool { return d.Compare(other) > 0 }

// Compare returns -1, 0 or +1.
func (d CivilDate) Compare(other CivilDate) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// IsZero reports whether d is the zero value.
func (d CivilDate) IsZero() bool {
	return d == CivilDate{}
}

// InRange reports whether d lies in the supported civil range.
func (d CivilDate) InRange() bool {
	return !d.Before(MinCivilDate) && !d.After(MaxCivilDate)
}

// String formats the date as YYYY-MM-DD.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string.
func (d CivilDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string.
func (d *CivilDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDateString(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// OnOrAfter returns the first date on or after d that falls on wd.
func (d CivilDate) OnOrAfter(wd time.Weekday) CivilDate {
	return d.AddDays(mod(int(wd)-int(d.Weekday()), 7))
}

// OnOrBefore returns the last date on or before d that falls on wd.
func (d CivilDate) OnOrBefore(wd time.Weekday) CivilDate {
	return d.AddDays(-mod(int(d.Weekday())-int(wd), 7))
}

// DayName returns the English weekday name (Sunday, Monday, ...).
func DayName(wd time.Weekday) string {
	return wd.String()
}

// Ordinal returns the ordinal form of a number (1st, 2nd, 3rd, 4th, 11th, 21st, ...).
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
