package parasha

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zapponejosh/luach-api/internal/calendar"
)

// ErrNoRegularParasha marks a Sabbath whose reading is a festival reading.
// It is a defined outcome, not a lookup failure.
var ErrNoRegularParasha = errors.New("no regular parasha this week")

// FestivalError names the festival that displaces the weekly portion.
type FestivalError struct {
	Date     calendar.CivilDate
	Festival string
}

func (e *FestivalError) Error() string {
	return fmt.Sprintf("%s: %s falls on %s", ErrNoRegularParasha, e.Festival, e.Date)
}

// Is lets errors.Is match ErrNoRegularParasha.
func (e *FestivalError) Is(target error) bool {
	return target == ErrNoRegularParasha
}

// Reading is what is read on one Sabbath: one or two portions, or a
// festival reading when Portions is empty.
type Reading struct {
	Date     calendar.CivilDate  `json:"date"`
	Hebrew   calendar.HebrewDate `json:"hebrew_date"`
	Portions []Portion           `json:"portions,omitempty"`
	Festival string              `json:"festival,omitempty"`
}

// Regular reports whether the Sabbath has a weekly portion.
func (r Reading) Regular() bool {
	return len(r.Portions) > 0
}

// Name joins combined portions with a hyphen ("Vayakhel-Pekudei"), or
// returns the festival name.
func (r Reading) Name() string {
	if !r.Regular() {
		return r.Festival
	}
	names := make([]string, len(r.Portions))
	for i, p := range r.Portions {
		names[i] = p.Name
	}
	return strings.Join(names, "-")
}

// =============================================================================
// Year types
// =============================================================================

// yearShape selects a schedule: the weekday of Rosh Hashanah and the
// length of the year.
type yearShape struct {
	roshHashanah time.Weekday
	length       int
}

// schedule lists the first index of each pair read together. Nitzavim and
// Vayeilech are joined when the following Rosh Hashanah falls on Thursday
// or Saturday, which the shape alone determines.
type schedule struct {
	israel       []int
	diaspora     []int
	joinNitzavim bool
}

var (
	allFive = []int{vayakhel, tazria, achreiMot, behar, matot}
	allSix  = []int{vayakhel, tazria, achreiMot, behar, chukat, matot}
)

// yearSchedules covers the fourteen year types. Diaspora schedules differ
// when the eighth day of Pesach or the second day of Shavuot falls on a
// Sabbath, pushing the diaspora one reading behind until a pair catches up.
var yearSchedules = map[yearShape]schedule{
	// Common years.
	{time.Monday, 353}:   {israel: allFive, diaspora: allFive, joinNitzavim: true},
	{time.Monday, 355}:   {israel: allFive, diaspora: allSix, joinNitzavim: true},
	{time.Tuesday, 354}:  {israel: allFive, diaspora: allSix, joinNitzavim: true},
	{time.Thursday, 354}: {israel: []int{vayakhel, tazria, achreiMot, matot}, diaspora: allFive},
	{time.Thursday, 355}: {israel: []int{tazria, achreiMot, behar, matot}, diaspora: []int{tazria, achreiMot, behar, matot}},
	{time.Saturday, 353}: {israel: allFive, diaspora: allFive},
	{time.Saturday, 355}: {israel: allFive, diaspora: allFive, joinNitzavim: true},

	// Leap years.
	{time.Monday, 383}:   {israel: []int{matot}, diaspora: []int{chukat, matot}, joinNitzavim: true},
	{time.Monday, 385}:   {israel: nil, diaspora: []int{matot}},
	{time.Tuesday, 384}:  {israel: nil, diaspora: []int{matot}},
	{time.Thursday, 383}: {israel: nil, diaspora: nil},
	{time.Thursday, 385}: {israel: nil, diaspora: nil, joinNitzavim: true},
	{time.Saturday, 383}: {israel: []int{matot}, diaspora: []int{matot}, joinNitzavim: true},
	{time.Saturday, 385}: {israel: []int{matot}, diaspora: []int{chukat, matot}, joinNitzavim: true},
}

// units expands a schedule into the Sabbath readings from Bereshit through
// Nitzavim (or Nitzavim-Vayeilech).
func (s schedule) units(diaspora bool) [][]Portion {
	pairs := s.israel
	if diaspora {
		pairs = s.diaspora
	}
	joined := make(map[int]bool, len(pairs)+1)
	for _, p := range pairs {
		joined[p] = true
	}
	if s.joinNitzavim {
		joined[nitzavim] = true
	}

	var out [][]Portion
	for i := bereshit; i <= nitzavim; {
		if joined[i] {
			out = append(out, []Portion{portions[i], portions[i+1]})
			i += 2
			continue
		}
		out = append(out, []Portion{portions[i]})
		i++
	}
	return out
}

// =============================================================================
// Scheduler
// =============================================================================

// Scheduler resolves readings from the static tables. The zero value is
// ready to use and safe for concurrent use.
type Scheduler struct{}

// NewScheduler returns a Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// For returns the reading of the Sabbath on or after date. On festival
// Sabbaths the returned Reading carries the festival name and the error is
// a *FestivalError matching ErrNoRegularParasha.
func (s *Scheduler) For(date calendar.CivilDate, diaspora bool) (Reading, error) {
	sabbath := date.OnOrAfter(time.Saturday)
	h, err := calendar.ToHebrew(sabbath)
	if err != nil {
		return Reading{}, err
	}

	readings, err := s.Year(h.Year, diaspora)
	if err != nil {
		return Reading{}, err
	}
	for _, r := range readings {
		if r.Date != sabbath {
			continue
		}
		if !r.Regular() {
			return r, &FestivalError{Date: r.Date, Festival: r.Festival}
		}
		return r, nil
	}
	return Reading{}, fmt.Errorf("no reading scheduled for %s", sabbath)
}

// ForHebrew is For with a Hebrew date.
func (s *Scheduler) ForHebrew(h calendar.HebrewDate, diaspora bool) (Reading, error) {
	d, err := calendar.ToCivil(h)
	if err != nil {
		return Reading{}, err
	}
	return s.For(d, diaspora)
}

// Year lists every Sabbath of the Hebrew year with its reading.
func (s *Scheduler) Year(year int, diaspora bool) ([]Reading, error) {
	start, err := calendar.ToCivil(calendar.HebrewDate{Year: year, Month: calendar.Tishrei, Day: 1})
	if err != nil {
		return nil, err
	}
	end, err := calendar.ToCivil(calendar.HebrewDate{Year: year + 1, Month: calendar.Tishrei, Day: 1})
	if err != nil {
		return nil, err
	}

	shape := yearShape{roshHashanah: start.Weekday(), length: calendar.DaysInYear(year)}
	sched, ok := yearSchedules[shape]
	if !ok {
		return nil, fmt.Errorf("no schedule for year %d (%v, %d days)", year, shape.roshHashanah, shape.length)
	}
	units := sched.units(diaspora)

	// Shabbat Bereshit is the first Sabbath after Simchat Torah.
	bereshitDay := start.AddDays(22).OnOrAfter(time.Saturday)

	var (
		out     []Reading
		tishrei []int
		next    int
	)
	for d := start.OnOrAfter(time.Saturday); d.Before(end); d = d.AddDays(7) {
		h, err := calendar.ToHebrew(d)
		if err != nil {
			return nil, err
		}
		r := Reading{Date: d, Hebrew: h}

		if fest := festivalOn(h, diaspora); fest != "" {
			r.Festival = fest
			out = append(out, r)
			continue
		}

		if d.Before(bereshitDay) {
			tishrei = append(tishrei, len(out))
			out = append(out, r)
			continue
		}

		if next >= len(units) {
			return nil, fmt.Errorf("year %d: more sabbaths than readings", year)
		}
		r.Portions = units[next]
		next++
		out = append(out, r)
	}
	if next != len(units) {
		return nil, fmt.Errorf("year %d: %d readings left unassigned", year, len(units)-next)
	}

	// Between Rosh Hashanah and Bereshit the cycle finishes with Vayeilech
	// (when it was not joined to Nitzavim) and Ha'Azinu.
	tail := []int{vayeilech, haazinu}
	if len(tishrei) > len(tail) {
		return nil, fmt.Errorf("year %d: %d free sabbaths in Tishrei", year, len(tishrei))
	}
	tail = tail[len(tail)-len(tishrei):]
	for i, idx := range tishrei {
		out[idx].Portions = []Portion{portions[tail[i]]}
	}

	return out, nil
}

// festivalOn names the festival whose reading replaces the weekly portion
// on a Sabbath falling on h, or returns "".
func festivalOn(h calendar.HebrewDate, diaspora bool) string {
	switch h.Month {
	case calendar.Tishrei:
		switch {
		case h.Day <= 2:
			return "Rosh Hashanah"
		case h.Day == 10:
			return "Yom Kippur"
		case h.Day >= 15 && h.Day <= 21:
			return "Sukkot"
		case h.Day == 22:
			return "Shemini Atzeret"
		case h.Day == 23 && diaspora:
			return "Simchat Torah"
		}
	case calendar.Nisan:
		last := 21
		if diaspora {
			last = 22
		}
		if h.Day >= 15 && h.Day <= last {
			return "Pesach"
		}
	case calendar.Sivan:
		if h.Day == 6 || (h.Day == 7 && diaspora) {
			return "Shavuot"
		}
	}
	return ""
}
