// Package events merges holidays, weekly portions and Sabbath times into a
// single date-ordered stream.
package events

import (
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/zapponejosh/luach-api/internal/calendar"
	"github.com/zapponejosh/luach-api/internal/geo"
	"github.com/zapponejosh/luach-api/internal/holiday"
	"github.com/zapponejosh/luach-api/internal/parasha"
	"github.com/zapponejosh/luach-api/internal/solar"
	"github.com/zapponejosh/luach-api/internal/zmanim"
)

// MaxHorizonDays bounds a single query.
const MaxHorizonDays = 400

// Names of the generated Sabbath events.
const (
	CandleLighting = "Candle lighting"
	Havdalah       = "Havdalah"
	parashaPrefix  = "Parashat "
)

// ErrInvalidHorizon is returned for a negative or oversized horizon.
var ErrInvalidHorizon = errors.New("invalid horizon")

// Location enables candle lighting and havdalah events.
type Location struct {
	Coordinate geo.Coordinate
	TimeZone   *time.Location
	Options    zmanim.Options
}

// Config selects the observance and, optionally, a location.
type Config struct {
	Diaspora bool
	Location *Location
}

// Aggregator produces upcoming events. It holds no per-query state, so the
// same query always yields the same sequence.
type Aggregator struct {
	holidays *holiday.Calendar
	readings *parasha.Scheduler
	engine   *zmanim.Engine
	cfg      Config
}

// NewAggregator validates cfg. engine may be nil when cfg has no location.
func NewAggregator(engine *zmanim.Engine, cfg Config) (*Aggregator, error) {
	if cfg.Location != nil {
		loc := *cfg.Location
		if err := loc.Coordinate.Validate(); err != nil {
			return nil, err
		}
		if err := loc.Options.Validate(); err != nil {
			return nil, err
		}
		if loc.TimeZone == nil {
			loc.TimeZone = time.UTC
		}
		cfg.Location = &loc
		if engine == nil {
			engine = zmanim.NewEngine(nil, 0)
		}
	}
	return &Aggregator{
		holidays: holiday.NewCalendar(),
		readings: parasha.NewScheduler(),
		engine:   engine,
		cfg:      cfg,
	}, nil
}

// Upcoming returns the events on or after from and before from+horizonDays,
// in holiday.Compare order. The sequence is computed one Hebrew year at a
// time as it is consumed.
func (a *Aggregator) Upcoming(from calendar.CivilDate, horizonDays int) (iter.Seq[holiday.Event], error) {
	if horizonDays < 0 || horizonDays > MaxHorizonDays {
		return nil, fmt.Errorf("%w: %d days, want 0 to %d", ErrInvalidHorizon, horizonDays, MaxHorizonDays)
	}
	end := from.AddDays(horizonDays)

	first, err := calendar.ToHebrew(from)
	if err != nil {
		return nil, err
	}
	last, err := calendar.ToHebrew(end)
	if err != nil {
		return nil, err
	}
	// Every year touched must be complete inside the civil range.
	if _, err := calendar.ToCivil(calendar.HebrewDate{Year: first.Year, Month: calendar.Tishrei, Day: 1}); err != nil {
		return nil, err
	}
	if _, err := calendar.ToCivil(calendar.HebrewDate{Year: last.Year + 1, Month: calendar.Tishrei, Day: 1}); err != nil {
		return nil, err
	}

	return func(yield func(holiday.Event) bool) {
		for year := first.Year; year <= last.Year; year++ {
			events, err := a.year(year, from, end)
			if err != nil {
				// Unreachable after the range checks above.
				return
			}
			for _, e := range events {
				if !yield(e) {
					return
				}
			}
		}
	}, nil
}

// year collects the events of one Hebrew year that fall in [from, end).
func (a *Aggregator) year(year int, from, end calendar.CivilDate) ([]holiday.Event, error) {
	start := calendar.RoshHashanah(year)
	stop := calendar.RoshHashanah(year + 1)
	if start.Before(from) {
		start = from
	}
	if end.Before(stop) {
		stop = end
	}
	if !start.Before(stop) {
		return nil, nil
	}
	inWindow := func(d calendar.CivilDate) bool {
		return !d.Before(start) && d.Before(stop)
	}

	all, err := a.holidays.ForYear(year, a.cfg.Diaspora)
	if err != nil {
		return nil, err
	}
	var out []holiday.Event
	for _, e := range all {
		if inWindow(e.Date) {
			out = append(out, e)
		}
	}

	sabbaths, err := a.sabbaths(year, start, stop)
	if err != nil {
		return nil, err
	}
	out = append(out, sabbaths...)

	holiday.Sort(out)
	return out, nil
}

// sabbaths generates the weekly portion and, with a location, the candle
// lighting and havdalah events of the Sabbaths touching [start, stop). The
// Saturday on stop is included so its Friday is not lost at the boundary.
func (a *Aggregator) sabbaths(year int, start, stop calendar.CivilDate) ([]holiday.Event, error) {
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:      rrule.WEEKLY,
		Byweekday: []rrule.Weekday{rrule.SA},
		Dtstart:   start.Time(),
		Until:     stop.Time(),
	})
	if err != nil {
		return nil, fmt.Errorf("sabbath rule: %w", err)
	}

	readings, err := a.readings.Year(year, a.cfg.Diaspora)
	if err != nil {
		return nil, err
	}
	byDate := make(map[calendar.CivilDate]parasha.Reading, len(readings))
	for _, r := range readings {
		byDate[r.Date] = r
	}

	inWindow := func(d calendar.CivilDate) bool {
		return !d.Before(start) && d.Before(stop)
	}

	var out []holiday.Event
	for _, t := range rule.All() {
		saturday := calendar.DateOf(t)
		friday := saturday.AddDays(-1)

		if inWindow(saturday) {
			if r, ok := byDate[saturday]; ok && r.Regular() {
				out = append(out, holiday.Event{
					Name:   parashaPrefix + r.Name(),
					Type:   holiday.Other,
					Date:   saturday,
					Hebrew: r.Hebrew,
				})
			}
		}

		if a.cfg.Location == nil || !(inWindow(friday) || inWindow(saturday)) {
			continue
		}
		loc := a.cfg.Location
		z, err := a.engine.Weekly(loc.Coordinate, saturday, loc.Options)
		if errors.Is(err, solar.ErrPolarUnreachable) {
			continue
		}
		if err != nil {
			return nil, err
		}

		if inWindow(friday) {
			e, err := timed(CandleLighting, friday, z.CandleLighting.In(loc.TimeZone))
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		if inWindow(saturday) {
			e, err := timed(Havdalah, saturday, z.Havdalah.In(loc.TimeZone))
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
	}
	return out, nil
}

func timed(name string, date calendar.CivilDate, at time.Time) (holiday.Event, error) {
	h, err := calendar.ToHebrew(date)
	if err != nil {
		return holiday.Event{}, err
	}
	return holiday.Event{Name: name, Type: holiday.Other, Date: date, Hebrew: h, Time: &at}, nil
}
