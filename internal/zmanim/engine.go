// Package zmanim derives the halakhic times of a week from solar events
// and community offsets.
package zmanim

import (
	"fmt"
	"time"

	"github.com/zapponejosh/luach-api/internal/calendar"
	"github.com/zapponejosh/luach-api/internal/geo"
	"github.com/zapponejosh/luach-api/internal/solar"
)

// Zmanim are one week's Sabbath times. Day times (sunrise through sunset)
// are those of the Saturday.
type Zmanim struct {
	Coordinate geo.Coordinate     `json:"coordinate"`
	Friday     calendar.CivilDate `json:"friday"`
	Saturday   calendar.CivilDate `json:"saturday"`
	Options    Options            `json:"options"`

	CandleLighting time.Time `json:"candle_lighting"`
	FridaySunset   time.Time `json:"friday_sunset"`
	Havdalah       time.Time `json:"havdalah"`

	Sunrise       time.Time     `json:"sunrise"`
	SofZmanShma   time.Time     `json:"sof_zman_shma"`
	SofZmanTfilla time.Time     `json:"sof_zman_tfilla"`
	Chatzot       time.Time     `json:"chatzot"`
	PlagHaMincha  time.Time     `json:"plag_hamincha"`
	Sunset        time.Time     `json:"sunset"`
	ShaahZmanit   time.Duration `json:"shaah_zmanit"`
}

// In returns a copy with every instant expressed in loc.
func (z Zmanim) In(loc *time.Location) Zmanim {
	z.CandleLighting = z.CandleLighting.In(loc)
	z.FridaySunset = z.FridaySunset.In(loc)
	z.Havdalah = z.Havdalah.In(loc)
	z.Sunrise = z.Sunrise.In(loc)
	z.SofZmanShma = z.SofZmanShma.In(loc)
	z.SofZmanTfilla = z.SofZmanTfilla.In(loc)
	z.Chatzot = z.Chatzot.In(loc)
	z.PlagHaMincha = z.PlagHaMincha.In(loc)
	z.Sunset = z.Sunset.In(loc)
	return z
}

// DayTimes are the proportional-hour times of a single day.
type DayTimes struct {
	Coordinate    geo.Coordinate     `json:"coordinate"`
	Date          calendar.CivilDate `json:"date"`
	Sunrise       time.Time          `json:"sunrise"`
	SofZmanShma   time.Time          `json:"sof_zman_shma"`
	SofZmanTfilla time.Time          `json:"sof_zman_tfilla"`
	Chatzot       time.Time          `json:"chatzot"`
	MinchaGedola  time.Time          `json:"mincha_gedola"`
	MinchaKetana  time.Time          `json:"mincha_ketana"`
	PlagHaMincha  time.Time          `json:"plag_hamincha"`
	Sunset        time.Time          `json:"sunset"`
	SolarNoon     time.Time          `json:"solar_noon"`
	ShaahZmanit   time.Duration      `json:"shaah_zmanit"`
}

// In returns a copy with every instant expressed in loc.
func (d DayTimes) In(loc *time.Location) DayTimes {
	d.Sunrise = d.Sunrise.In(loc)
	d.SofZmanShma = d.SofZmanShma.In(loc)
	d.SofZmanTfilla = d.SofZmanTfilla.In(loc)
	d.Chatzot = d.Chatzot.In(loc)
	d.MinchaGedola = d.MinchaGedola.In(loc)
	d.MinchaKetana = d.MinchaKetana.In(loc)
	d.PlagHaMincha = d.PlagHaMincha.In(loc)
	d.Sunset = d.Sunset.In(loc)
	d.SolarNoon = d.SolarNoon.In(loc)
	return d
}

// Engine computes zmanim. It is safe for concurrent use; the only shared
// state is the optional memo, which never changes results.
type Engine struct {
	calc  *solar.Calculator
	cache *memo
}

// NewEngine returns an engine over calc that memoizes up to cacheSize
// weekly results. Pass 0 to disable memoization.
func NewEngine(calc *solar.Calculator, cacheSize int) *Engine {
	if calc == nil {
		calc = solar.Default()
	}
	return &Engine{calc: calc, cache: newMemo(cacheSize)}
}

// WeekOf returns the Friday and Saturday of the Sunday-to-Saturday week
// containing date.
func WeekOf(date calendar.CivilDate) (friday, saturday calendar.CivilDate) {
	saturday = date.OnOrAfter(time.Saturday)
	return saturday.AddDays(-1), saturday
}

// Weekly computes the Sabbath times for the week containing weekDate.
// If either day has no sunrise or sunset the call fails as a whole.
func (e *Engine) Weekly(coord geo.Coordinate, weekDate calendar.CivilDate, opts Options) (Zmanim, error) {
	if err := opts.Validate(); err != nil {
		return Zmanim{}, err
	}
	if err := coord.Validate(); err != nil {
		return Zmanim{}, err
	}

	friday, saturday := WeekOf(weekDate)
	key := cacheKey{lat: coord.Latitude, lon: coord.Longitude, friday: friday, opts: opts}
	if z, ok := e.cache.get(key); ok {
		return z, nil
	}

	fri, err := e.calc.Times(coord, friday)
	if err != nil {
		return Zmanim{}, fmt.Errorf("friday %s: %w", friday, err)
	}
	sat, err := e.calc.Times(coord, saturday)
	if err != nil {
		return Zmanim{}, fmt.Errorf("saturday %s: %w", saturday, err)
	}

	hour := proportionalHour(sat)
	z := Zmanim{
		Coordinate:     coord,
		Friday:         friday,
		Saturday:       saturday,
		Options:        opts,
		CandleLighting: fri.Sunset.Add(-minutes(opts.CandleLightingMinutes)),
		FridaySunset:   fri.Sunset,
		Havdalah:       sat.Sunset.Add(minutes(opts.HavdalahMinutes)),
		Sunrise:        sat.Sunrise,
		SofZmanShma:    sat.Sunrise.Add(3 * hour),
		SofZmanTfilla:  sat.Sunrise.Add(4 * hour),
		Chatzot:        midpoint(sat.Sunrise, sat.Sunset),
		PlagHaMincha:   sat.Sunset.Add(-hour * 5 / 4),
		Sunset:         sat.Sunset,
		ShaahZmanit:    hour,
	}

	e.cache.put(key, z)
	return z, nil
}

// Daily computes the proportional-hour times of one date.
func (e *Engine) Daily(coord geo.Coordinate, date calendar.CivilDate) (DayTimes, error) {
	st, err := e.calc.Times(coord, date)
	if err != nil {
		return DayTimes{}, err
	}

	hour := proportionalHour(st)
	return DayTimes{
		Coordinate:    coord,
		Date:          date,
		Sunrise:       st.Sunrise,
		SofZmanShma:   st.Sunrise.Add(3 * hour),
		SofZmanTfilla: st.Sunrise.Add(4 * hour),
		Chatzot:       midpoint(st.Sunrise, st.Sunset),
		MinchaGedola:  st.Sunrise.Add(hour * 13 / 2),
		MinchaKetana:  st.Sunrise.Add(hour * 19 / 2),
		PlagHaMincha:  st.Sunset.Add(-hour * 5 / 4),
		Sunset:        st.Sunset,
		SolarNoon:     st.SolarNoon,
		ShaahZmanit:   hour,
	}, nil
}

// CacheLen reports how many weekly results are memoized.
func (e *Engine) CacheLen() int {
	return e.cache.len()
}

// proportionalHour is one twelfth of the daylight interval.
func proportionalHour(st solar.Times) time.Duration {
	return st.DayLength() / 12
}

func midpoint(a, b time.Time) time.Time {
	return a.Add(b.Sub(a) / 2)
}

func minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}
