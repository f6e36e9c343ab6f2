// Package holiday enumerates the holidays, fasts and minor days of a
// Hebrew year with their civil dates.
package holiday

import (
	"fmt"
	"time"

	"github.com/zapponejosh/luach-api/internal/calendar"
)

// observance limits a definition to one community.
type observance int

const (
	everywhere observance = iota
	israelOnly
	diasporaOnly
)

// postponement moves a day that would fall on the Sabbath.
type postponement int

const (
	stays postponement = iota
	toSunday
	toThursday
)

// adarOfPurim resolves to Adar II in leap years and Adar otherwise.
const adarOfPurim calendar.Month = -1

// definition anchors an event to a Hebrew month and day.
type definition struct {
	name       string
	typ        Type
	month      calendar.Month
	day        int
	observance observance
	move       postponement
	leapOnly   bool
}

// definitions is the fixed-date table, in Tishrei-first order. Rosh Chodesh
// and Chanukah are derived in code since their span depends on month lengths.
var definitions = []definition{
	{name: "Rosh Hashanah I", typ: YomTov, month: calendar.Tishrei, day: 1},
	{name: "Rosh Hashanah II", typ: YomTov, month: calendar.Tishrei, day: 2},
	{name: "Tzom Gedaliah", typ: Fast, month: calendar.Tishrei, day: 3, move: toSunday},
	{name: "Erev Yom Kippur", typ: Other, month: calendar.Tishrei, day: 9},
	{name: "Yom Kippur", typ: YomTov, month: calendar.Tishrei, day: 10},
	{name: "Erev Sukkot", typ: Other, month: calendar.Tishrei, day: 14},
	{name: "Sukkot I", typ: YomTov, month: calendar.Tishrei, day: 15},
	{name: "Sukkot II", typ: YomTov, month: calendar.Tishrei, day: 16, observance: diasporaOnly},
	{name: "Sukkot II (Chol HaMoed)", typ: Other, month: calendar.Tishrei, day: 16, observance: israelOnly},
	{name: "Sukkot III (Chol HaMoed)", typ: Other, month: calendar.Tishrei, day: 17},
	{name: "Sukkot IV (Chol HaMoed)", typ: Other, month: calendar.Tishrei, day: 18},
	{name: "Sukkot V (Chol HaMoed)", typ: Other, month: calendar.Tishrei, day: 19},
	{name: "Sukkot VI (Chol HaMoed)", typ: Other, month: calendar.Tishrei, day: 20},
	{name: "Hoshana Raba", typ: Other, month: calendar.Tishrei, day: 21},
	{name: "Shemini Atzeret", typ: YomTov, month: calendar.Tishrei, day: 22},
	{name: "Simchat Torah", typ: YomTov, month: calendar.Tishrei, day: 23, observance: diasporaOnly},
	{name: "Asara B'Tevet", typ: Fast, month: calendar.Tevet, day: 10},
	{name: "Tu BiShvat", typ: Other, month: calendar.Shvat, day: 15},
	{name: "Purim Katan", typ: Other, month: calendar.Adar1, day: 14, leapOnly: true},
	{name: "Ta'anit Esther", typ: Fast, month: adarOfPurim, day: 13, move: toThursday},
	{name: "Purim", typ: Other, month: adarOfPurim, day: 14},
	{name: "Shushan Purim", typ: Other, month: adarOfPurim, day: 15},
	{name: "Ta'anit Bechorot", typ: Fast, month: calendar.Nisan, day: 14, move: toThursday},
	{name: "Erev Pesach", typ: Other, month: calendar.Nisan, day: 14},
	{name: "Pesach I", typ: YomTov, month: calendar.Nisan, day: 15},
	{name: "Pesach II", typ: YomTov, month: calendar.Nisan, day: 16, observance: diasporaOnly},
	{name: "Pesach II (Chol HaMoed)", typ: Other, month: calendar.Nisan, day: 16, observance: israelOnly},
	{name: "Pesach III (Chol HaMoed)", typ: Other, month: calendar.Nisan, day: 17},
	{name: "Pesach IV (Chol HaMoed)", typ: Other, month: calendar.Nisan, day: 18},
	{name: "Pesach V (Chol HaMoed)", typ: Other, month: calendar.Nisan, day: 19},
	{name: "Pesach VI (Chol HaMoed)", typ: Other, month: calendar.Nisan, day: 20},
	{name: "Pesach VII", typ: YomTov, month: calendar.Nisan, day: 21},
	{name: "Pesach VIII", typ: YomTov, month: calendar.Nisan, day: 22, observance: diasporaOnly},
	{name: "Lag BaOmer", typ: Other, month: calendar.Iyyar, day: 18},
	{name: "Erev Shavuot", typ: Other, month: calendar.Sivan, day: 5},
	{name: "Shavuot I", typ: YomTov, month: calendar.Sivan, day: 6},
	{name: "Shavuot II", typ: YomTov, month: calendar.Sivan, day: 7, observance: diasporaOnly},
	{name: "Tzom Tammuz", typ: Fast, month: calendar.Tamuz, day: 17, move: toSunday},
	{name: "Tish'a B'Av", typ: Fast, month: calendar.Av, day: 9, move: toSunday},
	{name: "Tu B'Av", typ: Other, month: calendar.Av, day: 15},
	{name: "Erev Rosh Hashanah", typ: Other, month: calendar.Elul, day: 29},
}

// chanukahDays is the length of Chanukah, starting 25 Kislev.
const chanukahDays = 8

// Calendar enumerates events from the static table. The zero value is
// ready to use and safe for concurrent use.
type Calendar struct{}

// NewCalendar returns a Calendar.
func NewCalendar() *Calendar {
	return &Calendar{}
}

// ForYear returns every event of the Hebrew year, from Rosh Hashanah to
// Erev Rosh Hashanah, in Compare order.
func (c *Calendar) ForYear(year int, diaspora bool) ([]Event, error) {
	leap := calendar.IsLeapYear(year)

	var events []Event
	for _, def := range definitions {
		if def.leapOnly && !leap {
			continue
		}
		if (def.observance == israelOnly && diaspora) || (def.observance == diasporaOnly && !diaspora) {
			continue
		}
		month := def.month
		if month == adarOfPurim {
			month = calendar.Adar
			if leap {
				month = calendar.AdarII
			}
		}

		e, err := observed(def, calendar.HebrewDate{Year: year, Month: month, Day: def.day})
		if err != nil {
			return nil, fmt.Errorf("%s %d: %w", def.name, year, err)
		}
		events = append(events, e)
	}

	chanukah, err := chanukahEvents(year)
	if err != nil {
		return nil, err
	}
	events = append(events, chanukah...)

	roshChodesh, err := roshChodeshEvents(year)
	if err != nil {
		return nil, err
	}
	events = append(events, roshChodesh...)

	Sort(events)
	return events, nil
}

// On returns the events falling on date.
func (c *Calendar) On(date calendar.CivilDate, diaspora bool) ([]Event, error) {
	h, err := calendar.ToHebrew(date)
	if err != nil {
		return nil, err
	}
	all, err := c.ForYear(h.Year, diaspora)
	if err != nil {
		return nil, err
	}
	var out []Event
	for _, e := range all {
		if e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

// observed resolves the civil date of a definition, applying its
// postponement rule.
func observed(def definition, h calendar.HebrewDate) (Event, error) {
	d, err := calendar.ToCivil(h)
	if err != nil {
		return Event{}, err
	}
	if d.Weekday() == time.Saturday {
		switch def.move {
		case toSunday:
			d = d.AddDays(1)
		case toThursday:
			d = d.AddDays(-2)
		}
		if def.move != stays {
			if h, err = calendar.ToHebrew(d); err != nil {
				return Event{}, err
			}
		}
	}
	return Event{Name: def.name, Type: def.typ, Date: d, Hebrew: h}, nil
}

func chanukahEvents(year int) ([]Event, error) {
	first, err := calendar.ToCivil(calendar.HebrewDate{Year: year, Month: calendar.Kislev, Day: 25})
	if err != nil {
		return nil, fmt.Errorf("chanukah %d: %w", year, err)
	}
	out := make([]Event, 0, chanukahDays)
	for i := range chanukahDays {
		d := first.AddDays(i)
		h, err := calendar.ToHebrew(d)
		if err != nil {
			return nil, fmt.Errorf("chanukah %d: %w", year, err)
		}
		out = append(out, Event{
			Name:   fmt.Sprintf("Chanukah: %s Day", calendar.Ordinal(i+1)),
			Type:   Other,
			Date:   d,
			Hebrew: h,
		})
	}
	return out, nil
}

// roshChodeshEvents lists the new-month days of every month after Tishrei.
// A month following a 30-day month has two: the 30th of the old month and
// the 1st of the new.
func roshChodeshEvents(year int) ([]Event, error) {
	months := make([]calendar.Month, 0, 12)
	for m := calendar.Cheshvan; int(m) <= calendar.MonthsInYear(year); m++ {
		months = append(months, m)
	}
	for m := calendar.Nisan; m <= calendar.Elul; m++ {
		months = append(months, m)
	}

	var out []Event
	prev := calendar.Tishrei
	for _, m := range months {
		name := "Rosh Chodesh " + calendar.MonthName(year, m)
		days := []calendar.HebrewDate{{Year: year, Month: m, Day: 1}}
		if calendar.DaysInMonth(year, prev) == 30 {
			days = append([]calendar.HebrewDate{{Year: year, Month: prev, Day: 30}}, days...)
		}
		for _, h := range days {
			d, err := calendar.ToCivil(h)
			if err != nil {
				return nil, fmt.Errorf("%s %d: %w", name, year, err)
			}
			out = append(out, Event{Name: name, Type: Other, Date: d, Hebrew: h})
		}
		prev = m
	}
	return out, nil
}
