package holiday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/luach-api/internal/calendar"
)

func civil(t *testing.T, s string) calendar.CivilDate {
	t.Helper()
	d, err := calendar.ParseDateString(s)
	require.NoError(t, err)
	return d
}

func find(events []Event, name string) (Event, bool) {
	for _, e := range events {
		if e.Name == name {
			return e, true
		}
	}
	return Event{}, false
}

func TestForYear_KnownDates(t *testing.T) {
	tests := []struct {
		year int
		name string
		date string
		typ  Type
	}{
		{5785, "Rosh Hashanah I", "2024-10-03", YomTov},
		{5785, "Tzom Gedaliah", "2024-10-06", Fast}, // 3 Tishrei is a Sabbath
		{5785, "Yom Kippur", "2024-10-12", YomTov}, // Sabbath, never moved
		{5785, "Chanukah: 1st Day", "2024-12-26", Other},
		{5785, "Chanukah: 8th Day", "2025-01-02", Other},
		{5785, "Ta'anit Esther", "2025-03-13", Fast},
		{5785, "Ta'anit Bechorot", "2025-04-10", Fast}, // 14 Nisan is a Sabbath
		{5785, "Erev Pesach", "2025-04-12", Other},
		{5785, "Pesach I", "2025-04-13", YomTov},
		{5785, "Tzom Tammuz", "2025-07-13", Fast},
		{5785, "Tish'a B'Av", "2025-08-03", Fast},
		{5785, "Erev Rosh Hashanah", "2025-09-22", Other},
		{5782, "Tzom Tammuz", "2022-07-17", Fast},
		{5782, "Tish'a B'Av", "2022-08-07", Fast},
		{5784, "Purim Katan", "2024-02-23", Other},
		{5784, "Ta'anit Esther", "2024-03-21", Fast}, // 13 Adar II is a Sabbath
		{5784, "Purim", "2024-03-24", Other},
	}

	c := NewCalendar()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := c.ForYear(tt.year, true)
			require.NoError(t, err)

			e, ok := find(events, tt.name)
			require.True(t, ok, "%s missing from %d", tt.name, tt.year)
			assert.Equal(t, civil(t, tt.date), e.Date)
			assert.Equal(t, tt.typ, e.Type)
			assert.Nil(t, e.Time)

			h, err := calendar.ToHebrew(e.Date)
			require.NoError(t, err)
			assert.Equal(t, h, e.Hebrew, "hebrew date follows the observed day")
		})
	}
}

func TestForYear_PostponedFastsAvoidSabbath(t *testing.T) {
	c := NewCalendar()
	for year := 5700; year < 5900; year++ {
		events, err := c.ForYear(year, false)
		require.NoError(t, err)
		for _, e := range events {
			if e.Type == Fast && e.Name != "Yom Kippur" {
				assert.NotEqual(t, time.Saturday, e.Date.Weekday(), "%d: %s on %s", year, e.Name, e.Date)
			}
		}
	}
}

func TestForYear_DiasporaSecondDays(t *testing.T) {
	c := NewCalendar()

	israel, err := c.ForYear(5785, false)
	require.NoError(t, err)
	diaspora, err := c.ForYear(5785, true)
	require.NoError(t, err)

	for _, name := range []string{"Sukkot II", "Simchat Torah", "Pesach II", "Pesach VIII", "Shavuot II"} {
		_, ok := find(israel, name)
		assert.False(t, ok, "israel should not observe %s", name)
		_, ok = find(diaspora, name)
		assert.True(t, ok, "diaspora should observe %s", name)
	}

	_, ok := find(israel, "Pesach II (Chol HaMoed)")
	assert.True(t, ok)
	_, ok = find(diaspora, "Pesach II (Chol HaMoed)")
	assert.False(t, ok)
}

func TestForYear_LeapOnlyDays(t *testing.T) {
	c := NewCalendar()

	events, err := c.ForYear(5785, true)
	require.NoError(t, err)
	_, ok := find(events, "Purim Katan")
	assert.False(t, ok)

	events, err = c.ForYear(5784, true)
	require.NoError(t, err)
	e, ok := find(events, "Purim")
	require.True(t, ok)
	assert.Equal(t, calendar.AdarII, e.Hebrew.Month)
}

func TestForYear_RoshChodesh(t *testing.T) {
	events, err := NewCalendar().ForYear(5785, true)
	require.NoError(t, err)

	var cheshvan []calendar.CivilDate
	for _, e := range events {
		if e.Name == "Rosh Chodesh Cheshvan" {
			cheshvan = append(cheshvan, e.Date)
		}
	}
	assert.Equal(t, []calendar.CivilDate{civil(t, "2024-11-01"), civil(t, "2024-11-02")}, cheshvan)

	for _, e := range events {
		if e.Name == "Rosh Chodesh Tishrei" {
			t.Fatalf("rosh hashanah listed as rosh chodesh on %s", e.Date)
		}
	}
}

func TestForYear_Ordering(t *testing.T) {
	events, err := NewCalendar().ForYear(5785, true)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	for i := 1; i < len(events); i++ {
		assert.LessOrEqual(t, Compare(events[i-1], events[i]), 0, "%v before %v", events[i-1], events[i])
	}

	// 14 Nisan 5785 is a Sabbath: only Erev Pesach remains on it.
	var onErev []string
	for _, e := range events {
		if e.Date == civil(t, "2025-04-12") {
			onErev = append(onErev, e.Name)
		}
	}
	assert.Equal(t, []string{"Erev Pesach"}, onErev)
}

func TestForYear_ConsecutiveYearsConcatenate(t *testing.T) {
	c := NewCalendar()
	for _, diaspora := range []bool{false, true} {
		var all []Event
		for year := 5780; year <= 5800; year++ {
			events, err := c.ForYear(year, diaspora)
			require.NoError(t, err)

			require.Equal(t, calendar.RoshHashanah(year), events[0].Date, "%d starts with rosh hashanah", year)
			last := events[len(events)-1]
			require.Equal(t, calendar.RoshHashanah(year+1).AddDays(-1), last.Date, "%d ends with erev rosh hashanah", year)

			all = append(all, events...)
		}
		for i := 1; i < len(all); i++ {
			require.False(t, all[i].Date.Before(all[i-1].Date), "%s (%s) after %s (%s)", all[i].Name, all[i].Date, all[i-1].Name, all[i-1].Date)
		}
	}
}

func TestForYear_OutOfRange(t *testing.T) {
	_, err := NewCalendar().ForYear(calendar.MinHebrewYear, true)
	assert.ErrorIs(t, err, calendar.ErrOutOfRange)
}

func TestOn(t *testing.T) {
	events, err := NewCalendar().On(civil(t, "2024-12-31"), true)
	require.NoError(t, err)

	var names []string
	for _, e := range events {
		names = append(names, e.Name)
	}
	// 30 Kislev 5785: sixth day of Chanukah and first day of Rosh Chodesh Tevet.
	assert.ElementsMatch(t, []string{"Chanukah: 6th Day", "Rosh Chodesh Tevet"}, names)
}

func TestCompare(t *testing.T) {
	d := civil(t, "2025-04-10")
	fast := Event{Name: "Ta'anit Bechorot", Type: Fast, Date: d}
	other := Event{Name: "A", Type: Other, Date: d}
	earlier := Event{Name: "Z", Type: Other, Date: d.AddDays(-1)}

	assert.Negative(t, Compare(fast, other))
	assert.Positive(t, Compare(other, earlier))
	assert.Zero(t, Compare(other, other))

	at := d.Time().Add(18 * time.Hour)
	timed := Event{Name: "A", Type: Other, Date: d, Time: &at}
	assert.Positive(t, Compare(timed, other))
}
