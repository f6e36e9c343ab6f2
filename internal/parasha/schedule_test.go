package parasha

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/luach-api/internal/calendar"
)

func civil(s string) calendar.CivilDate {
	d, err := calendar.ParseDateString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFor_KnownSabbaths(t *testing.T) {
	tests := []struct {
		date     string
		israel   string
		diaspora string
	}{
		{"2024-10-26", "Bereshit", "Bereshit"},
		{"2023-12-02", "Vayishlach", "Vayishlach"},
		{"2025-03-22", "Vayakhel", "Vayakhel"},
		{"2025-03-29", "Pekudei", "Pekudei"},
		{"2025-05-03", "Tazria-Metzora", "Tazria-Metzora"},
		{"2025-06-28", "Korach", "Korach"},
		{"2024-08-10", "Devarim", "Devarim"},
		{"2025-09-20", "Nitzavim", "Nitzavim"},
		{"2025-09-27", "Vayeilech", "Vayeilech"},
		{"2024-10-05", "Ha'Azinu", "Ha'Azinu"},
		{"2022-07-23", "Matot", "Pinchas"},
		{"2022-07-30", "Masei", "Matot-Masei"},
	}

	s := NewScheduler()
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			r, err := s.For(civil(tt.date), false)
			require.NoError(t, err)
			assert.Equal(t, tt.israel, r.Name(), "israel")

			r, err = s.For(civil(tt.date), true)
			require.NoError(t, err)
			assert.Equal(t, tt.diaspora, r.Name(), "diaspora")
		})
	}
}

func TestFor_WeekdayResolvesToComingSabbath(t *testing.T) {
	s := NewScheduler()

	r, err := s.For(civil("2025-03-18"), true) // Tuesday
	require.NoError(t, err)
	assert.Equal(t, civil("2025-03-22"), r.Date)
	assert.Equal(t, "Vayakhel", r.Name())
	assert.Equal(t, Exodus, r.Portions[0].Book)
}

func TestFor_FestivalWeeks(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		diaspora bool
		festival string
	}{
		{"sukkot chol hamoed", "2024-10-19", false, "Sukkot"},
		{"yom kippur", "2024-10-12", true, "Yom Kippur"},
		{"rosh hashanah", "2023-09-16", true, "Rosh Hashanah"},
		{"pesach seventh day", "2025-04-19", false, "Pesach"},
		{"pesach eighth day abroad", "2022-04-23", true, "Pesach"},
	}

	s := NewScheduler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := s.For(civil(tt.date), tt.diaspora)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNoRegularParasha), "error = %v", err)

			var fe *FestivalError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.festival, fe.Festival)
			assert.Equal(t, tt.festival, r.Name())
			assert.False(t, r.Regular())
		})
	}
}

func TestFor_IsraelReadsOnWhenDiasporaCelebrates(t *testing.T) {
	r, err := NewScheduler().For(civil("2022-04-23"), false)
	require.NoError(t, err)
	assert.Equal(t, "Achrei Mot", r.Name())
}

func TestForHebrew(t *testing.T) {
	r, err := NewScheduler().ForHebrew(calendar.HebrewDate{Year: 5785, Month: calendar.Av, Day: 9}, true)
	require.NoError(t, err)
	// 9 Av 5785 is a Sunday; the coming Sabbath reads Vaetchanan.
	assert.Equal(t, civil("2025-08-09"), r.Date)
	assert.Equal(t, "Vaetchanan", r.Name())
}

// The portions form an unbroken cycle across years: every Sabbath reading
// continues where the previous one stopped, and Ha'Azinu is followed by
// Bereshit.
func TestYear_CycleIsContinuous(t *testing.T) {
	s := NewScheduler()
	for _, diaspora := range []bool{false, true} {
		prev := -1
		for year := 5700; year < 5900; year++ {
			readings, err := s.Year(year, diaspora)
			require.NoError(t, err, "year %d diaspora %v", year, diaspora)

			for _, r := range readings {
				for _, p := range r.Portions {
					if prev >= 0 {
						want := prev + 1
						if prev == haazinu {
							want = bereshit
						}
						require.Equal(t, want, p.Index, "%s (diaspora %v): %s after %s", r.Date, diaspora, p.Name, portions[prev].Name)
					}
					prev = p.Index
				}
			}
		}
	}
}

func TestYear_AnchorWeeks(t *testing.T) {
	s := NewScheduler()
	for year := 5750; year < 5850; year++ {
		common := !calendar.IsLeapYear(year)
		pesach, err := calendar.ToCivil(calendar.HebrewDate{Year: year, Month: calendar.Nisan, Day: 15})
		require.NoError(t, err)
		shavuot, err := calendar.ToCivil(calendar.HebrewDate{Year: year, Month: calendar.Sivan, Day: 6})
		require.NoError(t, err)
		tishaBAv, err := calendar.ToCivil(calendar.HebrewDate{Year: year, Month: calendar.Av, Day: 9})
		require.NoError(t, err)
		nextRH := calendar.RoshHashanah(year + 1)

		readings, err := s.Year(year, true)
		require.NoError(t, err)

		for _, r := range readings {
			switch {
			case r.Name() == "Bamidbar":
				assert.True(t, r.Date.Before(shavuot), "%d: Bamidbar %s not before Shavuot %s", year, r.Date, shavuot)
			case r.Name() == "Devarim":
				assert.False(t, r.Date.After(tishaBAv), "%d: Devarim %s after 9 Av %s", year, r.Date, tishaBAv)
			case r.Name() == "Tzav" && common:
				assert.True(t, r.Date.Before(pesach), "%d: Tzav %s not before Pesach %s", year, r.Date, pesach)
			}
		}

		last := readings[len(readings)-1]
		assert.Equal(t, nextRH.AddDays(-1).OnOrBefore(time.Saturday), last.Date)
		assert.Equal(t, nitzavim, last.Portions[0].Index, "%d: last sabbath reads %s", year, last.Name())
	}
}

func TestYearSchedules_CoverAllYearTypes(t *testing.T) {
	for year := 5600; year < 6200; year++ {
		shape := yearShape{roshHashanah: calendar.RoshHashanah(year).Weekday(), length: calendar.DaysInYear(year)}
		_, ok := yearSchedules[shape]
		require.True(t, ok, "year %d has no schedule (%v)", year, shape)
	}
	assert.Len(t, yearSchedules, 14)
}

func TestAllAndByName(t *testing.T) {
	all := All()
	require.Len(t, all, 54)
	for i, p := range all {
		assert.Equal(t, i, p.Index)
		assert.NotEmpty(t, p.HebrewName)
	}

	p, ok := ByName("Vezot Haberakhah")
	require.True(t, ok)
	assert.Equal(t, Deuteronomy, p.Book)

	_, ok = ByName("Unknown")
	assert.False(t, ok)
}
