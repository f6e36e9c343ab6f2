package solar

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/luach-api/internal/calendar"
	"github.com/zapponejosh/luach-api/internal/geo"
)

var jerusalem = geo.Coordinate{Latitude: 31.7683, Longitude: 35.2137}

func within(t *testing.T, got, want time.Time, tol time.Duration, label string) {
	t.Helper()
	diff := got.Sub(want)
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqualf(t, diff, tol, "%s = %s, want %s ± %s", label, got.Format(time.RFC3339), want.Format(time.RFC3339), tol)
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Reference values from the NOAA solar calculator.
func TestTimes_Jerusalem(t *testing.T) {
	tests := []struct {
		date    calendar.CivilDate
		sunrise string
		sunset  string
	}{
		{calendar.CivilDate{Year: 2024, Month: time.June, Day: 14}, "2024-06-14T02:33:13Z", "2024-06-14T16:45:55Z"},
		{calendar.CivilDate{Year: 2024, Month: time.June, Day: 15}, "2024-06-15T02:33:17Z", "2024-06-15T16:46:15Z"},
		{calendar.CivilDate{Year: 2024, Month: time.December, Day: 13}, "2024-12-13T04:30:29Z", "2024-12-13T14:36:27Z"},
		{calendar.CivilDate{Year: 2024, Month: time.December, Day: 14}, "2024-12-14T04:31:09Z", "2024-12-14T14:36:45Z"},
		{calendar.CivilDate{Year: 2025, Month: time.March, Day: 21}, "2025-03-21T03:41:37Z", "2025-03-21T15:51:20Z"},
	}

	calc := Default()
	for _, tt := range tests {
		t.Run(tt.date.String(), func(t *testing.T) {
			got, err := calc.Times(jerusalem, tt.date)
			require.NoError(t, err)
			within(t, got.Sunrise, utc(tt.sunrise), time.Minute, "sunrise")
			within(t, got.Sunset, utc(tt.sunset), time.Minute, "sunset")
		})
	}
}

func TestTimes_AgreesWithSunriseEquationLibrary(t *testing.T) {
	places := map[string]geo.Coordinate{
		"new york": {Latitude: 40.7128, Longitude: -74.0060},
		"london":   {Latitude: 51.5074, Longitude: -0.1278},
		"sydney":   {Latitude: -33.8688, Longitude: 151.2093},
		"quito":    {Latitude: -0.1807, Longitude: -78.4678},
	}

	calc := Default()
	for name, coord := range places {
		t.Run(name, func(t *testing.T) {
			for d := (calendar.CivilDate{Year: 2025, Month: time.January, Day: 5}); d.Year == 2025; d = d.AddDays(29) {
				got, err := calc.Times(coord, d)
				require.NoError(t, err)

				rise, set := sunrise.SunriseSunset(coord.Latitude, coord.Longitude, d.Year, d.Month, d.Day)
				within(t, got.Sunrise, rise, 3*time.Minute, d.String()+" sunrise")
				within(t, got.Sunset, set, 3*time.Minute, d.String()+" sunset")
			}
		})
	}
}

func TestTimes_Ordering(t *testing.T) {
	calc := Default()
	for lat := -64.0; lat <= 64; lat += 8 {
		for lon := -180.0; lon <= 180; lon += 45 {
			coord := geo.Coordinate{Latitude: lat, Longitude: lon}
			for d := (calendar.CivilDate{Year: 2024, Month: time.January, Day: 1}); d.Year == 2024; d = d.AddDays(11) {
				got, err := calc.Times(coord, d)
				require.NoError(t, err, "%s %s", coord, d)

				require.True(t, got.Sunrise.Before(got.SolarNoon), "%s %s: sunrise %s not before noon %s", coord, d, got.Sunrise, got.SolarNoon)
				require.True(t, got.SolarNoon.Before(got.Sunset), "%s %s: noon %s not before sunset %s", coord, d, got.SolarNoon, got.Sunset)

				mid := got.Sunrise.Add(got.DayLength() / 2)
				within(t, got.SolarNoon, mid, 2*time.Minute, "solar noon")
			}
		}
	}
}

func TestTimes_PolarUnreachable(t *testing.T) {
	tromso := geo.Coordinate{Latitude: 69.6492, Longitude: 18.9553}
	calc := Default()

	tests := []struct {
		name string
		date calendar.CivilDate
	}{
		{"midnight sun", calendar.CivilDate{Year: 2024, Month: time.June, Day: 21}},
		{"polar night", calendar.CivilDate{Year: 2024, Month: time.December, Day: 21}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Times(tromso, tt.date)
			assert.True(t, errors.Is(err, ErrPolarUnreachable), "error = %v, want ErrPolarUnreachable", err)
		})
	}

	_, err := calc.Times(tromso, calendar.CivilDate{Year: 2024, Month: time.March, Day: 20})
	assert.NoError(t, err, "equinox at 69°N has a sunrise")
}

func TestTimes_InvalidCoordinate(t *testing.T) {
	_, err := Default().Times(geo.Coordinate{Latitude: 95}, calendar.CivilDate{Year: 2024, Month: time.March, Day: 1})
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestElevationWidensDay(t *testing.T) {
	date := calendar.CivilDate{Year: 2024, Month: time.June, Day: 14}

	sea, err := Default().Times(jerusalem, date)
	require.NoError(t, err)

	hill, err := New(Config{Depression: DefaultDepression, Elevation: 800})
	require.NoError(t, err)
	high, err := hill.Times(jerusalem, date)
	require.NoError(t, err)

	assert.True(t, high.Sunrise.Before(sea.Sunrise))
	assert.True(t, high.Sunset.After(sea.Sunset))
	assert.Equal(t, sea.SolarNoon, high.SolarNoon)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default", DefaultConfig(), false},
		{"geometric horizon", Config{Depression: 0}, false},
		{"civil twilight", Config{Depression: 6}, false},
		{"negative elevation", Config{Depression: DefaultDepression, Elevation: -1}, true},
		{"highest elevation", Config{Depression: DefaultDepression, Elevation: MaxElevation}, false},
		{"elevation above limit", Config{Depression: DefaultDepression, Elevation: 10000}, true},
		{"elevation NaN", Config{Depression: DefaultDepression, Elevation: math.NaN()}, true},
		{"absurd depression", Config{Depression: 45}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%+v) error = %v, wantErr %v", tt.cfg, err, tt.wantErr)
			}
		})
	}
}
