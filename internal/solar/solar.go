// Package solar computes sunrise, solar noon and sunset with the closed-form
// sunrise equation. Accuracy is about a minute at mid latitudes, the usual
// bar for halakhic-time tables.
package solar

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/zapponejosh/luach-api/internal/calendar"
	"github.com/zapponejosh/luach-api/internal/geo"
)

// ErrPolarUnreachable is returned when the sun stays above or below the
// horizon all day, so neither sunrise nor sunset exists.
var ErrPolarUnreachable = errors.New("sun does not cross the horizon")

// DefaultDepression is the standard allowance for refraction (34') plus the
// solar semidiameter (16'), in degrees below the geometric horizon.
const DefaultDepression = 0.833

// MaxElevation is the highest observer height accepted, in metres.
const MaxElevation = 9000

// ValidElevation reports whether h is a usable observer height. NaN is not.
func ValidElevation(h float64) bool {
	return h >= 0 && h <= MaxElevation
}

const (
	j2000         = 2451545.0
	unixEpochJD   = 2440587.5
	fixedToJ2000  = 730120 // fixed day number of 2000-01-01
	obliquity     = 23.4397
	perihelionArg = 102.9372
)

// Config selects the horizon convention.
type Config struct {
	Depression float64 // degrees below the horizon the sun's center must reach
	Elevation  float64 // observer height in metres; lowers the visible horizon
}

// DefaultConfig returns the sea-level, 0.833° convention.
func DefaultConfig() Config {
	return Config{Depression: DefaultDepression}
}

// Validate rejects conventions that cannot describe a sunrise.
func (c Config) Validate() error {
	var errs []error
	if math.IsNaN(c.Depression) || c.Depression < -5 || c.Depression > 20 {
		errs = append(errs, fmt.Errorf("depression must be between -5 and 20 degrees, got %v", c.Depression))
	}
	if !ValidElevation(c.Elevation) {
		errs = append(errs, fmt.Errorf("elevation must be between 0 and %d metres, got %v", MaxElevation, c.Elevation))
	}
	return errors.Join(errs...)
}

// Times are the three solar events of one day, as UTC instants.
type Times struct {
	Sunrise   time.Time `json:"sunrise"`
	SolarNoon time.Time `json:"solar_noon"`
	Sunset    time.Time `json:"sunset"`
}

// DayLength is the interval between sunrise and sunset.
func (t Times) DayLength() time.Duration {
	return t.Sunset.Sub(t.Sunrise)
}

// Calculator computes Times for a fixed horizon convention. It holds no
// mutable state and is safe for concurrent use.
type Calculator struct {
	altitude float64 // horizon altitude in radians, negative below
}

// New returns a calculator for cfg.
func New(cfg Config) (*Calculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid solar config: %w", err)
	}
	dip := 2.076 * math.Sqrt(cfg.Elevation) / 60
	return &Calculator{altitude: radians(-cfg.Depression - dip)}, nil
}

// Default returns a calculator using DefaultConfig.
func Default() *Calculator {
	c, _ := New(DefaultConfig())
	return c
}

// Times computes sunrise, solar noon and sunset at coord on date.
// The transit used is the one nearest local noon of that civil date.
func (c *Calculator) Times(coord geo.Coordinate, date calendar.CivilDate) (Times, error) {
	if err := coord.Validate(); err != nil {
		return Times{}, err
	}

	n := float64(date.Fixed() - fixedToJ2000)
	jStar := n - coord.Longitude/360

	m := radians(normalizeDegrees(357.5291 + 0.98560028*jStar))
	center := 1.9148*math.Sin(m) + 0.0200*math.Sin(2*m) + 0.0003*math.Sin(3*m)
	lambda := radians(normalizeDegrees(degrees(m) + center + 180 + perihelionArg))

	// Equation of time enters through the two periodic terms.
	transit := j2000 + jStar + 0.0053*math.Sin(m) - 0.0069*math.Sin(2*lambda)

	sinDecl := math.Sin(lambda) * math.Sin(radians(obliquity))
	cosDecl := math.Cos(math.Asin(sinDecl))
	phi := radians(coord.Latitude)

	cosOmega := (math.Sin(c.altitude) - math.Sin(phi)*sinDecl) / (math.Cos(phi) * cosDecl)
	if math.IsNaN(cosOmega) || cosOmega < -1 || cosOmega > 1 {
		return Times{}, fmt.Errorf("%w at %s on %s", ErrPolarUnreachable, coord, date)
	}
	halfDay := degrees(math.Acos(cosOmega)) / 360

	return Times{
		Sunrise:   fromJulian(transit - halfDay),
		SolarNoon: fromJulian(transit),
		Sunset:    fromJulian(transit + halfDay),
	}, nil
}

func fromJulian(jd float64) time.Time {
	secs := (jd - unixEpochJD) * 86400
	whole := math.Floor(secs)
	return time.Unix(int64(whole), int64((secs-whole)*1e9)).UTC().Round(time.Second)
}

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func radians(d float64) float64 { return d * math.Pi / 180 }

func degrees(r float64) float64 { return r * 180 / math.Pi }
