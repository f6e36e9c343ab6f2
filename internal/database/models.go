package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zapponejosh/luach-api/internal/geo"
	"github.com/zapponejosh/luach-api/internal/solar"
	"github.com/zapponejosh/luach-api/internal/zmanim"
)

// Location is a saved place with its observance settings.
type Location struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name" yaml:"name"`
	Latitude        float64   `json:"latitude" yaml:"latitude"`
	Longitude       float64   `json:"longitude" yaml:"longitude"`
	Timezone        string    `json:"timezone" yaml:"timezone"`
	Elevation       float64   `json:"elevation" yaml:"elevation"`
	Diaspora        bool      `json:"diaspora" yaml:"diaspora"`
	CandleMinutes   int       `json:"candle_minutes" yaml:"candle_minutes"`
	HavdalahMinutes int       `json:"havdalah_minutes" yaml:"havdalah_minutes"`
	CreatedAt       time.Time `json:"created_at" yaml:"-"`
	UpdatedAt       time.Time `json:"updated_at" yaml:"-"`
}

// ErrInvalidLocation wraps every Location validation failure.
var ErrInvalidLocation = errors.New("invalid location")

// Validate checks the fields the schema constrains, so callers get one
// readable error instead of a CHECK failure.
func (l *Location) Validate() error {
	var errs []error
	if strings.TrimSpace(l.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if err := l.Coordinate().Validate(); err != nil {
		errs = append(errs, err)
	}
	if _, err := time.LoadLocation(l.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone %q: %w", l.Timezone, err))
	}
	if !solar.ValidElevation(l.Elevation) {
		errs = append(errs, fmt.Errorf("elevation must be between 0 and %d metres, got %v", solar.MaxElevation, l.Elevation))
	}
	if err := l.Options().Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidLocation, errors.Join(errs...))
	}
	return nil
}

// Coordinate returns the location's position.
func (l *Location) Coordinate() geo.Coordinate {
	return geo.Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

// Options returns the location's zmanim offsets.
func (l *Location) Options() zmanim.Options {
	return zmanim.Options{CandleLightingMinutes: l.CandleMinutes, HavdalahMinutes: l.HavdalahMinutes}
}

// TimeZone loads the location's zone, falling back to UTC.
func (l *Location) TimeZone() *time.Location {
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
