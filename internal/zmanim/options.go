package zmanim

import (
	"errors"
	"fmt"
)

// MaxOffsetMinutes bounds both offsets. Customs range from 18 to 40 minutes
// for candle lighting and 42 to 72 for havdalah.
const MaxOffsetMinutes = 120

// Options are the community-dependent offsets applied to sunset.
type Options struct {
	CandleLightingMinutes int `json:"candle_lighting_minutes"`
	HavdalahMinutes       int `json:"havdalah_minutes"`
}

// DefaultOptions returns 18 minutes before and 50 minutes after sunset.
func DefaultOptions() Options {
	return Options{CandleLightingMinutes: 18, HavdalahMinutes: 50}
}

// NewOptions returns validated offsets.
func NewOptions(candleLighting, havdalah int) (Options, error) {
	o := Options{CandleLightingMinutes: candleLighting, HavdalahMinutes: havdalah}
	if err := o.Validate(); err != nil {
		return Options{}, err
	}
	return o, nil
}

// Validate rejects negative offsets and offsets above MaxOffsetMinutes.
func (o Options) Validate() error {
	var errs []error
	if o.CandleLightingMinutes < 0 || o.CandleLightingMinutes > MaxOffsetMinutes {
		errs = append(errs, fmt.Errorf("candle lighting offset must be between 0 and %d minutes, got %d", MaxOffsetMinutes, o.CandleLightingMinutes))
	}
	if o.HavdalahMinutes < 0 || o.HavdalahMinutes > MaxOffsetMinutes {
		errs = append(errs, fmt.Errorf("havdalah offset must be between 0 and %d minutes, got %d", MaxOffsetMinutes, o.HavdalahMinutes))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, errors.Join(errs...))
	}
	return nil
}

// ErrInvalidOptions wraps every offset validation failure.
var ErrInvalidOptions = errors.New("invalid zmanim options")
