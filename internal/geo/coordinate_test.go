package geo

import (
	"errors"
	"math"
	"testing"
)

func TestCoordinate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lon     float64
		wantErr bool
	}{
		{"jerusalem", 31.7683, 35.2137, false},
		{"north pole", 90, 0, false},
		{"south pole", -90, 180, false},
		{"date line west", 0, -180, false},
		{"latitude too high", 90.01, 0, true},
		{"latitude too low", -91, 0, true},
		{"longitude too high", 0, 180.5, true},
		{"longitude too low", 0, -200, true},
		{"nan latitude", math.NaN(), 0, true},
		{"infinite longitude", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCoordinate(tt.lat, tt.lon)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewCoordinate(%v, %v) error = %v, wantErr %v", tt.lat, tt.lon, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("error %v is not ErrInvalidCoordinate", err)
			}
		})
	}
}

func TestCoordinate_String(t *testing.T) {
	c := Coordinate{Latitude: 31.76832, Longitude: -35.21371}
	if got, want := c.String(), "31.7683,-35.2137"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
