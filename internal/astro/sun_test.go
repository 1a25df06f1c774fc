package astro

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSunPosition(t *testing.T) {
	tests := []struct {
		name    string
		time    time.Time
		wantRA  float64
		wantDec float64
	}{
		{"March equinox", time.Date(2024, 3, 20, 3, 6, 0, 0, time.UTC), 0, 0},
		{"June solstice", time.Date(2024, 6, 20, 20, 51, 0, 0, time.UTC), 90, 23.44},
		{"September equinox", time.Date(2024, 9, 22, 12, 44, 0, 0, time.UTC), 180, 0},
		{"December solstice", time.Date(2024, 12, 21, 9, 20, 0, 0, time.UTC), 270, -23.44},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ra, dec := SunPosition(tt.time)
			dRA := RadToDeg(WrapPi(DegToRad(ra - tt.wantRA)))
			assert.InDelta(t, 0, dRA, 0.1, "ra=%v", ra)
			assert.InDelta(t, tt.wantDec, dec, 0.05)
		})
	}
}

func TestAngularSeparation(t *testing.T) {
	tests := []struct {
		name                 string
		ra1, dec1, ra2, dec2 float64
		want                 float64
	}{
		{"same point", 100, 20, 100, 20, 0},
		{"poles", 0, 90, 0, -90, 180},
		{"equator quarter", 0, 0, 90, 0, 90},
		{"across RA wrap", 359, 0, 1, 0, 2},
		{"pole to equator", 45, 90, 200, 0, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, AngularSeparation(tt.ra1, tt.dec1, tt.ra2, tt.dec2), 1e-9)
		})
	}
}
