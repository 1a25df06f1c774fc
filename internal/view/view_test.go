package view

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litescript/ls-skychart/internal/astro"
)

func TestSetCenterNormalization(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var s State
	for i := 0; i < 5000; i++ {
		phi := (rng.Float64() - 0.5) * 100
		theta := (rng.Float64() - 0.5) * 10
		s.SetCenter(phi, theta)

		if s.CenterPhi < 0 || s.CenterPhi >= 2*math.Pi {
			t.Fatalf("SetCenter(%v, %v): phi=%v out of [0, 2π)", phi, theta, s.CenterPhi)
		}
		if s.CenterTheta < -math.Pi/2+ThetaEpsilon || s.CenterTheta > math.Pi/2-ThetaEpsilon {
			t.Fatalf("SetCenter(%v, %v): theta=%v out of range", phi, theta, s.CenterTheta)
		}
	}
}

func TestSetCenterEdgeCases(t *testing.T) {
	tests := []struct {
		name       string
		phi, theta float64
		wantPhi    float64
		wantTheta  float64
	}{
		{"full turn", 2 * math.Pi, 0, 0, 0},
		{"negative", -math.Pi / 2, 0.3, 3 * math.Pi / 2, 0.3},
		{"north pole", 1, math.Pi / 2, 1, math.Pi/2 - ThetaEpsilon},
		{"below south pole", 1, -4, 1, -math.Pi/2 + ThetaEpsilon},
		{"NaN", math.NaN(), math.NaN(), 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s State
			s.SetCenter(tt.phi, tt.theta)
			assert.InDelta(t, tt.wantPhi, s.CenterPhi, 1e-12)
			assert.InDelta(t, tt.wantTheta, s.CenterTheta, 1e-12)
		})
	}
}

func TestFieldRadius(t *testing.T) {
	s := New(Equatorial, 0, 0, 10)
	assert.InDelta(t, 5*math.Pi/180, s.FieldRadius(), 1e-15)
}

func TestParseCoordSystem(t *testing.T) {
	for in, want := range map[string]CoordSystem{
		"equatorial": Equatorial,
		"EQ":         Equatorial,
		"":           Equatorial,
		"horizontal": Horizontal,
		"altaz":      Horizontal,
	} {
		got, err := ParseCoordSystem(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseCoordSystem("galactic")
	assert.Error(t, err)
}

func TestEquatorialFrameIsIdentity(t *testing.T) {
	f := NewFrame(Equatorial, nil, time.Time{})
	require.True(t, f.Available())

	phi, theta, ok := f.FromEquatorial(-0.5, 0.2)
	require.True(t, ok)
	assert.InDelta(t, 2*math.Pi-0.5, phi, 1e-12)
	assert.Equal(t, 0.2, theta)
}

func TestHorizontalFrameNeedsSiteAndDate(t *testing.T) {
	site := &Site{LatDeg: 50, LonDeg: 14}
	date := time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC)

	for _, f := range []Frame{
		NewFrame(Horizontal, nil, date),
		NewFrame(Horizontal, site, time.Time{}),
	} {
		assert.False(t, f.Available())
		_, _, ok := f.FromEquatorial(1, 0.5)
		assert.False(t, ok)
		_, _, ok = f.ToEquatorial(1, 0.5)
		assert.False(t, ok)
	}

	s := State{CoordSystem: Horizontal, FovDeg: 60}
	assert.ErrorIs(t, s.SetCenterEquatorial(1, 0.5), ErrFrameUnavailable)
}

func TestHorizontalFrameOrientation(t *testing.T) {
	site := &Site{LatDeg: 45, LonDeg: 0}
	date := time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC)
	f := NewFrame(Horizontal, site, date)
	lst := f.LST()

	// On the meridian to the south: azimuth 180.
	phi, theta, ok := f.FromEquatorial(lst, 0)
	require.True(t, ok)
	assert.InDelta(t, math.Pi, phi, 1e-9)
	assert.InDelta(t, math.Pi/4, theta, 1e-9)

	// Rising in the east (azimuth 90) maps to phi = 270.
	phi, theta, ok = f.FromEquatorial(lst+math.Pi/2, 0)
	require.True(t, ok)
	assert.InDelta(t, 3*math.Pi/2, phi, 1e-9)
	assert.InDelta(t, 0, theta, 1e-9)
	assert.InDelta(t, math.Pi/2, Azimuth(phi), 1e-9)
}

func TestHorizontalFrameRoundTrip(t *testing.T) {
	f := NewFrame(Horizontal, &Site{LatDeg: -30, LonDeg: -70}, time.Date(2024, 8, 3, 3, 0, 0, 0, time.UTC))
	for ra := 0.1; ra < 2*math.Pi; ra += 0.5 {
		for dec := -1.3; dec < 1.3; dec += 0.4 {
			phi, theta, ok := f.FromEquatorial(ra, dec)
			require.True(t, ok)
			gotRA, gotDec, ok := f.ToEquatorial(phi, theta)
			require.True(t, ok)
			assert.InDelta(t, dec, gotDec, 1e-9)
			assert.InDelta(t, 0, astro.WrapPi(gotRA-ra), 1e-9)
		}
	}
}

func TestSwitchCoordSystemKeepsDirection(t *testing.T) {
	s := New(Equatorial, 1.2, 0.4, 30)
	s.Site = &Site{LatDeg: 40, LonDeg: -74}
	s.Date = time.Date(2025, 5, 1, 2, 0, 0, 0, time.UTC)

	require.NoError(t, s.SwitchCoordSystem(Horizontal))
	assert.Equal(t, Horizontal, s.CoordSystem)

	ra, dec, ok := s.CenterEquatorial()
	require.True(t, ok)
	assert.InDelta(t, 0, astro.WrapPi(ra-1.2), 1e-9)
	assert.InDelta(t, 0.4, dec, 1e-9)

	s.Site = nil
	assert.ErrorIs(t, s.SwitchCoordSystem(Equatorial), ErrFrameUnavailable)
}
