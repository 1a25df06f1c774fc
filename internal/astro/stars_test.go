package astro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultStarCatalog_ValidCoordinates(t *testing.T) {
	cat := DefaultStarCatalog()
	require.Greater(t, len(cat.Stars), 50)

	for _, s := range cat.Stars {
		if s.Name == "" {
			t.Errorf("unnamed star at RA=%v", s.RAdeg)
		}
		if s.RAdeg < 0 || s.RAdeg >= 360 || s.DecDeg < -90 || s.DecDeg > 90 {
			t.Errorf("%s has invalid coordinates (%v, %v)", s.Name, s.RAdeg, s.DecDeg)
		}
	}
}

func TestStarCatalog_Find(t *testing.T) {
	cat := DefaultStarCatalog()

	vega, ok := cat.Find("vega")
	require.True(t, ok)
	assert.InDelta(t, 279.2, vega.RAdeg, 0.1)
	assert.InDelta(t, 38.8, vega.DecDeg, 0.1)

	_, ok = cat.Find("Not A Star")
	assert.False(t, ok)
}

func TestStarCatalog_Brighter(t *testing.T) {
	cat := DefaultStarCatalog()

	bright := cat.Brighter(1.0)
	require.NotEmpty(t, bright)
	assert.Equal(t, "Sirius", bright[0].Name)
	for _, s := range bright {
		assert.LessOrEqual(t, s.Mag, 1.0, s.Name)
	}
	assert.Less(t, len(bright), len(cat.Stars))
}
