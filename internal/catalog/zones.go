package catalog

import (
	"math"

	"github.com/litescript/ls-skychart/internal/astro"
)

// The zone grid is an equal-angle grid: level L has 12<<L columns of right
// ascension and 6<<L rows of declination, numbered row-major from the south
// pole and RA 0.

func gridSize(level int) (cols, rows int) {
	if level < 0 {
		level = 0
	}
	return 12 << level, 6 << level
}

// ZoneOf returns the zone containing ra/dec (degrees) at a level.
func ZoneOf(level int, ra, dec float64) ZoneRef {
	cols, rows := gridSize(level)
	ra = math.Mod(ra, 360)
	if ra < 0 {
		ra += 360
	}
	col := int(ra / 360 * float64(cols))
	row := int((dec + 90) / 180 * float64(rows))
	col = min(max(col, 0), cols-1)
	row = min(max(row, 0), rows-1)
	return ZoneRef{Level: level, Zone: row*cols + col}
}

// ZoneBounds returns the RA and Dec ranges of a zone, degrees.
func ZoneBounds(ref ZoneRef) (raMin, raMax, decMin, decMax float64) {
	cols, rows := gridSize(ref.Level)
	col := ref.Zone % cols
	row := ref.Zone / cols
	w := 360 / float64(cols)
	h := 180 / float64(rows)
	return float64(col) * w, float64(col+1) * w, -90 + float64(row)*h, -90 + float64(row+1)*h
}

// LevelForFov picks the tile level for a field of view.
func LevelForFov(fovDeg float64) int {
	switch {
	case fovDeg >= 60:
		return 0
	case fovDeg >= 20:
		return 1
	case fovDeg >= 5:
		return 2
	default:
		return 3
	}
}

// ZonesFor returns the zones at a level that come within radiusDeg of center.
func ZonesFor(center Coord, radiusDeg float64, level int) []ZoneRef {
	cols, rows := gridSize(level)
	var out []ZoneRef
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			ref := ZoneRef{Level: level, Zone: row*cols + col}
			if zoneDistance(center, ref) <= radiusDeg {
				out = append(out, ref)
			}
		}
	}
	return out
}

// zoneDistance returns the angular distance in degrees from c to the
// nearest point of the zone.
func zoneDistance(c Coord, ref ZoneRef) float64 {
	raMin, raMax, decMin, decMax := ZoneBounds(ref)

	ra := math.Mod(c.RA, 360)
	if ra < 0 {
		ra += 360
	}
	if ra >= raMin && ra <= raMax {
		dec := math.Max(decMin, math.Min(decMax, c.Dec))
		return math.Abs(c.Dec - dec)
	}

	best := math.Inf(1)
	for _, edge := range []float64{raMin, raMax} {
		dRA := astro.DegToRad(edge - ra)
		decP := astro.DegToRad(c.Dec)
		// Closest point of the full meridian, then clamped to the zone.
		var dec float64
		if math.Cos(dRA) > 0 {
			dec = astro.RadToDeg(math.Atan2(math.Tan(decP), math.Cos(dRA)))
		} else if c.Dec >= 0 {
			dec = 90
		} else {
			dec = -90
		}
		dec = math.Max(decMin, math.Min(decMax, dec))
		best = math.Min(best, astro.AngularSeparation(ra, c.Dec, edge, dec))
	}
	return best
}
