package render

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/view"
)

// FormatRA formats a right ascension in degrees as hours and minutes, with
// seconds when the grid step is finer than a minute.
func FormatRA(deg, stepDeg float64) string {
	totalSec := math.Round(normDeg(deg) / 15 * 3600)
	h := int(totalSec/3600) % 24
	m := int(math.Mod(totalSec, 3600) / 60)
	s := int(math.Mod(totalSec, 60))
	switch {
	case stepDeg < 0.25:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh%02dm", h, m)
	}
}

// FormatDec formats a declination or altitude in degrees, with arcminutes
// when the step is finer than a degree.
func FormatDec(deg, stepDeg float64) string {
	sign := "+"
	if deg < 0 {
		sign = "-"
	}
	totalMin := math.Round(math.Abs(deg) * 60)
	d := int(totalMin / 60)
	m := int(math.Mod(totalMin, 60))
	if stepDeg < 1 && m != 0 {
		return fmt.Sprintf("%s%d°%02d'", sign, d, m)
	}
	if d == 0 && m == 0 {
		return "0°"
	}
	return fmt.Sprintf("%s%d°", sign, d)
}

// FormatAz formats an azimuth in degrees.
func FormatAz(deg, stepDeg float64) string {
	deg = normDeg(deg)
	totalMin := math.Round(deg * 60)
	d := int(totalMin/60) % 360
	m := int(math.Mod(totalMin, 60))
	if stepDeg < 1 && m != 0 {
		return fmt.Sprintf("%d°%02d'", d, m)
	}
	return fmt.Sprintf("%d°", d)
}

func normDeg(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// CenterText describes the camera center in the active frame.
func CenterText(st view.State) string {
	phiDeg, thetaDeg := astro.RadToDeg(st.CenterPhi), astro.RadToDeg(st.CenterTheta)
	if st.CoordSystem == view.Horizontal {
		return fmt.Sprintf("Az %s Alt %s",
			FormatAz(astro.RadToDeg(view.Azimuth(st.CenterPhi)), 0.1),
			FormatDec(thetaDeg, 0.1))
	}
	return fmt.Sprintf("RA %s Dec %s", FormatRA(phiDeg, 0.1), FormatDec(thetaDeg, 0.1))
}

// Describe formats a one-line summary of an object, with its altitude and
// azimuth when the view has a site.
func Describe(o catalog.Object, st view.State) string {
	name := o.Label
	if name == "" {
		name = o.ID
	}
	parts := []string{name}
	if o.Type != "" {
		parts = append(parts, string(o.Type))
	}
	parts = append(parts, fmt.Sprintf("RA %s Dec %s", FormatRA(o.RA, 0.1), FormatDec(o.Dec, 0.1)))
	if o.Mag != 0 {
		parts = append(parts, fmt.Sprintf("mag %.1f", o.Mag))
	}
	if st.Site != nil {
		date := st.Date
		if date.IsZero() {
			date = time.Now()
		}
		hor := astro.EquatorialToHorizontal(
			astro.SkyCoord{RAdeg: o.RA, DecDeg: o.Dec},
			astro.Observer{LatDeg: st.Site.LatDeg, LonDeg: st.Site.LonDeg},
			date)
		parts = append(parts, fmt.Sprintf("Az %s Alt %s", FormatAz(hor.AzDeg, 0.1), FormatDec(hor.ElDeg, 0.1)))
	}
	return strings.Join(parts, " | ")
}
