package catalog

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-skychart/internal/astro"
)

// OfflineDatasetID versions the built-in shared datasets.
const OfflineDatasetID = "offline-1"

// OfflineCatalogID names the built-in star catalog in tile keys.
const OfflineCatalogID = "offline-bsc"

// Offline serves built-in data: the bright star list, a few showpiece deep
// sky objects, the Sun, asterism figures and a coarse Milky Way band. It
// lets the viewer run without a backend.
type Offline struct {
	stars astro.StarCatalog
	now   func() time.Time
}

// NewOffline returns the built-in provider.
func NewOffline() *Offline {
	return &Offline{stars: astro.DefaultStarCatalog(), now: time.Now}
}

// Scene implements Provider.
func (o *Offline) Scene(ctx context.Context, req SceneRequest) (*Scene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	at := req.Time
	if at.IsZero() {
		at = o.now()
	}
	mag := req.MagLimit
	if mag == 0 {
		mag = MagLimitForFov(req.FovDeg)
	}

	scene := &Scene{
		RequestID:   req.RequestID,
		Center:      req.Center,
		FovDeg:      req.FovDeg,
		CoordSystem: "equatorial",
		Layers:      AllLayers(),
		Theme:       DefaultTheme(),
		CatalogID:   OfflineCatalogID,
		MagLimit:    mag,
		DSO:         offlineDSO,
		DatasetIDs:  DatasetIDs{MilkyWay: OfflineDatasetID, Constellations: OfflineDatasetID},
	}

	// Preview holds what is always worth drawing; tiles fill in the rest.
	for _, s := range o.stars.Brighter(math.Min(mag, 2.0)) {
		scene.StarsPreview = append(scene.StarsPreview, fromAstro(s))
	}

	sunRA, sunDec := astro.SunPosition(at)
	scene.Planets = []Object{{ID: "sun", Label: "Sun", Type: TypeSun, RA: sunRA, Dec: sunDec, Mag: -26.7, Size: 32}}

	if !req.Optimized {
		radius := req.FovDeg / 2 * 1.5
		scene.Selection = ZonesFor(req.Center, radius, LevelForFov(req.FovDeg))
	}
	return scene, nil
}

// Tiles implements Provider.
func (o *Offline) Tiles(ctx context.Context, catalogID string, mag float64, refs []ZoneRef) ([]Tile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if catalogID != OfflineCatalogID {
		return nil, fmt.Errorf("tiles for %q: %w", catalogID, ErrNotFound)
	}

	out := make([]Tile, 0, len(refs))
	for _, ref := range refs {
		tile := Tile{Level: ref.Level, Zone: ref.Zone}
		for _, s := range o.stars.Stars {
			if s.Mag > mag {
				continue
			}
			if ZoneOf(ref.Level, s.RAdeg, s.DecDeg) == ref {
				tile.Stars = append(tile.Stars, fromAstro(s))
			}
		}
		out = append(out, tile)
	}
	return out, nil
}

// MilkyWay implements Provider.
func (o *Offline) MilkyWay(ctx context.Context, datasetID string) (*MilkyWay, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if datasetID != OfflineDatasetID {
		return nil, fmt.Errorf("milky way %q: %w", datasetID, ErrNotFound)
	}
	return &MilkyWay{ID: datasetID, Polygons: milkyWayBand()}, nil
}

// Constellations implements Provider. Offline data has asterism figures
// only; boundaries come from a backend.
func (o *Offline) Constellations(ctx context.Context, datasetID string) (*Constellations, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if datasetID != OfflineDatasetID {
		return nil, fmt.Errorf("constellations %q: %w", datasetID, ErrNotFound)
	}

	c := &Constellations{ID: datasetID}
	for _, a := range asterisms {
		var sumRA, sumDec, n float64
		var x, y float64
		for i, fig := range a.figures {
			f := Figure{ID: fmt.Sprintf("%s-%d", a.id, i)}
			for _, name := range fig {
				s, ok := o.stars.Find(name)
				if !ok {
					continue
				}
				f.Points = append(f.Points, Coord{RA: s.RAdeg, Dec: s.DecDeg})
				rad := astro.DegToRad(s.RAdeg)
				x += math.Cos(rad)
				y += math.Sin(rad)
				sumDec += s.DecDeg
				n++
			}
			if len(f.Points) > 1 {
				c.Lines = append(c.Lines, f)
			}
		}
		if n == 0 {
			continue
		}
		sumRA = astro.RadToDeg(astro.NormalizeRad(math.Atan2(y, x)))
		c.Labels = append(c.Labels, Object{
			ID: a.id, Label: a.label, Type: TypeAsterism, RA: sumRA, Dec: sumDec / n,
		})
	}
	return c, nil
}

func fromAstro(s astro.Star) Star {
	return Star{ID: s.Name, Name: s.Name, RA: s.RAdeg, Dec: s.DecDeg, Mag: s.Mag}
}

type asterism struct {
	id      string
	label   string
	figures [][]string
}

var asterisms = []asterism{
	{"big-dipper", "Big Dipper", [][]string{
		{"Alkaid", "Mizar", "Alioth", "Megrez", "Dubhe", "Merak", "Phecda", "Megrez"},
	}},
	{"orion", "Orion", [][]string{
		{"Betelgeuse", "Alnitak", "Saiph"},
		{"Bellatrix", "Mintaka", "Rigel"},
		{"Alnitak", "Alnilam", "Mintaka"},
		{"Betelgeuse", "Bellatrix"},
	}},
	{"summer-triangle", "Summer Triangle", [][]string{
		{"Vega", "Deneb", "Altair", "Vega"},
	}},
	{"crux", "Southern Cross", [][]string{
		{"Acrux", "Gacrux"},
	}},
	{"leo", "Leo", [][]string{
		{"Regulus", "Algieba", "Zosma", "Denebola"},
	}},
	{"little-dipper", "Little Dipper", [][]string{
		{"Polaris", "Kochab", "Pherkad"},
	}},
}

var offlineDSO = []Object{
	{ID: "M31", Label: "Andromeda Galaxy", Type: TypeGalaxy, RA: 10.6847, Dec: 41.2690, Mag: 3.4, MajorAxis: 178, MinorAxis: 63, PosAngle: 35},
	{ID: "M33", Label: "Triangulum Galaxy", Type: TypeGalaxy, RA: 23.4621, Dec: 30.6599, Mag: 5.7, MajorAxis: 70.8, MinorAxis: 41.7, PosAngle: 23},
	{ID: "M51", Label: "Whirlpool Galaxy", Type: TypeGalaxy, RA: 202.4696, Dec: 47.1952, Mag: 8.4, MajorAxis: 11.2, MinorAxis: 6.9, PosAngle: 163},
	{ID: "M81", Label: "Bode's Galaxy", Type: TypeGalaxy, RA: 148.8882, Dec: 69.0653, Mag: 6.9, MajorAxis: 26.9, MinorAxis: 14.1, PosAngle: 157},
	{ID: "M82", Label: "Cigar Galaxy", Type: TypeGalaxy, RA: 148.9685, Dec: 69.6797, Mag: 8.4, MajorAxis: 11.2, MinorAxis: 4.3, PosAngle: 65},
	{ID: "M104", Label: "Sombrero Galaxy", Type: TypeGalaxy, RA: 189.9976, Dec: -11.6231, Mag: 8.0, MajorAxis: 8.7, MinorAxis: 3.5, PosAngle: 90},
	{ID: "LMC", Label: "Large Magellanic Cloud", Type: TypeGalaxy, RA: 80.8938, Dec: -69.7561, Mag: 0.9, MajorAxis: 645, MinorAxis: 550, PosAngle: 170},
	{ID: "SMC", Label: "Small Magellanic Cloud", Type: TypeGalaxy, RA: 13.1867, Dec: -72.8286, Mag: 2.7, MajorAxis: 320, MinorAxis: 185, PosAngle: 45},
	{ID: "M42", Label: "Orion Nebula", Type: TypeNebula, RA: 83.8221, Dec: -5.3911, Mag: 4.0, Size: 85},
	{ID: "M8", Label: "Lagoon Nebula", Type: TypeNebula, RA: 270.9042, Dec: -24.3867, Mag: 6.0, Size: 90},
	{ID: "M1", Label: "Crab Nebula", Type: TypeNebula, RA: 83.6331, Dec: 22.0145, Mag: 8.4, Size: 6},
	{ID: "M27", Label: "Dumbbell Nebula", Type: TypeNebula, RA: 299.9016, Dec: 22.7210, Mag: 7.5, Size: 8},
	{ID: "M57", Label: "Ring Nebula", Type: TypeNebula, RA: 283.3963, Dec: 33.0292, Mag: 8.8, Size: 1.4},
	{ID: "M45", Label: "Pleiades", Type: TypeCluster, RA: 56.75, Dec: 24.1167, Mag: 1.6, Size: 110},
	{ID: "M44", Label: "Beehive Cluster", Type: TypeCluster, RA: 130.1, Dec: 19.67, Mag: 3.7, Size: 95},
	{ID: "M13", Label: "Hercules Cluster", Type: TypeCluster, RA: 250.4235, Dec: 36.4613, Mag: 5.8, Size: 20},
	{ID: "NGC5139", Label: "Omega Centauri", Type: TypeCluster, RA: 201.6970, Dec: -47.4795, Mag: 3.9, Size: 36},
}

// Galactic north pole and the galactic longitude of the celestial pole, J2000.
const (
	galPoleRA  = 192.85948
	galPoleDec = 27.12825
	galNCPLon  = 122.93192
)

// GalacticToEquatorial converts galactic l/b to RA/Dec, all degrees.
func GalacticToEquatorial(l, b float64) Coord {
	lr, br := astro.DegToRad(l), astro.DegToRad(b)
	dp := astro.DegToRad(galPoleDec)
	dl := astro.DegToRad(galNCPLon) - lr

	sinDec := math.Sin(br)*math.Sin(dp) + math.Cos(br)*math.Cos(dp)*math.Cos(dl)
	dec := math.Asin(math.Max(-1, math.Min(1, sinDec)))
	ra := astro.DegToRad(galPoleRA) + math.Atan2(
		math.Cos(br)*math.Sin(dl),
		math.Sin(br)*math.Cos(dp)-math.Cos(br)*math.Sin(dp)*math.Cos(dl),
	)
	return Coord{RA: astro.RadToDeg(astro.NormalizeRad(ra)), Dec: astro.RadToDeg(dec)}
}

// milkyWayBand approximates the Milky Way as two nested bands along the
// galactic equator, split into 20 degree segments.
func milkyWayBand() []MilkyWayPolygon {
	band := func(l0, l1, halfWidth, brightness float64) MilkyWayPolygon {
		var ring []Coord
		for l := l0; l <= l1+1e-9; l += 5 {
			ring = append(ring, GalacticToEquatorial(l, -halfWidth))
		}
		for l := l1; l >= l0-1e-9; l -= 5 {
			ring = append(ring, GalacticToEquatorial(l, halfWidth))
		}
		return MilkyWayPolygon{Brightness: brightness, Ring: ring}
	}

	var out []MilkyWayPolygon
	for l := 0.0; l < 360; l += 20 {
		out = append(out, band(l, l+20, 12, 0.35))
	}
	// Brighter core toward the galactic center.
	for l := -60.0; l < 60; l += 20 {
		out = append(out, band(l, l+20, 5, 0.7))
	}
	return out
}
