package catalog

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// Shared datasets travel as GeoJSON with [ra, dec] degree positions. RA may
// be given in -180..180 and is normalized on decode.

// DecodeMilkyWay reads Milky Way isophotes from a feature collection of
// Polygon/MultiPolygon features. Each outer ring becomes one polygon; the
// optional "brightness" property defaults to 0.5.
func DecodeMilkyWay(id string, data []byte) (*MilkyWay, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode milky way geojson: %w", err)
	}

	mw := &MilkyWay{ID: id}
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		brightness := f.PropertyMustFloat64("brightness", 0.5)

		var polys [][][][]float64
		switch {
		case f.Geometry.IsPolygon():
			polys = [][][][]float64{f.Geometry.Polygon}
		case f.Geometry.IsMultiPolygon():
			polys = f.Geometry.MultiPolygon
		default:
			continue
		}
		for _, poly := range polys {
			if len(poly) == 0 {
				continue
			}
			ring := toCoords(poly[0])
			// GeoJSON rings repeat the first vertex at the end.
			if n := len(ring); n > 1 && ring[0] == ring[n-1] {
				ring = ring[:n-1]
			}
			if len(ring) >= 3 {
				mw.Polygons = append(mw.Polygons, MilkyWayPolygon{Brightness: brightness, Ring: ring})
			}
		}
	}
	return mw, nil
}

// DecodeConstellations reads stick figures, boundaries and label points. The
// "kind" property selects "line" (default), "boundary" or "label"; label
// features are Points with "name" and optional "label" properties.
func DecodeConstellations(id string, data []byte) (*Constellations, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode constellations geojson: %w", err)
	}

	c := &Constellations{ID: id}
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		kind := f.PropertyMustString("kind", "line")
		name := f.PropertyMustString("name", fmt.Sprintf("feature-%d", i))

		if kind == "label" {
			if f.Geometry.IsPoint() && len(f.Geometry.Point) >= 2 {
				p := toCoord(f.Geometry.Point)
				c.Labels = append(c.Labels, Object{
					ID: name, Label: f.PropertyMustString("label", name), Type: TypeAsterism,
					RA: p.RA, Dec: p.Dec,
				})
			}
			continue
		}

		var lines [][][]float64
		switch {
		case f.Geometry.IsLineString():
			lines = [][][]float64{f.Geometry.LineString}
		case f.Geometry.IsMultiLineString():
			lines = f.Geometry.MultiLineString
		case f.Geometry.IsPolygon():
			lines = f.Geometry.Polygon
		default:
			continue
		}
		for _, ls := range lines {
			fig := Figure{ID: name, Points: toCoords(ls)}
			if len(fig.Points) < 2 {
				continue
			}
			if kind == "boundary" {
				c.Boundaries = append(c.Boundaries, fig)
			} else {
				c.Lines = append(c.Lines, fig)
			}
		}
	}
	return c, nil
}

// EncodeMilkyWay writes the dataset back as GeoJSON.
func EncodeMilkyWay(mw *MilkyWay) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, p := range mw.Polygons {
		ring := fromCoords(p.Ring)
		if len(ring) > 0 {
			ring = append(ring, ring[0])
		}
		f := geojson.NewPolygonFeature([][][]float64{ring})
		f.SetProperty("brightness", p.Brightness)
		fc.AddFeature(f)
	}
	return fc.MarshalJSON()
}

// EncodeConstellations writes the dataset back as GeoJSON.
func EncodeConstellations(c *Constellations) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	add := func(figs []Figure, kind string) {
		for _, fig := range figs {
			f := geojson.NewLineStringFeature(fromCoords(fig.Points))
			f.SetProperty("kind", kind)
			f.SetProperty("name", fig.ID)
			fc.AddFeature(f)
		}
	}
	add(c.Lines, "line")
	add(c.Boundaries, "boundary")
	for _, l := range c.Labels {
		f := geojson.NewPointFeature([]float64{l.RA, l.Dec})
		f.SetProperty("kind", "label")
		f.SetProperty("name", l.ID)
		f.SetProperty("label", l.Label)
		fc.AddFeature(f)
	}
	return fc.MarshalJSON()
}

func toCoord(p []float64) Coord {
	ra := p[0]
	if ra < 0 {
		ra += 360
	}
	return Coord{RA: ra, Dec: p[1]}
}

func toCoords(pts [][]float64) []Coord {
	out := make([]Coord, 0, len(pts))
	for _, p := range pts {
		if len(p) < 2 {
			continue
		}
		out = append(out, toCoord(p))
	}
	return out
}

func fromCoords(cs []Coord) [][]float64 {
	out := make([][]float64, len(cs))
	for i, c := range cs {
		out[i] = []float64{c.RA, c.Dec}
	}
	return out
}
