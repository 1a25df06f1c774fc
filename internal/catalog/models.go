// Package catalog provides the data model the chart draws and the providers
// that supply it: scene snapshots, zone tiles of faint stars, and the large
// shared datasets (Milky Way isophotes, constellation figures).
package catalog

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a dataset or tile set does not exist.
var ErrNotFound = errors.New("catalog: not found")

// ObjectType classifies drawable objects.
type ObjectType string

const (
	TypeStar       ObjectType = "star"
	TypeGalaxy     ObjectType = "galaxy"
	TypeNebula     ObjectType = "nebula"
	TypeCluster    ObjectType = "cluster"
	TypePlanet     ObjectType = "planet"
	TypeSun        ObjectType = "sun"
	TypeMoon       ObjectType = "moon"
	TypeComet      ObjectType = "comet"
	TypeSpacecraft ObjectType = "spacecraft"
	TypeAsterism   ObjectType = "asterism"
	TypeUnknown    ObjectType = "unknown"
)

// Coord is an equatorial position in degrees.
type Coord struct {
	RA  float64 `json:"ra"`
	Dec float64 `json:"dec"`
}

// Star is one catalog star.
type Star struct {
	ID   string  `json:"id,omitempty"`
	Name string  `json:"name,omitempty"`
	RA   float64 `json:"ra"`
	Dec  float64 `json:"dec"`
	Mag  float64 `json:"mag"`
	BV   float64 `json:"bv,omitempty"`
}

// Object is a deep-sky object, planet or highlight. Sizes are arcminutes,
// the position angle is degrees east of north.
type Object struct {
	ID        string     `json:"id"`
	Label     string     `json:"label,omitempty"`
	Type      ObjectType `json:"type"`
	RA        float64    `json:"ra"`
	Dec       float64    `json:"dec"`
	Mag       float64    `json:"mag,omitempty"`
	Size      float64    `json:"size,omitempty"`
	MajorAxis float64    `json:"major_axis,omitempty"`
	MinorAxis float64    `json:"minor_axis,omitempty"`
	PosAngle  float64    `json:"pos_angle,omitempty"`
}

// TrajectoryPoint is one dated position along a path.
type TrajectoryPoint struct {
	RA    float64   `json:"ra"`
	Dec   float64   `json:"dec"`
	Time  time.Time `json:"time"`
	Label string    `json:"label,omitempty"`
}

// Trajectory is the apparent path of a moving object.
type Trajectory struct {
	ID     string            `json:"id"`
	Label  string            `json:"label,omitempty"`
	Points []TrajectoryPoint `json:"points"`
}

// Layers toggles what gets drawn.
type Layers struct {
	Grid           bool `json:"grid" yaml:"grid"`
	Stars          bool `json:"stars" yaml:"stars"`
	DSO            bool `json:"dso" yaml:"dso"`
	Constellations bool `json:"constellations" yaml:"constellations"`
	Boundaries     bool `json:"boundaries" yaml:"boundaries"`
	MilkyWay       bool `json:"milky_way" yaml:"milky_way"`
	Planets        bool `json:"planets" yaml:"planets"`
	Trajectories   bool `json:"trajectories" yaml:"trajectories"`
	Ecliptic       bool `json:"ecliptic" yaml:"ecliptic"`
	Horizon        bool `json:"horizon" yaml:"horizon"`
	Labels         bool `json:"labels" yaml:"labels"`
}

// AllLayers enables every layer.
func AllLayers() Layers {
	return Layers{
		Grid: true, Stars: true, DSO: true, Constellations: true, Boundaries: true,
		MilkyWay: true, Planets: true, Trajectories: true, Ecliptic: true,
		Horizon: true, Labels: true,
	}
}

// Theme carries colors (hex "#rrggbb") and stroke/font scales.
type Theme struct {
	Background    string  `json:"background" yaml:"background"`
	Grid          string  `json:"grid" yaml:"grid"`
	Star          string  `json:"star" yaml:"star"`
	DSO           string  `json:"dso" yaml:"dso"`
	Constellation string  `json:"constellation" yaml:"constellation"`
	Boundary      string  `json:"boundary" yaml:"boundary"`
	MilkyWay      string  `json:"milky_way" yaml:"milky_way"`
	Planet        string  `json:"planet" yaml:"planet"`
	Trajectory    string  `json:"trajectory" yaml:"trajectory"`
	Ecliptic      string  `json:"ecliptic" yaml:"ecliptic"`
	Horizon       string  `json:"horizon" yaml:"horizon"`
	Highlight     string  `json:"highlight" yaml:"highlight"`
	Label         string  `json:"label" yaml:"label"`
	LineWidth     float64 `json:"line_width" yaml:"line_width"`
	GridLineWidth float64 `json:"grid_line_width" yaml:"grid_line_width"`
	FontScale     float64 `json:"font_scale" yaml:"font_scale"`
}

// DefaultTheme is the dark night theme.
func DefaultTheme() Theme {
	return Theme{
		Background:    "#05070d",
		Grid:          "#1f3b5a",
		Star:          "#f4f4ff",
		DSO:           "#7fb3ff",
		Constellation: "#3f6f8f",
		Boundary:      "#5a4a2a",
		MilkyWay:      "#1a2233",
		Planet:        "#ffd27f",
		Trajectory:    "#d0c8ff",
		Ecliptic:      "#7a5a1f",
		Horizon:       "#2f6f2f",
		Highlight:     "#ff5f5f",
		Label:         "#b0b8c8",
		LineWidth:     1,
		GridLineWidth: 0.8,
		FontScale:     1,
	}
}

// ZoneRef addresses one tile of the zone-tiled star catalog.
type ZoneRef struct {
	Level int `json:"level"`
	Zone  int `json:"zone"`
}

// Tile is a fetched zone.
type Tile struct {
	Level int    `json:"level"`
	Zone  int    `json:"zone"`
	Stars []Star `json:"stars"`
}

// DatasetIDs names the current version of each shared dataset; a changed id
// invalidates the cached copy.
type DatasetIDs struct {
	MilkyWay       string `json:"milky_way"`
	Constellations string `json:"constellations"`
}

// Scene is the provider's answer to a view: metadata, the object lists and
// the tiles the view needs.
type Scene struct {
	RequestID    uint64       `json:"request_id"`
	Center       Coord        `json:"center"`
	FovDeg       float64      `json:"fov_deg"`
	CoordSystem  string       `json:"coord_system"`
	Layers       Layers       `json:"layers"`
	Theme        Theme        `json:"theme"`
	CatalogID    string       `json:"catalog_id"`
	MagLimit     float64      `json:"mag_limit"`
	StarsPreview []Star       `json:"stars_preview"`
	DSO          []Object     `json:"dso"`
	Planets      []Object     `json:"planets"`
	Trajectories []Trajectory `json:"trajectories"`
	Highlights   []Object     `json:"highlights"`
	Selection    []ZoneRef    `json:"selection"`
	DatasetIDs   DatasetIDs   `json:"dataset_ids"`
}

// MilkyWayPolygon is one isophote ring, brightness in [0, 1].
type MilkyWayPolygon struct {
	Brightness float64
	Ring       []Coord
}

// MilkyWay is the shared Milky Way dataset.
type MilkyWay struct {
	ID       string
	Polygons []MilkyWayPolygon
}

// Figure is a constellation stick figure or boundary polyline.
type Figure struct {
	ID     string
	Points []Coord
}

// Constellations is the shared constellation dataset.
type Constellations struct {
	ID         string
	Lines      []Figure
	Boundaries []Figure
	Labels     []Object
}
