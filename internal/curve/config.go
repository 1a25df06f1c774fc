// Package curve turns long curves on the sphere (grid meridians and
// parallels, constellation boundaries, the ecliptic) into short screen
// segments: step selection, sampling, edge labels, error-bounded flattening
// and viewport clipping.
package curve

import (
	"math"

	"github.com/litescript/ls-skychart/internal/geom"
)

// Config holds the grid and tracing tunables.
type Config struct {
	MinLines      float64 `yaml:"min_lines" env:"MIN_LINES"`           // grid density threshold across the field radius
	SampleDivisor float64 `yaml:"sample_divisor" env:"SAMPLE_DIVISOR"` // sample step = fieldRadius / SampleDivisor
	MinSampleDeg  float64 `yaml:"min_sample_deg" env:"MIN_SAMPLE_DEG"` // floor on the sample step
	EdgeMargin    float64 `yaml:"edge_margin" env:"EDGE_MARGIN"`       // skip edge crossings this close to a corner, px
	LabelOffset   float64 `yaml:"label_offset" env:"LABEL_OFFSET"`     // distance of edge labels from the crossing, px
	ClipFactor    float64 `yaml:"clip_factor" env:"CLIP_FACTOR"`       // clip padding = max(lineWidth*ClipFactor, MinClipPad)
	MinClipPad    float64 `yaml:"min_clip_pad" env:"MIN_CLIP_PAD"`
}

// DefaultConfig returns the stock grid settings.
func DefaultConfig() Config {
	return Config{
		MinLines:      4,
		SampleDivisor: 20,
		MinSampleDeg:  0.2,
		EdgeMargin:    2,
		LabelOffset:   6,
		ClipFactor:    1.5,
		MinClipPad:    2,
	}
}

// SampleStep returns the angular sampling increment in radians for a field
// radius in radians.
func (c Config) SampleStep(fieldRadius float64) float64 {
	return math.Max(fieldRadius/c.SampleDivisor, c.MinSampleDeg*math.Pi/180)
}

// ClipRect returns the canvas rectangle grown by the stroke padding.
func (c Config) ClipRect(width, height, lineWidth float64) geom.Rect {
	pad := math.Max(lineWidth*c.ClipFactor, c.MinClipPad)
	return geom.Rect{MaxX: width, MaxY: height}.Inset(-pad)
}

// FlattenConfig bounds boundary flattening.
type FlattenConfig struct {
	Tolerance float64 `yaml:"tolerance" env:"TOLERANCE"` // max midpoint deviation from the chord, px
	MaxDepth  int     `yaml:"max_depth" env:"MAX_DEPTH"`
}

// MobileFlatten trades fidelity for fewer segments on small devices.
func MobileFlatten() FlattenConfig { return FlattenConfig{Tolerance: 2.4, MaxDepth: 4} }

// DesktopFlatten is the full-fidelity preset.
func DesktopFlatten() FlattenConfig { return FlattenConfig{Tolerance: 1.2, MaxDepth: 7} }

// FlattenPreset picks the device-class preset.
func FlattenPreset(mobileLike bool) FlattenConfig {
	if mobileLike {
		return MobileFlatten()
	}
	return DesktopFlatten()
}
