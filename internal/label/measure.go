package label

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Measurer reports the pixel size of a text run.
type Measurer interface {
	Measure(text string) (w, h float64)
}

// FontMeasurer measures text with a bitmap font face, scaled.
type FontMeasurer struct {
	Face  font.Face
	Scale float64
}

// DefaultMeasurer measures with the 7x13 fixed face at scale 1.
func DefaultMeasurer() FontMeasurer {
	return FontMeasurer{Face: basicfont.Face7x13, Scale: 1}
}

// Measure implements Measurer.
func (m FontMeasurer) Measure(text string) (float64, float64) {
	if text == "" {
		return 0, 0
	}
	scale := m.Scale
	if scale <= 0 {
		scale = 1
	}
	adv := font.MeasureString(m.Face, text)
	h := m.Face.Metrics().Height
	return float64(adv.Ceil()) * scale, float64(h.Ceil()) * scale
}

// BoxFor measures a label and its optional sub-label.
func BoxFor(m Measurer, text, sub string) Box {
	var b Box
	b.W, b.H = m.Measure(text)
	if sub != "" {
		b.SubW, b.SubH = m.Measure(sub)
	}
	return b
}
