// Package window is the desktop front end: an ebiten game that draws the
// chart with vector strokes and GPU triangles.
package window

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/render"
)

// maxBatch keeps a DrawTriangles call inside 16-bit indices.
const maxBatch = 65535 / 3 * 3

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

// Surface draws render calls onto an ebiten image. It implements both
// render.Canvas and render.Rasterizer.
type Surface struct {
	dst       *ebiten.Image
	face      *text.GoTextFace
	antialias bool
}

// NewFace loads the bundled Go Regular face at size points.
func NewFace(size float64) (*text.GoTextFace, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	return &text.GoTextFace{Source: src, Size: size}, nil
}

// NewSurface returns a surface drawing text with face.
func NewSurface(face *text.GoTextFace) *Surface {
	return &Surface{face: face, antialias: true}
}

// Begin targets dst for the following calls.
func (s *Surface) Begin(dst *ebiten.Image) { s.dst = dst }

// Size implements render.Canvas.
func (s *Surface) Size() (float64, float64) {
	if s.dst == nil {
		return 0, 0
	}
	b := s.dst.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Polyline implements render.Canvas.
func (s *Surface) Polyline(pts []geom.Point, st render.Style) {
	w := lineWidth(st)
	runs := [][]geom.Point{pts}
	if st.Dashed {
		runs = geom.DashRuns(pts, 4*w, 3*w)
	}
	for _, run := range runs {
		for i := 1; i < len(run); i++ {
			a, b := run[i-1], run[i]
			vector.StrokeLine(s.dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), float32(w), st.Stroke, s.antialias)
		}
	}
}

// Polygon implements render.Canvas.
func (s *Surface) Polygon(pts []geom.Point, st render.Style) {
	if len(pts) < 3 {
		return
	}
	if st.Filled {
		s.DrawTriangles(pts, geom.Triangulate(pts), st.Fill)
	}
	if st.Stroke.A > 0 {
		closed := append(pts[:len(pts):len(pts)], pts[0])
		s.Polyline(closed, st)
	}
}

// Circle implements render.Canvas.
func (s *Surface) Circle(c geom.Point, r float64, st render.Style) {
	if st.Filled {
		vector.DrawFilledCircle(s.dst, float32(c.X), float32(c.Y), float32(r), st.Fill, s.antialias)
	}
	if st.Stroke.A > 0 {
		vector.StrokeCircle(s.dst, float32(c.X), float32(c.Y), float32(r), float32(lineWidth(st)), st.Stroke, s.antialias)
	}
}

// Ellipse implements render.Canvas.
func (s *Surface) Ellipse(c geom.Point, rx, ry, angle float64, st render.Style) {
	n := max(int(math.Ceil(math.Max(rx, ry))), 16)
	s.Polygon(geom.EllipsePoints(c, rx, ry, angle, min(n, 128)), st)
}

// Text implements render.Canvas.
func (s *Surface) Text(p geom.Point, str string, c color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(p.X, p.Y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(s.dst, str, s.face, op)
}

// Measure implements render.Canvas.
func (s *Surface) Measure(str string) (float64, float64) {
	if str == "" {
		return 0, 0
	}
	return text.Measure(str, s.face, s.face.Size*1.2)
}

// Clear implements render.Rasterizer.
func (s *Surface) Clear(c color.RGBA) { s.dst.Fill(c) }

// DrawTriangles implements render.Rasterizer.
func (s *Surface) DrawTriangles(verts []geom.Point, indices []int, c color.RGBA) {
	for start := 0; start < len(indices); start += maxBatch {
		end := min(start+maxBatch, len(indices))
		vs, is := triangleVertices(verts, indices[start:end], c)
		s.dst.DrawTriangles(vs, is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: s.antialias})
	}
}

// DrawPoints implements render.Rasterizer.
func (s *Surface) DrawPoints(pts []render.PointSprite) {
	for _, p := range pts {
		r := math.Max(p.Size/2, 0.5)
		vector.DrawFilledCircle(s.dst, float32(p.P.X), float32(p.P.Y), float32(r), p.Color, s.antialias)
	}
}

// triangleVertices unrolls indexed triangles into ebiten vertices, one per
// index, so every batch indexes from zero.
func triangleVertices(verts []geom.Point, indices []int, c color.RGBA) ([]ebiten.Vertex, []uint16) {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	r, g, b, a := float32(n.R)/255, float32(n.G)/255, float32(n.B)/255, float32(n.A)/255
	vs := make([]ebiten.Vertex, 0, len(indices))
	is := make([]uint16, 0, len(indices))
	for t := 0; t+2 < len(indices); t += 3 {
		tri := indices[t : t+3]
		if !validIndices(tri, len(verts)) {
			continue
		}
		for _, i := range tri {
			p := verts[i]
			is = append(is, uint16(len(vs)))
			vs = append(vs, ebiten.Vertex{
				DstX: float32(p.X), DstY: float32(p.Y),
				SrcX: 1, SrcY: 1,
				ColorR: r, ColorG: g, ColorB: b, ColorA: a,
			})
		}
	}
	return vs, is
}

func validIndices(tri []int, n int) bool {
	for _, i := range tri {
		if i < 0 || i >= n {
			return false
		}
	}
	return true
}

func lineWidth(st render.Style) float64 {
	return math.Max(st.LineWidth, 1)
}
