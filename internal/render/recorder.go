package render

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"sync"

	"github.com/litescript/ls-skychart/internal/astro"
	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/label"
)

// OpKind names a recorded drawing call.
type OpKind string

const (
	OpClear     OpKind = "clear"
	OpPolyline  OpKind = "polyline"
	OpPolygon   OpKind = "polygon"
	OpCircle    OpKind = "circle"
	OpEllipse   OpKind = "ellipse"
	OpText      OpKind = "text"
	OpTriangles OpKind = "triangles"
	OpPoints    OpKind = "points"
)

// Op is one recorded drawing call.
type Op struct {
	Kind    OpKind       `json:"kind"`
	Points  []geom.Point `json:"points,omitempty"`
	Indices []int        `json:"indices,omitempty"`
	Sizes   []float64    `json:"sizes,omitempty"`
	Center  geom.Point   `json:"center,omitzero"`
	Radius  float64      `json:"radius,omitempty"`
	RX      float64      `json:"rx,omitempty"`
	RY      float64      `json:"ry,omitempty"`
	Angle   float64      `json:"angle,omitempty"`
	Text    string       `json:"text,omitempty"`
	Color   string       `json:"color,omitempty"`
	Width   float64      `json:"width,omitempty"`
	Filled  bool         `json:"filled,omitempty"`
	Dashed  bool         `json:"dashed,omitempty"`
}

// Recorder is a Canvas and Rasterizer that keeps every call. It backs
// headless snapshots and tests.
type Recorder struct {
	w, h    float64
	measure label.Measurer

	mu  sync.Mutex
	ops []Op
}

// NewRecorder returns a recorder for a w×h surface measuring text with the
// default bitmap face.
func NewRecorder(w, h float64) *Recorder {
	return &Recorder{w: w, h: h, measure: label.DefaultMeasurer()}
}

func (r *Recorder) add(op Op) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

func styleColor(s Style) color.RGBA {
	if s.Filled && s.Fill != (color.RGBA{}) {
		return s.Fill
	}
	return s.Stroke
}

func (r *Recorder) Size() (float64, float64) { return r.w, r.h }

func (r *Recorder) Polyline(pts []geom.Point, s Style) {
	r.add(Op{Kind: OpPolyline, Points: append([]geom.Point(nil), pts...), Color: Hex(s.Stroke), Width: s.LineWidth, Dashed: s.Dashed})
}

func (r *Recorder) Polygon(pts []geom.Point, s Style) {
	r.add(Op{Kind: OpPolygon, Points: append([]geom.Point(nil), pts...), Color: Hex(styleColor(s)), Width: s.LineWidth, Filled: s.Filled, Dashed: s.Dashed})
}

func (r *Recorder) Circle(c geom.Point, radius float64, s Style) {
	r.add(Op{Kind: OpCircle, Center: c, Radius: radius, Color: Hex(styleColor(s)), Width: s.LineWidth, Filled: s.Filled, Dashed: s.Dashed})
}

func (r *Recorder) Ellipse(c geom.Point, rx, ry, angle float64, s Style) {
	r.add(Op{Kind: OpEllipse, Center: c, RX: rx, RY: ry, Angle: angle, Color: Hex(styleColor(s)), Width: s.LineWidth, Filled: s.Filled, Dashed: s.Dashed})
}

func (r *Recorder) Text(p geom.Point, text string, c color.RGBA) {
	r.add(Op{Kind: OpText, Center: p, Text: text, Color: Hex(c)})
}

func (r *Recorder) Measure(text string) (float64, float64) { return r.measure.Measure(text) }

func (r *Recorder) Clear(c color.RGBA) {
	r.mu.Lock()
	r.ops = append(r.ops[:0], Op{Kind: OpClear, Color: Hex(c)})
	r.mu.Unlock()
}

func (r *Recorder) DrawTriangles(verts []geom.Point, indices []int, c color.RGBA) {
	r.add(Op{Kind: OpTriangles, Points: append([]geom.Point(nil), verts...), Indices: append([]int(nil), indices...), Color: Hex(c)})
}

func (r *Recorder) DrawPoints(pts []PointSprite) {
	op := Op{Kind: OpPoints, Points: make([]geom.Point, len(pts)), Sizes: make([]float64, len(pts))}
	for i, p := range pts {
		op.Points[i] = p.P
		op.Sizes[i] = p.Size
	}
	if len(pts) > 0 {
		op.Color = Hex(pts[0].Color)
	}
	r.add(op)
}

// Ops returns a copy of the recorded calls.
func (r *Recorder) Ops() []Op {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Op(nil), r.ops...)
}

// Count returns how many calls of kind k were recorded.
func (r *Recorder) Count(k OpKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, op := range r.ops {
		if op.Kind == k {
			n++
		}
	}
	return n
}

// Texts returns the drawn strings in order.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, op := range r.ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Reset drops all recorded calls.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.ops = r.ops[:0]
	r.mu.Unlock()
}

// FrameExport is the JSON form of a recorded frame.
type FrameExport struct {
	Width  float64           `json:"width"`
	Height float64           `json:"height"`
	View   ViewExport        `json:"view"`
	Layers map[string]Output `json:"layers,omitempty"`
	Ops    []Op              `json:"ops"`
}

// ViewExport describes the camera a frame was drawn for.
type ViewExport struct {
	CoordSystem string  `json:"coord_system"`
	CenterPhi   float64 `json:"center_phi_deg"`
	CenterTheta float64 `json:"center_theta_deg"`
	FovDeg      float64 `json:"fov_deg"`
}

// Export bundles the recorded calls with the frame's view and stats.
func (r *Recorder) Export(ctx *Context, stats Stats) *FrameExport {
	fe := &FrameExport{Width: r.w, Height: r.h, Layers: stats.Layers, Ops: r.Ops()}
	if ctx != nil {
		fe.View = ViewExport{
			CoordSystem: ctx.State.CoordSystem.String(),
			CenterPhi:   astro.RadToDeg(ctx.State.CenterPhi),
			CenterTheta: astro.RadToDeg(ctx.State.CenterTheta),
			FovDeg:      ctx.State.FovDeg,
		}
	}
	return fe
}

// WriteJSON writes the export as indented JSON.
func (fe *FrameExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fe); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return nil
}
