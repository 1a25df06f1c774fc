package render

import (
	"time"

	"github.com/litescript/ls-skychart/internal/logging"
)

// Output reports what a renderer did this frame.
type Output struct {
	Drawn   int
	Labeled int
	Skipped int
}

// Renderer draws one layer.
type Renderer interface {
	Name() string
	Draw(ctx *Context) Output
}

// Stats summarizes a frame.
type Stats struct {
	Layers   map[string]Output
	Duration time.Duration
}

// Total sums the per-layer outputs.
func (s Stats) Total() Output {
	var t Output
	for _, o := range s.Layers {
		t.Drawn += o.Drawn
		t.Labeled += o.Labeled
		t.Skipped += o.Skipped
	}
	return t
}

// Pipeline draws its renderers in order, back to front.
type Pipeline struct {
	renderers []Renderer
	log       *logging.Logger
}

// NewPipeline creates a pipeline over the given renderers.
func NewPipeline(log *logging.Logger, renderers ...Renderer) *Pipeline {
	return &Pipeline{renderers: renderers, log: log}
}

// DefaultPipeline returns the standard layer stack. Point layers come after
// line layers so their labels get first pick of the free space they need
// most; highlights are last so they draw on top.
func DefaultPipeline(log *logging.Logger) *Pipeline {
	return NewPipeline(log,
		MilkyWayRenderer{},
		GridRenderer{},
		EclipticRenderer{},
		HorizonRenderer{},
		ConstellationRenderer{},
		PlanetRenderer{},
		StarRenderer{},
		DSORenderer{},
		TrajectoryRenderer{},
		HighlightRenderer{},
	)
}

// Renderers returns the layer list.
func (p *Pipeline) Renderers() []Renderer { return p.renderers }

// Render draws a frame: it clears the surfaces, resets the label and pick
// state, then runs every renderer.
func (p *Pipeline) Render(ctx *Context) Stats {
	start := time.Now()
	bg := ParseColor(ctx.Theme.Background)
	if ctx.Raster != nil {
		ctx.Raster.Clear(bg)
	}
	ctx.Labels.Reset(ctx.Width(), ctx.Height())
	ctx.Picks.Reset()

	stats := Stats{Layers: make(map[string]Output, len(p.renderers))}
	for _, r := range p.renderers {
		stats.Layers[r.Name()] = r.Draw(ctx)
	}
	stats.Duration = time.Since(start)

	if !ctx.Frame.Available() {
		p.log.Debug("frame %s unavailable, only frame-free layers drawn", ctx.State.CoordSystem)
	}
	t := stats.Total()
	p.log.Debug("frame drawn in %v: %d shapes, %d labels, %d skipped", stats.Duration, t.Drawn, t.Labeled, t.Skipped)
	return stats
}
