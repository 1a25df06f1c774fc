package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skychart/internal/catalog"
	"github.com/litescript/ls-skychart/internal/logging"
	"github.com/litescript/ls-skychart/internal/pick"
	"github.com/litescript/ls-skychart/internal/render"
	"github.com/litescript/ls-skychart/internal/session"
)

// frameState survives bubbletea's value copies of the model.
type frameState struct {
	stats render.Stats
	data  *render.Data
}

// SkyViewModel draws the chart into a terminal canvas.
type SkyViewModel struct {
	sess     *session.Session
	pipeline *render.Pipeline
	opts     render.Options
	canvas   *TermCanvas
	picks    *pick.Registry
	frame    *frameState

	labels bool
	width  int
	height int
}

// NewSkyViewModel creates a chart view over a session.
func NewSkyViewModel(sess *session.Session, opts render.Options, log *logging.Logger) SkyViewModel {
	return SkyViewModel{
		sess:     sess,
		pipeline: render.DefaultPipeline(log.Named("render")),
		opts:     opts,
		canvas:   NewTermCanvas(1, 1),
		picks:    pick.NewRegistry(),
		frame:    &frameState{},
		labels:   true,
	}
}

// SetSize updates the viewport size in cells and tells the session the
// canvas size in pixels.
func (m SkyViewModel) SetSize(width, height int) SkyViewModel {
	m.width = max(width, 1)
	m.height = max(height, 1)
	m.canvas.Resize(m.width, m.height)
	w, h := m.canvas.Size()
	m.sess.SetSize(int(w), int(h))
	return m
}

// ToggleLabels switches label placement on or off.
func (m SkyViewModel) ToggleLabels() SkyViewModel {
	m.labels = !m.labels
	return m
}

// Labels reports whether labels are drawn.
func (m SkyViewModel) Labels() bool { return m.labels }

// Draw renders one frame into the canvas.
func (m SkyViewModel) Draw() render.Stats {
	opts := m.opts
	opts.Optimized = !m.labels || m.sess.Optimized()
	data := m.sess.Data()
	ctx := render.NewContext(m.sess.State(), m.canvas, m.canvas, data, m.picks, opts)
	stats := m.pipeline.Render(ctx)
	m.frame.stats, m.frame.data = stats, data
	return stats
}

// Stats returns the statistics of the last drawn frame.
func (m SkyViewModel) Stats() render.Stats { return m.frame.stats }

// Pick resolves a cell of the last drawn frame to an object id.
func (m SkyViewModel) Pick(col, row int) (pick.Selectable, bool) {
	p := CellToPixel(col, row)
	return m.picks.HitTest(p.X, p.Y)
}

// Lookup finds an object of the last drawn frame.
func (m SkyViewModel) Lookup(id string) (catalog.Object, bool) {
	if m.frame.data == nil {
		return catalog.Object{}, false
	}
	return m.frame.data.Lookup(id)
}

// View renders the chart.
func (m SkyViewModel) View() string {
	if m.width < 20 || m.height < 5 {
		return "Sky chart requires larger terminal"
	}
	m.Draw()
	return m.canvas.String()
}

var accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
