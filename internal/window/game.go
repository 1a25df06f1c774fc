package window

import (
	"errors"
	"fmt"
	"image/color"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/litescript/ls-skychart/internal/geom"
	"github.com/litescript/ls-skychart/internal/logging"
	"github.com/litescript/ls-skychart/internal/pick"
	"github.com/litescript/ls-skychart/internal/render"
	"github.com/litescript/ls-skychart/internal/session"
	"github.com/litescript/ls-skychart/internal/view"
)

const (
	panFraction = 0.125
	clickSlop   = 4
	hudPad      = 8
)

var (
	hudText  = color.RGBA{R: 230, G: 230, B: 210, A: 255}
	hudDim   = color.RGBA{R: 130, G: 140, B: 170, A: 255}
	hudError = color.RGBA{R: 232, G: 74, B: 39, A: 255}
	hudPanel = color.RGBA{A: 150}
)

// Game is the ebiten game driving one session. The chart is redrawn into an
// offscreen image only when the session reports new data, the input changes
// the camera, or an animation is running.
type Game struct {
	sess     *session.Session
	pipeline *render.Pipeline
	opts     render.Options
	surface  *Surface
	hud      *Surface
	picks    *pick.Registry
	pointer  *session.Pointer
	log      *logging.Logger

	chart  *ebiten.Image
	width  int
	height int
	dirty  atomic.Bool

	stats  render.Stats
	data   *render.Data
	labels bool
	status string
}

// NewGame creates a window front end over a session.
func NewGame(sess *session.Session, opts render.Options, fontSize float64, log *logging.Logger) (*Game, error) {
	face, err := NewFace(fontSize)
	if err != nil {
		return nil, err
	}
	g := &Game{
		sess:     sess,
		pipeline: render.DefaultPipeline(log.Named("render")),
		opts:     opts,
		surface:  NewSurface(face),
		hud:      NewSurface(face),
		picks:    pick.NewRegistry(),
		pointer:  sess.NewPointer(clickSlop),
		log:      log,
		labels:   true,
	}
	g.dirty.Store(true)
	return g, nil
}

// Redraw marks the chart stale. Safe to call from any goroutine.
func (g *Game) Redraw() { g.dirty.Store(true) }

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if quit := g.handleKeys(); quit {
		return ebiten.Termination
	}
	g.handleMouse()
	if g.sess.Animating() {
		g.sess.Tick()
		g.Redraw()
	}
	return nil
}

func (g *Game) handleKeys() (quit bool) {
	panX, panY := float64(g.width)*panFraction, float64(g.height)*panFraction
	pressed := func(keys ...ebiten.Key) bool {
		for _, k := range keys {
			if inpututil.IsKeyJustPressed(k) {
				return true
			}
		}
		return false
	}

	switch {
	case pressed(ebiten.KeyQ):
		return true
	case pressed(ebiten.KeyArrowLeft):
		g.sess.PanBy(panX, 0)
	case pressed(ebiten.KeyArrowRight):
		g.sess.PanBy(-panX, 0)
	case pressed(ebiten.KeyArrowUp):
		g.sess.PanBy(0, panY)
	case pressed(ebiten.KeyArrowDown):
		g.sess.PanBy(0, -panY)
	case pressed(ebiten.KeyEqual, ebiten.KeyNumpadAdd):
		g.sess.ZoomBy(1)
	case pressed(ebiten.KeyMinus, ebiten.KeyNumpadSubtract):
		g.sess.ZoomBy(-1)
	case pressed(ebiten.KeyF):
		g.toggleFrame()
	case pressed(ebiten.KeyL):
		g.labels = !g.labels
		g.Redraw()
	case pressed(ebiten.KeyR):
		g.sess.ForceReload()
		g.status = "Reloading..."
	case pressed(ebiten.KeyC):
		g.centerOnSelection()
	case pressed(ebiten.KeyEscape):
		g.sess.Select("")
		g.status = ""
		g.Redraw()
	}
	return false
}

func (g *Game) handleMouse() {
	if _, wy := ebiten.Wheel(); wy > 0 {
		g.sess.ZoomBy(1)
	} else if wy < 0 {
		g.sess.ZoomBy(-1)
	}

	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.pointer.Press(x, y)
	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		if g.pointer.Release() {
			g.pickAt(x, y)
		}
	case ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		g.pointer.Move(x, y)
	}
}

func (g *Game) toggleFrame() {
	next := view.Horizontal
	if g.sess.State().CoordSystem == view.Horizontal {
		next = view.Equatorial
	}
	if err := g.sess.SetCoordSystem(next); err != nil {
		if errors.Is(err, view.ErrFrameUnavailable) {
			g.status = "Horizontal frame needs an observer site"
		} else {
			g.status = err.Error()
		}
		return
	}
	g.status = "Frame: " + next.String()
}

func (g *Game) pickAt(x, y float64) {
	sel, ok := g.picks.HitTest(x, y)
	if !ok {
		g.sess.Select("")
		g.status = ""
		return
	}
	g.sess.Select(sel.ID)
	g.status = sel.ID
	if g.data != nil {
		if o, found := g.data.Lookup(sel.ID); found {
			g.status = render.Describe(o, g.sess.State())
		}
	}
	g.Redraw()
}

func (g *Game) centerOnSelection() {
	if g.data == nil {
		return
	}
	o, ok := g.data.Lookup(g.sess.Selected())
	if !ok {
		g.status = "Nothing selected"
		return
	}
	if err := g.sess.SetCenterEquatorial(o.RA, o.Dec); err != nil {
		g.status = err.Error()
	}
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.chart == nil {
		return
	}
	if g.dirty.Swap(false) {
		g.drawChart()
	}
	screen.DrawImage(g.chart, nil)
	g.drawHUD(screen)
}

func (g *Game) drawChart() {
	start := time.Now()
	opts := g.opts
	opts.Optimized = !g.labels || g.sess.Optimized()
	data := g.sess.Data()
	g.surface.Begin(g.chart)
	ctx := render.NewContext(g.sess.State(), g.surface, g.surface, data, g.picks, opts)
	g.stats = g.pipeline.Render(ctx)
	g.data = data
	g.log.Debug("frame: %d shapes, optimized=%v, %v", g.stats.Total().Drawn, opts.Optimized, time.Since(start))
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	g.hud.Begin(screen)
	st := g.sess.State()
	top := fmt.Sprintf("%s  %s  fov %.1f°", st.CoordSystem, render.CenterText(st), st.FovDeg)
	g.hudLine(screen, 0, top, hudText)

	snap := g.sess.Snapshot()
	t := g.stats.Total()
	line, col := fmt.Sprintf("%d tiles | %d shapes %d labels | %.0f fps", snap.TilesCached, t.Drawn, t.Labeled, ebiten.ActualFPS()), hudDim
	switch {
	case snap.LastError != nil:
		line, col = "ERROR: "+snap.LastError.Error(), hudError
	case !snap.HasScene || snap.TilesInFlight > 0:
		line = "loading | " + line
	}
	if g.status != "" {
		line, col = g.status, hudText
	}
	_, h := g.hud.Measure(line)
	g.hudLine(screen, float64(g.height)-h-2*hudPad, line, col)
}

func (g *Game) hudLine(screen *ebiten.Image, y float64, text string, col color.RGBA) {
	w, h := g.hud.Measure(text)
	vector.DrawFilledRect(screen, 0, float32(y), float32(w+2*hudPad), float32(h+2*hudPad), hudPanel, false)
	g.hud.Text(geom.Point{X: hudPad, Y: y + hudPad}, text, col)
}

// Layout implements ebiten.Game. The chart follows the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, h := max(outsideWidth, 1), max(outsideHeight, 1)
	if w != g.width || h != g.height {
		g.resize(w, h)
	}
	return w, h
}

func (g *Game) resize(w, h int) {
	g.width, g.height = w, h
	if g.chart != nil {
		g.chart.Deallocate()
	}
	g.chart = ebiten.NewImage(w, h)
	g.sess.SetSize(w, h)
	g.Redraw()
}
