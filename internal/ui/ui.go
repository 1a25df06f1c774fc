// Package ui provides the terminal sky chart using Bubble Tea.
package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/litescript/ls-skychart/internal/logging"
	"github.com/litescript/ls-skychart/internal/render"
	"github.com/litescript/ls-skychart/internal/session"
	"github.com/litescript/ls-skychart/internal/version"
	"github.com/litescript/ls-skychart/internal/view"
)

const (
	headerLines = 1
	footerLines = 2

	// panFraction is the share of the canvas an arrow key pans.
	panFraction = 0.125
)

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic status updates.
	TickMsg time.Time

	// animTickMsg advances the session's zoom and coast animations.
	animTickMsg time.Time

	// RedrawMsg signals the session has new data to show.
	RedrawMsg struct{}
)

// Model is the root Bubble Tea model.
type Model struct {
	sess *session.Session
	log  *logging.Logger
	sky  SkyViewModel

	width  int
	height int
	ready  bool

	statusMsg string
	animTick  int
	animating bool
	animEvery time.Duration

	// Pointer state between press and release.
	pointer *session.Pointer
}

// New creates a new root UI model. animEvery is the animation tick
// interval; it should match the momentum tick interval.
func New(sess *session.Session, opts render.Options, animEvery time.Duration, log *logging.Logger) Model {
	if animEvery <= 0 {
		animEvery = 30 * time.Millisecond
	}
	return Model{
		sess:      sess,
		log:       log,
		sky:       NewSkyViewModel(sess, opts, log),
		animEvery: animEvery,
		// Any change of cell counts as movement.
		pointer: sess.NewPointer(0.5),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if quit := m.handleKey(msg); quit {
			return m, tea.Quit
		}

	case tea.MouseMsg:
		m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.sky = m.sky.SetSize(msg.Width, msg.Height-headerLines-footerLines)

	case TickMsg:
		cmds = append(cmds, tickCmd())

	case animTickMsg:
		m.animTick++
		if m.sess.Tick() {
			cmds = append(cmds, m.animCmd())
		} else {
			m.animating = false
		}

	case RedrawMsg:
		// The next View call picks up the new data.
	}

	if !m.animating && m.sess.Animating() {
		m.animating = true
		cmds = append(cmds, m.animCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (quit bool) {
	w, h := m.sess.Size()
	panX, panY := float64(w)*panFraction, float64(h)*panFraction

	switch msg.String() {
	case "q", "ctrl+c":
		return true
	case "left", "h":
		m.sess.PanBy(panX, 0)
	case "right", "l":
		m.sess.PanBy(-panX, 0)
	case "up", "k":
		m.sess.PanBy(0, panY)
	case "down", "j":
		m.sess.PanBy(0, -panY)
	case "+", "=":
		m.sess.ZoomBy(1)
	case "-", "_":
		m.sess.ZoomBy(-1)
	case "f":
		next := view.Horizontal
		if m.sess.State().CoordSystem == view.Horizontal {
			next = view.Equatorial
		}
		if err := m.sess.SetCoordSystem(next); err != nil {
			m.statusMsg = frameError(err)
		} else {
			m.statusMsg = "Frame: " + next.String()
		}
	case "L":
		m.sky = m.sky.ToggleLabels()
	case "r":
		m.sess.ForceReload()
		m.statusMsg = "Reloading..."
	case "c":
		m.centerOnSelection()
	case "esc":
		m.sess.Select("")
		m.statusMsg = ""
	}
	return false
}

func frameError(err error) string {
	if errors.Is(err, view.ErrFrameUnavailable) {
		return "Horizontal frame needs an observer site (-lat/-lon)"
	}
	return err.Error()
}

func (m *Model) centerOnSelection() {
	id := m.sess.Selected()
	o, ok := m.sky.Lookup(id)
	if !ok {
		m.statusMsg = "Nothing selected"
		return
	}
	if err := m.sess.SetCenterEquatorial(o.RA, o.Dec); err != nil {
		m.statusMsg = err.Error()
	}
}

// handleMouse turns a press-move-release into a drag, a release without
// movement into a pick, and the wheel into zoom steps.
func (m *Model) handleMouse(msg tea.MouseMsg) {
	col, row := msg.X, msg.Y-headerLines
	p := CellToPixel(col, row)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.sess.ZoomBy(1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.sess.ZoomBy(-1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		m.pointer.Press(p.X, p.Y)
	case msg.Action == tea.MouseActionMotion:
		m.pointer.Move(p.X, p.Y)
	case msg.Action == tea.MouseActionRelease && m.pointer.Pressed():
		if m.pointer.Release() {
			m.pickAt(col, row)
		}
	}
}

func (m *Model) pickAt(col, row int) {
	sel, ok := m.sky.Pick(col, row)
	if !ok {
		m.sess.Select("")
		m.statusMsg = ""
		return
	}
	m.sess.Select(sel.ID)
	if o, found := m.sky.Lookup(sel.ID); found {
		m.statusMsg = render.Describe(o, m.sess.State())
	} else {
		m.statusMsg = sel.ID
	}
}

func (m Model) animCmd() tea.Cmd {
	return tea.Tick(m.animEvery, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return m.renderHeader() + "\n" + m.sky.View() + "\n" + m.renderFooter()
}

func (m Model) renderHeader() string {
	st := m.sess.State()
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	labels := "labels on"
	if !m.sky.Labels() {
		labels = "labels off"
	}
	parts := []string{
		renderTitle("ls-skychart"),
		dimStyle.Render("v" + version.Version),
		accentStyle.Render(st.CoordSystem.String()),
		render.CenterText(st),
		fmt.Sprintf("FOV %.4g°", st.FovDeg),
		dimStyle.Render(labels),
	}
	if st.Site != nil {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("site %.2f,%.2f %s", st.Site.LatDeg, st.Site.LonDeg, st.Date.UTC().Format("2006-01-02 15:04Z"))))
	}
	return " " + strings.Join(parts, "  ")
}

// renderTitle draws text with a blue to pink gradient.
func renderTitle(text string) string {
	from, _ := colorful.Hex("#3B82F6")
	to, _ := colorful.Hex("#EC4899")
	runes := []rune(text)
	var b strings.Builder
	for i, r := range runes {
		t := 0.0
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		c := from.BlendLuv(to, t).Clamped()
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return b.String()
}

func (m Model) renderFooter() string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	spinnerFrames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	snap := m.sess.Snapshot()

	var status string
	switch {
	case snap.LastError != nil:
		status = errorStyle.Render("ERROR: " + snap.LastError.Error())
	case !snap.HasScene || snap.TilesInFlight > 0:
		status = accentStyle.Render(spinnerFrames[m.animTick%len(spinnerFrames)]) + dimStyle.Render(" loading")
	default:
		status = dimStyle.Render(fmt.Sprintf("scene %d in %v", snap.RequestID, snap.FetchDuration.Round(time.Millisecond)))
	}
	t := m.sky.Stats().Total()
	status += dimStyle.Render(fmt.Sprintf(" | %d tiles | %d shapes %d labels", snap.TilesCached, t.Drawn, t.Labeled))
	if snap.Trajectories > 0 {
		status += dimStyle.Render(fmt.Sprintf(" | %d paths", snap.Trajectories))
	}

	line2 := dimStyle.Render("drag/arrows: pan | wheel/+/-: zoom | click: pick | c: center | f: frame | L: labels | r: reload | q: quit")
	if m.statusMsg != "" {
		line2 = accentStyle.Render(m.statusMsg)
	}
	return " " + status + "\n " + line2
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
