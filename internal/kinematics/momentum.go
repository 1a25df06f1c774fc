package kinematics

import (
	"math"
	"time"
)

// MomentumConfig tunes post-release drag deceleration. Speeds are pixels per
// second.
type MomentumConfig struct {
	Window          time.Duration `yaml:"window" env:"WINDOW"`
	MinSpeed        float64       `yaml:"min_speed" env:"MIN_SPEED"`
	NegligibleSpeed float64       `yaml:"negligible_speed" env:"NEGLIGIBLE_SPEED"`
	Steps           int           `yaml:"steps" env:"STEPS"`
	TickInterval    time.Duration `yaml:"tick_interval" env:"TICK_INTERVAL"`
}

// DefaultMomentumConfig returns the default momentum settings.
func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		Window:          100 * time.Millisecond,
		MinSpeed:        150,
		NegligibleSpeed: 10,
		Steps:           30,
		TickInterval:    30 * time.Millisecond,
	}
}

// Sample is one timestamped pointer position.
type Sample struct {
	T    time.Time
	X, Y float64
}

// Momentum tracks a drag and the coast that follows its release.
type Momentum struct {
	cfg   MomentumConfig
	decay float64

	samples  []Sample
	dragging bool

	phase  Phase
	vx, vy float64
	x, y   float64
	step   int
}

// NewMomentum creates a momentum tracker.
func NewMomentum(cfg MomentumConfig) *Momentum {
	def := DefaultMomentumConfig()
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Steps <= 0 {
		cfg.Steps = def.Steps
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	return &Momentum{
		cfg:   cfg,
		decay: math.Pow(0.05, 1/float64(cfg.Steps)),
	}
}

// Decay returns the per-step velocity multiplier.
func (m *Momentum) Decay() float64 { return m.decay }

// Phase returns the current state.
func (m *Momentum) Phase() Phase { return m.phase }

// Dragging reports whether a drag is in progress.
func (m *Momentum) Dragging() bool { return m.dragging }

// Velocity returns the current coast velocity.
func (m *Momentum) Velocity() (vx, vy float64) { return m.vx, m.vy }

// Begin starts a drag, cancelling any coast in progress.
func (m *Momentum) Begin(now time.Time, x, y float64) {
	m.Cancel()
	m.dragging = true
	m.samples = append(m.samples, Sample{T: now, X: x, Y: y})
}

// Move records a pointer position during a drag.
func (m *Momentum) Move(now time.Time, x, y float64) {
	if !m.dragging {
		return
	}
	m.samples = append(m.samples, Sample{T: now, X: x, Y: y})
	m.prune(now)
}

func (m *Momentum) prune(now time.Time) {
	cut := 0
	for cut < len(m.samples)-1 && now.Sub(m.samples[cut].T) > m.cfg.Window {
		cut++
	}
	m.samples = m.samples[cut:]
}

// Release ends the drag. It returns true when the release was fast enough
// to coast; otherwise the tracker goes straight to Settling.
func (m *Momentum) Release(now time.Time) bool {
	if !m.dragging {
		return false
	}
	m.dragging = false
	m.prune(now)

	first, last := m.samples[0], m.samples[len(m.samples)-1]
	m.samples = m.samples[:0]
	m.x, m.y = last.X, last.Y
	m.vx, m.vy = 0, 0

	// A sample older than the window means the pointer paused before release.
	if dt := last.T.Sub(first.T).Seconds(); dt > 0 && now.Sub(first.T) <= m.cfg.Window {
		m.vx = (last.X - first.X) / dt
		m.vy = (last.Y - first.Y) / dt
	}

	if math.Hypot(m.vx, m.vy) <= m.cfg.MinSpeed {
		m.vx, m.vy = 0, 0
		m.phase = Settling
		return false
	}
	m.phase = Active
	m.step = 0
	return true
}

// Step advances the coast by one tick and returns the pointer movement for
// it. more is false once the coast has ended and the tracker is Settling.
func (m *Momentum) Step() (dx, dy float64, more bool) {
	if m.phase != Active {
		return 0, 0, false
	}
	m.vx *= m.decay
	m.vy *= m.decay
	dt := m.cfg.TickInterval.Seconds()
	dx, dy = m.vx*dt, m.vy*dt
	m.x += dx
	m.y += dy
	m.step++

	if m.step >= m.cfg.Steps || math.Hypot(m.vx, m.vy) < m.cfg.NegligibleSpeed {
		m.phase = Settling
		return dx, dy, false
	}
	return dx, dy, true
}

// Position returns the simulated pointer position.
func (m *Momentum) Position() (x, y float64) { return m.x, m.y }

// Settle completes the final refresh. It reports whether one was due.
func (m *Momentum) Settle() bool {
	if m.phase != Settling {
		return false
	}
	m.phase = Idle
	return true
}

// Cancel stops everything and returns to Idle.
func (m *Momentum) Cancel() {
	m.dragging = false
	m.samples = m.samples[:0]
	m.vx, m.vy = 0, 0
	m.step = 0
	m.phase = Idle
}
