package kinematics

import (
	"time"
)

// ZoomConfig tunes stepped zoom.
type ZoomConfig struct {
	Levels   []float64     `yaml:"levels"`
	Duration time.Duration `yaml:"duration" env:"DURATION"`
	Throttle time.Duration `yaml:"throttle" env:"THROTTLE"`
	Debounce time.Duration `yaml:"debounce" env:"DEBOUNCE"`
}

// DefaultZoomConfig returns the default field-of-view ladder, widest first.
func DefaultZoomConfig() ZoomConfig {
	return ZoomConfig{
		Levels:   []float64{180, 120, 90, 60, 45, 30, 20, 10, 5, 2, 1, 0.5},
		Duration: 400 * time.Millisecond,
		Throttle: 120 * time.Millisecond,
		Debounce: 250 * time.Millisecond,
	}
}

// Zoom animates the field of view between discrete levels.
type Zoom struct {
	cfg ZoomConfig

	phase   Phase
	index   int
	from    float64
	to      float64
	current float64
	start   time.Time
}

// NewZoom starts at the given level index.
func NewZoom(cfg ZoomConfig, index int) *Zoom {
	def := DefaultZoomConfig()
	if len(cfg.Levels) == 0 {
		cfg.Levels = def.Levels
	}
	if cfg.Duration <= 0 {
		cfg.Duration = def.Duration
	}
	z := &Zoom{cfg: cfg}
	z.index = z.clamp(index)
	z.current = cfg.Levels[z.index]
	z.from, z.to = z.current, z.current
	return z
}

func (z *Zoom) clamp(i int) int {
	return min(max(i, 0), len(z.cfg.Levels)-1)
}

// Levels returns the field-of-view ladder.
func (z *Zoom) Levels() []float64 { return z.cfg.Levels }

// Index returns the target level index.
func (z *Zoom) Index() int { return z.index }

// FovDeg returns the last computed live field of view.
func (z *Zoom) FovDeg() float64 { return z.current }

// Target returns the field of view being animated towards.
func (z *Zoom) Target() float64 { return z.to }

// Phase returns the current state.
func (z *Zoom) Phase() Phase { return z.phase }

// NearestIndex returns the level closest to fov.
func (z *Zoom) NearestIndex(fov float64) int {
	best := 0
	for i, l := range z.cfg.Levels {
		if abs(l-fov) < abs(z.cfg.Levels[best]-fov) {
			best = i
		}
	}
	return best
}

// Request starts an animation to level index, clamped into range. It
// reports whether an animation started. While Active any request restarts
// from the live value; otherwise a request for the current target is
// ignored.
func (z *Zoom) Request(now time.Time, index int) bool {
	index = z.clamp(index)
	if z.phase != Active && index == z.index {
		return false
	}
	if z.phase == Active {
		z.Tick(now)
	}
	z.index = index
	z.from = z.current
	z.to = z.cfg.Levels[index]
	z.start = now
	z.phase = Active
	return true
}

// Tick returns the live field of view at now. When the animation completes
// the zoom moves to Settling and active is false.
func (z *Zoom) Tick(now time.Time) (fov float64, active bool) {
	if z.phase != Active {
		return z.current, false
	}
	t := float64(now.Sub(z.start)) / float64(z.cfg.Duration)
	if t >= 1 {
		z.current = z.to
		z.phase = Settling
		return z.current, false
	}
	z.current = z.from + (z.to-z.from)*EaseOutCubic(t)
	return z.current, true
}

// Settle completes the final refresh. It reports whether one was due.
func (z *Zoom) Settle() bool {
	if z.phase != Settling {
		return false
	}
	z.phase = Idle
	return true
}

// Jump sets the level without animating.
func (z *Zoom) Jump(index int) {
	z.index = z.clamp(index)
	z.current = z.cfg.Levels[z.index]
	z.from, z.to = z.current, z.current
	z.phase = Idle
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
