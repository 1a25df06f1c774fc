package kinematics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func TestEaseOutCubic(t *testing.T) {
	assert.Equal(t, 0.0, EaseOutCubic(-1))
	assert.Equal(t, 0.0, EaseOutCubic(0))
	assert.InDelta(t, 0.875, EaseOutCubic(0.5), 1e-12)
	assert.Equal(t, 1.0, EaseOutCubic(1))
	assert.Equal(t, 1.0, EaseOutCubic(3))

	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := EaseOutCubic(float64(i) / 100)
		assert.GreaterOrEqual(t, v, prev)
		prev = v
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "settling", Settling.String())
}

func TestThrottle(t *testing.T) {
	th := Throttle{Interval: 100 * time.Millisecond}
	assert.True(t, th.Allow(at(0)))
	assert.False(t, th.Allow(at(50)))
	assert.False(t, th.Allow(at(99)))
	assert.True(t, th.Allow(at(100)))
	assert.False(t, th.Allow(at(150)))

	th.Reset()
	assert.True(t, th.Allow(at(151)))
}

func TestDebounce(t *testing.T) {
	d := Debounce{Delay: 250 * time.Millisecond}
	assert.False(t, d.Fire(at(0)))

	d.Trigger(at(0))
	assert.True(t, d.Pending())
	assert.False(t, d.Fire(at(200)))

	// Re-triggering pushes the deadline out.
	d.Trigger(at(200))
	assert.Equal(t, at(450), d.Deadline())
	assert.False(t, d.Fire(at(300)))
	assert.True(t, d.Fire(at(450)))
	assert.False(t, d.Fire(at(500)), "fires once")
	assert.False(t, d.Pending())

	d.Trigger(at(600))
	d.Cancel()
	assert.False(t, d.Fire(at(10000)))
}

func TestMomentumDecay(t *testing.T) {
	m := NewMomentum(DefaultMomentumConfig())
	assert.InDelta(t, 0.05, math.Pow(m.Decay(), 30), 1e-12)
}

func TestMomentumCoast(t *testing.T) {
	cfg := DefaultMomentumConfig()
	m := NewMomentum(cfg)

	m.Begin(at(0), 0, 0)
	for i := 1; i <= 5; i++ {
		m.Move(at(i*10), float64(i*10), 0)
	}
	require.True(t, m.Release(at(50)))
	assert.Equal(t, Active, m.Phase())
	vx, vy := m.Velocity()
	assert.InDelta(t, 1000, vx, 1e-6)
	assert.Equal(t, 0.0, vy)

	var total float64
	steps := 0
	for {
		dx, dy, more := m.Step()
		assert.Equal(t, 0.0, dy)
		assert.Greater(t, dx, 0.0)
		total += dx
		steps++
		if !more {
			break
		}
		require.Less(t, steps, 100)
	}
	assert.Equal(t, cfg.Steps, steps)
	assert.Greater(t, total, 0.0)
	assert.Less(t, total, 1000*cfg.TickInterval.Seconds()*float64(cfg.Steps))

	x, _ := m.Position()
	assert.InDelta(t, 50+total, x, 1e-9)

	vx, _ = m.Velocity()
	assert.InDelta(t, 50, vx, 1e-6, "about 5 percent of the release speed remains")

	assert.Equal(t, Settling, m.Phase())
	_, _, more := m.Step()
	assert.False(t, more)
	assert.True(t, m.Settle())
	assert.Equal(t, Idle, m.Phase())
	assert.False(t, m.Settle())
}

func TestMomentumStopsAtNegligibleSpeed(t *testing.T) {
	cfg := DefaultMomentumConfig()
	cfg.NegligibleSpeed = 500
	m := NewMomentum(cfg)

	m.Begin(at(0), 0, 0)
	m.Move(at(50), 50, 0)
	require.True(t, m.Release(at(50)))

	steps := 0
	for {
		_, _, more := m.Step()
		steps++
		if !more {
			break
		}
	}
	assert.Less(t, steps, cfg.Steps)
	assert.Equal(t, Settling, m.Phase())
}

func TestMomentumSlowReleaseSettles(t *testing.T) {
	m := NewMomentum(DefaultMomentumConfig())
	m.Begin(at(0), 0, 0)
	m.Move(at(50), 1, 0)
	assert.False(t, m.Release(at(50)))
	assert.Equal(t, Settling, m.Phase())

	_, _, more := m.Step()
	assert.False(t, more)
}

func TestMomentumPauseBeforeRelease(t *testing.T) {
	m := NewMomentum(DefaultMomentumConfig())
	m.Begin(at(0), 0, 0)
	m.Move(at(10), 100, 0)
	assert.False(t, m.Release(at(500)))
	vx, vy := m.Velocity()
	assert.Equal(t, 0.0, vx)
	assert.Equal(t, 0.0, vy)
}

func TestMomentumWindowDiscardsOldSamples(t *testing.T) {
	m := NewMomentum(DefaultMomentumConfig())
	m.Begin(at(0), 0, 0)
	m.Move(at(200), 0, 0)
	m.Move(at(250), 50, 0)
	m.Move(at(260), 60, 0)
	require.True(t, m.Release(at(260)))

	vx, _ := m.Velocity()
	assert.InDelta(t, 1000, vx, 1e-6)
}

func TestMomentumBeginCancelsCoast(t *testing.T) {
	m := NewMomentum(DefaultMomentumConfig())
	m.Begin(at(0), 0, 0)
	m.Move(at(50), 0, 100)
	require.True(t, m.Release(at(50)))
	m.Step()

	m.Begin(at(100), 5, 5)
	assert.Equal(t, Idle, m.Phase())
	assert.True(t, m.Dragging())
	_, _, more := m.Step()
	assert.False(t, more)
}

func TestMomentumIgnoresMoveWithoutDrag(t *testing.T) {
	m := NewMomentum(DefaultMomentumConfig())
	m.Move(at(0), 10, 10)
	assert.False(t, m.Release(at(10)))
	assert.Equal(t, Idle, m.Phase())
}

func TestZoomAnimation(t *testing.T) {
	z := NewZoom(DefaultZoomConfig(), 3)
	assert.Equal(t, 60.0, z.FovDeg())

	require.True(t, z.Request(at(0), 5))
	assert.Equal(t, Active, z.Phase())
	assert.Equal(t, 30.0, z.Target())

	fov, active := z.Tick(at(0))
	assert.True(t, active)
	assert.Equal(t, 60.0, fov)

	fov, active = z.Tick(at(200))
	assert.True(t, active)
	assert.InDelta(t, 33.75, fov, 1e-9)

	fov, active = z.Tick(at(400))
	assert.False(t, active)
	assert.Equal(t, 30.0, fov)
	assert.Equal(t, Settling, z.Phase())

	assert.True(t, z.Settle())
	assert.Equal(t, Idle, z.Phase())
}

func TestZoomClamps(t *testing.T) {
	cfg := DefaultZoomConfig()
	z := NewZoom(cfg, 3)

	z.Request(at(0), 99)
	assert.Equal(t, len(cfg.Levels)-1, z.Index())

	z.Request(at(10), -5)
	assert.Equal(t, 0, z.Index())

	assert.Equal(t, 0, NewZoom(cfg, -1).Index())
}

func TestZoomIgnoresIdenticalTargetWhenNotActive(t *testing.T) {
	z := NewZoom(DefaultZoomConfig(), 3)
	assert.False(t, z.Request(at(0), 3), "idle, same level")

	z.Request(at(0), 4)
	z.Tick(at(1000))
	require.Equal(t, Settling, z.Phase())

	assert.False(t, z.Request(at(1001), 4), "settling ignores the same target")
	assert.Equal(t, Settling, z.Phase())

	assert.True(t, z.Request(at(1002), 6), "settling accepts a new target")
	assert.Equal(t, Active, z.Phase())
}

func TestZoomRestartsFromLiveValue(t *testing.T) {
	z := NewZoom(DefaultZoomConfig(), 3)
	z.Request(at(0), 5)

	require.True(t, z.Request(at(200), 7))
	fov, active := z.Tick(at(200))
	assert.True(t, active)
	assert.InDelta(t, 33.75, fov, 1e-9)

	fov, _ = z.Tick(at(600))
	assert.Equal(t, 10.0, fov)
}

func TestZoomJumpAndNearest(t *testing.T) {
	z := NewZoom(DefaultZoomConfig(), 0)
	assert.Equal(t, 5, z.NearestIndex(28))
	assert.Equal(t, 0, z.NearestIndex(500))

	z.Jump(8)
	assert.Equal(t, 5.0, z.FovDeg())
	assert.Equal(t, Idle, z.Phase())
}
