// Package kinematics turns pointer samples into momentum pans and zoom
// requests into eased field-of-view animations. Everything is driven by the
// caller's clock: each method takes the current time, so the UI loop decides
// when ticks happen and tests can step time explicitly.
package kinematics

import (
	"math"
	"time"
)

// Phase is the shared animation state machine.
type Phase int

const (
	// Idle: nothing animating.
	Idle Phase = iota
	// Active: ticking; the caller re-renders each tick with cheap data.
	Active
	// Settling: the animation ended and a full-quality refresh is due.
	Settling
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Active:
		return "active"
	case Settling:
		return "settling"
	default:
		return "unknown"
	}
}

// EaseOutCubic maps t in [0, 1] to 1-(1-t)^3.
func EaseOutCubic(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return 1 - math.Pow(1-t, 3)
}

// Throttle lets an action through at most once per Interval.
type Throttle struct {
	Interval time.Duration
	last     time.Time
}

// Allow reports whether the action may run at now, and records it if so.
func (t *Throttle) Allow(now time.Time) bool {
	if !t.last.IsZero() && now.Sub(t.last) < t.Interval {
		return false
	}
	t.last = now
	return true
}

// Reset forgets the last run.
func (t *Throttle) Reset() {
	t.last = time.Time{}
}

// Debounce fires once, Delay after the most recent trigger.
type Debounce struct {
	Delay    time.Duration
	deadline time.Time
	pending  bool
}

// Trigger (re)arms the debounce; an earlier deadline is replaced.
func (d *Debounce) Trigger(now time.Time) {
	d.deadline = now.Add(d.Delay)
	d.pending = true
}

// Fire reports true exactly once when the deadline has passed.
func (d *Debounce) Fire(now time.Time) bool {
	if !d.pending || now.Before(d.deadline) {
		return false
	}
	d.pending = false
	return true
}

// Pending reports whether a fire is outstanding.
func (d *Debounce) Pending() bool { return d.pending }

// Deadline returns when the outstanding fire is due.
func (d *Debounce) Deadline() time.Time { return d.deadline }

// Cancel drops any outstanding fire.
func (d *Debounce) Cancel() { d.pending = false }
