package session

import "math"

// Pointer turns raw press, move and release events into drags and clicks.
// A release counts as a click when the pointer never strayed more than slop
// pixels from where it was pressed.
type Pointer struct {
	sess    *Session
	slop    float64
	pressed bool
	moved   bool
	x0, y0  float64
}

// NewPointer returns a gesture tracker bound to the session.
func (s *Session) NewPointer(slop float64) *Pointer {
	return &Pointer{sess: s, slop: slop}
}

// Pressed reports whether a button is down.
func (p *Pointer) Pressed() bool { return p.pressed }

// Press starts a gesture at (x, y).
func (p *Pointer) Press(x, y float64) {
	p.pressed, p.moved = true, false
	p.x0, p.y0 = x, y
	p.sess.BeginDrag(x, y)
}

// Move follows the pointer while pressed.
func (p *Pointer) Move(x, y float64) {
	if !p.pressed {
		return
	}
	if !p.moved && (math.Abs(x-p.x0) > p.slop || math.Abs(y-p.y0) > p.slop) {
		p.moved = true
	}
	p.sess.Drag(x, y)
}

// Release ends the gesture and reports whether it was a click.
func (p *Pointer) Release() (click bool) {
	if !p.pressed {
		return false
	}
	p.pressed = false
	p.sess.EndDrag()
	return !p.moved
}
