package mosaic

import (
	"math"
	"sync/atomic"
	"time"
)

// SmoothingRate is the exponential smoothing rate of the effective
// interaction strengths, per second.
const SmoothingRate = 6.0

// firstFrameDelta is the frame time assumed when no previous frame exists.
const firstFrameDelta = 0.016

// minAvoidDistance is the distance below which the push direction is
// undefined and the cell is left in place.
const minAvoidDistance = 0.001

// Approach moves current toward target by min(1, deltaSeconds*SmoothingRate)
// of the remaining distance.
func Approach(current, target, deltaSeconds float64) float64 {
	return current + (target-current)*math.Min(1, math.Max(0, deltaSeconds)*SmoothingRate)
}

// pointerSample is the latest pointer state, in surface device pixels.
type pointerSample struct {
	X, Y   float64
	Inside bool
}

// interaction tracks the pointer and the smoothed strengths.
//
// Pointer callbacks only touch the mailbox. Everything else is owned by the
// filter and read or written under its lock.
type interaction struct {
	mailbox atomic.Pointer[pointerSample]

	source      PointerSource
	unsubscribe func()
	// gen identifies the current binding. Callbacks of older bindings are
	// ignored even if their source delivers them late.
	gen atomic.Uint64

	avoid     float64 // effective avoidance strength
	offsetRow float64 // effective offset-row strength

	last    time.Time
	started bool
}

// handle is the pointer callback. Concurrent events resolve last write wins.
func (c *interaction) handle(ev PointerEvent) {
	for {
		old := c.mailbox.Load()
		next := pointerSample{}
		if old != nil {
			next = *old
		}
		switch ev.Kind {
		case PointerMove:
			next.X, next.Y, next.Inside = ev.X, ev.Y, true
		case PointerEnter:
			next.Inside = true
		case PointerLeave:
			next.Inside = false
		default:
			return
		}
		if c.mailbox.CompareAndSwap(old, &next) {
			return
		}
	}
}

// listener returns the callback for binding gen.
func (c *interaction) listener(gen uint64) func(PointerEvent) {
	return func(ev PointerEvent) {
		if c.gen.Load() == gen {
			c.handle(ev)
		}
	}
}

// pointer returns the latest sample.
func (c *interaction) pointer() pointerSample {
	if s := c.mailbox.Load(); s != nil {
		return *s
	}
	return pointerSample{}
}

// attached reports whether a pointer listener is bound.
func (c *interaction) attached() bool {
	return c.unsubscribe != nil
}

// sync binds or unbinds the pointer listener. A fresh binding assumes the
// pointer is inside the surface at its center until the first event arrives.
func (c *interaction) sync(want bool, src PointerSource, width, height int) {
	if c.source != src {
		c.detach()
		c.source = src
	}
	if !want || src == nil {
		c.detach()
		return
	}
	if c.attached() {
		return
	}
	gen := c.gen.Add(1)
	c.mailbox.Store(&pointerSample{X: float64(width) / 2, Y: float64(height) / 2, Inside: true})
	c.unsubscribe = src.Subscribe(c.listener(gen))
	Logger().Debug("mosaic: pointer listener attached")
}

// detach removes the pointer listener, if any.
func (c *interaction) detach() {
	if c.unsubscribe == nil {
		return
	}
	c.gen.Add(1)
	c.unsubscribe()
	c.unsubscribe = nil
	Logger().Debug("mosaic: pointer listener detached")
}

// restart makes the next step use the first-frame delta.
func (c *interaction) restart() {
	c.started = false
}

// step advances the smoothed strengths to now and returns the pointer sample
// used for this frame.
func (c *interaction) step(now time.Time, s *FilterState) pointerSample {
	dt := firstFrameDelta
	if c.started {
		dt = now.Sub(c.last).Seconds()
	}
	c.last, c.started = now, true

	p := c.pointer()

	targetAvoid := 0.0
	if s.Avoid && p.Inside {
		targetAvoid = s.AvoidStrength
	}
	targetOffsetRow := 0.0
	if s.Mode == SetOffsetRow && p.Inside {
		targetOffsetRow = 1
	}
	c.avoid = Approach(c.avoid, targetAvoid, dt)
	c.offsetRow = Approach(c.offsetRow, targetOffsetRow, dt)
	return p
}

// Displacement returns the avoidance offset of a cell in normalized device
// units. Cells within AvoidRadius of the pointer are pushed straight away from
// it by (1 - distance/AvoidRadius) * AvoidStrength; all others stay put.
func Displacement(p *RenderParams, cell Instance) (dx, dy float64) {
	if !p.Avoid || p.AvoidRadius <= 0 || p.AvoidStrength == 0 {
		return 0, 0
	}
	tx, ty := p.PointerX-cell.CenterX, p.PointerY-cell.CenterY
	dist := math.Hypot(tx, ty)
	if dist >= p.AvoidRadius || dist <= minAvoidDistance {
		return 0, 0
	}
	push := (1 - dist/p.AvoidRadius) * p.AvoidStrength
	return -tx / dist * push, -ty / dist * push
}
