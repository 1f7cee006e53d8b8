package mosaic

import (
	"slices"
	"sync"
)

// PointerKind identifies a pointer event.
type PointerKind uint8

const (
	// PointerMove reports a new position. It implies the pointer is inside.
	PointerMove PointerKind = iota
	// PointerEnter reports the pointer entering the surface.
	PointerEnter
	// PointerLeave reports the pointer leaving the surface.
	PointerLeave
)

// String returns the event name.
func (k PointerKind) String() string {
	switch k {
	case PointerMove:
		return "move"
	case PointerEnter:
		return "enter"
	case PointerLeave:
		return "leave"
	default:
		return "unknown"
	}
}

// PointerEvent is a pointer sample in surface device pixels (origin top-left).
// X and Y are only meaningful for PointerMove.
type PointerEvent struct {
	Kind PointerKind
	X, Y float64
}

// PointerSource delivers pointer events for the render surface.
//
// Subscribe registers fn and returns a function that removes it. After the
// returned function has been called, fn must not be invoked again. fn may be
// called from any goroutine.
type PointerSource interface {
	Subscribe(fn func(PointerEvent)) (unsubscribe func())
}

// PointerHub is a PointerSource that fans published events out to its
// subscribers in subscription order. Hosts feed it from their windowing or
// terminal event loop.
//
// Once an unsubscribe function returns, its callback is not running and will
// not run again. A callback must therefore not call its own unsubscribe.
//
// PointerHub is safe for concurrent use.
type PointerHub struct {
	mu     sync.Mutex
	nextID uint64
	subs   []*subscription
}

// subscription is one registered callback. mu is held while fn runs.
type subscription struct {
	id     uint64
	fn     func(PointerEvent)
	mu     sync.Mutex
	active bool
}

// NewPointerHub creates an empty hub.
func NewPointerHub() *PointerHub {
	return &PointerHub{}
}

// Subscribe implements PointerSource.
func (h *PointerHub) Subscribe(fn func(PointerEvent)) func() {
	h.mu.Lock()
	sub := &subscription{id: h.nextID, fn: fn, active: true}
	h.nextID++
	h.subs = append(h.subs, sub)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			h.subs = slices.DeleteFunc(h.subs, func(s *subscription) bool { return s == sub })
			h.mu.Unlock()

			// Waits for a delivery in progress.
			sub.mu.Lock()
			sub.active = false
			sub.mu.Unlock()
		})
	}
}

// Publish delivers ev to every current subscriber on the calling goroutine.
func (h *PointerHub) Publish(ev PointerEvent) {
	h.mu.Lock()
	subs := slices.Clone(h.subs)
	h.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(ev)
	}
}

func (s *subscription) deliver(ev PointerEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		s.fn(ev)
	}
}

// Move publishes a PointerMove at (x, y).
func (h *PointerHub) Move(x, y float64) { h.Publish(PointerEvent{Kind: PointerMove, X: x, Y: y}) }

// Enter publishes a PointerEnter.
func (h *PointerHub) Enter() { h.Publish(PointerEvent{Kind: PointerEnter}) }

// Leave publishes a PointerLeave.
func (h *PointerHub) Leave() { h.Publish(PointerEvent{Kind: PointerLeave}) }

// Listeners returns the number of subscribers.
func (h *PointerHub) Listeners() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Viewport is the on-screen rectangle a surface is displayed in, in client
// coordinates (e.g., window points or terminal cells).
type Viewport struct {
	X, Y          float64
	Width, Height float64
}

// ClientToDevice maps a client position into surface device pixels for a
// surface of deviceWidth x deviceHeight shown in vp. ok is false when the
// viewport or the surface is empty.
func ClientToDevice(clientX, clientY float64, vp Viewport, deviceWidth, deviceHeight int) (x, y float64, ok bool) {
	if vp.Width <= 0 || vp.Height <= 0 || deviceWidth <= 0 || deviceHeight <= 0 {
		return 0, 0, false
	}
	x = (clientX - vp.X) / vp.Width * float64(deviceWidth)
	y = (clientY - vp.Y) / vp.Height * float64(deviceHeight)
	return x, y, true
}

// Contains reports whether the client position lies inside the viewport.
func (vp Viewport) Contains(clientX, clientY float64) bool {
	return clientX >= vp.X && clientX < vp.X+vp.Width &&
		clientY >= vp.Y && clientY < vp.Y+vp.Height
}
