package mosaic

import "time"

// Clock provides the time source for noise throttling, cycle mode and
// pointer smoothing. Tests and offline renderers inject their own clock to get
// deterministic frames.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// ManualClock is a Clock that only advances when told to.
// It is useful for offline rendering at a fixed frame rate.
type ManualClock struct {
	now time.Time
}

// NewManualClock returns a ManualClock starting at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }
