package mosaic

import (
	"image/color"
	"time"
)

// FilterState is the mutable filter configuration. Setters mutate it between
// frames; the render step turns it into a RenderParams snapshot once per
// frame.
type FilterState struct {
	Enabled         bool
	Width, Height   int
	MosaicSize      int
	CellCount       int
	SetCount        int
	Mode            SetSelectionMode
	OffsetRowRadius float64 // pixels
	Avoid           bool
	AvoidRadius     float64 // pixels
	AvoidStrength   float64 // normalized device units
	NoiseIntensity  float64
	NoiseFPS        float64
	Background      color.Color // nil for none
}

// needsPointer reports whether the state reads the pointer.
func (s *FilterState) needsPointer() bool {
	return s.Avoid || s.Mode.needsPointer()
}

// RenderParams is the immutable per-frame input to the cell renderers.
// Distances are in normalized device coordinates (y up).
type RenderParams struct {
	Width, Height int
	CellSize      int
	CellCount     int
	SetCount      int
	Mode          SetSelectionMode

	NoiseIntensity float64
	// NoiseTime is the throttled time in seconds that drives noise and
	// SetRandom. It advances at most NoiseFPS times per second.
	NoiseTime float64
	// Elapsed is the unthrottled time in seconds since the filter started.
	// It drives SetCycle.
	Elapsed float64

	PointerX, PointerY float64
	PointerInside      bool

	OffsetRowRadius   float64
	OffsetRowStrength float64 // smoothed, in [0, 1]

	Avoid         bool
	AvoidRadius   float64
	AvoidStrength float64 // smoothed

	Background    color.NRGBA
	HasBackground bool
}

// PixelsToNDC converts a pixel radius to normalized device units, measured
// against the smaller frame dimension so the radius spans the same number
// of pixels on both axes of a square frame.
func PixelsToNDC(px float64, width, height int) float64 {
	m := min(width, height)
	if m <= 0 {
		return 0
	}
	return px / float64(m) * 2
}

// DeviceToNDC converts surface device pixels to normalized device
// coordinates with y up.
func DeviceToNDC(x, y float64, width, height int) (nx, ny float64) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	return x/float64(width)*2 - 1, 1 - y/float64(height)*2
}

// NDCToPixels converts a normalized device offset to a pixel offset with y
// down.
func NDCToPixels(dx, dy float64, width, height int) (px, py float64) {
	return dx * float64(width) / 2, -dy * float64(height) / 2
}

// noiseTicker throttles the noise time to the configured rate.
type noiseTicker struct {
	last time.Time
	time float64 // seconds since start at the last tick
}

// advance moves the noise time to now if at least 1/fps has passed since the
// previous tick.
func (n *noiseTicker) advance(now, start time.Time, fps float64) float64 {
	if now.Sub(n.last).Seconds() >= 1/fps {
		n.time = now.Sub(start).Seconds()
		n.last = now
	}
	return n.time
}

// reset restarts the throttle interval at now.
func (n *noiseTicker) reset(now time.Time) {
	n.last = now
}

func toNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}
