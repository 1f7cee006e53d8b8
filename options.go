package mosaic

import (
	"image/color"
	"math"

	"github.com/gogpu/mosaic/atlas"
)

// Defaults for Filter configuration.
const (
	DefaultMosaicSize      = 8
	DefaultCellCount       = 10
	DefaultSetCount        = 1
	DefaultOffsetRowRadius = 80
	DefaultAvoidRadius     = 80
	DefaultAvoidStrength   = 0.15
	DefaultNoiseFPS        = 15
)

// Option configures a Filter during creation.
//
// Example:
//
//	f := mosaic.New(host, 800, 600,
//	    mosaic.WithMosaicSize(12),
//	    mosaic.WithAtlasURL("testdata/cells.png"),
//	    mosaic.WithSetCount(3),
//	    mosaic.WithSetSelectionMode(mosaic.SetOffsetRow),
//	)
type Option func(*options)

// options holds Filter configuration. Out-of-range values are clamped by
// normalize, never rejected.
type options struct {
	mosaicSize      int
	atlasURL        string
	atlas           *atlas.Atlas
	loader          *atlas.Loader
	cellCount       int
	setCount        int
	mode            SetSelectionMode
	offsetRowRadius float64
	avoid           bool
	avoidRadius     float64
	avoidStrength   float64
	noiseIntensity  float64
	noiseFPS        float64
	background      color.Color
	pointer         PointerSource
	clock           Clock
	workers         int
	accelerate      bool
}

// defaultOptions returns the default filter options.
func defaultOptions() options {
	return options{
		mosaicSize:      DefaultMosaicSize,
		cellCount:       DefaultCellCount,
		setCount:        DefaultSetCount,
		mode:            SetFirst,
		offsetRowRadius: DefaultOffsetRowRadius,
		avoidRadius:     DefaultAvoidRadius,
		avoidStrength:   DefaultAvoidStrength,
		noiseFPS:        DefaultNoiseFPS,
		clock:           systemClock{},
		accelerate:      true,
	}
}

// normalize clamps every numeric option to its valid range.
func (o *options) normalize() {
	o.mosaicSize = clampMosaicSize(o.mosaicSize)
	o.cellCount = max(o.cellCount, 1)
	o.setCount = max(o.setCount, 1)
	o.offsetRowRadius = nonNegative(o.offsetRowRadius)
	o.avoidRadius = nonNegative(o.avoidRadius)
	o.avoidStrength = nonNegative(o.avoidStrength)
	o.noiseIntensity = clampUnit(o.noiseIntensity)
	o.noiseFPS = clampFPS(o.noiseFPS)
	if o.clock == nil {
		o.clock = systemClock{}
	}
}

// WithMosaicSize sets the cell edge in pixels (default 8).
func WithMosaicSize(size int) Option {
	return func(o *options) { o.mosaicSize = size }
}

// WithAtlasURL sets the atlas source: a path, file://, http(s):// or data:
// URL. Without an atlas URL or atlas, a glyph atlas is generated.
func WithAtlasURL(url string) Option {
	return func(o *options) { o.atlasURL = url }
}

// WithAtlas uses a prebuilt atlas instead of loading one. The atlas layout
// overrides WithCellCount, and its set count WithSetCount.
func WithAtlas(a *atlas.Atlas) Option {
	return func(o *options) { o.atlas = a }
}

// WithAtlasLoader sets the loader used for atlas URLs, e.g. to supply an HTTP
// client with timeouts or authentication.
func WithAtlasLoader(l *atlas.Loader) Option {
	return func(o *options) { o.loader = l }
}

// WithCellCount sets the number of atlas columns (default 10).
func WithCellCount(n int) Option {
	return func(o *options) { o.cellCount = n }
}

// WithSetCount sets the number of atlas rows (default 1).
func WithSetCount(n int) Option {
	return func(o *options) { o.setCount = n }
}

// WithSetSelectionMode sets how cells pick their atlas row (default SetFirst).
func WithSetSelectionMode(m SetSelectionMode) Option {
	return func(o *options) { o.mode = m }
}

// WithOffsetRowRadius sets the pointer influence radius of SetOffsetRow in
// pixels (default 80).
func WithOffsetRowRadius(px float64) Option {
	return func(o *options) { o.offsetRowRadius = px }
}

// WithAvoid enables pushing cells away from the pointer (default false).
func WithAvoid(enabled bool) Option {
	return func(o *options) { o.avoid = enabled }
}

// WithAvoidRadius sets the avoidance radius in pixels (default 80).
func WithAvoidRadius(px float64) Option {
	return func(o *options) { o.avoidRadius = px }
}

// WithAvoidStrength sets the maximum avoidance push in normalized device
// units (default 0.15).
func WithAvoidStrength(s float64) Option {
	return func(o *options) { o.avoidStrength = s }
}

// WithNoiseIntensity sets the brightness noise amplitude in [0, 1] (default 0).
func WithNoiseIntensity(v float64) Option {
	return func(o *options) { o.noiseIntensity = v }
}

// WithNoiseFPS caps how often the noise time advances (default 15, minimum 1).
func WithNoiseFPS(fps float64) Option {
	return func(o *options) { o.noiseFPS = fps }
}

// WithBackgroundColor fills the output behind the tiles. Without it the
// output is transparent wherever no tile ink lands.
func WithBackgroundColor(c color.Color) Option {
	return func(o *options) { o.background = c }
}

// WithPointerSource sets the pointer event source used by avoidance and
// SetOffsetRow. Without one, the pointer never enters the surface.
func WithPointerSource(src PointerSource) Option {
	return func(o *options) { o.pointer = src }
}

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithWorkers sets the number of goroutines used by the software renderer.
// 0 means GOMAXPROCS and 1 renders on the calling goroutine.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithAcceleration enables or disables the registered CellAccelerator for
// this filter (default enabled).
func WithAcceleration(enabled bool) Option {
	return func(o *options) { o.accelerate = enabled }
}

func clampMosaicSize(size int) int { return max(size, 1) }

func clampFPS(fps float64) float64 {
	if math.IsNaN(fps) || fps < 1 {
		return 1
	}
	return fps
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
