package mosaic

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"time"

	"github.com/gogpu/mosaic/atlas"
	internalimage "github.com/gogpu/mosaic/internal/image"
	"github.com/gogpu/mosaic/internal/parallel"
	"github.com/gogpu/mosaic/render"
)

// ErrDisposed is returned by WaitReady when the filter was disposed.
var ErrDisposed = errors.New("mosaic: filter disposed")

// FilterStateKind is the lifecycle state of a Filter.
type FilterStateKind uint8

const (
	// StateLoading means the atlas is still loading.
	StateLoading FilterStateKind = iota
	// StateReady means the filter can render but has not been enabled.
	StateReady
	// StateEnabled means Render draws the mosaic.
	StateEnabled
	// StateDisabled means Render passes the scene through unfiltered.
	StateDisabled
	// StateDisposed means all resources have been released.
	StateDisposed
)

// String returns the state name.
func (s FilterStateKind) String() string {
	switch s {
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StateEnabled:
		return "Enabled"
	case StateDisabled:
		return "Disabled"
	case StateDisposed:
		return "Disposed"
	default:
		return "Unknown"
	}
}

// Filter turns a host-rendered scene into a mosaic of atlas tiles.
//
// A Filter captures the host scene into its own offscreen target, partitions
// the frame into square cells and draws one atlas tile per cell into the
// host's visible target. Tiles are chosen by the brightness of the block they
// cover, optional noise, and the set selection mode; the pointer can push
// tiles away (avoidance) and switch their set (SetOffsetRow).
//
// All methods are safe for concurrent use. They must not be called from
// inside HostRenderer.Render.
type Filter struct {
	mu sync.Mutex

	host  render.HostRenderer
	opts  options
	state FilterState
	phase FilterStateKind

	pendingEnable bool
	ready         chan struct{}
	readyClosed   bool

	ctx     context.Context
	cancel  context.CancelFunc
	loadSeq uint64
	atlas   *atlas.Atlas

	grid    Grid
	capture *render.PixmapTarget
	inter   interaction
	noise   noiseTicker
	start   time.Time
	params  RenderParams

	software    softwareRenderer
	pool        *parallel.WorkerPool
	order       []int
	accelFailed bool
}

// New creates a filter for host with the given surface size and starts
// loading the atlas in the background. The filter becomes ready when the
// load resolves, successfully or not; see Ready.
func New(host render.HostRenderer, width, height int, opts ...Option) *Filter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.normalize()
	if o.atlas != nil {
		o.cellCount, o.setCount = o.atlas.CellCount(), o.atlas.SetCount()
	}

	width, height = max(width, 1), max(height, 1)
	f := &Filter{
		host: host,
		opts: o,
		state: FilterState{
			Width:           width,
			Height:          height,
			MosaicSize:      o.mosaicSize,
			CellCount:       o.cellCount,
			SetCount:        o.setCount,
			Mode:            o.mode,
			OffsetRowRadius: o.offsetRowRadius,
			Avoid:           o.avoid,
			AvoidRadius:     o.avoidRadius,
			AvoidStrength:   o.avoidStrength,
			NoiseIntensity:  o.noiseIntensity,
			NoiseFPS:        o.noiseFPS,
			Background:      o.background,
		},
		phase:   StateLoading,
		ready:   make(chan struct{}),
		capture: render.NewPixmapTarget(width, height),
	}
	f.ctx, f.cancel = context.WithCancel(context.Background())
	f.start = o.clock.Now()
	f.noise.reset(f.start)
	if o.workers != 1 {
		f.pool = parallel.NewWorkerPool(o.workers)
		f.software.pool = f.pool
	}

	f.loadSeq++
	if o.atlas != nil {
		f.finishLoad(f.loadSeq, o.atlas, nil)
		return f
	}
	req := f.loadRequest(o.atlasURL)
	go func(seq uint64) {
		atl, err := req.run(f.ctx)
		f.finishLoad(seq, atl, err)
	}(f.loadSeq)
	return f
}

// loadRequest captures what a background load needs from the current state.
type loadRequest struct {
	src       string
	loader    *atlas.Loader
	cellCount int
	setCount  int
}

func (f *Filter) loadRequest(src string) loadRequest {
	return loadRequest{
		src:       src,
		loader:    f.opts.loader,
		cellCount: f.state.CellCount,
		setCount:  f.state.SetCount,
	}
}

func (r loadRequest) run(ctx context.Context) (*atlas.Atlas, error) {
	if r.src == "" {
		return atlas.Generate(atlas.GenerateOptions{SetCount: r.setCount, Background: color.Transparent})
	}
	l := r.loader
	if l == nil {
		l = &atlas.Loader{}
	}
	return l.Load(ctx, r.src, r.cellCount, r.setCount)
}

// finishLoad installs the result of load seq.
func (f *Filter) finishLoad(seq uint64, atl *atlas.Atlas, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case f.phase == StateDisposed:
		releaseAtlas(atl)
		f.markReady()
		return
	case seq != f.loadSeq:
		releaseAtlas(atl)
		return
	}

	if err != nil {
		Logger().Warn("mosaic: atlas load failed, tiles disabled until reload", "err", err)
	} else {
		f.installAtlas(atl)
		Logger().Info("mosaic: atlas ready",
			"cells", atl.CellCount(), "sets", atl.SetCount(),
			"width", atl.Width(), "height", atl.Height())
	}

	if f.phase == StateLoading {
		f.rebuildGrid()
		f.phase = StateReady
		if f.pendingEnable {
			f.pendingEnable = false
			f.enableLocked()
		}
	}
	f.markReady()
}

func (f *Filter) markReady() {
	if !f.readyClosed {
		f.readyClosed = true
		close(f.ready)
	}
}

// installAtlas replaces the current atlas, adapting it to the current set
// count.
func (f *Filter) installAtlas(atl *atlas.Atlas) {
	if atl.SetCount() != f.state.SetCount {
		if relaid, err := atl.WithSetCount(f.state.SetCount); err == nil {
			atl = relaid
		} else {
			Logger().Warn("mosaic: atlas cannot hold set count", "sets", f.state.SetCount, "err", err)
		}
	}
	if f.atlas != atl {
		releaseAtlas(f.atlas)
	}
	f.atlas = atl
	f.state.CellCount = atl.CellCount()
}

func releaseAtlas(atl *atlas.Atlas) {
	if atl == nil {
		return
	}
	if a := Accelerator(); a != nil {
		a.ReleaseAtlas(atl)
	}
}

// Ready returns a channel that is closed once the first atlas load resolves.
func (f *Filter) Ready() <-chan struct{} {
	return f.ready
}

// WaitReady blocks until the filter is ready or ctx is done.
// It returns ErrDisposed if the filter was disposed.
func (f *Filter) WaitReady(ctx context.Context) error {
	select {
	case <-f.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	if f.State() == StateDisposed {
		return ErrDisposed
	}
	return nil
}

// IsReady reports whether the filter can render the mosaic.
func (f *Filter) IsReady() bool {
	switch f.State() {
	case StateReady, StateEnabled, StateDisabled:
		return true
	}
	return false
}

// AtlasLoaded reports whether an atlas is installed.
func (f *Filter) AtlasLoaded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.atlas != nil
}

// Atlas returns the installed atlas, or nil.
func (f *Filter) Atlas() *atlas.Atlas {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.atlas
}

// State returns the lifecycle state.
func (f *Filter) State() FilterStateKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

// Enabled reports whether Render draws the mosaic.
func (f *Filter) Enabled() bool {
	return f.State() == StateEnabled
}

// Enable starts drawing the mosaic. While the atlas is loading the request
// is remembered and applied once the filter is ready.
func (f *Filter) Enable() {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.phase {
	case StateLoading:
		f.pendingEnable = true
	case StateReady, StateDisabled:
		f.enableLocked()
	}
}

func (f *Filter) enableLocked() {
	f.phase = StateEnabled
	f.state.Enabled = true
	f.inter.restart()
	f.syncPointer()
}

// Disable stops drawing the mosaic and detaches the pointer listener.
// Resources are kept for a later Enable.
func (f *Filter) Disable() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pendingEnable = false
	if f.phase == StateEnabled {
		f.phase = StateDisabled
	}
	f.state.Enabled = false
	f.inter.detach()
}

// syncPointer applies the listener policy: listen only while enabled and
// while avoidance or SetOffsetRow needs the pointer.
func (f *Filter) syncPointer() {
	want := f.phase == StateEnabled && f.state.needsPointer()
	f.inter.sync(want, f.opts.pointer, f.state.Width, f.state.Height)
}

// rebuildGrid lays the grid out for the current size and cell size.
func (f *Filter) rebuildGrid() {
	if f.grid.Build(f.state.Width, f.state.Height, f.state.MosaicSize) {
		Logger().Debug("mosaic: grid storage grown",
			"capacity", f.grid.Capacity(), "cols", f.grid.Cols(), "rows", f.grid.Rows())
	}
}

// gridLive reports whether the grid exists in the current phase.
func (f *Filter) gridLive() bool {
	return f.phase != StateLoading && f.phase != StateDisposed
}

// SetSize resizes the offscreen target and rebuilds the grid.
// Call it whenever the host surface is resized.
func (f *Filter) SetSize(width, height int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == StateDisposed {
		return
	}
	f.state.Width, f.state.Height = max(width, 1), max(height, 1)
	f.capture.Resize(f.state.Width, f.state.Height)
	if f.gridLive() {
		f.rebuildGrid()
	}
}

// SetMosaicSize sets the cell edge in pixels and rebuilds the grid.
func (f *Filter) SetMosaicSize(size int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == StateDisposed {
		return
	}
	f.state.MosaicSize = clampMosaicSize(size)
	if f.gridLive() {
		f.rebuildGrid()
	}
}

// SetNoiseIntensity sets the brightness noise amplitude, clamped to [0, 1].
func (f *Filter) SetNoiseIntensity(v float64) {
	f.update(func() { f.state.NoiseIntensity = clampUnit(v) })
}

// SetNoiseFPS sets the noise update rate (minimum 1) and restarts the
// throttle interval.
func (f *Filter) SetNoiseFPS(fps float64) {
	f.update(func() {
		f.state.NoiseFPS = clampFPS(fps)
		f.noise.reset(f.opts.clock.Now())
	})
}

// SetSetCount sets the number of atlas rows (minimum 1).
func (f *Filter) SetSetCount(n int) {
	f.update(func() {
		f.state.SetCount = max(n, 1)
		if f.atlas != nil {
			f.installAtlas(f.atlas)
		}
	})
}

// SetSetSelectionMode sets how cells pick their atlas row.
func (f *Filter) SetSetSelectionMode(m SetSelectionMode) {
	f.update(func() {
		f.state.Mode = m
		f.syncPointer()
	})
}

// SetOffsetRowRadius sets the SetOffsetRow pointer radius in pixels.
func (f *Filter) SetOffsetRowRadius(px float64) {
	f.update(func() { f.state.OffsetRowRadius = nonNegative(px) })
}

// SetAvoid enables or disables pushing cells away from the pointer.
func (f *Filter) SetAvoid(enabled bool) {
	f.update(func() {
		f.state.Avoid = enabled
		f.syncPointer()
	})
}

// SetAvoidRadius sets the avoidance radius in pixels.
func (f *Filter) SetAvoidRadius(px float64) {
	f.update(func() { f.state.AvoidRadius = nonNegative(px) })
}

// SetAvoidStrength sets the maximum avoidance push in normalized device units.
func (f *Filter) SetAvoidStrength(s float64) {
	f.update(func() { f.state.AvoidStrength = nonNegative(s) })
}

// SetBackgroundColor sets the color behind the tiles. Nil makes the output
// transparent where no tile ink lands.
func (f *Filter) SetBackgroundColor(c color.Color) {
	f.update(func() { f.state.Background = c })
}

// SetPointerSource replaces the pointer event source. Nil removes it.
func (f *Filter) SetPointerSource(src PointerSource) {
	f.update(func() {
		f.opts.pointer = src
		f.syncPointer()
	})
}

// update runs fn under the lock unless the filter is disposed.
func (f *Filter) update(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == StateDisposed {
		return
	}
	fn()
}

// ReloadAtlas loads a new atlas from src with the current cell and set
// counts and installs it on success. An empty src generates the default
// glyph atlas. On failure the current atlas stays in place and the error is
// returned; the filter keeps rendering either way.
func (f *Filter) ReloadAtlas(ctx context.Context, src string) error {
	f.mu.Lock()
	if f.phase == StateDisposed {
		f.mu.Unlock()
		return ErrDisposed
	}
	f.loadSeq++
	seq := f.loadSeq
	req := f.loadRequest(src)
	f.mu.Unlock()

	atl, err := req.run(ctx)
	f.finishLoad(seq, atl, err)
	return err
}

// RenderTarget returns the offscreen target the scene is captured into, or
// nil after Dispose.
func (f *Filter) RenderTarget() render.RenderTarget {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.capture == nil {
		return nil
	}
	return f.capture
}

// Grid returns the current grid statistics.
func (f *Filter) Grid() GridStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grid.Stats()
}

// Settings returns a copy of the current configuration. Unlike Params it
// reflects setter calls made since the last frame.
func (f *Filter) Settings() FilterState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Params returns the parameters of the last rendered frame.
func (f *Filter) Params() RenderParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params
}

// Render draws one frame.
//
// While enabled, the host scene is captured into the offscreen target and the
// mosaic is drawn into the target the host had bound. In every other state the
// scene is rendered unfiltered into the host's current target. Errors from
// the host renderer are returned; failures inside the filter are not.
func (f *Filter) Render(scene, camera any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.phase != StateEnabled {
		return f.host.Render(scene, camera)
	}

	visible := f.host.RenderTarget()
	if err := f.captureScene(scene, camera); err != nil {
		return err
	}

	now := f.opts.clock.Now()
	f.params = f.snapshot(now)

	if visible == nil || visible.Pixels() == nil {
		Logger().Debug("mosaic: visible target has no CPU pixels, skipping draw")
		return nil
	}
	dst, err := internalimage.NewFrame(visible.Pixels(), visible.Width(), visible.Height(), visible.Stride())
	if err != nil {
		Logger().Debug("mosaic: invalid visible target", "err", err)
		return nil
	}
	frame := internalimage.FrameFromRGBA(f.capture.Image())

	fillBackground(dst, &f.params)
	if f.drawAccelerated(dst, frame) {
		return nil
	}
	f.software.drawCells(dst, frame, &f.grid, f.atlas, &f.params)
	return nil
}

// captureScene renders the host scene into the offscreen target and always
// restores the previously bound target.
func (f *Filter) captureScene(scene, camera any) error {
	prev := f.host.RenderTarget()
	f.host.SetRenderTarget(f.capture)
	defer f.host.SetRenderTarget(prev)
	return f.host.Render(scene, camera)
}

// snapshot advances time-dependent state to now and freezes it into the
// parameters for one frame.
func (f *Filter) snapshot(now time.Time) RenderParams {
	s := &f.state
	ptr := f.inter.step(now, s)
	px, py := DeviceToNDC(ptr.X, ptr.Y, s.Width, s.Height)

	cellCount := s.CellCount
	setCount := s.SetCount
	if f.atlas != nil {
		cellCount = f.atlas.CellCount()
		setCount = f.atlas.SetCount()
	}

	p := RenderParams{
		Width:             s.Width,
		Height:            s.Height,
		CellSize:          f.grid.CellSize(),
		CellCount:         cellCount,
		SetCount:          setCount,
		Mode:              s.Mode,
		NoiseIntensity:    s.NoiseIntensity,
		NoiseTime:         f.noise.advance(now, f.start, s.NoiseFPS),
		Elapsed:           now.Sub(f.start).Seconds(),
		PointerX:          px,
		PointerY:          py,
		PointerInside:     ptr.Inside,
		OffsetRowRadius:   PixelsToNDC(s.OffsetRowRadius, s.Width, s.Height),
		OffsetRowStrength: f.inter.offsetRow,
		Avoid:             s.Avoid,
		AvoidRadius:       PixelsToNDC(s.AvoidRadius, s.Width, s.Height),
		AvoidStrength:     f.inter.avoid,
	}
	if s.Background != nil {
		p.Background = toNRGBA(s.Background)
		p.HasBackground = true
	}
	return p
}

// drawAccelerated draws the frame with the registered accelerator and
// reports whether it succeeded. On failure dst is cleared again for the
// software renderer.
func (f *Filter) drawAccelerated(dst, frame internalimage.Frame) bool {
	if !f.opts.accelerate {
		return false
	}
	a := Accelerator()
	if a == nil {
		return false
	}
	f.order = drawOrder(&f.grid, &f.params, f.order)
	err := a.DrawCells(cellTarget(dst), cellTarget(frame), &f.grid, f.order, f.atlas, &f.params)
	if err == nil {
		return true
	}
	if !f.accelFailed {
		f.accelFailed = true
		if errors.Is(err, ErrFallbackToCPU) {
			Logger().Debug("mosaic: accelerator declined frame", "name", a.Name())
		} else {
			Logger().Warn("mosaic: accelerator failed, using CPU", "name", a.Name(), "err", err)
		}
	}
	fillBackground(dst, &f.params)
	return false
}

func cellTarget(fr internalimage.Frame) CellTarget {
	return CellTarget{Data: fr.Pix, Width: fr.Width, Height: fr.Height, Stride: fr.Stride}
}

// Dispose detaches the pointer listener and releases the atlas, grid,
// offscreen target and worker pool. It is idempotent. A load still in flight
// releases its result when it resolves.
func (f *Filter) Dispose() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase == StateDisposed {
		return
	}
	f.phase = StateDisposed
	f.state.Enabled = false
	f.pendingEnable = false
	f.inter.detach()
	f.cancel()

	releaseAtlas(f.atlas)
	f.atlas = nil
	f.grid = Grid{}
	f.capture = nil
	if f.pool != nil {
		f.pool.Close()
		f.pool = nil
		f.software.pool = nil
	}
}
