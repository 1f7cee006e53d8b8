package mosaic

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gogpu/mosaic/atlas"
	"github.com/gogpu/mosaic/render"
)

// fakeHost renders a solid color into whatever target is bound.
type fakeHost struct {
	screen  *render.PixmapTarget
	target  render.RenderTarget
	fill    color.RGBA
	renders int
	err     error
	panics  bool
}

func newFakeHost(w, h int) *fakeHost {
	s := render.NewPixmapTarget(w, h)
	return &fakeHost{screen: s, target: s, fill: color.RGBA{A: 255}}
}

func (h *fakeHost) RenderTarget() render.RenderTarget { return h.target }

func (h *fakeHost) SetRenderTarget(t render.RenderTarget) { h.target = t }

func (h *fakeHost) Render(scene, _ any) error {
	h.renders++
	if h.panics {
		panic("host exploded")
	}
	if h.err != nil {
		return h.err
	}
	c := h.fill
	if sc, ok := scene.(color.RGBA); ok {
		c = sc
	}
	render.Fill(h.target, c)
	return nil
}

func twoToneDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, twoToneAtlas(t).Image()); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func waitReady(t *testing.T, f *Filter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady: %v", err)
	}
}

func screenUniform(t *testing.T, s *render.PixmapTarget, want color.RGBA) {
	t.Helper()
	for y := range s.Height() {
		for x := range s.Width() {
			if got := s.GetPixel(x, y); got != want {
				t.Fatalf("screen (%d,%d) = %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestFilterLifecycle(t *testing.T) {
	host := newFakeHost(16, 16)
	f := New(host, 16, 16, WithAtlas(twoToneAtlas(t)), WithWorkers(1))

	if got := f.State(); got != StateReady {
		t.Fatalf("State() = %v, want Ready", got)
	}
	waitReady(t, f)
	if !f.IsReady() || !f.AtlasLoaded() || f.Enabled() {
		t.Fatal("expected ready, loaded and not enabled")
	}

	f.Enable()
	if got := f.State(); got != StateEnabled {
		t.Fatalf("after Enable: %v", got)
	}
	f.Disable()
	if got := f.State(); got != StateDisabled {
		t.Fatalf("after Disable: %v", got)
	}
	f.Enable()
	if !f.Enabled() {
		t.Fatal("re-enable failed")
	}

	f.Dispose()
	f.Dispose()
	if got := f.State(); got != StateDisposed {
		t.Fatalf("after Dispose: %v", got)
	}
	if f.RenderTarget() != nil || f.AtlasLoaded() {
		t.Error("Dispose should release the capture target and atlas")
	}
	if err := f.WaitReady(context.Background()); !errors.Is(err, ErrDisposed) {
		t.Errorf("WaitReady after Dispose = %v, want ErrDisposed", err)
	}
	if err := f.ReloadAtlas(context.Background(), ""); !errors.Is(err, ErrDisposed) {
		t.Errorf("ReloadAtlas after Dispose = %v, want ErrDisposed", err)
	}

	f.Enable()
	if f.State() != StateDisposed {
		t.Error("Enable must not revive a disposed filter")
	}
}

func TestFilterEnableWhileLoading(t *testing.T) {
	uri := twoToneDataURI(t)
	data, err := base64.StdEncoding.DecodeString(uri[len("data:image/png;base64,"):])
	if err != nil {
		t.Fatal(err)
	}
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := New(newFakeHost(8, 8), 8, 8,
		WithAtlasURL(srv.URL+"/atlas.png"),
		WithAtlasLoader(&atlas.Loader{Client: srv.Client()}),
		WithCellCount(2),
		WithMosaicSize(4),
	)
	defer f.Dispose()

	if got := f.State(); got != StateLoading {
		t.Fatalf("State() = %v, want Loading", got)
	}
	f.Enable()
	if f.Enabled() {
		t.Fatal("Enable must be deferred while loading")
	}
	if f.Grid().Count != 0 {
		t.Error("grid must not exist before the atlas resolves")
	}

	close(release)
	waitReady(t, f)
	if !f.Enabled() {
		t.Errorf("State() = %v, want Enabled after load", f.State())
	}
	if got := f.Grid().Count; got != 4 {
		t.Errorf("Grid().Count = %d, want 4", got)
	}
}

func TestFilterDisableWhileLoadingCancelsPendingEnable(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(newFakeHost(8, 8), 8, 8, WithAtlasURL(srv.URL))
	defer f.Dispose()

	f.Enable()
	f.Disable()
	close(release)
	waitReady(t, f)
	if got := f.State(); got != StateReady {
		t.Errorf("State() = %v, want Ready", got)
	}
}

func TestFilterLoadFailureStillRenders(t *testing.T) {
	host := newFakeHost(8, 8)
	f := New(host, 8, 8,
		WithAtlasURL("data:image/png;base64,!!!"),
		WithCellCount(2),
		WithBackgroundColor(color.RGBA{G: 255, A: 255}),
		WithWorkers(1),
	)
	defer f.Dispose()
	waitReady(t, f)

	if f.AtlasLoaded() {
		t.Fatal("atlas should not be loaded")
	}
	f.Enable()
	if err := f.Render(nil, nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	screenUniform(t, host.screen, color.RGBA{G: 255, A: 255})

	if err := f.ReloadAtlas(context.Background(), twoToneDataURI(t)); err != nil {
		t.Fatalf("ReloadAtlas: %v", err)
	}
	if !f.AtlasLoaded() {
		t.Fatal("ReloadAtlas should install the atlas")
	}
	if err := f.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	screenUniform(t, host.screen, color.RGBA{B: 255, A: 255})
}

func TestFilterReloadFailureKeepsAtlas(t *testing.T) {
	a := twoToneAtlas(t)
	f := New(newFakeHost(8, 8), 8, 8, WithAtlas(a))
	defer f.Dispose()

	if err := f.ReloadAtlas(context.Background(), "gopher://nope"); err == nil {
		t.Fatal("expected error")
	}
	if f.Atlas() != a {
		t.Error("failed reload must keep the previous atlas")
	}
}

func TestFilterGeneratesDefaultAtlas(t *testing.T) {
	f := New(newFakeHost(8, 8), 8, 8)
	defer f.Dispose()
	waitReady(t, f)

	a := f.Atlas()
	if a == nil {
		t.Fatal("default atlas not generated")
	}
	if got, want := a.CellCount(), len([]rune(atlas.DefaultCharset)); got != want {
		t.Errorf("CellCount() = %d, want %d", got, want)
	}
}

func TestFilterRenderPassThrough(t *testing.T) {
	host := newFakeHost(8, 8)
	f := New(host, 8, 8, WithAtlas(twoToneAtlas(t)))
	defer f.Dispose()

	red := color.RGBA{R: 255, A: 255}
	if err := f.Render(red, nil); err != nil {
		t.Fatal(err)
	}
	screenUniform(t, host.screen, red)
	if host.target != host.screen {
		t.Error("pass-through must not rebind the host target")
	}

	f.Enable()
	f.Disable()
	if err := f.Render(red, nil); err != nil {
		t.Fatal(err)
	}
	screenUniform(t, host.screen, red)
}

func TestFilterRenderMosaic(t *testing.T) {
	host := newFakeHost(16, 12)
	f := New(host, 16, 12, WithAtlas(twoToneAtlas(t)), WithMosaicSize(4))
	defer f.Dispose()
	f.Enable()

	if err := f.Render(color.RGBA{A: 255}, nil); err != nil {
		t.Fatal(err)
	}
	if host.target != host.screen {
		t.Error("host target not restored")
	}
	screenUniform(t, host.screen, color.RGBA{B: 255, A: 255})

	captured := f.RenderTarget().(*render.PixmapTarget)
	if got := captured.GetPixel(3, 3); got != (color.RGBA{A: 255}) {
		t.Errorf("captured pixel = %v, want the scene color", got)
	}

	p := f.Params()
	if p.Width != 16 || p.Height != 12 || p.CellSize != 4 || p.CellCount != 2 {
		t.Errorf("Params() = %+v", p)
	}
}

func TestFilterRenderRestoresTarget(t *testing.T) {
	t.Run("on error", func(t *testing.T) {
		host := newFakeHost(8, 8)
		host.err = errors.New("scene broken")
		f := New(host, 8, 8, WithAtlas(twoToneAtlas(t)))
		defer f.Dispose()
		f.Enable()

		if err := f.Render(nil, nil); !errors.Is(err, host.err) {
			t.Errorf("Render() = %v, want host error", err)
		}
		if host.target != host.screen {
			t.Error("host target not restored after error")
		}
	})

	t.Run("on panic", func(t *testing.T) {
		host := newFakeHost(8, 8)
		host.panics = true
		f := New(host, 8, 8, WithAtlas(twoToneAtlas(t)))
		defer f.Dispose()
		f.Enable()

		func() {
			defer func() {
				if recover() == nil {
					t.Error("expected panic to propagate")
				}
			}()
			_ = f.Render(nil, nil)
		}()
		if host.target != host.screen {
			t.Error("host target not restored after panic")
		}
	})
}

func TestFilterGrid(t *testing.T) {
	f := New(newFakeHost(800, 600), 800, 600, WithAtlas(twoToneAtlas(t)), WithMosaicSize(10))
	defer f.Dispose()

	g := f.Grid()
	if g.Count != 4800 || g.Capacity < 4800 {
		t.Fatalf("800x600 at 10px: %+v", g)
	}

	f.SetMosaicSize(20)
	g = f.Grid()
	if g.Count != 1200 || g.Capacity < 4800 {
		t.Errorf("capacity must not shrink: %+v", g)
	}

	f.SetSize(1000, 1000)
	g = f.Grid()
	if g.Count != 2500 || g.Capacity < 4800 {
		t.Errorf("after resize: %+v", g)
	}
	if w := f.RenderTarget().Width(); w != 1000 {
		t.Errorf("capture width = %d, want 1000", w)
	}

	f.SetMosaicSize(0)
	if got := f.Grid().CellSize; got != 1 {
		t.Errorf("mosaic size clamps to 1, got %d", got)
	}
}

func TestFilterPointerListenerPolicy(t *testing.T) {
	hub := NewPointerHub()
	f := New(newFakeHost(8, 8), 8, 8,
		WithAtlas(twoToneAtlas(t)),
		WithPointerSource(hub),
		WithAvoid(true),
	)
	defer f.Dispose()

	steps := []struct {
		name string
		do   func()
		want int
	}{
		{"ready but not enabled", func() {}, 0},
		{"enable with avoid", f.Enable, 1},
		{"avoid off, mode first", func() { f.SetAvoid(false) }, 0},
		{"offsetRow mode", func() { f.SetSetSelectionMode(SetOffsetRow) }, 1},
		{"repeat mode", func() { f.SetSetSelectionMode(SetOffsetRow) }, 1},
		{"disable", f.Disable, 0},
		{"enable again", f.Enable, 1},
		{"remove source", func() { f.SetPointerSource(nil) }, 0},
		{"restore source", func() { f.SetPointerSource(hub) }, 1},
		{"dispose", f.Dispose, 0},
	}
	for _, s := range steps {
		s.do()
		if got := hub.Listeners(); got != s.want {
			t.Fatalf("%s: listeners = %d, want %d", s.name, got, s.want)
		}
	}
}

func TestFilterAvoidConvergence(t *testing.T) {
	clock := NewManualClock(time.Unix(100, 0))
	hub := NewPointerHub()
	f := New(newFakeHost(64, 64), 64, 64,
		WithAtlas(twoToneAtlas(t)),
		WithClock(clock),
		WithPointerSource(hub),
		WithAvoid(true),
		WithWorkers(1),
	)
	defer f.Dispose()
	f.Enable()
	hub.Move(10, 20)

	for range 60 {
		clock.Advance(16 * time.Millisecond)
		if err := f.Render(nil, nil); err != nil {
			t.Fatal(err)
		}
	}
	p := f.Params()
	if diff := DefaultAvoidStrength - p.AvoidStrength; diff < 0 || diff > 0.01*DefaultAvoidStrength {
		t.Errorf("AvoidStrength = %v, want within 1%% of %v", p.AvoidStrength, DefaultAvoidStrength)
	}
	wantX, wantY := DeviceToNDC(10, 20, 64, 64)
	if p.PointerX != wantX || p.PointerY != wantY || !p.PointerInside {
		t.Errorf("pointer = (%v,%v,%v), want (%v,%v,true)", p.PointerX, p.PointerY, p.PointerInside, wantX, wantY)
	}

	hub.Leave()
	for range 60 {
		clock.Advance(16 * time.Millisecond)
		if err := f.Render(nil, nil); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.Params().AvoidStrength; got > 0.01*DefaultAvoidStrength {
		t.Errorf("AvoidStrength after leave = %v, want near 0", got)
	}
}

func TestFilterAvoidDisabledHasNoDisplacement(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	hub := NewPointerHub()
	f := New(newFakeHost(32, 32), 32, 32,
		WithAtlas(twoToneAtlas(t)),
		WithClock(clock),
		WithPointerSource(hub),
		WithSetSelectionMode(SetOffsetRow),
		WithMosaicSize(4),
	)
	defer f.Dispose()
	f.Enable()
	hub.Move(16, 16)

	for range 10 {
		clock.Advance(16 * time.Millisecond)
		if err := f.Render(nil, nil); err != nil {
			t.Fatal(err)
		}
	}
	p := f.Params()
	var g Grid
	g.Build(32, 32, 4)
	for i, cell := range g.Instances() {
		if dx, dy := Displacement(&p, cell); dx != 0 || dy != 0 {
			t.Fatalf("cell %d displaced by (%v,%v) with avoidance off", i, dx, dy)
		}
	}
}

func TestFilterCycleRows(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	// twoToneAtlas is 4px tall, enough for three 1px rows.
	atl, err := twoToneAtlas(t).WithSetCount(3)
	if err != nil {
		t.Fatal(err)
	}
	f := New(newFakeHost(8, 8), 8, 8,
		WithAtlas(atl),
		WithClock(clock),
		WithSetSelectionMode(SetCycle),
	)
	defer f.Dispose()
	f.Enable()

	if got := f.Atlas().SetCount(); got != 3 {
		t.Fatalf("atlas SetCount() = %d, want 3", got)
	}

	clock.Advance(50 * time.Millisecond)
	var rows []int
	for range 4 {
		if err := f.Render(nil, nil); err != nil {
			t.Fatal(err)
		}
		p := f.Params()
		rows = append(rows, SelectTile(&p, Instance{}, 0.2).Row)
		clock.Advance(100 * time.Millisecond)
	}
	want := []int{0, 1, 2, 0}
	for i := range want {
		if rows[i] != want[i] {
			t.Fatalf("rows = %v, want %v", rows, want)
		}
	}
}

func TestFilterNoiseThrottle(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	f := New(newFakeHost(8, 8), 8, 8,
		WithAtlas(twoToneAtlas(t)),
		WithClock(clock),
		WithNoiseFPS(10),
		WithNoiseIntensity(0.5),
	)
	defer f.Dispose()
	f.Enable()

	frame := func(advance time.Duration) float64 {
		t.Helper()
		clock.Advance(advance)
		if err := f.Render(nil, nil); err != nil {
			t.Fatal(err)
		}
		return f.Params().NoiseTime
	}

	if got := frame(50 * time.Millisecond); got != 0 {
		t.Errorf("noise advanced early: %v", got)
	}
	if got := frame(50 * time.Millisecond); got != 0.1 {
		t.Errorf("noise time = %v, want 0.1", got)
	}
	if got := frame(50 * time.Millisecond); got != 0.1 {
		t.Errorf("noise must hold between ticks, got %v", got)
	}

	f.SetNoiseFPS(5)
	if got := frame(150 * time.Millisecond); got != 0.1 {
		t.Errorf("SetNoiseFPS must restart the interval, got %v", got)
	}
	if got := frame(50 * time.Millisecond); got != 0.35 {
		t.Errorf("noise time = %v, want 0.35", got)
	}
}

func TestFilterKeepsSuppliedAtlasLayout(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 12))
	atl, err := atlas.New(img, 2, 3)
	if err != nil {
		t.Fatal(err)
	}

	// The atlas layout wins over explicit counts.
	f := New(newFakeHost(8, 8), 8, 8, WithAtlas(atl), WithSetCount(1), WithCellCount(5))
	defer f.Dispose()

	if f.Atlas() != atl {
		t.Error("Atlas() is not the supplied atlas")
	}
	if got := f.Atlas().SetCount(); got != 3 {
		t.Errorf("SetCount() = %d, want 3", got)
	}
	s := f.Settings()
	if s.SetCount != 3 || s.CellCount != 2 {
		t.Errorf("Settings() sets/cells = %d/%d, want 3/2", s.SetCount, s.CellCount)
	}
}

func TestFilterSetSetCount(t *testing.T) {
	f := New(newFakeHost(8, 8), 8, 8, WithAtlas(twoToneAtlas(t)))
	defer f.Dispose()

	f.SetSetCount(2)
	if got := f.Atlas().SetCount(); got != 2 {
		t.Errorf("SetCount() = %d, want 2", got)
	}

	// 4px tall atlas cannot hold 10 rows; the previous layout stays.
	f.SetSetCount(10)
	if got := f.Atlas().SetCount(); got != 2 {
		t.Errorf("SetCount() = %d, want 2", got)
	}
}

func TestFilterSettersClamp(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	f := New(newFakeHost(8, 8), 8, 8, WithAtlas(twoToneAtlas(t)), WithClock(clock))
	defer f.Dispose()
	f.Enable()

	f.SetNoiseIntensity(3)
	f.SetNoiseFPS(0)
	f.SetAvoidRadius(-5)
	f.SetAvoidStrength(-1)
	f.SetOffsetRowRadius(-2)
	f.SetBackgroundColor(color.RGBA{R: 10, A: 255})

	clock.Advance(time.Second)
	if err := f.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	p := f.Params()
	if p.NoiseIntensity != 1 {
		t.Errorf("NoiseIntensity = %v, want 1", p.NoiseIntensity)
	}
	if p.AvoidRadius != 0 || p.OffsetRowRadius != 0 {
		t.Errorf("radii = %v, %v, want 0", p.AvoidRadius, p.OffsetRowRadius)
	}
	if !p.HasBackground || p.Background != (color.NRGBA{R: 10, A: 255}) {
		t.Errorf("Background = %v (%v)", p.Background, p.HasBackground)
	}

	f.SetBackgroundColor(nil)
	if err := f.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	if f.Params().HasBackground {
		t.Error("nil background should clear it")
	}
}

func TestFilterUsesAccelerator(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	mock := &mockAccelerator{name: "mock"}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatal(err)
	}

	host := newFakeHost(16, 16)
	a := twoToneAtlas(t)
	f := New(host, 16, 16, WithAtlas(a), WithMosaicSize(4))
	f.Enable()

	if err := f.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	if mock.drawCount() != 1 {
		t.Fatalf("accelerator draws = %d, want 1", mock.drawCount())
	}
	mock.mu.Lock()
	n := len(mock.lastOrder)
	mock.mu.Unlock()
	if n != 16 {
		t.Errorf("order has %d cells, want 16", n)
	}
	// The mock draws nothing, so only the transparent background remains.
	screenUniform(t, host.screen, color.RGBA{})

	f.Dispose()
	if mock.releasedCount(a) != 1 {
		t.Error("Dispose must release the atlas on the accelerator")
	}
}

func TestFilterAcceleratorFallback(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	for _, drawErr := range []error{ErrFallbackToCPU, errors.New("device lost")} {
		mock := &mockAccelerator{name: "mock", drawErr: drawErr}
		if err := RegisterAccelerator(mock); err != nil {
			t.Fatal(err)
		}

		host := newFakeHost(8, 8)
		f := New(host, 8, 8, WithAtlas(twoToneAtlas(t)), WithMosaicSize(4))
		f.Enable()
		if err := f.Render(nil, nil); err != nil {
			t.Fatal(err)
		}
		if mock.drawCount() != 1 {
			t.Fatalf("accelerator not consulted for %v", drawErr)
		}
		screenUniform(t, host.screen, color.RGBA{B: 255, A: 255})
		f.Dispose()
	}
}

func TestFilterAccelerationDisabled(t *testing.T) {
	resetAccelerator()
	t.Cleanup(resetAccelerator)

	mock := &mockAccelerator{name: "mock"}
	if err := RegisterAccelerator(mock); err != nil {
		t.Fatal(err)
	}
	host := newFakeHost(8, 8)
	f := New(host, 8, 8, WithAtlas(twoToneAtlas(t)), WithAcceleration(false))
	defer f.Dispose()
	f.Enable()
	if err := f.Render(nil, nil); err != nil {
		t.Fatal(err)
	}
	if mock.drawCount() != 0 {
		t.Error("accelerator used despite WithAcceleration(false)")
	}
}

func TestFilterDisposeDuringLoad(t *testing.T) {
	release := make(chan struct{})
	data := func() []byte {
		var buf bytes.Buffer
		if err := png.Encode(&buf, twoToneAtlas(t).Image()); err != nil {
			t.Fatal(err)
		}
		return buf.Bytes()
	}()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := New(newFakeHost(8, 8), 8, 8,
		WithAtlasURL(srv.URL),
		WithAtlasLoader(&atlas.Loader{Client: srv.Client()}),
	)
	f.Dispose()
	close(release)

	select {
	case <-f.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("load never resolved after Dispose")
	}
	if f.AtlasLoaded() {
		t.Error("atlas installed after Dispose")
	}
	if f.State() != StateDisposed {
		t.Errorf("State() = %v", f.State())
	}
}

func TestFilterStateString(t *testing.T) {
	tests := []struct {
		s    FilterStateKind
		want string
	}{
		{StateLoading, "Loading"},
		{StateReady, "Ready"},
		{StateEnabled, "Enabled"},
		{StateDisabled, "Disabled"},
		{StateDisposed, "Disposed"},
		{FilterStateKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestFilterSettingsReflectSetters(t *testing.T) {
	f := New(newFakeHost(8, 8), 8, 8, WithAtlas(twoToneAtlas(t)))
	defer f.Dispose()

	// No frame is rendered, so Params still holds the zero snapshot.
	f.SetAvoid(true)
	f.SetSetSelectionMode(SetRandom)
	f.SetMosaicSize(3)
	f.SetNoiseIntensity(2)

	s := f.Settings()
	if !s.Avoid || s.Mode != SetRandom || s.MosaicSize != 3 || s.NoiseIntensity != 1 {
		t.Errorf("Settings() = %+v", s)
	}
	if p := f.Params(); p.Avoid {
		t.Error("Params() changed without a rendered frame")
	}
}
