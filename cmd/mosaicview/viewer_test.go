package main

import (
	"context"
	"testing"
	"time"

	"github.com/gogpu/mosaic"
	"github.com/gogpu/mosaic/internal/cli"
)

func newTestViewer(t *testing.T) *viewer {
	t.Helper()
	cfg := cli.Default()
	cfg.GPU = false
	cfg.MosaicSize = 4
	cfg.Avoid = true

	v := newViewer(cfg, 32, 32, 0)
	t.Cleanup(v.close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := v.filter.WaitReady(ctx); err != nil {
		t.Fatal(err)
	}
	return v
}

func TestViewerFrame(t *testing.T) {
	v := newTestViewer(t)

	pix, err := v.frame()
	if err != nil {
		t.Fatal(err)
	}
	if len(pix) != 32*32*4 {
		t.Errorf("len(pix) = %d, want %d", len(pix), 32*32*4)
	}
	if got := v.filter.Grid().Count; got != 64 {
		t.Errorf("grid count = %d, want 64", got)
	}
}

func TestViewerCursor(t *testing.T) {
	v := newTestViewer(t)

	v.cursor(24, 8)
	if _, err := v.frame(); err != nil {
		t.Fatal(err)
	}
	p := v.filter.Params()
	if !p.PointerInside || p.PointerX != 0.5 || p.PointerY != 0.5 {
		t.Errorf("pointer = (%v, %v, %v), want (0.5, 0.5, inside)", p.PointerX, p.PointerY, p.PointerInside)
	}

	v.cursor(-1, 8)
	if _, err := v.frame(); err != nil {
		t.Fatal(err)
	}
	if v.filter.Params().PointerInside {
		t.Error("cursor outside the window should leave")
	}
}

func TestViewerActions(t *testing.T) {
	v := newTestViewer(t)
	if _, err := v.frame(); err != nil {
		t.Fatal(err)
	}

	v.apply(actionGrow)
	if got := v.filter.Grid().CellSize; got != 5 {
		t.Errorf("CellSize after grow = %d, want 5", got)
	}
	v.apply(actionShrink)
	v.apply(actionShrink)
	if got := v.filter.Grid().CellSize; got != 3 {
		t.Errorf("CellSize after shrink = %d, want 3", got)
	}

	v.apply(actionNextMode)
	if _, err := v.frame(); err != nil {
		t.Fatal(err)
	}
	if got := v.filter.Params().Mode; got != mosaic.SetRandom {
		t.Errorf("mode = %v, want random", got)
	}

	v.apply(actionToggle)
	if v.filter.Enabled() {
		t.Error("toggle should disable the filter")
	}

	v.apply(actionReload)
	if !v.filter.AtlasLoaded() {
		t.Error("reload of the generated atlas failed")
	}
}

func TestViewerResize(t *testing.T) {
	v := newTestViewer(t)
	v.resize(40, 20)
	if w, h := v.target.Width(), v.target.Height(); w != 40 || h != 20 {
		t.Errorf("target = %dx%d, want 40x20", w, h)
	}
	if got := v.filter.Grid().Count; got != 50 {
		t.Errorf("grid count = %d, want 50", got)
	}
}

func TestViewerTogglesBetweenFrames(t *testing.T) {
	v := newTestViewer(t)
	v.apply(actionToggle) // disabled: no frames update Params

	v.apply(actionToggleAvoid)
	v.apply(actionToggleAvoid)
	v.apply(actionToggleNoise)
	v.apply(actionNextMode)
	v.apply(actionNextMode)

	s := v.filter.Settings()
	if !s.Avoid {
		t.Error("avoid toggled twice should be back on")
	}
	if s.NoiseIntensity != 0.3 {
		t.Errorf("NoiseIntensity = %v, want 0.3", s.NoiseIntensity)
	}
	if s.Mode != mosaic.SetCycle {
		t.Errorf("mode = %v, want cycle", s.Mode)
	}
}
