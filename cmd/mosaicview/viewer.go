package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gogpu/mosaic"
	"github.com/gogpu/mosaic/integration/gghost"
	"github.com/gogpu/mosaic/internal/cli"
	"github.com/gogpu/mosaic/render"
)

// action is a viewer command bound to a key.
type action int

const (
	actionToggle action = iota
	actionNextMode
	actionToggleAvoid
	actionGrow
	actionShrink
	actionToggleNoise
	actionReload
)

// viewer drives the filter independently of the window system.
type viewer struct {
	cfg    cli.Config
	orbit  float64
	hub    *mosaic.PointerHub
	target *render.PixmapTarget
	filter *mosaic.Filter
	scene  *gghost.Scene
	camera gghost.Camera
	start  time.Time

	inside     bool
	lastX      int
	lastY      int
	status     string
	statusTime time.Time
}

func newViewer(cfg cli.Config, width, height int, orbit float64) *viewer {
	v := &viewer{
		cfg:    cfg,
		orbit:  orbit,
		hub:    mosaic.NewPointerHub(),
		target: render.NewPixmapTarget(width, height),
		scene:  gghost.DefaultScene(),
		camera: *gghost.DefaultCamera(),
		start:  time.Now(),
	}
	v.filter = mosaic.New(gghost.New(v.target), width, height, cfg.Options(v.hub, nil)...)
	v.filter.Enable()
	return v
}

func (v *viewer) close() { v.filter.Dispose() }

// resize matches the surface to the window's device size.
func (v *viewer) resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if width == v.target.Width() && height == v.target.Height() {
		return
	}
	v.target.Resize(width, height)
	v.filter.SetSize(width, height)
}

// cursor publishes pointer events for a cursor at (x, y) in device pixels.
func (v *viewer) cursor(x, y int) {
	inside := x >= 0 && y >= 0 && x < v.target.Width() && y < v.target.Height()
	switch {
	case inside && (!v.inside || x != v.lastX || y != v.lastY):
		v.hub.Move(float64(x), float64(y))
	case !inside && v.inside:
		v.hub.Leave()
	}
	v.inside, v.lastX, v.lastY = inside, x, y
}

// apply runs a key action.
func (v *viewer) apply(a action) {
	f := v.filter
	s := f.Settings()
	switch a {
	case actionToggle:
		if f.Enabled() {
			f.Disable()
		} else {
			f.Enable()
		}
		v.setStatus(fmt.Sprintf("filter %v", f.Enabled()))
	case actionNextMode:
		m := (s.Mode + 1) % (mosaic.SetOffsetRow + 1)
		f.SetSetSelectionMode(m)
		v.setStatus("mode " + m.String())
	case actionToggleAvoid:
		f.SetAvoid(!s.Avoid)
		v.setStatus(fmt.Sprintf("avoid %v", !s.Avoid))
	case actionGrow, actionShrink:
		size := s.MosaicSize
		if a == actionGrow {
			size++
		} else {
			size = max(size-1, 1)
		}
		f.SetMosaicSize(size)
		v.setStatus(fmt.Sprintf("size %d", size))
	case actionToggleNoise:
		noise := 0.3
		if s.NoiseIntensity > 0 {
			noise = 0
		}
		f.SetNoiseIntensity(noise)
		v.setStatus(fmt.Sprintf("noise %.1f", noise))
	case actionReload:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := f.ReloadAtlas(ctx, v.cfg.Atlas); err != nil {
			v.setStatus(err.Error())
			return
		}
		v.setStatus("atlas reloaded")
	}
}

func (v *viewer) setStatus(s string) {
	v.status, v.statusTime = s, time.Now()
}

// frame renders one frame and returns the surface pixels.
func (v *viewer) frame() ([]byte, error) {
	cam := v.camera.Orbit(v.orbit * time.Since(v.start).Seconds())
	if err := v.filter.Render(v.scene, &cam); err != nil {
		return nil, err
	}
	return v.target.Pixels(), nil
}

// statusLine returns the text overlay.
func (v *viewer) statusLine() string {
	if !v.filter.IsReady() {
		return "loading atlas..."
	}
	g := v.filter.Grid()
	line := fmt.Sprintf("%dx%d cells", g.Cols, g.Rows)
	if v.status != "" && time.Since(v.statusTime) < 3*time.Second {
		line += "  " + v.status
	}
	return line
}
