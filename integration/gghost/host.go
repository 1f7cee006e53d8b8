// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gghost

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/mosaic"
	"github.com/gogpu/mosaic/render"
	xdraw "golang.org/x/image/draw"
)

// Common errors returned by Host.Render.
var (
	// ErrNoTarget is returned when no render target is bound.
	ErrNoTarget = errors.New("gghost: no render target bound")

	// ErrNoPixels is returned when the bound target has no CPU pixels.
	ErrNoPixels = errors.New("gghost: render target has no CPU pixels")

	// ErrSceneType is returned for scene or camera values of the wrong type.
	ErrSceneType = errors.New("gghost: unsupported scene or camera type")
)

// Host renders a Scene with gg into the bound render target.
// It implements render.HostRenderer.
type Host struct {
	target render.RenderTarget
	dc     *gg.Context
}

var _ render.HostRenderer = (*Host)(nil)

// New creates a host bound to target.
func New(target render.RenderTarget) *Host {
	return &Host{target: target}
}

// NewWithDevice creates a host bound to target and shares provider's GPU
// device with the registered mosaic accelerator.
//
// Sharing is best effort: an accelerator that cannot use the provider keeps
// its own device.
func NewWithDevice(target render.RenderTarget, provider gpucontext.DeviceProvider) *Host {
	if provider != nil {
		if err := mosaic.SetAcceleratorDeviceProvider(provider); err != nil {
			mosaic.Logger().Debug("gghost: device sharing unavailable", "err", err)
		}
	}
	return New(target)
}

// RenderTarget returns the bound target.
func (h *Host) RenderTarget() render.RenderTarget { return h.target }

// SetRenderTarget binds target for subsequent Render calls.
func (h *Host) SetRenderTarget(target render.RenderTarget) { h.target = target }

// Render draws scene (a *Scene) through camera (a *Camera) into the bound
// target. A nil camera uses DefaultCamera.
func (h *Host) Render(scene, camera any) error {
	s, ok := scene.(*Scene)
	if !ok || s == nil {
		return fmt.Errorf("%w: scene %T", ErrSceneType, scene)
	}
	cam := DefaultCamera()
	switch c := camera.(type) {
	case nil:
	case *Camera:
		if c != nil {
			cam = c
		}
	case Camera:
		cam = &c
	default:
		return fmt.Errorf("%w: camera %T", ErrSceneType, camera)
	}

	t := h.target
	if t == nil {
		return ErrNoTarget
	}
	if t.Pixels() == nil {
		return ErrNoPixels
	}
	w, hgt := t.Width(), t.Height()
	if err := h.ensureContext(w, hgt); err != nil {
		return err
	}

	if err := draw(h.dc, s, cam); err != nil {
		return err
	}
	if err := h.dc.FlushGPU(); err != nil {
		return fmt.Errorf("gghost: flush: %w", err)
	}
	copyToTarget(t, h.dc.Image())
	return nil
}

func (h *Host) ensureContext(w, hgt int) error {
	if h.dc == nil {
		h.dc = gg.NewContext(w, hgt)
		return nil
	}
	if err := h.dc.Resize(w, hgt); err != nil {
		return fmt.Errorf("gghost: %w", err)
	}
	return nil
}

// draw paints the background gradient and the spheres, back to front.
func draw(dc *gg.Context, s *Scene, cam *Camera) error {
	w, h := float64(dc.Width()), float64(dc.Height())

	bg := gg.NewLinearGradientBrush(0, 0, 0, h).
		AddColorStop(0, s.Sky).
		AddColorStop(1, s.Ground)
	dc.SetFillBrush(bg)
	dc.DrawRectangle(0, 0, w, h)
	if err := dc.Fill(); err != nil {
		return fmt.Errorf("gghost: background: %w", err)
	}

	v := newView(cam, dc.Width(), dc.Height())
	light := s.Light.Normalize()
	// Screen-space offset of the highlight, from the light direction.
	hx, hy := light.Dot(v.right), -light.Dot(v.up)

	for _, p := range v.layout(s.Spheres) {
		base := p.sphere.Color
		grad := gg.NewRadialGradientBrush(p.x, p.y, 0, p.r).
			SetFocus(p.x+hx*p.r*0.5, p.y+hy*p.r*0.5).
			AddColorStop(0, base.Lerp(gg.White, 0.6)).
			AddColorStop(0.7, base).
			AddColorStop(1, base.Lerp(gg.Black, 0.6))
		dc.SetFillBrush(grad)
		dc.DrawCircle(p.x, p.y, p.r)
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("gghost: sphere: %w", err)
		}
	}
	return nil
}

// copyToTarget copies img into the target pixels.
func copyToTarget(t render.RenderTarget, img image.Image) {
	dst := &image.RGBA{
		Pix:    t.Pixels(),
		Stride: t.Stride(),
		Rect:   image.Rect(0, 0, t.Width(), t.Height()),
	}
	xdraw.Draw(dst, dst.Rect, img, img.Bounds().Min, xdraw.Src)
}
