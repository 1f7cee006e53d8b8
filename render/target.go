// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
)

// RenderTarget defines where rendering output goes.
//
// The filter reads the captured frame from one RenderTarget (its offscreen
// capture target) and writes the mosaic into another (the host's visible
// target). Both must expose CPU pixels; a target whose Pixels returns nil is
// skipped by the filter.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Pixels returns direct access to premultiplied RGBA pixel data,
	// 4 bytes per pixel, rows Stride bytes apart.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// PixmapTarget is a CPU-backed render target using *image.RGBA.
//
// It is both the filter's offscreen capture target and the usual visible
// target of CPU hosts.
//
// Example:
//
//	target := render.NewPixmapTarget(800, 600)
//	host.SetRenderTarget(target)
//	_ = host.Render(scene, camera)
//	img := target.Image()
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed render target.
// Non-positive dimensions are clamped to 1.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, max(width, 1), max(height, 1))),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA as a render target.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int {
	return t.img.Bounds().Dx()
}

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int {
	return t.img.Bounds().Dy()
}

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte {
	return t.img.Pix
}

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int {
	return t.img.Stride
}

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.RGBA {
	return t.img
}

// Clear fills the entire target with the given color.
func (t *PixmapTarget) Clear(c color.Color) {
	Fill(t, c)
}

// GetPixel returns the color at the given coordinates.
func (t *PixmapTarget) GetPixel(x, y int) color.RGBA {
	return t.img.RGBAAt(x, y)
}

// Resize replaces the backing image when the dimensions change.
// The contents are not preserved.
func (t *PixmapTarget) Resize(width, height int) {
	width, height = max(width, 1), max(height, 1)
	if t.Width() == width && t.Height() == height {
		return
	}
	t.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Ensure PixmapTarget implements RenderTarget.
var _ RenderTarget = (*PixmapTarget)(nil)

// Fill sets every pixel of target to c. It is a no-op for targets without
// CPU pixels.
func Fill(target RenderTarget, c color.Color) {
	pix := target.Pixels()
	if pix == nil {
		return
	}
	r, g, b, a := c.RGBA()
	// Convert from 16-bit to 8-bit (mask ensures value fits in uint8)
	//nolint:gosec // G115: mask ensures no overflow
	px := [4]byte{uint8((r >> 8) & 0xFF), uint8((g >> 8) & 0xFF), uint8((b >> 8) & 0xFF), uint8((a >> 8) & 0xFF)}

	w, h, stride := target.Width(), target.Height(), target.Stride()
	if h == 0 || w == 0 {
		return
	}
	row := pix[:w*4]
	for x := 0; x < w; x++ {
		copy(row[x*4:x*4+4], px[:])
	}
	for y := 1; y < h; y++ {
		copy(pix[y*stride:y*stride+w*4], row)
	}
}
