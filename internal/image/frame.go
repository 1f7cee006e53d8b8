// Package image provides the pixel views, sampling and decoding used by the
// mosaic cell renderer and the atlas loader.
package image

import (
	"errors"
	"image"
)

// ErrInvalidFrame is returned when frame dimensions do not match the pixel data.
var ErrInvalidFrame = errors.New("image: invalid frame")

// Frame is a read-write view of premultiplied RGBA8 pixels.
//
// A Frame does not own its memory; it usually wraps the pixels of a
// render.RenderTarget.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// NewFrame wraps pix as a width x height frame with the given stride.
func NewFrame(pix []byte, width, height, stride int) (Frame, error) {
	if width <= 0 || height <= 0 || stride < width*4 {
		return Frame{}, ErrInvalidFrame
	}
	if len(pix) < (height-1)*stride+width*4 {
		return Frame{}, ErrInvalidFrame
	}
	return Frame{Pix: pix, Width: width, Height: height, Stride: stride}, nil
}

// FrameFromRGBA wraps an *image.RGBA. The frame shares memory with img.
func FrameFromRGBA(img *image.RGBA) Frame {
	b := img.Bounds()
	return Frame{Pix: img.Pix, Width: b.Dx(), Height: b.Dy(), Stride: img.Stride}
}

// Empty reports whether the frame has no pixels.
func (f Frame) Empty() bool {
	return f.Width <= 0 || f.Height <= 0 || len(f.Pix) == 0
}

// PixOffset returns the byte offset of pixel (x, y).
func (f Frame) PixOffset(x, y int) int {
	return y*f.Stride + x*4
}

// RGBA returns the premultiplied pixel at (x, y). Coordinates are clamped.
func (f Frame) RGBA(x, y int) (r, g, b, a byte) {
	x = clamp(x, 0, f.Width-1)
	y = clamp(y, 0, f.Height-1)
	i := f.PixOffset(x, y)
	p := f.Pix[i : i+4 : i+4]
	return p[0], p[1], p[2], p[3]
}

// Row returns the bytes of row y, limited to the frame width.
func (f Frame) Row(y int) []byte {
	start := y * f.Stride
	return f.Pix[start : start+f.Width*4]
}
