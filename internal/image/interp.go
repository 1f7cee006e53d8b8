package image

import (
	"image"
	"math"
)

// SampleBilinear performs bilinear interpolation at normalized coordinates
// (u, v) where (0,0) is the top-left corner and (1,1) the bottom-right.
// Out-of-bounds coordinates are clamped to the edge.
func SampleBilinear(f Frame, u, v float64) (r, g, b, a byte) {
	// Convert normalized coords to continuous pixel coords
	fx := u*float64(f.Width) - 0.5
	fy := v*float64(f.Height) - 0.5

	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	r00, g00, b00, a00 := f.RGBA(x0, y0)
	r10, g10, b10, a10 := f.RGBA(x0+1, y0)
	r01, g01, b01, a01 := f.RGBA(x0, y0+1)
	r11, g11, b11, a11 := f.RGBA(x0+1, y0+1)

	r = roundByte(lerp2D(float64(r00), float64(r10), float64(r01), float64(r11), tx, ty))
	g = roundByte(lerp2D(float64(g00), float64(g10), float64(g01), float64(g11), tx, ty))
	b = roundByte(lerp2D(float64(b00), float64(b10), float64(b01), float64(b11), tx, ty))
	a = roundByte(lerp2D(float64(a00), float64(a10), float64(a01), float64(a11), tx, ty))
	return r, g, b, a
}

// SampleNearestRect performs nearest-neighbor sampling of the sub-rectangle
// rect of img at normalized coordinates (u, v) relative to that rectangle.
// Sampling never leaves rect, so neighboring regions of an atlas do not bleed
// into each other.
func SampleNearestRect(img *image.NRGBA, rect image.Rectangle, u, v float64) (r, g, b, a byte) {
	w, h := rect.Dx(), rect.Dy()
	if w <= 0 || h <= 0 {
		return 0, 0, 0, 0
	}
	x := clamp(int(math.Floor(u*float64(w))), 0, w-1) + rect.Min.X
	y := clamp(int(math.Floor(v*float64(h))), 0, h-1) + rect.Min.Y

	i := img.PixOffset(x, y)
	p := img.Pix[i : i+4 : i+4]
	return p[0], p[1], p[2], p[3]
}

// Luma returns the Rec. 601 luma of a color in [0, 1].
func Luma(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// clamp clamps an integer value to [minVal, maxVal].
//
//nolint:unparam // minVal is always 0 currently, but function is general-purpose
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// roundByte rounds v to the nearest byte, clamped to [0, 255].
func roundByte(v float64) byte {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return byte(v + 0.5)
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// lerp2D performs bilinear interpolation on a 2x2 grid.
func lerp2D(v00, v10, v01, v11, tx, ty float64) float64 {
	v0 := lerp(v00, v10, tx)
	v1 := lerp(v01, v11, tx)
	return lerp(v0, v1, ty)
}
