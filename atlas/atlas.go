package atlas

import (
	"errors"
	"fmt"
	"image"

	internalimage "github.com/gogpu/mosaic/internal/image"
)

// Errors returned by atlas construction and loading.
var (
	// ErrTooSmall is returned when the image has fewer pixels than tiles
	// along either axis.
	ErrTooSmall = errors.New("atlas: image smaller than declared layout")

	// ErrInvalidLayout is returned for a non-positive cell or set count.
	ErrInvalidLayout = errors.New("atlas: cell and set counts must be positive")
)

// Atlas is an immutable tile atlas with straight-alpha RGBA pixels.
type Atlas struct {
	img       *image.NRGBA
	cellCount int
	setCount  int
}

// New creates an atlas over img with the given layout.
// The image is converted to NRGBA when necessary and must not be modified
// afterwards.
func New(img image.Image, cellCount, setCount int) (*Atlas, error) {
	if img == nil {
		return nil, internalimage.ErrEmptyData
	}
	if cellCount < 1 || setCount < 1 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidLayout, cellCount, setCount)
	}
	b := img.Bounds()
	if b.Dx() < cellCount || b.Dy() < setCount {
		return nil, fmt.Errorf("%w: %dx%d image for %d cells x %d sets",
			ErrTooSmall, b.Dx(), b.Dy(), cellCount, setCount)
	}
	return &Atlas{
		img:       internalimage.ToNRGBA(img),
		cellCount: cellCount,
		setCount:  setCount,
	}, nil
}

// CellCount returns the number of tile columns.
func (a *Atlas) CellCount() int { return a.cellCount }

// SetCount returns the number of tile rows.
func (a *Atlas) SetCount() int { return a.setCount }

// Width returns the atlas width in pixels.
func (a *Atlas) Width() int { return a.img.Bounds().Dx() }

// Height returns the atlas height in pixels.
func (a *Atlas) Height() int { return a.img.Bounds().Dy() }

// Image returns the atlas pixels. The image must not be modified.
func (a *Atlas) Image() *image.NRGBA { return a.img }

// WithSetCount returns an atlas sharing the same pixels but declaring a
// different number of rows. It is used when the host changes setCount after
// loading.
func (a *Atlas) WithSetCount(setCount int) (*Atlas, error) {
	if setCount == a.setCount {
		return a, nil
	}
	return New(a.img, a.cellCount, setCount)
}

// Tile returns the pixel rectangle of the tile at (col, row).
// Indices are clamped to the layout.
func (a *Atlas) Tile(col, row int) image.Rectangle {
	col = min(max(col, 0), a.cellCount-1)
	row = min(max(row, 0), a.setCount-1)
	w, h := a.Width(), a.Height()
	return image.Rect(
		col*w/a.cellCount, row*h/a.setCount,
		(col+1)*w/a.cellCount, (row+1)*h/a.setCount,
	)
}

// SampleTile samples the tile at (col, row) with nearest filtering at
// tile-local coordinates (u, v), clamping to the tile edges. The result is
// straight alpha.
func (a *Atlas) SampleTile(col, row int, u, v float64) (r, g, b, alpha byte) {
	return internalimage.SampleNearestRect(a.img, a.Tile(col, row), u, v)
}
