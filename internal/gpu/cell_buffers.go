//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"image"
	"math"

	"github.com/gogpu/mosaic"
	"github.com/gogpu/mosaic/atlas"
)

// Cell flags, mirrored in shaders/mosaic.wgsl.
const (
	cellVisible   uint32 = 1
	cellDisplaced uint32 = 2
)

// GPUParams is the uniform block of the cell compositor (32 bytes).
type GPUParams struct {
	Width, Height  uint32
	CellSize       uint32
	Cols, Rows     uint32
	AtlasWidth     uint32
	DisplacedCount uint32
	_              uint32
}

// GPUCell is one grid cell as seen by the compositor (32 bytes).
// Left and Top are the pixel position of the cell quad after displacement.
type GPUCell struct {
	TileX, TileY uint32
	TileW, TileH uint32
	Left, Top    int32
	Flags        uint32
	_            uint32
}

// cellBatch is the host-side layout of one frame, reused across frames.
type cellBatch struct {
	params    GPUParams
	cells     []GPUCell
	displaced []uint32
	choices   []mosaic.TileChoice
}

// build selects a tile for every active cell and records the displaced cells
// in draw order.
//
//nolint:gosec // grid and atlas dimensions always fit 32 bits
func (b *cellBatch) build(dst, frame mosaic.CellTarget, grid *mosaic.Grid, order []int, atl *atlas.Atlas, p *mosaic.RenderParams) {
	size := grid.CellSize()
	b.cells = b.cells[:0]
	b.displaced = b.displaced[:0]
	b.choices = mosaic.ChooseTiles(b.choices[:0], frame, p, grid.Instances())

	for i, cell := range grid.Instances() {
		gc := GPUCell{
			Left: int32(cell.Col * size),
			Top:  int32(cell.Row * size),
		}
		if dx, dy := mosaic.Displacement(p, cell); dx != 0 || dy != 0 {
			px, py := mosaic.NDCToPixels(dx, dy, p.Width, p.Height)
			gc.Left += int32(math.Round(px))
			gc.Top += int32(math.Round(py))
			gc.Flags |= cellDisplaced
		}
		if choice := b.choices[i]; !choice.Background {
			r := atl.Tile(choice.Column, choice.Row)
			gc.TileX, gc.TileY = uint32(r.Min.X), uint32(r.Min.Y)
			gc.TileW, gc.TileH = uint32(r.Dx()), uint32(r.Dy())
			gc.Flags |= cellVisible
		}
		b.cells = append(b.cells, gc)
	}

	for _, i := range order {
		if i >= 0 && i < len(b.cells) && b.cells[i].Flags&cellDisplaced != 0 {
			b.displaced = append(b.displaced, uint32(i))
		}
	}

	b.params = GPUParams{
		Width:          uint32(dst.Width),
		Height:         uint32(dst.Height),
		CellSize:       uint32(size),
		Cols:           uint32(grid.Cols()),
		Rows:           uint32(grid.Rows()),
		AtlasWidth:     uint32(atl.Width()),
		DisplacedCount: uint32(len(b.displaced)),
	}
}

func encodeParams(p GPUParams) []byte {
	out, _ := binary.Append(nil, binary.LittleEndian, p)
	return out
}

func encodeCells(cells []GPUCell) []byte {
	out, _ := binary.Append(make([]byte, 0, len(cells)*32), binary.LittleEndian, cells)
	return out
}

// encodeIndices serializes indices. An empty list yields one zero entry since
// storage buffers cannot be empty.
func encodeIndices(indices []uint32) []byte {
	if len(indices) == 0 {
		return make([]byte, 4)
	}
	out, _ := binary.Append(make([]byte, 0, len(indices)*4), binary.LittleEndian, indices)
	return out
}

// packAtlas lays the atlas out as one packed u32 per texel, row-major without
// padding. NRGBA byte order already matches the little-endian packing.
func packAtlas(img *image.NRGBA) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, w*h*4)
	for y := range h {
		src := img.Pix[img.PixOffset(b.Min.X, b.Min.Y+y):]
		copy(out[y*w*4:(y+1)*w*4], src[:w*4])
	}
	return out
}

// packTarget copies the target pixels into a tightly packed buffer.
func packTarget(t mosaic.CellTarget) []byte {
	row := t.Width * 4
	out := make([]byte, row*t.Height)
	for y := range t.Height {
		copy(out[y*row:(y+1)*row], t.Data[y*t.Stride:y*t.Stride+row])
	}
	return out
}

// unpackTarget copies a tightly packed buffer back into the target rows.
func unpackTarget(packed []byte, t mosaic.CellTarget) {
	row := t.Width * 4
	for y := range t.Height {
		copy(t.Data[y*t.Stride:y*t.Stride+row], packed[y*row:(y+1)*row])
	}
}
