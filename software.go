package mosaic

import (
	"cmp"
	"math"
	"slices"
	"sync"

	"github.com/gogpu/mosaic/atlas"
	"github.com/gogpu/mosaic/internal/blend"
	internalimage "github.com/gogpu/mosaic/internal/image"
	"github.com/gogpu/mosaic/internal/parallel"
)

// minBandRows is the smallest number of cell rows handed to one worker.
const minBandRows = 2

// displacedCell is a cell pushed off its grid position.
type displacedCell struct {
	index  int
	dx, dy float64 // pixels
	mag    float64
}

// softwareRenderer draws mosaic cells on the CPU. Undisplaced cells never
// overlap, so they are drawn in parallel bands of cell rows. Displaced cells
// are drawn afterwards, serially, in order of increasing displacement so the
// cells pushed furthest end up on top.
type softwareRenderer struct {
	pool *parallel.WorkerPool // nil renders on the calling goroutine
}

// drawCells draws every active cell of grid into dst.
func (r *softwareRenderer) drawCells(dst, frame internalimage.Frame, grid *Grid, atl *atlas.Atlas, p *RenderParams) {
	if dst.Empty() || frame.Empty() || grid.Count() == 0 {
		return
	}
	cells := grid.Instances()
	cols := grid.Cols()

	var (
		mu        sync.Mutex
		displaced []displacedCell
	)
	parallel.ForEachBand(r.pool, grid.Rows(), minBandRows, func(b parallel.Band) {
		var local []displacedCell
		for i := b.Y0 * cols; i < b.Y1*cols; i++ {
			dx, dy := Displacement(p, cells[i])
			if dx == 0 && dy == 0 {
				drawCell(dst, frame, atl, p, cells[i], 0, 0)
				continue
			}
			px, py := NDCToPixels(dx, dy, p.Width, p.Height)
			local = append(local, displacedCell{index: i, dx: px, dy: py, mag: math.Hypot(dx, dy)})
		}
		if len(local) > 0 {
			mu.Lock()
			displaced = append(displaced, local...)
			mu.Unlock()
		}
	})

	sortDisplaced(displaced)
	for _, d := range displaced {
		drawCell(dst, frame, atl, p, cells[d.index], d.dx, d.dy)
	}
}

func sortDisplaced(cells []displacedCell) {
	slices.SortFunc(cells, func(a, b displacedCell) int {
		if c := cmp.Compare(a.mag, b.mag); c != 0 {
			return c
		}
		return cmp.Compare(a.index, b.index)
	})
}

// drawOrder returns the indices of the active cells in draw order:
// undisplaced cells in grid order, then displaced cells by increasing
// displacement.
func drawOrder(grid *Grid, p *RenderParams, order []int) []int {
	order = order[:0]
	var displaced []displacedCell
	for i, cell := range grid.Instances() {
		dx, dy := Displacement(p, cell)
		if dx == 0 && dy == 0 {
			order = append(order, i)
			continue
		}
		displaced = append(displaced, displacedCell{index: i, mag: math.Hypot(dx, dy)})
	}
	sortDisplaced(displaced)
	for _, d := range displaced {
		order = append(order, d.index)
	}
	return order
}

// cellBrightness samples the captured frame at the cell's block center.
func cellBrightness(frame internalimage.Frame, cell Instance) float64 {
	r, g, b, _ := internalimage.SampleBilinear(frame, cell.SampleU, cell.SampleV)
	return Luma(float64(r)/255, float64(g)/255, float64(b)/255)
}

// ChooseTile selects the tile for cell from the captured frame. Accelerators
// use it so that every backend picks the same tiles.
func ChooseTile(frame CellTarget, p *RenderParams, cell Instance) TileChoice {
	fr, err := internalimage.NewFrame(frame.Data, frame.Width, frame.Height, frame.Stride)
	if err != nil {
		return TileChoice{Background: true}
	}
	return SelectTile(p, cell, cellBrightness(fr, cell))
}

// ChooseTiles appends the tile choice of every cell to dst. The frame is
// validated once; an invalid frame yields background for every cell.
func ChooseTiles(dst []TileChoice, frame CellTarget, p *RenderParams, cells []Instance) []TileChoice {
	fr, err := internalimage.NewFrame(frame.Data, frame.Width, frame.Height, frame.Stride)
	for _, cell := range cells {
		if err != nil {
			dst = append(dst, TileChoice{Background: true})
			continue
		}
		dst = append(dst, SelectTile(p, cell, cellBrightness(fr, cell)))
	}
	return dst
}

// drawCell composites one cell's tile over dst, offset by (offX, offY) pixels.
func drawCell(dst, frame internalimage.Frame, atl *atlas.Atlas, p *RenderParams, cell Instance, offX, offY float64) {
	choice := SelectTile(p, cell, cellBrightness(frame, cell))
	if choice.Background || atl == nil {
		return
	}

	size := p.CellSize
	left := cell.Col*size + int(math.Round(offX))
	top := cell.Row*size + int(math.Round(offY))

	x0, x1 := max(left, 0), min(left+size, dst.Width)
	y0, y1 := max(top, 0), min(top+size, dst.Height)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	inv := 1 / float64(size)
	for y := y0; y < y1; y++ {
		v := (float64(y-top) + 0.5) * inv
		row := dst.Pix[y*dst.Stride:]
		for x := x0; x < x1; x++ {
			u := (float64(x-left) + 0.5) * inv
			sr, sg, sb, sa := atl.SampleTile(choice.Column, choice.Row, u, v)
			if sa == 0 {
				continue
			}
			sr, sg, sb, sa = blend.Premultiply(sr, sg, sb, sa)
			blend.SourceOverPixel(row[x*4:x*4+4], sr, sg, sb, sa)
		}
	}
}

// fillBackground clears dst to the background color of p, or to transparent.
func fillBackground(dst internalimage.Frame, p *RenderParams) {
	var px [4]byte
	if p.HasBackground {
		c := p.Background
		px[0], px[1], px[2], px[3] = blend.Premultiply(c.R, c.G, c.B, c.A)
	}
	for y := range dst.Height {
		row := dst.Row(y)
		for x := 0; x < len(row); x += 4 {
			copy(row[x:x+4], px[:])
		}
	}
}
