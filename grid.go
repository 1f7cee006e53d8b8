package mosaic

// Instance is one grid cell: the data a unit quad needs to draw it.
type Instance struct {
	// Col and Row index the cell in the grid.
	Col, Row int

	// SampleU and SampleV are the normalized block center used to sample
	// the captured frame. V grows downward.
	SampleU, SampleV float64

	// CenterX and CenterY are the block center in normalized device
	// coordinates (y up). They translate the unit quad and are the origin
	// of pointer distance calculations.
	CenterX, CenterY float64
}

// GridStats summarizes the grid state.
type GridStats struct {
	Cols, Rows int
	Count      int // active instances
	Capacity   int // high-water mark, never decreases
	CellSize   int
	Generation uint64
}

// Grid is the arena of cell instances covering a frame.
//
// Capacity only grows: when a rebuild needs more instances the backing array
// is reallocated and Generation increments, so accelerators know to rebind
// their instance buffers. Otherwise the active prefix is recomputed in place.
//
// Grid is not safe for concurrent mutation.
type Grid struct {
	width, height int
	cellSize      int
	cols, rows    int
	count         int
	instances     []Instance // len == capacity
	generation    uint64
}

// Build lays out the grid for a width x height frame with square cells of
// cellSize pixels. Non-positive arguments are clamped to 1. Build reports
// whether the backing storage grew.
func (g *Grid) Build(width, height, cellSize int) (grew bool) {
	width, height = max(width, 1), max(height, 1)
	cellSize = clampMosaicSize(cellSize)

	cols := ceilDiv(width, cellSize)
	rows := ceilDiv(height, cellSize)
	count := cols * rows

	if count > len(g.instances) {
		g.instances = make([]Instance, count)
		g.generation++
		grew = true
	}

	g.width, g.height, g.cellSize = width, height, cellSize
	g.cols, g.rows, g.count = cols, rows, count

	fw, fh, fs := float64(width), float64(height), float64(cellSize)
	for j := range rows {
		v := (float64(j)*fs + 0.5*fs) / fh
		for i := range cols {
			u := (float64(i)*fs + 0.5*fs) / fw
			g.instances[j*cols+i] = Instance{
				Col:     i,
				Row:     j,
				SampleU: u,
				SampleV: v,
				CenterX: u*2 - 1,
				CenterY: 1 - v*2,
			}
		}
	}
	return grew
}

// Count returns the number of active instances.
func (g *Grid) Count() int { return g.count }

// Capacity returns the number of allocated instances.
func (g *Grid) Capacity() int { return len(g.instances) }

// Cols returns the number of cell columns.
func (g *Grid) Cols() int { return g.cols }

// Rows returns the number of cell rows.
func (g *Grid) Rows() int { return g.rows }

// CellSize returns the cell edge in pixels.
func (g *Grid) CellSize() int { return g.cellSize }

// Size returns the frame size the grid was built for.
func (g *Grid) Size() (width, height int) { return g.width, g.height }

// Generation increments every time the backing storage is reallocated.
func (g *Grid) Generation() uint64 { return g.generation }

// Instance returns the active instance i.
func (g *Grid) Instance(i int) Instance { return g.instances[i] }

// Instances returns the active instances. The slice aliases the arena and
// is only valid until the next Build.
func (g *Grid) Instances() []Instance { return g.instances[:g.count] }

// QuadScale returns the size of one cell in normalized device units, i.e.
// the scale applied to a unit quad.
func (g *Grid) QuadScale() (sx, sy float64) {
	if g.width == 0 || g.height == 0 {
		return 0, 0
	}
	return float64(g.cellSize) / float64(g.width) * 2, float64(g.cellSize) / float64(g.height) * 2
}

// Stats returns a snapshot of the grid state.
func (g *Grid) Stats() GridStats {
	return GridStats{
		Cols:       g.cols,
		Rows:       g.rows,
		Count:      g.count,
		Capacity:   len(g.instances),
		CellSize:   g.cellSize,
		Generation: g.generation,
	}
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
