package mosaic

import "math"

// BackgroundThreshold is the brightness at or above which a block is treated
// as background and draws no tile. Noise is applied after this test, so it
// can never turn a background block into a tile.
const BackgroundThreshold = 0.9

// cycleRate is the number of SetCycle row switches per second.
const cycleRate = 10

// TileChoice is the atlas tile selected for a cell.
type TileChoice struct {
	// Background is true when the cell draws nothing.
	Background bool
	// Column and Row index the atlas tile. They are zero for background cells.
	Column, Row int
}

// Luma returns the Rec. 601 brightness of a color with channels in [0, 1].
func Luma(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// Hash returns a deterministic pseudo-random value in [0, 1) for a 2D point.
func Hash(x, y float64) float64 {
	v := math.Sin(x*127.1+y*311.7) * 43758.5453123
	return v - math.Floor(v)
}

// Noise returns the signed noise in [-1, 1) for the block whose top-left
// pixel is (x, y) at time t.
func Noise(x, y, t float64) float64 {
	return Hash(x+t*0.1, y+t*0.15)*2 - 1
}

// SelectTile maps a cell and the sampled brightness of its block to an atlas
// tile. It is a pure function of its inputs.
func SelectTile(p *RenderParams, cell Instance, brightness float64) TileChoice {
	if brightness >= BackgroundThreshold {
		return TileChoice{Background: true}
	}

	cellCount := max(p.CellCount, 1)
	setCount := max(p.SetCount, 1)

	// Top-left pixel of the block.
	bx := float64(cell.Col * p.CellSize)
	by := float64(cell.Row * p.CellSize)

	b := brightness + Noise(bx, by, p.NoiseTime)*p.NoiseIntensity
	b = math.Max(0, math.Min(1, b))
	col := clampIndex(int(math.Floor((1-b)*float64(cellCount))), cellCount)

	var row int
	switch p.Mode {
	case SetRandom:
		row = int(math.Floor(Hash(bx+p.NoiseTime*0.1, by+p.NoiseTime*0.15) * float64(setCount)))
	case SetCycle:
		row = int(math.Floor(p.Elapsed*cycleRate)) % setCount
	case SetOffsetRow:
		row = offsetRow(p, cell, setCount)
	}

	return TileChoice{Column: col, Row: clampIndex(row, setCount)}
}

// offsetRow picks a row from the pointer distance. The row ramps up one
// integer step at a time as the smoothed strength grows, so a pointer entering
// the surface steps through the intermediate rows instead of jumping.
func offsetRow(p *RenderParams, cell Instance, setCount int) int {
	target := 0
	dist := math.Hypot(p.PointerX-cell.CenterX, p.PointerY-cell.CenterY)
	if p.OffsetRowRadius > 0 && dist < p.OffsetRowRadius {
		t := 1 - dist/p.OffsetRowRadius
		target = clampIndex(int(math.Floor(t*float64(setCount))), setCount)
	}
	step := int(math.Floor(p.OffsetRowStrength * float64(target+1)))
	return min(step, target)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
