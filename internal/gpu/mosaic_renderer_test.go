//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/mosaic"
	"github.com/gogpu/mosaic/atlas"
	"github.com/gogpu/naga"
)

// twoTone returns a 2-column atlas: red for light blocks, blue for dark ones.
func twoTone(t *testing.T) *atlas.Atlas {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for y := range 4 {
		for x := range 8 {
			c := color.NRGBA{R: 255, A: 255}
			if x >= 4 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	a, err := atlas.New(img, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func solidTarget(w, h, stride int, c color.RGBA) mosaic.CellTarget {
	data := make([]byte, (h-1)*stride+w*4)
	for y := range h {
		for x := range w {
			i := y*stride + x*4
			data[i], data[i+1], data[i+2], data[i+3] = c.R, c.G, c.B, c.A
		}
	}
	return mosaic.CellTarget{Data: data, Width: w, Height: h, Stride: stride}
}

func identity(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

func TestMosaicShaderCompilation(t *testing.T) {
	src := MosaicShaderSource()
	if src == "" {
		t.Fatal("mosaic shader source is empty")
	}
	for _, want := range []string{"@compute", "fn main", "var<storage, read_write> pixels"} {
		if !strings.Contains(src, want) {
			t.Errorf("shader source missing %q", want)
		}
	}

	spirvBytes, err := naga.Compile(src)
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "not yet implemented") || strings.Contains(errStr, "not supported") {
			t.Skipf("Skipping: naga feature not yet implemented: %v", err)
		}
		t.Fatalf("failed to compile mosaic shader: %v", err)
	}
	if len(spirvBytes) < 4 {
		t.Fatal("SPIR-V too short")
	}
	if magic := binary.LittleEndian.Uint32(spirvBytes); magic != 0x07230203 {
		t.Errorf("invalid SPIR-V magic: 0x%08X, want 0x07230203", magic)
	}
}

func TestCellBatchBuild(t *testing.T) {
	var grid mosaic.Grid
	grid.Build(8, 8, 4)
	a := twoTone(t)
	frame := solidTarget(8, 8, 32, color.RGBA{A: 255})
	dst := solidTarget(8, 8, 32, color.RGBA{})
	p := &mosaic.RenderParams{Width: 8, Height: 8, CellSize: 4, CellCount: 2, SetCount: 1}

	var b cellBatch
	b.build(dst, frame, &grid, identity(grid.Count()), a, p)

	if len(b.cells) != 4 || len(b.displaced) != 0 {
		t.Fatalf("cells = %d, displaced = %d", len(b.cells), len(b.displaced))
	}
	want := GPUCell{TileX: 4, TileY: 0, TileW: 4, TileH: 4, Left: 4, Top: 4, Flags: cellVisible}
	if got := b.cells[3]; got != want {
		t.Errorf("cell 3 = %+v, want %+v", got, want)
	}
	wantParams := GPUParams{Width: 8, Height: 8, CellSize: 4, Cols: 2, Rows: 2, AtlasWidth: 8}
	if b.params != wantParams {
		t.Errorf("params = %+v, want %+v", b.params, wantParams)
	}

	t.Run("background cells are invisible", func(t *testing.T) {
		white := solidTarget(8, 8, 32, color.RGBA{255, 255, 255, 255})
		b.build(dst, white, &grid, identity(grid.Count()), a, p)
		for i, c := range b.cells {
			if c.Flags&cellVisible != 0 {
				t.Errorf("cell %d visible on a white frame", i)
			}
		}
	})

	t.Run("displaced cells follow draw order", func(t *testing.T) {
		var big mosaic.Grid
		big.Build(64, 64, 4)
		ap := &mosaic.RenderParams{
			Width: 64, Height: 64, CellSize: 4, CellCount: 2, SetCount: 1,
			Avoid: true, AvoidRadius: 0.5, AvoidStrength: 0.15,
			PointerX: 0.03, PointerY: 0.01, PointerInside: true,
		}
		order := identity(big.Count())
		// Reverse so the expected displaced order differs from grid order.
		for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
			order[i], order[j] = order[j], order[i]
		}
		bigFrame := solidTarget(64, 64, 256, color.RGBA{A: 255})
		b.build(solidTarget(64, 64, 256, color.RGBA{}), bigFrame, &big, order, a, ap)

		if len(b.displaced) == 0 {
			t.Fatal("expected displaced cells")
		}
		if int(b.params.DisplacedCount) != len(b.displaced) {
			t.Errorf("DisplacedCount = %d, want %d", b.params.DisplacedCount, len(b.displaced))
		}
		for k := 1; k < len(b.displaced); k++ {
			if b.displaced[k] > b.displaced[k-1] {
				t.Fatalf("displaced indices not in draw order: %v", b.displaced[:k+1])
			}
		}
		for _, i := range b.displaced {
			c := b.cells[i]
			cell := big.Instance(int(i))
			if c.Flags&cellDisplaced == 0 {
				t.Fatalf("cell %d listed but not flagged", i)
			}
			dx, dy := mosaic.Displacement(ap, cell)
			px, py := mosaic.NDCToPixels(dx, dy, 64, 64)
			wantLeft := int32(cell.Col*4) + int32(math.Round(px))
			wantTop := int32(cell.Row*4) + int32(math.Round(py))
			if c.Left != wantLeft || c.Top != wantTop {
				t.Errorf("cell %d at (%d,%d), want (%d,%d)", i, c.Left, c.Top, wantLeft, wantTop)
			}
		}
	})
}

func TestEncodeLayout(t *testing.T) {
	if got := len(encodeParams(GPUParams{})); got != 32 {
		t.Errorf("params size = %d, want 32", got)
	}

	cells := encodeCells([]GPUCell{{TileX: 1}, {Left: -3, Flags: cellVisible | cellDisplaced}})
	if len(cells) != 64 {
		t.Fatalf("cells size = %d, want 64", len(cells))
	}
	if got := binary.LittleEndian.Uint32(cells[0:]); got != 1 {
		t.Errorf("TileX = %d", got)
	}
	if got := int32(binary.LittleEndian.Uint32(cells[32+16:])); got != -3 {
		t.Errorf("Left = %d, want -3", got)
	}
	if got := binary.LittleEndian.Uint32(cells[32+24:]); got != 3 {
		t.Errorf("Flags = %d, want 3", got)
	}

	if got := len(encodeIndices(nil)); got != 4 {
		t.Errorf("empty indices size = %d, want 4", got)
	}
	if got := encodeIndices([]uint32{7, 9}); binary.LittleEndian.Uint32(got[4:]) != 9 {
		t.Errorf("indices = %v", got)
	}
}

func TestPackTargetRoundTrip(t *testing.T) {
	// Stride larger than the row exercises padding.
	src := solidTarget(3, 2, 16, color.RGBA{1, 2, 3, 4})
	src.Data[16+8] = 99

	packed := packTarget(src)
	if len(packed) != 3*2*4 {
		t.Fatalf("packed length = %d", len(packed))
	}
	if packed[12+8] != 99 {
		t.Errorf("second row not packed tightly")
	}

	dst := solidTarget(3, 2, 16, color.RGBA{})
	unpackTarget(packed, dst)
	for y := range 2 {
		for x := range 12 {
			if dst.Data[y*16+x] != src.Data[y*16+x] {
				t.Fatalf("byte (%d,%d) = %d, want %d", x, y, dst.Data[y*16+x], src.Data[y*16+x])
			}
		}
	}
}

func TestPackAtlasSubImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.SetNRGBA(2, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	sub := img.SubImage(image.Rect(1, 1, 3, 3)).(*image.NRGBA)

	packed := packAtlas(sub)
	if len(packed) != 2*2*4 {
		t.Fatalf("packed length = %d", len(packed))
	}
	if got := binary.LittleEndian.Uint32(packed[4:]); got != 10|20<<8|30<<16|40<<24 {
		t.Errorf("texel = %#x", got)
	}
}

func TestMosaicRendererWithoutGPU(t *testing.T) {
	r := NewMosaicRenderer()
	if r.Name() != "wgpu" {
		t.Errorf("Name() = %q", r.Name())
	}
	if r.Ready() {
		t.Fatal("uninitialized renderer reports ready")
	}

	var grid mosaic.Grid
	grid.Build(8, 8, 4)
	dst := solidTarget(8, 8, 32, color.RGBA{})
	err := r.DrawCells(dst, dst, &grid, identity(grid.Count()), twoTone(t), &mosaic.RenderParams{})
	if !errors.Is(err, mosaic.ErrFallbackToCPU) {
		t.Errorf("DrawCells() = %v, want ErrFallbackToCPU", err)
	}

	r.ReleaseAtlas(twoTone(t))
	if r.CachedAtlases() != 0 {
		t.Error("no atlas should be cached")
	}
	if err := r.SetDeviceProvider(struct{}{}); err == nil {
		t.Error("SetDeviceProvider accepted a provider without HAL access")
	}
	r.Close()
	r.Close()
}

func TestMosaicRendererDrawsCells(t *testing.T) {
	r := NewMosaicRenderer()
	if err := r.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer r.Close()
	if !r.Ready() {
		t.Skip("no GPU available")
	}

	var grid mosaic.Grid
	grid.Build(16, 16, 4)
	a := twoTone(t)
	frame := solidTarget(16, 16, 64, color.RGBA{A: 255})
	dst := solidTarget(16, 16, 64, color.RGBA{})
	p := &mosaic.RenderParams{Width: 16, Height: 16, CellSize: 4, CellCount: 2, SetCount: 1}

	if err := r.DrawCells(dst, frame, &grid, identity(grid.Count()), a, p); err != nil {
		t.Fatalf("DrawCells: %v", err)
	}
	for i := 0; i < len(dst.Data); i += 4 {
		if got := (color.RGBA{dst.Data[i], dst.Data[i+1], dst.Data[i+2], dst.Data[i+3]}); got != (color.RGBA{B: 255, A: 255}) {
			t.Fatalf("pixel %d = %v, want opaque blue", i/4, got)
		}
	}
	if r.CachedAtlases() != 1 {
		t.Errorf("CachedAtlases() = %d, want 1", r.CachedAtlases())
	}
	r.ReleaseAtlas(a)
	if r.CachedAtlases() != 0 {
		t.Error("ReleaseAtlas did not drop the upload")
	}
}
