package mosaic

import (
	"errors"
	"sync"

	"github.com/gogpu/mosaic/atlas"
)

// ErrFallbackToCPU indicates the accelerator cannot draw this frame.
// The filter transparently falls back to the software cell renderer.
var ErrFallbackToCPU = errors.New("mosaic: falling back to CPU rendering")

// CellTarget provides pixel buffer access for accelerated drawing.
// Data is premultiplied RGBA, 4 bytes per pixel, laid out row by row with
// the given Stride.
type CellTarget struct {
	Data          []uint8
	Width, Height int
	Stride        int // bytes per row
}

// CellAccelerator is an optional hardware cell renderer.
//
// When registered via RegisterAccelerator, the filter asks it to draw every
// frame first. If the accelerator returns ErrFallbackToCPU or any error, the
// frame is drawn by the software renderer instead.
//
// Implementations are provided by backend packages. Users opt in via blank
// import:
//
//	import _ "github.com/gogpu/mosaic/gpu" // enables GPU cell rendering
type CellAccelerator interface {
	// Name returns the accelerator name (e.g., "wgpu").
	Name() string

	// Init initializes device resources. Called once during registration.
	Init() error

	// Close releases all device resources.
	Close()

	// DrawCells draws the active cells of grid into dst. frame is the captured
	// scene, already sized to params.Width x params.Height. dst has been
	// cleared to the background color. Cells are drawn in the order given by
	// order (indices into the grid), later cells on top.
	DrawCells(dst, frame CellTarget, grid *Grid, order []int, atl *atlas.Atlas, params *RenderParams) error

	// ReleaseAtlas drops any device copy of atl. Called when a filter disposes
	// or replaces its atlas.
	ReleaseAtlas(atl *atlas.Atlas)
}

// DeviceProviderAware is an optional interface for accelerators that can share
// a GPU device with the host application. When SetAcceleratorDeviceProvider is
// called, the accelerator reuses the provided device instead of its own.
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	accelMu sync.RWMutex
	accel   CellAccelerator
)

// RegisterAccelerator registers an accelerator for cell drawing.
//
// Only one accelerator can be registered. Subsequent calls replace the previous one.
// The accelerator's Init() method is called during registration.
// If Init() fails, the accelerator is not registered and the error is returned.
//
// Typical usage via blank import in backend packages:
//
//	func init() {
//	    mosaic.RegisterAccelerator(gpuimpl.NewMosaicRenderer())
//	}
func RegisterAccelerator(a CellAccelerator) error {
	if a == nil {
		return errors.New("mosaic: accelerator must not be nil")
	}
	if err := a.Init(); err != nil {
		return err
	}
	propagateLogger(a, Logger())

	accelMu.Lock()
	old := accel
	accel = a
	accelMu.Unlock()
	if old != nil {
		old.Close()
	}
	Logger().Info("mosaic: accelerator registered", "name", a.Name())
	return nil
}

// Accelerator returns the currently registered accelerator, or nil if none.
func Accelerator() CellAccelerator {
	accelMu.RLock()
	a := accel
	accelMu.RUnlock()
	return a
}

// SetAcceleratorDeviceProvider passes a device provider to the registered
// accelerator, enabling GPU device sharing. If no accelerator is registered
// or it doesn't support device sharing, this is a no-op.
//
// The provider should implement HalDevice() any and HalQueue() any methods
// that return wgpu/hal types.
func SetAcceleratorDeviceProvider(provider any) error {
	a := Accelerator()
	if a == nil {
		return nil
	}
	if dpa, ok := a.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
