//go:build !nogpu

// Package gpu registers the GPU cell renderer for hardware-accelerated
// mosaic drawing.
//
// Import this package to let every mosaic.Filter composite its cells with a
// wgpu/hal compute shader. Tile selection is unchanged, so GPU and CPU frames
// show the same tiles.
//
// If GPU initialization fails (no Vulkan available), the renderer stays
// registered but declines every frame and drawing falls back to the CPU.
//
// Usage:
//
//	import _ "github.com/gogpu/mosaic/gpu" // enable GPU cell rendering
package gpu

import (
	"github.com/gogpu/mosaic"
	gpuimpl "github.com/gogpu/mosaic/internal/gpu"
)

func init() {
	if err := mosaic.RegisterAccelerator(gpuimpl.NewMosaicRenderer()); err != nil {
		mosaic.Logger().Warn("GPU cell renderer not available", "err", err)
	}
}

// SetDeviceProvider configures the GPU cell renderer to use a shared GPU
// device from an external provider (e.g., gogpu). This avoids creating a
// separate GPU instance.
//
// The provider should be a gpucontext.DeviceProvider that also implements
// HalDevice() any and HalQueue() any for direct HAL access.
func SetDeviceProvider(provider any) error {
	return mosaic.SetAcceleratorDeviceProvider(provider)
}
