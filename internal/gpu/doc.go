//go:build !nogpu

// Package gpu provides the Pure Go GPU cell renderer for the mosaic filter.
//
// It runs on gogpu/wgpu (zero CGO) through the HAL layer and currently opens
// a Vulkan device. Registration happens in the public mosaic/gpu package;
// this package is internal.
//
// # Pipeline
//
//	CPU: grid + captured frame -> tile choice per cell (mosaic.ChooseTiles)
//	      -> GPUCell records + displaced draw order
//	GPU: one compute invocation per output pixel
//	      -> home cell tile (undisplaced) -> displaced tiles in order -> readback
//
// Tile selection runs on the CPU so that GPU and CPU frames pick identical
// tiles; the GPU performs the per-pixel sampling and source-over blending.
//
// # Buffers
//
//   - binding 0: GPUParams uniform (32 bytes)
//   - binding 1: GPUCell records, one per active cell (32 bytes each)
//   - binding 2: displaced cell indices in draw order
//   - binding 3: atlas texels, straight alpha, cached per atlas
//   - binding 4: target pixels, premultiplied, read-write
//
// # Device Sharing
//
// MosaicRenderer.SetDeviceProvider switches to a host-owned device exposing
// HalDevice() and HalQueue(). Cached atlas buffers and pipelines are recreated
// on the new device.
//
// # Fallback
//
// Without a usable GPU the renderer returns mosaic.ErrFallbackToCPU and the
// filter draws the frame in software.
package gpu
