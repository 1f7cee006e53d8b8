//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/mosaic"
	"github.com/gogpu/mosaic/atlas"
	"github.com/gogpu/wgpu/hal"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// errNoGPU is returned when no device is open.
var errNoGPU = errors.New("mosaic-gpu: no GPU device")

// MosaicRenderer composites mosaic cells with a wgpu/hal compute shader.
// It implements the mosaic.CellAccelerator interface.
//
// Tile selection stays on the CPU (see mosaic.ChooseTiles); the GPU samples
// the atlas and blends one invocation per output pixel. Atlas pixels are
// uploaded once per atlas and cached until ReleaseAtlas.
type MosaicRenderer struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	atlases map[*atlas.Atlas]atlasBuffer
	batch   cellBatch

	gpuReady       bool
	externalDevice bool // true when using shared device (don't destroy on Close)
}

// atlasBuffer is an uploaded atlas.
type atlasBuffer struct {
	buf  hal.Buffer
	size uint64
}

var _ mosaic.CellAccelerator = (*MosaicRenderer)(nil)

// NewMosaicRenderer returns an uninitialized renderer. Call Init, or register
// it with mosaic.RegisterAccelerator, before use.
func NewMosaicRenderer() *MosaicRenderer {
	return &MosaicRenderer{}
}

func (a *MosaicRenderer) Name() string { return "wgpu" }

// Init opens a private Vulkan device. A missing GPU is not an error: the
// renderer stays registered and declines every frame.
func (a *MosaicRenderer) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.initGPU(); err != nil {
		slogger().Warn("mosaic-gpu: GPU init failed, using CPU fallback", "err", err)
	}
	return nil
}

// Ready reports whether a GPU device and pipeline are available.
func (a *MosaicRenderer) Ready() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.gpuReady
}

// SetLogger receives the logger from mosaic.SetLogger.
func (a *MosaicRenderer) SetLogger(l *slog.Logger) {
	setLogger(l)
}

func (a *MosaicRenderer) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseAtlases()
	a.destroyPipelines()
	if !a.externalDevice {
		if a.device != nil {
			a.device.Destroy()
		}
		if a.instance != nil {
			a.instance.Destroy()
		}
	}
	a.device = nil
	a.instance = nil
	a.queue = nil
	a.gpuReady = false
	a.externalDevice = false
}

// SetDeviceProvider switches the renderer to a shared GPU device from an
// external provider (e.g., gogpu). The provider must implement
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func (a *MosaicRenderer) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("mosaic-gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("mosaic-gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("mosaic-gpu: provider HalQueue is not hal.Queue")
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Atlas buffers and pipelines belong to the old device.
	a.releaseAtlases()
	a.destroyPipelines()
	if !a.externalDevice && a.device != nil {
		a.device.Destroy()
	}
	if a.instance != nil {
		a.instance.Destroy()
		a.instance = nil
	}

	a.device = device
	a.queue = queue
	a.externalDevice = true

	if err := a.createPipelines(); err != nil {
		a.gpuReady = false
		return fmt.Errorf("mosaic-gpu: create pipelines with shared device: %w", err)
	}
	a.gpuReady = true
	slogger().Info("mosaic-gpu: switched to shared GPU device")
	return nil
}

// DrawCells implements mosaic.CellAccelerator.
func (a *MosaicRenderer) DrawCells(
	dst, frame mosaic.CellTarget, grid *mosaic.Grid, order []int,
	atl *atlas.Atlas, params *mosaic.RenderParams,
) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.gpuReady {
		return mosaic.ErrFallbackToCPU
	}
	if atl == nil || grid.Count() == 0 || dst.Width <= 0 || dst.Height <= 0 {
		return nil
	}

	ab, err := a.atlasBufferFor(atl)
	if err != nil {
		return fmt.Errorf("mosaic-gpu: upload atlas: %w", err)
	}
	a.batch.build(dst, frame, grid, order, atl, params)
	if err := a.dispatch(dst, ab); err != nil {
		return fmt.Errorf("mosaic-gpu: dispatch %d cells: %w", len(a.batch.cells), err)
	}
	return nil
}

// ReleaseAtlas destroys the uploaded copy of atl, if any.
func (a *MosaicRenderer) ReleaseAtlas(atl *atlas.Atlas) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ab, ok := a.atlases[atl]
	if !ok {
		return
	}
	delete(a.atlases, atl)
	if a.device != nil {
		a.device.DestroyBuffer(ab.buf)
	}
}

// CachedAtlases returns the number of uploaded atlases (for testing).
func (a *MosaicRenderer) CachedAtlases() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.atlases)
}

func (a *MosaicRenderer) releaseAtlases() {
	for atl, ab := range a.atlases {
		if a.device != nil {
			a.device.DestroyBuffer(ab.buf)
		}
		delete(a.atlases, atl)
	}
}

func (a *MosaicRenderer) atlasBufferFor(atl *atlas.Atlas) (atlasBuffer, error) {
	if ab, ok := a.atlases[atl]; ok {
		return ab, nil
	}
	if a.device == nil {
		return atlasBuffer{}, errNoGPU
	}
	data := packAtlas(atl.Image())
	buf, err := a.createBuffer("mosaic_atlas", uint64(len(data)),
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return atlasBuffer{}, err
	}
	a.queue.WriteBuffer(buf, 0, data)

	ab := atlasBuffer{buf: buf, size: uint64(len(data))}
	if a.atlases == nil {
		a.atlases = make(map[*atlas.Atlas]atlasBuffer)
	}
	a.atlases[atl] = ab
	slogger().Debug("mosaic-gpu: atlas uploaded", "bytes", ab.size, "width", atl.Width(), "height", atl.Height())
	return ab, nil
}

// createBuffer creates a GPU buffer with a minimum size guarantee.
func (a *MosaicRenderer) createBuffer(label string, size uint64, usage gputypes.BufferUsage) (hal.Buffer, error) {
	const minBufSize = 4
	if size < minBufSize {
		size = minBufSize
	}
	return a.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: usage,
	})
}

// dispatch uploads the batch and target, runs the compositor and reads the
// result back into dst.
func (a *MosaicRenderer) dispatch(dst mosaic.CellTarget, ab atlasBuffer) error {
	w, h := a.batch.params.Width, a.batch.params.Height
	pixelBufSize := uint64(w) * uint64(h) * 4

	paramsBytes := encodeParams(a.batch.params)
	cellBytes := encodeCells(a.batch.cells)
	displacedBytes := encodeIndices(a.batch.displaced)

	paramsBuf, err := a.createBuffer("mosaic_params", uint64(len(paramsBytes)),
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create params buffer: %w", err)
	}
	defer a.device.DestroyBuffer(paramsBuf)

	cellsBuf, err := a.createBuffer("mosaic_cells", uint64(len(cellBytes)),
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create cells buffer: %w", err)
	}
	defer a.device.DestroyBuffer(cellsBuf)

	displacedBuf, err := a.createBuffer("mosaic_displaced", uint64(len(displacedBytes)),
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create displaced buffer: %w", err)
	}
	defer a.device.DestroyBuffer(displacedBuf)

	pixelBuf, err := a.createBuffer("mosaic_pixels", pixelBufSize,
		gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create pixel buffer: %w", err)
	}
	defer a.device.DestroyBuffer(pixelBuf)

	stagingBuf, err := a.createBuffer("mosaic_staging", pixelBufSize,
		gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return fmt.Errorf("create staging buffer: %w", err)
	}
	defer a.device.DestroyBuffer(stagingBuf)

	a.queue.WriteBuffer(paramsBuf, 0, paramsBytes)
	a.queue.WriteBuffer(cellsBuf, 0, cellBytes)
	a.queue.WriteBuffer(displacedBuf, 0, displacedBytes)
	a.queue.WriteBuffer(pixelBuf, 0, packTarget(dst))

	bg, err := a.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label: "mosaic_bind", Layout: a.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{Buffer: paramsBuf.NativeHandle(), Offset: 0, Size: uint64(len(paramsBytes))}},
			{Binding: 1, Resource: gputypes.BufferBinding{Buffer: cellsBuf.NativeHandle(), Offset: 0, Size: uint64(len(cellBytes))}},
			{Binding: 2, Resource: gputypes.BufferBinding{Buffer: displacedBuf.NativeHandle(), Offset: 0, Size: uint64(len(displacedBytes))}},
			{Binding: 3, Resource: gputypes.BufferBinding{Buffer: ab.buf.NativeHandle(), Offset: 0, Size: ab.size}},
			{Binding: 4, Resource: gputypes.BufferBinding{Buffer: pixelBuf.NativeHandle(), Offset: 0, Size: pixelBufSize}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer a.device.DestroyBindGroup(bg)

	encoder, err := a.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "mosaic_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("mosaic"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "mosaic_cells"})
	pass.SetPipeline(a.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch((w+7)/8, (h+7)/8, 1)
	pass.End()

	encoder.CopyBufferToBuffer(pixelBuf, stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: pixelBufSize},
	})
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer a.device.FreeCommandBuffer(cmdBuf)

	fence, err := a.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer a.device.DestroyFence(fence)
	if err := a.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := a.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, pixelBufSize)
	if err := a.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return fmt.Errorf("readback: %w", err)
	}
	unpackTarget(readback, dst)
	return nil
}

func (a *MosaicRenderer) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	a.instance = instance
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return fmt.Errorf("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	a.device = openDev.Device
	a.queue = openDev.Queue
	if err := a.createPipelines(); err != nil {
		a.device.Destroy()
		a.device = nil
		a.queue = nil
		return fmt.Errorf("create pipelines: %w", err)
	}
	a.gpuReady = true
	slogger().Info("mosaic-gpu: GPU cell renderer initialized", "adapter", selected.Info.Name)
	return nil
}

func (a *MosaicRenderer) createPipelines() error {
	shader, err := a.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "mosaic_cells",
		Source: hal.ShaderSource{WGSL: mosaicShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile mosaic shader: %w", err)
	}
	a.shader = shader

	readOnly := &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
	bindLayout, err := a.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "mosaic_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: readOnly},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: readOnly},
			{Binding: 3, Visibility: gputypes.ShaderStageCompute, Buffer: readOnly},
			{Binding: 4, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	a.bindLayout = bindLayout

	pipeLayout, err := a.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label: "mosaic_pipe_layout", BindGroupLayouts: []hal.BindGroupLayout{a.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	a.pipeLayout = pipeLayout

	pipeline, err := a.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label: "mosaic_pipeline", Layout: a.pipeLayout,
		Compute: hal.ComputeState{Module: a.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}
	a.pipeline = pipeline
	return nil
}

func (a *MosaicRenderer) destroyPipelines() {
	if a.device == nil {
		return
	}
	if a.pipeline != nil {
		a.device.DestroyComputePipeline(a.pipeline)
		a.pipeline = nil
	}
	if a.pipeLayout != nil {
		a.device.DestroyPipelineLayout(a.pipeLayout)
		a.pipeLayout = nil
	}
	if a.bindLayout != nil {
		a.device.DestroyBindGroupLayout(a.bindLayout)
		a.bindLayout = nil
	}
	if a.shader != nil {
		a.device.DestroyShaderModule(a.shader)
		a.shader = nil
	}
}
