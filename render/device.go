// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// A host that already owns a GPU device (e.g., a gogpu window) passes it to the
// mosaic GPU backend so instance buffers, the atlas texture and the cell
// pipeline live on the same device as the host's own resources:
//
//	if err := gpu.SetDeviceProvider(app.DeviceHandle()); err != nil {
//	    log.Printf("mosaic: keeping private GPU device: %v", err)
//	}
//
// The GPU backend additionally requires the provider to expose HAL objects
// (HalDevice() any / HalQueue() any). Providers that do not are rejected and
// the backend keeps its own device.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only hosts where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}
