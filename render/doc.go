// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render defines the boundary between the mosaic filter and the host
// application that owns the scene, the camera and the base renderer.
//
// # Key Principle
//
// The filter RECEIVES a renderer from the host, it does NOT create one. The host
// renders its scene graph into whatever RenderTarget is currently bound; the
// filter only binds its own offscreen target for the duration of a capture
// pass and restores the host's previous target afterwards.
//
// # Core Interfaces
//
//   - HostRenderer: renders an opaque scene/camera pair into the bound target
//   - RenderTarget: CPU-addressable pixel destination
//   - DeviceHandle: optional GPU device access for accelerated cell drawing
//
// # RenderTarget Implementations
//
//   - PixmapTarget: CPU-backed *image.RGBA target (premultiplied RGBA8)
//
// # Usage
//
//	host := myHost{screen: render.NewPixmapTarget(800, 600)}
//	f := mosaic.New(host, 800, 600, mosaic.WithMosaicSize(10))
//	_ = f.WaitReady(ctx)
//	f.Enable()
//
//	for frame := range frames {
//	    _ = f.Render(scene, camera) // result lands in host.screen
//	}
//
// # Thread Safety
//
// Targets are NOT thread-safe. The filter only touches a target from inside
// Filter.Render.
package render
