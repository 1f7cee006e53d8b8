// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// HostRenderer is the host application's base renderer.
//
// The host owns scene construction, camera and lighting. The filter treats the
// scene and camera as opaque values and only ever:
//
//  1. reads the currently bound target (RenderTarget),
//  2. binds its own offscreen target (SetRenderTarget),
//  3. asks the host to draw (Render),
//  4. restores the previously bound target.
//
// Step 4 happens unconditionally, including when Render fails or panics.
//
// Thread Safety: HostRenderer is called from whichever goroutine calls
// Filter.Render. Implementations are not required to be thread-safe.
type HostRenderer interface {
	// RenderTarget returns the currently bound target. This is the visible
	// surface outside of the filter's capture pass.
	RenderTarget() RenderTarget

	// SetRenderTarget binds target for subsequent Render calls.
	SetRenderTarget(target RenderTarget)

	// Render draws scene as seen through camera into the bound target.
	// The scene and camera must not be modified by the filter.
	Render(scene, camera any) error
}
