// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gghost provides a gg-based host renderer for the mosaic filter.
//
// The host draws a small scene of shaded spheres, seen through an orbiting
// camera, into whatever render.RenderTarget is currently bound. It is the
// base renderer used by the mosaic commands and a reference implementation
// of render.HostRenderer.
//
// The data flow is:
//
//	Scene + Camera -> gg.Context (draw) -> bound RenderTarget
//
// # Usage
//
//	screen := render.NewPixmapTarget(800, 600)
//	host := gghost.New(screen)
//	f := mosaic.New(host, 800, 600)
//	f.Enable()
//
//	scene := gghost.DefaultScene()
//	cam := gghost.DefaultCamera()
//	_ = f.Render(scene, cam) // mosaic lands in screen
//
// # Thread Safety
//
// Host is NOT safe for concurrent use. The filter only calls it from
// Filter.Render.
package gghost
