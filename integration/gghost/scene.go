// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gghost

import (
	"cmp"
	"math"
	"slices"

	"github.com/gogpu/gg"
)

// Vec3 is a point or direction in world space. Y is up.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product of v and o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Len returns the length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns v scaled to unit length, or v if it is zero.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}

// Sphere is a shaded ball in the scene.
type Sphere struct {
	Center Vec3
	Radius float64
	Color  gg.RGBA
}

// Scene is the content drawn by Host. The host never modifies it.
type Scene struct {
	Spheres []Sphere
	// Light is the direction toward the light source.
	Light Vec3
	// Sky and Ground are the background gradient colors, top to bottom.
	Sky, Ground gg.RGBA
}

// DefaultScene returns a ring of colored spheres around a large center one.
func DefaultScene() *Scene {
	s := &Scene{
		Light:  Vec3{-0.5, 0.8, 0.6},
		Sky:    gg.RGB(0.75, 0.85, 0.95),
		Ground: gg.RGB(0.2, 0.22, 0.25),
	}
	s.Spheres = append(s.Spheres, Sphere{Center: Vec3{}, Radius: 1.2, Color: gg.RGB(0.9, 0.9, 0.9)})
	const ring = 8
	for i := range ring {
		a := float64(i) / ring * 2 * math.Pi
		s.Spheres = append(s.Spheres, Sphere{
			Center: Vec3{math.Cos(a) * 3, math.Sin(a*2) * 0.6, math.Sin(a) * 3},
			Radius: 0.55,
			Color:  gg.HSL(float64(i)/ring*360, 0.7, 0.5),
		})
	}
	return s
}

// Camera orbits the origin.
type Camera struct {
	// Yaw and Pitch are the orbit angles in radians.
	Yaw, Pitch float64
	// Distance is the distance from the origin.
	Distance float64
	// FOV is the vertical field of view in radians.
	FOV float64
}

// DefaultCamera returns a camera looking slightly down at the scene.
func DefaultCamera() *Camera {
	return &Camera{Yaw: 0.4, Pitch: 0.35, Distance: 9, FOV: math.Pi / 3}
}

// Orbit returns a copy of the camera rotated by dyaw around the vertical axis.
func (c Camera) Orbit(dyaw float64) Camera {
	c.Yaw += dyaw
	return c
}

// eye returns the camera position.
func (c *Camera) eye() Vec3 {
	cp := math.Cos(c.Pitch)
	return Vec3{
		X: c.Distance * cp * math.Sin(c.Yaw),
		Y: c.Distance * math.Sin(c.Pitch),
		Z: c.Distance * cp * math.Cos(c.Yaw),
	}
}

// view projects world points into a width x height image.
type view struct {
	eye            Vec3
	right, up, fwd Vec3
	focal          float64
	halfW, halfH   float64
}

func newView(c *Camera, width, height int) view {
	eye := c.eye()
	fwd := Vec3{}.Sub(eye).Normalize()
	right := fwd.Cross(Vec3{Y: 1}).Normalize()
	up := right.Cross(fwd)
	fov := c.FOV
	if fov <= 0 || fov >= math.Pi {
		fov = math.Pi / 3
	}
	return view{
		eye:   eye,
		right: right,
		up:    up,
		fwd:   fwd,
		focal: float64(height) / 2 / math.Tan(fov/2),
		halfW: float64(width) / 2,
		halfH: float64(height) / 2,
	}
}

// project returns the image position and depth of p. ok is false behind the
// camera.
func (v view) project(p Vec3) (x, y, depth float64, ok bool) {
	d := p.Sub(v.eye)
	depth = d.Dot(v.fwd)
	if depth <= 0.01 {
		return 0, 0, depth, false
	}
	x = v.halfW + d.Dot(v.right)*v.focal/depth
	y = v.halfH - d.Dot(v.up)*v.focal/depth
	return x, y, depth, true
}

// projected is a sphere in image space.
type projected struct {
	x, y, r, depth float64
	sphere         *Sphere
}

// layout projects the spheres and sorts them back to front.
func (v view) layout(spheres []Sphere) []projected {
	out := make([]projected, 0, len(spheres))
	for i := range spheres {
		s := &spheres[i]
		x, y, depth, ok := v.project(s.Center)
		if !ok {
			continue
		}
		out = append(out, projected{x: x, y: y, r: s.Radius * v.focal / depth, depth: depth, sphere: s})
	}
	slices.SortStableFunc(out, func(a, b projected) int { return cmp.Compare(b.depth, a.depth) })
	return out
}
