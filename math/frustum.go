// math/frustum.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Frustum is a truncated view volume in camera space: the viewer is at the
// origin looking down -z, so both NearZ and FarZ are negative and
// FarZ < NearZ. Normals are the inward-facing normals of the four side
// planes, all of which pass through the origin.
type Frustum struct {
	NearZ, FarZ float64
	Normals     [4]Vec3
}

// MakePerspectiveFrustum returns the frustum for a symmetric perspective
// projection with the given vertical field of view (radians), aspect ratio
// (width/height), and positive near and far distances. Normals are ordered
// top, bottom, left, right.
func MakePerspectiveFrustum(fovY, aspect, near, far float64) Frustum {
	hy := fovY / 2
	hx := gomath.Atan(aspect * gomath.Tan(hy))
	sy, cy := gomath.Sincos(hy)
	sx, cx := gomath.Sincos(hx)

	return Frustum{
		NearZ: -near,
		FarZ:  -far,
		Normals: [4]Vec3{
			{X: 0, Y: -cy, Z: -sy},
			{X: 0, Y: cy, Z: -sy},
			{X: cx, Y: 0, Z: -sx},
			{X: -cx, Y: 0, Z: -sx},
		},
	}
}

// CullSphere returns true if the sphere is entirely outside the view
// volume. It may fail to cull spheres that are outside but near a corner;
// it never culls a sphere that intersects the volume.
func (f Frustum) CullSphere(center Vec3, radius float64) bool {
	return center.Z-radius > f.NearZ ||
		center.Z+radius < f.FarZ ||
		r3.Dot(center, f.Normals[0]) < -radius ||
		r3.Dot(center, f.Normals[1]) < -radius ||
		r3.Dot(center, f.Normals[2]) < -radius ||
		r3.Dot(center, f.Normals[3]) < -radius
}

// Contains reports whether the point is inside the view volume.
func (f Frustum) Contains(p Vec3) bool {
	if p.Z > f.NearZ || p.Z < f.FarZ {
		return false
	}
	for _, n := range f.Normals {
		if r3.Dot(p, n) < 0 {
			return false
		}
	}
	return true
}

// PerspectiveMatrix returns the column-major projection matrix that maps
// the frustum given by the same parameters as MakePerspectiveFrustum to
// clip space.
func PerspectiveMatrix(fovY, aspect, near, far float64) [16]float32 {
	f := 1 / gomath.Tan(fovY/2)
	var m [16]float32
	m[0] = float32(f / aspect)
	m[5] = float32(f)
	m[10] = float32((far + near) / (near - far))
	m[11] = -1
	m[14] = float32(2 * far * near / (near - far))
	return m
}
