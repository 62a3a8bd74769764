// math/vec.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"gonum.org/v1/gonum/spatial/r3"
)

///////////////////////////////////////////////////////////////////////////
// Vec3

// Vec3 is a double-precision 3-vector. Everything between the sample store
// and the vertex emitter stays in double precision; conversion to float32
// only happens when vertices are written to the stream buffer.
type Vec3 = r3.Vec

func V3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// AbsVec3 returns v with each component replaced by its absolute value.
func AbsVec3(v Vec3) Vec3 {
	return Vec3{X: gomath.Abs(v.X), Y: gomath.Abs(v.Y), Z: gomath.Abs(v.Z)}
}

// Lerp3 linearly interpolates x of the way between a and b.
func Lerp3(x float64, a, b Vec3) Vec3 {
	return r3.Add(r3.Scale(1-x, a), r3.Scale(x, b))
}

// IsFinite3 reports whether all of v's components are finite.
func IsFinite3(v Vec3) bool {
	finite := func(f float64) bool { return !gomath.IsNaN(f) && !gomath.IsInf(f, 0) }
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

// Float32 returns v as a homogeneous single-precision point (w=1).
func Float32(v Vec3) [4]float32 {
	return [4]float32{float32(v.X), float32(v.Y), float32(v.Z), 1}
}

///////////////////////////////////////////////////////////////////////////
// Affine3d

// Affine3d is a double-precision affine transformation stored as the top
// three rows of a 4x4 row-major matrix; the implicit last row is (0,0,0,1).
type Affine3d [3][4]float64

func Identity() Affine3d {
	return Affine3d{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
}

func Translation(v Vec3) Affine3d {
	return Affine3d{
		{1, 0, 0, v.X},
		{0, 1, 0, v.Y},
		{0, 0, 1, v.Z},
	}
}

func Scaling(s float64) Affine3d {
	return Affine3d{
		{s, 0, 0, 0},
		{0, s, 0, 0},
		{0, 0, s, 0},
	}
}

// RotationX returns a rotation of theta radians about the x axis.
func RotationX(theta float64) Affine3d {
	s, c := gomath.Sincos(theta)
	return Affine3d{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
	}
}

// RotationZ returns a rotation of theta radians about the z axis.
func RotationZ(theta float64) Affine3d {
	s, c := gomath.Sincos(theta)
	return Affine3d{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
	}
}

// LookAt returns the camera transformation for a viewer at eye looking
// toward center; the result maps world space to a camera space where the
// viewer is at the origin looking down -z with up along +y.
func LookAt(eye, center, up Vec3) Affine3d {
	f := r3.Unit(r3.Sub(center, eye))
	s := r3.Unit(r3.Cross(f, up))
	u := r3.Cross(s, f)

	m := Affine3d{
		{s.X, s.Y, s.Z, 0},
		{u.X, u.Y, u.Z, 0},
		{-f.X, -f.Y, -f.Z, 0},
	}
	t := m.TransformVector(eye)
	m[0][3], m[1][3], m[2][3] = -t.X, -t.Y, -t.Z
	return m
}

// Mul returns the composition m*m2; the result applies m2 first.
func (m Affine3d) Mul(m2 Affine3d) Affine3d {
	var r Affine3d
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[i][0]*m2[0][j] + m[i][1]*m2[1][j] + m[i][2]*m2[2][j]
		}
		r[i][3] += m[i][3]
	}
	return r
}

func (m Affine3d) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

func (m Affine3d) TransformVector(v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// Matrix4f returns the transformation as a column-major single-precision
// 4x4 matrix, the layout that the command buffer stores.
func (m Affine3d) Matrix4f() [16]float32 {
	var r [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 3; row++ {
			r[4*col+row] = float32(m[row][col])
		}
	}
	r[15] = 1
	return r
}
