// math/hermite.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import "gonum.org/v1/gonum/spatial/r3"

// Cubic holds the power-basis coefficients of a cubic space curve,
// P(t) = C[0] + C[1] t + C[2] t^2 + C[3] t^3.
type Cubic [4]Vec3

// HermiteCubic returns the cubic that starts at p0 with tangent v0 and
// ends at p1 with tangent v1 over t in [0,1]. Tangents must already be
// scaled by the duration of the segment.
func HermiteCubic(p0, p1, v0, v1 Vec3) Cubic {
	return Cubic{
		p0,
		v0,
		r3.Sub(r3.Scale(3, r3.Sub(p1, p0)), r3.Add(r3.Scale(2, v0), v1)),
		r3.Add(r3.Scale(2, r3.Sub(p0, p1)), r3.Add(v1, v0)),
	}
}

func (c Cubic) Eval(t float64) Vec3 {
	t2 := t * t
	t3 := t2 * t
	return Vec3{
		X: c[0].X + c[1].X*t + c[2].X*t2 + c[3].X*t3,
		Y: c[0].Y + c[1].Y*t + c[2].Y*t2 + c[3].Y*t3,
		Z: c[0].Z + c[1].Z*t + c[2].Z*t2 + c[3].Z*t3,
	}
}

// BoundingRadius returns an upper bound on the distance from P(0) to any
// point P(t) with t in [0,1]: |P(t)-P(0)| <= |C1|+|C2|+|C3| componentwise.
func (c Cubic) BoundingRadius() float64 {
	extents := r3.Add(AbsVec3(c[1]), r3.Add(AbsVec3(c[2]), AbsVec3(c[3])))
	return r3.Norm(extents)
}
