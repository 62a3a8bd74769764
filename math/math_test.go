// math/math_test.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func approxEqual3(a, b Vec3, eps float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= eps
}

func randVec3(r *rand.Rand, scale float64) Vec3 {
	return Vec3{
		X: scale * (2*r.Float64() - 1),
		Y: scale * (2*r.Float64() - 1),
		Z: scale * (2*r.Float64() - 1),
	}
}

func TestClamp(t *testing.T) {
	for _, c := range []struct{ x, expected float64 }{
		{-1, 0}, {0, 0}, {0.25, 0.25}, {1, 1}, {7, 1}, {gomath.NaN(), 0},
		{gomath.Inf(1), 1}, {gomath.Inf(-1), 0},
	} {
		if v := Clamp(c.x, 0, 1); v != c.expected {
			t.Errorf("Clamp(%v): got %v, expected %v", c.x, v, c.expected)
		}
	}
}

func TestHermiteEndpoints(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 100 {
		p0, p1 := randVec3(r, 100), randVec3(r, 100)
		v0, v1 := randVec3(r, 10), randVec3(r, 10)
		c := HermiteCubic(p0, p1, v0, v1)

		if !approxEqual3(c.Eval(0), p0, 1e-9) {
			t.Errorf("P(0) = %v, expected %v", c.Eval(0), p0)
		}
		if !approxEqual3(c.Eval(1), p1, 1e-9) {
			t.Errorf("P(1) = %v, expected %v", c.Eval(1), p1)
		}

		// P'(t) = C1 + 2 C2 t + 3 C3 t^2
		d0 := c[1]
		d1 := r3.Add(c[1], r3.Add(r3.Scale(2, c[2]), r3.Scale(3, c[3])))
		if !approxEqual3(d0, v0, 1e-9) || !approxEqual3(d1, v1, 1e-9) {
			t.Errorf("tangents (%v, %v), expected (%v, %v)", d0, d1, v0, v1)
		}
	}
}

func TestHermiteStraightLine(t *testing.T) {
	// Constant velocity along a line gives linear interpolation.
	p0, p1 := V3(1, 2, 3), V3(5, 2, -1)
	v := r3.Sub(p1, p0)
	c := HermiteCubic(p0, p1, v, v)
	for _, u := range []float64{0, 0.1, 0.5, 0.75, 1} {
		if p := c.Eval(u); !approxEqual3(p, Lerp3(u, p0, p1), 1e-12) {
			t.Errorf("P(%g) = %v, expected %v", u, p, Lerp3(u, p0, p1))
		}
	}
}

func TestBoundingRadiusIsConservative(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for range 1000 {
		c := HermiteCubic(randVec3(r, 1e6), randVec3(r, 1e6), randVec3(r, 1e6), randVec3(r, 1e6))
		br := c.BoundingRadius()
		p0 := c.Eval(0)
		for i := 0; i <= 100; i++ {
			u := float64(i) / 100
			if d := r3.Norm(r3.Sub(c.Eval(u), p0)); d > br*(1+1e-12) {
				t.Fatalf("distance %g at t=%g exceeds bounding radius %g", d, u, br)
			}
		}
	}
}

func TestAffine(t *testing.T) {
	m := Translation(V3(1, 2, 3)).Mul(RotationZ(gomath.Pi / 2))
	if p := m.TransformPoint(V3(1, 0, 0)); !approxEqual3(p, V3(1, 3, 3), 1e-12) {
		t.Errorf("got %v, expected (1, 3, 3)", p)
	}
	if v := m.TransformVector(V3(1, 0, 0)); !approxEqual3(v, V3(0, 1, 0), 1e-12) {
		t.Errorf("got %v, expected (0, 1, 0)", v)
	}
	if id := Identity().Mul(m); id != m {
		t.Errorf("identity product changed the transform: %v vs %v", id, m)
	}

	mf := m.Matrix4f()
	if mf[12] != 1 || mf[13] != 2 || mf[14] != 3 || mf[15] != 1 {
		t.Errorf("unexpected translation column in %v", mf)
	}
}

func TestLookAt(t *testing.T) {
	eye, center := V3(10, 0, 0), V3(0, 0, 0)
	m := LookAt(eye, center, V3(0, 0, 1))

	if p := m.TransformPoint(eye); !approxEqual3(p, Vec3{}, 1e-12) {
		t.Errorf("eye maps to %v, expected origin", p)
	}
	if p := m.TransformPoint(center); !approxEqual3(p, V3(0, 0, -10), 1e-12) {
		t.Errorf("center maps to %v, expected (0, 0, -10)", p)
	}
	if p := m.TransformVector(V3(0, 0, 1)); !approxEqual3(p, V3(0, 1, 0), 1e-12) {
		t.Errorf("up maps to %v, expected (0, 1, 0)", p)
	}
}

func TestCullSphere(t *testing.T) {
	f := MakePerspectiveFrustum(Radians(45), 1.5, 1, 1000)

	for _, c := range []struct {
		name   string
		center Vec3
		radius float64
		culled bool
	}{
		{"center of view", V3(0, 0, -10), 1, false},
		{"behind viewer", V3(0, 0, 10), 1, true},
		{"straddles near plane", V3(0, 0, -0.5), 1, false},
		{"in front of near plane", V3(0, 0, -0.5), 0.25, true},
		{"beyond far plane", V3(0, 0, -2000), 10, true},
		{"straddles far plane", V3(0, 0, -1005), 10, false},
		{"far right", V3(1000, 0, -10), 1, true},
		{"far left", V3(-1000, 0, -10), 1, true},
		{"far above", V3(0, 1000, -10), 1, true},
		{"far below", V3(0, -1000, -10), 1, true},
		{"large sphere off to the side", V3(1000, 0, -10), 2000, false},
	} {
		if culled := f.CullSphere(c.center, c.radius); culled != c.culled {
			t.Errorf("%s: got culled=%v, expected %v", c.name, culled, c.culled)
		}
	}
}

func TestCullSphereIsConservative(t *testing.T) {
	f := MakePerspectiveFrustum(Radians(60), 1, 0.1, 500)
	r := rand.New(rand.NewPCG(5, 6))

	n := 0
	for n < 5000 {
		p := Vec3{X: 600 * (2*r.Float64() - 1), Y: 600 * (2*r.Float64() - 1), Z: -600 * r.Float64()}
		if !f.Contains(p) {
			continue
		}
		n++

		// Any sphere containing a point of the volume intersects it.
		offset := randVec3(r, 50)
		radius := r3.Norm(offset) * (1 + r.Float64())
		if f.CullSphere(r3.Add(p, offset), radius) {
			t.Fatalf("sphere at %v radius %g contains %v but was culled", r3.Add(p, offset), radius, p)
		}
	}
}
