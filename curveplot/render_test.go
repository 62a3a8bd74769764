// curveplot/render_test.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package curveplot

import (
	gomath "math"
	"testing"

	"github.com/mmp/celplot/math"
	"github.com/mmp/celplot/renderer"

	"github.com/google/go-cmp/cmp"
)

// straightPlot returns a stationary line of samples along x, spaced one
// unit apart and ten time units apart.
func straightPlot(n int) *CurvePlot {
	p := New()
	for i := range n {
		p.AddSample(Sample{T: 10 * float64(i), Position: math.V3(float64(i), 0, 0)})
	}
	return p
}

func testParams(threshold float64) RenderParams {
	return RenderParams{
		Transform:            math.Translation(math.V3(0, 0, -100)),
		Frustum:              math.MakePerspectiveFrustum(math.Radians(90), 1, 1, 1e12),
		SubdivisionThreshold: threshold,
		Color:                renderer.RGBA{R: 1, G: 1, B: 1, A: 1},
	}
}

func newTestRenderer(capacity int) (*Renderer, *renderer.Recorder) {
	rec := &renderer.Recorder{}
	return NewRenderer(renderer.NewEmitter(rec, capacity), nil), rec
}

func TestRenderStraightLine(t *testing.T) {
	r, rec := newTestRenderer(0)
	r.Render(straightPlot(3), testParams(1))

	want := [][][3]float32{{{0, 0, -100}, {1, 0, -100}, {2, 0, -100}}}
	if diff := cmp.Diff(want, rec.Strips()); diff != "" {
		t.Errorf("strips mismatch (-want +got):\n%s", diff)
	}
	if s := r.Stats(); s.Segments != 2 || s.Straight != 2 || s.Subdivided != 0 {
		t.Errorf("unexpected stats %+v", s)
	}
	if len(rec.Binds) != 1 || rec.Unbinds != 1 || rec.Creates != 1 {
		t.Errorf("expected one bind, unbind, and create")
	}
}

func TestRenderRange(t *testing.T) {
	r, rec := newTestRenderer(0)
	r.RenderRange(straightPlot(3), testParams(1), 5, 15)

	strips := rec.Strips()
	if len(strips) != 1 {
		t.Fatalf("expected a single strip, got %d", len(strips))
	}
	s := strips[0]
	if len(s) != 1+2*SubdivisionFactor {
		t.Errorf("expected %d vertices, got %d", 1+2*SubdivisionFactor, len(s))
	}
	if s[0] != [3]float32{0.5, 0, -100} {
		t.Errorf("strip starts at %v, expected halfway between the first two samples", s[0])
	}
	if s[len(s)-1] != [3]float32{1.5, 0, -100} {
		t.Errorf("strip ends at %v, expected halfway between the last two samples", s[len(s)-1])
	}
	for i := 1; i < len(s); i++ {
		if s[i][0] < s[i-1][0] {
			t.Errorf("vertex %d at x=%f precedes vertex %d at x=%f", i, s[i][0], i-1, s[i-1][0])
		}
	}
}

func TestRenderDegenerate(t *testing.T) {
	for _, tc := range []struct {
		name       string
		plot       *CurvePlot
		start, end float64
	}{
		{name: "empty", plot: New(), start: 0, end: 10},
		{name: "single sample", plot: straightPlot(1), start: 0, end: 10},
		{name: "empty range", plot: straightPlot(3), start: 5, end: 5},
		{name: "reversed range", plot: straightPlot(3), start: 15, end: 5},
		{name: "before", plot: straightPlot(3), start: -10, end: 0},
		{name: "after", plot: straightPlot(3), start: 20, end: 30},
	} {
		r, rec := newTestRenderer(0)
		r.RenderRange(tc.plot, testParams(1), tc.start, tc.end)
		r.RenderFaded(tc.plot, testParams(1), tc.start, tc.end, tc.start, tc.end)
		if tc.plot.Len() < 2 {
			r.Render(tc.plot, testParams(1))
		}
		if len(rec.Draws) != 0 || len(rec.Binds) != 0 {
			t.Errorf("%s: expected no draw submissions, got %d", tc.name, len(rec.Draws))
		}
	}
}

func TestRenderCullsInvisibleSegments(t *testing.T) {
	r, rec := newTestRenderer(0)
	// Straight segments are only tested against the far plane, so use a
	// threshold that makes the segments subdivided.
	params := testParams(1e-6)
	// Place the line behind the viewer.
	params.Transform = math.Translation(math.V3(0, 0, 100))
	r.Render(straightPlot(5), params)
	if len(rec.Draws) != 0 {
		t.Errorf("expected nothing to be drawn, got %d draws", len(rec.Draws))
	}

	// Beyond the far plane.
	rec.Reset()
	params = testParams(1)
	params.Frustum.FarZ = -50
	r.Render(straightPlot(5), params)
	if len(rec.Draws) != 0 {
		t.Errorf("expected nothing to be drawn beyond the far plane, got %d draws", len(rec.Draws))
	}
	if r.Stats().Culled != 4 {
		t.Errorf("expected 4 culled segments, got %+v", r.Stats())
	}
}

func TestRenderSplitsStripAtCulledSegment(t *testing.T) {
	// A line that leaves the view volume to the right and comes back.
	p := New()
	for i, x := range []float64{0, 1, 2, 1000, 2000, 1000, 3, 4} {
		p.AddSample(Sample{T: float64(i), Position: math.V3(x, 0, 0)})
	}

	r, rec := newTestRenderer(0)
	r.Render(p, testParams(0.01))

	strips := rec.Strips()
	if len(strips) != 2 {
		t.Fatalf("expected 2 strips, got %d", len(strips))
	}
	if first := strips[0][0]; first != [3]float32{0, 0, -100} {
		t.Errorf("first strip starts at %v", first)
	}
	if last := strips[1][len(strips[1])-1]; last != [3]float32{4, 0, -100} {
		t.Errorf("last strip ends at %v", last)
	}
	for _, s := range strips {
		for _, v := range s {
			if v[0] > 1100 {
				t.Errorf("vertex %v far outside the view volume was drawn", v)
			}
		}
	}
}

func TestRenderDepthLimit(t *testing.T) {
	r, rec := newTestRenderer(0)
	r.MaxDepth = 2
	r.Render(straightPlot(3), testParams(1e-12))

	if s := r.Stats(); s.MaxDepth != 2 {
		t.Errorf("max depth %d, expected 2", s.MaxDepth)
	}
	strips := rec.Strips()
	if len(strips) != 1 || len(strips[0]) != 1+2*SubdivisionFactor*SubdivisionFactor {
		t.Fatalf("unexpected strips: %d", len(strips))
	}
	if s := strips[0]; s[0] != [3]float32{0, 0, -100} || s[len(s)-1] != [3]float32{2, 0, -100} {
		t.Errorf("strip runs from %v to %v", s[0], s[len(s)-1])
	}
}

func TestRenderNonFiniteSamples(t *testing.T) {
	p := straightPlot(2)
	p.AddSample(Sample{T: 20, Position: math.V3(gomath.NaN(), 0, 0)})
	p.AddSample(Sample{T: 30, Position: math.V3(3, 0, 0), Velocity: math.V3(gomath.Inf(1), 0, 0)})
	p.AddSample(Sample{T: 40, Position: math.V3(4, 0, 0)})
	p.AddSample(Sample{T: 50, Position: math.V3(5, 0, 0)})

	for _, threshold := range []float64{1, 1e-2} {
		r, rec := newTestRenderer(0)
		r.Render(p, testParams(threshold))

		for _, s := range rec.Strips() {
			for _, v := range s {
				for _, c := range v {
					if c != c || gomath.IsInf(float64(c), 0) {
						t.Errorf("threshold %g: non-finite vertex %v", threshold, v)
					}
				}
			}
		}
		if r.Stats().MaxDepth > MaxSubdivisionDepth {
			t.Errorf("threshold %g: depth %d exceeds limit", threshold, r.Stats().MaxDepth)
		}
	}
}

func TestRenderContinuesAcrossFlushes(t *testing.T) {
	r, rec := newTestRenderer(4)
	r.Render(straightPlot(10), testParams(1))

	var joined [][3]float32
	for i, s := range rec.Strips() {
		if i > 0 {
			if s[0] != joined[len(joined)-1] {
				t.Fatalf("strip %d starts at %v, not at the end of the previous strip %v", i, s[0], joined[len(joined)-1])
			}
			s = s[1:]
		}
		joined = append(joined, s...)
	}

	var want [][3]float32
	for i := range 10 {
		want = append(want, [3]float32{float32(i), 0, -100})
	}
	if diff := cmp.Diff(want, joined); diff != "" {
		t.Errorf("joined strips mismatch (-want +got):\n%s", diff)
	}
	if len(rec.Uploads) < 2 {
		t.Errorf("expected multiple uploads with a small emitter")
	}
}

func fadedAlphas(t *testing.T, threshold, fadeStart, fadeEnd float64) []float32 {
	t.Helper()
	r, rec := newTestRenderer(0)
	r.RenderFaded(straightPlot(3), testParams(threshold), 0, 20, fadeStart, fadeEnd)

	var alphas []float32
	for _, s := range rec.StripVertices() {
		for _, v := range s {
			alphas = append(alphas, v.Color.A)
		}
	}
	if len(alphas) == 0 {
		t.Fatalf("nothing drawn")
	}
	return alphas
}

func TestRenderFaded(t *testing.T) {
	for _, tc := range []struct {
		fadeStart, fadeEnd float64
		increasing         bool
	}{
		{fadeStart: 0, fadeEnd: 20, increasing: true},
		{fadeStart: 5, fadeEnd: 15, increasing: true},
		{fadeStart: 20, fadeEnd: 0, increasing: false},
		{fadeStart: 10, fadeEnd: 10 - 1e-9, increasing: false},
		{fadeStart: 10, fadeEnd: 10 + 1e-9, increasing: true},
		{fadeStart: 10, fadeEnd: 10, increasing: true},
	} {
		for _, threshold := range []float64{1, 1e-3} {
			alphas := fadedAlphas(t, threshold, tc.fadeStart, tc.fadeEnd)
			for i, a := range alphas {
				if a < 0 || a > 1 {
					t.Errorf("fade [%g,%g]: alpha %f out of range", tc.fadeStart, tc.fadeEnd, a)
				}
				if i == 0 {
					continue
				}
				if tc.increasing && a < alphas[i-1] {
					t.Errorf("fade [%g,%g] threshold %g: alpha decreases at %d: %f -> %f",
						tc.fadeStart, tc.fadeEnd, threshold, i, alphas[i-1], a)
				} else if !tc.increasing && a > alphas[i-1] {
					t.Errorf("fade [%g,%g] threshold %g: alpha increases at %d: %f -> %f",
						tc.fadeStart, tc.fadeEnd, threshold, i, alphas[i-1], a)
				}
			}
		}
	}

	// With a straight line and the fade spanning the whole trajectory, the
	// endpoints are fully transparent and fully opaque.
	alphas := fadedAlphas(t, 1, 0, 20)
	if alphas[0] != 0 || alphas[len(alphas)-1] != 1 {
		t.Errorf("expected alpha from 0 to 1, got %f to %f", alphas[0], alphas[len(alphas)-1])
	}
	// Both segments are at the ends of the range and so are subdivided.
	if len(alphas) != 1+2*SubdivisionFactor || alphas[SubdivisionFactor] != 0.5 {
		t.Errorf("expected alpha 0.5 at the middle sample, got %v", alphas)
	}
}

func TestRenderKeplerOrbit(t *testing.T) {
	el := OrbitalElements{SemiMajorAxis: 7000, Eccentricity: 0.1, Period: 0.07, Inclination: 0.3}
	p, err := GenerateKepler(el, 0, el.Period, 16)
	if err != nil {
		t.Fatal(err)
	}

	r, rec := newTestRenderer(0)
	params := testParams(0.01)
	eye := math.V3(0, 0, 3*el.SemiMajorAxis)
	params.Transform = math.LookAt(eye, math.V3(0, 0, 0), math.V3(0, 1, 0))
	r.Render(p, params)

	if len(rec.Strips()) != 1 {
		t.Fatalf("expected the whole orbit in one strip, got %d", len(rec.Strips()))
	}
	if r.Stats().Subdivided == 0 {
		t.Errorf("expected curved segments to be subdivided")
	}

	// All vertices lie close to the orbit: within a small fraction of the
	// semi-major axis of the focus distance range.
	a, e := el.SemiMajorAxis, el.Eccentricity
	center := params.Transform.TransformPoint(math.V3(0, 0, 0))
	for _, v := range rec.Strips()[0] {
		d := gomath.Sqrt(math.Sqr(float64(v[0])-center.X) + math.Sqr(float64(v[1])-center.Y) + math.Sqr(float64(v[2])-center.Z))
		if d < a*(1-e)*0.99 || d > a*(1+e)*1.01 {
			t.Errorf("vertex %v is %f from the focus, outside [%f,%f]", v, d, a*(1-e), a*(1+e))
		}
	}
}
