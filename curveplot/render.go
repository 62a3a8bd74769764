// curveplot/render.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package curveplot

import (
	"log/slog"
	gomath "math"

	"github.com/mmp/celplot/log"
	"github.com/mmp/celplot/math"
	"github.com/mmp/celplot/renderer"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// SubdivisionFactor is the number of equal sub-intervals a segment is
	// split into at each level of subdivision.
	SubdivisionFactor = 8

	// MaxSubdivisionDepth is the default limit on subdivision levels;
	// segments at the limit are drawn as straight lines.
	MaxSubdivisionDepth = 16
)

// RenderParams describes the view that a plot is rendered for.
type RenderParams struct {
	// Transform takes sample positions and velocities to camera space,
	// where the viewer is at the origin looking down -z.
	Transform math.Affine3d
	// Frustum is in camera space.
	Frustum math.Frustum
	// SubdivisionThreshold is compared to a segment's apparent size
	// (bounding radius over distance); segments at least this large are
	// subdivided. Smaller values give finer tessellation.
	SubdivisionThreshold float64
	Color                renderer.RGBA
	LineAsTriangles      bool
}

// RenderStats summarizes the work done by the most recent render call.
type RenderStats struct {
	Segments   int // sample pairs visited
	Straight   int // sample pairs drawn without subdivision
	Subdivided int // calls to the recursive tessellator
	Culled     int // spheres rejected by the frustum test
	MaxDepth   int // deepest subdivision level reached
}

func (s RenderStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("segments", s.Segments),
		slog.Int("straight", s.Straight),
		slog.Int("subdivided", s.Subdivided),
		slog.Int("culled", s.Culled),
		slog.Int("max_depth", s.MaxDepth))
}

// Renderer tessellates plots into an Emitter. A single Renderer, and thus
// a single Emitter, is normally shared by all of the plots drawn in a
// rendering session; it must not be used concurrently.
type Renderer struct {
	emitter  *renderer.Emitter
	MaxDepth int
	lg       *log.Logger
	stats    RenderStats
}

func NewRenderer(e *renderer.Emitter, lg *log.Logger) *Renderer {
	return &Renderer{emitter: e, MaxDepth: MaxSubdivisionDepth, lg: lg}
}

// Stats returns statistics about the most recent render call.
func (r *Renderer) Stats() RenderStats {
	return r.stats
}

// Render draws the entire plot.
func (r *Renderer) Render(p *CurvePlot, params RenderParams) {
	if p.Len() < 2 {
		return
	}
	r.render(p, params, 0, false, 0, 0, nil)
}

// RenderRange draws the part of the plot between startTime and endTime.
func (r *Renderer) RenderRange(p *CurvePlot, params RenderParams, startTime, endTime float64) {
	if !rangeOverlaps(p, startTime, endTime) {
		return
	}
	r.render(p, params, p.startSample(startTime), true, startTime, endTime, nil)
}

// RenderFaded draws the part of the plot between startTime and endTime
// with opacity varying linearly from 0 at fadeStartTime to 1 at
// fadeEndTime and clamped outside that interval. fadeEndTime may be
// before fadeStartTime, which reverses the direction of the fade.
func (r *Renderer) RenderFaded(p *CurvePlot, params RenderParams, startTime, endTime, fadeStartTime, fadeEndTime float64) {
	if !rangeOverlaps(p, startTime, endTime) {
		return
	}
	f := &fade{start: fadeStartTime, rate: 1 / (fadeEndTime - fadeStartTime)}
	r.render(p, params, p.startSample(startTime), true, startTime, endTime, f)
}

func rangeOverlaps(p *CurvePlot, startTime, endTime float64) bool {
	return p.Len() >= 2 && startTime < endTime && endTime > p.StartTime() && startTime < p.EndTime()
}

// fade maps a curve parameter to opacity.
type fade struct {
	start, rate float64
}

func (f *fade) opacity(t float64) float64 {
	return math.Clamp((t-f.start)*f.rate, 0, 1)
}

// local returns the fade in terms of the local parameter of a segment
// that starts at time t0 and lasts dt.
func (f *fade) local(t0, dt float64) *fade {
	return &fade{start: (f.start - t0) / dt, rate: f.rate * dt}
}

func (r *Renderer) render(p *CurvePlot, params RenderParams, start int, ranged bool,
	startTime, endTime float64, f *fade) {
	if r == nil || r.emitter == nil {
		return
	}

	r.stats = RenderStats{}
	tc := tessellator{
		emitter:   r.emitter,
		frustum:   params.Frustum,
		threshold: params.SubdivisionThreshold,
		maxDepth:  max(r.MaxDepth, 1),
		color:     params.Color,
		stats:     &r.stats,
	}
	xf := params.Transform
	e := r.emitter

	s0 := p.Sample(start)
	p0, v0 := xf.TransformPoint(s0.Position), xf.TransformVector(s0.Velocity)
	var opacity0 float64
	if f != nil {
		opacity0 = f.opacity(s0.T)
	}

	e.CreateVertexBuffer()
	e.Setup(params.LineAsTriangles)
	e.SetColor(params.Color)

	restart := true
	firstSegment, lastSegment := ranged, false
	for i := start + 1; i < p.Len() && !lastSegment; i++ {
		prev, s1 := p.Sample(i-1), p.Sample(i)
		p1, v1 := xf.TransformPoint(s1.Position), xf.TransformVector(s1.Velocity)
		var opacity1 float64
		if f != nil {
			opacity1 = f.opacity(s1.T)
		}
		if ranged && endTime <= s1.T {
			lastSegment = true
		}
		r.stats.Segments++

		radius := s1.BoundingRadius
		// Distance from the start point to the z=0 plane less the
		// radius is a lower bound on the distance to the curve.
		minDistance := math.Abs(p0.Z) - radius

		if !math.IsFinite3(p0) || !math.IsFinite3(p1) || gomath.IsNaN(radius) || gomath.IsInf(radius, 0) {
			restart = tc.endStrip(restart)
		} else if radius >= tc.threshold*minDistance || firstSegment || lastSegment {
			// The segment is near enough to the viewer that it's drawn as
			// a curve, unless it is outside the view volume.
			if tc.frustum.CullSphere(p0, radius) {
				r.stats.Culled++
				restart = tc.endStrip(restart)
			} else {
				dt := s1.T - prev.T
				t0, t1 := 0., 1.
				if firstSegment {
					t0 = math.Clamp((startTime-prev.T)/dt, 0, 1)
					firstSegment = false
				}
				if lastSegment {
					t1 = math.Clamp((endTime-prev.T)/dt, 0, 1)
				}

				c := math.HermiteCubic(p0, p1, r3.Scale(dt, v0), r3.Scale(dt, v1))
				var lf *fade
				if f != nil {
					lf = f.local(prev.T, dt)
				}
				restart = tc.renderCubic(restart, c, t0, t1, radius, 1, lf)
			}
		} else {
			// The segment's apparent size is small enough that it can be
			// drawn as a straight line. Only the far plane is checked;
			// backends may not clip very long lines beyond it reliably.
			r.stats.Straight++
			if p0.Z+radius < tc.frustum.FarZ {
				r.stats.Culled++
				restart = tc.endStrip(restart)
			} else {
				if restart {
					e.Begin()
					tc.vertex(p0, opacity0, f != nil)
					restart = false
				}
				tc.vertex(p1, opacity1, f != nil)
			}
		}

		p0, v0, opacity0 = p1, v1, opacity1
	}

	if !restart {
		e.End()
	}
	e.Flush()
	e.Finish()

	r.lg.Debug("rendered curve", slog.Any("stats", r.stats), slog.Any("emitter", e.Stats()))
}

// tessellator holds the state that is constant over the recursive
// subdivision of one render call.
type tessellator struct {
	emitter   *renderer.Emitter
	frustum   math.Frustum
	threshold float64
	maxDepth  int
	color     renderer.RGBA
	stats     *RenderStats
}

// endStrip closes the open strip, if there is one, and returns the new
// restart flag.
func (tc *tessellator) endStrip(restart bool) bool {
	if !restart {
		tc.emitter.End()
	}
	return true
}

func (tc *tessellator) vertex(p math.Vec3, opacity float64, faded bool) {
	if faded {
		tc.emitter.VertexColor(p, tc.color.ScaleAlpha(float32(opacity)))
	} else {
		tc.emitter.Vertex(p)
	}
}

// renderCubic draws the curve c over [t0,t1], whose points are all within
// radius of c(t0), and returns the updated restart flag: true if no strip
// is open and the next vertex must begin a new one. If f is non-nil, it
// gives opacity in terms of the curve's parameter.
func (tc *tessellator) renderCubic(restart bool, c math.Cubic, t0, t1, radius float64, depth int, f *fade) bool {
	tc.stats.Subdivided++
	tc.stats.MaxDepth = max(tc.stats.MaxDepth, depth)

	dt := (t1 - t0) / SubdivisionFactor
	segmentRadius := radius / SubdivisionFactor

	lastP := c.Eval(t0)
	var lastOpacity, opacity float64
	if f != nil {
		lastOpacity = f.opacity(t0)
	}

	for i := 1; i <= SubdivisionFactor; i++ {
		t := t0 + dt*float64(i)
		p := c.Eval(t)
		if f != nil {
			opacity = f.opacity(t)
		}

		minDistance := max(-tc.frustum.NearZ, math.Abs(p.Z)-segmentRadius)
		if segmentRadius >= tc.threshold*minDistance && depth < tc.maxDepth {
			if tc.frustum.CullSphere(p, segmentRadius) {
				tc.stats.Culled++
				restart = tc.endStrip(restart)
			} else {
				restart = tc.renderCubic(restart, c, t-dt, t, segmentRadius, depth+1, f)
			}
		} else {
			if restart {
				tc.emitter.Begin()
				tc.vertex(lastP, lastOpacity, f != nil)
				restart = false
			}
			tc.vertex(p, opacity, f != nil)
		}

		lastP, lastOpacity = p, opacity
	}

	return restart
}
