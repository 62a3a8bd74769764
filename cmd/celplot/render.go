// cmd/celplot/render.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"time"

	"github.com/mmp/celplot/curveplot"
	"github.com/mmp/celplot/log"
	"github.com/mmp/celplot/math"
	"github.com/mmp/celplot/refmark"
	"github.com/mmp/celplot/renderer"
	"github.com/mmp/celplot/viewport"

	"github.com/iancoleman/orderedmap"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/spatial/r3"
)

// loadTrajectories loads all of the scene's plots concurrently.
func loadTrajectories(s *Scene, lg *log.Logger) error {
	cache := curveplot.NewCache(max(len(s.Trajectories), 1), 10*time.Minute, lg)

	var eg errgroup.Group
	for _, t := range s.Trajectories {
		eg.Go(func() error {
			p, err := cache.Get(t.File)
			t.plot = p
			return err
		})
	}
	return eg.Wait()
}

// teeBackend forwards stream submissions to multiple backends.
type teeBackend []renderer.StreamBackend

func (t teeBackend) CreateStreamBuffer(slots int) {
	for _, b := range t {
		b.CreateStreamBuffer(slots)
	}
}

func (t teeBackend) BindStream(lineAsTriangles bool) {
	for _, b := range t {
		b.BindStream(lineAsTriangles)
	}
}

func (t teeBackend) UploadStream(v []renderer.Vertex) {
	for _, b := range t {
		b.UploadStream(v)
	}
}

func (t teeBackend) DrawStream(tp renderer.Topology, first, count int) {
	for _, b := range t {
		b.DrawStream(tp, first, count)
	}
}

func (t teeBackend) UnbindStream() {
	for _, b := range t {
		b.UnbindStream()
	}
}

// SceneRenderer generates the commands to draw a scene. All drawing goes
// through a single Emitter.
type SceneRenderer struct {
	scene    *Scene
	emitter  *renderer.Emitter
	curves   *curveplot.Renderer
	recorder *renderer.Recorder
	lg       *log.Logger

	stats *orderedmap.OrderedMap
}

// NewSceneRenderer returns a SceneRenderer that adds its commands to cb.
// If record is set, draw submissions are also kept so that they can be
// inspected with Recorder.
func NewSceneRenderer(s *Scene, cb *renderer.CommandBuffer, record bool, lg *log.Logger) *SceneRenderer {
	sr := &SceneRenderer{scene: s, lg: lg, stats: orderedmap.New()}

	var backend renderer.StreamBackend = cb
	if record {
		sr.recorder = &renderer.Recorder{}
		backend = teeBackend{cb, sr.recorder}
	}
	sr.emitter = renderer.NewEmitter(backend, renderer.DefaultEmitterCapacity)
	sr.curves = curveplot.NewRenderer(sr.emitter, lg)
	return sr
}

func (sr *SceneRenderer) Recorder() *renderer.Recorder {
	return sr.recorder
}

// Stats returns an ordered summary of the work done in Render.
func (sr *SceneRenderer) Stats() *orderedmap.OrderedMap {
	return sr.stats
}

// Render adds the scene's commands to cb. The viewport is left to the
// caller so that the commands can be executed at different sizes.
func (sr *SceneRenderer) Render(cb *renderer.CommandBuffer, effect viewport.Effect) {
	s := sr.scene
	if effect != nil && !effect.Preprocess(cb) {
		sr.lg.Warn("viewport effect preprocess failed")
	}

	cb.ClearRGBA(s.background)
	cb.LoadProjectionMatrix(s.Camera.Projection())
	cb.LineWidth(s.LineWidth)

	xf := s.Camera.Transform()
	frustum := s.Camera.Frustum()

	var trajStats []any
	for _, t := range s.Trajectories {
		params := curveplot.RenderParams{
			Transform:            xf,
			Frustum:              frustum,
			SubdivisionThreshold: s.SubdivisionThreshold,
			Color:                t.color,
			LineAsTriangles:      s.LineAsTriangles,
		}

		start, end := t.Range()
		switch {
		case t.FadeStart != nil:
			sr.curves.RenderFaded(t.plot, params, start, end, *t.FadeStart, *t.FadeEnd)
		case t.Ranged():
			sr.curves.RenderRange(t.plot, params, start, end)
		default:
			sr.curves.Render(t.plot, params)
		}

		rs, es := sr.curves.Stats(), sr.emitter.Stats()
		sr.lg.Info("rendered trajectory", "file", t.File, "render", rs, "emitter", es)

		ts := orderedmap.New()
		ts.Set("file", t.File)
		ts.Set("samples", t.plot.Len())
		ts.Set("segments", rs.Segments)
		ts.Set("straight", rs.Straight)
		ts.Set("subdivided", rs.Subdivided)
		ts.Set("culled", rs.Culled)
		ts.Set("max_depth", rs.MaxDepth)
		ts.Set("strips", es.Strips)
		ts.Set("vertices", es.Vertices)
		ts.Set("flushes", es.Flushes)
		trajStats = append(trajStats, ts)
	}
	sr.stats.Set("trajectories", trajStats)

	var bodyStats []any
	for _, b := range s.Bodies {
		vr := refmark.NewVisibleRegion(vec3(b.SemiAxes))
		vr.Color = b.color

		pos := vec3(b.Position)
		disc := sr.discSize(pos, vr.SemiAxes)
		vr.Render(sr.emitter, xf.Mul(math.Translation(pos)), r3.Sub(vec3(b.Target), pos), disc, s.LineAsTriangles)

		bs := orderedmap.New()
		bs.Set("name", b.Name)
		bs.Set("disc_pixels", disc)
		bs.Set("opacity", vr.FadeOpacity(disc))
		bodyStats = append(bodyStats, bs)
	}
	if len(bodyStats) > 0 {
		sr.stats.Set("bodies", bodyStats)
	}

	if effect != nil {
		if !effect.Prerender(cb) || !effect.Render(cb, s.Width, s.Height) {
			sr.lg.Warn("viewport effect failed")
		}
	}
}

// discSize returns the apparent diameter in pixels of a body at pos.
func (sr *SceneRenderer) discSize(pos, semiAxes math.Vec3) float32 {
	d := r3.Norm(r3.Sub(pos, vec3(sr.scene.Camera.Position)))
	radius := max(semiAxes.X, semiAxes.Y, semiAxes.Z)
	if d <= radius {
		return 0
	}
	return float32(2 * radius / d / sr.scene.PixelSize())
}

// execute runs the scene commands in a viewport of the given size with
// r, returning r's statistics.
func execute(r renderer.Renderer, scene *renderer.CommandBuffer, width, height int) renderer.RendererStats {
	cb := renderer.GetCommandBuffer()
	defer renderer.ReturnCommandBuffer(cb)

	cb.Viewport(0, 0, width, height)
	cb.Call(*scene)
	return r.RenderCommandBuffer(cb)
}
