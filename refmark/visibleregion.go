// refmark/visibleregion.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package refmark provides reference marks drawn on or around bodies
// through the renderer's Emitter.
package refmark

import (
	gomath "math"

	"github.com/mmp/celplot/math"
	"github.com/mmp/celplot/renderer"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	maxSections = 360

	// Disc sizes, in pixels, at which the outline starts to fade in and
	// is fully opaque.
	minDiscSize         = 5
	fullOpacityDiscSize = 10

	// Targets further away than this many body radii are moved in to
	// this distance; rays to the body are nearly parallel by then.
	maxTargetDistance = 10000
)

// VisibleRegion is the outline of the region on an ellipsoidal body's
// surface from which a target point is visible. When the target is the
// sun, the outline is the terminator; for a satellite it is the
// satellite's circle of visibility.
type VisibleRegion struct {
	SemiAxes math.Vec3
	Color    renderer.RGBA
	Opacity  float32
}

func NewVisibleRegion(semiAxes math.Vec3) *VisibleRegion {
	return &VisibleRegion{
		SemiAxes: semiAxes,
		Color:    renderer.RGBA{R: 1, G: 1, A: 1},
		Opacity:  1,
	}
}

// Sections returns the number of segments used for the outline of a body
// with the given apparent diameter in pixels.
func Sections(discSize float32) int {
	return min(int(30+discSize*0.5), maxSections)
}

// FadeOpacity returns the opacity of the outline for a body with the
// given apparent diameter; it is zero when the body is too small for the
// outline to be drawn.
func (vr *VisibleRegion) FadeOpacity(discSize float32) float32 {
	o := (discSize - minDiscSize) / (fullOpacityDiscSize - minDiscSize)
	if o <= 0 {
		return 0
	}
	return min(o, 1) * vr.Opacity
}

// Outline returns the outline in body-fixed coordinates, given the
// position of the target relative to the body's center, also in
// body-fixed coordinates. The points are placed slightly above the
// surface, about a pixel for a disc of the given size. The returned
// opacity is zero, along with a nil slice, if the body is too small to
// draw the outline.
func (vr *VisibleRegion) Outline(target math.Vec3, discSize float32) ([]math.Vec3, float32) {
	opacity := vr.FadeOpacity(discSize)
	if opacity <= 0 {
		return nil, 0
	}

	maxSemiAxis := max(vr.SemiAxes.X, vr.SemiAxes.Y, vr.SemiAxes.Z)
	if !(maxSemiAxis > 0) || r3.Norm(target) == 0 || !math.IsFinite3(target) {
		return nil, 0
	}
	nSections := Sections(discSize)
	scale := max(float64((discSize+1)/discSize), 1.0001)

	// Work in units of the largest semi-axis to keep values modest.
	lightDir := r3.Scale(-1/maxSemiAxis, target)
	if d := r3.Norm(lightDir); d > maxTargetDistance {
		lightDir = r3.Scale(maxTargetDistance/d, lightDir)
	}

	lightDirNorm := r3.Unit(lightDir)
	uAxis := unitOrthogonal(lightDirNorm)
	vAxis := r3.Cross(uAxis, lightDirNorm)

	recipSemiAxes := math.V3(maxSemiAxis/vr.SemiAxes.X, maxSemiAxis/vr.SemiAxes.Y, maxSemiAxis/vr.SemiAxes.Z)
	e := r3.Scale(-1, lightDir)
	es := mulElem(e, recipSemiAxes)
	ee := r3.Dot(es, es)

	pts := make([]math.Vec3, 0, nSections+2)
	for i := 0; i <= nSections+1; i++ {
		theta := float64(i) / float64(nSections) * 2 * gomath.Pi
		s, c := gomath.Sincos(theta)
		w := r3.Add(r3.Scale(c, uAxis), r3.Scale(s, vAxis))

		p := ellipsoidTangent(recipSemiAxes, w, e, es, ee)
		pts = append(pts, r3.Scale(maxSemiAxis*scale, p))
	}
	return pts, opacity
}

// Render emits the outline as a single strip. xform takes body-fixed
// coordinates to camera space.
func (vr *VisibleRegion) Render(e *renderer.Emitter, xform math.Affine3d, target math.Vec3,
	discSize float32, lineAsTriangles bool) {
	pts, opacity := vr.Outline(target, discSize)
	if len(pts) == 0 {
		return
	}

	e.CreateVertexBuffer()
	e.Setup(lineAsTriangles)
	e.SetColor(vr.Color.ScaleAlpha(opacity))
	e.Begin()
	for _, p := range pts {
		e.Vertex(xform.TransformPoint(p))
	}
	e.End()
	e.Flush()
	e.Finish()
}

// ellipsoidTangent returns the point where the ray from e in the plane
// spanned by -e and w grazes the ellipsoid. The ellipsoid is given by
// the reciprocals of its semi-axes; es is e scaled by them and ee its
// squared length.
func ellipsoidTangent(recipSemiAxes, w, e, es math.Vec3, ee float64) math.Vec3 {
	// Find t such that the ray direction -e(1-t) + wt is tangent, i.e.,
	// the discriminant of the ray/ellipsoid quadratic is zero. The
	// coefficients are expanded so that the ee^2 terms, which are large,
	// cancel.
	ws := mulElem(w, recipSemiAxes)
	ww := r3.Dot(ws, ws)
	ew := r3.Dot(ws, es)

	a := 4 * (ew*ew - ee*ww + ee + 2*ew + ww)
	b := -8 * (ee + ew)
	c := 4 * ee

	disc := b*b - 4*a*c
	t := (-b + gomath.Sqrt(gomath.Abs(disc))) / (2 * a)

	// With a zero discriminant the intersection is at -b/2a.
	v := r3.Add(r3.Scale(-(1 - t), e), r3.Scale(t, w))
	vs := mulElem(v, recipSemiAxes)
	t1 := -2 * r3.Dot(vs, es) / (2 * r3.Dot(vs, vs))

	return r3.Add(e, r3.Scale(t1, v))
}

// unitOrthogonal returns a unit vector perpendicular to v.
func unitOrthogonal(v math.Vec3) math.Vec3 {
	if gomath.Abs(v.X) > gomath.Abs(v.Z) || gomath.Abs(v.Y) > gomath.Abs(v.Z) {
		return r3.Unit(math.V3(-v.Y, v.X, 0))
	}
	return r3.Unit(math.V3(0, -v.Z, v.Y))
}

func mulElem(a, b math.Vec3) math.Vec3 {
	return math.V3(a.X*b.X, a.Y*b.Y, a.Z*b.Z)
}
