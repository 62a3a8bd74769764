// cmd/celplot/scene.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"fmt"
	gomath "math"
	"os"
	"path/filepath"

	"github.com/mmp/celplot/curveplot"
	"github.com/mmp/celplot/math"
	"github.com/mmp/celplot/renderer"
	"github.com/mmp/celplot/util"

	"gonum.org/v1/gonum/spatial/r3"
)

const (
	defaultWidth  = 1024
	defaultHeight = 768
	defaultFOV    = 45 // degrees
	defaultNear   = 1
	defaultFar    = 1e12

	// By default, segments are subdivided until they span roughly this
	// many pixels.
	defaultThresholdPixels = 2
)

// Scene is the contents of a scene file: a camera and the trajectories
// and bodies that are drawn. Positions are in kilometers.
type Scene struct {
	Width                int           `json:"width"`
	Height               int           `json:"height"`
	Background           string        `json:"background"`
	Camera               Camera        `json:"camera"`
	SubdivisionThreshold float64       `json:"subdivision_threshold"`
	LineWidth            float32       `json:"line_width"`
	LineAsTriangles      bool          `json:"line_as_triangles"`
	WarpMesh             string        `json:"warp_mesh"`
	Trajectories         []*Trajectory `json:"trajectories"`
	Bodies               []*Body       `json:"bodies"`

	background renderer.RGBA
}

type Camera struct {
	Position [3]float64 `json:"position"`
	LookAt   [3]float64 `json:"look_at"`
	Up       [3]float64 `json:"up"`
	FOV      float64    `json:"fov"`    // vertical, in degrees
	Aspect   float64    `json:"aspect"` // width/height of the image if unset
	Near     float64    `json:"near"`
	Far      float64    `json:"far"`
}

// Trajectory is a plot that is drawn in the scene. Start and End limit
// the time span that is drawn; if FadeStart and FadeEnd are given, the
// plot fades in between them.
type Trajectory struct {
	File      string   `json:"file"`
	Color     string   `json:"color"`
	Start     *float64 `json:"start"`
	End       *float64 `json:"end"`
	FadeStart *float64 `json:"fade_start"`
	FadeEnd   *float64 `json:"fade_end"`

	color renderer.RGBA
	plot  *curveplot.CurvePlot
}

// Body is an ellipsoid whose visible region with respect to Target is
// outlined; with the sun as the target, the outline is the terminator.
type Body struct {
	Name     string     `json:"name"`
	Position [3]float64 `json:"position"`
	SemiAxes [3]float64 `json:"semi_axes"`
	Target   [3]float64 `json:"target"`
	Color    string     `json:"color"`

	color renderer.RGBA
}

func vec3(v [3]float64) math.Vec3 {
	return math.V3(v[0], v[1], v[2])
}

// LoadScene reads and validates a scene file. Relative trajectory and
// warp mesh paths are taken relative to the scene file's directory.
func LoadScene(path string, e *util.ErrorLogger) *Scene {
	e.Push(path)
	defer e.Pop()

	b, err := os.ReadFile(path)
	if err != nil {
		e.Error(err)
		return nil
	}
	for _, dup := range util.FindDuplicateJSONKeys(b) {
		if dup.Path == "" {
			e.ErrorString("%q: repeated key", dup.Key)
		} else {
			e.ErrorString("%s: %q: repeated key", dup.Path, dup.Key)
		}
	}

	var s Scene
	if err := util.UnmarshalJSONBytes(b, &s); err != nil {
		e.Error(err)
		return nil
	}
	s.PostDeserialize(filepath.Dir(path), e)
	return &s
}

// PostDeserialize applies defaults for unset fields and reports any
// invalid settings to e.
func (s *Scene) PostDeserialize(dir string, e *util.ErrorLogger) {
	if s.Width == 0 {
		s.Width = defaultWidth
	}
	if s.Height == 0 {
		s.Height = defaultHeight
	}
	if s.Width < 0 || s.Height < 0 {
		e.ErrorString("%dx%d: invalid image size", s.Width, s.Height)
	}

	if s.Background == "" {
		s.background = renderer.RGBA{A: 1}
	} else if c, err := renderer.ParseRGBA(s.Background); err != nil {
		e.Push("background")
		e.Error(err)
		e.Pop()
	} else {
		s.background = c
	}

	if s.LineWidth == 0 {
		s.LineWidth = 1
	} else if s.LineWidth < 0 {
		e.ErrorString("%f: line_width must be positive", s.LineWidth)
	}

	e.Push("camera")
	s.Camera.PostDeserialize(float64(s.Width)/float64(max(s.Height, 1)), e)
	e.Pop()

	if s.SubdivisionThreshold == 0 {
		s.SubdivisionThreshold = defaultThresholdPixels * s.PixelSize()
	} else if s.SubdivisionThreshold < 0 {
		e.ErrorString("%f: subdivision_threshold must be positive", s.SubdivisionThreshold)
	}

	if s.WarpMesh != "" && !filepath.IsAbs(s.WarpMesh) {
		s.WarpMesh = filepath.Join(dir, s.WarpMesh)
	}

	if len(s.Trajectories) == 0 && len(s.Bodies) == 0 {
		e.ErrorString("no trajectories or bodies specified")
	}
	for i, t := range s.Trajectories {
		e.Push(fmt.Sprintf("trajectory %d", i))
		t.PostDeserialize(dir, e)
		e.Pop()
	}
	for i, b := range s.Bodies {
		name := b.Name
		if name == "" {
			name = fmt.Sprintf("body %d", i)
		}
		e.Push(name)
		b.PostDeserialize(e)
		e.Pop()
	}
}

// PixelSize returns the size of a pixel at unit distance from the
// camera.
func (s *Scene) PixelSize() float64 {
	return 2 * gomath.Tan(math.Radians(s.Camera.FOV)/2) / float64(max(s.Height, 1))
}

func (c *Camera) PostDeserialize(aspect float64, e *util.ErrorLogger) {
	if c.FOV == 0 {
		c.FOV = defaultFOV
	} else if c.FOV <= 0 || c.FOV >= 180 {
		e.ErrorString("%f: fov must be between 0 and 180 degrees", c.FOV)
	}
	if c.Aspect == 0 {
		c.Aspect = aspect
	} else if c.Aspect < 0 {
		e.ErrorString("%f: aspect must be positive", c.Aspect)
	}
	if c.Near == 0 {
		c.Near = defaultNear
	}
	if c.Far == 0 {
		c.Far = defaultFar
	}
	if c.Near <= 0 || c.Far <= c.Near {
		e.ErrorString("near %g, far %g: must have 0 < near < far", c.Near, c.Far)
	}
	if c.Up == [3]float64{} {
		c.Up = [3]float64{0, 0, 1}
	}

	dir := r3.Sub(vec3(c.LookAt), vec3(c.Position))
	if r3.Norm(dir) == 0 {
		e.ErrorString("position and look_at must differ")
	} else if r3.Norm(r3.Cross(dir, vec3(c.Up))) == 0 {
		e.ErrorString("up must not be parallel to the viewing direction")
	}
}

// Transform returns the transformation from world space to camera space.
func (c *Camera) Transform() math.Affine3d {
	return math.LookAt(vec3(c.Position), vec3(c.LookAt), vec3(c.Up))
}

func (c *Camera) Frustum() math.Frustum {
	return math.MakePerspectiveFrustum(math.Radians(c.FOV), c.Aspect, c.Near, c.Far)
}

func (c *Camera) Projection() [16]float32 {
	return math.PerspectiveMatrix(math.Radians(c.FOV), c.Aspect, c.Near, c.Far)
}

func (t *Trajectory) PostDeserialize(dir string, e *util.ErrorLogger) {
	if t.File == "" {
		e.ErrorString("no file specified")
	} else {
		e.Push(t.File)
		defer e.Pop()
		if !filepath.IsAbs(t.File) {
			t.File = filepath.Join(dir, t.File)
		}
	}

	if t.Color == "" {
		t.color = renderer.RGBA{R: 1, G: 1, B: 1, A: 1}
	} else if c, err := renderer.ParseRGBA(t.Color); err != nil {
		e.Error(err)
	} else {
		t.color = c
	}

	if t.Start != nil && t.End != nil && *t.Start >= *t.End {
		e.ErrorString("start %g must be before end %g", *t.Start, *t.End)
	}
	if (t.FadeStart == nil) != (t.FadeEnd == nil) {
		e.ErrorString("fade_start and fade_end must be given together")
	}
}

// Ranged reports whether only part of the plot is drawn.
func (t *Trajectory) Ranged() bool {
	return t.Start != nil || t.End != nil || t.FadeStart != nil
}

// Range returns the time span to draw, using the ends of the plot for
// unset limits.
func (t *Trajectory) Range() (float64, float64) {
	start, end := t.plot.StartTime(), t.plot.EndTime()
	if t.Start != nil {
		start = *t.Start
	}
	if t.End != nil {
		end = *t.End
	}
	return start, end
}

func (b *Body) PostDeserialize(e *util.ErrorLogger) {
	for _, a := range b.SemiAxes {
		if a <= 0 {
			e.ErrorString("%v: semi_axes must be positive", b.SemiAxes)
			break
		}
	}
	if b.Target == b.Position {
		e.ErrorString("target must differ from the body's position")
	}

	if b.Color == "" {
		b.color = renderer.RGBA{R: 1, G: 1, A: 1}
	} else if c, err := renderer.ParseRGBA(b.Color); err != nil {
		e.Error(err)
	} else {
		b.color = c
	}
}
