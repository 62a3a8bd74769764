// renderer/plot.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// PlotRenderer executes command buffers into a gonum plot, with one line
// per drawn strip. Strips are projected with the command buffer's
// projection matrix and viewport, so the plot's coordinates are window
// pixels.
type PlotRenderer struct {
	plot  *plot.Plot
	state State
	err   error
	lines int
}

func NewPlotRenderer() *PlotRenderer {
	p := plot.New()
	p.HideAxes()
	return &PlotRenderer{plot: p, state: MakeState()}
}

func (pr *PlotRenderer) RenderCommandBuffer(cb *CommandBuffer) RendererStats {
	return DecodeCommandBuffer(cb, &pr.state, pr)
}

func (pr *PlotRenderer) Dispose() {}

func (pr *PlotRenderer) Clear(s *State, c RGBA) {
	pr.plot.BackgroundColor = rgbaColor(c)

	vp := s.Viewport
	pr.plot.X.Min, pr.plot.X.Max = float64(vp[0]), float64(vp[0]+vp[2])
	pr.plot.Y.Min, pr.plot.Y.Max = float64(vp[1]), float64(vp[1]+vp[3])
}

func (pr *PlotRenderer) DrawStrip(s *State, t Topology, strip []Vertex) {
	var pts plotter.XYs
	var c RGBA
	flushLine := func() {
		if len(pts) >= 2 {
			line, err := plotter.NewLine(pts)
			if err != nil {
				if pr.err == nil {
					pr.err = err
				}
			} else {
				line.Color = rgbaColor(c)
				line.Width = vg.Points(float64(s.LineWidth))
				pr.plot.Add(line)
				pr.lines++
			}
		}
		pts = nil
	}

	for _, v := range strip {
		x, y, ok := s.Project(v.Position)
		if !ok {
			// Break the line at points behind the eye.
			flushLine()
			continue
		}
		if len(pts) == 0 {
			c = s.VertexColor(v)
		}
		pts = append(pts, plotter.XY{X: float64(x), Y: float64(y)})
	}
	flushLine()
}

// Lines returns the number of plot lines that have been added.
func (pr *PlotRenderer) Lines() int {
	return pr.lines
}

// Save writes the plot to the given file; the format is chosen from the
// filename's extension. width and height are in pixels.
func (pr *PlotRenderer) Save(path string, width, height int) error {
	if pr.err != nil {
		return fmt.Errorf("%s: %w", path, pr.err)
	}
	// Pixels are taken to be 1/96 inch.
	w, h := vg.Length(width)*vg.Inch/96, vg.Length(height)*vg.Inch/96
	if err := pr.plot.Save(w, h, path); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func rgbaColor(c RGBA) color.Color {
	cv := func(f float32) uint8 {
		return uint8(255*min(max(f, 0), 1) + 0.5)
	}
	return color.NRGBA{R: cv(c.R), G: cv(c.G), B: cv(c.B), A: cv(c.A)}
}
