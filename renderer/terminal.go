// renderer/terminal.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	gomath "math"

	"github.com/mmp/celplot/math"

	"github.com/gdamore/tcell/v2"
)

// CellWriter is the subset of tcell.Screen that TerminalRenderer draws
// through.
type CellWriter interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

// TerminalRenderer executes command buffers into a character grid; each
// terminal cell is treated as a pixel. The viewport's origin is at the
// lower left of the screen.
type TerminalRenderer struct {
	screen CellWriter
	state  State
	Rune   rune
}

func NewTerminalRenderer(screen CellWriter) *TerminalRenderer {
	return &TerminalRenderer{screen: screen, state: MakeState(), Rune: '•'}
}

func (tr *TerminalRenderer) RenderCommandBuffer(cb *CommandBuffer) RendererStats {
	return DecodeCommandBuffer(cb, &tr.state, tr)
}

func (tr *TerminalRenderer) Dispose() {}

func (tr *TerminalRenderer) Clear(s *State, c RGBA) {
	style := tcell.StyleDefault.Background(tcellColor(c))
	w, h := tr.screen.Size()
	for y := range h {
		for x := range w {
			tr.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func (tr *TerminalRenderer) DrawStrip(s *State, t Topology, strip []Vertex) {
	px, py, prevOk := 0, 0, false
	for _, v := range strip {
		x, y, ok := s.Project(v.Position)
		if !ok {
			prevOk = false
			continue
		}
		ix, iy := int(gomath.Floor(float64(x))), int(gomath.Floor(float64(y)))
		style := tcell.StyleDefault.Foreground(tcellColor(s.VertexColor(v)))
		if prevOk {
			tr.line(px, py, ix, iy, style)
		} else {
			tr.plot(ix, iy, style)
		}
		px, py, prevOk = ix, iy, true
	}
}

// line rasterizes the segment between two cells with Bresenham's
// algorithm.
func (tr *TerminalRenderer) line(x0, y0, x1, y1 int, style tcell.Style) {
	dx, dy := math.Abs(x1-x0), -math.Abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		tr.plot(x0, y0, style)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func (tr *TerminalRenderer) plot(x, y int, style tcell.Style) {
	w, h := tr.screen.Size()
	row := h - 1 - y
	if x < 0 || x >= w || row < 0 || row >= h {
		return
	}
	tr.screen.SetContent(x, row, tr.Rune, nil, style)
}

func tcellColor(c RGBA) tcell.Color {
	cv := func(f float32) int32 {
		// Blend toward black by alpha since cells have no transparency.
		return int32(255*min(max(f*c.A, 0), 1) + 0.5)
	}
	return tcell.NewRGBColor(cv(c.R), cv(c.G), cv(c.B))
}
