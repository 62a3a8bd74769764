// renderer/renderer.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"log/slog"
	gomath "math"
	"unsafe"

	"github.com/mmp/celplot/log"
)

// Also available as a global, though only used by CommandBuffer
var lg *log.Logger

// SetLogger sets the logger used to report malformed command buffers.
func SetLogger(l *log.Logger) {
	lg = l
}

// Renderer defines an interface for the backends that execute the
// commands recorded in a CommandBuffer. Backends rasterize the strips
// that were drawn; none of them talk to a GPU.
type Renderer interface {
	// RenderCommandBuffer executes all of the commands encoded in the
	// provided command buffer, returning statistics about what was
	// rendered.
	RenderCommandBuffer(*CommandBuffer) RendererStats

	// Dispose releases resources allocated by the renderer.
	Dispose()
}

// RendererStats encapsulates assorted statistics from rendering.
type RendererStats struct {
	Buffers, BufferBytes int
	DrawCalls            int
	Strips, Vertices     int
	Lines, Triangles     int
}

func (rs *RendererStats) String() string {
	return fmt.Sprintf("%d buffers (%.2f MB), %d draw calls: %d strips, %d vertices, %d lines, %d tris",
		rs.Buffers, float32(rs.BufferBytes)/(1024*1024), rs.DrawCalls, rs.Strips, rs.Vertices, rs.Lines, rs.Triangles)
}

func (rs *RendererStats) Merge(s RendererStats) {
	rs.Buffers += s.Buffers
	rs.BufferBytes += s.BufferBytes
	rs.DrawCalls += s.DrawCalls
	rs.Strips += s.Strips
	rs.Vertices += s.Vertices
	rs.Lines += s.Lines
	rs.Triangles += s.Triangles
}

func (rs RendererStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("buffers", rs.Buffers),
		slog.Int("buffer_memory", rs.BufferBytes),
		slog.Int("draw_calls", rs.DrawCalls),
		slog.Int("strips", rs.Strips),
		slog.Int("vertices", rs.Vertices),
		slog.Int("lines", rs.Lines),
		slog.Int("tris", rs.Triangles),
	)
}

///////////////////////////////////////////////////////////////////////////
// Command buffer execution

// State is the graphics state that is tracked while a command buffer is
// executed.
type State struct {
	Projection      [16]float32 // column-major
	Viewport        [4]int
	Color           RGBA
	LineWidth       float32
	LineAsTriangles bool
	Bound           bool
	StreamSlots     int

	stream []Vertex
}

func MakeState() State {
	return State{
		Projection: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1},
		Color:      RGBA{1, 1, 1, 1},
		LineWidth:  1,
	}
}

// Project transforms a camera-space position to window coordinates, with
// the origin at the lower left of the viewport. ok is false if the point
// is behind the eye.
func (s *State) Project(p [4]float32) (x, y float32, ok bool) {
	m := &s.Projection
	var clip [4]float32
	for r := range 4 {
		clip[r] = m[r]*p[0] + m[4+r]*p[1] + m[8+r]*p[2] + m[12+r]*p[3]
	}
	if clip[3] <= 0 {
		return 0, 0, false
	}
	nx, ny := clip[0]/clip[3], clip[1]/clip[3]
	x = float32(s.Viewport[0]) + (nx+1)/2*float32(s.Viewport[2])
	y = float32(s.Viewport[1]) + (ny+1)/2*float32(s.Viewport[3])
	return x, y, true
}

// VertexColor returns the color of v modulated by the current color.
func (s *State) VertexColor(v Vertex) RGBA {
	return RGBA{R: v.Color.R * s.Color.R, G: v.Color.G * s.Color.G, B: v.Color.B * s.Color.B, A: v.Color.A * s.Color.A}
}

// CommandHandler is implemented by backends that execute command buffers
// through DecodeCommandBuffer.
type CommandHandler interface {
	Clear(s *State, c RGBA)
	// DrawStrip is called for each strip drawn; strip holds one Vertex
	// per logical vertex of the strip.
	DrawStrip(s *State, t Topology, strip []Vertex)
}

// DecodeCommandBuffer walks the commands in cb, updating s and invoking h
// for clears and draws.
func DecodeCommandBuffer(cb *CommandBuffer, s *State, h CommandHandler) RendererStats {
	var stats RendererStats
	stats.Buffers++
	stats.BufferBytes += 4 * len(cb.Buf)

	i := 0
	ui32 := func() uint32 {
		v := cb.Buf[i]
		i++
		return v
	}
	i32 := func() int {
		return int(int32(ui32()))
	}
	float := func() float32 {
		return gomath.Float32frombits(ui32())
	}
	rgba := func() RGBA {
		return RGBA{R: float(), G: float(), B: float(), A: float()}
	}

	var strip []Vertex
	for i < len(cb.Buf) {
		cmd := ui32()
		switch cmd {
		case RendererLoadProjectionMatrix:
			for j := range s.Projection {
				s.Projection[j] = float()
			}

		case RendererClearRGBA:
			h.Clear(s, rgba())

		case RendererViewport:
			for j := range s.Viewport {
				s.Viewport[j] = i32()
			}

		case RendererSetRGBA:
			s.Color = rgba()

		case RendererLineWidth:
			s.LineWidth = float()

		case RendererCreateStream:
			s.StreamSlots = i32()

		case RendererBindStream:
			s.LineAsTriangles = i32() != 0
			s.Bound = true

		case RendererStreamData:
			n := i32()
			if n == 0 {
				s.stream = nil
				break
			}
			s.stream = unsafe.Slice((*Vertex)(unsafe.Pointer(&cb.Buf[i])), n)
			i += n * vertexWords

		case RendererDrawLineStrip, RendererDrawTriangleStrip:
			first, count := i32(), i32()
			t := LineStrip
			// Logical vertex k of a line strip lives in slot 2k; triangle
			// strips address both slots of each logical vertex.
			slot, n := 2*first, count
			if cmd == RendererDrawTriangleStrip {
				t = TriangleStrip
				slot, n = first, count/2
			}
			if !s.Bound || slot+2*(n-1) >= len(s.stream) {
				lg.Errorf("draw of %d vertices at %d: stream not bound or out of range", count, first)
				break
			}

			strip = strip[:0]
			for k := range n {
				strip = append(strip, s.stream[slot+2*k])
			}

			stats.DrawCalls++
			stats.Strips++
			stats.Vertices += n
			if t == TriangleStrip {
				stats.Triangles += max(count-2, 0)
			} else {
				stats.Lines += max(count-1, 0)
			}
			h.DrawStrip(s, t, strip)

		case RendererUnbindStream:
			s.Bound = false

		case RendererCallBuffer:
			idx := i32()
			stats.Merge(DecodeCommandBuffer(&cb.called[idx], s, h))

		case RendererResetState:
			p, vp := s.Projection, s.Viewport
			*s = MakeState()
			s.Projection, s.Viewport = p, vp

		default:
			lg.Errorf("%d: unhandled command", cmd)
			return stats
		}
	}

	return stats
}
