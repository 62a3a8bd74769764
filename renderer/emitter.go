// renderer/emitter.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"log/slog"

	"github.com/mmp/celplot/math"
)

// DefaultEmitterCapacity is the number of logical vertices an Emitter
// buffers before it flushes to its backend.
const DefaultEmitterCapacity = 4096

// Emitter batches camera-space vertices into strips and submits them to
// a StreamBackend in fixed-size batches. A strip may span any number of
// batches; when the buffer fills, the strip's last vertex is carried over
// into the next batch so that no segment is lost.
//
// Each logical vertex is stored in two slots with scales of -0.5 and
// +0.5. When a strip ends, the second-to-last position is appended once
// more and the last vertex's scales are negated, so that a backend that
// extrudes lines into triangle strips can find the direction of the final
// segment.
type Emitter struct {
	backend  StreamBackend
	capacity int
	data     []Vertex

	created         bool
	lineAsTriangles bool
	color           RGBA

	position     int // logical vertices written
	stripLength  int // logical vertices in the open strip
	stripLengths []int

	stats EmitterStats
}

// EmitterStats counts the work done by an Emitter since its last Setup.
type EmitterStats struct {
	Strips, Vertices int
	Flushes          int
	Dropped          int // strips abandoned with fewer than two vertices
}

func (s EmitterStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("strips", s.Strips),
		slog.Int("vertices", s.Vertices),
		slog.Int("flushes", s.Flushes),
		slog.Int("dropped", s.Dropped))
}

// NewEmitter returns an Emitter that buffers up to capacity logical
// vertices before submitting them to backend. A capacity of 0 selects
// DefaultEmitterCapacity.
func NewEmitter(backend StreamBackend, capacity int) *Emitter {
	if capacity <= 0 {
		capacity = DefaultEmitterCapacity
	}
	capacity = max(capacity, 2)
	return &Emitter{
		backend:  backend,
		capacity: capacity,
		data:     make([]Vertex, 2*(capacity+1)),
		color:    RGBA{1, 1, 1, 1},
	}
}

func (e *Emitter) Capacity() int {
	return e.capacity
}

// CreateVertexBuffer allocates the backend's stream storage; calls after
// the first are no-ops.
func (e *Emitter) CreateVertexBuffer() {
	if !e.created {
		e.backend.CreateStreamBuffer(len(e.data))
		e.created = true
	}
}

// Setup discards any buffered vertices and binds the backend stream.
func (e *Emitter) Setup(lineAsTriangles bool) {
	e.stripLengths = e.stripLengths[:0]
	e.stripLength = 0
	e.position = 0
	e.lineAsTriangles = lineAsTriangles
	e.stats = EmitterStats{}
	e.backend.BindStream(lineAsTriangles)
}

// Finish unbinds the backend stream. Buffered vertices that were not
// flushed are not drawn.
func (e *Emitter) Finish() {
	e.backend.UnbindStream()
}

// SetColor sets the color used by subsequent calls to Vertex.
func (e *Emitter) SetColor(c RGBA) {
	e.color = c
}

// Begin starts a new strip. It exists for symmetry with End; the open
// strip is tracked implicitly.
func (e *Emitter) Begin() {}

// Vertex adds a camera-space vertex in the current color to the open
// strip.
func (e *Emitter) Vertex(p math.Vec3) {
	e.VertexColor(p, e.color)
}

// VertexColor adds a camera-space vertex with the given color to the
// open strip.
func (e *Emitter) VertexColor(p math.Vec3, c RGBA) {
	pos := math.Float32(p)
	e.set(e.position, pos, c)
	e.position++
	e.stripLength++
	e.stats.Vertices++

	if e.position == e.capacity {
		e.Flush()

		// Carry the vertex over so that the strip continues in the next
		// batch.
		e.set(0, pos, c)
		e.position = 1
		e.stripLength = 1
	}
}

func (e *Emitter) set(v int, pos [4]float32, c RGBA) {
	e.data[2*v] = Vertex{Position: pos, Color: c, Scale: -0.5}
	e.data[2*v+1] = Vertex{Position: pos, Color: c, Scale: 0.5}
}

// End closes the open strip. Strips with fewer than two vertices are
// discarded. If the buffer is full afterward, it is flushed.
func (e *Emitter) End() {
	e.end(true)
}

func (e *Emitter) end(flushIfNeeded bool) {
	if e.stripLength > 1 {
		index := 2 * e.position
		e.data[index].Position = e.data[index-4].Position
		e.data[index+1].Position = e.data[index-3].Position
		e.data[index-2].Scale = -e.data[index-2].Scale
		e.data[index-1].Scale = -e.data[index-1].Scale
		e.position++
		e.stripLengths = append(e.stripLengths, e.stripLength)
		e.stats.Strips++
	} else {
		e.position -= e.stripLength
		if e.stripLength > 0 {
			e.stats.Dropped++
		}
	}
	e.stripLength = 0

	if flushIfNeeded && e.position == e.capacity {
		e.flush(false)
	}
}

// Flush closes the open strip, if it has at least two vertices, and
// submits all buffered strips to the backend.
func (e *Emitter) Flush() {
	e.flush(true)
}

func (e *Emitter) flush(endIfNeeded bool) {
	if e.position > 0 {
		if endIfNeeded && e.stripLength > 1 {
			e.end(false)
		}

		e.backend.UploadStream(e.data[:2*e.position])

		start := 0
		for _, n := range e.stripLengths {
			if e.lineAsTriangles {
				e.backend.DrawStream(TriangleStrip, 2*start, 2*n)
			} else {
				e.backend.DrawStream(LineStrip, start, n)
			}
			start += n + 1
		}

		e.position = 0
		e.stripLengths = e.stripLengths[:0]
		e.stats.Flushes++
	}

	e.stripLength = 0
}

// Stats returns counts of the strips, vertices, and flushes since the
// last call to Setup.
func (e *Emitter) Stats() EmitterStats {
	return e.stats
}
