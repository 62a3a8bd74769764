// renderer/stream.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import "unsafe"

// Vertex is a single slot in a streamed vertex buffer. Each logical
// vertex of a strip occupies two consecutive slots that differ only in
// Scale, which gives the side of the line the slot is extruded to when
// lines are drawn as triangle strips. TexCoord is only used by
// full-viewport geometry that samples a rendered image.
type Vertex struct {
	Position [4]float32
	Color    RGBA
	Scale    float32
	TexCoord [2]float32
}

// vertexWords is the number of 32-bit values in a Vertex.
const vertexWords = int(unsafe.Sizeof(Vertex{}) / 4)

type Topology int

const (
	LineStrip Topology = iota
	TriangleStrip
)

func (t Topology) String() string {
	switch t {
	case LineStrip:
		return "LineStrip"
	case TriangleStrip:
		return "TriangleStrip"
	default:
		return "unknown"
	}
}

// StreamBackend is the graphics backend that streamed vertices are
// submitted to. Draw calls index vertex slots of the most recent upload:
// triangle strips address slots directly while line strips address
// logical vertices, which are two slots apart.
type StreamBackend interface {
	// CreateStreamBuffer allocates storage for the given number of vertex
	// slots; it is called once before the first upload.
	CreateStreamBuffer(slots int)
	BindStream(lineAsTriangles bool)
	UploadStream(v []Vertex)
	DrawStream(t Topology, first, count int)
	UnbindStream()
}
