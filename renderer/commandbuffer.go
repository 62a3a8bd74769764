// renderer/commandbuffer.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	gomath "math"
	"sync"
	"unsafe"
)

// The command buffer stores a series of rendering commands, represented by
// the following values. Each one is followed in the buffer by a number of
// command arguments, after which the next command follows.  Comments
// after each command briefly describe its arguments.
//
// Streamed vertices are stored directly in the CommandBuffer following a
// RendererStreamData command; the first argument is the number of vertex
// slots and the slots' values follow directly. Subsequent draw commands
// refer to the most recent stream data.
const (
	RendererLoadProjectionMatrix = iota // 16 float32: matrix, column-major
	RendererClearRGBA                   // 4 float32: RGBA
	RendererViewport                    // 4 int32: x, y, width, height
	RendererSetRGBA                     // 4 float32: RGBA
	RendererLineWidth                   // float32
	RendererCreateStream                // int32: number of vertex slots
	RendererBindStream                  // int32: 1 if lines are drawn as triangle strips
	RendererStreamData                  // int32 slots, then slots*vertexWords values
	RendererDrawLineStrip               // 2 int32: first logical vertex, count
	RendererDrawTriangleStrip           // 2 int32: first slot, count
	RendererUnbindStream                // no args
	RendererCallBuffer                  // 1 int32: buffer index
	RendererResetState                  // no args
)

// CommandBuffer encodes a sequence of rendering commands in an
// API-agnostic manner. It implements StreamBackend, so an Emitter can
// record trajectories into it that are later executed by a Renderer.
type CommandBuffer struct {
	Buf    []uint32
	called []CommandBuffer
}

// CommandBuffers are managed using a sync.Pool so that their buf slice
// allocations persist across multiple uses.
var commandBufferPool = sync.Pool{New: func() any { return &CommandBuffer{} }}

func GetCommandBuffer() *CommandBuffer {
	return commandBufferPool.Get().(*CommandBuffer)
}

func ReturnCommandBuffer(cb *CommandBuffer) {
	cb.Reset()
	commandBufferPool.Put(cb)
}

// Reset resets the command buffer's length to zero so that it can be
// reused.
func (cb *CommandBuffer) Reset() {
	cb.Buf = cb.Buf[:0]
	cb.called = cb.called[:0]
}

// growFor ensures that at least n more values can be added to the end of
// the buffer without going past its capacity.
func (cb *CommandBuffer) growFor(n int) {
	if len(cb.Buf)+n > cap(cb.Buf) {
		sz := max(2*cap(cb.Buf), 1024)
		if sz < len(cb.Buf)+n {
			sz = 2 * (len(cb.Buf) + n)
		}
		b := make([]uint32, len(cb.Buf), sz)
		copy(b, cb.Buf)
		cb.Buf = b
	}
}

func (cb *CommandBuffer) appendFloats(floats ...float32) {
	for _, f := range floats {
		// Convert each one to a uint32 since that's the type that is
		// actually stored...
		cb.Buf = append(cb.Buf, gomath.Float32bits(f))
	}
}

func (cb *CommandBuffer) appendInts(ints ...int) {
	for _, i := range ints {
		if i != int(int32(i)) {
			lg.Errorf("%d: attempting to add non-32-bit value to CommandBuffer", i)
		}
		cb.Buf = append(cb.Buf, uint32(int32(i)))
	}
}

// LoadProjectionMatrix adds a command that sets the projection from
// camera space to clip space; m is stored in column-major order.
func (cb *CommandBuffer) LoadProjectionMatrix(m [16]float32) {
	cb.appendInts(RendererLoadProjectionMatrix)
	cb.appendFloats(m[:]...)
}

// ClearRGBA adds a command to the command buffer to clear the framebuffer
// to the specified color.
func (cb *CommandBuffer) ClearRGBA(color RGBA) {
	cb.appendInts(RendererClearRGBA)
	cb.appendFloats(color.R, color.G, color.B, color.A)
}

// Viewport adds a command to the command buffer to set the viewport to the
// specified rectangle.
func (cb *CommandBuffer) Viewport(x, y, w, h int) {
	cb.appendInts(RendererViewport, x, y, w, h)
}

// SetRGBA adds a command to the command buffer to set the current RGBA
// color; it modulates the per-vertex colors of subsequent draws.
func (cb *CommandBuffer) SetRGBA(rgba RGBA) {
	cb.appendInts(RendererSetRGBA)
	cb.appendFloats(rgba.R, rgba.G, rgba.B, rgba.A)
}

// LineWidth adds a command to the command buffer that sets the width in
// pixels of subsequent lines that are drawn.
func (cb *CommandBuffer) LineWidth(w float32) {
	cb.appendInts(RendererLineWidth)
	cb.appendFloats(w)
}

func (cb *CommandBuffer) CreateStreamBuffer(slots int) {
	cb.appendInts(RendererCreateStream, slots)
}

func (cb *CommandBuffer) BindStream(lineAsTriangles bool) {
	v := 0
	if lineAsTriangles {
		v = 1
	}
	cb.appendInts(RendererBindStream, v)
}

// UploadStream stores the provided vertex slots in the command buffer;
// subsequent draw commands refer to them.
func (cb *CommandBuffer) UploadStream(v []Vertex) {
	cb.appendInts(RendererStreamData, len(v))
	if len(v) == 0 {
		return
	}

	n := vertexWords * len(v)
	cb.growFor(n)
	start := len(cb.Buf)
	cb.Buf = cb.Buf[:start+n]
	copy(cb.Buf[start:start+n], unsafe.Slice((*uint32)(unsafe.Pointer(&v[0])), n))
}

func (cb *CommandBuffer) DrawStream(t Topology, first, count int) {
	switch t {
	case LineStrip:
		cb.appendInts(RendererDrawLineStrip, first, count)
	case TriangleStrip:
		cb.appendInts(RendererDrawTriangleStrip, first, count)
	default:
		lg.Errorf("%d: unknown topology", t)
	}
}

func (cb *CommandBuffer) UnbindStream() {
	cb.appendInts(RendererUnbindStream)
}

// Call adds a command to the command buffer that causes the commands in
// the provided command buffer to be processed and executed. After the end
// of the command buffer is reached, processing of command in the current
// command buffer continues.
func (cb *CommandBuffer) Call(sub CommandBuffer) {
	if sub.Buf == nil {
		// make it a no-op
		return
	}

	cb.appendInts(RendererCallBuffer, len(cb.called))
	// Make our own copy of the slice to ensure it isn't garbage collected.
	cb.called = append(cb.called, sub)
}

// ResetState adds a command to the comment buffer that resets the
// graphics state (color, line width, stream binding) to default values.
func (cb *CommandBuffer) ResetState() {
	cb.appendInts(RendererResetState)
}
