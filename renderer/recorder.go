// renderer/recorder.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

// Recorder is a StreamBackend that keeps everything submitted to it; it
// is mostly useful for tests and for dumping draw submissions.
type Recorder struct {
	Slots   int
	Creates int
	Binds   []bool
	Uploads [][]Vertex
	Draws   []DrawCall
	Unbinds int
}

// DrawCall records a single call to DrawStream. Upload is the index in
// Recorder.Uploads of the vertex data that was current when it was
// issued.
type DrawCall struct {
	Topology     Topology
	First, Count int
	Upload       int
}

func (r *Recorder) CreateStreamBuffer(slots int) {
	r.Slots = slots
	r.Creates++
}

func (r *Recorder) BindStream(lineAsTriangles bool) {
	r.Binds = append(r.Binds, lineAsTriangles)
}

func (r *Recorder) UploadStream(v []Vertex) {
	r.Uploads = append(r.Uploads, append([]Vertex(nil), v...))
}

func (r *Recorder) DrawStream(t Topology, first, count int) {
	r.Draws = append(r.Draws, DrawCall{Topology: t, First: first, Count: count, Upload: len(r.Uploads) - 1})
}

func (r *Recorder) UnbindStream() {
	r.Unbinds++
}

// StripVertices returns the logical vertices drawn by each draw call, in
// order.
func (r *Recorder) StripVertices() [][]Vertex {
	var strips [][]Vertex
	for _, d := range r.Draws {
		if d.Upload < 0 {
			strips = append(strips, nil)
			continue
		}
		data := r.Uploads[d.Upload]
		slot, n := 2*d.First, d.Count
		if d.Topology == TriangleStrip {
			slot, n = d.First, d.Count/2
		}
		var s []Vertex
		for k := range n {
			if i := slot + 2*k; i < len(data) {
				s = append(s, data[i])
			}
		}
		strips = append(strips, s)
	}
	return strips
}

// Strips returns the positions of the logical vertices drawn by each
// draw call, in order.
func (r *Recorder) Strips() [][][3]float32 {
	var strips [][][3]float32
	for _, sv := range r.StripVertices() {
		s := make([][3]float32, len(sv))
		for i, v := range sv {
			s[i] = [3]float32{v.Position[0], v.Position[1], v.Position[2]}
		}
		strips = append(strips, s)
	}
	return strips
}

// Reset discards everything recorded.
func (r *Recorder) Reset() {
	*r = Recorder{}
}
