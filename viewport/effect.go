// viewport/effect.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package viewport provides effects that are applied to a rendered
// image as it is copied to the window's viewport.
package viewport

import (
	"github.com/mmp/celplot/renderer"
)

// Effect is applied around the rendering of a scene. Preprocess is called
// before the scene's commands are added to the command buffer and
// Prerender after them; Render then draws the scene image into a
// viewport of the given size. Each returns false if the effect could not
// be applied.
type Effect interface {
	Preprocess(cb *renderer.CommandBuffer) bool
	Prerender(cb *renderer.CommandBuffer) bool
	Render(cb *renderer.CommandBuffer, width, height int) bool
	// DistortXY maps a point in normalized viewport coordinates, [0,1]^2
	// with y up, to the corresponding point of the scene image. It
	// returns false if the point doesn't map to the image.
	DistortXY(x, y float32) (float32, float32, bool)
}

// baseEffect provides the default Effect methods.
type baseEffect struct{}

func (baseEffect) Preprocess(cb *renderer.CommandBuffer) bool { return true }

func (baseEffect) Prerender(cb *renderer.CommandBuffer) bool { return true }

func (baseEffect) DistortXY(x, y float32) (float32, float32, bool) {
	return x, y, true
}

var identityMatrix = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// drawStrips submits strips of full-viewport geometry in [-1,1]^2 to cb.
func drawStrips(cb *renderer.CommandBuffer, width, height int, strips [][]renderer.Vertex) {
	cb.Viewport(0, 0, width, height)
	cb.LoadProjectionMatrix(identityMatrix)

	var slots []renderer.Vertex
	var firsts []int
	for _, s := range strips {
		firsts = append(firsts, len(slots))
		for _, v := range s {
			// Both slots of each vertex are the same; nothing is
			// extruded.
			slots = append(slots, v, v)
		}
	}

	cb.CreateStreamBuffer(len(slots))
	cb.BindStream(true)
	cb.UploadStream(slots)
	for i, s := range strips {
		cb.DrawStream(renderer.TriangleStrip, firsts[i], 2*len(s))
	}
	cb.UnbindStream()
}

// PassthroughEffect copies the scene image to the viewport unchanged.
type PassthroughEffect struct {
	baseEffect
}

func (PassthroughEffect) Render(cb *renderer.CommandBuffer, width, height int) bool {
	white := renderer.RGBA{R: 1, G: 1, B: 1, A: 1}
	quad := []renderer.Vertex{
		{Position: [4]float32{-1, -1, 0, 1}, Color: white, TexCoord: [2]float32{0, 0}},
		{Position: [4]float32{1, -1, 0, 1}, Color: white, TexCoord: [2]float32{1, 0}},
		{Position: [4]float32{-1, 1, 0, 1}, Color: white, TexCoord: [2]float32{0, 1}},
		{Position: [4]float32{1, 1, 0, 1}, Color: white, TexCoord: [2]float32{1, 1}},
	}
	drawStrips(cb, width, height, [][]renderer.Vertex{quad})
	return true
}

// WarpMeshEffect draws the scene image through a WarpMesh, as is done
// for projection onto domes and other curved screens.
type WarpMeshEffect struct {
	baseEffect
	Mesh *WarpMesh
}

func NewWarpMeshEffect(m *WarpMesh) *WarpMeshEffect {
	return &WarpMeshEffect{Mesh: m}
}

func (w *WarpMeshEffect) Prerender(cb *renderer.CommandBuffer) bool {
	if w.Mesh == nil {
		return false
	}
	// Don't let the scene's colors and line widths carry over.
	cb.ResetState()
	return true
}

func (w *WarpMeshEffect) Render(cb *renderer.CommandBuffer, width, height int) bool {
	if w.Mesh == nil {
		return false
	}
	drawStrips(cb, width, height, w.Mesh.Strips())
	return true
}

func (w *WarpMeshEffect) DistortXY(x, y float32) (float32, float32, bool) {
	if w.Mesh == nil {
		return x, y, false
	}
	return w.Mesh.DistortXY(x, y)
}
