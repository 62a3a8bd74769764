// viewport/warpmesh.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package viewport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mmp/celplot/math"
	"github.com/mmp/celplot/renderer"
)

// Mesh types in warp mesh files; only rectangular meshes are supported.
const (
	warpMeshPolar       = 1
	warpMeshRectangular = 2
)

// WarpVertex is a vertex of a warp mesh: a position in the viewport,
// [-1,1]^2, the scene image coordinates it shows, [0,1]^2, and a
// brightness multiplier.
type WarpVertex struct {
	X, Y      float32
	U, V      float32
	Intensity float32
}

// WarpMesh is a grid of NX by NY vertices, stored row by row with y
// increasing. Cells are assumed to be axis-aligned rectangles in the
// viewport.
type WarpMesh struct {
	NX, NY   int
	Vertices []WarpVertex
}

// At returns the vertex in column i of row j.
func (m *WarpMesh) At(i, j int) WarpVertex {
	return m.Vertices[j*m.NX+i]
}

// ReadWarpMesh reads a mesh in the text format used by dome projection
// tools: the mesh type, then nx and ny, then nx*ny lines of "x y u v i".
// Negative intensities mark vertices that aren't drawn.
func ReadWarpMesh(r io.Reader) (*WarpMesh, error) {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)

	next := func(what string) (string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return "", err
			}
			return "", fmt.Errorf("%s: unexpected end of warp mesh", what)
		}
		return sc.Text(), nil
	}
	nextInt := func(what string) (int, error) {
		s, err := next(what)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", what, err)
		}
		return v, nil
	}
	nextFloat := func(what string) (float32, error) {
		s, err := next(what)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", what, err)
		}
		return float32(v), nil
	}

	mt, err := nextInt("mesh type")
	if err != nil {
		return nil, err
	}
	if mt != warpMeshRectangular {
		return nil, fmt.Errorf("%d: unsupported warp mesh type", mt)
	}

	m := &WarpMesh{}
	if m.NX, err = nextInt("nx"); err != nil {
		return nil, err
	}
	if m.NY, err = nextInt("ny"); err != nil {
		return nil, err
	}
	if m.NX < 2 || m.NY < 2 {
		return nil, fmt.Errorf("%dx%d: warp mesh must be at least 2x2", m.NX, m.NY)
	}

	m.Vertices = make([]WarpVertex, m.NX*m.NY)
	for i := range m.Vertices {
		v := &m.Vertices[i]
		what := "vertex " + strconv.Itoa(i)
		for _, f := range []*float32{&v.X, &v.Y, &v.U, &v.V, &v.Intensity} {
			if *f, err = nextFloat(what); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func LoadWarpMesh(path string) (*WarpMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ReadWarpMesh(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

var errOutsideMesh = errors.New("point is outside the warp mesh")

// Strips returns one triangle strip per row of cells; vertices alternate
// between the bottom and top of the row.
func (m *WarpMesh) Strips() [][]renderer.Vertex {
	vertex := func(wv WarpVertex) renderer.Vertex {
		in := max(wv.Intensity, 0)
		return renderer.Vertex{
			Position: [4]float32{wv.X, wv.Y, 0, 1},
			Color:    renderer.RGBA{R: in, G: in, B: in, A: 1},
			TexCoord: [2]float32{wv.U, wv.V},
		}
	}

	var strips [][]renderer.Vertex
	for j := 0; j < m.NY-1; j++ {
		s := make([]renderer.Vertex, 0, 2*m.NX)
		for i := range m.NX {
			s = append(s, vertex(m.At(i, j)), vertex(m.At(i, j+1)))
		}
		strips = append(strips, s)
	}
	return strips
}

// cell returns the cell containing the point (x,y) in viewport
// coordinates along with the point's position within it.
func (m *WarpMesh) cell(x, y float32) (i, j int, fx, fy float32, err error) {
	for j = 0; j < m.NY-1; j++ {
		y0, y1 := m.At(0, j).Y, m.At(0, j+1).Y
		if y < min(y0, y1) || y > max(y0, y1) {
			continue
		}
		for i = 0; i < m.NX-1; i++ {
			x0, x1 := m.At(i, j).X, m.At(i+1, j).X
			if x < min(x0, x1) || x > max(x0, x1) {
				continue
			}
			if x1 != x0 {
				fx = (x - x0) / (x1 - x0)
			}
			if y1 != y0 {
				fy = (y - y0) / (y1 - y0)
			}
			return
		}
	}
	err = errOutsideMesh
	return
}

// DistortXY maps a point in normalized viewport coordinates to the point
// of the scene image that the mesh shows there by bilinearly
// interpolating the texture coordinates of the containing cell.
func (m *WarpMesh) DistortXY(x, y float32) (float32, float32, bool) {
	if x < 0 || y < 0 || x > 1 || y > 1 {
		return x, y, false
	}

	i, j, fx, fy, err := m.cell(2*x-1, 2*y-1)
	if err != nil {
		return x, y, false
	}

	v00, v10 := m.At(i, j), m.At(i+1, j)
	v01, v11 := m.At(i, j+1), m.At(i+1, j+1)
	u := math.Lerp(fy, math.Lerp(fx, v00.U, v10.U), math.Lerp(fx, v01.U, v11.U))
	v := math.Lerp(fy, math.Lerp(fx, v00.V, v10.V), math.Lerp(fx, v01.V, v11.V))
	return u, v, true
}
