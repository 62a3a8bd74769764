// renderer/rgb.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package renderer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmp/celplot/math"
)

///////////////////////////////////////////////////////////////////////////
// RGBA

type RGBA struct {
	R, G, B, A float32
}

func LerpRGBA(x float32, a, b RGBA) RGBA {
	return RGBA{
		R: math.Lerp(x, a.R, b.R),
		G: math.Lerp(x, a.G, b.G),
		B: math.Lerp(x, a.B, b.B),
		A: math.Lerp(x, a.A, b.A),
	}
}

// WithAlpha returns the color with its alpha replaced by a.
func (c RGBA) WithAlpha(a float32) RGBA {
	c.A = a
	return c
}

// ScaleAlpha returns the color with its alpha multiplied by s.
func (c RGBA) ScaleAlpha(s float32) RGBA {
	c.A *= s
	return c
}

// RGBAFromHex converts a packed integer color value to an opaque RGBA
// where the low 8 bits give blue, the next 8 give green, and then the
// next 8 give red.
func RGBAFromHex(c int) RGBA {
	r, g, b := (c>>16)&255, (c>>8)&255, c&255
	return RGBA{R: float32(r) / 255, G: float32(g) / 255, B: float32(b) / 255, A: 1}
}

// ParseRGBA parses colors of the form "#rrggbb" or "#rrggbbaa".
func ParseRGBA(s string) (RGBA, error) {
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || (len(hex) != 6 && len(hex) != 8) {
		return RGBA{}, fmt.Errorf("%q: expected color of the form #rrggbb or #rrggbbaa", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("%q: %w", s, err)
	}
	if len(hex) == 6 {
		return RGBAFromHex(int(v)), nil
	}
	c := RGBAFromHex(int(v >> 8))
	c.A = float32(v&255) / 255
	return c, nil
}
