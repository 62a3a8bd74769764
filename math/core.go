// math/core.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Degrees converts an angle expressed in radians to degrees
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians
func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

// Clamp returns x limited to [low, high]. A NaN x is returned as low so
// that callers always get a value in the range.
func Clamp[T constraints.Float](x T, low T, high T) T {
	if x != x || x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// Linearly interpolate x of the way between a and b. x==0 corresponds to
// a, x==1 corresponds to b, etc.
func Lerp[T constraints.Float](x, a, b T) T {
	return (1-x)*a + x*b
}

func Sign[T constraints.Float](v T) T {
	if v > 0 {
		return 1
	} else if v < 0 {
		return -1
	}
	return 0
}
