// curveplot/curveplot.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package curveplot stores time-stamped position/velocity samples of a
// trajectory and renders the piecewise cubic Hermite curve through them
// with view-dependent adaptive subdivision.
package curveplot

import (
	"iter"
	"sort"

	"github.com/mmp/celplot/math"
	"github.com/mmp/celplot/util"

	"github.com/brunoga/deep"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sample is a point on a trajectory. BoundingRadius is maintained by
// CurvePlot: it bounds the distance from the previous sample's position
// to any point of the curve segment that ends at this sample.
type Sample struct {
	T              float64   `msgpack:"t"`
	Position       math.Vec3 `msgpack:"p"`
	Velocity       math.Vec3 `msgpack:"v"`
	BoundingRadius float64   `msgpack:"-"`
}

// CurvePlot holds a trajectory's samples in strictly increasing time
// order. Samples may be added at either end; pruning also happens from
// the ends.
type CurvePlot struct {
	// Name identifies the trajectory in logs and saved files.
	Name string

	samples  util.Deque[Sample]
	duration float64
}

func New() *CurvePlot {
	return &CurvePlot{}
}

// AddSample adds s at the back of the plot if it is later than all of the
// current samples or at the front if it is earlier. A sample with a time
// inside the current range is ignored.
func (p *CurvePlot) AddSample(s Sample) {
	n := p.samples.Len()
	switch {
	case n == 0 || s.T > p.samples.Back().T:
		p.samples.PushBack(s)
		if n > 0 {
			prev := p.samples.At(n - 1)
			p.samples.Ptr(n).BoundingRadius = segmentBoundingRadius(prev, s)
		}

	case s.T < p.samples.Front().T:
		p.samples.PushFront(s)
		next := p.samples.Ptr(1)
		next.BoundingRadius = segmentBoundingRadius(s, *next)

	default:
		// Includes a time equal to the first or last one.
	}
}

func segmentBoundingRadius(s0, s1 Sample) float64 {
	dt := s1.T - s0.T
	c := math.HermiteCubic(s0.Position, s1.Position, r3.Scale(dt, s0.Velocity), r3.Scale(dt, s1.Velocity))
	return c.BoundingRadius()
}

// RemoveSamplesBefore discards all samples with times before t.
func (p *CurvePlot) RemoveSamplesBefore(t float64) {
	for p.samples.Len() > 0 && p.samples.Front().T < t {
		p.samples.PopFront()
	}
}

// RemoveSamplesAfter discards all samples with times after t.
func (p *CurvePlot) RemoveSamplesAfter(t float64) {
	for p.samples.Len() > 0 && p.samples.Back().T > t {
		p.samples.PopBack()
	}
}

// SetDuration records the span of time the plot is meant to cover; it is
// a hint for callers sizing fade windows and is not otherwise used.
func (p *CurvePlot) SetDuration(d float64) {
	p.duration = d
}

func (p *CurvePlot) Duration() float64 {
	return p.duration
}

func (p *CurvePlot) Len() int {
	return p.samples.Len()
}

func (p *CurvePlot) Sample(i int) Sample {
	return p.samples.At(i)
}

// Samples returns an iterator over the samples in time order.
func (p *CurvePlot) Samples() iter.Seq2[int, Sample] {
	return p.samples.All()
}

// StartTime returns the time of the first sample; it must not be called
// on an empty plot.
func (p *CurvePlot) StartTime() float64 {
	return p.samples.Front().T
}

// EndTime returns the time of the last sample; it must not be called on
// an empty plot.
func (p *CurvePlot) EndTime() float64 {
	return p.samples.Back().T
}

// FindSample returns the index of the last sample with time <= t, or -1
// if there is none.
func (p *CurvePlot) FindSample(t float64) int {
	n := p.samples.Len()
	return sort.Search(n, func(i int) bool { return p.samples.At(i).T > t }) - 1
}

// startSample returns the sample that a render beginning at time t
// starts from: the sample before the first one at or after t.
func (p *CurvePlot) startSample(t float64) int {
	n := p.samples.Len()
	i := sort.Search(n-1, func(i int) bool { return p.samples.At(i).T >= t })
	return max(i-1, 0)
}

// Clone returns a copy of the plot that shares no storage with it.
func (p *CurvePlot) Clone() *CurvePlot {
	c := &CurvePlot{Name: p.Name, duration: p.duration}
	for _, s := range deep.MustCopy(p.samples.Slice()) {
		c.samples.PushBack(s)
	}
	return c
}
