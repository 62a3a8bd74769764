// util/deque.go
// Copyright(c) 2022-2025 celplot contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"fmt"
	"iter"
)

///////////////////////////////////////////////////////////////////////////
// Deque

// Deque is a double-ended queue backed by a circular array. Items can be
// added or removed from either end in amortized constant time and any
// item can be accessed by index, where index 0 is the front.
type Deque[V any] struct {
	entries []V
	head    int // index in entries of the front item
	n       int
}

// DequeFromSlice returns a Deque holding the elements of s, in order. s
// is copied.
func DequeFromSlice[V any](s []V) *Deque[V] {
	c := 8
	for c < len(s) {
		c *= 2
	}
	d := &Deque[V]{entries: make([]V, c), n: len(s)}
	copy(d.entries, s)
	return d
}

func (d *Deque[V]) Len() int {
	return d.n
}

func (d *Deque[V]) slot(i int) int {
	return (d.head + i) % len(d.entries)
}

func (d *Deque[V]) grow() {
	if d.n < len(d.entries) {
		return
	}
	c := max(8, 2*len(d.entries))
	e := make([]V, c)
	for i := range d.n {
		e[i] = d.entries[d.slot(i)]
	}
	d.entries, d.head = e, 0
}

func (d *Deque[V]) PushBack(v V) {
	d.grow()
	d.entries[d.slot(d.n)] = v
	d.n++
}

func (d *Deque[V]) PushFront(v V) {
	d.grow()
	d.head = (d.head - 1 + len(d.entries)) % len(d.entries)
	d.entries[d.head] = v
	d.n++
}

// PopFront removes and returns the front item; it panics if the deque is
// empty.
func (d *Deque[V]) PopFront() V {
	if d.n == 0 {
		panic("PopFront called on empty Deque")
	}
	v := d.entries[d.head]
	var zero V
	d.entries[d.head] = zero
	d.head = (d.head + 1) % len(d.entries)
	d.n--
	return v
}

// PopBack removes and returns the back item; it panics if the deque is
// empty.
func (d *Deque[V]) PopBack() V {
	if d.n == 0 {
		panic("PopBack called on empty Deque")
	}
	s := d.slot(d.n - 1)
	v := d.entries[s]
	var zero V
	d.entries[s] = zero
	d.n--
	return v
}

func (d *Deque[V]) Front() V {
	return d.At(0)
}

func (d *Deque[V]) Back() V {
	return d.At(d.n - 1)
}

func (d *Deque[V]) At(i int) V {
	if i < 0 || i >= d.n {
		panic(fmt.Sprintf("Deque index %d out of range [0,%d)", i, d.n))
	}
	return d.entries[d.slot(i)]
}

// Ptr returns a pointer to the i'th item, which remains valid until the
// next push to the deque.
func (d *Deque[V]) Ptr(i int) *V {
	if i < 0 || i >= d.n {
		panic(fmt.Sprintf("Deque index %d out of range [0,%d)", i, d.n))
	}
	return &d.entries[d.slot(i)]
}

func (d *Deque[V]) Set(i int, v V) {
	*d.Ptr(i) = v
}

func (d *Deque[V]) Clear() {
	clear(d.entries)
	d.head, d.n = 0, 0
}

// All returns an iterator over the index and value of each item, front to
// back.
func (d *Deque[V]) All() iter.Seq2[int, V] {
	return func(yield func(int, V) bool) {
		for i := range d.n {
			if !yield(i, d.entries[d.slot(i)]) {
				return
			}
		}
	}
}

// Slice returns a newly allocated slice holding the deque's items in
// order.
func (d *Deque[V]) Slice() []V {
	s := make([]V, d.n)
	for i := range d.n {
		s[i] = d.entries[d.slot(i)]
	}
	return s
}
