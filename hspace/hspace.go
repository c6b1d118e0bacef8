// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package hspace implements the in-memory dataspace and selection
// model and its two wire encodings: a URL-parameter form used for
// binary transfers, and a JSON-body form used for JSON transfers and
// point selections. This is the "Space Codec" component.
package hspace

import "fmt"

// Class identifies which variant of Dataspace is populated.
type Class int

const (
	ClassNull Class = iota
	ClassScalar
	ClassSimple
)

// Unlimited is the sentinel used in a Simple dataspace's MaxDims to
// mark a dimension with no fixed upper bound. On the wire this is
// encoded as 0.
const Unlimited uint64 = ^uint64(0)

// Dataspace is a tagged sum over Null, Scalar, and Simple (N-dimensional,
// with optional maximum extents).
type Dataspace struct {
	Class   Class
	Dims    []uint64
	MaxDims []uint64 // nil if maxdims equal dims (no growth); entries may be Unlimited
}

// NewNull builds a Null dataspace.
func NewNull() Dataspace {
	return Dataspace{Class: ClassNull}
}

// NewScalar builds a Scalar dataspace.
func NewScalar() Dataspace {
	return Dataspace{Class: ClassScalar}
}

// NewSimple builds a Simple dataspace with the given current extents
// and, optionally, maximum extents (pass nil to mean "same as dims").
func NewSimple(dims, maxDims []uint64) (Dataspace, error) {
	if len(maxDims) != 0 && len(maxDims) != len(dims) {
		return Dataspace{}, fmt.Errorf("hspace: maxdims rank %d does not match dims rank %d", len(maxDims), len(dims))
	}
	return Dataspace{
		Class:   ClassSimple,
		Dims:    append([]uint64(nil), dims...),
		MaxDims: append([]uint64(nil), maxDims...),
	}, nil
}

// Rank returns the number of dimensions (0 for Null and Scalar).
func (s Dataspace) Rank() int {
	return len(s.Dims)
}

// NumElements returns the product of the current extents (1 for
// Scalar, 0 for Null).
func (s Dataspace) NumElements() uint64 {
	switch s.Class {
	case ClassScalar:
		return 1
	case ClassNull:
		return 0
	}
	n := uint64(1)
	for _, d := range s.Dims {
		n *= d
	}
	return n
}

// SelectionClass identifies which variant of Selection is populated.
type SelectionClass int

const (
	SelectAll SelectionClass = iota
	SelectNone
	SelectHyperslab
	SelectPoints
)

// Selection is a tagged sum over All, None, a regular Hyperslab, and
// an explicit list of Points.
type Selection struct {
	Class SelectionClass

	// Hyperslab
	Start  []uint64
	Stride []uint64
	Count  []uint64
	Block  []uint64

	// Points
	Coords [][]uint64
}

// All is the selection that covers an entire dataspace.
func All() Selection { return Selection{Class: SelectAll} }

// None is the empty selection.
func None() Selection { return Selection{Class: SelectNone} }

// NewHyperslab builds a regular hyperslab selection. Only rectangular,
// regular strides are supported.
func NewHyperslab(start, stride, count, block []uint64) (Selection, error) {
	n := len(start)
	if len(stride) != n || len(count) != n || len(block) != n {
		return Selection{}, fmt.Errorf("hspace: hyperslab start/stride/count/block must share the same rank")
	}
	return Selection{
		Class:  SelectHyperslab,
		Start:  append([]uint64(nil), start...),
		Stride: append([]uint64(nil), stride...),
		Count:  append([]uint64(nil), count...),
		Block:  append([]uint64(nil), block...),
	}, nil
}

// NewPoints builds a point selection from explicit coordinates.
func NewPoints(coords [][]uint64) (Selection, error) {
	if len(coords) == 0 {
		return Selection{Class: SelectPoints}, nil
	}
	rank := len(coords[0])
	for _, c := range coords {
		if len(c) != rank {
			return Selection{}, fmt.Errorf("hspace: all point coordinates must share the same rank")
		}
	}
	out := make([][]uint64, len(coords))
	for i, c := range coords {
		out[i] = append([]uint64(nil), c...)
	}
	return Selection{Class: SelectPoints, Coords: out}, nil
}

// NumPoints returns the number of elements the selection covers. For
// All and None this requires the owning dataspace and is computed by
// the caller; NumPoints here only covers Hyperslab and Points, the two
// classes whose cardinality is self-contained.
func (sel Selection) NumPoints() (uint64, error) {
	switch sel.Class {
	case SelectHyperslab:
		n := uint64(1)
		for _, c := range sel.Count {
			n *= c
		}
		for _, b := range sel.Block {
			n *= b
		}
		return n, nil
	case SelectPoints:
		return uint64(len(sel.Coords)), nil
	}
	return 0, fmt.Errorf("hspace: NumPoints is only defined for Hyperslab and Points selections")
}
