// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package mockserver

import (
	"github.com/HDFGroup/vol-rest-go/herrors"
	"github.com/HDFGroup/vol-rest-go/hspace"
)

// valueBuffer is the backing storage for a dataset or attribute's
// value, in whichever of the two wire forms its datatype uses:
// elemSize>0 selects the fixed-size binary form (data, indexed by
// flat element offset * elemSize); elemSize==0 selects the JSON
// element-array form used for variable-length strings.
type valueBuffer struct {
	elemSize int
	total    uint64
	data     []byte
	values   []interface{}
}

func newValueBuffer(elemSize int, total uint64) valueBuffer {
	vb := valueBuffer{elemSize: elemSize, total: total}
	if elemSize > 0 {
		vb.data = make([]byte, total*uint64(elemSize))
	} else {
		vb.values = make([]interface{}, total)
	}
	return vb
}

func (vb valueBuffer) binary() bool {
	return vb.elemSize > 0
}

// gatherBinary returns the concatenated bytes for the elements named
// by offsets, in order.
func (vb valueBuffer) gatherBinary(offsets []uint64) []byte {
	out := make([]byte, len(offsets)*vb.elemSize)
	for i, off := range offsets {
		copy(out[i*vb.elemSize:(i+1)*vb.elemSize], vb.data[int(off)*vb.elemSize:int(off+1)*vb.elemSize])
	}
	return out
}

// scatterBinary writes payload's elements into the elements named by
// offsets, in order.
func (vb valueBuffer) scatterBinary(offsets []uint64, payload []byte) error {
	if len(payload) != len(offsets)*vb.elemSize {
		return herrors.ErrInvalidArgument{Reason: "payload length does not match the selection's element count"}
	}
	for i, off := range offsets {
		copy(vb.data[int(off)*vb.elemSize:int(off+1)*vb.elemSize], payload[i*vb.elemSize:(i+1)*vb.elemSize])
	}
	return nil
}

// gatherJSON returns the element values named by offsets, in order.
func (vb valueBuffer) gatherJSON(offsets []uint64) []interface{} {
	out := make([]interface{}, len(offsets))
	for i, off := range offsets {
		out[i] = vb.values[off]
	}
	return out
}

// scatterJSON writes payload's elements into the elements named by
// offsets, in order.
func (vb valueBuffer) scatterJSON(offsets []uint64, payload []interface{}) error {
	if len(payload) != len(offsets) {
		return herrors.ErrInvalidArgument{Reason: "payload length does not match the selection's element count"}
	}
	for i, off := range offsets {
		vb.values[off] = payload[i]
	}
	return nil
}

// flatOffset computes the row-major flat element index of coord
// within a dataspace of the given dims (dim 0 slowest-varying).
func flatOffset(dims, coord []uint64) uint64 {
	off := uint64(0)
	for i := range dims {
		off = off*dims[i] + coord[i]
	}
	return off
}

// selectionOffsets expands sel (All, Hyperslab, or Points) against a
// dataspace of shape dims into the ordered list of flat element
// offsets it names. The iteration order for Hyperslab walks count
// then block per dimension, outermost dimension first, matching the
// row-major order the wire value array is transferred in.
func selectionOffsets(dims []uint64, sel hspace.Selection) ([]uint64, error) {
	total := uint64(1)
	for _, d := range dims {
		total *= d
	}

	switch sel.Class {
	case hspace.SelectAll:
		offsets := make([]uint64, total)
		for i := range offsets {
			offsets[i] = uint64(i)
		}
		return offsets, nil

	case hspace.SelectNone:
		return nil, nil

	case hspace.SelectPoints:
		offsets := make([]uint64, len(sel.Coords))
		for i, c := range sel.Coords {
			offsets[i] = flatOffset(dims, c)
		}
		return offsets, nil

	case hspace.SelectHyperslab:
		rank := len(sel.Start)
		ext := make([]uint64, rank)
		n := uint64(1)
		for i := 0; i < rank; i++ {
			ext[i] = sel.Count[i] * sel.Block[i]
			n *= ext[i]
		}
		offsets := make([]uint64, 0, n)
		idx := make([]uint64, rank)
		for step := uint64(0); step < n; step++ {
			rem := step
			for i := rank - 1; i >= 0; i-- {
				idx[i] = rem % ext[i]
				rem /= ext[i]
			}
			coord := make([]uint64, rank)
			for i := 0; i < rank; i++ {
				c := idx[i] / sel.Block[i]
				b := idx[i] % sel.Block[i]
				coord[i] = sel.Start[i] + c*sel.Stride[i] + b
			}
			offsets = append(offsets, flatOffset(dims, coord))
		}
		return offsets, nil
	}

	return nil, herrors.ErrUnsupportedSelection{Reason: "unknown selection class"}
}
