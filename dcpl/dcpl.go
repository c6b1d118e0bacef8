// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package dcpl implements the creation-properties codec: the
// translation between a dataset/datatype creation property list and
// the "creationProperties" JSON object the object service expects.
package dcpl

import "fmt"

// AllocTime mirrors H5D_alloc_time_t. The wire value is emitted
// verbatim regardless of which member is selected; servers may or may
// not treat H5D_ALLOC_TIME_DEFAULT as equivalent to a storage-layout
// specific default.
type AllocTime string

const (
	AllocTimeDefault AllocTime = "H5D_ALLOC_TIME_DEFAULT"
	AllocTimeEarly   AllocTime = "H5D_ALLOC_TIME_EARLY"
	AllocTimeIncr    AllocTime = "H5D_ALLOC_TIME_INCR"
	AllocTimeLate    AllocTime = "H5D_ALLOC_TIME_LATE"
)

// AttributeCreationOrder mirrors the H5P_CRT_ORDER_* flags.
type AttributeCreationOrder string

const (
	CrtOrderTracked AttributeCreationOrder = "H5P_CRT_ORDER_TRACKED"
	CrtOrderIndexed AttributeCreationOrder = "H5P_CRT_ORDER_INDEXED"
)

// FillTime mirrors H5D_fill_time_t.
type FillTime string

const (
	FillTimeIfSet FillTime = "H5D_FILL_TIME_IFSET"
	FillTimeAlloc FillTime = "H5D_FILL_TIME_ALLOC"
	FillTimeNever FillTime = "H5D_FILL_TIME_NEVER"
)

// LayoutClass mirrors H5D_layout_t, excluding H5D_VIRTUAL which this
// client rejects outright.
type LayoutClass string

const (
	LayoutCompact    LayoutClass = "H5D_COMPACT"
	LayoutContiguous LayoutClass = "H5D_CONTIGUOUS"
	LayoutChunked    LayoutClass = "H5D_CHUNKED"
)

// FilterClass names one of the recognized pipeline filters.
type FilterClass string

const (
	FilterDeflate     FilterClass = "H5Z_FILTER_DEFLATE"
	FilterShuffle     FilterClass = "SHUFFLE"
	FilterFletcher32  FilterClass = "FLETCHER32"
	FilterSZIP        FilterClass = "SZIP"
	FilterNBit        FilterClass = "NBIT"
	FilterScaleoffset FilterClass = "SCALEOFFSET"
	FilterLZF         FilterClass = "LZF"
	FilterUser        FilterClass = "USER"
)

// SZIPMask mirrors the H5_SZIP_*_OPTION_MASK values. Unlike the
// original client, which silently coerced any unrecognized mask to
// NN, this codec rejects unknown masks outright (see ValidateFilter).
type SZIPMask string

const (
	SZIPEntropyCoding   SZIPMask = "EC"
	SZIPNearestNeighbor SZIPMask = "NN"
)

// Filter describes one entry of the creationProperties.filters array.
// Only the fields relevant to Class are populated.
type Filter struct {
	Class FilterClass

	// DEFLATE
	Level int

	// SZIP
	PixelsPerBlock int
	Coding         SZIPMask

	// SCALEOFFSET
	ScaleType      string
	ScaleFactor    int

	// USER
	FilterID   int
	Parameters []int
}

// AttributePhaseChange mirrors the maxCompact/minDense pair; it is
// only emitted when it differs from the library defaults.
type AttributePhaseChange struct {
	MaxCompact int
	MinDense   int
}

const (
	defaultMaxCompact = 8
	defaultMinDense   = 6
)

// DefaultAttributePhaseChange returns the library's default
// maxCompact/minDense pair.
func DefaultAttributePhaseChange() AttributePhaseChange {
	return AttributePhaseChange{MaxCompact: defaultMaxCompact, MinDense: defaultMinDense}
}

// Layout describes the creationProperties.layout object.
type Layout struct {
	Class LayoutClass
	Dims  []uint64 // only for LayoutChunked
}

// PropertyList is the in-memory creation property list for a dataset
// or committed datatype.
type PropertyList struct {
	AllocTime AllocTime

	AttributeCreationOrder *AttributeCreationOrder
	AttributePhaseChange   *AttributePhaseChange

	FillTime     FillTime
	FillDefined  bool // true iff Parse read a non-null fillValue; Emit serializes only the null case

	Filters []Filter

	Layout *Layout

	TrackTimes bool
}

// Default returns a PropertyList with the library's defaults: default
// alloc time, fill-if-set, no filters, contiguous layout, tracked
// times.
func Default() PropertyList {
	return PropertyList{
		AllocTime:  AllocTimeDefault,
		FillTime:   FillTimeIfSet,
		Layout:     &Layout{Class: LayoutContiguous},
		TrackTimes: true,
	}
}

// ValidateFilter rejects filters this codec cannot serialize: SZIP
// masks other than EC/NN, and any attempt at H5D_VIRTUAL layout
// (checked separately via ValidateLayout).
func ValidateFilter(f Filter) error {
	if f.Class == FilterSZIP {
		switch f.Coding {
		case SZIPEntropyCoding, SZIPNearestNeighbor:
		default:
			return fmt.Errorf("dcpl: unrecognized SZIP coding mask %q", f.Coding)
		}
	}
	return nil
}

// ValidateLayout rejects virtual layout, which the wire protocol does
// not support from this client.
func ValidateLayout(l Layout) error {
	switch l.Class {
	case LayoutCompact, LayoutContiguous, LayoutChunked:
		return nil
	}
	return fmt.Errorf("dcpl: unsupported layout class %q", l.Class)
}
