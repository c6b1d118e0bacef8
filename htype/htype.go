// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package htype implements the in-memory datatype model and its
// bidirectional JSON codec: the "Type Codec" component of the
// object-service adapter. A Datatype is a small tagged sum (integer,
// float, string, compound, enum, array, reference, or a committed-type
// reference by URI); Emit and Parse translate between that model and
// the recursive JSON representation the object service speaks.
package htype

import "fmt"

// Class identifies which variant of Datatype is populated.
type Class int

const (
	ClassInteger Class = iota
	ClassFloat
	ClassString
	ClassCompound
	ClassEnum
	ClassArray
	ClassReference
	ClassCommitted
)

func (c Class) String() string {
	switch c {
	case ClassInteger:
		return "Integer"
	case ClassFloat:
		return "Float"
	case ClassString:
		return "String"
	case ClassCompound:
		return "Compound"
	case ClassEnum:
		return "Enum"
	case ClassArray:
		return "Array"
	case ClassReference:
		return "Reference"
	case ClassCommitted:
		return "Committed"
	}
	return "Unknown"
}

// StringPad identifies the padding discipline for a String datatype.
type StringPad int

const (
	// PadNullTerm is used by variable-length strings.
	PadNullTerm StringPad = iota
	// PadNullPad is used by fixed-length strings.
	PadNullPad
)

// ReferenceKind distinguishes object references from region
// references. Region references can appear in server responses but
// cannot be created by this client; see Non-goals.
type ReferenceKind int

const (
	RefObject ReferenceKind = iota
	RefRegion
)

func (k ReferenceKind) String() string {
	if k == RefRegion {
		return "RegionRef"
	}
	return "ObjectRef"
}

// CompoundMember is one named field of a Compound datatype. Offset is
// computed by Pack, never set directly by callers.
type CompoundMember struct {
	Name   string
	Offset int
	Type   *Datatype
}

// EnumMember is one named value of an Enum datatype's mapping.
type EnumMember struct {
	Name  string
	Value int64
}

// Datatype is a tagged sum over the HDF5 datatype classes this
// adapter supports. Only the fields relevant to Class are populated;
// the rest are zero.
type Datatype struct {
	Class Class

	// Integer / Float
	SizeInBytes  int
	Signed       bool
	LittleEndian bool

	// String
	Variable bool // true selects a variable-length string
	Length   int  // fixed-length string byte count; ignored if Variable
	Pad      StringPad

	// Compound
	Members []CompoundMember

	// Enum
	EnumBase *Datatype
	Mapping  []EnumMember

	// Array
	ArrayBase *Datatype
	Dims      []int

	// Reference
	RefKind ReferenceKind

	// Committed
	CommittedURI string
}

// DefaultMaxDepth is the default recursion bound for Emit and Parse,
// matching RECURSION_MAX_DEPTH from the design notes.
const DefaultMaxDepth = 3

// NewInteger builds a fixed-width integer datatype.
func NewInteger(sizeInBytes int, signed, littleEndian bool) *Datatype {
	return &Datatype{Class: ClassInteger, SizeInBytes: sizeInBytes, Signed: signed, LittleEndian: littleEndian}
}

// NewFloat builds an IEEE-754 32- or 64-bit float datatype.
func NewFloat(sizeInBytes int, littleEndian bool) *Datatype {
	return &Datatype{Class: ClassFloat, SizeInBytes: sizeInBytes, LittleEndian: littleEndian}
}

// NewFixedString builds a fixed-length ASCII string, null-padded.
func NewFixedString(length int) *Datatype {
	return &Datatype{Class: ClassString, Length: length, Pad: PadNullPad}
}

// NewVariableString builds a variable-length ASCII string, null-terminated.
func NewVariableString() *Datatype {
	return &Datatype{Class: ClassString, Variable: true, Pad: PadNullTerm}
}

// NewCompound builds a compound datatype and packs member offsets.
func NewCompound(members []CompoundMember) (*Datatype, error) {
	dt := &Datatype{Class: ClassCompound, Members: append([]CompoundMember(nil), members...)}
	if err := dt.pack(); err != nil {
		return nil, err
	}
	return dt, nil
}

// pack computes each member's Offset as the prefix sum of packed
// member sizes, in declaration order.
func (dt *Datatype) pack() error {
	offset := 0
	for i := range dt.Members {
		size, err := Size(dt.Members[i].Type)
		if err != nil {
			return fmt.Errorf("htype: compound member %q: %w", dt.Members[i].Name, err)
		}
		dt.Members[i].Offset = offset
		offset += size
	}
	return nil
}

// NewEnum builds an enum datatype over an integer base.
func NewEnum(base *Datatype, mapping []EnumMember) (*Datatype, error) {
	if base == nil || base.Class != ClassInteger {
		return nil, fmt.Errorf("htype: enum base must be an integer datatype")
	}
	return &Datatype{Class: ClassEnum, EnumBase: base, Mapping: append([]EnumMember(nil), mapping...)}, nil
}

// arrayBaseForbidden lists the classes an Array's base datatype may
// not be, per the invariant in spec.md §3: arrays cannot nest arrays,
// compounds, references, or enums, and (of the classes this adapter
// models at all) variable-length strings stand in for the excluded
// Vlen class.
func arrayBaseForbidden(dt *Datatype) bool {
	switch dt.Class {
	case ClassArray, ClassCompound, ClassReference, ClassEnum:
		return true
	case ClassString:
		return dt.Variable
	}
	return false
}

// NewArray builds an array datatype with the given base element type
// and positive extents.
func NewArray(base *Datatype, dims []int) (*Datatype, error) {
	if base == nil {
		return nil, fmt.Errorf("htype: array base type is required")
	}
	if arrayBaseForbidden(base) {
		return nil, fmt.Errorf("htype: array base class %s is not permitted as an array element type", base.Class)
	}
	for _, d := range dims {
		if d <= 0 {
			return nil, fmt.Errorf("htype: array dimensions must be positive, got %d", d)
		}
	}
	return &Datatype{Class: ClassArray, ArrayBase: base, Dims: append([]int(nil), dims...)}, nil
}

// NewReference builds a reference datatype of the given kind.
func NewReference(kind ReferenceKind) *Datatype {
	return &Datatype{Class: ClassReference, RefKind: kind}
}

// NewCommitted builds a leaf referencing a named (committed) datatype
// by its server URI. Because committed types are resolved lazily by
// URI, this representation breaks what would otherwise be a cyclic
// object graph between mutually-referencing named types.
func NewCommitted(uri string) *Datatype {
	return &Datatype{Class: ClassCommitted, CommittedURI: uri}
}

// Size returns the packed byte size of dt. Variable-length strings
// have no fixed size and return an error, as do committed-type leaves
// (the caller must resolve them first) and reference types (whose
// wire size is owned by the Object Reference Codec, not this model).
func Size(dt *Datatype) (int, error) {
	switch dt.Class {
	case ClassInteger, ClassFloat:
		return dt.SizeInBytes, nil
	case ClassString:
		if dt.Variable {
			return 0, fmt.Errorf("htype: variable-length string has no fixed size")
		}
		return dt.Length, nil
	case ClassCompound:
		total := 0
		for _, m := range dt.Members {
			size, err := Size(m.Type)
			if err != nil {
				return 0, err
			}
			total += size
		}
		return total, nil
	case ClassEnum:
		return Size(dt.EnumBase)
	case ClassArray:
		baseSize, err := Size(dt.ArrayBase)
		if err != nil {
			return 0, err
		}
		n := 1
		for _, d := range dt.Dims {
			n *= d
		}
		return baseSize * n, nil
	case ClassReference:
		return 0, fmt.Errorf("htype: reference datatype has no self-contained size")
	case ClassCommitted:
		return 0, fmt.Errorf("htype: committed datatype %q must be resolved before its size is known", dt.CommittedURI)
	}
	return 0, fmt.Errorf("htype: unknown class %v", dt.Class)
}
