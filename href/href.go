// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package href implements the object reference codec: the conversion
// between an array of in-memory object references and the fixed
// 48-byte-per-slot wire encoding the object service expects for
// H5T_STD_REF_OBJ data.
package href

import (
	"bytes"
	"fmt"

	"github.com/HDFGroup/vol-rest-go/herrors"
)

// Kind distinguishes an object reference from a region reference.
// Region references can appear in server responses but cannot
// currently be created from this client.
type Kind int

const (
	KindObject Kind = iota
	KindRegion
)

// TargetType identifies what an object reference points at.
type TargetType int

const (
	TargetInvalid TargetType = iota
	TargetGroup
	TargetDataset
	TargetDatatype
)

func (t TargetType) prefix() (string, error) {
	switch t {
	case TargetGroup:
		return "groups", nil
	case TargetDataset:
		return "datasets", nil
	case TargetDatatype:
		return "datatypes", nil
	}
	return "", herrors.ErrInvalidArgument{Reason: fmt.Sprintf("unsupported reference target type %d", t)}
}

func targetTypeFromLeadingByte(b byte) TargetType {
	switch b {
	case 'g':
		return TargetGroup
	case 'd':
		return TargetDataset
	case 't':
		return TargetDatatype
	}
	return TargetInvalid
}

// SlotSize is the fixed stride of one reference's wire encoding.
const SlotSize = 48

// Reference is a single in-memory object reference.
type Reference struct {
	Kind       Kind
	TargetType TargetType
	URI        string
}

// Valid reports whether r decoded to a recognized target; an all-zero
// wire slot (as may appear in a sparsely-populated reference dataset)
// decodes to an invalid reference rather than an error.
func (r Reference) Valid() bool {
	return r.TargetType != TargetInvalid
}

// Encode produces the n*48-byte wire buffer for refs. Every reference
// must carry a recognized TargetType; region references are rejected
// since this client cannot construct them.
func Encode(refs []Reference) ([]byte, error) {
	buf := make([]byte, len(refs)*SlotSize)
	for i, r := range refs {
		if r.Kind == KindRegion {
			return nil, herrors.ErrUnsupportedDatatype{Class: "RegionRef"}
		}
		prefix, err := r.TargetType.prefix()
		if err != nil {
			return nil, err
		}
		slot := fmt.Sprintf("%s/%s", prefix, r.URI)
		if len(slot) >= SlotSize {
			return nil, herrors.ErrInvalidArgument{
				Reason: fmt.Sprintf("encoded reference %q exceeds the %d-byte slot", slot, SlotSize),
			}
		}
		copy(buf[i*SlotSize:(i+1)*SlotSize], slot)
		// Residual bytes past the NUL terminator are left zeroed; the
		// server tolerates indeterminate trailing content but a zeroed
		// buffer keeps this encoder's output deterministic.
	}
	return buf, nil
}

// Decode splits an n*48-byte wire buffer into references. Decoded
// references always carry KindObject; a slot with no '/' or whose URI
// is empty decodes to an invalid reference rather than an error, since
// a zeroed slot is a normal and expected occurrence in a
// sparsely-written reference dataset.
func Decode(buf []byte) ([]Reference, error) {
	if len(buf)%SlotSize != 0 {
		return nil, herrors.ErrMalformed{
			Reason: fmt.Sprintf("reference buffer length %d is not a multiple of %d", len(buf), SlotSize),
		}
	}
	n := len(buf) / SlotSize
	out := make([]Reference, n)
	for i := 0; i < n; i++ {
		slot := buf[i*SlotSize : (i+1)*SlotSize]
		if nul := bytes.IndexByte(slot, 0); nul >= 0 {
			slot = slot[:nul]
		}
		idx := bytes.IndexByte(slot, '/')
		if idx < 0 || idx+1 >= len(slot) {
			out[i] = Reference{Kind: KindObject, TargetType: TargetInvalid}
			continue
		}
		uri := string(slot[idx+1:])
		if len(uri) == 0 {
			out[i] = Reference{Kind: KindObject, TargetType: TargetInvalid}
			continue
		}
		out[i] = Reference{
			Kind:       KindObject,
			TargetType: targetTypeFromLeadingByte(uri[0]),
			URI:        uri,
		}
	}
	return out, nil
}
