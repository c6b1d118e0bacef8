// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package htype

import "fmt"

// predefinedInteger builds names like "H5T_STD_U8LE" or "H5T_STD_I64BE".
func predefinedInteger(sizeInBytes int, signed, littleEndian bool) string {
	sign := "I"
	if !signed {
		sign = "U"
	}
	endian := "BE"
	if littleEndian {
		endian = "LE"
	}
	return fmt.Sprintf("H5T_STD_%s%d%s", sign, sizeInBytes*8, endian)
}

// predefinedFloat builds names like "H5T_IEEE_F32LE".
func predefinedFloat(sizeInBytes int, littleEndian bool) string {
	endian := "BE"
	if littleEndian {
		endian = "LE"
	}
	return fmt.Sprintf("H5T_IEEE_F%d%s", sizeInBytes*8, endian)
}

// Emit produces the JSON-ready value for dt: either a bare string (for
// a committed/named type) or a map[string]interface{} describing the
// type's class and parameters. The caller typically embeds the
// returned value under a "type" key before encoding the whole
// request/response document as JSON.
//
// maxDepth bounds recursion exactly as RECURSION_MAX_DEPTH does in the
// design notes; once the configured depth is reached, any further
// nested compound/enum/array base is replaced with a generic 32-bit
// little-endian signed integer rather than recursing further.
func Emit(dt *Datatype, maxDepth int) (interface{}, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return emit(dt, 1, maxDepth)
}

func emit(dt *Datatype, depth, maxDepth int) (interface{}, error) {
	if dt == nil {
		return nil, ErrMalformedType{Reason: "nil datatype"}
	}

	// Only the classes that nest further (Compound, Enum, Array) are
	// subject to the depth bound; scalar leaves terminate recursion
	// on their own and are never substituted.
	switch dt.Class {
	case ClassCompound, ClassEnum, ClassArray:
		if depth > maxDepth {
			dt = NewInteger(4, true, true)
		}
	}

	switch dt.Class {
	case ClassCommitted:
		return dt.CommittedURI, nil

	case ClassInteger:
		return map[string]interface{}{
			"class": "H5T_INTEGER",
			"base":  predefinedInteger(dt.SizeInBytes, dt.Signed, dt.LittleEndian),
		}, nil

	case ClassFloat:
		return map[string]interface{}{
			"class": "H5T_FLOAT",
			"base":  predefinedFloat(dt.SizeInBytes, dt.LittleEndian),
		}, nil

	case ClassString:
		pad := "H5T_STR_NULLPAD"
		var length interface{} = dt.Length
		if dt.Variable {
			pad = "H5T_STR_NULLTERM"
			length = "H5T_VARIABLE"
		}
		return map[string]interface{}{
			"class":   "H5T_STRING",
			"charSet": "H5T_CSET_ASCII",
			"strPad":  pad,
			"length":  length,
		}, nil

	case ClassCompound:
		fields := make([]interface{}, len(dt.Members))
		for i, m := range dt.Members {
			memberType, err := emit(m.Type, depth+1, maxDepth)
			if err != nil {
				return nil, err
			}
			fields[i] = map[string]interface{}{
				"name": m.Name,
				"type": memberType,
			}
		}
		return map[string]interface{}{
			"class":  "H5T_COMPOUND",
			"fields": fields,
		}, nil

	case ClassEnum:
		baseType, err := emit(dt.EnumBase, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		mapping := make(map[string]interface{}, len(dt.Mapping))
		for _, m := range dt.Mapping {
			mapping[m.Name] = m.Value
		}
		return map[string]interface{}{
			"class":   "H5T_ENUM",
			"base":    baseType,
			"mapping": mapping,
		}, nil

	case ClassArray:
		baseType, err := emit(dt.ArrayBase, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		dims := make([]interface{}, len(dt.Dims))
		for i, d := range dt.Dims {
			dims[i] = d
		}
		return map[string]interface{}{
			"class": "H5T_ARRAY",
			"base":  baseType,
			"dims":  dims,
		}, nil

	case ClassReference:
		base := "H5T_STD_REF_OBJ"
		if dt.RefKind == RefRegion {
			base = "H5T_STD_REF_DSETREG"
		}
		return map[string]interface{}{
			"class": "H5T_REFERENCE",
			"base":  base,
		}, nil
	}

	return nil, ErrUnsupportedDatatype{Class: dt.Class.String()}
}
