// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package htype

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HDFGroup/vol-rest-go/jsontree"
)

// Parse decodes a JSON type representation (as produced by Emit) back
// into a Datatype. node may be a bare string (a committed-type URI) or
// an object with a "class" key.
func Parse(node jsontree.Node, maxDepth int) (*Datatype, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return parse(node, 1, maxDepth)
}

func parse(node jsontree.Node, depth, maxDepth int) (*Datatype, error) {
	if uri, err := node.String(); err == nil {
		return NewCommitted(uri), nil
	}

	classNode, err := node.Key("class")
	if err != nil {
		return nil, ErrMalformedType{Reason: "missing \"class\" key"}
	}
	class, err := classNode.String()
	if err != nil {
		return nil, ErrMalformedType{Reason: "\"class\" key is not a string"}
	}

	// Only the classes that nest further (Compound, Enum, Array) are
	// subject to the depth bound; this rejects an untrusted,
	// arbitrarily deep type document without ever allocating it.
	switch class {
	case "H5T_COMPOUND", "H5T_ENUM", "H5T_ARRAY":
		if depth > maxDepth {
			return nil, ErrDepthExceeded{MaxDepth: maxDepth}
		}
	}

	switch class {
	case "H5T_INTEGER":
		return parseIntegerOrFloat(node, true)
	case "H5T_FLOAT":
		return parseIntegerOrFloat(node, false)
	case "H5T_STRING":
		return parseString(node)
	case "H5T_COMPOUND":
		return parseCompound(node, depth, maxDepth)
	case "H5T_ENUM":
		return parseEnum(node, depth, maxDepth)
	case "H5T_ARRAY":
		return parseArray(node, depth, maxDepth)
	case "H5T_REFERENCE":
		return parseReference(node)
	case "H5T_BITFIELD", "H5T_OPAQUE", "H5T_VLEN", "H5T_TIME":
		return nil, ErrUnsupportedDatatype{Class: class}
	}
	return nil, ErrUnsupportedDatatype{Class: class}
}

func parseIntegerOrFloat(node jsontree.Node, integer bool) (*Datatype, error) {
	baseNode, err := node.Key("base")
	if err != nil {
		return nil, ErrMalformedType{Reason: "integer/float type missing \"base\""}
	}
	name, err := baseNode.String()
	if err != nil {
		return nil, ErrMalformedType{Reason: "\"base\" is not a string"}
	}
	if integer {
		size, signed, littleEndian, err := parsePredefinedInteger(name)
		if err != nil {
			return nil, err
		}
		return NewInteger(size, signed, littleEndian), nil
	}
	size, littleEndian, err := parsePredefinedFloat(name)
	if err != nil {
		return nil, err
	}
	return NewFloat(size, littleEndian), nil
}

func parsePredefinedInteger(name string) (size int, signed, littleEndian bool, err error) {
	rest := strings.TrimPrefix(name, "H5T_STD_")
	if rest == name || len(rest) < 3 {
		return 0, false, false, ErrMalformedType{Reason: fmt.Sprintf("unrecognized predefined integer type %q", name)}
	}
	switch rest[0] {
	case 'U':
		signed = false
	case 'I':
		signed = true
	default:
		return 0, false, false, ErrMalformedType{Reason: fmt.Sprintf("unrecognized predefined integer type %q", name)}
	}
	endianPart := rest[len(rest)-2:]
	switch endianPart {
	case "LE":
		littleEndian = true
	case "BE":
		littleEndian = false
	default:
		return 0, false, false, ErrMalformedType{Reason: fmt.Sprintf("unrecognized predefined integer type %q", name)}
	}
	bitsStr := rest[1 : len(rest)-2]
	bits, convErr := strconv.Atoi(bitsStr)
	if convErr != nil {
		return 0, false, false, ErrMalformedType{Reason: fmt.Sprintf("unrecognized predefined integer type %q", name)}
	}
	return bits / 8, signed, littleEndian, nil
}

func parsePredefinedFloat(name string) (size int, littleEndian bool, err error) {
	rest := strings.TrimPrefix(name, "H5T_IEEE_F")
	if rest == name || len(rest) < 3 {
		return 0, false, ErrMalformedType{Reason: fmt.Sprintf("unrecognized predefined float type %q", name)}
	}
	endianPart := rest[len(rest)-2:]
	switch endianPart {
	case "LE":
		littleEndian = true
	case "BE":
		littleEndian = false
	default:
		return 0, false, ErrMalformedType{Reason: fmt.Sprintf("unrecognized predefined float type %q", name)}
	}
	bitsStr := rest[:len(rest)-2]
	bits, convErr := strconv.Atoi(bitsStr)
	if convErr != nil {
		return 0, false, ErrMalformedType{Reason: fmt.Sprintf("unrecognized predefined float type %q", name)}
	}
	return bits / 8, littleEndian, nil
}

func parseString(node jsontree.Node) (*Datatype, error) {
	padNode, err := node.Key("strPad")
	if err != nil {
		return nil, ErrMalformedType{Reason: "string type missing \"strPad\""}
	}
	padStr, err := padNode.String()
	if err != nil {
		return nil, ErrMalformedType{Reason: "\"strPad\" is not a string"}
	}

	lengthNode, err := node.Key("length")
	if err != nil {
		return nil, ErrMalformedType{Reason: "string type missing \"length\""}
	}

	if s, err := lengthNode.String(); err == nil {
		if s != "H5T_VARIABLE" {
			return nil, ErrMalformedType{Reason: fmt.Sprintf("unrecognized string length %q", s)}
		}
		if padStr != "H5T_STR_NULLTERM" {
			return nil, ErrMalformedType{Reason: "variable-length string must use H5T_STR_NULLTERM"}
		}
		return NewVariableString(), nil
	}

	n, err := lengthNode.Int()
	if err != nil {
		return nil, ErrMalformedType{Reason: "\"length\" is neither a number nor \"H5T_VARIABLE\""}
	}
	if padStr != "H5T_STR_NULLPAD" {
		return nil, ErrMalformedType{Reason: "fixed-length string must use H5T_STR_NULLPAD"}
	}
	return NewFixedString(int(n)), nil
}

func parseCompound(node jsontree.Node, depth, maxDepth int) (*Datatype, error) {
	fieldsNode, err := node.Key("fields")
	if err != nil {
		return nil, ErrMalformedType{Reason: "compound type missing \"fields\""}
	}
	fields, err := fieldsNode.Array()
	if err != nil {
		return nil, ErrMalformedType{Reason: "\"fields\" is not an array"}
	}
	members := make([]CompoundMember, len(fields))
	for i, f := range fields {
		nameNode, err := f.Key("name")
		if err != nil {
			return nil, ErrMalformedType{Reason: "compound field missing \"name\""}
		}
		name, err := nameNode.String()
		if err != nil {
			return nil, ErrMalformedType{Reason: "compound field \"name\" is not a string"}
		}
		typeNode, err := f.Key("type")
		if err != nil {
			return nil, ErrTruncatedType{Reason: fmt.Sprintf("compound field %q missing \"type\"", name)}
		}
		memberType, err := parse(typeNode, depth+1, maxDepth)
		if err != nil {
			return nil, err
		}
		members[i] = CompoundMember{Name: name, Type: memberType}
	}
	return NewCompound(members)
}

func parseEnum(node jsontree.Node, depth, maxDepth int) (*Datatype, error) {
	baseNode, err := node.Key("base")
	if err != nil {
		return nil, ErrTruncatedType{Reason: "enum type missing \"base\""}
	}
	base, err := parse(baseNode, depth+1, maxDepth)
	if err != nil {
		return nil, err
	}
	mappingNode, err := node.Key("mapping")
	if err != nil {
		return nil, ErrMalformedType{Reason: "enum type missing \"mapping\""}
	}
	mappingObj, err := mappingNode.Object()
	if err != nil {
		return nil, ErrMalformedType{Reason: "\"mapping\" is not an object"}
	}
	mapping := make([]EnumMember, 0, len(mappingObj))
	for name, valueNode := range mappingObj {
		v, err := valueNode.Int()
		if err != nil {
			return nil, ErrMalformedType{Reason: fmt.Sprintf("enum mapping value for %q is not a number", name)}
		}
		mapping = append(mapping, EnumMember{Name: name, Value: v})
	}
	return NewEnum(base, mapping)
}

func parseArray(node jsontree.Node, depth, maxDepth int) (*Datatype, error) {
	baseNode, err := node.Key("base")
	if err != nil {
		return nil, ErrTruncatedType{Reason: "array type missing \"base\""}
	}
	base, err := parse(baseNode, depth+1, maxDepth)
	if err != nil {
		return nil, err
	}
	dimsNode, err := node.Key("dims")
	if err != nil {
		return nil, ErrMalformedType{Reason: "array type missing \"dims\""}
	}
	dimNodes, err := dimsNode.Array()
	if err != nil {
		return nil, ErrMalformedType{Reason: "\"dims\" is not an array"}
	}
	dims := make([]int, len(dimNodes))
	for i, d := range dimNodes {
		v, err := d.Int()
		if err != nil {
			return nil, ErrMalformedType{Reason: "array dimension is not a number"}
		}
		dims[i] = int(v)
	}
	return NewArray(base, dims)
}

func parseReference(node jsontree.Node) (*Datatype, error) {
	baseNode, err := node.Key("base")
	if err != nil {
		return nil, ErrMalformedType{Reason: "reference type missing \"base\""}
	}
	name, err := baseNode.String()
	if err != nil {
		return nil, ErrMalformedType{Reason: "\"base\" is not a string"}
	}
	switch name {
	case "H5T_STD_REF_OBJ":
		return NewReference(RefObject), nil
	case "H5T_STD_REF_DSETREG":
		return NewReference(RefRegion), nil
	}
	return nil, ErrMalformedType{Reason: fmt.Sprintf("unrecognized reference base %q", name)}
}
