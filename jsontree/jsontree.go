// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package jsontree wraps a decoded JSON document with path-keyed
// lookups that return typed leaves. It is the redesigned replacement
// for the brace-counting substring scans that the original C
// implementation used to locate nested "type"/"base" subobjects:
// instead of re-deriving offsets from raw text (which breaks the
// moment a member name contains a literal `{` or `}`), the whole
// document is decoded once into Go's generic JSON representation and
// every codec walks that tree with ordinary map/slice access.
package jsontree

import (
	"fmt"

	"github.com/ugorji/go/codec"
)

// Node is a single JSON value: nil, bool, float64, string,
// []interface{}, or map[string]interface{}, exactly as
// encoding/json-style decoders produce them.
type Node struct {
	value interface{}
}

// ErrWrongType is returned when a typed accessor is called on a node
// that does not hold a value of the requested type.
type ErrWrongType struct {
	Path string
	Want string
}

func (e ErrWrongType) Error() string {
	return fmt.Sprintf("jsontree: %s: expected %s", e.Path, e.Want)
}

// ErrMissingKey is returned when a requested object key is absent.
type ErrMissingKey struct {
	Path string
	Key  string
}

func (e ErrMissingKey) Error() string {
	return fmt.Sprintf("jsontree: %s: missing key %q", e.Path, e.Key)
}

var jsonHandle = &codec.JsonHandle{}

// Parse decodes raw JSON bytes into a Node tree.
func Parse(raw []byte) (Node, error) {
	var v interface{}
	decoder := codec.NewDecoderBytes(raw, jsonHandle)
	if err := decoder.Decode(&v); err != nil {
		return Node{}, err
	}
	return Node{value: v}, nil
}

// Wrap builds a Node directly from an already-decoded value, such as
// a map[string]interface{} produced elsewhere.
func Wrap(v interface{}) Node {
	return Node{value: v}
}

// Raw returns the underlying decoded value.
func (n Node) Raw() interface{} {
	return n.value
}

// IsNil reports whether the node holds a JSON null (or was never set).
func (n Node) IsNil() bool {
	return n.value == nil
}

// Key looks up a key in an object node. It returns ErrWrongType if n is
// not an object and ErrMissingKey if the key is absent.
func (n Node) Key(key string) (Node, error) {
	obj, ok := n.value.(map[string]interface{})
	if !ok {
		return Node{}, ErrWrongType{Path: key, Want: "object"}
	}
	v, ok := obj[key]
	if !ok {
		return Node{}, ErrMissingKey{Path: key, Key: key}
	}
	return Node{value: v}, nil
}

// Has reports whether an object node contains key.
func (n Node) Has(key string) bool {
	obj, ok := n.value.(map[string]interface{})
	if !ok {
		return false
	}
	_, ok = obj[key]
	return ok
}

// Index looks up a position in an array node.
func (n Node) Index(i int) (Node, error) {
	arr, ok := n.value.([]interface{})
	if !ok {
		return Node{}, ErrWrongType{Path: fmt.Sprintf("[%d]", i), Want: "array"}
	}
	if i < 0 || i >= len(arr) {
		return Node{}, fmt.Errorf("jsontree: index %d out of range (len %d)", i, len(arr))
	}
	return Node{value: arr[i]}, nil
}

// String returns the node's string value.
func (n Node) String() (string, error) {
	s, ok := n.value.(string)
	if !ok {
		return "", ErrWrongType{Want: "string"}
	}
	return s, nil
}

// Int returns the node's value coerced to an int64. It accepts the
// numeric forms a decoded document or a natively built tree holds:
// float64, int64, uint64, and int.
func (n Node) Int() (int64, error) {
	switch v := n.value.(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case uint64:
		return int64(v), nil
	case int:
		return int64(v), nil
	}
	return 0, ErrWrongType{Want: "number"}
}

// Float returns the node's value as a float64.
func (n Node) Float() (float64, error) {
	switch v := n.value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	}
	return 0, ErrWrongType{Want: "number"}
}

// Bool returns the node's boolean value.
func (n Node) Bool() (bool, error) {
	b, ok := n.value.(bool)
	if !ok {
		return false, ErrWrongType{Want: "bool"}
	}
	return b, nil
}

// Array returns the node's elements as a slice of Nodes.
func (n Node) Array() ([]Node, error) {
	arr, ok := n.value.([]interface{})
	if !ok {
		return nil, ErrWrongType{Want: "array"}
	}
	out := make([]Node, len(arr))
	for i, v := range arr {
		out[i] = Node{value: v}
	}
	return out, nil
}

// Object returns the node's keys in the iteration order Go's map
// gives (unordered); callers that need a stable member order should
// keep a side list, as the Type Codec does for compound fields.
func (n Node) Object() (map[string]Node, error) {
	obj, ok := n.value.(map[string]interface{})
	if !ok {
		return nil, ErrWrongType{Want: "object"}
	}
	out := make(map[string]Node, len(obj))
	for k, v := range obj {
		out[k] = Node{value: v}
	}
	return out, nil
}
