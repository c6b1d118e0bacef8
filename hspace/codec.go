// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package hspace

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HDFGroup/vol-rest-go/jsontree"
)

// EmitShape produces the fields to merge into a creation-request or
// describe-response JSON body for s. For Null it returns a "shape" key
// with the literal string "H5S_NULL". For Scalar it returns nothing
// (the absence of a shape key implies scalar server-side). For Simple
// it returns "shape" and, if any maximum extent differs from the
// current extent, "maxdims" (an unlimited maximum extent is encoded as
// the wire value 0).
func EmitShape(s Dataspace) map[string]interface{} {
	switch s.Class {
	case ClassNull:
		return map[string]interface{}{"shape": "H5S_NULL"}
	case ClassScalar:
		return map[string]interface{}{}
	case ClassSimple:
		out := map[string]interface{}{"shape": uint64SliceToInterface(s.Dims)}
		if needsMaxDims(s) {
			maxdims := make([]interface{}, len(s.Dims))
			for i, m := range s.MaxDims {
				if m == Unlimited {
					maxdims[i] = 0
				} else {
					maxdims[i] = m
				}
			}
			out["maxdims"] = maxdims
		}
		return out
	}
	return map[string]interface{}{}
}

func needsMaxDims(s Dataspace) bool {
	if len(s.MaxDims) == 0 {
		return false
	}
	for i, m := range s.MaxDims {
		if m != s.Dims[i] {
			return true
		}
	}
	return false
}

func uint64SliceToInterface(in []uint64) []interface{} {
	out := make([]interface{}, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

// ParseShape reads a shape representation back into a Dataspace. The
// absence of a "shape" key (or an explicit "shape":"H5S_SCALAR")
// parses as Scalar; "shape":"H5S_NULL" parses as Null; an array parses
// as Simple, with any accompanying "maxdims" translating a wire 0 back
// to Unlimited.
func ParseShape(node jsontree.Node) (Dataspace, error) {
	shapeNode, err := node.Key("shape")
	if err != nil {
		return NewScalar(), nil
	}
	if s, err := shapeNode.String(); err == nil {
		switch s {
		case "H5S_NULL":
			return NewNull(), nil
		case "H5S_SCALAR":
			return NewScalar(), nil
		}
		return Dataspace{}, fmt.Errorf("hspace: unrecognized shape class %q", s)
	}

	dimNodes, err := shapeNode.Array()
	if err != nil {
		return Dataspace{}, fmt.Errorf("hspace: \"shape\" is neither a string nor an array")
	}
	dims := make([]uint64, len(dimNodes))
	for i, d := range dimNodes {
		v, err := d.Int()
		if err != nil {
			return Dataspace{}, fmt.Errorf("hspace: shape dimension %d is not a number", i)
		}
		dims[i] = uint64(v)
	}

	var maxDims []uint64
	if node.Has("maxdims") {
		maxNode, err := node.Key("maxdims")
		if err != nil {
			return Dataspace{}, err
		}
		maxNodes, err := maxNode.Array()
		if err != nil {
			return Dataspace{}, fmt.Errorf("hspace: \"maxdims\" is not an array")
		}
		maxDims = make([]uint64, len(maxNodes))
		for i, m := range maxNodes {
			v, err := m.Int()
			if err != nil {
				return Dataspace{}, fmt.Errorf("hspace: maxdims entry %d is not a number", i)
			}
			if v == 0 {
				maxDims[i] = Unlimited
			} else {
				maxDims[i] = uint64(v)
			}
		}
	}
	return NewSimple(dims, maxDims)
}

// EmitSelectionURL produces the URL-parameter form of a regular
// hyperslab selection: "[a1:b1:s1,a2:b2:s2,...]" where bi = ai +
// stride_i*count_i and si = stride_i. All and None encode as the empty
// string; point selections are not representable in this form and
// must use EmitSelectionJSON with a POST body instead.
func EmitSelectionURL(sel Selection) (string, error) {
	switch sel.Class {
	case SelectAll, SelectNone:
		return "", nil
	case SelectPoints:
		return "", fmt.Errorf("hspace: point selections have no URL-parameter form")
	case SelectHyperslab:
		parts := make([]string, len(sel.Start))
		for i := range sel.Start {
			stop := sel.Start[i] + sel.Stride[i]*sel.Count[i]
			parts[i] = fmt.Sprintf("%d:%d:%d", sel.Start[i], stop, sel.Stride[i])
		}
		return "[" + strings.Join(parts, ",") + "]", nil
	}
	return "", fmt.Errorf("hspace: unknown selection class")
}

// EmitSelectionJSON produces the JSON-body form of a selection: points
// as "points", hyperslabs as "start"/"stop"/"step". All and None
// produce an empty map (no selection fields; the server defaults to
// the dataset's full extent).
func EmitSelectionJSON(sel Selection) (map[string]interface{}, error) {
	switch sel.Class {
	case SelectAll, SelectNone:
		return map[string]interface{}{}, nil
	case SelectPoints:
		rank := 0
		if len(sel.Coords) > 0 {
			rank = len(sel.Coords[0])
		}
		if rank > 1 {
			points := make([]interface{}, len(sel.Coords))
			for i, c := range sel.Coords {
				points[i] = uint64SliceToInterface(c)
			}
			return map[string]interface{}{"points": points}, nil
		}
		points := make([]interface{}, len(sel.Coords))
		for i, c := range sel.Coords {
			if len(c) == 0 {
				return nil, fmt.Errorf("hspace: point %d has rank 0", i)
			}
			points[i] = c[0]
		}
		return map[string]interface{}{"points": points}, nil
	case SelectHyperslab:
		stop := make([]uint64, len(sel.Start))
		for i := range sel.Start {
			stop[i] = sel.Start[i] + sel.Stride[i]*sel.Count[i]
		}
		return map[string]interface{}{
			"start": uint64SliceToInterface(sel.Start),
			"stop":  uint64SliceToInterface(stop),
			"step":  uint64SliceToInterface(sel.Stride),
		}, nil
	}
	return nil, fmt.Errorf("hspace: unknown selection class")
}

// ParsePointsBody parses a JSON-body point selection as produced by
// EmitSelectionJSON (the shape actually sent over the wire for POST
// read/write requests).
func ParsePointsBody(node jsontree.Node) (Selection, error) {
	pointsNode, err := node.Key("points")
	if err != nil {
		return Selection{}, fmt.Errorf("hspace: point selection body missing \"points\"")
	}
	pointNodes, err := pointsNode.Array()
	if err != nil {
		return Selection{}, fmt.Errorf("hspace: \"points\" is not an array")
	}
	coords := make([][]uint64, len(pointNodes))
	for i, p := range pointNodes {
		if v, err := p.Int(); err == nil {
			coords[i] = []uint64{uint64(v)}
			continue
		}
		elems, err := p.Array()
		if err != nil {
			return Selection{}, fmt.Errorf("hspace: point %d is neither a number nor an array", i)
		}
		c := make([]uint64, len(elems))
		for j, e := range elems {
			v, err := e.Int()
			if err != nil {
				return Selection{}, fmt.Errorf("hspace: point %d coordinate %d is not a number", i, j)
			}
			c[j] = uint64(v)
		}
		coords[i] = c
	}
	return NewPoints(coords)
}

// ParseSelectionURL parses the URL-parameter hyperslab form produced
// by EmitSelectionURL, e.g. "[0:10:1,0:10:1,0:1:1]".
func ParseSelectionURL(s string) (Selection, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return All(), nil
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return Selection{}, fmt.Errorf("hspace: malformed selection parameter %q", s)
	}
	inner := s[1 : len(s)-1]
	fields := strings.Split(inner, ",")
	start := make([]uint64, len(fields))
	stride := make([]uint64, len(fields))
	count := make([]uint64, len(fields))
	block := make([]uint64, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, ":")
		if len(parts) != 3 {
			return Selection{}, fmt.Errorf("hspace: malformed selection field %q", f)
		}
		a, err1 := strconv.ParseUint(parts[0], 10, 64)
		b, err2 := strconv.ParseUint(parts[1], 10, 64)
		step, err3 := strconv.ParseUint(parts[2], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			return Selection{}, fmt.Errorf("hspace: malformed selection field %q", f)
		}
		start[i] = a
		stride[i] = step
		block[i] = 1
		if step == 0 {
			count[i] = 0
		} else {
			count[i] = (b - a) / step
		}
	}
	return NewHyperslab(start, stride, count, block)
}
