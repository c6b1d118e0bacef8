// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/HDFGroup/vol-rest-go/dcpl"
	"github.com/HDFGroup/vol-rest-go/handle"
	"github.com/HDFGroup/vol-rest-go/hspace"
	"github.com/HDFGroup/vol-rest-go/htype"
	"github.com/HDFGroup/vol-rest-go/jsontree"
	"github.com/HDFGroup/vol-rest-go/transport"
)

// openDataset fetches a dataset's description and builds the Dataset
// handle the dispatcher needs to read or write its value.
func openDataset(tr *transport.Transport, file *handle.Handle, uri string) (*handle.Handle, error) {
	target, err := tr.Template("datasets/{uri}", map[string]interface{}{"uri": uri})
	if err != nil {
		return nil, err
	}
	var resp map[string]interface{}
	if err := tr.Get(target, &resp); err != nil {
		return nil, err
	}
	node := jsontree.Wrap(resp)

	typeNode, err := node.Key("type")
	if err != nil {
		return nil, fmt.Errorf("dataset description missing \"type\"")
	}
	dt, err := htype.Parse(typeNode, htype.DefaultMaxDepth)
	if err != nil {
		return nil, err
	}

	space, err := hspace.ParseShape(node)
	if err != nil {
		return nil, err
	}

	props := dcpl.Default()
	if propsNode, err := node.Key("creationProperties"); err == nil {
		if parsed, err := dcpl.Parse(propsNode); err == nil {
			props = parsed
		}
	}

	return handle.NewDataset(file, uri, dt, space, props)
}

// encodeInt32LE packs a slice of signed 32-bit integers into their
// little-endian wire form.
func encodeInt32LE(values []int32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

// decodeInt32LE is the inverse of encodeInt32LE.
func decodeInt32LE(buf []byte) []int32 {
	values := make([]int32, len(buf)/4)
	for i := range values {
		values[i] = int32(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return values
}

// formatInt32LE renders a little-endian int32 buffer as a bracketed,
// comma-separated list for console output.
func formatInt32LE(buf []byte) string {
	values := decodeInt32LE(buf)
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
