// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package respbuf implements the growable response buffer that a
// transport callback writes into while a request is in flight. It
// exists as its own small type, rather than a bare bytes.Buffer,
// because the semantics the spec cares about are narrower than
// bytes.Buffer's: capacity is doubled (never grown to exactly fit),
// the write cursor is reset before each request rather than on
// construction, and the buffer is NUL-terminated after each request so
// a JSON parser handed a byte slice can treat it as a C string if it
// needs to.
package respbuf

import "errors"

// ErrGrowthFailed is returned by Write if the requested capacity could
// not be reserved. It maps to the spec's ResourceExhausted error kind.
var ErrGrowthFailed = errors.New("respbuf: buffer growth failed")

// Buffer is a growable contiguous byte store with a write cursor.
type Buffer struct {
	data   []byte
	cursor int
}

// New creates a Buffer with an initial capacity. A capacity of 0
// selects a small default.
func New(initialCapacity int) *Buffer {
	if initialCapacity <= 0 {
		initialCapacity = 256
	}
	return &Buffer{data: make([]byte, initialCapacity)}
}

// Reset moves the write cursor back to the base of the buffer,
// without releasing any capacity. Call this before each request.
func (b *Buffer) Reset() {
	b.cursor = 0
}

// Write appends p to the buffer, growing capacity by doubling until
// cursor+len(p)+1 (the +1 reserves room for the trailing NUL) fits.
// It implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	need := b.cursor + len(p) + 1
	if need > cap(b.data) {
		newCap := cap(b.data)
		if newCap == 0 {
			newCap = 256
		}
		for newCap < need {
			newCap *= 2
		}
		grown := make([]byte, newCap)
		copy(grown, b.data[:b.cursor])
		b.data = grown
	}
	if len(b.data) < b.cursor+len(p) {
		// cap(b.data) may exceed len(b.data) after a copy; extend
		// the visible length to match what we're about to use.
		b.data = b.data[:cap(b.data)]
	}
	n := copy(b.data[b.cursor:], p)
	if n != len(p) {
		return n, ErrGrowthFailed
	}
	b.cursor += n
	return n, nil
}

// Terminate NUL-terminates the buffer at the current cursor position,
// without advancing the cursor. Call this once after a request
// completes and before handing the buffer to a JSON parser.
func (b *Buffer) Terminate() {
	if len(b.data) <= b.cursor {
		b.data = append(b.data, 0)
	} else {
		b.data[b.cursor] = 0
	}
}

// Bytes returns the bytes written so far (excluding the trailing
// NUL installed by Terminate).
func (b *Buffer) Bytes() []byte {
	return b.data[:b.cursor]
}

// Len returns the number of bytes written since the last Reset.
func (b *Buffer) Len() int {
	return b.cursor
}
