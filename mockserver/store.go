// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package mockserver implements a test-only, in-process object
// service: just enough of the HTTP protocol table (spec §6) to drive
// the end-to-end scenarios in spec §8 without a real HDF5-backed
// server. It is never part of the module's public surface; production
// callers speak to a real object service over transport.Transport.
package mockserver

import (
	"strings"
	"sync"

	"github.com/satori/go.uuid"

	"github.com/HDFGroup/vol-rest-go/herrors"
)

// link is one named entry in a group, either a hard link to a local
// object or (unmodeled here) a soft/external link.
type link struct {
	collection string // "groups", "datasets", or "datatypes"
	targetURI  string
}

// group is a server-side group object: a set of named links plus its
// own attribute collection.
type group struct {
	uri   string
	links map[string]link
	attrs map[string]*attribute
}

// dataset is a server-side dataset object: its type/shape/creation
// properties as the client's codecs produced them, plus the backing
// value storage and attribute collection.
type dataset struct {
	uri           string
	typeNode      interface{}
	shape         map[string]interface{}
	creationProps map[string]interface{}
	values        valueBuffer
	attrs         map[string]*attribute
}

// datatype is a server-side committed datatype object.
type datatype struct {
	uri      string
	typeNode interface{}
	attrs    map[string]*attribute
}

// attribute is a server-side attribute value, attached to a group,
// dataset, or datatype. Attributes have no sub-selection: their value
// is always transferred whole.
type attribute struct {
	name     string
	typeNode interface{}
	shape    map[string]interface{}
	values   valueBuffer
}

// Store holds every object the mock service currently knows about. A
// single Store backs one mock file.
type Store struct {
	mu sync.Mutex

	rootURI string

	groups    map[string]*group
	datasets  map[string]*dataset
	datatypes map[string]*datatype
}

// NewStore builds a Store pre-populated with an empty root group.
func NewStore() *Store {
	root := &group{uri: "g-root", links: map[string]link{}, attrs: map[string]*attribute{}}
	return &Store{
		rootURI:   root.uri,
		groups:    map[string]*group{root.uri: root},
		datasets:  map[string]*dataset{},
		datatypes: map[string]*datatype{},
	}
}

// newURI generates a synthetic object id short enough that even a
// "datatypes/" reference slot (the longest collection prefix) leaves
// room for the href codec's fixed 48-byte encoding: a single-letter
// collection tag plus 16 hex digits trimmed from a v4 UUID, well under
// the real object service's own id length.
func newURI(prefix string) string {
	id := strings.Replace(uuid.NewV4().String(), "-", "", -1)
	return prefix + "-" + id[:16]
}

// collectionFor reports which collection a generated URI's prefix
// names, mirroring href's "infer target_type from the first character
// of the URI" convention.
func collectionFor(uri string) (string, bool) {
	if len(uri) == 0 {
		return "", false
	}
	switch uri[0] {
	case 'g':
		return "groups", true
	case 'd':
		return "datasets", true
	case 't':
		return "datatypes", true
	}
	return "", false
}

// attachLink records name -> targetURI under the group at parentURI.
func (s *Store) attachLink(parentURI, name, collection, targetURI string) error {
	g, ok := s.groups[parentURI]
	if !ok {
		return herrors.ErrInvalidArgument{Reason: "link parent group does not exist"}
	}
	g.links[name] = link{collection: collection, targetURI: targetURI}
	return nil
}
