// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package locator implements the object locator: resolving a path
// relative to a parent object into a server URI, discovering the
// target's kind along the way when the caller does not already know
// it.
package locator

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/HDFGroup/vol-rest-go/handle"
	"github.com/HDFGroup/vol-rest-go/herrors"
	"github.com/HDFGroup/vol-rest-go/jsontree"
	"github.com/HDFGroup/vol-rest-go/pathutil"
	"github.com/HDFGroup/vol-rest-go/respparse"
	"github.com/HDFGroup/vol-rest-go/transport"
)

// Status classifies the outcome of a Locate call.
type Status int

const (
	StatusFound Status = iota
	StatusNotFound
	StatusError
)

// Result is the outcome of resolving a path.
type Result struct {
	Status Status
	Kind   handle.Kind
	URI    string
}

// trimRelative strips leading whitespace and leading ".." path
// components, which this model treats as referring to current-group
// siblings rather than to a parent group.
func trimRelative(path string) string {
	path = strings.TrimLeft(path, " \t")
	for strings.HasPrefix(path, "../") {
		path = path[3:]
	}
	path = strings.TrimPrefix(path, "..")
	return path
}

// Locate resolves path relative to parent. If kindKnown is false, kind
// is ignored and the target's kind is discovered via a links query
// before the final resolution request.
func Locate(t *transport.Transport, parent *handle.Handle, path string, kind handle.Kind, kindKnown bool) (Result, error) {
	if path == "/" {
		return Result{Status: StatusFound, Kind: handle.KindGroup, URI: parent.File.URI}, nil
	}

	path = trimRelative(path)

	if !kindKnown {
		discovered, err := discoverKind(t, parent, path)
		if err != nil {
			return Result{}, err
		}
		if discovered.Status != StatusFound {
			return discovered, nil
		}
		kind = discovered.Kind
	}

	return resolve(t, parent, path, kind)
}

// discoverKind computes dirname(path), recursively locates it as a
// Group to obtain a parent URI (or falls back to the supplied parent
// if dirname is empty), then queries the link directly under that
// group to read its collection field.
func discoverKind(t *transport.Transport, parent *handle.Handle, path string) (Result, error) {
	dir := pathutil.Dirname(path)
	base := pathutil.Basename(path)

	groupURI := parent.URI
	if dir != "" {
		dirResult, err := Locate(t, parent, dir, handle.KindGroup, true)
		if err != nil {
			return Result{}, err
		}
		if dirResult.Status != StatusFound {
			return dirResult, nil
		}
		groupURI = dirResult.URI
	}

	target, err := t.Template("groups/{parent}/links/{name}", map[string]interface{}{
		"parent": groupURI,
		"name":   base,
	})
	if err != nil {
		return Result{}, err
	}

	var body map[string]interface{}
	err = t.Get(target, &body)
	switch {
	case err == nil:
		// fall through
	case herrors.IsNotFound(err):
		return Result{Status: StatusNotFound}, nil
	default:
		return Result{}, err
	}

	kind, ok, err := respparse.GetLinkType(jsontree.Wrap(body))
	if err != nil {
		return Result{}, err
	}
	if !ok {
		// Soft/external/user-defined link: no URI is available from
		// this query alone.
		return Result{Status: StatusNotFound}, nil
	}
	return Result{Status: StatusFound, Kind: kind}, nil
}

// resolve issues the single kind-specific resolution request and
// extracts the object's URI from the response.
func resolve(t *transport.Transport, parent *handle.Handle, path string, kind handle.Kind) (Result, error) {
	var template string
	values := url.Values{"h5path": {path}}

	switch kind {
	case handle.KindGroup:
		template = "groups/{parent}/"
		if parent.Kind != handle.KindFile {
			values.Set("grpid", parent.URI)
		}
	case handle.KindDataset:
		template = "datasets/"
		values.Set("grpid", parent.URI)
	case handle.KindDatatype:
		template = "datatypes/"
		values.Set("grpid", parent.URI)
	default:
		return Result{}, fmt.Errorf("locator: cannot resolve a path to kind %s", kind)
	}

	vars := map[string]interface{}{"parent": parent.URI}
	target, err := t.Template(template, vars)
	if err != nil {
		return Result{}, err
	}
	target.RawQuery = values.Encode()

	var body map[string]interface{}
	err = t.Get(target, &body)
	switch {
	case err == nil:
		// fall through
	case herrors.IsNotFound(err):
		return Result{Status: StatusNotFound}, nil
	default:
		return Result{}, err
	}

	uri, ok, err := respparse.CopyObjectURI(jsontree.Wrap(body))
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Status: StatusNotFound}, nil
	}
	return Result{Status: StatusFound, Kind: kind, URI: uri}, nil
}
