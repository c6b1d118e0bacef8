// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package reqbuild implements the request builder: composing the
// single JSON object a dataset or committed-datatype creation sends
// as its request body, merging the type, shape, maxdims,
// creation-properties, and link sections.
package reqbuild

import (
	"github.com/HDFGroup/vol-rest-go/dcpl"
	"github.com/HDFGroup/vol-rest-go/handle"
	"github.com/HDFGroup/vol-rest-go/herrors"
	"github.com/HDFGroup/vol-rest-go/hspace"
	"github.com/HDFGroup/vol-rest-go/htype"
	"github.com/HDFGroup/vol-rest-go/locator"
	"github.com/HDFGroup/vol-rest-go/pathutil"
	"github.com/HDFGroup/vol-rest-go/transport"
)

// Link names the creation's attachment point: {"id":"<parent-uri>",
// "name":"<basename>"}. A create with no Link is anonymous.
type Link struct {
	ParentURI string
	Name      string
}

// DatasetRequest builds a dataset-creation request body.
func DatasetRequest(dt *htype.Datatype, space hspace.Dataspace, props dcpl.PropertyList, link *Link, maxDepth int) (map[string]interface{}, error) {
	body := map[string]interface{}{}

	typeValue, err := htype.Emit(dt, maxDepth)
	if err != nil {
		return nil, err
	}
	body["type"] = typeValue

	shapeFields := hspace.EmitShape(space)
	for k, v := range shapeFields {
		body[k] = v
	}

	creationProps, err := dcpl.Emit(props)
	if err != nil {
		return nil, err
	}
	body["creationProperties"] = creationProps

	if link != nil {
		body["link"] = map[string]interface{}{"id": link.ParentURI, "name": link.Name}
	}

	return body, nil
}

// DatatypeCommitRequest builds a committed-datatype creation request
// body: just the type and an optional link section.
func DatatypeCommitRequest(dt *htype.Datatype, link *Link, maxDepth int) (map[string]interface{}, error) {
	typeValue, err := htype.Emit(dt, maxDepth)
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{"type": typeValue}
	if link != nil {
		body["link"] = map[string]interface{}{"id": link.ParentURI, "name": link.Name}
	}
	return body, nil
}

// ResolveLink builds the Link section for a named (non-anonymous)
// create at path relative to parent. When path has multiple
// components, the enclosing group is first resolved via the object
// locator; the create itself always attaches by basename under that
// group.
func ResolveLink(t *transport.Transport, parent *handle.Handle, path string) (*Link, error) {
	if path == "" {
		return nil, nil
	}

	dir := pathutil.Dirname(path)
	base := pathutil.Basename(path)
	if base == "" {
		return nil, herrors.ErrInvalidArgument{Reason: "create path must name a basename"}
	}

	if dir == "" || dir == "/" {
		return &Link{ParentURI: parent.URI, Name: base}, nil
	}

	result, err := locator.Locate(t, parent, dir, handle.KindGroup, true)
	if err != nil {
		return nil, err
	}
	if result.Status != locator.StatusFound {
		return nil, herrors.ErrInvalidArgument{Reason: "create path's enclosing group does not exist"}
	}
	return &Link{ParentURI: result.URI, Name: base}, nil
}
