// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package handle implements the object handle data model: the tagged
// record the façade hands back from every open/create call, carrying
// just enough state for the codecs and dispatcher to operate without
// re-querying the server.
package handle

import (
	"fmt"

	"github.com/HDFGroup/vol-rest-go/dcpl"
	"github.com/HDFGroup/vol-rest-go/herrors"
	"github.com/HDFGroup/vol-rest-go/hspace"
	"github.com/HDFGroup/vol-rest-go/htype"
)

// Kind identifies which variant of Handle is populated.
type Kind int

const (
	KindFile Kind = iota
	KindGroup
	KindDataset
	KindDatatype
	KindAttribute
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "File"
	case KindGroup:
		return "Group"
	case KindDataset:
		return "Dataset"
	case KindDatatype:
		return "Datatype"
	case KindAttribute:
		return "Attribute"
	}
	return "Unknown"
}

// Intent mirrors the file access mode a File handle was opened with.
type Intent int

const (
	IntentReadOnly Intent = iota
	IntentReadWrite
)

// Handle is a tagged record over File, Group, Dataset, Datatype, and
// Attribute. File is non-owning in every variant except File itself,
// which self-references: File.File == the handle itself.
type Handle struct {
	Kind Kind
	URI  string
	File *Handle

	// File
	Filepath string
	Intent   Intent

	// Dataset / Datatype / Attribute
	Datatype  *htype.Datatype
	Dataspace hspace.Dataspace

	// Attribute
	Parent *Handle
	Name   string

	// Creation properties, present on File, Dataset, Datatype, and
	// Attribute.
	CreationProps dcpl.PropertyList
}

// NewFile builds a root File handle. Its File back-reference points
// to itself.
func NewFile(uri, filepath string, intent Intent, props dcpl.PropertyList) *Handle {
	h := &Handle{
		Kind:          KindFile,
		URI:           uri,
		Filepath:      filepath,
		Intent:        intent,
		CreationProps: props,
	}
	h.File = h
	return h
}

// NewGroup builds a Group handle under file.
func NewGroup(file *Handle, uri string) (*Handle, error) {
	if err := requireFile(file); err != nil {
		return nil, err
	}
	return &Handle{Kind: KindGroup, URI: uri, File: file}, nil
}

// NewDataset builds a Dataset handle under file.
func NewDataset(file *Handle, uri string, dt *htype.Datatype, space hspace.Dataspace, props dcpl.PropertyList) (*Handle, error) {
	if err := requireFile(file); err != nil {
		return nil, err
	}
	if dt == nil {
		return nil, herrors.ErrInvalidArgument{Reason: "dataset handle requires a materialized datatype"}
	}
	return &Handle{
		Kind:          KindDataset,
		URI:           uri,
		File:          file,
		Datatype:      dt,
		Dataspace:     space,
		CreationProps: props,
	}, nil
}

// NewDatatype builds a committed-Datatype handle under file.
func NewDatatype(file *Handle, uri string, dt *htype.Datatype, props dcpl.PropertyList) (*Handle, error) {
	if err := requireFile(file); err != nil {
		return nil, err
	}
	if dt == nil {
		return nil, herrors.ErrInvalidArgument{Reason: "datatype handle requires a materialized type"}
	}
	return &Handle{
		Kind:          KindDatatype,
		URI:           uri,
		File:          file,
		Datatype:      dt,
		CreationProps: props,
	}, nil
}

// NewAttribute builds an Attribute handle on parent.
func NewAttribute(parent *Handle, name string, dt *htype.Datatype, space hspace.Dataspace, props dcpl.PropertyList) (*Handle, error) {
	if parent == nil {
		return nil, herrors.ErrInvalidArgument{Reason: "attribute handle requires a parent object"}
	}
	if err := requireFile(parent.File); err != nil {
		return nil, err
	}
	if dt == nil {
		return nil, herrors.ErrInvalidArgument{Reason: "attribute handle requires a materialized datatype"}
	}
	return &Handle{
		Kind:          KindAttribute,
		File:          parent.File,
		Parent:        parent,
		Name:          name,
		Datatype:      dt,
		Dataspace:     space,
		CreationProps: props,
	}, nil
}

func requireFile(file *Handle) error {
	if file == nil || file.Kind != KindFile {
		return herrors.ErrInvalidArgument{Reason: "handle requires a valid owning file handle"}
	}
	return nil
}

// Close releases the handle's typed resources. It never contacts the
// server; network-visible deletion is a separate operation.
func (h *Handle) Close() {
	h.Datatype = nil
	h.Dataspace = hspace.Dataspace{}
	h.Parent = nil
}

// ParentKindURI returns the collection URI segment ("groups",
// "datasets", "datatypes") that an attribute's parent belongs under,
// used to build the attribute path
// `/{collection}/<uri>/attributes/<name>`.
func ParentKindURI(parent *Handle) (string, error) {
	switch parent.Kind {
	case KindGroup, KindFile:
		return "groups", nil
	case KindDataset:
		return "datasets", nil
	case KindDatatype:
		return "datatypes", nil
	}
	return "", fmt.Errorf("handle: kind %s cannot own an attribute", parent.Kind)
}
