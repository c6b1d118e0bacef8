// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package respparse implements the small, pure response-parse
// callbacks that turn a decoded response body into one typed output
// apiece: an object URI, a link's target kind, an attribute count,
// group info, or a populated creation property list.
package respparse

import (
	"fmt"

	"github.com/HDFGroup/vol-rest-go/dcpl"
	"github.com/HDFGroup/vol-rest-go/handle"
	"github.com/HDFGroup/vol-rest-go/jsontree"
)

// LinkClass distinguishes a hard link (which resolves to a URI and a
// target kind) from a soft or external link (which does not, and is
// reported by short-circuit rather than by error).
type LinkClass int

const (
	LinkHard LinkClass = iota
	LinkSoft
	LinkExternal
	LinkUserDefined
)

func parseLinkClass(s string) LinkClass {
	switch s {
	case "H5L_TYPE_SOFT":
		return LinkSoft
	case "H5L_TYPE_EXTERNAL":
		return LinkExternal
	case "H5L_TYPE_USER":
		return LinkUserDefined
	}
	return LinkHard
}

// CopyObjectURI extracts the object's own URI from a response body.
// It tries, in order, "link.id", "id", and "root"; soft, external, and
// user-defined links are recognized via the "class" key and reported
// as a short-circuit (ok=false) rather than an error, since they
// carry no resolvable URI of their own.
func CopyObjectURI(node jsontree.Node) (uri string, ok bool, err error) {
	if classNode, err := node.Key("class"); err == nil {
		if s, err := classNode.String(); err == nil {
			if class := parseLinkClass(s); class != LinkHard {
				return "", false, nil
			}
		}
	}

	if linkNode, err := node.Key("link"); err == nil {
		if idNode, err := linkNode.Key("id"); err == nil {
			if s, err := idNode.String(); err == nil {
				return s, true, nil
			}
		}
	}
	if idNode, err := node.Key("id"); err == nil {
		if s, err := idNode.String(); err == nil {
			return s, true, nil
		}
	}
	if rootNode, err := node.Key("root"); err == nil {
		if s, err := rootNode.String(); err == nil {
			return s, true, nil
		}
	}
	return "", false, fmt.Errorf("respparse: no recognizable object URI key present")
}

// GetLinkType maps a link description's "link.collection" field to a
// handle.Kind. Soft and external links short-circuit with ok=false.
func GetLinkType(node jsontree.Node) (kind handle.Kind, ok bool, err error) {
	linkNode, err := node.Key("link")
	if err != nil {
		return 0, false, fmt.Errorf("respparse: response missing \"link\"")
	}
	if classNode, err := linkNode.Key("class"); err == nil {
		if s, err := classNode.String(); err == nil {
			if class := parseLinkClass(s); class != LinkHard {
				return 0, false, nil
			}
		}
	}
	collNode, err := linkNode.Key("collection")
	if err != nil {
		return 0, false, fmt.Errorf("respparse: link missing \"collection\"")
	}
	coll, err := collNode.String()
	if err != nil {
		return 0, false, fmt.Errorf("respparse: \"collection\" is not a string")
	}
	switch coll {
	case "groups":
		return handle.KindGroup, true, nil
	case "datasets":
		return handle.KindDataset, true, nil
	case "datatypes":
		return handle.KindDatatype, true, nil
	}
	return 0, false, fmt.Errorf("respparse: unrecognized link collection %q", coll)
}

// RetrieveAttributeCount reads "attributeCount" from a group/dataset/
// datatype description response.
func RetrieveAttributeCount(node jsontree.Node) (int64, error) {
	countNode, err := node.Key("attributeCount")
	if err != nil {
		return 0, fmt.Errorf("respparse: response missing \"attributeCount\"")
	}
	n, err := countNode.Int()
	if err != nil {
		return 0, fmt.Errorf("respparse: \"attributeCount\" is not a number")
	}
	return n, nil
}

// GroupInfo is the subset of H5G_info_t this client can populate from
// the object service's group description response.
type GroupInfo struct {
	LinkCount   int64
	StorageType int
	MaxCorder   int64
	Mounted     bool
}

// GetGroupInfo reads "linkCount" and fills in the remaining H5G_info_t
// fields with the fixed sentinels the object service implies: an
// unspecified storage type, no tracked max creation order, and never
// mounted (the object service has no concept of file mounting).
func GetGroupInfo(node jsontree.Node) (GroupInfo, error) {
	countNode, err := node.Key("linkCount")
	if err != nil {
		return GroupInfo{}, fmt.Errorf("respparse: response missing \"linkCount\"")
	}
	n, err := countNode.Int()
	if err != nil {
		return GroupInfo{}, fmt.Errorf("respparse: \"linkCount\" is not a number")
	}
	return GroupInfo{
		LinkCount:   n,
		StorageType: -1,
		MaxCorder:   0,
		Mounted:     false,
	}, nil
}

// ParseDatasetCreationProperties ingests the "creationProperties"
// subtree of a dataset description response and applies it to a DCPL.
func ParseDatasetCreationProperties(node jsontree.Node) (dcpl.PropertyList, error) {
	propsNode, err := node.Key("creationProperties")
	if err != nil {
		return dcpl.PropertyList{}, fmt.Errorf("respparse: response missing \"creationProperties\"")
	}
	return dcpl.Parse(propsNode)
}
