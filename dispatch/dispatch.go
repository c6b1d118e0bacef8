// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package dispatch implements the I/O dispatcher: the read/write
// orchestration that normalizes a (memory selection, file selection)
// pair, picks between the binary and JSON wire formats, builds the
// request, and transfers the payload. Reference payloads pass through
// in their 48-byte wire form; the dispatcher does not call the object
// reference codec, so callers encode and decode them.
package dispatch

import (
	"net/url"

	"github.com/HDFGroup/vol-rest-go/handle"
	"github.com/HDFGroup/vol-rest-go/herrors"
	"github.com/HDFGroup/vol-rest-go/hspace"
	"github.com/HDFGroup/vol-rest-go/htype"
	"github.com/HDFGroup/vol-rest-go/pathutil"
	"github.com/HDFGroup/vol-rest-go/transport"
)

const octetStreamMediaType = "application/octet-stream"

// Dispatcher performs dataset and attribute I/O against a Transport.
type Dispatcher struct {
	Transport *transport.Transport
}

// New builds a Dispatcher bound to t.
func New(t *transport.Transport) *Dispatcher {
	return &Dispatcher{Transport: t}
}

// NumSelectedElements returns how many elements sel covers against
// space: the space's own element count for All, zero for None, and
// the selection's own cardinality otherwise.
func NumSelectedElements(space hspace.Dataspace, sel hspace.Selection) (uint64, error) {
	switch sel.Class {
	case hspace.SelectAll:
		return space.NumElements(), nil
	case hspace.SelectNone:
		return 0, nil
	default:
		return sel.NumPoints()
	}
}

// Normalize applies the All-selection rules: if the memory selection
// is All, it is replaced by a copy of the file selection; the file
// selection itself is never rewritten (All over the dataset's own
// space already means "everything"). It then asserts the two
// selections cover the same number of elements.
func Normalize(fileSpace, memSpace hspace.Dataspace, fileSel, memSel hspace.Selection) (hspace.Selection, hspace.Selection, error) {
	if memSel.Class == hspace.SelectAll {
		memSel = fileSel
	}

	fileCount, err := NumSelectedElements(fileSpace, fileSel)
	if err != nil {
		return hspace.Selection{}, hspace.Selection{}, err
	}
	memCount, err := NumSelectedElements(memSpace, memSel)
	if err != nil {
		return hspace.Selection{}, hspace.Selection{}, err
	}
	if fileCount != memCount {
		return hspace.Selection{}, hspace.Selection{}, herrors.ErrInvalidArgument{
			Reason: "memory and file selections do not cover the same number of elements",
		}
	}
	return fileSel, memSel, nil
}

// isBinaryEligible reports whether dt can travel in the binary wire
// format: every class except a variable-length string.
func isBinaryEligible(dt *htype.Datatype) bool {
	return !(dt.Class == htype.ClassString && dt.Variable)
}

func valueURL(t *transport.Transport, uri string) (*url.URL, error) {
	return t.Template("datasets/{uri}/value", map[string]interface{}{"uri": uri})
}

// valueResponse is the JSON-body shape used for non-binary reads: the
// object service wraps the element array under "value".
type valueResponse struct {
	Value []interface{} `json:"value" codec:"value"`
}

// ReadDataset reads ds's data under fileSel (in ds's own dataspace)
// for datatype dt. It returns either the raw binary payload (fixed-
// length types) or the decoded JSON element array re-flattened to
// interface{} values (variable-length strings, which must travel as
// JSON); reference-typed reads should be passed through href.Decode by
// the caller.
func (d *Dispatcher) ReadDataset(ds *handle.Handle, dt *htype.Datatype, memSpace hspace.Dataspace, memSel, fileSel hspace.Selection) ([]byte, []interface{}, error) {
	fileSel, memSel, err := Normalize(ds.Dataspace, memSpace, fileSel, memSel)
	if err != nil {
		return nil, nil, err
	}
	_ = memSel // validated above; memory-side scatter is the caller's responsibility

	count, err := NumSelectedElements(ds.Dataspace, fileSel)
	if err != nil {
		return nil, nil, err
	}
	if count == 0 {
		return nil, nil, nil
	}

	target, err := valueURL(d.Transport, ds.URI)
	if err != nil {
		return nil, nil, err
	}

	binary := isBinaryEligible(dt)

	if fileSel.Class == hspace.SelectPoints {
		body, err := hspace.EmitSelectionJSON(fileSel)
		if err != nil {
			return nil, nil, err
		}
		return d.readValue(target, "POST", body, binary)
	}

	if fileSel.Class == hspace.SelectHyperslab {
		if binary {
			if selParam, err := hspace.EmitSelectionURL(fileSel); err == nil && selParam != "" {
				q := target.Query()
				q.Set("select", selParam)
				target.RawQuery = q.Encode()
			}
		} else {
			body, err := hspace.EmitSelectionJSON(fileSel)
			if err != nil {
				return nil, nil, err
			}
			return d.readValue(target, "POST", body, binary)
		}
	}

	return d.readValue(target, "GET", nil, binary)
}

func (d *Dispatcher) readValue(target *url.URL, method string, body interface{}, binary bool) ([]byte, []interface{}, error) {
	if binary {
		raw, err := d.Transport.DoRaw(method, target, body, nil, "")
		if err != nil {
			return nil, nil, err
		}
		return raw, nil, nil
	}
	var resp valueResponse
	if err := d.Transport.Do(method, target, body, nil, "", &resp); err != nil {
		return nil, nil, err
	}
	return nil, resp.Value, nil
}

// WriteDataset writes data (already in wire form for its datatype —
// callers writing reference data must first call href.Encode) to ds
// under fileSel. For non-binary datatypes, jsonValues carries the
// element array instead.
func (d *Dispatcher) WriteDataset(ds *handle.Handle, dt *htype.Datatype, memSpace hspace.Dataspace, memSel, fileSel hspace.Selection, data []byte, jsonValues []interface{}) error {
	fileSel, _, err := Normalize(ds.Dataspace, memSpace, fileSel, memSel)
	if err != nil {
		return err
	}

	count, err := NumSelectedElements(ds.Dataspace, fileSel)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	target, err := valueURL(d.Transport, ds.URI)
	if err != nil {
		return err
	}

	binary := isBinaryEligible(dt)

	if fileSel.Class == hspace.SelectHyperslab {
		if selParam, err := hspace.EmitSelectionURL(fileSel); err == nil && selParam != "" {
			q := target.Query()
			q.Set("select", selParam)
			target.RawQuery = q.Encode()
		}
	}

	if binary {
		return d.Transport.Do("PUT", target, nil, data, octetStreamMediaType, nil)
	}

	selFields, err := hspace.EmitSelectionJSON(fileSel)
	if err != nil {
		return err
	}
	selFields["value"] = jsonValues
	return d.Transport.Do("PUT", target, selFields, nil, "", nil)
}

// attributeValueURL builds the `/{collection}/<uri>/attributes/<name>/value`
// URL for an attribute handle.
func attributeValueURL(t *transport.Transport, attr *handle.Handle) (*url.URL, error) {
	collection, err := handle.ParentKindURI(attr.Parent)
	if err != nil {
		return nil, err
	}
	return t.Template("{collection}/{uri}/attributes/{name}/value", map[string]interface{}{
		"collection": collection,
		"uri":        attr.Parent.URI,
		"name":       pathutil.EncodeName(attr.Name),
	})
}

// ReadAttribute transfers an entire attribute value in one call; no
// sub-selection is supported.
func (d *Dispatcher) ReadAttribute(attr *handle.Handle) ([]byte, []interface{}, error) {
	target, err := attributeValueURL(d.Transport, attr)
	if err != nil {
		return nil, nil, err
	}
	binary := isBinaryEligible(attr.Datatype)
	return d.readValue(target, "GET", nil, binary)
}

// WriteAttribute transfers an entire attribute value in one call.
func (d *Dispatcher) WriteAttribute(attr *handle.Handle, data []byte, jsonValues []interface{}) error {
	target, err := attributeValueURL(d.Transport, attr)
	if err != nil {
		return err
	}
	if isBinaryEligible(attr.Datatype) {
		return d.Transport.Do("PUT", target, nil, data, octetStreamMediaType, nil)
	}
	return d.Transport.Do("PUT", target, map[string]interface{}{"value": jsonValues}, nil, "", nil)
}
