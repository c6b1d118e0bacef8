// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package mockserver

import (
	"io/ioutil"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/HDFGroup/vol-rest-go/href"
	"github.com/HDFGroup/vol-rest-go/hspace"
	"github.com/HDFGroup/vol-rest-go/htype"
	"github.com/HDFGroup/vol-rest-go/jsontree"
)

func asStringMap(v interface{}) map[string]interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return m
}

// elemSizeFor returns the fixed per-element wire size this store
// should use for dt: the reference codec's own slot size for
// H5T_STD_REF_OBJ data (htype.Size refuses reference types, since
// their wire size is the object reference codec's concern, not the
// type model's), htype.Size's answer for every other fixed-size
// class, and 0 (the JSON element-array form) for anything without a
// fixed size, such as a variable-length string.
func elemSizeFor(dt *htype.Datatype) int {
	if dt.Class == htype.ClassReference {
		return href.SlotSize
	}
	if size, err := htype.Size(dt); err == nil {
		return size
	}
	return 0
}

// resolveElemSize is elemSizeFor, but first follows a committed-type
// reference to the datatype it names so a committed-type dataset or
// attribute gets the same wire-format treatment it would once its
// base class is known, instead of falling back to the JSON form
// htype.Size's error for ClassCommitted would otherwise force.
func (s *Server) resolveElemSize(dt *htype.Datatype) int {
	for depth := 0; depth < 4 && dt.Class == htype.ClassCommitted; depth++ {
		committed, ok := s.Store.datatypes[dt.CommittedURI]
		if !ok {
			return 0
		}
		resolved, err := htype.Parse(jsontree.Wrap(committed.typeNode), htype.DefaultMaxDepth)
		if err != nil {
			return 0
		}
		dt = resolved
	}
	return elemSizeFor(dt)
}

// --- file ---

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		writeJSON(w, http.StatusCreated, map[string]interface{}{"root": s.Store.rootURI})
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]interface{}{"root": s.Store.rootURI})
	case http.MethodDelete:
		w.WriteHeader(http.StatusOK)
	}
}

// --- groups ---

func (s *Server) createGroup(w http.ResponseWriter, r *http.Request) {
	body, err := decodeJSONBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	g := &group{uri: newURI("g"), links: map[string]link{}, attrs: map[string]*attribute{}}
	s.Store.groups[g.uri] = g

	if linkBody, ok := body["link"]; ok {
		l := asStringMap(linkBody)
		parentURI, _ := l["id"].(string)
		name, _ := l["name"].(string)
		if err := s.Store.attachLink(parentURI, name, "groups", g.uri); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": g.uri})
}

func (s *Server) groupByURI(w http.ResponseWriter, r *http.Request) {
	uri := mux.Vars(r)["uri"]

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	if h5path := r.URL.Query().Get("h5path"); h5path != "" {
		l, ok := s.Store.walk(uri, h5path)
		if !ok || l.collection != "groups" {
			writeError(w, http.StatusNotFound, "no such group")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": l.targetURI})
		return
	}

	g, ok := s.Store.groups[uri]
	if !ok {
		writeError(w, http.StatusNotFound, "no such group")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":             g.uri,
		"linkCount":      len(g.links),
		"attributeCount": len(g.attrs),
	})
}

func (s *Server) linkHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	uri, name := vars["uri"], vars["name"]

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	g, ok := s.Store.groups[uri]
	if !ok {
		writeError(w, http.StatusNotFound, "no such group")
		return
	}

	switch r.Method {
	case http.MethodGet:
		l, ok := g.links[name]
		if !ok {
			writeError(w, http.StatusNotFound, "no such link")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"link": map[string]interface{}{"collection": l.collection, "id": l.targetURI},
		})

	case http.MethodPut:
		body, err := decodeJSONBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		targetURI, _ := body["id"].(string)
		collection, ok := collectionFor(targetURI)
		if !ok {
			writeError(w, http.StatusBadRequest, "link target id has no recognizable collection")
			return
		}
		g.links[name] = link{collection: collection, targetURI: targetURI}
		w.WriteHeader(http.StatusCreated)

	case http.MethodDelete:
		if _, ok := g.links[name]; !ok {
			writeError(w, http.StatusNotFound, "no such link")
			return
		}
		delete(g.links, name)
		w.WriteHeader(http.StatusOK)
	}
}

// --- datasets ---

func (s *Server) createDataset(w http.ResponseWriter, r *http.Request) {
	body, err := decodeJSONBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	dt, err := htype.Parse(jsontree.Wrap(body["type"]), htype.DefaultMaxDepth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	space, err := hspace.ParseShape(jsontree.Wrap(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	shapeFields := map[string]interface{}{}
	if v, ok := body["shape"]; ok {
		shapeFields["shape"] = v
	}
	if v, ok := body["maxdims"]; ok {
		shapeFields["maxdims"] = v
	}

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	elemSize := s.resolveElemSize(dt)

	ds := &dataset{
		uri:           newURI("d"),
		typeNode:      body["type"],
		shape:         shapeFields,
		creationProps: asStringMap(body["creationProperties"]),
		values:        newValueBuffer(elemSize, space.NumElements()),
		attrs:         map[string]*attribute{},
	}
	s.Store.datasets[ds.uri] = ds

	if linkBody, ok := body["link"]; ok {
		l := asStringMap(linkBody)
		parentURI, _ := l["id"].(string)
		name, _ := l["name"].(string)
		if err := s.Store.attachLink(parentURI, name, "datasets", ds.uri); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": ds.uri})
}

func (s *Server) resolveDataset(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h5path := q.Get("h5path")
	grpid := q.Get("grpid")

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	if grpid == "" {
		grpid = s.Store.rootURI
	}
	l, ok := s.Store.walk(grpid, h5path)
	if !ok || l.collection != "datasets" {
		writeError(w, http.StatusNotFound, "no such dataset")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": l.targetURI})
}

func (s *Server) datasetByURI(w http.ResponseWriter, r *http.Request) {
	uri := mux.Vars(r)["uri"]

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	ds, ok := s.Store.datasets[uri]
	if !ok {
		writeError(w, http.StatusNotFound, "no such dataset")
		return
	}
	body := map[string]interface{}{
		"id":                 ds.uri,
		"type":               ds.typeNode,
		"creationProperties": ds.creationProps,
		"attributeCount":     len(ds.attrs),
	}
	for k, v := range ds.shape {
		body[k] = v
	}
	writeJSON(w, http.StatusOK, body)
}

// parseValueSelection extracts the Selection a read/write request
// names: the "select" URL parameter for binary hyperslab transfers,
// a JSON "points" body for point selections, a JSON "start"/"stop"/
// "step" body for non-binary hyperslab transfers, or All otherwise.
func parseValueSelection(r *http.Request, body map[string]interface{}) (hspace.Selection, error) {
	if sel := r.URL.Query().Get("select"); sel != "" {
		return hspace.ParseSelectionURL(sel)
	}
	if _, ok := body["points"]; ok {
		return hspace.ParsePointsBody(jsontree.Wrap(body))
	}
	if _, ok := body["start"]; ok {
		return parseJSONHyperslab(body)
	}
	return hspace.All(), nil
}

func parseJSONHyperslab(body map[string]interface{}) (hspace.Selection, error) {
	node := jsontree.Wrap(body)
	startNode, err := node.Key("start")
	if err != nil {
		return hspace.Selection{}, err
	}
	stopNode, err := node.Key("stop")
	if err != nil {
		return hspace.Selection{}, err
	}
	stepNode, err := node.Key("step")
	if err != nil {
		return hspace.Selection{}, err
	}
	startNodes, err := startNode.Array()
	if err != nil {
		return hspace.Selection{}, err
	}
	stopNodes, err := stopNode.Array()
	if err != nil {
		return hspace.Selection{}, err
	}
	stepNodes, err := stepNode.Array()
	if err != nil {
		return hspace.Selection{}, err
	}

	rank := len(startNodes)
	start := make([]uint64, rank)
	stride := make([]uint64, rank)
	count := make([]uint64, rank)
	block := make([]uint64, rank)
	for i := 0; i < rank; i++ {
		a, err := startNodes[i].Int()
		if err != nil {
			return hspace.Selection{}, err
		}
		b, err := stopNodes[i].Int()
		if err != nil {
			return hspace.Selection{}, err
		}
		step, err := stepNodes[i].Int()
		if err != nil {
			return hspace.Selection{}, err
		}
		start[i] = uint64(a)
		stride[i] = uint64(step)
		block[i] = 1
		if step != 0 {
			count[i] = uint64(b-a) / uint64(step)
		}
	}
	return hspace.NewHyperslab(start, stride, count, block)
}

// datasetDims returns ds's current extents, for use by the offset
// arithmetic that turns a Selection into flat element indices.
func datasetDims(ds *dataset) ([]uint64, error) {
	space, err := hspace.ParseShape(jsontree.Wrap(ds.shape))
	if err != nil {
		return nil, err
	}
	if space.Rank() == 0 {
		return []uint64{1}, nil
	}
	return space.Dims, nil
}

func (s *Server) datasetValue(w http.ResponseWriter, r *http.Request) {
	uri := mux.Vars(r)["uri"]

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	ds, ok := s.Store.datasets[uri]
	if !ok {
		writeError(w, http.StatusNotFound, "no such dataset")
		return
	}

	var body map[string]interface{}
	if r.Method != http.MethodGet {
		raw, err := ioutil.ReadAll(r.Body)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if r.Header.Get("Content-Type") == "application/octet-stream" {
			s.handleBinaryWrite(w, r, ds, raw)
			return
		}
		parsed, err := jsontree.Parse(raw)
		if err == nil {
			body = asStringMap(parsed.Raw())
		} else {
			body = map[string]interface{}{}
		}
	}

	sel, err := parseValueSelection(r, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dims, err := datasetDims(ds)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offsets, err := selectionOffsets(dims, sel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if r.Method == http.MethodGet || r.Method == http.MethodPost {
		if ds.values.binary() {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(ds.values.gatherBinary(offsets))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"value": ds.values.gatherJSON(offsets)})
		return
	}

	// PUT with a JSON body: either a JSON wire type or a hyperslab
	// whose payload still travels as JSON because binary eligibility
	// is a property of the datatype, not the selection form.
	values, _ := body["value"].([]interface{})
	if err := ds.values.scatterJSON(offsets, values); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleBinaryWrite(w http.ResponseWriter, r *http.Request, ds *dataset, payload []byte) {
	sel, err := parseValueSelection(r, map[string]interface{}{})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dims, err := datasetDims(ds)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	offsets, err := selectionOffsets(dims, sel)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := ds.values.scatterBinary(offsets, payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)
}

// --- datatypes ---

func (s *Server) commitDatatype(w http.ResponseWriter, r *http.Request) {
	body, err := decodeJSONBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := htype.Parse(jsontree.Wrap(body["type"]), htype.DefaultMaxDepth); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	dt := &datatype{uri: newURI("t"), typeNode: body["type"], attrs: map[string]*attribute{}}
	s.Store.datatypes[dt.uri] = dt

	if linkBody, ok := body["link"]; ok {
		l := asStringMap(linkBody)
		parentURI, _ := l["id"].(string)
		name, _ := l["name"].(string)
		if err := s.Store.attachLink(parentURI, name, "datatypes", dt.uri); err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"id": dt.uri})
}

func (s *Server) resolveDatatype(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h5path := q.Get("h5path")
	grpid := q.Get("grpid")

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	if grpid == "" {
		grpid = s.Store.rootURI
	}
	l, ok := s.Store.walk(grpid, h5path)
	if !ok || l.collection != "datatypes" {
		writeError(w, http.StatusNotFound, "no such datatype")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"id": l.targetURI})
}

func (s *Server) datatypeByURI(w http.ResponseWriter, r *http.Request) {
	uri := mux.Vars(r)["uri"]

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	dt, ok := s.Store.datatypes[uri]
	if !ok {
		writeError(w, http.StatusNotFound, "no such datatype")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":             dt.uri,
		"type":           dt.typeNode,
		"attributeCount": len(dt.attrs),
	})
}

// --- attributes ---

func (s *Server) attrsFor(collection, uri string) (map[string]*attribute, bool) {
	switch collection {
	case "groups":
		g, ok := s.Store.groups[uri]
		if !ok {
			return nil, false
		}
		return g.attrs, true
	case "datasets":
		ds, ok := s.Store.datasets[uri]
		if !ok {
			return nil, false
		}
		return ds.attrs, true
	case "datatypes":
		dt, ok := s.Store.datatypes[uri]
		if !ok {
			return nil, false
		}
		return dt.attrs, true
	}
	return nil, false
}

func (s *Server) attributeHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection, uri, name := vars["collection"], vars["uri"], vars["name"]

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	attrs, ok := s.attrsFor(collection, uri)
	if !ok {
		writeError(w, http.StatusNotFound, "no such object")
		return
	}

	switch r.Method {
	case http.MethodGet:
		a, ok := attrs[name]
		if !ok {
			writeError(w, http.StatusNotFound, "no such attribute")
			return
		}
		body := map[string]interface{}{"type": a.typeNode}
		for k, v := range a.shape {
			body[k] = v
		}
		writeJSON(w, http.StatusOK, body)

	case http.MethodPut:
		body, err := decodeJSONBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		dt, err := htype.Parse(jsontree.Wrap(body["type"]), htype.DefaultMaxDepth)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		space, err := hspace.ParseShape(jsontree.Wrap(body))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		shapeFields := map[string]interface{}{}
		if v, ok := body["shape"]; ok {
			shapeFields["shape"] = v
		}
		elemSize := s.resolveElemSize(dt)
		attrs[name] = &attribute{
			name:     name,
			typeNode: body["type"],
			shape:    shapeFields,
			values:   newValueBuffer(elemSize, space.NumElements()),
		}
		w.WriteHeader(http.StatusCreated)

	case http.MethodDelete:
		if _, ok := attrs[name]; !ok {
			writeError(w, http.StatusNotFound, "no such attribute")
			return
		}
		delete(attrs, name)
		w.WriteHeader(http.StatusOK)
	}
}

func (s *Server) attributeValue(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection, uri, name := vars["collection"], vars["uri"], vars["name"]

	s.Store.mu.Lock()
	defer s.Store.mu.Unlock()

	attrs, ok := s.attrsFor(collection, uri)
	if !ok {
		writeError(w, http.StatusNotFound, "no such object")
		return
	}
	a, ok := attrs[name]
	if !ok {
		writeError(w, http.StatusNotFound, "no such attribute")
		return
	}

	total := uint64(len(a.values.values))
	if a.values.binary() {
		total = uint64(len(a.values.data)) / uint64(a.values.elemSize)
	}
	offsets := make([]uint64, total)
	for i := range offsets {
		offsets[i] = uint64(i)
	}

	switch r.Method {
	case http.MethodGet:
		if a.values.binary() {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(a.values.gatherBinary(offsets))
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"value": a.values.gatherJSON(offsets)})

	case http.MethodPut:
		if a.values.binary() {
			raw, err := ioutil.ReadAll(r.Body)
			if err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if err := a.values.scatterBinary(offsets, raw); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			w.WriteHeader(http.StatusOK)
			return
		}
		body, err := decodeJSONBody(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		values, _ := body["value"].([]interface{})
		if err := a.values.scatterJSON(offsets, values); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
