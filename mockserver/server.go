// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package mockserver

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"
	"github.com/urfave/negroni"
)

var jsonHandle = &codec.JsonHandle{}

// Server wraps a Store with an HTTP handler implementing the object
// service's wire protocol.
type Server struct {
	Store *Store
	Log   *logrus.Logger
}

// New builds a Server over a fresh Store.
func New(log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{Store: NewStore(), Log: log}
}

// Handler returns the negroni-wrapped router: request logging around
// the routes PopulateRouter installs, mirroring the middleware chain
// shape of a production object service without any of this module's
// domain logic living in the middleware itself.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.PopulateRouter(r)
	n := negroni.New(negroni.NewRecovery())
	n.Use(negronilogger{log: s.Log})
	n.UseHandler(r)
	return n
}

// negronilogger adapts logrus to negroni's middleware interface.
type negronilogger struct {
	log *logrus.Logger
}

func (l negronilogger) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	next(w, r)
	l.log.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Debug("mockserver request")
}

// PopulateRouter adds every route this mock service understands to r.
func (s *Server) PopulateRouter(r *mux.Router) {
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodPut, http.MethodGet, http.MethodDelete)

	r.HandleFunc("/groups", s.createGroup).Methods(http.MethodPost)
	r.HandleFunc("/groups/{uri}/links/{name}", s.linkHandler).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
	r.HandleFunc("/groups/{uri}/", s.groupByURI).Methods(http.MethodGet)
	r.HandleFunc("/groups/{uri}", s.groupByURI).Methods(http.MethodGet)

	r.HandleFunc("/datasets", s.createDataset).Methods(http.MethodPost)
	r.HandleFunc("/datasets/", s.resolveDataset).Methods(http.MethodGet)
	r.HandleFunc("/datasets/{uri}/value", s.datasetValue).Methods(http.MethodGet, http.MethodPost, http.MethodPut)
	r.HandleFunc("/datasets/{uri}", s.datasetByURI).Methods(http.MethodGet)

	r.HandleFunc("/datatypes", s.commitDatatype).Methods(http.MethodPost)
	r.HandleFunc("/datatypes/", s.resolveDatatype).Methods(http.MethodGet)
	r.HandleFunc("/datatypes/{uri}", s.datatypeByURI).Methods(http.MethodGet)

	r.HandleFunc("/{collection:groups|datasets|datatypes}/{uri}/attributes/{name}/value",
		s.attributeValue).Methods(http.MethodGet, http.MethodPut)
	r.HandleFunc("/{collection:groups|datasets|datatypes}/{uri}/attributes/{name}",
		s.attributeHandler).Methods(http.MethodGet, http.MethodPut, http.MethodDelete)
}

func decodeJSONBody(r *http.Request) (map[string]interface{}, error) {
	if r.Body == nil || r.ContentLength == 0 {
		return map[string]interface{}{}, nil
	}
	var body map[string]interface{}
	decoder := codec.NewDecoder(r.Body, jsonHandle)
	if err := decoder.Decode(&body); err != nil && err != io.EOF {
		return nil, err
	}
	if body == nil {
		body = map[string]interface{}{}
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := codec.NewEncoder(w, jsonHandle)
	_ = encoder.Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{"message": message})
}
