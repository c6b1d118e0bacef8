// Copyright 2015 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package transport implements the single HTTP transport used by
// every operation against the object service: URL templating, header
// composition, response buffering, and the response-code-to-error
// mapping described by the external interfaces and error handling
// sections of the design.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jtacoma/uritemplates"
	"github.com/sirupsen/logrus"
	"github.com/ugorji/go/codec"

	"github.com/HDFGroup/vol-rest-go/herrors"
	"github.com/HDFGroup/vol-rest-go/pathutil"
	"github.com/HDFGroup/vol-rest-go/respbuf"
)

// V1JSONMediaType is the Content-Type/Accept value used for every
// request and response body.
const V1JSONMediaType = "application/json"

var jsonHandle = &codec.JsonHandle{}

// Transport holds the process-wide state S described by the
// concurrency model: a single HTTP client, a single base URL, and a
// single reusable response buffer. Init/Teardown pair symmetrically
// and are idempotent under double calls.
type Transport struct {
	BaseURL  *url.URL
	Filepath string
	Client   *http.Client
	Buffer   *respbuf.Buffer
	Log      *logrus.Logger

	initialized bool
}

// New builds a Transport bound to baseURL and identifying filepath
// via the Host header on every request. It does not perform Init;
// callers must call Init before issuing requests.
func New(baseURL *url.URL, filepath string, log *logrus.Logger) *Transport {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Transport{
		BaseURL:  baseURL,
		Filepath: filepath,
		Log:      log,
	}
}

// Init establishes the HTTP client and response buffer. A second call
// before Teardown is a no-op.
func (t *Transport) Init() {
	if t.initialized {
		return
	}
	t.Client = &http.Client{}
	t.Buffer = respbuf.New(4096)
	responseBufferBytes.Set(float64(t.Buffer.Len()))
	t.initialized = true
}

// Teardown releases the HTTP client and response buffer. A second
// call before Init is a no-op.
func (t *Transport) Teardown() {
	if !t.initialized {
		return
	}
	t.Client = nil
	t.Buffer = nil
	t.initialized = false
}

// Template resolves a URI template relative to the transport's base
// URL, percent-encoding any string variable that is not already
// URL-safe.
func (t *Transport) Template(template string, vars map[string]interface{}) (*url.URL, error) {
	tmpl, err := uritemplates.Parse(template)
	if err != nil {
		return nil, err
	}
	for k, v := range vars {
		if s, ok := v.(string); ok {
			vars[k] = pathutil.EncodeName(s)
		}
	}
	expanded, err := tmpl.Expand(vars)
	if err != nil {
		return nil, err
	}
	return t.BaseURL.Parse(expanded)
}

// DoRaw performs a single blocking HTTP request-then-parse sequence
// and returns the response body verbatim, without attempting JSON
// decoding. If in is non-nil it is JSON-encoded as the request body;
// if rawIn is non-nil it is sent verbatim with contentType as
// Content-Type (used for binary dataset I/O). The returned slice
// aliases the transport's response buffer and is only valid until the
// next call on this transport.
func (t *Transport) DoRaw(method string, target *url.URL, in interface{}, rawIn []byte, contentType string) ([]byte, error) {
	if !t.initialized {
		return nil, herrors.ErrInternal{Reason: "transport used before Init"}
	}

	var body io.Reader
	reqContentType := ""
	switch {
	case rawIn != nil:
		body = bytes.NewReader(rawIn)
		reqContentType = contentType
	case in != nil:
		var buf []byte
		encoder := codec.NewEncoderBytes(&buf, jsonHandle)
		if err := encoder.Encode(in); err != nil {
			return nil, herrors.ErrMalformed{Reason: err.Error()}
		}
		body = bytes.NewReader(buf)
		reqContentType = V1JSONMediaType
	}

	req, err := http.NewRequest(method, target.String(), body)
	if err != nil {
		return nil, herrors.ErrTransport{Err: err}
	}
	if reqContentType != "" {
		req.Header.Set("Content-Type", reqContentType)
	}
	req.Header.Set("Accept", V1JSONMediaType)
	req.Header.Set("Host", t.Filepath)
	req.Host = t.Filepath
	// net/http never emits "Expect: 100-continue" unless a caller sets
	// it explicitly, so no action is needed to suppress it here.

	inFlightRequests.Inc()
	t0 := time.Now()
	resp, err := t.Client.Do(req)
	inFlightRequests.Dec()
	if err != nil {
		requestSeconds.WithLabelValues(method, "transport_error").Observe(time.Since(t0).Seconds())
		return nil, herrors.ErrTransport{Err: err}
	}
	defer resp.Body.Close()
	requestSeconds.WithLabelValues(method, statusClass(resp.StatusCode)).Observe(time.Since(t0).Seconds())

	t.Buffer.Reset()
	if _, err := io.Copy(t.Buffer, resp.Body); err != nil {
		return nil, herrors.ErrResourceExhausted{Requested: t.Buffer.Len()}
	}
	t.Buffer.Terminate()
	responseBufferBytes.Set(float64(t.Buffer.Len()))

	if resp.StatusCode/100 != 2 {
		t.Log.WithFields(logrus.Fields{
			"method": method,
			"url":    target.String(),
			"status": resp.StatusCode,
		}).Debug("object service returned non-2xx status")
		return nil, herrors.ErrProtocol{
			Code: resp.StatusCode,
			Kind: herrors.KindForStatus(resp.StatusCode),
			Body: string(t.Buffer.Bytes()),
		}
	}

	return t.Buffer.Bytes(), nil
}

// Do performs a request via DoRaw and, if out is non-nil and the
// response carried a body, decodes that body as JSON into out.
func (t *Transport) Do(method string, target *url.URL, in interface{}, rawIn []byte, contentType string, out interface{}) error {
	raw, err := t.DoRaw(method, target, in, rawIn, contentType)
	if err != nil {
		return err
	}
	if out != nil && len(raw) > 0 {
		decoder := codec.NewDecoderBytes(raw, jsonHandle)
		if err := decoder.Decode(out); err != nil {
			return herrors.ErrMalformed{Reason: err.Error()}
		}
	}
	return nil
}

func statusClass(code int) string {
	return fmt.Sprintf("%dxx", code/100)
}

// Get issues a GET against url and decodes the JSON response into out.
func (t *Transport) Get(target *url.URL, out interface{}) error {
	return t.Do(http.MethodGet, target, nil, nil, "", out)
}

// Put issues a PUT with a JSON-encoded in, decoding the JSON response
// into out.
func (t *Transport) Put(target *url.URL, in, out interface{}) error {
	return t.Do(http.MethodPut, target, in, nil, "", out)
}

// PutRaw issues a PUT with a raw binary body.
func (t *Transport) PutRaw(target *url.URL, body []byte, contentType string, out interface{}) error {
	return t.Do(http.MethodPut, target, nil, body, contentType, out)
}

// Post issues a POST with a JSON-encoded in, decoding the JSON
// response into out.
func (t *Transport) Post(target *url.URL, in, out interface{}) error {
	return t.Do(http.MethodPost, target, in, nil, "", out)
}

// Delete issues a DELETE against url.
func (t *Transport) Delete(target *url.URL) error {
	return t.Do(http.MethodDelete, target, nil, nil, "", nil)
}

// Exists issues a GET against url and reports true on any 2xx status,
// false on 404, and propagates any other error. This mirrors the
// user-visible rule that a 404 existence check is reported as false
// rather than as an error.
func (t *Transport) Exists(target *url.URL) (bool, error) {
	err := t.Get(target, nil)
	if err == nil {
		return true, nil
	}
	if herrors.IsNotFound(err) {
		return false, nil
	}
	return false, err
}
