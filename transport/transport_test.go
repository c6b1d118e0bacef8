package transport

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HDFGroup/vol-rest-go/herrors"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc) (*Transport, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	tr := New(base, "test.h5", nil)
	tr.Init()
	return tr, server
}

func TestGetDecodesJSON(t *testing.T) {
	tr, server := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test.h5", r.Host)
		w.Header().Set("Content-Type", V1JSONMediaType)
		_, _ = io.WriteString(w, `{"id":"g-1234"}`)
	})
	defer server.Close()
	defer tr.Teardown()

	var out map[string]interface{}
	err := tr.Get(tr.BaseURL, &out)
	require.NoError(t, err)
	assert.Equal(t, "g-1234", out["id"])
}

func TestNotFoundMapsToErrProtocol(t *testing.T) {
	tr, server := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()
	defer tr.Teardown()

	err := tr.Get(tr.BaseURL, nil)
	require.Error(t, err)
	protoErr, ok := err.(herrors.ErrProtocol)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, protoErr.Code)
	assert.Equal(t, herrors.KindNotFound, protoErr.Kind)
}

func TestExistsReportsFalseOn404WithoutError(t *testing.T) {
	tr, server := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()
	defer tr.Teardown()

	ok, err := tr.Exists(tr.BaseURL)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestExistsReportsTrueOn2xx(t *testing.T) {
	tr, server := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	defer server.Close()
	defer tr.Teardown()

	ok, err := tr.Exists(tr.BaseURL)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPutRawSendsBinaryBody(t *testing.T) {
	var received []byte
	tr, server := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})
	defer server.Close()
	defer tr.Teardown()

	payload := []byte{1, 2, 3, 4}
	err := tr.PutRaw(tr.BaseURL, payload, "application/octet-stream", nil)
	require.NoError(t, err)
	assert.Equal(t, payload, received)
}

func TestDoBeforeInitReturnsInternalError(t *testing.T) {
	base, _ := url.Parse("http://example.invalid/")
	tr := New(base, "test.h5", nil)
	err := tr.Get(base, nil)
	require.Error(t, err)
	_, ok := err.(herrors.ErrInternal)
	assert.True(t, ok)
}

func TestInitTeardownIdempotent(t *testing.T) {
	base, _ := url.Parse("http://example.invalid/")
	tr := New(base, "test.h5", nil)
	tr.Init()
	tr.Init()
	assert.NotNil(t, tr.Buffer)
	tr.Teardown()
	tr.Teardown()
	assert.Nil(t, tr.Buffer)
}
