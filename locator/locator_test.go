package locator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HDFGroup/vol-rest-go/dcpl"
	"github.com/HDFGroup/vol-rest-go/handle"
	"github.com/HDFGroup/vol-rest-go/transport"
)

func newTestLocator(t *testing.T, handlerFn http.HandlerFunc) (*transport.Transport, *handle.Handle, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handlerFn)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	tr := transport.New(base, "test.h5", nil)
	tr.Init()
	file := handle.NewFile("root-uri", "test.h5", handle.IntentReadWrite, dcpl.Default())
	return tr, file, server
}

func TestLocateRootPathShortCircuits(t *testing.T) {
	tr, file, server := newTestLocator(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued for the root path")
	})
	defer server.Close()
	defer tr.Teardown()

	result, err := Locate(tr, file, "/", handle.KindGroup, true)
	require.NoError(t, err)
	assert.Equal(t, StatusFound, result.Status)
	assert.Equal(t, "root-uri", result.URI)
}

func TestLocateKnownKindGroup(t *testing.T) {
	tr, file, server := newTestLocator(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/groups/root-uri/", r.URL.Path)
		assert.Equal(t, "data", r.URL.Query().Get("h5path"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "g-data"})
	})
	defer server.Close()
	defer tr.Teardown()

	result, err := Locate(tr, file, "data", handle.KindGroup, true)
	require.NoError(t, err)
	assert.Equal(t, StatusFound, result.Status)
	assert.Equal(t, "g-data", result.URI)
}

func TestLocateNotFoundIsNotAnError(t *testing.T) {
	tr, file, server := newTestLocator(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()
	defer tr.Teardown()

	result, err := Locate(tr, file, "missing", handle.KindDataset, true)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, result.Status)
}

func TestLocateDiscoversUnknownKindViaLinks(t *testing.T) {
	tr, file, server := newTestLocator(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/groups/root-uri/links/mydset":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"link": map[string]interface{}{"collection": "datasets"},
			})
		case r.URL.Path == "/datasets/":
			assert.Equal(t, "mydset", r.URL.Query().Get("h5path"))
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"id": "d-mydset"})
		default:
			t.Fatalf("unexpected request path %s", r.URL.Path)
		}
	})
	defer server.Close()
	defer tr.Teardown()

	result, err := Locate(tr, file, "mydset", 0, false)
	require.NoError(t, err)
	assert.Equal(t, StatusFound, result.Status)
	assert.Equal(t, handle.KindDataset, result.Kind)
	assert.Equal(t, "d-mydset", result.URI)
}
