package dispatch

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HDFGroup/vol-rest-go/dcpl"
	"github.com/HDFGroup/vol-rest-go/handle"
	"github.com/HDFGroup/vol-rest-go/hspace"
	"github.com/HDFGroup/vol-rest-go/htype"
	"github.com/HDFGroup/vol-rest-go/transport"
)

func newTestDispatcher(t *testing.T, handlerFn http.HandlerFunc) (*Dispatcher, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handlerFn)
	base, err := url.Parse(server.URL + "/")
	require.NoError(t, err)
	tr := transport.New(base, "test.h5", nil)
	tr.Init()
	return New(tr), server
}

func fixedIntDataset(t *testing.T, uri string) (*handle.Handle, *htype.Datatype) {
	t.Helper()
	dt := htype.NewInteger(4, true, true)
	space, err := hspace.NewSimple([]uint64{10, 10, 1}, nil)
	require.NoError(t, err)
	file := handle.NewFile("f-root", "test.h5", handle.IntentReadWrite, dcpl.Default())
	ds, err := handle.NewDataset(file, uri, dt, space, dcpl.Default())
	require.NoError(t, err)
	return ds, dt
}

func TestReadDatasetWholeArrayIsBinaryGET(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	d, server := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/datasets/d-1/value", r.URL.Path)
		assert.Empty(t, r.URL.Query().Get("select"))
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	})
	defer server.Close()
	defer d.Transport.Teardown()

	ds, dt := fixedIntDataset(t, "d-1")
	raw, values, err := d.ReadDataset(ds, dt, ds.Dataspace, hspace.All(), hspace.All())
	require.NoError(t, err)
	assert.Nil(t, values)
	assert.Equal(t, payload, raw)
}

func TestReadDatasetHyperslabSetsSelectParam(t *testing.T) {
	d, server := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "[0:10:1,0:10:1,0:1:1]", r.URL.Query().Get("select"))
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0, 0, 0, 0})
	})
	defer server.Close()
	defer d.Transport.Teardown()

	ds, dt := fixedIntDataset(t, "d-1")
	fileSel, err := hspace.NewHyperslab([]uint64{0, 0, 0}, []uint64{1, 1, 1}, []uint64{10, 10, 1}, []uint64{1, 1, 1})
	require.NoError(t, err)

	_, _, err = d.ReadDataset(ds, dt, ds.Dataspace, hspace.All(), fileSel)
	require.NoError(t, err)
}

func TestReadDatasetPointSelectionPostsJSONBody(t *testing.T) {
	d, server := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, err := ioutil.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `"points"`)
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{1, 2, 3, 4})
	})
	defer server.Close()
	defer d.Transport.Teardown()

	ds, dt := fixedIntDataset(t, "d-1")
	fileSel, err := hspace.NewPoints([][]uint64{{0, 0, 0}, {1, 1, 0}})
	require.NoError(t, err)

	raw, _, err := d.ReadDataset(ds, dt, ds.Dataspace, hspace.All(), fileSel)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, raw)
}

func TestReadDatasetVariableStringUsesJSONValue(t *testing.T) {
	d, server := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":["a","b","c"]}`))
	})
	defer server.Close()
	defer d.Transport.Teardown()

	dt := htype.NewVariableString()
	space, err := hspace.NewSimple([]uint64{3}, nil)
	require.NoError(t, err)
	file := handle.NewFile("f-root", "test.h5", handle.IntentReadWrite, dcpl.Default())
	ds, err := handle.NewDataset(file, "d-str", dt, space, dcpl.Default())
	require.NoError(t, err)

	raw, values, err := d.ReadDataset(ds, dt, ds.Dataspace, hspace.All(), hspace.All())
	require.NoError(t, err)
	assert.Nil(t, raw)
	require.Len(t, values, 3)
	assert.Equal(t, "a", values[0])
}

func TestWriteDatasetBinaryPUT(t *testing.T) {
	d, server := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/octet-stream", r.Header.Get("Content-Type"))
		body, err := ioutil.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, []byte{9, 9, 9, 9}, body)
		w.WriteHeader(http.StatusOK)
	})
	defer server.Close()
	defer d.Transport.Teardown()

	ds, dt := fixedIntDataset(t, "d-1")
	err := d.WriteDataset(ds, dt, ds.Dataspace, hspace.All(), hspace.All(), []byte{9, 9, 9, 9}, nil)
	require.NoError(t, err)
}

func TestReadWriteAttributeWholeValue(t *testing.T) {
	d, server := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/groups/g-1/attributes/units/value", r.URL.Path)
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte{7, 7, 7, 7})
		case http.MethodPut:
			assert.Equal(t, "/groups/g-1/attributes/units/value", r.URL.Path)
			body, err := ioutil.ReadAll(r.Body)
			require.NoError(t, err)
			assert.Equal(t, []byte{7, 7, 7, 7}, body)
			w.WriteHeader(http.StatusOK)
		}
	})
	defer server.Close()
	defer d.Transport.Teardown()

	file := handle.NewFile("f-root", "test.h5", handle.IntentReadWrite, dcpl.Default())
	group, err := handle.NewGroup(file, "g-1")
	require.NoError(t, err)
	dt := htype.NewInteger(4, true, true)
	space, err := hspace.NewSimple([]uint64{1}, nil)
	require.NoError(t, err)
	attr, err := handle.NewAttribute(group, "units", dt, space, dcpl.Default())
	require.NoError(t, err)

	raw, values, err := d.ReadAttribute(attr)
	require.NoError(t, err)
	assert.Nil(t, values)
	assert.Equal(t, []byte{7, 7, 7, 7}, raw)

	err = d.WriteAttribute(attr, []byte{7, 7, 7, 7}, nil)
	require.NoError(t, err)
}

func TestReadDatasetEmptySelectionSkipsRequest(t *testing.T) {
	d, server := newTestDispatcher(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request should be issued for a None selection")
	})
	defer server.Close()
	defer d.Transport.Teardown()

	ds, dt := fixedIntDataset(t, "d-1")
	raw, values, err := d.ReadDataset(ds, dt, ds.Dataspace, hspace.None(), hspace.None())
	require.NoError(t, err)
	assert.Nil(t, raw)
	assert.Nil(t, values)
}
