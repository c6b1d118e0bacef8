package handle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HDFGroup/vol-rest-go/dcpl"
	"github.com/HDFGroup/vol-rest-go/hspace"
	"github.com/HDFGroup/vol-rest-go/htype"
)

func TestNewFileSelfReferences(t *testing.T) {
	f := NewFile("file-uri", "/tmp/test.h5", IntentReadWrite, dcpl.Default())
	assert.Same(t, f, f.File)
	assert.Equal(t, KindFile, f.Kind)
}

func TestNewDatasetRequiresMaterializedType(t *testing.T) {
	f := NewFile("file-uri", "/tmp/test.h5", IntentReadWrite, dcpl.Default())
	_, err := NewDataset(f, "d-1", nil, hspace.NewScalar(), dcpl.Default())
	assert.Error(t, err)
}

func TestNewDatasetUnderFile(t *testing.T) {
	f := NewFile("file-uri", "/tmp/test.h5", IntentReadWrite, dcpl.Default())
	dt := htype.NewInteger(4, true, true)
	space, err := hspace.NewSimple([]uint64{5, 5, 5}, nil)
	require.NoError(t, err)
	d, err := NewDataset(f, "d-1", dt, space, dcpl.Default())
	require.NoError(t, err)
	assert.Equal(t, KindDataset, d.Kind)
	assert.Same(t, f, d.File)
}

func TestNewAttributeRequiresParent(t *testing.T) {
	dt := htype.NewInteger(4, true, true)
	_, err := NewAttribute(nil, "attr", dt, hspace.NewScalar(), dcpl.Default())
	assert.Error(t, err)
}

func TestNewAttributeInheritsFileFromParent(t *testing.T) {
	f := NewFile("file-uri", "/tmp/test.h5", IntentReadWrite, dcpl.Default())
	g, err := NewGroup(f, "g-1")
	require.NoError(t, err)
	dt := htype.NewInteger(4, true, true)
	a, err := NewAttribute(g, "attr", dt, hspace.NewScalar(), dcpl.Default())
	require.NoError(t, err)
	assert.Same(t, f, a.File)
	assert.Same(t, g, a.Parent)
}

func TestParentKindURI(t *testing.T) {
	f := NewFile("file-uri", "/tmp/test.h5", IntentReadWrite, dcpl.Default())
	g, err := NewGroup(f, "g-1")
	require.NoError(t, err)
	s, err := ParentKindURI(g)
	require.NoError(t, err)
	assert.Equal(t, "groups", s)
}

func TestCloseClearsTypedResources(t *testing.T) {
	f := NewFile("file-uri", "/tmp/test.h5", IntentReadWrite, dcpl.Default())
	dt := htype.NewInteger(4, true, true)
	d, err := NewDataset(f, "d-1", dt, hspace.NewScalar(), dcpl.Default())
	require.NoError(t, err)
	d.Close()
	assert.Nil(t, d.Datatype)
}
