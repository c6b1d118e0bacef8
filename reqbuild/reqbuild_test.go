package reqbuild

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HDFGroup/vol-rest-go/dcpl"
	"github.com/HDFGroup/vol-rest-go/hspace"
	"github.com/HDFGroup/vol-rest-go/htype"
)

func TestDatasetRequestIncludesAllSections(t *testing.T) {
	dt := htype.NewInteger(4, true, true)
	space, err := hspace.NewSimple([]uint64{5, 5, 5}, nil)
	require.NoError(t, err)
	link := &Link{ParentURI: "g-parent", Name: "mydset"}

	body, err := DatasetRequest(dt, space, dcpl.Default(), link, htype.DefaultMaxDepth)
	require.NoError(t, err)

	assert.Contains(t, body, "type")
	assert.Contains(t, body, "shape")
	assert.Contains(t, body, "creationProperties")
	linkSection, ok := body["link"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "g-parent", linkSection["id"])
	assert.Equal(t, "mydset", linkSection["name"])
}

func TestDatasetRequestAnonymousHasNoLink(t *testing.T) {
	dt := htype.NewInteger(4, true, true)
	space, err := hspace.NewSimple([]uint64{5, 5, 5}, nil)
	require.NoError(t, err)

	body, err := DatasetRequest(dt, space, dcpl.Default(), nil, htype.DefaultMaxDepth)
	require.NoError(t, err)
	_, present := body["link"]
	assert.False(t, present)
}

func TestDatatypeCommitRequest(t *testing.T) {
	dt := htype.NewFloat(8, true)
	body, err := DatatypeCommitRequest(dt, nil, htype.DefaultMaxDepth)
	require.NoError(t, err)
	assert.Contains(t, body, "type")
	_, present := body["link"]
	assert.False(t, present)
}
