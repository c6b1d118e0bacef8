package hspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HDFGroup/vol-rest-go/jsontree"
)

func TestEmitParseNullShape(t *testing.T) {
	s := NewNull()
	fields := EmitShape(s)
	assert.Equal(t, "H5S_NULL", fields["shape"])

	out, err := ParseShape(jsontree.Wrap(fields))
	require.NoError(t, err)
	assert.Equal(t, ClassNull, out.Class)
}

func TestEmitParseScalarShape(t *testing.T) {
	s := NewScalar()
	fields := EmitShape(s)
	assert.Empty(t, fields)

	out, err := ParseShape(jsontree.Wrap(fields))
	require.NoError(t, err)
	assert.Equal(t, ClassScalar, out.Class)
}

func TestEmitParseSimpleShapeNoMaxDims(t *testing.T) {
	s, err := NewSimple([]uint64{4, 5}, nil)
	require.NoError(t, err)
	fields := EmitShape(s)
	assert.Equal(t, []interface{}{uint64(4), uint64(5)}, fields["shape"])
	_, hasMax := fields["maxdims"]
	assert.False(t, hasMax)

	out, err := ParseShape(jsontree.Wrap(fields))
	require.NoError(t, err)
	assert.Equal(t, ClassSimple, out.Class)
	assert.Equal(t, []uint64{4, 5}, out.Dims)
}

func TestEmitParseSimpleShapeUnlimited(t *testing.T) {
	s, err := NewSimple([]uint64{3, 0}, []uint64{3, Unlimited})
	require.NoError(t, err)
	fields := EmitShape(s)
	maxdims := fields["maxdims"].([]interface{})
	assert.Equal(t, uint64(3), maxdims[0])
	assert.Equal(t, 0, maxdims[1])

	out, err := ParseShape(jsontree.Wrap(fields))
	require.NoError(t, err)
	require.Equal(t, []uint64{3, 0}, out.Dims)
	require.Equal(t, []uint64{3, Unlimited}, out.MaxDims)
}

func TestEmitSelectionURLHyperslab(t *testing.T) {
	sel, err := NewHyperslab([]uint64{0, 2}, []uint64{1, 1}, []uint64{10, 3}, []uint64{1, 1})
	require.NoError(t, err)
	s, err := EmitSelectionURL(sel)
	require.NoError(t, err)
	assert.Equal(t, "[0:10:1,2:5:1]", s)

	out, err := ParseSelectionURL(s)
	require.NoError(t, err)
	assert.Equal(t, sel.Start, out.Start)
	assert.Equal(t, sel.Stride, out.Stride)
	assert.Equal(t, sel.Count, out.Count)
}

func TestEmitSelectionURLAllIsEmpty(t *testing.T) {
	s, err := EmitSelectionURL(All())
	require.NoError(t, err)
	assert.Equal(t, "", s)

	out, err := ParseSelectionURL(s)
	require.NoError(t, err)
	assert.Equal(t, SelectAll, out.Class)
}

func TestEmitSelectionURLRejectsPoints(t *testing.T) {
	sel, err := NewPoints([][]uint64{{1, 2}, {3, 4}})
	require.NoError(t, err)
	_, err = EmitSelectionURL(sel)
	assert.Error(t, err)
}

func TestEmitParseSelectionJSONHyperslab(t *testing.T) {
	sel, err := NewHyperslab([]uint64{0}, []uint64{2}, []uint64{5}, []uint64{1})
	require.NoError(t, err)
	body, err := EmitSelectionJSON(sel)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{uint64(0)}, body["start"])
	assert.Equal(t, []interface{}{uint64(10)}, body["stop"])
	assert.Equal(t, []interface{}{uint64(2)}, body["step"])
}

func TestEmitParseSelectionJSONPointsMultiRank(t *testing.T) {
	sel, err := NewPoints([][]uint64{{0, 0, 0}, {1, 1, 1}, {2, 2, 2}})
	require.NoError(t, err)
	body, err := EmitSelectionJSON(sel)
	require.NoError(t, err)

	out, err := ParsePointsBody(jsontree.Wrap(body))
	require.NoError(t, err)
	assert.Equal(t, sel.Coords, out.Coords)
}

func TestEmitParseSelectionJSONPointsRankOne(t *testing.T) {
	sel, err := NewPoints([][]uint64{{0}, {3}, {7}})
	require.NoError(t, err)
	body, err := EmitSelectionJSON(sel)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{uint64(0), uint64(3), uint64(7)}, body["points"])

	out, err := ParsePointsBody(jsontree.Wrap(body))
	require.NoError(t, err)
	assert.Equal(t, sel.Coords, out.Coords)
}
