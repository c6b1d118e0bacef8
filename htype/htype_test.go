package htype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HDFGroup/vol-rest-go/jsontree"
)

func roundTrip(t *testing.T, dt *Datatype) *Datatype {
	t.Helper()
	v, err := Emit(dt, DefaultMaxDepth)
	require.NoError(t, err)
	node := jsontree.Wrap(v)
	out, err := Parse(node, DefaultMaxDepth)
	require.NoError(t, err)
	return out
}

func TestIntegerRoundTrip(t *testing.T) {
	dt := NewInteger(4, true, true)
	out := roundTrip(t, dt)
	assert.Equal(t, dt, out)
}

func TestFloatRoundTrip(t *testing.T) {
	dt := NewFloat(8, false)
	out := roundTrip(t, dt)
	assert.Equal(t, dt, out)
}

func TestFixedStringRoundTrip(t *testing.T) {
	dt := NewFixedString(16)
	out := roundTrip(t, dt)
	assert.Equal(t, dt, out)
}

func TestVariableStringRoundTrip(t *testing.T) {
	dt := NewVariableString()
	out := roundTrip(t, dt)
	assert.Equal(t, dt, out)
}

func TestCompoundRoundTrip(t *testing.T) {
	members := []CompoundMember{
		{Name: "a", Type: NewInteger(4, true, true)},
		{Name: "b", Type: NewFloat(8, true)},
		{Name: "c", Type: NewFixedString(8)},
	}
	dt, err := NewCompound(members)
	require.NoError(t, err)
	out := roundTrip(t, dt)
	require.Len(t, out.Members, 3)
	assert.Equal(t, "a", out.Members[0].Name)
	assert.Equal(t, 0, out.Members[0].Offset)
	assert.Equal(t, "b", out.Members[1].Name)
	assert.Equal(t, 4, out.Members[1].Offset)
	assert.Equal(t, "c", out.Members[2].Name)
	assert.Equal(t, 12, out.Members[2].Offset)
}

func TestEnumRoundTrip(t *testing.T) {
	base := NewInteger(4, true, true)
	dt, err := NewEnum(base, []EnumMember{{Name: "RED", Value: 0}, {Name: "BLUE", Value: 1}})
	require.NoError(t, err)
	out := roundTrip(t, dt)
	assert.Equal(t, ClassEnum, out.Class)
	assert.Equal(t, base, out.EnumBase)
	assert.ElementsMatch(t, dt.Mapping, out.Mapping)
}

func TestArrayRoundTrip(t *testing.T) {
	dt, err := NewArray(NewInteger(4, true, true), []int{1, 1, 1})
	require.NoError(t, err)
	out := roundTrip(t, dt)
	assert.Equal(t, dt, out)
}

func TestArrayRejectsNestedArrayBase(t *testing.T) {
	inner, err := NewArray(NewInteger(4, true, true), []int{2})
	require.NoError(t, err)
	_, err = NewArray(inner, []int{2})
	assert.Error(t, err)
}

func TestArrayRejectsCompoundBase(t *testing.T) {
	compound, err := NewCompound([]CompoundMember{{Name: "x", Type: NewInteger(4, true, true)}})
	require.NoError(t, err)
	_, err = NewArray(compound, []int{2})
	assert.Error(t, err)
}

func TestReferenceRoundTrip(t *testing.T) {
	dt := NewReference(RefObject)
	out := roundTrip(t, dt)
	assert.Equal(t, dt, out)

	dt2 := NewReference(RefRegion)
	out2 := roundTrip(t, dt2)
	assert.Equal(t, dt2, out2)
}

func TestCommittedEmitsBareString(t *testing.T) {
	dt := NewCommitted("datatypes/abc-123")
	v, err := Emit(dt, DefaultMaxDepth)
	require.NoError(t, err)
	assert.Equal(t, "datatypes/abc-123", v)

	out, err := Parse(jsontree.Wrap(v), DefaultMaxDepth)
	require.NoError(t, err)
	assert.Equal(t, dt, out)
}

func TestUnsupportedClassFails(t *testing.T) {
	node := jsontree.Wrap(map[string]interface{}{"class": "H5T_OPAQUE"})
	_, err := Parse(node, DefaultMaxDepth)
	assert.IsType(t, ErrUnsupportedDatatype{}, err)
}

func TestMissingClassIsMalformed(t *testing.T) {
	node := jsontree.Wrap(map[string]interface{}{"foo": "bar"})
	_, err := Parse(node, DefaultMaxDepth)
	assert.IsType(t, ErrMalformedType{}, err)
}

func TestDepthExceededFallsBackAtMaxDepth(t *testing.T) {
	// Nest compounds four levels deep with maxDepth=3: the fourth
	// level (reached only by recursing past the bound) must come
	// back as a generic fallback integer instead of a nested compound.
	level4, err := NewCompound([]CompoundMember{{Name: "leaf", Type: NewInteger(4, true, true)}})
	require.NoError(t, err)
	level3, err := NewCompound([]CompoundMember{{Name: "x", Type: level4}})
	require.NoError(t, err)
	level2, err := NewCompound([]CompoundMember{{Name: "y", Type: level3}})
	require.NoError(t, err)
	level1, err := NewCompound([]CompoundMember{{Name: "z", Type: level2}})
	require.NoError(t, err)

	v, err := Emit(level1, 3)
	require.NoError(t, err)
	out, err := Parse(jsontree.Wrap(v), 3)
	require.NoError(t, err)

	l2 := out.Members[0].Type
	require.Equal(t, ClassCompound, l2.Class)
	l3 := l2.Members[0].Type
	require.Equal(t, ClassCompound, l3.Class)
	fallback := l3.Members[0].Type
	assert.Equal(t, ClassInteger, fallback.Class)
}
