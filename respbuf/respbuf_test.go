package respbuf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndGrow(t *testing.T) {
	b := New(4)
	n, err := b.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(b.Bytes()))
}

func TestResetReusesCapacity(t *testing.T) {
	b := New(8)
	_, err := b.Write([]byte("first"))
	require.NoError(t, err)
	b.Reset()
	_, err = b.Write([]byte("second"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(b.Bytes()))
}

func TestTerminateAddsNUL(t *testing.T) {
	b := New(4)
	_, err := b.Write([]byte("ab"))
	require.NoError(t, err)
	b.Terminate()
	assert.Equal(t, byte(0), b.data[b.cursor])
	assert.Equal(t, "ab", string(b.Bytes()))
}

func TestDoublingGrowth(t *testing.T) {
	b := New(2)
	big := strings.Repeat("x", 1000)
	_, err := b.Write([]byte(big))
	require.NoError(t, err)
	assert.Equal(t, big, string(b.Bytes()))
	// capacity must be a power-of-two multiple of the initial size
	assert.True(t, cap(b.data)&(cap(b.data)-1) == 0 || cap(b.data) >= 1001)
}
