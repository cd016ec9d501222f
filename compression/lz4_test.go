package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLz4RoundTrip(t *testing.T) {
	src := bytes.Repeat([]byte("metadata table "), 512)

	var out bytes.Buffer
	require.NoError(t, CompressLz4(src, &out))
	assert.Less(t, out.Len(), len(src))

	restored, err := DecompressLz4(out.Bytes(), len(src))
	require.NoError(t, err)
	assert.Equal(t, src, restored)

	_, err = DecompressLz4(out.Bytes(), len(src)+1)
	assert.Error(t, err)

	_, err = DecompressLz4(out.Bytes(), len(src)-1)
	assert.Error(t, err)
}

func TestLz4Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, CompressLz4(nil, &out))

	restored, err := DecompressLz4(out.Bytes(), 0)
	require.NoError(t, err)
	assert.Empty(t, restored)
}

func TestLz4Corrupted(t *testing.T) {
	src := []byte("hello hello hello")

	var out bytes.Buffer
	require.NoError(t, CompressLz4(src, &out))

	flipped := bytes.Clone(out.Bytes())
	flipped[len(flipped)-1] ^= 0xff

	_, err := DecompressLz4(flipped, len(src))
	assert.Error(t, err)

	garbage := bytes.Repeat([]byte{0xff}, 15)
	_, err = DecompressLz4(garbage, 0)
	assert.Error(t, err)
}
