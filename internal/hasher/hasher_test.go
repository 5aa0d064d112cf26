package hasher

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHash(t *testing.T) {
	data := []byte("\xff\xd8\xff\xe0jfif payload\xff\xd9")

	full := ContentHash(data, 0)
	assert.Len(t, full, 16)
	assert.Equal(t, full, ContentHash(data, 64))
	assert.Equal(t, full[:8], ContentHash(data, 8))
	assert.NotEqual(t, full, ContentHash(data[1:], 0))

	// Hex digits are the big-endian xxHash64 value
	sum := xxhash.Sum64(data)
	assert.Equal(t, "0123456789abcdef"[sum>>60], full[0])
	assert.Equal(t, "0123456789abcdef"[sum&0xF], full[15])
}

func TestContentHashEmpty(t *testing.T) {
	// xxHash64 of no input with seed 0
	assert.Equal(t, "ef46db3751d8e999", ContentHash(nil, 0))
}

func TestContentHashReader(t *testing.T) {
	data := bytes.Repeat([]byte{0x12, 0x34, 0x56}, 10000)

	got, err := ContentHashReader(bytes.NewReader(data), DefaultLen)
	require.NoError(t, err)
	assert.Equal(t, ContentHash(data, DefaultLen), got)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestContentHashReaderError(t *testing.T) {
	_, err := ContentHashReader(failingReader{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}
