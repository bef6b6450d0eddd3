// cursor_test.go
package logpage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorReads(t *testing.T) {
	buf := []byte{
		0x01,
		0x02, 0x03,
		0x04, 0x05, 0x06, 0x07,
		0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d,
		0x0e, 0x0f, 0x10, 0x11, 0x12, 0x13, 0x14, 0x15,
	}
	cur := NewCursor(buf)

	b, err := cur.Byte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), b)

	v16, err := cur.LE16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0302), v16)

	v32, err := cur.LE32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x07060504), v32)

	v48, err := cur.LE48()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0d0c0b0a0908), v48)

	v64, err := cur.LE64()
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1514131211100f0e), v64)

	assert.Equal(t, 0, cur.Remaining())
	assert.Equal(t, len(buf), cur.Offset())
}

// A read past the end must fail with ErrTruncated and leave the cursor
// where it was.
func TestCursorFailsClosed(t *testing.T) {
	cur := NewCursor([]byte{0x01, 0x02})

	_, err := cur.LE32()
	assert.ErrorIs(t, err, ErrTruncated)
	assert.Equal(t, 0, cur.Offset())
	assert.Equal(t, 2, cur.Remaining())

	// The bytes that are there still read fine afterwards
	v, err := cur.LE16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0201), v)

	_, err = cur.Byte()
	assert.ErrorIs(t, err, ErrTruncated)

	err = cur.Skip(1)
	assert.ErrorIs(t, err, ErrTruncated)

	_, err = cur.Bytes(-1)
	assert.ErrorIs(t, err, ErrTruncated)
}

// A declared region larger than the real data clamps to the data; a smaller
// one narrows the walk.
func TestCursorLimit(t *testing.T) {
	cur := NewCursor(make([]byte, 16))
	cur.Limit(1 << 20)
	assert.Equal(t, 16, cur.Remaining())

	cur.Limit(4)
	assert.Equal(t, 4, cur.Remaining())

	_, err := cur.Bytes(4)
	require.NoError(t, err)
	_, err = cur.Byte()
	assert.ErrorIs(t, err, ErrTruncated)

	cur = NewCursor(make([]byte, 8))
	cur.Limit(-3)
	assert.Equal(t, 0, cur.Remaining())
}

func TestCursorUint128(t *testing.T) {
	buf := make([]byte, 16)
	buf[0] = 0x2a
	buf[8] = 0x01
	cur := NewCursor(buf)
	u, err := cur.Uint128()
	require.NoError(t, err)
	assert.Equal(t, Uint128{Lo: 0x2a, Hi: 1}, u)

	_, err = cur.Uint128()
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestLE48(t *testing.T) {
	assert.Equal(t, uint64(0x060504030201), LE48([]byte{1, 2, 3, 4, 5, 6}))
}
