// cursor.go
//
// Bounds-checked walking of a single log page buffer
//
// Log page contents come straight from device firmware, so every length field
// inside the buffer is untrusted. The Cursor never advances past its end; a
// read that would do so fails with ErrTruncated and leaves the offset where
// it was, so a decoder can report how far it got.
package logpage

import (
	"encoding/binary"
	"errors"
)

var ErrTruncated = errors.New("log page truncated")

// Cursor tracks a current offset and an end bound over one decode buffer.
// It lives only for the duration of a single decoder invocation.
type Cursor struct {
	buf []byte
	off int
	end int
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf, end: len(buf)}
}

// Offset is the current position relative to the start of the buffer.
func (c *Cursor) Offset() int {
	return c.off
}

func (c *Cursor) Remaining() int {
	return c.end - c.off
}

// Limit narrows the cursor's end bound to n bytes past the current offset.
// A bound larger than what the buffer holds is clamped; the declared region
// can never extend past the real data.
func (c *Cursor) Limit(n int) {
	if n < 0 {
		n = 0
	}
	if c.off+n < c.end {
		c.end = c.off + n
	}
}

// Skip advances over n bytes without reading them.
func (c *Cursor) Skip(n int) error {
	if n < 0 || n > c.Remaining() {
		return ErrTruncated
	}
	c.off += n
	return nil
}

// Bytes consumes the next n bytes. The returned slice aliases the decode
// buffer and must not be retained past the decode.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, ErrTruncated
	}
	b := c.buf[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *Cursor) Byte() (byte, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) LE16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) LE32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// LE48 decodes the 6-byte little-endian counters used by vendor SMART
// attributes. Missing from encoding/binary, same as it was from endian.h.
func (c *Cursor) LE48() (uint64, error) {
	b, err := c.Bytes(6)
	if err != nil {
		return 0, err
	}
	return LE48(b), nil
}

func (c *Cursor) LE64() (uint64, error) {
	b, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *Cursor) Uint128() (Uint128, error) {
	b, err := c.Bytes(16)
	if err != nil {
		return Uint128{}, err
	}
	return Uint128FromLE(b), nil
}

// LE48 decodes a 6-byte little-endian value from a slice already known to
// hold at least 6 bytes.
func LE48(b []byte) uint64 {
	return uint64(binary.LittleEndian.Uint32(b)) |
		uint64(binary.LittleEndian.Uint16(b[4:]))<<32
}
