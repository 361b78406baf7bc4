package hci

import "fmt"

// cursor is a read position over an immutable buffer. Every step takes the
// cursor by value and returns the advanced copy, so a failed step leaves the
// caller's position untouched.
type cursor struct {
	buf []byte
	off int
}

func newCursor(b []byte) cursor { return cursor{buf: b} }

func (c cursor) remaining() int { return len(c.buf) - c.off }

func (c cursor) u8() (cursor, uint8, error) {
	if c.remaining() < 1 {
		return c, 0, fmt.Errorf("%w: need 1 byte at offset %d", ErrTruncated, c.off)
	}
	v := c.buf[c.off]
	c.off++
	return c, v, nil
}

func (c cursor) take(n int) (cursor, []byte, error) {
	if c.remaining() < n {
		return c, nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncated, n, c.off, c.remaining())
	}
	v := c.buf[c.off : c.off+n]
	c.off += n
	return c, v, nil
}

// end fails unless every byte has been consumed.
func (c cursor) end() error {
	if n := c.remaining(); n > 0 {
		return fmt.Errorf("%w: %d unconsumed at offset %d", ErrTrailingBytes, n, c.off)
	}
	return nil
}
