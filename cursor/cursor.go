/*
Package cursor implements a read-only cursor over an in-memory byte slice.

It is the foundation of the framed diamond and bracket scope decoders; it
never copies the underlying data and a Cursor must not be shared between
goroutines.
*/
package cursor

import (
	"errors"
	"fmt"
)

// ErrInsufficientData is returned when fewer bytes remain than requested.
var ErrInsufficientData = errors.New("cursor: insufficient data")

// OffsetError records the byte offset at which a decode failed.
type OffsetError struct {
	Offset int
	Err    error
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *OffsetError) Unwrap() error {
	return e.Err
}

// Cursor reads forward through a byte slice.
type Cursor struct {
	b   []byte
	off int
}

// New returns a Cursor positioned at the start of b.
func New(b []byte) *Cursor {
	return &Cursor{b: b}
}

// Peek returns the next n bytes without advancing.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, &OffsetError{Offset: c.off, Err: ErrInsufficientData}
	}
	return c.b[c.off : c.off+n : c.off+n], nil
}

// Read returns the next n bytes and advances past them.
func (c *Cursor) Read(n int) ([]byte, error) {
	b, err := c.Peek(n)
	if err != nil {
		return nil, err
	}
	c.off += n
	return b, nil
}

// Skip advances past the next n bytes.
func (c *Cursor) Skip(n int) error {
	_, err := c.Read(n)
	return err
}

// Remaining returns the number of unconsumed bytes.
func (c *Cursor) Remaining() int {
	return len(c.b) - c.off
}

// Offset returns the number of consumed bytes.
func (c *Cursor) Offset() int {
	return c.off
}
