/*
Package scope decodes runs of fixed width scalars delimited by nested open
and close marker sequences.

The decoder knows nothing about the data it extracts: a compiled AI script
uses it for its nested rule blocks, but any format that brackets packed
integers between two distinct byte sequences can be read with it.
*/
package scope

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/bodgit/sourcehold/cursor"
	"github.com/bodgit/sourcehold/element"
)

var (
	// ErrUnalignedChunk is returned when a scope's content is not a whole
	// number of cells.
	ErrUnalignedChunk = errors.New("scope: unaligned chunk")
	// ErrInvalidMarker is returned for empty or identical markers.
	ErrInvalidMarker = errors.New("scope: invalid marker")
	// ErrMarkerCollision is returned by Encode when the encoded cells of a
	// sequence contain either marker.
	ErrMarkerCollision = errors.New("scope: cells contain a marker")
)

// Sequence is the decoded content of one closed scope.
type Sequence struct {
	// Order is the index of the closing marker among all closing markers
	// seen, including those of empty scopes.
	Order int

	// Depth is the nesting depth of the scope before it was closed.
	Depth int

	Values []element.Cell
}

func checkMarkers(open, close []byte) error {
	switch {
	case len(open) == 0 || len(close) == 0:
		return fmt.Errorf("%w: empty marker", ErrInvalidMarker)
	case bytes.Equal(open, close):
		return fmt.Errorf("%w: open and close markers are identical", ErrInvalidMarker)
	}
	return nil
}

type chunk struct {
	order, depth, offset int
	b                    []byte
}

func split(c *cursor.Cursor, open, close []byte) []chunk {
	shortest := len(open)
	if len(close) < shortest {
		shortest = len(close)
	}

	var (
		chunks []chunk
		buf    []byte
		depth  int
		closes int
	)

	match := func(m []byte) bool {
		b, err := c.Peek(len(m))
		return err == nil && bytes.Equal(b, m)
	}

	for c.Remaining() >= shortest {
		switch {
		case match(open):
			depth++
			buf = nil
			_ = c.Skip(len(open))
		case match(close):
			chunks = append(chunks, chunk{
				order:  closes,
				depth:  depth,
				offset: c.Offset() - len(buf),
				b:      buf,
			})
			closes++
			depth--
			// An enclosing scope resumes with an empty buffer, so bytes
			// before a nested scope are not emitted a second time with it
			buf = nil
			_ = c.Skip(len(close))
		default:
			b, _ := c.Read(1)
			buf = append(buf, b[0])
		}
	}

	return chunks
}

// Parse scans b for scopes delimited by open and close and decodes the
// content of each closed scope as packed cells described by d. Sequences
// are returned in the order their closing markers appear; empty scopes are
// skipped. Any bytes left once fewer remain than the shorter marker are
// ignored.
func Parse(b, open, close []byte, d element.Descriptor) ([]Sequence, error) {
	if !d.Valid() {
		return nil, element.ErrInvalidDescriptor
	}
	if err := checkMarkers(open, close); err != nil {
		return nil, err
	}

	size := d.Size()

	var seqs []Sequence
	for _, ch := range split(cursor.New(b), open, close) {
		if len(ch.b) == 0 {
			continue
		}
		if r := len(ch.b) % size; r != 0 {
			return nil, &cursor.OffsetError{
				Offset: ch.offset,
				Err:    fmt.Errorf("%w: %d bytes left over from %d byte cells", ErrUnalignedChunk, r, size),
			}
		}

		values := make([]element.Cell, 0, len(ch.b)/size)
		for i := 0; i < len(ch.b); i += size {
			v, err := d.Decode(ch.b[i : i+size])
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}

		seqs = append(seqs, Sequence{
			Order:  ch.order,
			Depth:  ch.depth,
			Values: values,
		})
	}

	return seqs, nil
}

// collision returns the offset within run of the first open or close marker
// found between the run's own markers, or -1.
func collision(run, open, close []byte) int {
	for i := len(open); i < len(run)-len(close); i++ {
		if bytes.HasPrefix(run[i:], open) || bytes.HasPrefix(run[i:], close) {
			return i
		}
	}
	return -1
}

// Encode writes each sequence to w as a flat open, cells, close run.
// Parsing the output with the same markers returns the same values. A
// sequence whose encoded cells would be read back as a marker fails with
// ErrMarkerCollision and nothing is written.
func Encode(w io.Writer, seqs []Sequence, open, close []byte, d element.Descriptor) error {
	if !d.Valid() {
		return element.ErrInvalidDescriptor
	}
	if err := checkMarkers(open, close); err != nil {
		return err
	}

	var (
		buf []byte
		err error
	)
	for i, s := range seqs {
		start := len(buf)
		buf = append(buf, open...)
		for _, v := range s.Values {
			if buf, err = d.Encode(buf, v); err != nil {
				return err
			}
		}
		buf = append(buf, close...)

		if n := collision(buf[start:], open, close); n >= 0 {
			return &cursor.OffsetError{
				Offset: start + n,
				Err:    fmt.Errorf("%w: sequence %d", ErrMarkerCollision, i),
			}
		}
	}

	_, err = w.Write(buf)
	return err
}
