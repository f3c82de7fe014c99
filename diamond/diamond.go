/*
Package diamond implements a decoder and encoder for the framed diamond
grids used by map sections.

A section describing a map with 2n rows is laid out as a leading frame
marker, then for i counting up from 0 to n and back down to 0 a frame
marker, 2i cells and a closing frame marker, and finally one trailing
frame marker. Frame markers are twice the width of a cell and carry no
tile data. The two empty rows produced when i is 0 are framing only, so
the decoded grid has 2n rows of 2, 4, ... 2n, 2n, ... 4, 2 cells.
*/
package diamond

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/bodgit/sourcehold/coord"
	"github.com/bodgit/sourcehold/cursor"
	"github.com/bodgit/sourcehold/element"
)

var (
	// ErrFrameSizeMismatch is returned when the input is not exactly the
	// size implied by the framing.
	ErrFrameSizeMismatch = errors.New("diamond: frame size mismatch")
	// ErrTrailingData is returned when bytes remain after the final frame.
	// It also matches ErrFrameSizeMismatch.
	ErrTrailingData = fmt.Errorf("%w: trailing data", ErrFrameSizeMismatch)
)

// Grid is a decoded diamond: row i holds coord.RowLength(len(g), i) cells.
type Grid [][]element.Cell

// Rows returns the framing row count, half the number of grid rows.
func (g Grid) Rows() int {
	return len(g) / 2
}

// Frame identifies which frame marker a Hook is called for.
type Frame int

const (
	Header Frame = iota
	RowHeader
	RowFooter
	Footer
)

func (f Frame) String() string {
	switch f {
	case Header:
		return "header"
	case RowHeader:
		return "row header"
	case RowFooter:
		return "row footer"
	case Footer:
		return "footer"
	}
	return fmt.Sprintf("Frame(%d)", int(f))
}

// Hook is called for every frame marker consumed while decoding. Row is
// the framing index, counting up then down, or -1 for the header and
// footer. The marker slice must not be retained.
type Hook func(f Frame, row int, marker []byte)

func checkRows(rows int) error {
	if rows < 2 || rows%2 != 0 {
		return fmt.Errorf("%w: row count %d must be even and positive", coord.ErrPrecondition, rows)
	}
	return nil
}

func checkDescriptor(d element.Descriptor) error {
	if !d.Valid() {
		return element.ErrInvalidDescriptor
	}
	return nil
}

// Size returns the exact number of bytes a section of rows framing rows
// occupies.
func Size(d element.Descriptor, rows int) (int, error) {
	if err := checkDescriptor(d); err != nil {
		return 0, err
	}
	if err := checkRows(rows); err != nil {
		return 0, err
	}
	s := d.Size()
	m := 2 * s
	return 2*m + 4*m*(rows+1) + 2*s*rows*(rows+1), nil
}

type decoder struct {
	c    *cursor.Cursor
	d    element.Descriptor
	hook Hook
	m    int
}

func (dec *decoder) frame(f Frame, row int) error {
	b, err := dec.c.Read(dec.m)
	if err != nil {
		return err
	}
	if dec.hook != nil {
		dec.hook(f, row, b)
	}
	return nil
}

func (dec *decoder) row(i int) ([]element.Cell, error) {
	if err := dec.frame(RowHeader, i); err != nil {
		return nil, err
	}
	var cells []element.Cell
	if i > 0 {
		cells = make([]element.Cell, 2*i)
	}
	for j := range cells {
		b, err := dec.c.Read(dec.d.Size())
		if err != nil {
			return nil, err
		}
		if cells[j], err = dec.d.Decode(b); err != nil {
			return nil, err
		}
	}
	if err := dec.frame(RowFooter, i); err != nil {
		return nil, err
	}
	return cells, nil
}

func (dec *decoder) decode(rows int) (Grid, error) {
	if err := dec.frame(Header, -1); err != nil {
		return nil, err
	}

	g := make(Grid, 0, 2*rows)
	for i := 0; i <= rows; i++ {
		row, err := dec.row(i)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			g = append(g, row)
		}
	}
	for i := rows; i >= 0; i-- {
		row, err := dec.row(i)
		if err != nil {
			return nil, err
		}
		if i > 0 {
			g = append(g, row)
		}
	}

	if err := dec.frame(Footer, -1); err != nil {
		return nil, err
	}

	if n := dec.c.Remaining(); n != 0 {
		return nil, &cursor.OffsetError{
			Offset: dec.c.Offset(),
			Err:    fmt.Errorf("%w: %d bytes", ErrTrailingData, n),
		}
	}

	return g, nil
}

// Decode decodes a framed diamond of rows framing rows from b. The whole
// of b must be consumed.
func Decode(b []byte, d element.Descriptor, rows int) (Grid, error) {
	return DecodeHook(b, d, rows, nil)
}

// DecodeHook is like Decode but calls hook for every frame marker.
func DecodeHook(b []byte, d element.Descriptor, rows int, hook Hook) (Grid, error) {
	if err := checkDescriptor(d); err != nil {
		return nil, err
	}
	if err := checkRows(rows); err != nil {
		return nil, err
	}

	dec := decoder{
		c:    cursor.New(b),
		d:    d,
		hook: hook,
		m:    2 * d.Size(),
	}
	g, err := dec.decode(rows)
	if err != nil {
		if errors.Is(err, cursor.ErrInsufficientData) {
			return nil, fmt.Errorf("%w: %w", ErrFrameSizeMismatch, err)
		}
		return nil, err
	}
	return g, nil
}

type encoder struct {
	w      io.Writer
	d      element.Descriptor
	marker []byte
	buf    []byte
}

func (e *encoder) row(cells []element.Cell) (err error) {
	e.buf = append(e.buf, e.marker...)
	for _, c := range cells {
		if e.buf, err = e.d.Encode(e.buf, c); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, e.marker...)
	return nil
}

func (e *encoder) encode(g Grid) error {
	rows := g.Rows()

	e.buf = append(e.buf, e.marker...)
	for i := 0; i <= rows; i++ {
		var cells []element.Cell
		if i > 0 {
			cells = g[i-1]
		}
		if err := e.row(cells); err != nil {
			return err
		}
	}
	for i := rows; i >= 0; i-- {
		var cells []element.Cell
		if i > 0 {
			cells = g[2*rows-i]
		}
		if err := e.row(cells); err != nil {
			return err
		}
	}
	e.buf = append(e.buf, e.marker...)

	_, err := e.w.Write(e.buf)
	return err
}

// Encode writes g to w in framed diamond form. Every frame slot is filled
// with marker, which must be twice the cell size; a nil marker writes
// zeroes.
func Encode(w io.Writer, g Grid, d element.Descriptor, marker []byte) error {
	if err := checkDescriptor(d); err != nil {
		return err
	}
	if err := coord.CheckShape(g); err != nil {
		return err
	}
	if err := checkRows(g.Rows()); err != nil {
		return err
	}

	m := 2 * d.Size()
	switch {
	case marker == nil:
		marker = make([]byte, m)
	case len(marker) != m:
		return fmt.Errorf("diamond: marker of %d bytes, want %d", len(marker), m)
	}

	size, _ := Size(d, g.Rows())
	e := encoder{
		w:      w,
		d:      d,
		marker: marker,
		buf:    make([]byte, 0, size),
	}
	return e.encode(g)
}

// Marshal is a convenience wrapper around Encode.
func Marshal(g Grid, d element.Descriptor, marker []byte) ([]byte, error) {
	b := new(bytes.Buffer)
	if err := Encode(b, g, d, marker); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
