/*
Package element implements the element descriptors used to describe the
scalar cells stored in map and script sections.

A descriptor is written as a short type token: a single letter naming the
scalar kind, optionally preceded or followed by a decimal repeat count. The
letters follow the usual struct packing convention:

	b  int8     B  uint8
	h  int16    H  uint16
	i  int32    I  uint32
	l  int32    L  uint32

All scalars are little endian. A token such as "4B" or "B4" describes a
cell made of four consecutive unsigned bytes.
*/
package element

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDescriptor is returned for a malformed type token.
var ErrInvalidDescriptor = errors.New("element: invalid descriptor")

// Kind is the scalar kind letter of a descriptor.
type Kind byte

const (
	Int8   Kind = 'b'
	Uint8  Kind = 'B'
	Int16  Kind = 'h'
	Uint16 Kind = 'H'
	Int32  Kind = 'i'
	Uint32 Kind = 'I'
	Long   Kind = 'l'
	ULong  Kind = 'L'
)

func (k Kind) width() int {
	switch k {
	case Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Long, ULong:
		return 4
	}
	return 0
}

func (k Kind) signed() bool {
	switch k {
	case Int8, Int16, Int32, Long:
		return true
	}
	return false
}

// Descriptor describes how one cell is laid out in a byte stream. The zero
// value is not valid; use Parse or New.
type Descriptor struct {
	kind  Kind
	count int
}

// New returns a descriptor for count consecutive scalars of kind k.
func New(k Kind, count int) (Descriptor, error) {
	if k.width() == 0 {
		return Descriptor{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidDescriptor, byte(k))
	}
	if count < 1 {
		return Descriptor{}, fmt.Errorf("%w: repeat count %d", ErrInvalidDescriptor, count)
	}
	return Descriptor{kind: k, count: count}, nil
}

// Parse parses a type token such as "H", "4B" or "B4".
func Parse(token string) (Descriptor, error) {
	i := strings.IndexFunc(token, func(r rune) bool {
		return r < '0' || r > '9'
	})
	if i < 0 || i == len(token) {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrInvalidDescriptor, token)
	}

	prefix, suffix := token[:i], token[i+1:]
	if prefix != "" && suffix != "" {
		return Descriptor{}, fmt.Errorf("%w: %q", ErrInvalidDescriptor, token)
	}

	count := 1
	if digits := prefix + suffix; digits != "" {
		n, err := strconv.Atoi(digits)
		if err != nil || strings.IndexFunc(digits, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return Descriptor{}, fmt.Errorf("%w: %q", ErrInvalidDescriptor, token)
		}
		count = n
	}

	d, err := New(Kind(token[i]), count)
	if err != nil {
		return Descriptor{}, fmt.Errorf("%w (token %q)", err, token)
	}
	return d, nil
}

// MustParse is like Parse but panics on error.
func MustParse(token string) Descriptor {
	d, err := Parse(token)
	if err != nil {
		panic(err)
	}
	return d
}

// Valid reports whether d was constructed by New or Parse.
func (d Descriptor) Valid() bool {
	return d.kind.width() != 0 && d.count >= 1
}

// Kind returns the scalar kind.
func (d Descriptor) Kind() Kind { return d.kind }

// Width returns the byte width of one scalar.
func (d Descriptor) Width() int { return d.kind.width() }

// Count returns the number of scalars in a cell.
func (d Descriptor) Count() int { return d.count }

// Signed reports whether the scalars are signed.
func (d Descriptor) Signed() bool { return d.kind.signed() }

// Size returns the byte width of one cell.
func (d Descriptor) Size() int { return d.kind.width() * d.count }

// String returns the canonical type token.
func (d Descriptor) String() string {
	if d.count == 1 {
		return string(d.kind)
	}
	return strconv.Itoa(d.count) + string(d.kind)
}

// MarshalText implements encoding.TextMarshaler.
func (d Descriptor) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, ErrInvalidDescriptor
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Descriptor) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Descriptor) scalar(b []byte) int64 {
	switch d.kind {
	case Int8:
		return int64(int8(b[0]))
	case Uint8:
		return int64(b[0])
	case Int16:
		return int64(int16(binary.LittleEndian.Uint16(b)))
	case Uint16:
		return int64(binary.LittleEndian.Uint16(b))
	case Int32, Long:
		return int64(int32(binary.LittleEndian.Uint32(b)))
	default:
		return int64(binary.LittleEndian.Uint32(b))
	}
}

// Decode decodes one cell from b, which must be exactly Size bytes.
func (d Descriptor) Decode(b []byte) (Cell, error) {
	if len(b) != d.Size() {
		return nil, fmt.Errorf("element: %d bytes for %s cell of %d bytes", len(b), d, d.Size())
	}
	w := d.Width()
	c := make(Cell, d.count)
	for i := range c {
		c[i] = d.scalar(b[i*w : i*w+w])
	}
	return c, nil
}

// Range returns the smallest and largest representable scalar.
func (d Descriptor) Range() (int64, int64) {
	bits := uint(d.Width() * 8)
	if d.Signed() {
		return -1 << (bits - 1), 1<<(bits-1) - 1
	}
	return 0, 1<<bits - 1
}

// Encode appends the encoding of c to dst.
func (d Descriptor) Encode(dst []byte, c Cell) ([]byte, error) {
	if len(c) != d.count {
		return dst, fmt.Errorf("element: cell %v has %d values, %s expects %d", c, len(c), d, d.count)
	}
	lo, hi := d.Range()
	for _, v := range c {
		if v < lo || v > hi {
			return dst, fmt.Errorf("element: value %d out of range for %s", v, d)
		}
		switch d.Width() {
		case 1:
			dst = append(dst, byte(v))
		case 2:
			dst = binary.LittleEndian.AppendUint16(dst, uint16(v))
		default:
			dst = binary.LittleEndian.AppendUint32(dst, uint32(v))
		}
	}
	return dst, nil
}
