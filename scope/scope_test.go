package scope

import (
	"bytes"
	"errors"
	"testing"

	"github.com/bodgit/sourcehold/cursor"
	"github.com/bodgit/sourcehold/element"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	lparen = []byte("(")
	rparen = []byte(")")
)

func values(seqs []Sequence) [][]element.Cell {
	out := make([][]element.Cell, len(seqs))
	for i, s := range seqs {
		out[i] = s.Values
	}
	return out
}

func TestParseCloseOrder(t *testing.T) {
	b := []byte("(\x01)(\x02)((\x03)(\x04))")

	seqs, err := Parse(b, lparen, rparen, element.MustParse("B"))
	require.NoError(t, err)

	assert.Equal(t, [][]element.Cell{{{1}}, {{2}}, {{3}}, {{4}}}, values(seqs))

	// The enclosing scope closes last with nothing left in it
	var orders, depths []int
	for _, s := range seqs {
		orders = append(orders, s.Order)
		depths = append(depths, s.Depth)
	}
	assert.Equal(t, []int{0, 1, 2, 3}, orders)
	assert.Equal(t, []int{1, 1, 2, 2}, depths)
}

func TestParseOpenResetsBuffer(t *testing.T) {
	b := []byte("(\x01\x02(\x03)\x04)")

	seqs, err := Parse(b, lparen, rparen, element.MustParse("B"))
	require.NoError(t, err)

	// Bytes before the nested open are discarded, bytes after the nested
	// close belong to the enclosing scope
	assert.Equal(t, [][]element.Cell{{{3}}, {{4}}}, values(seqs))
}

func TestParseWideElements(t *testing.T) {
	open := []byte{0xff, 0xff, 0xff, 0x01}
	close := []byte{0xff, 0xff, 0xff, 0x02}

	b := bytes.Join([][]byte{
		open,
		{0x01, 0x00, 0x00, 0x00, 0xfe, 0xff, 0xff, 0xff},
		close,
		open, close,
		open,
		{0x07, 0x00, 0x00, 0x00},
		close,
		{0xaa, 0xbb}, // ignored, shorter than either marker
	}, nil)

	seqs, err := Parse(b, open, close, element.MustParse("i"))
	require.NoError(t, err)
	assert.Equal(t, [][]element.Cell{{{1}, {-2}}, {{7}}}, values(seqs))
	assert.Equal(t, 0, seqs[0].Order)
	assert.Equal(t, 2, seqs[1].Order)
}

func TestParseTuples(t *testing.T) {
	seqs, err := Parse([]byte("(\x01\x02\x03\x04)"), lparen, rparen, element.MustParse("2B"))
	require.NoError(t, err)
	assert.Equal(t, [][]element.Cell{{{1, 2}, {3, 4}}}, values(seqs))
}

func TestParseUnaligned(t *testing.T) {
	b := []byte("(\x01\x00)(\x01\x02\x03)")

	seqs, err := Parse(b, lparen, rparen, element.MustParse("H"))
	assert.Nil(t, seqs)
	assert.True(t, errors.Is(err, ErrUnalignedChunk))

	var oe *cursor.OffsetError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, 5, oe.Offset)
}

func TestParseInvalid(t *testing.T) {
	d := element.MustParse("B")

	_, err := Parse(nil, nil, rparen, d)
	assert.True(t, errors.Is(err, ErrInvalidMarker))

	_, err = Parse(nil, lparen, lparen, d)
	assert.True(t, errors.Is(err, ErrInvalidMarker))

	_, err = Parse(nil, lparen, rparen, element.Descriptor{})
	assert.True(t, errors.Is(err, element.ErrInvalidDescriptor))

	seqs, err := Parse(nil, lparen, rparen, d)
	assert.NoError(t, err)
	assert.Empty(t, seqs)
}

func TestEncode(t *testing.T) {
	d := element.MustParse("h")
	open, close := []byte{0x80, 0x80, 0x01}, []byte{0x80, 0x80, 0x02}
	in := []Sequence{
		{Values: []element.Cell{{1}, {-1}, {300}}},
		{Values: []element.Cell{{42}}},
	}

	var b bytes.Buffer
	require.NoError(t, Encode(&b, in, open, close, d))

	out, err := Parse(b.Bytes(), open, close, d)
	require.NoError(t, err)
	assert.Equal(t, values(in), values(out))

	assert.Error(t, Encode(&b, []Sequence{{Values: []element.Cell{{1 << 20}}}}, open, close, d))
	assert.True(t, errors.Is(Encode(&b, in, open, open, d), ErrInvalidMarker))
}

func TestEncodeMarkerCollision(t *testing.T) {
	d := element.MustParse("H")
	open, close := []byte{0xff, 0x01}, []byte{0xff, 0x02}

	tables := map[string]struct {
		values []element.Cell
		offset int
	}{
		"open":     {[]element.Cell{{7}, {0x01ff}, {9}}, 4},
		"close":    {[]element.Cell{{0x02ff}}, 2},
		"straddle": {[]element.Cell{{0xff00}, {0x0001}}, 3},
	}

	for name, table := range tables {
		t.Run(name, func(t *testing.T) {
			var b bytes.Buffer
			err := Encode(&b, []Sequence{{Values: []element.Cell{{1}}}, {Values: table.values}}, open, close, d)
			require.True(t, errors.Is(err, ErrMarkerCollision), err)
			assert.Zero(t, b.Len())

			var oe *cursor.OffsetError
			require.True(t, errors.As(err, &oe))
			assert.Equal(t, 6+table.offset, oe.Offset)
		})
	}

	// Marker bytes split across cells without forming a marker are fine
	var b bytes.Buffer
	in := []Sequence{{Values: []element.Cell{{0x00ff}, {0x0300}}}}
	require.NoError(t, Encode(&b, in, open, close, d))
	out, err := Parse(b.Bytes(), open, close, d)
	require.NoError(t, err)
	assert.Equal(t, values(in), values(out))
}
