package coord

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sizes = []int{2, 4, 6, 400}

func eachPoint(n int, f func(DiamondPoint)) {
	for i := 0; i < n; i++ {
		for j := 0; j < rowLength(n, i); j++ {
			f(DiamondPoint{Row: i, Col: j})
		}
	}
}

func TestValidate(t *testing.T) {
	for _, n := range []int{-2, 0, 1, 3, 401} {
		assert.True(t, errors.Is(Validate(n), ErrPrecondition), "%d", n)
	}
	for _, n := range sizes {
		assert.NoError(t, Validate(n))
	}
}

func TestRowLength(t *testing.T) {
	var lengths []int
	for i := 0; i < 6; i++ {
		l, err := RowLength(6, i)
		require.NoError(t, err)
		lengths = append(lengths, l)
	}
	assert.Equal(t, []int{2, 4, 6, 6, 4, 2}, lengths)

	_, err := RowLength(6, 6)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = RowLength(6, -1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = RowLength(5, 0)
	assert.True(t, errors.Is(err, ErrPrecondition))
}

func TestRowStart(t *testing.T) {
	var starts []int
	for i := 0; i < 4; i++ {
		s, err := RowStart(4, i)
		require.NoError(t, err)
		starts = append(starts, s)
	}
	assert.Equal(t, []int{0, 2, 6, 10}, starts)
	assert.Equal(t, 12, Cells(4))
	assert.Equal(t, 80400, Cells(400))
}

func TestFileIndex(t *testing.T) {
	for _, n := range sizes {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			next := 0
			eachPoint(n, func(p DiamondPoint) {
				index, err := FileIndex(n, p)
				require.NoError(t, err)
				require.Equal(t, next, index, "%v", p)
				next++

				q, err := FromFileIndex(n, index)
				require.NoError(t, err)
				require.Equal(t, p, q)
			})
			assert.Equal(t, Cells(n), next)
		})
	}

	_, err := FromFileIndex(4, 12)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = FromFileIndex(4, -1)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = FileIndex(4, DiamondPoint{Row: 0, Col: 2})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestSquare(t *testing.T) {
	tables := []struct {
		p DiamondPoint
		s SquarePoint
	}{
		{DiamondPoint{0, 0}, SquarePoint{0, 1}},
		{DiamondPoint{0, 1}, SquarePoint{0, 2}},
		{DiamondPoint{1, 0}, SquarePoint{1, 0}},
		{DiamondPoint{2, 3}, SquarePoint{2, 3}},
		{DiamondPoint{3, 0}, SquarePoint{3, 1}},
	}
	for _, table := range tables {
		s, err := Square(4, table.p)
		require.NoError(t, err)
		assert.Equal(t, table.s, s)
	}

	_, err := FromSquare(4, SquarePoint{0, 0})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = FromSquare(4, SquarePoint{3, 3})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = FromSquare(4, SquarePoint{4, 0})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestSquareRoundTrip(t *testing.T) {
	for _, n := range sizes {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			count := 0
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					s := SquarePoint{Row: i, Col: j}
					p, err := FromSquare(n, s)
					if err != nil {
						require.True(t, errors.Is(err, ErrIndexOutOfRange))
						continue
					}
					count++
					// Both directions stay in the same half
					require.Equal(t, i < n/2, p.Row < n/2)
					back, err := Square(n, p)
					require.NoError(t, err)
					require.Equal(t, s, back)

					index, err := SquareIndex(n, s)
					require.NoError(t, err)
					q, err := FromSquareIndex(n, index)
					require.NoError(t, err)
					require.Equal(t, s, q)
				}
			}
			assert.Equal(t, Cells(n), count)
		})
	}
}

func TestStaggered(t *testing.T) {
	tables := []struct {
		p DiamondPoint
		s SquarePoint
	}{
		{DiamondPoint{0, 0}, SquarePoint{1, 0}},
		{DiamondPoint{0, 1}, SquarePoint{2, 1}},
		{DiamondPoint{1, 0}, SquarePoint{0, 1}},
		{DiamondPoint{1, 1}, SquarePoint{1, 2}},
	}
	for _, table := range tables {
		s, err := Staggered(2, table.p)
		require.NoError(t, err)
		assert.Equal(t, table.s, s)

		p, err := FromStaggered(2, table.s)
		require.NoError(t, err)
		assert.Equal(t, table.p, p)
	}

	_, err := FromStaggered(2, SquarePoint{0, 0})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = FromStaggered(2, SquarePoint{3, 0})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestStaggeredRoundTrip(t *testing.T) {
	for _, n := range sizes {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			seen := make(map[SquarePoint]struct{})
			eachPoint(n, func(p DiamondPoint) {
				s, err := Staggered(n, p)
				require.NoError(t, err)
				require.True(t, s.Row >= 0 && s.Row <= n && s.Col >= 0 && s.Col <= n)
				require.Equal(t, 1, (s.Row+s.Col)%2, "%v", s)
				_, dup := seen[s]
				require.False(t, dup, "%v mapped twice", s)
				seen[s] = struct{}{}

				q, err := FromStaggered(n, s)
				require.NoError(t, err)
				require.Equal(t, p, q)
			})

			// Every odd cell is reached, every even cell is not
			for i := 0; i <= n; i++ {
				for j := 0; j <= n; j++ {
					_, ok := seen[SquarePoint{i, j}]
					require.Equal(t, (i+j)%2 == 1, ok)
				}
			}
		})
	}
}

func TestCheckerboard(t *testing.T) {
	b, err := Checkerboard([][]string{{"a", "b"}, {"c", "d"}})
	require.NoError(t, err)
	assert.Equal(t, 3, b.Size())

	want := map[SquarePoint]string{
		{1, 0}: "a",
		{2, 1}: "b",
		{0, 1}: "c",
		{1, 2}: "d",
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			v, ok := b.At(i, j)
			w, set := want[SquarePoint{i, j}]
			assert.Equal(t, set, ok, "(%d,%d)", i, j)
			assert.Equal(t, w, v)
		}
	}

	_, ok := b.At(3, 0)
	assert.False(t, ok)

	_, err = Checkerboard([][]int{{1, 2}, {3}})
	assert.True(t, errors.Is(err, ErrPrecondition))
	_, err = Checkerboard([][]int{{1, 2}})
	assert.True(t, errors.Is(err, ErrPrecondition))
}

func TestMirror(t *testing.T) {
	rows := [][]int{{1, 2}, {3, 4, 5, 6}, {7, 8, 9, 10}, {11, 12}}

	assert.Equal(t, [][]int{{11, 12}, {7, 8, 9, 10}, {3, 4, 5, 6}, {1, 2}}, MirrorRows(rows))
	assert.Equal(t, [][]int{{2, 1}, {6, 5, 4, 3}, {10, 9, 8, 7}, {12, 11}}, MirrorColumns(rows))
	assert.Equal(t, rows, MirrorRows(MirrorRows(rows)))
	assert.Equal(t, rows, MirrorColumns(MirrorColumns(rows)))
	require.NoError(t, CheckShape(MirrorRows(rows)))

	// The input is untouched
	assert.Equal(t, 1, rows[0][0])

	// Mirroring the diamond mirrors the square grid
	n := len(rows)
	m := MirrorColumns(MirrorRows(rows))
	eachPoint(n, func(p DiamondPoint) {
		s, err := Square(n, p)
		require.NoError(t, err)
		q, err := FromSquare(n, SquarePoint{Row: n - 1 - s.Row, Col: n - 1 - s.Col})
		require.NoError(t, err)
		assert.Equal(t, rows[p.Row][p.Col], m[q.Row][q.Col])
	})
}

func TestBlock(t *testing.T) {
	points, err := Block(4, DiamondPoint{0, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []DiamondPoint{{0, 0}, {0, 1}, {1, 1}, {1, 2}}, points)

	points, err = Block(4, DiamondPoint{2, 1}, 2)
	require.NoError(t, err)
	assert.Equal(t, []DiamondPoint{{2, 1}, {2, 2}, {3, 0}, {3, 1}}, points)

	_, err = Block(4, DiamondPoint{2, 0}, 2)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = Block(4, DiamondPoint{3, 0}, 2)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
	_, err = Block(4, DiamondPoint{0, 0}, 0)
	assert.True(t, errors.Is(err, ErrPrecondition))
}

func TestProjection(t *testing.T) {
	p := DefaultProjection(2)
	require.NoError(t, p.Validate())

	w, h, err := p.Bounds()
	require.NoError(t, err)
	assert.Equal(t, 64, w)
	assert.Equal(t, 48, h)

	s, err := p.Screen(DiamondPoint{0, 0})
	require.NoError(t, err)
	assert.Equal(t, ScreenPoint{32, 16}, s)

	c, err := p.Corners(DiamondPoint{1, 1})
	require.NoError(t, err)
	assert.Equal(t, [4]ScreenPoint{{32, 32}, {48, 40}, {32, 48}, {16, 40}}, c)

	// Every corner of every tile lies inside the bounds
	p = DefaultProjection(6)
	w, h, err = p.Bounds()
	require.NoError(t, err)
	eachPoint(6, func(d DiamondPoint) {
		c, err := p.Corners(d)
		require.NoError(t, err)
		for _, v := range c {
			assert.True(t, v.X >= 0 && v.X <= w && v.Y >= 0 && v.Y <= h, "%v", v)
		}
	})

	_, err = p.Screen(DiamondPoint{6, 0})
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	for _, bad := range []Projection{
		{Rows: 3, TileWidth: 32, TileHeight: 16},
		{Rows: 4, TileWidth: 31, TileHeight: 16},
		{Rows: 4, TileWidth: 32, TileHeight: 0},
		{Rows: 4, TileWidth: 32, TileHeight: 16, XOffset: -1, YOffset: 16},
		{Rows: 4, TileWidth: 32, TileHeight: 16, XOffset: 15, YOffset: 16},
		{Rows: 4, TileWidth: 32, TileHeight: 16, XOffset: 16, YOffset: 15},
	} {
		assert.True(t, errors.Is(bad.Validate(), ErrPrecondition), "%+v", bad)
	}
}
