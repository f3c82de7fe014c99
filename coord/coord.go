/*
Package coord converts between the index spaces used to address the tiles
of a diamond shaped map.

A map of n rows (n even) is stored on disk row by row in "diamond" order:
row i holds RowLength(n, i) tiles, growing by two per row to the middle and
shrinking by two afterwards. The same tiles can be addressed as

  - a flat file index, the position of the tile in the serialised stream;
  - a point on the n by n square game grid, where each diamond row is
    centred;
  - a point on the n+1 by n+1 staggered checkerboard, where the diamond is
    rotated by 45 degrees;
  - a pixel position in isometric screen space.

Every function takes the row count explicitly and has no state.
*/
package coord

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrIndexOutOfRange is returned for an index outside the map.
	ErrIndexOutOfRange = errors.New("coord: index out of range")
	// ErrPrecondition is returned for an invalid row count or tile size.
	ErrPrecondition = errors.New("coord: precondition violated")
)

// DiamondPoint addresses a tile by its row and its position in that row
// in the serialised diamond order.
type DiamondPoint struct {
	Row, Col int
}

func (p DiamondPoint) String() string {
	return fmt.Sprintf("diamond(%d,%d)", p.Row, p.Col)
}

// SquarePoint addresses a tile on an axis aligned grid.
type SquarePoint struct {
	Row, Col int
}

func (p SquarePoint) String() string {
	return fmt.Sprintf("square(%d,%d)", p.Row, p.Col)
}

// ScreenPoint is a pixel position.
type ScreenPoint struct {
	X, Y int
}

// Validate checks that n is a usable row count.
func Validate(n int) error {
	if n < 2 || n%2 != 0 {
		return fmt.Errorf("%w: row count %d must be even and positive", ErrPrecondition, n)
	}
	return nil
}

func outOfRange(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrIndexOutOfRange}, a...)...)
}

func rowLength(n, i int) int {
	if i < n/2 {
		return i*2 + 2
	}
	return (n - i) * 2
}

// RowLength returns the number of tiles in row i.
func RowLength(n, i int) (int, error) {
	if err := Validate(n); err != nil {
		return 0, err
	}
	if i < 0 || i >= n {
		return 0, outOfRange("row %d of %d", i, n)
	}
	return rowLength(n, i), nil
}

// Cells returns the number of tiles in a map of n rows.
func Cells(n int) int {
	h := n / 2
	return 2 * h * (h + 1)
}

func rowStart(n, i int) int {
	if i < n/2 {
		return i * (i + 1)
	}
	return Cells(n) - (n-i)*(n-i+1)
}

// RowStart returns the file index of the first tile in row i.
func RowStart(n, i int) (int, error) {
	if _, err := RowLength(n, i); err != nil {
		return 0, err
	}
	return rowStart(n, i), nil
}

func (p DiamondPoint) check(n int) error {
	if err := Validate(n); err != nil {
		return err
	}
	if p.Row < 0 || p.Row >= n || p.Col < 0 || p.Col >= rowLength(n, p.Row) {
		return outOfRange("%v with %d rows", p, n)
	}
	return nil
}

// FileIndex returns the flat serialised index of p.
func FileIndex(n int, p DiamondPoint) (int, error) {
	if err := p.check(n); err != nil {
		return 0, err
	}
	return rowStart(n, p.Row) + p.Col, nil
}

func isqrt(v int) int {
	r := int(math.Sqrt(float64(v)))
	for r*r > v {
		r--
	}
	for (r+1)*(r+1) <= v {
		r++
	}
	return r
}

// FromFileIndex is the inverse of FileIndex.
func FromFileIndex(n, index int) (DiamondPoint, error) {
	if err := Validate(n); err != nil {
		return DiamondPoint{}, err
	}
	total := Cells(n)
	if index < 0 || index >= total {
		return DiamondPoint{}, outOfRange("file index %d of %d", index, total)
	}

	var i int
	if index < total/2 {
		// Largest i with i(i+1) <= index
		i = (isqrt(4*index+1) - 1) / 2
	} else {
		// Smallest m with m(m+1) >= total-index, counting rows from the end
		r := total - index
		m := (isqrt(4*r+1) - 1) / 2
		if m*(m+1) < r {
			m++
		}
		i = n - m
	}

	return DiamondPoint{Row: i, Col: index - rowStart(n, i)}, nil
}

func squareOffset(n, i int) int {
	if i < n/2 {
		return n/2 - 1 - i
	}
	return i - n/2
}

// Square maps p onto the n by n game grid by centring each row.
func Square(n int, p DiamondPoint) (SquarePoint, error) {
	if err := p.check(n); err != nil {
		return SquarePoint{}, err
	}
	return SquarePoint{Row: p.Row, Col: p.Col + squareOffset(n, p.Row)}, nil
}

// FromSquare is the inverse of Square. Points in the corners of the square
// grid that lie outside the diamond return ErrIndexOutOfRange.
func FromSquare(n int, s SquarePoint) (DiamondPoint, error) {
	if err := Validate(n); err != nil {
		return DiamondPoint{}, err
	}
	if s.Row < 0 || s.Row >= n || s.Col < 0 || s.Col >= n {
		return DiamondPoint{}, outOfRange("%v with %d rows", s, n)
	}
	p := DiamondPoint{Row: s.Row, Col: s.Col - squareOffset(n, s.Row)}
	if p.Col < 0 || p.Col >= rowLength(n, p.Row) {
		return DiamondPoint{}, outOfRange("%v is outside the diamond", s)
	}
	return p, nil
}

// SquareIndex returns the flat row-major index of s on the n by n grid.
func SquareIndex(n int, s SquarePoint) (int, error) {
	if err := Validate(n); err != nil {
		return 0, err
	}
	if s.Row < 0 || s.Row >= n || s.Col < 0 || s.Col >= n {
		return 0, outOfRange("%v with %d rows", s, n)
	}
	return s.Row*n + s.Col, nil
}

// FromSquareIndex is the inverse of SquareIndex.
func FromSquareIndex(n, index int) (SquarePoint, error) {
	if err := Validate(n); err != nil {
		return SquarePoint{}, err
	}
	if index < 0 || index >= n*n {
		return SquarePoint{}, outOfRange("square index %d of %d", index, n*n)
	}
	return SquarePoint{Row: index / n, Col: index % n}, nil
}

func stagger(n int, p DiamondPoint) (int, int) {
	h := n / 2
	if p.Row < h {
		return p.Row*2 + 1 - p.Col, p.Col
	}
	return n - p.Col, (p.Row-h)*2 + 1 + p.Col
}

// Staggered maps p onto the n+1 by n+1 checkerboard. Only cells whose
// row and column sum to an odd number are reachable.
func Staggered(n int, p DiamondPoint) (SquarePoint, error) {
	if err := p.check(n); err != nil {
		return SquarePoint{}, err
	}
	x, y := stagger(n, p)
	return SquarePoint{Row: n - x, Col: y}, nil
}

// FromStaggered is the inverse of Staggered.
func FromStaggered(n int, s SquarePoint) (DiamondPoint, error) {
	if err := Validate(n); err != nil {
		return DiamondPoint{}, err
	}
	if s.Row < 0 || s.Row > n || s.Col < 0 || s.Col > n {
		return DiamondPoint{}, outOfRange("%v with %d rows", s, n)
	}

	h := n / 2
	x, y := n-s.Row, s.Col

	// Top half: x = 2i+1-j, y = j
	if k := x - 1 + y; k >= 0 && k%2 == 0 {
		p := DiamondPoint{Row: k / 2, Col: y}
		if p.Row < h && p.Col < rowLength(n, p.Row) {
			return p, nil
		}
	}

	// Bottom half: x = n-j, y = 2(i-h)+1+j
	j := n - x
	if k := y - 1 - j; k >= 0 && k%2 == 0 {
		p := DiamondPoint{Row: k/2 + h, Col: j}
		if p.Row < n && p.Col < rowLength(n, p.Row) {
			return p, nil
		}
	}

	return DiamondPoint{}, outOfRange("%v is not a tile of the checkerboard", s)
}

// Block returns the points of a size by size block whose first tile is
// top. Each subsequent row is shifted by half the growth of its row
// length so the block stays aligned.
func Block(n int, top DiamondPoint, size int) ([]DiamondPoint, error) {
	if err := top.check(n); err != nil {
		return nil, err
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: block size %d", ErrPrecondition, size)
	}

	base := rowLength(n, top.Row)
	points := make([]DiamondPoint, 0, size*size)
	for i := 0; i < size; i++ {
		row := top.Row + i
		if row >= n {
			return nil, outOfRange("block row %d of %d", row, n)
		}
		length := rowLength(n, row)
		shift := (length - base) / 2
		for j := 0; j < size; j++ {
			col := top.Col + j + shift
			if col < 0 || col >= length {
				return nil, outOfRange("block %v", DiamondPoint{row, col})
			}
			points = append(points, DiamondPoint{Row: row, Col: col})
		}
	}
	return points, nil
}
