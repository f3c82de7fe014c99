package coord

import "fmt"

// CheckShape verifies that rows has the diamond profile of a map with
// len(rows) rows.
func CheckShape[T any](rows [][]T) error {
	n := len(rows)
	if err := Validate(n); err != nil {
		return err
	}
	for i, row := range rows {
		if want := rowLength(n, i); len(row) != want {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrPrecondition, i, len(row), want)
		}
	}
	return nil
}

// MirrorRows returns a copy of rows with the row order reversed. As the
// diamond is symmetric this is also a flip of the square grid along its
// row axis.
func MirrorRows[T any](rows [][]T) [][]T {
	out := make([][]T, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = append([]T(nil), row...)
	}
	return out
}

// MirrorColumns returns a copy of rows with every row reversed.
func MirrorColumns[T any](rows [][]T) [][]T {
	out := make([][]T, len(rows))
	for i, row := range rows {
		r := make([]T, len(row))
		for j, v := range row {
			r[len(row)-1-j] = v
		}
		out[i] = r
	}
	return out
}

// Board is an n+1 by n+1 checkerboard re-projection of a diamond grid.
type Board[T any] struct {
	size  int
	cells []T
	set   []bool
}

// Size returns the width and height of the board.
func (b *Board[T]) Size() int {
	return b.size
}

// At returns the value at row, col and whether a tile maps there. Cells in
// the complementary checkerboard colour are never set.
func (b *Board[T]) At(row, col int) (T, bool) {
	var zero T
	if row < 0 || row >= b.size || col < 0 || col >= b.size {
		return zero, false
	}
	i := row*b.size + col
	if !b.set[i] {
		return zero, false
	}
	return b.cells[i], true
}

// Checkerboard re-projects a diamond grid with the Staggered mapping.
func Checkerboard[T any](rows [][]T) (*Board[T], error) {
	if err := CheckShape(rows); err != nil {
		return nil, err
	}

	n := len(rows)
	b := &Board[T]{
		size:  n + 1,
		cells: make([]T, (n+1)*(n+1)),
		set:   make([]bool, (n+1)*(n+1)),
	}
	for i, row := range rows {
		for j, v := range row {
			x, y := stagger(n, DiamondPoint{Row: i, Col: j})
			k := (n-x)*b.size + y
			b.cells[k] = v
			b.set[k] = true
		}
	}
	return b, nil
}
