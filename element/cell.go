package element

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Cell is the decoded value of one grid cell or scope element: a single
// scalar, or a tuple when the descriptor carries a repeat count.
type Cell []int64

// Scalar returns a single scalar cell.
func Scalar(v int64) Cell {
	return Cell{v}
}

// IsScalar reports whether c holds exactly one value.
func (c Cell) IsScalar() bool {
	return len(c) == 1
}

// Equal reports whether c and o hold the same values.
func (c Cell) Equal(o Cell) bool {
	return c.Compare(o) == 0
}

// Compare orders cells lexicographically, shorter cells first on a tie.
func (c Cell) Compare(o Cell) int {
	for i := 0; i < len(c) && i < len(o); i++ {
		switch {
		case c[i] < o[i]:
			return -1
		case c[i] > o[i]:
			return 1
		}
	}
	switch {
	case len(c) < len(o):
		return -1
	case len(c) > len(o):
		return 1
	}
	return 0
}

func (c Cell) String() string {
	if c.IsScalar() {
		return strconv.FormatInt(c[0], 10)
	}
	s := make([]string, len(c))
	for i, v := range c {
		s[i] = strconv.FormatInt(v, 10)
	}
	return "(" + strings.Join(s, ",") + ")"
}

// MarshalJSON encodes a scalar as a bare number and a tuple as an array.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.IsScalar() {
		return strconv.AppendInt(nil, c[0], 10), nil
	}
	return json.Marshal([]int64(c))
}

// UnmarshalJSON accepts either a number or an array of numbers.
func (c *Cell) UnmarshalJSON(b []byte) error {
	var v int64
	if err := json.Unmarshal(b, &v); err == nil {
		*c = Cell{v}
		return nil
	}
	var t []int64
	if err := json.Unmarshal(b, &t); err != nil {
		return fmt.Errorf("element: cannot decode cell %s", b)
	}
	if len(t) == 0 {
		return fmt.Errorf("element: empty cell")
	}
	*c = t
	return nil
}
