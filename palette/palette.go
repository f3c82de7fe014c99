/*
Package palette assigns stable colors to the distinct values of a decoded
grid so two renderings of maps sharing values use the same colors.

Values are sorted and each is given the color at its position in the
sequence returned by a Generator, so the assignment depends only on the
set of values and never on the order they were encountered in.
*/
package palette

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/bodgit/sourcehold/element"
	"github.com/lucasb-eyer/go-colorful"
)

// Generator returns n colors.
type Generator func(n int) []color.Color

// HCL returns n colors with evenly spaced hues, alternating lightness so
// neighbouring values remain distinguishable.
func HCL(n int) []color.Color {
	cs := make([]color.Color, n)
	for i := range cs {
		l := 0.55 + 0.2*float64(i%2)
		r, g, b := colorful.Hcl(360*float64(i)/float64(n), 0.5, l).Clamped().RGB255()
		cs[i] = color.RGBA{r, g, b, 0xff}
	}
	return cs
}

// Palette maps each distinct value to a color.
type Palette struct {
	values []element.Cell
	colors []color.Color
}

// New builds a palette for the distinct cells in values. A nil gen uses
// HCL.
func New(values []element.Cell, gen Generator) (*Palette, error) {
	if gen == nil {
		gen = HCL
	}

	sorted := append([]element.Cell(nil), values...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Compare(sorted[j]) < 0
	})

	distinct := sorted[:0]
	for i, v := range sorted {
		if i == 0 || !v.Equal(distinct[len(distinct)-1]) {
			distinct = append(distinct, v)
		}
	}

	colors := gen(len(distinct))
	if len(colors) < len(distinct) {
		return nil, fmt.Errorf("palette: generator returned %d colors for %d values", len(colors), len(distinct))
	}

	return &Palette{
		values: distinct,
		colors: colors[:len(distinct)],
	}, nil
}

// FromRows builds a palette from every cell of a grid.
func FromRows(rows [][]element.Cell, gen Generator) (*Palette, error) {
	var values []element.Cell
	for _, row := range rows {
		values = append(values, row...)
	}
	return New(values, gen)
}

// Len returns the number of distinct values.
func (p *Palette) Len() int {
	return len(p.values)
}

// Values returns the distinct values in sorted order.
func (p *Palette) Values() []element.Cell {
	return append([]element.Cell(nil), p.values...)
}

// Colors returns the colors in value order.
func (p *Palette) Colors() color.Palette {
	return append(color.Palette(nil), p.colors...)
}

// Index returns the position of v in the sorted values or -1.
func (p *Palette) Index(v element.Cell) int {
	i := sort.Search(len(p.values), func(i int) bool {
		return p.values[i].Compare(v) >= 0
	})
	if i < len(p.values) && p.values[i].Equal(v) {
		return i
	}
	return -1
}

// Color returns the color assigned to v.
func (p *Palette) Color(v element.Cell) (color.Color, bool) {
	i := p.Index(v)
	if i < 0 {
		return nil, false
	}
	return p.colors[i], true
}
