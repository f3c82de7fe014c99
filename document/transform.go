package document

import (
	"errors"
	"fmt"

	"github.com/bodgit/sourcehold/coord"
	"github.com/bodgit/sourcehold/diamond"
	"github.com/bodgit/sourcehold/element"
	"github.com/bodgit/sourcehold/layout"
)

var errTransformed = errors.New("document: transform already applied")

// Options are the post-decode transforms applied to diamond sections. They
// are recorded in the document so they can be reverted before encoding.
type Options struct {
	MirrorRows    bool   `json:"mirror_rows,omitempty"`
	MirrorColumns bool   `json:"mirror_columns,omitempty"`
	Omit          *int64 `json:"omit,omitempty"`
}

// IsZero reports whether o changes nothing.
func (o Options) IsZero() bool {
	return !o.MirrorRows && !o.MirrorColumns && o.Omit == nil
}

func mirror(g diamond.Grid, o Options) diamond.Grid {
	if o.MirrorRows {
		g = coord.MirrorRows(g)
	}
	if o.MirrorColumns {
		g = coord.MirrorColumns(g)
	}
	return g
}

func sparse(g diamond.Grid, omit element.Cell) []Cell {
	cells := []Cell{}
	for i, row := range g {
		for j, v := range row {
			if !v.Equal(omit) {
				cells = append(cells, Cell{Row: i, Col: j, Value: v})
			}
		}
	}
	return cells
}

func dense(s *Section, fill element.Cell) (diamond.Grid, error) {
	n := 2 * s.Rows
	if err := coord.Validate(n); err != nil {
		return nil, fmt.Errorf("document: section %q: %w", s.Name, err)
	}
	g := make(diamond.Grid, n)
	for i := range g {
		l, _ := coord.RowLength(n, i)
		g[i] = make([]element.Cell, l)
		for j := range g[i] {
			g[i][j] = fill
		}
	}
	for _, c := range s.Cells {
		if c.Row < 0 || c.Row >= n || c.Col < 0 || c.Col >= len(g[c.Row]) {
			return nil, fmt.Errorf("document: section %q: %w: cell (%d,%d)", s.Name, coord.ErrIndexOutOfRange, c.Row, c.Col)
		}
		g[c.Row][c.Col] = c.Value
	}
	return g, nil
}

// Apply returns a copy of d with o applied to every diamond section.
func Apply(d *Document, o Options) (*Document, error) {
	if d.Transform != nil {
		return nil, errTransformed
	}
	out := &Document{
		Layout:   d.Layout,
		Sections: append([]Section(nil), d.Sections...),
	}
	if o.IsZero() {
		return out, nil
	}
	t := o
	out.Transform = &t

	for i := range out.Sections {
		s := &out.Sections[i]
		if s.Kind != layout.Diamond {
			continue
		}
		s.Grid = mirror(s.Grid, o)
		if o.Omit != nil {
			s.Cells = sparse(s.Grid, element.Scalar(*o.Omit))
			s.Grid = nil
		}
	}
	return out, nil
}

// Revert returns a copy of d with its recorded transform undone.
func Revert(d *Document) (*Document, error) {
	out := &Document{
		Layout:   d.Layout,
		Sections: append([]Section(nil), d.Sections...),
	}
	if d.Transform == nil {
		return out, nil
	}
	o := *d.Transform

	for i := range out.Sections {
		s := &out.Sections[i]
		if s.Kind != layout.Diamond {
			continue
		}
		if o.Omit != nil {
			g, err := dense(s, element.Scalar(*o.Omit))
			if err != nil {
				return nil, err
			}
			s.Grid, s.Cells = g, nil
		}
		// Both flips are their own inverse and commute
		s.Grid = mirror(s.Grid, o)
	}
	return out, nil
}
