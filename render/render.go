/*
Package render draws decoded diamond grids as images for visual inspection
and diffing.

Checkerboard draws one pixel per tile on the n+1 by n+1 staggered grid,
Isometric draws every tile as a rhombus in screen space and Compare
highlights the tiles that differ between two grids.
*/
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/bodgit/sourcehold/coord"
	"github.com/bodgit/sourcehold/diamond"
	"github.com/bodgit/sourcehold/palette"
	"github.com/ericpauley/go-quantize/quantize"
	"golang.org/x/image/bmp"
	"golang.org/x/image/vector"
)

const maxColors = 256

var (
	errUnknownFormat = errors.New("render: unknown image format")
	errMissingColor  = errors.New("render: value missing from palette")

	background = color.RGBA{0x00, 0x00, 0x00, 0xff}
	same       = color.RGBA{0xff, 0xff, 0xff, 0xff}
	differ     = color.RGBA{0xff, 0x00, 0x00, 0xff}
)

// Paletted reduces m to at most n colors using median cut quantisation.
func Paletted(m image.Image, n int) *image.Paletted {
	b := m.Bounds()
	q := quantize.MedianCutQuantizer{}
	pm := image.NewPaletted(b, q.Quantize(make(color.Palette, 0, n), m))
	draw.Draw(pm, b, m, b.Min, draw.Src)
	return pm
}

// Checkerboard draws g one pixel per tile. Pixels that no tile maps to
// are left black.
func Checkerboard(g diamond.Grid, p *palette.Palette) (image.Image, error) {
	board, err := coord.Checkerboard(g)
	if err != nil {
		return nil, err
	}
	size := board.Size()
	r := image.Rect(0, 0, size, size)

	if p.Len() < maxColors {
		// Index 0 is the background
		pm := image.NewPaletted(r, append(color.Palette{background}, p.Colors()...))
		for x := 0; x < size; x++ {
			for y := 0; y < size; y++ {
				v, ok := board.At(x, y)
				if !ok {
					continue
				}
				i := p.Index(v)
				if i < 0 {
					return nil, fmt.Errorf("%w: %v", errMissingColor, v)
				}
				pm.SetColorIndex(x, y, uint8(i+1))
			}
		}
		return pm, nil
	}

	m := image.NewRGBA(r)
	draw.Draw(m, r, image.NewUniform(background), image.Point{}, draw.Src)
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			v, ok := board.At(x, y)
			if !ok {
				continue
			}
			c, ok := p.Color(v)
			if !ok {
				return nil, fmt.Errorf("%w: %v", errMissingColor, v)
			}
			m.Set(x, y, c)
		}
	}
	return Paletted(m, maxColors), nil
}

// Compare draws white tiles where a and b agree and red tiles where they
// differ. Both grids must have the same shape.
func Compare(a, b diamond.Grid) (image.Image, error) {
	if err := coord.CheckShape(a); err != nil {
		return nil, err
	}
	if err := coord.CheckShape(b); err != nil {
		return nil, err
	}
	if len(a) != len(b) {
		return nil, fmt.Errorf("render: cannot compare %d rows with %d rows", len(a), len(b))
	}

	n := len(a)
	r := image.Rect(0, 0, n+1, n+1)
	pm := image.NewPaletted(r, color.Palette{background, same, differ})
	for i := range a {
		for j := range a[i] {
			s, err := coord.Staggered(n, coord.DiamondPoint{Row: i, Col: j})
			if err != nil {
				return nil, err
			}
			idx := uint8(1)
			if !a[i][j].Equal(b[i][j]) {
				idx = 2
			}
			pm.SetColorIndex(s.Row, s.Col, idx)
		}
	}
	return pm, nil
}

// Isometric draws every tile of g as a rhombus positioned by proj.
func Isometric(g diamond.Grid, proj coord.Projection, p *palette.Palette) (image.Image, error) {
	if err := coord.CheckShape(g); err != nil {
		return nil, err
	}
	proj.Rows = len(g)
	w, h, err := proj.Bounds()
	if err != nil {
		return nil, err
	}

	m := image.NewRGBA(image.Rect(0, 0, w, h))
	tw, th := proj.TileWidth, proj.TileHeight
	hw, hh := float32(tw/2), float32(th/2)
	z := vector.NewRasterizer(tw, th)

	for i := range g {
		for j := range g[i] {
			s, err := proj.Screen(coord.DiamondPoint{Row: i, Col: j})
			if err != nil {
				return nil, err
			}
			c, ok := p.Color(g[i][j])
			if !ok {
				return nil, fmt.Errorf("%w: %v", errMissingColor, g[i][j])
			}

			z.Reset(tw, th)
			z.MoveTo(hw, 0)
			z.LineTo(float32(tw), hh)
			z.LineTo(hw, float32(th))
			z.LineTo(0, hh)
			z.ClosePath()

			dr := image.Rect(s.X-tw/2, s.Y, s.X+tw/2, s.Y+th)
			z.Draw(m, dr, image.NewUniform(c), image.Point{})
		}
	}
	return m, nil
}

// Format returns the image format implied by a file name.
func Format(file string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(file)), ".")
}

// Encode writes m to w as png, gif or bmp.
func Encode(w io.Writer, m image.Image, format string) error {
	switch strings.ToLower(format) {
	case "png", "":
		return png.Encode(w, m)
	case "gif":
		pm, ok := m.(*image.Paletted)
		if !ok {
			pm = Paletted(m, maxColors)
		}
		return gif.Encode(w, pm, nil)
	case "bmp":
		return bmp.Encode(w, m)
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, format)
	}
}
