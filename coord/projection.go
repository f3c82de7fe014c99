package coord

import "fmt"

// Projection places the tiles of a map of Rows rows in isometric screen
// space. Tiles are rhombi TileWidth by TileHeight pixels; consecutive
// checkerboard positions are half a tile apart.
type Projection struct {
	Rows       int
	TileWidth  int
	TileHeight int
	XOffset    int
	YOffset    int
}

// DefaultProjection returns the projection used by the game for a map of
// n rows.
func DefaultProjection(n int) Projection {
	return Projection{
		Rows:       n,
		TileWidth:  32,
		TileHeight: 16,
		XOffset:    16,
		YOffset:    16,
	}
}

// Validate checks the row count and tile dimensions.
func (p Projection) Validate() error {
	if err := Validate(p.Rows); err != nil {
		return err
	}
	if p.TileWidth <= 0 || p.TileHeight <= 0 || p.TileWidth%2 != 0 || p.TileHeight%2 != 0 {
		return fmt.Errorf("%w: tile size %dx%d must be even and positive", ErrPrecondition, p.TileWidth, p.TileHeight)
	}
	// The outermost tiles reach half a tile left of and a whole tile below
	// their anchor
	if p.XOffset < p.TileWidth/2 || p.YOffset < p.TileHeight {
		return fmt.Errorf("%w: offset %d,%d smaller than %d,%d", ErrPrecondition, p.XOffset, p.YOffset, p.TileWidth/2, p.TileHeight)
	}
	return nil
}

// Bounds returns the pixel size of the whole map including the offsets on
// both sides.
func (p Projection) Bounds() (int, int, error) {
	if err := p.Validate(); err != nil {
		return 0, 0, err
	}
	return 2*p.XOffset + p.Rows*p.TileWidth/2, 2*p.YOffset + p.Rows*p.TileHeight/2, nil
}

// Screen returns the top vertex of the rhombus of tile d.
func (p Projection) Screen(d DiamondPoint) (ScreenPoint, error) {
	if err := p.Validate(); err != nil {
		return ScreenPoint{}, err
	}
	if err := d.check(p.Rows); err != nil {
		return ScreenPoint{}, err
	}
	x, y := stagger(p.Rows, d)
	return ScreenPoint{
		X: p.XOffset + (p.Rows-x)*p.TileWidth/2,
		Y: p.YOffset + y*p.TileHeight/2,
	}, nil
}

// Corners returns the top, right, bottom and left vertices of tile d.
func (p Projection) Corners(d DiamondPoint) ([4]ScreenPoint, error) {
	s, err := p.Screen(d)
	if err != nil {
		return [4]ScreenPoint{}, err
	}
	hw, hh := p.TileWidth/2, p.TileHeight/2
	return [4]ScreenPoint{
		{s.X, s.Y},
		{s.X + hw, s.Y + hh},
		{s.X, s.Y + p.TileHeight},
		{s.X - hw, s.Y + hh},
	}, nil
}
