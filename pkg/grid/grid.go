package grid

import (
	"image"
	"math"
)

// Tile describes one output square.
type Tile struct {
	Row, Col int
	Size     int

	// Source is the region of the image, in image space, copied into the
	// tile. It is empty when the cell lies outside the image.
	Source image.Rectangle

	// Paste is where Source.Min lands within the tile's own Size by Size
	// frame.
	Paste image.Point
}

// Empty reports whether the tile carries no image pixels.
func (t Tile) Empty() bool {
	return t.Source.Empty()
}

// Bounds returns the tile's local frame.
func (t Tile) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.Size, t.Size)
}

// Cell returns the tile's square in canvas space.
func (t Tile) Cell() image.Rectangle {
	return image.Rect(t.Col*t.Size, t.Row*t.Size, (t.Col+1)*t.Size, (t.Row+1)*t.Size)
}

// Layout is the complete geometry for one image and grid.
type Layout struct {
	Width, Height int
	Rows, Cols    int
	Policy        Policy

	// TileSize is the side length shared by every tile.
	TileSize int

	// Offset is the position of the image's top-left corner on the canvas.
	Offset image.Point

	// Tiles holds Rows*Cols descriptors in row-major order.
	Tiles []Tile
}

// Canvas returns the grid's extent.
func (l *Layout) Canvas() image.Rectangle {
	return image.Rect(0, 0, l.Cols*l.TileSize, l.Rows*l.TileSize)
}

// Placement returns the image rectangle in canvas space.
func (l *Layout) Placement() image.Rectangle {
	return image.Rect(0, 0, l.Width, l.Height).Add(l.Offset)
}

// Tile returns the descriptor for the given cell.
func (l *Layout) Tile(row, col int) (Tile, bool) {
	if row < 0 || row >= l.Rows || col < 0 || col >= l.Cols {
		return Tile{}, false
	}
	return l.Tiles[row*l.Cols+col], true
}

// Compute lays out a w by h image on a rows by cols grid using PerAxisCeil.
func Compute(w, h, rows, cols int) (*Layout, error) {
	return PerAxisCeil.Compute(w, h, rows, cols)
}

// Compute lays out a w by h image on a rows by cols grid.
func (p Policy) Compute(w, h, rows, cols int) (*Layout, error) {
	switch {
	case w <= 0 || h <= 0:
		return nil, invalid(w, h, rows, cols, "image dimensions must be positive")
	case rows <= 0 || cols <= 0:
		return nil, invalid(w, h, rows, cols, "row and column counts must be positive")
	}

	s, ox, oy, err := p.size(w, h, rows, cols)
	if err != nil {
		return nil, err
	}

	l := &Layout{
		Width:    w,
		Height:   h,
		Rows:     rows,
		Cols:     cols,
		Policy:   p,
		TileSize: s,
		Offset:   image.Pt(ox, oy),
		Tiles:    make([]Tile, 0, rows*cols),
	}

	bounds := image.Rect(0, 0, w, h)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			t := Tile{
				Row:  row,
				Col:  col,
				Size: s,
			}

			// The cell mapped into image space, then clipped
			cell := t.Cell().Sub(l.Offset)
			if src := cell.Intersect(bounds); !src.Empty() {
				t.Source = src
				t.Paste = src.Min.Sub(cell.Min)
			}

			l.Tiles = append(l.Tiles, t)
		}
	}

	return l, nil
}

// DeriveRows picks a row count for cols columns that keeps tiles close to
// the image's aspect ratio: max(1, round(cols * h / w)). Halves round away
// from zero.
func DeriveRows(w, h, cols int) (int, error) {
	if w <= 0 || h <= 0 || cols <= 0 {
		return 0, invalid(w, h, 0, cols, "can not derive rows")
	}
	rows := int(math.Round(float64(cols) * float64(h) / float64(w)))
	if rows < 1 {
		rows = 1
	}
	return rows, nil
}
