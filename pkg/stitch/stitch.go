// Package stitch reassembles a directory of square tiles into the canvas they
// were cut from.
package stitch

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/PhantomInTheWire/square-tiles/pkg/split"
	"github.com/disintegration/imaging"
)

var (
	ErrNoTiles        = errors.New("stitch: no tiles found")
	ErrIncompleteGrid = errors.New("stitch: incomplete grid")
	ErrSizeMismatch   = errors.New("stitch: tile size mismatch")
	ErrOutOfBounds    = errors.New("stitch: image does not fit canvas")
)

var tileName = regexp.MustCompile(`^square_(\d+)_(\d+)\.[A-Za-z0-9]+$`)

// ParseTileName extracts the grid position from a tile file name.
func ParseTileName(name string) (row, col int, ok bool) {
	m := tileName.FindStringSubmatch(name)
	if m == nil {
		return 0, 0, false
	}
	row, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, 0, false
	}
	col, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return row, col, true
}

// Canvas loads every tile in dir and draws them onto a single canvas. The
// tiles must form a complete rectangular grid of equal squares.
func Canvas(dir string) (*image.NRGBA, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type cell struct{ row, col int }
	files := make(map[cell]string)
	rows, cols := 0, 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		row, col, ok := ParseTileName(e.Name())
		if !ok {
			continue
		}
		if _, dup := files[cell{row, col}]; dup {
			return nil, fmt.Errorf("%w: duplicate tile %d,%d", ErrIncompleteGrid, row, col)
		}
		files[cell{row, col}] = filepath.Join(dir, e.Name())
		if row >= rows {
			rows = row + 1
		}
		if col >= cols {
			cols = col + 1
		}
	}

	if len(files) == 0 {
		return nil, ErrNoTiles
	}
	if len(files) != rows*cols {
		return nil, fmt.Errorf("%w: found %d of %dx%d tiles", ErrIncompleteGrid, len(files), rows, cols)
	}

	var canvas *image.NRGBA
	size := 0
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			path, ok := files[cell{row, col}]
			if !ok {
				return nil, fmt.Errorf("%w: missing tile %d,%d", ErrIncompleteGrid, row, col)
			}

			tile, err := split.Load(path)
			if err != nil {
				return nil, err
			}

			b := tile.Bounds()
			if canvas == nil {
				size = b.Dx()
				canvas = imaging.New(cols*size, rows*size, color.NRGBA{})
			}
			if b.Dx() != size || b.Dy() != size {
				return nil, fmt.Errorf("%w: %s is %dx%d, want %dx%d", ErrSizeMismatch, path, b.Dx(), b.Dy(), size, size)
			}

			canvas = imaging.Paste(canvas, tile, image.Pt(col*size, row*size))
		}
	}

	return canvas, nil
}

// Restore cuts a w by h image out of the center of canvas, undoing the
// centering applied when the tiles were made.
func Restore(canvas image.Image, w, h int) (*image.NRGBA, error) {
	b := canvas.Bounds()
	if w <= 0 || h <= 0 || w > b.Dx() || h > b.Dy() {
		return nil, fmt.Errorf("%w: %dx%d in %dx%d", ErrOutOfBounds, w, h, b.Dx(), b.Dy())
	}

	origin := b.Min.Add(image.Pt((b.Dx()-w)/2, (b.Dy()-h)/2))
	return imaging.Crop(canvas, image.Rectangle{Min: origin, Max: origin.Add(image.Pt(w, h))}), nil
}
