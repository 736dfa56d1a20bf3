package split

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/PhantomInTheWire/square-tiles/pkg/grid"
	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned for output formats that can not carry an
// alpha channel or have no encoder.
var ErrUnsupportedFormat = errors.New("split: unsupported output format")

// FormatFor resolves an output file extension, with or without the leading
// dot, to an encoder. Only formats that keep transparency are accepted.
func FormatFor(ext string) (imaging.Format, error) {
	f, err := imaging.FormatFromExtension(ext)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	switch f {
	case imaging.PNG, imaging.TIFF, imaging.BMP:
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q has no alpha channel", ErrUnsupportedFormat, ext)
}

// Extension returns the canonical file extension for f.
func Extension(f imaging.Format) string {
	switch f {
	case imaging.TIFF:
		return "tif"
	default:
		return strings.ToLower(f.String())
	}
}

// TileName returns the file name for the tile at row, col.
func TileName(row, col int, ext string) string {
	return fmt.Sprintf("square_%d_%d.%s", row, col, strings.TrimPrefix(ext, "."))
}

// Render copies the tile's share of src into a new transparent square. src
// is addressed relative to its own bounds, so sub-images work unchanged.
func Render(src image.Image, t grid.Tile) *image.NRGBA {
	dst := imaging.New(t.Size, t.Size, color.NRGBA{})
	if t.Empty() {
		return dst
	}

	part := imaging.Crop(src, t.Source.Add(src.Bounds().Min))
	return imaging.Paste(dst, part, t.Paste)
}
