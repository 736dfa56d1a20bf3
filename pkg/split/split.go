package split

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/PhantomInTheWire/square-tiles/pkg/grid"
	"github.com/disintegration/imaging"
)

// TileError records a tile that could not be written.
type TileError struct {
	Row, Col int
	Path     string
	Err      error
}

func (e *TileError) Error() string {
	return fmt.Sprintf("split: tile %d,%d (%s): %v", e.Row, e.Col, e.Path, e.Err)
}

func (e *TileError) Unwrap() error {
	return e.Err
}

// Options controls a Splitter.
type Options struct {
	// OutDir receives the tiles; it is created if missing.
	OutDir string

	// Format is the output file extension, "png" if empty.
	Format string

	Policy grid.Policy

	// AutoRows ignores the requested row count and derives it from the
	// column count and the image's aspect ratio.
	AutoRows bool

	// ContinueOnError keeps rendering after a tile fails to save and
	// reports every failure at the end. By default the first failure
	// aborts the run.
	ContinueOnError bool

	// OnTile, if set, is called after each tile is saved.
	OnTile func(t grid.Tile, path string)

	Logger *slog.Logger
}

// Result describes a completed run.
type Result struct {
	Layout *grid.Layout

	// Files holds the saved tile names relative to the output directory,
	// in row-major order.
	Files []string
}

// Splitter cuts images into square tiles on disk.
type Splitter struct {
	opts   Options
	format imaging.Format
	ext    string
	logger *slog.Logger
}

// New returns a Splitter for opts. The output encoder is resolved here so
// an unusable format fails before any image is read.
func New(opts Options) (*Splitter, error) {
	if opts.Format == "" {
		opts.Format = "png"
	}
	format, err := FormatFor(opts.Format)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Splitter{
		opts:   opts,
		format: format,
		ext:    Extension(format),
		logger: logger,
	}, nil
}

// Layout computes the geometry for img without writing anything.
func (s *Splitter) Layout(img image.Image, rows, cols int) (*grid.Layout, error) {
	b := img.Bounds()
	if s.opts.AutoRows {
		var err error
		if rows, err = grid.DeriveRows(b.Dx(), b.Dy(), cols); err != nil {
			return nil, err
		}
		s.logger.Debug("derived row count", "rows", rows, "cols", cols)
	}
	return s.opts.Policy.Compute(b.Dx(), b.Dy(), rows, cols)
}

// Split loads the image at path and writes rows*cols tiles.
func (s *Splitter) Split(ctx context.Context, path string, rows, cols int) (*Result, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	return s.SplitImage(ctx, img, rows, cols)
}

// SplitImage writes rows*cols tiles of img. Invalid geometry is reported
// before the output directory is touched. When ContinueOnError is set the
// returned Result lists the tiles that were written even if err is non-nil.
func (s *Splitter) SplitImage(ctx context.Context, img image.Image, rows, cols int) (*Result, error) {
	layout, err := s.Layout(img, rows, cols)
	if err != nil {
		return nil, err
	}

	s.logger.Info("computed layout",
		"width", layout.Width,
		"height", layout.Height,
		"rows", layout.Rows,
		"cols", layout.Cols,
		"tile", layout.TileSize,
		"policy", layout.Policy)

	if err := os.MkdirAll(s.opts.OutDir, 0755); err != nil {
		return nil, err
	}

	res := &Result{
		Layout: layout,
		Files:  make([]string, 0, len(layout.Tiles)),
	}

	var errs []error
	for _, t := range layout.Tiles {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		name := TileName(t.Row, t.Col, s.ext)
		out := filepath.Join(s.opts.OutDir, name)
		if err := save(Render(img, t), out, s.format); err != nil {
			terr := &TileError{Row: t.Row, Col: t.Col, Path: out, Err: err}
			if !s.opts.ContinueOnError {
				return res, terr
			}
			s.logger.Warn("tile failed", "row", t.Row, "col", t.Col, "error", err)
			errs = append(errs, terr)
			continue
		}

		res.Files = append(res.Files, name)
		s.logger.Debug("saved tile", "row", t.Row, "col", t.Col, "path", out, "empty", t.Empty())
		if s.opts.OnTile != nil {
			s.opts.OnTile(t, out)
		}
	}

	return res, errors.Join(errs...)
}

func save(img image.Image, path string, format imaging.Format) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imaging.Encode(f, img, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
