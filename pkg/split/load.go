package split

import (
	"errors"
	"fmt"
	"image"
	"io/fs"
	"os"

	"github.com/disintegration/imaging"
	_ "github.com/samuel/go-pcx/pcx"
	_ "golang.org/x/image/webp"
)

// SourceNotFoundError is returned when the input path does not name a
// readable file.
type SourceNotFoundError struct {
	Path string
	Err  error
}

func (e *SourceNotFoundError) Error() string {
	return fmt.Sprintf("split: source %s not found: %v", e.Path, e.Err)
}

func (e *SourceNotFoundError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when the input file exists but is not an image
// any registered decoder understands.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("split: decoding %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

var errNotRegular = errors.New("not a regular file")

// Load opens and decodes the image at path.
func Load(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceNotFoundError{Path: path, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, &SourceNotFoundError{Path: path, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &SourceNotFoundError{Path: path, Err: &fs.PathError{Op: "open", Path: path, Err: errNotRegular}}
	}

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	return img, nil
}
