package grid

import "fmt"

// InvalidGridError is returned when the image dimensions or grid counts can
// not produce a layout.
type InvalidGridError struct {
	Width, Height int
	Rows, Cols    int
	Reason        string
}

func (e *InvalidGridError) Error() string {
	return fmt.Sprintf("grid: invalid %dx%d grid for %dx%d image: %s", e.Rows, e.Cols, e.Width, e.Height, e.Reason)
}

func invalid(w, h, rows, cols int, reason string) error {
	return &InvalidGridError{
		Width:  w,
		Height: h,
		Rows:   rows,
		Cols:   cols,
		Reason: reason,
	}
}
