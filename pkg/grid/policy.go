package grid

import (
	"errors"
	"fmt"
	"strings"
)

// Policy selects how the tile side length is derived from the image size.
type Policy int

const (
	// PerAxisCeil sizes tiles so that the grid covers the image on both
	// axes without padding the shorter axis to a square first.
	PerAxisCeil Policy = iota
	// SquarePad pads the image to a square and floor-divides its side by
	// the larger grid count.
	SquarePad
)

var errUnknownPolicy = errors.New("grid: unknown policy")

func (p Policy) String() string {
	switch p {
	case PerAxisCeil:
		return "ceil"
	case SquarePad:
		return "square"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// ParsePolicy maps a configuration value onto a Policy. The empty string
// selects PerAxisCeil.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ceil", "per-axis":
		return PerAxisCeil, nil
	case "square", "pad":
		return SquarePad, nil
	}
	return 0, fmt.Errorf("%w: %q", errUnknownPolicy, s)
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Policy) UnmarshalText(b []byte) error {
	v, err := ParsePolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// size returns the tile side and the centering offset for a w by h image.
func (p Policy) size(w, h, rows, cols int) (s, ox, oy int, err error) {
	switch p {
	case PerAxisCeil:
		s = ceilDiv(w, cols)
		if t := ceilDiv(h, rows); t > s {
			s = t
		}
		return s, (cols*s - w) / 2, (rows*s - h) / 2, nil
	case SquarePad:
		side := w
		if h > side {
			side = h
		}
		n := cols
		if rows > n {
			n = rows
		}
		s = side / n
		if s == 0 {
			return 0, 0, 0, invalid(w, h, rows, cols, "grid is finer than the padded image")
		}
		return s, (side - w) / 2, (side - h) / 2, nil
	}
	return 0, 0, 0, fmt.Errorf("%w: %d", errUnknownPolicy, int(p))
}
