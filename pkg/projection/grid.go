package projection

import "fmt"

// Grid is a row-major grid of float32 sampling coordinates with Height rows
// and Width columns. A Grid is never modified after ComputeMaps returns it.
type Grid struct {
	width  int
	height int
	data   []float32
}

// NewGrid returns a width×height grid holding a copy of values, which must
// be in row-major order.
func NewGrid(width, height int, values []float32) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: grid dimensions %dx%d", ErrInvalidParameter, width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: %d values for a %dx%d grid", ErrInvalidParameter, len(values), width, height)
	}
	g := newGrid(width, height)
	copy(g.data, values)
	return g, nil
}

func newGrid(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		data:   make([]float32, width*height),
	}
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// At returns the value stored for destination pixel (row, col), both 0-based.
func (g *Grid) At(row, col int) float32 {
	return g.data[row*g.width+col]
}

// Row returns a copy of row r.
func (g *Grid) Row(r int) []float32 {
	out := make([]float32, g.width)
	copy(out, g.data[r*g.width:(r+1)*g.width])
	return out
}

// Values returns a copy of the whole grid in row-major order.
func (g *Grid) Values() []float32 {
	out := make([]float32, len(g.data))
	copy(out, g.data)
	return out
}

// SameShape reports whether g and other have identical dimensions.
func (g *Grid) SameShape(other *Grid) bool {
	return other != nil && g.width == other.width && g.height == other.height
}
