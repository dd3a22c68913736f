package core

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// Point converts a linear index back into coordinates.
func (g *ByteGrid) Point(idx int) Point { return Point{X: idx % g.W, Y: idx / g.W} }

// Set writes v at p, wrapping out-of-range coordinates.
func (g *ByteGrid) Set(p Point, v uint8) {
	x, y := g.Wrap(p.X, p.Y)
	g.data[g.Index(x, y)] = v
}

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *ByteGrid) Wrap(x, y int) (int, int) {
	x = (x%g.W + g.W) % g.W
	y = (y%g.H + g.H) % g.H
	return x, y
}

// Distance is the toroidal Chebyshev distance between a and b, i.e. the
// radius of the smallest wrapped square around a that contains b.
func (g *ByteGrid) Distance(a, b Point) int {
	dx := wrapDelta(a.X-b.X, g.W)
	dy := wrapDelta(a.Y-b.Y, g.H)
	if dx > dy {
		return dx
	}
	return dy
}

func wrapDelta(d, n int) int {
	if d < 0 {
		d = -d
	}
	d %= n
	if n-d < d {
		return n - d
	}
	return d
}

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}
