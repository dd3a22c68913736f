package render

import "flashsync/internal/core"

// GlowField accumulates fading halos around flashing fireflies. It implements
// the swarm's responder interface so a driver can feed it every output.
type GlowField struct {
	w, h   int
	radius int
	decay  float32
	cells  []float32
}

// NewGlowField allocates a field; decay is the fraction kept per Decay call.
func NewGlowField(w, h, radius int, decay float32) *GlowField {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	if radius < 0 {
		radius = 0
	}
	if decay < 0 || decay >= 1 {
		decay = 0.85
	}
	return &GlowField{w: w, h: h, radius: radius, decay: decay, cells: make([]float32, w*h)}
}

// Respond lights a halo around origin when action is set.
func (g *GlowField) Respond(_ int, origin core.Point, action uint8) {
	if action == 0 {
		return
	}
	r := g.radius
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			d := dx
			if d < 0 {
				d = -d
			}
			if ay := abs(dy); ay > d {
				d = ay
			}
			x := ((origin.X+dx)%g.w + g.w) % g.w
			y := ((origin.Y+dy)%g.h + g.h) % g.h
			v := 1 - float32(d)/float32(r+1)
			if i := y*g.w + x; v > g.cells[i] {
				g.cells[i] = v
			}
		}
	}
}

// Decay fades every cell once; call it once per rendered tick.
func (g *GlowField) Decay() {
	for i, v := range g.cells {
		v *= g.decay
		if v < 0.01 {
			v = 0
		}
		g.cells[i] = v
	}
}

// Reset clears the field.
func (g *GlowField) Reset() {
	for i := range g.cells {
		g.cells[i] = 0
	}
}

// Mask exposes intensities in [0, 1] in row-major order.
func (g *GlowField) Mask() []float32 { return g.cells }

// Size returns the field dimensions.
func (g *GlowField) Size() core.Size { return core.Size{W: g.w, H: g.h} }

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
