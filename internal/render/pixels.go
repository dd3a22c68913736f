package render

import (
	"image/color"
	"math"
)

// MonoPalette draws empty cells black and every other value white. It is used
// for sims that bring no palette of their own.
var MonoPalette = []color.RGBA{{A: 255}, {R: 255, G: 255, B: 255, A: 255}}

// GlowTint is the colour a fully lit halo lifts an empty cell toward.
var GlowTint = color.RGBA{R: 255, G: 230, B: 110, A: 255}

// glowStrength caps how far a halo moves a cell toward the tint.
const glowStrength = 0.6

// fillFieldRGBA converts display cells into RGBA pixels in buf. Values index
// into palette, clamped to its last entry. When glow matches cells in length,
// empty cells (value 0) are lifted toward tint by their glow; occupied cells
// keep their state colour. An empty palette clears buf to transparent black.
func fillFieldRGBA(buf []byte, cells []uint8, palette []color.RGBA, glow []float32, tint color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}
	if len(glow) != len(cells) {
		glow = nil
	}

	last := len(palette) - 1
	for i, c := range cells {
		col := palette[min(int(c), last)]
		if c == 0 && glow != nil {
			col = blendGlow(col, tint, glow[i])
		}
		base := i * 4
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// blendGlow mixes tint into col, easing intensity with a square root so faint
// halo edges stay visible. Alpha is kept from col.
func blendGlow(col, tint color.RGBA, intensity float32) color.RGBA {
	if intensity <= 0 {
		return col
	}
	t := math.Sqrt(math.Min(float64(intensity), 1)) * glowStrength
	return color.RGBA{
		R: mixComponent(col.R, tint.R, t),
		G: mixComponent(col.G, tint.G, t),
		B: mixComponent(col.B, tint.B, t),
		A: col.A,
	}
}

func mixComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
