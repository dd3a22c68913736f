package swarm

import (
	"image/color"

	"flashsync/pkg/firefly"
)

// Display cell values. An occupied cell stores 1 + its firefly's state.
const (
	cellEmpty uint8 = iota
	cellIdle
	cellBlind
	cellFlash
	cellRefract
)

var swarmPalette = []color.RGBA{
	cellEmpty:   {R: 6, G: 8, B: 18, A: 255},
	cellIdle:    {R: 40, G: 70, B: 40, A: 255},
	cellBlind:   {R: 60, G: 110, B: 90, A: 255},
	cellFlash:   {R: 255, G: 236, B: 120, A: 255},
	cellRefract: {R: 120, G: 90, B: 40, A: 255},
}

// Palette exposes the colours for the values in Cells.
func (s *Swarm) Palette() []color.RGBA {
	return swarmPalette
}

func encodeDisplayValue(st firefly.State) uint8 {
	return cellIdle + uint8(st)
}

func (s *Swarm) rebuildDisplay() {
	s.grid.Clear()
	for i, a := range s.agents {
		v := encodeDisplayValue(a.State())
		if s.cur[i] > 0 {
			v = cellFlash
		}
		s.grid.Set(s.origins[i], v)
	}
}

// PhaseMask returns each cell's firefly phase in [0, 1], or 0 for empty cells.
func (s *Swarm) PhaseMask() []float32 {
	mask := make([]float32, s.grid.W*s.grid.H)
	for i, a := range s.agents {
		p := s.origins[i]
		mask[s.grid.Index(p.X, p.Y)] = float32(a.Phase())
	}
	return mask
}
