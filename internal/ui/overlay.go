//go:build ebiten

package ui

import (
	"image/color"
	"math"

	"flashsync/internal/core"
	"flashsync/internal/render"
	"flashsync/internal/sims/swarm"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type phaseProvider interface {
	PhaseMask() []float32
}

type swarmStats interface {
	Stats() swarm.TickStats
	Origins() []core.Point
	Outputs() []uint8
}

// Overlay draws optional visuals on top of the base simulation: 1 tints each
// firefly by phase, 2 toggles the flash glow blended into the field, 3 shows
// the sync meter and heartbeat.
type Overlay struct {
	sim       core.Sim
	glow      *render.GlowField
	scale     int
	showPhase bool
	showGlow  bool
	showMeter bool

	phaseImg *ebiten.Image
	phaseBuf []byte

	pixel *ebiten.Image
}

// NewOverlay constructs a new overlay instance. glow may be nil.
func NewOverlay(sim core.Sim, glow *render.GlowField, scale int) *Overlay {
	o := &Overlay{sim: sim, glow: glow, scale: scale, showGlow: glow != nil, showMeter: true}
	o.pixel = ebiten.NewImage(1, 1)
	o.pixel.Fill(color.White)
	return o
}

// Update toggles layers from the number keys.
func (o *Overlay) Update() {
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit1) {
		o.showPhase = !o.showPhase
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit2) {
		o.showGlow = !o.showGlow
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDigit3) {
		o.showMeter = !o.showMeter
	}
}

// GlowMask returns the halo mask to blend into the field, or nil while the
// glow layer is hidden.
func (o *Overlay) GlowMask() []float32 {
	if !o.showGlow || o.glow == nil {
		return nil
	}
	return o.glow.Mask()
}

// Draw renders the overlay onto the provided screen.
func (o *Overlay) Draw(screen *ebiten.Image) {
	size := o.sim.Size()
	total := size.W * size.H
	if total <= 0 {
		return
	}
	scale := o.scale
	if scale <= 0 {
		scale = 1
	}

	if o.showPhase {
		if provider, ok := o.sim.(phaseProvider); ok {
			o.drawPhase(screen, provider.PhaseMask(), size, scale)
		}
	}

	if o.showMeter {
		if provider, ok := o.sim.(swarmStats); ok {
			o.drawMeter(screen, provider, size, scale)
		}
	}
}

// drawMeter draws the order parameter as a bar along the top edge, a dot in
// the corner on heartbeat ticks and a ring around every lit firefly.
func (o *Overlay) drawMeter(screen *ebiten.Image, provider swarmStats, size core.Size, scale int) {
	const (
		barHeight = 3.0
		margin    = 2.0
	)
	st := provider.Stats()
	width := float64(size.W*scale) - 2*margin
	o.drawLine(screen, margin, margin+barHeight/2, margin+width, margin+barHeight/2, barHeight, color.RGBA{R: 40, G: 40, B: 50, A: 200})
	if st.Order > 0 {
		o.drawLine(screen, margin, margin+barHeight/2, margin+width*st.Order, margin+barHeight/2, barHeight, meterColor(st.Order))
	}
	if st.Heartbeat {
		o.drawPoint(screen, float64(size.W*scale)-6, 10, 6, color.RGBA{R: 255, G: 80, B: 80, A: 230})
	}

	if scale < 3 {
		return
	}
	outs := provider.Outputs()
	ring := float64(scale) * 1.6
	for i, p := range provider.Origins() {
		if i >= len(outs) || outs[i] == 0 {
			continue
		}
		cx := (float64(p.X) + 0.5) * float64(scale)
		cy := (float64(p.Y) + 0.5) * float64(scale)
		o.drawPoint(screen, cx, cy, ring, color.RGBA{R: 255, G: 240, B: 160, A: 90})
	}
}

func (o *Overlay) drawPoint(screen *ebiten.Image, x, y, size float64, col color.RGBA) {
	if o.pixel == nil || size <= 0 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(size, size)
	op.GeoM.Translate(x-size*0.5, y-size*0.5)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}

func (o *Overlay) drawLine(screen *ebiten.Image, x1, y1, x2, y2, thickness float64, col color.RGBA) {
	if o.pixel == nil || thickness <= 0 {
		return
	}
	dx := x2 - x1
	dy := y2 - y1
	length := math.Hypot(dx, dy)
	if length <= 1e-4 {
		return
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(length, thickness)
	op.GeoM.Translate(0, -thickness/2)
	op.GeoM.Rotate(math.Atan2(dy, dx))
	op.GeoM.Translate(x1, y1)
	op.ColorM.Scale(float64(col.R)/255.0, float64(col.G)/255.0, float64(col.B)/255.0, float64(col.A)/255.0)
	screen.DrawImage(o.pixel, op)
}

// drawPhase colours occupied cells around a phase wheel. Empty cells stay
// transparent.
func (o *Overlay) drawPhase(screen *ebiten.Image, phases []float32, size core.Size, scale int) {
	total := size.W * size.H
	if len(phases) != total || total == 0 {
		return
	}
	if o.phaseImg == nil || o.phaseImg.Bounds().Dx() != size.W || o.phaseImg.Bounds().Dy() != size.H {
		o.phaseImg = ebiten.NewImage(size.W, size.H)
		o.phaseBuf = make([]byte, 4*total)
	}
	for i := range o.phaseBuf {
		o.phaseBuf[i] = 0
	}
	occupied := o.sim.Cells()
	for idx := 0; idx < total; idx++ {
		if idx < len(occupied) && occupied[idx] == 0 {
			continue
		}
		col := phaseColor(float64(phases[idx]))
		base := idx * 4
		o.phaseBuf[base+0] = col.R
		o.phaseBuf[base+1] = col.G
		o.phaseBuf[base+2] = col.B
		o.phaseBuf[base+3] = col.A
	}

	o.phaseImg.ReplacePixels(o.phaseBuf)
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(scale), float64(scale))
	screen.DrawImage(o.phaseImg, op)
}

// phaseColor walks a closed colour wheel so phases 0 and 1 match.
func phaseColor(t float64) color.RGBA {
	t = t - math.Floor(t)
	stops := []struct {
		t   float64
		col color.RGBA
	}{
		{0.0, color.RGBA{R: 230, G: 70, B: 70, A: 220}},
		{0.25, color.RGBA{R: 220, G: 200, B: 60, A: 220}},
		{0.5, color.RGBA{R: 60, G: 190, B: 120, A: 220}},
		{0.75, color.RGBA{R: 70, G: 110, B: 230, A: 220}},
		{1.0, color.RGBA{R: 230, G: 70, B: 70, A: 220}},
	}
	for i := 1; i < len(stops); i++ {
		curr := stops[i]
		if t <= curr.t {
			prev := stops[i-1]
			span := curr.t - prev.t
			var local float64
			if span > 0 {
				local = (t - prev.t) / span
			}
			return lerpRGBA(prev.col, curr.col, clamp01(local))
		}
	}
	return stops[len(stops)-1].col
}

func meterColor(order float64) color.RGBA {
	return lerpRGBA(color.RGBA{R: 120, G: 60, B: 60, A: 220}, color.RGBA{R: 250, G: 230, B: 110, A: 240}, order)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func lerpRGBA(a, b color.RGBA, t float64) color.RGBA {
	t = clamp01(t)
	return color.RGBA{
		R: lerpComponent(a.R, b.R, t),
		G: lerpComponent(a.G, b.G, t),
		B: lerpComponent(a.B, b.B, t),
		A: lerpComponent(a.A, b.A, t),
	}
}

func lerpComponent(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
