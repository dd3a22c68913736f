//go:build ebiten

package app

import (
	"image/color"
	"time"

	"flashsync/internal/core"
	"flashsync/internal/render"
	"flashsync/internal/sims/swarm"
	"flashsync/internal/ui"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

type paletteProvider interface {
	Palette() []color.RGBA
}

type responderHost interface {
	AddResponder(r swarm.Responder)
}

// Game adapts a core simulation to the ebiten.Game interface.
type Game struct {
	sim     core.Sim
	painter *render.GridPainter
	overlay *ui.Overlay
	hud     *ui.HUD
	glow    *render.GlowField

	palette []color.RGBA

	scale     int
	panel     int
	paused    bool
	tickOnce  bool
	seed      int64
	syncEvery int
}

// New constructs a Game for the provided simulation with a parameter panel
// panel pixels wide.
func New(sim core.Sim, scale int, seed int64, panel int) *Game {
	size := sim.Size()
	g := &Game{
		sim:       sim,
		painter:   render.NewGridPainter(size.W, size.H),
		palette:   render.MonoPalette,
		scale:     scale,
		panel:     panel,
		seed:      seed,
		syncEvery: 2,
	}
	if p, ok := sim.(paletteProvider); ok {
		g.palette = p.Palette()
	}
	if host, ok := sim.(responderHost); ok {
		g.glow = render.NewGlowField(size.W, size.H, 2, 0.9)
		host.AddResponder(g.glow)
	}
	g.overlay = ui.NewOverlay(sim, g.glow, scale)
	if panel > 0 {
		g.hud = ui.NewHUD(sim, panel)
	}
	return g
}

// Reset reinitializes the simulation state with the provided seed.
func (g *Game) Reset(seed int64) {
	g.seed = seed
	g.sim.Reset(seed)
	if g.glow != nil {
		g.glow.Reset()
	}
	g.tickOnce = false
}

// Update handles per-frame logic and advances the simulation.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.paused = false
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.tickOnce = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.Reset(g.seed)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		g.Reset(time.Now().UnixNano())
	}
	if acts, ok := g.sim.(ui.SwarmActions); ok {
		if inpututil.IsKeyJustPressed(ebiten.KeyD) {
			acts.DePhaseAll()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyH) {
			ui.ToggleHeartbeatSync(acts, g.syncEvery)
		}
	}

	g.overlay.Update()
	g.hud.Update(g.sim.Size().W * g.scale)

	if (!g.paused) || g.tickOnce {
		if g.glow != nil {
			g.glow.Decay()
		}
		g.sim.Step()
		g.tickOnce = false
	}
	return nil
}

// Draw renders the current simulation state.
func (g *Game) Draw(screen *ebiten.Image) {
	g.painter.BlitField(screen, g.sim.Cells(), g.palette, g.overlay.GlowMask(), g.scale)
	g.overlay.Draw(screen)
	g.hud.Draw(screen, g.sim.Size().W*g.scale, g.scale)
}

// Layout returns the logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	s := g.sim.Size()
	return s.W*g.scale + g.panel, s.H * g.scale
}
