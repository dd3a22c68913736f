// Package term renders a swarm in a terminal with tcell.
package term

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"flashsync/internal/core"
	"flashsync/internal/render"
	"flashsync/internal/sims/swarm"
	"flashsync/pkg/firefly"
)

const (
	frameInterval = 16 * time.Millisecond
	// maxCatchUp bounds how many ticks a single frame may simulate.
	maxCatchUp  = 20
	eventBuffer = 100
)

var (
	styleField  = tcell.StyleDefault.Background(tcell.NewRGBColor(6, 8, 18))
	styleStatus = tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorBlack)
	stateStyles = map[firefly.State]tcell.Style{
		firefly.Idle:    styleField.Foreground(tcell.NewRGBColor(60, 110, 60)),
		firefly.Blind:   styleField.Foreground(tcell.NewRGBColor(80, 150, 120)),
		firefly.Flash:   styleField.Foreground(tcell.NewRGBColor(255, 236, 120)).Bold(true),
		firefly.Refract: styleField.Foreground(tcell.NewRGBColor(140, 100, 40)),
	}
)

// View owns the screen and drives the swarm in real time.
type View struct {
	screen tcell.Screen
	sim    *swarm.Swarm
	glow   *render.GlowField
	pacer  *core.FixedStep

	paused    bool
	syncEvery int
	updates   <-chan swarm.Params
}

// NewView attaches a glow field to sim and paces it at one simulated
// millisecond per wall millisecond.
func NewView(screen tcell.Screen, sim *swarm.Swarm) *View {
	size := sim.Size()
	v := &View{
		screen:    screen,
		sim:       sim,
		glow:      render.NewGlowField(size.W, size.H, 1, 0.8),
		pacer:     core.ForTick(sim.Config().Params.TickMillis),
		syncEvery: 2,
	}
	sim.AddResponder(v.glow)
	return v
}

// Follow makes Run apply every parameter set received on ch.
func (v *View) Follow(ch <-chan swarm.Params) { v.updates = ch }

// Apply swaps the swarm parameters, clearing the glow when the swarm had to
// be re-placed and re-pacing when the tick length changed.
func (v *View) Apply(p swarm.Params) {
	prev := v.sim.Config().Params.TickMillis
	if v.sim.Apply(p) {
		v.glow.Reset()
	}
	if p.TickMillis != prev {
		v.pacer = core.ForTick(p.TickMillis)
	}
}

// Paused reports whether time is frozen.
func (v *View) Paused() bool { return v.paused }

// Step advances the swarm one tick and fades the glow.
func (v *View) Step() {
	v.glow.Decay()
	v.sim.Step()
}

// Advance runs every tick due since the last frame.
func (v *View) Advance() {
	n := v.pacer.Pending(maxCatchUp)
	if v.paused {
		return
	}
	for i := 0; i < n; i++ {
		v.Step()
	}
}

// HandleEvent applies a key or resize event. It returns false when the user
// asked to quit.
func (v *View) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			v.paused = !v.paused
		case 'n':
			v.Step()
		case 'r':
			v.sim.Reset(0)
			v.glow.Reset()
		case 'd':
			v.sim.DePhaseAll()
		case 'h':
			if v.sim.HeartbeatSyncEvery() > 0 {
				v.sim.DisableHeartbeatSync()
			} else {
				v.sim.EnableHeartbeatSync(v.syncEvery)
			}
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

// Draw paints the field and the status line.
func (v *View) Draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	size := v.sim.Size()
	fieldH := h - 1
	mask := v.glow.Mask()

	for y := 0; y < size.H && y < fieldH; y++ {
		for x := 0; x < size.W && x < w; x++ {
			if g := mask[y*size.W+x]; g > 0 {
				c := int32(g * 90)
				v.screen.SetContent(x, y, ' ', nil, styleField.Background(tcell.NewRGBColor(c, c, c/3)))
				continue
			}
			v.screen.SetContent(x, y, ' ', nil, styleField)
		}
	}

	states := v.sim.States()
	outs := v.sim.Outputs()
	for i, p := range v.sim.Origins() {
		if p.X >= w || p.Y >= fieldH {
			continue
		}
		style := stateStyles[states[i]]
		r := '·'
		if outs[i] > 0 {
			style = stateStyles[firefly.Flash]
			r = '●'
		}
		v.screen.SetContent(p.X, p.Y, r, nil, style)
	}

	v.drawText(0, h-1, v.status(), styleStatus)
	v.screen.Show()
}

func (v *View) status() string {
	st := v.sim.Stats()
	mode := "free"
	if n := v.sim.HeartbeatSyncEvery(); n > 0 {
		mode = fmt.Sprintf("beat/%d", n)
	}
	paused := ""
	if v.paused {
		paused = " [paused]"
	}
	return fmt.Sprintf("%s t=%.2fs tick=%d lit=%d/%d order=%.3f %s%s  space:pause n:step r:reset d:dephase h:heartbeat q:quit",
		v.sim.Name(), float64(v.sim.Now())/1000, v.sim.Tick(), st.Flashing, v.sim.Len(), st.Order, mode, paused)
}

func (v *View) drawText(x, y int, s string, style tcell.Style) {
	w, _ := v.screen.Size()
	for _, r := range s {
		if x >= w {
			return
		}
		v.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// pollEvents forwards screen events until the screen is finalised or done is
// closed. The returned channel is closed when polling stops.
func (v *View) pollEvents(done <-chan struct{}) <-chan tcell.Event {
	events := make(chan tcell.Event, eventBuffer)
	go func() {
		defer close(events)
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()
	return events
}

// Run polls input on its own goroutine and redraws at a fixed frame rate
// until the user quits or ctx is done.
func (v *View) Run(ctx context.Context) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	events := v.pollEvents(done)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok || !v.HandleEvent(ev) {
				return nil
			}
		case p := <-v.updates:
			v.Apply(p)
		case <-ticker.C:
			v.Advance()
			v.Draw()
		}
	}
}
