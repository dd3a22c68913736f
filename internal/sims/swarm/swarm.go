// Package swarm drives a field of fireflies: it owns the shared clock, freezes
// last tick's outputs so every agent senses the same picture, and forwards each
// agent's new output to registered responders.
package swarm

import (
	"flashsync/internal/core"
	pcore "flashsync/pkg/core"
	"flashsync/pkg/firefly"
)

// Observer is notified about every state change and once per tick.
type Observer interface {
	OnTransition(tick int64, id int, from, to firefly.State)
	OnTick(stats TickStats)
}

// Responder receives every agent's output after each tick, e.g. a renderer
// turning an LED on or a speaker chirping.
type Responder interface {
	Respond(id int, origin core.Point, action uint8)
}

// Swarm is the environment and driving loop for a set of fireflies.
type Swarm struct {
	cfg Config

	grid   *core.ByteGrid
	clock  *pcore.Clock
	rng    *pcore.RNG
	jitter *pcore.RNG

	agents  []*firefly.Agent
	origins []core.Point
	// neighbors is nil when every firefly senses every other one.
	neighbors [][]int

	cur, nxt []uint8
	signals  []firefly.Signal
	view     view

	beat      conductor
	beatNow   bool
	syncEvery int

	tick  int64
	stats TickStats

	observers  []Observer
	responders []Responder
}

// New returns a swarm on a w*h field using defaults.
func New(w, h int) *Swarm {
	cfg := DefaultConfig()
	cfg.Width = w
	cfg.Height = h
	return NewWithConfig(cfg)
}

// NewWithConfig returns a swarm configured from the provided options. The
// swarm is placed and started immediately with cfg.Seed.
func NewWithConfig(cfg Config) *Swarm {
	if cfg.Width <= 0 {
		cfg.Width = 1
	}
	if cfg.Height <= 0 {
		cfg.Height = 1
	}
	if cfg.Name == "" {
		cfg.Name = "fireflies"
	}
	s := &Swarm{
		cfg:   cfg,
		grid:  core.NewByteGrid(cfg.Width, cfg.Height),
		clock: pcore.NewClock(),
	}
	s.view.s = s
	s.Reset(0)
	return s
}

// Name returns the simulation identifier.
func (s *Swarm) Name() string { return s.cfg.Name }

// Size reports the field dimensions.
func (s *Swarm) Size() core.Size { return core.Size{W: s.grid.W, H: s.grid.H} }

// Cells exposes the display buffer (see Palette for the encoding).
func (s *Swarm) Cells() []uint8 { return s.grid.Cells() }

// Config returns the active configuration.
func (s *Swarm) Config() Config { return s.cfg }

// Len returns the number of fireflies.
func (s *Swarm) Len() int { return len(s.agents) }

// Agent returns the firefly with the given id.
func (s *Swarm) Agent(id int) *firefly.Agent { return s.agents[id] }

// Origins returns each firefly's cell, indexed by id.
func (s *Swarm) Origins() []core.Point { return s.origins }

// Outputs returns the outputs published by the last tick, indexed by id.
func (s *Swarm) Outputs() []uint8 { return s.cur }

// Tick returns the number of steps since the last reset.
func (s *Swarm) Tick() int64 { return s.tick }

// Now returns the simulated time in milliseconds.
func (s *Swarm) Now() int64 { return s.clock.Now() }

// Heartbeat reports whether the conductor beat on the last tick.
func (s *Swarm) Heartbeat() bool { return s.beatNow }

// Stats returns the statistics of the last tick.
func (s *Swarm) Stats() TickStats { return s.stats }

// States returns every firefly's current state.
func (s *Swarm) States() []firefly.State {
	out := make([]firefly.State, len(s.agents))
	for i, a := range s.agents {
		out[i] = a.State()
	}
	return out
}

// Phases returns every firefly's phase in [0, 1).
func (s *Swarm) Phases() []float64 {
	out := make([]float64, len(s.agents))
	for i, a := range s.agents {
		out[i] = a.Phase()
	}
	return out
}

// Observe registers an observer.
func (s *Swarm) Observe(o Observer) {
	if o != nil {
		s.observers = append(s.observers, o)
	}
}

// AddResponder registers a responder.
func (s *Swarm) AddResponder(r Responder) {
	if r != nil {
		s.responders = append(s.responders, r)
	}
}

// Reset places the fireflies at random cells and starts them with random
// phases. A zero seed reuses the configured one.
func (s *Swarm) Reset(seed int64) {
	effective := seed
	if effective == 0 {
		effective = s.cfg.Seed
	}
	s.rng = pcore.NewRNG(effective)
	s.jitter = pcore.NewRNG(effective ^ 0x5eed)
	s.clock.Reset()
	s.tick = 0
	s.beatNow = false
	s.stats = TickStats{}

	p := s.cfg.Params
	count := p.Count
	if total := s.grid.W * s.grid.H; count > total {
		count = total
	}
	if count < 0 {
		count = 0
	}

	cells := s.rng.Perm(s.grid.W * s.grid.H)[:count]
	s.agents = make([]*firefly.Agent, count)
	s.origins = make([]core.Point, count)
	s.cur = make([]uint8, count)
	s.nxt = make([]uint8, count)
	s.signals = make([]firefly.Signal, count)
	agentCfg := p.AgentConfig()
	for i, cell := range cells {
		s.origins[i] = s.grid.Point(cell)
		a := firefly.New(i, agentCfg, s.clock.NewTimer(), s.clock.NewTimer(), s.rng)
		a.Start()
		s.agents[i] = a
		s.cur[i] = a.Action()
	}
	s.buildNeighbors()
	s.beat.reset(firefly.Millis(p.HeartbeatPeriod))
	s.syncEvery = 0
	if p.HeartbeatSyncEvery > 0 {
		s.EnableHeartbeatSync(p.HeartbeatSyncEvery)
	}
	s.rebuildDisplay()
}

// Step advances the clock by one tick and steps every firefly against the
// outputs frozen at the end of the previous tick.
func (s *Swarm) Step() {
	s.clock.Advance(s.tickMillis())
	s.tick++
	s.beatNow = s.beat.step(s.clock.Now())

	for i, out := range s.cur {
		s.signals[i] = firefly.Signal{ID: i, Action: out}
	}

	stats := TickStats{Tick: s.tick, Millis: s.clock.Now(), Heartbeat: s.beatNow}
	for i, a := range s.agents {
		s.view.self = i
		from := a.State()
		out := a.Step(&s.view)
		s.nxt[i] = out
		if to := a.State(); to != from {
			if to == firefly.Flash {
				stats.Onsets++
			}
			for _, o := range s.observers {
				o.OnTransition(s.tick, i, from, to)
			}
		}
		if out > 0 {
			stats.Flashing++
		}
	}
	s.cur, s.nxt = s.nxt, s.cur

	for i, out := range s.cur {
		for _, r := range s.responders {
			r.Respond(i, s.origins[i], out)
		}
	}

	stats.Order = OrderParameter(s.agents)
	s.stats = stats
	for _, o := range s.observers {
		o.OnTick(stats)
	}
	s.rebuildDisplay()
}

func (s *Swarm) tickMillis() int64 {
	p := s.cfg.Params
	dt := int64(p.TickMillis)
	if p.TickJitter > 0 {
		dt += int64(s.jitter.IntN(2*p.TickJitter+1) - p.TickJitter)
	}
	if dt < 1 {
		dt = 1
	}
	return dt
}

func (s *Swarm) buildNeighbors() {
	r := s.cfg.Params.SenseRadius
	if r <= 0 {
		s.neighbors = nil
		return
	}
	s.neighbors = make([][]int, len(s.origins))
	for i, a := range s.origins {
		for j, b := range s.origins {
			if i != j && s.grid.Distance(a, b) <= r {
				s.neighbors[i] = append(s.neighbors[i], j)
			}
		}
	}
	s.view.scratch = make([]firefly.Signal, 0, len(s.origins))
}

// DePhaseAll scatters every firefly to a random phase.
func (s *Swarm) DePhaseAll() {
	for _, a := range s.agents {
		a.DePhase()
	}
}

// EnableHeartbeatSync switches every firefly to flash on every everyN-th
// heartbeat.
func (s *Swarm) EnableHeartbeatSync(everyN int) {
	if everyN < 1 {
		everyN = 1
	}
	s.syncEvery = everyN
	for _, a := range s.agents {
		a.EnableHeartbeatSync(everyN)
	}
}

// DisableHeartbeatSync hands every firefly back to its oscillator.
func (s *Swarm) DisableHeartbeatSync() {
	s.syncEvery = 0
	for _, a := range s.agents {
		a.DisableHeartbeatSync()
	}
}

// HeartbeatSyncEvery returns the override interval, or 0 when disabled.
func (s *Swarm) HeartbeatSyncEvery() int { return s.syncEvery }

// Apply swaps the parameter set. Changes to the count or sense radius need a
// fresh placement and trigger a reset with the configured seed; everything
// else is applied to the running fireflies in place.
func (s *Swarm) Apply(p Params) (reset bool) {
	old := s.cfg.Params
	s.cfg.Params = p
	if p.Count != old.Count || p.SenseRadius != old.SenseRadius {
		s.Reset(0)
		return true
	}
	agentCfg := p.AgentConfig()
	for _, a := range s.agents {
		a.Reconfigure(agentCfg)
	}
	if p.HeartbeatPeriod != old.HeartbeatPeriod {
		s.beat.setPeriod(firefly.Millis(p.HeartbeatPeriod), s.clock.Now())
	}
	if p.HeartbeatSyncEvery != s.syncEvery {
		if p.HeartbeatSyncEvery > 0 {
			s.EnableHeartbeatSync(p.HeartbeatSyncEvery)
		} else {
			s.DisableHeartbeatSync()
		}
	}
	return false
}

// view is the frozen environment handed to the firefly being stepped.
type view struct {
	s       *Swarm
	self    int
	scratch []firefly.Signal
}

func (v *view) Peers() []firefly.Signal {
	if v.s.neighbors == nil {
		return v.s.signals
	}
	v.scratch = v.scratch[:0]
	for _, j := range v.s.neighbors[v.self] {
		v.scratch = append(v.scratch, v.s.signals[j])
	}
	return v.scratch
}

func (v *view) Heartbeat() bool { return v.s.beatNow }

func init() {
	core.Register("fireflies", func(cfg map[string]string) core.Sim {
		return NewWithConfig(FromMap(cfg))
	})
	core.Register("conductor", func(cfg map[string]string) core.Sim {
		return NewWithConfig(ApplyMap(ConductorConfig(), cfg))
	})
}
