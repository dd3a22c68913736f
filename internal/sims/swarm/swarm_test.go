package swarm

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"flashsync/internal/core"
	"flashsync/pkg/firefly"
)

func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Width = 8
	cfg.Height = 8
	cfg.Seed = 7
	cfg.Params.Count = 24
	return cfg
}

func TestNewPlacesFirefliesOnDistinctCells(t *testing.T) {
	s := NewWithConfig(DefaultConfig())
	if s.Len() != 120 {
		t.Fatalf("expected 120 fireflies, got %d", s.Len())
	}
	seen := map[core.Point]bool{}
	for _, p := range s.Origins() {
		if seen[p] {
			t.Fatalf("two fireflies share cell %v", p)
		}
		seen[p] = true
	}
	occupied := 0
	for _, c := range s.Cells() {
		if c != cellEmpty {
			occupied++
		}
		if int(c) >= len(s.Palette()) {
			t.Fatalf("cell value %d has no palette entry", c)
		}
	}
	if occupied != s.Len() {
		t.Fatalf("display shows %d fireflies, want %d", occupied, s.Len())
	}
}

func TestFromMapOverridesAndIgnoresInvalid(t *testing.T) {
	cfg := FromMap(map[string]string{
		"w":            "10",
		"h":            "5",
		"count":        "80",
		"seed":         "42",
		"flash_adjust": "0.2",
		"flash_period": "-1",
		"tick_ms":      "abc",
	})
	if cfg.Width != 10 || cfg.Height != 5 || cfg.Seed != 42 {
		t.Fatalf("unexpected field config %+v", cfg)
	}
	if cfg.Params.Count != 50 {
		t.Fatalf("count should clamp to the field area, got %d", cfg.Params.Count)
	}
	if cfg.Params.FlashAdjust != 0.2 {
		t.Fatalf("flash_adjust = %f", cfg.Params.FlashAdjust)
	}
	if cfg.Params.FlashPeriod != 1.0 || cfg.Params.TickMillis != 10 {
		t.Fatalf("invalid values should keep defaults: %+v", cfg.Params)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.FlashPeriod = 0
	cfg.Params.BlindTime = -0.1
	cfg.Params.TickJitter = 10

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	for _, want := range []string{"flash_period", "blind_time", "tick_jitter"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestDeterministicReplay(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.TickJitter = 3
	a := NewWithConfig(cfg)
	b := NewWithConfig(cfg)
	for i := 0; i < 500; i++ {
		a.Step()
		b.Step()
		if !slices.Equal(a.Outputs(), b.Outputs()) {
			t.Fatalf("tick %d: outputs diverged", i)
		}
	}
	if a.Now() != b.Now() {
		t.Fatalf("clocks diverged: %d vs %d", a.Now(), b.Now())
	}
	if a.Now() < 500*7 || a.Now() > 500*13 {
		t.Fatalf("jittered clock %dms outside the jitter bounds", a.Now())
	}
	if !slices.Equal(a.Phases(), b.Phases()) {
		t.Fatal("phases diverged")
	}
}

func TestResetWithSameSeedRepeats(t *testing.T) {
	s := NewWithConfig(smallConfig())
	var first []uint8
	for i := 0; i < 300; i++ {
		s.Step()
		first = append(first, s.Outputs()...)
	}
	s.Reset(0)
	if s.Tick() != 0 || s.Now() != 0 {
		t.Fatalf("reset should rewind tick and clock, got %d/%d", s.Tick(), s.Now())
	}
	var second []uint8
	for i := 0; i < 300; i++ {
		s.Step()
		second = append(second, s.Outputs()...)
	}
	if !slices.Equal(first, second) {
		t.Fatal("replay after reset diverged")
	}
}

type transitionLog struct {
	events []struct {
		id       int
		from, to firefly.State
	}
	ticks int
}

func (l *transitionLog) OnTransition(_ int64, id int, from, to firefly.State) {
	l.events = append(l.events, struct {
		id       int
		from, to firefly.State
	}{id, from, to})
}

func (l *transitionLog) OnTick(TickStats) { l.ticks++ }

func TestBlindOnlyFollowsPreviousTickFlashes(t *testing.T) {
	s := NewWithConfig(smallConfig())
	log := &transitionLog{}
	s.Observe(log)

	blinded := 0
	for i := 0; i < 2000; i++ {
		prev := slices.Clone(s.Outputs())
		log.events = log.events[:0]
		s.Step()
		for _, ev := range log.events {
			if ev.from != firefly.Idle || ev.to != firefly.Blind {
				continue
			}
			blinded++
			sensed := false
			for j, out := range prev {
				if j != ev.id && out > 0 {
					sensed = true
				}
			}
			if !sensed {
				t.Fatalf("tick %d: firefly %d blinded without a flash on the previous tick", i, ev.id)
			}
		}
	}
	if blinded == 0 {
		t.Fatal("expected peers to nudge each other")
	}
	if log.ticks != 2000 {
		t.Fatalf("OnTick called %d times", log.ticks)
	}
}

type countingResponder struct {
	calls int
	lit   map[int]uint8
}

func (r *countingResponder) Respond(id int, _ core.Point, action uint8) {
	r.calls++
	r.lit[id] = action
}

func TestResponderReceivesEveryOutput(t *testing.T) {
	s := NewWithConfig(smallConfig())
	r := &countingResponder{lit: map[int]uint8{}}
	s.AddResponder(r)
	for i := 0; i < 150; i++ {
		s.Step()
		for id, out := range s.Outputs() {
			if r.lit[id] != out {
				t.Fatalf("tick %d: responder saw %d for firefly %d, output %d", i, r.lit[id], id, out)
			}
		}
	}
	if r.calls != 150*s.Len() {
		t.Fatalf("expected %d responses, got %d", 150*s.Len(), r.calls)
	}
}

func TestSwarmSynchronises(t *testing.T) {
	res := Convergence(smallConfig(), 6000, 0.9)
	if !res.Synced() {
		t.Fatalf("swarm never synchronised, peak order %f", res.PeakOrder)
	}
	if res.FinalOrder < 0.9 {
		t.Fatalf("expected order > 0.9 after 60s, got %f", res.FinalOrder)
	}
	if res.Onsets == 0 {
		t.Fatal("expected flashes")
	}
}

func TestDePhaseAllScatters(t *testing.T) {
	s := NewWithConfig(smallConfig())
	for i := 0; i < 6000; i++ {
		s.Step()
	}
	s.DePhaseAll()
	s.Step()
	if s.Stats().Order > 0.6 {
		t.Fatalf("expected scattered phases, order %f", s.Stats().Order)
	}
}

func TestSenseRadiusNeighbours(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params.SenseRadius = 3
	s := NewWithConfig(cfg)
	for i, a := range s.Origins() {
		isNeighbor := map[int]bool{}
		for _, j := range s.neighbors[i] {
			isNeighbor[j] = true
		}
		for j, b := range s.Origins() {
			if i == j {
				if isNeighbor[j] {
					t.Fatalf("firefly %d lists itself", i)
				}
				continue
			}
			if near := s.grid.Distance(a, b) <= 3; near != isNeighbor[j] {
				t.Fatalf("firefly %d/%d at %v/%v: neighbour=%v", i, j, a, b, isNeighbor[j])
			}
		}
	}
}

func TestConductorBeatsOnPeriod(t *testing.T) {
	var c conductor
	c.reset(500)
	var beats []int64
	for now := int64(10); now <= 1600; now += 10 {
		if c.step(now) {
			beats = append(beats, now)
		}
	}
	if !slices.Equal(beats, []int64{500, 1000, 1500}) {
		t.Fatalf("beats at %v", beats)
	}

	c.reset(0)
	if c.step(5000) {
		t.Fatal("a zero period never beats")
	}
}

func TestHeartbeatSyncFollowsConductor(t *testing.T) {
	cfg := ConductorConfig()
	cfg.Width, cfg.Height = 8, 8
	cfg.Params.Count = 10
	s := NewWithConfig(cfg)

	var lit []int64
	for i := 0; i < 300; i++ {
		s.Step()
		outs := s.Outputs()
		for _, out := range outs[1:] {
			if out != outs[0] {
				t.Fatalf("tick %d: overridden fireflies disagree: %v", s.Tick(), outs)
			}
		}
		if outs[0] == 1 {
			lit = append(lit, s.Now())
		}
	}
	if !slices.Equal(lit, []int64{500, 1500, 2500}) {
		t.Fatalf("flashes at %v, want every second beat from the first", lit)
	}

	s.DisableHeartbeatSync()
	if s.HeartbeatSyncEvery() != 0 || s.Agent(0).HeartbeatSync() {
		t.Fatal("expected override off")
	}
}

func TestSetFloatParameterReconfiguresAgents(t *testing.T) {
	s := NewWithConfig(smallConfig())
	if !s.SetFloatParameter("flash_adjust", 0.2) {
		t.Fatal("expected flash_adjust to be accepted")
	}
	for i := 0; i < s.Len(); i++ {
		if got := s.Agent(i).Config().FlashAdjust; got != 0.2 {
			t.Fatalf("agent %d flash adjust %f", i, got)
		}
	}
	if s.SetFloatParameter("flash_period", 0) {
		t.Fatal("zero period must be rejected")
	}
	if s.SetFloatParameter("nope", 1) {
		t.Fatal("unknown key must be rejected")
	}
	if p, ok := s.Parameters().Find("flash_adjust"); !ok || p.Value != "0.2" {
		t.Fatalf("snapshot value %q", p.Value)
	}
}

func TestSetIntParameterCountResets(t *testing.T) {
	s := NewWithConfig(smallConfig())
	for i := 0; i < 50; i++ {
		s.Step()
	}
	if !s.SetIntParameter("count", 10) {
		t.Fatal("expected count to be accepted")
	}
	if s.Len() != 10 || s.Tick() != 0 {
		t.Fatalf("expected a fresh swarm of 10, got %d at tick %d", s.Len(), s.Tick())
	}
	if s.SetIntParameter("count", 65) {
		t.Fatal("count above the field area must be rejected")
	}
	if !s.SetIntParameter("heartbeat_sync_every", 3) || s.HeartbeatSyncEvery() != 3 {
		t.Fatal("expected heartbeat sync to switch on")
	}
}

func TestRegistered(t *testing.T) {
	for _, name := range []string{"fireflies", "conductor"} {
		f, err := core.Lookup(name)
		if err != nil {
			t.Fatal(err)
		}
		if got := f(map[string]string{"w": "16", "h": "16", "count": "20"}).Name(); got != name {
			t.Fatalf("factory %s built %s", name, got)
		}
	}
	if _, err := core.Lookup("life"); err == nil {
		t.Fatal("expected unknown sim error")
	}
}
