package ui

import (
	"math"
	"strings"
	"testing"

	"flashsync/internal/core"
	"flashsync/internal/sims/swarm"
	"flashsync/pkg/firefly"
)

func smallSwarm() *swarm.Swarm {
	cfg := swarm.DefaultConfig()
	cfg.Width, cfg.Height, cfg.Seed = 8, 8, 7
	cfg.Params.Count = 24
	return swarm.NewWithConfig(cfg)
}

type plainSim struct{}

func (plainSim) Name() string    { return "" }
func (plainSim) Size() core.Size { return core.Size{W: 2, H: 2} }
func (plainSim) Reset(int64)     {}
func (plainSim) Step()           {}
func (plainSim) Cells() []uint8  { return make([]uint8, 4) }

func TestReadSwarmCensus(t *testing.T) {
	s := smallSwarm()
	sawLit := false
	for i := 0; i < 400; i++ {
		s.Step()
		r := readSwarm(s)
		if r.Title != "Fireflies" {
			t.Fatalf("title = %q", r.Title)
		}
		sum := 0
		for _, n := range r.Census {
			sum += n
		}
		if r.Total != 24 || sum != r.Total {
			t.Fatalf("tick %d: census %v sums to %d, total %d", i, r.Census, sum, r.Total)
		}
		if lit := s.Stats().Flashing; r.Census[firefly.Flash] < lit {
			t.Fatalf("tick %d: census shows %d flashing, stats %d", i, r.Census[firefly.Flash], lit)
		} else if lit > 0 {
			sawLit = true
		}
		if r.MeanThreshold < 0 || r.MeanThreshold > 1 {
			t.Fatalf("mean threshold out of range: %f", r.MeanThreshold)
		}
		if r.Order != s.Stats().Order {
			t.Fatalf("order %f, stats %f", r.Order, s.Stats().Order)
		}
	}
	if !sawLit {
		t.Fatal("expected flashes within four seconds")
	}
}

func TestReadSwarmMode(t *testing.T) {
	s := smallSwarm()
	s.Step()
	if r := readSwarm(s); r.HeartbeatSync || r.Mode != "free running" {
		t.Fatalf("fresh swarm mode = %q", r.Mode)
	}

	if !ToggleHeartbeatSync(s, 3) {
		t.Fatal("first toggle should enable heartbeat sync")
	}
	r := readSwarm(s)
	if !r.HeartbeatSync || !strings.Contains(r.Mode, "1/3") {
		t.Fatalf("mode = %q", r.Mode)
	}
	if ToggleHeartbeatSync(s, 3) || s.HeartbeatSyncEvery() != 0 {
		t.Fatalf("second toggle should disable, every=%d", s.HeartbeatSyncEvery())
	}
}

func TestReadNonSwarm(t *testing.T) {
	r := readSwarm(plainSim{})
	if r.Title != "Swarm" {
		t.Fatalf("empty name should fall back, got %q", r.Title)
	}
	if r.Total != 0 || r.Mode != "" {
		t.Fatalf("expected an empty readout, got %+v", r)
	}
}

func TestStepControl(t *testing.T) {
	unit := core.ParameterControl{Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true}
	every := core.ParameterControl{Type: core.ParamTypeInt, Step: 1, Min: 0, Max: 16, HasMin: true, HasMax: true}
	tests := []struct {
		name      string
		ctrl      core.ParameterControl
		current   float64
		direction int
		want      float64
		changed   bool
	}{
		{"float up", unit, 0.05, 1, 0.06, true},
		{"float at max", unit, 1, 1, 1, false},
		{"float clamps", unit, 0.005, -1, 0, true},
		{"default step", core.ParameterControl{Type: core.ParamTypeFloat}, 0.2, -1, 0.15, true},
		{"int at min", every, 0, -1, 0, false},
		{"int at max", every, 16, 1, 16, false},
		{"int rounds step", core.ParameterControl{Type: core.ParamTypeInt, Step: 0.4}, 3, 1, 4, true},
		{"no direction", unit, 0.5, 0, 0.5, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := stepControl(tt.ctrl, tt.current, tt.direction)
			if math.Abs(got-tt.want) > 1e-9 || changed != tt.changed {
				t.Fatalf("stepControl = %v, %v; want %v, %v", got, changed, tt.want, tt.changed)
			}
		})
	}
}

func TestFormatControl(t *testing.T) {
	tests := []struct {
		ctrl core.ParameterControl
		v    float64
		want string
	}{
		{core.ParameterControl{Type: core.ParamTypeInt, Step: 1}, 3, "3"},
		{core.ParameterControl{Type: core.ParamTypeFloat, Step: 0.01}, 0.06, "0.06"},
		{core.ParameterControl{Type: core.ParamTypeFloat, Step: 0.1}, 1.24, "1.2"},
		{core.ParameterControl{Type: core.ParamTypeFloat, Step: 0.0005}, 0.1, "0.1000"},
		{core.ParameterControl{Type: core.ParamTypeFloat}, 0.5, "0.50"},
	}
	for _, tt := range tests {
		if got := formatControl(tt.ctrl, tt.v); got != tt.want {
			t.Errorf("formatControl(%v, %v) = %q, want %q", tt.ctrl.Step, tt.v, got, tt.want)
		}
	}
}
