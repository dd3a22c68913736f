package swarm

import (
	"math"

	"flashsync/pkg/firefly"
)

// TickStats summarises one tick of the swarm.
type TickStats struct {
	Tick   int64
	Millis int64
	// Flashing counts fireflies whose output was 1.
	Flashing int
	// Onsets counts fireflies that entered Flash during the tick.
	Onsets    int
	Heartbeat bool
	Order     float64
}

// OrderParameter is the Kuramoto order parameter over the agents' phases: 1
// when every phase is equal, close to 0 when phases are spread evenly.
func OrderParameter(agents []*firefly.Agent) float64 {
	if len(agents) == 0 {
		return 0
	}
	var re, im float64
	for _, a := range agents {
		theta := 2 * math.Pi * a.Phase()
		re += math.Cos(theta)
		im += math.Sin(theta)
	}
	n := float64(len(agents))
	return math.Hypot(re/n, im/n)
}

// Result is the outcome of a Convergence run.
type Result struct {
	Ticks      int64
	SyncTick   int64 // first tick with Order >= threshold, -1 if never
	FinalOrder float64
	PeakOrder  float64
	Onsets     int
}

// Synced reports whether the run reached the threshold.
func (r Result) Synced() bool { return r.SyncTick >= 0 }

// Convergence runs a fresh swarm for steps ticks and reports how quickly its
// order parameter reached threshold.
func Convergence(cfg Config, steps int, threshold float64) Result {
	s := NewWithConfig(cfg)
	res := Result{SyncTick: -1}
	for i := 0; i < steps; i++ {
		s.Step()
		st := s.Stats()
		res.Ticks = st.Tick
		res.Onsets += st.Onsets
		res.FinalOrder = st.Order
		if st.Order > res.PeakOrder {
			res.PeakOrder = st.Order
		}
		if res.SyncTick < 0 && st.Order >= threshold {
			res.SyncTick = st.Tick
		}
	}
	return res
}
