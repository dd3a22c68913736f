package ui

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"flashsync/internal/core"
	"flashsync/internal/sims/swarm"
	"flashsync/pkg/firefly"
)

// SwarmActions are the swarm-wide commands bound to panel buttons and keys.
type SwarmActions interface {
	DePhaseAll()
	EnableHeartbeatSync(everyN int)
	DisableHeartbeatSync()
	HeartbeatSyncEvery() int
}

// ToggleHeartbeatSync turns heartbeat sync off when it is on, and otherwise
// locks the swarm to every everyN-th beat. It reports the new setting.
func ToggleHeartbeatSync(a SwarmActions, everyN int) bool {
	if a.HeartbeatSyncEvery() > 0 {
		a.DisableHeartbeatSync()
		return false
	}
	a.EnableHeartbeatSync(everyN)
	return true
}

type swarmView interface {
	Stats() swarm.TickStats
	States() []firefly.State
	Outputs() []uint8
	Agent(id int) *firefly.Agent
	Len() int
	HeartbeatSyncEvery() int
}

// Readout is the swarm summary shown above the controls.
type Readout struct {
	Title string
	Clock string
	Mode  string

	// Census counts fireflies per state. A lit firefly counts as Flash even
	// when heartbeat sync holds it in Idle.
	Census [len(firefly.States)]int
	Total  int

	Order         float64
	Heartbeat     bool
	HeartbeatSync bool
	MeanThreshold float64
}

func readSwarm(sim core.Sim) Readout {
	r := Readout{Title: panelTitle(sim.Name())}
	sv, ok := sim.(swarmView)
	if !ok {
		return r
	}
	st := sv.Stats()
	r.Clock = fmt.Sprintf("t=%.2fs tick=%d", float64(st.Millis)/1000, st.Tick)
	r.Order = st.Order
	r.Heartbeat = st.Heartbeat
	r.Total = sv.Len()

	outs := sv.Outputs()
	for i, s := range sv.States() {
		if i < len(outs) && outs[i] > 0 {
			s = firefly.Flash
		}
		if int(s) < len(r.Census) {
			r.Census[s]++
		}
		r.MeanThreshold += sv.Agent(i).Mean()
	}
	if r.Total > 0 {
		r.MeanThreshold /= float64(r.Total)
	}

	r.Mode = "free running"
	if n := sv.HeartbeatSyncEvery(); n > 0 {
		r.HeartbeatSync = true
		r.Mode = fmt.Sprintf("heartbeat sync 1/%d", n)
	}
	return r
}

func panelTitle(name string) string {
	if name == "" {
		return "Swarm"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// stepControl moves current one step in direction and clamps the result.
// Integer controls round to whole steps. The bool reports whether the value
// changed.
func stepControl(ctrl core.ParameterControl, current float64, direction int) (float64, bool) {
	step := ctrl.Step
	switch {
	case ctrl.Type == core.ParamTypeInt:
		step = math.Max(1, math.Round(step))
	case step <= 0:
		step = 0.05
	}
	target := ctrl.Clamp(current + float64(direction)*step)
	if ctrl.Type == core.ParamTypeInt {
		target = math.Round(target)
	}
	return target, direction != 0 && math.Abs(target-current) > 1e-9
}

func formatControl(ctrl core.ParameterControl, v float64) string {
	if ctrl.Type == core.ParamTypeInt {
		return strconv.Itoa(int(math.Round(v)))
	}
	precision := 1
	switch {
	case ctrl.Step <= 0:
		precision = 2
	case ctrl.Step < 0.001:
		precision = 4
	case ctrl.Step < 0.01:
		precision = 3
	case ctrl.Step < 0.1:
		precision = 2
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}
