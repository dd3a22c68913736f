// Package firefly implements a pulse-coupled oscillator that synchronises its
// flashes with its peers (Tyrrell & Auer, 2006).
package firefly

import "math"

const (
	// smoothing is the weight of the newest sample in the activity average.
	smoothing   = 0.001
	initialMean = 0.5
)

// Agent is a single firefly. It is not safe for concurrent use; a driver is
// expected to call Step once per tick.
type Agent struct {
	id  int
	cfg Config
	rnd Rand

	mainTimer  Timer
	stateTimer Timer
	stateDwell int64

	state  State
	mean   float64
	action uint8

	sync heartbeatSync
}

// New constructs an agent in the Idle state with both timers stopped. The
// agent takes ownership of the timers.
func New(id int, cfg Config, mainTimer, stateTimer Timer, rnd Rand) *Agent {
	mainTimer.Stop()
	stateTimer.Stop()
	return &Agent{
		id:         id,
		cfg:        cfg,
		rnd:        rnd,
		mainTimer:  mainTimer,
		stateTimer: stateTimer,
		state:      Idle,
		mean:       initialMean,
	}
}

// Start randomises the phase, clears runtime state and runs one silent step.
func (a *Agent) Start() {
	a.DePhase()
	a.state = Idle
	a.stateTimer.Restart()
	a.stateDwell = 0
	a.mean = initialMean
	a.action = 0
	a.Step(nil)
}

// Step advances the agent by one tick and returns its output (0 or 1). A nil
// environment is treated as no peers and no heartbeat.
func (a *Agent) Step(env Environment) uint8 {
	beat := env != nil && env.Heartbeat()
	if a.sync.enabled {
		a.action = a.sync.step(beat)
		return a.action
	}

	incoming := a.sense(env)
	a.mean -= smoothing * (a.mean - incoming)
	a.action = 0

	switch a.state {
	case Idle:
		adjust := 0.0
		if beat {
			adjust += a.cfg.HeartBeatAdjustFactor
		}
		if incoming > a.mean {
			adjust += a.cfg.FlashAdjust
		}
		if adjust > 0 {
			a.mainTimer.Advance(Millis(a.cfg.FlashPeriod * adjust))
			a.enter(Blind, a.cfg.BlindTime)
		}
		a.selfFlash()
	case Blind, Refract:
		if !a.selfFlash() && a.stateTimer.HasPassed(a.stateDwell) {
			a.enter(Idle, 0)
		}
	case Flash:
		a.action = 1
		if a.stateTimer.HasPassed(a.stateDwell) {
			a.mainTimer.Restart()
			a.enter(Refract, a.cfg.RefractoryTime)
		}
	}
	return a.action
}

// sense returns 1 when any other agent flashed during the previous tick.
func (a *Agent) sense(env Environment) float64 {
	if env == nil {
		return 0
	}
	for _, s := range env.Peers() {
		if s.ID != a.id && s.Action > 0 {
			return 1
		}
	}
	return 0
}

// selfFlash enters Flash once the phase timer has run a full period. It takes
// precedence over any transition chosen earlier in the same tick.
func (a *Agent) selfFlash() bool {
	if !a.mainTimer.HasPassed(Millis(a.cfg.FlashPeriod)) {
		return false
	}
	a.mainTimer.Restart()
	a.enter(Flash, a.cfg.FlashTime)
	a.action = 1
	return true
}

func (a *Agent) enter(s State, dwellSeconds float64) {
	a.state = s
	a.stateDwell = Millis(dwellSeconds)
	a.stateTimer.Restart()
}

// SetPeriod changes the flash period without touching the phase timer.
func (a *Agent) SetPeriod(seconds float64) { a.cfg.FlashPeriod = seconds }

// SetFlashAdjust changes the phase advance applied when a peer flashes.
func (a *Agent) SetFlashAdjust(v float64) { a.cfg.FlashAdjust = v }

// SetHeartBeatAdjustFactor changes the phase advance applied on a heartbeat.
func (a *Agent) SetHeartBeatAdjustFactor(v float64) { a.cfg.HeartBeatAdjustFactor = v }

// Reconfigure swaps the whole parameter set. Timers and state are kept.
func (a *Agent) Reconfigure(cfg Config) { a.cfg = cfg }

// SetPhase restarts the phase timer at fraction of a period, so fraction 0
// waits a full period and values close to 1 flash almost immediately.
func (a *Agent) SetPhase(fraction float64) {
	a.mainTimer.Restart()
	a.mainTimer.Advance(Millis(a.cfg.FlashPeriod * fraction))
}

// DePhase moves the phase timer to a uniformly random point of the period.
func (a *Agent) DePhase() {
	if a.rnd == nil {
		a.SetPhase(0)
		return
	}
	a.SetPhase(a.rnd.Float64())
}

// EnableHeartbeatSync makes the agent flash on every everyN-th heartbeat,
// starting with the next one, and ignore its own oscillator.
func (a *Agent) EnableHeartbeatSync(everyN int) { a.sync.enable(everyN) }

// DisableHeartbeatSync returns control to the oscillator.
func (a *Agent) DisableHeartbeatSync() { a.sync.disable() }

// HeartbeatSync reports whether heartbeat override is active.
func (a *Agent) HeartbeatSync() bool { return a.sync.enabled }

// ID returns the identifier used to ignore the agent's own signal.
func (a *Agent) ID() int { return a.id }

// Config returns the current parameters.
func (a *Agent) Config() Config { return a.cfg }

// State returns the current state tag.
func (a *Agent) State() State { return a.state }

// Mean returns the smoothed peer activity.
func (a *Agent) Mean() float64 { return a.mean }

// Action returns the output computed by the last Step.
func (a *Agent) Action() uint8 { return a.action }

// Phase returns the phase timer's progress through the period in [0, 1).
func (a *Agent) Phase() float64 {
	period := Millis(a.cfg.FlashPeriod)
	if period <= 0 {
		return 0
	}
	return math.Mod(float64(a.mainTimer.Elapsed())/float64(period), 1)
}
