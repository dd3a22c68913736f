package swarm

import (
	"strconv"

	"flashsync/internal/core"
)

func (s *Swarm) Parameters() core.ParameterSnapshot {
	p := s.cfg.Params
	groups := []core.ParameterGroup{
		{
			Name: "Field",
			Params: []core.Parameter{
				intParam("w", "Width", s.cfg.Width),
				intParam("h", "Height", s.cfg.Height),
				int64Param("seed", "Seed", s.cfg.Seed),
				intParam("count", "Fireflies", p.Count),
				intParam("sense_radius", "Sense radius", p.SenseRadius),
			},
		},
		{
			Name: "Timing",
			Params: []core.Parameter{
				intParam("tick_ms", "Tick (ms)", p.TickMillis),
				intParam("tick_jitter", "Tick jitter (ms)", p.TickJitter),
				floatParam("flash_period", "Flash period", p.FlashPeriod),
				floatParam("flash_time", "Flash time", p.FlashTime),
				floatParam("refractory_time", "Refractory time", p.RefractoryTime),
				floatParam("blind_time", "Blind time", p.BlindTime),
			},
		},
		{
			Name: "Coupling",
			Params: []core.Parameter{
				floatParam("flash_adjust", "Flash adjust", p.FlashAdjust),
				floatParam("heartbeat_adjust", "Heartbeat adjust", p.HeartBeatAdjustFactor),
			},
		},
		{
			Name: "Heartbeat",
			Params: []core.Parameter{
				floatParam("heartbeat_period", "Heartbeat period", p.HeartbeatPeriod),
				intParam("heartbeat_sync_every", "Sync every N beats", s.syncEvery),
			},
		},
	}
	return core.ParameterSnapshot{Groups: groups}
}

// ParameterControls lists the values adjustable while the swarm runs.
func (s *Swarm) ParameterControls() []core.ParameterControl {
	return []core.ParameterControl{
		{Key: "flash_adjust", Label: "Flash adjust", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "flash_period", Label: "Flash period", Type: core.ParamTypeFloat, Step: 0.1, Min: 0.1, Max: 5, HasMin: true, HasMax: true},
		{Key: "blind_time", Label: "Blind time", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "refractory_time", Label: "Refractory time", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "heartbeat_adjust", Label: "Heartbeat adjust", Type: core.ParamTypeFloat, Step: 0.01, Min: 0, Max: 1, HasMin: true, HasMax: true},
		{Key: "heartbeat_period", Label: "Heartbeat period", Type: core.ParamTypeFloat, Step: 0.1, Min: 0, Max: 5, HasMin: true, HasMax: true},
		{Key: "heartbeat_sync_every", Label: "Sync every N", Type: core.ParamTypeInt, Step: 1, Min: 0, Max: 16, HasMin: true, HasMax: true},
		{Key: "count", Label: "Fireflies", Type: core.ParamTypeInt, Step: 10, Min: 0, HasMin: true},
	}
}

// SetFloatParameter updates a float tunable on the running swarm.
func (s *Swarm) SetFloatParameter(key string, value float64) bool {
	p := s.cfg.Params
	switch key {
	case "flash_adjust":
		if value < 0 {
			return false
		}
		p.FlashAdjust = value
	case "flash_period":
		if value <= 0 {
			return false
		}
		p.FlashPeriod = value
	case "flash_time":
		if value < 0 {
			return false
		}
		p.FlashTime = value
	case "blind_time":
		if value < 0 {
			return false
		}
		p.BlindTime = value
	case "refractory_time":
		if value < 0 {
			return false
		}
		p.RefractoryTime = value
	case "heartbeat_adjust":
		if value < 0 {
			return false
		}
		p.HeartBeatAdjustFactor = value
	case "heartbeat_period":
		if value < 0 {
			return false
		}
		p.HeartbeatPeriod = value
	default:
		return false
	}
	s.Apply(p)
	return true
}

// SetIntParameter updates an integer tunable on the running swarm. Changing
// the count or sense radius re-places the fireflies.
func (s *Swarm) SetIntParameter(key string, value int) bool {
	p := s.cfg.Params
	switch key {
	case "heartbeat_sync_every":
		if value < 0 {
			return false
		}
		p.HeartbeatSyncEvery = value
	case "count":
		if value < 0 || value > s.grid.W*s.grid.H {
			return false
		}
		p.Count = value
	case "sense_radius":
		if value < 0 {
			return false
		}
		p.SenseRadius = value
	case "tick_ms":
		if value <= 0 || p.TickJitter >= value {
			return false
		}
		p.TickMillis = value
	case "tick_jitter":
		if value < 0 || value >= p.TickMillis {
			return false
		}
		p.TickJitter = value
	default:
		return false
	}
	s.Apply(p)
	return true
}

func intParam(key, label string, value int) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.Itoa(value),
	}
}

func int64Param(key, label string, value int64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeInt,
		Value: strconv.FormatInt(value, 10),
	}
}

func floatParam(key, label string, value float64) core.Parameter {
	return core.Parameter{
		Key:   key,
		Label: label,
		Type:  core.ParamTypeFloat,
		Value: strconv.FormatFloat(value, 'f', -1, 64),
	}
}
