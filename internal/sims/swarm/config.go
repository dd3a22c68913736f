package swarm

import (
	"errors"
	"fmt"
	"strconv"

	"flashsync/pkg/firefly"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("swarm: invalid config")

// Params holds the tunable timing and coupling values for the swarm.
type Params struct {
	Count int `yaml:"count" json:"count"`

	TickMillis int `yaml:"tick_ms" json:"tick_ms"`
	TickJitter int `yaml:"tick_jitter" json:"tick_jitter"`

	FlashPeriod    float64 `yaml:"flash_period" json:"flash_period"`
	FlashTime      float64 `yaml:"flash_time" json:"flash_time"`
	RefractoryTime float64 `yaml:"refractory_time" json:"refractory_time"`
	BlindTime      float64 `yaml:"blind_time" json:"blind_time"`

	FlashAdjust           float64 `yaml:"flash_adjust" json:"flash_adjust"`
	HeartBeatAdjustFactor float64 `yaml:"heartbeat_adjust" json:"heartbeat_adjust"`

	// HeartbeatPeriod is the conductor's beat interval in seconds; 0 disables it.
	HeartbeatPeriod float64 `yaml:"heartbeat_period" json:"heartbeat_period"`
	// HeartbeatSyncEvery puts every firefly in heartbeat override when > 0.
	HeartbeatSyncEvery int `yaml:"heartbeat_sync_every" json:"heartbeat_sync_every"`

	// SenseRadius limits which peers are visible (toroidal Chebyshev distance
	// in cells). Zero means every firefly sees every other one.
	SenseRadius int `yaml:"sense_radius" json:"sense_radius"`
}

// Config controls the swarm field and its fireflies.
type Config struct {
	Name   string `yaml:"name" json:"name"`
	Width  int    `yaml:"width" json:"width"`
	Height int    `yaml:"height" json:"height"`
	Seed   int64  `yaml:"seed" json:"seed"`

	Params Params `yaml:"params" json:"params"`
}

// DefaultConfig returns a free-running swarm.
func DefaultConfig() Config {
	return Config{
		Name:   "fireflies",
		Width:  64,
		Height: 48,
		Seed:   1337,
		Params: Params{
			Count:          120,
			TickMillis:     10,
			FlashPeriod:    1.0,
			FlashTime:      0.1,
			RefractoryTime: 0.05,
			BlindTime:      0.01,
			FlashAdjust:    0.05,
		},
	}
}

// ConductorConfig returns a swarm that follows a heartbeat every half second.
func ConductorConfig() Config {
	c := DefaultConfig()
	c.Name = "conductor"
	c.Params.HeartbeatPeriod = 0.5
	c.Params.HeartBeatAdjustFactor = 0.1
	c.Params.HeartbeatSyncEvery = 2
	return c
}

// Preset returns the built-in configuration registered under name.
func Preset(name string) (Config, error) {
	switch name {
	case "", "fireflies":
		return DefaultConfig(), nil
	case "conductor":
		return ConductorConfig(), nil
	}
	return Config{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidConfig, name)
}

// AgentConfig derives the per-firefly parameters.
func (p Params) AgentConfig() firefly.Config {
	return firefly.Config{
		FlashPeriod:           p.FlashPeriod,
		FlashAdjust:           p.FlashAdjust,
		RefractoryTime:        p.RefractoryTime,
		BlindTime:             p.BlindTime,
		FlashTime:             p.FlashTime,
		HeartBeatAdjustFactor: p.HeartBeatAdjustFactor,
	}
}

// Validate reports every rule the config breaks.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...))
	}
	if c.Width <= 0 || c.Height <= 0 {
		bad("field %dx%d must be positive", c.Width, c.Height)
	}
	p := c.Params
	if p.Count < 0 {
		bad("count %d is negative", p.Count)
	}
	if c.Width > 0 && c.Height > 0 && p.Count > c.Width*c.Height {
		bad("count %d exceeds %d cells", p.Count, c.Width*c.Height)
	}
	if p.TickMillis <= 0 {
		bad("tick_ms %d must be positive", p.TickMillis)
	}
	if p.TickJitter < 0 || (p.TickMillis > 0 && p.TickJitter >= p.TickMillis) {
		bad("tick_jitter %d must be in [0, tick_ms)", p.TickJitter)
	}
	if p.FlashPeriod <= 0 {
		bad("flash_period %g must be positive", p.FlashPeriod)
	}
	for _, d := range []struct {
		name  string
		value float64
	}{
		{"flash_time", p.FlashTime},
		{"refractory_time", p.RefractoryTime},
		{"blind_time", p.BlindTime},
		{"heartbeat_period", p.HeartbeatPeriod},
	} {
		if d.value < 0 {
			bad("%s %g is negative", d.name, d.value)
		}
	}
	if p.HeartbeatSyncEvery < 0 {
		bad("heartbeat_sync_every %d is negative", p.HeartbeatSyncEvery)
	}
	if p.SenseRadius < 0 {
		bad("sense_radius %d is negative", p.SenseRadius)
	}
	return errors.Join(errs...)
}

// FromMap populates the config from a string map (flag-style key/value pairs).
func FromMap(cfg map[string]string) Config {
	return ApplyMap(DefaultConfig(), cfg)
}

// ApplyMap overrides fields of base with parseable entries from cfg. Values
// that fail to parse or are out of range keep the base value.
func ApplyMap(base Config, cfg map[string]string) Config {
	c := base
	if cfg == nil {
		return c
	}
	intVal := func(key string, dst *int, min int) {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.Atoi(v); err == nil && parsed >= min {
				*dst = parsed
			}
		}
	}
	floatVal := func(key string, dst *float64, min float64, inclusive bool) {
		if v, ok := cfg[key]; ok {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil && (parsed > min || (inclusive && parsed == min)) {
				*dst = parsed
			}
		}
	}

	if v, ok := cfg["name"]; ok && v != "" {
		c.Name = v
	}
	intVal("w", &c.Width, 1)
	intVal("h", &c.Height, 1)
	if v, ok := cfg["seed"]; ok {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}
	intVal("count", &c.Params.Count, 0)
	intVal("tick_ms", &c.Params.TickMillis, 1)
	intVal("tick_jitter", &c.Params.TickJitter, 0)
	floatVal("flash_period", &c.Params.FlashPeriod, 0, false)
	floatVal("flash_time", &c.Params.FlashTime, 0, true)
	floatVal("refractory_time", &c.Params.RefractoryTime, 0, true)
	floatVal("blind_time", &c.Params.BlindTime, 0, true)
	floatVal("flash_adjust", &c.Params.FlashAdjust, 0, true)
	floatVal("heartbeat_adjust", &c.Params.HeartBeatAdjustFactor, 0, true)
	floatVal("heartbeat_period", &c.Params.HeartbeatPeriod, 0, true)
	intVal("heartbeat_sync_every", &c.Params.HeartbeatSyncEvery, 0)
	intVal("sense_radius", &c.Params.SenseRadius, 0)
	if c.Params.Count > c.Width*c.Height {
		c.Params.Count = c.Width * c.Height
	}
	return c
}
