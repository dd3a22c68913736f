package app

import "flag"

// Config represents the command-line parameters for the GUI.
type Config struct {
	Sim   string
	Scale int
	TPS   int
	Seed  int64
	Panel int
	Sound bool
}

// NewConfig returns a Config populated with sensible defaults. One tick is
// 10 ms of simulated time, so 100 TPS runs in real time.
func NewConfig() *Config {
	return &Config{Sim: "fireflies", Scale: 10, TPS: 100, Seed: 1337, Panel: 280}
}

// Bind attaches the configuration to the provided FlagSet.
func (c *Config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "simulation to run")
	fs.IntVar(&c.Scale, "scale", c.Scale, "pixel scale multiplier")
	fs.IntVar(&c.TPS, "tps", c.TPS, "ticks per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for simulation reset")
	fs.IntVar(&c.Panel, "panel", c.Panel, "width of the parameter panel in pixels, 0 hides it")
	fs.BoolVar(&c.Sound, "sound", c.Sound, "chirp on every flash")
}
