package app

import (
	"flag"
	"testing"
)

func TestConfigBind(t *testing.T) {
	cfg := NewConfig()
	fs := flag.NewFlagSet("gui", flag.ContinueOnError)
	cfg.Bind(fs)
	if err := fs.Parse([]string{"-sim", "conductor", "-scale", "4", "-seed", "9", "-sound"}); err != nil {
		t.Fatal(err)
	}
	if cfg.Sim != "conductor" || cfg.Scale != 4 || cfg.Seed != 9 || !cfg.Sound {
		t.Fatalf("flags not bound: %+v", cfg)
	}
	if cfg.TPS != 100 || cfg.Panel != 280 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}
