package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"flashsync/internal/sims/swarm"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), "swarm.yaml", `
sim: conductor
ticks: 1200
swarm:
  width: 16
  height: 12
  params:
    count: 30
    flash_adjust: 0.08
logging:
  level: debug
`)
	cfg, err := NewLoader().LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Sim != "conductor" || cfg.Ticks != 1200 {
		t.Fatalf("unexpected header %+v", cfg)
	}
	if cfg.Swarm.Width != 16 || cfg.Swarm.Params.Count != 30 || cfg.Swarm.Params.FlashAdjust != 0.08 {
		t.Fatalf("unexpected swarm %+v", cfg.Swarm)
	}
	def := swarm.DefaultConfig()
	if cfg.Swarm.Params.FlashPeriod != def.Params.FlashPeriod || cfg.Swarm.Seed != def.Seed {
		t.Fatalf("missing keys should keep defaults, got %+v", cfg.Swarm)
	}
	if cfg.Swarm.Params.HeartbeatPeriod != swarm.ConductorConfig().Params.HeartbeatPeriod {
		t.Fatalf("conductor preset not applied, got %+v", cfg.Swarm.Params)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "swarm.json", `{"ticks": 10, "swarm": {"params": {"tick_jitter": 2}}}`)
	cfg, err := NewLoader().LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ticks != 10 || cfg.Swarm.Params.TickJitter != 2 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "nope.yaml"), ErrConfigNotFound},
		{"directory", dir, ErrInvalidFormat},
		{"extension", writeFile(t, dir, "swarm.toml", "sim = 1"), ErrUnsupportedFormat},
		{"syntax", writeFile(t, dir, "bad.yaml", "sim: [unterminated"), ErrInvalidFormat},
		{"validation", writeFile(t, dir, "invalid.yaml", "swarm:\n  params:\n    flash_period: 0\n"), ErrValidationFailed},
		{"unknown sim", writeFile(t, dir, "sim.yaml", "sim: life\n"), ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader().LoadFile(tt.path)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidationFailureWrapsSwarmError(t *testing.T) {
	_, err := NewLoader().LoadString("swarm:\n  params:\n    blind_time: -1\n", FormatYAML)
	if !errors.Is(err, swarm.ErrInvalidConfig) {
		t.Fatalf("expected swarm.ErrInvalidConfig in chain, got %v", err)
	}
	if _, err := NewLoader(WithValidation(false)).LoadString("swarm:\n  params:\n    blind_time: -1\n", FormatYAML); err != nil {
		t.Fatalf("validation disabled, got %v", err)
	}
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("FLASHSYNC_TEST_TICKS", "77")
	cfg, err := NewLoader().LoadString("ticks: ${FLASHSYNC_TEST_TICKS}\nsim: ${FLASHSYNC_TEST_UNSET:-conductor}\n", FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Ticks != 77 || cfg.Sim != "conductor" {
		t.Fatalf("unexpected expansion %+v", cfg)
	}

	raw, err := NewLoader(WithEnvExpansion(false), WithValidation(false)).LoadString("record: ${FLASHSYNC_TEST_TICKS}\n", FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if raw.Record != "${FLASHSYNC_TEST_TICKS}" {
		t.Fatalf("expansion disabled, got %q", raw.Record)
	}
}
