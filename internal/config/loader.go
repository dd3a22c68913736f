// Package config loads run configuration files for the flashsync tools.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"flashsync/internal/logging"
	"flashsync/internal/sims/swarm"
)

var (
	// ErrConfigNotFound is returned when the config file does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrInvalidFormat is returned when the file cannot be parsed.
	ErrInvalidFormat = errors.New("invalid config format")
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported config format")
	// ErrValidationFailed is returned when the parsed config is inconsistent.
	ErrValidationFailed = errors.New("config validation failed")
)

// File is the on-disk run configuration.
type File struct {
	Sim   string `yaml:"sim" json:"sim"`
	Ticks int    `yaml:"ticks" json:"ticks"`
	// Record is a badger directory; empty disables recording.
	Record  string `yaml:"record" json:"record"`
	Metrics bool   `yaml:"metrics" json:"metrics"`

	Swarm   swarm.Config   `yaml:"swarm" json:"swarm"`
	Logging logging.Config `yaml:"logging" json:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *File {
	return &File{
		Sim:     "fireflies",
		Ticks:   6000,
		Swarm:   swarm.DefaultConfig(),
		Logging: logging.DefaultConfig(),
	}
}

// Validate checks the file and the embedded swarm config.
func (f *File) Validate() error {
	var errs []error
	if f.Sim == "" {
		errs = append(errs, errors.New("sim must be set"))
	} else if _, err := swarm.Preset(f.Sim); err != nil {
		errs = append(errs, err)
	}
	if f.Ticks < 0 {
		errs = append(errs, fmt.Errorf("ticks %d is negative", f.Ticks))
	}
	if err := f.Swarm.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Format represents a configuration file format.
type Format string

const (
	// FormatYAML is the YAML format.
	FormatYAML Format = "yaml"
	// FormatJSON is the JSON format.
	FormatJSON Format = "json"
)

// Loader loads run configuration from files.
type Loader struct {
	// ExpandEnv enables ${VAR} and ${VAR:-default} expansion.
	ExpandEnv bool
	// Validate enables configuration validation.
	Validate bool
}

// LoaderOption configures the loader.
type LoaderOption func(*Loader)

// WithEnvExpansion enables or disables environment variable expansion.
func WithEnvExpansion(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.ExpandEnv = enabled
	}
}

// WithValidation enables or disables configuration validation.
func WithValidation(enabled bool) LoaderOption {
	return func(l *Loader) {
		l.Validate = enabled
	}
}

// NewLoader creates a loader with env expansion and validation enabled.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{ExpandEnv: true, Validate: true}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FormatFor maps a file extension to its format.
func FormatFor(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// LoadFile loads configuration from a file path.
func (l *Loader) LoadFile(path string) (*File, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("failed to access config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrInvalidFormat, path)
	}

	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	return l.Load(f, format)
}

// Load reads configuration from r. Fields missing from the input keep their
// Default values.
func (l *Loader) Load(r io.Reader, format Format) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if l.ExpandEnv {
		data = []byte(expandEnv(string(data)))
	}

	var unmarshal func([]byte, any) error
	switch format {
	case FormatYAML:
		unmarshal = yaml.Unmarshal
	case FormatJSON:
		unmarshal = json.Unmarshal
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	// The sim name picks the preset the rest of the file is layered over.
	var head struct {
		Sim string `yaml:"sim" json:"sim"`
	}
	if err := unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	cfg := Default()
	if head.Sim != "" {
		cfg.Sim = head.Sim
		if preset, err := swarm.Preset(head.Sim); err == nil {
			cfg.Swarm = preset
		}
	}
	if err := unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}

	if l.Validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
	}
	return cfg, nil
}

// LoadString loads configuration from a string.
func (l *Loader) LoadString(content string, format Format) (*File, error) {
	return l.Load(strings.NewReader(content), format)
}
