// Package record persists swarm runs (state transitions plus run metadata) in
// BadgerDB so they can be replayed and compared later.
package record

import (
	"errors"

	"github.com/dgraph-io/badger/v4"
)

// Config configures the run store.
type Config struct {
	// Dir is the directory to store data in.
	Dir string

	// InMemory uses in-memory storage (useful for testing).
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// BatchSize is how many events a Recorder buffers before writing.
	BatchSize int
}

// Option configures the run store.
type Option func(*Config)

// WithDir sets the data directory.
func WithDir(dir string) Option {
	return func(c *Config) {
		c.Dir = dir
	}
}

// WithInMemory enables in-memory storage.
func WithInMemory() Option {
	return func(c *Config) {
		c.InMemory = true
	}
}

// WithSyncWrites enables synchronous writes.
func WithSyncWrites() Option {
	return func(c *Config) {
		c.SyncWrites = true
	}
}

// WithBatchSize sets the Recorder batch size.
func WithBatchSize(n int) Option {
	return func(c *Config) {
		c.BatchSize = n
	}
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{BatchSize: 512}
}

var (
	// ErrConnectionFailed is returned when the database cannot be opened.
	ErrConnectionFailed = errors.New("record: connection failed")
	// ErrRunNotFound is returned for unknown run IDs.
	ErrRunNotFound = errors.New("record: run not found")
)

func openDB(cfg Config) (*badger.DB, error) {
	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)
	// badger's own logger is noisy on stderr; errors surface through returns
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Join(ErrConnectionFailed, err)
	}
	return db, nil
}
