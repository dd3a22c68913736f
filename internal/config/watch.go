package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"flashsync/internal/logging"
)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path   string
	loader *Loader
	w      *fsnotify.Watcher
}

// NewWatcher watches path's directory so editors that replace the file via
// rename are still picked up.
func NewWatcher(path string, loader *Loader) (*Watcher, error) {
	if loader == nil {
		loader = NewLoader()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("failed to watch path: %w", err)
	}
	return &Watcher{path: abs, loader: loader, w: w}, nil
}

// Run delivers every successfully reloaded config to onChange until ctx is
// done. Files that fail to load are logged and skipped.
func (w *Watcher) Run(ctx context.Context, onChange func(*File)) error {
	defer w.w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case evt, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(evt.Name) != w.path {
				continue
			}
			cfg, err := w.loader.LoadFile(w.path)
			if err != nil {
				logging.Warn().Add(logging.Path(w.path)).Add(logging.ErrorField(err)).Msg("config reload failed")
				continue
			}
			logging.Info().Add(logging.Path(w.path)).Msg("config reloaded")
			onChange(cfg)
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			logging.Warn().Add(logging.Component("config-watch")).Add(logging.ErrorField(err)).Send()
		}
	}
}

// Close stops watching without waiting for Run.
func (w *Watcher) Close() error { return w.w.Close() }
