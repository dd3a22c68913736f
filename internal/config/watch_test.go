package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := writeFile(t, t.TempDir(), "swarm.yaml", "ticks: 1\n")
	w, err := NewWatcher(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan *File, 4)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(f *File) {
			select {
			case got <- f:
			default:
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case f := <-got:
			if f.Ticks != 2 {
				continue
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatal(err)
			}
			return
		case <-tick.C:
			// rewrite until the watcher is registered and sees a change
			if err := os.WriteFile(path, []byte("ticks: 2\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		case <-deadline:
			t.Fatal("no reload within 5s")
		}
	}
}
