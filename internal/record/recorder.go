package record

import (
	"context"
	"sync"

	"flashsync/internal/sims/swarm"
	"flashsync/pkg/firefly"
)

// Recorder is a swarm.Observer that streams transitions into a Store in
// batches. Write errors stop recording; the first one is kept for Close.
type Recorder struct {
	ctx   context.Context
	store *Store
	run   Run

	mu      sync.Mutex
	pending []Event
	open    int // events of the current tick still missing Millis
	err     error
	ticks   int64
}

var _ swarm.Observer = (*Recorder)(nil)

// NewRecorder creates the run entry and returns an observer writing to it.
func NewRecorder(ctx context.Context, store *Store, run Run) (*Recorder, error) {
	created, err := store.CreateRun(ctx, run)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		ctx:     ctx,
		store:   store,
		run:     created,
		pending: make([]Event, 0, store.cfg.BatchSize),
	}, nil
}

// Run returns the run metadata as created.
func (r *Recorder) Run() Run { return r.run }

// OnTransition implements swarm.Observer.
func (r *Recorder) OnTransition(tick int64, id int, from, to firefly.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}
	r.pending = append(r.pending, Event{Tick: tick, Agent: id, From: from.String(), To: to.String()})
	r.open++
}

// OnTick implements swarm.Observer.
func (r *Recorder) OnTick(st swarm.TickStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = st.Tick
	for i := len(r.pending) - r.open; i < len(r.pending); i++ {
		r.pending[i].Millis = st.Millis
	}
	r.open = 0
	if len(r.pending) >= r.store.cfg.BatchSize {
		r.flushLocked()
	}
}

// Flush writes buffered events.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushLocked()
	return r.err
}

func (r *Recorder) flushLocked() {
	if r.err != nil || len(r.pending) == 0 {
		return
	}
	if err := r.store.Append(r.ctx, r.run.ID, r.pending...); err != nil {
		r.err = err
		return
	}
	r.pending = r.pending[:0]
}

// Close flushes and stamps the run with its final tick count.
func (r *Recorder) Close() (Run, error) {
	if err := r.Flush(); err != nil {
		return r.run, err
	}
	r.mu.Lock()
	ticks := r.ticks
	r.mu.Unlock()
	run, err := r.store.Finish(r.ctx, r.run.ID, ticks)
	if err != nil {
		return r.run, err
	}
	r.run = run
	return run, nil
}
