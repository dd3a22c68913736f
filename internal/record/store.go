package record

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"flashsync/internal/sims/swarm"
)

// Run describes one recorded simulation.
type Run struct {
	ID        string       `json:"id"`
	Sim       string       `json:"sim"`
	Seed      int64        `json:"seed"`
	Config    swarm.Config `json:"config"`
	Agents    int          `json:"agents"`
	StartedAt time.Time    `json:"started_at"`
	// Ticks and Events are filled in by Finish.
	Ticks  int64 `json:"ticks"`
	Events int64 `json:"events"`
}

// Event is one state transition of one firefly.
type Event struct {
	Seq    uint64 `json:"seq"`
	Tick   int64  `json:"tick"`
	Millis int64  `json:"ms"`
	Agent  int    `json:"agent"`
	From   string `json:"from"`
	To     string `json:"to"`
}

// Store is a BadgerDB-backed run store.
type Store struct {
	db  *badger.DB
	cfg Config
}

// Open opens (or creates) a store.
func Open(cfg Config, opts ...Option) (*Store, error) {
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, cfg: cfg}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Key format: run:<id>
func runKey(id string) []byte { return []byte("run:" + id) }

// Key format: seq:<id>
func seqKey(id string) []byte { return []byte("seq:" + id) }

// Key format: ev:<id>:<sequence (8 bytes, big-endian)>
func eventKey(id string, seq uint64) []byte {
	seqBytes := make([]byte, 8)
	binary.BigEndian.PutUint64(seqBytes, seq)
	return append([]byte("ev:"+id+":"), seqBytes...)
}

// CreateRun stores the run metadata and assigns an ID when empty.
func (s *Store) CreateRun(ctx context.Context, run Run) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return putJSON(txn, runKey(run.ID), run)
	})
	if err != nil {
		return Run{}, fmt.Errorf("create run: %w", err)
	}
	return run, nil
}

// Append persists events for a run atomically, assigning sequence numbers.
func (s *Store) Append(ctx context.Context, runID string, events ...Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(runKey(runID)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
			}
			return err
		}
		seq, err := readSeq(txn, runID)
		if err != nil {
			return err
		}
		for i := range events {
			seq++
			events[i].Seq = seq
			if err := putJSON(txn, eventKey(runID, seq), events[i]); err != nil {
				return err
			}
		}
		seqBytes := make([]byte, 8)
		binary.BigEndian.PutUint64(seqBytes, seq)
		return txn.Set(seqKey(runID), seqBytes)
	})
}

func readSeq(txn *badger.Txn, runID string) (uint64, error) {
	item, err := txn.Get(seqKey(runID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var seq uint64
	err = item.Value(func(val []byte) error {
		if len(val) == 8 {
			seq = binary.BigEndian.Uint64(val)
		}
		return nil
	})
	return seq, err
}

// Finish records the final tick count and event total.
func (s *Store) Finish(ctx context.Context, runID string, ticks int64) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	var run Run
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := getJSON(txn, runKey(runID), &run); err != nil {
			return err
		}
		seq, err := readSeq(txn, runID)
		if err != nil {
			return err
		}
		run.Ticks = ticks
		run.Events = int64(seq)
		return putJSON(txn, runKey(runID), run)
	})
	if err != nil {
		return Run{}, s.wrapNotFound(err, runID)
	}
	return run, nil
}

// Get returns the metadata of one run.
func (s *Store) Get(ctx context.Context, runID string) (Run, error) {
	if err := ctx.Err(); err != nil {
		return Run{}, err
	}
	var run Run
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, runKey(runID), &run)
	})
	if err != nil {
		return Run{}, s.wrapNotFound(err, runID)
	}
	return run, nil
}

// Load retrieves all events of a run in sequence order.
func (s *Store) Load(ctx context.Context, runID string) ([]Event, error) {
	if _, err := s.Get(ctx, runID); err != nil {
		return nil, err
	}
	var events []Event
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("ev:" + runID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var e Event
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &e)
			}); err != nil {
				return err
			}
			events = append(events, e)
		}
		return nil
	})
	return events, err
}

// Runs lists every recorded run, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var runs []Run
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("run:")
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var r Run
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &r)
			}); err != nil {
				return err
			}
			runs = append(runs, r)
		}
		return nil
	})
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].StartedAt.Before(runs[j].StartedAt) })
	return runs, err
}

func (s *Store) wrapNotFound(err error, runID string) error {
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return err
}

func putJSON(txn *badger.Txn, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

func getJSON(txn *badger.Txn, key []byte, v any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}
