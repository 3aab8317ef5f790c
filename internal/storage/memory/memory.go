// Package memory provides the in-memory record store: the single owner of
// the student collection and the only component allowed to mutate it.
//
// LIFECYCLE
// ─────────
//
//	store := memory.New(source, memory.Options{Logger: log})
//	defer store.Close()
//	go store.Load(ctx)       // async; readers see Loading() == true until it succeeds
//
// Every successful mutation produces a new Snapshot and hands it to all
// subscribed listeners before the call returns. There is no eventual
// consistency window: when Add returns, every listener has seen the record.
//
// IDS
// ───
// IDs come from a counter owned by the store. The counter never goes
// below the largest ID in the collection, so a freshly assigned ID is
// unique even right after a load, and IDs are never reused after delete.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/aanand-mishra/students-dashboard/internal/storage"
	"github.com/aanand-mishra/students-dashboard/internal/types"
)

// Options tweak store behaviour.
type Options struct {
	// Logger receives load failures and debug traces. Defaults to slog.Default().
	Logger *slog.Logger

	// Strict makes Update and Delete return storage.ErrNotFound for an
	// unknown ID. Without it they are silent no-ops.
	Strict bool
}

type subscription struct {
	id       uint64
	listener storage.Listener
}

// Store is the concrete implementation of storage.Storage.
type Store struct {
	source storage.Source
	logger *slog.Logger
	strict bool

	// writeMu serializes mutations together with their notifications so
	// listeners observe snapshots in version order.
	writeMu sync.Mutex

	mu        sync.RWMutex
	records   []types.Student
	lastID    int64
	version   uint64
	status    storage.LoadStatus
	loadErr   error
	inFlight  bool
	closed    bool
	subs      []subscription
	nextSubID uint64
}

var _ storage.Storage = (*Store)(nil)

// New creates an empty store in the pending state. Nothing is fetched
// until Load is called.
func New(source storage.Source, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store{
		source:  source,
		logger:  opts.Logger,
		strict:  opts.Strict,
		records: make([]types.Student, 0),
		status:  storage.LoadPending,
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Load fetches the initial collection from the source and replaces the
// current one with it.
//
// On failure the error is logged, the status becomes LoadFailed, and
// listeners are notified so the failure is observable. Calling Load again
// retries. Load on a ready store returns ErrAlreadyLoaded; a second Load
// while one is running returns ErrLoadInProgress.
//
// Records added before the load completes are replaced by the loaded set.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return storage.ErrClosed
	case s.inFlight:
		s.mu.Unlock()
		return storage.ErrLoadInProgress
	case s.status == storage.LoadReady:
		s.mu.Unlock()
		return storage.ErrAlreadyLoaded
	}
	s.inFlight = true
	s.status = storage.LoadPending
	s.loadErr = nil
	s.mu.Unlock()

	s.logger.Debug("loading students")

	records, err := s.source.Fetch(ctx)
	var maxID int64
	if err == nil {
		maxID, err = checkRecords(records)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.inFlight = false
	if s.closed {
		s.mu.Unlock()
		return storage.ErrClosed
	}

	if err != nil {
		s.status = storage.LoadFailed
		s.loadErr = err
		s.version++
		snap := s.snapshotLocked()
		s.mu.Unlock()

		s.logger.Error("failed to load students", slog.String("error", err.Error()))
		s.notify(snap, storage.Change{Op: storage.OpLoad})
		return fmt.Errorf("memory.Load: %w", err)
	}

	if dropped := len(s.records); dropped > 0 {
		s.logger.Warn("load replaced records added before it completed",
			slog.Int("dropped", dropped))
	}
	s.records = append(make([]types.Student, 0, len(records)), records...)
	s.lastID = max(s.lastID, maxID)
	s.status = storage.LoadReady
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("students loaded", slog.Int("count", snap.Len()))
	s.notify(snap, storage.Change{Op: storage.OpLoad})
	return nil
}

// checkRecords rejects snapshots the store cannot hold: non-positive or
// duplicate IDs and unknown statuses. It returns the largest ID seen.
func checkRecords(records []types.Student) (int64, error) {
	var maxID int64
	seen := make(map[int64]struct{}, len(records))
	for i, r := range records {
		if r.ID <= 0 {
			return 0, fmt.Errorf("%w: record %d has non-positive id %d", storage.ErrMalformed, i, r.ID)
		}
		if _, dup := seen[r.ID]; dup {
			return 0, fmt.Errorf("%w: duplicate id %d", storage.ErrMalformed, r.ID)
		}
		if !r.Status.Valid() {
			return 0, fmt.Errorf("%w: record %d has unknown status %q", storage.ErrMalformed, r.ID, r.Status)
		}
		seen[r.ID] = struct{}{}
		maxID = max(maxID, r.ID)
	}
	return maxID, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Add appends candidate with a fresh ID and returns that ID.
//
// The candidate is NOT validated here. Callers run the validation package
// first; a semester of 9 passed straight to Add is stored as is.
// An empty status defaults to active.
// ─────────────────────────────────────────────────────────────────────────────
func (s *Store) Add(candidate types.Student) (int64, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, storage.ErrClosed
	}
	s.lastID++
	candidate.ID = s.lastID
	if candidate.Status == "" {
		candidate.Status = types.StatusActive
	}
	s.records = append(s.records, candidate)
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("student added", slog.Int64("id", candidate.ID))
	s.notify(snap, storage.Change{Op: storage.OpAdd, ID: candidate.ID})
	return candidate.ID, nil
}

// Update merges the supplied fields of patch into the record with id.
// Only non-nil patch fields change; the ID never does.
func (s *Store) Update(id int64, patch types.StudentPatch) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return storage.ErrClosed
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return s.notFound("update", id)
	}
	s.records[i] = patch.Apply(s.records[i])
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("student updated", slog.Int64("id", id))
	s.notify(snap, storage.Change{Op: storage.OpUpdate, ID: id})
	return nil
}

// Delete removes the record with id.
func (s *Store) Delete(id int64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return storage.ErrClosed
	}
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return s.notFound("delete", id)
	}
	s.records = slices.Delete(s.records, i, i+1)
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("student deleted", slog.Int64("id", id))
	s.notify(snap, storage.Change{Op: storage.OpDelete, ID: id})
	return nil
}

func (s *Store) notFound(op string, id int64) error {
	if s.strict {
		return fmt.Errorf("%w: %s id %d", storage.ErrNotFound, op, id)
	}
	s.logger.Debug("ignoring "+op+" of unknown student", slog.Int64("id", id))
	return nil
}

// Get returns the record with id from the current collection.
func (s *Store) Get(id int64) (types.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexLocked(id)
	if i < 0 {
		return types.Student{}, false
	}
	return s.records[i], true
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() storage.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers listener. The returned func unregisters it and is
// safe to call more than once. Subscribing to a closed store is a no-op.
func (s *Store) Subscribe(listener storage.Listener) func() {
	if listener == nil {
		return func() {}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}

	s.nextSubID++
	id := s.nextSubID
	s.subs = append(s.subs, subscription{id: id, listener: listener})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subs = slices.DeleteFunc(s.subs, func(sub subscription) bool {
				return sub.id == id
			})
		})
	}
}

// Close tears the store down. Listeners are dropped and further
// mutations or loads return storage.ErrClosed. Reads keep working on the
// last state.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = nil
	return nil
}

func (s *Store) indexLocked(id int64) int {
	return slices.IndexFunc(s.records, func(r types.Student) bool {
		return r.ID == id
	})
}

func (s *Store) snapshotLocked() storage.Snapshot {
	return storage.Snapshot{
		Version: s.version,
		Status:  s.status,
		Err:     s.loadErr,
		Records: slices.Clone(s.records),
	}
}

// notify delivers snap to every listener in registration order. Each
// listener gets its own copy of the records. Must be called with writeMu
// held and mu released.
func (s *Store) notify(snap storage.Snapshot, change storage.Change) {
	s.mu.RLock()
	subs := slices.Clone(s.subs)
	s.mu.RUnlock()

	for _, sub := range subs {
		own := snap
		own.Records = slices.Clone(snap.Records)
		sub.listener(own, change)
	}
}
