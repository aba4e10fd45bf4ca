package corpus

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrNotLoaded is returned when an operation needs a snapshot before any
// corpus has been loaded.
var ErrNotLoaded = errors.New("no corpus loaded")

// Store publishes corpus snapshots to concurrent readers. The only mutation is
// a full reload, which builds a brand-new snapshot and swaps the active pointer
// atomically; in-flight readers keep the snapshot they already hold.
type Store struct {
	current atomic.Pointer[Snapshot]

	mu         sync.Mutex // serializes Load/Reload
	generation int64
	dir        string
}

// NewStore returns an empty store. Call Load before reading.
func NewStore() *Store {
	return &Store{}
}

// Load builds a snapshot from dir and publishes it.
func (s *Store) Load(dir string) (*Snapshot, *LoadReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap, report, err := Load(dir)
	if err != nil {
		return nil, nil, err
	}

	s.generation++
	snap.Generation = s.generation
	s.dir = dir
	s.current.Store(snap)
	return snap, report, nil
}

// Reload performs a full rebuild from the directory of the last Load and
// atomically swaps the active snapshot. There is no partial update path.
func (s *Store) Reload() (*Snapshot, *LoadReport, error) {
	s.mu.Lock()
	dir := s.dir
	s.mu.Unlock()

	if dir == "" {
		return nil, nil, ErrNotLoaded
	}
	return s.Load(dir)
}

// Snapshot returns the current snapshot, or ErrNotLoaded before the first
// successful Load. Callers should acquire the snapshot once per operation.
func (s *Store) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Loaded reports whether a snapshot has been published.
func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}
