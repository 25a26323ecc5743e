package catalog

import "sync/atomic"

// Store publishes the active Snapshot. Readers take one pointer per call and keep
// using it, so a swap never shows them a mix of two snapshots.
type Store struct {
	current atomic.Pointer[Snapshot]
}

func NewStore() *Store {
	return &Store{}
}

// Current returns the active snapshot or nil before the first load.
func (s *Store) Current() *Snapshot {
	return s.current.Load()
}

// Swap installs next and returns the snapshot it replaced.
func (s *Store) Swap(next *Snapshot) *Snapshot {
	return s.current.Swap(next)
}

func (s *Store) Ready() bool {
	return s.current.Load() != nil
}
