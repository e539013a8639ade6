package mapping

import (
	"slices"
	"sync/atomic"
)

// Store holds the active mapping table. The dispatch loop takes a snapshot
// on every cycle while reloads replace the table from another goroutine;
// the swap is a single atomic pointer store, so a reader never observes a
// partially replaced table and neither side waits on the other.
type Store struct {
	table atomic.Pointer[[]Mapping]
}

// NewStore returns a Store holding an empty table.
func NewStore() *Store {
	s := &Store{}
	s.table.Store(new([]Mapping))
	return s
}

// Snapshot returns the currently active table. The result stays valid and
// unchanged across concurrent Replace calls.
func (s *Store) Snapshot() []Mapping {
	return *s.table.Load()
}

// Replace atomically publishes a new table. The slice is copied, so the
// caller may keep mutating its own copy afterwards.
func (s *Store) Replace(table []Mapping) {
	t := slices.Clone(table)
	s.table.Store(&t)
}

// Len returns the number of mappings in the active table.
func (s *Store) Len() int {
	return len(s.Snapshot())
}
