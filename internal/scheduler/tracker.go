package scheduler

import (
	"sync"

	"github.com/sarat-asymmetrica/xtalforge/internal/crystal"
)

// Tracker holds every crystal ever accepted into a run. Its read/write
// lock guards the population slice only: reads of the slice take the read
// lock and appends take the write lock. Crystals carry no lock of their
// own, and field writes through the shared pointers (status transitions
// included) are not synchronized by the tracker. New-crystal
// id assignment goes through the separate naming monitor so that
// (generation, id) pairs stay unique even when many workers propose
// candidates concurrently.
type Tracker struct {
	mu       sync.RWMutex
	crystals []*crystal.Crystal

	namingMu sync.Mutex
	nextID   int
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Snapshot returns a shallow copy of the current population slice. The
// crystal pointers themselves are shared and carry no lock, so field
// writes through them are not synchronized by the tracker; this is a
// safe point-in-time view of "which crystals exist".
func (t *Tracker) Snapshot() []*crystal.Crystal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*crystal.Crystal, len(t.crystals))
	copy(out, t.crystals)
	return out
}

// CountByStatus tallies the population by status.
func (t *Tracker) CountByStatus() map[crystal.Status]int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	counts := make(map[crystal.Status]int)
	for _, c := range t.crystals {
		counts[c.Status]++
	}
	return counts
}

// Optimized returns every crystal whose status is Optimized.
func (t *Tracker) Optimized() []*crystal.Crystal {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []*crystal.Crystal
	for _, c := range t.crystals {
		if c.Status == crystal.Optimized {
			out = append(out, c)
		}
	}
	return out
}

// LockForNaming acquires the global naming monitor and returns a snapshot
// of the population as it stood at that moment — the only safe place to
// decide a new crystal's (generation, id) pair. Callers must always
// follow with UnlockForNaming, even on an error path (passing a nil
// crystal skips the append but still releases the lock).
func (t *Tracker) LockForNaming() []*crystal.Crystal {
	t.namingMu.Lock()
	return t.Snapshot()
}

// UnlockForNaming appends newCrystal (if non-nil) to the tracker and
// releases the naming monitor acquired by LockForNaming.
func (t *Tracker) UnlockForNaming(newCrystal *crystal.Crystal) {
	defer t.namingMu.Unlock()
	if newCrystal == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.crystals = append(t.crystals, newCrystal)
}

// NextID allocates the next crystal id from a single counter shared by
// all generations. Must be called
// while holding the naming monitor (i.e. between LockForNaming and
// UnlockForNaming).
func (t *Tracker) NextID() int {
	t.nextID++
	return t.nextID
}

// PeekNextID reports the id NextID would allocate next, without
// consuming it — for status reporting and persisted-state snapshots
// that should not perturb future naming.
func (t *Tracker) PeekNextID() int {
	t.namingMu.Lock()
	defer t.namingMu.Unlock()
	return t.nextID + 1
}

// Add appends c directly, bypassing the naming monitor — for seeding an
// initial population or restoring persisted state where uniqueness is
// already guaranteed by the caller.
func (t *Tracker) Add(c *crystal.Crystal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.crystals = append(t.crystals, c)
	if c.ID > t.nextID {
		t.nextID = c.ID
	}
}

// At returns the crystal at rank i in insertion order, for callers that
// want positional access into the population rather than a full
// snapshot copy.
func (t *Tracker) At(i int) (*crystal.Crystal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if i < 0 || i >= len(t.crystals) {
		return nil, false
	}
	return t.crystals[i], true
}

// PopPending returns the first WaitingForOptimization crystal in
// insertion order, matching the original tracker's FIFO dispatch
// discipline. It does not remove or mutate the crystal; the caller
// advances its status once submission succeeds.
func (t *Tracker) PopPending() (*crystal.Crystal, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, c := range t.crystals {
		if c.Status == crystal.WaitingForOptimization {
			return c, true
		}
	}
	return nil, false
}
