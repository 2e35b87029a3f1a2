// Package state owns the single shared Reading slot. The sampler is the
// only writer, request handling the only reader, and every access goes
// through a bounded-wait lock: contention never blocks either side for
// longer than the caller's timeout.
package state

import (
	"time"

	"weatherstation/internal/reading"
)

// Store holds the most recent Reading behind a one-slot channel
// semaphore. The channel gives mutual exclusion with a wait that can be
// bounded by a timer, which sync.Mutex cannot express.
type Store struct {
	sem chan struct{}
	cur reading.Reading
}

// New returns a Store holding the zero Reading. Process-lifetime
// singleton; there is no teardown.
func New() *Store {
	return &Store{sem: make(chan struct{}, 1)}
}

// TryLock acquires the lock, giving up after timeout. A non-positive
// timeout means a single non-blocking attempt. Returns whether the lock
// was acquired; the caller must Unlock iff it was.
func (s *Store) TryLock(timeout time.Duration) bool {
	select {
	case s.sem <- struct{}{}:
		return true
	default:
	}
	if timeout <= 0 {
		return false
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case s.sem <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// Unlock releases a lock previously acquired with TryLock.
func (s *Store) Unlock() {
	select {
	case <-s.sem:
	default:
		panic("state: Unlock of unlocked Store")
	}
}

// Snapshot copies the current Reading under the lock. The copy is whole:
// a caller never observes a mix of two publishes. ok is false when the
// lock could not be acquired within timeout.
func (s *Store) Snapshot(timeout time.Duration) (r reading.Reading, ok bool) {
	if !s.TryLock(timeout) {
		return reading.Reading{}, false
	}
	r = s.cur
	s.Unlock()
	return r, true
}

// Publish replaces the stored Reading under the lock. Returns false when
// the lock could not be acquired within timeout, in which case the
// previous Reading stays authoritative.
func (s *Store) Publish(r reading.Reading, timeout time.Duration) bool {
	if !s.TryLock(timeout) {
		return false
	}
	s.cur = r
	s.Unlock()
	return true
}
