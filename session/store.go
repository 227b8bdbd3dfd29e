package session

import (
	"sync"
	"time"
)

// Entry wraps a [Record] with the bookkeeping the optimistic-concurrency
// protocol needs. Version strictly increases on every accepted write to the
// entry and is the sole arbiter of freshest-wins comparisons. CacheTime is
// the wall-clock moment the entry was last written.
type Entry struct {
	Data      Record
	Version   uint64
	CacheTime time.Time
}

func (e Entry) clone() Entry {
	out := e
	out.Data = e.Data.Clone()
	return out
}

// Store is the concurrent associative container for session entries. One
// RWMutex guards both the entry map and the [Stats] counters: every
// transition that changes one changes the other before the section is
// released, which closes the phantom-session window where a session is
// absent from the store but still counted as active.
//
// There is deliberately no exposed put or replace operation. Any feature
// needing read-then-modify-then-write goes through [Store.WithMut] or
// [Store.CommitRefresh], which run against the live entry while the write
// section is held. Copy-out reads plus independent writes would reintroduce
// the lost-update class of bug.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	stats   Stats
}

// NewStore creates an empty [Store].
func NewStore() *Store {
	return &Store{
		entries: make(map[string]*Entry),
	}
}

// Insert adds a fresh entry at version 0 and increments TotalSessions and
// ActiveSessions in the same critical section. Returns false without
// mutating anything if the id is already present.
func (s *Store) Insert(id string, rec Record, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[id]; exists {
		return false
	}

	s.entries[id] = &Entry{
		Data:      rec.Clone(),
		Version:   0,
		CacheTime: now,
	}
	s.stats.TotalSessions++
	s.stats.ActiveSessions++
	return true
}

// Get returns a deep copy of the record and counts the cache hit or miss
// inside the same lock acquisition as the lookup, so concurrent deletes can
// never make the counters lie about what the caller observed.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		s.stats.CacheMisses++
		return Record{}, false
	}

	s.stats.CacheHits++
	return entry.Data.Clone(), true
}

// Peek returns a copy of the full entry without touching the hit/miss
// counters. Intended for introspection and tests.
func (s *Store) Peek(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return entry.clone(), true
}

// WithMut is the only sanctioned mutation entry point for business data.
// fn runs against the live record while the write section is held; the entry
// version is bumped after fn returns. Under N concurrent callers every
// mutation lands: nothing is computed on a copy outside the lock and written
// back. Returns false if the id is absent.
//
// fn must not call back into the store.
func (s *Store) WithMut(id string, now time.Time, fn func(*Record)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return false
	}

	fn(&entry.Data)
	entry.Version++
	entry.CacheTime = now
	return true
}

// CommitRefresh applies data fetched from the authoritative store, but only
// if [NewerVersion] accepts the fetched version against the live entry at
// commit time. The fetch itself happens outside any lock; this is the
// commit-time comparison that keeps an old, slow fetch from clobbering a
// newer concurrent write.
//
// The first return value reports whether the fetched data was applied; the
// second whether the entry still exists.
func (s *Store) CommitRefresh(id string, fetched Record, sourceVersion uint64, now time.Time) (applied, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.entries[id]
	if !exists {
		return false, false
	}
	if !NewerVersion(sourceVersion, entry.Version) {
		return false, true
	}

	data := fetched.Clone()
	data.SessionID = id
	entry.Data = data
	entry.Version = sourceVersion
	entry.CacheTime = now
	return true, true
}

// Remove deletes the entry and decrements ActiveSessions in one critical
// section. When fn is non-nil it runs before the section is released, so a
// dependent structure (the cleanup queue) can transition atomically with
// the store: there is no observable state where the session is gone but
// not yet queued, or counted but absent.
//
// fn must not call back into the store.
func (s *Store) Remove(id string, fn func(Entry)) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}

	delete(s.entries, id)
	if s.stats.ActiveSessions > 0 {
		s.stats.ActiveSessions--
	}

	out := entry.clone()
	if fn != nil {
		fn(out)
	}
	return out, true
}

// Contains reports whether the id is present.
func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[id]
	return ok
}

// Len returns the live cardinality of the store.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

// Stats returns a copy of the counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stats
}

// Snapshot returns the counters and the live cardinality from a single lock
// acquisition. The pair is the observable form of the store's core
// invariant: Stats.ActiveSessions == live length, always.
func (s *Store) Snapshot() (Stats, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.stats, len(s.entries)
}

// IncFailedCleanups records an external cleanup failure. It takes the same
// section as every other stats mutation so snapshots stay internally
// consistent.
func (s *Store) IncFailedCleanups() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.FailedCleanups++
}
