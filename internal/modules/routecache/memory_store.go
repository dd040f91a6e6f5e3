// README: In-memory cache store for tests and single-process runs.
package routecache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a mutex-guarded map implementation of Store. It backs
// unit tests and the no-infrastructure local mode.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (s *MemoryStore) Upsert(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.entries[e.Key]; ok {
		e.FirstSeen = prev.FirstSeen
		e.HitCount = prev.HitCount
	}
	e.Stale = false
	s.entries[e.Key] = &e
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, key string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return 0, ErrNotFound
	}
	e.HitCount++
	if at.After(e.LastSeen) {
		e.LastSeen = at
	}
	return e.HitCount, nil
}

func (s *MemoryStore) SetStale(_ context.Context, key string, stale bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return ErrNotFound
	}
	e.Stale = stale
	return nil
}

func (s *MemoryStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for k, e := range s.entries {
		if e.LastSeen.Before(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st Stats
	for _, e := range s.entries {
		st.TotalEntries++
		st.TotalHits += e.HitCount
		first := e.FirstSeen
		if st.OldestFirstSeen == nil || first.Before(*st.OldestFirstSeen) {
			f := first
			st.OldestFirstSeen = &f
		}
		if st.NewestFirstSeen == nil || first.After(*st.NewestFirstSeen) {
			f := first
			st.NewestFirstSeen = &f
		}
	}
	return st, nil
}
