package core

import "sync"

// SeenStore tracks which (coordinate, version) pairs have already been
// reported during this process's lifetime. It grows monotonically and
// is never persisted.
type SeenStore struct {
	mu   sync.RWMutex
	seen map[Coordinate]map[string]struct{}
}

// NewSeenStore returns an empty store.
func NewSeenStore() *SeenStore {
	return &SeenStore{
		seen: make(map[Coordinate]map[string]struct{}),
	}
}

// Seen reports whether the pair has already been marked.
func (s *SeenStore) Seen(c Coordinate, version string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions, ok := s.seen[c]
	if !ok {
		return false
	}
	_, ok = versions[version]
	return ok
}

// Mark records the pair and reports whether it was newly marked.
// The check-then-mark is atomic, so concurrent callers observe at most
// one true result per pair.
func (s *SeenStore) Mark(c Coordinate, version string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	versions, ok := s.seen[c]
	if !ok {
		versions = make(map[string]struct{})
		s.seen[c] = versions
	}
	if _, dup := versions[version]; dup {
		return false
	}
	versions[version] = struct{}{}
	return true
}

// Len returns the total number of marked pairs.
func (s *SeenStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, versions := range s.seen {
		n += len(versions)
	}
	return n
}
