package watch

import (
	"sort"
	"sync"
)

// SeenSet is the set of video paths observed by previous scans. It lives for
// the process lifetime only.
type SeenSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

func NewSeenSet(paths ...string) *SeenSet {
	s := &SeenSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		s.paths[p] = struct{}{}
	}
	return s
}

func (s *SeenSet) Add(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		s.paths[p] = struct{}{}
	}
}

func (s *SeenSet) Remove(paths ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range paths {
		delete(s.paths, p)
	}
}

func (s *SeenSet) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.paths[path]
	return ok
}

func (s *SeenSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}

// Paths returns the members, sorted.
func (s *SeenSet) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.paths)
}

// Diff compares current against the set without changing it.
func (s *SeenSet) Diff(current []string) (added, removed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.diffLocked(current)
}

// Sync replaces the set with current and returns what changed.
func (s *SeenSet) Sync(current []string) (added, removed []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added, removed = s.diffLocked(current)
	next := make(map[string]struct{}, len(current))
	for _, p := range current {
		next[p] = struct{}{}
	}
	s.paths = next
	return added, removed
}

func (s *SeenSet) diffLocked(current []string) (added, removed []string) {
	now := make(map[string]struct{}, len(current))
	for _, p := range current {
		now[p] = struct{}{}
		if _, ok := s.paths[p]; !ok {
			added = append(added, p)
		}
	}
	for p := range s.paths {
		if _, ok := now[p]; !ok {
			removed = append(removed, p)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
