package store

import (
	"iter"
	"maps"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/ardnew/stx/syntax"
)

// Store is a concurrency-safe map from string keys to compile-time values.
//
// The zero value is ready to use.
type Store struct {
	mu sync.RWMutex
	m  map[string]any
}

// Runtime wraps a value computed by running module code. Compile-time code
// can read it, but it is never invoked as a macro.
type Runtime struct {
	Value any
}

// New returns an empty store.
func New() *Store { return &Store{m: make(map[string]any)} }

// Key returns the qualified key of name exported by specifier at phase.
func Key(specifier, name string, phase syntax.Phase) string {
	return specifier + ":" + name + ":" + strconv.Itoa(int(phase))
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.m[key]

	return v, ok
}

// Has reports whether key holds a value.
func (s *Store) Has(key string) bool {
	_, ok := s.Get(key)

	return ok
}

// Set stores v under key, replacing any previous value.
func (s *Store) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.m == nil {
		s.m = make(map[string]any)
	}

	s.m[key] = v
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.m)
}

// Keys returns the stored keys in sorted order.
func (s *Store) Keys() iter.Seq[string] {
	s.mu.RLock()
	keys := slices.Sorted(maps.Keys(s.m))
	s.mu.RUnlock()

	return slices.Values(keys)
}

// Snapshot returns a copy of the current contents.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.m)
}

// Exports returns the values exported at phase, keyed by
// "specifier:name".
func (s *Store) Exports(phase syntax.Phase) map[string]any {
	suffix := ":" + strconv.Itoa(int(phase))

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]any)

	for k, v := range s.m {
		if rest, ok := strings.CutSuffix(k, suffix); ok && strings.Contains(rest, ":") {
			out[rest] = v
		}
	}

	return out
}
