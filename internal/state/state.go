// Package state provides durable client-local persistence for store
// snapshots. Each namespace is an independent JSON file; a missing or
// corrupt file falls back to the default value and never surfaces an
// error to the caller.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/orgforge/orgforge/internal/log"
)

// Store wraps an in-memory value of type T with write-through
// persistence under a named key. The type T declares the persisted
// subset: stores keep transient fields out of their snapshot type
// rather than filtering at write time.
type Store[T any] struct {
	mu     sync.Mutex
	path   string
	value  T
	logger *log.Logger
}

// Open rehydrates the namespace synchronously and returns the store.
// Any read or decode failure degrades to the provided default.
func Open[T any](dir, name string, def T, logger *log.Logger) *Store[T] {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	s := &Store[T]{
		path:   filepath.Join(dir, name+".json"),
		value:  def,
		logger: logger.With("namespace", name),
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read persisted state, using defaults", "error", err)
		}
		return s
	}

	var loaded T
	if err := json.Unmarshal(data, &loaded); err != nil {
		s.logger.Warn("persisted state is corrupt, using defaults", "error", err)
		return s
	}

	s.value = loaded
	return s
}

// Get returns a copy of the current value.
func (s *Store[T]) Get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Update applies fn to the current value and persists the result.
// The mutation is atomic from the caller's perspective; persistence
// failures are logged and swallowed so the in-memory state always wins.
func (s *Store[T]) Update(fn func(*T)) T {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(&s.value)
	s.persistLocked()
	return s.value
}

// Set replaces the current value and persists it.
func (s *Store[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = value
	s.persistLocked()
}

func (s *Store[T]) persistLocked() {
	data, err := json.MarshalIndent(s.value, "", "  ")
	if err != nil {
		s.logger.Warn("failed to serialize state", "error", err)
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.logger.Warn("failed to create state directory", "error", err)
		return
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		s.logger.Warn("failed to write state", "error", err)
	}
}

// Path returns the backing file location. Exposed for diagnostics.
func (s *Store[T]) Path() string {
	return s.path
}
