// Package integration models optional side-effect producers (speech,
// Drive/Sheets, catalog export) that may or may not be wired at runtime.
package integration

import "sync"

// Capability is either Unavailable or Available(handle). The zero value is
// Unavailable.
type Capability[T any] struct {
	handle T
	ok     bool
}

func Available[T any](h T) Capability[T] { return Capability[T]{handle: h, ok: true} }

func Unavailable[T any]() Capability[T] { return Capability[T]{} }

func (c Capability[T]) Get() (T, bool) { return c.handle, c.ok }

func (c Capability[T]) Available() bool { return c.ok }

// Slot holds a capability that can be swapped while the server runs, e.g.
// when a user enters Google credentials.
type Slot[T any] struct {
	mu  sync.RWMutex
	cap Capability[T]
}

func (s *Slot[T]) Set(c Capability[T]) {
	s.mu.Lock()
	s.cap = c
	s.mu.Unlock()
}

func (s *Slot[T]) Load() Capability[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cap
}
