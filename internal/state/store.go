// Package state provides the shared-state collaborator the guard core races
// against: an ephemeral, thread-safe store offering synchronous snapshots,
// atomic updates, and a blocking watch-until-false primitive.
//
// The store holds one immutable value at a time. Writers replace the value as
// a whole; every replacement wakes all observers by closing the generation's
// broadcast channel. Nothing in this package mutates state in place, so a
// snapshot handed out once is stable for as long as the caller keeps it.
package state

import (
	"context"
	"sync"
)

// Store is an in-memory versioned value with change broadcast. The zero value
// is not usable; construct with New.
type Store[S any] struct {
	mu      sync.Mutex
	current S
	changed chan struct{}
}

// New creates a store seeded with the initial state value.
func New[S any](initial S) *Store[S] {
	return &Store[S]{
		current: initial,
		changed: make(chan struct{}),
	}
}

// Snapshot returns the current state value.
func (s *Store[S]) Snapshot() S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Set replaces the state value and wakes every observer.
func (s *Store[S]) Set(next S) {
	s.Update(func(S) S { return next })
}

// Update atomically replaces the state with fn(current) and wakes every
// observer. fn runs under the store lock and must not block or call back into
// the store.
func (s *Store[S]) Update(fn func(S) S) {
	s.mu.Lock()
	s.current = fn(s.current)
	close(s.changed)
	s.changed = make(chan struct{})
	s.mu.Unlock()
}

// ObserveWhile blocks until the clause is observed to evaluate false against
// some state generation, then returns nil. A clause that is already false
// completes immediately. If the context ends first, the context error is
// returned and no completion is reported.
func (s *Store[S]) ObserveWhile(ctx context.Context, clause func(S) bool) error {
	for {
		s.mu.Lock()
		current, changed := s.current, s.changed
		s.mu.Unlock()

		if !clause(current) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		}
	}
}
