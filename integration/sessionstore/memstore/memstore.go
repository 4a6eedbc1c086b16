// Package memstore provides an in-process session.Store.
//
// Records live in a map guarded by a mutex and disappear with the process.
// It suits tests and single-instance deployments; anything behind a load
// balancer needs a shared store.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrymomot/serversession/core/session"
)

type record struct {
	entries   session.Entries
	expiresAt time.Time // zero means no expiry
}

func (r record) expired(now time.Time) bool {
	return !r.expiresAt.IsZero() && !now.Before(r.expiresAt)
}

// Store is an in-memory session.Store. The zero value is not usable; call New.
type Store struct {
	mu      sync.RWMutex
	records map[string]record
	now     func() time.Time
}

var _ session.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		records: make(map[string]record),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns a copy of the entries stored under id.
func (s *Store) Load(_ context.Context, id string) (session.Entries, bool, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()

	if !ok || rec.expired(s.now()) {
		return nil, false, nil
	}
	return rec.entries.Clone(), true, nil
}

// Update stores a copy of entries under id.
func (s *Store) Update(_ context.Context, id string, entries session.Entries, ttl time.Duration) error {
	rec := record{entries: entries.Clone()}
	if ttl > 0 {
		rec.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.records[id] = rec
	s.mu.Unlock()
	return nil
}

// Remove deletes the record under id.
func (s *Store) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}

// Len returns the number of records, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Cleanup deletes expired records and returns how many were removed.
func (s *Store) Cleanup() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, rec := range s.records {
		if rec.expired(now) {
			delete(s.records, id)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
// A non-positive interval disables the loop.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup()
		}
	}
}
