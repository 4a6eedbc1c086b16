package session

import (
	"encoding/json"
	"errors"
	"sync"
)

// Session is the mutable per-request session shared by the middleware and the
// handler. All methods are safe for concurrent use.
//
// Mutations move an unchanged session to StatusChanged. Renew requests a new
// identifier. Purge clears the entries and is final: once purged, the session
// is deleted regardless of later calls.
type Session struct {
	mu      sync.RWMutex
	entries Entries
	status  Status
	id      string
}

// New returns an unchanged session holding entries.
func New(entries Entries) *Session {
	if entries == nil {
		entries = Entries{}
	}
	return &Session{entries: entries}
}

// Empty returns an unchanged session with no entries.
func Empty() *Session {
	return New(nil)
}

// Get returns the raw JSON value stored under key.
func (s *Session) Get(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Decode unmarshals the value stored under key into dest.
// It reports false with a nil error when the key is absent.
func (s *Session) Decode(key string, dest any) (bool, error) {
	raw, ok := s.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return true, err
	}
	return true, nil
}

// Value returns the value under key decoded as T. It reports false when the
// key is absent or the stored value does not decode into T.
func Value[T any](s *Session, key string) (T, bool) {
	var v T
	ok, err := s.Decode(key, &v)
	if !ok || err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// Has reports whether key is present.
func (s *Session) Has(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Len returns the number of entries.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// IsEmpty reports whether the session holds no entries.
func (s *Session) IsEmpty() bool {
	return s.Len() == 0
}

// Entries returns a copy of all entries.
func (s *Session) Entries() Entries {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries.Clone()
}

// Status returns the current status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Set JSON-encodes value and stores it under key.
func (s *Session) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Join(ErrInvalidValue, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = raw
	s.markChanged()
	return nil
}

// Remove deletes key. Removing an absent key still marks the session changed.
func (s *Session) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	s.markChanged()
}

// Clear deletes all entries.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	s.markChanged()
}

// Renew requests a new identifier for the session. Entries are kept.
// It has no effect on a purged session.
func (s *Session) Renew() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusPurged {
		s.status = StatusRenewed
	}
}

// Purge clears all entries and marks the session for deletion.
func (s *Session) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.entries)
	s.status = StatusPurged
}

// must hold s.mu.
func (s *Session) markChanged() {
	if s.status == StatusUnchanged {
		s.status = StatusChanged
	}
}

// snapshot returns the status and a copy of the entries under one lock.
func (s *Session) snapshot() (Status, Entries) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status, s.entries.Clone()
}

func (s *Session) identifier() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *Session) setIdentifier(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.id = id
}
