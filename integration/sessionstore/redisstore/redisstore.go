// Package redisstore provides a session.Store backed by Redis.
//
// Each session is a single string key holding the JSON-encoded entries.
// Expiry is delegated to Redis through the key TTL.
package redisstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/serversession/core/session"
)

// DefaultPrefix is prepended to every session identifier.
const DefaultPrefix = "session:"

// Store is a Redis-backed session.Store.
type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ session.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a store on top of client.
func New(client redis.UniversalClient, opts ...Option) *Store {
	s := &Store{
		client: client,
		prefix: DefaultPrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(id string) string {
	return s.prefix + id
}

// Load implements session.Store.
func (s *Store) Load(ctx context.Context, id string) (session.Entries, bool, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entries session.Entries
	if err := entries.UnmarshalBinary(data); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// Update implements session.Store. A non-positive ttl stores the key
// without expiry.
func (s *Store) Update(ctx context.Context, id string, entries session.Entries, ttl time.Duration) error {
	data, err := entries.MarshalBinary()
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(id), data, max(ttl, 0)).Err()
}

// Remove implements session.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
