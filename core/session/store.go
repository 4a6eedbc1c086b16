package session

import (
	"context"
	"time"
)

// Store persists session entries by identifier.
// Implementations must be safe for concurrent use. Concurrent writes to the
// same identifier may resolve as last-writer-wins.
type Store interface {
	// Load returns the entries stored under id. A missing or expired record
	// is reported as (nil, false, nil).
	Load(ctx context.Context, id string) (Entries, bool, error)
	// Update creates or replaces the record under id. A non-positive ttl
	// stores the record without expiry.
	Update(ctx context.Context, id string, entries Entries, ttl time.Duration) error
	// Remove deletes the record under id. Removing a missing record is not an error.
	Remove(ctx context.Context, id string) error
}
