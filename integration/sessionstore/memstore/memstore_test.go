package memstore_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/integration/sessionstore/memstore"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memstore.New()

	_, found, err := store.Load(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	entries := session.Entries{"user": json.RawMessage(`42`)}
	require.NoError(t, store.Update(ctx, "id", entries, time.Hour))

	// Stored data is isolated from the caller's map.
	entries["user"] = json.RawMessage(`0`)

	got, found, err := store.Load(ctx, "id")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, session.Entries{"user": json.RawMessage(`42`)}, got)

	got["user"] = json.RawMessage(`1`)
	again, _, _ := store.Load(ctx, "id")
	assert.Equal(t, json.RawMessage(`42`), again["user"])

	require.NoError(t, store.Remove(ctx, "id"))
	require.NoError(t, store.Remove(ctx, "id"))
	_, found, _ = store.Load(ctx, "id")
	assert.False(t, found)
}

func TestStoreExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := memstore.New(memstore.WithClock(c.Now))

	require.NoError(t, store.Update(ctx, "short", session.Entries{}, time.Minute))
	require.NoError(t, store.Update(ctx, "forever", session.Entries{}, 0))

	c.Advance(time.Minute)

	_, found, _ := store.Load(ctx, "short")
	assert.False(t, found)
	_, found, _ = store.Load(ctx, "forever")
	assert.True(t, found)

	assert.Equal(t, 2, store.Len())
	assert.Equal(t, 1, store.Cleanup())
	assert.Equal(t, 1, store.Len())
}

func TestStoreRunCleanup(t *testing.T) {
	t.Parallel()

	c := &clock{now: time.Now()}
	store := memstore.New(memstore.WithClock(c.Now))
	require.NoError(t, store.Update(context.Background(), "id", session.Entries{}, time.Second))
	c.Advance(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.RunCleanup(ctx, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestStoreRunCleanupDisabled(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	for _, interval := range []time.Duration{0, -time.Second} {
		done := make(chan struct{})
		go func() {
			store.RunCleanup(context.Background(), interval)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatalf("RunCleanup(%v) did not return", interval)
		}
	}
}
