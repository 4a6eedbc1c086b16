package redisstore_test

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/integration/database/redis"
	"github.com/dmitrymomot/serversession/integration/sessionstore/redisstore"
)

func newStore(t *testing.T) *redisstore.Store {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	client, err := redis.Connect(t.Context(), redis.Config{ConnectionURL: url, RetryAttempts: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return redisstore.New(client, redisstore.WithPrefix("test:"+t.Name()+":"))
}

func TestStore(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	id := session.GenerateID()

	_, found, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	entries := session.Entries{"a": json.RawMessage(`"b"`)}
	require.NoError(t, store.Update(ctx, id, entries, time.Minute))

	got, found, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `"b"`, string(got["a"]))

	require.NoError(t, store.Remove(ctx, id))
	_, found, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	// Removing twice is fine.
	require.NoError(t, store.Remove(ctx, id))
}

func TestStoreExpiry(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	id := session.GenerateID()

	require.NoError(t, store.Update(ctx, id, session.Entries{}, 100*time.Millisecond))
	assert.Eventually(t, func() bool {
		_, found, err := store.Load(ctx, id)
		return err == nil && !found
	}, 2*time.Second, 50*time.Millisecond)
}
