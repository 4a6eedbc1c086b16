package mongostore_test

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/integration/database/mongo"
	"github.com/dmitrymomot/serversession/integration/sessionstore/mongostore"
)

func newStore(t *testing.T) *mongostore.Store {
	t.Helper()
	url := os.Getenv("MONGO_URL")
	if url == "" {
		t.Skip("MONGO_URL not set")
	}

	db, err := mongo.NewWithDatabase(t.Context(), mongo.Config{ConnectionURL: url, RetryAttempts: 1}, "serversession_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Client().Disconnect(t.Context()) })

	store, err := mongostore.New(t.Context(), db.Collection(mongostore.DefaultCollection))
	require.NoError(t, err)
	return store
}

func TestStore(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	id := session.GenerateID()

	_, found, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Update(ctx, id, session.Entries{"n": json.RawMessage(`1`)}, time.Minute))
	require.NoError(t, store.Update(ctx, id, session.Entries{"n": json.RawMessage(`2`)}, 0))

	got, found, err := store.Load(ctx, id)
	require.NoError(t, err)
	require.True(t, found)
	assert.JSONEq(t, `2`, string(got["n"]))

	require.NoError(t, store.Remove(ctx, id))
	_, found, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStoreExpiredIsHidden(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	id := session.GenerateID()

	require.NoError(t, store.Update(ctx, id, session.Entries{}, 50*time.Millisecond))
	time.Sleep(100 * time.Millisecond)

	_, found, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, found)
}
