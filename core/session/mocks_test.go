package session_test

import (
	"context"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/serversession/core/session"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Load(ctx context.Context, id string) (session.Entries, bool, error) {
	args := m.Called(ctx, id)
	entries, _ := args.Get(0).(session.Entries)
	return entries, args.Bool(1), args.Error(2)
}

func (m *MockStore) Update(ctx context.Context, id string, entries session.Entries, ttl time.Duration) error {
	args := m.Called(ctx, id, entries, ttl)
	return args.Error(0)
}

func (m *MockStore) Remove(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Extract(r *http.Request) (string, error) {
	args := m.Called(r)
	return args.String(0), args.Error(1)
}

func (m *MockTransport) Embed(w http.ResponseWriter, r *http.Request, id string, ttl time.Duration) error {
	args := m.Called(w, r, id, ttl)
	return args.Error(0)
}

func (m *MockTransport) Revoke(w http.ResponseWriter, r *http.Request) error {
	args := m.Called(w, r)
	return args.Error(0)
}

// sequence returns a generator yielding ids in order.
func sequence(ids ...string) func() string {
	i := 0
	return func() string {
		id := ids[i]
		i++
		return id
	}
}
