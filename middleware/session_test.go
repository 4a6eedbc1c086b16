package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/serversession/core/cookie"
	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/core/response"
	"github.com/dmitrymomot/serversession/core/router"
	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/core/sessiontransport"
	"github.com/dmitrymomot/serversession/integration/sessionstore/memstore"
	"github.com/dmitrymomot/serversession/middleware"
)

const cookieName = "sid"

var (
	idA = strings.Repeat("A", 43)
	idB = strings.Repeat("B", 43)
	idC = strings.Repeat("C", 43)
)

// spyStore records every call in order and can be told to fail.
type spyStore struct {
	*memstore.Store

	mu        sync.Mutex
	calls     []string
	updates   []session.Entries
	loadErr   error
	updateErr error
	removeErr error
}

func newSpyStore() *spyStore {
	return &spyStore{Store: memstore.New()}
}

func (s *spyStore) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *spyStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *spyStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.updates = nil
}

func (s *spyStore) Load(ctx context.Context, id string) (session.Entries, bool, error) {
	s.record("load:" + id)
	if s.loadErr != nil {
		return nil, false, s.loadErr
	}
	return s.Store.Load(ctx, id)
}

func (s *spyStore) Update(ctx context.Context, id string, entries session.Entries, ttl time.Duration) error {
	s.record("update:" + id)
	s.mu.Lock()
	s.updates = append(s.updates, entries)
	s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	return s.Store.Update(ctx, id, entries, ttl)
}

func (s *spyStore) Remove(ctx context.Context, id string) error {
	s.record("remove:" + id)
	if s.removeErr != nil {
		return s.removeErr
	}
	return s.Store.Remove(ctx, id)
}

func sequence(ids ...string) func() string {
	var mu sync.Mutex
	i := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		id := ids[i]
		i++
		return id
	}
}

func newManager(t *testing.T, store session.Store) *session.Manager {
	t.Helper()
	cookies, err := cookie.New(nil)
	require.NoError(t, err)
	transport, err := sessiontransport.NewCookie(cookies, cookieName,
		sessiontransport.WithSecurity(sessiontransport.SecurityPlain),
	)
	require.NoError(t, err)
	mgr, err := session.NewManager(store, transport,
		session.WithTTL(time.Hour),
		session.WithIDGenerator(sequence(idA, idB, idC)),
	)
	require.NoError(t, err)
	return mgr
}

func newRouter(t *testing.T, store session.Store) router.Router[*router.Context] {
	t.Helper()
	r := router.New[*router.Context]()
	r.Use(middleware.Session[*router.Context](newManager(t, store)))
	return r
}

func do(r http.Handler, method, path, sid string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: sid})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			require.Nil(t, found, "more than one session cookie")
			found = c
		}
	}
	return found
}

func TestSessionNoCookieNoMutation(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	r := newRouter(t, store)
	r.Get("/", func(ctx *router.Context) handler.Response {
		sess, ok := middleware.GetSession(ctx)
		require.True(t, ok)
		assert.True(t, sess.IsEmpty())
		return response.String("ok")
	})

	w := do(r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Values("Set-Cookie"))
	assert.Empty(t, store.Calls())
}

func TestSessionWriteIssuesIdentifier(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	r := newRouter(t, store)
	r.Get("/", func(ctx *router.Context) handler.Response {
		sess := middleware.MustGetSession(ctx)
		require.NoError(t, sess.Set("user", 42))
		require.NoError(t, sess.Set("theme", "dark"))
		return response.String("ok")
	})

	w := do(r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"update:" + idA}, store.Calls())
	require.Len(t, store.updates, 1)
	assert.Equal(t, session.Entries{
		"user":  json.RawMessage(`42`),
		"theme": json.RawMessage(`"dark"`),
	}, store.updates[0])

	assert.Len(t, w.Header().Values("Set-Cookie"), 1)
	c := sessionCookie(t, w)
	require.NotNil(t, c)
	assert.Equal(t, idA, c.Value)
	assert.Equal(t, 3600, c.MaxAge)
	assert.True(t, c.HttpOnly)
}

func TestSessionRoundTrip(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	r := newRouter(t, store)
	r.Post("/", func(ctx *router.Context) handler.Response {
		sess := middleware.MustGetSession(ctx)
		require.NoError(t, sess.Set("cart", []string{"apple", "pear"}))
		return response.NoContent()
	})
	r.Get("/", func(ctx *router.Context) handler.Response {
		cart, ok := session.Value[[]string](middleware.MustGetSession(ctx), "cart")
		if !ok {
			return response.Error(response.ErrNotFound)
		}
		return response.JSON(cart)
	})

	first := do(r, http.MethodPost, "/", "")
	require.Equal(t, http.StatusNoContent, first.Code)
	c := sessionCookie(t, first)
	require.NotNil(t, c)

	store.Reset()
	second := do(r, http.MethodGet, "/", c.Value)

	assert.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, `["apple","pear"]`, second.Body.String())
	assert.Equal(t, []string{"load:" + idA}, store.Calls())
	assert.Empty(t, second.Header().Values("Set-Cookie"))
}

func TestSessionUpdateExisting(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	require.NoError(t, store.Store.Update(context.Background(), idC, session.Entries{"n": json.RawMessage(`1`)}, time.Hour))

	r := newRouter(t, store)
	r.Get("/", func(ctx *router.Context) handler.Response {
		sess := middleware.MustGetSession(ctx)
		n, _ := session.Value[int](sess, "n")
		require.NoError(t, sess.Set("n", n+1))
		return response.String("ok")
	})

	w := do(r, http.MethodGet, "/", idC)

	assert.Equal(t, []string{"load:" + idC, "update:" + idC}, store.Calls())
	assert.Empty(t, w.Header().Values("Set-Cookie"))

	entries, found, err := store.Store.Load(context.Background(), idC)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, json.RawMessage(`2`), entries["n"])
}

func TestSessionRenew(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	require.NoError(t, store.Store.Update(context.Background(), idC, session.Entries{"n": json.RawMessage(`1`)}, time.Hour))

	r := newRouter(t, store)
	r.Post("/login", func(ctx *router.Context) handler.Response {
		middleware.MustGetSession(ctx).Renew()
		return response.String("ok")
	})

	w := do(r, http.MethodPost, "/login", idC)

	assert.Equal(t, []string{"load:" + idC, "remove:" + idC, "update:" + idA}, store.Calls())
	c := sessionCookie(t, w)
	require.NotNil(t, c)
	assert.Equal(t, idA, c.Value)
	assert.NotEqual(t, idC, c.Value)

	_, found, _ := store.Store.Load(context.Background(), idC)
	assert.False(t, found)
	entries, found, _ := store.Store.Load(context.Background(), idA)
	require.True(t, found)
	assert.Equal(t, json.RawMessage(`1`), entries["n"])

	// Renewing again yields yet another identifier.
	store.Reset()
	w = do(r, http.MethodPost, "/login", idA)
	assert.Equal(t, []string{"load:" + idA, "remove:" + idA, "update:" + idB}, store.Calls())
	assert.Equal(t, idB, sessionCookie(t, w).Value)
}

func TestSessionPurge(t *testing.T) {
	t.Parallel()

	t.Run("without identifier is a no-op", func(t *testing.T) {
		t.Parallel()

		store := newSpyStore()
		r := newRouter(t, store)
		r.Post("/logout", func(ctx *router.Context) handler.Response {
			middleware.MustGetSession(ctx).Purge()
			return response.String("bye")
		})

		w := do(r, http.MethodPost, "/logout", "")
		assert.Empty(t, store.Calls())
		assert.Empty(t, w.Header().Values("Set-Cookie"))
	})

	t.Run("with identifier removes record and cookie", func(t *testing.T) {
		t.Parallel()

		store := newSpyStore()
		require.NoError(t, store.Store.Update(context.Background(), idC, session.Entries{"u": json.RawMessage(`1`)}, time.Hour))

		r := newRouter(t, store)
		r.Post("/logout", func(ctx *router.Context) handler.Response {
			middleware.MustGetSession(ctx).Purge()
			return response.String("bye")
		})

		w := do(r, http.MethodPost, "/logout", idC)
		assert.Equal(t, []string{"load:" + idC, "remove:" + idC}, store.Calls())

		c := sessionCookie(t, w)
		require.NotNil(t, c)
		assert.Empty(t, c.Value)
		assert.Equal(t, -1, c.MaxAge)
	})
}

func TestSessionUnknownCookie(t *testing.T) {
	t.Parallel()

	setUser := func(ctx *router.Context) handler.Response {
		sess := middleware.MustGetSession(ctx)
		assert.True(t, sess.IsEmpty())
		require.NoError(t, sess.Set("user", 42))
		return response.String("ok")
	}

	t.Run("malformed value", func(t *testing.T) {
		t.Parallel()

		store := newSpyStore()
		r := newRouter(t, store)
		r.Get("/", setUser)

		w := do(r, http.MethodGet, "/", "abc")

		// The value fails identifier validation inside the transport, so
		// the store is never asked to load it; the only call is the write
		// under the freshly issued identifier.

		assert.Equal(t, []string{"update:" + idA}, store.Calls())
		assert.Equal(t, session.Entries{"user": json.RawMessage(`42`)}, store.updates[0])
		assert.Equal(t, idA, sessionCookie(t, w).Value)
		assert.Contains(t, w.Header().Get("Set-Cookie"), cookieName+"="+idA+";")
	})

	t.Run("stale identifier", func(t *testing.T) {
		t.Parallel()

		store := newSpyStore()
		r := newRouter(t, store)
		r.Get("/", setUser)

		w := do(r, http.MethodGet, "/", idC)

		assert.Equal(t, []string{"load:" + idC, "update:" + idA}, store.Calls())
		assert.Equal(t, idA, sessionCookie(t, w).Value)
	})
}

func TestSessionLoadFailure(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	store.loadErr = errors.New("store unavailable")

	called := false
	r := newRouter(t, store)
	r.Get("/", func(ctx *router.Context) handler.Response {
		called = true
		return response.String("ok")
	})

	w := do(r, http.MethodGet, "/", idC)

	assert.False(t, called)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "store unavailable")
}

func TestSessionSaveFailureDiscardsResponse(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	store.updateErr = errors.New("store unavailable")

	r := newRouter(t, store)
	r.Get("/", func(ctx *router.Context) handler.Response {
		require.NoError(t, middleware.MustGetSession(ctx).Set("k", "v"))
		return response.StringWithStatus("handler output", http.StatusCreated)
	})

	w := do(r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "handler output")
	assert.Empty(t, w.Header().Values("Set-Cookie"))
	assert.Equal(t, []string{"update:" + idA}, store.Calls())
}

func TestSessionSaveFailureDropsHandlerHeaders(t *testing.T) {
	t.Parallel()

	cases := map[string]handler.Response{
		"redirect": response.RedirectSeeOther("/home"),
		"render error after write": func(w http.ResponseWriter, r *http.Request) error {
			w.Header().Set("Location", "/elsewhere")
			w.Header().Set("X-Handler", "1")
			w.WriteHeader(http.StatusCreated)
			return errors.New("render failed")
		},
	}

	for name, resp := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			store := newSpyStore()
			require.NoError(t, store.Store.Update(context.Background(), idC, session.Entries{"n": json.RawMessage(`1`)}, time.Hour))
			store.updateErr = errors.New("store unavailable")

			r := router.New[*router.Context]()
			r.Use(middleware.RequestID[*router.Context]())
			r.Use(middleware.Session[*router.Context](newManager(t, store)))
			r.Post("/login", func(ctx *router.Context) handler.Response {
				sess := middleware.MustGetSession(ctx)
				sess.Renew()
				require.NoError(t, sess.Set("user", 42))
				return resp
			})

			w := do(r, http.MethodPost, "/login", idC)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Empty(t, w.Header().Get("Location"))
			assert.Empty(t, w.Header().Get("X-Handler"))
			assert.Empty(t, w.Header().Values("Set-Cookie"))
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			assert.Equal(t, []string{"load:" + idC, "remove:" + idC, "update:" + idA}, store.Calls())
		})
	}
}

func TestSessionCustomErrorHandler(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	store.updateErr = errors.New("store unavailable")

	var got error
	r := router.New[*router.Context]()
	r.Use(middleware.SessionWithConfig(middleware.SessionConfig[*router.Context]{
		Manager: newManager(t, store),
		ErrorHandler: func(ctx *router.Context, err error) handler.Response {
			got = err
			return response.StringWithStatus("try later", http.StatusServiceUnavailable)
		},
	}))
	r.Get("/", func(ctx *router.Context) handler.Response {
		require.NoError(t, middleware.MustGetSession(ctx).Set("k", "v"))
		return response.Status(http.StatusAccepted)
	})

	w := do(r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "try later", w.Body.String())
	assert.ErrorIs(t, got, session.ErrSaveSession)
}

func TestSessionHandlerFailureSkipsPersistence(t *testing.T) {
	t.Parallel()

	mutate := func(ctx *router.Context) {
		require.NoError(t, middleware.MustGetSession(ctx).Set("k", "v"))
	}

	t.Run("error response", func(t *testing.T) {
		t.Parallel()

		store := newSpyStore()
		r := newRouter(t, store)
		r.Get("/", func(ctx *router.Context) handler.Response {
			mutate(ctx)
			return response.Error(response.ErrBadRequest)
		})

		w := do(r, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, store.Calls())
		assert.Empty(t, w.Header().Values("Set-Cookie"))
	})

	t.Run("panic", func(t *testing.T) {
		t.Parallel()

		store := newSpyStore()
		r := newRouter(t, store)
		r.Get("/", func(ctx *router.Context) handler.Response {
			mutate(ctx)
			panic("boom")
		})

		w := do(r, http.MethodGet, "/", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, store.Calls())
	})

	t.Run("nil response", func(t *testing.T) {
		t.Parallel()

		store := newSpyStore()
		r := newRouter(t, store)
		r.Get("/", func(ctx *router.Context) handler.Response {
			mutate(ctx)
			return nil
		})

		do(r, http.MethodGet, "/", "")
		assert.Empty(t, store.Calls())
	})

	t.Run("cancelled request", func(t *testing.T) {
		t.Parallel()

		store := newSpyStore()
		r := newRouter(t, store)
		r.Get("/", func(ctx *router.Context) handler.Response {
			mutate(ctx)
			return response.String("ok")
		})

		reqCtx, cancel := context.WithCancel(context.Background())
		cancel()
		req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(reqCtx)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Empty(t, store.Calls())
		assert.Empty(t, w.Header().Values("Set-Cookie"))
	})
}

func TestSessionPersistsBeforeStreaming(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	r := newRouter(t, store)
	r.Get("/", func(ctx *router.Context) handler.Response {
		require.NoError(t, middleware.MustGetSession(ctx).Set("k", "v"))
		return func(w http.ResponseWriter, req *http.Request) error {
			w.Header().Set("Content-Type", "text/event-stream")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			// Headers are gone by now; later mutations are not persisted.
			require.NoError(t, middleware.MustGetSession(req.Context()).Set("late", true))
			_, err := w.Write([]byte("data: hi\n\n"))
			return err
		}
	})

	w := do(r, http.MethodGet, "/", "")

	assert.True(t, w.Flushed)
	assert.Equal(t, idA, sessionCookie(t, w).Value)
	assert.Equal(t, []string{"update:" + idA}, store.Calls())
	assert.NotContains(t, store.updates[0], "late")
}

func TestSessionBodylessResponse(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	r := newRouter(t, store)
	r.Get("/", func(ctx *router.Context) handler.Response {
		require.NoError(t, middleware.MustGetSession(ctx).Set("k", "v"))
		return response.Nothing()
	})

	w := do(r, http.MethodGet, "/", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"update:" + idA}, store.Calls())
	assert.Equal(t, idA, sessionCookie(t, w).Value)
}

func TestSessionSkip(t *testing.T) {
	t.Parallel()

	store := newSpyStore()
	r := router.New[*router.Context]()
	r.Use(middleware.SessionWithConfig(middleware.SessionConfig[*router.Context]{
		Manager: newManager(t, store),
		Skip: func(ctx *router.Context) bool {
			return ctx.Request().URL.Path == "/health"
		},
	}))
	r.Get("/health", func(ctx *router.Context) handler.Response {
		_, ok := middleware.GetSession(ctx)
		assert.False(t, ok)
		return response.String("ok")
	})

	w := do(r, http.MethodGet, "/health", idC)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.Calls())
}

func TestSessionRequiresManager(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		middleware.Session[*router.Context](nil)
	})
}

func TestGetSessionWithoutMiddleware(t *testing.T) {
	t.Parallel()

	_, ok := middleware.GetSession(context.Background())
	assert.False(t, ok)
	assert.Panics(t, func() {
		middleware.MustGetSession(context.Background())
	})
}

func TestSessionConcurrentRequests(t *testing.T) {
	t.Parallel()

	store := memstore.New()
	r := router.New[*router.Context]()
	cookies, err := cookie.New(nil)
	require.NoError(t, err)
	transport, err := sessiontransport.NewCookie(cookies, cookieName,
		sessiontransport.WithSecurity(sessiontransport.SecurityPlain))
	require.NoError(t, err)
	mgr, err := session.NewManager(store, transport)
	require.NoError(t, err)
	r.Use(middleware.Session[*router.Context](mgr))
	r.Get("/", func(ctx *router.Context) handler.Response {
		require.NoError(t, middleware.MustGetSession(ctx).Set("k", "v"))
		return response.String("ok")
	})

	var wg sync.WaitGroup
	ids := make(chan string, 20)
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w := do(r, http.MethodGet, "/", "")
			for _, c := range w.Result().Cookies() {
				ids <- c.Value
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{})
	for id := range ids {
		assert.True(t, session.ValidID(id))
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 20)
	assert.Equal(t, 20, store.Len())
}
