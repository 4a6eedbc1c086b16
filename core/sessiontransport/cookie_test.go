package sessiontransport_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/serversession/core/cookie"
	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/core/sessiontransport"
)

const testSecret = "test-secret-key-32-characters!!!"

func newCookies(t *testing.T) *cookie.Manager {
	t.Helper()
	m, err := cookie.New([]string{testSecret})
	require.NoError(t, err)
	return m
}

func newTransport(t *testing.T, name string, opts ...sessiontransport.CookieOption) *sessiontransport.Cookie {
	t.Helper()
	tr, err := sessiontransport.NewCookie(newCookies(t), name, opts...)
	require.NoError(t, err)
	return tr
}

func requestWith(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestCookieRoundTrip(t *testing.T) {
	t.Parallel()

	for _, sec := range []sessiontransport.Security{
		sessiontransport.SecurityPlain,
		sessiontransport.SecuritySigned,
		sessiontransport.SecurityEncrypted,
	} {
		t.Run(sec.String(), func(t *testing.T) {
			t.Parallel()

			tr := newTransport(t, "sid", sessiontransport.WithSecurity(sec))
			id := session.GenerateID()

			w := httptest.NewRecorder()
			require.NoError(t, tr.Embed(w, nil, id, time.Hour))

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			assert.Equal(t, "sid", cookies[0].Name)
			assert.Equal(t, 3600, cookies[0].MaxAge)
			if sec == sessiontransport.SecurityPlain {
				assert.Equal(t, id, cookies[0].Value)
			} else {
				assert.NotEqual(t, id, cookies[0].Value)
			}

			got, err := tr.Extract(requestWith(w))
			require.NoError(t, err)
			assert.Equal(t, id, got)
		})
	}
}

func TestCookieExtract(t *testing.T) {
	t.Parallel()

	tr := newTransport(t, "")
	assert.Equal(t, sessiontransport.DefaultCookieName, tr.Name())

	t.Run("missing cookie", func(t *testing.T) {
		t.Parallel()

		_, err := tr.Extract(httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, err, sessiontransport.ErrNoToken)
	})

	t.Run("unsigned value", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: sessiontransport.DefaultCookieName, Value: session.GenerateID()})

		_, err := tr.Extract(r)
		assert.ErrorIs(t, err, sessiontransport.ErrInvalidToken)
	})

	t.Run("malformed identifier", func(t *testing.T) {
		t.Parallel()

		plain := newTransport(t, "sid", sessiontransport.WithSecurity(sessiontransport.SecurityPlain))
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "sid", Value: "abc"})

		_, err := plain.Extract(r)
		assert.ErrorIs(t, err, sessiontransport.ErrInvalidToken)
	})
}

func TestCookieEmbedSessionCookie(t *testing.T) {
	t.Parallel()

	tr := newTransport(t, "sid",
		sessiontransport.WithCookieOptions(cookie.WithPath("/app"), cookie.WithSecure(true)),
	)

	w := httptest.NewRecorder()
	require.NoError(t, tr.Embed(w, nil, session.GenerateID(), 0))

	header := w.Header().Get("Set-Cookie")
	assert.NotContains(t, header, "Max-Age")
	assert.Contains(t, header, "Path=/app")
	assert.Contains(t, header, "Secure")
	assert.Contains(t, header, "HttpOnly")
}

func TestCookieRevoke(t *testing.T) {
	t.Parallel()

	tr := newTransport(t, "sid",
		sessiontransport.WithCookieOptions(cookie.WithPath("/app")),
	)

	w := httptest.NewRecorder()
	require.NoError(t, tr.Revoke(w, nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Equal(t, "/app", cookies[0].Path)
}

func TestNewCookieWithoutSecret(t *testing.T) {
	t.Parallel()

	m, err := cookie.New(nil)
	require.NoError(t, err)

	for _, sec := range []sessiontransport.Security{
		sessiontransport.SecuritySigned,
		sessiontransport.SecurityEncrypted,
	} {
		tr, err := sessiontransport.NewCookie(m, "sid", sessiontransport.WithSecurity(sec))
		assert.ErrorIs(t, err, sessiontransport.ErrMissingSecret, sec.String())
		assert.Nil(t, tr)
	}

	_, err = sessiontransport.NewCookieFromConfig(sessiontransport.DefaultCookieConfig(), m)
	assert.ErrorIs(t, err, sessiontransport.ErrMissingSecret)

	tr, err := sessiontransport.NewCookie(m, "sid", sessiontransport.WithSecurity(sessiontransport.SecurityPlain))
	require.NoError(t, err)
	id := session.GenerateID()
	w := httptest.NewRecorder()
	require.NoError(t, tr.Embed(w, nil, id, time.Hour))
	got, err := tr.Extract(requestWith(w))
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestSecurityUnmarshalText(t *testing.T) {
	t.Parallel()

	var s sessiontransport.Security
	require.NoError(t, s.UnmarshalText([]byte("Encrypted")))
	assert.Equal(t, sessiontransport.SecurityEncrypted, s)
	require.NoError(t, s.UnmarshalText([]byte("private")))
	assert.Equal(t, sessiontransport.SecurityEncrypted, s)
	require.NoError(t, s.UnmarshalText([]byte("plain")))
	assert.Equal(t, sessiontransport.SecurityPlain, s)
	require.NoError(t, s.UnmarshalText([]byte("")))
	assert.Equal(t, sessiontransport.SecuritySigned, s)
	assert.ErrorIs(t, s.UnmarshalText([]byte("rot13")), sessiontransport.ErrUnknownSecurity)
}

func TestNewCookieFromConfig(t *testing.T) {
	t.Parallel()

	cfg := sessiontransport.DefaultCookieConfig()
	cfg.CookieName = "app_session"
	cfg.Security = sessiontransport.SecurityPlain

	tr, err := sessiontransport.NewCookieFromConfig(cfg, newCookies(t))
	require.NoError(t, err)
	id := session.GenerateID()

	w := httptest.NewRecorder()
	require.NoError(t, tr.Embed(w, nil, id, time.Minute))
	c := w.Result().Cookies()[0]
	assert.Equal(t, "app_session", c.Name)
	assert.Equal(t, id, c.Value)
}
