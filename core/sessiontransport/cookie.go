package sessiontransport

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/serversession/core/cookie"
	"github.com/dmitrymomot/serversession/core/session"
)

// DefaultCookieName is used when no cookie name is configured.
const DefaultCookieName = "__session"

// Cookie carries the session identifier in an HTTP cookie.
// It implements session.Transport.
type Cookie struct {
	cookies  *cookie.Manager
	name     string
	security Security
	opts     []cookie.Option
}

var _ session.Transport = (*Cookie)(nil)

// CookieOption configures a Cookie transport.
type CookieOption func(*Cookie)

// WithSecurity selects how the identifier is protected in the cookie value.
func WithSecurity(s Security) CookieOption {
	return func(c *Cookie) {
		c.security = s
	}
}

// WithCookieOptions sets cookie attributes applied on top of the cookie
// manager defaults.
func WithCookieOptions(opts ...cookie.Option) CookieOption {
	return func(c *Cookie) {
		c.opts = append(c.opts, opts...)
	}
}

// NewCookie creates a cookie transport. An empty name selects DefaultCookieName.
// Signed and encrypted modes need a cookie manager with at least one secret;
// otherwise ErrMissingSecret is returned.
func NewCookie(cookies *cookie.Manager, name string, opts ...CookieOption) (*Cookie, error) {
	if name == "" {
		name = DefaultCookieName
	}
	c := &Cookie{
		cookies:  cookies,
		name:     name,
		security: SecuritySigned,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.security != SecurityPlain && !cookies.HasSecrets() {
		return nil, fmt.Errorf("%w: %s cookie %q", ErrMissingSecret, c.security, c.name)
	}
	return c, nil
}

// Name returns the cookie name.
func (c *Cookie) Name() string {
	return c.name
}

// Extract returns the identifier from the request cookie.
// It returns ErrNoToken when the cookie is absent and ErrInvalidToken when
// the value fails verification or is not a well-formed identifier.
func (c *Cookie) Extract(r *http.Request) (string, error) {
	var (
		id  string
		err error
	)
	switch c.security {
	case SecurityPlain:
		id, err = c.cookies.Get(r, c.name)
	case SecurityEncrypted:
		id, err = c.cookies.GetEncrypted(r, c.name)
	default:
		id, err = c.cookies.GetSigned(r, c.name)
	}

	if err != nil {
		if errors.Is(err, cookie.ErrCookieNotFound) {
			return "", ErrNoToken
		}
		return "", errors.Join(ErrInvalidToken, err)
	}
	if !session.ValidID(id) {
		return "", ErrInvalidToken
	}
	return id, nil
}

// Embed writes the identifier cookie. A positive ttl sets Max-Age in whole
// seconds; otherwise the cookie lasts for the browser session.
func (c *Cookie) Embed(w http.ResponseWriter, _ *http.Request, id string, ttl time.Duration) error {
	maxAge := 0
	if ttl > 0 {
		maxAge = max(int(ttl/time.Second), 1)
	}
	opts := append(c.cookieOptions(), cookie.WithMaxAge(maxAge))

	switch c.security {
	case SecurityPlain:
		return c.cookies.Set(w, c.name, id, opts...)
	case SecurityEncrypted:
		return c.cookies.SetEncrypted(w, c.name, id, opts...)
	default:
		return c.cookies.SetSigned(w, c.name, id, opts...)
	}
}

// Revoke writes an expired, empty cookie.
func (c *Cookie) Revoke(w http.ResponseWriter, _ *http.Request) error {
	c.cookies.Delete(w, c.name, c.cookieOptions()...)
	return nil
}

func (c *Cookie) cookieOptions() []cookie.Option {
	return append([]cookie.Option(nil), c.opts...)
}
