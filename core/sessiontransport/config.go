package sessiontransport

import (
	"github.com/dmitrymomot/serversession/core/cookie"
)

// CookieConfig provides environment-based configuration for the cookie transport.
type CookieConfig struct {
	CookieName string   `env:"SESSION_COOKIE_NAME" envDefault:"__session"`
	Security   Security `env:"SESSION_COOKIE_SECURITY" envDefault:"signed"`
}

// DefaultCookieConfig returns a CookieConfig with the env defaults.
func DefaultCookieConfig() CookieConfig {
	return CookieConfig{
		CookieName: DefaultCookieName,
		Security:   SecuritySigned,
	}
}

// NewCookieFromConfig creates a cookie transport from configuration.
func NewCookieFromConfig(cfg CookieConfig, cookies *cookie.Manager, opts ...CookieOption) (*Cookie, error) {
	return NewCookie(cookies, cfg.CookieName, append([]CookieOption{WithSecurity(cfg.Security)}, opts...)...)
}
