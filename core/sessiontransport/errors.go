package sessiontransport

import "errors"

var (
	// ErrNoToken is returned when the request carries no session cookie.
	ErrNoToken = errors.New("sessiontransport: no token")

	// ErrInvalidToken is returned when the cookie value fails verification or
	// is not a session identifier.
	ErrInvalidToken = errors.New("sessiontransport: invalid token")

	// ErrMissingSecret is returned when a signed or encrypted transport is
	// built on a cookie manager without secrets.
	ErrMissingSecret = errors.New("sessiontransport: signed and encrypted cookies need a secret")

	// ErrUnknownSecurity is returned when parsing an unknown security mode.
	ErrUnknownSecurity = errors.New("sessiontransport: unknown security mode")
)
