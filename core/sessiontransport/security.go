package sessiontransport

import (
	"fmt"
	"strings"
)

// Security selects how the session identifier is protected inside the cookie.
type Security int

const (
	// SecuritySigned appends an HMAC tag; the identifier is readable but
	// cannot be forged. This is the default.
	SecuritySigned Security = iota
	// SecurityPlain stores the bare identifier.
	SecurityPlain
	// SecurityEncrypted seals the identifier with AES-GCM.
	SecurityEncrypted
)

func (s Security) String() string {
	switch s {
	case SecurityPlain:
		return "plain"
	case SecurityEncrypted:
		return "encrypted"
	default:
		return "signed"
	}
}

// UnmarshalText parses "plain", "signed" or "encrypted" (also "private").
func (s *Security) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "signed":
		*s = SecuritySigned
	case "plain":
		*s = SecurityPlain
	case "encrypted", "private":
		*s = SecurityEncrypted
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSecurity, text)
	}
	return nil
}
