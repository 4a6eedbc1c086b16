package session

import (
	"crypto/rand"
	"encoding/base64"
)

const (
	idBytes  = 32
	idLength = 43 // base64.RawURLEncoding.EncodedLen(idBytes)
)

// GenerateID returns a new session identifier: 32 random bytes encoded as
// unpadded URL-safe base64.
//
// It panics if the system random source fails, since no safe identifier can
// be produced without it.
func GenerateID() string {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		panic("session: crypto/rand failed: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}

// ValidID reports whether id has the shape of a GenerateID result.
func ValidID(id string) bool {
	if len(id) != idLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
