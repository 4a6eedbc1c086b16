package cookie

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"golang.org/x/crypto/hkdf"
)

const (
	// MaxCookieSize is the maximum size of a Set-Cookie header value (4KB).
	MaxCookieSize = 4096
	// minSecretLength is the minimum secret length in characters.
	minSecretLength = 32
)

// HKDF info labels separating the signing and encryption keys derived from
// the same secret.
var (
	signInfo = []byte("cookie-sign-v1")
	encInfo  = []byte("cookie-encrypt-v1")
)

// keyset holds the keys derived from one secret.
type keyset struct {
	sign []byte
	aead cipher.AEAD
}

// Manager handles HTTP cookie operations with optional signing and encryption.
// The first secret signs and encrypts; all secrets verify and decrypt, which
// allows rotating secrets without invalidating existing cookies.
type Manager struct {
	keys     []keyset
	defaults Options
	maxSize  int
}

// ManagerOption configures the Manager itself rather than individual cookies.
type ManagerOption func(*Manager)

// WithMaxSize sets the maximum cookie size.
func WithMaxSize(size int) ManagerOption {
	return func(m *Manager) {
		if size > 0 {
			m.maxSize = size
		}
	}
}

// New creates a cookie manager. Secrets may be empty, in which case only
// plain cookies are available. Every non-empty secret must be at least 32
// characters.
func New(secrets []string, opts ...Option) (*Manager, error) {
	secrets = slices.DeleteFunc(slices.Clone(secrets), func(s string) bool { return s == "" })

	keys := make([]keyset, 0, len(secrets))
	for i, secret := range secrets {
		if len(secret) < minSecretLength {
			return nil, fmt.Errorf("%w: secret %d has %d chars, need at least %d",
				ErrSecretTooShort, i, len(secret), minSecretLength)
		}
		ks, err := deriveKeys(secret)
		if err != nil {
			return nil, err
		}
		keys = append(keys, ks)
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		keys:     keys,
		defaults: applyOptions(defaults, opts),
		maxSize:  MaxCookieSize,
	}, nil
}

// NewWithOptions creates a cookie manager with additional manager options.
func NewWithOptions(secrets []string, cookieOpts []Option, managerOpts ...ManagerOption) (*Manager, error) {
	m, err := New(secrets, cookieOpts...)
	if err != nil {
		return nil, err
	}
	for _, opt := range managerOpts {
		opt(m)
	}
	return m, nil
}

// HasSecrets reports whether signed and encrypted cookies are available.
func (m *Manager) HasSecrets() bool {
	return len(m.keys) > 0
}

// Set writes a cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) error {
	options := applyOptions(m.defaults, opts)

	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	}

	if size := len(cookie.String()); size > m.maxSize {
		return ErrCookieTooLarge{Name: name, Size: size, Max: m.maxSize}
	}

	http.SetCookie(w, cookie)
	return nil
}

// Get returns the value of the named cookie.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}
	return cookie.Value, nil
}

// Delete tells the client to drop the named cookie. Path and domain follow
// the manager defaults merged with opts so that they match the cookie that
// was set.
func (m *Manager) Delete(w http.ResponseWriter, name string, opts ...Option) {
	options := applyOptions(m.defaults, opts)
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}

// SetSigned writes a cookie whose value carries an HMAC-SHA256 tag bound to
// the cookie name.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) error {
	if len(m.keys) == 0 {
		return ErrNoSecret
	}
	return m.Set(w, name, m.sign(name, value), opts...)
}

// GetSigned returns the value of a signed cookie after verifying its tag.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	if len(m.keys) == 0 {
		return "", ErrNoSecret
	}
	signed, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.verify(name, signed)
}

// SetEncrypted writes a cookie whose value is sealed with AES-256-GCM.
// The cookie name is authenticated as additional data.
func (m *Manager) SetEncrypted(w http.ResponseWriter, name, value string, opts ...Option) error {
	if len(m.keys) == 0 {
		return ErrNoSecret
	}
	sealed, err := m.encrypt(name, value)
	if err != nil {
		return err
	}
	return m.Set(w, name, sealed, opts...)
}

// GetEncrypted returns the decrypted value of an encrypted cookie.
func (m *Manager) GetEncrypted(r *http.Request, name string) (string, error) {
	if len(m.keys) == 0 {
		return "", ErrNoSecret
	}
	sealed, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.decrypt(name, sealed)
}

func deriveKeys(secret string) (keyset, error) {
	sign := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, signInfo), sign); err != nil {
		return keyset{}, err
	}

	enc := make([]byte, 32)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, encInfo), enc); err != nil {
		return keyset{}, err
	}
	block, err := aes.NewCipher(enc)
	if err != nil {
		return keyset{}, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return keyset{}, err
	}

	return keyset{sign: sign, aead: aead}, nil
}

func mac(key []byte, name, value string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(name))
	h.Write([]byte{'='})
	h.Write([]byte(value))
	return h.Sum(nil)
}

// sign returns base64url(value) + "|" + base64url(tag).
func (m *Manager) sign(name, value string) string {
	tag := mac(m.keys[0].sign, name, value)
	return base64.RawURLEncoding.EncodeToString([]byte(value)) + "|" + base64.RawURLEncoding.EncodeToString(tag)
}

func (m *Manager) verify(name, signed string) (string, error) {
	encodedValue, encodedTag, ok := strings.Cut(signed, "|")
	if !ok {
		return "", ErrInvalidFormat
	}

	value, err := base64.RawURLEncoding.DecodeString(encodedValue)
	if err != nil {
		return "", ErrInvalidFormat
	}
	tag, err := base64.RawURLEncoding.DecodeString(encodedTag)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, ks := range m.keys {
		if hmac.Equal(tag, mac(ks.sign, name, string(value))) {
			return string(value), nil
		}
	}
	return "", ErrInvalidSignature
}

func (m *Manager) encrypt(name, value string) (string, error) {
	aead := m.keys[0].aead
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(value)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := aead.Seal(nonce, nonce, []byte(value), []byte(name))
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (m *Manager) decrypt(name, encoded string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidFormat
	}

	for _, ks := range m.keys {
		ns := ks.aead.NonceSize()
		if len(data) < ns+ks.aead.Overhead() {
			return "", ErrInvalidFormat
		}
		plain, err := ks.aead.Open(nil, data[:ns], data[ns:], []byte(name))
		if err == nil {
			return string(plain), nil
		}
	}
	return "", ErrDecryptionFailed
}
