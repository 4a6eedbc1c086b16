// Package cookie writes and reads HTTP cookies in three flavours: plain,
// signed (HMAC-SHA256) and encrypted (AES-256-GCM).
//
//	m, err := cookie.New([]string{os.Getenv("COOKIE_SECRET")}, cookie.WithSecure(true))
//	if err != nil {
//		return err
//	}
//	_ = m.SetSigned(w, "prefs", "dark")
//	v, err := m.GetSigned(r, "prefs")
//
// Signing and encryption keys are derived from each secret with HKDF, so the
// same secret never serves both purposes. Tags and ciphertexts are bound to
// the cookie name: a value copied into a different cookie does not verify.
//
// Pass several secrets to rotate keys. The first signs and encrypts; all are
// tried when reading.
package cookie
