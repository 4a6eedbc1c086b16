// Package session implements server-side sessions: the entries live in a
// Store and the client only holds an opaque identifier carried by a
// Transport, usually a cookie.
//
// A Manager resolves the Session for a request and, after the handler has
// run, persists it according to its Status. Handlers mutate the session
// through Set, Remove and Clear, rotate its identifier with Renew (do this on
// login to prevent fixation) and end it with Purge.
//
//	mgr, err := session.NewManager(store, transport, session.WithTTL(time.Hour))
//	if err != nil {
//		return err
//	}
//
//	sess, err := mgr.Load(ctx, r)
//	// ... handler work ...
//	if err := mgr.Save(ctx, w, r, sess); err != nil {
//		// the response must fail
//	}
//
// Most applications use the middleware package instead of calling Load and
// Save directly. Store adapters live under integration/sessionstore.
//
// Identifiers are 32 random bytes in unpadded URL-safe base64. GenerateID
// panics if the system random source fails.
package session
