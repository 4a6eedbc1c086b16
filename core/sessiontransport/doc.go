// Package sessiontransport provides session.Transport implementations.
//
// Cookie stores the session identifier in an HTTP cookie through a
// cookie.Manager. By default the value is signed, so a client cannot forge
// identifiers; SecurityEncrypted additionally hides the identifier and
// SecurityPlain stores it as is.
//
//	cookies, _ := cookie.New([]string{secret}, cookie.WithSecure(true))
//	transport, err := sessiontransport.NewCookie(cookies, "__session")
//	mgr, _ := session.NewManager(store, transport)
//
// Extract rejects values that are not well-formed identifiers, so garbage
// never reaches the store.
package sessiontransport
