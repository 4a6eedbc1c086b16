package session

import (
	"net/http"
	"time"
)

// Transport carries the session identifier between client and server.
type Transport interface {
	// Extract reads the identifier from the request. Any error means the
	// request carries no usable identifier.
	Extract(r *http.Request) (string, error)
	// Embed writes the identifier to the response, valid for ttl.
	Embed(w http.ResponseWriter, r *http.Request, id string, ttl time.Duration) error
	// Revoke instructs the client to drop the identifier.
	Revoke(w http.ResponseWriter, r *http.Request) error
}
