package session

import "errors"

var (
	// ErrNoStore is returned when a manager is created without a store.
	ErrNoStore = errors.New("session store is required")
	// ErrNoTransport is returned when a manager is created without a transport.
	ErrNoTransport = errors.New("session transport is required")
	// ErrLoadSession is returned when reading a session from the store fails.
	ErrLoadSession = errors.New("failed to load session")
	// ErrSaveSession is returned when saving a session to the store fails.
	ErrSaveSession = errors.New("failed to save session")
	// ErrDeleteSession is returned when deleting a session from the store fails.
	ErrDeleteSession = errors.New("failed to delete session")
	// ErrTransport is returned when the session identifier cannot be written to
	// or removed from the response.
	ErrTransport = errors.New("session transport failed")
	// ErrInvalidValue is returned when a value cannot be JSON-encoded.
	ErrInvalidValue = errors.New("invalid session value")
)
