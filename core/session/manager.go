package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/serversession/core/logger"
)

// Manager loads sessions for incoming requests and persists them according
// to their final status.
type Manager struct {
	store      Store
	transport  Transport
	ttl        time.Duration
	logger     *slog.Logger
	generateID func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL sets how long stored records and cookies stay valid.
// A non-positive value disables expiry: records never expire and cookies
// last for the browser session.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.ttl = ttl
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if log != nil {
			m.logger = log
		}
	}
}

// WithIDGenerator replaces GenerateID. Intended for tests.
func WithIDGenerator(fn func() string) Option {
	return func(m *Manager) {
		if fn != nil {
			m.generateID = fn
		}
	}
}

// NewManager creates a manager backed by store and transport.
func NewManager(store Store, transport Transport, opts ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrNoStore
	}
	if transport == nil {
		return nil, ErrNoTransport
	}

	m := &Manager{
		store:      store,
		transport:  transport,
		ttl:        DefaultTTL,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		generateID: GenerateID,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// NewManagerFromConfig creates a manager using cfg. Options override cfg.
func NewManagerFromConfig(cfg Config, store Store, transport Transport, opts ...Option) (*Manager, error) {
	return NewManager(store, transport, append([]Option{WithTTL(cfg.TTL)}, opts...)...)
}

// TTL returns the configured time-to-live.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Load resolves the session for r.
//
// A missing or malformed identifier yields an empty session. An identifier
// unknown to the store yields an empty session as well, and the stale
// identifier is dropped so that a later write issues a fresh one.
// Only store failures are returned as errors.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	id, err := m.transport.Extract(r)
	if err != nil {
		m.logger.DebugContext(ctx, "no session identifier",
			logger.Component("session"),
			logger.Error(err),
		)
		return Empty(), nil
	}

	entries, found, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, errors.Join(ErrLoadSession, err)
	}
	if !found {
		m.logger.DebugContext(ctx, "session not found",
			logger.Component("session"),
			logger.SessionID(id),
		)
		return Empty(), nil
	}

	sess := New(entries)
	sess.setIdentifier(id)
	return sess, nil
}

// Save persists sess according to its status:
//
//   - changed: the entries are written under the current identifier, or a
//     new identifier is issued if the session has none;
//   - renewed: the old record is removed and the entries are written under
//     a new identifier;
//   - purged: the record is removed and the client is told to drop the
//     identifier;
//   - unchanged: nothing happens.
//
// A new identifier is written to the response only after the store accepted
// it. Any failure is returned and must be treated as a failed request.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session) error {
	status, entries := sess.snapshot()
	id := sess.identifier()

	switch status {
	case StatusChanged:
		if id == "" {
			return m.issue(ctx, w, r, sess, entries)
		}
		if err := m.store.Update(ctx, id, entries, m.ttl); err != nil {
			return errors.Join(ErrSaveSession, err)
		}

	case StatusRenewed:
		if id != "" {
			if err := m.store.Remove(ctx, id); err != nil {
				return errors.Join(ErrDeleteSession, err)
			}
		}
		return m.issue(ctx, w, r, sess, entries)

	case StatusPurged:
		if id == "" {
			return nil
		}
		if err := m.store.Remove(ctx, id); err != nil {
			return errors.Join(ErrDeleteSession, err)
		}
		if err := m.transport.Revoke(w, r); err != nil {
			return errors.Join(ErrTransport, err)
		}
		sess.setIdentifier("")
	}

	if status != StatusUnchanged {
		m.logger.DebugContext(ctx, "session saved",
			logger.Component("session"),
			logger.SessionStatus(status),
			logger.SessionID(id),
		)
	}
	return nil
}

// issue stores entries under a fresh identifier, then embeds it.
func (m *Manager) issue(ctx context.Context, w http.ResponseWriter, r *http.Request, sess *Session, entries Entries) error {
	id := m.generateID()

	if err := m.store.Update(ctx, id, entries, m.ttl); err != nil {
		return errors.Join(ErrSaveSession, err)
	}
	if err := m.transport.Embed(w, r, id, m.ttl); err != nil {
		return errors.Join(ErrTransport, err)
	}
	sess.setIdentifier(id)

	m.logger.DebugContext(ctx, "session identifier issued",
		logger.Component("session"),
		logger.SessionID(id),
		logger.TTL(m.ttl),
	)
	return nil
}
