// Package pgstore provides a session.Store backed by PostgreSQL.
//
// Records live in the http_sessions table created by the embedded goose
// migration; apply it with pg.Migrate(ctx, pool, pgstore.Migrations(), cfg, log).
// Expired rows are invisible to Load and are swept by DeleteExpired.
//
// When the context carries a transaction set with pg.WithTx, the store runs
// its statements inside it.
package pgstore

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrymomot/serversession/core/logger"
	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/integration/database/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the goose migrations creating the sessions table.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	loadQuery = `SELECT entries FROM http_sessions
WHERE id = $1 AND (expires_at IS NULL OR expires_at > now())`

	upsertQuery = `INSERT INTO http_sessions (id, entries, expires_at, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (id) DO UPDATE
SET entries = EXCLUDED.entries, expires_at = EXCLUDED.expires_at, updated_at = now()`

	removeQuery = `DELETE FROM http_sessions WHERE id = $1`

	deleteExpiredQuery = `DELETE FROM http_sessions WHERE expires_at IS NOT NULL AND expires_at <= now()`
)

// Store is a PostgreSQL-backed session.Store.
type Store struct {
	db DB
}

var _ session.Store = (*Store)(nil)

// New creates a store on top of db.
func New(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) DB {
	if tx, ok := pg.TxFromContext(ctx); ok {
		return tx
	}
	return s.db
}

// Load implements session.Store.
func (s *Store) Load(ctx context.Context, id string) (session.Entries, bool, error) {
	var data []byte
	if err := s.conn(ctx).QueryRow(ctx, loadQuery, id).Scan(&data); err != nil {
		if pg.IsNotFoundError(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var entries session.Entries
	if err := entries.UnmarshalBinary(data); err != nil {
		return nil, false, err
	}
	return entries, true, nil
}

// Update implements session.Store.
func (s *Store) Update(ctx context.Context, id string, entries session.Entries, ttl time.Duration) error {
	data, err := entries.MarshalBinary()
	if err != nil {
		return err
	}

	var expiresAt *time.Time
	if ttl > 0 {
		t := time.Now().Add(ttl)
		expiresAt = &t
	}

	_, err = s.conn(ctx).Exec(ctx, upsertQuery, id, data, expiresAt)
	return err
}

// Remove implements session.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	_, err := s.conn(ctx).Exec(ctx, removeQuery, id)
	return err
}

// DeleteExpired removes expired rows and returns how many were deleted.
func (s *Store) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := s.conn(ctx).Exec(ctx, deleteExpiredQuery)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RunCleanup calls DeleteExpired every interval until ctx is done.
// Failures are logged and do not stop the loop. A non-positive interval
// disables the loop.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration, log *slog.Logger) {
	if interval <= 0 {
		return
	}
	if log == nil {
		log = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.DeleteExpired(ctx)
			if err != nil {
				log.ErrorContext(ctx, "failed to delete expired sessions",
					logger.Component("pgstore"),
					logger.Error(err),
				)
				continue
			}
			if n > 0 {
				log.DebugContext(ctx, "deleted expired sessions",
					logger.Component("pgstore"),
					logger.Count("deleted", int(n)),
				)
			}
		}
	}
}
