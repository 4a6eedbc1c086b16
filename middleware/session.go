package middleware

import (
	"context"
	"io"
	"log/slog"
	"maps"
	"net/http"

	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/core/logger"
	"github.com/dmitrymomot/serversession/core/response"
	"github.com/dmitrymomot/serversession/core/session"
)

type sessionKey struct{}

// SessionConfig configures the session middleware.
type SessionConfig[C handler.Context] struct {
	// Manager loads and persists sessions (required).
	Manager *session.Manager
	// Skip defines a function to skip middleware execution for specific requests.
	// Skipped requests carry no session.
	Skip func(ctx C) bool
	// Logger for structured logging (default: slog with io.Discard).
	Logger *slog.Logger
	// ErrorHandler builds the response for load and save failures.
	// Default: response.Error(err), handing the error to the router.
	ErrorHandler func(ctx C, err error) handler.Response
}

// Session creates middleware that attaches a server-side session to every
// request and persists it once the handler's response is about to be sent.
//
// Usage:
//
//	r.Use(middleware.Session[*router.Context](mgr))
//
//	r.Post("/login", func(ctx *router.Context) handler.Response {
//		sess := middleware.MustGetSession(ctx)
//		sess.Renew()
//		if err := sess.Set("user_id", userID); err != nil {
//			return response.Error(err)
//		}
//		return response.RedirectSeeOther("/")
//	})
func Session[C handler.Context](mgr *session.Manager) handler.Middleware[C] {
	return SessionWithConfig(SessionConfig[C]{Manager: mgr})
}

// SessionWithConfig creates a session middleware with custom configuration.
//
// Persistence runs exactly once, right before the first byte of the response
// is committed, so Set-Cookie headers can still be added and a failed save
// can replace the handler's response with an error response. Nothing is
// persisted when:
//   - the handler returns a nil response or panics;
//   - the response fails to render before writing anything;
//   - the request context is already cancelled.
func SessionWithConfig[C handler.Context](cfg SessionConfig[C]) handler.Middleware[C] {
	if cfg.Manager == nil {
		panic("session middleware: manager is required")
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(ctx C, err error) handler.Response {
			return response.Error(err)
		}
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			sess, err := cfg.Manager.Load(ctx, ctx.Request())
			if err != nil {
				cfg.Logger.ErrorContext(ctx, "failed to load session",
					logger.Component("session"),
					logger.Error(err),
				)
				return cfg.ErrorHandler(ctx, err)
			}

			ctx.SetValue(sessionKey{}, sess)

			resp := next(ctx)
			if resp == nil {
				return nil
			}

			return func(w http.ResponseWriter, r *http.Request) error {
				cw := &commitWriter{
					ResponseWriter: w,
					save: func() error {
						if err := r.Context().Err(); err != nil {
							cfg.Logger.DebugContext(ctx, "request cancelled, session not saved",
								logger.Component("session"),
								logger.Error(err),
							)
							return nil
						}
						if err := cfg.Manager.Save(r.Context(), w, r, sess); err != nil {
							cfg.Logger.ErrorContext(ctx, "failed to save session",
								logger.Component("session"),
								logger.SessionStatus(sess.Status()),
								logger.Error(err),
							)
							return err
						}
						return nil
					},
				}

				// Headers set by the handler must not leak onto the error
				// response when saving fails.
				base := w.Header().Clone()

				if err := resp(cw, r); err != nil {
					if cw.err != nil {
						resetHeader(w.Header(), base)
						return cfg.ErrorHandler(ctx, cw.err)(w, r)
					}
					// Rendering failed before or after commit. Either way the
					// router handles err; nothing more is persisted.
					return err
				}

				if err := cw.commit(); err != nil {
					resetHeader(w.Header(), base)
					return cfg.ErrorHandler(ctx, err)(w, r)
				}
				return nil
			}
		}
	}
}

// GetSession returns the session attached by the middleware.
func GetSession(ctx context.Context) (*session.Session, bool) {
	if ctx == nil {
		return nil, false
	}
	sess, ok := ctx.Value(sessionKey{}).(*session.Session)
	return sess, ok && sess != nil
}

// MustGetSession returns the session attached by the middleware or panics.
// Use this when the middleware is guaranteed to run for the route.
func MustGetSession(ctx context.Context) *session.Session {
	sess, ok := GetSession(ctx)
	if !ok {
		panic("session not found in context")
	}
	return sess
}

// resetHeader replaces h's contents with base.
func resetHeader(h, base http.Header) {
	clear(h)
	maps.Copy(h, base)
}

// commitWriter runs save before the first header or body byte reaches the
// client. If save fails, the write is dropped and the error is kept so the
// middleware can render an error response instead.
type commitWriter struct {
	http.ResponseWriter
	save      func() error
	committed bool
	err       error
}

func (w *commitWriter) commit() error {
	if !w.committed {
		w.committed = true
		w.err = w.save()
	}
	return w.err
}

func (w *commitWriter) WriteHeader(status int) {
	if w.commit() != nil {
		return
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *commitWriter) Write(b []byte) (int, error) {
	if err := w.commit(); err != nil {
		return 0, err
	}
	return w.ResponseWriter.Write(b)
}

// Flush implements http.Flusher.
func (w *commitWriter) Flush() {
	if w.commit() != nil {
		return
	}
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (w *commitWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
