package router

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/serversession/core/handler"
)

// Option configures the router.
type Option[C handler.Context] func(*mux[C])

// WithContextFactory sets the function used to build the per-request context.
// Required for any context type other than *Context.
func WithContextFactory[C handler.Context](fn func(w http.ResponseWriter, r *http.Request) C) Option[C] {
	return func(m *mux[C]) {
		m.newContext = fn
	}
}

// WithErrorHandler sets the handler invoked when a response fails to render.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithLogger sets the logger used for panics that happen after the response
// has been written.
func WithLogger[C handler.Context](log *slog.Logger) Option[C] {
	return func(m *mux[C]) {
		if log != nil {
			m.logger = log
		}
	}
}
