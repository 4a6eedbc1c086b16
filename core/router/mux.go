package router

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/core/logger"
)

// mux is the private implementation of Router.
// Pattern matching is delegated to http.ServeMux.
type mux[C handler.Context] struct {
	serveMux     *http.ServeMux
	errorHandler handler.ErrorHandler[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	logger       *slog.Logger

	mu          sync.RWMutex
	middlewares []handler.Middleware[C]
	routes      []Route
}

func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		serveMux:     http.NewServeMux(),
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		var zero C
		if _, ok := any(zero).(*Context); !ok {
			panic(ErrNoContextFactory)
		}
		m.newContext = func(w http.ResponseWriter, r *http.Request) C {
			return any(NewContext(w, r)).(C)
		}
	}

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.serveMux.ServeHTTP(w, r)
}

func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.Method(pattern, h, http.MethodGet)
}

func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.Method(pattern, h, http.MethodPost)
}

func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.Method(pattern, h, http.MethodPut)
}

func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.Method(pattern, h, http.MethodDelete)
}

func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.Method(pattern, h, http.MethodPatch)
}

func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.register("", pattern, h)
}

func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods for %q", ErrInvalidMethod, pattern))
	}
	for _, method := range methods {
		method = strings.ToUpper(method)
		if _, ok := methodMap[method]; !ok {
			panic(fmt.Errorf("%w: %q", ErrInvalidMethod, method))
		}
		m.register(method, pattern, h)
	}
}

func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.middlewares = append(m.middlewares, middlewares...)
}

func (m *mux[C]) Routes() []Route {
	m.mu.RLock()
	defer m.mu.RUnlock()
	routes := make([]Route, len(m.routes))
	copy(routes, m.routes)
	return routes
}

func (m *mux[C]) register(method, pattern string, h handler.HandlerFunc[C]) {
	if !strings.HasPrefix(pattern, "/") {
		panic(fmt.Errorf("%w: %q", ErrInvalidPattern, pattern))
	}

	key := pattern
	if method != "" {
		key = method + " " + pattern
	}

	m.mu.Lock()
	m.routes = append(m.routes, Route{Method: method, Pattern: pattern})
	m.mu.Unlock()

	m.serveMux.HandleFunc(key, func(w http.ResponseWriter, r *http.Request) {
		m.serve(w, r, h)
	})
}

// serve builds the context, runs the middleware chain and renders the response.
func (m *mux[C]) serve(w http.ResponseWriter, r *http.Request, h handler.HandlerFunc[C]) {
	ww := newResponseWriter(w)
	ctx := m.newContext(ww, r)

	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{value: p, stack: debug.Stack()}
			if ww.Written() {
				m.logger.Error("panic after response written",
					slog.Any("value", panicErr.value),
					slog.String("stack", string(panicErr.stack)),
					logger.Method(r.Method),
					logger.Path(r.URL.Path),
					logger.StatusCode(ww.Status()),
				)
				return
			}
			m.errorHandler(ctx, panicErr)
		}
	}()

	m.mu.RLock()
	endpoint := chain(m.middlewares, h)
	m.mu.RUnlock()

	resp := endpoint(ctx)
	if resp == nil {
		m.errorHandler(ctx, ErrNilResponse)
		return
	}

	// Middleware may have replaced the request (SetValue), render with the latest one.
	if err := resp(ww, ctx.Request()); err != nil {
		m.errorHandler(ctx, err)
	}
}

// chain builds a single handler from a middleware stack and endpoint.
// The first middleware in the slice runs first.
func chain[C handler.Context](middlewares []handler.Middleware[C], endpoint handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	h := endpoint
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

var methodMap = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodConnect: {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}
