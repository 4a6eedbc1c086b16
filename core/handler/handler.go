package handler

import "net/http"

// Response is a function that renders HTTP responses.
// It is invoked after the middleware chain has returned, so middleware may
// wrap it to act right before headers are committed.
type Response func(w http.ResponseWriter, r *http.Request) error

// HandlerFunc is a type-safe HTTP request handler with custom context support.
type HandlerFunc[C Context] func(ctx C) Response

// ErrorHandler handles errors returned while rendering a Response.
type ErrorHandler[C Context] func(ctx C, err error)

// Middleware wraps handlers to add cross-cutting functionality.
type Middleware[C Context] func(next HandlerFunc[C]) HandlerFunc[C]
