package router

import (
	"net/http"

	"github.com/dmitrymomot/serversession/core/handler"
)

// Router is the routing interface for handling HTTP requests.
// It supports middleware chaining and route introspection.
type Router[C handler.Context] interface {
	http.Handler
	Routes

	// HTTP method handlers
	Get(pattern string, h handler.HandlerFunc[C])
	Post(pattern string, h handler.HandlerFunc[C])
	Put(pattern string, h handler.HandlerFunc[C])
	Delete(pattern string, h handler.HandlerFunc[C])
	Patch(pattern string, h handler.HandlerFunc[C])

	// Handle registers h for every method.
	Handle(pattern string, h handler.HandlerFunc[C])
	// Method registers h for the given methods.
	Method(pattern string, h handler.HandlerFunc[C], methods ...string)

	// Use appends middleware to the stack. Middleware applies to every route,
	// including routes registered before the call.
	Use(middlewares ...handler.Middleware[C])
}

// Routes provides route introspection for debugging and monitoring.
type Routes interface {
	Routes() []Route
}

// Route describes a single registered route.
type Route struct {
	Method  string
	Pattern string
}

// New creates a new router with the given options.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux[C](opts...)
}
