package handler

import (
	"context"
	"net/http"
)

// Context defines the contract for request contexts in the framework.
// SetValue stores request-scoped values that later middleware and the
// handler read back through Value.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}
