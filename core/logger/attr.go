package logger

import (
	"fmt"
	"log/slog"
	"time"
)

// Helpers that take optional values return an empty Attr for nil or empty
// input, which slog drops.

// ============================================================================
// Error Handling
// ============================================================================

// Error creates an attribute for a single error under the key "error".
// Returns empty Attr for nil errors, enabling safe usage without nil checks.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// ============================================================================
// Performance and Timing
// ============================================================================

// Duration creates an attribute for a duration.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// TTL creates an attribute for an expiry window.
func TTL(d time.Duration) slog.Attr {
	return slog.Duration("ttl", d)
}

// ============================================================================
// Generic Identifiers
// ============================================================================

// RequestID creates an attribute for HTTP request IDs.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// SessionID logs a shortened session identifier. Full identifiers are
// bearer credentials and never reach the log.
func SessionID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	if len(id) > 6 {
		id = id[:6] + "…"
	}
	return slog.String("session_id", id)
}

// SessionStatus logs the status of a session.
func SessionStatus(status fmt.Stringer) slog.Attr {
	return slog.String("session_status", status.String())
}

// Backend names the storage backend handling an operation.
func Backend(name string) slog.Attr {
	return slog.String("backend", name)
}

// ============================================================================
// Network and HTTP
// ============================================================================

// Method creates an attribute for HTTP methods.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Path creates an attribute for URL paths.
func Path(path string) slog.Attr {
	return slog.String("path", path)
}

// StatusCode creates an attribute for HTTP status codes.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// ============================================================================
// Generic Metadata
// ============================================================================

// Component creates an attribute for component names.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Count creates a generic counter attribute.
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

