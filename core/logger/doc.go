// Package logger builds slog loggers and provides attribute helpers with
// consistent key names.
//
// # Usage
//
//	log := logger.New(
//		logger.WithProduction("sessiondemo"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.InfoContext(ctx, "session saved",
//		logger.SessionID(id),
//		logger.Backend("redis"),
//		logger.TTL(ttl),
//	)
//
// Context extractors run on every *Context call, so request-scoped values
// are attached without threading them through each log statement.
//
// SessionID truncates identifiers; the full value is a credential.
package logger
