// Package handler defines the request-processing abstractions shared by the
// router, the middleware and application handlers.
//
// A handler receives a typed Context and returns a Response. The Response is a
// deferred renderer: nothing is written until the router invokes it, which lets
// middleware such as the server-side session middleware persist state and set
// cookies right before the response commits.
//
//	func hello(ctx *router.Context) handler.Response {
//		return response.String("hello " + ctx.Param("name"))
//	}
//
// Middleware composes with the same types:
//
//	func Timing[C handler.Context](log *slog.Logger) handler.Middleware[C] {
//		return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
//			return func(ctx C) handler.Response {
//				start := time.Now()
//				resp := next(ctx)
//				return func(w http.ResponseWriter, r *http.Request) error {
//					err := resp(w, r)
//					log.InfoContext(ctx, "request served", logger.Duration(time.Since(start)))
//					return err
//				}
//			}
//		}
//	}
//
// The Context interface extends context.Context with access to the request, the
// response writer, path parameters and request-scoped values (SetValue/Value).
package handler
