// Package response provides handler.Response constructors for text, JSON and
// redirects, plus structured HTTP errors and error handlers for the router.
//
//	r.Get("/", func(ctx *router.Context) handler.Response {
//		return response.JSON(map[string]int{"visits": n})
//	})
//
// Return response.Error(err) to hand an error to the router's error handler.
// Errors implementing StatusCode() int choose their status; anything else
// renders as a 500 without leaking its message.
package response
