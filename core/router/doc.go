// Package router provides a generic HTTP router built on http.ServeMux with
// typed handler contexts, middleware chaining and panic recovery.
//
// Handlers return a handler.Response that is rendered after the middleware
// chain completes. Middleware that needs to observe rendering can wrap the
// returned Response.
//
// # Basic Usage
//
//	r := router.New[*router.Context]()
//	r.Use(middleware.Session[*router.Context](mgr))
//	r.Get("/users/{id}", func(ctx *router.Context) handler.Response {
//		return response.String("user " + ctx.Param("id"))
//	})
//	http.ListenAndServe(":8080", r)
//
// # Custom Context
//
// Any type implementing handler.Context can be used. A context factory is
// required in that case:
//
//	r := router.New[*AppContext](
//		router.WithContextFactory(func(w http.ResponseWriter, r *http.Request) *AppContext {
//			return &AppContext{Context: ..., user: nil}
//		}),
//	)
//
// # Error Handling
//
// Errors returned while rendering, nil responses and recovered panics are
// passed to the error handler. The default handler writes a plain-text status
// unless the response has already started. Errors implementing
// StatusCode() int choose the status; panics surface as PanicError.
package router
