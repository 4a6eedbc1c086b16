// Package middleware provides handler.Middleware implementations built on
// the router's handler.Context.
//
// Session attaches a server-side session to every request and persists it
// right before the response is committed:
//
//	r := router.New[*router.Context]()
//	r.Use(
//		middleware.RequestID[*router.Context](),
//		middleware.Logging[*router.Context](log),
//		middleware.Session[*router.Context](mgr),
//	)
//
//	r.Get("/", func(ctx *router.Context) handler.Response {
//		sess := middleware.MustGetSession(ctx)
//		visits, _ := session.Value[int](sess, "visits")
//		if err := sess.Set("visits", visits+1); err != nil {
//			return response.Error(err)
//		}
//		return response.JSON(map[string]int{"visits": visits + 1})
//	})
//
// Every middleware follows the same shape: a default constructor, a
// WithConfig variant taking a config struct with an optional Skip
// predicate, and context helpers for reading stored values.
package middleware
