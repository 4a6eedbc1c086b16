// Package health provides liveness and readiness handlers.
//
// Readiness takes named checks with the func(context.Context) error shape
// returned by the database packages' Healthcheck helpers:
//
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/health/ready", health.Readiness[*router.Context](log,
//		health.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
//	))
package health
