package health

import (
	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/core/response"
)

// Liveness reports that the process is up. It never checks dependencies.
//
//	r.Get("/health/live", health.Liveness[*router.Context])
func Liveness[C handler.Context](C) handler.Response {
	return response.String("ALIVE")
}
