package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/core/logger"
	"github.com/dmitrymomot/serversession/core/response"
)

// DefaultTimeout bounds each dependency check.
const DefaultTimeout = 3 * time.Second

// Check is a named dependency probe, e.g. redis.Healthcheck(client).
type Check struct {
	Name string
	Fn   func(context.Context) error
}

// Report is the readiness response body.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Readiness runs every check and responds 200 with a Report when all pass,
// 503 otherwise. Failures are logged; the report only says "failed" so
// connection details do not leak.
//
//	r.Get("/health/ready", health.Readiness[*router.Context](log,
//		health.Check{Name: "redis", Fn: redis.Healthcheck(client)},
//	))
func Readiness[C handler.Context](log *slog.Logger, checks ...Check) handler.HandlerFunc[C] {
	return func(ctx C) handler.Response {
		report := Report{Status: "ready"}
		if len(checks) > 0 {
			report.Checks = make(map[string]string, len(checks))
		}

		for _, c := range checks {
			checkCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
			err := c.Fn(checkCtx)
			cancel()

			if err != nil {
				log.ErrorContext(ctx, "readiness check failed",
					logger.Component("health"),
					logger.Backend(c.Name),
					logger.Error(err),
				)
				report.Status = "unavailable"
				report.Checks[c.Name] = "failed"
				continue
			}
			report.Checks[c.Name] = "ok"
		}

		if report.Status != "ready" {
			return response.JSONWithStatus(report, http.StatusServiceUnavailable)
		}
		return response.JSON(report)
	}
}
