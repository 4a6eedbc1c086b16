package main

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/serversession/core/handler"
	"github.com/dmitrymomot/serversession/core/health"
	"github.com/dmitrymomot/serversession/core/response"
	"github.com/dmitrymomot/serversession/core/router"
	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/integration/sessionstore/promstore"
	"github.com/dmitrymomot/serversession/middleware"
)

const userKey = "user"

type visitsResponse struct {
	Visits int    `json:"visits"`
	User   string `json:"user,omitempty"`
}

func newRouter(mgr *session.Manager, checks []health.Check, log *slog.Logger) router.Router[*router.Context] {
	r := router.New[*router.Context](
		router.WithLogger[*router.Context](log),
		router.WithErrorHandler[*router.Context](response.JSONErrorHandler[*router.Context]),
	)

	r.Use(
		middleware.RequestID[*router.Context](),
		middleware.LoggingWithConfig[*router.Context](middleware.LoggingConfig{
			Logger: log,
			Skip:   isInfraPath,
		}),
		middleware.SessionWithConfig(middleware.SessionConfig[*router.Context]{
			Manager: mgr,
			Logger:  log,
			Skip:    func(ctx *router.Context) bool { return isInfraPath(ctx) },
		}),
	)

	r.Get("/{$}", visits)
	r.Post("/login", login)
	r.Post("/logout", logout)

	r.Get("/health/live", health.Liveness[*router.Context])
	r.Get("/health/ready", health.Readiness[*router.Context](log, checks...))
	r.Get("/metrics", fromHTTPHandler(promstore.Handler(prometheus.DefaultGatherer)))

	return r
}

func isInfraPath(ctx handler.Context) bool {
	p := ctx.Request().URL.Path
	return strings.HasPrefix(p, "/health/") || p == "/metrics"
}

func fromHTTPHandler(h http.Handler) handler.HandlerFunc[*router.Context] {
	return func(*router.Context) handler.Response {
		return func(w http.ResponseWriter, r *http.Request) error {
			h.ServeHTTP(w, r)
			return nil
		}
	}
}

// visits counts requests per session.
func visits(ctx *router.Context) handler.Response {
	sess := middleware.MustGetSession(ctx)

	n, _ := session.Value[int](sess, "visits")
	n++
	if err := sess.Set("visits", n); err != nil {
		return response.Error(err)
	}

	user, _ := session.Value[string](sess, userKey)
	return response.JSON(visitsResponse{Visits: n, User: user})
}

// login stores the user name and rotates the session identifier.
func login(ctx *router.Context) handler.Response {
	name := strings.TrimSpace(ctx.Request().FormValue("user"))
	if name == "" {
		return response.Error(response.ErrBadRequest.WithMessage("user is required"))
	}

	sess := middleware.MustGetSession(ctx)
	sess.Renew()
	if err := sess.Set(userKey, name); err != nil {
		return response.Error(err)
	}

	n, _ := session.Value[int](sess, "visits")
	return response.JSON(visitsResponse{Visits: n, User: name})
}

// logout destroys the session and its cookie.
func logout(ctx *router.Context) handler.Response {
	middleware.MustGetSession(ctx).Purge()
	return response.NoContent()
}
