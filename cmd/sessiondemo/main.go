// Command sessiondemo serves a small API backed by server-side sessions.
//
// The store backend is picked with SESSION_STORE (memory, redis, postgres or
// mongo); every other setting comes from the environment or a .env file.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/serversession/core/config"
	"github.com/dmitrymomot/serversession/core/cookie"
	"github.com/dmitrymomot/serversession/core/logger"
	"github.com/dmitrymomot/serversession/core/server"
	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/core/sessiontransport"
	"github.com/dmitrymomot/serversession/integration/sessionstore/promstore"
	"github.com/dmitrymomot/serversession/middleware"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("sessiondemo failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := newLogger(cfg)
	logger.SetAsDefault(log)

	g, ctx := errgroup.WithContext(ctx)

	backend, err := openBackend(ctx, g, cfg, log)
	if err != nil {
		return err
	}
	defer backend.close()

	store := promstore.New(backend.store, promstore.NewMetrics(prometheus.DefaultRegisterer), cfg.Store)

	mgr, err := newManager(store, log)
	if err != nil {
		return err
	}

	var srvCfg server.Config
	if err := config.Load(&srvCfg); err != nil {
		return err
	}
	srv, err := server.NewFromConfig(srvCfg, server.WithLogger(log))
	if err != nil {
		return err
	}

	r := newRouter(mgr, backend.checks, log)
	g.Go(func() error { return srv.Run(ctx, r) })

	return g.Wait()
}

func newLogger(cfg Config) *slog.Logger {
	opts := []logger.Option{
		logger.WithContextExtractors(middleware.RequestIDExtractor),
	}
	if cfg.AppEnv == "production" {
		opts = append(opts, logger.WithProduction("sessiondemo"))
	} else {
		opts = append(opts, logger.WithDevelopment("sessiondemo"))
	}
	if cfg.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(cfg.LogLevel)); err == nil {
			opts = append(opts, logger.WithLevel(level))
		}
	}
	return logger.New(opts...)
}

func newManager(store session.Store, log *slog.Logger) (*session.Manager, error) {
	var cookieCfg cookie.Config
	if err := config.Load(&cookieCfg); err != nil {
		return nil, err
	}
	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return nil, err
	}

	var transportCfg sessiontransport.CookieConfig
	if err := config.Load(&transportCfg); err != nil {
		return nil, err
	}
	transport, err := sessiontransport.NewCookieFromConfig(transportCfg, cookies)
	if err != nil {
		return nil, err
	}

	var sessCfg session.Config
	if err := config.Load(&sessCfg); err != nil {
		return nil, err
	}
	return session.NewManagerFromConfig(sessCfg, store, transport, session.WithLogger(log))
}
