package main

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/serversession/core/config"
	"github.com/dmitrymomot/serversession/core/health"
	"github.com/dmitrymomot/serversession/core/session"
	"github.com/dmitrymomot/serversession/integration/database/mongo"
	"github.com/dmitrymomot/serversession/integration/database/pg"
	"github.com/dmitrymomot/serversession/integration/database/redis"
	"github.com/dmitrymomot/serversession/integration/sessionstore/memstore"
	"github.com/dmitrymomot/serversession/integration/sessionstore/mongostore"
	"github.com/dmitrymomot/serversession/integration/sessionstore/pgstore"
	"github.com/dmitrymomot/serversession/integration/sessionstore/redisstore"
)

type backend struct {
	store  session.Store
	checks []health.Check
	close  func()
}

// openBackend connects the store selected by cfg.Store. Background sweeps
// are started on g and stop with its context.
func openBackend(ctx context.Context, g *errgroup.Group, cfg Config, log *slog.Logger) (*backend, error) {
	switch cfg.Store {
	case "memory":
		store := memstore.New()
		g.Go(func() error {
			store.RunCleanup(ctx, cfg.CleanupInterval)
			return nil
		})
		return &backend{store: store, close: func() {}}, nil

	case "redis":
		var rc redis.Config
		if err := config.Load(&rc); err != nil {
			return nil, err
		}
		client, err := redis.Connect(ctx, rc)
		if err != nil {
			return nil, err
		}
		return &backend{
			store:  redisstore.New(client),
			checks: []health.Check{{Name: "redis", Fn: redis.Healthcheck(client)}},
			close:  func() { _ = client.Close() },
		}, nil

	case "postgres":
		var pc pg.Config
		if err := config.Load(&pc); err != nil {
			return nil, err
		}
		pool, err := pg.Connect(ctx, pc)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx, pool, pgstore.Migrations(), pc, log); err != nil {
			pool.Close()
			return nil, err
		}
		store := pgstore.New(pool)
		g.Go(func() error {
			store.RunCleanup(ctx, cfg.CleanupInterval, log)
			return nil
		})
		return &backend{
			store:  store,
			checks: []health.Check{{Name: "postgres", Fn: pg.Healthcheck(pool)}},
			close:  pool.Close,
		}, nil

	case "mongo":
		var mc mongo.Config
		if err := config.Load(&mc); err != nil {
			return nil, err
		}
		db, err := mongo.NewWithDatabase(ctx, mc, "")
		if err != nil {
			return nil, err
		}
		client := db.Client()
		store, err := mongostore.New(ctx, db.Collection(mongostore.DefaultCollection))
		if err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, err
		}
		return &backend{
			store:  store,
			checks: []health.Check{{Name: "mongo", Fn: mongo.Healthcheck(client)}},
			close:  func() { _ = client.Disconnect(context.Background()) },
		}, nil

	default:
		return nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.Store)
	}
}
