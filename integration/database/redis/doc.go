// Package redis bootstraps a go-redis client from environment configuration.
//
// Connect validates the URL (redis:// or rediss://), then pings the server
// with retries so a service does not start against a Redis that is not ready
// yet:
//
//	var cfg redis.Config
//	config.MustLoad(&cfg)
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	store := redisstore.New(client)
//
// Healthcheck returns a func(context.Context) error suitable for readiness
// probes. All failures wrap one of the package errors and can be matched with
// errors.Is.
package redis
