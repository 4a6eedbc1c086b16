// Package server runs an http.Handler with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	g.Go(func() error { return srv.Run(ctx, r) })
//
// Run blocks until the context is cancelled, then drains in-flight requests
// for at most the shutdown timeout.
package server
