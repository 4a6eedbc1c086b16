// Package promstore instruments a session.Store with Prometheus metrics.
//
// It counts operations by backend, op and result ("hit", "miss", "ok",
// "error") and records their latency:
//
//	metrics := promstore.NewMetrics(prometheus.DefaultRegisterer)
//	store := promstore.New(redisstore.New(client), metrics, "redis")
//	http.Handle("/metrics", promstore.Handler(prometheus.DefaultGatherer))
package promstore

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/serversession/core/session"
)

const (
	opLoad   = "load"
	opUpdate = "update"
	opRemove = "remove"

	resultHit   = "hit"
	resultMiss  = "miss"
	resultOK    = "ok"
	resultError = "error"
)

// Metrics holds the collectors shared by every instrumented store.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "session_store_operations_total",
			Help: "Total number of session store operations",
		}, []string{"backend", "op", "result"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "session_store_operation_duration_seconds",
			Help:    "Session store operation latency in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"backend", "op"}),
	}
	reg.MustRegister(m.Operations, m.Duration)
	return m
}

// Store wraps a session.Store and records metrics for every call.
type Store struct {
	next    session.Store
	metrics *Metrics
	backend string
}

var _ session.Store = (*Store)(nil)

// New wraps next. backend labels the series, e.g. "redis".
func New(next session.Store, metrics *Metrics, backend string) *Store {
	return &Store{next: next, metrics: metrics, backend: backend}
}

func (s *Store) observe(op, result string, start time.Time) {
	s.metrics.Operations.WithLabelValues(s.backend, op, result).Inc()
	s.metrics.Duration.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
}

// Load implements session.Store.
func (s *Store) Load(ctx context.Context, id string) (session.Entries, bool, error) {
	start := time.Now()
	entries, found, err := s.next.Load(ctx, id)

	result := resultMiss
	switch {
	case err != nil:
		result = resultError
	case found:
		result = resultHit
	}
	s.observe(opLoad, result, start)

	return entries, found, err
}

// Update implements session.Store.
func (s *Store) Update(ctx context.Context, id string, entries session.Entries, ttl time.Duration) error {
	start := time.Now()
	err := s.next.Update(ctx, id, entries, ttl)
	s.observe(opUpdate, resultOf(err), start)
	return err
}

// Remove implements session.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	start := time.Now()
	err := s.next.Remove(ctx, id)
	s.observe(opRemove, resultOf(err), start)
	return err
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultOK
}

// Handler exposes the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
