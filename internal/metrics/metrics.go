// Package metrics exposes prometheus collectors for the HTTP surface and for
// allocation and resolve outcomes.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Allocation outcomes.
const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeCustom   = "custom"
)

// Resolve outcomes.
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics owns a private registry so tests and multiple containers never
// collide on registration.
type Metrics struct {
	registry *prometheus.Registry

	// route is the operation path template, never the raw path, to keep
	// cardinality bounded.
	HTTPRequestsTotal          *prometheus.CounterVec
	HTTPRequestDurationSeconds *prometheus.HistogramVec

	Allocations        *prometheus.CounterVec
	AllocationFailures *prometheus.CounterVec
	Resolves           *prometheus.CounterVec
}

// New creates the collectors and registers them with a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency distributions.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Allocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortener_allocations_total",
				Help: "Shorten requests answered, by outcome.",
			},
			[]string{"outcome"},
		),
		AllocationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortener_allocation_failures_total",
				Help: "Shorten requests refused, by error kind.",
			},
			[]string{"kind"},
		),
		Resolves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shortener_resolves_total",
				Help: "Short code lookups, by outcome.",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequestsTotal,
		m.HTTPRequestDurationSeconds,
		m.Allocations,
		m.AllocationFailures,
		m.Resolves,
	)

	return m
}

// Registry returns the registry backing the exposition handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the prometheus text exposition.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per operation.
func (m *Metrics) Middleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()

	next(ctx)

	route := "unknown"
	if op := ctx.Operation(); op != nil {
		route = op.Path
	}

	method := ctx.Method()

	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(ctx.Status())).Inc()
	m.HTTPRequestDurationSeconds.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}
