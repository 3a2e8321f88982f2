// Package metrics provides Prometheus metrics for the HTTP layer and the moderation domain
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/CPSG-31/kbti-backend/internal/middlewares"
	"github.com/CPSG-31/kbti-backend/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kbti"

// Registry bundles a Prometheus registry with the service metrics
type Registry struct {
	registry *prometheus.Registry
	HTTP     *HTTPMetrics
	Domain   *DomainMetrics
}

// NewRegistry creates a registry with Go runtime, process, HTTP and domain collectors
func NewRegistry() (*Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	if err := reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		return nil, err
	}

	httpMetrics, err := NewHTTPMetrics(reg)
	if err != nil {
		return nil, err
	}
	domainMetrics, err := NewDomainMetrics(reg)
	if err != nil {
		return nil, err
	}

	return &Registry{registry: reg, HTTP: httpMetrics, Domain: domainMetrics}, nil
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// HTTPMetrics contains request counters and latency histograms
type HTTPMetrics struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewHTTPMetrics creates and registers HTTP metrics
func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	m := &HTTPMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status_code"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Time taken for HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	for _, c := range []prometheus.Collector{m.requestsTotal, m.requestDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Middleware records every request under its chi route pattern.
// Unmatched requests are grouped under "unmatched" to keep label cardinality bounded.
func (m *HTTPMetrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middlewares.NewStatusRecorder(w)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		m.requestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// DomainMetrics counts votes and moderation transitions.
// All methods are safe to call on a nil receiver, so services can run without metrics.
type DomainMetrics struct {
	votes       *prometheus.CounterVec
	transitions *prometheus.CounterVec
	purges      prometheus.Counter
}

// NewDomainMetrics creates and registers domain metrics
func NewDomainMetrics(reg prometheus.Registerer) (*DomainMetrics, error) {
	m := &DomainMetrics{
		votes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_total",
				Help:      "Votes cast, by outcome (created, retracted, changed)",
			},
			[]string{"outcome"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "moderation_transitions_total",
				Help:      "Definition moderation state transitions",
			},
			[]string{"from", "to"},
		),
		purges: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "definitions_purged_total",
				Help:      "Soft-deleted definitions permanently removed",
			},
		),
	}

	for _, c := range []prometheus.Collector{m.votes, m.transitions, m.purges} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// VoteCast records a vote outcome
func (m *DomainMetrics) VoteCast(outcome string) {
	if m == nil {
		return
	}
	m.votes.WithLabelValues(outcome).Inc()
}

// Transition records a moderation state change. from is zero for newly created definitions.
func (m *DomainMetrics) Transition(from, to models.ModerationState) {
	if m == nil {
		return
	}
	fromLabel := "none"
	if from != 0 {
		fromLabel = from.String()
	}
	m.transitions.WithLabelValues(fromLabel, to.String()).Inc()
}

// Purged records a permanent removal
func (m *DomainMetrics) Purged() {
	if m == nil {
		return
	}
	m.purges.Inc()
}
