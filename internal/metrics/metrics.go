package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Prefix is prepended to every metric bookdash exports.
const Prefix = "bookdash_"

// Registry holds the bookdash collectors.
type Registry struct {
	reg      *prometheus.Registry
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRegistry registers the Go runtime, process and API client collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	prefixed := prometheus.WrapRegistererWithPrefix(Prefix, reg)

	r := &Registry{
		reg: reg,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Book API operations by outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Book API operation latency including retries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	prefixed.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requests,
		r.duration,
	)
	return r
}

// Gatherer exposes the registry for HTTP handlers and tests.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// ObserveRequest records one completed API operation.
func (r *Registry) ObserveRequest(operation, outcome string, elapsed time.Duration) {
	r.requests.WithLabelValues(operation, outcome).Inc()
	r.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}
