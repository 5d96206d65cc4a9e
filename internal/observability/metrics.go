package observability

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_desk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_desk_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ErrorsTotal tracks requests that resolved to a domain error.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_desk_errors_total",
			Help: "Total domain errors by code",
		},
		[]string{"method", "path", "code"},
	)

	// CacheEventsTotal tracks client cache traffic.
	CacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "request_desk_cache_events_total",
			Help: "Client cache hits, misses and boundary fetches",
		},
		[]string{"event"},
	)
)

// CacheObserver adapts the cache event counter to the tagcache.Observer
// interface.
type CacheObserver struct{}

func (CacheObserver) Hit(string)   { CacheEventsTotal.WithLabelValues("hit").Inc() }
func (CacheObserver) Miss(string)  { CacheEventsTotal.WithLabelValues("miss").Inc() }
func (CacheObserver) Fetch(string) { CacheEventsTotal.WithLabelValues("fetch").Inc() }

// ObserveRequest records one completed HTTP request.
func ObserveRequest(method, path string, status int, seconds float64) {
	labels := []string{method, path, strconv.Itoa(status)}
	RequestsTotal.WithLabelValues(labels...).Inc()
	RequestDuration.WithLabelValues(labels...).Observe(seconds)
}
