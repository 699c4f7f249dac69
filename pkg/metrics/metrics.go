// Package metrics holds the Prometheus registry and the HTTP server metrics
// of the API. Upstream metrics live next to the code that records them
// (pkg/client, pkg/pagination).
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry is the default Prometheus registry used by the service.
// Every package registers its metrics on it with promauto.With(Registry).
var Registry = prometheus.DefaultRegisterer

var (
	httpRequestsTotal = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
		Name: "neo_api_http_requests_total",
		Help: "HTTP requests served by route, method and status code",
	}, []string{"route", "method", "code"})

	httpRequestDuration = promauto.With(Registry).NewHistogramVec(prometheus.HistogramOpts{
		Name:    "neo_api_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds by route, method and status code",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"route", "method", "code"})
)

// InstrumentRoute wraps next with request counting and latency observation
// labelled by route.
func InstrumentRoute(route string, next http.Handler) http.Handler {
	labels := prometheus.Labels{"route": route}
	counter := httpRequestsTotal.MustCurryWith(labels)
	duration := httpRequestDuration.MustCurryWith(labels)

	return promhttp.InstrumentHandlerDuration(duration,
		promhttp.InstrumentHandlerCounter(counter, next))
}

// Handler returns the /metrics exposition handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Metrics Documentation
//
// Upstream Metrics (pkg/client):
//   - neows_requests_total{status} (Counter): NeoWs browse requests by HTTP status
//   - neows_request_duration_seconds (Histogram): NeoWs browse latency
//   - neows_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, decode)
//
// Aggregation Metrics (pkg/pagination):
//   - neo_aggregation_pages_total (Counter): Pages fetched
//   - neo_aggregation_pacing_delays_total (Counter): Pacing delays applied
//
// HTTP Metrics (pkg/metrics):
//   - neo_api_http_requests_total{route, method, code} (Counter)
//   - neo_api_http_request_duration_seconds{route, method, code} (Histogram)
//
// Example Prometheus Queries:
//
//   # Upstream error rate
//   rate(neows_errors_total[5m])
//
//   # P95 /api/neos latency
//   histogram_quantile(0.95, rate(neo_api_http_request_duration_seconds_bucket{route="/api/neos"}[5m]))
