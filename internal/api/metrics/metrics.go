// Package metrics defines and registers the custom Prometheus metrics of the
// taskdesk client. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry at package
// init and exposed by the diagnostics server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "taskdesk"

// ── Backend gateway ───────────────────────────────────────────────────────────

// BackendRequestsTotal counts requests sent to the backend.
// Labels:
//   - method: HTTP method
//   - status: status class ("2xx", "4xx", "5xx") or "error" for transport failures
var BackendRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_requests_total",
		Help:      "Total number of requests sent to the task backend.",
	},
	[]string{"method", "status"},
)

// BackendRequestDuration measures backend round trips.
// Label:
//   - method: HTTP method
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of requests to the task backend.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method"},
)

// ── Session ───────────────────────────────────────────────────────────────────

// ForcedLogoutsTotal counts 401 responses to authenticated requests, each of
// which raises the forced-logout signal.
var ForcedLogoutsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "forced_logouts_total",
		Help:      "Total number of forced logouts caused by rejected credentials.",
	},
)

// StatusClass renders an HTTP status as its class label.
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
