// Package metrics exposes the Prometheus collectors shared by the HTTP layer, the
// services and the job worker.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "restaurant_saas"

var (
	Registry = prometheus.NewRegistry()

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// OrderTransitions counts transition attempts by transition and outcome
	// (ok, not_found, invalid, conflict, error).
	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_transitions_total",
			Help:      "Order status transition attempts",
		},
		[]string{"transition", "outcome"},
	)

	// AuthGateResults counts integration credential checks by scheme and outcome.
	AuthGateResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_gate_results_total",
			Help:      "Integration authentication results",
		},
		[]string{"scheme", "outcome"},
	)

	LifecycleEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_events_total",
			Help:      "Subscription lifecycle events by name and dispatch outcome",
		},
		[]string{"event", "outcome"},
	)

	GatewayCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Calls to the WhatsApp gateway by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// OrphanedInstances counts local unlinks whose remote deletion failed.
	OrphanedInstances = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "whatsapp_orphaned_instances_total",
			Help:      "Gateway instances left behind after a failed remote delete",
		},
	)

	JobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Background jobs handled by the worker",
		},
		[]string{"event", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		OrderTransitions,
		AuthGateResults,
		LifecycleEvents,
		GatewayCalls,
		OrphanedInstances,
		JobsProcessed,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
