// Package metrics carries grafink's Prometheus instrumentation. Counters
// register on the default registry; httpd serves them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Runs counts transformation runs by panel kind and outcome.
	Runs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grafink",
		Name:      "runs_total",
		Help:      "Transformation runs by panel kind and outcome.",
	}, []string{"kind", "outcome"})

	// RateLimited counts runs rejected by the per-source window.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "grafink",
		Name:      "rate_limited_total",
		Help:      "Runs rejected by the per-source rate limiter.",
	})

	// UpstreamErrors counts Grafana request failures by reason.
	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grafink",
		Name:      "upstream_errors_total",
		Help:      "Grafana request failures by reason.",
	}, []string{"reason"})

	// WebhookDeliveries counts display webhook pushes by outcome.
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grafink",
		Name:      "webhook_deliveries_total",
		Help:      "Display webhook pushes by outcome.",
	}, []string{"outcome"})
)
