// Package metrics exposes Prometheus counters for the payment-event core.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	// WebhookEvents counts inbound deliveries by event type and outcome
	// (applied, duplicate, ignored, rejected, not_found, error).
	WebhookEvents *prometheus.CounterVec

	// SideEffects counts dispatcher attempts by effect (email_confirmation,
	// email_cancellation, email_failure, affiliate_tracking) and outcome
	// (ok, error, skipped).
	SideEffects *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WebhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcore",
			Name:      "webhook_events_total",
			Help:      "Total number of payment webhook deliveries processed.",
		}, []string{"event", "outcome"}),
		SideEffects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcore",
			Name:      "side_effects_total",
			Help:      "Total number of post-transition side effect attempts.",
		}, []string{"effect", "outcome"}),
	}

	reg.MustRegister(m.WebhookEvents, m.SideEffects)
	return m
}

// Handler serves the scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
