// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gophcourse"

// Webhook outcomes.
const (
	WebhookProvisionedNew      = "provisioned_new"
	WebhookProvisionedExisting = "provisioned_existing"
	WebhookIgnored             = "ignored"
	WebhookRejected            = "rejected"
	WebhookFailed              = "failed"
)

// Metrics groups the server collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	webhookEvents   *prometheus.CounterVec
	reveals         *prometheus.CounterVec
	dripChecks      *prometheus.CounterVec
	secretsSwept    prometheus.Counter
	requestDuration *prometheus.HistogramVec
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		webhookEvents: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "webhook",
				Name:      "events_total",
				Help:      "Payment notifications by outcome.",
			},
			[]string{"outcome"},
		),
		reveals: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "vault",
				Name:      "reveals_total",
				Help:      "Credential reveal attempts by result.",
			},
			[]string{"result"},
		),
		dripChecks: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "drip",
				Name:      "checks_total",
				Help:      "Content gate evaluations by state.",
			},
			[]string{"state"},
		),
		secretsSwept: f.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "vault",
				Name:      "secrets_swept_total",
				Help:      "Expired credentials removed by the sweeper.",
			},
		),
		requestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

func (m *Metrics) WebhookEvent(outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Reveal(result string) {
	if m == nil {
		return
	}
	m.reveals.WithLabelValues(result).Inc()
}

func (m *Metrics) DripCheck(locked bool) {
	if m == nil {
		return
	}
	state := "unlocked"
	if locked {
		state = "locked"
	}
	m.dripChecks.WithLabelValues(state).Inc()
}

func (m *Metrics) SecretsSwept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.secretsSwept.Add(float64(n))
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, status).Observe(d.Seconds())
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
