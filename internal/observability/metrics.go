// Package observability provides Prometheus metrics for the feed.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the feed's Prometheus collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	EventsReceived    *prometheus.CounterVec
	EventsDropped     *prometheus.CounterVec
	EventsSuppressed  *prometheus.CounterVec
	NotificationsSent *prometheus.CounterVec
	SendErrors        *prometheus.CounterVec
	Reconnects        *prometheus.CounterVec
	LogsRemoved       *prometheus.CounterVec
	Connected         *prometheus.GaugeVec
	EnrichLatency     *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		EventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poapfeed_events_received_total",
			Help: "Transfer events delivered by a network subscription",
		}, []string{"network"}),
		EventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poapfeed_events_dropped_total",
			Help: "Events dropped before dispatch, by failing stage",
		}, []string{"network", "stage"}),
		EventsSuppressed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poapfeed_events_suppressed_total",
			Help: "Events suppressed as a repeat of the previous transaction",
		}, []string{"network"}),
		NotificationsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poapfeed_notifications_sent_total",
			Help: "Notifications delivered per destination",
		}, []string{"network", "destination"}),
		SendErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poapfeed_send_errors_total",
			Help: "Notification deliveries that failed",
		}, []string{"network", "destination"}),
		Reconnects: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poapfeed_reconnects_total",
			Help: "Reconnect attempts per network",
		}, []string{"network"}),
		LogsRemoved: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "poapfeed_logs_removed_total",
			Help: "Logs retracted by a chain reorganisation",
		}, []string{"network"}),
		Connected: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "poapfeed_subscription_connected",
			Help: "1 while the network subscription is live",
		}, []string{"network"}),
		EnrichLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "poapfeed_enrich_duration_seconds",
			Help:    "Latency of the full enrichment chain",
			Buckets: prometheus.DefBuckets,
		}, []string{"network", "outcome"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) EventReceived(network string) {
	if m == nil {
		return
	}
	m.EventsReceived.WithLabelValues(network).Inc()
}

func (m *Metrics) EventDropped(network, stage string) {
	if m == nil {
		return
	}
	m.EventsDropped.WithLabelValues(network, stage).Inc()
}

func (m *Metrics) EventSuppressed(network string) {
	if m == nil {
		return
	}
	m.EventsSuppressed.WithLabelValues(network).Inc()
}

func (m *Metrics) NotificationSent(network, destination string) {
	if m == nil {
		return
	}
	m.NotificationsSent.WithLabelValues(network, destination).Inc()
}

func (m *Metrics) SendFailed(network, destination string) {
	if m == nil {
		return
	}
	m.SendErrors.WithLabelValues(network, destination).Inc()
}

func (m *Metrics) Reconnect(network string) {
	if m == nil {
		return
	}
	m.Reconnects.WithLabelValues(network).Inc()
}

func (m *Metrics) LogRemoved(network string) {
	if m == nil {
		return
	}
	m.LogsRemoved.WithLabelValues(network).Inc()
}

func (m *Metrics) SetConnected(network string, connected bool) {
	if m == nil {
		return
	}
	value := 0.0
	if connected {
		value = 1
	}
	m.Connected.WithLabelValues(network).Set(value)
}

func (m *Metrics) ObserveEnrich(network, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.EnrichLatency.WithLabelValues(network, outcome).Observe(d.Seconds())
}
