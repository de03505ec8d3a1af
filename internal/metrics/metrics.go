// Package metrics exposes notification outcomes as Prometheus counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaharia-lab/buildnotify/internal/notification"
)

const namespace = "buildnotify"

// Collector counts sent, failed and skipped notifications. It implements
// notification.Observer.
type Collector struct {
	registry   *prometheus.Registry
	sent       *prometheus.CounterVec
	recipients *prometheus.CounterVec
	failed     *prometheus.CounterVec
	skipped    *prometheus.CounterVec
	dropped    prometheus.Counter
}

var _ notification.Observer = (*Collector)(nil)

// New creates a Collector with its own registry. Go runtime and process
// collectors are registered alongside the notification counters.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		sent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Build e-mails handed to the transport successfully.",
		}, []string{"event"}),
		recipients: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_recipients_total",
			Help:      "Recipients addressed by successfully sent build e-mails.",
		}, []string{"event"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_failed_total",
			Help:      "Build e-mails the transport failed to deliver.",
		}, []string{"event"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_skipped_total",
			Help:      "Build events that produced no e-mail.",
		}, []string{"event", "reason"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Build events dropped because the event queue was full.",
		}),
	}
	c.registry.MustRegister(
		c.sent, c.recipients, c.failed, c.skipped, c.dropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Sent implements notification.Observer.
func (c *Collector) Sent(kind notification.EventKind, recipients int) {
	c.sent.WithLabelValues(string(kind)).Inc()
	c.recipients.WithLabelValues(string(kind)).Add(float64(recipients))
}

// Failed implements notification.Observer.
func (c *Collector) Failed(kind notification.EventKind) {
	c.failed.WithLabelValues(string(kind)).Inc()
}

// Skipped implements notification.Observer.
func (c *Collector) Skipped(kind notification.EventKind, reason notification.SkipReason) {
	c.skipped.WithLabelValues(string(kind), string(reason)).Inc()
}

// EventDropped counts an event the bus could not queue.
func (c *Collector) EventDropped() {
	c.dropped.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
