package monitor

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "ledblinker"

// metrics contains the instruments served on the status endpoint. Each
// monitor gets its own registry so tests never collide.
type metrics struct {
	registry *prometheus.Registry

	blinking   prometheus.Gauge
	upstreamUp prometheus.Gauge
	tracked    prometheus.Gauge
	matching   prometheus.Gauge
	unread     prometheus.Gauge

	checks        prometheus.Counter
	notifications prometheus.Counter
	closes        prometheus.Counter
	restarts      prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),

		blinking: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "blinking",
			Help:      "Whether the LED is currently blinking (1) or dark (0)",
		}),
		upstreamUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_available",
			Help:      "Whether the alert source is reachable (1) or not (0)",
		}),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "tracked_items",
			Help:      "Notifications currently tracked",
		}),
		matching: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "matching_items",
			Help:      "Tracked notifications matching a filter",
		}),
		unread: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "unread_messages",
			Help:      "Unread messages counted on the last poll",
		}),

		checks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "checks_total",
			Help:      "Total upstream checks performed",
		}),
		notifications: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_total",
			Help:      "Total notifications assembled from the stream",
		}),
		closes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "closes_total",
			Help:      "Total close signals observed on the stream",
		}),
		restarts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "source_restarts_total",
			Help:      "Times the notification source was respawned",
		}),
	}

	m.registry.MustRegister(
		m.blinking,
		m.upstreamUp,
		m.tracked,
		m.matching,
		m.unread,
		m.checks,
		m.notifications,
		m.closes,
		m.restarts,
	)

	return m
}

func setBool(g prometheus.Gauge, v bool) {
	if v {
		g.Set(1)
		return
	}
	g.Set(0)
}
