// Package metrics exposes Prometheus collectors for the bot on a private
// registry, plus a small admin HTTP server.
package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/flor3z/mlb-stats-bot/internal/gateway"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds every collector the bot records into
type Metrics struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	logFailures     prometheus.Counter
	announcements   *prometheus.CounterVec
}

// New registers the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mlbbot_commands_total",
			Help: "Commands dispatched by name and outcome",
		}, []string{"command", "outcome"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mlbbot_gateway_request_duration_seconds",
			Help:    "Upstream request duration seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "result"}),
		logFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mlbbot_activity_log_failures_total",
			Help: "Activity log writes that failed",
		}),
		announcements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mlbbot_announcements_total",
			Help: "Daily announcements by result",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.commands,
		m.gatewayDuration,
		m.logFailures,
		m.announcements,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry the collectors live on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// CommandHandled counts one dispatch. Names outside known are folded into
// "unknown" so user typos cannot grow the label set.
func (m *Metrics) CommandHandled(command, outcome string, known bool) {
	if !known {
		command = "unknown"
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

// GatewayObserver records request durations for a gateway client
func (m *Metrics) GatewayObserver() gateway.Observer {
	return func(route string, d time.Duration, err error) {
		m.gatewayDuration.WithLabelValues(routeLabel(route), result(err)).Observe(d.Seconds())
	}
}

// routeLabel replaces numeric path segments so ids do not become labels
func routeLabel(route string) string {
	if route == "" {
		return "/"
	}
	parts := strings.Split(route, "/")
	for i, p := range parts {
		if _, err := strconv.Atoi(p); err == nil {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// ActivityLogFailed counts one failed log write
func (m *Metrics) ActivityLogFailed(error) {
	m.logFailures.Inc()
}

// AnnouncementSent counts one announcement attempt
func (m *Metrics) AnnouncementSent(err error) {
	m.announcements.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
