// Package metrics exposes prometheus counters for engine activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Transition kinds used as label values.
const (
	KindJoin   = "join"
	KindLeave  = "leave"
	KindMove   = "move"
	KindStatus = "status"
)

// Metrics groups the engine counters on their own registry so several engines
// (e.g. in tests) never collide on the global one. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	events      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	alerts      prometheus.Counter
	failures    prometheus.Counter
	tracked     prometheus.Gauge
	occupied    prometheus.Gauge
}

// New creates and registers the counters.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vcwatch_events_total",
			Help: "Inbound host events by topic.",
		}, []string{"topic"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vcwatch_transitions_total",
			Help: "Logged transitions of tracked identities by kind.",
		}, []string{"kind"}),
		alerts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vcwatch_pair_alerts_total",
			Help: "Co-presence alerts raised.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vcwatch_entry_failures_total",
			Help: "Event entries that failed and were skipped.",
		}),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vcwatch_tracked_identities",
			Help: "Identities currently tracked.",
		}),
		occupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vcwatch_occupied_channels",
			Help: "Voice channels with at least one tracked identity.",
		}),
	}
	m.registry.MustRegister(m.events, m.transitions, m.alerts, m.failures, m.tracked, m.occupied)
	return m
}

func (m *Metrics) Event(topic string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(topic).Inc()
}

func (m *Metrics) Transition(kind string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(kind).Inc()
}

func (m *Metrics) Alert() {
	if m == nil {
		return
	}
	m.alerts.Inc()
}

func (m *Metrics) Failure() {
	if m == nil {
		return
	}
	m.failures.Inc()
}

// SetGauges records the current tracked and occupied channel counts.
func (m *Metrics) SetGauges(tracked, occupied int) {
	if m == nil {
		return
	}
	m.tracked.Set(float64(tracked))
	m.occupied.Set(float64(occupied))
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
