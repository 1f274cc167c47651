package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "warband_face"

// Result labels shared by edit and import counters.
const (
	ResultOK = "ok"
)

// Editor holds the face editor's operational metrics.
type Editor struct {
	registry *prometheus.Registry

	sessionsActive   prometheus.Gauge
	sessionsRejected *prometheus.CounterVec
	edits            *prometheus.CounterVec
	imports          *prometheus.CounterVec
	codeUpdates      prometheus.Counter
}

// NewEditor creates editor metrics on a fresh registry.
func NewEditor() *Editor {
	registry := prometheus.NewRegistry()
	m := &Editor{
		registry: registry,
		sessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "editor",
			Name:      "sessions_active",
			Help:      "Editing sessions currently bound to a transport connection.",
		}),
		sessionsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "editor",
			Name:      "sessions_rejected_total",
			Help:      "Connections refused before a session was opened, by reason.",
		}, []string{"reason"}),
		edits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "editor",
			Name:      "edits_total",
			Help:      "Slider edits applied to sessions, by result.",
		}, []string{"result"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "editor",
			Name:      "imports_total",
			Help:      "Face code imports, by result.",
		}, []string{"result"}),
		codeUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "editor",
			Name:      "code_updates_total",
			Help:      "Face codes emitted to sessions.",
		}),
	}
	registry.MustRegister(
		m.sessionsActive,
		m.sessionsRejected,
		m.edits,
		m.imports,
		m.codeUpdates,
	)
	return m
}

// SessionOpened records a new session.
func (m *Editor) SessionOpened() {
	if m == nil {
		return
	}
	m.sessionsActive.Inc()
}

// SessionClosed records a finished session.
func (m *Editor) SessionClosed() {
	if m == nil {
		return
	}
	m.sessionsActive.Dec()
}

// SessionRejected records a connection that never got a session.
func (m *Editor) SessionRejected(reason string) {
	if m == nil {
		return
	}
	m.sessionsRejected.WithLabelValues(reason).Inc()
}

// Edit records one edit outcome; result is ResultOK or an error code.
func (m *Editor) Edit(result string) {
	if m == nil {
		return
	}
	m.edits.WithLabelValues(result).Inc()
}

// Import records one import outcome; result is ResultOK or an error code.
func (m *Editor) Import(result string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(result).Inc()
}

// CodeUpdate records one emitted face code.
func (m *Editor) CodeUpdate() {
	if m == nil {
		return
	}
	m.codeUpdates.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Editor) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests and extra collectors.
func (m *Editor) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}
