package metrics

import (
	"net/http"

	"rescueDispatch/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rescue_dispatch"

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	incidents     *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	conflicts     prometheus.Counter
	notifications *prometheus.CounterVec
	dispatchRuns  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		incidents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "incidents_created_total",
			Help:      "Incidents created, by triaged priority.",
		}, []string{"priority"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Applied incident status transitions, by target status.",
		}, []string{"status"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assign_conflicts_total",
			Help:      "Driver assignments rejected because the incident was already taken.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notification pipeline events, by stage and sink.",
		}, []string{"stage", "sink"}),
		dispatchRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_dispatch_total",
			Help:      "Automatic dispatch attempts, by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.incidents, m.transitions, m.conflicts, m.notifications, m.dispatchRuns)
	return m
}

func (m *Metrics) IncidentCreated(p domain.Priority) {
	if m == nil {
		return
	}
	m.incidents.WithLabelValues(string(p)).Inc()
}

func (m *Metrics) Transition(to domain.IncidentStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(to)).Inc()
}

func (m *Metrics) AssignConflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

func (m *Metrics) NotificationEnqueued() {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues("enqueued", "outbox").Inc()
}

func (m *Metrics) NotificationFailed(sink string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues("failed", sink).Inc()
}

func (m *Metrics) NotificationDelivered(sink string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues("delivered", sink).Inc()
}

func (m *Metrics) AutoDispatch(result string) {
	if m == nil {
		return
	}
	m.dispatchRuns.WithLabelValues(result).Inc()
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
